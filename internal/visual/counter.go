// Package visual holds the reference-counted display state of a replayed
// test: one NodeState per participant node plus the lines currently drawn
// between nodes.
package visual

import "fmt"

// Effect is invoked when a counter becomes visible (true) or hidden (false).
type Effect func(visible bool)

// UnderflowError reports a release of a counter that was already at zero.
// It signals a bookkeeping bug in the caller and is never fatal.
type UnderflowError struct {
	Counter string
}

func (e *UnderflowError) Error() string {
	return fmt.Sprintf("counter underflow: release of %s at zero", e.Counter)
}

// Counter is a reference-counted show/hide gate. It stays visible until
// every acquirer has released it.
type Counter struct {
	name      string
	count     int
	effect    Effect
	underflow func(*UnderflowError)
}

// NewCounter returns a hidden counter. effect and underflow may be nil.
func NewCounter(name string, effect Effect, underflow func(*UnderflowError)) *Counter {
	return &Counter{name: name, effect: effect, underflow: underflow}
}

// Acquire increments the count and reports whether this call made the
// counter visible.
func (c *Counter) Acquire() bool {
	c.count++
	if c.count != 1 {
		return false
	}
	if c.effect != nil {
		c.effect(true)
	}
	return true
}

// Release decrements the count and reports whether this call hid the
// counter. Releasing at zero is a reported no-op.
func (c *Counter) Release() bool {
	if c.count == 0 {
		if c.underflow != nil {
			c.underflow(&UnderflowError{Counter: c.name})
		}
		return false
	}
	c.count--
	if c.count != 0 {
		return false
	}
	if c.effect != nil {
		c.effect(false)
	}
	return true
}

// Count is the number of outstanding acquires.
func (c *Counter) Count() int { return c.count }

// Visible reports whether at least one acquire is outstanding.
func (c *Counter) Visible() bool { return c.count > 0 }

// Name identifies the counter in logs.
func (c *Counter) Name() string { return c.name }
