package replay

import "github.com/daviddao/replay_viewer/internal/trace"

// Cursor is the replay position within one session. stack[0] is a nil
// sentinel so the top of an empty history is nil rather than an index error.
type Cursor struct {
	session *trace.Session
	next    int
	stack   []frame
}

// frame is one applied event. stepShown records whether the engine's own
// step currently holds a Show of it; selection shows are never counted here.
type frame struct {
	ev        *trace.Event
	stepShown bool
}

func newCursor(s *trace.Session) *Cursor {
	return &Cursor{session: s, stack: []frame{{}}}
}

// Session is the test being replayed.
func (c *Cursor) Session() *trace.Session { return c.session }

// Next is the index of the event the next forward step applies.
func (c *Cursor) Next() int { return c.next }

// Len is the number of events in the session.
func (c *Cursor) Len() int { return len(c.session.Events) }

// AtEnd reports whether every event has been applied.
func (c *Cursor) AtEnd() bool { return c.next >= len(c.session.Events) }

// Top is the most recently applied event, nil before the first step.
func (c *Cursor) Top() *trace.Event { return c.stack[len(c.stack)-1].ev }

func (c *Cursor) top() *frame { return &c.stack[len(c.stack)-1] }

// Applied returns the applied events, oldest first.
func (c *Cursor) Applied() []trace.Event {
	out := make([]trace.Event, 0, len(c.stack)-1)
	for _, f := range c.stack[1:] {
		out = append(out, *f.ev)
	}
	return out
}

func (c *Cursor) push(ev *trace.Event, stepShown bool) {
	c.stack = append(c.stack, frame{ev: ev, stepShown: stepShown})
	c.next++
}

func (c *Cursor) pop() *trace.Event {
	if len(c.stack) == 1 {
		return nil
	}
	top := c.stack[len(c.stack)-1].ev
	c.stack = c.stack[:len(c.stack)-1]
	c.next--
	return top
}
