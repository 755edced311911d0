package visual

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/daviddao/replay_viewer/internal/trace"
)

// Transition is a flag becoming visible or hidden on a node.
type Transition struct {
	Node    string
	Flag    Flag
	Visible bool
}

// Line is a drawn edge between two nodes, owned by the event that drew it.
type Line struct {
	Index       int
	Kind        trace.EventKind
	Src, Dst    string
	Highlighted bool
}

// Canvas is the display state of every participant node of the active test.
//
// The canvas keeps no visibility counts of its own. Each applied event owns
// a "shown" Counter, and only that counter's 0 to 1 and 1 to 0 transitions
// call DrawLine and EraseLine. A line therefore stays drawn while any holder,
// such as a replay step or a selection, still has the event shown.
type Canvas struct {
	nodes map[string]*NodeState
	order []string
	lines map[int]*Line
	log   *zap.Logger
}

// Option configures a Canvas.
type Option func(*canvasOptions)

type canvasOptions struct {
	hook func(Transition)
}

// WithTransitionHook observes every flag transition on every node.
func WithTransitionHook(hook func(Transition)) Option {
	return func(o *canvasOptions) { o.hook = hook }
}

// NewCanvas creates one neutral NodeState per id. Ids keep the given order.
func NewCanvas(nodeIDs []string, log *zap.Logger, opts ...Option) *Canvas {
	if log == nil {
		log = zap.NewNop()
	}
	var o canvasOptions
	for _, opt := range opts {
		opt(&o)
	}
	c := &Canvas{
		nodes: make(map[string]*NodeState, len(nodeIDs)),
		lines: make(map[int]*Line),
		log:   log,
	}
	for _, id := range nodeIDs {
		if _, dup := c.nodes[id]; dup {
			continue
		}
		c.nodes[id] = newNodeState(id, log, o.hook)
		c.order = append(c.order, id)
	}
	return c
}

// Node returns the state of node id.
func (c *Canvas) Node(id string) (*NodeState, bool) {
	n, ok := c.nodes[id]
	return n, ok
}

// Nodes returns every node in canvas order.
func (c *Canvas) Nodes() []*NodeState {
	out := make([]*NodeState, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.nodes[id])
	}
	return out
}

// DrawLine draws the line owned by the event at l.Index and locks both
// endpoints. Callers gate it on the owning event's shown Counter becoming
// visible; drawing an already drawn line is a logged no-op.
func (c *Canvas) DrawLine(l Line) error {
	if _, ok := c.lines[l.Index]; ok {
		c.log.Debug("line already drawn", zap.Int("event", l.Index), zap.String("src", l.Src), zap.String("dst", l.Dst))
		return nil
	}
	src, ok := c.nodes[l.Src]
	if !ok {
		return fmt.Errorf("draw line #%d: unknown node %q", l.Index, l.Src)
	}
	dst, ok := c.nodes[l.Dst]
	if !ok {
		return fmt.Errorf("draw line #%d: unknown node %q", l.Index, l.Dst)
	}
	src.conn.Acquire()
	dst.conn.Acquire()
	line := l
	c.lines[l.Index] = &line
	return nil
}

// EraseLine removes the line owned by the event at index and unlocks its
// endpoints. Erasing a missing line is a logged no-op.
func (c *Canvas) EraseLine(index int) {
	l, ok := c.lines[index]
	if !ok {
		c.log.Debug("line already removed", zap.Int("event", index))
		return
	}
	delete(c.lines, index)
	c.nodes[l.Src].conn.Release()
	c.nodes[l.Dst].conn.Release()
}

// HighlightLine raises or lowers a drawn line above the others.
func (c *Canvas) HighlightLine(index int, on bool) {
	if l, ok := c.lines[index]; ok {
		l.Highlighted = on
	}
}

// Lines returns the drawn lines ordered by owning event index.
func (c *Canvas) Lines() []Line {
	out := make([]Line, 0, len(c.lines))
	for _, l := range c.lines {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Neutral reports whether nothing is drawn and every node is neutral.
func (c *Canvas) Neutral() bool {
	if len(c.lines) != 0 {
		return false
	}
	for _, n := range c.nodes {
		if !n.Neutral() {
			return false
		}
	}
	return true
}
