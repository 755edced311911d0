package visual

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/daviddao/replay_viewer/internal/trace"
)

// Flag is one independently counted visual marker of a node.
type Flag int

const (
	FlagBorder Flag = iota
	FlagLocalUser
	FlagCrash
	FlagTimer
	FlagRestart
	FlagDisconnect
	FlagPartition1
	FlagPartition2
	flagCount // sentinel
)

// Flags lists every node flag.
var Flags = []Flag{
	FlagBorder, FlagLocalUser, FlagCrash, FlagTimer,
	FlagRestart, FlagDisconnect, FlagPartition1, FlagPartition2,
}

func (f Flag) String() string {
	switch f {
	case FlagBorder:
		return "border"
	case FlagLocalUser:
		return "local-user"
	case FlagCrash:
		return "crash"
	case FlagTimer:
		return "timer"
	case FlagRestart:
		return "restart"
	case FlagDisconnect:
		return "disconnect"
	case FlagPartition1:
		return "partition-1"
	case FlagPartition2:
		return "partition-2"
	}
	return "?"
}

// Entry is one node-scoped record shown in the node inspector.
type Entry struct {
	Kind    trace.EventKind
	Index   int // index of the event that appended the entry
	Payload map[string]any
}

// EmptyLogError is returned by PopEntry when the node log has no entries.
type EmptyLogError struct {
	Node string
}

func (e *EmptyLogError) Error() string {
	return fmt.Sprintf("node %s: pop from empty entry log", e.Node)
}

// NodeState aggregates every visual flag and the inspector log of one node.
type NodeState struct {
	id      string
	flags   [flagCount]*Counter
	conn    *Counter
	entries []Entry
	log     *zap.Logger
}

func newNodeState(id string, log *zap.Logger, hook func(Transition)) *NodeState {
	n := &NodeState{id: id, log: log}
	underflow := func(err *UnderflowError) {
		n.log.Error("visibility counter underflow",
			zap.String("node", id), zap.String("counter", err.Counter))
	}
	for _, f := range Flags {
		f := f
		n.flags[f] = NewCounter(f.String(), func(visible bool) {
			if hook != nil {
				hook(Transition{Node: id, Flag: f, Visible: visible})
			}
		}, underflow)
	}
	// While any line touches the node it must not be dragged around.
	n.conn = NewCounter("connections", func(locked bool) {
		n.log.Debug("node movement lock", zap.String("node", id), zap.Bool("locked", locked))
	}, underflow)
	return n
}

// ID is the node id.
func (n *NodeState) ID() string { return n.id }

// Acquire raises flag f and reports whether it became visible.
func (n *NodeState) Acquire(f Flag) bool { return n.flags[f].Acquire() }

// Release lowers flag f and reports whether it became hidden.
func (n *NodeState) Release(f Flag) bool { return n.flags[f].Release() }

// Count is the number of outstanding acquires of f.
func (n *NodeState) Count(f Flag) int { return n.flags[f].Count() }

// Visible reports whether f is shown.
func (n *NodeState) Visible(f Flag) bool { return n.flags[f].Visible() }

// Partition returns the partition group the node is drawn in, 0 if none.
func (n *NodeState) Partition() int {
	switch {
	case n.Visible(FlagPartition1):
		return 1
	case n.Visible(FlagPartition2):
		return 2
	}
	return 0
}

// ConnectionCount is the number of drawn lines touching the node.
func (n *NodeState) ConnectionCount() int { return n.conn.Count() }

// Movable reports whether the node may be dragged by the user.
func (n *NodeState) Movable() bool { return !n.conn.Visible() }

// AppendEntry records an inspector entry and returns its position.
func (n *NodeState) AppendEntry(kind trace.EventKind, index int, payload map[string]any) int {
	pos := len(n.entries)
	n.entries = append(n.entries, Entry{Kind: kind, Index: index, Payload: payload})
	return pos
}

// PopEntry removes and returns the newest inspector entry.
func (n *NodeState) PopEntry() (Entry, error) {
	if len(n.entries) == 0 {
		return Entry{}, &EmptyLogError{Node: n.id}
	}
	last := n.entries[len(n.entries)-1]
	n.entries = n.entries[:len(n.entries)-1]
	return last, nil
}

// Entries returns the inspector log, oldest first. The slice must not be
// modified.
func (n *NodeState) Entries() []Entry { return n.entries }

// Neutral reports whether no flag is raised, no line is attached and the
// inspector log is empty.
func (n *NodeState) Neutral() bool {
	for _, c := range n.flags {
		if c.Count() != 0 {
			return false
		}
	}
	return n.conn.Count() == 0 && len(n.entries) == 0
}
