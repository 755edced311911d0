// Package snapshot builds immutable data snapshots of a replay.
//
// A DataSnapshot captures the tests of the loaded log plus the cursor,
// node flags, inspector entries and drawn lines of the active test at a
// point in time. Snapshots are rebuilt after every replay step and swapped
// into the UI model; --json prints one.
package snapshot

import (
	"time"

	"github.com/daviddao/replay_viewer/internal/replay"
	"github.com/daviddao/replay_viewer/internal/trace"
	"github.com/daviddao/replay_viewer/internal/visual"
)

// TestSummary is one entry of the test picker.
type TestSummary struct {
	Name   string       `json:"name"`
	Status trace.Status `json:"status"`
	Error  string       `json:"error,omitempty"`
	Events int          `json:"events"`
	Nodes  int          `json:"nodes"`
}

// Entry is one node inspector row.
type Entry struct {
	Index   int             `json:"index"`
	Kind    trace.EventKind `json:"kind"`
	Caption string          `json:"caption"`
}

// Node is the display state of one participant.
type Node struct {
	ID          string         `json:"id"`
	Flags       map[string]int `json:"flags"`
	Partition   int            `json:"partition"`
	Connections int            `json:"connections"`
	Entries     []Entry        `json:"entries"`
}

// Visible reports whether flag f is raised.
func (n Node) Visible(f visual.Flag) bool { return n.Flags[f.String()] > 0 }

// Line is a drawn edge.
type Line struct {
	Index       int             `json:"index"`
	Kind        trace.EventKind `json:"kind"`
	Src         string          `json:"src"`
	Dst         string          `json:"dst"`
	Highlighted bool            `json:"highlighted,omitempty"`
}

// Event is one row of the event list.
type Event struct {
	Index    int             `json:"index"`
	Kind     trace.EventKind `json:"kind"`
	Caption  string          `json:"caption"`
	Applied  bool            `json:"applied"`
	Shown    bool            `json:"shown,omitempty"`
	Selected bool            `json:"selected,omitempty"`
}

// DataSnapshot is an immutable, self-contained view of the replay state.
type DataSnapshot struct {
	Logfile string        `json:"logfile,omitempty"`
	Tests   []TestSummary `json:"tests"`

	// Active test; empty when none is selected.
	Test   string       `json:"test,omitempty"`
	Status trace.Status `json:"status,omitempty"`
	Error  string       `json:"error,omitempty"`
	State  string       `json:"state"`

	Next    int `json:"next"`
	Total   int `json:"total"`
	Current int `json:"current"` // index of the newest applied event, -1 if none

	Nodes  []Node  `json:"nodes"`
	Lines  []Line  `json:"lines"`
	Events []Event `json:"events"`

	// Counts.
	Crashed      int `json:"crashed"`
	Disconnected int `json:"disconnected"`

	// Timestamp of snapshot creation.
	BuiltAt time.Time `json:"built_at"`
}

// Build captures the loaded log and the engine state.
func Build(logfile string, log *trace.Log, e *replay.Engine) *DataSnapshot {
	snap := &DataSnapshot{
		Logfile: logfile,
		State:   e.State().String(),
		Current: -1,
		BuiltAt: time.Now(),
	}
	if log != nil {
		for _, s := range log.Tests() {
			snap.Tests = append(snap.Tests, TestSummary{
				Name:   s.Name,
				Status: s.Status,
				Error:  s.Error,
				Events: len(s.Events),
				Nodes:  len(s.NodeIDs),
			})
		}
	}

	c := e.Cursor()
	if c == nil {
		return snap
	}
	s := c.Session()
	snap.Test = s.Name
	snap.Status = s.Status
	snap.Error = s.Error
	snap.Next = c.Next()
	snap.Total = c.Len()
	if top := c.Top(); top != nil {
		snap.Current = top.Index
	}

	for _, n := range e.Canvas().Nodes() {
		node := Node{
			ID:          n.ID(),
			Flags:       make(map[string]int, len(visual.Flags)),
			Partition:   n.Partition(),
			Connections: n.ConnectionCount(),
		}
		for _, f := range visual.Flags {
			node.Flags[f.String()] = n.Count(f)
		}
		for _, en := range n.Entries() {
			node.Entries = append(node.Entries, Entry{
				Index:   en.Index,
				Kind:    en.Kind,
				Caption: s.Events[en.Index].Caption(),
			})
		}
		if n.Visible(visual.FlagCrash) {
			snap.Crashed++
		}
		if n.Visible(visual.FlagDisconnect) {
			snap.Disconnected++
		}
		snap.Nodes = append(snap.Nodes, node)
	}

	for _, l := range e.Canvas().Lines() {
		snap.Lines = append(snap.Lines, Line{
			Index:       l.Index,
			Kind:        l.Kind,
			Src:         l.Src,
			Dst:         l.Dst,
			Highlighted: l.Highlighted,
		})
	}

	snap.Events = make([]Event, 0, len(s.Events))
	for _, ev := range s.Events {
		snap.Events = append(snap.Events, Event{
			Index:    ev.Index,
			Kind:     ev.Kind,
			Caption:  ev.Caption(),
			Applied:  ev.Index < c.Next(),
			Shown:    e.Shown(ev.Index),
			Selected: e.Selected(ev.Index),
		})
	}
	return snap
}

// Node returns the node with the given id.
func (s *DataSnapshot) Node(id string) (Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
