// Package trace models the events recorded by a distributed-systems test run
// and parses the newline-delimited log the test harness writes.
package trace

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// EventKind is the closed set of event types a trace may contain.
type EventKind string

const (
	KindMessageSend         EventKind = "MessageSend"
	KindMessageReceive      EventKind = "MessageReceive"
	KindLocalMessageSend    EventKind = "LocalMessageSend"
	KindLocalMessageReceive EventKind = "LocalMessageReceive"
	KindMessageDropped      EventKind = "MessageDropped"
	KindMessageDiscarded    EventKind = "MessageDiscarded"
	KindTimerFired          EventKind = "TimerFired"
	KindNodeRecovered       EventKind = "NodeRecovered"
	KindNodeRestarted       EventKind = "NodeRestarted"
	KindNodeCrashed         EventKind = "NodeCrashed"
	KindNodeConnected       EventKind = "NodeConnected"
	KindNodeDisconnected    EventKind = "NodeDisconnected"
	KindLinkEnabled         EventKind = "LinkEnabled"
	KindLinkDisabled        EventKind = "LinkDisabled"
	KindNetworkPartition    EventKind = "NetworkPartition"
	KindTestEnd             EventKind = "TestEnd"
)

// Kinds lists every EventKind in display order.
var Kinds = []EventKind{
	KindMessageSend,
	KindMessageReceive,
	KindLocalMessageSend,
	KindLocalMessageReceive,
	KindMessageDropped,
	KindMessageDiscarded,
	KindTimerFired,
	KindNodeRecovered,
	KindNodeRestarted,
	KindNodeCrashed,
	KindNodeConnected,
	KindNodeDisconnected,
	KindLinkEnabled,
	KindLinkDisabled,
	KindNetworkPartition,
	KindTestEnd,
}

// Valid reports whether k belongs to the closed kind set.
func (k EventKind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// requiredFields lists the payload keys each kind must carry.
var requiredFields = map[EventKind][]string{
	KindMessageSend:         {"src", "dst", "msg"},
	KindMessageReceive:      {"src", "dst", "msg"},
	KindLocalMessageSend:    {"dst", "msg"},
	KindLocalMessageReceive: {"dst", "msg"},
	KindMessageDropped:      {"src", "dst", "msg"},
	KindMessageDiscarded:    {"src", "dst", "msg"},
	KindTimerFired:          {"node"},
	KindNodeRecovered:       {"node"},
	KindNodeRestarted:       {"node"},
	KindNodeCrashed:         {"node"},
	KindNodeConnected:       {"node"},
	KindNodeDisconnected:    {"node"},
	KindLinkEnabled:         {"src", "dst"},
	KindLinkDisabled:        {"src", "dst"},
	KindNetworkPartition:    {"group1", "group2"},
}

// Event is one immutable, indexed occurrence in a test trace.
type Event struct {
	Kind  EventKind
	Data  map[string]any
	Index int
}

// MalformedEventError reports an event record that cannot be accepted.
type MalformedEventError struct {
	Index  int
	Kind   string
	Reason string
	Err    error
}

func (e *MalformedEventError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("malformed event #%d (%s): %s", e.Index, e.Kind, e.Reason)
	}
	return fmt.Sprintf("malformed event #%d: %s", e.Index, e.Reason)
}

func (e *MalformedEventError) Unwrap() error { return e.Err }

// rawEvent is the wire shape of a single event line.
type rawEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// ParseEvent decodes one serialized event record and assigns it index.
func ParseEvent(line []byte, index int) (Event, error) {
	var raw rawEvent
	if err := json.Unmarshal(line, &raw); err != nil {
		return Event{}, &MalformedEventError{Index: index, Reason: "invalid JSON", Err: err}
	}
	kind := EventKind(raw.Type)
	if !kind.Valid() {
		return Event{}, &MalformedEventError{
			Index:  index,
			Kind:   raw.Type,
			Reason: fmt.Sprintf("unexpected event type %q", raw.Type),
		}
	}
	if raw.Data == nil {
		raw.Data = map[string]any{}
	}
	for _, field := range requiredFields[kind] {
		if _, ok := raw.Data[field]; !ok {
			return Event{}, &MalformedEventError{
				Index:  index,
				Kind:   raw.Type,
				Reason: fmt.Sprintf("missing field %q", field),
			}
		}
	}
	ev := Event{Kind: kind, Data: raw.Data, Index: index}
	if kind == KindNetworkPartition {
		if _, ok := stringList(raw.Data["group1"]); !ok {
			return Event{}, &MalformedEventError{Index: index, Kind: raw.Type, Reason: "group1 is not a list of node ids"}
		}
		if _, ok := stringList(raw.Data["group2"]); !ok {
			return Event{}, &MalformedEventError{Index: index, Kind: raw.Type, Reason: "group2 is not a list of node ids"}
		}
	}
	return ev, nil
}

// TestEndEvent synthesizes the terminal event of a session.
func TestEndEvent(index int) Event {
	return Event{Kind: KindTestEnd, Data: map[string]any{}, Index: index}
}

// MarshalJSON writes the event in its wire shape plus its index.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  EventKind      `json:"type"`
		Data  map[string]any `json:"data"`
		Index int            `json:"index"`
	}{e.Kind, e.Data, e.Index})
}

// --- Payload accessors ---

func (e Event) str(key string) string {
	switch v := e.Data[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%g", v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Src is the sending node of message and link events.
func (e Event) Src() string { return e.str("src") }

// Dst is the receiving node of message and link events, and the node of
// local message events.
func (e Event) Dst() string { return e.str("dst") }

// Node is the subject of timer and node events.
func (e Event) Node() string { return e.str("node") }

// TimerName is the name of a fired timer.
func (e Event) TimerName() string { return e.str("name") }

// TS returns the simulated timestamp, or 0 when absent.
func (e Event) TS() float64 {
	if v, ok := e.Data["ts"].(float64); ok {
		return v
	}
	return 0
}

func (e Event) msg() map[string]any {
	m, _ := e.Data["msg"].(map[string]any)
	return m
}

// MsgType is the application message type carried by message events.
func (e Event) MsgType() string {
	if t, ok := e.msg()["type"].(string); ok {
		return t
	}
	return ""
}

// MsgData is the application payload carried by message events.
func (e Event) MsgData() any {
	return e.msg()["data"]
}

// Groups returns both sides of a network partition.
func (e Event) Groups() (group1, group2 []string) {
	group1, _ = stringList(e.Data["group1"])
	group2, _ = stringList(e.Data["group2"])
	return group1, group2
}

// Nodes returns every node the event touches, without duplicates, in the
// order the event names them.
func (e Event) Nodes() []string {
	var ids []string
	switch e.Kind {
	case KindMessageSend, KindMessageReceive, KindMessageDropped, KindMessageDiscarded,
		KindLinkEnabled, KindLinkDisabled:
		ids = []string{e.Src(), e.Dst()}
	case KindLocalMessageSend, KindLocalMessageReceive:
		ids = []string{e.Dst()}
	case KindTimerFired, KindNodeRecovered, KindNodeRestarted, KindNodeCrashed,
		KindNodeConnected, KindNodeDisconnected:
		ids = []string{e.Node()}
	case KindNetworkPartition:
		g1, g2 := e.Groups()
		ids = append(append(ids, g1...), g2...)
	}
	seen := make(map[string]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Caption is a one-line description of the event.
func (e Event) Caption() string {
	ts := fmt.Sprintf("%.3f", e.TS())
	switch e.Kind {
	case KindMessageSend:
		return fmt.Sprintf("%s | %s --> %s | %s", ts, e.Src(), e.Dst(), e.MsgType())
	case KindMessageReceive:
		return fmt.Sprintf("%s | %s <-- %s | %s", ts, e.Dst(), e.Src(), e.MsgType())
	case KindLocalMessageSend:
		return fmt.Sprintf("%s | %s >>> local | %s", ts, e.Dst(), e.MsgType())
	case KindLocalMessageReceive:
		return fmt.Sprintf("%s | %s <<< local | %s", ts, e.Dst(), e.MsgType())
	case KindMessageDropped:
		return fmt.Sprintf("%s | %s --x %s | %s (dropped)", ts, e.Src(), e.Dst(), e.MsgType())
	case KindMessageDiscarded:
		return fmt.Sprintf("%s | %s --x %s | %s (discarded)", ts, e.Src(), e.Dst(), e.MsgType())
	case KindTimerFired:
		return fmt.Sprintf("%s | %s !-- timer %s", ts, e.Node(), e.TimerName())
	case KindNodeRecovered:
		return fmt.Sprintf("%s | %s RECOVERED", ts, e.Node())
	case KindNodeRestarted:
		return fmt.Sprintf("%s | %s RESTARTED", ts, e.Node())
	case KindNodeCrashed:
		return fmt.Sprintf("%s | %s CRASHED", ts, e.Node())
	case KindNodeConnected:
		return fmt.Sprintf("%s | %s CONNECTED", ts, e.Node())
	case KindNodeDisconnected:
		return fmt.Sprintf("%s | %s DISCONNECTED", ts, e.Node())
	case KindLinkEnabled:
		return fmt.Sprintf("%s | %s --> %s | LINK ENABLED", ts, e.Src(), e.Dst())
	case KindLinkDisabled:
		return fmt.Sprintf("%s | %s --> %s | LINK DISABLED", ts, e.Src(), e.Dst())
	case KindNetworkPartition:
		g1, g2 := e.Groups()
		return fmt.Sprintf("%s | PARTITION [%s] | [%s]", ts, strings.Join(g1, ","), strings.Join(g2, ","))
	case KindTestEnd:
		return "TEST ENDED"
	}
	return string(e.Kind)
}

// stringList converts a decoded JSON array into node ids.
func stringList(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return list, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			switch id := item.(type) {
			case string:
				out = append(out, id)
			case float64:
				out = append(out, fmt.Sprintf("%g", id))
			default:
				return nil, false
			}
		}
		return out, true
	}
	return nil, false
}

// SortNodeIDs orders ids numerically when every id is a decimal number and
// lexically otherwise.
func SortNodeIDs(ids []string) {
	numeric := len(ids) > 0
	for _, id := range ids {
		if id == "" || strings.TrimLeft(id, "0123456789") != "" {
			numeric = false
			break
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		if numeric {
			a, b := strings.TrimLeft(ids[i], "0"), strings.TrimLeft(ids[j], "0")
			if len(a) != len(b) {
				return len(a) < len(b)
			}
			if a != b {
				return a < b
			}
		}
		return ids[i] < ids[j]
	})
}
