package trace

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const sampleLog = `NODE_IDS:2:10:1
TEST_BEGIN:ping-pong
{"type": "MessageSend", "data": {"src": "1", "dst": "2", "ts": 0.5, "msg": {"type": "Ping", "data": {"n": 1}}}}
{"type": "MessageReceive", "data": {"src": "1", "dst": "2", "ts": 0.75, "msg": {"type": "Ping", "data": {"n": 1}}}}

{"type": "NodeCrashed", "data": {"node": "2", "ts": 1.0}}
TEST_END:PASSED:
TEST_BEGIN:partition
{"type": "NetworkPartition", "data": {"group1": ["1", "2"], "group2": ["10"], "ts": 2.0}}
TEST_END:FAILED:expected leader: got none
`

func TestParseEventKinds(t *testing.T) {
	for _, k := range Kinds {
		if !k.Valid() {
			t.Errorf("%s.Valid() = false, want true", k)
		}
	}
	if EventKind("TimerSet").Valid() {
		t.Error("TimerSet should not be a valid kind")
	}
}

func TestParseEvent(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"type":"TimerFired","data":{"node":"A","name":"election","ts":3.25}}`), 7)
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if ev.Kind != KindTimerFired || ev.Index != 7 {
		t.Errorf("ParseEvent = %v #%d, want TimerFired #7", ev.Kind, ev.Index)
	}
	if ev.Node() != "A" || ev.TimerName() != "election" || ev.TS() != 3.25 {
		t.Errorf("accessors = %q %q %v", ev.Node(), ev.TimerName(), ev.TS())
	}
}

func TestParseEventMalformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"unknown type", `{"type":"TimerSet","data":{"node":"A"}}`},
		{"bad json", `{"type":`},
		{"missing dst", `{"type":"MessageSend","data":{"src":"A","msg":{}}}`},
		{"missing node", `{"type":"NodeCrashed","data":{}}`},
		{"bad group", `{"type":"NetworkPartition","data":{"group1":"A","group2":[]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEvent([]byte(tt.line), 3)
			var me *MalformedEventError
			if !errors.As(err, &me) {
				t.Fatalf("ParseEvent(%q) error = %v, want MalformedEventError", tt.line, err)
			}
			if me.Index != 3 {
				t.Errorf("MalformedEventError.Index = %d, want 3", me.Index)
			}
		})
	}
}

func TestEventNodes(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{`{"type":"MessageSend","data":{"src":"A","dst":"B","msg":{}}}`, []string{"A", "B"}},
		{`{"type":"LinkDisabled","data":{"src":"A","dst":"A"}}`, []string{"A"}},
		{`{"type":"LocalMessageSend","data":{"dst":"C","msg":{}}}`, []string{"C"}},
		{`{"type":"NetworkPartition","data":{"group1":["A","B"],"group2":["C"]}}`, []string{"A", "B", "C"}},
	}
	for _, tt := range tests {
		ev, err := ParseEvent([]byte(tt.line), 0)
		if err != nil {
			t.Fatalf("ParseEvent: %v", err)
		}
		if got := ev.Nodes(); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Nodes(%s) = %v, want %v", ev.Kind, got, tt.want)
		}
	}
	if got := TestEndEvent(4).Nodes(); len(got) != 0 {
		t.Errorf("TestEnd.Nodes() = %v, want none", got)
	}
}

func TestEventCaption(t *testing.T) {
	ev, _ := ParseEvent([]byte(`{"type":"MessageSend","data":{"src":"A","dst":"B","ts":1.25,"msg":{"type":"Ping"}}}`), 0)
	if got, want := ev.Caption(), "1.250 | A --> B | Ping"; got != want {
		t.Errorf("Caption() = %q, want %q", got, want)
	}
	if got := TestEndEvent(0).Caption(); got != "TEST ENDED" {
		t.Errorf("TestEnd caption = %q", got)
	}
}

func TestSortNodeIDs(t *testing.T) {
	tests := []struct {
		in, want []string
	}{
		{[]string{"10", "2", "1"}, []string{"1", "2", "10"}},
		{[]string{"b", "a", "10"}, []string{"10", "a", "b"}},
		{nil, nil},
	}
	for _, tt := range tests {
		got := append([]string(nil), tt.in...)
		SortNodeIDs(got)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SortNodeIDs(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	log, err := Parse(strings.NewReader(sampleLog))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tests := log.Tests()
	if len(tests) != 2 {
		t.Fatalf("expected 2 tests, got %d", len(tests))
	}

	pp := tests[0]
	if pp.Name != "ping-pong" || pp.Status != StatusPassed || pp.Error != "" {
		t.Errorf("first test = %q %s %q", pp.Name, pp.Status, pp.Error)
	}
	if !reflect.DeepEqual(pp.NodeIDs, []string{"1", "2", "10"}) {
		t.Errorf("NodeIDs = %v", pp.NodeIDs)
	}
	if len(pp.Events) != 4 {
		t.Fatalf("expected 3 events + TestEnd, got %d", len(pp.Events))
	}
	for i, ev := range pp.Events {
		if ev.Index != i {
			t.Errorf("event %d has index %d", i, ev.Index)
		}
	}
	if last := pp.Events[3]; last.Kind != KindTestEnd {
		t.Errorf("last event = %s, want TestEnd", last.Kind)
	}

	part, ok := log.Test("partition")
	if !ok {
		t.Fatal("Test(partition) not found")
	}
	if part.Status != StatusFailed || part.Error != "expected leader: got none" {
		t.Errorf("partition = %s %q", part.Status, part.Error)
	}
	if part.Events[0].Index != 0 {
		t.Error("event counter should reset per test")
	}
	if !part.HasNode("10") || part.HasNode("3") {
		t.Error("HasNode mismatch")
	}
	if got := log.ByStatus(StatusFailed); len(got) != 1 || got[0] != part {
		t.Errorf("ByStatus(FAILED) = %v", got)
	}
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(strings.NewReader("\n\nNODE_IDS:1\n"))
	if !errors.Is(err, ErrNoTests) {
		t.Errorf("Parse(empty) error = %v, want ErrNoTests", err)
	}
}

func TestParseStructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		log  string
		line int
	}{
		{"event outside test", `{"type":"NodeCrashed","data":{"node":"1"}}`, 1},
		{"end outside test", "TEST_END:PASSED:", 1},
		{"unknown status", "TEST_BEGIN:a\nTEST_END:SKIPPED:", 2},
		{"unterminated", "TEST_BEGIN:a\n", 1},
		{"nested begin", "TEST_BEGIN:a\nTEST_BEGIN:b\n", 2},
		{"bad event", "TEST_BEGIN:a\n{\"type\":\"Nope\",\"data\":{}}\nTEST_END:PASSED:", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.log))
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Parse error = %v, want ParseError", err)
			}
			if pe.Line != tt.line {
				t.Errorf("ParseError.Line = %d, want %d", pe.Line, tt.line)
			}
		})
	}
}

func TestParseMalformedEventIsStrict(t *testing.T) {
	_, err := Parse(strings.NewReader("TEST_BEGIN:a\n{\"type\":\"TimerSet\",\"data\":{}}\nTEST_END:PASSED:\n"))
	var me *MalformedEventError
	if !errors.As(err, &me) {
		t.Fatalf("error = %v, want MalformedEventError in chain", err)
	}
}

func TestParseDuplicateTestReplaces(t *testing.T) {
	log, err := Parse(strings.NewReader("TEST_BEGIN:a\nTEST_END:FAILED:x\nTEST_BEGIN:b\nTEST_END:PASSED:\nTEST_BEGIN:a\nTEST_END:PASSED:\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(log.Tests()) != 2 {
		t.Fatalf("expected 2 tests, got %d", len(log.Tests()))
	}
	if a := log.Tests()[0]; a.Name != "a" || a.Status != StatusPassed {
		t.Errorf("replaced test = %q %s", a.Name, a.Status)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.log")
	if err := os.WriteFile(path, []byte(sampleLog), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	log, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(log.Tests()) != 2 {
		t.Errorf("expected 2 tests, got %d", len(log.Tests()))
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.log")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ParseFile(missing) error = %v, want ErrNotExist", err)
	}
}
