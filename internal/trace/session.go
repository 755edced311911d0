package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Status is the outcome of a test run.
type Status string

const (
	StatusPassed Status = "PASSED"
	StatusFailed Status = "FAILED"
)

// Session is one parsed test run: its ordered events, outcome and
// participant nodes. It is not modified after parsing completes.
type Session struct {
	Name    string
	Events  []Event
	Status  Status
	Error   string   // empty when the test reported no error
	NodeIDs []string // sorted, unique
}

// HasNode reports whether id participates in the session.
func (s *Session) HasNode(id string) bool {
	for _, n := range s.NodeIDs {
		if n == id {
			return true
		}
	}
	return false
}

// Log is the ordered set of sessions parsed from one log file.
type Log struct {
	tests  []*Session
	byName map[string]*Session
}

// Tests returns the sessions in file order.
func (l *Log) Tests() []*Session { return l.tests }

// Test returns the session with the given name.
func (l *Log) Test(name string) (*Session, bool) {
	s, ok := l.byName[name]
	return s, ok
}

// ByStatus returns the sessions with the given outcome, in file order.
func (l *Log) ByStatus(status Status) []*Session {
	var out []*Session
	for _, s := range l.tests {
		if s.Status == status {
			out = append(out, s)
		}
	}
	return out
}

// ErrNoTests is returned when a log yields no test sessions.
var ErrNoTests = errors.New("parsed empty data: no tests found")

// ParseError locates a structural problem in a log file.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

const (
	prefixNodeIDs   = "NODE_IDS"
	prefixTestBegin = "TEST_BEGIN"
	prefixTestEnd   = "TEST_END"
)

// maxLineSize bounds a single log record; message payloads can be large.
const maxLineSize = 16 << 20

// ParseFile parses the log at path.
func ParseFile(path string) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	log, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return log, nil
}

// Parse reads a newline-delimited trace log. Parsing is strict: the first
// malformed record aborts the whole load.
func Parse(r io.Reader) (*Log, error) {
	log := &Log{byName: make(map[string]*Session)}

	var (
		current *Session
		nodeIDs []string
		lineNo  int
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, prefixNodeIDs):
			nodeIDs = parseNodeIDs(line)

		case strings.HasPrefix(line, prefixTestBegin):
			if current != nil {
				return nil, &ParseError{Line: lineNo, Err: fmt.Errorf("test %q has no %s", current.Name, prefixTestEnd)}
			}
			_, name, ok := strings.Cut(line, ":")
			if !ok || name == "" {
				return nil, &ParseError{Line: lineNo, Err: errors.New("TEST_BEGIN without a test name")}
			}
			current = &Session{Name: name}

		case strings.HasPrefix(line, prefixTestEnd):
			if current == nil {
				return nil, &ParseError{Line: lineNo, Err: errors.New("TEST_END outside of a test")}
			}
			parts := strings.SplitN(line, ":", 3)
			if len(parts) < 2 {
				return nil, &ParseError{Line: lineNo, Err: errors.New("TEST_END without a status")}
			}
			status := Status(parts[1])
			if status != StatusPassed && status != StatusFailed {
				return nil, &ParseError{Line: lineNo, Err: fmt.Errorf("unknown test status %q", parts[1])}
			}
			current.Status = status
			if len(parts) == 3 {
				current.Error = parts[2]
			}
			current.NodeIDs = append([]string(nil), nodeIDs...)
			current.Events = append(current.Events, TestEndEvent(len(current.Events)))
			log.add(current)
			current = nil

		default:
			if current == nil {
				return nil, &ParseError{Line: lineNo, Err: errors.New("event outside of a test")}
			}
			ev, err := ParseEvent([]byte(line), len(current.Events))
			if err != nil {
				return nil, &ParseError{Line: lineNo, Err: err}
			}
			current.Events = append(current.Events, ev)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	if current != nil {
		return nil, &ParseError{Line: lineNo, Err: fmt.Errorf("test %q has no %s", current.Name, prefixTestEnd)}
	}
	if len(log.tests) == 0 {
		return nil, ErrNoTests
	}
	return log, nil
}

// add registers s, replacing an earlier test of the same name in place.
func (l *Log) add(s *Session) {
	if prev, ok := l.byName[s.Name]; ok {
		for i, t := range l.tests {
			if t == prev {
				l.tests[i] = s
				break
			}
		}
	} else {
		l.tests = append(l.tests, s)
	}
	l.byName[s.Name] = s
}

func parseNodeIDs(line string) []string {
	fields := strings.Split(line, ":")[1:]
	seen := make(map[string]bool, len(fields))
	ids := make([]string, 0, len(fields))
	for _, id := range fields {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	SortNodeIDs(ids)
	return ids
}
