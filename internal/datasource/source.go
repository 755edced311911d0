// Package datasource locates and loads the trace log.
package datasource

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/daviddao/replay_viewer/internal/trace"
)

// DefaultLogfile is the trace log name looked up when no path is given.
const DefaultLogfile = "events.log"

// Discover finds the trace log path.
// Priority: explicit path > RPV_LOGFILE (passed as envPath) > events.log in
// CWD > walk up parents.
func Discover(path, envPath string) (string, error) {
	for _, p := range []struct{ name, value string }{{"--logfile", path}, {"RPV_LOGFILE", envPath}} {
		if p.value == "" {
			continue
		}
		if _, err := os.Stat(p.value); err != nil {
			return "", fmt.Errorf("%s=%q: %w", p.name, p.value, os.ErrNotExist)
		}
		abs, err := filepath.Abs(p.value)
		if err != nil {
			return "", fmt.Errorf("resolve absolute path for %s: %w", p.value, err)
		}
		return abs, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, DefaultLogfile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("no trace log found (looked for %s)", DefaultLogfile)
}

// Open discovers and parses the trace log.
func Open(path, envPath string) (*trace.Log, string, error) {
	p, err := Discover(path, envPath)
	if err != nil {
		return nil, "", err
	}
	log, err := trace.ParseFile(p)
	if err != nil {
		return nil, "", err
	}
	return log, p, nil
}
