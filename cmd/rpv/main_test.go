package main

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// syncRecorder is a log sink that only counts as written once synced.
type syncRecorder struct {
	pending bytes.Buffer
	flushed bytes.Buffer
	syncs   int
}

func (s *syncRecorder) Write(p []byte) (int, error) { return s.pending.Write(p) }

func (s *syncRecorder) Sync() error {
	s.syncs++
	s.flushed.Write(s.pending.Bytes())
	s.pending.Reset()
	return nil
}

// withExit swaps the process exit and stderr for the duration of a test.
func withExit(t *testing.T) (*int, *bytes.Buffer) {
	t.Helper()
	code := -1
	var errOut bytes.Buffer
	oldExit, oldStderr, oldLogger := osExit, stderr, logger
	osExit = func(c int) { code = c }
	stderr = &errOut
	t.Cleanup(func() { osExit, stderr, logger = oldExit, oldStderr, oldLogger })
	return &code, &errOut
}

func TestExitfFlushesLogger(t *testing.T) {
	code, errOut := withExit(t)
	sink := &syncRecorder{}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), sink, zapcore.InfoLevel)
	logger = zap.New(core)

	logger.Error("open trace log", zap.String("logfile", "missing.log"))
	exitf("no such file %q", "missing.log")

	if *code != 1 {
		t.Errorf("exit code = %d, want 1", *code)
	}
	if sink.syncs == 0 {
		t.Error("logger was not synced before exit")
	}
	if !strings.Contains(sink.flushed.String(), "open trace log") {
		t.Errorf("flushed log = %q", sink.flushed.String())
	}
	if got := errOut.String(); got != "rpv: no such file \"missing.log\"\n" {
		t.Errorf("stderr = %q", got)
	}
}

func TestExitfBeforeLogger(t *testing.T) {
	code, errOut := withExit(t)
	logger = nil

	exitf("logger: %v", "bad path")

	if *code != 1 {
		t.Errorf("exit code = %d, want 1", *code)
	}
	if !strings.HasPrefix(errOut.String(), "rpv: logger:") {
		t.Errorf("stderr = %q", errOut.String())
	}
}
