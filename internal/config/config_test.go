package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{200, 200},
		{0, 10},
		{-5, 10},
		{9, 10},
		{15, 10},
		{1999, 1990},
		{2000, 2000},
		{5000, 2000},
	}
	for _, tt := range tests {
		got := Settings{NextStepDelay: tt.in}.Normalize().NextStepDelay
		if got != tt.want {
			t.Errorf("Normalize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestDelay(t *testing.T) {
	if got := Default().Delay(); got != 200*time.Millisecond {
		t.Errorf("Default().Delay() = %v, want 200ms", got)
	}
}

func TestWithDelayStep(t *testing.T) {
	s := Default().WithDelayStep(3)
	if s.NextStepDelay != 230 {
		t.Errorf("WithDelayStep(3) = %d, want 230", s.NextStepDelay)
	}
	if got := (Settings{NextStepDelay: 10}).WithDelayStep(-1).NextStepDelay; got != MinStepDelay {
		t.Errorf("stepping below the minimum = %d, want %d", got, MinStepDelay)
	}
}

func TestLoadMissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s != Default() {
		t.Errorf("Load(missing) = %+v, want defaults", s)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	if err := Save(path, Settings{NextStepDelay: 555}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"next_step_delay": 550`) {
		t.Errorf("saved file = %s", data)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.NextStepDelay != 550 {
		t.Errorf("NextStepDelay = %d, want 550", s.NextStepDelay)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	os.WriteFile(path, []byte("{not json"), 0o644)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed settings")
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("RPV_LOGFILE", "/tmp/trace.log")
	t.Setenv("RPV_STEP_DELAY", "1234")

	e, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if e.Logfile != "/tmp/trace.log" {
		t.Errorf("Logfile = %q", e.Logfile)
	}
	if got := e.Apply(Default()).NextStepDelay; got != 1230 {
		t.Errorf("Apply().NextStepDelay = %d, want 1230", got)
	}
}

func TestLoadEnvError(t *testing.T) {
	t.Setenv("RPV_STEP_DELAY", "fast")
	_, err := LoadEnv()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestEnvApplyUnset(t *testing.T) {
	s := Settings{NextStepDelay: 400}
	if got := (Env{}).Apply(s); got != s {
		t.Errorf("Apply with empty env = %+v, want %+v", got, s)
	}
}
