// Package config loads replayer settings from the settings file and the
// environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const (
	MinStepDelay     = 10
	MaxStepDelay     = 2000
	DefaultStepDelay = 200

	stepDelayGranularity = 10
)

// Settings is the persisted replayer configuration.
type Settings struct {
	// NextStepDelay is the pause between automatic steps in milliseconds.
	NextStepDelay int `json:"next_step_delay"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{NextStepDelay: DefaultStepDelay}
}

// Normalize clamps the delay to [MinStepDelay, MaxStepDelay] and rounds it
// down to a multiple of 10 ms.
func (s Settings) Normalize() Settings {
	d := s.NextStepDelay
	if d < MinStepDelay {
		d = MinStepDelay
	}
	if d > MaxStepDelay {
		d = MaxStepDelay
	}
	d -= d % stepDelayGranularity
	return Settings{NextStepDelay: d}
}

// Delay is the normalized step delay.
func (s Settings) Delay() time.Duration {
	return time.Duration(s.Normalize().NextStepDelay) * time.Millisecond
}

// WithDelayStep shifts the delay by steps multiples of 10 ms.
func (s Settings) WithDelayStep(steps int) Settings {
	s.NextStepDelay += steps * stepDelayGranularity
	return s.Normalize()
}

// DefaultPath is the settings file under the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "rpv", "settings.json"), nil
}

// Load reads settings from path. A missing file yields the defaults.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	s := Default()
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s.Normalize(), nil
}

// Save writes s to path, creating parent directories.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	data, err := json.MarshalIndent(s.Normalize(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
