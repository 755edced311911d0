package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds the RPV_* environment overrides. Zero values mean unset.
type Env struct {
	Logfile   string `env:"RPV_LOGFILE"`
	Settings  string `env:"RPV_SETTINGS"`
	StepDelay int    `env:"RPV_STEP_DELAY"`
	Log       string `env:"RPV_LOG"`
}

// LoadEnv parses the environment.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// Apply overlays the environment on settings loaded from file.
func (e Env) Apply(s Settings) Settings {
	if e.StepDelay != 0 {
		s.NextStepDelay = e.StepDelay
	}
	return s.Normalize()
}
