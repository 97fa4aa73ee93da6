package testsupport

import (
	"path/filepath"
	"testing"

	"dailyflow/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Execution.StepGapSeconds = 0

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithStepGap sets the pause between executed steps on the test config.
func WithStepGap(seconds float64) ConfigOption {
	return func(c *config.Config) {
		c.Execution.StepGapSeconds = seconds
	}
}

// WithHistoryDisabled turns off the run journal on the test config.
func WithHistoryDisabled() ConfigOption {
	return func(c *config.Config) {
		c.History.Enabled = false
	}
}
