package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Execution contains pacing settings for routine runs.
type Execution struct {
	StepGapSeconds float64 `toml:"step_gap_seconds"`
}

// Tools names the external commands used to carry out desktop actions.
type Tools struct {
	OpenCommand   string `toml:"open_command"`
	NotifyCommand string `toml:"notify_command"`
	MixerCommand  string `toml:"mixer_command"`
	MixerFallback string `toml:"mixer_fallback"`
	Shell         string `toml:"shell"`
}

// Scheduler contains configuration for the OS crontab projection.
type Scheduler struct {
	CrontabCommand string `toml:"crontab_command"`
	Marker         string `toml:"marker"`
}

// History contains configuration for the run journal.
type History struct {
	Enabled       bool `toml:"enabled"`
	RetentionDays int  `toml:"retention_days"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for DailyFlow.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - Execution: pacing between routine steps
//   - Tools: external desktop commands (URL opener, notifier, audio mixer)
//   - Scheduler: crontab binary and entry marker
//   - History: SQLite run journal settings
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Execution Execution `toml:"execution"`
	Tools     Tools     `toml:"tools"`
	Scheduler Scheduler `toml:"scheduler"`
	History   History   `toml:"history"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/dailyflow/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("dailyflow.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the store, journal, and logger need.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RoutinesPath returns the location of the persisted routine document.
func (c *Config) RoutinesPath() string {
	return filepath.Join(c.Paths.DataDir, "routines.json")
}

// HistoryPath returns the location of the run journal database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.DataDir, "history.db")
}

// DaemonLockPath returns the lock file used to enforce a single resident scheduler.
func (c *Config) DaemonLockPath() string {
	return filepath.Join(c.Paths.LogDir, "dailyflowd.lock")
}

// CreateSample writes the embedded sample configuration to target.
func CreateSample(target string) error {
	if err := os.WriteFile(target, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
