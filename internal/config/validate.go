package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateExecution(); err != nil {
		return err
	}
	if err := c.validateScheduler(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateExecution() error {
	if c.Execution.StepGapSeconds < 0 {
		return errors.New("execution.step_gap_seconds must not be negative")
	}
	if c.Execution.StepGapSeconds > 60 {
		return errors.New("execution.step_gap_seconds must be 60 or less")
	}
	return nil
}

func (c *Config) validateScheduler() error {
	if c.Scheduler.CrontabCommand == "" {
		return errors.New("scheduler.crontab_command must be set")
	}
	for _, r := range c.Scheduler.Marker {
		if r == ' ' || r == '#' || r == '\n' {
			return fmt.Errorf("scheduler.marker %q must not contain spaces, '#', or newlines", c.Scheduler.Marker)
		}
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.RetentionDays < 0 {
		return errors.New("history.retention_days must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
