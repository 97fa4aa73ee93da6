package routine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Routine is a named, ordered sequence of actions plus schedule metadata.
// Action order is execution order and is preserved across save/load.
type Routine struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Actions       []Action `json:"actions"`
	ScheduledTime string   `json:"scheduled_time,omitempty"`
	Enabled       bool     `json:"enabled"`
}

// Validate checks the routine's own fields and every action it contains.
func (r Routine) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("routine name must not be empty")
	}
	if r.ScheduledTime != "" {
		if _, _, err := ParseScheduledTime(r.ScheduledTime); err != nil {
			return err
		}
	}
	for i, action := range r.Actions {
		if err := action.Validate(); err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
	}
	return nil
}

// Scheduled reports whether the routine carries a schedule time.
func (r Routine) Scheduled() bool {
	return strings.TrimSpace(r.ScheduledTime) != ""
}

// Clone returns a deep copy so callers can hand routines across goroutines
// without sharing the action slice.
func (r Routine) Clone() Routine {
	cp := r
	cp.Actions = make([]Action, len(r.Actions))
	copy(cp.Actions, r.Actions)
	return cp
}

// ParseScheduledTime parses a "HH:MM" time-of-day value.
func ParseScheduledTime(value string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("scheduled time %q must be HH:MM", value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("scheduled time %q has an invalid hour", value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("scheduled time %q has an invalid minute", value)
	}
	return hour, minute, nil
}
