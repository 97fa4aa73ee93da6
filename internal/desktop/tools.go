package desktop

import (
	"fmt"
	"os/exec"
	"strings"

	"dailyflow/internal/config"
)

// Requirement defines an external command DailyFlow relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the external commands the configured tools resolve to.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{Name: "URL opener", Command: cfg.Tools.OpenCommand, Description: "opens websites and music URLs"},
		{Name: "Notifier", Command: cfg.Tools.NotifyCommand, Description: "shows desktop messages"},
		{Name: "Audio mixer", Command: cfg.Tools.MixerCommand, Description: "mutes audio for Do Not Disturb"},
		{Name: "Mixer fallback", Command: cfg.Tools.MixerFallback, Description: "backup mute command", Optional: true},
		{Name: "Shell", Command: cfg.Tools.Shell, Description: "runs play_music commands"},
		{Name: "Crontab", Command: cfg.Scheduler.CrontabCommand, Description: "registers scheduled routines"},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
