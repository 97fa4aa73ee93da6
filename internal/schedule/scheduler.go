package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"dailyflow/internal/config"
	"dailyflow/internal/logging"
	"dailyflow/internal/routine"
)

// ErrScheduler wraps failures talking to the OS task scheduler. Callers can
// match it with errors.Is without caring which crontab invocation broke.
var ErrScheduler = errors.New("scheduler error")

// Entry is one registered trigger as read back from the user crontab.
type Entry struct {
	RoutineID   string
	RoutineName string
	Time        string
}

// Scheduler projects routine schedules onto the user's crontab. Each managed
// line carries a trailing marker comment so registrations survive round trips
// and foreign crontab lines are never touched.
type Scheduler struct {
	crontab string
	marker  string
	exe     string
	runner  commandRunner
	logger  *slog.Logger
}

type commandRunner interface {
	run(ctx context.Context, stdin string, name string, args ...string) (string, error)
}

type execRunner struct{}

func (execRunner) run(ctx context.Context, stdin string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// New builds a crontab-backed scheduler. Registered entries invoke the
// current executable with --routine, so moving the binary requires
// re-registering schedules.
func New(cfg *config.Config, logger *slog.Logger) *Scheduler {
	exe, err := os.Executable()
	if err != nil {
		exe = "dailyflow"
	}
	return &Scheduler{
		crontab: cfg.Scheduler.CrontabCommand,
		marker:  cfg.Scheduler.Marker,
		exe:     exe,
		runner:  execRunner{},
		logger:  logging.WithComponent(logger, "schedule"),
	}
}

// Register installs or replaces the crontab line for the routine. The routine
// must carry a scheduled time.
func (s *Scheduler) Register(ctx context.Context, r routine.Routine) error {
	if !r.Scheduled() {
		return fmt.Errorf("%w: routine %q has no scheduled time", ErrScheduler, r.Name)
	}
	hour, minute, err := routine.ParseScheduledTime(r.ScheduledTime)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrScheduler, err)
	}

	lines, err := s.readLines(ctx)
	if err != nil {
		return err
	}
	lines = s.withoutRoutine(lines, r.ID)
	lines = append(lines, s.formatLine(hour, minute, r))

	if err := s.writeLines(ctx, lines); err != nil {
		return err
	}
	s.logger.Info("schedule registered",
		logging.String(logging.FieldRoutine, r.Name),
		logging.String(logging.FieldRoutineID, r.ID),
		logging.String("time", r.ScheduledTime),
	)
	return nil
}

// Unregister removes the crontab line for the routine ID. Removing an
// unregistered routine is a no-op.
func (s *Scheduler) Unregister(ctx context.Context, routineID string) error {
	lines, err := s.readLines(ctx)
	if err != nil {
		return err
	}
	remaining := s.withoutRoutine(lines, routineID)
	if len(remaining) == len(lines) {
		return nil
	}
	if err := s.writeLines(ctx, remaining); err != nil {
		return err
	}
	s.logger.Info("schedule removed", logging.String(logging.FieldRoutineID, routineID))
	return nil
}

// List returns the entries currently managed by this tool, in crontab order.
func (s *Scheduler) List(ctx context.Context) ([]Entry, error) {
	lines, err := s.readLines(ctx)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	for _, line := range lines {
		if entry, ok := s.parseLine(line); ok {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (s *Scheduler) tag(routineID string) string {
	return fmt.Sprintf("# %s:%s", s.marker, routineID)
}

func (s *Scheduler) formatLine(hour, minute int, r routine.Routine) string {
	return fmt.Sprintf("%d %d * * * %q --routine %q %s", minute, hour, s.exe, r.Name, s.tag(r.ID))
}

func (s *Scheduler) withoutRoutine(lines []string, routineID string) []string {
	kept := make([]string, 0, len(lines))
	suffix := s.tag(routineID)
	for _, line := range lines {
		if strings.HasSuffix(strings.TrimSpace(line), suffix) {
			continue
		}
		kept = append(kept, line)
	}
	return kept
}

func (s *Scheduler) parseLine(line string) (Entry, bool) {
	trimmed := strings.TrimSpace(line)
	idx := strings.LastIndex(trimmed, "# "+s.marker+":")
	if idx < 0 {
		return Entry{}, false
	}
	id := strings.TrimSpace(trimmed[idx+len("# "+s.marker+":"):])

	fields := strings.Fields(trimmed[:idx])
	if len(fields) < 5 {
		return Entry{}, false
	}
	minute, err := strconv.Atoi(fields[0])
	if err != nil {
		return Entry{}, false
	}
	hour, err := strconv.Atoi(fields[1])
	if err != nil {
		return Entry{}, false
	}

	name := ""
	for i, field := range fields {
		if field == "--routine" && i+1 < len(fields) {
			name = strings.Trim(strings.Join(fields[i+1:], " "), `"`)
			break
		}
	}
	return Entry{
		RoutineID:   id,
		RoutineName: name,
		Time:        fmt.Sprintf("%02d:%02d", hour, minute),
	}, true
}

func (s *Scheduler) readLines(ctx context.Context) ([]string, error) {
	out, err := s.runner.run(ctx, "", s.crontab, "-l")
	if err != nil {
		// An empty crontab is not an error, but crontab -l reports it as one.
		if strings.Contains(out, "no crontab") {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: crontab -l: %v: %s", ErrScheduler, err, strings.TrimSpace(out))
	}
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *Scheduler) writeLines(ctx context.Context, lines []string) error {
	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	if out, err := s.runner.run(ctx, content, s.crontab, "-"); err != nil {
		return fmt.Errorf("%w: crontab write: %v: %s", ErrScheduler, err, strings.TrimSpace(out))
	}
	return nil
}
