package desktop

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"dailyflow/internal/config"
	"dailyflow/internal/logging"
)

// Capabilities is the narrow surface the executor needs from the host desktop.
// Implementations perform one step each; the executor owns ordering and
// failure isolation.
type Capabilities interface {
	LaunchApp(ctx context.Context, appPath string) error
	OpenURL(ctx context.Context, url string) error
	ShowMessage(ctx context.Context, title, message string) error
	PlayMusic(ctx context.Context, url, command string) error
	MuteAudio(ctx context.Context) error
}

// commandRunner separates command construction from process execution so the
// argument plumbing stays testable without touching the real desktop.
type commandRunner interface {
	// start launches a command without waiting for it to exit.
	start(ctx context.Context, name string, args ...string) error
	// run executes a command and waits for completion.
	run(ctx context.Context, name string, args ...string) error
}

type execRunner struct{}

func (execRunner) start(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap the child in the background; launches are fire-and-forget.
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func (execRunner) run(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(out))
		if detail != "" {
			return fmt.Errorf("%s: %w: %s", name, err, detail)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// System implements Capabilities with the external commands named in config.
type System struct {
	tools  config.Tools
	logger *slog.Logger
	runner commandRunner
}

// NewSystem builds the production desktop backed by exec.
func NewSystem(tools config.Tools, logger *slog.Logger) *System {
	return &System{
		tools:  tools,
		logger: logging.WithComponent(logger, "desktop"),
		runner: execRunner{},
	}
}

// LaunchApp starts a desktop application and does not wait for it to exit.
func (s *System) LaunchApp(ctx context.Context, appPath string) error {
	appPath = strings.TrimSpace(appPath)
	if appPath == "" {
		return fmt.Errorf("launch app: empty path")
	}
	if err := s.runner.start(ctx, appPath); err != nil {
		return fmt.Errorf("launch %s: %w", appPath, err)
	}
	s.logger.Debug("application launched", logging.String("path", appPath))
	return nil
}

// OpenURL opens a URL in the default browser via the configured opener.
func (s *System) OpenURL(ctx context.Context, url string) error {
	normalized := NormalizeURL(url)
	if normalized == "" {
		return fmt.Errorf("open url: empty url")
	}
	if err := s.runner.start(ctx, s.tools.OpenCommand, normalized); err != nil {
		return fmt.Errorf("open %s: %w", normalized, err)
	}
	s.logger.Debug("url opened", logging.String("url", normalized))
	return nil
}

// ShowMessage displays a desktop notification.
func (s *System) ShowMessage(ctx context.Context, title, message string) error {
	if strings.TrimSpace(title) == "" {
		title = "DailyFlow"
	}
	if err := s.runner.run(ctx, s.tools.NotifyCommand, title, message); err != nil {
		return fmt.Errorf("show message: %w", err)
	}
	return nil
}

// PlayMusic opens a music URL in the default handler or, when a command is
// configured instead, runs it through the shell.
func (s *System) PlayMusic(ctx context.Context, url, command string) error {
	if strings.TrimSpace(url) != "" {
		return s.OpenURL(ctx, url)
	}
	command = strings.TrimSpace(command)
	if command == "" {
		return fmt.Errorf("play music: no url or command")
	}
	if err := s.runner.start(ctx, s.tools.Shell, "-c", command); err != nil {
		return fmt.Errorf("play music: %w", err)
	}
	return nil
}

// MuteAudio mutes the default sink, falling back to the secondary mixer tool
// when the primary one fails.
func (s *System) MuteAudio(ctx context.Context) error {
	primaryErr := s.runner.run(ctx, s.tools.MixerCommand, "set-sink-mute", "@DEFAULT_SINK@", "1")
	if primaryErr == nil {
		return nil
	}
	if strings.TrimSpace(s.tools.MixerFallback) == "" {
		return fmt.Errorf("mute audio: %w", primaryErr)
	}
	if err := s.runner.run(ctx, s.tools.MixerFallback, "-q", "set", "Master", "mute"); err != nil {
		return fmt.Errorf("mute audio: %w (fallback: %v)", primaryErr, err)
	}
	s.logger.Debug("muted via fallback mixer", logging.Error(primaryErr))
	return nil
}

// NormalizeURL prefixes scheme-less values with https:// so bare hostnames
// stored in routines still open.
func NormalizeURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return ""
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "https://" + url
	}
	return url
}
