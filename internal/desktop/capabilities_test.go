package desktop

import (
	"context"
	"errors"
	"strings"
	"testing"

	"dailyflow/internal/config"
	"dailyflow/internal/logging"
)

type recordedCall struct {
	mode string
	name string
	args []string
}

type fakeRunner struct {
	calls   []recordedCall
	failOn  map[string]error
	started int
}

func (f *fakeRunner) start(ctx context.Context, name string, args ...string) error {
	f.calls = append(f.calls, recordedCall{mode: "start", name: name, args: args})
	f.started++
	if err, ok := f.failOn[name]; ok {
		return err
	}
	return nil
}

func (f *fakeRunner) run(ctx context.Context, name string, args ...string) error {
	f.calls = append(f.calls, recordedCall{mode: "run", name: name, args: args})
	if err, ok := f.failOn[name]; ok {
		return err
	}
	return nil
}

func newTestSystem(runner *fakeRunner) *System {
	tools := config.Default().Tools
	return &System{tools: tools, logger: logging.NewNop(), runner: runner}
}

func TestOpenURLNormalizesScheme(t *testing.T) {
	runner := &fakeRunner{}
	sys := newTestSystem(runner)

	if err := sys.OpenURL(context.Background(), "gmail.com"); err != nil {
		t.Fatalf("OpenURL: %v", err)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("expected one call, got %d", len(runner.calls))
	}
	call := runner.calls[0]
	if call.name != "xdg-open" || call.args[0] != "https://gmail.com" {
		t.Fatalf("unexpected call: %+v", call)
	}
	if call.mode != "start" {
		t.Fatal("opening a url should not wait for the opener")
	}
}

func TestPlayMusicPrefersURL(t *testing.T) {
	runner := &fakeRunner{}
	sys := newTestSystem(runner)

	if err := sys.PlayMusic(context.Background(), "https://radio.example", "mpv song.mp3"); err != nil {
		t.Fatalf("PlayMusic: %v", err)
	}
	if runner.calls[0].name != "xdg-open" {
		t.Fatalf("expected url path, got %+v", runner.calls[0])
	}
}

func TestPlayMusicCommandGoesThroughShell(t *testing.T) {
	runner := &fakeRunner{}
	sys := newTestSystem(runner)

	if err := sys.PlayMusic(context.Background(), "", "mpv ~/music/morning.mp3"); err != nil {
		t.Fatalf("PlayMusic: %v", err)
	}
	call := runner.calls[0]
	if call.name != "/bin/sh" || call.args[0] != "-c" || !strings.Contains(call.args[1], "mpv") {
		t.Fatalf("unexpected shell invocation: %+v", call)
	}
}

func TestPlayMusicRequiresSource(t *testing.T) {
	sys := newTestSystem(&fakeRunner{})
	if err := sys.PlayMusic(context.Background(), "", "  "); err == nil {
		t.Fatal("expected error when neither url nor command is set")
	}
}

func TestShowMessageDefaultsTitle(t *testing.T) {
	runner := &fakeRunner{}
	sys := newTestSystem(runner)

	if err := sys.ShowMessage(context.Background(), "", "hello"); err != nil {
		t.Fatalf("ShowMessage: %v", err)
	}
	call := runner.calls[0]
	if call.args[0] != "DailyFlow" || call.args[1] != "hello" {
		t.Fatalf("unexpected notify call: %+v", call)
	}
}

func TestMuteAudioFallsBack(t *testing.T) {
	runner := &fakeRunner{failOn: map[string]error{"pactl": errors.New("no pulse")}}
	sys := newTestSystem(runner)

	if err := sys.MuteAudio(context.Background()); err != nil {
		t.Fatalf("MuteAudio should succeed via fallback: %v", err)
	}
	if len(runner.calls) != 2 || runner.calls[1].name != "amixer" {
		t.Fatalf("expected fallback mixer call, got %+v", runner.calls)
	}
}

func TestMuteAudioReportsBothFailures(t *testing.T) {
	runner := &fakeRunner{failOn: map[string]error{
		"pactl":  errors.New("no pulse"),
		"amixer": errors.New("no alsa"),
	}}
	sys := newTestSystem(runner)

	err := sys.MuteAudio(context.Background())
	if err == nil {
		t.Fatal("expected error when both mixers fail")
	}
	if !strings.Contains(err.Error(), "fallback") {
		t.Fatalf("error should mention fallback: %v", err)
	}
}

func TestCheckBinariesReportsMissing(t *testing.T) {
	statuses := CheckBinaries([]Requirement{
		{Name: "Shell", Command: "/bin/sh"},
		{Name: "Ghost", Command: "definitely-not-a-binary-xyz"},
		{Name: "Unset", Command: ""},
	})
	if !statuses[0].Available {
		t.Fatalf("expected /bin/sh to be available: %+v", statuses[0])
	}
	if statuses[1].Available || statuses[1].Detail == "" {
		t.Fatalf("expected missing binary to be reported: %+v", statuses[1])
	}
	if statuses[2].Available || statuses[2].Detail != "command not configured" {
		t.Fatalf("expected unconfigured command detail: %+v", statuses[2])
	}
}
