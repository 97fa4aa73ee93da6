package daemon

import (
	"context"
	"sync"
	"testing"

	"dailyflow/internal/config"
	"dailyflow/internal/executor"
	"dailyflow/internal/history"
	"dailyflow/internal/logging"
	"dailyflow/internal/routine"
	"dailyflow/internal/testsupport"
)

type fakeDesktop struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeDesktop) note(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return nil
}

func (f *fakeDesktop) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.calls...)
}

func (f *fakeDesktop) LaunchApp(_ context.Context, path string) error { return f.note("launch") }
func (f *fakeDesktop) OpenURL(_ context.Context, url string) error    { return f.note("open") }
func (f *fakeDesktop) ShowMessage(_ context.Context, _, _ string) error {
	return f.note("message")
}
func (f *fakeDesktop) PlayMusic(_ context.Context, _, _ string) error { return f.note("music") }
func (f *fakeDesktop) MuteAudio(context.Context) error                { return f.note("mute") }

func newTestDaemon(t *testing.T, cfg *config.Config, desk *fakeDesktop) (*Daemon, *routine.Store) {
	t.Helper()

	store := testsupport.MustOpenStore(t, cfg)
	exec := executor.New(cfg, desk, logging.NewNop())
	hist, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	d, err := New(cfg, store, exec, hist, logging.NewNop())
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	t.Cleanup(func() {
		_ = d.Close()
	})
	return d, store
}

func addScheduled(t *testing.T, store *routine.Store, name, at string) routine.Routine {
	t.Helper()
	msg, _ := routine.NewShowMessage("", name)
	r, err := store.Add(routine.Routine{
		Name:          name,
		Actions:       []routine.Action{msg},
		ScheduledTime: at,
		Enabled:       true,
	})
	if err != nil {
		t.Fatalf("add routine %s: %v", name, err)
	}
	return r
}

func TestStartRegistersScheduledRoutines(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	desk := &fakeDesktop{}
	d, store := newTestDaemon(t, cfg, desk)

	scheduled := addScheduled(t, store, "Wind Down", "21:00")
	unscheduled, _ := routine.NewShowMessage("", "whenever")
	if _, err := store.Add(routine.Routine{Name: "Unscheduled", Actions: []routine.Action{unscheduled}, Enabled: true}); err != nil {
		t.Fatalf("add unscheduled: %v", err)
	}

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer d.Stop()

	ids := d.Scheduled()
	if len(ids) != 1 || ids[0] != scheduled.ID {
		t.Fatalf("expected only the scheduled routine registered, got %v", ids)
	}
}

func TestSecondInstanceRefused(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	desk := &fakeDesktop{}
	d, _ := newTestDaemon(t, cfg, desk)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer d.Stop()

	second, _ := newTestDaemon(t, cfg, desk)
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("expected second daemon start to fail while lock held")
	}
}

func TestStopReleasesLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	desk := &fakeDesktop{}
	d, _ := newTestDaemon(t, cfg, desk)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	d.Stop()

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("restart after stop: %v", err)
	}
	d.Stop()
}

func TestFireExecutesFreshRoutineState(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	desk := &fakeDesktop{}
	d, store := newTestDaemon(t, cfg, desk)

	r := addScheduled(t, store, "Morning", "07:00")
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer d.Stop()

	d.fire(r.ID)
	if got := desk.recorded(); len(got) != 1 || got[0] != "message" {
		t.Fatalf("expected one message dispatch, got %v", got)
	}

	// Disabling after registration must suppress the trigger.
	r.Enabled = false
	if err := store.Update(r); err != nil {
		t.Fatalf("update: %v", err)
	}
	d.fire(r.ID)
	if got := desk.recorded(); len(got) != 1 {
		t.Fatalf("disabled routine should not run, got %v", got)
	}
}

func TestFireJournalsScheduledRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	desk := &fakeDesktop{}
	d, store := newTestDaemon(t, cfg, desk)

	r := addScheduled(t, store, "Morning", "07:00")
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer d.Stop()

	d.fire(r.ID)

	runs, err := d.hist.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one journaled run, got %d", len(runs))
	}
	if runs[0].Trigger != history.TriggerSchedule {
		t.Fatalf("expected schedule trigger, got %q", runs[0].Trigger)
	}
	if runs[0].Executed != 1 {
		t.Fatalf("unexpected counters: %+v", runs[0])
	}
}

func TestReloadPicksUpNewSchedules(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	desk := &fakeDesktop{}
	d, store := newTestDaemon(t, cfg, desk)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer d.Stop()

	if ids := d.Scheduled(); len(ids) != 0 {
		t.Fatalf("expected empty schedule at start, got %v", ids)
	}

	added := addScheduled(t, store, "Focus Block", "09:30")
	if err := d.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	ids := d.Scheduled()
	if len(ids) != 1 || ids[0] != added.ID {
		t.Fatalf("expected reloaded schedule, got %v", ids)
	}
}
