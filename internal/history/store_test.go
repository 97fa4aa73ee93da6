package history_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dailyflow/internal/executor"
	"dailyflow/internal/history"
	"dailyflow/internal/logging"
	"dailyflow/internal/routine"
	"dailyflow/internal/testsupport"
)

func mustOpen(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(testsupport.NewConfig(t))
	if err != nil {
		t.Fatalf("open history store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func sampleRoutine() routine.Routine {
	return routine.Routine{
		ID:      "routine-1",
		Name:    "Morning Startup",
		Enabled: true,
	}
}

func TestRecorderJournalsRun(t *testing.T) {
	store := mustOpen(t)
	ctx := context.Background()

	rec, err := store.BeginRun(ctx, sampleRoutine(), history.TriggerManual, logging.NewNop())
	if err != nil {
		t.Fatalf("begin run: %v", err)
	}

	open, _ := routine.NewOpenApp("/usr/bin/editor")
	site, _ := routine.NewOpenWebsite("https://example.com")
	rec.OnStepDone(0, open)
	rec.OnStepError(1, site, errors.New("browser missing"))
	rec.OnStepSkipped(2, routine.NewDoNotDisturb())
	rec.Finish(executor.Result{Executed: 1, Failed: 1, Skipped: 1})

	runs, err := store.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one run, got %d", len(runs))
	}
	run := runs[0]
	if run.RoutineName != "Morning Startup" || run.Trigger != history.TriggerManual {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.Executed != 1 || run.Failed != 1 || run.Skipped != 1 || run.Cancelled {
		t.Fatalf("unexpected counters: %+v", run)
	}
	if run.FinishedAt.IsZero() {
		t.Fatal("expected finished timestamp")
	}

	steps, err := store.ListSteps(ctx, run.ID)
	if err != nil {
		t.Fatalf("list steps: %v", err)
	}
	if len(steps) != 3 {
		t.Fatalf("expected three steps, got %d", len(steps))
	}
	if steps[0].Status != history.StepDone || steps[0].ActionKind != "open_app" {
		t.Fatalf("unexpected first step: %+v", steps[0])
	}
	if steps[1].Status != history.StepFailed || steps[1].Detail == "" {
		t.Fatalf("failed step should carry detail: %+v", steps[1])
	}
	if steps[2].Status != history.StepSkipped {
		t.Fatalf("unexpected third step: %+v", steps[2])
	}
}

func TestCancelledRunRecorded(t *testing.T) {
	store := mustOpen(t)
	ctx := context.Background()

	rec, err := store.BeginRun(ctx, sampleRoutine(), history.TriggerSchedule, logging.NewNop())
	if err != nil {
		t.Fatalf("begin run: %v", err)
	}
	rec.Finish(executor.Result{Executed: 2, Cancelled: true})

	runs, err := store.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || !runs[0].Cancelled {
		t.Fatalf("expected one cancelled run, got %+v", runs)
	}
	if runs[0].Trigger != history.TriggerSchedule {
		t.Fatalf("unexpected trigger: %q", runs[0].Trigger)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	store := mustOpen(t)
	ctx := context.Background()

	for _, name := range []string{"First", "Second", "Third"} {
		r := routine.Routine{ID: "id-" + name, Name: name, Enabled: true}
		rec, err := store.BeginRun(ctx, r, history.TriggerManual, logging.NewNop())
		if err != nil {
			t.Fatalf("begin run %s: %v", name, err)
		}
		rec.Finish(executor.Result{})
		time.Sleep(2 * time.Millisecond)
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected limit of two runs, got %d", len(runs))
	}
	if runs[0].RoutineName != "Third" {
		t.Fatalf("expected newest run first, got %+v", runs)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	first, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	rec, err := first.BeginRun(context.Background(), sampleRoutine(), history.TriggerManual, logging.NewNop())
	if err != nil {
		t.Fatalf("begin run: %v", err)
	}
	rec.Finish(executor.Result{Executed: 1})
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer second.Close()

	runs, err := second.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected the journal to survive reopen, got %d runs", len(runs))
	}
}
