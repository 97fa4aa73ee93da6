package routine_test

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"dailyflow/internal/routine"
	"dailyflow/internal/testsupport"
)

func TestOpenSeedsSampleRoutine(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	routines := store.List()
	if len(routines) != 1 {
		t.Fatalf("expected one seeded routine, got %d", len(routines))
	}
	if routines[0].Name != "Morning Startup" {
		t.Fatalf("unexpected seeded routine: %q", routines[0].Name)
	}
	if routines[0].ID == "" {
		t.Fatal("seeded routine should have an id")
	}
	if _, err := os.Stat(cfg.RoutinesPath()); err != nil {
		t.Fatalf("seed should be persisted: %v", err)
	}
}

func TestRoundTripPreservesContentAndOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	openApp, _ := routine.NewOpenApp("/usr/bin/editor")
	delay, _ := routine.NewDelay(1.5)
	site, _ := routine.NewOpenWebsite("https://example.com")
	added, err := store.Add(routine.Routine{
		Name:          "Evening",
		Description:   "wind down",
		Actions:       []routine.Action{openApp, delay, site},
		ScheduledTime: "21:30",
		Enabled:       true,
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	loaded, err := reopened.GetByID(added.ID)
	if err != nil {
		t.Fatalf("GetByID after reopen: %v", err)
	}
	if loaded.Name != "Evening" || loaded.Description != "wind down" || loaded.ScheduledTime != "21:30" {
		t.Fatalf("metadata did not survive round trip: %+v", loaded)
	}
	wantKinds := []routine.Kind{routine.KindOpenApp, routine.KindDelay, routine.KindOpenWebsite}
	if len(loaded.Actions) != len(wantKinds) {
		t.Fatalf("expected %d actions, got %d", len(wantKinds), len(loaded.Actions))
	}
	for i, kind := range wantKinds {
		if loaded.Actions[i].Kind != kind {
			t.Fatalf("action %d: got %s want %s", i, loaded.Actions[i].Kind, kind)
		}
	}
	if loaded.Actions[1].Params.Seconds != 1.5 {
		t.Fatalf("delay seconds did not survive: %v", loaded.Actions[1].Params.Seconds)
	}
}

func TestListPreservesInsertionOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	testsupport.AddRoutine(t, store, "A")
	testsupport.AddRoutine(t, store, "B")
	testsupport.AddRoutine(t, store, "C")

	names := make([]string, 0)
	for _, r := range store.List() {
		names = append(names, r.Name)
	}
	want := []string{"Morning Startup", "A", "B", "C"}
	if len(names) != len(want) {
		t.Fatalf("got %v want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("position %d: got %q want %q", i, names[i], want[i])
		}
	}
}

func TestUpdateAndRemove(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	added := testsupport.AddRoutine(t, store, "Workday")

	added.Description = "updated"
	if err := store.Update(added); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := store.GetByID(added.ID)
	if err != nil || got.Description != "updated" {
		t.Fatalf("update not visible: %+v err=%v", got, err)
	}

	if err := store.Remove(added.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := store.GetByID(added.ID); !errors.Is(err, routine.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
	if err := store.Remove(added.ID); !errors.Is(err, routine.ErrNotFound) {
		t.Fatalf("removing unknown id should fail with ErrNotFound, got %v", err)
	}
}

func TestLookupErrors(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.GetByName("Missing"); !errors.Is(err, routine.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Update(routine.Routine{ID: "nope", Name: "x", Enabled: true}); !errors.Is(err, routine.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenFailsOnCorruptFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if err := os.WriteFile(cfg.RoutinesPath(), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	if _, err := routine.Open(cfg); !errors.Is(err, routine.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestOpenFailsOnInvalidAction(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	content := `{"routines":[{"id":"r1","name":"Bad","actions":[{"action_type":"delay","parameters":{"seconds":-2}}],"enabled":true}]}`
	if err := os.WriteFile(cfg.RoutinesPath(), []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if _, err := routine.Open(cfg); !errors.Is(err, routine.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestConcurrentAddsLoseNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	const writers = 8
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(n int) {
			defer wg.Done()
			if _, err := store.Add(routine.Routine{Name: fmt.Sprintf("Routine %d", n), Enabled: true}); err != nil {
				t.Errorf("Add %d: %v", n, err)
			}
		}(i)
	}
	wg.Wait()

	reopened := testsupport.MustOpenStore(t, cfg)
	got := reopened.List()
	// Seeded sample plus every concurrent addition.
	if len(got) != writers+1 {
		t.Fatalf("expected %d routines, got %d", writers+1, len(got))
	}
}

func TestCrossProcessStyleMutationsMerge(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := testsupport.MustOpenStore(t, cfg)
	second := testsupport.MustOpenStore(t, cfg)

	testsupport.AddRoutine(t, first, "From First")
	testsupport.AddRoutine(t, second, "From Second")

	reopened := testsupport.MustOpenStore(t, cfg)
	names := map[string]bool{}
	for _, r := range reopened.List() {
		names[r.Name] = true
	}
	if !names["From First"] || !names["From Second"] {
		t.Fatalf("expected both writes persisted, got %v", names)
	}
}

func TestReloadPicksUpExternalWrites(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := testsupport.MustOpenStore(t, cfg)
	second := testsupport.MustOpenStore(t, cfg)

	testsupport.AddRoutine(t, second, "Added Elsewhere")

	if _, err := first.GetByName("Added Elsewhere"); !errors.Is(err, routine.ErrNotFound) {
		t.Fatalf("stale handle should not see the write yet: %v", err)
	}
	if err := first.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, err := first.GetByName("Added Elsewhere"); err != nil {
		t.Fatalf("reloaded store should see the external write: %v", err)
	}
}
