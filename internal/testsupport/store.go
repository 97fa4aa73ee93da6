package testsupport

import (
	"testing"

	"dailyflow/internal/config"
	"dailyflow/internal/routine"
)

// MustOpenStore opens a routine.Store for tests.
func MustOpenStore(t testing.TB, cfg *config.Config) *routine.Store {
	t.Helper()

	store, err := routine.Open(cfg)
	if err != nil {
		t.Fatalf("routine.Open: %v", err)
	}
	return store
}

// AddRoutine stores a minimal enabled routine with the given name and actions.
func AddRoutine(t testing.TB, store *routine.Store, name string, actions ...routine.Action) routine.Routine {
	t.Helper()

	stored, err := store.Add(routine.Routine{
		Name:    name,
		Actions: actions,
		Enabled: true,
	})
	if err != nil {
		t.Fatalf("store.Add(%q): %v", name, err)
	}
	return stored
}
