package routine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"dailyflow/internal/config"
)

// document is the shape of the persisted routines file.
type document struct {
	Routines []Routine `json:"routines"`
}

// Store owns the persisted routine collection. All mutations rewrite the full
// file atomically under an in-process mutex plus a file lock, so a CLI run and
// the resident scheduler cannot interleave read-modify-write cycles.
type Store struct {
	path string
	fl   *flock.Flock

	mu       sync.Mutex
	routines []Routine
}

// Open loads the routines file, seeding a sample routine when the file does
// not exist yet. A file that exists but cannot be parsed yields an error
// wrapping ErrPersistence.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	path := cfg.RoutinesPath()
	s := &Store{
		path: path,
		fl:   flock.New(path + ".lock"),
	}

	if err := s.fl.Lock(); err != nil {
		return nil, fmt.Errorf("acquire store lock: %w", err)
	}
	defer func() {
		_ = s.fl.Unlock()
	}()

	routines, err := readDocument(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		seeded := SampleRoutine()
		seeded.ID = uuid.NewString()
		routines = []Routine{seeded}
		if err := writeDocument(path, routines); err != nil {
			return nil, err
		}
	}

	s.routines = routines
	return s, nil
}

// Path returns the location of the persisted document.
func (s *Store) Path() string {
	return s.path
}

// Reload re-reads the document from disk, picking up edits made by other
// processes since the store was opened.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fl.RLock(); err != nil {
		return fmt.Errorf("acquire store lock: %w", err)
	}
	defer func() {
		_ = s.fl.Unlock()
	}()

	routines, err := readDocument(s.path)
	if err != nil {
		return err
	}
	s.routines = routines
	return nil
}

// List returns a snapshot of all routines in insertion order.
func (s *Store) List() []Routine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Routine, 0, len(s.routines))
	for _, r := range s.routines {
		out = append(out, r.Clone())
	}
	return out
}

// GetByID returns the routine with the given id.
func (s *Store) GetByID(id string) (Routine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.routines {
		if r.ID == id {
			return r.Clone(), nil
		}
	}
	return Routine{}, fmt.Errorf("%w: id %q", ErrNotFound, id)
}

// GetByName returns the routine whose name matches exactly.
func (s *Store) GetByName(name string) (Routine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.routines {
		if r.Name == name {
			return r.Clone(), nil
		}
	}
	return Routine{}, fmt.Errorf("%w: name %q", ErrNotFound, name)
}

// Add validates and appends a routine, assigning an id when absent, then
// persists the collection. The stored routine is returned.
func (s *Store) Add(r Routine) (Routine, error) {
	if err := r.Validate(); err != nil {
		return Routine{}, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	stored := r.Clone()
	err := s.mutate(func(routines []Routine) ([]Routine, error) {
		for _, existing := range routines {
			if existing.ID == stored.ID {
				return nil, fmt.Errorf("routine id %q already exists", stored.ID)
			}
		}
		return append(routines, stored), nil
	})
	if err != nil {
		return Routine{}, err
	}
	return stored.Clone(), nil
}

// Update replaces the routine with the same id.
func (s *Store) Update(r Routine) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.ID == "" {
		return fmt.Errorf("%w: routine has no id", ErrNotFound)
	}
	updated := r.Clone()
	return s.mutate(func(routines []Routine) ([]Routine, error) {
		for i, existing := range routines {
			if existing.ID == updated.ID {
				routines[i] = updated
				return routines, nil
			}
		}
		return nil, fmt.Errorf("%w: id %q", ErrNotFound, updated.ID)
	})
}

// Remove deletes the routine with the given id.
func (s *Store) Remove(id string) error {
	return s.mutate(func(routines []Routine) ([]Routine, error) {
		for i, existing := range routines {
			if existing.ID == id {
				return append(routines[:i], routines[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("%w: id %q", ErrNotFound, id)
	})
}

// mutate runs apply against the freshest on-disk state and persists the
// result, all inside the store's critical section. Re-reading under the lock
// keeps concurrent processes from losing each other's writes.
func (s *Store) mutate(apply func([]Routine) ([]Routine, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fl.Lock(); err != nil {
		return fmt.Errorf("acquire store lock: %w", err)
	}
	defer func() {
		_ = s.fl.Unlock()
	}()

	routines, err := readDocument(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		routines = append([]Routine{}, s.routines...)
	}

	updated, err := apply(routines)
	if err != nil {
		return err
	}

	if err := writeDocument(s.path, updated); err != nil {
		return err
	}
	s.routines = updated
	return nil
}

func readDocument(path string) ([]Routine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrPersistence, path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrPersistence, path, err)
	}
	for i := range doc.Routines {
		if err := doc.Routines[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: routine %d: %v", ErrPersistence, path, i, err)
		}
	}
	return doc.Routines, nil
}

// writeDocument rewrites the full file atomically: temp file in the same
// directory, then rename, so a crash never leaves a truncated document.
func writeDocument(path string, routines []Routine) error {
	doc := document{Routines: routines}
	if doc.Routines == nil {
		doc.Routines = []Routine{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal routines: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".routines-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrPersistence, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: write %s: %v", ErrPersistence, tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: close %s: %v", ErrPersistence, tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: replace %s: %v", ErrPersistence, path, err)
	}
	return nil
}
