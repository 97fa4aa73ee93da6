package routine

import "errors"

var (
	// ErrNotFound marks lookups for a routine id or name that is not in the store.
	ErrNotFound = errors.New("routine not found")

	// ErrPersistence marks a routines file that exists but cannot be read or
	// parsed. Callers decide whether to surface it or reset to defaults;
	// the store never swallows it.
	ErrPersistence = errors.New("persistence error")
)
