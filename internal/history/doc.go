// Package history persists a journal of routine runs backed by SQLite.
// Each run records per-step outcomes so users can review what a routine
// actually did, including steps that failed or were skipped.
package history
