package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"dailyflow/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; stale databases are reported rather than silently migrated.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Run is one recorded routine execution.
type Run struct {
	ID          string
	RoutineID   string
	RoutineName string
	Trigger     string
	StartedAt   time.Time
	FinishedAt  time.Time
	Executed    int
	Failed      int
	Skipped     int
	Cancelled   bool
}

// Step is one recorded run step.
type Step struct {
	RunID      string
	Index      int
	ActionKind string
	Status     string
	Detail     string
	RecordedAt time.Time
}

// Step statuses as stored in the journal.
const (
	StepDone    = "done"
	StepFailed  = "failed"
	StepSkipped = "skipped"
)

// Triggers describe what started a run.
const (
	TriggerManual   = "manual"
	TriggerSchedule = "schedule"
)

// Store keeps the run journal in a SQLite database under the data directory.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database. Retention pruning
// runs once on open.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.HistoryPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	if cfg.History.RetentionDays > 0 {
		if err := store.Prune(context.Background(), cfg.History.RetentionDays); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) insertRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, routine_id, routine_name, trigger_source, started_at)
         VALUES (?, ?, ?, ?, ?)`,
		run.ID,
		run.RoutineID,
		run.RoutineName,
		run.Trigger,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (s *Store) insertStep(ctx context.Context, step Step) error {
	detail := sql.NullString{String: step.Detail, Valid: step.Detail != ""}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_steps (run_id, step_index, action_kind, status, detail, recorded_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		step.RunID,
		step.Index,
		step.ActionKind,
		step.Status,
		detail,
		step.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run step: %w", err)
	}
	return nil
}

func (s *Store) finishRun(ctx context.Context, runID string, executed, failed, skipped int, cancelled bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, executed = ?, failed = ?, skipped = ?, cancelled = ?
         WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		executed,
		failed,
		skipped,
		boolToInt(cancelled),
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, routine_id, routine_name, trigger_source, started_at, finished_at,
                executed, failed, skipped, cancelled
         FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListSteps returns the step records for one run in step order.
func (s *Store) ListSteps(ctx context.Context, runID string) ([]Step, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, step_index, action_kind, status, detail, recorded_at
         FROM run_steps WHERE run_id = ? ORDER BY step_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run steps: %w", err)
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var (
			step       Step
			detail     sql.NullString
			recordedAt string
		)
		if err := rows.Scan(&step.RunID, &step.Index, &step.ActionKind, &step.Status, &detail, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan run step: %w", err)
		}
		step.Detail = detail.String
		step.RecordedAt = parseTimestamp(recordedAt)
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

// Prune removes runs that started more than retentionDays ago. Step rows go
// with them via the foreign key cascade.
func (s *Store) Prune(ctx context.Context, retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE started_at < ?", cutoff); err != nil {
		return fmt.Errorf("prune runs: %w", err)
	}
	return nil
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		run        Run
		finishedAt sql.NullString
		startedAt  string
		cancelled  int
	)
	if err := rows.Scan(
		&run.ID, &run.RoutineID, &run.RoutineName, &run.Trigger,
		&startedAt, &finishedAt,
		&run.Executed, &run.Failed, &run.Skipped, &cancelled,
	); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = parseTimestamp(startedAt)
	if finishedAt.Valid {
		run.FinishedAt = parseTimestamp(finishedAt.String)
	}
	run.Cancelled = cancelled != 0
	return run, nil
}

func parseTimestamp(value string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
