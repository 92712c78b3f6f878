package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"pixal/internal/config"
	"pixal/internal/services"
)

// Status values recorded for runs and steps.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Store wraps the ledger database.
type Store struct {
	db   *sql.DB
	path string
}

// Run is one recorded invocation with its steps.
type Run struct {
	ID           int64      `json:"id"`
	RunID        string     `json:"run_id"`
	Command      string     `json:"command"`
	Source       string     `json:"source,omitempty"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	ErrorKind    string     `json:"error_kind,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	Steps        []Step     `json:"steps"`
}

// Step is one stage execution inside a run.
type Step struct {
	ID           int64      `json:"id"`
	Stage        string     `json:"stage"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	ErrorKind    string     `json:"error_kind,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// Open creates or connects to the ledger under the log directory.
func Open(cfg *config.Config) (*Store, error) {
	return OpenPath(cfg.LedgerPath())
}

// OpenPath opens the ledger at an explicit path.
func OpenPath(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
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

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// BeginRun inserts a running row and returns its key.
func (s *Store) BeginRun(ctx context.Context, runID, command, source string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, command, source, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		runID, command, nullableString(source), StatusRunning, now(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// FinishRun closes a run row; a nil error marks it succeeded.
func (s *Store) FinishRun(ctx context.Context, id int64, runErr error) error {
	status, message, kind := outcome(runErr)
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error_message = ?, error_kind = ?, finished_at = ? WHERE id = ?`,
		status, nullableString(message), nullableString(kind), now(), id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// BeginStep inserts a running step under the run row.
func (s *Store) BeginStep(ctx context.Context, runRef int64, stage string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO steps (run_ref, stage, status, started_at) VALUES (?, ?, ?, ?)`,
		runRef, stage, StatusRunning, now(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert step: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// FinishStep closes a step row.
func (s *Store) FinishStep(ctx context.Context, id int64, stepErr error) error {
	status, message, kind := outcome(stepErr)
	_, err := s.db.ExecContext(ctx,
		`UPDATE steps SET status = ?, error_message = ?, error_kind = ?, finished_at = ? WHERE id = ?`,
		status, nullableString(message), nullableString(kind), now(), id,
	)
	if err != nil {
		return fmt.Errorf("finish step: %w", err)
	}
	return nil
}

// Recent returns the newest runs first, each with its steps in execution order.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, command, source, status, error_message, error_kind, started_at, finished_at
         FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run                                    Run
			source, message, kind, started, finish sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.RunID, &run.Command, &source, &run.Status, &message, &kind, &started, &finish); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Source = source.String
		run.ErrorMessage = message.String
		run.ErrorKind = kind.String
		run.StartedAt = parseTime(started)
		run.FinishedAt = parseOptionalTime(finish)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	for i := range runs {
		steps, err := s.steps(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Steps = steps
	}
	return runs, nil
}

func (s *Store) steps(ctx context.Context, runRef int64) ([]Step, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, stage, status, error_message, error_kind, started_at, finished_at
         FROM steps WHERE run_ref = ? ORDER BY id`, runRef)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	steps := []Step{}
	for rows.Next() {
		var (
			step                           Step
			message, kind, started, finish sql.NullString
		)
		if err := rows.Scan(&step.ID, &step.Stage, &step.Status, &message, &kind, &started, &finish); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		step.ErrorMessage = message.String
		step.ErrorKind = kind.String
		step.StartedAt = parseTime(started)
		step.FinishedAt = parseOptionalTime(finish)
		steps = append(steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return steps, nil
}

func outcome(err error) (status, message, kind string) {
	if err == nil {
		return StatusSucceeded, "", ""
	}
	if errors.Is(err, context.Canceled) {
		return StatusFailed, "canceled", "canceled"
	}
	return StatusFailed, strings.TrimSpace(err.Error()), services.Kind(err)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func parseTime(raw sql.NullString) time.Time {
	if !raw.Valid {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseOptionalTime(raw sql.NullString) *time.Time {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	t := parseTime(raw)
	return &t
}
