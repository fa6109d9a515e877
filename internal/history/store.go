// Package history keeps a SQLite ledger of pipeline runs and the actions each
// run applied.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mvp-joe/project-hoist/internal/refactor"
)

// Run statuses.
const (
	StatusSucceeded = "succeeded"
	StatusNoPlan    = "no_plan"
	StatusEmptyPlan = "empty_plan"
	StatusFailed    = "failed"
)

// ErrRunNotFound is returned when a run ID is unknown.
var ErrRunNotFound = errors.New("run not found")

// Run is one pipeline execution.
type Run struct {
	ID             string
	ModelPath      string
	OutputPath     string
	StartedAt      time.Time
	FinishedAt     time.Time
	ActionsTotal   int
	ActionsApplied int
	Status         string
}

// ActionRecord is the stored outcome of one plan action.
type ActionRecord struct {
	RunID           string
	Seq             int
	Kind            string
	ConceptName     string
	Representative  string
	MovedOperations []string
	MovedAttributes []string
	SkipReason      string
	Rationale       string
}

// Store reads and writes the history database.
type Store struct {
	db     *sql.DB
	ownsDB bool
}

// Open opens or creates the history database at path and ensures the schema.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	// Enable foreign keys (required for cascade deletes)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db, ownsDB: true}, nil
}

// NewStoreWithDB wraps an existing connection. The caller owns the connection
// and must have created the schema.
func NewStoreWithDB(db *sql.DB) *Store {
	return &Store{db: db, ownsDB: false}
}

// Close closes the database if the store opened it.
func (s *Store) Close() error {
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}

// RecordRun stores run and the per-action results of report in one
// transaction. Totals are taken from report when it is non-nil. It returns
// the run ID, generated when run.ID is empty.
func (s *Store) RecordRun(ctx context.Context, run Run, report *refactor.Report) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	if report != nil {
		run.ActionsTotal = len(report.Actions)
		run.ActionsApplied = report.Applied()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	_, err = sq.Insert("runs").
		Columns("run_id", "model_path", "output_path", "started_at", "finished_at", "actions_total", "actions_applied", "status").
		Values(
			run.ID,
			run.ModelPath,
			run.OutputPath,
			formatTime(run.StartedAt),
			formatTime(run.FinishedAt),
			run.ActionsTotal,
			run.ActionsApplied,
			run.Status,
		).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}

	if report != nil {
		for i, result := range report.Actions {
			_, err := sq.Insert("applied_actions").
				Columns(actionColumns...).
				Values(
					run.ID,
					i,
					result.Action.RawKind,
					result.Action.ConceptName,
					result.Action.Representative(),
					joinNames(result.MovedOperations),
					joinNames(result.MovedAttributes),
					string(result.Skip),
					result.Action.Reason,
				).
				RunWith(tx).
				ExecContext(ctx)
			if err != nil {
				return "", fmt.Errorf("failed to insert action %d of run %s: %w", i, run.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return run.ID, nil
}

var actionColumns = []string{"run_id", "seq", "kind", "concept_name", "representative", "moved_operations", "moved_attributes", "skip_reason", "rationale"}

var runColumns = []string{"run_id", "model_path", "output_path", "started_at", "finished_at", "actions_total", "actions_applied", "status"}

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := sq.Select(runColumns...).
		From("runs").
		OrderBy("started_at DESC", "run_id")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// GetRun loads a single run.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := sq.Select(runColumns...).
		From("runs").
		Where(sq.Eq{"run_id": runID}).
		RunWith(s.db).
		QueryRowContext(ctx)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	return run, nil
}

// Actions returns the stored actions of a run in plan order.
func (s *Store) Actions(ctx context.Context, runID string) ([]*ActionRecord, error) {
	rows, err := sq.Select(actionColumns...).
		From("applied_actions").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("seq").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer rows.Close()

	var records []*ActionRecord
	for rows.Next() {
		var rec ActionRecord
		var ops, attrs string
		if err := rows.Scan(&rec.RunID, &rec.Seq, &rec.Kind, &rec.ConceptName, &rec.Representative, &ops, &attrs, &rec.SkipReason, &rec.Rationale); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		rec.MovedOperations = splitNames(ops)
		rec.MovedAttributes = splitNames(attrs)
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating actions: %w", err)
	}
	return records, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var started, finished string
	if err := row.Scan(&run.ID, &run.ModelPath, &run.OutputPath, &started, &finished, &run.ActionsTotal, &run.ActionsApplied, &run.Status); err != nil {
		return nil, err
	}
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	return &run, nil
}

// timeLayout is fixed-width so that stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func joinNames(names []string) string {
	return strings.Join(names, ",")
}

func splitNames(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
