package history

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates the history tables and indexes if they do not exist.
// Uses a transaction so that schema creation succeeds or fails as a whole.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	tables := []struct {
		name string
		ddl  string
	}{
		{"runs", createRunsTable},
		{"applied_actions", createAppliedActionsTable},
	}
	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range indexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,                     -- UUID
    model_path TEXT NOT NULL,                    -- Input model
    output_path TEXT NOT NULL DEFAULT '',        -- Refactored model, empty when nothing was saved
    started_at TEXT NOT NULL,                    -- ISO 8601
    finished_at TEXT NOT NULL,                   -- ISO 8601
    actions_total INTEGER NOT NULL DEFAULT 0,
    actions_applied INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL                         -- succeeded, no_plan, empty_plan, failed
)
`

const createAppliedActionsTable = `
CREATE TABLE IF NOT EXISTS applied_actions (
    run_id TEXT NOT NULL,
    seq INTEGER NOT NULL,                        -- Position in the plan, 0-based
    kind TEXT NOT NULL,                          -- Raw plan type
    concept_name TEXT NOT NULL,
    representative TEXT NOT NULL DEFAULT '',
    moved_operations TEXT NOT NULL DEFAULT '',   -- Comma-separated member names
    moved_attributes TEXT NOT NULL DEFAULT '',   -- Comma-separated member names
    skip_reason TEXT NOT NULL DEFAULT '',        -- Empty when the action was applied
    rationale TEXT NOT NULL DEFAULT '',          -- Analyzer's reason for the action
    PRIMARY KEY (run_id, seq),
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
)
`

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_model_path ON runs(model_path)`,
}
