package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for the summaries table.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS summaries (
		stage_execution_id   TEXT PRIMARY KEY,
		state                TEXT NOT NULL,
		total_tasks          INTEGER NOT NULL DEFAULT 0,
		total_cpu_time_nanos INTEGER NOT NULL DEFAULT 0,
		body                 TEXT NOT NULL,
		archived_at          TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_summaries_state ON summaries(state)`,
	`CREATE INDEX IF NOT EXISTS idx_summaries_archived_at ON summaries(archived_at)`,
}

// migrate executes all schema DDL statements.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
