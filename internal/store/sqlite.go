package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhibongale/presto/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// SaveSummary inserts or replaces the row for a stage execution. State,
// task counts and CPU time are denormalized into columns so listings can
// filter and sort without unmarshaling every summary.
func (s *SQLiteStore) SaveSummary(ctx context.Context, stageExecutionID string, summary *model.StageExecutionSummary) error {
	s.logger.Debug("sql", "op", "upsert", "table", "summaries", "id", stageExecutionID)

	body, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO summaries (stage_execution_id, state, total_tasks, total_cpu_time_nanos, body, archived_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(stage_execution_id) DO UPDATE SET
		   state=excluded.state,
		   total_tasks=excluded.total_tasks,
		   total_cpu_time_nanos=excluded.total_cpu_time_nanos,
		   body=excluded.body,
		   archived_at=excluded.archived_at`,
		stageExecutionID, string(summary.State),
		summary.Stats.TotalTasks, summary.Stats.TotalCPUTimeNanos,
		string(body), time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) GetSummary(ctx context.Context, stageExecutionID string) (*model.StageExecutionSummary, error) {
	s.logger.Debug("sql", "op", "select", "table", "summaries", "id", stageExecutionID)

	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM summaries WHERE stage_execution_id = ?`, stageExecutionID,
	).Scan(&body)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var summary model.StageExecutionSummary
	if err := json.Unmarshal([]byte(body), &summary); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}
	return &summary, nil
}

func (s *SQLiteStore) ListSummaries(ctx context.Context, opts model.ListOptions) ([]*SummaryRecord, int, error) {
	s.logger.Debug("sql", "op", "list", "table", "summaries", "limit", opts.Limit, "offset", opts.Offset)
	opts.Clamp()

	var whereClauses []string
	var countArgs []any

	if opts.State != "" {
		whereClauses = append(whereClauses, "state = ?")
		countArgs = append(countArgs, opts.State)
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM summaries` + whereSQL
	if err := s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := `SELECT stage_execution_id, body, archived_at
		FROM summaries` + whereSQL + ` ORDER BY archived_at DESC LIMIT ? OFFSET ?`
	listArgs := append(countArgs, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []*SummaryRecord
	for rows.Next() {
		var rec SummaryRecord
		var body string

		if err := rows.Scan(&rec.StageExecutionID, &body, &rec.ArchivedAt); err != nil {
			return nil, 0, err
		}

		var summary model.StageExecutionSummary
		if err := json.Unmarshal([]byte(body), &summary); err != nil {
			return nil, 0, fmt.Errorf("unmarshal summary %s: %w", rec.StageExecutionID, err)
		}
		rec.Summary = &summary

		records = append(records, &rec)
	}
	return records, total, rows.Err()
}
