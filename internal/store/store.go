package store

import (
	"context"

	"github.com/abhibongale/presto/pkg/model"
)

// SummaryRecord is a persisted stage execution summary together with the
// identity columns the summary itself does not carry.
type SummaryRecord struct {
	StageExecutionID string                       `json:"stageExecutionId"`
	Summary          *model.StageExecutionSummary `json:"summary"`
	ArchivedAt       string                       `json:"archivedAt,omitempty"`
}

// Store defines the persistence layer for finalized stage summaries.
type Store interface {
	// SaveSummary inserts or replaces the summary for a stage execution.
	SaveSummary(ctx context.Context, stageExecutionID string, summary *model.StageExecutionSummary) error
	GetSummary(ctx context.Context, stageExecutionID string) (*model.StageExecutionSummary, error)
	ListSummaries(ctx context.Context, opts model.ListOptions) ([]*SummaryRecord, int, error)

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
