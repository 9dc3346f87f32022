// Package archive exports finalized stage execution summaries to long-term
// storage. Only summaries that can never change again are archived.
package archive

import (
	"context"

	"github.com/abhibongale/presto/pkg/model"
)

// Archiver persists a finalized summary outside the serving store.
type Archiver interface {
	Archive(ctx context.Context, stageExecutionID string, summary *model.StageExecutionSummary) error
}

// Nop discards everything. Used when archiving is disabled.
type Nop struct{}

func (Nop) Archive(ctx context.Context, stageExecutionID string, summary *model.StageExecutionSummary) error {
	return nil
}
