// Package board implements the kanban pipeline engine: the per-session
// board state, drag resolution, optimistic stage moves with rollback,
// and stage-entry automation.
package board

import (
	"context"

	"github.com/dfalmeida/pipeboard/internal/entity"
)

// Gateway is the remote persistence contract the board depends on.
// It assumes nothing beyond single-record operations: no batching,
// no transactions. Any call may fail with a network, conflict or
// validation error (see ClassifyMoveError).
type Gateway interface {
	FetchLeadsForPipeline(ctx context.Context, pipelineID string) ([]*entity.Lead, error)
	UpdateLeadStage(ctx context.Context, leadID, newStageID, notes string) (*entity.Lead, error)
}

// SessionRefresher retries a stale auth session after a conflict-class
// persistence failure. The move itself is never re-attempted automatically.
type SessionRefresher interface {
	Refresh(ctx context.Context) error
}

// RuleSource is the read-only view of automation rules keyed by
// (pipeline, trigger stage).
type RuleSource interface {
	RulesFor(ctx context.Context, pipelineID, stageID string) ([]*entity.AutomationRule, error)
}

// Actions applies the secondary effects of automation rules once the
// prompt round-trip has collected the required input.
type Actions interface {
	CreateTask(ctx context.Context, lead *entity.Lead, title, dueDate, dueTime string) error
	MarkSold(ctx context.Context, lead *entity.Lead, valueCents int64, notes string) error
	MarkLost(ctx context.Context, lead *entity.Lead, reason, notes string) error
}
