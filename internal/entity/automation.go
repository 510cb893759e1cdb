package entity

import "context"

type AutomationAction string

const (
	ActionCreateTask AutomationAction = "create_task"
	ActionMarkSold   AutomationAction = "mark_sold"
	ActionMarkLost   AutomationAction = "mark_lost"
)

// AutomationRule fires when a lead enters TriggerStageID of PipelineID.
type AutomationRule struct {
	ID             string           `json:"id"`
	AccountID      string           `json:"account_id"`
	PipelineID     string           `json:"pipeline_id"`
	TriggerStageID string           `json:"trigger_stage_id"`
	Action         AutomationAction `json:"action"`

	// Defaults pre-filled into the prompt for create_task rules.
	TaskTitle     string `json:"task_title,omitempty"`
	TaskDueInDays int    `json:"task_due_in_days,omitempty"`
	TaskDueTime   string `json:"task_due_time,omitempty"`
}

type AutomationRuleRepositoryInterface interface {
	FindByPipeline(ctx context.Context, pipelineID string) ([]*AutomationRule, error)
	FindByTrigger(ctx context.Context, pipelineID, stageID string) ([]*AutomationRule, error)
	Create(ctx context.Context, rule *AutomationRule) error
}
