package entity

import "errors"

var (
	ErrLeadNameRequired   = errors.New("lead name is required")
	ErrLeadStageRequired  = errors.New("lead pipeline and stage are required")
	ErrLeadNotFound       = errors.New("lead not found")
	ErrLeadAlreadyClosed  = errors.New("lead is already sold or lost")
	ErrLossReasonRequired = errors.New("loss reason category is required")

	ErrPipelineNameRequired = errors.New("pipeline name is required")
	ErrPipelineNeedsStages  = errors.New("pipeline needs at least one stage")
	ErrPipelineNotFound     = errors.New("pipeline not found")
	ErrStageNotFound        = errors.New("stage not found")

	ErrTaskTitleRequired   = errors.New("task title is required")
	ErrTaskDueDateRequired = errors.New("task due date is required")
	ErrTaskDueDateInvalid  = errors.New("task due date must be YYYY-MM-DD")
	ErrTaskDueTimeInvalid  = errors.New("task due time must be HH:MM")
)
