package database

import (
	"context"
	"database/sql"

	"github.com/dfalmeida/pipeboard/internal/entity"
)

type AutomationRuleRepository struct {
	DB *sql.DB
}

func NewAutomationRuleRepository(db *sql.DB) *AutomationRuleRepository {
	return &AutomationRuleRepository{DB: db}
}

func (r *AutomationRuleRepository) Create(ctx context.Context, rule *entity.AutomationRule) error {
	query := `
		INSERT INTO automation_rules (
			id, account_id, pipeline_id, trigger_stage_id, action,
			task_title, task_due_in_days, task_due_time, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`

	_, err := r.DB.ExecContext(ctx, query,
		rule.ID,
		rule.AccountID,
		rule.PipelineID,
		rule.TriggerStageID,
		string(rule.Action),
		nullString(rule.TaskTitle),
		rule.TaskDueInDays,
		nullString(rule.TaskDueTime),
	)
	if err != nil {
		return mapPgError(err)
	}
	return nil
}

func (r *AutomationRuleRepository) FindByPipeline(ctx context.Context, pipelineID string) ([]*entity.AutomationRule, error) {
	return r.find(ctx, `
		SELECT id, account_id, pipeline_id, trigger_stage_id, action,
		       COALESCE(task_title, ''), task_due_in_days, COALESCE(task_due_time, '')
		FROM automation_rules
		WHERE pipeline_id = $1
		ORDER BY created_at
	`, pipelineID)
}

// FindByTrigger returns the rules for one stage-entry event, in creation
// order; the evaluator runs them in this order.
func (r *AutomationRuleRepository) FindByTrigger(ctx context.Context, pipelineID, stageID string) ([]*entity.AutomationRule, error) {
	return r.find(ctx, `
		SELECT id, account_id, pipeline_id, trigger_stage_id, action,
		       COALESCE(task_title, ''), task_due_in_days, COALESCE(task_due_time, '')
		FROM automation_rules
		WHERE pipeline_id = $1 AND trigger_stage_id = $2
		ORDER BY created_at
	`, pipelineID, stageID)
}

func (r *AutomationRuleRepository) find(ctx context.Context, query string, args ...any) ([]*entity.AutomationRule, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*entity.AutomationRule
	for rows.Next() {
		var rule entity.AutomationRule
		var action string
		err := rows.Scan(
			&rule.ID,
			&rule.AccountID,
			&rule.PipelineID,
			&rule.TriggerStageID,
			&action,
			&rule.TaskTitle,
			&rule.TaskDueInDays,
			&rule.TaskDueTime,
		)
		if err != nil {
			return nil, err
		}
		rule.Action = entity.AutomationAction(action)
		rules = append(rules, &rule)
	}
	return rules, rows.Err()
}
