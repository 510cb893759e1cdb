package board

import (
	"context"
	"log"
	"time"

	"github.com/dfalmeida/pipeboard/internal/entity"
)

const defaultTaskDueTime = "09:00"

// Evaluator applies automation rules after a committed stage change.
// It holds no reference to the board store; the host learns about applied
// effects through the bridge's completion handler and reloads itself.
type Evaluator struct {
	rules   RuleSource
	bridge  *Bridge
	actions Actions
	now     func() time.Time
}

func NewEvaluator(rules RuleSource, bridge *Bridge, actions Actions) *Evaluator {
	return &Evaluator{
		rules:   rules,
		bridge:  bridge,
		actions: actions,
		now:     time.Now,
	}
}

// Evaluate runs every rule matching "lead entered toStageID". Rules run
// sequentially in the order the source returns them, so two rules never
// mutate the same lead at once. A cancelled prompt abandons only its own
// rule; a failed rule is logged and the rest still run.
func (e *Evaluator) Evaluate(ctx context.Context, lead *entity.Lead, fromStageID, toStageID string) {
	rules, err := e.rules.RulesFor(ctx, lead.PipelineID, toStageID)
	if err != nil {
		log.Printf("[automation] rule lookup failed pipeline=%s stage=%s: %v", lead.PipelineID, toStageID, err)
		return
	}

	for _, rule := range rules {
		applied, err := e.run(ctx, rule, lead)
		if err != nil {
			log.Printf("[automation] rule %s (%s) failed for lead %s: %v", rule.ID, rule.Action, lead.ID, err)
			continue
		}
		if applied {
			log.Printf("[automation] rule %s (%s) applied to lead %s", rule.ID, rule.Action, lead.ID)
			e.bridge.NotifyCompletion(lead.ID)
		}
	}
}

// run returns (false, nil) when the user dismissed the prompt: abandoned,
// no side effect, no error.
func (e *Evaluator) run(ctx context.Context, rule *entity.AutomationRule, lead *entity.Lead) (bool, error) {
	switch rule.Action {
	case entity.ActionCreateTask:
		return e.runCreateTask(ctx, rule, lead)
	case entity.ActionMarkSold:
		return e.runMarkSold(ctx, lead)
	case entity.ActionMarkLost:
		return e.runMarkLost(ctx, lead)
	default:
		log.Printf("[automation] unknown action %q on rule %s, skipping", rule.Action, rule.ID)
		return false, nil
	}
}

func (e *Evaluator) runCreateTask(ctx context.Context, rule *entity.AutomationRule, lead *entity.Lead) (bool, error) {
	title := rule.TaskTitle
	if title == "" {
		title = "Follow up: " + lead.Name
	}
	dueTime := rule.TaskDueTime
	if dueTime == "" {
		dueTime = defaultTaskDueTime
	}

	res, err := e.bridge.RequestTaskPrompt(ctx, TaskPromptInput{
		LeadID:         lead.ID,
		LeadName:       lead.Name,
		DefaultTitle:   title,
		DefaultDueDate: e.now().AddDate(0, 0, rule.TaskDueInDays).Format("2006-01-02"),
		DefaultDueTime: dueTime,
	})
	if err != nil {
		return false, err
	}
	if res == nil {
		return false, nil
	}

	if res.Title == "" {
		res.Title = title
	}
	if err := e.actions.CreateTask(ctx, lead, res.Title, res.DueDate, res.DueTime); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Evaluator) runMarkSold(ctx context.Context, lead *entity.Lead) (bool, error) {
	res, err := e.bridge.RequestSalePrompt(ctx, SalePromptInput{
		LeadID:              lead.ID,
		LeadName:            lead.Name,
		EstimatedValueCents: lead.ValueCents,
	})
	if err != nil {
		return false, err
	}
	if res == nil {
		return false, nil
	}

	if err := e.actions.MarkSold(ctx, lead, res.ValueCents, res.Notes); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Evaluator) runMarkLost(ctx context.Context, lead *entity.Lead) (bool, error) {
	res, err := e.bridge.RequestLossPrompt(ctx, LossPromptInput{
		LeadID:   lead.ID,
		LeadName: lead.Name,
	})
	if err != nil {
		return false, err
	}
	if res == nil {
		return false, nil
	}

	if err := e.actions.MarkLost(ctx, lead, res.ReasonCategory, res.Notes); err != nil {
		return false, err
	}
	return true, nil
}
