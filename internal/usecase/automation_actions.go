package usecase

import (
	"context"

	"github.com/dfalmeida/pipeboard/internal/entity"
)

// AutomationActions adapts the task/close use cases to the board's
// Actions port: these are the secondary effects a stage-entry rule
// applies once its prompt has been answered.
type AutomationActions struct {
	CreateTaskUC *CreateTaskUseCase
	CloseLeadUC  *CloseLeadUseCase
}

func NewAutomationActions(createTaskUC *CreateTaskUseCase, closeLeadUC *CloseLeadUseCase) *AutomationActions {
	return &AutomationActions{
		CreateTaskUC: createTaskUC,
		CloseLeadUC:  closeLeadUC,
	}
}

func (a *AutomationActions) CreateTask(ctx context.Context, lead *entity.Lead, title, dueDate, dueTime string) error {
	_, err := a.CreateTaskUC.Execute(ctx, CreateTaskInput{
		AccountID: lead.AccountID,
		LeadID:    lead.ID,
		Title:     title,
		DueDate:   dueDate,
		DueTime:   dueTime,
	})
	return err
}

func (a *AutomationActions) MarkSold(ctx context.Context, lead *entity.Lead, valueCents int64, notes string) error {
	_, err := a.CloseLeadUC.MarkSold(ctx, lead.ID, valueCents, notes)
	return err
}

func (a *AutomationActions) MarkLost(ctx context.Context, lead *entity.Lead, reason, notes string) error {
	_, err := a.CloseLeadUC.MarkLost(ctx, lead.ID, reason, notes)
	return err
}
