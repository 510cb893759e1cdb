package usecase

import (
	"context"
	"log"
	"time"

	"github.com/dfalmeida/pipeboard/internal/entity"
	"github.com/dfalmeida/pipeboard/internal/infra/queue"
)

type CreateTaskInput struct {
	AccountID string `json:"account_id"`
	LeadID    string `json:"lead_id"`
	Title     string `json:"title"`
	DueDate   string `json:"due_date"`
	DueTime   string `json:"due_time,omitempty"`
}

type CreateTaskUseCase struct {
	TaskRepo    entity.TaskRepositoryInterface
	LeadRepo    entity.LeadRepositoryInterface
	Queue       QueueProducerInterface
	NotifyEmail string
}

func NewCreateTaskUseCase(
	taskRepo entity.TaskRepositoryInterface,
	leadRepo entity.LeadRepositoryInterface,
	producer QueueProducerInterface,
	notifyEmail string,
) *CreateTaskUseCase {
	return &CreateTaskUseCase{
		TaskRepo:    taskRepo,
		LeadRepo:    leadRepo,
		Queue:       producer,
		NotifyEmail: notifyEmail,
	}
}

func (uc *CreateTaskUseCase) Execute(ctx context.Context, input CreateTaskInput) (*entity.Task, error) {
	lead, err := uc.LeadRepo.FindByID(ctx, input.LeadID)
	if err != nil {
		return nil, &DomainError{Code: "LEAD_NOT_FOUND", Message: "lead not found: " + err.Error()}
	}

	task, err := entity.NewTask(input.AccountID, lead.ID, input.Title, input.DueDate, input.DueTime)
	if err != nil {
		return nil, &DomainError{Code: "INVALID_TASK", Message: err.Error()}
	}

	if err := uc.TaskRepo.Create(ctx, task); err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to persist task: " + err.Error()}
	}

	if uc.Queue != nil {
		if err := uc.Queue.PublishLeadEvent(ctx, queue.LeadEventPayload{
			Event:       queue.EventTaskCreated,
			AccountID:   task.AccountID,
			LeadID:      lead.ID,
			LeadName:    lead.Name,
			TaskID:      task.ID,
			TaskTitle:   task.Title,
			TaskDueDate: task.DueDate,
			TaskDueTime: task.DueTime,
			NotifyEmail: uc.NotifyEmail,
			OccurredAt:  time.Now(),
		}); err != nil {
			log.Printf("[usecase] task %s saved but event publish failed: %v", task.ID, err)
		}
	}

	return task, nil
}
