package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	LeadID    string    `json:"lead_id"`
	Title     string    `json:"title"`
	DueDate   string    `json:"due_date"` // YYYY-MM-DD
	DueTime   string    `json:"due_time"` // HH:MM
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewTask(accountID, leadID, title, dueDate, dueTime string) (*Task, error) {
	t := &Task{
		ID:        uuid.New().String(),
		AccountID: accountID,
		LeadID:    leadID,
		Title:     title,
		DueDate:   dueDate,
		DueTime:   dueTime,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	return t, nil
}

func (t *Task) Validate() error {
	if t.Title == "" {
		return ErrTaskTitleRequired
	}
	if t.DueDate == "" {
		return ErrTaskDueDateRequired
	}
	if _, err := time.Parse("2006-01-02", t.DueDate); err != nil {
		return ErrTaskDueDateInvalid
	}
	if t.DueTime != "" {
		if _, err := time.Parse("15:04", t.DueTime); err != nil {
			return ErrTaskDueTimeInvalid
		}
	}
	return nil
}

type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *Task) error
	FindByLead(ctx context.Context, leadID string) ([]*Task, error)
	FindDueBefore(ctx context.Context, cutoff time.Time) ([]*Task, error)
	MarkDone(ctx context.Context, id string) error
}
