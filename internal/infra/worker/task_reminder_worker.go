package worker

import (
	"context"
	"log"
	"time"

	"github.com/dfalmeida/pipeboard/internal/entity"
	"github.com/dfalmeida/pipeboard/internal/infra/queue"
)

type producer interface {
	PublishLeadEvent(ctx context.Context, payload queue.LeadEventPayload) error
}

// TaskReminderWorker sweeps for tasks past their due moment and publishes
// a reminder event for each, once. The queue consumer turns the event
// into an email.
type TaskReminderWorker struct {
	tasks        entity.TaskRepositoryInterface
	leads        entity.LeadRepositoryInterface
	producer     producer
	notifyEmail  string
	tickInterval time.Duration
}

func NewTaskReminderWorker(
	tasks entity.TaskRepositoryInterface,
	leads entity.LeadRepositoryInterface,
	producer producer,
	notifyEmail string,
) *TaskReminderWorker {
	return &TaskReminderWorker{
		tasks:        tasks,
		leads:        leads,
		producer:     producer,
		notifyEmail:  notifyEmail,
		tickInterval: time.Minute,
	}
}

func (w *TaskReminderWorker) Start(ctx context.Context) {
	log.Println("[reminder] task reminder worker started")

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("[reminder] task reminder worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *TaskReminderWorker) sweep(ctx context.Context) {
	due, err := w.tasks.FindDueBefore(ctx, time.Now())
	if err != nil {
		log.Printf("[reminder] failed to fetch due tasks: %v", err)
		return
	}

	for _, task := range due {
		leadName := ""
		if lead, err := w.leads.FindByID(ctx, task.LeadID); err == nil {
			leadName = lead.Name
		}

		err := w.producer.PublishLeadEvent(ctx, queue.LeadEventPayload{
			Event:       queue.EventTaskDue,
			AccountID:   task.AccountID,
			LeadID:      task.LeadID,
			LeadName:    leadName,
			TaskID:      task.ID,
			TaskTitle:   task.Title,
			TaskDueDate: task.DueDate,
			TaskDueTime: task.DueTime,
			NotifyEmail: w.notifyEmail,
			OccurredAt:  time.Now(),
		})
		if err != nil {
			log.Printf("[reminder] failed to publish reminder for task %s: %v", task.ID, err)
			continue
		}
		log.Printf("[reminder] task %s (%s) due, reminder queued", task.ID, task.Title)
	}
}
