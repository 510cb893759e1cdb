package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventStageChanged = "lead.stage_changed"
	EventLeadSold     = "lead.sold"
	EventLeadLost     = "lead.lost"
	EventTaskCreated  = "task.created"
	EventTaskDue      = "task.due"
)

// LeadEventPayload is the single envelope published for every pipeline
// event; the Event field tells consumers which other fields are set.
type LeadEventPayload struct {
	Event     string `json:"event"`
	AccountID string `json:"account_id"`
	LeadID    string `json:"lead_id"`
	LeadName  string `json:"lead_name"`

	PipelineID  string `json:"pipeline_id,omitempty"`
	FromStageID string `json:"from_stage_id,omitempty"`
	ToStageID   string `json:"to_stage_id,omitempty"`

	ValueCents int64  `json:"value_cents,omitempty"`
	LossReason string `json:"loss_reason,omitempty"`
	Notes      string `json:"notes,omitempty"`

	TaskID      string `json:"task_id,omitempty"`
	TaskTitle   string `json:"task_title,omitempty"`
	TaskDueDate string `json:"task_due_date,omitempty"`
	TaskDueTime string `json:"task_due_time,omitempty"`

	NotifyEmail string    `json:"notify_email,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{Conn: conn, Ch: ch}
}

func (p *RabbitMQProducer) PublishLeadEvent(ctx context.Context, payload LeadEventPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to RabbitMQ: %w", err)
	}

	return nil
}
