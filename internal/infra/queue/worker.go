package queue

import (
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Notifier sends the user-facing notifications derived from lead events.
type Notifier interface {
	SendDealWon(to, leadName string, valueCents int64) error
	SendDealLost(to, leadName, reason string) error
	SendTaskReminder(to, leadName, title, dueDate, dueTime string) error
}

// Worker drains the lead-event queue and turns events into notifications.
// Malformed messages are rejected without requeue so they land on the DLQ
// instead of wedging the queue.
type Worker struct {
	Channel  *amqp.Channel
	Notifier Notifier
}

func NewWorker(ch *amqp.Channel, notifier Notifier) *Worker {
	return &Worker{Channel: ch, Notifier: notifier}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		log.Fatalf("[worker] failed to register RabbitMQ consumer: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload LeadEventPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("[worker] invalid JSON, sending to DLQ: %s", err)
				d.Nack(false, false)
				continue
			}

			if err := w.process(payload); err != nil {
				log.Printf("[worker] failed to process %s for lead %s: %s", payload.Event, payload.LeadID, err)
				d.Nack(false, false)
			} else {
				d.Ack(false)
			}
		}
	}()

	log.Printf("[worker] consuming lead events from %q", queueName)
	<-forever
}

func (w *Worker) process(payload LeadEventPayload) error {
	if payload.NotifyEmail == "" {
		// nothing to notify; still a valid event
		log.Printf("[worker] %s for lead %s has no notify email, skipping", payload.Event, payload.LeadID)
		return nil
	}

	switch payload.Event {
	case EventLeadSold:
		return w.Notifier.SendDealWon(payload.NotifyEmail, payload.LeadName, payload.ValueCents)
	case EventLeadLost:
		return w.Notifier.SendDealLost(payload.NotifyEmail, payload.LeadName, payload.LossReason)
	case EventTaskCreated, EventTaskDue:
		return w.Notifier.SendTaskReminder(payload.NotifyEmail, payload.LeadName,
			payload.TaskTitle, payload.TaskDueDate, payload.TaskDueTime)
	case EventStageChanged:
		// board reloads handle these; kept on the exchange for integrations
		return nil
	default:
		log.Printf("[worker] unknown event %q, acking", payload.Event)
		return nil
	}
}
