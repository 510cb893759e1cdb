package usecase

import (
	"context"

	"github.com/dfalmeida/pipeboard/internal/infra/queue"
)

type QueueProducerInterface interface {
	PublishLeadEvent(ctx context.Context, payload queue.LeadEventPayload) error
}
