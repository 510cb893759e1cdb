package usecase

import (
	"context"
	"log"
	"time"

	"github.com/dfalmeida/pipeboard/internal/entity"
	"github.com/dfalmeida/pipeboard/internal/infra/queue"
)

// CloseLeadUseCase applies the terminal sold/lost overlays. The lead keeps
// its stage position; sold and lost exclude each other.
type CloseLeadUseCase struct {
	LeadRepo    entity.LeadRepositoryInterface
	Queue       QueueProducerInterface
	NotifyEmail string // account notification address
}

func NewCloseLeadUseCase(leadRepo entity.LeadRepositoryInterface, producer QueueProducerInterface, notifyEmail string) *CloseLeadUseCase {
	return &CloseLeadUseCase{
		LeadRepo:    leadRepo,
		Queue:       producer,
		NotifyEmail: notifyEmail,
	}
}

func (uc *CloseLeadUseCase) MarkSold(ctx context.Context, leadID string, valueCents int64, notes string) (*entity.Lead, error) {
	lead, err := uc.LeadRepo.FindByID(ctx, leadID)
	if err != nil {
		return nil, &DomainError{Code: "LEAD_NOT_FOUND", Message: "lead not found: " + err.Error()}
	}

	if valueCents <= 0 {
		valueCents = lead.ValueCents
	}

	if err := lead.MarkSold(valueCents, notes, time.Now()); err != nil {
		return nil, &DomainError{Code: "LEAD_ALREADY_CLOSED", Message: err.Error()}
	}

	if err := uc.LeadRepo.Update(ctx, lead); err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to mark lead sold: " + err.Error()}
	}

	uc.publish(ctx, queue.LeadEventPayload{
		Event:       queue.EventLeadSold,
		AccountID:   lead.AccountID,
		LeadID:      lead.ID,
		LeadName:    lead.Name,
		PipelineID:  lead.PipelineID,
		ValueCents:  lead.SoldValueCents,
		Notes:       notes,
		NotifyEmail: uc.NotifyEmail,
		OccurredAt:  time.Now(),
	})

	return lead, nil
}

func (uc *CloseLeadUseCase) MarkLost(ctx context.Context, leadID, reason, notes string) (*entity.Lead, error) {
	lead, err := uc.LeadRepo.FindByID(ctx, leadID)
	if err != nil {
		return nil, &DomainError{Code: "LEAD_NOT_FOUND", Message: "lead not found: " + err.Error()}
	}

	if err := lead.MarkLost(reason, notes, time.Now()); err != nil {
		code := "LEAD_ALREADY_CLOSED"
		if err == entity.ErrLossReasonRequired {
			code = "LOSS_REASON_REQUIRED"
		}
		return nil, &DomainError{Code: code, Message: err.Error()}
	}

	if err := uc.LeadRepo.Update(ctx, lead); err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to mark lead lost: " + err.Error()}
	}

	uc.publish(ctx, queue.LeadEventPayload{
		Event:       queue.EventLeadLost,
		AccountID:   lead.AccountID,
		LeadID:      lead.ID,
		LeadName:    lead.Name,
		PipelineID:  lead.PipelineID,
		LossReason:  reason,
		Notes:       notes,
		NotifyEmail: uc.NotifyEmail,
		OccurredAt:  time.Now(),
	})

	return lead, nil
}

func (uc *CloseLeadUseCase) publish(ctx context.Context, payload queue.LeadEventPayload) {
	if uc.Queue == nil {
		return
	}
	if err := uc.Queue.PublishLeadEvent(ctx, payload); err != nil {
		log.Printf("[usecase] lead %s closed in database but event publish failed: %v", payload.LeadID, err)
	}
}
