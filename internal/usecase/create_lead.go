package usecase

import (
	"context"
	"log"
	"time"

	"github.com/dfalmeida/pipeboard/internal/entity"
	"github.com/dfalmeida/pipeboard/internal/infra/queue"
)

type CreateLeadInput struct {
	AccountID  string   `json:"account_id"`
	Name       string   `json:"name"`
	Company    string   `json:"company,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Email      string   `json:"email,omitempty"`
	ValueCents int64    `json:"value_cents,omitempty"`
	PipelineID string   `json:"pipeline_id"`
	StageID    string   `json:"stage_id,omitempty"` // defaults to the pipeline's first stage
	Tags       []string `json:"tags,omitempty"`
}

type CreateLeadUseCase struct {
	LeadRepo     entity.LeadRepositoryInterface
	PipelineRepo entity.PipelineRepositoryInterface
	Queue        QueueProducerInterface
}

func NewCreateLeadUseCase(
	leadRepo entity.LeadRepositoryInterface,
	pipelineRepo entity.PipelineRepositoryInterface,
	producer QueueProducerInterface,
) *CreateLeadUseCase {
	return &CreateLeadUseCase{
		LeadRepo:     leadRepo,
		PipelineRepo: pipelineRepo,
		Queue:        producer,
	}
}

func (uc *CreateLeadUseCase) Execute(ctx context.Context, input CreateLeadInput) (*entity.Lead, error) {
	if validationErrors := ValidateCreateLeadInput(input); len(validationErrors) > 0 {
		return nil, &DomainError{
			Code:    "VALIDATION_ERROR",
			Message: joinValidationErrors(validationErrors),
		}
	}

	pipeline, err := uc.PipelineRepo.FindByID(ctx, input.PipelineID)
	if err != nil {
		return nil, &DomainError{
			Code:    "PIPELINE_NOT_FOUND",
			Message: "invalid pipeline: " + err.Error(),
		}
	}

	stageID := input.StageID
	if stageID == "" {
		if len(pipeline.Stages) == 0 {
			return nil, &DomainError{
				Code:    "STAGE_NOT_FOUND",
				Message: "pipeline " + pipeline.ID + " has no stages",
			}
		}
		stageID = pipeline.Stages[0].ID
	} else if pipeline.StageByID(stageID) == nil {
		return nil, &DomainError{
			Code:    "STAGE_NOT_FOUND",
			Message: "stage does not belong to pipeline " + pipeline.ID,
		}
	}

	lead, err := entity.NewLead(input.AccountID, input.Name, pipeline.ID, stageID)
	if err != nil {
		return nil, &DomainError{Code: "INVALID_LEAD", Message: err.Error()}
	}
	lead.Company = input.Company
	lead.Phone = input.Phone
	lead.Email = input.Email
	lead.ValueCents = input.ValueCents
	lead.Tags = input.Tags

	if err := uc.LeadRepo.Create(ctx, lead); err != nil {
		return nil, &TechnicalError{
			Code:    "DATABASE_ERROR",
			Message: "failed to persist lead: " + err.Error(),
		}
	}

	// event publishing is best effort; the lead is already saved
	if uc.Queue != nil {
		err := uc.Queue.PublishLeadEvent(ctx, queue.LeadEventPayload{
			Event:      queue.EventStageChanged,
			AccountID:  lead.AccountID,
			LeadID:     lead.ID,
			LeadName:   lead.Name,
			PipelineID: lead.PipelineID,
			ToStageID:  lead.StageID,
			OccurredAt: time.Now(),
		})
		if err != nil {
			log.Printf("[usecase] lead %s saved but event publish failed: %v", lead.ID, err)
		}
	}

	return lead, nil
}
