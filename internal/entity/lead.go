package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Lead struct {
	ID         string `json:"id"`
	AccountID  string `json:"account_id"`
	Name       string `json:"name"`
	Company    string `json:"company,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	ValueCents int64  `json:"value_cents,omitempty"` // estimated deal value

	PipelineID string   `json:"pipeline_id"`
	StageID    string   `json:"stage_id"`
	Tags       []string `json:"tags,omitempty"`

	// Terminal overlays. A closed lead keeps its stage position;
	// sold and lost are mutually exclusive.
	LossReasonCategory string     `json:"loss_reason_category,omitempty"`
	LossNotes          string     `json:"loss_notes,omitempty"`
	LostAt             *time.Time `json:"lost_at,omitempty"`
	SoldValueCents     int64      `json:"sold_value_cents,omitempty"`
	SaleNotes          string     `json:"sale_notes,omitempty"`
	SoldAt             *time.Time `json:"sold_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewLead(accountID, name, pipelineID, stageID string) (*Lead, error) {
	lead := &Lead{
		ID:         uuid.New().String(),
		AccountID:  accountID,
		Name:       name,
		PipelineID: pipelineID,
		StageID:    stageID,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	return lead, nil
}

func (l *Lead) Validate() error {
	if l.Name == "" {
		return ErrLeadNameRequired
	}
	if l.PipelineID == "" || l.StageID == "" {
		return ErrLeadStageRequired
	}
	return nil
}

func (l *Lead) IsClosed() bool {
	return l.SoldAt != nil || l.LostAt != nil
}

func (l *Lead) MarkSold(valueCents int64, notes string, at time.Time) error {
	if l.IsClosed() {
		return ErrLeadAlreadyClosed
	}
	l.SoldValueCents = valueCents
	l.SaleNotes = notes
	l.SoldAt = &at
	l.UpdatedAt = at
	return nil
}

func (l *Lead) MarkLost(reason, notes string, at time.Time) error {
	if l.IsClosed() {
		return ErrLeadAlreadyClosed
	}
	if reason == "" {
		return ErrLossReasonRequired
	}
	l.LossReasonCategory = reason
	l.LossNotes = notes
	l.LostAt = &at
	l.UpdatedAt = at
	return nil
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	FindByPipeline(ctx context.Context, pipelineID string) ([]*Lead, error)
	Update(ctx context.Context, lead *Lead) error
	UpdateStage(ctx context.Context, leadID, stageID, notes string) (*Lead, error)
	Delete(ctx context.Context, id string) error
}
