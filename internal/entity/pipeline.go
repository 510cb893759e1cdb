package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Pipeline struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Position  int    `json:"position"`

	// When set, every stage change on this pipeline must carry a note;
	// the board parks the move until the note is collected.
	RequireStageNotes bool `json:"require_stage_notes"`

	Stages    []Stage   `json:"stages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Stage is an ordered column within a pipeline. Position defines the
// left-to-right board order and the next/previous move semantics.
type Stage struct {
	ID         string    `json:"id"`
	PipelineID string    `json:"pipeline_id"`
	Name       string    `json:"name"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewPipeline(accountID, name string, stageNames []string) (*Pipeline, error) {
	if name == "" {
		return nil, ErrPipelineNameRequired
	}
	if len(stageNames) == 0 {
		return nil, ErrPipelineNeedsStages
	}

	p := &Pipeline{
		ID:        uuid.New().String(),
		AccountID: accountID,
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	for i, sn := range stageNames {
		p.Stages = append(p.Stages, Stage{
			ID:         uuid.New().String(),
			PipelineID: p.ID,
			Name:       sn,
			Position:   i,
			CreatedAt:  time.Now(),
		})
	}

	return p, nil
}

// StageByID returns nil when the stage does not belong to this pipeline.
func (p *Pipeline) StageByID(stageID string) *Stage {
	for i := range p.Stages {
		if p.Stages[i].ID == stageID {
			return &p.Stages[i]
		}
	}
	return nil
}

type PipelineRepositoryInterface interface {
	Create(ctx context.Context, p *Pipeline) error
	FindByID(ctx context.Context, id string) (*Pipeline, error)
	FindByAccount(ctx context.Context, accountID string) ([]*Pipeline, error)
}
