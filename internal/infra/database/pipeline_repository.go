package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dfalmeida/pipeboard/internal/entity"
)

type PipelineRepository struct {
	DB *sql.DB
}

func NewPipelineRepository(db *sql.DB) *PipelineRepository {
	return &PipelineRepository{DB: db}
}

func (r *PipelineRepository) Create(ctx context.Context, p *entity.Pipeline) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO pipelines (id, account_id, name, position, require_stage_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.AccountID, p.Name, p.Position, p.RequireStageNotes, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return mapPgError(err)
	}

	for _, st := range p.Stages {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO stages (id, pipeline_id, name, position, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, st.ID, st.PipelineID, st.Name, st.Position, st.CreatedAt)
		if err != nil {
			return mapPgError(err)
		}
	}

	return tx.Commit()
}

func (r *PipelineRepository) FindByID(ctx context.Context, id string) (*entity.Pipeline, error) {
	var p entity.Pipeline
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, account_id, name, position, require_stage_notes, created_at, updated_at
		FROM pipelines WHERE id = $1
	`, id).Scan(&p.ID, &p.AccountID, &p.Name, &p.Position, &p.RequireStageNotes, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrPipelineNotFound
	}
	if err != nil {
		return nil, err
	}

	stages, err := r.stagesFor(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Stages = stages
	return &p, nil
}

func (r *PipelineRepository) FindByAccount(ctx context.Context, accountID string) ([]*entity.Pipeline, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, account_id, name, position, require_stage_notes, created_at, updated_at
		FROM pipelines
		WHERE account_id = $1
		ORDER BY position, created_at
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pipelines []*entity.Pipeline
	for rows.Next() {
		var p entity.Pipeline
		err := rows.Scan(&p.ID, &p.AccountID, &p.Name, &p.Position, &p.RequireStageNotes, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, err
		}
		pipelines = append(pipelines, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, p := range pipelines {
		stages, err := r.stagesFor(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load stages for pipeline %s: %w", p.ID, err)
		}
		p.Stages = stages
	}
	return pipelines, nil
}

// stage order is position order: it defines the board's column layout
func (r *PipelineRepository) stagesFor(ctx context.Context, pipelineID string) ([]entity.Stage, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, pipeline_id, name, position, created_at
		FROM stages
		WHERE pipeline_id = $1
		ORDER BY position
	`, pipelineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stages []entity.Stage
	for rows.Next() {
		var st entity.Stage
		if err := rows.Scan(&st.ID, &st.PipelineID, &st.Name, &st.Position, &st.CreatedAt); err != nil {
			return nil, err
		}
		stages = append(stages, st)
	}
	return stages, rows.Err()
}
