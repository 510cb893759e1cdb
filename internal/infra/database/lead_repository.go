package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/lib/pq"

	"github.com/dfalmeida/pipeboard/internal/board"
	"github.com/dfalmeida/pipeboard/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `
	id, account_id, name, company, phone, email, value_cents,
	pipeline_id, stage_id, tags,
	loss_reason_category, loss_notes, lost_at,
	sold_value_cents, sale_notes, sold_at,
	created_at, updated_at
`

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (
			id, account_id, name, company, phone, email, value_cents,
			pipeline_id, stage_id, tags, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.AccountID,
		lead.Name,
		nullString(lead.Company),
		nullString(lead.Phone),
		nullString(lead.Email),
		lead.ValueCents,
		lead.PipelineID,
		lead.StageID,
		pq.Array(lead.Tags),
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		log.Printf("[database] lead insert failed: %v", err)
		return mapPgError(err)
	}

	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	return lead, err
}

func (r *LeadRepository) FindByPipeline(ctx context.Context, pipelineID string) ([]*entity.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE pipeline_id = $1
		ORDER BY created_at
	`

	rows, err := r.DB.QueryContext(ctx, query, pipelineID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	query := `
		UPDATE leads SET
			name = $2, company = $3, phone = $4, email = $5, value_cents = $6,
			tags = $7,
			loss_reason_category = $8, loss_notes = $9, lost_at = $10,
			sold_value_cents = $11, sale_notes = $12, sold_at = $13,
			updated_at = NOW()
		WHERE id = $1
	`

	res, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.Name,
		nullString(lead.Company),
		nullString(lead.Phone),
		nullString(lead.Email),
		lead.ValueCents,
		pq.Array(lead.Tags),
		nullString(lead.LossReasonCategory),
		nullString(lead.LossNotes),
		lead.LostAt,
		lead.SoldValueCents,
		nullString(lead.SaleNotes),
		lead.SoldAt,
	)
	if err != nil {
		return mapPgError(err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

// UpdateStage persists a stage move, recording the stage note when one
// was collected, and returns the updated record.
func (r *LeadRepository) UpdateStage(ctx context.Context, leadID, stageID, notes string) (*entity.Lead, error) {
	query := `
		UPDATE leads
		SET stage_id = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + leadColumns

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, leadID, stageID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}

	if notes != "" {
		noteQuery := `
			INSERT INTO stage_notes (lead_id, stage_id, notes, created_at)
			VALUES ($1, $2, $3, NOW())
		`
		if _, err := r.DB.ExecContext(ctx, noteQuery, leadID, stageID, notes); err != nil {
			// the move itself is committed; losing the note is logged, not fatal
			log.Printf("[database] stage note insert failed for lead %s: %v", leadID, err)
		}
	}

	return lead, nil
}

func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var lead entity.Lead
	var company, phone, email, lossReason, lossNotes, saleNotes sql.NullString
	var tags pq.StringArray

	err := row.Scan(
		&lead.ID,
		&lead.AccountID,
		&lead.Name,
		&company,
		&phone,
		&email,
		&lead.ValueCents,
		&lead.PipelineID,
		&lead.StageID,
		&tags,
		&lossReason,
		&lossNotes,
		&lead.LostAt,
		&lead.SoldValueCents,
		&saleNotes,
		&lead.SoldAt,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, mapPgError(err)
	}

	lead.Company = company.String
	lead.Phone = phone.String
	lead.Email = email.String
	lead.LossReasonCategory = lossReason.String
	lead.LossNotes = lossNotes.String
	lead.SaleNotes = saleNotes.String
	lead.Tags = tags
	return &lead, nil
}

// mapPgError translates driver error codes into the domain errors the
// board classifies on: FK violations on stage are validation failures,
// serialization/deadlock failures are the conflict class.
func mapPgError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23503": // foreign_key_violation
			if pqErr.Constraint == "leads_stage_id_fkey" {
				return fmt.Errorf("%w: %s", entity.ErrStageNotFound, pqErr.Detail)
			}
			return err
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%w: %s", board.ErrConflict, pqErr.Message)
		}
	}
	return err
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
