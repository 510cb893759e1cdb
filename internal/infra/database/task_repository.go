package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/dfalmeida/pipeboard/internal/entity"
)

type TaskRepository struct {
	DB *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{DB: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *entity.Task) error {
	query := `
		INSERT INTO tasks (id, account_id, lead_id, title, due_date, due_time, done, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.DB.ExecContext(ctx, query,
		task.ID,
		task.AccountID,
		task.LeadID,
		task.Title,
		task.DueDate,
		nullString(task.DueTime),
		task.Done,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return mapPgError(err)
	}
	return nil
}

func (r *TaskRepository) FindByLead(ctx context.Context, leadID string) ([]*entity.Task, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, account_id, lead_id, title, due_date, COALESCE(due_time, ''), done, created_at, updated_at
		FROM tasks
		WHERE lead_id = $1
		ORDER BY due_date, due_time NULLS LAST
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// FindDueBefore returns open tasks whose due moment has passed the cutoff
// and that were not reminded yet, marking them reminded in the same
// statement so a reminder goes out once.
func (r *TaskRepository) FindDueBefore(ctx context.Context, cutoff time.Time) ([]*entity.Task, error) {
	rows, err := r.DB.QueryContext(ctx, `
		UPDATE tasks
		SET reminded_at = NOW()
		WHERE done = FALSE
		  AND reminded_at IS NULL
		  AND (due_date || ' ' || COALESCE(NULLIF(due_time, ''), '23:59'))::timestamp <= $1
		RETURNING id, account_id, lead_id, title, due_date, COALESCE(due_time, ''), done, created_at, updated_at
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

func (r *TaskRepository) MarkDone(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE tasks SET done = TRUE, updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanTasks(rows *sql.Rows) ([]*entity.Task, error) {
	var tasks []*entity.Task
	for rows.Next() {
		var t entity.Task
		err := rows.Scan(&t.ID, &t.AccountID, &t.LeadID, &t.Title, &t.DueDate, &t.DueTime, &t.Done, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}
