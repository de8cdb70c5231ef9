package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"ofertalia/internal/models"
)

type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id int64) error
}

type taskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, creator_id, assignee_id, lead_id, company_id, title, description,
	due_date, priority, status, estimated_minutes,
	urgency_score, impact_score, effort_score, auto_score, created_at, updated_at`

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	const query = `
		INSERT INTO tasks (
			creator_id, assignee_id, lead_id, company_id, title, description,
			due_date, priority, status, estimated_minutes,
			urgency_score, impact_score, effort_score, auto_score, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		task.CreatorID, task.AssigneeID, task.LeadID, task.CompanyID, task.Title, task.Description,
		task.DueDate, task.Priority, task.Status, task.EstimatedMinutes,
		task.UrgencyScore, task.ImpactScore, task.EffortScore, task.AutoScore,
		task.CreatedAt, task.UpdatedAt,
	).Scan(&task.ID)
}

func scanTask(row interface{ Scan(...any) error }) (*models.Task, error) {
	t := &models.Task{}
	err := row.Scan(
		&t.ID, &t.CreatorID, &t.AssigneeID, &t.LeadID, &t.CompanyID, &t.Title, &t.Description,
		&t.DueDate, &t.Priority, &t.Status, &t.EstimatedMinutes,
		&t.UrgencyScore, &t.ImpactScore, &t.EffortScore, &t.AutoScore, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *taskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return task, err
}

func (r *taskRepository) FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	baseQuery := `SELECT ` + taskColumns + ` FROM tasks`

	conditions := []string{}
	args := []any{}
	argID := 1

	if filter.AssigneeID != nil {
		conditions = append(conditions, fmt.Sprintf("assignee_id = $%d", argID))
		args = append(args, *filter.AssigneeID)
		argID++
	}
	if filter.CreatorID != nil {
		conditions = append(conditions, fmt.Sprintf("creator_id = $%d", argID))
		args = append(args, *filter.CreatorID)
		argID++
	}
	if filter.LeadID != nil {
		conditions = append(conditions, fmt.Sprintf("lead_id = $%d", argID))
		args = append(args, *filter.LeadID)
		argID++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, *filter.Status)
		argID++
	}

	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY auto_score DESC, created_at DESC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	baseQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	const query = `
		UPDATE tasks SET
			assignee_id=$1, title=$2, description=$3, due_date=$4,
			priority=$5, status=$6, estimated_minutes=$7,
			urgency_score=$8, impact_score=$9, effort_score=$10, auto_score=$11,
			updated_at=$12
		WHERE id=$13`
	res, err := r.db.ExecContext(ctx, query,
		task.AssigneeID, task.Title, task.Description, task.DueDate,
		task.Priority, task.Status, task.EstimatedMinutes,
		task.UrgencyScore, task.ImpactScore, task.EffortScore, task.AutoScore,
		task.UpdatedAt, task.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}
