package repositories

import (
	"context"
	"database/sql"
	"log"

	"ofertalia/internal/models"
)

// ActivityRepository covers the standalone surface of the audit trail: free-text
// notes and reads. Transition-paired rows are written inside the lead
// repository transaction and never pass through here.
type ActivityRepository interface {
	Append(ctx context.Context, act *models.LeadActivity) error
	ListByLead(ctx context.Context, leadID string) ([]models.LeadActivity, error)
	CountByType(ctx context.Context, leadID string, t models.ActivityType) (int, error)
}

type activityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) ActivityRepository {
	if db == nil {
		log.Fatalf("received nil database connection")
	}
	return &activityRepository{db: db}
}

func (r *activityRepository) Append(ctx context.Context, act *models.LeadActivity) error {
	const query = `
		INSERT INTO lead_activities (lead_id, user_id, type, description, created_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		act.LeadID, act.UserID, act.Type, act.Description, act.CreatedAt,
	).Scan(&act.ID)
}

func (r *activityRepository) ListByLead(ctx context.Context, leadID string) ([]models.LeadActivity, error) {
	const query = `
		SELECT id, lead_id, user_id, type, description, created_at
		FROM lead_activities
		WHERE lead_id = $1
		ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LeadActivity
	for rows.Next() {
		var a models.LeadActivity
		if err := rows.Scan(&a.ID, &a.LeadID, &a.UserID, &a.Type, &a.Description, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *activityRepository) CountByType(ctx context.Context, leadID string, t models.ActivityType) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM lead_activities WHERE lead_id=$1 AND type=$2`, leadID, t,
	).Scan(&count)
	return count, err
}
