package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"ofertalia/internal/models"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStale is returned when an optimistic updated_at guard matches no row:
	// a concurrent writer committed first and the caller lost the race.
	ErrStale = errors.New("stale row")
)

type LeadRepository interface {
	Create(ctx context.Context, lead *models.Lead, act *models.LeadActivity) error
	GetByID(ctx context.Context, id string) (*models.Lead, error)
	List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, error)
	UpdateDetails(ctx context.Context, lead *models.Lead) error
	// ApplyTransition commits the already-mutated lead (status, snapshots,
	// owner, updated_at) together with exactly one activity row. Both commit
	// or neither does; a mismatched expectedUpdatedAt yields ErrStale.
	ApplyTransition(ctx context.Context, lead *models.Lead, expectedUpdatedAt time.Time, act *models.LeadActivity) error
}

type leadRepository struct {
	db *sql.DB
}

func NewLeadRepository(db *sql.DB) LeadRepository {
	if db == nil {
		log.Fatalf("received nil database connection")
	}
	return &leadRepository{db: db}
}

const leadColumns = `id, company_name, sector, contact_name, contact_email, contact_phone,
	website, employees, estimated_revenue, status, priority, score, source,
	assigned_to_id, crm_verification, precontract, lost_reason, created_at, updated_at`

func scanLead(row interface{ Scan(...any) error }) (*models.Lead, error) {
	l := &models.Lead{}
	var verification, precontract []byte
	err := row.Scan(
		&l.ID, &l.CompanyName, &l.Sector, &l.ContactName, &l.ContactEmail, &l.ContactPhone,
		&l.Website, &l.Employees, &l.EstimatedRevenue, &l.Status, &l.Priority, &l.Score, &l.Source,
		&l.AssignedToID, &verification, &precontract, &l.LostReason, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if verification != nil {
		v := &models.CrmVerification{}
		if err := v.Scan(verification); err != nil {
			return nil, err
		}
		l.CrmVerification = v
	}
	if precontract != nil {
		p := &models.Precontract{}
		if err := p.Scan(precontract); err != nil {
			return nil, err
		}
		l.Precontract = p
	}
	return l, nil
}

func (r *leadRepository) Create(ctx context.Context, lead *models.Lead, act *models.LeadActivity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const insertLead = `
		INSERT INTO leads (
			id, company_name, sector, contact_name, contact_email, contact_phone,
			website, employees, estimated_revenue, status, priority, score, source,
			assigned_to_id, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`
	if _, err := tx.ExecContext(ctx, insertLead,
		lead.ID, lead.CompanyName, lead.Sector, lead.ContactName, lead.ContactEmail, lead.ContactPhone,
		lead.Website, lead.Employees, lead.EstimatedRevenue, lead.Status, lead.Priority, lead.Score, lead.Source,
		lead.AssignedToID, lead.CreatedAt, lead.UpdatedAt,
	); err != nil {
		return err
	}
	if err := insertActivity(ctx, tx, act); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *leadRepository) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id=$1`
	lead, err := scanLead(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return lead, err
}

func (r *leadRepository) List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE 1=1`
	args := []any{}
	i := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", i)
		args = append(args, *filter.Status)
		i++
	}
	if filter.AssignedToID != nil {
		query += fmt.Sprintf(" AND assigned_to_id = $%d", i)
		args = append(args, *filter.AssignedToID)
		i++
	}
	if filter.Source != nil {
		query += fmt.Sprintf(" AND source = $%d", i)
		args = append(args, *filter.Source)
		i++
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", i, i+1)
	args = append(args, limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

// UpdateDetails writes descriptive fields only; status and ownership always go
// through ApplyTransition so their activity rows cannot be skipped.
func (r *leadRepository) UpdateDetails(ctx context.Context, lead *models.Lead) error {
	const query = `
		UPDATE leads
		SET company_name=$1, sector=$2, contact_name=$3, contact_email=$4,
		    contact_phone=$5, website=$6, employees=$7, estimated_revenue=$8,
		    priority=$9, score=$10, updated_at=$11
		WHERE id=$12`
	res, err := r.db.ExecContext(ctx, query,
		lead.CompanyName, lead.Sector, lead.ContactName, lead.ContactEmail,
		lead.ContactPhone, lead.Website, lead.Employees, lead.EstimatedRevenue,
		lead.Priority, lead.Score, lead.UpdatedAt, lead.ID,
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

func (r *leadRepository) ApplyTransition(ctx context.Context, lead *models.Lead, expectedUpdatedAt time.Time, act *models.LeadActivity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `
		UPDATE leads
		SET status=$1, assigned_to_id=$2, crm_verification=$3, precontract=$4,
		    lost_reason=$5, updated_at=$6
		WHERE id=$7 AND updated_at=$8`
	var verification any
	if lead.CrmVerification != nil {
		verification = *lead.CrmVerification
	}
	var precontract any
	if lead.Precontract != nil {
		precontract = *lead.Precontract
	}
	res, err := tx.ExecContext(ctx, query,
		lead.Status, lead.AssignedToID, verification, precontract,
		lead.LostReason, lead.UpdatedAt, lead.ID, expectedUpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStale
	}
	if err := insertActivity(ctx, tx, act); err != nil {
		return err
	}
	return tx.Commit()
}

func insertActivity(ctx context.Context, tx *sql.Tx, act *models.LeadActivity) error {
	const query = `
		INSERT INTO lead_activities (lead_id, user_id, type, description, created_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id`
	return tx.QueryRowContext(ctx, query,
		act.LeadID, act.UserID, act.Type, act.Description, act.CreatedAt,
	).Scan(&act.ID)
}
