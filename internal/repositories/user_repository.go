package repositories

import (
	"context"
	"database/sql"
	"log"

	"ofertalia/internal/authz"
	"ofertalia/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	// ListGestorLoads returns the active commercial gestors of one segment with
	// their derived active-lead counts, in a single consistent snapshot.
	ListGestorLoads(ctx context.Context, segment models.Segment) ([]models.GestorLoad, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	if db == nil {
		log.Fatalf("received nil database connection")
	}
	return &userRepository{db: db}
}

const userColumns = `id, name, email, password_hash, role_id, segment,
	max_active_leads, is_active, telegram_chat_id, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.RoleID, &u.Segment,
		&u.MaxActiveLeads, &u.IsActive, &u.TelegramChatID, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	const query = `
		INSERT INTO users (name, email, password_hash, role_id, segment,
			max_active_leads, is_active, telegram_chat_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.RoleID, user.Segment,
		user.MaxActiveLeads, user.IsActive, user.TelegramChatID, user.CreatedAt,
	).Scan(&user.ID)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return user, err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return user, err
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	const query = `
		UPDATE users
		SET name=$1, email=$2, role_id=$3, segment=$4, max_active_leads=$5,
		    is_active=$6, telegram_chat_id=$7
		WHERE id=$8`
	res, err := r.db.ExecContext(ctx, query,
		user.Name, user.Email, user.RoleID, user.Segment, user.MaxActiveLeads,
		user.IsActive, user.TelegramChatID, user.ID,
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

// Leads in WON/LOST no longer count against capacity.
func (r *userRepository) ListGestorLoads(ctx context.Context, segment models.Segment) ([]models.GestorLoad, error) {
	const query = `
		SELECT u.id, u.name, u.segment, u.max_active_leads,
		       COUNT(l.id) FILTER (WHERE l.status NOT IN ('WON','LOST')) AS active_leads,
		       u.created_at
		FROM users u
		LEFT JOIN leads l ON l.assigned_to_id = u.id
		WHERE u.is_active AND u.segment = $1 AND u.role_id = $2
		GROUP BY u.id, u.name, u.segment, u.max_active_leads, u.created_at
		ORDER BY u.created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, segment, authz.RoleComercial)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.GestorLoad
	for rows.Next() {
		var g models.GestorLoad
		if err := rows.Scan(&g.GestorID, &g.Name, &g.Segment, &g.MaxActiveLeads, &g.ActiveLeads, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
