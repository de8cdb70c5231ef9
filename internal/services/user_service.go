package services

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"ofertalia/internal/authz"
	"ofertalia/internal/models"
	"ofertalia/internal/repositories"
)

type UserService interface {
	CreateWithPassword(ctx context.Context, user *models.User, plainPassword string) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	// GestorLoads exposes the allocator's derived view for admin dashboards.
	GestorLoads(ctx context.Context) ([]models.GestorLoad, error)
}

type userService struct {
	repo repositories.UserRepository
	auth *AuthService
}

func NewUserService(repo repositories.UserRepository, auth *AuthService) UserService {
	return &userService{repo: repo, auth: auth}
}

// validateRoleSegment keeps the single invariant of the gestor pool: CRM staff
// carry the CRM segment and never own commercial capacity, commercial gestors
// carry a commercial segment and a positive lead ceiling.
func validateRoleSegment(user *models.User) error {
	switch user.RoleID {
	case authz.RoleComercial:
		if user.Segment == nil || *user.Segment == models.SegmentCRM {
			return newError(CodeValidation, "commercial gestors need a commercial segment")
		}
		if user.MaxActiveLeads <= 0 {
			return newError(CodeValidation, "commercial gestors need max_active_leads > 0")
		}
	case authz.RoleCRM:
		if user.Segment != nil && *user.Segment != models.SegmentCRM {
			return newError(CodeValidation, "CRM staff may only carry the CRM segment")
		}
		if user.MaxActiveLeads != 0 {
			return newError(CodeValidation, "CRM staff never own commercial leads")
		}
	}
	return nil
}

func (s *userService) CreateWithPassword(ctx context.Context, user *models.User, plainPassword string) error {
	if strings.TrimSpace(plainPassword) == "" {
		return newError(CodeValidation, "password is required")
	}
	if _, err := mail.ParseAddress(user.Email); err != nil {
		return newError(CodeValidation, "invalid email %q", user.Email)
	}
	if err := validateRoleSegment(user); err != nil {
		return err
	}

	hash, err := s.auth.HashPassword(plainPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.IsActive = true
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	return s.repo.Create(ctx, user)
}

func (s *userService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err == repositories.ErrNotFound {
		return nil, newError(CodeNotFound, "user %d not found", id)
	}
	return user, err
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err == repositories.ErrNotFound {
		return nil, newError(CodeNotFound, "user %s not found", email)
	}
	return user, err
}

func (s *userService) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *userService) Update(ctx context.Context, user *models.User) error {
	if err := validateRoleSegment(user); err != nil {
		return err
	}
	err := s.repo.Update(ctx, user)
	if err == repositories.ErrNotFound {
		return newError(CodeNotFound, "user %d not found", user.ID)
	}
	return err
}

func (s *userService) GestorLoads(ctx context.Context) ([]models.GestorLoad, error) {
	var out []models.GestorLoad
	for _, segment := range []models.Segment{models.SegmentEstandard, models.SegmentEstrategic, models.SegmentEnterprise} {
		loads, err := s.repo.ListGestorLoads(ctx, segment)
		if err != nil {
			return nil, err
		}
		out = append(out, loads...)
	}
	return out, nil
}
