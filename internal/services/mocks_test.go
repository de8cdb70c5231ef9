package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"ofertalia/internal/models"
)

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *models.Lead, act *models.LeadActivity) error {
	args := m.Called(ctx, lead, act)
	return args.Error(0)
}

func (m *MockLeadRepository) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	args := m.Called(ctx, id)
	if lead, ok := args.Get(0).(*models.Lead); ok {
		return lead, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeadRepository) List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, error) {
	args := m.Called(ctx, filter)
	if leads, ok := args.Get(0).([]models.Lead); ok {
		return leads, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeadRepository) UpdateDetails(ctx context.Context, lead *models.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) ApplyTransition(ctx context.Context, lead *models.Lead, expectedUpdatedAt time.Time, act *models.LeadActivity) error {
	args := m.Called(ctx, lead, expectedUpdatedAt, act)
	return args.Error(0)
}

// MockActivityRepository
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Append(ctx context.Context, act *models.LeadActivity) error {
	args := m.Called(ctx, act)
	return args.Error(0)
}

func (m *MockActivityRepository) ListByLead(ctx context.Context, leadID string) ([]models.LeadActivity, error) {
	args := m.Called(ctx, leadID)
	if acts, ok := args.Get(0).([]models.LeadActivity); ok {
		return acts, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockActivityRepository) CountByType(ctx context.Context, leadID string, t models.ActivityType) (int, error) {
	args := m.Called(ctx, leadID, t)
	return args.Int(0), args.Error(1)
}

// MockUserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	args := m.Called(ctx, limit, offset)
	if users, ok := args.Get(0).([]models.User); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) ListGestorLoads(ctx context.Context, segment models.Segment) ([]models.GestorLoad, error) {
	args := m.Called(ctx, segment)
	if loads, ok := args.Get(0).([]models.GestorLoad); ok {
		return loads, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockTaskRepository
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Store(ctx context.Context, task *models.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	args := m.Called(ctx, id)
	if task, ok := args.Get(0).(*models.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskRepository) FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	args := m.Called(ctx, filter)
	if tasks, ok := args.Get(0).([]models.Task); ok {
		return tasks, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, task *models.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
