package services

import (
	"context"
	"strings"
	"time"

	"ofertalia/internal/authz"
	"ofertalia/internal/models"
	"ofertalia/internal/repositories"
	"ofertalia/internal/scoring"
)

// TaskService defines the interface for task-related business logic.
type TaskService interface {
	Create(ctx context.Context, actor authz.Actor, task *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	GetAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, actor authz.Actor, id int64, updateData *models.Task) (*models.Task, error)
	UpdateStatus(ctx context.Context, actor authz.Actor, id int64, to models.TaskStatus) (*models.Task, error)
	Delete(ctx context.Context, actor authz.Actor, id int64) error

	// Preview scores a hypothetical task without persisting anything.
	Preview(in scoring.Input, now time.Time) scoring.Scores
}

type taskService struct {
	repo repositories.TaskRepository
	now  func() time.Time
}

// NewTaskService creates a new instance of TaskService.
func NewTaskService(repo repositories.TaskRepository) TaskService {
	return &taskService{repo: repo, now: time.Now}
}

func (s *taskService) applyScores(task *models.Task) {
	sc := scoring.Compute(scoring.FromTask(task), s.now())
	task.UrgencyScore = sc.Urgency
	task.ImpactScore = sc.Impact
	task.EffortScore = sc.Effort
	task.AutoScore = sc.Auto
}

func (s *taskService) Create(ctx context.Context, actor authz.Actor, task *models.Task) (*models.Task, error) {
	if authz.IsReadOnly(actor.Role) {
		return nil, newError(CodeForbidden, "read-only role")
	}
	if strings.TrimSpace(task.Title) == "" {
		return nil, newError(CodeValidation, "title is required")
	}
	if task.EstimatedMinutes != nil && *task.EstimatedMinutes <= 0 {
		return nil, newError(CodeValidation, "estimated_minutes must be positive")
	}
	if task.Status == "" {
		task.Status = models.TaskPending
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	task.CreatorID = actor.ID
	if task.AssigneeID == 0 {
		task.AssigneeID = actor.ID
	}
	now := s.now()
	task.CreatedAt = now
	task.UpdatedAt = now
	s.applyScores(task)

	if err := s.repo.Store(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err == repositories.ErrNotFound {
		return nil, newError(CodeNotFound, "task %d not found", id)
	}
	return task, err
}

func (s *taskService) GetAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	return s.repo.FindAll(ctx, filter)
}

func (s *taskService) Update(ctx context.Context, actor authz.Actor, id int64, updateData *models.Task) (*models.Task, error) {
	if authz.IsReadOnly(actor.Role) {
		return nil, newError(CodeForbidden, "read-only role")
	}
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status.IsTerminal() {
		return nil, newError(CodePreconditionFailed, "task %d is %s and can no longer change", id, existing.Status)
	}
	if strings.TrimSpace(updateData.Title) == "" {
		return nil, newError(CodeValidation, "title is required")
	}

	existing.AssigneeID = updateData.AssigneeID
	existing.Title = updateData.Title
	existing.Description = updateData.Description
	existing.DueDate = updateData.DueDate
	existing.EstimatedMinutes = updateData.EstimatedMinutes
	if updateData.Priority != "" {
		existing.Priority = updateData.Priority
	}
	existing.UpdatedAt = s.now()
	s.applyScores(existing)

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *taskService) UpdateStatus(ctx context.Context, actor authz.Actor, id int64, to models.TaskStatus) (*models.Task, error) {
	if authz.IsReadOnly(actor.Role) {
		return nil, newError(CodeForbidden, "read-only role")
	}
	switch to {
	case models.TaskPending, models.TaskInProgress, models.TaskCompleted, models.TaskCancelled:
	default:
		return nil, newError(CodeValidation, "unknown task status %q", to)
	}
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status.IsTerminal() {
		return nil, newError(CodePreconditionFailed, "task %d is %s and can no longer change", id, existing.Status)
	}

	existing.Status = to
	existing.UpdatedAt = s.now()
	s.applyScores(existing)
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *taskService) Delete(ctx context.Context, actor authz.Actor, id int64) error {
	if actor.Role != authz.RoleAdmin {
		return newError(CodeForbidden, "only admins may delete tasks")
	}
	return s.repo.Delete(ctx, id)
}

func (s *taskService) Preview(in scoring.Input, now time.Time) scoring.Scores {
	return scoring.Compute(in, now)
}
