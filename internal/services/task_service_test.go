package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ofertalia/internal/authz"
	"ofertalia/internal/models"
	"ofertalia/internal/scoring"
)

func newTaskFixture() (*MockTaskRepository, *taskService) {
	repo := new(MockTaskRepository)
	svc := NewTaskService(repo).(*taskService)
	svc.now = func() time.Time { return fixedNow }
	return repo, svc
}

func intRef(v int) *int { return &v }

func TestTaskCreateComputesScores(t *testing.T) {
	repo, svc := newTaskFixture()
	repo.On("Store", mock.Anything, mock.Anything).Return(nil)

	due := fixedNow.Add(3 * time.Hour) // same calendar day
	companyID := int64(42)
	task, err := svc.Create(context.Background(), comercial(7), &models.Task{
		Title:            "Trucar per tancar la proposta",
		Priority:         models.PriorityUrgent,
		DueDate:          &due,
		EstimatedMinutes: intRef(10),
		CompanyID:        &companyID,
	})
	require.NoError(t, err)

	assert.Equal(t, models.TaskPending, task.Status)
	assert.Equal(t, int64(7), task.CreatorID)
	assert.Equal(t, int64(7), task.AssigneeID, "assignee defaults to the creator")
	assert.Equal(t, 75, task.UrgencyScore)
	assert.Equal(t, 90, task.ImpactScore)
	assert.Equal(t, 40, task.EffortScore)
	assert.Equal(t, 58, task.AutoScore)
}

func TestTaskCreateValidation(t *testing.T) {
	repo, svc := newTaskFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, comercial(7), &models.Task{Title: "  "})
	assert.True(t, IsCode(err, CodeValidation))

	_, err = svc.Create(ctx, comercial(7), &models.Task{Title: "X", EstimatedMinutes: intRef(0)})
	assert.True(t, IsCode(err, CodeValidation))

	_, err = svc.Create(ctx, authz.Actor{ID: 3, Role: authz.RoleAudit}, &models.Task{Title: "X"})
	assert.True(t, IsCode(err, CodeForbidden))

	repo.AssertNotCalled(t, "Store")
}

func TestTaskStatusChangeRescores(t *testing.T) {
	repo, svc := newTaskFixture()
	existing := &models.Task{
		ID:       5,
		Title:    "Preparar oferta",
		Priority: models.PriorityHigh,
		Status:   models.TaskPending,
	}
	repo.On("FindByID", mock.Anything, int64(5)).Return(existing, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	updated, err := svc.UpdateStatus(context.Background(), comercial(7), 5, models.TaskInProgress)
	require.NoError(t, err)

	// high base 30 plus the in-progress momentum bonus
	assert.Equal(t, 40, updated.UrgencyScore)
	assert.Equal(t, fixedNow, updated.UpdatedAt)
}

func TestTaskTerminalIsImmutable(t *testing.T) {
	repo, svc := newTaskFixture()
	done := &models.Task{ID: 5, Title: "Feina feta", Status: models.TaskCompleted}
	repo.On("FindByID", mock.Anything, int64(5)).Return(done, nil)
	ctx := context.Background()

	_, err := svc.Update(ctx, comercial(7), 5, &models.Task{Title: "Nou titol"})
	assert.True(t, IsCode(err, CodePreconditionFailed))

	_, err = svc.UpdateStatus(ctx, comercial(7), 5, models.TaskPending)
	assert.True(t, IsCode(err, CodePreconditionFailed))

	repo.AssertNotCalled(t, "Update")
}

func TestTaskUpdateStatusUnknownValue(t *testing.T) {
	repo, svc := newTaskFixture()
	_, err := svc.UpdateStatus(context.Background(), comercial(7), 5, models.TaskStatus("DONE"))
	assert.True(t, IsCode(err, CodeValidation))
	repo.AssertNotCalled(t, "FindByID")
}

func TestTaskDeleteIsAdminOnly(t *testing.T) {
	repo, svc := newTaskFixture()
	repo.On("Delete", mock.Anything, int64(5)).Return(nil)
	ctx := context.Background()

	err := svc.Delete(ctx, comercial(7), 5)
	assert.True(t, IsCode(err, CodeForbidden))

	err = svc.Delete(ctx, authz.Actor{ID: 1, Role: authz.RoleAdmin}, 5)
	assert.NoError(t, err)
}

func TestTaskPreviewIsPure(t *testing.T) {
	_, svc := newTaskFixture()
	in := scoring.Input{Priority: models.PriorityUrgent, CompanyLinked: true}

	first := svc.Preview(in, fixedNow)
	second := svc.Preview(in, fixedNow)
	assert.Equal(t, first, second)
	assert.Equal(t, scoring.Compute(in, fixedNow), first)
}
