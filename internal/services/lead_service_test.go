package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ofertalia/internal/authz"
	"ofertalia/internal/models"
	"ofertalia/internal/repositories"
)

var fixedNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func int64Ptr(v int64) *int64 { return &v }

type leadServiceFixture struct {
	repo  *MockLeadRepository
	acts  *MockActivityRepository
	users *MockUserRepository
	svc   *LeadService
}

func newLeadServiceFixture() *leadServiceFixture {
	repo := new(MockLeadRepository)
	acts := new(MockActivityRepository)
	users := new(MockUserRepository)
	svc := NewLeadService(repo, acts, users, NewAllocatorService(users), nil, nil)
	svc.now = func() time.Time { return fixedNow }
	return &leadServiceFixture{repo: repo, acts: acts, users: users, svc: svc}
}

func comercial(id int64) authz.Actor { return authz.Actor{ID: id, Role: authz.RoleComercial} }

func negotiationLead(owner int64) *models.Lead {
	return &models.Lead{
		ID:               "5f0a2d9e-7c1b-4d6a-9e3f-b2c4d5e6f701",
		CompanyName:      "Forn Vilanova SL",
		Employees:        12,
		EstimatedRevenue: decimal.NewFromInt(6000),
		Status:           models.LeadNegotiation,
		Priority:         models.PriorityMedium,
		Source:           models.SourceWebForm,
		AssignedToID:     int64Ptr(owner),
		CreatedAt:        fixedNow.Add(-48 * time.Hour),
		UpdatedAt:        fixedNow.Add(-2 * time.Hour),
	}
}

func TestCreateLead(t *testing.T) {
	f := newLeadServiceFixture()
	var storedAct *models.LeadActivity
	f.repo.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { storedAct = args.Get(2).(*models.LeadActivity) }).
		Return(nil)

	lead, err := f.svc.Create(context.Background(), comercial(7), &models.Lead{
		CompanyName:      "Forn Vilanova SL",
		ContactEmail:     "gerencia@fornvilanova.example",
		Employees:        12,
		EstimatedRevenue: decimal.NewFromInt(6000),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, models.LeadNew, lead.Status)
	assert.Equal(t, models.PriorityMedium, lead.Priority)
	assert.Equal(t, models.SourceManual, lead.Source)
	require.NotNil(t, lead.Score)
	assert.Equal(t, fixedNow, lead.CreatedAt)

	require.NotNil(t, storedAct)
	assert.Equal(t, models.ActivityCreated, storedAct.Type)
	assert.Equal(t, lead.ID, storedAct.LeadID)
	assert.Equal(t, int64(7), storedAct.UserID)
}

func TestCreateLeadValidation(t *testing.T) {
	f := newLeadServiceFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, comercial(7), &models.Lead{CompanyName: "   "})
	assert.True(t, IsCode(err, CodeValidation))

	_, err = f.svc.Create(ctx, comercial(7), &models.Lead{CompanyName: "X", ContactEmail: "not-an-email"})
	assert.True(t, IsCode(err, CodeValidation))

	_, err = f.svc.Create(ctx, comercial(7), &models.Lead{CompanyName: "X", EstimatedRevenue: decimal.NewFromInt(-1)})
	assert.True(t, IsCode(err, CodeValidation))

	_, err = f.svc.Create(ctx, authz.Actor{ID: 3, Role: authz.RoleAudit}, &models.Lead{CompanyName: "X"})
	assert.True(t, IsCode(err, CodeForbidden))

	f.repo.AssertNotCalled(t, "Create")
}

func TestCreateLeadScore(t *testing.T) {
	f := newLeadServiceFixture()
	f.repo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	lead, err := f.svc.Create(context.Background(), comercial(7), &models.Lead{
		CompanyName:      "Grans Comptes SA",
		Priority:         models.PriorityUrgent,
		Source:           models.SourceReferral,
		Employees:        200,
		EstimatedRevenue: decimal.NewFromInt(90000),
	})
	require.NoError(t, err)
	// 70 priority + 15 referral + 15 enterprise
	assert.Equal(t, 100, *lead.Score)
}

func TestTransitionWritesSingleActivity(t *testing.T) {
	f := newLeadServiceFixture()
	lead := negotiationLead(7)
	previousUpdate := lead.UpdatedAt
	f.repo.On("GetByID", mock.Anything, lead.ID).Return(lead, nil)

	var gotExpected time.Time
	var gotAct *models.LeadActivity
	f.repo.On("ApplyTransition", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotExpected = args.Get(2).(time.Time)
			gotAct = args.Get(3).(*models.LeadActivity)
		}).
		Return(nil)

	updated, err := f.svc.Transition(context.Background(), comercial(7), lead.ID, models.LeadQualified, nil)
	require.NoError(t, err)

	assert.Equal(t, models.LeadQualified, updated.Status)
	assert.Equal(t, fixedNow, updated.UpdatedAt)
	assert.Equal(t, previousUpdate, gotExpected)

	require.NotNil(t, gotAct)
	assert.Equal(t, models.ActivityStatusChange, gotAct.Type)
	assert.Equal(t, "status NEGOTIATION -> QUALIFIED", gotAct.Description)
	f.repo.AssertNumberOfCalls(t, "ApplyTransition", 1)
	f.acts.AssertNotCalled(t, "Append")
}

func TestTransitionIllegalEdgeWritesNothing(t *testing.T) {
	f := newLeadServiceFixture()
	lead := negotiationLead(7)
	f.repo.On("GetByID", mock.Anything, lead.ID).Return(lead, nil)

	_, err := f.svc.Transition(context.Background(), comercial(7), lead.ID, models.LeadWon, nil)
	assert.True(t, IsCode(err, CodeInvalidTransition))
	f.repo.AssertNotCalled(t, "ApplyTransition")
}

func TestTransitionOwnership(t *testing.T) {
	f := newLeadServiceFixture()
	lead := negotiationLead(7)
	f.repo.On("GetByID", mock.Anything, lead.ID).Return(lead, nil)

	_, err := f.svc.Transition(context.Background(), comercial(9), lead.ID, models.LeadQualified, nil)
	assert.True(t, IsCode(err, CodeForbidden))
	f.repo.AssertNotCalled(t, "ApplyTransition")
}

func TestTransitionLostRequiresReason(t *testing.T) {
	f := newLeadServiceFixture()
	lead := negotiationLead(7)
	f.repo.On("GetByID", mock.Anything, lead.ID).Return(lead, nil)

	_, err := f.svc.Transition(context.Background(), comercial(7), lead.ID, models.LeadLost, nil)
	assert.True(t, IsCode(err, CodeValidation))

	f.repo.On("ApplyTransition", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	updated, err := f.svc.Transition(context.Background(), comercial(7), lead.ID,
		models.LeadLost, &TransitionPayload{Reason: "pressupost fora de rang"})
	require.NoError(t, err)
	assert.Equal(t, "pressupost fora de rang", updated.LostReason)
}

func TestTransitionStaleLeadConflicts(t *testing.T) {
	f := newLeadServiceFixture()
	lead := negotiationLead(7)
	f.repo.On("GetByID", mock.Anything, lead.ID).Return(lead, nil)
	f.repo.On("ApplyTransition", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(repositories.ErrStale)

	_, err := f.svc.Transition(context.Background(), comercial(7), lead.ID, models.LeadQualified, nil)
	assert.True(t, IsCode(err, CodeConflict))
}

func TestTransitionVerificationEdgeRequiresSnapshots(t *testing.T) {
	f := newLeadServiceFixture()
	lead := negotiationLead(7)
	lead.Status = models.LeadDocumentation
	f.repo.On("GetByID", mock.Anything, lead.ID).Return(lead, nil)

	crm := authz.Actor{ID: 20, Role: authz.RoleCRM}
	_, err := f.svc.Transition(context.Background(), crm, lead.ID, models.LeadPendingAdmin, nil)
	assert.True(t, IsCode(err, CodeValidation))
	f.repo.AssertNotCalled(t, "ApplyTransition")
}

func TestTransitionUnknownTarget(t *testing.T) {
	f := newLeadServiceFixture()
	_, err := f.svc.Transition(context.Background(), comercial(7), "lead-1", models.LeadStatus("APPROVED"), nil)
	assert.True(t, IsCode(err, CodeValidation))
	f.repo.AssertNotCalled(t, "GetByID")
}

func TestAssignAutomatic(t *testing.T) {
	f := newLeadServiceFixture()
	lead := negotiationLead(7)
	lead.AssignedToID = nil
	lead.EstimatedRevenue = decimal.NewFromInt(75000) // enterprise by revenue
	f.repo.On("GetByID", mock.Anything, lead.ID).Return(lead, nil)
	f.users.On("ListGestorLoads", mock.Anything, models.SegmentEnterprise).Return([]models.GestorLoad{
		{GestorID: 11, Name: "Anna", Segment: models.SegmentEnterprise, ActiveLeads: 3, MaxActiveLeads: 10},
		{GestorID: 12, Name: "Berta", Segment: models.SegmentEnterprise, ActiveLeads: 7, MaxActiveLeads: 10},
	}, nil)

	var gotAct *models.LeadActivity
	f.repo.On("ApplyTransition", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { gotAct = args.Get(3).(*models.LeadActivity) }).
		Return(nil)

	updated, err := f.svc.Assign(context.Background(), authz.Actor{ID: 1, Role: authz.RoleAdmin}, lead.ID, nil)
	require.NoError(t, err)

	require.NotNil(t, updated.AssignedToID)
	assert.Equal(t, int64(11), *updated.AssignedToID)
	require.NotNil(t, gotAct)
	assert.Equal(t, models.ActivityUpdated, gotAct.Type)
	assert.Equal(t, "owner changed: unassigned -> gestor 11 (Anna)", gotAct.Description)
}

func TestAssignAutomaticNoCapacity(t *testing.T) {
	f := newLeadServiceFixture()
	lead := negotiationLead(7)
	f.repo.On("GetByID", mock.Anything, lead.ID).Return(lead, nil)
	f.users.On("ListGestorLoads", mock.Anything, models.SegmentEstandard).Return([]models.GestorLoad{
		{GestorID: 11, ActiveLeads: 10, MaxActiveLeads: 10},
	}, nil)

	_, err := f.svc.Assign(context.Background(), authz.Actor{ID: 1, Role: authz.RoleAdmin}, lead.ID, nil)
	assert.True(t, IsCode(err, CodeCapacityExceeded))
	f.repo.AssertNotCalled(t, "ApplyTransition")
}

func TestAssignManualSegmentMismatch(t *testing.T) {
	f := newLeadServiceFixture()
	lead := negotiationLead(7)
	lead.EstimatedRevenue = decimal.NewFromInt(75000)
	f.repo.On("GetByID", mock.Anything, lead.ID).Return(lead, nil)

	seg := models.SegmentEstandard
	f.users.On("GetByID", mock.Anything, int64(33)).Return(&models.User{
		ID: 33, Name: "Dídac", RoleID: authz.RoleComercial, Segment: &seg, IsActive: true, MaxActiveLeads: 10,
	}, nil)

	_, err := f.svc.Assign(context.Background(), authz.Actor{ID: 1, Role: authz.RoleAdmin}, lead.ID, int64Ptr(33))
	assert.True(t, IsCode(err, CodeValidation))
	f.repo.AssertNotCalled(t, "ApplyTransition")
}

func TestAssignManualNeedsAssignmentRole(t *testing.T) {
	f := newLeadServiceFixture()
	lead := negotiationLead(7)
	f.repo.On("GetByID", mock.Anything, lead.ID).Return(lead, nil)

	_, err := f.svc.Assign(context.Background(), comercial(7), lead.ID, int64Ptr(33))
	assert.True(t, IsCode(err, CodeForbidden))
}

func TestAssignTerminalLead(t *testing.T) {
	f := newLeadServiceFixture()
	lead := negotiationLead(7)
	lead.Status = models.LeadWon
	f.repo.On("GetByID", mock.Anything, lead.ID).Return(lead, nil)

	_, err := f.svc.Assign(context.Background(), authz.Actor{ID: 1, Role: authz.RoleAdmin}, lead.ID, nil)
	assert.True(t, IsCode(err, CodePreconditionFailed))
}

func TestRecordNoteOnTerminalLead(t *testing.T) {
	f := newLeadServiceFixture()
	lead := negotiationLead(7)
	lead.Status = models.LeadLost
	f.repo.On("GetByID", mock.Anything, lead.ID).Return(lead, nil)
	f.acts.On("Append", mock.Anything, mock.Anything).Return(nil)

	act, err := f.svc.RecordNote(context.Background(), comercial(7), lead.ID, "client va signar amb la competencia")
	require.NoError(t, err)
	assert.Equal(t, models.ActivityNote, act.Type)
	assert.Equal(t, fixedNow, act.CreatedAt)
}

func TestGetByIDNotFound(t *testing.T) {
	f := newLeadServiceFixture()
	f.repo.On("GetByID", mock.Anything, "missing").Return(nil, repositories.ErrNotFound)

	_, err := f.svc.GetByID(context.Background(), "missing")
	assert.True(t, IsCode(err, CodeNotFound))
}

func TestUpdateDetailsRecomputesScore(t *testing.T) {
	f := newLeadServiceFixture()
	lead := negotiationLead(7)
	low := 30
	lead.Score = &low
	f.repo.On("GetByID", mock.Anything, lead.ID).Return(lead, nil)
	f.repo.On("UpdateDetails", mock.Anything, mock.Anything).Return(nil)

	updated, err := f.svc.UpdateDetails(context.Background(), comercial(7), lead.ID, &models.Lead{
		CompanyName:      "Forn Vilanova SL",
		Priority:         models.PriorityUrgent,
		Employees:        150,
		EstimatedRevenue: decimal.NewFromInt(60000),
	})
	require.NoError(t, err)
	// 70 urgent + 5 web form + 15 enterprise
	assert.Equal(t, 90, *updated.Score)
	assert.Equal(t, models.LeadNegotiation, updated.Status, "descriptive update must not move status")
}
