package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ofertalia/internal/authz"
	"ofertalia/internal/models"
	"ofertalia/internal/repositories"
)

// TransitionPayload carries the optional extras of a status change.
type TransitionPayload struct {
	Note         string
	Reason       string // mandatory context for LOST and for gate rejections
	Verification *models.CrmVerification
	Precontract  *models.Precontract
}

type LeadService struct {
	repo       repositories.LeadRepository
	activities repositories.ActivityRepository
	users      repositories.UserRepository
	allocator  *AllocatorService
	tasks      TaskService
	notifier   Notifier
	now        func() time.Time
}

func NewLeadService(
	repo repositories.LeadRepository,
	activities repositories.ActivityRepository,
	users repositories.UserRepository,
	allocator *AllocatorService,
	tasks TaskService,
	notifier Notifier,
) *LeadService {
	return &LeadService{
		repo:       repo,
		activities: activities,
		users:      users,
		allocator:  allocator,
		tasks:      tasks,
		notifier:   notifier,
		now:        time.Now,
	}
}

// Create validates the lead, stamps it NEW and writes it together with its
// CREATED activity row in one transaction.
func (s *LeadService) Create(ctx context.Context, actor authz.Actor, lead *models.Lead) (*models.Lead, error) {
	if authz.IsReadOnly(actor.Role) {
		return nil, newError(CodeForbidden, "read-only role")
	}
	if strings.TrimSpace(lead.CompanyName) == "" {
		return nil, newError(CodeValidation, "company_name is required")
	}
	if lead.ContactEmail != "" {
		if _, err := mail.ParseAddress(lead.ContactEmail); err != nil {
			return nil, newError(CodeValidation, "invalid contact_email %q", lead.ContactEmail)
		}
	}
	if lead.EstimatedRevenue.IsNegative() {
		return nil, newError(CodeValidation, "estimated_revenue must be >= 0")
	}

	now := s.now()
	lead.ID = uuid.NewString()
	lead.Status = models.LeadNew
	if lead.Priority == "" {
		lead.Priority = models.PriorityMedium
	}
	if lead.Source == "" {
		lead.Source = models.SourceManual
	}
	score := leadScore(lead)
	lead.Score = &score
	lead.CreatedAt = now
	lead.UpdatedAt = now

	act := &models.LeadActivity{
		LeadID:      lead.ID,
		UserID:      actor.ID,
		Type:        models.ActivityCreated,
		Description: fmt.Sprintf("lead created for %s (source %s)", lead.CompanyName, lead.Source),
		CreatedAt:   now,
	}
	if err := s.repo.Create(ctx, lead, act); err != nil {
		return nil, err
	}
	zap.S().Infow("[lead][create]", "lead_id", lead.ID, "company", lead.CompanyName, "actor", actor.ID)
	return lead, nil
}

func (s *LeadService) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err == repositories.ErrNotFound {
		return nil, newError(CodeNotFound, "lead %s not found", id)
	}
	return lead, err
}

func (s *LeadService) List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, error) {
	return s.repo.List(ctx, filter)
}

// UpdateDetails writes descriptive fields only. Status and ownership never move
// through here; they have their own audited operations.
func (s *LeadService) UpdateDetails(ctx context.Context, actor authz.Actor, id string, updated *models.Lead) (*models.Lead, error) {
	if authz.IsReadOnly(actor.Role) {
		return nil, newError(CodeForbidden, "read-only role")
	}
	lead, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnershipOrElevated(actor, lead); err != nil {
		return nil, err
	}
	if strings.TrimSpace(updated.CompanyName) == "" {
		return nil, newError(CodeValidation, "company_name is required")
	}
	if updated.ContactEmail != "" {
		if _, err := mail.ParseAddress(updated.ContactEmail); err != nil {
			return nil, newError(CodeValidation, "invalid contact_email %q", updated.ContactEmail)
		}
	}
	if updated.EstimatedRevenue.IsNegative() {
		return nil, newError(CodeValidation, "estimated_revenue must be >= 0")
	}

	lead.CompanyName = updated.CompanyName
	lead.Sector = updated.Sector
	lead.ContactName = updated.ContactName
	lead.ContactEmail = updated.ContactEmail
	lead.ContactPhone = updated.ContactPhone
	lead.Website = updated.Website
	lead.Employees = updated.Employees
	lead.EstimatedRevenue = updated.EstimatedRevenue
	if updated.Priority != "" {
		lead.Priority = updated.Priority
	}
	score := leadScore(lead)
	lead.Score = &score
	lead.UpdatedAt = s.now()

	if err := s.repo.UpdateDetails(ctx, lead); err != nil {
		if err == repositories.ErrNotFound {
			return nil, newError(CodeNotFound, "lead %s not found", id)
		}
		return nil, err
	}
	return lead, nil
}

// Transition applies one edge of the pipeline. The status write, the updated_at
// bump and the single STATUS_CHANGE activity row commit atomically; a lost
// optimistic race surfaces as Conflict with no partial effect.
func (s *LeadService) Transition(ctx context.Context, actor authz.Actor, leadID string, target models.LeadStatus, payload *TransitionPayload) (*models.Lead, error) {
	if authz.IsReadOnly(actor.Role) {
		return nil, newError(CodeForbidden, "read-only role")
	}
	if !ValidStatus(target) {
		return nil, newError(CodeValidation, "unknown target status %q", target)
	}
	lead, err := s.GetByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if err := canTransition(lead.Status, target, actor.Role); err != nil {
		return nil, err
	}
	if actor.Role == authz.RoleComercial {
		if err := s.requireOwnershipOrElevated(actor, lead); err != nil {
			return nil, err
		}
	}
	if payload == nil {
		payload = &TransitionPayload{}
	}
	if isVerificationEdge(lead.Status, target) {
		if payload.Verification == nil || payload.Precontract == nil {
			return nil, newError(CodeValidation, "verification and precontract snapshots are required for %s -> %s", lead.Status, target)
		}
	}
	if target == models.LeadLost && strings.TrimSpace(payload.Reason) == "" {
		return nil, newError(CodeValidation, "a reason is required to mark a lead LOST")
	}

	from := lead.Status
	now := s.now()
	expected := lead.UpdatedAt

	lead.Status = target
	lead.UpdatedAt = now
	if target == models.LeadLost {
		lead.LostReason = payload.Reason
	}
	if isVerificationEdge(from, target) {
		lead.CrmVerification = payload.Verification
		lead.Precontract = payload.Precontract
	}

	desc := fmt.Sprintf("status %s -> %s", from, target)
	if payload.Reason != "" {
		desc += ": " + payload.Reason
	}
	if payload.Note != "" {
		desc += " (" + payload.Note + ")"
	}
	act := &models.LeadActivity{
		LeadID:      lead.ID,
		UserID:      actor.ID,
		Type:        models.ActivityStatusChange,
		Description: desc,
		CreatedAt:   now,
	}

	if err := s.repo.ApplyTransition(ctx, lead, expected, act); err != nil {
		if err == repositories.ErrStale {
			return nil, newError(CodeConflict, "lead %s was modified concurrently, re-read and retry", leadID)
		}
		return nil, err
	}
	zap.S().Infow("[lead][transition]", "lead_id", lead.ID, "from", from, "to", target, "actor", actor.ID)
	observeTransition(from, target)

	s.afterTransition(ctx, actor, lead, from)
	return lead, nil
}

// afterTransition runs the post-commit side effects: stage-entry follow-up
// tasks and notifications. Failures here never undo the committed transition.
func (s *LeadService) afterTransition(ctx context.Context, actor authz.Actor, lead *models.Lead, from models.LeadStatus) {
	switch lead.Status {
	case models.LeadProposalSent:
		s.systemFollowUpTask(ctx, actor, lead, "Seguiment proposta", 7)
	case models.LeadPendingAdmin:
		s.systemFollowUpTask(ctx, actor, lead, "Tramitar contracte", 3)
		if s.notifier != nil {
			s.notifier.LeadReadyToContract(lead)
		}
	case models.LeadWon:
		if s.notifier != nil {
			s.notifier.LeadWon(lead)
		}
	}
}

func (s *LeadService) systemFollowUpTask(ctx context.Context, actor authz.Actor, lead *models.Lead, title string, dueDays int) {
	if s.tasks == nil {
		return
	}
	assignee := actor.ID
	if lead.AssignedToID != nil {
		assignee = *lead.AssignedToID
	}
	due := s.now().AddDate(0, 0, dueDays)
	task := &models.Task{
		CreatorID:   actor.ID,
		AssigneeID:  assignee,
		LeadID:      &lead.ID,
		Title:       fmt.Sprintf("%s: %s", title, lead.CompanyName),
		Description: fmt.Sprintf("generated on entry to %s", lead.Status),
		DueDate:     &due,
		Priority:    lead.Priority,
	}
	if _, err := s.tasks.Create(ctx, actor, task); err != nil {
		zap.S().Warnw("[lead][followup] task creation failed", "lead_id", lead.ID, "err", err)
	}
}

// Assign picks or overrides the lead owner. Nil gestorID triggers automatic
// allocation; a concrete one is a manual override by an assignment-capable role.
func (s *LeadService) Assign(ctx context.Context, actor authz.Actor, leadID string, gestorID *int64) (*models.Lead, error) {
	if authz.IsReadOnly(actor.Role) {
		return nil, newError(CodeForbidden, "read-only role")
	}
	lead, err := s.GetByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead.Status.IsTerminal() {
		return nil, newError(CodePreconditionFailed, "lead %s is %s, only notes and tasks remain possible", leadID, lead.Status)
	}

	var target models.GestorLoad
	if gestorID == nil {
		pick, err := s.allocator.PickGestor(ctx, lead)
		if err != nil {
			return nil, err
		}
		target = *pick
	} else {
		if !authz.CanAssign(actor.Role) {
			return nil, newError(CodeForbidden, "role %d may not reassign leads", actor.Role)
		}
		gestor, err := s.users.GetByID(ctx, *gestorID)
		if err == repositories.ErrNotFound {
			return nil, newError(CodeValidation, "gestor %d not found", *gestorID)
		}
		if err != nil {
			return nil, err
		}
		if !gestor.IsActive || gestor.RoleID != authz.RoleComercial || gestor.Segment == nil {
			return nil, newError(CodeValidation, "user %d is not an active commercial gestor", *gestorID)
		}
		if want := DeriveSegment(lead.Employees, lead.EstimatedRevenue); *gestor.Segment != want {
			return nil, newError(CodeValidation, "gestor %d is segment %s, lead requires %s", *gestorID, *gestor.Segment, want)
		}
		target = models.GestorLoad{GestorID: gestor.ID, Name: gestor.Name, Segment: *gestor.Segment}
	}

	from := "unassigned"
	if lead.AssignedToID != nil {
		from = fmt.Sprintf("gestor %d", *lead.AssignedToID)
	}
	now := s.now()
	expected := lead.UpdatedAt
	lead.AssignedToID = &target.GestorID
	lead.UpdatedAt = now

	act := &models.LeadActivity{
		LeadID:      lead.ID,
		UserID:      actor.ID,
		Type:        models.ActivityUpdated,
		Description: fmt.Sprintf("owner changed: %s -> gestor %d (%s)", from, target.GestorID, target.Name),
		CreatedAt:   now,
	}
	if err := s.repo.ApplyTransition(ctx, lead, expected, act); err != nil {
		if err == repositories.ErrStale {
			return nil, newError(CodeConflict, "lead %s was modified concurrently, re-read and retry", leadID)
		}
		return nil, err
	}
	mode := "auto"
	if gestorID != nil {
		mode = "manual"
	}
	zap.S().Infow("[lead][assign]", "lead_id", lead.ID, "gestor_id", target.GestorID, "mode", mode)
	observeAssignment(target.Segment, mode)
	if s.notifier != nil {
		if gestor, err := s.users.GetByID(ctx, target.GestorID); err == nil {
			s.notifier.LeadAssigned(lead, gestor)
		}
	}
	return lead, nil
}

// RecordNote appends a free-text NOTE outside any transition. Notes stay legal
// on terminal leads.
func (s *LeadService) RecordNote(ctx context.Context, actor authz.Actor, leadID, description string) (*models.LeadActivity, error) {
	if authz.IsReadOnly(actor.Role) {
		return nil, newError(CodeForbidden, "read-only role")
	}
	if strings.TrimSpace(description) == "" {
		return nil, newError(CodeValidation, "description is required")
	}
	if _, err := s.GetByID(ctx, leadID); err != nil {
		return nil, err
	}
	act := &models.LeadActivity{
		LeadID:      leadID,
		UserID:      actor.ID,
		Type:        models.ActivityNote,
		Description: description,
		CreatedAt:   s.now(),
	}
	if err := s.activities.Append(ctx, act); err != nil {
		return nil, err
	}
	return act, nil
}

func (s *LeadService) Activities(ctx context.Context, leadID string) ([]models.LeadActivity, error) {
	if _, err := s.GetByID(ctx, leadID); err != nil {
		return nil, err
	}
	return s.activities.ListByLead(ctx, leadID)
}

func (s *LeadService) requireOwnershipOrElevated(actor authz.Actor, lead *models.Lead) error {
	if authz.IsElevated(actor.Role) {
		return nil
	}
	if lead.AssignedToID == nil || *lead.AssignedToID != actor.ID {
		return newError(CodeForbidden, "lead %s is not owned by actor %d", lead.ID, actor.ID)
	}
	return nil
}

// leadScore is a deterministic 0-100 ranking of the lead itself, recomputed on
// create and on every descriptive update.
func leadScore(lead *models.Lead) int {
	score := 0
	switch lead.Priority {
	case models.PriorityUrgent:
		score += 70
	case models.PriorityHigh:
		score += 50
	case models.PriorityMedium:
		score += 30
	default:
		score += 10
	}
	switch lead.Source {
	case models.SourceReferral:
		score += 15
	case models.SourceAIProspecting:
		score += 10
	case models.SourceWebForm:
		score += 5
	}
	switch DeriveSegment(lead.Employees, lead.EstimatedRevenue) {
	case models.SegmentEnterprise:
		score += 15
	case models.SegmentEstrategic:
		score += 10
	default:
		score += 5
	}
	if score > 100 {
		score = 100
	}
	return score
}
