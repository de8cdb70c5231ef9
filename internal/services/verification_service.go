package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"ofertalia/internal/authz"
	"ofertalia/internal/models"
	"ofertalia/internal/pdf"
)

// ApprovalPolicy decides where a CRM approval lands a lead.
type ApprovalPolicy string

const (
	// ApprovalPendingAdmin keeps the separate human contracting step.
	ApprovalPendingAdmin ApprovalPolicy = "pending_admin"
	// ApprovalDirectWon treats CRM approval as final contracting.
	ApprovalDirectWon ApprovalPolicy = "direct_won"
)

// VerificationChecks is the verifier's submitted outcome per check.
type VerificationChecks struct {
	CompanyIdentity bool `json:"company_identity"`
	Contact         bool `json:"contact"`
	TaxID           bool `json:"tax_id"`
}

type ApproveRequest struct {
	Notes       string             `json:"notes"`
	Checks      VerificationChecks `json:"checks"`
	Precontract models.Precontract `json:"precontract"`
}

// VerificationService is the CRM-only checkpoint between commercial negotiation
// and contracting. It consumes leads in DOCUMENTATION and nothing else.
type VerificationService struct {
	leads  *LeadService
	pdfGen pdf.Generator
	policy ApprovalPolicy
	now    func() time.Time
}

func NewVerificationService(leads *LeadService, pdfGen pdf.Generator, policy ApprovalPolicy) *VerificationService {
	if policy != ApprovalDirectWon {
		policy = ApprovalPendingAdmin
	}
	return &VerificationService{leads: leads, pdfGen: pdfGen, policy: policy, now: time.Now}
}

// Approve promotes a DOCUMENTATION lead toward contracting and stamps the
// write-once verification and precontract snapshots in the same atomic write.
func (s *VerificationService) Approve(ctx context.Context, verifier authz.Actor, leadID string, req ApproveRequest) (*models.Lead, error) {
	if verifier.Role != authz.RoleCRM {
		return nil, newError(CodeForbidden, "only CRM staff may approve verification")
	}
	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead.Status != models.LeadDocumentation {
		return nil, newError(CodePreconditionFailed, "lead %s is %s, approval requires DOCUMENTATION", leadID, lead.Status)
	}
	if !req.Checks.CompanyIdentity || !req.Checks.Contact || !req.Checks.TaxID {
		return nil, newError(CodeValidation, "all verification checks must pass before approval")
	}
	if strings.TrimSpace(req.Precontract.PlanID) == "" {
		return nil, newError(CodeValidation, "precontract plan_id is required")
	}
	if req.Precontract.NegotiatedTotal.IsNegative() {
		return nil, newError(CodeValidation, "negotiated_total must be >= 0")
	}

	target := models.LeadPendingAdmin
	if s.policy == ApprovalDirectWon {
		target = models.LeadWon
	}

	now := s.now()
	stamp := models.VerificationCheck{Passed: true, CheckedAt: now, CheckedBy: verifier.ID}
	verification := &models.CrmVerification{
		CompanyIdentity: stamp,
		Contact:         stamp,
		TaxID:           stamp,
		VerifiedBy:      verifier.ID,
		VerifiedAt:      now,
		Notes:           req.Notes,
	}
	precontract := req.Precontract

	updated, err := s.leads.Transition(ctx, verifier, leadID, target, &TransitionPayload{
		Note:         req.Notes,
		Verification: verification,
		Precontract:  &precontract,
	})
	if err != nil {
		return nil, err
	}
	observeVerification("approved")

	if s.pdfGen != nil {
		data := pdf.PrecontractData{
			LeadID:      updated.ID,
			CompanyName: updated.CompanyName,
			PlanID:      precontract.PlanID,
			Addons:      precontract.Addons,
			Total:       precontract.NegotiatedTotal,
			VerifiedAt:  now,
		}
		if path, err := s.pdfGen.GeneratePrecontract(data); err != nil {
			zap.S().Warnw("[verify][approve] precontract pdf failed", "lead_id", leadID, "err", err)
		} else {
			zap.S().Infow("[verify][approve] precontract pdf written", "lead_id", leadID, "path", path)
		}
	}
	return updated, nil
}

// Reject returns a DOCUMENTATION lead to an earlier commercial stage. History
// is never cleared; the reason lands in the transition's activity row.
func (s *VerificationService) Reject(ctx context.Context, verifier authz.Actor, leadID, reason string, returnTo models.LeadStatus) (*models.Lead, error) {
	if verifier.Role != authz.RoleCRM {
		return nil, newError(CodeForbidden, "only CRM staff may reject verification")
	}
	if returnTo != models.LeadNegotiation && returnTo != models.LeadContacted {
		return nil, newError(CodeValidation, "rejection may only return a lead to NEGOTIATION or CONTACTED")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, newError(CodeValidation, "a rejection reason is required")
	}
	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead.Status != models.LeadDocumentation {
		return nil, newError(CodePreconditionFailed, "lead %s is %s, rejection requires DOCUMENTATION", leadID, lead.Status)
	}

	updated, err := s.leads.Transition(ctx, verifier, leadID, returnTo, &TransitionPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	observeVerification("rejected")
	if s.leads.notifier != nil {
		s.leads.notifier.LeadRejected(updated, reason)
	}
	return updated, nil
}
