package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LeadStatus is the closed set of pipeline states.
type LeadStatus string

const (
	LeadNew           LeadStatus = "NEW"
	LeadContacted     LeadStatus = "CONTACTED"
	LeadNegotiation   LeadStatus = "NEGOTIATION"
	LeadQualified     LeadStatus = "QUALIFIED"
	LeadProposalSent  LeadStatus = "PROPOSAL_SENT"
	LeadDocumentation LeadStatus = "DOCUMENTATION"
	LeadPendingAdmin  LeadStatus = "PENDING_ADMIN"
	LeadWon           LeadStatus = "WON"
	LeadLost          LeadStatus = "LOST"
)

// IsTerminal reports whether no further status transition is legal.
func (s LeadStatus) IsTerminal() bool {
	return s == LeadWon || s == LeadLost
}

type LeadPriority string

const (
	PriorityLow    LeadPriority = "LOW"
	PriorityMedium LeadPriority = "MEDIUM"
	PriorityHigh   LeadPriority = "HIGH"
	PriorityUrgent LeadPriority = "URGENT"
)

type LeadSource string

const (
	SourceManual        LeadSource = "MANUAL"
	SourceWebForm       LeadSource = "WEB_FORM"
	SourceAIProspecting LeadSource = "AI_PROSPECTING"
	SourceReferral      LeadSource = "REFERRAL"
)

// Segment is the capacity/complexity tier used to route leads to gestors.
type Segment string

const (
	SegmentEstandard  Segment = "ESTANDARD"
	SegmentEstrategic Segment = "ESTRATEGIC"
	SegmentEnterprise Segment = "ENTERPRISE"
	SegmentCRM        Segment = "CRM"
)

// VerificationCheck is a single CRM check with its outcome and audit stamp.
type VerificationCheck struct {
	Passed    bool      `json:"passed"`
	CheckedAt time.Time `json:"checked_at"`
	CheckedBy int64     `json:"checked_by"`
}

// CrmVerification is the write-once snapshot captured when a lead passes the gate.
type CrmVerification struct {
	CompanyIdentity VerificationCheck `json:"company_identity"`
	Contact         VerificationCheck `json:"contact"`
	TaxID           VerificationCheck `json:"tax_id"`
	VerifiedBy      int64             `json:"verified_by"`
	VerifiedAt      time.Time         `json:"verified_at"`
	Notes           string            `json:"notes,omitempty"`
}

// Precontract is the negotiated plan/price snapshot captured at verification.
type Precontract struct {
	PlanID          string          `json:"plan_id"`
	Addons          []string        `json:"addons,omitempty"`
	NegotiatedTotal decimal.Decimal `json:"negotiated_total"`
}

// Value / Scan store the snapshots as JSONB.
func (v CrmVerification) Value() (driver.Value, error) { return json.Marshal(v) }

func (v *CrmVerification) Scan(src any) error {
	if src == nil {
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("crm_verification: unexpected type %T", src)
	}
	return json.Unmarshal(b, v)
}

func (p Precontract) Value() (driver.Value, error) { return json.Marshal(p) }

func (p *Precontract) Scan(src any) error {
	if src == nil {
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("precontract: unexpected type %T", src)
	}
	return json.Unmarshal(b, p)
}

// Lead is a prospective client company moving through the commercial pipeline.
type Lead struct {
	ID               string           `json:"id"`
	CompanyName      string           `json:"company_name"`
	Sector           string           `json:"sector"`
	ContactName      string           `json:"contact_name"`
	ContactEmail     string           `json:"contact_email"`
	ContactPhone     string           `json:"contact_phone"`
	Website          string           `json:"website"`
	Employees        int              `json:"employees"`
	EstimatedRevenue decimal.Decimal  `json:"estimated_revenue"`
	Status           LeadStatus       `json:"status"`
	Priority         LeadPriority     `json:"priority"`
	Score            *int             `json:"score,omitempty"`
	Source           LeadSource       `json:"source"`
	AssignedToID     *int64           `json:"assigned_to_id,omitempty"`
	CrmVerification  *CrmVerification `json:"crm_verification,omitempty"`
	Precontract      *Precontract     `json:"precontract,omitempty"`
	LostReason       string           `json:"lost_reason,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// LeadFilter defines the available parameters for listing leads.
type LeadFilter struct {
	Status       *LeadStatus
	AssignedToID *int64
	Source       *LeadSource
	Limit        int
	Offset       int
}
