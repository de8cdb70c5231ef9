package services

import (
	"ofertalia/internal/authz"
	"ofertalia/internal/models"
)

// leadTransitions is the fixed adjacency table of the pipeline: for every legal
// edge, the set of roles allowed to drive it. Commercial staff push a lead up to
// DOCUMENTATION; only CRM moves it out of DOCUMENTATION/PENDING_ADMIN (the gate),
// so the reject path back to NEGOTIATION/CONTACTED is never a commercial edit.
var leadTransitions = map[models.LeadStatus]map[models.LeadStatus][]int{
	models.LeadNew: {
		models.LeadContacted: {authz.RoleComercial, authz.RoleAdmin},
		models.LeadLost:      {authz.RoleComercial, authz.RoleCRM, authz.RoleAdmin},
	},
	models.LeadContacted: {
		models.LeadNegotiation: {authz.RoleComercial, authz.RoleAdmin},
		models.LeadLost:        {authz.RoleComercial, authz.RoleCRM, authz.RoleAdmin},
	},
	models.LeadNegotiation: {
		models.LeadQualified: {authz.RoleComercial, authz.RoleAdmin},
		models.LeadLost:      {authz.RoleComercial, authz.RoleCRM, authz.RoleAdmin},
	},
	models.LeadQualified: {
		models.LeadProposalSent: {authz.RoleComercial, authz.RoleAdmin},
		models.LeadLost:         {authz.RoleComercial, authz.RoleCRM, authz.RoleAdmin},
	},
	models.LeadProposalSent: {
		models.LeadDocumentation: {authz.RoleComercial, authz.RoleAdmin},
		models.LeadLost:          {authz.RoleComercial, authz.RoleCRM, authz.RoleAdmin},
	},
	models.LeadDocumentation: {
		models.LeadPendingAdmin: {authz.RoleCRM},
		models.LeadWon:          {authz.RoleCRM},
		models.LeadNegotiation:  {authz.RoleCRM},
		models.LeadContacted:    {authz.RoleCRM},
		models.LeadLost:         {authz.RoleCRM, authz.RoleAdmin},
	},
	models.LeadPendingAdmin: {
		models.LeadWon:         {authz.RoleCRM, authz.RoleAdmin},
		models.LeadNegotiation: {authz.RoleCRM},
		models.LeadContacted:   {authz.RoleCRM},
		models.LeadLost:        {authz.RoleCRM, authz.RoleAdmin},
	},
	models.LeadWon:  {},
	models.LeadLost: {},
}

// verificationEdges are the edges that must carry the CRM verification and
// precontract snapshots in the same atomic write.
func isVerificationEdge(from, to models.LeadStatus) bool {
	return from == models.LeadDocumentation &&
		(to == models.LeadPendingAdmin || to == models.LeadWon)
}

// canTransition validates edge legality and the actor's role for that edge.
func canTransition(from, to models.LeadStatus, role int) error {
	nexts, ok := leadTransitions[from]
	if !ok {
		return newError(CodeInvalidTransition, "unknown lead status %q", from)
	}
	roles, ok := nexts[to]
	if !ok {
		return newError(CodeInvalidTransition, "transition %s -> %s is not allowed", from, to)
	}
	for _, r := range roles {
		if r == role {
			return nil
		}
	}
	return newError(CodeInvalidTransition, "role %d may not drive %s -> %s", role, from, to)
}

// ValidStatus reports whether s is one of the fixed enum values.
func ValidStatus(s models.LeadStatus) bool {
	_, ok := leadTransitions[s]
	return ok
}
