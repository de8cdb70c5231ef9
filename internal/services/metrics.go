package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"ofertalia/internal/models"
)

var (
	leadTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_transitions_total",
			Help: "Total number of committed lead status transitions",
		},
		[]string{"from", "to"},
	)

	leadAssignmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_assignments_total",
			Help: "Total number of committed lead assignments",
		},
		[]string{"segment", "mode"},
	)

	verificationOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_verification_outcomes_total",
			Help: "Total number of CRM verification gate outcomes",
		},
		[]string{"outcome"},
	)
)

func observeTransition(from, to models.LeadStatus) {
	leadTransitionsTotal.WithLabelValues(string(from), string(to)).Inc()
}

func observeAssignment(segment models.Segment, mode string) {
	leadAssignmentsTotal.WithLabelValues(string(segment), mode).Inc()
}

func observeVerification(outcome string) {
	verificationOutcomesTotal.WithLabelValues(outcome).Inc()
}
