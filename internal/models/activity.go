package models

import "time"

// ActivityType classifies lead history rows.
type ActivityType string

const (
	ActivityCreated      ActivityType = "CREATED"
	ActivityStatusChange ActivityType = "STATUS_CHANGE"
	ActivityNote         ActivityType = "NOTE"
	ActivityUpdated      ActivityType = "UPDATED"
)

// LeadActivity is one row of the append-only lead audit trail.
// Rows are never updated or deleted; every status transition writes exactly one.
type LeadActivity struct {
	ID          int64        `json:"id"`
	LeadID      string       `json:"lead_id"`
	UserID      int64        `json:"user_id"`
	Type        ActivityType `json:"type"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"created_at"`
}
