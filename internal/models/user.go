package models

import "time"

// User is a platform account. Commercial users (gestors) carry a segment and a
// lead capacity; CRM verifiers carry the CRM segment and never own commercial leads.
type User struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	RoleID         int       `json:"role_id"`
	Segment        *Segment  `json:"segment,omitempty"`
	MaxActiveLeads int       `json:"max_active_leads"`
	IsActive       bool      `json:"is_active"`
	TelegramChatID *int64    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GestorLoad is the allocator's view of one candidate gestor.
// ActiveLeads is derived at query time, never stored.
type GestorLoad struct {
	GestorID       int64     `json:"gestor_id"`
	Name           string    `json:"name"`
	Segment        Segment   `json:"segment"`
	MaxActiveLeads int       `json:"max_active_leads"`
	ActiveLeads    int       `json:"active_leads"`
	CreatedAt      time.Time `json:"created_at"`
}

// Load returns active/max in [0..], 1.0 meaning the gestor is full.
func (g GestorLoad) Load() float64 {
	if g.MaxActiveLeads <= 0 {
		return 1.0
	}
	return float64(g.ActiveLeads) / float64(g.MaxActiveLeads)
}
