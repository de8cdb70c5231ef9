package models

import "time"

// TaskStatus defines the possible statuses for a task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDING"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
	TaskCancelled  TaskStatus = "CANCELLED"
)

// IsTerminal reports whether the task can no longer change status.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskCompleted || s == TaskCancelled
}

// Task represents a follow-up work item, optionally linked to a lead or company.
// The four score fields are derived; they are recomputed from the other fields
// and never hand-edited.
type Task struct {
	ID               int64        `json:"id"`
	CreatorID        int64        `json:"creator_id"`
	AssigneeID       int64        `json:"assignee_id"`
	LeadID           *string      `json:"lead_id,omitempty"`
	CompanyID        *int64       `json:"company_id,omitempty"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	DueDate          *time.Time   `json:"due_date,omitempty"`
	Priority         LeadPriority `json:"priority"`
	Status           TaskStatus   `json:"status"`
	EstimatedMinutes *int         `json:"estimated_minutes,omitempty"`
	UrgencyScore     int          `json:"urgency_score"`
	ImpactScore      int          `json:"impact_score"`
	EffortScore      int          `json:"effort_score"`
	AutoScore        int          `json:"auto_score"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// TaskFilter defines the available parameters for filtering tasks.
type TaskFilter struct {
	AssigneeID *int64
	CreatorID  *int64
	LeadID     *string
	Status     *TaskStatus
	Limit      int
	Offset     int
}
