// Package scoring computes task priority scores. All functions are pure:
// the reference time is always injected, never read from the wall clock.
package scoring

import (
	"math"
	"time"

	"ofertalia/internal/models"
)

// Input is the subset of task attributes the formulas consume.
type Input struct {
	Priority         models.LeadPriority
	Status           models.TaskStatus
	DueDate          *time.Time
	EstimatedMinutes *int
	CompanyLinked    bool
	LeadLinked       bool
}

// Scores is the derived score set, each in [0,100].
type Scores struct {
	Urgency int `json:"urgency_score"`
	Impact  int `json:"impact_score"`
	Effort  int `json:"effort_score"`
	Auto    int `json:"auto_score"`
}

func priorityUrgencyBase(p models.LeadPriority) int {
	switch p {
	case models.PriorityUrgent:
		return 40
	case models.PriorityHigh:
		return 30
	case models.PriorityMedium:
		return 15
	default:
		return 5
	}
}

func priorityImpactBonus(p models.LeadPriority) int {
	switch p {
	case models.PriorityUrgent:
		return 20
	case models.PriorityHigh:
		return 15
	case models.PriorityMedium:
		return 10
	default:
		return 0
	}
}

// daysUntil counts whole calendar days between now and due, negative when overdue.
func daysUntil(now, due time.Time) int {
	ny, nm, nd := now.Date()
	dy, dm, dd := due.Date()
	n := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	d := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	return int(d.Sub(n).Hours() / 24)
}

func dueBonus(now time.Time, due *time.Time) int {
	if due == nil {
		return 0
	}
	switch days := daysUntil(now, *due); {
	case days < 0:
		return 40
	case days == 0:
		return 35
	case days == 1:
		return 30
	case days <= 3:
		return 25
	case days <= 7:
		return 15
	case days <= 30:
		return 5
	default:
		return 0
	}
}

func cap100(v int) int {
	if v > 100 {
		return 100
	}
	return v
}

// Urgency scores how soon the task needs attention.
func Urgency(in Input, now time.Time) int {
	score := priorityUrgencyBase(in.Priority) + dueBonus(now, in.DueDate)
	if in.Status == models.TaskInProgress {
		score += 10 // momentum bonus: started work should not go stale
	}
	return cap100(score)
}

// Impact scores how much completing the task matters.
func Impact(in Input) int {
	score := 50
	if in.CompanyLinked {
		score += 20
	}
	if in.LeadLinked {
		score += 10
	}
	score += priorityImpactBonus(in.Priority)
	return cap100(score)
}

// Effort scores how expensive the task is; higher effort lowers the auto score.
func Effort(in Input) int {
	score := 30
	if in.EstimatedMinutes == nil {
		return cap100(score + 30)
	}
	switch m := *in.EstimatedMinutes; {
	case m <= 15:
		score += 10
	case m <= 30:
		score += 20
	case m <= 60:
		score += 35
	case m <= 120:
		score += 50
	default:
		score += 70
	}
	return cap100(score)
}

// Compute derives the full score set. Idempotent for identical inputs and now.
func Compute(in Input, now time.Time) Scores {
	u := Urgency(in, now)
	i := Impact(in)
	e := Effort(in)
	auto := math.Round(float64(u)*0.4 + float64(i)*0.4 - float64(e)*0.2)
	if auto < 0 {
		auto = 0
	}
	if auto > 100 {
		auto = 100
	}
	return Scores{Urgency: u, Impact: i, Effort: e, Auto: int(auto)}
}

// FromTask builds the scoring input for a stored task.
func FromTask(t *models.Task) Input {
	return Input{
		Priority:         t.Priority,
		Status:           t.Status,
		DueDate:          t.DueDate,
		EstimatedMinutes: t.EstimatedMinutes,
		CompanyLinked:    t.CompanyID != nil,
		LeadLinked:       t.LeadID != nil,
	}
}
