package services

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ofertalia/internal/models"
	"ofertalia/internal/repositories"
)

// Segment thresholds. A lead lands in the highest tier either signal puts it in.
var (
	revenueEstrategic = decimal.NewFromInt(10000)
	revenueEnterprise = decimal.NewFromInt(50000)
)

// DeriveSegment maps lead size to the gestor segment that must own it.
func DeriveSegment(employees int, revenue decimal.Decimal) models.Segment {
	tier := 1
	switch {
	case employees > 100:
		tier = 3
	case employees >= 25:
		tier = 2
	}
	switch {
	case revenue.GreaterThan(revenueEnterprise):
		if tier < 3 {
			tier = 3
		}
	case revenue.GreaterThanOrEqual(revenueEstrategic):
		if tier < 2 {
			tier = 2
		}
	}
	switch tier {
	case 3:
		return models.SegmentEnterprise
	case 2:
		return models.SegmentEstrategic
	default:
		return models.SegmentEstandard
	}
}

// AllocatorService picks an owner for unassigned leads by segment-capacity
// matching. Capacity is a soft constraint: concurrent allocations may briefly
// overfill the least-loaded gestor and the imbalance evens out on later picks.
type AllocatorService struct {
	users repositories.UserRepository
}

func NewAllocatorService(users repositories.UserRepository) *AllocatorService {
	return &AllocatorService{users: users}
}

// PickGestor selects the least-loaded active gestor of the lead's segment.
// Ties break on earliest gestor account creation, so ordering is deterministic.
func (s *AllocatorService) PickGestor(ctx context.Context, lead *models.Lead) (*models.GestorLoad, error) {
	segment := DeriveSegment(lead.Employees, lead.EstimatedRevenue)
	candidates, err := s.users.ListGestorLoads(ctx, segment)
	if err != nil {
		return nil, err
	}
	pick := pickLeastLoaded(candidates)
	if pick == nil {
		zap.S().Warnw("[allocator][pick] no capacity", "lead_id", lead.ID, "segment", segment)
		return nil, newError(CodeCapacityExceeded, "no gestor with free capacity in segment %s", segment)
	}
	zap.S().Infow("[allocator][pick]", "lead_id", lead.ID, "segment", segment,
		"gestor_id", pick.GestorID, "load", pick.Load())
	return pick, nil
}

// pickLeastLoaded expects candidates ordered by created_at ascending; the
// strict < comparison then resolves load ties in favour of the oldest account.
func pickLeastLoaded(candidates []models.GestorLoad) *models.GestorLoad {
	var best *models.GestorLoad
	for i := range candidates {
		g := &candidates[i]
		if g.Load() >= 1.0 {
			continue
		}
		if best == nil || g.Load() < best.Load() {
			best = g
		}
	}
	return best
}
