package trip

import (
	"fmt"

	"tripplanner/internal/core/domain/model/kernel"
)

// ComplianceStatus classifies a group's SKU count against the target range.
type ComplianceStatus int

const (
	WithinTarget ComplianceStatus = iota
	BelowTarget
	AboveTarget
)

func (s ComplianceStatus) String() string {
	switch s {
	case WithinTarget:
		return "within_target"
	case BelowTarget:
		return "below_target"
	case AboveTarget:
		return "above_target"
	default:
		return "unknown"
	}
}

// GroupCompliance is the verdict for one trip group.
type GroupCompliance struct {
	TripGroupID kernel.UUID
	SKUCount    int
	Status      ComplianceStatus
	Reasons     []string
}

// ComplianceReport lists every group with its verdict. Flagged groups are data,
// never an error; the caller decides whether to accept them.
type ComplianceReport struct {
	Groups []GroupCompliance
}

// Assess builds the verdict for g against params. Spread beyond the limit is
// reported as an extra reason and does not change the SKU status.
func Assess(g *TripGroup, params OptimizationParameters) GroupCompliance {
	c := GroupCompliance{
		TripGroupID: g.ID(),
		SKUCount:    g.SKUCount(),
		Status:      WithinTarget,
	}

	switch {
	case g.SKUCount() > params.TargetSKUMax:
		c.Status = AboveTarget
		c.Reasons = append(c.Reasons,
			fmt.Sprintf("sku count %d above target max %d", g.SKUCount(), params.TargetSKUMax))
	case g.SKUCount() < params.TargetSKUMin:
		c.Status = BelowTarget
		c.Reasons = append(c.Reasons,
			fmt.Sprintf("sku count %d below target min %d", g.SKUCount(), params.TargetSKUMin))
	}

	if g.MaxSpreadKm() > params.MaxGeographicSpreadKm {
		c.Reasons = append(c.Reasons,
			fmt.Sprintf("spread %.2f km above limit %.2f km", g.MaxSpreadKm(), params.MaxGeographicSpreadKm))
	}

	return c
}

// WithinTarget returns the ids of groups inside the SKU target range.
func (r ComplianceReport) WithinTarget() []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(r.Groups))
	for _, g := range r.Groups {
		if g.Status == WithinTarget {
			ids = append(ids, g.TripGroupID)
		}
	}
	return ids
}

// Flagged returns the groups outside the target range or carrying any reason.
func (r ComplianceReport) Flagged() []GroupCompliance {
	flagged := make([]GroupCompliance, 0)
	for _, g := range r.Groups {
		if g.Status != WithinTarget || len(g.Reasons) > 0 {
			flagged = append(flagged, g)
		}
	}
	return flagged
}

// Lookup returns the verdict for a group id.
func (r ComplianceReport) Lookup(id kernel.UUID) (GroupCompliance, bool) {
	for _, g := range r.Groups {
		if g.TripGroupID.IsEqual(id) {
			return g, true
		}
	}
	return GroupCompliance{}, false
}
