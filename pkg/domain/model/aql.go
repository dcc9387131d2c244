package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/qassure-lab/lotgate/pkg/domain/types"
)

// TierLimit holds the configured quality limit for one severity tier
type TierLimit struct {
	AQLPercent       float64 `yaml:"aqlPercent" json:"aqlPercent"`
	AcceptanceNumber int     `yaml:"acceptanceNumber" json:"acceptanceNumber"`
	RejectionNumber  int     `yaml:"rejectionNumber" json:"rejectionNumber"`
}

// Validate validates the tier limit
func (l TierLimit) Validate() error {
	if l.AQLPercent < 0 {
		return goerr.Wrap(ErrConfiguration, "AQL percent must not be negative",
			goerr.V("aqlPercent", l.AQLPercent))
	}
	if l.AcceptanceNumber < 0 {
		return goerr.Wrap(ErrConfiguration, "acceptance number must not be negative",
			goerr.V("acceptanceNumber", l.AcceptanceNumber))
	}
	if l.RejectionNumber < l.AcceptanceNumber+1 {
		return goerr.Wrap(ErrConfiguration, "rejection number must be at least acceptance number + 1",
			goerr.V("acceptanceNumber", l.AcceptanceNumber),
			goerr.V("rejectionNumber", l.RejectionNumber))
	}
	return nil
}

// AQLLimits maps every severity tier to its quality limit. A valid value
// is exhaustive over the three tiers.
type AQLLimits map[types.SeverityTier]TierLimit

// Validate validates the limits
func (a AQLLimits) Validate() error {
	for _, tier := range types.Tiers() {
		limit, ok := a[tier]
		if !ok {
			return goerr.Wrap(ErrConfiguration, "missing AQL limit for severity tier",
				goerr.V("tier", tier))
		}
		if err := limit.Validate(); err != nil {
			return goerr.Wrap(err, "invalid AQL limit", goerr.V("tier", tier))
		}
	}
	if len(a) != len(types.Tiers()) {
		return goerr.Wrap(ErrConfiguration, "AQL limits contain unknown tiers",
			goerr.V("count", len(a)))
	}
	return nil
}

// TierOverride optionally pins the acceptance pair for one tier in a plan
type TierOverride struct {
	Acc *int `yaml:"acc" json:"acc,omitempty"`
	Rej *int `yaml:"rej" json:"rej,omitempty"`
}

// InspectionPlan binds the nominal AQL percentages per severity tier.
// Acceptance and rejection numbers are derived from the sampling table at
// decision time; a plan may pin them per tier with explicit overrides.
type InspectionPlan struct {
	ID          string                                 `yaml:"id" json:"id"`
	Name        string                                 `yaml:"name" json:"name"`
	AQLCritical float64                                `yaml:"aqlCritical" json:"aqlCritical"`
	AQLMajor    float64                                `yaml:"aqlMajor" json:"aqlMajor"`
	AQLMinor    float64                                `yaml:"aqlMinor" json:"aqlMinor"`
	Overrides   map[types.SeverityTier]TierOverride    `yaml:"overrides,omitempty" json:"overrides,omitempty"`
}

// Validate validates the plan
func (p *InspectionPlan) Validate() error {
	if p.ID == "" {
		return goerr.Wrap(ErrConfiguration, "plan ID is required")
	}
	if p.AQLCritical < 0 || p.AQLMajor < 0 || p.AQLMinor < 0 {
		return goerr.Wrap(ErrConfiguration, "AQL percentages must not be negative",
			goerr.V("planID", p.ID))
	}
	for tier, o := range p.Overrides {
		if !tier.IsValid() {
			return goerr.Wrap(ErrConfiguration, "override for unknown severity tier",
				goerr.V("planID", p.ID),
				goerr.V("tier", tier))
		}
		if (o.Acc == nil) != (o.Rej == nil) {
			return goerr.Wrap(ErrConfiguration, "tier override must set both acc and rej",
				goerr.V("planID", p.ID),
				goerr.V("tier", tier))
		}
		if o.Acc != nil {
			if err := (AcceptancePair{Acc: *o.Acc, Rej: *o.Rej}).Validate(); err != nil {
				return goerr.Wrap(err, "invalid tier override",
					goerr.V("planID", p.ID),
					goerr.V("tier", tier))
			}
		}
	}
	return nil
}

func (p *InspectionPlan) percentFor(tier types.SeverityTier) float64 {
	switch tier {
	case types.TierCritical:
		return p.AQLCritical
	case types.TierMajor:
		return p.AQLMajor
	default:
		return p.AQLMinor
	}
}

// Limits derives the per-tier AQL limits from a resolved sampling row.
// Precedence per tier: explicit plan override, then zero-tolerance (0/1)
// for the critical tier, then the row's pair for the inspection level.
func (p *InspectionPlan) Limits(row SamplingRow, level types.InspectionLevel) (AQLLimits, error) {
	pair, err := row.PairFor(level)
	if err != nil {
		return nil, err
	}

	limits := make(AQLLimits, len(types.Tiers()))
	for _, tier := range types.Tiers() {
		tierPair := pair
		if tier == types.TierCritical {
			tierPair = AcceptancePair{Acc: 0, Rej: 1}
		}
		if o, ok := p.Overrides[tier]; ok && o.Acc != nil {
			tierPair = AcceptancePair{Acc: *o.Acc, Rej: *o.Rej}
		}
		limits[tier] = TierLimit{
			AQLPercent:       p.percentFor(tier),
			AcceptanceNumber: tierPair.Acc,
			RejectionNumber:  tierPair.Rej,
		}
	}

	if err := limits.Validate(); err != nil {
		return nil, err
	}
	return limits, nil
}

// PlanConfig is the set of configured inspection plans
type PlanConfig struct {
	Plans []InspectionPlan `yaml:"plans" json:"plans"`
}

// Validate validates the plan configuration
func (c *PlanConfig) Validate() error {
	if len(c.Plans) == 0 {
		return goerr.Wrap(ErrConfiguration, "at least one inspection plan is required")
	}

	idMap := make(map[string]bool)
	for i := range c.Plans {
		plan := &c.Plans[i]
		if err := plan.Validate(); err != nil {
			return goerr.Wrap(err, "invalid plan at index",
				goerr.V("index", i),
				goerr.V("id", plan.ID))
		}
		if idMap[plan.ID] {
			return goerr.Wrap(ErrConfiguration, "duplicate plan ID", goerr.V("id", plan.ID))
		}
		idMap[plan.ID] = true
	}
	return nil
}

// FindPlanByID finds a plan by its ID
func (c *PlanConfig) FindPlanByID(id string) *InspectionPlan {
	for i := range c.Plans {
		if c.Plans[i].ID == id {
			result := c.Plans[i]
			return &result
		}
	}
	return nil
}
