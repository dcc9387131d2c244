package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/qassure-lab/lotgate/pkg/domain/types"
)

// AcceptanceVerdict is the computed outcome of an acceptance decision.
// It is a derived value: recomputed while the inspection is open and
// frozen at submission.
type AcceptanceVerdict struct {
	Tiers   map[types.SeverityTier]types.TierVerdict `json:"tiers"`
	Overall types.OverallVerdict                     `json:"overall"`
}

// TierOutcome returns the verdict for one tier
func (v AcceptanceVerdict) TierOutcome(tier types.SeverityTier) types.TierVerdict {
	return v.Tiers[tier]
}

// Clone returns a deep copy of the verdict
func (v AcceptanceVerdict) Clone() AcceptanceVerdict {
	tiers := make(map[types.SeverityTier]types.TierVerdict, len(v.Tiers))
	for tier, outcome := range v.Tiers {
		tiers[tier] = outcome
	}
	return AcceptanceVerdict{Tiers: tiers, Overall: v.Overall}
}

// Decide combines the AQL limits with a defect tally snapshot and
// produces the acceptance verdict. Pure: no side effects, deterministic
// for fixed inputs.
//
// Per tier: counts at or below the acceptance number pass; anything
// above fails. Counts strictly between the acceptance and rejection
// numbers (possible when the gap exceeds one) fail as well, so the
// check collapses to count > acceptanceNumber.
//
// Overall composition, strict precedence:
//  1. critical FAIL -> rejected, never eligible for conditional approval
//  2. major or minor FAIL -> conditional_approval
//  3. otherwise -> approved
func Decide(snapshot TallySnapshot, limits AQLLimits) (AcceptanceVerdict, error) {
	if err := limits.Validate(); err != nil {
		return AcceptanceVerdict{}, goerr.Wrap(err, "cannot decide with invalid limits")
	}

	tiers := make(map[types.SeverityTier]types.TierVerdict, len(types.Tiers()))
	for _, tier := range types.Tiers() {
		if snapshot.Count(tier) <= limits[tier].AcceptanceNumber {
			tiers[tier] = types.TierPass
		} else {
			tiers[tier] = types.TierFail
		}
	}

	overall := types.VerdictApproved
	switch {
	case tiers[types.TierCritical] == types.TierFail:
		overall = types.VerdictRejected
	case tiers[types.TierMajor] == types.TierFail || tiers[types.TierMinor] == types.TierFail:
		overall = types.VerdictConditionalApproval
	}

	return AcceptanceVerdict{Tiers: tiers, Overall: overall}, nil
}
