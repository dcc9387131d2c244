package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/qassure-lab/lotgate/pkg/domain/types"
)

// TallySnapshot is an immutable copy of the defect counts at one point
// in time
type TallySnapshot map[types.SeverityTier]int

// Count returns the count for a tier (zero for unknown tiers)
func (s TallySnapshot) Count(tier types.SeverityTier) int {
	return s[tier]
}

// Total returns the sum over all tiers
func (s TallySnapshot) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

// DefectTally accumulates counted defects per severity tier for one
// inspection. It is mutable during the inspection and frozen at
// submission.
type DefectTally struct {
	counts    map[types.SeverityTier]int
	submitted bool
}

// NewDefectTally creates an empty tally
func NewDefectTally() *DefectTally {
	counts := make(map[types.SeverityTier]int, len(types.Tiers()))
	for _, tier := range types.Tiers() {
		counts[tier] = 0
	}
	return &DefectTally{counts: counts}
}

// RestoreDefectTally rebuilds a tally from persisted state
func RestoreDefectTally(snapshot TallySnapshot, submitted bool) *DefectTally {
	t := NewDefectTally()
	for _, tier := range types.Tiers() {
		t.counts[tier] = snapshot[tier]
	}
	t.submitted = submitted
	return t
}

// Record increments the counter for the given tier
func (t *DefectTally) Record(tier types.SeverityTier) error {
	if t.submitted {
		return goerr.Wrap(ErrInvalidState, "tally is frozen after submission")
	}
	if !tier.IsValid() {
		return goerr.New("invalid severity tier", goerr.V("tier", tier))
	}
	t.counts[tier]++
	return nil
}

// Reset zeroes all counters
func (t *DefectTally) Reset() error {
	if t.submitted {
		return goerr.Wrap(ErrInvalidState, "tally is frozen after submission")
	}
	for _, tier := range types.Tiers() {
		t.counts[tier] = 0
	}
	return nil
}

// Count returns the count for one tier
func (t *DefectTally) Count(tier types.SeverityTier) int {
	return t.counts[tier]
}

// Snapshot returns an immutable copy of the counts
func (t *DefectTally) Snapshot() TallySnapshot {
	snapshot := make(TallySnapshot, len(t.counts))
	for tier, n := range t.counts {
		snapshot[tier] = n
	}
	return snapshot
}

// Submit freezes the tally. Further mutation fails with ErrInvalidState.
func (t *DefectTally) Submit() error {
	if t.submitted {
		return goerr.Wrap(ErrInvalidState, "tally is already submitted")
	}
	t.submitted = true
	return nil
}

// Submitted reports whether the tally has been frozen
func (t *DefectTally) Submitted() bool {
	return t.submitted
}

// Clone returns a deep copy of the tally
func (t *DefectTally) Clone() *DefectTally {
	return RestoreDefectTally(t.Snapshot(), t.submitted)
}
