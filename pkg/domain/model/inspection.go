package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/qassure-lab/lotgate/pkg/domain/types"
)

// Inspection is the aggregate owning one defect tally and its frozen
// verdict. It is single-writer: mutations go through the repository's
// revision check.
type Inspection struct {
	ID        types.InspectionID     `json:"id"`
	PlanID    string                 `json:"planId"`
	LotSize   int                    `json:"lotSize"`
	Level     types.InspectionLevel  `json:"level"`
	Status    types.InspectionStatus `json:"status"`
	Tally     *DefectTally           `json:"-"`
	Verdict   *AcceptanceVerdict     `json:"verdict,omitempty"`
	History   *HistoryLog            `json:"history"`
	Revision  int64                  `json:"revision"`
	CreatedBy types.ActorID          `json:"createdBy"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

// NewInspection creates a new in-progress inspection
func NewInspection(planID string, lotSize int, level types.InspectionLevel, createdBy types.ActorID, now time.Time) (*Inspection, error) {
	if planID == "" {
		return nil, goerr.New("plan ID is required")
	}
	if lotSize < 1 {
		return nil, goerr.New("lot size must be positive", goerr.V("lotSize", lotSize))
	}
	if !level.IsValid() {
		return nil, goerr.New("invalid inspection level", goerr.V("level", level))
	}
	if createdBy == "" {
		return nil, goerr.New("creator is required")
	}

	insp := &Inspection{
		ID:        types.NewInspectionID(),
		PlanID:    planID,
		LotSize:   lotSize,
		Level:     level,
		Status:    types.InspectionStatusInProgress,
		Tally:     NewDefectTally(),
		History:   NewHistoryLog(nil),
		Revision:  0,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := insp.appendHistory(ActionCreated, createdBy, "", now); err != nil {
		return nil, err
	}
	return insp, nil
}

func (i *Inspection) appendHistory(action string, actor types.ActorID, details string, at time.Time) error {
	entry, err := NewHistoryEntry(action, actor, details, at)
	if err != nil {
		return goerr.Wrap(err, "failed to create history entry")
	}
	i.History.Append(entry)
	return nil
}

// RecordDefect increments the tally for the given tier
func (i *Inspection) RecordDefect(tier types.SeverityTier, actor types.ActorID, now time.Time) error {
	if i.Status != types.InspectionStatusInProgress {
		return goerr.Wrap(ErrInvalidState, "inspection is not in progress",
			goerr.V("inspectionID", i.ID),
			goerr.V("status", i.Status))
	}
	if err := i.Tally.Record(tier); err != nil {
		return err
	}
	i.UpdatedAt = now
	return i.appendHistory(ActionDefectRecorded, actor, tier.String(), now)
}

// ResetTally zeroes the defect counters
func (i *Inspection) ResetTally(actor types.ActorID, now time.Time) error {
	if i.Status != types.InspectionStatusInProgress {
		return goerr.Wrap(ErrInvalidState, "inspection is not in progress",
			goerr.V("inspectionID", i.ID),
			goerr.V("status", i.Status))
	}
	if err := i.Tally.Reset(); err != nil {
		return err
	}
	i.UpdatedAt = now
	return i.appendHistory(ActionTallyReset, actor, "", now)
}

// Submit freezes the tally and the computed verdict
func (i *Inspection) Submit(verdict AcceptanceVerdict, actor types.ActorID, now time.Time) error {
	if i.Status != types.InspectionStatusInProgress {
		return goerr.Wrap(ErrInvalidState, "inspection is not in progress",
			goerr.V("inspectionID", i.ID),
			goerr.V("status", i.Status))
	}
	if err := i.Tally.Submit(); err != nil {
		return err
	}

	frozen := verdict.Clone()
	i.Verdict = &frozen
	i.Status = types.InspectionStatusSubmitted
	i.UpdatedAt = now
	return i.appendHistory(ActionSubmitted, actor, verdict.Overall.String(), now)
}

// EligibleForConditionalApproval reports whether the frozen verdict
// permits a conditional approval request. Critical failures never do.
func (i *Inspection) EligibleForConditionalApproval() bool {
	return i.Status == types.InspectionStatusSubmitted &&
		i.Verdict != nil &&
		i.Verdict.Overall == types.VerdictConditionalApproval
}

// ApplyApprovalDecision updates the inspection's effective status from a
// resolved conditional approval. Approval yields conditionally_approved,
// distinct from a clean approval.
func (i *Inspection) ApplyApprovalDecision(decision types.ApprovalStatus, approver types.ActorID, now time.Time) error {
	if i.Status != types.InspectionStatusSubmitted {
		return goerr.Wrap(ErrInvalidState, "inspection has no pending decision",
			goerr.V("inspectionID", i.ID),
			goerr.V("status", i.Status))
	}

	switch decision {
	case types.ApprovalStatusApproved:
		i.Status = types.InspectionStatusConditionallyApproved
		i.UpdatedAt = now
		return i.appendHistory(ActionApprovalApproved, approver, "", now)
	case types.ApprovalStatusRejected:
		i.Status = types.InspectionStatusRejected
		i.UpdatedAt = now
		return i.appendHistory(ActionApprovalRejected, approver, "", now)
	default:
		return goerr.New("invalid approval decision", goerr.V("decision", decision))
	}
}

// Clone returns a deep copy of the inspection
func (i *Inspection) Clone() *Inspection {
	clone := *i
	clone.Tally = i.Tally.Clone()
	clone.History = i.History.Clone()
	if i.Verdict != nil {
		v := i.Verdict.Clone()
		clone.Verdict = &v
	}
	return &clone
}
