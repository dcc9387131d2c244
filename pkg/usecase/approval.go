package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/qassure-lab/lotgate/pkg/domain/interfaces"
	"github.com/qassure-lab/lotgate/pkg/domain/model"
	"github.com/qassure-lab/lotgate/pkg/domain/types"
)

// Approval manages the conditional approval lifecycle
type Approval struct {
	repo interfaces.Repository
	now  func() time.Time
}

// NewApproval creates a new Approval use case. Pass nil for now to use
// wall-clock time.
func NewApproval(repo interfaces.Repository, now func() time.Time) *Approval {
	if now == nil {
		now = time.Now
	}
	return &Approval{repo: repo, now: now}
}

// Open creates a pending conditional approval for a submitted
// inspection whose verdict permits one. A second open while one is
// pending fails with ErrConflict.
func (uc *Approval) Open(ctx context.Context, inspectionID types.InspectionID, reason string, requester types.ActorID) (*model.ConditionalApproval, error) {
	inspection, err := uc.repo.GetInspection(ctx, inspectionID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get inspection")
	}

	if !inspection.EligibleForConditionalApproval() {
		return nil, goerr.Wrap(model.ErrInvalidState, "inspection verdict does not permit conditional approval",
			goerr.V("inspectionID", inspectionID),
			goerr.V("status", inspection.Status))
	}

	approval, err := model.NewConditionalApproval(inspectionID, reason, requester, uc.now())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create conditional approval")
	}

	// The repository enforces the one-pending-per-inspection invariant
	// atomically; this is the authoritative conflict check
	if err := uc.repo.PutApproval(ctx, approval); err != nil {
		return nil, goerr.Wrap(err, "failed to save conditional approval")
	}

	expected := inspection.Revision
	inspection.History.Append(mustEntry(model.ActionApprovalOpened, requester, reason, uc.now()))
	if err := uc.repo.CompareAndSwapInspection(ctx, inspection, expected); err != nil {
		return nil, goerr.Wrap(err, "failed to record approval request on inspection")
	}

	return approval, nil
}

// Resolve decides a pending approval and updates the owning
// inspection's effective status. Resolving a decided approval fails
// with ErrInvalidState; the first decision is never overwritten.
func (uc *Approval) Resolve(ctx context.Context, id types.ApprovalID, decision types.ApprovalStatus, approver types.ActorID, comments string) (*model.ConditionalApproval, error) {
	approval, err := uc.repo.GetApproval(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get conditional approval")
	}

	expected := approval.Revision
	if err := approval.Resolve(decision, approver, comments, uc.now()); err != nil {
		return nil, err
	}
	if err := uc.repo.CompareAndSwapApproval(ctx, approval, expected); err != nil {
		return nil, goerr.Wrap(err, "failed to save approval decision")
	}

	inspection, err := uc.repo.GetInspection(ctx, approval.InspectionID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get inspection for approval decision")
	}

	expectedInsp := inspection.Revision
	if err := inspection.ApplyApprovalDecision(decision, approver, uc.now()); err != nil {
		return nil, goerr.Wrap(err, "failed to apply approval decision")
	}
	if err := uc.repo.CompareAndSwapInspection(ctx, inspection, expectedInsp); err != nil {
		return nil, goerr.Wrap(err, "failed to save inspection status")
	}

	return approval, nil
}

// GetPending returns the pending approval for an inspection, or nil if
// there is none
func (uc *Approval) GetPending(ctx context.Context, inspectionID types.InspectionID) (*model.ConditionalApproval, error) {
	approval, err := uc.repo.GetPendingApprovalByInspection(ctx, inspectionID)
	if err != nil {
		if errors.Is(err, model.ErrApprovalNotFound) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to query pending approval")
	}
	return approval, nil
}

func mustEntry(action string, actor types.ActorID, details string, at time.Time) model.HistoryEntry {
	entry, err := model.NewHistoryEntry(action, actor, details, at)
	if err != nil {
		// Inputs are validated by the callers; an error here is a bug
		panic(err)
	}
	return entry
}
