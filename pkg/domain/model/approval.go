package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/qassure-lab/lotgate/pkg/domain/types"
)

// ConditionalApproval is a request to approve a lot despite a
// non-critical FAIL verdict. Lifecycle: pending -> approved | rejected,
// with no transition out of a terminal state.
type ConditionalApproval struct {
	ID           types.ApprovalID     `json:"id"`
	InspectionID types.InspectionID   `json:"inspectionId"`
	Status       types.ApprovalStatus `json:"status"`
	Requester    types.ActorID        `json:"requester"`
	Reason       string               `json:"reason"`
	Approver     types.ActorID        `json:"approver,omitempty"`
	Comments     string               `json:"comments,omitempty"`
	Revision     int64                `json:"revision"`
	CreatedAt    time.Time            `json:"createdAt"`
	ResolvedAt   *time.Time           `json:"resolvedAt,omitempty"`
}

// NewConditionalApproval creates a pending conditional approval request
func NewConditionalApproval(inspectionID types.InspectionID, reason string, requester types.ActorID, now time.Time) (*ConditionalApproval, error) {
	if inspectionID == "" {
		return nil, goerr.New("inspection ID is required")
	}
	if reason == "" {
		return nil, goerr.New("approval reason is required")
	}
	if requester == "" {
		return nil, goerr.New("requester is required")
	}

	return &ConditionalApproval{
		ID:           types.NewApprovalID(),
		InspectionID: inspectionID,
		Status:       types.ApprovalStatusPending,
		Requester:    requester,
		Reason:       reason,
		Revision:     0,
		CreatedAt:    now,
	}, nil
}

// Resolve decides the request. The recorded decision is final; resolving
// a non-pending request fails with ErrInvalidState.
func (a *ConditionalApproval) Resolve(decision types.ApprovalStatus, approver types.ActorID, comments string, now time.Time) error {
	if a.Status != types.ApprovalStatusPending {
		return goerr.Wrap(ErrInvalidState, "conditional approval is already decided",
			goerr.V("approvalID", a.ID),
			goerr.V("status", a.Status))
	}
	if decision != types.ApprovalStatusApproved && decision != types.ApprovalStatusRejected {
		return goerr.New("decision must be approved or rejected", goerr.V("decision", decision))
	}
	if approver == "" {
		return goerr.New("approver is required")
	}

	a.Status = decision
	a.Approver = approver
	a.Comments = comments
	a.ResolvedAt = &now
	return nil
}

// IsPending reports whether the request awaits a decision
func (a *ConditionalApproval) IsPending() bool {
	return a.Status == types.ApprovalStatusPending
}

// Clone returns a deep copy of the approval
func (a *ConditionalApproval) Clone() *ConditionalApproval {
	clone := *a
	if a.ResolvedAt != nil {
		at := *a.ResolvedAt
		clone.ResolvedAt = &at
	}
	return &clone
}
