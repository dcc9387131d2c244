package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/qassure-lab/lotgate/pkg/domain/model"
	"github.com/qassure-lab/lotgate/pkg/domain/types"
)

func TestNewConditionalApproval(t *testing.T) {
	now := time.Now()

	t.Run("valid request", func(t *testing.T) {
		approval, err := model.NewConditionalApproval("insp-1", "minor cosmetic defects", "requester", now)
		gt.NoError(t, err)
		gt.Equal(t, types.ApprovalStatusPending, approval.Status)
		gt.Equal(t, true, approval.IsPending())
		gt.Equal(t, int64(0), approval.Revision)
		gt.V(t, approval.ResolvedAt).Nil()
	})

	t.Run("invalid inputs", func(t *testing.T) {
		_, err := model.NewConditionalApproval("", "reason", "requester", now)
		gt.Error(t, err)
		_, err = model.NewConditionalApproval("insp-1", "", "requester", now)
		gt.Error(t, err)
		_, err = model.NewConditionalApproval("insp-1", "reason", "", now)
		gt.Error(t, err)
	})
}

func TestConditionalApprovalResolve(t *testing.T) {
	now := time.Now()

	t.Run("approve records the decision", func(t *testing.T) {
		approval, err := model.NewConditionalApproval("insp-1", "reason", "requester", now)
		gt.NoError(t, err)

		gt.NoError(t, approval.Resolve(types.ApprovalStatusApproved, "manager", "accepted with rework", now))
		gt.Equal(t, types.ApprovalStatusApproved, approval.Status)
		gt.Equal(t, types.ActorID("manager"), approval.Approver)
		gt.Equal(t, "accepted with rework", approval.Comments)
		gt.V(t, approval.ResolvedAt).NotNil()
	})

	t.Run("first decision is final", func(t *testing.T) {
		approval, err := model.NewConditionalApproval("insp-1", "reason", "requester", now)
		gt.NoError(t, err)
		gt.NoError(t, approval.Resolve(types.ApprovalStatusRejected, "manager", "", now))

		err = approval.Resolve(types.ApprovalStatusApproved, "other", "", now)
		gt.Error(t, err)
		gt.Equal(t, true, errors.Is(err, model.ErrInvalidState))
		gt.Equal(t, types.ApprovalStatusRejected, approval.Status)
		gt.Equal(t, types.ActorID("manager"), approval.Approver)
	})

	t.Run("decision must be terminal", func(t *testing.T) {
		approval, err := model.NewConditionalApproval("insp-1", "reason", "requester", now)
		gt.NoError(t, err)
		gt.Error(t, approval.Resolve(types.ApprovalStatusPending, "manager", "", now))
	})

	t.Run("approver required", func(t *testing.T) {
		approval, err := model.NewConditionalApproval("insp-1", "reason", "requester", now)
		gt.NoError(t, err)
		gt.Error(t, approval.Resolve(types.ApprovalStatusApproved, "", "", now))
	})
}
