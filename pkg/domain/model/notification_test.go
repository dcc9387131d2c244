package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/qassure-lab/lotgate/pkg/domain/model"
	"github.com/qassure-lab/lotgate/pkg/domain/types"
)

func testNCInput() model.NCInput {
	return model.NCInput{
		InspectionID:           "insp-1",
		Severity:               types.TierMajor,
		Category:               "dimensional",
		DefectType:             "out-of-tolerance bore",
		Priority:               types.PriorityHigh,
		AutoEscalate:           true,
		EscalationDelayMinutes: 120,
		Recipients:             []string{"C012345"},
	}
}

func TestNCInputValidate(t *testing.T) {
	t.Run("valid input", func(t *testing.T) {
		gt.NoError(t, testNCInput().Validate())
	})

	t.Run("missing inspection ID", func(t *testing.T) {
		in := testNCInput()
		in.InspectionID = ""
		gt.Error(t, in.Validate())
	})

	t.Run("invalid severity", func(t *testing.T) {
		in := testNCInput()
		in.Severity = "cosmetic"
		gt.Error(t, in.Validate())
	})

	t.Run("missing category", func(t *testing.T) {
		in := testNCInput()
		in.Category = ""
		gt.Error(t, in.Validate())
	})

	t.Run("auto-escalation needs a positive delay", func(t *testing.T) {
		in := testNCInput()
		in.EscalationDelayMinutes = 0
		gt.Error(t, in.Validate())

		in.AutoEscalate = false
		gt.NoError(t, in.Validate())
	})
}

func TestNCNotificationLifecycle(t *testing.T) {
	now := time.Now()

	t.Run("starts pending at level 1", func(t *testing.T) {
		n, err := model.NewNCNotification(testNCInput(), "inspector", now)
		gt.NoError(t, err)
		gt.Equal(t, types.NCStatusPending, n.Status)
		gt.Equal(t, 1, n.EscalationLevel)
		gt.Equal(t, 1, n.History.Len())
	})

	t.Run("escalate increments level and history", func(t *testing.T) {
		n, err := model.NewNCNotification(testNCInput(), "inspector", now)
		gt.NoError(t, err)

		gt.NoError(t, n.Escalate("supervisor", now))
		gt.NoError(t, n.Escalate("supervisor", now))
		gt.Equal(t, 3, n.EscalationLevel)
		gt.Equal(t, 3, n.History.Len())
	})

	t.Run("resolve is final", func(t *testing.T) {
		n, err := model.NewNCNotification(testNCInput(), "inspector", now)
		gt.NoError(t, err)

		gt.NoError(t, n.Resolve("qa", "rework complete", now))
		gt.Equal(t, types.NCStatusResolved, n.Status)
		gt.Equal(t, "rework complete", n.ResolutionNotes)
		gt.V(t, n.ResolvedAt).NotNil()

		err = n.Resolve("qa", "again", now)
		gt.Error(t, err)
		gt.Equal(t, true, errors.Is(err, model.ErrInvalidState))
		gt.Equal(t, "rework complete", n.ResolutionNotes)
	})

	t.Run("escalating a terminal notification fails", func(t *testing.T) {
		n, err := model.NewNCNotification(testNCInput(), "inspector", now)
		gt.NoError(t, err)
		gt.NoError(t, n.Resolve("qa", "done", now))

		err = n.Escalate("supervisor", now)
		gt.Error(t, err)
		gt.Equal(t, true, errors.Is(err, model.ErrInvalidState))
		gt.Equal(t, 1, n.EscalationLevel)
	})

	t.Run("status workflow", func(t *testing.T) {
		n, err := model.NewNCNotification(testNCInput(), "inspector", now)
		gt.NoError(t, err)

		gt.NoError(t, n.UpdateStatus(types.NCStatusInReview, "qa", "", now))
		gt.Equal(t, types.NCStatusInReview, n.Status)

		// Same status twice is a no-op error
		err = n.UpdateStatus(types.NCStatusInReview, "qa", "", now)
		gt.Error(t, err)
		gt.Equal(t, true, errors.Is(err, model.ErrInvalidState))

		gt.NoError(t, n.UpdateStatus(types.NCStatusRejected, "qa", "not a defect", now))
		gt.Equal(t, true, n.Status.IsTerminal())
		gt.V(t, n.ResolvedAt).NotNil()

		err = n.UpdateStatus(types.NCStatusPending, "qa", "", now)
		gt.Error(t, err)
	})
}

func TestEligibleForAutoEscalation(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("eligible once the delay elapses", func(t *testing.T) {
		n, err := model.NewNCNotification(testNCInput(), "inspector", base)
		gt.NoError(t, err)

		gt.Equal(t, false, n.EligibleForAutoEscalation(base.Add(119*time.Minute)))
		gt.Equal(t, true, n.EligibleForAutoEscalation(base.Add(120*time.Minute)))
	})

	t.Run("activity restarts the clock", func(t *testing.T) {
		n, err := model.NewNCNotification(testNCInput(), "inspector", base)
		gt.NoError(t, err)

		gt.NoError(t, n.Escalate("supervisor", base.Add(60*time.Minute)))
		gt.Equal(t, false, n.EligibleForAutoEscalation(base.Add(150*time.Minute)))
		gt.Equal(t, true, n.EligibleForAutoEscalation(base.Add(180*time.Minute)))
	})

	t.Run("never without auto-escalate", func(t *testing.T) {
		in := testNCInput()
		in.AutoEscalate = false
		in.EscalationDelayMinutes = 0
		n, err := model.NewNCNotification(in, "inspector", base)
		gt.NoError(t, err)
		gt.Equal(t, false, n.EligibleForAutoEscalation(base.Add(24*time.Hour)))
	})

	t.Run("never when terminal", func(t *testing.T) {
		n, err := model.NewNCNotification(testNCInput(), "inspector", base)
		gt.NoError(t, err)
		gt.NoError(t, n.Resolve("qa", "done", base))
		gt.Equal(t, false, n.EligibleForAutoEscalation(base.Add(24*time.Hour)))
	})
}

func TestNCNotificationClone(t *testing.T) {
	now := time.Now()
	n, err := model.NewNCNotification(testNCInput(), "inspector", now)
	gt.NoError(t, err)

	clone := n.Clone()
	gt.NoError(t, clone.Escalate("supervisor", now))
	clone.Recipients[0] = "other"

	gt.Equal(t, 1, n.EscalationLevel)
	gt.Equal(t, "C012345", n.Recipients[0])
}
