package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/qassure-lab/lotgate/pkg/domain/types"
)

func TestSeverityTier(t *testing.T) {
	t.Run("valid tiers", func(t *testing.T) {
		gt.Equal(t, true, types.TierCritical.IsValid())
		gt.Equal(t, true, types.TierMajor.IsValid())
		gt.Equal(t, true, types.TierMinor.IsValid())
	})

	t.Run("invalid tier", func(t *testing.T) {
		gt.Equal(t, false, types.SeverityTier("cosmetic").IsValid())
		gt.Equal(t, false, types.SeverityTier("").IsValid())
	})

	t.Run("tiers ordered critical first", func(t *testing.T) {
		tiers := types.Tiers()
		gt.Equal(t, 3, len(tiers))
		gt.Equal(t, types.TierCritical, tiers[0])
		gt.Equal(t, types.TierMajor, tiers[1])
		gt.Equal(t, types.TierMinor, tiers[2])
	})
}

func TestInspectionLevel(t *testing.T) {
	gt.Equal(t, true, types.LevelI.IsValid())
	gt.Equal(t, true, types.LevelII.IsValid())
	gt.Equal(t, true, types.LevelIII.IsValid())
	gt.Equal(t, false, types.InspectionLevel("IV").IsValid())
	gt.Equal(t, false, types.InspectionLevel("").IsValid())
}

func TestInspectionStatus(t *testing.T) {
	t.Run("final states", func(t *testing.T) {
		gt.Equal(t, true, types.InspectionStatusApproved.IsFinal())
		gt.Equal(t, true, types.InspectionStatusRejected.IsFinal())
		gt.Equal(t, true, types.InspectionStatusConditionallyApproved.IsFinal())
	})

	t.Run("non-final states", func(t *testing.T) {
		gt.Equal(t, false, types.InspectionStatusInProgress.IsFinal())
		gt.Equal(t, false, types.InspectionStatusSubmitted.IsFinal())
	})
}

func TestNCStatus(t *testing.T) {
	t.Run("terminal states", func(t *testing.T) {
		gt.Equal(t, true, types.NCStatusResolved.IsTerminal())
		gt.Equal(t, true, types.NCStatusRejected.IsTerminal())
	})

	t.Run("non-terminal states", func(t *testing.T) {
		gt.Equal(t, false, types.NCStatusPending.IsTerminal())
		gt.Equal(t, false, types.NCStatusInReview.IsTerminal())
		gt.Equal(t, false, types.NCStatusApproved.IsTerminal())
	})

	t.Run("validity", func(t *testing.T) {
		gt.Equal(t, true, types.NCStatusPending.IsValid())
		gt.Equal(t, false, types.NCStatus("closed").IsValid())
	})
}

func TestApprovalStatus(t *testing.T) {
	gt.Equal(t, false, types.ApprovalStatusPending.IsTerminal())
	gt.Equal(t, true, types.ApprovalStatusApproved.IsTerminal())
	gt.Equal(t, true, types.ApprovalStatusRejected.IsTerminal())
}

func TestNCPriority(t *testing.T) {
	gt.Equal(t, true, types.PriorityLow.IsValid())
	gt.Equal(t, true, types.PriorityUrgent.IsValid())
	gt.Equal(t, false, types.NCPriority("critical").IsValid())
}

func TestNewHistoryEntryID(t *testing.T) {
	a := types.NewHistoryEntryID()
	b := types.NewHistoryEntryID()
	gt.NotEqual(t, a, b)
	gt.NotEqual(t, "", a.String())
}
