package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/qassure-lab/lotgate/pkg/domain/interfaces"
	"github.com/qassure-lab/lotgate/pkg/domain/model"
	"github.com/qassure-lab/lotgate/pkg/domain/types"
)

// Acceptance provides inspection and acceptance decision functionality
type Acceptance struct {
	repo  interfaces.Repository
	table *model.SamplingTable
	plans *model.PlanConfig
	now   func() time.Time
}

// NewAcceptance creates a new Acceptance use case. Pass nil for now to
// use wall-clock time.
func NewAcceptance(repo interfaces.Repository, table *model.SamplingTable, plans *model.PlanConfig, now func() time.Time) *Acceptance {
	if now == nil {
		now = time.Now
	}
	return &Acceptance{
		repo:  repo,
		table: table,
		plans: plans,
		now:   now,
	}
}

// CreateInspection starts a new inspection for the given plan and lot.
// The lot size is resolved against the sampling table up front so an
// out-of-range lot fails before any defect is recorded.
func (uc *Acceptance) CreateInspection(ctx context.Context, planID string, lotSize int, level types.InspectionLevel, createdBy types.ActorID) (*model.Inspection, error) {
	plan := uc.plans.FindPlanByID(planID)
	if plan == nil {
		return nil, goerr.Wrap(model.ErrConfiguration, "unknown inspection plan",
			goerr.V("planID", planID))
	}

	if _, err := uc.table.Resolve(lotSize, level); err != nil {
		return nil, goerr.Wrap(err, "cannot inspect lot")
	}

	inspection, err := model.NewInspection(planID, lotSize, level, createdBy, uc.now())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create inspection")
	}

	if err := uc.repo.PutInspection(ctx, inspection); err != nil {
		return nil, goerr.Wrap(err, "failed to save inspection")
	}
	return inspection, nil
}

// GetInspection retrieves an inspection by ID
func (uc *Acceptance) GetInspection(ctx context.Context, id types.InspectionID) (*model.Inspection, error) {
	inspection, err := uc.repo.GetInspection(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get inspection")
	}
	return inspection, nil
}

// RecordDefect increments the defect tally for one severity tier
func (uc *Acceptance) RecordDefect(ctx context.Context, id types.InspectionID, tier types.SeverityTier, actor types.ActorID) (*model.Inspection, error) {
	if actor == "" {
		return nil, goerr.New("actor is required")
	}

	inspection, err := uc.repo.GetInspection(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get inspection")
	}

	expected := inspection.Revision
	if err := inspection.RecordDefect(tier, actor, uc.now()); err != nil {
		return nil, err
	}
	if err := uc.repo.CompareAndSwapInspection(ctx, inspection, expected); err != nil {
		return nil, goerr.Wrap(err, "failed to save defect")
	}
	return inspection, nil
}

// ResetTally zeroes the defect counters of an in-progress inspection
func (uc *Acceptance) ResetTally(ctx context.Context, id types.InspectionID, actor types.ActorID) (*model.Inspection, error) {
	if actor == "" {
		return nil, goerr.New("actor is required")
	}

	inspection, err := uc.repo.GetInspection(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get inspection")
	}

	expected := inspection.Revision
	if err := inspection.ResetTally(actor, uc.now()); err != nil {
		return nil, err
	}
	if err := uc.repo.CompareAndSwapInspection(ctx, inspection, expected); err != nil {
		return nil, goerr.Wrap(err, "failed to save tally reset")
	}
	return inspection, nil
}

// PreviewVerdict computes the verdict for the current tally without
// freezing anything. Callers use it while the inspection is still open.
func (uc *Acceptance) PreviewVerdict(ctx context.Context, id types.InspectionID) (*model.AcceptanceVerdict, error) {
	inspection, err := uc.repo.GetInspection(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get inspection")
	}

	if inspection.Verdict != nil {
		frozen := inspection.Verdict.Clone()
		return &frozen, nil
	}

	verdict, err := uc.decide(inspection)
	if err != nil {
		return nil, err
	}
	return &verdict, nil
}

// Submit freezes the tally, computes the final verdict and stores it
func (uc *Acceptance) Submit(ctx context.Context, id types.InspectionID, actor types.ActorID) (*model.Inspection, error) {
	if actor == "" {
		return nil, goerr.New("actor is required")
	}

	inspection, err := uc.repo.GetInspection(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get inspection")
	}

	verdict, err := uc.decide(inspection)
	if err != nil {
		return nil, err
	}

	expected := inspection.Revision
	if err := inspection.Submit(verdict, actor, uc.now()); err != nil {
		return nil, err
	}
	if err := uc.repo.CompareAndSwapInspection(ctx, inspection, expected); err != nil {
		return nil, goerr.Wrap(err, "failed to save submitted inspection")
	}
	return inspection, nil
}

func (uc *Acceptance) decide(inspection *model.Inspection) (model.AcceptanceVerdict, error) {
	plan := uc.plans.FindPlanByID(inspection.PlanID)
	if plan == nil {
		return model.AcceptanceVerdict{}, goerr.Wrap(model.ErrConfiguration, "unknown inspection plan",
			goerr.V("planID", inspection.PlanID))
	}

	row, err := uc.table.Resolve(inspection.LotSize, inspection.Level)
	if err != nil {
		return model.AcceptanceVerdict{}, goerr.Wrap(err, "failed to resolve sampling row")
	}

	limits, err := plan.Limits(row, inspection.Level)
	if err != nil {
		return model.AcceptanceVerdict{}, goerr.Wrap(err, "failed to derive AQL limits")
	}

	verdict, err := model.Decide(inspection.Tally.Snapshot(), limits)
	if err != nil {
		return model.AcceptanceVerdict{}, goerr.Wrap(err, "failed to decide verdict")
	}
	return verdict, nil
}
