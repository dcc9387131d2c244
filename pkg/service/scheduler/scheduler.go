package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/qassure-lab/lotgate/pkg/domain/model"
	"github.com/qassure-lab/lotgate/pkg/usecase"
	"github.com/qassure-lab/lotgate/pkg/utils/apperr"
	"github.com/qassure-lab/lotgate/pkg/utils/async"
)

// ActorScheduler is recorded as the actor of automatic escalations
const ActorScheduler = "scheduler"

// Scheduler periodically evaluates open notifications and escalates the
// ones whose auto-escalation delay has elapsed. The escalation engine
// itself stays time-agnostic; this collaborator owns the clock.
type Scheduler struct {
	escalation *usecase.Escalation
	interval   time.Duration
	now        func() time.Time
}

// New creates a scheduler. Pass nil for now to use wall-clock time.
func New(escalation *usecase.Escalation, interval time.Duration, now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		escalation: escalation,
		interval:   interval,
		now:        now,
	}
}

// Run evaluates auto-escalation on every tick until the context is
// cancelled. Sweeps run in the background so a slow sweep never delays
// the ticker.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	ctxlog.From(ctx).Info("auto-escalation scheduler started",
		"interval", s.interval,
	)

	for {
		select {
		case <-ctx.Done():
			ctxlog.From(ctx).Info("auto-escalation scheduler stopped")
			return
		case <-ticker.C:
			async.Dispatch(ctx, s.Evaluate)
		}
	}
}

// Evaluate runs one auto-escalation sweep over all open notifications.
// A notification that reached a terminal state between listing and
// escalation is skipped, not an error.
func (s *Scheduler) Evaluate(ctx context.Context) error {
	notifications, err := s.escalation.ListOpen(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	for _, notification := range notifications {
		if !notification.EligibleForAutoEscalation(now) {
			continue
		}

		if _, err := s.escalation.Escalate(ctx, notification.ID, ActorScheduler); err != nil {
			if errors.Is(err, model.ErrInvalidState) {
				// Resolved or rejected since the listing; nothing to do
				continue
			}
			apperr.Handle(ctx, err)
			continue
		}

		ctxlog.From(ctx).Info("auto-escalated notification",
			"notificationID", notification.ID,
			"level", notification.EscalationLevel+1,
		)
	}

	return nil
}
