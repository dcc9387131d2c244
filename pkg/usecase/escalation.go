package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/qassure-lab/lotgate/pkg/domain/interfaces"
	"github.com/qassure-lab/lotgate/pkg/domain/model"
	"github.com/qassure-lab/lotgate/pkg/domain/types"
	"github.com/qassure-lab/lotgate/pkg/utils/apperr"
)

// Escalation transitions are retried this many times on a revision
// conflict before the conflict surfaces to the caller
const casMaxAttempts = 5

// Escalation tracks non-conformity notifications through their
// escalation levels
type Escalation struct {
	repo     interfaces.Repository
	notifier interfaces.Notifier
	now      func() time.Time
}

// NewEscalation creates a new Escalation use case. Pass nil for now to
// use wall-clock time.
func NewEscalation(repo interfaces.Repository, notifier interfaces.Notifier, now func() time.Time) *Escalation {
	if now == nil {
		now = time.Now
	}
	return &Escalation{
		repo:     repo,
		notifier: notifier,
		now:      now,
	}
}

// Raise records a newly detected non-conformity at escalation level 1
// and notifies the configured recipients
func (uc *Escalation) Raise(ctx context.Context, input model.NCInput, actor types.ActorID) (*model.NCNotification, error) {
	notification, err := model.NewNCNotification(input, actor, uc.now())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create notification")
	}

	if err := uc.repo.PutNotification(ctx, notification); err != nil {
		return nil, goerr.Wrap(err, "failed to save notification")
	}

	uc.notify(ctx, notification, types.EventRaised)
	return notification, nil
}

// Get retrieves a notification by ID
func (uc *Escalation) Get(ctx context.Context, id types.NotificationID) (*model.NCNotification, error) {
	notification, err := uc.repo.GetNotification(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get notification")
	}
	return notification, nil
}

// ListOpen retrieves all non-terminal notifications
func (uc *Escalation) ListOpen(ctx context.Context) ([]*model.NCNotification, error) {
	notifications, err := uc.repo.ListOpenNotifications(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list notifications")
	}
	return notifications, nil
}

// Escalate raises the escalation level by one. The read-check-write is
// guarded by compare-and-swap so concurrent escalations each count;
// escalating a terminal notification fails with ErrInvalidState.
func (uc *Escalation) Escalate(ctx context.Context, id types.NotificationID, actor types.ActorID) (*model.NCNotification, error) {
	notification, err := uc.transition(ctx, id, func(n *model.NCNotification) error {
		return n.Escalate(actor, uc.now())
	})
	if err != nil {
		return nil, err
	}

	uc.notify(ctx, notification, types.EventEscalated)
	return notification, nil
}

// Resolve transitions a notification to resolved. A second resolve
// fails with ErrInvalidState; the first resolution is never overwritten.
func (uc *Escalation) Resolve(ctx context.Context, id types.NotificationID, notes string, actor types.ActorID) (*model.NCNotification, error) {
	notification, err := uc.transition(ctx, id, func(n *model.NCNotification) error {
		return n.Resolve(actor, notes, uc.now())
	})
	if err != nil {
		return nil, err
	}

	uc.notify(ctx, notification, types.EventResolved)
	return notification, nil
}

// UpdateStatus moves a notification to another workflow status
func (uc *Escalation) UpdateStatus(ctx context.Context, id types.NotificationID, status types.NCStatus, actor types.ActorID, note string) (*model.NCNotification, error) {
	return uc.transition(ctx, id, func(n *model.NCNotification) error {
		return n.UpdateStatus(status, actor, note, uc.now())
	})
}

// transition applies mutate under compare-and-swap, reloading and
// retrying on revision conflicts. State errors from mutate (terminal
// notification, repeated resolve) surface immediately without retry.
func (uc *Escalation) transition(ctx context.Context, id types.NotificationID, mutate func(*model.NCNotification) error) (*model.NCNotification, error) {
	var lastErr error
	for attempt := 0; attempt < casMaxAttempts; attempt++ {
		notification, err := uc.repo.GetNotification(ctx, id)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get notification")
		}

		expected := notification.Revision
		if err := mutate(notification); err != nil {
			return nil, err
		}

		err = uc.repo.CompareAndSwapNotification(ctx, notification, expected)
		if err == nil {
			return notification, nil
		}
		if !errors.Is(err, model.ErrRevisionMismatch) {
			return nil, goerr.Wrap(err, "failed to save notification")
		}
		lastErr = err
	}

	return nil, goerr.Wrap(lastErr, "notification transition kept conflicting",
		goerr.V("notificationID", id),
		goerr.V("attempts", casMaxAttempts))
}

// notify delivers the event to the configured recipients. The state
// transition is already committed; delivery failures are logged and
// retried by the notifier's own policy, never by this engine.
func (uc *Escalation) notify(ctx context.Context, notification *model.NCNotification, event types.NotificationEvent) {
	if uc.notifier == nil || len(notification.Recipients) == 0 {
		return
	}
	if err := uc.notifier.Notify(ctx, notification.Recipients, notification, event); err != nil {
		apperr.Handle(ctx, goerr.Wrap(err, "failed to notify recipients",
			goerr.V("notificationID", notification.ID),
			goerr.V("event", event)))
		return
	}
	ctxlog.From(ctx).Debug("notified recipients",
		"notificationID", notification.ID,
		"event", event,
		"recipients", len(notification.Recipients),
	)
}
