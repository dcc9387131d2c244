package notify

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/qassure-lab/lotgate/pkg/domain/interfaces"
	"github.com/qassure-lab/lotgate/pkg/domain/model"
	"github.com/qassure-lab/lotgate/pkg/domain/types"
)

// Null is a notifier that only logs. Used when no transport is
// configured.
type Null struct{}

// NewNull creates a Null notifier
func NewNull() *Null {
	return &Null{}
}

// Notify logs the event and discards it
func (n *Null) Notify(ctx context.Context, recipients []string, notification *model.NCNotification, event types.NotificationEvent) error {
	ctxlog.From(ctx).Debug("notification discarded (no notifier configured)",
		"notificationID", notification.ID,
		"event", event,
		"recipients", len(recipients),
	)
	return nil
}

var _ interfaces.Notifier = (*Null)(nil) // Compile-time interface check
