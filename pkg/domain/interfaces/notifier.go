package interfaces

import (
	"context"

	"github.com/qassure-lab/lotgate/pkg/domain/model"
	"github.com/qassure-lab/lotgate/pkg/domain/types"
)

// Notifier delivers non-conformity lifecycle events to the configured
// recipients. Transport is owned by the implementation; delivery
// failures are the implementation's concern to retry.
type Notifier interface {
	Notify(ctx context.Context, recipients []string, notification *model.NCNotification, event types.NotificationEvent) error
}
