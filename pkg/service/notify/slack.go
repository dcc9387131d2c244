package notify

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/qassure-lab/lotgate/pkg/domain/interfaces"
	"github.com/qassure-lab/lotgate/pkg/domain/model"
	"github.com/qassure-lab/lotgate/pkg/domain/types"
	"github.com/slack-go/slack"
)

// Slack delivers non-conformity events as Slack messages. Recipients
// are Slack channel or user IDs.
type Slack struct {
	client *slack.Client
}

// NewSlack creates a Slack notifier with the given OAuth token
func NewSlack(token string) *Slack {
	return &Slack{
		client: slack.New(token),
	}
}

// Notify posts one message per recipient describing the event
func (s *Slack) Notify(ctx context.Context, recipients []string, notification *model.NCNotification, event types.NotificationEvent) error {
	if notification == nil {
		return goerr.New("notification is nil")
	}

	text := formatMessage(notification, event)
	var errs []error
	for _, recipient := range recipients {
		if recipient == "" {
			continue
		}
		_, _, err := s.client.PostMessageContext(ctx, recipient,
			slack.MsgOptionText(text, false),
		)
		if err != nil {
			errs = append(errs, goerr.Wrap(err, "failed to post message",
				goerr.V("recipient", recipient)))
		}
	}

	if len(errs) > 0 {
		return goerr.New("failed to notify some recipients",
			goerr.V("failed", len(errs)),
			goerr.V("total", len(recipients)),
			goerr.V("firstError", errs[0]))
	}
	return nil
}

func formatMessage(n *model.NCNotification, event types.NotificationEvent) string {
	switch event {
	case types.EventRaised:
		return fmt.Sprintf(":warning: Non-conformity raised: %s / %s (severity %s, priority %s)",
			n.Category, n.DefectType, n.Severity, n.Priority)
	case types.EventEscalated:
		return fmt.Sprintf(":rotating_light: Non-conformity escalated to level %d: %s / %s (severity %s)",
			n.EscalationLevel, n.Category, n.DefectType, n.Severity)
	case types.EventResolved:
		return fmt.Sprintf(":white_check_mark: Non-conformity resolved: %s / %s: %s",
			n.Category, n.DefectType, n.ResolutionNotes)
	default:
		return fmt.Sprintf("Non-conformity %s: %s / %s", event, n.Category, n.DefectType)
	}
}

var _ interfaces.Notifier = (*Slack)(nil) // Compile-time interface check
