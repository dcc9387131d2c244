package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/qassure-lab/lotgate/pkg/domain/interfaces"
	"github.com/qassure-lab/lotgate/pkg/service/notify"
	"github.com/urfave/cli/v3"
)

// Slack holds Slack notifier configuration
type Slack struct {
	OAuthToken string
}

// Flags returns CLI flags for Slack configuration
func (s *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-oauth-token",
			Usage:       "Slack OAuth token for posting notification messages",
			Category:    "Slack",
			Sources:     cli.EnvVars("LOTGATE_SLACK_OAUTH_TOKEN"),
			Destination: &s.OAuthToken,
		},
	}
}

// Configure creates a notifier. Returns the logging-only notifier when
// no token is configured so escalation keeps working without Slack.
func (s *Slack) Configure(ctx context.Context) interfaces.Notifier {
	logger := ctxlog.From(ctx)

	if !s.IsConfigured() {
		logger.Warn("Slack not configured - notification events will only be logged")
		return notify.NewNull()
	}

	logger.Info("Configuring Slack notifier")
	return notify.NewSlack(s.OAuthToken)
}

// IsConfigured checks if Slack is properly configured
func (s *Slack) IsConfigured() bool {
	return s.OAuthToken != ""
}

// LogValue returns structured log value
func (s Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("has_oauth_token", s.OAuthToken != ""),
	)
}
