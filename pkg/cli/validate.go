package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/qassure-lab/lotgate/pkg/cli/config"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var samplingCfg config.Sampling

	return &cli.Command{
		Name:  "validate",
		Usage: "Validate the sampling table and plan configuration files",
		Flags: samplingCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			table, plans, err := samplingCfg.Configure()
			if err != nil {
				return err
			}

			low, high := table.Domain()
			logger.Info("Configuration is valid",
				slog.Int("rows", len(table.Rows())),
				slog.Int("lotLow", low),
				slog.Int("lotHigh", high),
				slog.Int("plans", len(plans.Plans)),
			)
			return nil
		},
	}
}
