package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/qassure-lab/lotgate/pkg/cli/config"
	controller "github.com/qassure-lab/lotgate/pkg/controller/http"
	"github.com/qassure-lab/lotgate/pkg/service/scheduler"
	"github.com/qassure-lab/lotgate/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg    config.Server
		samplingCfg  config.Sampling
		firestoreCfg config.Firestore
		slackCfg     config.Slack
	)

	flags := joinFlags(
		serverCfg.Flags(),
		samplingCfg.Flags(),
		firestoreCfg.Flags(),
		slackCfg.Flags(),
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Start HTTP server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting lotgate server",
				slog.String("addr", serverCfg.Addr),
				slog.Any("sampling", samplingCfg),
				slog.Any("firestore", firestoreCfg),
				slog.Any("slack", slackCfg),
			)

			table, plans, err := samplingCfg.Configure()
			if err != nil {
				return err
			}
			low, high := table.Domain()
			logger.Info("Sampling configuration loaded",
				slog.Int("rows", len(table.Rows())),
				slog.Int("lotLow", low),
				slog.Int("lotHigh", high),
				slog.Int("plans", len(plans.Plans)),
			)

			repo, err := firestoreCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			notifier := slackCfg.Configure(ctx)

			acceptanceUC := usecase.NewAcceptance(repo, table, plans, nil)
			approvalUC := usecase.NewApproval(repo, nil)
			escalationUC := usecase.NewEscalation(repo, notifier, nil)

			server := controller.NewServer(ctx, serverCfg.Addr, acceptanceUC, approvalUC, escalationUC)

			schedCtx, stopScheduler := context.WithCancel(ctx)
			defer stopScheduler()
			go scheduler.New(escalationUC, serverCfg.SweepInterval, nil).Run(schedCtx)

			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			stopScheduler()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
