package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/ticket-watcher/internal/api"
	"github.com/donaldgifford/ticket-watcher/internal/api/handlers"
	"github.com/donaldgifford/ticket-watcher/internal/telemetry"
	"github.com/donaldgifford/ticket-watcher/internal/watcher"
	"github.com/donaldgifford/ticket-watcher/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Poll until tickets are available, then notify once and exit",
		Long: "watch fetches the movie details, then polls the performance catalog on\n" +
			"the configured interval. It exits 0 after a success notification, 1\n" +
			"after a failure notification and 2 on configuration errors.",
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	log := newLogger(cfg).With("run_id", runID)
	ctx := cmd.Context()

	if cfg.Logging.Format == logger.FormatConsole {
		fmt.Fprintln(cmd.OutOrStdout(), banner())
	}

	tp, err := telemetry.Setup(ctx, telemetry.Options{
		Endpoint: cfg.Tracing.Endpoint,
		Insecure: cfg.Tracing.Insecure,
		Version:  Version,
		RunID:    runID,
	})
	if err != nil {
		return usageError(err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Warn("flushing traces", "error", err)
		}
	}()

	notifier, err := newNotifier(&cfg.Notifications, log)
	if err != nil {
		return usageError(err)
	}

	target := cfg.Watch.Target()
	dispatcher := watcher.NewDispatcher(notifier, payloadConfig(cfg), watcher.WithDispatchLogger(log))
	loop := watcher.NewLoop(newCatalog(&cfg.Catalog), dispatcher, target,
		watcher.WithInterval(cfg.Watch.Interval),
		watcher.WithNotifyOnInvisible(cfg.Watch.NotifyOnInvisible),
		watcher.WithPerformancesURL(cfg.Catalog.PerformancesURL),
		watcher.WithLogger(log),
		watcher.WithTracer(tp.Tracer()),
	)

	if cfg.Status.Addr != "" {
		info := handlers.NewRunInfo(runID, Version, target, cfg.Watch.Interval, time.Now())
		srv := api.NewServer(loop, info, log)
		if err := srv.Start(cfg.Status.Addr); err != nil {
			return usageError(err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				log.Warn("stopping status server", "error", err)
			}
		}()
	}

	log.Info("starting watch",
		"movie_id", target.MovieID,
		"cinema_ids", target.CinemaIDs,
		"interval", cfg.Watch.Interval,
		"backend", cfg.Notifications.Backend,
	)

	res, err := loop.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("interrupted, no notification sent")
			return &exitError{code: exitInterrupted}
		}
		return failedError(err)
	}

	if code := res.ExitCode(); code != exitSuccess {
		return &exitError{code: code}
	}
	return nil
}
