package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yourusername/clever-multi/internal/api"
	"github.com/yourusername/clever-multi/internal/metrics"
	"github.com/yourusername/clever-multi/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the scheduled odds fetch",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	hub := api.NewHub(cfg.Server.AllowedOrigins, logger)
	go hub.Run(ctx)

	apiCfg := api.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		App:         cfg,
		Analyzer:    a.analyzer,
		Odds:        a.odds,
		OddsCache:   a.oddsClient,
		Deriver:     a.deriver,
		Hub:         hub,
		Logger:      logger,
	}
	if a.ml != nil {
		apiCfg.Predictions = a.ml
	}
	if a.db != nil {
		apiCfg.DB = a.db
	}

	server := api.NewServer(apiCfg)
	if err := server.Start(ctx); err != nil {
		return err
	}

	if cfg.Scheduler.Enabled {
		sched := scheduler.NewScheduler(a.odds, logger)
		if err := sched.ScheduleFetch(cfg.Scheduler.FetchSchedule); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
		logger.WithField("next_fetch", sched.GetNextRun()).Info("Odds fetch scheduled")
		defer func() {
			if err := sched.Stop(); err != nil {
				logger.WithError(err).Warn("Scheduler stop incomplete")
			}
		}()
	}

	<-ctx.Done()
	logger.Info("Shutting down")
	return server.Shutdown()
}
