package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/clever-multi/internal/config"
	"github.com/yourusername/clever-multi/internal/database"
	"github.com/yourusername/clever-multi/internal/datasource"
	"github.com/yourusername/clever-multi/internal/ev"
	applogger "github.com/yourusername/clever-multi/internal/logger"
	"github.com/yourusername/clever-multi/internal/ml"
	"github.com/yourusername/clever-multi/internal/models"
	"github.com/yourusername/clever-multi/internal/repository"
	"github.com/yourusername/clever-multi/internal/service"
	"github.com/yourusername/clever-multi/internal/signals"
)

// app holds the wired dependencies shared by every command
type app struct {
	db         *database.DB
	repos      *repository.Repositories
	oddsClient *datasource.OddsAPIClient
	ml         *ml.CachedClient
	deriver    *signals.Deriver
	pipeline   *service.Pipeline
	odds       *service.OddsService
	analyzer   *service.Analyzer
}

func newApp(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*app, error) {
	a := &app{}

	sports := make([]models.Sport, 0, len(cfg.Sports))
	for _, raw := range cfg.Sports {
		sport, err := models.ParseSport(raw)
		if err != nil {
			return nil, err
		}
		sports = append(sports, sport)
	}

	if cfg.Database.Enabled {
		db, err := database.Initialize(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.db = db
		if a.repos, err = repository.NewRepositories(db); err != nil {
			a.Close()
			return nil, err
		}
	}

	store, storeName, err := a.snapshotStore(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	var providers []signals.StatsProvider
	if a.repos != nil {
		stats, err := a.repos.TeamStats.GetAll(ctx)
		if err != nil {
			log.WithError(err).Warn("Team stats unavailable, using price-derived signals")
		} else if len(stats) > 0 {
			providers = append(providers, signals.NewStaticProvider(stats))
		}
	}
	a.deriver = signals.NewDeriver(nil, log, providers...)

	var sources []ev.ProbabilitySource
	if cfg.MLService.Enabled {
		client, err := ml.NewCachedClient(&cfg.MLService, log)
		if err != nil {
			applogger.NewMLLogger(log).LogSourceDegraded(ml.SourceName, ev.HeuristicSourceName, err)
		} else {
			a.ml = client
			sources = append(sources, client)
		}
	}
	engine := ev.NewEngine(service.ThresholdsFrom(cfg), log, sources...)

	a.pipeline = service.NewPipeline(service.PipelineConfigFrom(cfg), engine, a.deriver, log)
	a.oddsClient = datasource.NewOddsAPIClient(cfg.OddsAPI, log)

	var runs repository.RunRepository
	if a.repos != nil {
		runs = a.repos.Run
	}
	a.odds = service.NewOddsService(service.OddsServiceConfig{
		Sports:       sports,
		StoreName:    storeName,
		MaxDaysAhead: cfg.OddsAPI.MaxEventDaysAhead,
		BestOddsOnly: cfg.Snapshot.BestOddsOnly,
	}, a.oddsClient, store, runs, log)
	a.analyzer = service.NewAnalyzer(a.odds, a.pipeline, cfg.OddsCacheTTL(), log)

	return a, nil
}

func (a *app) snapshotStore(cfg *config.Config) (service.SnapshotStore, string, error) {
	switch cfg.Snapshot.Store {
	case "postgres":
		if a.repos == nil {
			return nil, "", errors.New("snapshot.store=postgres requires database.enabled")
		}
		return a.repos.Snapshot, "postgres", nil
	default:
		fs := datasource.NewFileSnapshotStore(cfg.Snapshot.Path)
		return fs, "file:" + fs.Path(), nil
	}
}

func (a *app) Close() {
	if a.oddsClient != nil {
		_ = a.oddsClient.Close()
	}
	if a.ml != nil {
		if err := a.ml.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close ML client")
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}
