package main

import (
	"context"
	"log"
	"os"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spec-kit/ticket-migrate/internal/aggregate"
	"github.com/spec-kit/ticket-migrate/internal/config"
	"github.com/spec-kit/ticket-migrate/internal/events"
	"github.com/spec-kit/ticket-migrate/internal/migrate"
	"github.com/spec-kit/ticket-migrate/internal/observability"
	"github.com/spec-kit/ticket-migrate/internal/persistence"
	"github.com/spec-kit/ticket-migrate/internal/reconcile"
	"github.com/spec-kit/ticket-migrate/internal/repository"
	"github.com/spec-kit/ticket-migrate/internal/service"
	"github.com/spec-kit/ticket-migrate/internal/superops"
	"github.com/spec-kit/ticket-migrate/internal/syncro"
	"github.com/spec-kit/ticket-migrate/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	// One limiter for every outbound call, source and destination alike.
	limiter := rate.NewLimiter(rate.Every(cfg.Migration.RateLimit()), 1)

	source := superops.NewClient(cfg.SuperOps, limiter, logger, metrics)
	destination := syncro.NewClient(cfg.Syncro, limiter, logger, metrics).
		WithCustomerCache(redis, cfg.Redis.CustomerTTL())

	dispatcher := events.NewInMemoryDispatcher(logger)
	journalRepo := repository.NewJournalRepository(pg.PoolHandle())
	journalService := service.NewJournalService(dispatcher, journalRepo, logger)
	worker.StartJournalWorker(journalService)

	aggregator := aggregate.NewAggregator(source, logger, cfg.SuperOps.ClientPageSize, cfg.SuperOps.TicketPageSize)
	customers := aggregator.CollectAll(ctx)

	strategy := reconcile.ForName(cfg.Migration.MatchStrategy, logger)
	runner, err := migrate.NewRunner(migrate.RunnerDependencies{
		Destination: destination,
		Strategy:    strategy,
		Dispatcher:  dispatcher,
		Logger:      logger,
		Metrics:     metrics,
		Input:       os.Stdin,
	}, cfg.Migration)
	if err != nil {
		logger.Fatal("failed to build runner", zap.Error(err))
	}

	runner.Run(ctx, customers)

	apiCalls, outcomes := metrics.Snapshot()
	logger.Info("migration run finished",
		zap.String("run_id", runner.RunID()),
		zap.Any("api_calls", apiCalls),
		zap.Any("outcomes", outcomes))

	if journaled, err := journalRepo.CountByState(ctx, runner.RunID()); err != nil {
		logger.Warn("failed to read journal summary", zap.Error(err))
	} else if len(journaled) > 0 {
		logger.Info("journal summary", zap.Any("states", journaled))
	}
}
