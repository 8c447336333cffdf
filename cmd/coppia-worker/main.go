package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"coppia/internal/amqp"
	"coppia/internal/cache"
	"coppia/internal/config"
	"coppia/internal/equity"
	"coppia/internal/log"
	"coppia/internal/services"
	"coppia/internal/storage"
	"coppia/internal/worker"
)

// monthlyRefreshSpec fires at 06:00 on the first day of every month, closing
// out the previous period and warming the new one.
const monthlyRefreshSpec = "0 6 1 * *"

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker)
	log.SetDefault(logger)

	logger.Info("Starting coppia-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	// The worker writes snapshots into the same cache the API reads from,
	// so sharing only happens through Redis. Without Redis the worker keeps
	// a private cache and the API recomputes on demand instead.
	var snapshots cache.Cache[equity.MonthlyStatus]
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCache[equity.MonthlyStatus](cfg.RedisAddr, cfg.SnapshotCacheTTL)
		defer redisCache.Close()
		snapshots = redisCache
		logger.Info("Redis snapshot cache initialized", "addr", cfg.RedisAddr)
	} else {
		snapshots = cache.NewLRUCache[equity.MonthlyStatus](64, cfg.SnapshotCacheTTL)
		logger.Warn("No Redis configured, snapshots are not shared with the API")
	}

	allocation, err := equity.GetAllocationStrategy(cfg.AllocationStrategy)
	if err != nil {
		logger.Error("Invalid allocation strategy", "error", err, "strategy", cfg.AllocationStrategy)
		os.Exit(1)
	}

	statusService := services.NewStatusService(repo, equity.NewAggregator(allocation), snapshots)
	snapshotWorker := worker.NewSnapshotWorker(statusService)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Warm the current period once so a freshly started worker serves the
	// dashboard from cache even before any change message arrives.
	if err := snapshotWorker.RefreshCurrentPeriod(ctx); err != nil {
		logger.Error("Startup refresh failed", "error", err)
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return amqpClient.ConsumeLedgerChanges(ctx, func(msg *amqp.LedgerChangedMessage) error {
			return snapshotWorker.HandleChangeMessage(ctx, msg)
		})
	})

	group.Go(func() error {
		scheduler := cron.New()
		_, err := scheduler.AddFunc(monthlyRefreshSpec, func() {
			refreshCtx, refreshCancel := context.WithTimeout(ctx, time.Minute)
			defer refreshCancel()

			if err := snapshotWorker.RefreshPreviousPeriod(refreshCtx); err != nil {
				logger.Error("Monthly refresh of previous period failed", "error", err)
			}
			if err := snapshotWorker.RefreshCurrentPeriod(refreshCtx); err != nil {
				logger.Error("Monthly refresh of current period failed", "error", err)
			}
		})
		if err != nil {
			return err
		}

		scheduler.Start()
		<-ctx.Done()

		stopCtx := scheduler.Stop()
		select {
		case <-stopCtx.Done():
		case <-time.After(30 * time.Second):
			logger.Warn("Cron shutdown timeout reached")
		}
		return ctx.Err()
	})

	logger.Info("Worker running", "queue", cfg.AMQPQueue, "schedule", monthlyRefreshSpec)

	if err := group.Wait(); err != nil && err != context.Canceled {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
