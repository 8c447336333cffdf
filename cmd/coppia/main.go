package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"coppia/internal/amqp"
	"coppia/internal/cache"
	"coppia/internal/config"
	"coppia/internal/equity"
	apphttp "coppia/internal/http"
	"coppia/internal/log"
	"coppia/internal/services"
	"coppia/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

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

	// AMQP is optional: without a broker the API still works, the worker
	// just catches up on its next scheduled refresh.
	var publisher services.ChangePublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, change messages disabled", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	// Snapshot cache: Redis when configured, in-process LRU otherwise.
	var snapshots cache.Cache[equity.MonthlyStatus]
	cacheManager := cache.NewManager()
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCache[equity.MonthlyStatus](cfg.RedisAddr, cfg.SnapshotCacheTTL)
		defer redisCache.Close()
		snapshots = redisCache
		logger.Info("Redis snapshot cache initialized", "addr", cfg.RedisAddr, "ttl", cfg.SnapshotCacheTTL)
	} else {
		lru := cache.NewLRUCache[equity.MonthlyStatus](64, cfg.SnapshotCacheTTL)
		cacheManager.Register(lru)
		cacheManager.StartCleanup(10 * time.Minute)
		defer cacheManager.Stop()
		snapshots = lru
		logger.Info("In-process snapshot cache initialized", "ttl", cfg.SnapshotCacheTTL)
	}

	allocation, err := equity.GetAllocationStrategy(cfg.AllocationStrategy)
	if err != nil {
		logger.Error("Invalid allocation strategy", "error", err, "strategy", cfg.AllocationStrategy)
		os.Exit(1)
	}

	statusService := services.NewStatusService(repo, equity.NewAggregator(allocation), snapshots)
	ledgerService := services.NewLedgerService(repo, publisher, statusService)
	savingsService := services.NewSavingsService(repo, publisher, statusService)
	financesService := services.NewFinancesService(repo, publisher, statusService)

	srv := apphttp.NewServer(":"+cfg.Port, statusService, ledgerService, savingsService, financesService, repo, repo, cfg.RequestsPerMinute, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting coppia server", "port", cfg.Port, "allocation_strategy", cfg.AllocationStrategy)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
