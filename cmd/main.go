package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"customer-engine/internal/api"
	"customer-engine/internal/batch"
	"customer-engine/internal/config"
	"customer-engine/internal/domain/customer"
	"customer-engine/internal/event"
	"customer-engine/internal/infrastructure/cache"
	"customer-engine/internal/infrastructure/database/memory"
	"customer-engine/internal/infrastructure/database/postgres"
	"customer-engine/internal/infrastructure/logging"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

const (
	defaultStatsSchedule = "*/5 * * * *"
	defaultStatsTimeout  = 30 * time.Second
)

// @title Customer Engine API
// @version 1.0
// @description Query and update API for the customer registry.
// @BasePath /api/v1
func main() {
	cfg, logger := initializeApp()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, closeRepo, err := initializeRepository(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize customer store", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeRepo()

	publisher, closePublisher := initializePublisher(cfg.RabbitMQ, logger)
	defer closePublisher()

	customerService := customer.NewCustomerService(repo, publisher, logger)
	statsJob := batch.NewCustomerStatsJob(customerService, logger)

	cronScheduler := startBatchJobs(cfg, logger, statsJob)
	router := api.SetupRouter(ctx, customerService, cfg, logger)

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	handleShutdown(srv, cronScheduler, shutdownChan, serverErrors, logger)
}

func initializeApp() (*config.Config, *slog.Logger) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logger)
	logger.Info("Application starting...", "storage", cfg.Storage.Driver)

	return cfg, logger
}

// initializeRepository picks the backing store and optionally fronts it with
// the redis cache. The returned func releases whatever was opened.
func initializeRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (customer.CustomerRepository, func(), error) {
	var (
		repo    customer.CustomerRepository
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.Storage.Driver {
	case config.StorageMemory, "":
		logger.Info("Using in-memory customer store")
		repo = memory.NewCustomerRepository(logger)
	case config.StoragePostgres:
		logger.Info("Initializing database connection pool...")
		dbPool, err := postgres.NewConnectionPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, func() {
			logger.Info("Closing database connection pool...")
			dbPool.Close()
		})
		if cfg.Database.EnsureSchema {
			if err := postgres.EnsureSchema(ctx, dbPool, logger); err != nil {
				closeAll()
				return nil, func() {}, err
			}
		}
		repo = postgres.NewCustomerRepository(dbPool, logger)
	default:
		return nil, closeAll, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}

	if cfg.Redis.Enabled {
		client, err := initializeRedisClient(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis unavailable, continuing without customer cache", slog.Any("error", err))
		} else {
			closers = append(closers, func() {
				logger.Info("Closing redis client...")
				if err := client.Close(); err != nil {
					logger.Warn("Failed to close redis client", slog.Any("error", err))
				}
			})
			repo = cache.NewCachedCustomerRepository(repo, client, cfg.Redis.TTL, logger)
		}
	}

	return repo, closeAll, nil
}

func initializeRedisClient(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (*redis.Client, error) {
	logger.Info("Connecting to redis...", "addr", cfg.Addr)
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// initializePublisher returns a nil publisher when messaging is disabled or
// the broker cannot be reached; the service then drops events.
func initializePublisher(cfg config.RabbitMQConfig, logger *slog.Logger) (event.EventPublisher, func()) {
	if !cfg.Enabled {
		logger.Info("RabbitMQ publishing disabled")
		return nil, func() {}
	}

	conn, err := event.Connect(cfg.URL, logger)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ, events will be dropped", slog.Any("error", err))
		return nil, func() {}
	}
	closeConn := func() {
		logger.Info("Closing RabbitMQ connection...")
		if err := conn.Close(); err != nil {
			logger.Warn("Failed to close RabbitMQ connection", slog.Any("error", err))
		}
	}

	publisher, err := event.NewRabbitMQEventPublisher(conn, cfg.ExchangeName, logger)
	if err != nil {
		logger.Error("Failed to create RabbitMQ publisher, events will be dropped", slog.Any("error", err))
		closeConn()
		return nil, func() {}
	}
	return publisher, closeConn
}

func startServer(cfg *config.Config, router http.Handler, logger *slog.Logger) (*http.Server, <-chan error, <-chan os.Signal) {
	logger.Info("Setting up HTTP server...", "port", cfg.Server.Port)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "port", cfg.Server.Port)
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			logger.Info("Server closed gracefully.")
			serverErrors <- nil
			return
		}
		logger.Error("Server error", "error", err)
		serverErrors <- err
	}()
	return srv, serverErrors, shutdownChan
}

func handleShutdown(srv *http.Server, cronScheduler *cron.Cron, shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) {
	logger.Info("Shutdown handler started. Waiting for signal or server error...")

	var triggerReason string
	select {
	case sig := <-shutdownChan:
		triggerReason = "signal: " + sig.String()
		logger.Info("Shutdown signal received.", "signal", sig.String())
	case err := <-serverErrors:
		if err != nil {
			logger.Error("Server exited unexpectedly before signal", "error", err)
			os.Exit(1)
		}
		triggerReason = "server exited"
		logger.Info("Server goroutine finished before signal.")
	}

	logger.Info("Starting graceful shutdown...", "trigger", triggerReason)

	logger.Info("Stopping cron scheduler...")
	cronCtx := cronScheduler.Stop()
	select {
	case <-cronCtx.Done():
		logger.Info("Cron scheduler stopped gracefully.")
	case <-time.After(15 * time.Second):
		logger.Warn("Cron scheduler shutdown timed out.")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", "error", err)
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}

	select {
	case err := <-serverErrors:
		if err != nil {
			logger.Warn("Server goroutine exited with unexpected error after shutdown", "error", err)
		}
	case <-time.After(5 * time.Second):
		logger.Warn("Timed out waiting for server goroutine confirmation.")
	}

	logger.Info("Application shutdown process complete.")
}

func startBatchJobs(cfg *config.Config, logger *slog.Logger, statsJob *batch.CustomerStatsJob) *cron.Cron {
	logger.Info("Initializing batch job scheduler...")
	c := cron.New()

	scheduleSpec := cfg.Batch.StatsSchedule
	if scheduleSpec == "" {
		scheduleSpec = defaultStatsSchedule
		logger.Warn("Customer stats schedule not configured, using default", "schedule", scheduleSpec)
	}
	jobTimeout := cfg.Batch.StatsTimeout
	if jobTimeout <= 0 {
		jobTimeout = defaultStatsTimeout
	}

	jobID, err := c.AddJob(scheduleSpec, cron.FuncJob(func() {
		jobLogger := logger.With("job_name", "CustomerStats")
		jobLogger.Debug("Cron triggered: refreshing customer gauges.")

		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if runErr := statsJob.Run(ctx); runErr != nil {
			jobLogger.Error("Customer stats job finished with error", slog.Any("error", runErr))
		}
	}))
	if err != nil {
		logger.Error("Failed to schedule customer stats job", "schedule", scheduleSpec, slog.Any("error", err))
	} else {
		logger.Info("Scheduled customer stats job", "schedule", scheduleSpec, "job_id", jobID)
	}

	c.Start()
	logger.Info("Cron scheduler started.")
	return c
}
