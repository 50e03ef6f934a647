package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/clinicware/booking-platform/internal/api/router"
	"github.com/clinicware/booking-platform/internal/appointments"
	appconfig "github.com/clinicware/booking-platform/internal/config"
	"github.com/clinicware/booking-platform/internal/directory"
	"github.com/clinicware/booking-platform/internal/observability/metrics"
	"github.com/clinicware/booking-platform/pkg/logging"
)

func main() {
	// Load configuration (.env is optional, for local development)
	_ = godotenv.Load()
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.NewForEnv(cfg.LogLevel, cfg.Env)
	logger.Info("starting booking-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	bookingMetrics := metrics.NewBookingMetrics(prometheus.DefaultRegisterer)

	// Doctor directory: networked client, optionally wrapped in a redis cache
	dirClient, err := directory.NewClient(directory.Config{
		BaseURL: cfg.DirectoryBaseURL,
		Timeout: cfg.DirectoryTimeout,
	})
	if err != nil {
		logger.Error("failed to create directory client", "error", err)
		os.Exit(1)
	}
	var dir directory.Directory = dirClient
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		dir = directory.NewCachedDirectory(dirClient, rdb, cfg.DirectoryCacheTTL, logger)
		logger.Info("doctor snapshot cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.DirectoryCacheTTL)
	}

	// Appointment store: Postgres in production, in-memory for local runs
	var store appointments.Store
	if cfg.UseMemoryStore {
		logger.Warn("using in-memory appointment store; bookings will not survive restarts")
		store = appointments.NewInMemoryStore()
	} else {
		if cfg.DatabaseURL == "" {
			logger.Error("DATABASE_URL is required unless USE_MEMORY_STORE=true")
			os.Exit(1)
		}
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		store = appointments.NewPostgresStore(pool)
	}

	// Initialize service and handlers
	service := appointments.NewService(dir, store, bookingMetrics, logger)
	handler := appointments.NewHandler(service, logger)

	// Setup router
	r := router.New(&router.Config{
		Logger:              logger,
		AppointmentsHandler: handler,
		MetricsHandler:      promhttp.Handler(),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
