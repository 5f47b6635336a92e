package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/weather-assistant/internal/api/http"
	"github.com/i474232898/weather-assistant/internal/config"
	"github.com/i474232898/weather-assistant/internal/logger"
	"github.com/i474232898/weather-assistant/internal/scheduler"
	"github.com/i474232898/weather-assistant/internal/store"
	"github.com/i474232898/weather-assistant/internal/weather"
	"github.com/i474232898/weather-assistant/internal/weather/providers"
)

// failed fetches to one endpoint within a user request before later fetches to it are skipped
const breakerThreshold = 2

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// Shared HTTP client for outbound provider calls.
	fetcher, err := providers.NewFetcher(providers.HTTPClientConfig{
		Client:  &http.Client{},
		Timeout: cfg.HTTPTimeout,
		Backoff: providers.BackoffConfig{
			MaxAttempts:     cfg.RetryMaxAttempts,
			InitialInterval: time.Second,
			MaxInterval:     cfg.RetryMaxBackoff,
		},
		BreakerThreshold: breakerThreshold,
	}, zl)
	if err != nil {
		zl.Fatal("failed to build fetcher", zap.Error(err))
	}

	provider := providers.NewOpenWeatherProvider(fetcher, cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL, zl)
	if !provider.Configured() {
		zl.Warn("OPENWEATHER_API_KEY is not set; every summary will report the service as unavailable")
	}

	// In-memory probe history with configured retention.
	probes := store.NewMemoryStore(cfg.ProbeMaxHistory, cfg.ProbeMaxAge)

	opts := []weather.Option{
		weather.WithProbeStore(probes),
		weather.WithRequestTimeout(cfg.RequestTimeout),
	}
	if tz := providers.NewTimezoneDB(fetcher, cfg.TimezoneAPIKey, cfg.TimezoneDBBaseURL); tz.Configured() {
		opts = append(opts, weather.WithTimezoneLookup(tz))
	}

	service := weather.NewService(provider, zl, opts...)

	// Scheduler that periodically probes the provider.
	sched := scheduler.New(cfg.ProbeLocation, cfg.ProbeInterval, service, zl)
	if err := sched.Start(); err != nil {
		zl.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-assistant",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.RequestTimeout + 5*time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, service, httpapi.RouteConfig{
		ProbeLocation: cfg.ProbeLocation,
		Logger:        zl,
	})

	go func() {
		zl.Info("listening", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zl.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zl.Error("error during shutdown", zap.Error(err))
	}
}
