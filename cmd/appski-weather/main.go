package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/manuelxose/appski-weather/internal/alerts"
	httpapi "github.com/manuelxose/appski-weather/internal/api/http"
	"github.com/manuelxose/appski-weather/internal/config"
	"github.com/manuelxose/appski-weather/internal/history"
	"github.com/manuelxose/appski-weather/internal/observability"
	"github.com/manuelxose/appski-weather/internal/scheduler"
	"github.com/manuelxose/appski-weather/internal/weather"
	"github.com/manuelxose/appski-weather/internal/weather/sources"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	metrics := observability.NewMetrics()

	// Data source: static mock tree over HTTP, or bundled fixtures.
	var source weather.DataSource
	if cfg.MockAPIBaseURL != "" {
		httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
		mockSource, err := sources.NewMockAPISource(httpClient, cfg.MockAPIBaseURL, sources.BackoffConfig{
			MaxRetries:      cfg.SourceMaxRetries,
			InitialInterval: cfg.SourceBackoffInitial,
			MaxInterval:     cfg.SourceBackoffMax,
		})
		if err != nil {
			log.Fatalf("failed to build mock api source: %v", err)
		}
		source = mockSource
	} else {
		slogger.Info("MOCK_API_BASE_URL not set, serving bundled fixtures")
		source = sources.NewStaticSource(sources.DefaultFixtures())
	}

	// Dismissed-alert persistence: file-backed when configured.
	var storage alerts.Storage
	if cfg.StorageDir != "" {
		fileStorage, err := alerts.NewFileStorage(cfg.StorageDir)
		if err != nil {
			log.Fatalf("failed to open storage dir: %v", err)
		}
		storage = fileStorage
	} else {
		slogger.Info("STORAGE_DIR not set, dismissed alerts are session-only")
		storage = alerts.NewMemoryStorage()
	}

	alertStore := alerts.NewStore(seedAlerts(), storage, slogger)
	metrics.DismissedAlerts.Set(float64(alertStore.DismissedCount()))

	histStore := history.NewStore(cfg.HistoryMaxEntries, cfg.HistoryMaxAge)

	weatherStore := weather.NewStore(source, slogger, metrics)
	weatherStore.SetRecorder(histStore)

	if cfg.DefaultStation != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := weatherStore.LoadStation(ctx, cfg.DefaultStation); err != nil {
			slogger.Warn("initial station load failed, will retry on first request", "station", cfg.DefaultStation, "error", err)
		}
		cancel()
	}

	sched := scheduler.New(weatherStore, cfg.RefreshInterval, slogger)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "appski-weather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "appski-weather",
		})
	})

	httpapi.RegisterRoutes(app, &httpapi.Deps{
		Weather: weatherStore,
		Alerts:  alertStore,
		History: histStore,
		Metrics: metrics,
	})

	// Prometheus endpoint on its own listener.
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(":"+cfg.MetricsPort, mux); err != nil {
			slogger.Error("metrics server stopped", "error", err)
		}
	}()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			slogger.Error("fiber server stopped", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slogger.Error("error during shutdown", "error", err)
	}
}

// seedAlerts is the fixed per-session alert list. There is no alert fetch
// endpoint; new alerts arrive only through the store's AddAlert.
func seedAlerts() []alerts.Alert {
	now := time.Now().UTC()
	return []alerts.Alert{
		{
			ID:          "avalanche-risk-top",
			Type:        alerts.SeverityDanger,
			Category:    "safety",
			Title:       "Avalanche risk above 2200m",
			Message:     "Considerable avalanche danger on north-facing slopes after recent snowfall.",
			Priority:    1,
			Dismissible: false,
			Timestamp:   now,
		},
		{
			ID:          "road-chains",
			Type:        alerts.SeverityWarning,
			Category:    "access",
			Title:       "Chains required on access road",
			Message:     "Snow chains are mandatory on the C-28 above Vielha.",
			Priority:    2,
			Dismissible: true,
			Timestamp:   now,
		},
		{
			ID:          "lift-maintenance",
			Type:        alerts.SeverityInfo,
			Category:    "lifts",
			Title:       "Jorge Jordana lift closed for maintenance",
			Message:     "Scheduled maintenance until Thursday; use the Mirador chair instead.",
			Priority:    5,
			Dismissible: true,
			Timestamp:   now,
		},
		{
			ID:          "early-season",
			Type:        alerts.SeverityInfo,
			Category:    "conditions",
			Title:       "Limited terrain open",
			Message:     "Early-season coverage; only the upper sectors are skiable.",
			Priority:    4,
			Dismissible: true,
			ActionURL:   "/conditions",
			Timestamp:   now,
		},
	}
}
