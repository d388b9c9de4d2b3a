// Package app wires configuration, logging, observability, services, the
// poller, and the HTTP server into a runnable application.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"bizpulse/internal/config"
	"bizpulse/internal/dataprocessing"
	apierrors "bizpulse/internal/errors"
	"bizpulse/internal/infrastructure"
	custommw "bizpulse/internal/middleware"
	"bizpulse/internal/poller"
	"bizpulse/internal/services"
	transporthttp "bizpulse/internal/transport/http"
	"bizpulse/internal/websocket"
)

// Application owns the wired components and their lifecycle.
type Application struct {
	config    *config.Config
	logger    *slog.Logger
	otel      *infrastructure.OTelProviders
	metrics   *infrastructure.BusinessMetrics
	hub       *websocket.Hub
	dashboard *services.DashboardService
	health    *services.HealthService
	poller    *poller.Poller
	server    *http.Server
}

// New builds the application from configuration. Components are constructed
// bottom-up: config, logger, telemetry, hub, services, poller, router.
func New() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(nil, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	hub := websocket.NewHub(logger)

	aggregator := dataprocessing.NewAggregator(logger, dataprocessing.AggregatorConfig{
		Scale:          dataprocessing.DefaultProxyScale(),
		MaxTrendPoints: cfg.Dashboard.MaxTrendPoints,
	})
	dashboard := services.NewDashboardService(aggregator, cfg.Dashboard.MonthsBack, logger)
	health := services.NewHealthService(dashboard)

	p := poller.New(cfg.Upstream, dashboard, hub, metrics, logger)

	app := &Application{
		config:    cfg,
		logger:    logger,
		otel:      otelProviders,
		metrics:   metrics,
		hub:       hub,
		dashboard: dashboard,
		health:    health,
		poller:    p,
	}

	app.server = &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        app.buildRouter(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	app.loadSeed()

	return app, nil
}

// loadSeed installs the on-disk record snapshot, when present, so the server
// answers with data before the first poll completes.
func (a *Application) loadSeed() {
	path := a.config.SeedFilePath()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			a.logger.Warn("failed to read seed file",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
		return
	}

	if a.poller.Apply(context.Background(), 0, data) {
		a.logger.Info("seed snapshot loaded", slog.String("path", path))
	}
}

// buildRouter assembles the middleware chain and mounts the handlers.
// The metrics endpoint stays outside the API middleware group so scrapes
// bypass rate limiting and logging.
func (a *Application) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StructuredLogger(a.logger))
	r.Use(custommw.Recoverer(a.logger))
	r.Use(custommw.SecurityHeaders)

	if a.config.Security.EnableCORS {
		r.Use(custommw.CORS(custommw.CORSConfig{
			AllowedOrigins: a.config.Security.AllowedOrigins,
			Logger:         a.logger,
		}))
	}

	errorHandler := apierrors.NewErrorHandler(a.logger, a.config.Logging.Development)
	dashboardHandler := transporthttp.NewDashboardHandler(a.dashboard, a.logger, errorHandler)
	healthHandler := transporthttp.NewHealthHandler(a.health, a.logger)

	r.Route("/api", func(api chi.Router) {
		if a.config.Security.RateLimit.Enabled {
			limiter := custommw.NewRateLimiter(
				a.config.Security.RateLimit.RPS,
				a.config.Security.RateLimit.Burst,
				a.logger,
			)
			api.Use(limiter.Handler)
		}
		api.Use(custommw.Timeout(30*time.Second, a.logger))
		api.Use(custommw.Compress(5))
		api.Use(custommw.BusinessMetricsMiddleware(a.metrics))

		api.Mount("/", dashboardHandler.Routes())
		api.Mount("/health", healthHandler.Routes())
	})

	if a.otel.PrometheusHTTP != nil {
		r.Handle("/metrics", a.otel.PrometheusHTTP)
	}

	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		websocket.ServeWS(a.hub, w, req, a.logger)
	})

	return r
}

// Run starts the hub, poller, and HTTP server and blocks until a shutdown
// signal or a fatal component error.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.hub.Start()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("http server starting", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.poller.Run(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		return a.shutdown()
	})

	err := g.Wait()
	a.logger.Info("application stopped")
	return err
}

// shutdown drains the server and telemetry within the configured timeout.
func (a *Application) shutdown() error {
	a.logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	var firstErr error
	if err := a.server.Shutdown(ctx); err != nil {
		firstErr = fmt.Errorf("server shutdown failed: %w", err)
	}

	a.hub.Shutdown()

	if err := a.otel.Shutdown(ctx); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("telemetry shutdown failed: %w", err)
	}

	if err := infrastructure.CloseLogFile(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
