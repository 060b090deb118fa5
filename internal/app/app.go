// Package app wires configuration, the dataset store, services and the HTTP
// transport into a runnable server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"trendpulse/internal/config"
	"trendpulse/internal/dataset"
	apierrors "trendpulse/internal/errors"
	"trendpulse/internal/infrastructure"
	custommw "trendpulse/internal/middleware"
	"trendpulse/internal/services"
	handlers "trendpulse/internal/transport/http"
)

// Version is overridden at build time via -ldflags.
var Version = "dev"

// Application holds the wired dependencies of the dashboard server.
type Application struct {
	Config  *config.Config
	Logger  *slog.Logger
	Router  *chi.Mux
	Server  *http.Server
	Store   *dataset.Store
	Service *services.DashboardService
	Metrics *infrastructure.Metrics
}

// NewApplication loads configuration and builds the full dependency graph.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("version", Version),
		slog.String("data_dir", cfg.Data.Dir),
		slog.Int("port", cfg.Server.Port))

	store := dataset.NewStore(dataset.NewLoader(cfg.Data.Dir, logger), logger)

	app := &Application{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Service: services.NewDashboardService(store, cfg, logger),
		Metrics: infrastructure.NewMetrics(),
	}

	app.setupRouter()
	app.createServer()
	return app, nil
}

func (a *Application) setupRouter() {
	errorHandler := apierrors.NewErrorHandler(a.Logger, false)

	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(custommw.StructuredLogger(a.Logger))
	r.Use(custommw.Recoverer(a.Logger))
	r.Use(custommw.Metrics(a.Metrics))
	r.Use(custommw.SecurityHeaders)
	r.Use(chimiddleware.Timeout(a.Config.Server.RequestTimeout))

	if a.Config.Security.EnableCORS {
		r.Use(custommw.CORS(custommw.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		}))
	}
	if a.Config.Security.RateLimit.Enabled {
		limiter := custommw.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger)
		r.Use(limiter.Handler)
	}

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	r.Route("/api", func(api chi.Router) {
		api.Mount("/dashboard", handlers.NewDashboardHandler(
			a.Service, a.Logger, errorHandler, a.Config.Analytics.MaxKeywords).Routes())
		api.Mount("/data", handlers.NewDataHandler(
			a.Service, a.Logger, errorHandler, a.Metrics).Routes())
		api.Mount("/", handlers.NewHealthHandler(a.Store, Version).Routes())
	})

	r.Method(http.MethodGet, "/metrics", a.Metrics.Handler())

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start launches the HTTP server. The cancel function is invoked when the
// listener fails so Run can unwind.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "starting HTTP server", slog.String("addr", a.Server.Addr))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	return nil
}

// Stop gracefully shuts the server down within the configured timeout.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		a.Logger.WarnContext(ctx, "failed to close log file", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "application shutdown complete")
	return nil
}

// Run starts the server and blocks until an interrupt arrives. The dataset is
// warmed eagerly; a failed warm load is logged but does not prevent startup,
// dashboard views keep failing closed until a reload succeeds.
func (a *Application) Run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	warmCtx, warmCancel := context.WithTimeout(ctx, 30*time.Second)
	if _, err := a.Store.Snapshot(warmCtx); err != nil {
		a.Logger.WarnContext(ctx, "dataset warm load failed, serving anyway",
			slog.String("error", err.Error()))
	} else {
		a.Logger.InfoContext(ctx, "dataset warm load complete")
	}
	warmCancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.Info("received shutdown signal")

	return a.Stop(context.Background())
}
