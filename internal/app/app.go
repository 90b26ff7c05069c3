package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"drillsheet/internal/config"
	"drillsheet/internal/dataprocessing"
	apierrors "drillsheet/internal/errors"
	"drillsheet/internal/exporter"
	"drillsheet/internal/infrastructure"
	customMiddleware "drillsheet/internal/middleware"
	"drillsheet/internal/services"
	"drillsheet/internal/store"
	handlers "drillsheet/internal/transport/http"
	"drillsheet/pkg/contracts"
)

// Application holds every component of a running drillsheet instance.
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Store         store.Store
	ParseService  *services.ParseService
	ImportService *services.ImportService
	HealthService *services.HealthService
	Exporter      *exporter.ResultExporter
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	ErrorHandler  *apierrors.ErrorHandler
}

// NewApplication loads configuration from configFile (or the default
// locations when empty) and the environment, initializes logging and
// builds the application.
func NewApplication(configFile string) (*Application, error) {
	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = config.LoadFrom(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return New(cfg, logger)
}

// New builds the application from an already loaded configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version))

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	logger.Debug("Resolved paths",
		slog.String("base_dir", paths.BaseDir),
		slog.String("data_dir", paths.DataDir),
		slog.String("exports_dir", paths.ExportsDir))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	if err := a.initializeServices(); err != nil {
		a.Close(context.Background())
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	a.setupRouter()
	a.createServer()
	return a, nil
}

// initializeServices opens the store and wires the services onto it.
func (a *Application) initializeServices() error {
	st, err := store.New(a.Config, a.Paths, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	a.Store = st

	parser := dataprocessing.NewParser(a.Logger, dataprocessing.Options{
		PageSize:          a.Config.Parser.SeriesPageSize,
		ReportDroppedRows: a.Config.Parser.ReportDroppedRows,
	})
	a.ParseService = services.NewParseService(parser, st, a.OTelProviders, a.Config.Parser.MaxUploadBytes, a.Logger)
	a.ImportService = services.NewImportService(a.ParseService, a.OTelProviders, a.Config.Import.Workers, a.Config.Import.Pattern, a.Logger)
	a.HealthService = services.NewHealthService(contracts.Version, st, a.Logger)
	a.Exporter = exporter.NewResultExporter(exporter.NewCSVWriter(a.Paths, a.Logger))

	a.Logger.Info("Services initialized",
		slog.String("storage", a.Config.Storage.Driver),
		slog.Int("import_workers", a.Config.Import.Workers))
	return nil
}

// setupRouter builds the middleware chain and mounts the API.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.ErrorHandler))
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders).Handler)
	r.Use(customMiddleware.SecurityHeaders)

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	r.Method(http.MethodGet, "/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP))
	a.setupAPIRoutes(r)

	a.Router = r
}

func (a *Application) setupAPIRoutes(r chi.Router) {
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	dataHandler := handlers.NewDataHandler(a.Store, a.Logger, a.ErrorHandler)
	parseHandler := handlers.NewParseHandler(a.ParseService, a.Config.Parser.MaxUploadBytes, a.Logger, a.ErrorHandler)

	r.Route("/api", func(r chi.Router) {
		// Health stays outside the rate limit so probes never see 429.
		r.Get("/health", healthHandler.HealthCheck)

		r.Group(func(r chi.Router) {
			if rl := a.Config.Security.RateLimit; rl.Enabled {
				r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger, a.ErrorHandler).Handler)
			}
			r.Use(middleware.Timeout(a.Config.Server.WriteTimeout))

			r.Mount("/parse", parseHandler.Routes())
			r.Mount("/", dataHandler.Routes())
		})
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           net.JoinHostPort(a.Config.Server.Host, strconv.Itoa(a.Config.Server.Port)),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Run serves HTTP until ctx is cancelled or SIGINT/SIGTERM arrives, then
// shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.InfoContext(ctx, "Server listening", slog.String("address", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			a.Close(context.Background())
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Received shutdown signal")
	}
	return a.Stop(context.Background())
}

// Stop shuts the server down within the configured timeout and releases
// the store and telemetry providers.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if a.Server != nil {
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
		}
	}
	if err := a.Close(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Close releases the store and flushes telemetry. It is safe to call on a
// partially built application.
func (a *Application) Close(ctx context.Context) error {
	var errs []error
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store close: %w", err))
		}
		a.Store = nil
	}
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(ctx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
		a.OTelProviders = nil
	}
	return errors.Join(errs...)
}
