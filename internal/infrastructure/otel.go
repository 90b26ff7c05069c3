package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"drillsheet/internal/config"
	"drillsheet/pkg/contracts"
)

const (
	ServiceName = "drillsheet"
	// InstrumentationName names the tracer and meter.
	InstrumentationName = "drillsheet"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string // "stdout", "none"
	MetricExporter string // "prometheus", "none"
	EnableMetrics  bool
	EnableTracing  bool
	SampleRatio    float64
}

// OTelProviders holds the OpenTelemetry providers. Metrics is nil when
// metrics are disabled; its methods tolerate that.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Metrics        *ParseMetrics
	Logger         *slog.Logger
}

// DefaultOTelConfig returns a default OpenTelemetry configuration
func DefaultOTelConfig() *OTelConfig {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: contracts.Version,
		Environment:    env,
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		EnableMetrics:  true,
		EnableTracing:  false,
		SampleRatio:    1.0,
	}
}

// OTelConfigFrom derives the OpenTelemetry settings from the telemetry
// section of the application config.
func OTelConfigFrom(tc config.TelemetryConfig) *OTelConfig {
	cfg := DefaultOTelConfig()
	if tc.ServiceName != "" {
		cfg.ServiceName = tc.ServiceName
	}
	cfg.EnableMetrics = tc.MetricsEnabled
	cfg.EnableTracing = tc.TracesEnabled
	if tc.TracesEnabled {
		cfg.TraceExporter = "stdout"
	}
	return cfg
}

// InitializeOTel sets up tracing and metrics. Each call gets its own
// Prometheus registry, so several providers can coexist in one process.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}
	if logger == nil {
		logger = GetLogger()
	}

	ctx := context.Background()

	logger.InfoContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", cfg.ServiceName),
		slog.String("version", cfg.ServiceVersion),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	providers := &OTelProviders{
		Logger: logger,
		Tracer: otel.Tracer(InstrumentationName),
	}

	if cfg.EnableTracing {
		if err := initializeTracing(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.EnableMetrics {
		if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return providers, nil
}

func createResource(cfg *OTelConfig) (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	), nil
}

func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(ConsoleWriter))
	case "none":
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(InstrumentationName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetTracerProvider(tp)

	providers.Logger.InfoContext(ctx, "Tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))
	return nil
}

func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.MetricExporter {
	case "prometheus":
		registry := promclient.NewRegistry()
		exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}

		providers.PrometheusHTTP = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)
		providers.MeterProvider = mp
		providers.Meter = mp.Meter(InstrumentationName, metric.WithInstrumentationVersion(cfg.ServiceVersion))

		metrics, err := CreateParseMetrics(providers.Meter)
		if err != nil {
			return fmt.Errorf("failed to create parse metrics: %w", err)
		}
		providers.Metrics = metrics
	case "none":
		return nil
	default:
		return fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}

	providers.Logger.InfoContext(ctx, "Metrics initialized",
		slog.String("exporter", cfg.MetricExporter))
	return nil
}

// ParseMetrics are the instruments recorded by the parse pipeline, the
// batch importer and the HTTP layer.
type ParseMetrics struct {
	ParsesTotal      metric.Int64Counter
	ParseDuration    metric.Float64Histogram
	SeriesPagesTotal metric.Int64Counter
	PointsTotal      metric.Int64Counter
	ValidationIssues metric.Int64Counter
	ImportFiles      metric.Int64Counter

	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
}

// CreateParseMetrics registers the parse instruments on meter.
func CreateParseMetrics(meter metric.Meter) (*ParseMetrics, error) {
	var m ParseMetrics
	var err error

	if m.ParsesTotal, err = meter.Int64Counter("drillsheet_parses",
		metric.WithDescription("Workbooks parsed, by template and outcome")); err != nil {
		return nil, err
	}
	if m.ParseDuration, err = meter.Float64Histogram("drillsheet_parse_duration",
		metric.WithDescription("Workbook parse duration"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.SeriesPagesTotal, err = meter.Int64Counter("drillsheet_series_pages",
		metric.WithDescription("Series pages produced")); err != nil {
		return nil, err
	}
	if m.PointsTotal, err = meter.Int64Counter("drillsheet_points",
		metric.WithDescription("Series points produced")); err != nil {
		return nil, err
	}
	if m.ValidationIssues, err = meter.Int64Counter("drillsheet_validation_issues",
		metric.WithDescription("Validation errors and warnings, by severity")); err != nil {
		return nil, err
	}
	if m.ImportFiles, err = meter.Int64Counter("drillsheet_import_files",
		metric.WithDescription("Files handled by batch imports, by outcome")); err != nil {
		return nil, err
	}
	if m.HTTPRequestsTotal, err = meter.Int64Counter("http_requests",
		metric.WithDescription("Total number of HTTP requests")); err != nil {
		return nil, err
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram("http_request_duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	return &m, nil
}

// ParseObservation is one parse outcome to be recorded.
type ParseObservation struct {
	Template string
	Status   string
	Duration time.Duration
	Pages    int
	Points   int
	Errors   int
	Warnings int
}

// RecordParse records a finished parse.
func (m *ParseMetrics) RecordParse(ctx context.Context, o ParseObservation) {
	if m == nil {
		return
	}
	tmpl := attribute.String("template", o.Template)

	m.ParsesTotal.Add(ctx, 1, metric.WithAttributes(tmpl, attribute.String("status", o.Status)))
	m.ParseDuration.Record(ctx, o.Duration.Seconds(), metric.WithAttributes(tmpl))
	if o.Pages > 0 {
		m.SeriesPagesTotal.Add(ctx, int64(o.Pages), metric.WithAttributes(tmpl))
	}
	if o.Points > 0 {
		m.PointsTotal.Add(ctx, int64(o.Points), metric.WithAttributes(tmpl))
	}
	if o.Errors > 0 {
		m.ValidationIssues.Add(ctx, int64(o.Errors), metric.WithAttributes(tmpl, attribute.String("severity", "error")))
	}
	if o.Warnings > 0 {
		m.ValidationIssues.Add(ctx, int64(o.Warnings), metric.WithAttributes(tmpl, attribute.String("severity", "warning")))
	}
}

// RecordImportFile counts one file of a batch import.
func (m *ParseMetrics) RecordImportFile(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.ImportFiles.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordHTTPRequest records a served request against its route pattern.
func (m *ParseMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// Shutdown gracefully shuts down OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown: %w", errors.Join(errs...))
	}

	p.Logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext extracts trace ID from context for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}
