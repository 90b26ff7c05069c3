package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"drillsheet/internal/infrastructure"
	"drillsheet/internal/store"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	store     store.Store
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status        string                   `json:"status"`
	Timestamp     time.Time                `json:"timestamp"`
	Version       string                   `json:"version"`
	UptimeSeconds float64                  `json:"uptime_seconds"`
	GoVersion     string                   `json:"go_version"`
	Services      map[string]ServiceHealth `json:"services"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version string, st store.Store, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		store:     st,
		startTime: time.Now(),
		logger:    infrastructure.WithComponent(logger, "health_service"),
	}
}

// HealthCheck returns overall health status. The status is "degraded"
// when the store cannot be queried.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:        "ok",
		Timestamp:     time.Now().UTC(),
		Version:       hs.version,
		UptimeSeconds: time.Since(hs.startTime).Seconds(),
		GoVersion:     runtime.Version(),
		Services: map[string]ServiceHealth{
			"store": hs.checkStore(ctx),
		},
	}
	for _, sh := range status.Services {
		if sh.Status != "ready" {
			status.Status = "degraded"
		}
	}

	hs.logger.Debug("HealthCheck: completed", slog.String("status", status.Status))
	return status
}

func (hs *HealthService) checkStore(ctx context.Context) ServiceHealth {
	if hs.store == nil {
		return ServiceHealth{Status: "not_ready", Message: "store not initialized"}
	}
	if _, err := hs.store.ListJobs(ctx, store.JobFilter{Limit: 1}); err != nil {
		return ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("store error: %v", err)}
	}
	return ServiceHealth{Status: "ready"}
}
