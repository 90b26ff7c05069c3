package http

import (
	"context"
	"io"

	"drillsheet/internal/services"
	"drillsheet/internal/store"
	"drillsheet/pkg/contracts/domain"
)

// ParseServiceInterface parses uploaded workbooks.
type ParseServiceInterface interface {
	Parse(ctx context.Context, filename string, r io.Reader) (*domain.ParseResult, *domain.ParseJob, error)
}

// RecordReader is the read side of the record store.
type RecordReader interface {
	GetSite(ctx context.Context, siteID string) (*domain.Site, error)
	GetBorehole(ctx context.Context, siteID, boreholeID string) (*domain.Borehole, error)
	GetTest(ctx context.Context, testID string) (*domain.DischargeTest, error)
	ListSeries(ctx context.Context, testID string) ([]domain.Series, error)
	ListQuality(ctx context.Context, testID string) ([]domain.Quality, error)
	GetReport(ctx context.Context, reportID string) (*domain.Report, error)
	ListJobs(ctx context.Context, filter store.JobFilter) ([]domain.ParseJob, error)
}

// HealthServiceInterface reports service health.
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
}

var (
	_ ParseServiceInterface  = (*services.ParseService)(nil)
	_ RecordReader           = (store.Store)(nil)
	_ HealthServiceInterface = (*services.HealthService)(nil)
)
