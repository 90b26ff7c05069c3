package store

import (
	"context"
	"fmt"
	"log/slog"

	"drillsheet/internal/config"
	apierrors "drillsheet/internal/errors"
	"drillsheet/pkg/contracts/domain"
)

// Store persists parse results and the audit trail of parse jobs. Series
// and quality IDs are only unique within their test.
type Store interface {
	// SaveResult stores every record of a parse result atomically: the
	// site and borehole are upserted, the test or report inserted, and
	// the test's series and quality samples replaced.
	SaveResult(ctx context.Context, res *domain.ParseResult) error
	SaveJob(ctx context.Context, job *domain.ParseJob) error

	GetSite(ctx context.Context, siteID string) (*domain.Site, error)
	GetBorehole(ctx context.Context, siteID, boreholeID string) (*domain.Borehole, error)
	GetTest(ctx context.Context, testID string) (*domain.DischargeTest, error)
	ListSeries(ctx context.Context, testID string) ([]domain.Series, error)
	ListQuality(ctx context.Context, testID string) ([]domain.Quality, error)
	GetReport(ctx context.Context, reportID string) (*domain.Report, error)
	GetJob(ctx context.Context, jobID string) (*domain.ParseJob, error)
	// ListJobs returns jobs newest first.
	ListJobs(ctx context.Context, filter JobFilter) ([]domain.ParseJob, error)

	Close() error
}

// JobFilter narrows ListJobs. Zero values match everything.
type JobFilter struct {
	Status domain.ParseJobStatus
	Limit  int
}

func (f JobFilter) matches(job *domain.ParseJob) bool {
	return f.Status == "" || job.Status == f.Status
}

// New opens the store selected by cfg.Storage.Driver.
func New(cfg *config.Config, paths *config.Paths, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Storage.Driver {
	case config.StorageMemory, "":
		logger.Info("Using in-memory store")
		return NewMemoryStore(), nil
	case config.StorageSQLite:
		dsn := cfg.SQLiteDSN(paths)
		logger.Info("Opening sqlite store", slog.String("dsn", dsn))
		return OpenSQLite(dsn)
	default:
		return nil, apierrors.NewConfigError(fmt.Sprintf("unknown storage driver %q", cfg.Storage.Driver), nil)
	}
}

// checkResult rejects results that carry nothing to persist.
func checkResult(res *domain.ParseResult) error {
	if res == nil || res.Data() == nil {
		return fmt.Errorf("parse result has no test or report")
	}
	if res.Test != nil && (res.Site == nil || res.Borehole == nil) {
		return fmt.Errorf("test %s is missing its site or borehole", res.Test.TestID)
	}
	return nil
}
