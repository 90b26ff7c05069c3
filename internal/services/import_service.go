package services

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	apierrors "drillsheet/internal/errors"
	"drillsheet/internal/infrastructure"
	"drillsheet/internal/validation"
	"drillsheet/pkg/contracts/domain"
)

// FileOutcome is the result of importing one workbook.
type FileOutcome struct {
	File   string              `json:"file"`
	Status string              `json:"status"`
	Job    *domain.ParseJob    `json:"job,omitempty"`
	Error  string              `json:"error,omitempty"`
	Result *domain.ParseResult `json:"-"`
}

// ImportSummary collects the outcomes of a directory import in file order.
type ImportSummary struct {
	Directory  string        `json:"directory"`
	Files      []FileOutcome `json:"files"`
	Parsed     int           `json:"parsed"`
	Failed     int           `json:"failed"`
	Unreadable int           `json:"unreadable"`
	Duration   string        `json:"duration"`
}

// ImportService parses every workbook of a directory.
type ImportService struct {
	parser  *ParseService
	files   *validation.FileValidator
	metrics *infrastructure.ParseMetrics
	workers int
	pattern string
	logger  *slog.Logger
}

// NewImportService creates an import service running at most workers
// parses at once over files matching pattern.
func NewImportService(parser *ParseService, providers *infrastructure.OTelProviders, workers int, pattern string, logger *slog.Logger) *ImportService {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = 1
	}
	s := &ImportService{
		parser:  parser,
		files:   validation.NewFileValidator(logger),
		workers: workers,
		pattern: pattern,
		logger:  infrastructure.WithComponent(logger, "import_service"),
	}
	if providers != nil {
		s.metrics = providers.Metrics
	}
	return s
}

// ImportDir parses the workbooks in dir. A file that cannot be read or
// parsed is recorded in its outcome and does not stop the batch; only an
// invalid directory or a cancelled context fail the whole import.
func (s *ImportService) ImportDir(ctx context.Context, dir string) (*ImportSummary, error) {
	logger := infrastructure.LoggerWithContext(ctx, s.logger)
	start := time.Now()

	paths, err := s.files.ListWorkbooks(dir, s.pattern)
	if err != nil {
		return nil, apierrors.NewImportError("cannot list workbooks", err).WithContext("directory", dir)
	}

	logger.Info("Import started",
		slog.String("directory", dir),
		slog.Int("files", len(paths)),
		slog.Int("workers", s.workers))

	outcomes := make([]FileOutcome, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = s.importFile(gctx, path)
			s.metrics.RecordImportFile(gctx, outcomes[i].Status)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apierrors.NewImportError("import cancelled", err).WithContext("directory", dir)
	}

	summary := &ImportSummary{Directory: dir, Files: outcomes}
	for _, o := range outcomes {
		switch o.Status {
		case string(domain.ParseJobParsed):
			summary.Parsed++
		case statusUnreadable:
			summary.Unreadable++
		default:
			summary.Failed++
		}
	}
	summary.Duration = time.Since(start).Round(time.Millisecond).String()

	logger.Info("Import finished",
		slog.String("directory", dir),
		slog.Int("parsed", summary.Parsed),
		slog.Int("failed", summary.Failed),
		slog.Int("unreadable", summary.Unreadable),
		slog.String("duration", summary.Duration))
	return summary, nil
}

func (s *ImportService) importFile(ctx context.Context, path string) FileOutcome {
	out := FileOutcome{File: path}

	res, job, err := s.parser.ParseFile(ctx, path)
	out.Result, out.Job = res, job
	switch {
	case res == nil:
		out.Status = statusUnreadable
	case job != nil:
		out.Status = string(job.Status)
	}
	if err != nil {
		out.Error = err.Error()
		if out.Status == "" {
			out.Status = string(domain.ParseJobFailed)
		}
	}
	return out
}
