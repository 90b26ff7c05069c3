package services

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"drillsheet/internal/dataprocessing"
	apierrors "drillsheet/internal/errors"
	"drillsheet/internal/infrastructure"
	"drillsheet/internal/store"
	"drillsheet/internal/validation"
	"drillsheet/internal/workbook"
	"drillsheet/pkg/contracts/domain"
)

// Metric status for workbooks that could not be decoded at all.
const statusUnreadable = "unreadable"

// ParseService turns uploaded workbooks into persisted records.
type ParseService struct {
	parser   *dataprocessing.Parser
	store    store.Store
	records  *validation.RecordValidator
	tracer   trace.Tracer
	metrics  *infrastructure.ParseMetrics
	maxBytes int64
	logger   *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewParseService creates a parse service. A nil store disables
// persistence; nil providers disable metrics and use the global tracer.
// maxBytes caps the size of a single workbook when positive.
func NewParseService(parser *dataprocessing.Parser, st store.Store, providers *infrastructure.OTelProviders, maxBytes int64, logger *slog.Logger) *ParseService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ParseService{
		parser:   parser,
		store:    st,
		records:  validation.NewRecordValidator(),
		tracer:   otel.Tracer(infrastructure.InstrumentationName),
		maxBytes: maxBytes,
		logger:   infrastructure.WithComponent(logger, "parse_service"),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.New().String() },
	}
	if providers != nil {
		if providers.Tracer != nil {
			s.tracer = providers.Tracer
		}
		s.metrics = providers.Metrics
	}
	return s
}

// Parse reads one workbook from r and parses it. filename is recorded as
// the source of every record and used for identity fallbacks.
//
// The job is always returned and, when a store is configured, always
// saved. The result is persisted only when it is valid. The error is
// non-nil when r is not a readable workbook (PARSING, result nil) or the
// store failed (STORAGE, result set).
func (s *ParseService) Parse(ctx context.Context, filename string, r io.Reader) (*domain.ParseResult, *domain.ParseJob, error) {
	ctx, span := s.tracer.Start(ctx, "parse.workbook",
		trace.WithAttributes(attribute.String("file", filename)))
	defer span.End()

	logger := infrastructure.LoggerWithContext(ctx, s.logger).With(slog.String("file", filename))
	start := time.Now()

	job := &domain.ParseJob{
		JobID:          s.newID(),
		TemplateType:   domain.TemplateUnknown,
		Warnings:       []string{},
		SourceFilePath: filename,
		CreatedAt:      s.now(),
	}

	if r == nil {
		return nil, s.unreadable(ctx, logger, job, start, ErrNilWorkbook), apierrors.NewParsingError("failed to parse workbook", ErrNilWorkbook)
	}
	wb, err := workbook.Read(r, s.maxBytes)
	if err != nil {
		return nil, s.unreadable(ctx, logger, job, start, err),
			apierrors.NewParsingError("failed to parse workbook", err).WithContext("file", filename)
	}

	res := s.parser.Parse(wb, filename)
	for _, w := range s.records.Validate(res) {
		res.Validation.AddWarning(w)
	}

	job.TemplateType = res.Type
	job.Warnings = append(job.Warnings, res.Validation.Warnings...)
	job.Counts = domain.ParseJobCounts{Series: len(res.Series), Points: res.PointCount()}
	switch {
	case res.Test != nil:
		job.TestRef = res.Test.TestID
	case res.Report != nil:
		job.TestRef = res.Report.ReportID
	}
	if res.Validation.IsValid {
		job.Status = domain.ParseJobParsed
	} else {
		job.Status = domain.ParseJobFailed
		job.Errors = append([]string{}, res.Validation.Errors...)
	}

	span.SetAttributes(
		attribute.String("template", string(res.Type)),
		attribute.Bool("valid", res.Validation.IsValid),
		attribute.Int("series_pages", job.Counts.Series),
		attribute.Int("points", job.Counts.Points),
	)

	var saveErr error
	if s.store != nil && res.Validation.IsValid && res.Data() != nil {
		if saveErr = s.store.SaveResult(ctx, res); saveErr != nil {
			job.Status = domain.ParseJobFailed
			job.Errors = append(job.Errors, saveErr.Error())
			infrastructure.RecordError(ctx, saveErr)
			logger.Error("Failed to persist parse result", slog.String("error", saveErr.Error()))
		}
	}
	if err := s.saveJob(ctx, logger, job); err != nil && saveErr == nil {
		saveErr = err
	}

	s.metrics.RecordParse(ctx, infrastructure.ParseObservation{
		Template: string(res.Type),
		Status:   string(job.Status),
		Duration: time.Since(start),
		Pages:    job.Counts.Series,
		Points:   job.Counts.Points,
		Errors:   len(res.Validation.Errors),
		Warnings: len(res.Validation.Warnings),
	})

	level := slog.LevelInfo
	if !res.Validation.IsValid {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "Workbook parsed",
		slog.String("job_id", job.JobID),
		slog.String("template", string(res.Type)),
		slog.String("status", string(job.Status)),
		slog.Int("series_pages", job.Counts.Series),
		slog.Int("points", job.Counts.Points),
		slog.Int("errors", len(res.Validation.Errors)),
		slog.Int("warnings", len(res.Validation.Warnings)),
		slog.Duration("duration", time.Since(start)))

	return res, job, saveErr
}

// ParseFile opens path and parses it.
func (s *ParseService) ParseFile(ctx context.Context, path string) (*domain.ParseResult, *domain.ParseJob, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, apierrors.NewParsingError("failed to open workbook", err).WithContext("file", path)
	}
	defer f.Close()
	return s.Parse(ctx, path, f)
}

// unreadable finalises the job of a workbook that could not be decoded.
func (s *ParseService) unreadable(ctx context.Context, logger *slog.Logger, job *domain.ParseJob, start time.Time, cause error) *domain.ParseJob {
	job.Status = domain.ParseJobFailed
	job.Errors = []string{cause.Error()}
	infrastructure.RecordError(ctx, cause)
	logger.Warn("Workbook could not be read", slog.String("error", cause.Error()))

	if err := s.saveJob(ctx, logger, job); err != nil {
		job.Errors = append(job.Errors, err.Error())
	}
	s.metrics.RecordParse(ctx, infrastructure.ParseObservation{
		Template: string(domain.TemplateUnknown),
		Status:   statusUnreadable,
		Duration: time.Since(start),
		Errors:   1,
	})
	return job
}

func (s *ParseService) saveJob(ctx context.Context, logger *slog.Logger, job *domain.ParseJob) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.SaveJob(ctx, job); err != nil {
		logger.Error("Failed to save parse job",
			slog.String("job_id", job.JobID),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}
