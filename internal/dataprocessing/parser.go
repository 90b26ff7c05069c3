package dataprocessing

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"drillsheet/internal/workbook"
	"drillsheet/pkg/contracts/domain"
)

// Options tune a Parser.
type Options struct {
	// PageSize is the maximum number of points per series page.
	PageSize int
	// ReportDroppedRows adds a warning per series counting rows that held
	// data but produced no point, and negative times clamped to zero.
	ReportDroppedRows bool
	// Now stamps CreatedAt fields. Defaults to time.Now in UTC.
	Now func() time.Time
	// NewID generates the unique part of a test ID. Defaults to a UUID.
	NewID func() string
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		PageSize: DefaultPageSize,
		Now:      func() time.Time { return time.Now().UTC() },
		NewID:    func() string { return uuid.New().String() },
	}
}

// Parser classifies workbooks and extracts their records.
type Parser struct {
	logger *slog.Logger
	opts   Options
}

// NewParser creates a parser. Zero-valued options fall back to defaults.
func NewParser(logger *slog.Logger, opts Options) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultOptions()
	if opts.PageSize <= 0 {
		opts.PageSize = def.PageSize
	}
	if opts.Now == nil {
		opts.Now = def.Now
	}
	if opts.NewID == nil {
		opts.NewID = def.NewID
	}
	return &Parser{
		logger: logger.With(slog.String("component", "parser")),
		opts:   opts,
	}
}

// ParseBytes decodes an xlsx buffer and parses it. The error is non-nil
// only when the buffer is not a readable workbook.
func (p *Parser) ParseBytes(data []byte, filename string) (*domain.ParseResult, error) {
	wb, err := workbook.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	return p.Parse(wb, filename), nil
}

// ParseFile reads and parses a workbook from disk.
func (p *Parser) ParseFile(path string) (*domain.ParseResult, error) {
	wb, err := workbook.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return p.Parse(wb, path), nil
}

// Parse classifies wb and extracts its records. It never fails: every
// problem is reported in the result's Validation.
func (p *Parser) Parse(wb *workbook.Workbook, filename string) *domain.ParseResult {
	res := &domain.ParseResult{
		Type:       domain.TemplateUnknown,
		Series:     []domain.Series{},
		Quality:    []domain.Quality{},
		Validation: domain.NewValidationResult(),
	}

	t, sheet := classify(wb)
	res.Type = t
	p.logger.Info("Classified workbook",
		slog.String("file", filename),
		slog.String("template", string(t)))

	switch t {
	case domain.TemplateProgressReport:
		p.parseReport(res, sheet, filename)
	case domain.TemplateSteppedDischarge:
		p.parseDischarge(res, sheet, filename, steppedLayout)
	case domain.TemplateConstantDischarge:
		p.parseDischarge(res, sheet, filename, constantLayout)
	default:
		res.Validation.AddError(UnknownTemplateMessage)
	}

	res.Validation.IsValid = len(res.Validation.Errors) == 0
	return res
}

func (p *Parser) parseReport(res *domain.ParseResult, sheet *workbook.Sheet, filename string) {
	report, v := ExtractReport(sheet)
	res.Validation = v
	if report == nil {
		return
	}
	report.FileRef = filename
	report.CreatedAt = p.opts.Now()
	res.Report = report

	p.logger.Debug("Extracted daily report",
		slog.String("report_id", report.ReportID),
		slog.Int("day_activities", len(report.DayShift.Activities)),
		slog.Int("night_activities", len(report.NightShift.Activities)))
}

func (p *Parser) parseDischarge(res *domain.ParseResult, sheet *workbook.Sheet, filename string, l dischargeLayout) {
	ex, err := extractDischarge(sheet, filename, l, &res.Validation, p.opts.ReportDroppedRows)
	if err != nil {
		res.Validation.AddError(err.Error())
		return
	}

	b := recordBuilder{
		testID:   "discharge-" + p.opts.NewID(),
		filename: filename,
		pageSize: p.opts.PageSize,
		now:      p.opts.Now(),
	}
	res.Test = b.test(ex)
	res.Site = b.site(ex)
	res.Borehole = b.borehole(ex)
	res.Series = b.series(ex.Series)
	res.Quality = b.quality(ex.Quality)

	for _, s := range ex.Series {
		attrs := []any{
			slog.String("series_type", string(s.Type)),
			slog.Int("points", len(s.Points)),
		}
		if s.RateIndex != nil {
			attrs = append(attrs, slog.Int("rate_index", *s.RateIndex))
		}
		p.logger.Debug("Extracted series", attrs...)
	}
	p.logger.Info("Extracted discharge test",
		slog.String("test_id", res.Test.TestID),
		slog.Int("series_pages", len(res.Series)),
		slog.Int("quality_samples", len(res.Quality)),
		slog.Int("warnings", len(res.Validation.Warnings)))
}
