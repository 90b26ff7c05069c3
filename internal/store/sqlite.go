package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver

	apierrors "drillsheet/internal/errors"
	"drillsheet/pkg/contracts/domain"
)

//go:embed schema.sql
var schema string

// SQLiteStore keeps parse results in a SQLite database. Nested values
// (points, shifts, summaries, job messages) are stored as JSON text.
type SQLiteStore struct {
	db *sqlx.DB
}

type siteRow struct {
	domain.Site
	Lat *float64 `db:"lat"`
	Lon *float64 `db:"lon"`
}

type testRow struct {
	domain.DischargeTest
	SummaryJSON string `db:"summary"`
}

type seriesRow struct {
	domain.Series
	Seq        int    `db:"seq"`
	PointsJSON string `db:"points"`
}

type reportRow struct {
	domain.Report
	ChallengesJSON string `db:"challenges"`
	ChecksJSON     string `db:"checks"`
	DayShiftJSON   string `db:"day_shift"`
	NightShiftJSON string `db:"night_shift"`
}

type jobRow struct {
	domain.ParseJob
	WarningsJSON string `db:"warnings"`
	ErrorsJSON   string `db:"errors"`
	SeriesCount  int    `db:"series_count"`
	PointCount   int    `db:"point_count"`
}

// OpenSQLite opens (creating when needed) the database at dsn and applies
// the schema. dsn is a file path, ":memory:" or a "file:" URI.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	memory := dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
	if !memory && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, apierrors.NewStorageError("failed to create database directory", err)
		}
	}

	db, err := sqlx.Open("sqlite", withPragmas(dsn, memory))
	if err != nil {
		return nil, apierrors.NewStorageError("failed to open database", err)
	}
	if memory {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apierrors.NewStorageError("failed to apply schema", err)
	}
	return &SQLiteStore{db: db}, nil
}

func withPragmas(dsn string, memory bool) string {
	params := []string{"_pragma=foreign_keys(1)", "_pragma=busy_timeout(5000)", "_time_format=sqlite"}
	if !memory {
		params = append(params, "_pragma=journal_mode(WAL)")
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveResult stores the records of res in one transaction.
func (s *SQLiteStore) SaveResult(ctx context.Context, res *domain.ParseResult) error {
	if err := checkResult(res); err != nil {
		return apierrors.NewStorageError("cannot save parse result", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return apierrors.NewStorageError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if res.Report != nil {
		err = upsertReportInTx(ctx, tx, res.Report)
	} else {
		err = saveTestInTx(ctx, tx, res)
	}
	if err != nil {
		return apierrors.NewStorageError("failed to save parse result", err)
	}

	if err := tx.Commit(); err != nil {
		return apierrors.NewStorageError("failed to commit parse result", err)
	}
	return nil
}

func saveTestInTx(ctx context.Context, tx *sqlx.Tx, res *domain.ParseResult) error {
	if err := upsertSiteInTx(ctx, tx, res.Site); err != nil {
		return err
	}
	if err := upsertBoreholeInTx(ctx, tx, res.Borehole); err != nil {
		return err
	}

	summary, err := json.Marshal(res.Test.Summary)
	if err != nil {
		return fmt.Errorf("marshalling summary: %w", err)
	}
	const insertTest = `
		INSERT INTO discharge_tests (test_id, test_type, borehole_ref, borehole_id, site_id,
			start_time, end_time, summary, contractor, province, source_file_path, status, created_at)
		VALUES (:test_id, :test_type, :borehole_ref, :borehole_id, :site_id,
			:start_time, :end_time, :summary, :contractor, :province, :source_file_path, :status, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertTest, testRow{DischargeTest: *res.Test, SummaryJSON: string(summary)}); err != nil {
		return fmt.Errorf("inserting test %s: %w", res.Test.TestID, err)
	}

	const insertSeries = `
		INSERT INTO series (test_id, series_id, seq, series_type, rate_index, page_index, points, created_at)
		VALUES (:test_id, :series_id, :seq, :series_type, :rate_index, :page_index, :points, :created_at)`
	for i, sr := range res.Series {
		points, err := json.Marshal(sr.Points)
		if err != nil {
			return fmt.Errorf("marshalling points of %s: %w", sr.SeriesID, err)
		}
		sr.TestID = res.Test.TestID
		if _, err := tx.NamedExecContext(ctx, insertSeries, seriesRow{Series: sr, Seq: i, PointsJSON: string(points)}); err != nil {
			return fmt.Errorf("inserting series %s: %w", sr.SeriesID, err)
		}
	}

	const insertQuality = `
		INSERT INTO quality (test_id, quality_id, rate_index, ph, temp_c, ec_us_cm, created_at)
		VALUES (:test_id, :quality_id, :rate_index, :ph, :temp_c, :ec_us_cm, :created_at)`
	for _, q := range res.Quality {
		q.TestID = res.Test.TestID
		if _, err := tx.NamedExecContext(ctx, insertQuality, q); err != nil {
			return fmt.Errorf("inserting quality %s: %w", q.QualityID, err)
		}
	}
	return nil
}

func upsertSiteInTx(ctx context.Context, tx *sqlx.Tx, site *domain.Site) error {
	row := siteRow{Site: *site}
	if site.Coordinates != nil {
		row.Lat, row.Lon = &site.Coordinates.Lat, &site.Coordinates.Lon
	}
	const q = `
		INSERT INTO sites (site_id, site_name, lat, lon, client, contractor, province, district, created_at)
		VALUES (:site_id, :site_name, :lat, :lon, :client, :contractor, :province, :district, :created_at)
		ON CONFLICT(site_id) DO UPDATE SET
			site_name = excluded.site_name,
			lat = excluded.lat,
			lon = excluded.lon,
			client = excluded.client,
			contractor = excluded.contractor,
			province = excluded.province,
			district = excluded.district`
	if _, err := tx.NamedExecContext(ctx, q, row); err != nil {
		return fmt.Errorf("upserting site %s: %w", site.SiteID, err)
	}
	return nil
}

func upsertBoreholeInTx(ctx context.Context, tx *sqlx.Tx, bh *domain.Borehole) error {
	const q = `
		INSERT INTO boreholes (site_id, borehole_id, borehole_no, alt_bh_no, project_no, map_ref,
			elevation_m, borehole_depth_m, datum_above_casing_m, existing_pump, static_wl_mbdl,
			casing_height_magl, pump_depth_m, pump_inlet_diam_mm, pump_type, swl_mbch, created_at)
		VALUES (:site_id, :borehole_id, :borehole_no, :alt_bh_no, :project_no, :map_ref,
			:elevation_m, :borehole_depth_m, :datum_above_casing_m, :existing_pump, :static_wl_mbdl,
			:casing_height_magl, :pump_depth_m, :pump_inlet_diam_mm, :pump_type, :swl_mbch, :created_at)
		ON CONFLICT(site_id, borehole_id) DO UPDATE SET
			borehole_no = excluded.borehole_no,
			alt_bh_no = excluded.alt_bh_no,
			project_no = excluded.project_no,
			map_ref = excluded.map_ref,
			elevation_m = excluded.elevation_m,
			borehole_depth_m = excluded.borehole_depth_m,
			datum_above_casing_m = excluded.datum_above_casing_m,
			existing_pump = excluded.existing_pump,
			static_wl_mbdl = excluded.static_wl_mbdl,
			casing_height_magl = excluded.casing_height_magl,
			pump_depth_m = excluded.pump_depth_m,
			pump_inlet_diam_mm = excluded.pump_inlet_diam_mm,
			pump_type = excluded.pump_type,
			swl_mbch = excluded.swl_mbch`
	if _, err := tx.NamedExecContext(ctx, q, bh); err != nil {
		return fmt.Errorf("upserting borehole %s: %w", bh.BoreholeID, err)
	}
	return nil
}

func upsertReportInTx(ctx context.Context, tx *sqlx.Tx, r *domain.Report) error {
	row := reportRow{Report: *r}
	for _, f := range []struct {
		dst *string
		v   any
	}{
		{&row.ChallengesJSON, r.Challenges},
		{&row.ChecksJSON, r.Checks},
		{&row.DayShiftJSON, r.DayShift},
		{&row.NightShiftJSON, r.NightShift},
	} {
		b, err := json.Marshal(f.v)
		if err != nil {
			return fmt.Errorf("marshalling report %s: %w", r.ReportID, err)
		}
		*f.dst = string(b)
	}

	const q = `
		INSERT INTO reports (report_id, report_date, report_date_text, client, project_site_area,
			rig_number, control_bh_id, obs_bh1_id, obs_bh2_id, obs_bh3_id, challenges,
			supervisor_name, client_rep_name, status, file_ref, checks, day_shift, night_shift, created_at)
		VALUES (:report_id, :report_date, :report_date_text, :client, :project_site_area,
			:rig_number, :control_bh_id, :obs_bh1_id, :obs_bh2_id, :obs_bh3_id, :challenges,
			:supervisor_name, :client_rep_name, :status, :file_ref, :checks, :day_shift, :night_shift, :created_at)
		ON CONFLICT(report_id) DO UPDATE SET
			report_date = excluded.report_date,
			report_date_text = excluded.report_date_text,
			client = excluded.client,
			project_site_area = excluded.project_site_area,
			rig_number = excluded.rig_number,
			control_bh_id = excluded.control_bh_id,
			obs_bh1_id = excluded.obs_bh1_id,
			obs_bh2_id = excluded.obs_bh2_id,
			obs_bh3_id = excluded.obs_bh3_id,
			challenges = excluded.challenges,
			supervisor_name = excluded.supervisor_name,
			client_rep_name = excluded.client_rep_name,
			status = excluded.status,
			file_ref = excluded.file_ref,
			checks = excluded.checks,
			day_shift = excluded.day_shift,
			night_shift = excluded.night_shift,
			created_at = excluded.created_at`
	if _, err := tx.NamedExecContext(ctx, q, row); err != nil {
		return fmt.Errorf("upserting report %s: %w", r.ReportID, err)
	}
	return nil
}

// SaveJob inserts or replaces a parse job.
func (s *SQLiteStore) SaveJob(ctx context.Context, job *domain.ParseJob) error {
	if job == nil || job.JobID == "" {
		return apierrors.NewStorageError("cannot save parse job without an id", nil)
	}
	row := jobRow{ParseJob: *job, SeriesCount: job.Counts.Series, PointCount: job.Counts.Points}
	warnings, err := json.Marshal(nonNil(job.Warnings))
	if err != nil {
		return apierrors.NewStorageError("failed to encode job warnings", err)
	}
	errs, err := json.Marshal(nonNil(job.Errors))
	if err != nil {
		return apierrors.NewStorageError("failed to encode job errors", err)
	}
	row.WarningsJSON, row.ErrorsJSON = string(warnings), string(errs)

	const q = `
		INSERT INTO parse_jobs (job_id, template_type, test_ref, status, warnings, errors,
			series_count, point_count, source_file_path, created_at)
		VALUES (:job_id, :template_type, :test_ref, :status, :warnings, :errors,
			:series_count, :point_count, :source_file_path, :created_at)
		ON CONFLICT(job_id) DO UPDATE SET
			template_type = excluded.template_type,
			test_ref = excluded.test_ref,
			status = excluded.status,
			warnings = excluded.warnings,
			errors = excluded.errors,
			series_count = excluded.series_count,
			point_count = excluded.point_count,
			source_file_path = excluded.source_file_path`
	if _, err := s.db.NamedExecContext(ctx, q, row); err != nil {
		return apierrors.NewStorageError("failed to save parse job", err)
	}
	return nil
}

// GetSite retrieves a site by ID.
func (s *SQLiteStore) GetSite(ctx context.Context, siteID string) (*domain.Site, error) {
	var row siteRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM sites WHERE site_id = ?`, siteID)
	if err != nil {
		return nil, lookupError(err, fmt.Sprintf("site %q", siteID))
	}
	site := row.Site
	if row.Lat != nil && row.Lon != nil {
		site.Coordinates = &domain.Coordinates{Lat: *row.Lat, Lon: *row.Lon}
	}
	return &site, nil
}

// GetBorehole retrieves a borehole by site and borehole ID.
func (s *SQLiteStore) GetBorehole(ctx context.Context, siteID, boreholeID string) (*domain.Borehole, error) {
	var bh domain.Borehole
	err := s.db.GetContext(ctx, &bh, `SELECT * FROM boreholes WHERE site_id = ? AND borehole_id = ?`, siteID, boreholeID)
	if err != nil {
		return nil, lookupError(err, fmt.Sprintf("borehole %q", boreholeID))
	}
	return &bh, nil
}

// GetTest retrieves a discharge test by ID.
func (s *SQLiteStore) GetTest(ctx context.Context, testID string) (*domain.DischargeTest, error) {
	var row testRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM discharge_tests WHERE test_id = ?`, testID)
	if err != nil {
		return nil, lookupError(err, fmt.Sprintf("test %q", testID))
	}
	test := row.DischargeTest
	if err := json.Unmarshal([]byte(row.SummaryJSON), &test.Summary); err != nil {
		return nil, apierrors.NewStorageError("failed to decode test summary", err)
	}
	return &test, nil
}

// ListSeries returns the series pages of a test in extraction order.
func (s *SQLiteStore) ListSeries(ctx context.Context, testID string) ([]domain.Series, error) {
	if err := s.testExists(ctx, testID); err != nil {
		return nil, err
	}

	var rows []seriesRow
	err := s.db.SelectContext(ctx, &rows, `SELECT * FROM series WHERE test_id = ? ORDER BY seq`, testID)
	if err != nil {
		return nil, apierrors.NewStorageError("failed to list series", err)
	}

	out := make([]domain.Series, 0, len(rows))
	for _, row := range rows {
		sr := row.Series
		if err := json.Unmarshal([]byte(row.PointsJSON), &sr.Points); err != nil {
			return nil, apierrors.NewStorageError("failed to decode series points", err)
		}
		out = append(out, sr)
	}
	return out, nil
}

// ListQuality returns the quality samples of a test by rate.
func (s *SQLiteStore) ListQuality(ctx context.Context, testID string) ([]domain.Quality, error) {
	if err := s.testExists(ctx, testID); err != nil {
		return nil, err
	}

	out := []domain.Quality{}
	err := s.db.SelectContext(ctx, &out, `SELECT * FROM quality WHERE test_id = ? ORDER BY rate_index, quality_id`, testID)
	if err != nil {
		return nil, apierrors.NewStorageError("failed to list quality samples", err)
	}
	return out, nil
}

// GetReport retrieves a daily report by ID.
func (s *SQLiteStore) GetReport(ctx context.Context, reportID string) (*domain.Report, error) {
	var row reportRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM reports WHERE report_id = ?`, reportID)
	if err != nil {
		return nil, lookupError(err, fmt.Sprintf("report %q", reportID))
	}

	r := row.Report
	for _, f := range []struct {
		src string
		dst any
	}{
		{row.ChallengesJSON, &r.Challenges},
		{row.ChecksJSON, &r.Checks},
		{row.DayShiftJSON, &r.DayShift},
		{row.NightShiftJSON, &r.NightShift},
	} {
		if err := json.Unmarshal([]byte(f.src), f.dst); err != nil {
			return nil, apierrors.NewStorageError("failed to decode report", err)
		}
	}
	return &r, nil
}

// GetJob retrieves a parse job by ID.
func (s *SQLiteStore) GetJob(ctx context.Context, jobID string) (*domain.ParseJob, error) {
	var row jobRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM parse_jobs WHERE job_id = ?`, jobID)
	if err != nil {
		return nil, lookupError(err, fmt.Sprintf("job %q", jobID))
	}
	return row.toJob()
}

// ListJobs returns jobs matching the filter, newest first.
func (s *SQLiteStore) ListJobs(ctx context.Context, filter JobFilter) ([]domain.ParseJob, error) {
	q := `SELECT * FROM parse_jobs`
	var args []any
	if filter.Status != "" {
		q += ` WHERE status = ?`
		args = append(args, filter.Status)
	}
	q += ` ORDER BY created_at DESC, rowid DESC`
	if filter.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	var rows []jobRow
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, apierrors.NewStorageError("failed to list parse jobs", err)
	}

	out := make([]domain.ParseJob, 0, len(rows))
	for _, row := range rows {
		job, err := row.toJob()
		if err != nil {
			return nil, err
		}
		out = append(out, *job)
	}
	return out, nil
}

func (r jobRow) toJob() (*domain.ParseJob, error) {
	job := r.ParseJob
	job.Counts = domain.ParseJobCounts{Series: r.SeriesCount, Points: r.PointCount}
	if err := json.Unmarshal([]byte(r.WarningsJSON), &job.Warnings); err != nil {
		return nil, apierrors.NewStorageError("failed to decode job warnings", err)
	}
	if err := json.Unmarshal([]byte(r.ErrorsJSON), &job.Errors); err != nil {
		return nil, apierrors.NewStorageError("failed to decode job errors", err)
	}
	return &job, nil
}

func (s *SQLiteStore) testExists(ctx context.Context, testID string) error {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM discharge_tests WHERE test_id = ?`, testID); err != nil {
		return apierrors.NewStorageError("failed to look up test", err)
	}
	if n == 0 {
		return apierrors.NewNotFoundError(fmt.Sprintf("test %q", testID))
	}
	return nil
}

func lookupError(err error, resource string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apierrors.NewNotFoundError(resource)
	}
	return apierrors.NewStorageError("failed to load "+resource, err)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
