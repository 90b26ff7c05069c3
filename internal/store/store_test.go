package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drillsheet/internal/config"
	apierrors "drillsheet/internal/errors"
	"drillsheet/pkg/contracts/domain"
)

func f64(v float64) *float64 { return &v }
func intp(v int) *int       { return &v }

var created = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

func dischargeResult(testID string) *domain.ParseResult {
	start := time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC)
	return &domain.ParseResult{
		Type: domain.TemplateSteppedDischarge,
		Site: &domain.Site{
			SiteID:      "mafikeng",
			SiteName:    "Mafikeng",
			Coordinates: &domain.Coordinates{Lat: -25.85, Lon: 25.64},
			Client:      "DWS",
			CreatedAt:   created,
		},
		Borehole: &domain.Borehole{
			BoreholeID: "bh-07",
			SiteID:     "mafikeng",
			BoreholeNo: "BH-07",
			PumpDepthM: f64(60),
			CreatedAt:  created,
		},
		Test: &domain.DischargeTest{
			TestID:      testID,
			TestType:    domain.TestTypeSteppedDischarge,
			BoreholeRef: "sites/mafikeng/boreholes/bh-07",
			BoreholeID:  "bh-07",
			SiteID:      "mafikeng",
			StartTime:   &start,
			Summary: domain.TestSummary{
				StaticWLM: f64(12.5),
				Pump:      domain.PumpSummary{DepthM: f64(60), Type: "Submersible"},
			},
			SourceFilePath: "BH-07.xlsx",
			Status:         domain.TestStatusParsed,
			CreatedAt:      created,
		},
		Series: []domain.Series{
			{
				SeriesID:   "discharge_rate-0",
				TestID:     testID,
				SeriesType: domain.SeriesDischargeRate,
				RateIndex:  intp(1),
				Points: []domain.DischargePoint{
					{TMin: f64(0), WLM: f64(12.5)},
					{TMin: f64(5), WLM: f64(14.1), Qlps: f64(2.5)},
				},
				CreatedAt: created,
			},
			{
				SeriesID:   "recovery-1",
				TestID:     testID,
				SeriesType: domain.SeriesRecovery,
				Points:     []domain.DischargePoint{{TMin: f64(1), RecoveryM: f64(0.8)}},
				CreatedAt:  created,
			},
		},
		Quality: []domain.Quality{
			{QualityID: "quality-1", TestID: testID, RateIndex: 2, PH: f64(7.4), CreatedAt: created},
			{QualityID: "quality-0", TestID: testID, RateIndex: 1, ECuScm: f64(820), CreatedAt: created},
		},
		Validation: domain.NewValidationResult(),
	}
}

func reportResult() *domain.ParseResult {
	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	return &domain.ParseResult{
		Type: domain.TemplateProgressReport,
		Report: &domain.Report{
			ReportID:        "2024-03-04-SiteA-R12",
			ReportDate:      &date,
			ReportDateText:  "04/03/2024",
			Client:          "DWS",
			ProjectSiteArea: "Site A",
			RigNumber:       "R12",
			Challenges:      []string{"Hard formation at 60m"},
			Status:          domain.ReportStatusDraft,
			Checks:          domain.ReportChecks{TemplateVersion: domain.ReportTemplateVersion, ParseWarnings: []string{}, ParseErrors: []string{}},
			DayShift: domain.Shift{
				StartTime:       "06:00",
				EndTime:         "18:00",
				TotalHours:      12,
				ChargeableHours: 4,
				Activities:      []domain.Activity{{Order: 1, Activity: "Drilling", From: "06:00", To: "10:00", Total: "4:00", Chargeable: true}},
				Personnel:       []domain.Personnel{{Name: "J. Mokoena", HoursWorked: 12}},
			},
			CreatedAt: created,
		},
		Series:     []domain.Series{},
		Quality:    []domain.Quality{},
		Validation: domain.NewValidationResult(),
	}
}

// forEachStore runs fn against every Store implementation.
func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryStore())
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := OpenSQLite(filepath.Join(t.TempDir(), "data", "drillsheet.db"))
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		fn(t, s)
	})
}

func TestStore_SaveAndLoadDischargeTest(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.SaveResult(ctx, dischargeResult("discharge-1")))

		test, err := s.GetTest(ctx, "discharge-1")
		require.NoError(t, err)
		assert.Equal(t, domain.TestTypeSteppedDischarge, test.TestType)
		assert.Equal(t, "sites/mafikeng/boreholes/bh-07", test.BoreholeRef)
		require.NotNil(t, test.StartTime)
		assert.True(t, test.StartTime.Equal(time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC)))
		assert.Nil(t, test.EndTime)
		require.NotNil(t, test.Summary.StaticWLM)
		assert.Equal(t, 12.5, *test.Summary.StaticWLM)
		assert.Equal(t, "Submersible", test.Summary.Pump.Type)
		assert.True(t, test.CreatedAt.Equal(created))

		site, err := s.GetSite(ctx, "mafikeng")
		require.NoError(t, err)
		require.NotNil(t, site.Coordinates)
		assert.Equal(t, -25.85, site.Coordinates.Lat)

		bh, err := s.GetBorehole(ctx, "mafikeng", "bh-07")
		require.NoError(t, err)
		require.NotNil(t, bh.PumpDepthM)
		assert.Equal(t, 60.0, *bh.PumpDepthM)
		assert.Nil(t, bh.ElevationM)

		series, err := s.ListSeries(ctx, "discharge-1")
		require.NoError(t, err)
		require.Len(t, series, 2)
		assert.Equal(t, "discharge_rate-0", series[0].SeriesID)
		require.NotNil(t, series[0].RateIndex)
		assert.Equal(t, 1, *series[0].RateIndex)
		require.Len(t, series[0].Points, 2)
		assert.Equal(t, 2.5, *series[0].Points[1].Qlps)
		assert.Nil(t, series[0].Points[0].Qlps)
		assert.Nil(t, series[1].RateIndex)

		quality, err := s.ListQuality(ctx, "discharge-1")
		require.NoError(t, err)
		require.Len(t, quality, 2)
		assert.Equal(t, 1, quality[0].RateIndex)
		assert.Equal(t, 820.0, *quality[0].ECuScm)
	})
}

func TestStore_SiteUpsertKeepsCreatedAt(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.SaveResult(ctx, dischargeResult("discharge-1")))

		second := dischargeResult("discharge-2")
		second.Site.SiteName = "Mafikeng North"
		second.Site.CreatedAt = created.Add(48 * time.Hour)
		require.NoError(t, s.SaveResult(ctx, second))

		site, err := s.GetSite(ctx, "mafikeng")
		require.NoError(t, err)
		assert.Equal(t, "Mafikeng North", site.SiteName)
		assert.True(t, site.CreatedAt.Equal(created))

		_, err = s.GetTest(ctx, "discharge-2")
		assert.NoError(t, err)
	})
}

func TestStore_DuplicateTestRejected(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.SaveResult(ctx, dischargeResult("discharge-1")))

		err := s.SaveResult(ctx, dischargeResult("discharge-1"))
		require.Error(t, err)
		assert.True(t, apierrors.IsType(err, apierrors.ErrTypeStorage))
	})
}

func TestStore_Report(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.SaveResult(ctx, reportResult()))

		r, err := s.GetReport(ctx, "2024-03-04-SiteA-R12")
		require.NoError(t, err)
		assert.Equal(t, "R12", r.RigNumber)
		assert.Equal(t, []string{"Hard formation at 60m"}, r.Challenges)
		assert.Equal(t, domain.ReportTemplateVersion, r.Checks.TemplateVersion)
		require.Len(t, r.DayShift.Activities, 1)
		assert.True(t, r.DayShift.Activities[0].Chargeable)
		assert.Equal(t, "J. Mokoena", r.DayShift.Personnel[0].Name)
		require.NotNil(t, r.ReportDate)
		assert.True(t, r.ReportDate.Equal(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)))

		again := reportResult()
		again.Report.SupervisorName = "A. Supervisor"
		require.NoError(t, s.SaveResult(ctx, again))

		r, err = s.GetReport(ctx, "2024-03-04-SiteA-R12")
		require.NoError(t, err)
		assert.Equal(t, "A. Supervisor", r.SupervisorName)
	})
}

func TestStore_SaveResultRejectsEmpty(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		err := s.SaveResult(ctx, &domain.ParseResult{Type: domain.TemplateUnknown})
		assert.True(t, apierrors.IsType(err, apierrors.ErrTypeStorage))

		noSite := dischargeResult("discharge-1")
		noSite.Site = nil
		err = s.SaveResult(ctx, noSite)
		assert.True(t, apierrors.IsType(err, apierrors.ErrTypeStorage))
	})
}

func TestStore_NotFound(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		_, err := s.GetTest(ctx, "missing")
		assert.True(t, apierrors.IsNotFound(err))
		_, err = s.ListSeries(ctx, "missing")
		assert.True(t, apierrors.IsNotFound(err))
		_, err = s.ListQuality(ctx, "missing")
		assert.True(t, apierrors.IsNotFound(err))
		_, err = s.GetReport(ctx, "missing")
		assert.True(t, apierrors.IsNotFound(err))
		_, err = s.GetSite(ctx, "missing")
		assert.True(t, apierrors.IsNotFound(err))
		_, err = s.GetBorehole(ctx, "missing", "missing")
		assert.True(t, apierrors.IsNotFound(err))
		_, err = s.GetJob(ctx, "missing")
		assert.True(t, apierrors.IsNotFound(err))
	})
}

func TestStore_Jobs(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		jobs := []domain.ParseJob{
			{JobID: "job-1", TemplateType: domain.TemplateSteppedDischarge, TestRef: "discharge-1", Status: domain.ParseJobParsed,
				Warnings: []string{"Site ID missing"}, Counts: domain.ParseJobCounts{Series: 3, Points: 40}, CreatedAt: created},
			{JobID: "job-2", TemplateType: domain.TemplateUnknown, Status: domain.ParseJobFailed,
				Errors: []string{"Template type not recognized"}, CreatedAt: created.Add(time.Minute)},
			{JobID: "job-3", TemplateType: domain.TemplateProgressReport, TestRef: "2024-03-04-SiteA-R12", Status: domain.ParseJobParsed,
				CreatedAt: created.Add(2 * time.Minute)},
		}
		for i := range jobs {
			require.NoError(t, s.SaveJob(ctx, &jobs[i]))
		}

		got, err := s.GetJob(ctx, "job-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"Site ID missing"}, got.Warnings)
		assert.Equal(t, domain.ParseJobCounts{Series: 3, Points: 40}, got.Counts)
		assert.Empty(t, got.Errors)

		all, err := s.ListJobs(ctx, JobFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "job-3", all[0].JobID)
		assert.Equal(t, "job-1", all[2].JobID)

		limited, err := s.ListJobs(ctx, JobFilter{Limit: 2})
		require.NoError(t, err)
		require.Len(t, limited, 2)
		assert.Equal(t, "job-2", limited[1].JobID)

		failed, err := s.ListJobs(ctx, JobFilter{Status: domain.ParseJobFailed})
		require.NoError(t, err)
		require.Len(t, failed, 1)
		assert.Equal(t, []string{"Template type not recognized"}, failed[0].Errors)

		err = s.SaveJob(ctx, &domain.ParseJob{})
		assert.True(t, apierrors.IsType(err, apierrors.ErrTypeStorage))
	})
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	res := dischargeResult("discharge-1")
	require.NoError(t, s.SaveResult(ctx, res))

	res.Series[0].Points[0].WLM = f64(99)
	series, err := s.ListSeries(ctx, "discharge-1")
	require.NoError(t, err)
	assert.Equal(t, 12.5, *series[0].Points[0].WLM)

	series[0].Points = nil
	again, err := s.ListSeries(ctx, "discharge-1")
	require.NoError(t, err)
	assert.Len(t, again[0].Points, 2)
}

func TestNew(t *testing.T) {
	cfg := config.Default()
	paths, err := cfg.ResolvePaths()
	require.NoError(t, err)

	s, err := New(cfg, paths, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
	require.NoError(t, s.Close())

	cfg.Storage.Driver = config.StorageSQLite
	cfg.Storage.DSN = filepath.Join(t.TempDir(), "drillsheet.db")
	s, err = New(cfg, paths, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	cfg.Storage.Driver = "postgres"
	_, err = New(cfg, paths, nil)
	assert.Error(t, err)
}

func TestWithPragmas(t *testing.T) {
	assert.Equal(t,
		"/tmp/a.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite&_pragma=journal_mode(WAL)",
		withPragmas("/tmp/a.db", false))
	assert.Equal(t,
		"file:x?mode=memory&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite",
		withPragmas("file:x?mode=memory", true))
}
