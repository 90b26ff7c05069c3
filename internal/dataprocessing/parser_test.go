package dataprocessing

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drillsheet/internal/shared/testutil"
	"drillsheet/pkg/contracts/domain"
)

var fixedNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestParser(t *testing.T, opts Options) (*Parser, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, handler := testutil.NewTestLogger(t)
	opts.Now = func() time.Time { return fixedNow }
	opts.NewID = func() string { return "fixed" }
	return NewParser(logger, opts), handler
}

func parseCells(t *testing.T, p *Parser, filename string, sheets ...testutil.SheetSpec) *domain.ParseResult {
	t.Helper()
	res, err := p.ParseBytes(testutil.BuildWorkbook(t, sheets...), filename)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func assertPointInvariants(t *testing.T, series []domain.Series) {
	t.Helper()
	for _, s := range series {
		require.NotEmpty(t, s.Points, "series %s", s.SeriesID)
		for _, p := range s.Points {
			assert.False(t, p.Empty(), "empty point in %s", s.SeriesID)
			if p.TMin != nil {
				assert.GreaterOrEqual(t, *p.TMin, 0.0)
			}
		}
	}
}

func TestParse_SteppedDischarge(t *testing.T) {
	p, logs := newTestParser(t, Options{})
	res := parseCells(t, p, "BH-07 stepped.xlsx", testutil.SheetSpec{Name: "Stepped", Cells: testutil.SteppedDischargeCells()})

	assert.Equal(t, domain.TemplateSteppedDischarge, res.Type)
	assert.True(t, res.Validation.IsValid, "errors: %v", res.Validation.Errors)
	assert.Empty(t, res.Validation.Warnings)
	assert.Nil(t, res.Report)

	test := res.Test
	require.NotNil(t, test)
	assert.Equal(t, "discharge-fixed", test.TestID)
	assert.Equal(t, domain.TestTypeSteppedDischarge, test.TestType)
	assert.Equal(t, "sites/pretoria-north/boreholes/bh-07", test.BoreholeRef)
	assert.Equal(t, domain.TestStatusDraft, test.Status)
	assert.Equal(t, "BH-07 stepped.xlsx", test.SourceFilePath)
	require.NotNil(t, test.StartTime)
	assert.Equal(t, time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC), *test.StartTime)
	assert.Nil(t, test.EndTime)
	require.NotNil(t, test.Summary.StaticWLM)
	assert.Equal(t, 12.3, *test.Summary.StaticWLM)
	assert.Equal(t, "Submersible", test.Summary.Pump.Type)
	assert.Equal(t, "Acme Drilling", test.Contractor)
	assert.Equal(t, "Gauteng", test.Province)
	assert.Equal(t, fixedNow, test.CreatedAt)

	require.NotNil(t, res.Site)
	assert.Equal(t, "pretoria-north", res.Site.SiteID)
	assert.Equal(t, "Water Board", res.Site.Client)
	require.NotNil(t, res.Site.Coordinates)
	assert.InDelta(t, -25.7461, res.Site.Coordinates.Lat, 1e-9)
	assert.InDelta(t, 28.1881, res.Site.Coordinates.Lon, 1e-9)

	require.NotNil(t, res.Borehole)
	assert.Equal(t, "bh-07", res.Borehole.BoreholeID)
	assert.Equal(t, "BH-07", res.Borehole.BoreholeNo)
	assert.Equal(t, "PRJ-001", res.Borehole.ProjectNo)
	assert.Equal(t, 120.5, *res.Borehole.BoreholeDepthM)
	assert.Equal(t, 11.9, *res.Borehole.SWLMbch)

	require.Len(t, res.Series, 3)
	rate1 := res.Series[0]
	assert.Equal(t, domain.SeriesDischargeRate, rate1.SeriesType)
	require.NotNil(t, rate1.RateIndex)
	assert.Equal(t, 1, *rate1.RateIndex)
	assert.Len(t, rate1.Points, 4)
	assert.Equal(t, 13.1, *rate1.Points[1].WLM)
	assert.Equal(t, 2.5, *rate1.Points[1].Qlps)

	assert.Equal(t, 2, *res.Series[1].RateIndex)
	assert.Len(t, res.Series[1].Points, 2)

	recovery := res.Series[2]
	assert.Equal(t, domain.SeriesRecovery, recovery.SeriesType)
	assert.Nil(t, recovery.RateIndex)
	assert.Equal(t, 2.0, *recovery.Points[2].RecoveryM)
	assertPointInvariants(t, res.Series)

	require.Len(t, res.Quality, 1)
	q := res.Quality[0]
	assert.Equal(t, "quality-0", q.QualityID)
	assert.Equal(t, 1, q.RateIndex)
	assert.Equal(t, 7.2, *q.PH)
	assert.Equal(t, 450.0, *q.ECuScm)

	testutil.AssertLogContains(t, logs, slog.LevelInfo, "Classified workbook")
	testutil.AssertLogAttr(t, logs, "template", "stepped_discharge")
}

func TestParse_SteppedIdentityFallback(t *testing.T) {
	cells := testutil.SteppedDischargeCells()
	delete(cells, "C6")
	delete(cells, "M7")

	p, _ := newTestParser(t, Options{})
	res := parseCells(t, p, "uploads/Test-Borehole-7.xlsx", testutil.SheetSpec{Name: "Sheet1", Cells: cells})

	assert.True(t, res.Validation.IsValid)
	require.Len(t, res.Validation.Warnings, 1)
	assert.Contains(t, res.Validation.Warnings[0], `Using "Test-Borehole-7"`)
	assert.Equal(t, "test-borehole-7", res.Borehole.BoreholeID)
	assert.Equal(t, "test-borehole-7", res.Site.SiteID)
	assert.Equal(t, "sites/test-borehole-7/boreholes/test-borehole-7", res.Test.BoreholeRef)
}

func TestParse_PartialIdentityFallback(t *testing.T) {
	cells := testutil.SteppedDischargeCells()
	delete(cells, "M7")

	p, _ := newTestParser(t, Options{})
	res := parseCells(t, p, "North Field.xlsx", testutil.SheetSpec{Name: "Sheet1", Cells: cells})

	require.Len(t, res.Validation.Warnings, 1)
	assert.Contains(t, res.Validation.Warnings[0], "Site Name not found")
	assert.Equal(t, "north-field", res.Site.SiteID)
	assert.Equal(t, "bh-07", res.Borehole.BoreholeID)
}

func TestParse_SteppedWithoutCoordinates(t *testing.T) {
	cells := testutil.SteppedDischargeCells()
	delete(cells, "H7")

	p, _ := newTestParser(t, Options{})
	res := parseCells(t, p, "bh.xlsx", testutil.SheetSpec{Name: "Sheet1", Cells: cells})
	assert.Nil(t, res.Site.Coordinates)
}

func TestParse_ReportDroppedRows(t *testing.T) {
	cells := testutil.SteppedDischargeCells()
	cells["A21"] = "n/a"
	cells["A22"] = -1.0
	cells["B22"] = 14.5

	t.Run("silent by default", func(t *testing.T) {
		p, _ := newTestParser(t, Options{})
		res := parseCells(t, p, "bh.xlsx", testutil.SheetSpec{Name: "Sheet1", Cells: cells})
		assert.Empty(t, res.Validation.Warnings)
		assert.Len(t, res.Series[0].Points, 5)
		assert.Equal(t, 0.0, *res.Series[0].Points[4].TMin)
	})

	t.Run("reported when enabled", func(t *testing.T) {
		p, _ := newTestParser(t, Options{ReportDroppedRows: true})
		res := parseCells(t, p, "bh.xlsx", testutil.SheetSpec{Name: "Sheet1", Cells: cells})
		assert.Contains(t, res.Validation.Warnings,
			"discharge_rate rate 1: 1 row(s) dropped, 1 negative time value(s) clamped to 0")
		assert.True(t, res.Validation.IsValid)
	})
}

func TestParse_ConstantDischarge(t *testing.T) {
	p, _ := newTestParser(t, Options{})
	res := parseCells(t, p, "BH-12 constant.xlsx", testutil.SheetSpec{Name: "CDT", Cells: testutil.ConstantDischargeCells()})

	assert.Equal(t, domain.TemplateConstantDischarge, res.Type)
	assert.True(t, res.Validation.IsValid)
	assert.Empty(t, res.Quality)

	test := res.Test
	require.NotNil(t, test)
	assert.Equal(t, domain.TestTypeConstantDischarge, test.TestType)
	assert.Equal(t, time.Date(2024, 2, 1, 6, 0, 0, 0, time.UTC), *test.StartTime)
	assert.Equal(t, time.Date(2024, 2, 2, 18, 0, 0, 0, time.UTC), *test.EndTime)
	assert.Equal(t, 55.0, *test.Summary.AvailableDrawdownM)
	assert.Equal(t, 1440.0, *test.Summary.TotalTimePumpedMin)
	assert.Equal(t, 15.2, *test.Summary.StaticWLM)

	assert.Equal(t, "mamelodi-east", res.Site.SiteID)
	assert.InDelta(t, -25.70, res.Site.Coordinates.Lat, 1e-9)
	assert.Equal(t, "bh-12", res.Borehole.BoreholeID)

	types := make([]domain.SeriesType, 0, len(res.Series))
	for _, s := range res.Series {
		types = append(types, s.SeriesType)
		assert.Nil(t, s.RateIndex)
	}
	assert.Equal(t, []domain.SeriesType{
		domain.SeriesDischarge,
		domain.SeriesDischargeRecovery,
		domain.SeriesObsHole1,
		domain.SeriesObsHole1Recovery,
	}, types)
	assert.Len(t, res.Series[0].Points, 3)
	assert.Len(t, res.Series[1].Points, 2)
	assert.Len(t, res.Series[2].Points, 2)

	obsRecovery := res.Series[3]
	require.Len(t, obsRecovery.Points, 1)
	assert.Equal(t, 1.0, *obsRecovery.Points[0].TMin)
	assert.Equal(t, 20.05, *obsRecovery.Points[0].WLM)
	assertPointInvariants(t, res.Series)
}

func TestParse_ConstantTimesOnlySuppressed(t *testing.T) {
	cells := testutil.Cells{"A1": ConstantMarker, "C3": "BH-1", "P4": "Site"}
	for row := 16; row <= 20; row++ {
		cells[ref("K", row)] = float64(row)
	}

	p, _ := newTestParser(t, Options{})
	res := parseCells(t, p, "bh.xlsx", testutil.SheetSpec{Name: "Sheet1", Cells: cells})

	assert.Empty(t, res.Series)
	assert.Equal(t, []string{"No test data points found in the expected cell ranges."}, res.Validation.Warnings)
	assert.True(t, res.Validation.IsValid)
	assert.NotNil(t, res.Test)
}

func TestParse_SteppedWithoutPoints(t *testing.T) {
	cells := testutil.Cells{"A1": SteppedMarker, "C6": "BH-1", "M7": "Site"}

	p, _ := newTestParser(t, Options{})
	res := parseCells(t, p, "bh.xlsx", testutil.SheetSpec{Name: "Sheet1", Cells: cells})

	assert.Equal(t, domain.TemplateSteppedDischarge, res.Type)
	assert.Empty(t, res.Series)
	assert.Contains(t, res.Validation.Warnings, "No test data points found in the expected cell ranges.")
	assert.True(t, res.Validation.IsValid)
	assert.NotNil(t, res.Test)
}

func TestParse_DailyReport(t *testing.T) {
	p, _ := newTestParser(t, Options{})
	res := parseCells(t, p, "report.xlsx", testutil.SheetSpec{Name: ReportSheetName, Cells: testutil.DailyReportCells()})

	assert.Equal(t, domain.TemplateProgressReport, res.Type)
	assert.True(t, res.Validation.IsValid, "errors: %v", res.Validation.Errors)
	assert.Nil(t, res.Test)
	assert.Nil(t, res.Site)
	assert.Nil(t, res.Borehole)
	assert.Empty(t, res.Series)
	assert.Empty(t, res.Quality)

	r := res.Report
	require.NotNil(t, r)
	assert.Equal(t, "2024-01-15-PretoriaNorth-4", r.ReportID)
	require.NotNil(t, r.ReportDate)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), *r.ReportDate)
	assert.Equal(t, "4", r.RigNumber)
	assert.Equal(t, "BH-07", r.ControlBHID)
	assert.Equal(t, "OBS-1", r.ObsBH1ID)
	assert.Equal(t, "OBS-2", r.ObsBH2ID)
	assert.Empty(t, r.ObsBH3ID)
	assert.Equal(t, "A. Supervisor", r.SupervisorName)
	assert.Equal(t, "C. Rep", r.ClientRepName)
	assert.Equal(t, []string{"Hard formation at 60m", "Water strike at 72m"}, r.Challenges)
	assert.Equal(t, domain.ReportStatusDraft, r.Status)
	assert.Equal(t, "report.xlsx", r.FileRef)
	assert.Equal(t, domain.ReportTemplateVersion, r.Checks.TemplateVersion)
	assert.Equal(t, fixedNow, r.CreatedAt)

	day := r.DayShift
	assert.Equal(t, "06:00", day.StartTime)
	assert.Equal(t, "18:00", day.EndTime)
	require.Len(t, day.Activities, 3)
	assert.Equal(t, domain.Activity{Order: 1, Activity: "Drilling 165mm", From: "06:00", To: "10:30", Total: "4:30", Chargeable: true}, day.Activities[0])
	assert.False(t, day.Activities[1].Chargeable)
	assert.Equal(t, domain.Activity{Order: 3, Activity: "Casing", From: "12:00", To: "18:00", Total: "6:00", Chargeable: true}, day.Activities[2])
	assert.InDelta(t, 12.0, day.TotalHours, 1e-9)
	assert.InDelta(t, 10.5, day.ChargeableHours, 1e-9)
	assert.Equal(t, []domain.Personnel{
		{Name: "J. Mokoena", HoursWorked: 12},
		{Name: "P. Naidoo", HoursWorked: 0},
	}, day.Personnel)

	night := r.NightShift
	assert.Equal(t, "18:00", night.StartTime)
	assert.Equal(t, "06:00", night.EndTime)
	require.Len(t, night.Activities, 1)
	assert.Equal(t, "4:00", night.Activities[0].Total)
	assert.InDelta(t, 4.0, night.TotalHours, 1e-9)
	assert.Equal(t, []domain.Personnel{{Name: "S. Dlamini", HoursWorked: 10.5}}, night.Personnel)
}

func TestParse_DailyReportMissingClient(t *testing.T) {
	cells := testutil.DailyReportCells()
	delete(cells, "D7")

	p, _ := newTestParser(t, Options{})
	res := parseCells(t, p, "report.xlsx", testutil.SheetSpec{Name: ReportSheetName, Cells: cells})

	assert.False(t, res.Validation.IsValid)
	assert.Equal(t, []string{"Client is required"}, res.Validation.Errors)
	require.NotNil(t, res.Report)
	assert.Empty(t, res.Report.Client)
	assert.Equal(t, "4", res.Report.RigNumber)
	assert.Equal(t, "Pretoria North", res.Report.ProjectSiteArea)
	assert.Len(t, res.Report.DayShift.Activities, 3)
	assert.Equal(t, []string{"Client is required"}, res.Report.Checks.ParseErrors)
}

func TestParse_DailyReportAllMandatoryMissing(t *testing.T) {
	cells := testutil.Cells{"B13": "Mobilisation"}

	p, _ := newTestParser(t, Options{})
	res := parseCells(t, p, "report.xlsx", testutil.SheetSpec{Name: ReportSheetName, Cells: cells})

	assert.Equal(t, []string{
		"Report Date is required",
		"Client is required",
		"Project/Site Area is required",
		"Rig Number is required",
	}, res.Validation.Errors)
	require.NotNil(t, res.Report)
	assert.Equal(t, "--", res.Report.ReportID)
	assert.Nil(t, res.Report.ReportDate)
}

func TestParse_UnknownTemplate(t *testing.T) {
	p, _ := newTestParser(t, Options{})
	res := parseCells(t, p, "budget.xlsx", testutil.SheetSpec{Name: "Budget", Cells: testutil.Cells{"A1": "Quarterly budget", "B2": 1200.0}})

	assert.Equal(t, domain.TemplateUnknown, res.Type)
	assert.Nil(t, res.Data())
	assert.False(t, res.Validation.IsValid)
	assert.Equal(t, []string{UnknownTemplateMessage}, res.Validation.Errors)
	assert.Empty(t, res.Series)
}

func TestParseBytes_CorruptPayload(t *testing.T) {
	p, _ := newTestParser(t, Options{})
	res, err := p.ParseBytes([]byte("not an xlsx file"), "broken.xlsx")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "broken.xlsx")
}

func TestParseFile(t *testing.T) {
	path := testutil.WriteWorkbook(t, t.TempDir(), "BH-07.xlsx",
		testutil.SheetSpec{Name: "Sheet1", Cells: testutil.SteppedDischargeCells()})

	p, _ := newTestParser(t, Options{})
	res, err := p.ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, domain.TemplateSteppedDischarge, res.Type)
	assert.Equal(t, path, res.Test.SourceFilePath)

	_, err = p.ParseFile(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

func TestExtractReportFromWorkbook_MissingSheet(t *testing.T) {
	report, v := ExtractReportFromWorkbook(nil)
	assert.Nil(t, report)
	assert.False(t, v.IsValid)
	assert.Equal(t, []string{`Sheet "Daily report drilling" not found`}, v.Errors)
}

func TestExtractDischarge_NilSheet(t *testing.T) {
	v := domain.NewValidationResult()
	ex, err := ExtractSteppedDischarge(nil, "bh.xlsx", &v)
	assert.Nil(t, ex)
	var structErr *StructuralError
	assert.ErrorAs(t, err, &structErr)

	ex, err = ExtractConstantDischarge(nil, "bh.xlsx", nil)
	assert.Nil(t, ex)
	assert.Error(t, err)
}

func TestParse_ConcurrentCalls(t *testing.T) {
	data := testutil.BuildWorkbook(t, testutil.SheetSpec{Name: "Sheet1", Cells: testutil.SteppedDischargeCells()})
	p, _ := newTestParser(t, Options{})

	results := make(chan *domain.ParseResult, 8)
	for i := 0; i < 8; i++ {
		go func() {
			res, err := p.ParseBytes(data, "bh.xlsx")
			if err != nil {
				results <- nil
				return
			}
			results <- res
		}()
	}
	for i := 0; i < 8; i++ {
		res := <-results
		require.NotNil(t, res)
		assert.Equal(t, 9, res.PointCount())
	}
}
