package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"drillsheet/pkg/contracts/domain"
)

func fp(f float64) *float64 { return &f }

func validResult() *domain.ParseResult {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	rate := 1
	return &domain.ParseResult{
		Type: domain.TemplateSteppedDischarge,
		Site: &domain.Site{SiteID: "pretoria-north", SiteName: "Pretoria North",
			Coordinates: &domain.Coordinates{Lat: -25.7, Lon: 28.2}, CreatedAt: now},
		Borehole: &domain.Borehole{BoreholeID: "bh-07", SiteID: "pretoria-north", BoreholeNo: "BH-07",
			BoreholeDepthM: fp(120), CreatedAt: now},
		Test: &domain.DischargeTest{TestID: "discharge-1", TestType: domain.TestTypeSteppedDischarge,
			BoreholeRef: "sites/pretoria-north/boreholes/bh-07", BoreholeID: "bh-07", SiteID: "pretoria-north",
			Status: domain.TestStatusDraft, CreatedAt: now},
		Series: []domain.Series{{SeriesID: "discharge_rate-0", SeriesType: domain.SeriesDischargeRate,
			RateIndex: &rate, Points: []domain.DischargePoint{{TMin: fp(0), WLM: fp(12.5)}}}},
		Quality: []domain.Quality{{QualityID: "quality-0", RateIndex: 1, PH: fp(7.2)}},
	}
}

func TestRecordValidator_Valid(t *testing.T) {
	assert.Empty(t, NewRecordValidator().Validate(validResult()))
	assert.Nil(t, NewRecordValidator().Validate(nil))
}

func TestRecordValidator_Findings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *domain.ParseResult)
		want   string
	}{
		{
			name:   "latitude out of range",
			mutate: func(r *domain.ParseResult) { r.Site.Coordinates.Lat = -125.7 },
			want:   "site pretoria-north: coordinates.lat must be at least -90",
		},
		{
			name:   "pH above scale",
			mutate: func(r *domain.ParseResult) { r.Quality[0].PH = fp(15) },
			want:   "quality quality-0: pH must be at most 14",
		},
		{
			name:   "negative depth",
			mutate: func(r *domain.ParseResult) { r.Borehole.BoreholeDepthM = fp(-3) },
			want:   "borehole bh-07: boreholeDepth_m must be at least 0",
		},
		{
			name:   "negative time in series",
			mutate: func(r *domain.ParseResult) { r.Series[0].Points[0].TMin = fp(-1) },
			want:   "series discharge_rate-0: points[0].t_min must be at least 0",
		},
		{
			name:   "unknown status",
			mutate: func(r *domain.ParseResult) { r.Test.Status = "archived" },
			want:   "test discharge-1: status must be one of: draft, parsed, failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validResult()
			tt.mutate(r)
			assert.Equal(t, []string{tt.want}, NewRecordValidator().Validate(r))
		})
	}
}

func TestRecordValidator_Report(t *testing.T) {
	r := &domain.ParseResult{
		Type: domain.TemplateProgressReport,
		Report: &domain.Report{
			ReportID: "2024-01-15-PretoriaNorth-4",
			DayShift: domain.Shift{
				Activities: []domain.Activity{{Order: 1, Activity: "Drilling"}},
				Personnel:  []domain.Personnel{{Name: "", HoursWorked: 8}},
			},
		},
	}

	assert.Equal(t,
		[]string{"report 2024-01-15-PretoriaNorth-4: dayShift.personnel[0].name is required"},
		NewRecordValidator().Validate(r))
}
