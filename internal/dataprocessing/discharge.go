package dataprocessing

import (
	"fmt"
	"time"

	"drillsheet/internal/workbook"
	"drillsheet/pkg/contracts/domain"
)

// fallbackStem names a workbook whose filename has no usable stem.
const fallbackStem = "Unknown-Borehole"

// DischargeMeta is the borehole and site metadata read from the header
// block of a pump-test sheet.
type DischargeMeta struct {
	ProjectNo    string
	BoreholeNo   string
	AltBhNo      string
	MapRef       string
	SiteName     string
	Province     string
	District     string
	Client       string
	Contractor   string
	ExistingPump string
	PumpType     string

	Latitude           *float64
	Longitude          *float64
	ElevationM         *float64
	BoreholeDepthM     *float64
	StaticWLMbdl       *float64
	StaticWLM          *float64
	PumpDepthM         *float64
	DatumAboveCasingM  *float64
	CasingHeightMagl   *float64
	PumpInletDiamMm    *float64
	SWLMbch            *float64
	AvailableDrawdownM *float64
	TotalTimePumpedMin *float64
}

// ExtractedSeries is one unpaged series read from a sheet.
type ExtractedSeries struct {
	Type      domain.SeriesType
	RateIndex *int
	Points    []domain.DischargePoint
}

// ExtractedQuality is the water-quality sample of one pumping rate.
type ExtractedQuality struct {
	RateIndex int
	PH        *float64
	TempC     *float64
	ECuScm    *float64
}

// DischargeExtract is everything a discharge extractor reads from a sheet,
// before identifiers are assigned and series are paged.
type DischargeExtract struct {
	TestType   domain.TestType
	Meta       DischargeMeta
	SiteID     string
	BoreholeID string
	StartTime  *time.Time
	EndTime    *time.Time
	Series     []ExtractedSeries
	Quality    []ExtractedQuality
}

// ExtractSteppedDischarge reads a stepped discharge test sheet. Problems
// with individual fields are recorded on v; an error is returned only when
// there is no sheet to read.
func ExtractSteppedDischarge(sheet *workbook.Sheet, filename string, v *domain.ValidationResult) (*DischargeExtract, error) {
	return extractDischarge(sheet, filename, steppedLayout, v, false)
}

// ExtractConstantDischarge reads a constant discharge test sheet with its
// observation holes.
func ExtractConstantDischarge(sheet *workbook.Sheet, filename string, v *domain.ValidationResult) (*DischargeExtract, error) {
	return extractDischarge(sheet, filename, constantLayout, v, false)
}

// rowStats counts rows a series read skipped or altered.
type rowStats struct {
	dropped int
	clamped int
}

func extractDischarge(sheet *workbook.Sheet, filename string, l dischargeLayout, v *domain.ValidationResult, reportDropped bool) (*DischargeExtract, error) {
	if sheet == nil {
		return nil, structural(fmt.Sprintf("No worksheet found for %s test", l.TestType))
	}
	if v == nil {
		fresh := domain.NewValidationResult()
		v = &fresh
	}

	ex := &DischargeExtract{
		TestType: l.TestType,
		Meta:     readMeta(sheet, l.Metadata),
	}
	resolveIdentity(ex, filename, v)

	collect := func(sl seriesLayout, rate *int) {
		var stats rowStats
		points := readPoints(sheet, sl, l.Keep, &stats)
		if reportDropped && (stats.dropped > 0 || stats.clamped > 0) {
			v.AddWarning(fmt.Sprintf("%s: %d row(s) dropped, %d negative time value(s) clamped to 0",
				seriesLabel(sl.Type, rate), stats.dropped, stats.clamped))
		}
		if emitSeries(points, l.RequireMeasurement) {
			ex.Series = append(ex.Series, ExtractedSeries{Type: sl.Type, RateIndex: rate, Points: points})
		}
	}

	for _, rate := range l.Rates {
		if ex.StartTime == nil {
			ex.StartTime = ParseExcelDateTime(sheet.Value(rate.DateRef), sheet.Value(rate.TimeRef))
		}
		idx := rate.Index
		collect(rate.Data, &idx)

		q := ExtractedQuality{
			RateIndex: rate.Index,
			PH:        ToFloat(sheet.Value(rate.PHRef)),
			TempC:     ToFloat(sheet.Value(rate.TempRef)),
			ECuScm:    ToFloat(sheet.Value(rate.ECRef)),
		}
		if q.PH != nil || q.TempC != nil || q.ECuScm != nil {
			ex.Quality = append(ex.Quality, q)
		}
	}

	for _, g := range l.Groups {
		collect(g, nil)
	}

	if l.Start.DateRef != "" {
		ex.StartTime = ParseExcelDateTime(sheet.Value(l.Start.DateRef), sheet.Value(l.Start.TimeRef))
	}
	if l.End.DateRef != "" {
		ex.EndTime = ParseExcelDateTime(sheet.Value(l.End.DateRef), sheet.Value(l.End.TimeRef))
	}

	if len(ex.Series) == 0 && l.EmptyWarning != "" {
		v.AddWarning(l.EmptyWarning)
	}
	return ex, nil
}

func readMeta(s *workbook.Sheet, m metadataLayout) DischargeMeta {
	text := func(ref string) string {
		if ref == "" {
			return ""
		}
		return s.Text(ref)
	}
	num := func(ref string) *float64 {
		if ref == "" {
			return nil
		}
		return ToFloat(s.Value(ref))
	}
	coord := func(ref string) *float64 {
		if ref == "" {
			return nil
		}
		return ParseCoordinate(s.Value(ref))
	}

	return DischargeMeta{
		ProjectNo:          text(m.ProjectNo),
		BoreholeNo:         text(m.BoreholeNo),
		AltBhNo:            text(m.AltBhNo),
		MapRef:             text(m.MapRef),
		SiteName:           text(m.SiteName),
		Province:           text(m.Province),
		District:           text(m.District),
		Client:             text(m.Client),
		Contractor:         text(m.Contractor),
		ExistingPump:       text(m.ExistingPump),
		PumpType:           text(m.PumpType),
		Latitude:           coord(m.Latitude),
		Longitude:          coord(m.Longitude),
		ElevationM:         num(m.ElevationM),
		BoreholeDepthM:     num(m.BoreholeDepthM),
		StaticWLMbdl:       num(m.StaticWLMbdl),
		StaticWLM:          num(m.StaticWLM),
		PumpDepthM:         num(m.PumpDepthM),
		DatumAboveCasingM:  num(m.DatumAboveCasingM),
		CasingHeightMagl:   num(m.CasingHeightMagl),
		PumpInletDiamMm:    num(m.PumpInletDiamMm),
		SWLMbch:            num(m.SWLMbch),
		AvailableDrawdownM: num(m.AvailableDrawdownM),
		TotalTimePumpedMin: num(m.TotalTimePumpedMin),
	}
}

// resolveIdentity derives the site and borehole identifiers. A blank
// borehole number or site name falls back to the filename stem and is
// reported as a warning; identity is never left empty.
func resolveIdentity(ex *DischargeExtract, filename string, v *domain.ValidationResult) {
	stem := FilenameStem(filename)
	if stem == "" {
		stem = fallbackStem
	}
	m := &ex.Meta

	switch {
	case m.BoreholeNo == "" && m.SiteName == "":
		v.AddWarning(fmt.Sprintf("Borehole No/Site Name not found. Using %q.", stem))
		m.BoreholeNo = stem
		m.SiteName = stem
	case m.SiteName == "":
		v.AddWarning(fmt.Sprintf("Site Name not found. Using %q.", stem))
		m.SiteName = stem
	case m.BoreholeNo == "":
		v.AddWarning(fmt.Sprintf("Borehole No not found. Using %q.", stem))
		m.BoreholeNo = stem
	}

	ex.SiteID = slugOr(m.SiteName, stem)
	ex.BoreholeID = slugOr(m.BoreholeNo, stem)
}

func slugOr(value, stem string) string {
	if s := Slugify(value); s != "" {
		return s
	}
	if s := Slugify(stem); s != "" {
		return s
	}
	return Slugify(fallbackStem)
}

func readPoints(s *workbook.Sheet, l seriesLayout, rule keepRule, stats *rowStats) []domain.DischargePoint {
	var points []domain.DischargePoint
	for row := l.FirstRow; row <= l.LastRow; row++ {
		p, filled, clamped := readPoint(s, l, row)
		if !keepPoint(p, l, rule) {
			if filled {
				stats.dropped++
			}
			continue
		}
		if clamped {
			stats.clamped++
		}
		points = append(points, p)
	}
	return points
}

// readPoint normalises one row. filled reports whether any of the series'
// own cells held anything at all, parseable or not.
func readPoint(s *workbook.Sheet, l seriesLayout, row int) (p domain.DischargePoint, filled, clamped bool) {
	cols := l.Columns
	read := func(col string, own bool) *float64 {
		if col == "" {
			return nil
		}
		raw := s.Value(ref(col, row))
		if raw != nil && own {
			filled = true
		}
		return ToFloat(raw)
	}

	t := read(cols.Time, !l.SharedTime)
	if t != nil && *t < 0 {
		clamped = true
	}
	p.TMin = EnsureNonNegative(t)
	p.WLM = read(cols.Level, true)
	p.DdnM = read(cols.Drawdown, true)
	p.Qlps = read(cols.Yield, true)
	p.RecoveryM = read(cols.Recovery, true)
	return p, filled, clamped
}

func keepPoint(p domain.DischargePoint, l seriesLayout, rule keepRule) bool {
	if l.SharedTime && !p.HasMeasurement() {
		return false
	}
	switch rule {
	case keepTimeOrLevel:
		return p.TMin != nil || p.WLM != nil
	default:
		return !p.Empty()
	}
}

// emitSeries reports whether a series is worth keeping.
func emitSeries(points []domain.DischargePoint, requireMeasurement bool) bool {
	if len(points) == 0 {
		return false
	}
	if !requireMeasurement {
		return true
	}
	for _, p := range points {
		if p.HasMeasurement() {
			return true
		}
	}
	return false
}

func seriesLabel(t domain.SeriesType, rate *int) string {
	if rate == nil {
		return string(t)
	}
	return fmt.Sprintf("%s rate %d", t, *rate)
}
