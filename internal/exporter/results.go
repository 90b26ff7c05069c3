package exporter

import (
	"fmt"
	"strconv"

	"drillsheet/pkg/contracts/domain"
)

// Column layouts of the exported tables.
var (
	SeriesHeaders   = []string{"test_id", "series_id", "series_type", "rate_index", "page_index", "t_min", "wl_m", "ddn_m", "qlps", "recoverym"}
	QualityHeaders  = []string{"test_id", "quality_id", "rate_index", "ph", "temp_c", "ec_us_cm"}
	ActivityHeaders = []string{"report_id", "shift", "order", "activity", "from", "to", "total", "chargeable"}
)

// SeriesRecords flattens series pages into one row per point.
func SeriesRecords(series []domain.Series) [][]string {
	var records [][]string
	for _, s := range series {
		for _, p := range s.Points {
			records = append(records, []string{
				s.TestID,
				s.SeriesID,
				string(s.SeriesType),
				formatOptInt(s.RateIndex),
				strconv.Itoa(s.PageIndex),
				formatOptFloat(p.TMin),
				formatOptFloat(p.WLM),
				formatOptFloat(p.DdnM),
				formatOptFloat(p.Qlps),
				formatOptFloat(p.RecoveryM),
			})
		}
	}
	return records
}

// QualityRecords returns one row per quality sample.
func QualityRecords(quality []domain.Quality) [][]string {
	records := make([][]string, 0, len(quality))
	for _, q := range quality {
		records = append(records, []string{
			q.TestID,
			q.QualityID,
			strconv.Itoa(q.RateIndex),
			formatOptFloat(q.PH),
			formatOptFloat(q.TempC),
			formatOptFloat(q.ECuScm),
		})
	}
	return records
}

// ActivityRecords returns the day shift activities followed by the night
// shift activities of r.
func ActivityRecords(r *domain.Report) [][]string {
	if r == nil {
		return nil
	}
	var records [][]string
	for _, shift := range []struct {
		name string
		s    domain.Shift
	}{{"day", r.DayShift}, {"night", r.NightShift}} {
		for _, a := range shift.s.Activities {
			records = append(records, []string{
				r.ReportID,
				shift.name,
				strconv.Itoa(a.Order),
				a.Activity,
				a.From,
				a.To,
				a.Total,
				formatBool(a.Chargeable),
			})
		}
	}
	return records
}

// ResultTable returns the primary table of res: the series points of a
// discharge test or the activities of a daily report.
func ResultTable(res *domain.ParseResult) (headers []string, records [][]string, err error) {
	switch {
	case res == nil:
		return nil, nil, fmt.Errorf("no parse result")
	case res.Test != nil:
		return SeriesHeaders, SeriesRecords(res.Series), nil
	case res.Report != nil:
		return ActivityHeaders, ActivityRecords(res.Report), nil
	}
	return nil, nil, fmt.Errorf("%s workbook has no exportable records", res.Type)
}

// ResultExporter writes parse results to CSV files.
type ResultExporter struct {
	csv *CSVWriter
}

// NewResultExporter creates an exporter writing through w.
func NewResultExporter(w *CSVWriter) *ResultExporter {
	return &ResultExporter{csv: w}
}

// Export writes the tables of res using stem as the file name prefix:
// <stem>_series.csv and <stem>_quality.csv for a discharge test,
// <stem>_activities.csv for a daily report. Empty quality tables are not
// written. It returns the paths written.
func (e *ResultExporter) Export(res *domain.ParseResult, stem string) ([]string, error) {
	type table struct {
		suffix  string
		headers []string
		records [][]string
	}
	var tables []table

	switch {
	case res == nil:
		return nil, fmt.Errorf("no parse result")
	case res.Test != nil:
		tables = append(tables, table{"series", SeriesHeaders, SeriesRecords(res.Series)})
		if len(res.Quality) > 0 {
			tables = append(tables, table{"quality", QualityHeaders, QualityRecords(res.Quality)})
		}
	case res.Report != nil:
		tables = append(tables, table{"activities", ActivityHeaders, ActivityRecords(res.Report)})
	default:
		return nil, fmt.Errorf("%s workbook has no exportable records", res.Type)
	}

	paths := make([]string, 0, len(tables))
	for _, t := range tables {
		path, err := e.csv.WriteCSV(fmt.Sprintf("%s_%s.csv", stem, t.suffix), WriteOptions{
			Headers:   t.headers,
			Records:   t.records,
			BOMPrefix: true,
		})
		if err != nil {
			return paths, fmt.Errorf("failed to export %s: %w", t.suffix, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
