package dataprocessing

import (
	"fmt"
	"strings"

	"drillsheet/internal/workbook"
	"drillsheet/pkg/contracts/domain"
)

// ExtractReportFromWorkbook locates the daily report sheet and extracts it.
func ExtractReportFromWorkbook(wb *workbook.Workbook) (*domain.Report, domain.ValidationResult) {
	var sheet *workbook.Sheet
	if wb != nil {
		sheet, _ = wb.Sheet(ReportSheetName)
	}
	return ExtractReport(sheet)
}

// ExtractReport reads a daily drilling report. Missing mandatory fields are
// validation errors but the best-effort report is still returned; only a
// nil sheet yields a nil report.
func ExtractReport(sheet *workbook.Sheet) (*domain.Report, domain.ValidationResult) {
	v := domain.NewValidationResult()
	if sheet == nil {
		v.AddError(structural(fmt.Sprintf("Sheet %q not found", ReportSheetName)).Error())
		return nil, v
	}
	l := reportLayout

	r := &domain.Report{
		ReportDate:      ParseExcelDateTime(sheet.Value(l.Date), nil),
		ReportDateText:  sheet.Text(l.Date),
		Client:          sheet.Text(l.Client),
		ProjectSiteArea: sheet.Text(l.ProjectSiteArea),
		RigNumber:       rigNumber(sheet.Text(l.Rig), l.RigPrefix),
		ControlBHID:     sheet.Text(l.ControlBH),
		ObsBH1ID:        sheet.Text(l.ObsBH[0]),
		ObsBH2ID:        sheet.Text(l.ObsBH[1]),
		ObsBH3ID:        sheet.Text(l.ObsBH[2]),
		SupervisorName:  sheet.Text(l.Supervisor),
		ClientRepName:   sheet.Text(l.ClientRep),
		Challenges:      []string{},
		Status:          domain.ReportStatusDraft,
		DayShift:        readShift(sheet, l.Day),
		NightShift:      readShift(sheet, l.Night),
	}
	for row := l.ChallengeFirst; row <= l.ChallengeLast; row++ {
		if c := sheet.Text(ref(l.ChallengeCol, row)); c != "" {
			r.Challenges = append(r.Challenges, c)
		}
	}

	if r.ReportDateText == "" && r.ReportDate == nil {
		v.AddError("Report Date is required")
	}
	if r.Client == "" {
		v.AddError("Client is required")
	}
	if r.ProjectSiteArea == "" {
		v.AddError("Project/Site Area is required")
	}
	if r.RigNumber == "" {
		v.AddError("Rig Number is required")
	}

	r.ReportID = reportID(r)
	r.Checks = domain.ReportChecks{
		TemplateVersion: domain.ReportTemplateVersion,
		ParseWarnings:   append([]string{}, v.Warnings...),
		ParseErrors:     append([]string{}, v.Errors...),
	}
	return r, v
}

// rigNumber strips the template's "RIG No_" label from the rig cell.
func rigNumber(text, prefix string) string {
	label := strings.TrimSuffix(prefix, "_")
	if !strings.HasPrefix(text, label) {
		return text
	}
	return strings.TrimLeft(strings.TrimPrefix(text, label), "_: ")
}

// reportID joins date, site area and rig with all whitespace removed.
func reportID(r *domain.Report) string {
	date := r.ReportDateText
	if r.ReportDate != nil {
		date = r.ReportDate.Format("2006-01-02")
	}
	id := fmt.Sprintf("%s-%s-%s", date, r.ProjectSiteArea, r.RigNumber)
	return strings.Join(strings.Fields(id), "")
}

func readShift(s *workbook.Sheet, l shiftLayout) domain.Shift {
	cols := reportLayout
	shift := domain.Shift{
		StartTime:  reportClock(s, l.StartRef),
		EndTime:    reportClock(s, l.EndRef),
		Activities: []domain.Activity{},
		Personnel:  []domain.Personnel{},
	}

	for row := l.FirstRow; row <= l.LastRow; row++ {
		label := s.Text(ref(cols.ActivityCol, row))
		from := reportClock(s, ref(cols.FromCol, row))
		to := reportClock(s, ref(cols.ToCol, row))
		if label == "" && from == "" && to == "" {
			continue
		}
		a := domain.Activity{
			Order:      row - l.FirstRow + 1,
			Activity:   label,
			From:       from,
			To:         to,
			Total:      ActivityDuration(from, to),
			Chargeable: s.Text(ref(cols.ChargeableCol, row)) != "",
		}
		hours := ParseDuration(a.Total)
		shift.TotalHours += hours
		if a.Chargeable {
			shift.ChargeableHours += hours
		}
		shift.Activities = append(shift.Activities, a)
	}

	for row := l.PersonnelFirst; row <= l.PersonnelLast; row++ {
		for _, pair := range cols.PersonnelPairs {
			name := s.Text(ref(pair[0], row))
			if name == "" {
				continue
			}
			hours := 0.0
			if h := ToFloat(s.Text(ref(pair[1], row))); h != nil {
				hours = *h
			}
			shift.Personnel = append(shift.Personnel, domain.Personnel{Name: name, HoursWorked: hours})
		}
	}
	return shift
}

// reportClock renders a shift or activity time cell as "HH:MM". Numeric
// cells without a formatted clock are treated as day fractions.
func reportClock(s *workbook.Sheet, cellRef string) string {
	c, ok := s.Cell(cellRef)
	if !ok {
		return ""
	}
	text := strings.TrimSpace(c.Text)
	if f, isNum := c.Value.(float64); isNum && !strings.Contains(text, ":") {
		return FractionToClock(f)
	}
	if text == "" {
		return textOf(c.Value)
	}
	return ParseClockTime(text)
}
