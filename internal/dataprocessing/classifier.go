package dataprocessing

import (
	"strings"

	"drillsheet/internal/workbook"
	"drillsheet/pkg/contracts/domain"
)

// Classify decides which template a workbook follows. It depends only on
// sheet names and cell content, so repeated calls agree.
func Classify(wb *workbook.Workbook) domain.TemplateType {
	t, _ := classify(wb)
	return t
}

// classify also returns the sheet that matched, or nil for unknown.
func classify(wb *workbook.Workbook) (domain.TemplateType, *workbook.Sheet) {
	if wb == nil {
		return domain.TemplateUnknown, nil
	}
	if s, ok := wb.Sheet(ReportSheetName); ok {
		return domain.TemplateProgressReport, s
	}

	for _, s := range wb.Sheets() {
		if t := classifySheet(s); t != domain.TemplateUnknown {
			return t, s
		}
	}
	return domain.TemplateUnknown, nil
}

func classifySheet(s *workbook.Sheet) domain.TemplateType {
	if containsMarker(s, SteppedMarker) {
		return domain.TemplateSteppedDischarge
	}
	if containsMarker(s, ConstantMarker) {
		return domain.TemplateConstantDischarge
	}

	content := strings.ToLower(s.Content())
	if containsAny(content, steppedPhrases) {
		return domain.TemplateSteppedDischarge
	}
	if containsAny(content, constantPhrases) {
		return domain.TemplateConstantDischarge
	}
	return domain.TemplateUnknown
}

// containsMarker searches the top-left window of the sheet for marker,
// ignoring case.
func containsMarker(s *workbook.Sheet, marker string) bool {
	rows, cols := s.Dimensions()
	rows = min(rows, markerScanRows)
	cols = min(cols, markerScanCols)
	needle := strings.ToLower(marker)
	for r := 1; r <= rows; r++ {
		for c := 1; c <= cols; c++ {
			cell, ok := s.CellAt(c, r)
			if !ok {
				continue
			}
			if strings.Contains(strings.ToLower(cell.Text), needle) {
				return true
			}
			if v, isStr := cell.Value.(string); isStr && strings.Contains(strings.ToLower(v), needle) {
				return true
			}
		}
	}
	return false
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
