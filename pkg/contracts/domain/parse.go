package domain

import (
	"encoding/json"
	"time"
)

// TemplateType is the classification of an uploaded workbook.
type TemplateType string

const (
	TemplateSteppedDischarge  TemplateType = "stepped_discharge"
	TemplateConstantDischarge TemplateType = "constant_discharge"
	TemplateProgressReport    TemplateType = "progress_report"
	TemplateUnknown           TemplateType = "unknown"
)

// TestType maps a pump-test template to the test type it produces.
// The second result is false for report and unknown templates.
func (t TemplateType) TestType() (TestType, bool) {
	switch t {
	case TemplateSteppedDischarge:
		return TestTypeSteppedDischarge, true
	case TemplateConstantDischarge:
		return TestTypeConstantDischarge, true
	}
	return "", false
}

// ValidationResult accumulates problems found while parsing. Errors make
// the result invalid; warnings do not.
type ValidationResult struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// NewValidationResult returns an empty, valid result.
func NewValidationResult() ValidationResult {
	return ValidationResult{IsValid: true, Errors: []string{}, Warnings: []string{}}
}

// AddError records an error and marks the result invalid.
func (v *ValidationResult) AddError(msg string) {
	v.Errors = append(v.Errors, msg)
	v.IsValid = false
}

// AddWarning records a non-fatal problem.
func (v *ValidationResult) AddWarning(msg string) {
	v.Warnings = append(v.Warnings, msg)
}

// ParseResult is everything extracted from one workbook. Exactly one of
// Report and Test is set when parsing succeeded structurally; both are nil
// for unknown templates or structural failures.
type ParseResult struct {
	Type       TemplateType     `json:"type"`
	Report     *Report          `json:"-"`
	Test       *DischargeTest   `json:"-"`
	Site       *Site            `json:"site"`
	Borehole   *Borehole        `json:"borehole"`
	Series     []Series         `json:"series"`
	Quality    []Quality        `json:"quality"`
	Validation ValidationResult `json:"validation"`
}

// Data returns the primary record of the result, or nil.
func (r *ParseResult) Data() any {
	switch {
	case r.Report != nil:
		return r.Report
	case r.Test != nil:
		return r.Test
	}
	return nil
}

// PointCount is the number of points across all series pages.
func (r *ParseResult) PointCount() int {
	n := 0
	for _, s := range r.Series {
		n += len(s.Points)
	}
	return n
}

// MarshalJSON emits the primary record under "data".
func (r ParseResult) MarshalJSON() ([]byte, error) {
	type alias ParseResult
	return json.Marshal(struct {
		alias
		Data any `json:"data"`
	}{alias: alias(r), Data: r.Data()})
}

// ParseJobStatus is the outcome of a parse job.
type ParseJobStatus string

const (
	ParseJobParsed ParseJobStatus = "parsed"
	ParseJobFailed ParseJobStatus = "failed"
)

// ParseJobCounts summarises what a parse job produced.
type ParseJobCounts struct {
	Series int `json:"series"`
	Points int `json:"points"`
}

// ParseJob is the audit record of a single workbook upload.
type ParseJob struct {
	JobID          string         `json:"jobId" db:"job_id" validate:"required"`
	TemplateType   TemplateType   `json:"templateType" db:"template_type"`
	TestRef        string         `json:"testRef,omitempty" db:"test_ref"`
	Status         ParseJobStatus `json:"status" db:"status" validate:"required,oneof=parsed failed"`
	Warnings       []string       `json:"warnings" db:"-"`
	Errors         []string       `json:"errors,omitempty" db:"-"`
	Counts         ParseJobCounts `json:"counts" db:"-"`
	SourceFilePath string         `json:"sourceFilePath" db:"source_file_path"`
	CreatedAt      time.Time      `json:"createdAt" db:"created_at"`
}
