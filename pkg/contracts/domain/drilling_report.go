package domain

import (
	"time"
)

// ReportStatus is the review state of a daily drilling report.
type ReportStatus string

const (
	ReportStatusDraft ReportStatus = "Draft"
)

// ReportTemplateVersion is stamped on every report parsed from the
// "Daily report drilling" template.
const ReportTemplateVersion = "1.0"

// Activity is one line of a shift's activity table.
type Activity struct {
	Order      int    `json:"order" validate:"min=1"`
	Activity   string `json:"activity"`
	From       string `json:"from"`
	To         string `json:"to"`
	Total      string `json:"total"`
	Chargeable bool   `json:"chargeable"`
}

// Personnel is a crew member and the hours they worked on a shift.
type Personnel struct {
	Name        string  `json:"name" validate:"required"`
	HoursWorked float64 `json:"hoursWorked" validate:"min=0"`
}

// Shift groups the activities and crew of the day or night shift.
type Shift struct {
	StartTime       string      `json:"startTime"`
	EndTime         string      `json:"endTime"`
	TotalHours      float64     `json:"totalHours" validate:"min=0"`
	ChargeableHours float64     `json:"chargeableHours" validate:"min=0"`
	Activities      []Activity  `json:"activities" validate:"dive"`
	Personnel       []Personnel `json:"personnel" validate:"dive"`
}

// ReportChecks records how the report was parsed.
type ReportChecks struct {
	TemplateVersion string   `json:"templateVersion"`
	ParseWarnings   []string `json:"parseWarnings"`
	ParseErrors     []string `json:"parseErrors"`
}

// Report is a daily drilling progress report.
type Report struct {
	ReportID        string       `json:"reportId" db:"report_id" validate:"required"`
	ReportDate      *time.Time   `json:"reportDate,omitempty" db:"report_date"`
	ReportDateText  string       `json:"reportDateText" db:"report_date_text"`
	Client          string       `json:"client" db:"client"`
	ProjectSiteArea string       `json:"projectSiteArea" db:"project_site_area"`
	RigNumber       string       `json:"rigNumber" db:"rig_number"`
	ControlBHID     string       `json:"controlBHId,omitempty" db:"control_bh_id"`
	ObsBH1ID        string       `json:"obsBH1Id,omitempty" db:"obs_bh1_id"`
	ObsBH2ID        string       `json:"obsBH2Id,omitempty" db:"obs_bh2_id"`
	ObsBH3ID        string       `json:"obsBH3Id,omitempty" db:"obs_bh3_id"`
	Challenges      []string     `json:"challenges" db:"-"`
	SupervisorName  string       `json:"supervisorName,omitempty" db:"supervisor_name"`
	ClientRepName   string       `json:"clientRepName,omitempty" db:"client_rep_name"`
	Status          ReportStatus `json:"status" db:"status"`
	FileRef         string       `json:"fileRef" db:"file_ref"`
	Checks          ReportChecks `json:"checks" db:"-"`
	DayShift        Shift        `json:"dayShift" db:"-"`
	NightShift      Shift        `json:"nightShift" db:"-"`
	CreatedAt       time.Time    `json:"createdAt" db:"created_at"`
}
