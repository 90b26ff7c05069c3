package domain

import (
	"time"
)

// TestType identifies the kind of pump test captured in a workbook.
type TestType string

const (
	TestTypeSteppedDischarge  TestType = "stepped_discharge"
	TestTypeConstantDischarge TestType = "constant_discharge"
)

// TestStatus is the lifecycle state of a discharge test record.
type TestStatus string

const (
	TestStatusDraft  TestStatus = "draft"
	TestStatusParsed TestStatus = "parsed"
	TestStatusFailed TestStatus = "failed"
)

// SeriesType names a time series extracted from a pump-test sheet.
type SeriesType string

const (
	SeriesDischarge         SeriesType = "discharge"
	SeriesDischargeRecovery SeriesType = "discharge_recovery"
	SeriesDischargeRate     SeriesType = "discharge_rate"
	SeriesRecovery          SeriesType = "recovery"
	SeriesObsHole1          SeriesType = "obshole1"
	SeriesObsHole2          SeriesType = "obshole2"
	SeriesObsHole3          SeriesType = "obshole3"
	SeriesObsHole1Recovery  SeriesType = "obshole1_recovery"
	SeriesObsHole2Recovery  SeriesType = "obshole2_recovery"
	SeriesObsHole3Recovery  SeriesType = "obshole3_recovery"
)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat" db:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" db:"lon" validate:"gte=-180,lte=180"`
}

// Site is the location a borehole belongs to.
type Site struct {
	SiteID      string       `json:"siteId" db:"site_id" validate:"required"`
	SiteName    string       `json:"siteName" db:"site_name"`
	Coordinates *Coordinates `json:"coordinates,omitempty" db:"-" validate:"omitempty"`
	Client      string       `json:"client,omitempty" db:"client"`
	Contractor  string       `json:"contractor,omitempty" db:"contractor"`
	Province    string       `json:"province,omitempty" db:"province"`
	District    string       `json:"district,omitempty" db:"district"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
}

// Borehole holds the physical description of the pumped borehole.
// Measurements are optional and nil when the cell was blank or non-numeric.
type Borehole struct {
	BoreholeID        string    `json:"boreholeId" db:"borehole_id" validate:"required"`
	SiteID            string    `json:"siteId" db:"site_id" validate:"required"`
	BoreholeNo        string    `json:"boreholeNo" db:"borehole_no"`
	AltBhNo           string    `json:"altBhNo,omitempty" db:"alt_bh_no"`
	ProjectNo         string    `json:"projectNo,omitempty" db:"project_no"`
	MapRef            string    `json:"mapRef,omitempty" db:"map_ref"`
	ElevationM        *float64  `json:"elevation_m,omitempty" db:"elevation_m"`
	BoreholeDepthM    *float64  `json:"boreholeDepth_m,omitempty" db:"borehole_depth_m" validate:"omitempty,min=0"`
	DatumAboveCasingM *float64  `json:"datumAboveCasing_m,omitempty" db:"datum_above_casing_m"`
	ExistingPump      string    `json:"existingPump,omitempty" db:"existing_pump"`
	StaticWLMbdl      *float64  `json:"staticWL_mbdl,omitempty" db:"static_wl_mbdl"`
	CasingHeightMagl  *float64  `json:"casingHeight_magl,omitempty" db:"casing_height_magl"`
	PumpDepthM        *float64  `json:"pumpDepth_m,omitempty" db:"pump_depth_m" validate:"omitempty,min=0"`
	PumpInletDiamMm   *float64  `json:"pumpInletDiam_mm,omitempty" db:"pump_inlet_diam_mm" validate:"omitempty,min=0"`
	PumpType          string    `json:"pumpType,omitempty" db:"pump_type"`
	SWLMbch           *float64  `json:"swl_mbch,omitempty" db:"swl_mbch"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
}

// PumpSummary describes the pump installed for the test.
type PumpSummary struct {
	DepthM      *float64 `json:"depth_m,omitempty"`
	InletDiamMm *float64 `json:"inletDiam_mm,omitempty"`
	Type        string   `json:"type,omitempty"`
}

// TestSummary carries the headline figures of a discharge test.
type TestSummary struct {
	AvailableDrawdownM *float64    `json:"availableDrawdown_m,omitempty"`
	TotalTimePumpedMin *float64    `json:"totalTimePumped_min,omitempty"`
	StaticWLM          *float64    `json:"staticWL_m,omitempty"`
	Pump               PumpSummary `json:"pump"`
	Notes              *string     `json:"notes,omitempty"`
}

// DischargeTest is the parent record of every series and quality sample
// produced from a stepped or constant discharge workbook.
type DischargeTest struct {
	TestID         string      `json:"testId" db:"test_id" validate:"required"`
	TestType       TestType    `json:"testType" db:"test_type" validate:"required,oneof=stepped_discharge constant_discharge"`
	BoreholeRef    string      `json:"boreholeRef" db:"borehole_ref" validate:"required"`
	BoreholeID     string      `json:"boreholeId" db:"borehole_id" validate:"required"`
	SiteID         string      `json:"siteId" db:"site_id" validate:"required"`
	StartTime      *time.Time  `json:"startTime,omitempty" db:"start_time"`
	EndTime        *time.Time  `json:"endTime,omitempty" db:"end_time"`
	Summary        TestSummary `json:"summary" db:"-"`
	Contractor     string      `json:"contractor,omitempty" db:"contractor"`
	Province       string      `json:"province,omitempty" db:"province"`
	SourceFilePath string      `json:"sourceFilePath" db:"source_file_path"`
	Status         TestStatus  `json:"status" db:"status" validate:"required,oneof=draft parsed failed"`
	CreatedAt      time.Time   `json:"createdAt" db:"created_at"`
}

// DischargePoint is one row of a pump-test table. Every field is optional;
// a point is only ever emitted with at least one field set.
type DischargePoint struct {
	TMin      *float64 `json:"t_min,omitempty" validate:"omitempty,min=0"`
	WLM       *float64 `json:"wl_m,omitempty"`
	DdnM      *float64 `json:"ddn_m,omitempty"`
	Qlps      *float64 `json:"qlps,omitempty"`
	RecoveryM *float64 `json:"recoverym,omitempty"`
}

// Empty reports whether no field of the point is populated.
func (p DischargePoint) Empty() bool {
	return p.TMin == nil && p.WLM == nil && p.DdnM == nil && p.Qlps == nil && p.RecoveryM == nil
}

// HasMeasurement reports whether any non-time field is populated.
func (p DischargePoint) HasMeasurement() bool {
	return p.WLM != nil || p.DdnM != nil || p.Qlps != nil || p.RecoveryM != nil
}

// Series is one page of points of a single series type. Long series are
// split into consecutive pages sharing the same type and rate index.
type Series struct {
	SeriesID   string           `json:"seriesId" db:"series_id" validate:"required"`
	TestID     string           `json:"testId" db:"test_id"`
	SeriesType SeriesType       `json:"seriesType" db:"series_type" validate:"required"`
	RateIndex  *int             `json:"rateIndex,omitempty" db:"rate_index" validate:"omitempty,min=1"`
	PageIndex  int              `json:"pageIndex" db:"page_index" validate:"min=0"`
	Points     []DischargePoint `json:"points" db:"-" validate:"required,min=1,dive"`
	CreatedAt  time.Time        `json:"createdAt" db:"created_at"`
}

// Quality is a water-quality sample taken at the end of a pumping rate.
type Quality struct {
	QualityID string    `json:"qualityId" db:"quality_id" validate:"required"`
	TestID    string    `json:"testId" db:"test_id"`
	RateIndex int       `json:"rateIndex" db:"rate_index" validate:"min=1"`
	PH        *float64  `json:"pH,omitempty" db:"ph" validate:"omitempty,min=0,max=14"`
	TempC     *float64  `json:"tempC,omitempty" db:"temp_c"`
	ECuScm    *float64  `json:"ec_uScm,omitempty" db:"ec_us_cm" validate:"omitempty,min=0"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
