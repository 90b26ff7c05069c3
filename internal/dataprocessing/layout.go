package dataprocessing

import (
	"strconv"

	"drillsheet/pkg/contracts/domain"
)

// Template layouts are schema-by-coordinate: every field the extractors
// read is named here, so a new template revision is a new table rather
// than new code. The tables are read-only after package init.

// ReportSheetName is the exact title of the daily drilling report sheet.
const ReportSheetName = "Daily report drilling"

// Classifier markers and fallback phrases.
const (
	SteppedMarker  = "STEPPED DISCHARGE TEST & RECOVERY"
	ConstantMarker = "CONSTANT DISCHARGE AND RECOVERY"

	// markerScanRows and markerScanCols bound the marker search window.
	markerScanRows = 100
	markerScanCols = 26
)

var (
	steppedPhrases  = []string{"discharge rate 1", "stepped discharge"}
	constantPhrases = []string{"observation hole 1", "constant discharge"}
)

// pointColumns names the column letter of each point field. Blank letters
// are not read.
type pointColumns struct {
	Time     string
	Level    string
	Drawdown string
	Yield    string
	Recovery string
}

// keepRule decides whether a normalised row becomes a point.
type keepRule int

const (
	// keepTimeOrLevel keeps rows with a time or a water level.
	keepTimeOrLevel keepRule = iota
	// keepAnyField keeps rows where any of the group's own columns parsed.
	keepAnyField
)

// seriesLayout is a block of rows read into one series.
type seriesLayout struct {
	Type     domain.SeriesType
	FirstRow int
	LastRow  int
	Columns  pointColumns
	// SharedTime marks a sub-series that borrows another group's time
	// column; its rows count only when one of its own columns is filled.
	SharedTime bool
}

// rateLayout is one pumping rate of a stepped discharge test.
type rateLayout struct {
	Index   int
	DateRef string
	TimeRef string
	Data    seriesLayout
	PHRef   string
	TempRef string
	ECRef   string
}

// timestampLayout pairs a date cell with an independent time cell.
type timestampLayout struct {
	DateRef string
	TimeRef string
}

// metadataLayout maps each borehole/site field to its cell. Blank refs are
// fields the template does not carry.
type metadataLayout struct {
	ProjectNo          string
	BoreholeNo         string
	AltBhNo            string
	MapRef             string
	SiteName           string
	Province           string
	District           string
	Client             string
	Contractor         string
	ExistingPump       string
	PumpType           string
	Latitude           string
	Longitude          string
	ElevationM         string
	BoreholeDepthM     string
	StaticWLMbdl       string
	StaticWLM          string
	PumpDepthM         string
	DatumAboveCasingM  string
	CasingHeightMagl   string
	PumpInletDiamMm    string
	SWLMbch            string
	AvailableDrawdownM string
	TotalTimePumpedMin string
}

// dischargeLayout describes a whole pump-test template.
type dischargeLayout struct {
	TestType domain.TestType
	Metadata metadataLayout
	Rates    []rateLayout
	Groups   []seriesLayout
	Start    timestampLayout
	End      timestampLayout
	Keep     keepRule
	// RequireMeasurement suppresses series whose points carry only times.
	RequireMeasurement bool
	// EmptyWarning is recorded when no series at all is produced.
	EmptyWarning string
}

var steppedLayout = dischargeLayout{
	TestType: domain.TestTypeSteppedDischarge,
	Metadata: metadataLayout{
		ProjectNo:         "C5",
		BoreholeNo:        "C6",
		AltBhNo:           "C7",
		BoreholeDepthM:    "C9",
		StaticWLMbdl:      "C10",
		PumpDepthM:        "C11",
		SWLMbch:           "C13",
		MapRef:            "H5",
		Latitude:          "H6",
		Longitude:         "H7",
		ElevationM:        "H8",
		DatumAboveCasingM: "H9",
		CasingHeightMagl:  "H10",
		PumpInletDiamMm:   "H11",
		Client:            "I11",
		Province:          "M5",
		District:          "M6",
		SiteName:          "M7",
		ExistingPump:      "M9",
		Contractor:        "M10",
		PumpType:          "M11",
	},
	Rates: []rateLayout{
		{
			Index: 1, DateRef: "C14", TimeRef: "F14",
			Data: seriesLayout{
				Type: domain.SeriesDischargeRate, FirstRow: 17, LastRow: 40,
				Columns: pointColumns{Time: "A", Level: "B", Drawdown: "C", Yield: "D"},
			},
			PHRef: "C41", TempRef: "D41", ECRef: "D42",
		},
		{
			Index: 2, DateRef: "H14", TimeRef: "J14",
			Data: seriesLayout{
				Type: domain.SeriesDischargeRate, FirstRow: 17, LastRow: 40,
				Columns: pointColumns{Time: "F", Level: "G", Drawdown: "H", Yield: "I"},
			},
			PHRef: "H41", TempRef: "I41", ECRef: "I42",
		},
	},
	Groups: []seriesLayout{
		{
			Type: domain.SeriesRecovery, FirstRow: 17, LastRow: 40,
			Columns: pointColumns{Time: "K", Level: "L", Recovery: "M"},
		},
	},
	Keep:         keepTimeOrLevel,
	EmptyWarning: noPointsWarning,
}

const noPointsWarning = "No test data points found in the expected cell ranges."

const constantFirstRow, constantLastRow = 16, 150

var constantLayout = dischargeLayout{
	TestType: domain.TestTypeConstantDischarge,
	Metadata: metadataLayout{
		BoreholeNo:         "C3",
		Contractor:         "P3",
		SiteName:           "P4",
		Client:             "P5",
		AltBhNo:            "G5",
		Latitude:           "G7",
		Longitude:          "G8",
		BoreholeDepthM:     "C9",
		DatumAboveCasingM:  "G9",
		ExistingPump:       "C10",
		StaticWLM:          "G10",
		CasingHeightMagl:   "C11",
		PumpInletDiamMm:    "C12",
		PumpType:           "G12",
		AvailableDrawdownM: "C15",
		TotalTimePumpedMin: "G15",
	},
	Groups: []seriesLayout{
		constantGroup(domain.SeriesDischarge, pointColumns{Time: "A", Level: "B", Drawdown: "C", Yield: "D"}),
		constantGroup(domain.SeriesDischargeRecovery, pointColumns{Time: "E", Level: "F"}),
		constantGroup(domain.SeriesObsHole1, pointColumns{Time: "G", Level: "H", Drawdown: "I"}),
		constantRecoveryGroup(domain.SeriesObsHole1Recovery, pointColumns{Time: "G", Level: "J"}),
		constantGroup(domain.SeriesObsHole2, pointColumns{Time: "K", Level: "L", Drawdown: "M"}),
		constantRecoveryGroup(domain.SeriesObsHole2Recovery, pointColumns{Time: "K", Level: "N"}),
		constantGroup(domain.SeriesObsHole3, pointColumns{Time: "O", Level: "P", Drawdown: "Q"}),
		constantRecoveryGroup(domain.SeriesObsHole3Recovery, pointColumns{Time: "O", Level: "R"}),
	},
	Start:              timestampLayout{DateRef: "B11", TimeRef: "E11"},
	End:                timestampLayout{DateRef: "G11", TimeRef: "L11"},
	Keep:               keepAnyField,
	RequireMeasurement: true,
	EmptyWarning:       noPointsWarning,
}

func constantGroup(t domain.SeriesType, cols pointColumns) seriesLayout {
	return seriesLayout{Type: t, FirstRow: constantFirstRow, LastRow: constantLastRow, Columns: cols}
}

func constantRecoveryGroup(t domain.SeriesType, cols pointColumns) seriesLayout {
	g := constantGroup(t, cols)
	g.SharedTime = true
	return g
}

// shiftLayout locates one shift block of the daily report.
type shiftLayout struct {
	Name           string
	FirstRow       int
	LastRow        int
	StartRef       string
	EndRef         string
	PersonnelFirst int
	PersonnelLast  int
}

// reportLayout maps the daily drilling report.
var reportLayout = struct {
	Date            string
	Client          string
	ProjectSiteArea string
	Rig             string
	RigPrefix       string
	ControlBH       string
	ObsBH           [3]string
	Supervisor      string
	ClientRep       string
	ChallengeCol    string
	ChallengeFirst  int
	ChallengeLast   int
	ActivityCol     string
	FromCol         string
	ToCol           string
	ChargeableCol   string
	PersonnelPairs  [2][2]string
	Day             shiftLayout
	Night           shiftLayout
}{
	Date:            "I6",
	Client:          "D7",
	ProjectSiteArea: "E9",
	Rig:             "A9",
	RigPrefix:       "RIG No_",
	ControlBH:       "D10",
	ObsBH:           [3]string{"F10", "H10", "J10"},
	Supervisor:      "B32",
	ClientRep:       "B33",
	ChallengeCol:    "B",
	ChallengeFirst:  52,
	ChallengeLast:   55,
	ActivityCol:     "B",
	FromCol:         "F",
	ToCol:           "G",
	ChargeableCol:   "I",
	PersonnelPairs:  [2][2]string{{"B", "F"}, {"G", "J"}},
	Day:             shiftLayout{Name: "day", FirstRow: 13, LastRow: 22, StartRef: "H9", EndRef: "J9", PersonnelFirst: 25, PersonnelLast: 29},
	Night:           shiftLayout{Name: "night", FirstRow: 34, LastRow: 43, StartRef: "F31", EndRef: "I31", PersonnelFirst: 46, PersonnelLast: 50},
}

func ref(col string, row int) string {
	if col == "" {
		return ""
	}
	return col + strconv.Itoa(row)
}
