package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Cells maps A1 references to cell values. Values are written with
// excelize.SetCellValue, so time.Time becomes a date serial.
type Cells map[string]any

// Clone returns a shallow copy that can be modified independently.
func (c Cells) Clone() Cells {
	out := make(Cells, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// SheetSpec is one worksheet of a fixture workbook.
type SheetSpec struct {
	Name  string
	Cells Cells
}

// SteppedDischargeCells returns a populated stepped discharge sheet: four
// rate 1 rows, two rate 2 rows, three recovery rows and a rate 1 quality
// sample. Rate 1 starts 2024-01-15 08:30.
func SteppedDischargeCells() Cells {
	c := Cells{
		"A1":  "STEPPED DISCHARGE TEST & RECOVERY",
		"C5":  "PRJ-001",
		"C6":  "BH-07",
		"C7":  "ALT-7",
		"C9":  120.5,
		"C10": 12.3,
		"C11": 80.0,
		"C13": 11.9,
		"H5":  "2528CA",
		"H6":  -25.7461,
		"H7":  28.1881,
		"H8":  1350.0,
		"H9":  0.5,
		"H10": 0.4,
		"H11": 50.0,
		"I11": "Water Board",
		"M5":  "Gauteng",
		"M6":  "Tshwane",
		"M7":  "Pretoria North",
		"M9":  "No",
		"M10": "Acme Drilling",
		"M11": "Submersible",
		"C14": 45306.0,
		"F14": "08:30",
		"H14": 45306.0,
		"J14": "10:30",
		"C41": 7.2,
		"D41": 21.5,
		"D42": 450.0,
	}
	rate1 := [][4]float64{{1, 12.5, 0.2, 2.5}, {2, 13.1, 0.8, 2.5}, {3, 13.6, 1.3, 2.5}, {5, 14.0, 1.7, 2.5}}
	for i, r := range rate1 {
		row := strconv.Itoa(17 + i)
		c["A"+row], c["B"+row], c["C"+row], c["D"+row] = r[0], r[1], r[2], r[3]
	}
	rate2 := [][4]float64{{1, 14.2, 1.9, 4.0}, {2, 14.9, 2.6, 4.0}}
	for i, r := range rate2 {
		row := strconv.Itoa(17 + i)
		c["F"+row], c["G"+row], c["H"+row], c["I"+row] = r[0], r[1], r[2], r[3]
	}
	recovery := [][3]float64{{1, 14.5, 0.4}, {2, 13.8, 1.1}, {5, 12.9, 2.0}}
	for i, r := range recovery {
		row := strconv.Itoa(17 + i)
		c["K"+row], c["L"+row], c["M"+row] = r[0], r[1], r[2]
	}
	return c
}

// ConstantDischargeCells returns a constant discharge sheet with three
// discharge rows, two recovery rows and observation hole 1 data including
// its recovery column.
func ConstantDischargeCells() Cells {
	c := Cells{
		"A1":  "CONSTANT DISCHARGE AND RECOVERY",
		"C3":  "BH-12",
		"P3":  "Acme Drilling",
		"P4":  "Mamelodi East",
		"P5":  "City of Tshwane",
		"G5":  "OLD-12",
		"G7":  "-25.70, 28.35",
		"G8":  28.35,
		"C9":  95.0,
		"G9":  0.3,
		"C10": "Yes",
		"G10": 15.2,
		"C11": 0.45,
		"G11": 45324.0,
		"C12": 45.0,
		"G12": "Mono",
		"C15": 55.0,
		"G15": 1440.0,
		"B11": 45323.0,
		"E11": 0.25,
		"L11": "6:00 PM",
	}
	discharge := [][4]float64{{0, 15.2, 0, 3.1}, {1, 16.0, 0.8, 3.1}, {2, 16.5, 1.3, 3.0}}
	for i, r := range discharge {
		row := strconv.Itoa(16 + i)
		c["A"+row], c["B"+row], c["C"+row], c["D"+row] = r[0], r[1], r[2], r[3]
	}
	c["E16"], c["F16"] = 1.0, 16.1
	c["E17"], c["F17"] = 2.0, 15.7
	obs := [][4]float64{{1, 20.1, 0.1, 20.05}, {2, 20.3, 0.3, 0}}
	for i, r := range obs {
		row := strconv.Itoa(16 + i)
		c["G"+row], c["H"+row], c["I"+row] = r[0], r[1], r[2]
		if r[3] != 0 {
			c["J"+row] = r[3]
		}
	}
	return c
}

// DailyReportCells returns a complete daily drilling report sheet. The day
// shift runs 06:00 to 18:00 and the night shift crosses midnight.
func DailyReportCells() Cells {
	return Cells{
		"I6":  45306.0,
		"D7":  "Water Board",
		"E9":  "Pretoria North",
		"A9":  "RIG No_ 4",
		"D10": "BH-07",
		"F10": "OBS-1",
		"H10": "OBS-2",
		"H9":  "06:00",
		"J9":  "18:00",
		"B13": "Drilling 165mm",
		"F13": "06:00",
		"G13": "10:30",
		"I13": "x",
		"B14": "Standby",
		"F14": "10:30",
		"G14": "12:00",
		"B15": "Casing",
		"F15": 0.5,
		"G15": 0.75,
		"I15": "x",
		"B25": "J. Mokoena",
		"F25": "12",
		"G25": "P. Naidoo",
		"J25": "abc",
		"F31": "6:00 PM",
		"I31": "6:00 AM",
		"B34": "Drilling",
		"F34": "22:00",
		"G34": "02:00",
		"I34": "x",
		"B46": "S. Dlamini",
		"F46": 10.5,
		"B32": "A. Supervisor",
		"B33": "C. Rep",
		"B52": "Hard formation at 60m",
		"B54": "Water strike at 72m",
	}
}

// BuildWorkbook writes the sheets into an in-memory xlsx file.
func BuildWorkbook(t testing.TB, sheets ...SheetSpec) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", s.Name))
		} else {
			_, err := f.NewSheet(s.Name)
			require.NoError(t, err)
		}
		refs := make([]string, 0, len(s.Cells))
		for ref := range s.Cells {
			refs = append(refs, ref)
		}
		sort.Strings(refs)
		for _, ref := range refs {
			require.NoError(t, f.SetCellValue(s.Name, ref, s.Cells[ref]))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// WriteWorkbook builds a workbook and saves it as dir/name.
func WriteWorkbook(t testing.TB, dir, name string, sheets ...SheetSpec) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, BuildWorkbook(t, sheets...), 0o644))
	return path
}
