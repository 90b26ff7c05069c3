package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drillsheet/internal/shared/testutil"
)

func TestImportCmd_Use(t *testing.T) {
	assert.Equal(t, "import <dir>", importCmd.Use)
	assert.NotNil(t, importCmd.Flags().Lookup("export"))
}

func TestImportCmd_Export(t *testing.T) {
	base := useTestApp(t, nil)
	dir := t.TempDir()
	testutil.WriteWorkbook(t, dir, "BH-07.xlsx", testutil.SheetSpec{Name: "Stepped", Cells: testutil.SteppedDischargeCells()})
	testutil.WriteWorkbook(t, dir, "day.xlsx", testutil.SheetSpec{Name: "Daily report drilling", Cells: testutil.DailyReportCells()})

	out, err := execute(t, "import", dir, "--export", "--workers", "2")
	require.NoError(t, err, out)

	assert.Contains(t, out, "2 parsed, 0 failed, 0 unreadable")
	assert.Contains(t, out, "day.xlsx -> 2024-01-15-PretoriaNorth-4")

	exports := filepath.Join(base, "data", "exports")
	assert.FileExists(t, filepath.Join(exports, "BH-07_series.csv"))
	assert.FileExists(t, filepath.Join(exports, "day_activities.csv"))
}

func TestImportCmd_ReportsFailures(t *testing.T) {
	useTestApp(t, nil)
	dir := t.TempDir()
	testutil.WriteWorkbook(t, dir, "a-stepped.xlsx", testutil.SheetSpec{Name: "Stepped", Cells: testutil.SteppedDischargeCells()})
	testutil.WriteWorkbook(t, dir, "b-budget.xlsx", testutil.SheetSpec{Name: "Budget", Cells: testutil.Cells{"A1": "Quarterly budget"}})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c-broken.xlsx"), []byte("not a workbook"), 0o644))

	out, err := execute(t, "import", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3 workbooks were not imported")

	assert.Contains(t, out, "1 parsed, 1 failed, 1 unreadable")
	assert.Regexp(t, `failed +b-budget\.xlsx: `, out)
	assert.Regexp(t, `unreadable +c-broken\.xlsx: `, out)
}

func TestImportCmd_EmptyDirectory(t *testing.T) {
	useTestApp(t, nil)

	out, err := execute(t, "import", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "0 parsed, 0 failed, 0 unreadable")
}

func TestImportCmd_MissingDirectory(t *testing.T) {
	useTestApp(t, nil)

	_, err := execute(t, "import", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import failed")
}
