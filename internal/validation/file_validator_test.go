package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("PK"), 0644))
	return path
}

func TestFileValidator_ValidateInputDirectory(t *testing.T) {
	dir := t.TempDir()
	file := touch(t, dir, "BH-07.xlsx")

	tests := []struct {
		name          string
		path          string
		errorContains string
	}{
		{name: "existing directory", path: dir},
		{name: "missing directory", path: filepath.Join(dir, "nope"), errorContains: "does not exist"},
		{name: "file instead of directory", path: file, errorContains: "is not a directory"},
	}

	v := NewFileValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateInputDirectory(tt.path)
			if tt.errorContains == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errorContains)
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports", "csv")

	require.NoError(t, NewFileValidator(nil).ValidateOutputDirectory(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileValidator_ValidateExcelFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.xlsx"), 0755))

	tests := []struct {
		name          string
		path          string
		errorContains string
	}{
		{name: "xlsx", path: touch(t, dir, "BH-07.xlsx")},
		{name: "xlsm upper case", path: touch(t, dir, "Report.XLSM")},
		{name: "csv", path: touch(t, dir, "series.csv"), errorContains: "not an Excel workbook"},
		{name: "legacy xls", path: touch(t, dir, "old.xls"), errorContains: "not an Excel workbook"},
		{name: "lock file", path: touch(t, dir, "~$BH-07.xlsx"), errorContains: "temporary Excel file"},
		{name: "missing", path: filepath.Join(dir, "missing.xlsx"), errorContains: "does not exist"},
		{name: "directory", path: filepath.Join(dir, "folder.xlsx"), errorContains: "is a directory"},
	}

	v := NewFileValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateExcelFile(tt.path)
			if tt.errorContains == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errorContains)
		})
	}
}

func TestFileValidator_ListWorkbooks(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.xlsx")
	touch(t, dir, "a.xlsx")
	touch(t, dir, "c.xlsm")
	touch(t, dir, "~$a.xlsx")
	touch(t, dir, "notes.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.xlsx"), 0755))

	v := NewFileValidator(nil)

	t.Run("default pattern", func(t *testing.T) {
		files, err := v.ListWorkbooks(dir, "")
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "a.xlsx"),
			filepath.Join(dir, "b.xlsx"),
			filepath.Join(dir, "c.xlsm"),
		}, files)
	})

	t.Run("xlsx only", func(t *testing.T) {
		files, err := v.ListWorkbooks(dir, "*.xlsx")
		require.NoError(t, err)
		assert.Len(t, files, 2)
	})

	t.Run("empty directory", func(t *testing.T) {
		files, err := v.ListWorkbooks(t.TempDir(), "*.xlsx")
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("bad pattern", func(t *testing.T) {
		_, err := v.ListWorkbooks(dir, "[")
		assert.ErrorContains(t, err, "invalid pattern")
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := v.ListWorkbooks(filepath.Join(dir, "missing"), "*.xlsx")
		assert.Error(t, err)
	})
}

func TestIsTempWorkbook(t *testing.T) {
	assert.True(t, IsTempWorkbook("/data/~$BH-07.xlsx"))
	assert.False(t, IsTempWorkbook("/data/BH-07.xlsx"))
}
