package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drillsheet/internal/config"
)

func setupTestWriter(t *testing.T) (*CSVWriter, string) {
	t.Helper()
	exports := filepath.Join(t.TempDir(), "exports")
	return NewCSVWriter(&config.Paths{ExportsDir: exports}, nil), exports
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data = bytes.TrimPrefix(data, utf8BOM)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	tests := []struct {
		name    string
		options WriteOptions
		want    [][]string
		wantBOM bool
	}{
		{
			name:    "headers and records",
			options: WriteOptions{Headers: []string{"a", "b"}, Records: [][]string{{"1", "2"}, {"3", "4"}}},
			want:    [][]string{{"a", "b"}, {"1", "2"}, {"3", "4"}},
		},
		{
			name:    "with BOM",
			options: WriteOptions{Headers: []string{"a"}, Records: [][]string{{"x"}}, BOMPrefix: true},
			want:    [][]string{{"a"}, {"x"}},
			wantBOM: true,
		},
		{
			name:    "quoting",
			options: WriteOptions{Headers: []string{"activity"}, Records: [][]string{{"Drilling, 150mm"}, {`Said "stop"`}}},
			want:    [][]string{{"activity"}, {"Drilling, 150mm"}, {`Said "stop"`}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, exports := setupTestWriter(t)

			path, err := w.WriteCSV("out/table.csv", tt.options)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(exports, "out", "table.csv"), path)

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBOM, bytes.HasPrefix(raw, utf8BOM))
			assert.Equal(t, tt.want, readCSV(t, path))
		})
	}
}

func TestCSVWriter_Append(t *testing.T) {
	w, _ := setupTestWriter(t)

	path, err := w.WriteCSV("log.csv", WriteOptions{Headers: []string{"n"}, Records: [][]string{{"1"}}, BOMPrefix: true})
	require.NoError(t, err)
	_, err = w.WriteCSV("log.csv", WriteOptions{Headers: []string{"n"}, Records: [][]string{{"2"}}, Append: true, BOMPrefix: true})
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"n"}, {"1"}, {"2"}}, readCSV(t, path))
}

func TestCSVWriter_AbsolutePath(t *testing.T) {
	w, _ := setupTestWriter(t)
	target := filepath.Join(t.TempDir(), "abs.csv")

	path, err := w.WriteCSV(target, WriteOptions{Records: [][]string{{"only"}}})
	require.NoError(t, err)
	assert.Equal(t, target, path)
	assert.Equal(t, [][]string{{"only"}}, readCSV(t, path))
}

func TestCSVWriter_NilPaths(t *testing.T) {
	w := NewCSVWriter(nil, nil)
	assert.Equal(t, "rel.csv", w.resolvePath("rel.csv"))
}

func TestWriteTo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTo(&buf, []string{"a", "b"}, [][]string{{"1", ""}}))
	assert.Equal(t, "a,b\n1,\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteTo(&buf, nil, nil))
	assert.Empty(t, strings.TrimSpace(buf.String()))
}
