package workbook

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Decode reads an xlsx workbook from memory and materialises every sheet.
func Decode(data []byte) (*Workbook, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("workbook is empty")
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return load(f)
}

// Read decodes a workbook from a stream, reading at most limit bytes when
// limit is positive.
func Read(r io.Reader, limit int64) (*Workbook, error) {
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("workbook exceeds %d bytes", limit)
	}
	return Decode(data)
}

// Open reads an xlsx workbook from disk.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return load(f)
}

func load(f *excelize.File) (*Workbook, error) {
	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheets := make([]*Sheet, 0, len(names))
	for _, name := range names {
		s, err := loadSheet(f, name)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, s)
	}
	return New(sheets...), nil
}

func loadSheet(f *excelize.File, name string) (*Sheet, error) {
	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}
	formatted, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}

	s := NewSheet(name)
	for r, row := range raw {
		for c, rawValue := range row {
			text := ""
			if r < len(formatted) && c < len(formatted[r]) {
				text = formatted[r][c]
			}
			if rawValue == "" && text == "" {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, fmt.Errorf("sheet %q: %w", name, err)
			}
			cellType, err := f.GetCellType(name, ref)
			if err != nil {
				return nil, fmt.Errorf("sheet %q cell %s: %w", name, ref, err)
			}
			s.put(ref, Cell{Value: typedValue(cellType, rawValue), Text: text})
		}
	}
	return s, nil
}

// typedValue converts a raw cell string into the Go type its cell type
// implies. Untyped and numeric cells become float64 when they parse.
func typedValue(t excelize.CellType, raw string) any {
	if raw == "" {
		return nil
	}
	switch t {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true")
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeError, excelize.CellTypeDate:
		return raw
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		return f
	}
	return raw
}
