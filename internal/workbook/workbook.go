package workbook

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Cell is a single populated worksheet cell. Value holds the typed raw
// value (float64, string or bool); Text holds the display string as
// formatted by the sheet's number format.
type Cell struct {
	Value any
	Text  string
}

// Sheet is an immutable, fully materialised worksheet addressed by A1 refs.
type Sheet struct {
	name   string
	cells  map[string]Cell
	order  []string
	maxRow int
	maxCol int
}

// NewSheet returns an empty sheet. It is mostly useful for tests; sheets
// read from disk come from Decode and Open.
func NewSheet(name string) *Sheet {
	return &Sheet{name: name, cells: make(map[string]Cell)}
}

// Set stores a cell value, deriving its display text. Nil clears nothing
// and is ignored, matching how empty cells are never materialised.
func (s *Sheet) Set(ref string, value any) {
	if value == nil {
		return
	}
	var c Cell
	switch v := value.(type) {
	case float64:
		c = Cell{Value: v, Text: strconv.FormatFloat(v, 'f', -1, 64)}
	case int:
		c = Cell{Value: float64(v), Text: strconv.Itoa(v)}
	case bool:
		c = Cell{Value: v, Text: strings.ToUpper(strconv.FormatBool(v))}
	case string:
		c = Cell{Value: v, Text: v}
	case Cell:
		c = v
	default:
		c = Cell{Value: fmt.Sprint(v), Text: fmt.Sprint(v)}
	}
	s.put(normalizeRef(ref), c)
}

func (s *Sheet) put(ref string, c Cell) {
	col, row, err := excelize.CellNameToCoordinates(ref)
	if err != nil {
		return
	}
	if _, exists := s.cells[ref]; !exists {
		s.order = append(s.order, ref)
	}
	s.cells[ref] = c
	if row > s.maxRow {
		s.maxRow = row
	}
	if col > s.maxCol {
		s.maxCol = col
	}
}

// Name returns the sheet title.
func (s *Sheet) Name() string { return s.name }

// Dimensions returns the 1-based extent of populated cells.
func (s *Sheet) Dimensions() (rows, cols int) { return s.maxRow, s.maxCol }

// Cell looks up a cell by A1 reference.
func (s *Sheet) Cell(ref string) (Cell, bool) {
	c, ok := s.cells[normalizeRef(ref)]
	return c, ok
}

// CellAt looks up a cell by 1-based column and row.
func (s *Sheet) CellAt(col, row int) (Cell, bool) {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return Cell{}, false
	}
	c, ok := s.cells[ref]
	return c, ok
}

// Value returns the raw value of a cell, falling back to its display text,
// or nil when the cell is absent.
func (s *Sheet) Value(ref string) any {
	c, ok := s.Cell(ref)
	if !ok {
		return nil
	}
	if c.Value != nil {
		return c.Value
	}
	if c.Text != "" {
		return c.Text
	}
	return nil
}

// Text returns the trimmed display text of a cell, falling back to the raw
// value, or "" when the cell is absent.
func (s *Sheet) Text(ref string) string {
	c, ok := s.Cell(ref)
	if !ok {
		return ""
	}
	if c.Text != "" {
		return strings.TrimSpace(c.Text)
	}
	if c.Value != nil {
		return strings.TrimSpace(fmt.Sprint(c.Value))
	}
	return ""
}

// Content flattens the display text of the populated cells in row-major
// order, one line per row that has cells and cells separated by commas.
// Its cost follows the number of populated cells, not the sheet extent.
func (s *Sheet) Content() string {
	type placed struct {
		row, col int
		text     string
	}
	cells := make([]placed, 0, len(s.order))
	for _, ref := range s.order {
		col, row, err := excelize.CellNameToCoordinates(ref)
		if err != nil {
			continue
		}
		cells = append(cells, placed{row: row, col: col, text: s.cells[ref].Text})
	}
	slices.SortFunc(cells, func(a, b placed) int {
		if a.row != b.row {
			return cmp.Compare(a.row, b.row)
		}
		return cmp.Compare(a.col, b.col)
	})

	var b strings.Builder
	for i, c := range cells {
		if i > 0 {
			if c.row == cells[i-1].row {
				b.WriteByte(',')
			} else {
				b.WriteByte('\n')
			}
		}
		b.WriteString(c.text)
	}
	if len(cells) > 0 {
		b.WriteByte('\n')
	}
	return b.String()
}

// Len returns the number of populated cells.
func (s *Sheet) Len() int { return len(s.cells) }

// Workbook is an ordered set of sheets.
type Workbook struct {
	sheets []*Sheet
	byName map[string]*Sheet
}

// New assembles a workbook from sheets in the given order.
func New(sheets ...*Sheet) *Workbook {
	wb := &Workbook{byName: make(map[string]*Sheet, len(sheets))}
	for _, s := range sheets {
		wb.sheets = append(wb.sheets, s)
		wb.byName[s.name] = s
	}
	return wb
}

// SheetNames returns the sheet titles in workbook order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.sheets))
	for i, s := range w.sheets {
		names[i] = s.name
	}
	return names
}

// Sheets returns the sheets in workbook order.
func (w *Workbook) Sheets() []*Sheet { return w.sheets }

// Sheet returns the sheet with the exact given name.
func (w *Workbook) Sheet(name string) (*Sheet, bool) {
	s, ok := w.byName[name]
	return s, ok
}

func normalizeRef(ref string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(ref), "$", ""))
}
