// Package sheet loads third-party grade exports into a generic tabular
// structure. The per-format quirks (delimited text vs spreadsheet, junk
// header rows) stay here; the scoring core never sees a file.
package sheet

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dsc-courses/gradesync/internal/gradebook"
)

// Table is one loaded sheet: the header labels in file order, and one
// string map per data row. Cells absent from a short row are simply not in
// the map.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// Option adjusts how a sheet is read.
type Option func(*loadConfig)

type loadConfig struct {
	skipRows map[int]bool // data-row indexes to drop, 0-based after the header
}

// WithSkippedRows drops the given data rows (0-based, counted after the
// header row). Poll exports put a summary row directly under the header.
func WithSkippedRows(rows ...int) Option {
	return func(c *loadConfig) {
		for _, r := range rows {
			c.skipRows[r] = true
		}
	}
}

// Load reads path into a Table, picking the reader from the file extension:
// .csv is delimited text, .xlsx is a spreadsheet (first worksheet).
func Load(path string, opts ...Option) (*Table, error) {
	cfg := &loadConfig{skipRows: map[int]bool{}}
	for _, o := range opts {
		o(cfg)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return loadCSV(path, cfg)
	case ".xlsx":
		return loadXLSX(path, cfg)
	default:
		return nil, fmt.Errorf("load %s: unsupported sheet format %q", path, ext)
	}
}

func loadCSV(path string, cfg *loadConfig) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return fromRecords(path, records, cfg)
}

func loadXLSX(path string, cfg *loadConfig) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("read %s: workbook has no sheets", path)
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return fromRecords(path, records, cfg)
}

func fromRecords(path string, records [][]string, cfg *loadConfig) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: empty sheet", path)
	}
	header := records[0]
	t := &Table{Columns: append([]string(nil), header...)}
	for i, rec := range records[1:] {
		if cfg.skipRows[i] {
			continue
		}
		row := make(map[string]string, len(header))
		for j, label := range header {
			if j < len(rec) {
				row[label] = rec[j]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// HasColumn reports whether label is one of the sheet's headers.
func (t *Table) HasColumn(label string) bool {
	for _, c := range t.Columns {
		if c == label {
			return true
		}
	}
	return false
}

// Numeric parses the cell at label in row. Blank and unparseable cells are
// missing, which the core treats as distinct from zero.
func Numeric(row map[string]string, label string) gradebook.Cell {
	s := strings.TrimSpace(row[label])
	if s == "" {
		return gradebook.Cell{Missing: true}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return gradebook.Cell{Missing: true}
	}
	return gradebook.Cell{Value: v}
}
