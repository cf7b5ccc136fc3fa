// Package dataset loads uploaded decision matrices and writes ranked results.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/MikeSquared-Agency/Topsis/internal/topsis"
	"github.com/MikeSquared-Agency/Topsis/internal/upload"
)

const (
	ScoreColumn = "Topsis Score"
	RankColumn  = "Rank"

	// MinColumns is one identifier column plus at least two criteria.
	MinColumns = 3
)

var (
	ErrEmpty             = errors.New("file is empty")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrTooFewColumns     = errors.New("Input file must contain at least 3 columns")
	ErrNotNumeric        = errors.New("From 2nd to last columns must be numeric")
)

// Table is a header row plus data rows. Every row has len(Headers) cells.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Read picks a decoder from the file extension.
func Read(name string, r io.Reader) (*Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return ReadCSV(r)
	case ".xlsx":
		return ReadXLSX(r)
	default:
		return nil, fmt.Errorf("%s: %w", filepath.Ext(name), ErrUnsupportedFormat)
	}
}

func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return newTable(rows)
}

func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("xlsx has no sheets: %w", ErrEmpty)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return newTable(rows)
}

func newTable(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, ErrEmpty
	}
	headers := make([]string, len(rows[0]))
	seen := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		// duplicate names get a .N suffix so preview records keep every column
		if n := seen[h]; n > 0 {
			seen[h]++
			h = fmt.Sprintf("%s.%d", h, n)
		} else {
			seen[h] = 1
		}
		headers[i] = h
	}

	t := &Table{Headers: headers}
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		if len(row) > len(headers) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", len(t.Rows)+2, len(row), len(headers))
		}
		cells := make([]string, len(headers))
		copy(cells, row)
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Criteria returns the numeric matrix of the 2nd to last columns.
func (t *Table) Criteria() ([][]float64, error) {
	if len(t.Headers) < MinColumns {
		return nil, ErrTooFewColumns
	}
	matrix := make([][]float64, len(t.Rows))
	for i, row := range t.Rows {
		vals := make([]float64, len(row)-1)
		for j, cell := range row[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("row %d column %q: %w", i+1, t.Headers[j+1], ErrNotNumeric)
			}
			vals[j] = v
		}
		matrix[i] = vals
	}
	return matrix, nil
}

// AppendColumns adds the score and rank columns from res.
func (t *Table) AppendColumns(res *topsis.Result) error {
	if len(res.Scores) != len(t.Rows) || len(res.Ranks) != len(t.Rows) {
		return fmt.Errorf("result has %d scores for %d rows", len(res.Scores), len(t.Rows))
	}
	t.Headers = append(t.Headers, ScoreColumn, RankColumn)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i],
			strconv.FormatFloat(res.Scores[i], 'f', -1, 64),
			strconv.Itoa(res.Ranks[i]),
		)
	}
	return nil
}

func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// Preview returns up to n rows as ordered records. Numeric cells become
// numbers, empty cells become null.
func (t *Table) Preview(n int) []upload.Record {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	out := make([]upload.Record, 0, n)
	for _, row := range t.Rows[:n] {
		rec := upload.NewRecord()
		for j, h := range t.Headers {
			rec.Set(h, cellValue(row[j]))
		}
		out = append(out, *rec)
	}
	return out
}

func cellValue(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
