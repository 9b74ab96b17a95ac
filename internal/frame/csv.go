package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ReadCSV reads a table whose index column holds calendar years. Empty cells
// and "nan" are missing values. Columns that fail to parse as numbers in any
// row are dropped (country names, ISO codes and the like).
func ReadCSV(r io.Reader, indexColumn string) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	indexPos := -1
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
		if header[i] == indexColumn {
			indexPos = i
		}
	}
	if indexPos < 0 {
		return nil, fmt.Errorf("csv has no %q column", indexColumn)
	}

	var years []int
	var raw [][]string
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading csv line %d: %w", line, err)
		}
		if indexPos >= len(record) {
			return nil, fmt.Errorf("csv line %d: missing %q", line, indexColumn)
		}
		year, err := parseYear(record[indexPos])
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		years = append(years, year)
		raw = append(raw, record)
	}

	numeric := make([]bool, len(header))
	for j := range header {
		numeric[j] = j != indexPos
	}
	for _, record := range raw {
		for j := range header {
			if !numeric[j] || j >= len(record) {
				continue
			}
			if _, ok := parseCell(record[j]); !ok {
				numeric[j] = false
			}
		}
	}

	var columns []string
	var keep []int
	for j, h := range header {
		if numeric[j] {
			columns = append(columns, h)
			keep = append(keep, j)
		}
	}

	f := New(columns)
	for i, record := range raw {
		row := make([]float64, len(keep))
		for k, j := range keep {
			row[k] = math.NaN()
			if j < len(record) {
				row[k], _ = parseCell(record[j])
			}
		}
		f.Index = append(f.Index, years[i])
		f.Data = append(f.Data, row)
	}
	return f, nil
}

// WriteCSV writes the frame with the index as the first column.
func WriteCSV(w io.Writer, f *Frame, indexColumn string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(append([]string{indexColumn}, f.Columns...)); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for i, row := range f.Data {
		record := make([]string, 0, len(row)+1)
		record = append(record, strconv.Itoa(f.Index[i]))
		for _, v := range row {
			if math.IsNaN(v) {
				record = append(record, "")
				continue
			}
			record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing csv row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if year, err := strconv.Atoi(s); err == nil {
		return year, nil
	}
	// Spreadsheet exports sometimes write years as floats.
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != math.Trunc(v) {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return int(v), nil
}

// parseCell returns NaN with ok=true for missing cells.
func parseCell(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN(), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
