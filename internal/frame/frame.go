// Package frame provides a small year-indexed numeric table used to move
// historical series and simulated trajectories in and out of the engine.
//
// The wire format is pandas' split orientation:
//
//	{"columns": ["a_emissions", ...], "index": [2019, 2020], "data": [[1.0, ...], ...]}
//
// Missing cells are NaN in memory and null on the wire.
package frame

import (
	"fmt"
	"math"
)

// Frame is a rectangular table of float64 values indexed by year.
type Frame struct {
	Columns []string
	Index   []int
	Data    [][]float64

	pos map[string]int
}

// New creates an empty frame with the given columns.
func New(columns []string) *Frame {
	f := &Frame{Columns: append([]string(nil), columns...)}
	f.reindex()
	return f
}

func (f *Frame) reindex() {
	f.pos = make(map[string]int, len(f.Columns))
	for i, c := range f.Columns {
		f.pos[c] = i
	}
}

func (f *Frame) position(column string) (int, bool) {
	if f.pos == nil || len(f.pos) != len(f.Columns) {
		f.reindex()
	}
	i, ok := f.pos[column]
	return i, ok
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.Index) }

// HasColumn reports whether the frame has the named column.
func (f *Frame) HasColumn(column string) bool {
	_, ok := f.position(column)
	return ok
}

// AddColumn appends a column filled with NaN. Existing columns are left as is.
func (f *Frame) AddColumn(column string) {
	if f.HasColumn(column) {
		return
	}
	f.Columns = append(f.Columns, column)
	for i := range f.Data {
		f.Data[i] = append(f.Data[i], math.NaN())
	}
	f.reindex()
}

// Append adds a row. Values for unknown columns are ignored; columns
// absent from values are NaN.
func (f *Frame) Append(year int, values map[string]float64) {
	row := make([]float64, len(f.Columns))
	for i, c := range f.Columns {
		v, ok := values[c]
		if !ok {
			v = math.NaN()
		}
		row[i] = v
	}
	f.Index = append(f.Index, year)
	f.Data = append(f.Data, row)
}

// Row returns the non-missing values of row i keyed by column.
func (f *Frame) Row(i int) map[string]float64 {
	out := make(map[string]float64, len(f.Columns))
	for j, c := range f.Columns {
		if v := f.Data[i][j]; !math.IsNaN(v) {
			out[c] = v
		}
	}
	return out
}

// Column returns a copy of a column's values.
func (f *Frame) Column(column string) ([]float64, bool) {
	j, ok := f.position(column)
	if !ok {
		return nil, false
	}
	out := make([]float64, len(f.Data))
	for i, row := range f.Data {
		out[i] = row[j]
	}
	return out, true
}

// Select returns a new frame with only the named columns, in that order.
func (f *Frame) Select(columns ...string) (*Frame, error) {
	idx := make([]int, len(columns))
	for k, c := range columns {
		j, ok := f.position(c)
		if !ok {
			return nil, fmt.Errorf("column %q not found", c)
		}
		idx[k] = j
	}

	out := New(columns)
	out.Index = append([]int(nil), f.Index...)
	out.Data = make([][]float64, len(f.Data))
	for i, row := range f.Data {
		sel := make([]float64, len(idx))
		for k, j := range idx {
			sel[k] = row[j]
		}
		out.Data[i] = sel
	}
	return out, nil
}

// Round returns a copy with every value rounded to the given number of
// decimal places.
func (f *Frame) Round(places int) *Frame {
	scale := math.Pow(10, float64(places))
	out := New(f.Columns)
	out.Index = append([]int(nil), f.Index...)
	out.Data = make([][]float64, len(f.Data))
	for i, row := range f.Data {
		r := make([]float64, len(row))
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				r[j] = v
				continue
			}
			r[j] = math.Round(v*scale) / scale
		}
		out.Data[i] = r
	}
	return out
}

// Validate checks that every row has one value per column.
func (f *Frame) Validate() error {
	if len(f.Index) != len(f.Data) {
		return fmt.Errorf("index has %d entries but data has %d rows", len(f.Index), len(f.Data))
	}
	for i, row := range f.Data {
		if len(row) != len(f.Columns) {
			return fmt.Errorf("row %d has %d values, want %d", i, len(row), len(f.Columns))
		}
	}
	return nil
}
