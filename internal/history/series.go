// Package history holds the historical emissions and electricity series a
// simulation starts from. A Series is immutable once built: every accessor
// returns copies, so one Series can back any number of concurrent runs.
package history

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/allcarbonfree/carbonpath/internal/constants"
	"github.com/allcarbonfree/carbonpath/internal/frame"
)

// Validation errors. Callers wrap these as setup failures.
var (
	ErrEmptySeries   = errors.New("historical series has no rows")
	ErrNonContiguous = errors.New("historical years are not contiguous and increasing")
)

// Record is one historical year. Missing cells are absent from Values.
type Record struct {
	Year   int
	Values map[string]float64
}

// Value returns the value of a column and whether it is present.
func (r Record) Value(column string) (float64, bool) {
	v, ok := r.Values[column]
	return v, ok
}

func (r Record) clone() Record {
	values := make(map[string]float64, len(r.Values))
	for k, v := range r.Values {
		values[k] = v
	}
	return Record{Year: r.Year, Values: values}
}

// Series is an ordered, contiguous run of historical years.
type Series struct {
	columns []string
	records []Record
}

// NewSeries validates and builds a series. Records are copied.
func NewSeries(columns []string, records []Record) (*Series, error) {
	if len(records) == 0 {
		return nil, ErrEmptySeries
	}
	for i := 1; i < len(records); i++ {
		if records[i].Year != records[i-1].Year+1 {
			return nil, fmt.Errorf("%w: %d follows %d", ErrNonContiguous, records[i].Year, records[i-1].Year)
		}
	}

	s := &Series{
		columns: append([]string(nil), columns...),
		records: make([]Record, len(records)),
	}
	for i, r := range records {
		s.records[i] = r.clone()
	}
	return s, nil
}

// FromFrame builds a series from a year-indexed table.
func FromFrame(f *frame.Frame) (*Series, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid table: %w", err)
	}
	records := make([]Record, f.Len())
	for i := range f.Index {
		records[i] = Record{Year: f.Index[i], Values: f.Row(i)}
	}
	return NewSeries(f.Columns, records)
}

// LoadFile reads a series from a CSV (.csv) or split-orient JSON file.
func LoadFile(path string) (*Series, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening series: %w", err)
	}
	defer file.Close()

	var f *frame.Frame
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		f, err = frame.ReadCSV(file, constants.YearColumn)
	} else {
		f, err = frame.ReadJSON(file)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return FromFrame(f)
}

// Frame converts the series back into a table.
func (s *Series) Frame() *frame.Frame {
	f := frame.New(s.columns)
	for _, r := range s.records {
		f.Append(r.Year, r.Values)
	}
	return f
}

// Columns returns the column names in source order.
func (s *Series) Columns() []string {
	return append([]string(nil), s.columns...)
}

// HasColumn reports whether the series has the named column.
func (s *Series) HasColumn(column string) bool {
	for _, c := range s.columns {
		if c == column {
			return true
		}
	}
	return false
}

// Len returns the number of years.
func (s *Series) Len() int { return len(s.records) }

// FirstYear returns the earliest year.
func (s *Series) FirstYear() int { return s.records[0].Year }

// LatestYear returns the last historical year.
func (s *Series) LatestYear() int { return s.records[len(s.records)-1].Year }

// Latest returns a copy of the last record, the simulation's starting state.
func (s *Series) Latest() Record { return s.records[len(s.records)-1].clone() }

// Since returns copies of the records with Year >= year.
func (s *Series) Since(year int) []Record {
	var out []Record
	for _, r := range s.records {
		if r.Year >= year {
			out = append(out, r.clone())
		}
	}
	return out
}

// Tail returns copies of the last n records (all of them if n is larger).
func (s *Series) Tail(n int) []Record {
	if n > len(s.records) {
		n = len(s.records)
	}
	out := make([]Record, n)
	for i, r := range s.records[len(s.records)-n:] {
		out[i] = r.clone()
	}
	return out
}

// Subsectors returns the taxonomy subsectors that have an emissions column,
// in taxonomy order.
func (s *Series) Subsectors() []string {
	var out []string
	for _, ss := range constants.Subsectors() {
		if s.HasColumn(constants.EmissionsColumn(ss)) {
			out = append(out, ss)
		}
	}
	return out
}

// Sectors returns the taxonomy sectors that have an emissions column.
func (s *Series) Sectors() []string {
	var out []string
	for _, name := range constants.SectorNames() {
		if s.HasColumn(constants.EmissionsColumn(name)) {
			out = append(out, name)
		}
	}
	return out
}

// CheckFinite reports the first non-finite value in the given columns over
// the last n records.
func (s *Series) CheckFinite(columns []string, n int) error {
	for _, r := range s.Tail(n) {
		for _, c := range columns {
			if v, ok := r.Values[c]; ok && (math.IsNaN(v) || math.IsInf(v, 0)) {
				return fmt.Errorf("%s in %d is not finite", c, r.Year)
			}
		}
	}
	return nil
}
