package frame

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
)

type splitJSON struct {
	Columns []string         `json:"columns"`
	Index   []int            `json:"index"`
	Data    [][]*json.Number `json:"data"`
}

// MarshalJSON encodes the frame in split orientation. NaN and Inf become null.
func (f *Frame) MarshalJSON() ([]byte, error) {
	out := struct {
		Columns []string        `json:"columns"`
		Index   []int           `json:"index"`
		Data    [][]interface{} `json:"data"`
	}{
		Columns: f.Columns,
		Index:   f.Index,
		Data:    make([][]interface{}, len(f.Data)),
	}
	if out.Columns == nil {
		out.Columns = []string{}
	}
	if out.Index == nil {
		out.Index = []int{}
	}
	for i, row := range f.Data {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				cells[j] = nil
				continue
			}
			cells[j] = v
		}
		out.Data[i] = cells
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a split-orientation table. null cells become NaN.
func (f *Frame) UnmarshalJSON(data []byte) error {
	var in splitJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("decoding split table: %w", err)
	}

	rows := make([][]float64, len(in.Data))
	for i, cells := range in.Data {
		row := make([]float64, len(cells))
		for j, cell := range cells {
			if cell == nil {
				row[j] = math.NaN()
				continue
			}
			v, err := cell.Float64()
			if err != nil {
				return fmt.Errorf("row %d column %d: %w", i, j, err)
			}
			row[j] = v
		}
		rows[i] = row
	}

	*f = Frame{Columns: in.Columns, Index: in.Index, Data: rows}
	f.reindex()
	return f.Validate()
}

// WriteJSON writes the frame in split orientation. A non-negative precision
// rounds values first.
func WriteJSON(w io.Writer, f *Frame, precision int) error {
	if precision >= 0 {
		f = f.Round(precision)
	}
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding split table: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing split table: %w", err)
	}
	return nil
}

// ReadJSON reads a split-orientation table.
func ReadJSON(r io.Reader) (*Frame, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading split table: %w", err)
	}
	f := &Frame{}
	if err := json.Unmarshal(data, f); err != nil {
		return nil, err
	}
	return f, nil
}
