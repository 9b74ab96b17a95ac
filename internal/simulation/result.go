package simulation

import (
	"github.com/allcarbonfree/carbonpath/internal/constants"
	"github.com/allcarbonfree/carbonpath/internal/frame"
	"github.com/allcarbonfree/carbonpath/internal/history"
)

// Result is the outcome of one Simulate call.
type Result struct {
	params  Params
	columns []string
	history []history.Record

	// Simulated holds one state per simulated year.
	Simulated []*State

	// TechnologyOutput is the rounded cumulative deployment of the
	// technology named by Params.TechnologyOutputID, starting with its two
	// historical anchors. Nil when not requested or not selected.
	TechnologyOutput []int64

	nonFinite int
}

// Err returns a *NonFiniteError when the run stopped because a year's
// state overflowed. Simulated then holds only the years before it.
func (r *Result) Err() error {
	if r.nonFinite == 0 {
		return nil
	}
	return &NonFiniteError{Year: r.nonFinite}
}

// Final returns the last simulated state, or nil if no year was simulated.
func (r *Result) Final() *State {
	if len(r.Simulated) == 0 {
		return nil
	}
	return r.Simulated[len(r.Simulated)-1]
}

// LastYear returns the last year of the trajectory.
func (r *Result) LastYear() int {
	if final := r.Final(); final != nil {
		return final.Year
	}
	if len(r.history) > 0 {
		return r.history[len(r.history)-1].Year
	}
	return r.params.StartingYear
}

// Frame returns the full trajectory: historical rows from the starting
// year followed by the simulated years. Source columns come first, then
// any columns the simulation derived.
func (r *Result) Frame() *frame.Frame {
	f := frame.New(r.columns)
	for _, rec := range r.history {
		f.Append(rec.Year, rec.Values)
	}
	for _, s := range r.Simulated {
		values := s.Values()
		for _, col := range sortedKeys(values) {
			f.AddColumn(col)
		}
		f.Append(s.Year, values)
	}
	return f
}

// Lite returns the reduced trajectory published with a path.
func (r *Result) Lite() (*frame.Frame, error) {
	return r.Frame().Select(constants.LiteColumns...)
}

// points returns (year, all emissions, carbon-free electricity) for every
// trajectory row. Missing historical cells read as zero.
func (r *Result) points() []point {
	out := make([]point, 0, len(r.history)+len(r.Simulated))
	for _, rec := range r.history {
		all, _ := rec.Value(constants.EmissionsColumn(constants.AllKey))
		cf, _ := rec.Value(constants.ElectricityColumn(constants.CarbonFreeKey))
		out = append(out, point{year: rec.Year, all: all, carbonFree: cf})
	}
	for _, s := range r.Simulated {
		out = append(out, point{year: s.Year, all: s.All, carbonFree: s.CarbonFree})
	}
	return out
}

type point struct {
	year       int
	all        float64
	carbonFree float64
}
