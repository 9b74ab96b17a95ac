package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/allcarbonfree/carbonpath/internal/catalog"
	"github.com/allcarbonfree/carbonpath/internal/constants"
	"github.com/allcarbonfree/carbonpath/internal/history"
	"github.com/allcarbonfree/carbonpath/internal/logging"
)

// Params holds the run parameters of a path.
type Params struct {
	// StartingYear is the first historical year kept in the trajectory.
	// Default: 2000.
	StartingYear int

	// EndingYear is the last year simulated. Default: 2100.
	EndingYear int

	// IncreaseEnergyUse applies the fitted baseline growth each year.
	// Default: true.
	IncreaseEnergyUse bool

	// TechnologyOutputID selects the technology whose deployment curve is
	// reported in the result. Empty means none.
	TechnologyOutputID string
}

// DefaultParams returns the default run parameters.
func DefaultParams() Params {
	return Params{
		StartingYear:      constants.DefaultStartingYear,
		EndingYear:        constants.DefaultEndingYear,
		IncreaseEnergyUse: true,
	}
}

// Option configures a Path.
type Option func(*Path)

// WithLogger sets the operational logger. Per-year totals are logged at
// trace level.
func WithLogger(l *slog.Logger) Option {
	return func(p *Path) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithDecisionLogger records one decision event per technology step.
func WithDecisionLogger(dl *logging.DecisionLogger) Option {
	return func(p *Path) { p.decisions = dl }
}

// Path is a configured simulation. It holds only read-only inputs and the
// fitted baseline, so Simulate may be called any number of times.
type Path struct {
	series     *history.Series
	selection  catalog.Selection
	params     Params
	subsectors []string
	curves     map[string]growthCurve

	logger    *slog.Logger
	decisions *logging.DecisionLogger
}

// NewPath validates the inputs and fits the baseline growth curves.
// It returns a *SetupError for an unusable series or year range and a
// *NumericPreconditionError when a subsector cannot be fitted.
func NewPath(series *history.Series, sel catalog.Selection, params Params, opts ...Option) (*Path, error) {
	if series == nil || series.Len() == 0 {
		return nil, &SetupError{Reason: "no historical data", Err: history.ErrEmptySeries}
	}
	if params.EndingYear < params.StartingYear {
		return nil, &SetupError{Reason: fmt.Sprintf("ending year %d is before starting year %d", params.EndingYear, params.StartingYear)}
	}
	if params.StartingYear > series.LatestYear() {
		return nil, &SetupError{Reason: fmt.Sprintf("starting year %d is after the latest historical year %d", params.StartingYear, series.LatestYear())}
	}

	p := &Path{
		series:     series,
		selection:  sel,
		params:     params,
		subsectors: series.Subsectors(),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}

	curves, err := fitGrowth(series, p.subsectors)
	if err != nil {
		return nil, err
	}
	p.curves = curves
	return p, nil
}

// Params returns the run parameters.
func (p *Path) Params() Params { return p.params }

// Selection returns the technologies the path runs.
func (p *Path) Selection() catalog.Selection { return p.selection }

// Simulate runs the projection from the latest historical year.
// Each call starts from fresh state. A year whose state is not finite ends
// the run early; Result.Err reports it.
func (p *Path) Simulate() *Result {
	fossil := make([]*deployment, len(p.selection.Fossil))
	for i, t := range p.selection.Fossil {
		fossil[i] = newDeployment(t)
	}
	nonFossil := make([]*deployment, len(p.selection.NonFossil))
	for i, t := range p.selection.NonFossil {
		nonFossil[i] = newDeployment(t)
	}

	state := StateFromRecord(p.series.Latest())
	var simulated []*State
	nonFinite := 0

	for year := p.series.LatestYear() + 1; year <= p.params.EndingYear; year++ {
		state.Year = year
		if p.params.IncreaseEnergyUse {
			p.applyGrowth(state)
		}
		state.Recompute()

		for _, d := range fossil {
			p.record(d, step(d, state), year)
		}
		for _, d := range nonFossil {
			p.record(d, step(d, state), year)
		}
		state.Recompute()

		if !state.Finite() {
			p.logger.Warn("simulation produced a non-finite value, stopping", "year", year)
			nonFinite = year
			break
		}

		simulated = append(simulated, state.Clone())
		p.logger.Log(context.Background(), logging.LevelTrace, "simulated year",
			"year", year, "all", state.All, "carbon_free", state.CarbonFree, "fossil", state.Fossil)

		if state.All < constants.MakeZero {
			p.logger.Debug("emissions reached zero", "year", year)
			break
		}
	}

	result := &Result{
		params:    p.params,
		columns:   p.series.Columns(),
		history:   p.series.Since(p.params.StartingYear),
		Simulated: simulated,
		nonFinite: nonFinite,
	}
	if id := p.params.TechnologyOutputID; id != "" {
		for _, d := range append(fossil, nonFossil...) {
			if d.tech.ID == id {
				result.TechnologyOutput = roundedUnits(d.units)
			}
		}
	}
	return result
}

func (p *Path) applyGrowth(s *State) {
	for _, ss := range p.subsectors {
		v := s.Subsectors[ss] + p.curves[ss].increment(s.Year)
		s.Subsectors[ss] = math.Max(v, 0)
	}
}

func (p *Path) record(d *deployment, out stepOutcome, year int) {
	if p.decisions == nil {
		return
	}
	event := map[string]any{
		"event":      "technology_step",
		"technology": d.tech.ID,
		"year":       year,
		"replace":    out.replace,
	}
	if out.applied {
		event["decision"] = "applied"
		event["delta"] = out.delta
		event["units"] = d.current()
	} else {
		event["decision"] = "skipped"
		event["reason"] = out.reason
	}
	p.decisions.Log(event)
}

func roundedUnits(units []float64) []int64 {
	out := make([]int64, len(units))
	for i, u := range units {
		out[i] = int64(math.RoundToEven(u))
	}
	return out
}
