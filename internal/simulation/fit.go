package simulation

import (
	"fmt"
	"math"

	"github.com/allcarbonfree/carbonpath/internal/constants"
	"github.com/allcarbonfree/carbonpath/internal/history"
	"gonum.org/v1/gonum/stat"
)

// growthCurve is a log-linear baseline fitted to a subsector's recent
// history: value - min(value) ~ slope * ln(year - min(year) + 1).
type growthCurve struct {
	slope  float64
	latest int
}

// increment returns the baseline growth from year-1 to year. The curve is
// extended as if the fit always spanned GrowthFitYears, even when the
// series is shorter.
func (g growthCurve) increment(year int) float64 {
	if g.slope == 0 {
		return 0
	}
	x := float64(year - g.latest + constants.GrowthFitYears)
	return g.slope * (math.Log(x+1) - math.Log(x))
}

// fitGrowth fits one curve per subsector over the trailing window.
func fitGrowth(series *history.Series, subsectors []string) (map[string]growthCurve, error) {
	window := series.Tail(constants.GrowthFitYears)
	curves := make(map[string]growthCurve, len(subsectors))
	for _, ss := range subsectors {
		c, err := fitOne(window, ss, series.LatestYear())
		if err != nil {
			return nil, err
		}
		curves[ss] = c
	}
	return curves, nil
}

func fitOne(window []history.Record, subsector string, latest int) (growthCurve, error) {
	if len(window) < 2 {
		return growthCurve{}, &NumericPreconditionError{
			Subsector: subsector,
			Reason:    fmt.Sprintf("need at least 2 historical years, have %d", len(window)),
		}
	}

	column := constants.EmissionsColumn(subsector)
	ys := make([]float64, len(window))
	minY := math.Inf(1)
	for i, r := range window {
		v, ok := r.Value(column)
		if !ok {
			return growthCurve{}, &NumericPreconditionError{
				Subsector: subsector,
				Reason:    fmt.Sprintf("missing value in %d", r.Year),
			}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return growthCurve{}, &NumericPreconditionError{
				Subsector: subsector,
				Reason:    fmt.Sprintf("non-finite value in %d", r.Year),
			}
		}
		ys[i] = v
		minY = math.Min(minY, v)
	}

	minYear := window[0].Year
	xs := make([]float64, len(window))
	for i, r := range window {
		xs[i] = math.Log(float64(r.Year-minYear) + 1)
		ys[i] -= minY
	}

	_, slope := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return growthCurve{}, &NumericPreconditionError{
			Subsector: subsector,
			Reason:    "fit produced a non-finite slope",
		}
	}
	return growthCurve{slope: slope, latest: latest}, nil
}
