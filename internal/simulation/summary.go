package simulation

import (
	"sort"

	"github.com/allcarbonfree/carbonpath/internal/constants"
	"github.com/shopspring/decimal"
)

// Summary holds the scalars reported for a completed path.
type Summary struct {
	// TotalEmissionsGt is cumulative emissions in gigatons: a fixed
	// pre-2010 budget plus every trajectory year after 2010.
	TotalEmissionsGt float64 `json:"total_emissions_gt"`

	// MaxCarbonFreeGW is peak carbon-free generation as average GW.
	MaxCarbonFreeGW float64 `json:"max_carbon_free_gw"`

	// EstDegreeRise is a linear temperature-rise proxy, one decimal.
	EstDegreeRise float64 `json:"est_degree_rise"`

	// CarbonZeroYear is the last simulated year: the first year total
	// emissions fell below the floor, or the ending year.
	CarbonZeroYear int `json:"carbon_zero_year"`
}

// Summary computes the summary scalars over the full trajectory.
func (r *Result) Summary() Summary {
	total := constants.Emissions2010Baseline
	maxCF := 0.0
	for _, pt := range r.points() {
		if pt.year > constants.CumulativeEmissionsFromYear {
			total += pt.all
		}
		if pt.carbonFree > maxCF {
			maxCF = pt.carbonFree
		}
	}
	totalGt := total * constants.TonsToGigatons

	rise, _ := decimal.NewFromFloat(totalGt).
		Mul(decimal.NewFromFloat(constants.DegreeRisePerGt)).
		Add(decimal.NewFromFloat(constants.DegreeRiseOffset)).
		Round(1).
		Float64()

	return Summary{
		TotalEmissionsGt: totalGt,
		MaxCarbonFreeGW:  maxCF * constants.TWhToGW,
		EstDegreeRise:    rise,
		CarbonZeroYear:   r.LastYear(),
	}
}

// TotalEmissionsInt truncates cumulative emissions to whole gigatons.
func (s Summary) TotalEmissionsInt() int64 {
	return decimal.NewFromFloat(s.TotalEmissionsGt).IntPart()
}

// MaxCarbonFreeInt truncates peak carbon-free generation to whole GW.
func (s Summary) MaxCarbonFreeInt() int64 {
	return decimal.NewFromFloat(s.MaxCarbonFreeGW).IntPart()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
