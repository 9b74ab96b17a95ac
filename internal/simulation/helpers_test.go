package simulation

import (
	"math"
	"sort"
	"testing"

	"github.com/allcarbonfree/carbonpath/internal/catalog"
	"github.com/allcarbonfree/carbonpath/internal/history"
	"github.com/allcarbonfree/carbonpath/internal/models"
)

const (
	firstYear  = 2011
	latestYear = 2020
)

// baseValues is a small world: two transport/industry subsectors, the
// electricity subsector, and a coal/gas heavy generation mix.
func baseValues() map[string]float64 {
	return map[string]float64{
		"Road_emissions":               3e10,
		"Cement_emissions":             2e10,
		"Electricity & heat_emissions": 1e11,
		"Buildings_emissions":          0,
		"Industry_emissions":           2e10,
		"AFOLU_emissions":              0,
		"Transport_emissions":          3e10,
		"Energy systems_emissions":     1e11,
		"all_emissions":                1.5e11,
		"coal_electricity":             10000,
		"gas_electricity":              5000,
		"oil_electricity":              0,
		"solar_electricity":            500,
		"wind_electricity":             500,
		"carbon_free_electricity":      1000,
		"fossil_electricity":           15000,
		"population":                   7e9,
	}
}

// buildSeries creates a contiguous series from firstYear to latestYear.
// adjust may change the values of each year in place.
func buildSeries(t *testing.T, values map[string]float64, adjust func(year int, v map[string]float64)) *history.Series {
	t.Helper()
	columns := make([]string, 0, len(values))
	for c := range values {
		columns = append(columns, c)
	}
	sort.Strings(columns)

	var records []history.Record
	for year := firstYear; year <= latestYear; year++ {
		v := make(map[string]float64, len(values))
		for k, x := range values {
			v[k] = x
		}
		if adjust != nil {
			adjust(year, v)
		}
		records = append(records, history.Record{Year: year, Values: v})
	}
	s, err := history.NewSeries(columns, records)
	if err != nil {
		t.Fatalf("NewSeries: %v", err)
	}
	return s
}

func flatSeries(t *testing.T) *history.Series {
	return buildSeries(t, baseValues(), nil)
}

func params(ending int, growth bool) Params {
	return Params{StartingYear: firstYear, EndingYear: ending, IncreaseEnergyUse: growth}
}

func mustPath(t *testing.T, s *history.Series, sel catalog.Selection, p Params, opts ...Option) *Path {
	t.Helper()
	path, err := NewPath(s, sel, p, opts...)
	if err != nil {
		t.Fatalf("NewPath: %v", err)
	}
	return path
}

func mustAdapt(t *testing.T, s *history.Series, records ...models.TechnologyRecord) catalog.Selection {
	t.Helper()
	sel, err := catalog.Adapt(records, s.Subsectors())
	if err != nil {
		t.Fatalf("Adapt: %v", err)
	}
	return sel
}

// solarFarm grows by exactly 1000 units (1000 TWh) a year while fossil
// generation lasts.
func solarFarm() models.TechnologyRecord {
	return models.TechnologyRecord{
		ID:                     "solar-farm",
		StartYear:              models.Int(2000),
		GrowthRate:             models.Float(0),
		SaturationRate:         models.Float(0.5),
		LimitPerc:              models.Float(1),
		BeforeStartYearUnits:   models.Float(0),
		StartYearUnits:         models.Float(1000),
		ElectricGenerationType: models.CarbonFree("solar"),
		ReplaceFossil:          true,
		ElectricEnergyPerUnit:  models.Float(1),
	}
}

// electricCars cut road emissions by 1000 tons a year and draw
// 0.001 TWh of fossil electricity for it.
func electricCars() models.TechnologyRecord {
	return models.TechnologyRecord{
		ID:                     "electric-cars",
		StartYear:              models.Int(2000),
		GrowthRate:             models.Float(0),
		SaturationRate:         models.Float(1),
		LimitPerc:              models.Float(1),
		BeforeStartYearUnits:   models.Float(0),
		StartYearUnits:         models.Float(1000),
		ElectricGenerationType: models.FossilType,
		CO2ReducedPerUnit:      models.Float(1),
		ElectricEnergyPerUnit:  models.Float(1e-6),
		AllSubsectors:          models.SubsectorList{"Road"},
	}
}

// eliminator removes every targeted subsector in its first active year.
func eliminator(subsectors ...string) models.TechnologyRecord {
	return models.TechnologyRecord{
		ID:                     "eliminator",
		StartYear:              models.Int(2000),
		GrowthRate:             models.Float(0),
		SaturationRate:         models.Float(1),
		LimitPerc:              models.Float(1),
		BeforeStartYearUnits:   models.Float(0),
		StartYearUnits:         models.Float(1e13),
		ElectricGenerationType: models.NoGenerationType,
		CO2ReducedPerUnit:      models.Float(1),
		AllSubsectors:          subsectors,
	}
}

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
