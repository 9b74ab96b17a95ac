package history

import (
	"fmt"
	"math"
	"strings"

	"github.com/allcarbonfree/carbonpath/internal/constants"
	"github.com/allcarbonfree/carbonpath/internal/frame"
)

// Assemble builds a country series from a subsector emissions table and an
// energy table.
//
// The emissions table has one column per subsector (unsuffixed names, kt
// CO2e). Columns that are zero in every year are dropped. Sector totals and
// "all" are derived, everything is scaled to tons and suffixed with
// "_emissions". From the energy table only columns whose name contains
// "electricity" are kept, aligned on the emissions years, and
// carbon_free_electricity is derived from the carbon-free generation types.
func Assemble(emissions, energy *frame.Frame) (*Series, error) {
	if err := emissions.Validate(); err != nil {
		return nil, fmt.Errorf("emissions table: %w", err)
	}
	if emissions.Len() == 0 {
		return nil, ErrEmptySeries
	}

	var subsectorCols []string
	for _, c := range emissions.Columns {
		col, _ := emissions.Column(c)
		if !allZero(col) {
			subsectorCols = append(subsectorCols, c)
		}
	}
	present := make(map[string]bool, len(subsectorCols))
	for _, c := range subsectorCols {
		present[c] = true
	}

	var columns []string
	for _, c := range subsectorCols {
		columns = append(columns, constants.EmissionsColumn(c))
	}
	for _, name := range constants.SectorNames() {
		columns = append(columns, constants.EmissionsColumn(name))
	}
	columns = append(columns, constants.EmissionsColumn(constants.AllKey))

	var electricityCols []string
	energyRows := map[int]map[string]float64{}
	if energy != nil {
		if err := energy.Validate(); err != nil {
			return nil, fmt.Errorf("energy table: %w", err)
		}
		for _, c := range energy.Columns {
			if strings.Contains(c, "electricity") && c != constants.ElectricityColumn(constants.CarbonFreeKey) {
				electricityCols = append(electricityCols, c)
			}
		}
		for i, year := range energy.Index {
			energyRows[year] = energy.Row(i)
		}
	}
	columns = append(columns, electricityCols...)
	columns = append(columns, constants.ElectricityColumn(constants.CarbonFreeKey))

	records := make([]Record, emissions.Len())
	for i, year := range emissions.Index {
		src := emissions.Row(i)
		values := make(map[string]float64, len(columns))

		for _, c := range subsectorCols {
			if v, ok := src[c]; ok {
				values[constants.EmissionsColumn(c)] = v * constants.KilotonsToTons
			}
		}

		all := 0.0
		for _, sector := range constants.Sectors {
			total := 0.0
			for _, ss := range sector.Subsectors {
				if present[ss] {
					total += src[ss]
				}
			}
			values[constants.EmissionsColumn(sector.Name)] = total * constants.KilotonsToTons
			all += total
		}
		values[constants.EmissionsColumn(constants.AllKey)] = all * constants.KilotonsToTons

		row := energyRows[year]
		for _, c := range electricityCols {
			if v, ok := row[c]; ok {
				values[c] = v
			}
		}
		carbonFree := 0.0
		for _, t := range constants.CarbonFreeTypes {
			carbonFree += row[constants.ElectricityColumn(t)]
		}
		values[constants.ElectricityColumn(constants.CarbonFreeKey)] = carbonFree

		records[i] = Record{Year: year, Values: values}
	}

	return NewSeries(columns, records)
}

func allZero(values []float64) bool {
	sum := 0.0
	for _, v := range values {
		if !math.IsNaN(v) {
			sum += v
		}
	}
	return sum == 0
}
