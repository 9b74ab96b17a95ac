package simulation

import (
	"math"

	"github.com/allcarbonfree/carbonpath/internal/constants"
	"github.com/allcarbonfree/carbonpath/internal/history"
)

// State is one year of the projection.
//
// Sectors and Subsectors hold emissions in tons CO2e; Generation holds
// electricity by generation type in TWh. All, Electricity, CarbonFree and
// Fossil are derived by recompute. Extra carries source columns the engine
// does not model.
type State struct {
	Year       int
	Sectors    map[string]float64
	Subsectors map[string]float64
	Generation map[string]float64

	All         float64
	Electricity float64
	CarbonFree  float64
	Fossil      float64

	Extra map[string]float64
}

// StateFromRecord builds a state from a historical record.
func StateFromRecord(r history.Record) *State {
	s := &State{
		Year:       r.Year,
		Sectors:    map[string]float64{},
		Subsectors: map[string]float64{},
		Generation: map[string]float64{},
		Extra:      map[string]float64{},
	}
	for col, v := range r.Values {
		key, suffix, ok := constants.SplitColumn(col)
		switch {
		case ok && suffix == constants.EmissionsSuffix && constants.IsSubsector(key):
			s.Subsectors[key] = v
		case ok && suffix == constants.EmissionsSuffix && constants.IsSector(key):
			s.Sectors[key] = v
		case ok && suffix == constants.EmissionsSuffix && key == constants.AllKey:
			s.All = v
		case ok && suffix == constants.EmissionsSuffix && key == constants.ElectricityKey:
			s.Electricity = v
		case ok && suffix == constants.ElectricitySuffix && (constants.IsCarbonFree(key) || constants.IsFossil(key)):
			s.Generation[key] = v
		case ok && suffix == constants.ElectricitySuffix && key == constants.CarbonFreeKey:
			s.CarbonFree = v
		case ok && suffix == constants.ElectricitySuffix && key == constants.FossilKey:
			s.Fossil = v
		default:
			s.Extra[col] = v
		}
	}
	return s
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	c := *s
	c.Sectors = cloneMap(s.Sectors)
	c.Subsectors = cloneMap(s.Subsectors)
	c.Generation = cloneMap(s.Generation)
	c.Extra = cloneMap(s.Extra)
	return &c
}

// Recompute derives sector totals and the aggregates from subsectors and
// generation. A sector with none of its subsectors present totals 0.
func (s *State) Recompute() {
	all := 0.0
	for _, sector := range constants.Sectors {
		total := 0.0
		for _, ss := range sector.Subsectors {
			total += s.Subsectors[ss]
		}
		s.Sectors[sector.Name] = total
		all += total
	}
	s.All = all

	electricity := 0.0
	for _, f := range constants.FossilTypes {
		electricity += s.Generation[f] * constants.CO2LbsPerKWh[f]
	}
	s.Electricity = constants.TWhToKWh * constants.LbsToTons * electricity

	s.CarbonFree = sumOf(s.Generation, constants.CarbonFreeTypes)
	s.Fossil = sumOf(s.Generation, constants.FossilTypes)
}

// Values flattens the state into table columns.
func (s *State) Values() map[string]float64 {
	out := make(map[string]float64, len(s.Sectors)+len(s.Subsectors)+len(s.Generation)+len(s.Extra)+4)
	for k, v := range s.Extra {
		out[k] = v
	}
	for k, v := range s.Subsectors {
		out[constants.EmissionsColumn(k)] = v
	}
	for k, v := range s.Sectors {
		out[constants.EmissionsColumn(k)] = v
	}
	for k, v := range s.Generation {
		out[constants.ElectricityColumn(k)] = v
	}
	out[constants.EmissionsColumn(constants.AllKey)] = s.All
	out[constants.EmissionsColumn(constants.ElectricityKey)] = s.Electricity
	out[constants.ElectricityColumn(constants.CarbonFreeKey)] = s.CarbonFree
	out[constants.ElectricityColumn(constants.FossilKey)] = s.Fossil
	return out
}

// Finite reports whether every modeled value is a finite number.
func (s *State) Finite() bool {
	for _, m := range []map[string]float64{s.Sectors, s.Subsectors, s.Generation} {
		for _, v := range m {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	for _, v := range []float64{s.All, s.Electricity, s.CarbonFree, s.Fossil} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func cloneMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sumOf(m map[string]float64, keys []string) float64 {
	total := 0.0
	for _, k := range keys {
		total += m[k]
	}
	return total
}
