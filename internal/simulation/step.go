package simulation

import (
	"math"

	"github.com/allcarbonfree/carbonpath/internal/catalog"
	"github.com/allcarbonfree/carbonpath/internal/constants"
	"github.com/allcarbonfree/carbonpath/internal/models"
)

// deployment is the per-run state of one technology: cumulative units
// deployed per simulated year, seeded with the two historical anchors, and
// the current ceiling on yearly production.
type deployment struct {
	tech    *catalog.Technology
	units   []float64
	maxProd float64
}

func newDeployment(t *catalog.Technology) *deployment {
	return &deployment{
		tech:    t,
		units:   []float64{t.BeforeStartYearUnits, t.StartYearUnits},
		maxProd: t.MaxProd(),
	}
}

func (d *deployment) current() float64  { return d.units[len(d.units)-1] }
func (d *deployment) previous() float64 { return d.units[len(d.units)-2] }

// replaceable is the quantity the technology can still displace: fossil
// generation for fossil replacement, emissions of its subsectors otherwise.
func (d *deployment) replaceable(s *State) float64 {
	if d.tech.ReplaceFossil {
		return s.Fossil
	}
	total := 0.0
	for _, ss := range d.tech.Subsectors {
		total += s.Subsectors[ss]
	}
	return total
}

// nextDelta returns the units added this year: a logistic approach to the
// addressable market, bounded by the production ceiling. The ceiling rises
// with exponential growth of recent deployment.
func (d *deployment) nextDelta(replace float64) float64 {
	t := d.tech
	u := d.current()
	if exp := t.GrowthRate * (u - d.previous()); exp > d.maxProd {
		d.maxProd = exp
	}
	addressable := t.LimitPerc * (replace/t.LimiterUnit() + u)
	logistic := math.Max(t.SaturationRate*(addressable-u), 0)
	return math.Max(math.Min(logistic, d.maxProd), 0)
}

// stepOutcome describes what one technology did in one year.
type stepOutcome struct {
	applied bool
	reason  string
	replace float64
	delta   float64
}

// step advances one technology by one year, mutating s in place.
func step(d *deployment, s *State) stepOutcome {
	t := d.tech
	replace := d.replaceable(s)
	if replace <= constants.MakeZero {
		return stepOutcome{reason: "nothing left to replace", replace: replace}
	}
	if t.StartYear >= s.Year {
		return stepOutcome{reason: "not started", replace: replace}
	}

	delta := d.nextDelta(replace)

	if len(t.Subsectors) > 0 {
		delta = reduceSubsectors(t, s, replace, delta)
	}
	if t.Generation.Kind == models.CarbonFreeGeneration && t.ReplaceFossil && delta*t.ElectricEnergyPerUnit > replace {
		delta = replace / t.ElectricEnergyPerUnit
	}

	d.units = append(d.units, d.current()+delta)

	if t.Generation.IsFossilList() {
		addFossilDemand(t, s, replace, delta)
	} else {
		addCarbonFree(t, s, delta)
	}
	s.Recompute()

	return stepOutcome{applied: true, replace: replace, delta: delta}
}

// reduceSubsectors removes delta units worth of CO2 from the targeted
// subsectors in proportion to their current emissions. The returned delta
// is capped so that no more than replace is removed.
func reduceSubsectors(t *catalog.Technology, s *State, replace, delta float64) float64 {
	if t.CO2ReducedPerUnit > 0 && delta*t.CO2ReducedPerUnit > replace {
		delta = replace / t.CO2ReducedPerUnit
	}

	total := 0.0
	for _, ss := range t.Subsectors {
		total += s.Subsectors[ss]
	}
	if total <= 0 {
		return delta
	}

	reduced := delta * t.CO2ReducedPerUnit
	shares := make(map[string]float64, len(t.Subsectors))
	for _, ss := range t.Subsectors {
		shares[ss] = s.Subsectors[ss] / total
	}
	for _, ss := range t.Subsectors {
		v := s.Subsectors[ss] - shares[ss]*reduced
		if v < constants.MakeZero {
			v = 0
		}
		s.Subsectors[ss] = v
	}
	return delta
}

// fossilShares returns each fossil type's share of fossil generation, in
// constants.FossilTypes order. With no fossil generation all new demand is
// met by gas.
func fossilShares(s *State) []float64 {
	shares := make([]float64, len(constants.FossilTypes))
	for i, f := range constants.FossilTypes {
		switch {
		case s.Fossil > 0:
			shares[i] = s.Generation[f] / s.Fossil
		case f == constants.GasType:
			shares[i] = 1
		}
	}
	return shares
}

// addFossilDemand adds the electricity a fossil-consuming technology draws
// to the fossil mix, along with the emissions of generating it.
func addFossilDemand(t *catalog.Technology, s *State, replace, delta float64) {
	if replace-delta*t.LimiterUnit() < constants.MakeZero {
		delta = 0
	}
	energy := delta * t.ElectricEnergyPerUnit
	if energy == 0 {
		return
	}

	_, hasHeat := s.Subsectors[constants.ElectricitySubsector]
	for i, share := range fossilShares(s) {
		f := constants.FossilTypes[i]
		added := share * energy
		s.Generation[f] = math.Max(s.Generation[f]+added, 0)
		if hasHeat {
			s.Subsectors[constants.ElectricitySubsector] += constants.CO2LbsPerKWh[f] * added * constants.TWhToKWh * constants.LbsToTons
		}
	}
}

// addCarbonFree adds clean generation and, for fossil replacement, removes
// the same energy from the fossil mix along with its emissions. Generation
// is floored at zero; the heat subsector snaps to zero below the floor.
func addCarbonFree(t *catalog.Technology, s *State, delta float64) {
	energy := delta * t.ElectricEnergyPerUnit
	s.Generation[t.Generation.Source] += energy

	if !t.ReplaceFossil || s.Fossil <= 0 {
		return
	}

	heat, hasHeat := s.Subsectors[constants.ElectricitySubsector]
	for i, share := range fossilShares(s) {
		f := constants.FossilTypes[i]
		cut := share * energy
		s.Generation[f] = math.Max(s.Generation[f]-cut, 0)

		if !hasHeat {
			continue
		}
		if heat > 0 {
			heat -= constants.CO2LbsPerKWh[f] * cut * constants.TWhToKWh * constants.LbsToTons
		}
		if heat < constants.MakeZero {
			heat = 0
		}
	}
	if hasHeat {
		s.Subsectors[constants.ElectricitySubsector] = heat
	}
}
