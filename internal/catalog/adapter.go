package catalog

import (
	"errors"

	"github.com/allcarbonfree/carbonpath/internal/constants"
	"github.com/allcarbonfree/carbonpath/internal/models"
)

// Technology is a normalized, immutable technology ready for simulation.
// Per-run deployment state lives in the engine, never here.
type Technology struct {
	ID   string
	Name string

	StartYear      int
	GrowthRate     float64
	SaturationRate float64
	LimitPerc      float64

	BeforeStartYearUnits float64
	StartYearUnits       float64

	Generation    models.GenerationType
	ReplaceFossil bool

	CO2ReducedPerUnit     float64
	ElectricEnergyPerUnit float64

	// Subsectors are the targeted subsectors present in the country,
	// deduplicated and in taxonomy order.
	Subsectors []string
}

// LimiterUnit is the per-unit quantity that bounds the addressable market:
// energy per unit for fossil replacement, CO2 per unit otherwise.
func (t *Technology) LimiterUnit() float64 {
	if t.ReplaceFossil {
		return t.ElectricEnergyPerUnit
	}
	return t.CO2ReducedPerUnit
}

// MaxProd is the initial ceiling on yearly production.
func (t *Technology) MaxProd() float64 {
	return t.StartYearUnits - t.BeforeStartYearUnits
}

// Selection is a set of technologies split by execution pass.
type Selection struct {
	// Fossil holds fossil-generation and non-generating technologies.
	Fossil []*Technology
	// NonFossil holds carbon-free generation technologies.
	NonFossil []*Technology
}

// Len returns the number of technologies in both passes.
func (s Selection) Len() int { return len(s.Fossil) + len(s.NonFossil) }

// IDs returns technology ids, fossil pass first.
func (s Selection) IDs() []string {
	ids := make([]string, 0, s.Len())
	for _, t := range s.Fossil {
		ids = append(ids, t.ID)
	}
	for _, t := range s.NonFossil {
		ids = append(ids, t.ID)
	}
	return ids
}

// Find returns the technology with the given id.
func (s Selection) Find(id string) (*Technology, bool) {
	for _, list := range [][]*Technology{s.Fossil, s.NonFossil} {
		for _, t := range list {
			if t.ID == id {
				return t, true
			}
		}
	}
	return nil, false
}

// Adapt normalizes records and splits them into the fossil and non-fossil
// passes, preserving input order within each. available is the set of
// subsectors the country reports; nil means every taxonomy subsector.
// All configuration problems are returned together.
func Adapt(records []models.TechnologyRecord, available []string) (Selection, error) {
	var sel Selection
	var errs []error
	for _, r := range records {
		t, err := NewTechnology(r, available)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if t.Generation.IsFossilList() {
			sel.Fossil = append(sel.Fossil, t)
		} else {
			sel.NonFossil = append(sel.NonFossil, t)
		}
	}
	if len(errs) > 0 {
		return Selection{}, errors.Join(errs...)
	}
	return sel, nil
}

// NewTechnology normalizes one record.
func NewTechnology(r models.TechnologyRecord, available []string) (*Technology, error) {
	missing := func(field string) error {
		return &ConfigurationError{TechnologyID: r.ID, Field: field, Reason: "missing"}
	}
	switch {
	case r.StartYear == nil:
		return nil, missing("start_year")
	case r.GrowthRate == nil:
		return nil, missing("growth_rate")
	case r.SaturationRate == nil:
		return nil, missing("saturation_rate")
	case r.LimitPerc == nil:
		return nil, missing("limit_perc")
	case r.BeforeStartYearUnits == nil:
		return nil, missing("before_start_year_units")
	case r.StartYearUnits == nil:
		return nil, missing("start_year_units")
	}

	t := &Technology{
		ID:                    r.ID,
		Name:                  r.Name,
		StartYear:             *r.StartYear,
		GrowthRate:            *r.GrowthRate,
		SaturationRate:        *r.SaturationRate,
		LimitPerc:             *r.LimitPerc,
		BeforeStartYearUnits:  *r.BeforeStartYearUnits,
		StartYearUnits:        *r.StartYearUnits,
		Generation:            r.ElectricGenerationType,
		ReplaceFossil:         r.ReplaceFossil,
		CO2ReducedPerUnit:     deref(r.CO2ReducedPerUnit),
		ElectricEnergyPerUnit: deref(r.ElectricEnergyPerUnit),
		Subsectors:            filterSubsectors(r.AllSubsectors, available),
	}

	if t.LimiterUnit() <= 0 {
		field := "co2_reduced_per_unit"
		if t.ReplaceFossil {
			field = "electric_energy_per_unit"
		}
		return nil, &ConfigurationError{TechnologyID: r.ID, Field: field, Reason: "must be positive"}
	}
	if t.ReplaceFossil && t.Generation.Kind == models.FossilGeneration {
		return nil, &ConfigurationError{
			TechnologyID: r.ID,
			Field:        "replace_fossil",
			Reason:       "a fossil generation type cannot replace fossil generation",
		}
	}
	return t, nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// filterSubsectors keeps known subsectors that the country reports,
// in taxonomy order.
func filterSubsectors(requested []string, available []string) []string {
	want := make(map[string]bool, len(requested))
	for _, ss := range requested {
		want[ss] = true
	}
	var have map[string]bool
	if available != nil {
		have = make(map[string]bool, len(available))
		for _, ss := range available {
			have[ss] = true
		}
	}

	var out []string
	for _, ss := range constants.Subsectors() {
		if !want[ss] {
			continue
		}
		if have != nil && !have[ss] {
			continue
		}
		out = append(out, ss)
	}
	return out
}
