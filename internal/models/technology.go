package models

// TechnologyRecord is a clean technology as stored in the catalog.
//
// Required numeric fields are pointers so that a missing field can be told
// apart from an explicit zero. Validation happens when the catalog adapter
// normalizes the record, not here.
type TechnologyRecord struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// StartYear is the first year after which deployment may displace emissions.
	StartYear *int `json:"start_year" yaml:"start_year"`

	// GrowthRate is the exponential ramp coefficient on yearly production.
	GrowthRate *float64 `json:"growth_rate" yaml:"growth_rate"`

	// SaturationRate is the logistic approach coefficient.
	SaturationRate *float64 `json:"saturation_rate" yaml:"saturation_rate"`

	// LimitPerc is the fraction of the theoretical maximum that is addressable.
	LimitPerc *float64 `json:"limit_perc" yaml:"limit_perc"`

	// BeforeStartYearUnits and StartYearUnits anchor historical deployment.
	BeforeStartYearUnits *float64 `json:"before_start_year_units" yaml:"before_start_year_units"`
	StartYearUnits       *float64 `json:"start_year_units" yaml:"start_year_units"`

	ElectricGenerationType GenerationType `json:"electric_generation_type" yaml:"electric_generation_type"`

	// ReplaceFossil marks a clean generation source that displaces fossil
	// generation, as opposed to a direct emissions-reduction measure.
	ReplaceFossil bool `json:"replace_fossil" yaml:"replace_fossil"`

	// CO2ReducedPerUnit is tons of CO2e avoided per deployed unit.
	CO2ReducedPerUnit *float64 `json:"co2_reduced_per_unit,omitempty" yaml:"co2_reduced_per_unit,omitempty"`

	// ElectricEnergyPerUnit is TWh generated (or consumed) per deployed unit.
	ElectricEnergyPerUnit *float64 `json:"electric_energy_per_unit,omitempty" yaml:"electric_energy_per_unit,omitempty"`

	AllSubsectors SubsectorList `json:"all_subsectors,omitempty" yaml:"all_subsectors,omitempty"`

	// References are citation URLs for the record's parameters.
	References []string `json:"references,omitempty" yaml:"references,omitempty"`
}

// Float returns a pointer to v, for building records in code.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for building records in code.
func Int(v int) *int { return &v }
