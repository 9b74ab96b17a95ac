package mcp

import (
	"time"
)

// SimulateInput defines the input for the carbonpath_simulate tool.
// Zero years and an unset increase_energy_use fall back to the configured defaults.
type SimulateInput struct {
	Country            string   `json:"country,omitempty" jsonschema:"Country code to simulate (default from config, e.g. WRL)"`
	Technologies       []string `json:"technologies,omitempty" jsonschema:"Technology ids to deploy, at most 50"`
	StartingYear       int      `json:"starting_year,omitempty" jsonschema:"First historical year kept in the trajectory"`
	EndingYear         int      `json:"ending_year,omitempty" jsonschema:"Last simulated year"`
	IncreaseEnergyUse  *bool    `json:"increase_energy_use,omitempty" jsonschema:"Apply baseline emissions growth each year"`
	TechnologyOutputID string   `json:"technology_output_id,omitempty" jsonschema:"Technology whose yearly deployment curve is returned"`
	Name               string   `json:"name,omitempty" jsonschema:"Display name for the path"`
	Author             string   `json:"author,omitempty" jsonschema:"Author recorded on a saved path"`
	Save               bool     `json:"save,omitempty" jsonschema:"Persist the path (default: false)"`
}

// SimulateOutput defines the output for the carbonpath_simulate tool.
type SimulateOutput struct {
	PathID           string      `json:"path_id" jsonschema:"Generated path id"`
	Name             string      `json:"name" jsonschema:"Path name"`
	Country          string      `json:"country" jsonschema:"Country code"`
	Technologies     []string    `json:"technologies" jsonschema:"Technology ids in the path, sorted"`
	TotalEmissionsGt float64     `json:"total_emissions_gt" jsonschema:"Cumulative emissions in gigatons CO2e"`
	MaxCarbonFreeGW  float64     `json:"max_carbon_free_gw" jsonschema:"Peak carbon-free generation in average GW"`
	EstDegreeRise    float64     `json:"est_degree_rise" jsonschema:"Estimated warming in degrees C"`
	CarbonZeroYear   int         `json:"carbon_zero_year" jsonschema:"Year emissions reach zero, or the ending year"`
	Trajectory       *Trajectory `json:"trajectory" jsonschema:"Reduced yearly trajectory"`
	TechnologyOutput []int64     `json:"technology_output,omitempty" jsonschema:"Cumulative deployed units of technology_output_id"`
	Saved            bool        `json:"saved" jsonschema:"Whether the path was persisted"`
}

// Trajectory is a year-indexed table. Missing cells are null.
type Trajectory struct {
	Columns []string     `json:"columns"`
	Index   []int        `json:"index"`
	Data    [][]*float64 `json:"data"`
}

// TechnologiesInput defines the input for the carbonpath_technologies tool.
type TechnologiesInput struct {
	ID string `json:"id,omitempty" jsonschema:"Return only this technology"`
}

// TechnologiesOutput defines the output for the carbonpath_technologies tool.
type TechnologiesOutput struct {
	Technologies []TechnologySummary `json:"technologies" jsonschema:"Catalog technologies"`
	Count        int                 `json:"count" jsonschema:"Number of technologies"`
}

// TechnologySummary provides a simplified view of a catalog record.
type TechnologySummary struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	StartYear     int      `json:"start_year,omitempty"`
	Generation    string   `json:"generation"`
	ReplaceFossil bool     `json:"replace_fossil"`
	Subsectors    []string `json:"subsectors,omitempty"`
}

// CountriesInput defines the input for the carbonpath_countries tool.
type CountriesInput struct{}

// CountriesOutput defines the output for the carbonpath_countries tool.
type CountriesOutput struct {
	Countries []CountrySummary `json:"countries" jsonschema:"Countries with imported history"`
	Count     int              `json:"count" jsonschema:"Number of countries"`
}

// CountrySummary describes a stored country series.
type CountrySummary struct {
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	FirstYear  int       `json:"first_year"`
	LatestYear int       `json:"latest_year"`
	Subsectors []string  `json:"subsectors"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PathsInput defines the input for the carbonpath_paths tool.
type PathsInput struct {
	ID          string `json:"id,omitempty" jsonschema:"Return only this path"`
	Author      string `json:"author,omitempty" jsonschema:"Filter by author"`
	Country     string `json:"country,omitempty" jsonschema:"Filter by country code"`
	ProfileOnly bool   `json:"profile_only,omitempty" jsonschema:"Only paths published with the profile"`
	Limit       int    `json:"limit,omitempty" jsonschema:"Maximum number of paths (0 = no limit)"`
}

// PathsOutput defines the output for the carbonpath_paths tool.
type PathsOutput struct {
	Paths []PathSummary `json:"paths" jsonschema:"Saved paths, newest first"`
	Count int           `json:"count" jsonschema:"Number of paths"`
}

// PathSummary provides a list view of a saved path.
type PathSummary struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Author            string    `json:"author,omitempty"`
	Country           string    `json:"country"`
	StartingYear      int       `json:"starting_year"`
	EndingYear        int       `json:"ending_year"`
	Technologies      []string  `json:"technologies"`
	TotalSimEmissions int64     `json:"total_sim_emissions"`
	EstDegreeRise     float64   `json:"est_degree_rise"`
	CarbonZeroYear    int       `json:"carbon_zero_year"`
	CreatedAt         time.Time `json:"created_at"`
}

// ValidateInput defines the input for the carbonpath_validate tool.
type ValidateInput struct{}

// ValidateOutput defines the output for the carbonpath_validate tool.
type ValidateOutput struct {
	Valid  bool              `json:"valid" jsonschema:"Whether the store has no consistency issues"`
	Errors []ValidationIssue `json:"errors" jsonschema:"Consistency issues found"`
	Count  int               `json:"count" jsonschema:"Number of issues"`
}

// ValidationIssue is one consistency problem in the store.
type ValidationIssue struct {
	PathID string `json:"path_id"`
	Field  string `json:"field"`
	RefID  string `json:"ref_id,omitempty"`
	Issue  string `json:"issue"`
}
