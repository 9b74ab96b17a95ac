package models

import (
	"encoding/json"
	"time"
)

// PathRecord is a saved simulation result: the selected technologies, the
// trajectory tables and the summary scalars.
type PathRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Author       string    `json:"author,omitempty"`
	CountryCode  string    `json:"country_code"`
	StartingYear int       `json:"starting_year"`
	EndingYear   int       `json:"ending_year"`
	CleantechIDs []string  `json:"cleantech_ids"`
	CreatedAt    time.Time `json:"created_at"`

	// CountryDF is the reduced trajectory in split-orient JSON.
	CountryDF json.RawMessage `json:"country_df"`

	// CountryDFFull is the full trajectory; empty unless requested.
	CountryDFFull json.RawMessage `json:"country_df_full,omitempty"`

	TotalSimEmissions        int64   `json:"total_sim_emissions"`
	MaxCarbonFreeElectricity int64   `json:"max_carbon_free_electricity"`
	EstDegreeRise            float64 `json:"est_degree_rise"`
	CarbonZeroYear           int     `json:"carbon_zero_year"`

	// CleantechAnnualOutput is the deployment curve of one technology as a
	// JSON array; empty unless requested.
	CleantechAnnualOutput json.RawMessage `json:"cleantech_annual_output,omitempty"`

	IncludeWithProfile bool `json:"include_with_profile"`
}
