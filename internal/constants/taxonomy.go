package constants

import "strings"

// Column suffixes used by historical series and trajectory tables.
const (
	EmissionsSuffix   = "_emissions"
	ElectricitySuffix = "_electricity"
	YearColumn        = "year"
)

// Aggregate keys.
const (
	AllKey         = "all"
	ElectricityKey = "electricity"
	CarbonFreeKey  = "carbon_free"
	FossilKey      = "fossil"
)

// ElectricitySubsector is the subsector whose emissions track fossil generation.
const ElectricitySubsector = "Electricity & heat"

// GasType receives the full fossil share when fossil generation is zero.
const GasType = "gas"

// Sector is a named group of emitting subsectors.
type Sector struct {
	Name       string
	Subsectors []string
}

// Sectors is the fixed emissions taxonomy, in reporting order.
var Sectors = []Sector{
	{Name: "Buildings", Subsectors: []string{"Non-residential", "Non-CO2 (all buildings)", "Residential"}},
	{Name: "Industry", Subsectors: []string{"Cement", "Metals", "Chemicals", "Waste", "Other (industry)"}},
	{Name: "AFOLU", Subsectors: []string{
		"Rice cultivation (CH4)", "Biomass burning (CH4, N2O)", "Synthetic fertilizer application (N2O)",
		"Manure management (N2O, CH4)", "Enteric Fermentation (CH4)", "Managed soils and pasture (CO2, N2O)",
	}},
	{Name: "Transport", Subsectors: []string{
		"International Shipping", "Other (transport)", "Inland Shipping", "International Aviation",
		"Rail", "Domestic Aviation", "Road",
	}},
	{Name: "Energy systems", Subsectors: []string{
		"Other (energy systems)", "Coal mining fugitive emissions", ElectricitySubsector,
		"Oil and gas fugitive emissions", "Petroleum refining",
	}},
}

// Generation type identifiers.
var (
	CarbonFreeTypes = []string{"hydro", "nuclear", "solar", "wind", "other_renewable"}
	FossilTypes     = []string{"coal", "gas", "oil"}
)

var generationLongNames = map[string]string{
	"hydro":           "Hydroelectric",
	"nuclear":         "Nuclear",
	"solar":           "Solar",
	"wind":            "Wind",
	"other_renewable": "Other Renewable",
	"coal":            "Coal",
	"gas":             "Natural Gas",
	"oil":             "Oil",
	"fossil":          "Fossil",
	"":                "Does not Generate Electricity",
}

// GenerationLongName returns the display name of a generation type id.
func GenerationLongName(id string) string {
	if name, ok := generationLongNames[id]; ok {
		return name
	}
	return id
}

var (
	sectorSet     = map[string]bool{}
	subsectorSet  = map[string]bool{}
	carbonFreeSet = map[string]bool{}
	fossilSet     = map[string]bool{}
	allSubsectors []string
)

func init() {
	for _, sector := range Sectors {
		sectorSet[sector.Name] = true
		for _, ss := range sector.Subsectors {
			subsectorSet[ss] = true
			allSubsectors = append(allSubsectors, ss)
		}
	}
	for _, t := range CarbonFreeTypes {
		carbonFreeSet[t] = true
	}
	for _, t := range FossilTypes {
		fossilSet[t] = true
	}
}

// SectorNames returns sector names in taxonomy order.
func SectorNames() []string {
	names := make([]string, len(Sectors))
	for i, s := range Sectors {
		names[i] = s.Name
	}
	return names
}

// Subsectors returns every subsector in taxonomy order.
func Subsectors() []string {
	return append([]string(nil), allSubsectors...)
}

func IsSector(name string) bool     { return sectorSet[name] }
func IsSubsector(name string) bool  { return subsectorSet[name] }
func IsCarbonFree(name string) bool { return carbonFreeSet[name] }
func IsFossil(name string) bool     { return fossilSet[name] }

// EmissionsColumn returns the table column for an emissions key.
func EmissionsColumn(key string) string { return key + EmissionsSuffix }

// ElectricityColumn returns the table column for a generation key.
func ElectricityColumn(key string) string { return key + ElectricitySuffix }

// SplitColumn splits a table column into its key and suffix.
// Columns without a known suffix return ok=false.
func SplitColumn(column string) (key, suffix string, ok bool) {
	if k, found := strings.CutSuffix(column, EmissionsSuffix); found {
		return k, EmissionsSuffix, true
	}
	if k, found := strings.CutSuffix(column, ElectricitySuffix); found {
		return k, ElectricitySuffix, true
	}
	return "", "", false
}

// LiteColumns is the reduced trajectory column set published with a path.
var LiteColumns = []string{
	"carbon_free_electricity",
	"Buildings_emissions",
	"Industry_emissions",
	"AFOLU_emissions",
	"Transport_emissions",
	"Energy systems_emissions",
}
