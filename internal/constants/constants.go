// Package constants provides named constants used throughout the carbonpath codebase.
// This centralizes physical conversion factors, emission factors and simulation
// thresholds so the engine never carries magic numbers.
package constants

// Emission factors for fossil electricity generation, in pounds of CO2 per kWh.
// Source: https://www.eia.gov/tools/faqs/faq.php?id=74&t=11
const (
	CoalCO2LbsPerKWh = 2.23
	GasCO2LbsPerKWh  = 0.91
	OilCO2LbsPerKWh  = 2.13
)

// CO2LbsPerKWh maps each fossil generation type to its emission factor.
var CO2LbsPerKWh = map[string]float64{
	"coal": CoalCO2LbsPerKWh,
	"gas":  GasCO2LbsPerKWh,
	"oil":  OilCO2LbsPerKWh,
}

// Unit conversions.
const (
	// TWhToKWh converts terawatt-hours to kilowatt-hours.
	TWhToKWh = 1e9

	// LbsToTons converts pounds to short tons.
	LbsToTons = 1 / 2000.0

	// TWhToGW converts a yearly energy quantity in TWh to average GW.
	TWhToGW = 1000.0 / 24 / 365

	// KWhToGW converts a yearly energy quantity in kWh to average GW.
	KWhToGW = 1e-6 / 24 / 365

	// EJToTWh converts exajoules to terawatt-hours.
	EJToTWh = 277.778

	// PJToEJ converts petajoules to exajoules.
	PJToEJ = 1e-3

	// TonToMTon converts tons to megatons.
	TonToMTon = 1e-6

	// KWhPerTon is the energy needed to remove one ton of CO2 by direct air capture.
	// Source: https://www.wri.org/insights/direct-air-capture-resource-considerations-and-costs-carbon-removal
	KWhPerTon = 2000

	// KilotonsToTons scales source emission tables (kt CO2e) to tons.
	KilotonsToTons = 1000
)

// Simulation thresholds and defaults.
const (
	// MakeZero is the effective-zero floor. Quantities below it are treated
	// as zero for division guards, saturation checks and termination.
	MakeZero = 1000

	// DefaultStartingYear is the first historical year kept in a trajectory.
	DefaultStartingYear = 2000

	// DefaultEndingYear is the last simulated year.
	DefaultEndingYear = 2100

	// GrowthFitYears is the number of trailing historical years used to fit
	// baseline emissions growth.
	GrowthFitYears = 10

	// DefaultCountry is the country code simulated when none is given.
	DefaultCountry = "WRL"
)

// Summary scalar constants.
const (
	// Emissions2010Baseline is cumulative emissions (tons CO2e) up to 2010.
	// Source: https://www.ipcc.ch/sr15/chapter/chapter-2/2-2/2-2-2/2-2-2-1/figure-2-3/
	Emissions2010Baseline = 1930 * 1e9

	// CumulativeEmissionsFromYear is the year after which simulated emissions
	// are added to Emissions2010Baseline.
	CumulativeEmissionsFromYear = 2010

	// TonsToGigatons converts tons to gigatons.
	TonsToGigatons = 1e-9

	// DegreeRisePerGt is the slope of the warming proxy per gigaton emitted.
	DegreeRisePerGt = 0.00055

	// DegreeRiseOffset is the intercept of the warming proxy.
	DegreeRiseOffset = -0.05
)

// Path and catalog limits.
const (
	// UserPathLimit is the maximum number of saved paths per author.
	UserPathLimit = 5

	// CleantechLimit is the maximum number of technologies in one path.
	CleantechLimit = 50

	// CleantechReferenceLimit is the maximum number of references per technology.
	CleantechReferenceLimit = 10

	// ProfileAuthor is the author whose paths are published with the profile.
	ProfileAuthor = "allcarbonfree"
)
