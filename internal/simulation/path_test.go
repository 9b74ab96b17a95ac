package simulation

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/allcarbonfree/carbonpath/internal/catalog"
	"github.com/allcarbonfree/carbonpath/internal/constants"
	"github.com/allcarbonfree/carbonpath/internal/history"
	"github.com/allcarbonfree/carbonpath/internal/logging"
	"github.com/allcarbonfree/carbonpath/internal/models"
)

func TestNewPath_SetupErrors(t *testing.T) {
	s := flatSeries(t)

	tests := []struct {
		name   string
		series *history.Series
		params Params
	}{
		{"nil series", nil, params(2100, true)},
		{"ending before starting", s, Params{StartingYear: 2015, EndingYear: 2014}},
		{"starting after latest", s, Params{StartingYear: latestYear + 1, EndingYear: 2100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPath(tt.series, catalog.Selection{}, tt.params)
			var setupErr *SetupError
			if !errors.As(err, &setupErr) {
				t.Errorf("NewPath() error = %v, want *SetupError", err)
			}
		})
	}
}

func TestNewPath_NilSeriesWrapsEmpty(t *testing.T) {
	_, err := NewPath(nil, catalog.Selection{}, DefaultParams())
	if !errors.Is(err, history.ErrEmptySeries) {
		t.Errorf("NewPath() error = %v, want ErrEmptySeries in chain", err)
	}
}

func TestNewPath_NumericPreconditions(t *testing.T) {
	t.Run("single year", func(t *testing.T) {
		s, err := history.NewSeries([]string{"Road_emissions"}, []history.Record{
			{Year: 2020, Values: map[string]float64{"Road_emissions": 1e9}},
		})
		if err != nil {
			t.Fatalf("NewSeries: %v", err)
		}
		_, err = NewPath(s, catalog.Selection{}, Params{StartingYear: 2020, EndingYear: 2030})
		var numErr *NumericPreconditionError
		if !errors.As(err, &numErr) || numErr.Subsector != "Road" {
			t.Errorf("NewPath() error = %v, want NumericPreconditionError for Road", err)
		}
	})

	t.Run("missing cell in window", func(t *testing.T) {
		s := buildSeries(t, baseValues(), func(year int, v map[string]float64) {
			if year == 2018 {
				delete(v, "Cement_emissions")
			}
		})
		_, err := NewPath(s, catalog.Selection{}, params(2100, true))
		var numErr *NumericPreconditionError
		if !errors.As(err, &numErr) || numErr.Subsector != "Cement" {
			t.Errorf("NewPath() error = %v, want NumericPreconditionError for Cement", err)
		}
	})

	t.Run("non-finite cell", func(t *testing.T) {
		s := buildSeries(t, baseValues(), func(year int, v map[string]float64) {
			if year == latestYear {
				v["Road_emissions"] = math.Inf(1)
			}
		})
		_, err := NewPath(s, catalog.Selection{}, params(2100, true))
		var numErr *NumericPreconditionError
		if !errors.As(err, &numErr) {
			t.Errorf("NewPath() error = %v, want NumericPreconditionError", err)
		}
	})
}

func TestSimulate_ZeroTechnologyBaseline(t *testing.T) {
	s := flatSeries(t)
	result := mustPath(t, s, catalog.Selection{}, params(2100, true)).Simulate()

	if got, want := len(result.Simulated), 2100-latestYear; got != want {
		t.Fatalf("simulated %d years, want %d", got, want)
	}
	for _, st := range result.Simulated {
		if !near(st.All, 1.5e11, 1e-12) {
			t.Errorf("%d: all = %v, want flat 1.5e11", st.Year, st.All)
		}
		if st.Extra["population"] != 7e9 {
			t.Errorf("%d: extra column not carried forward", st.Year)
		}
	}
	if got := result.Summary().CarbonZeroYear; got != 2100 {
		t.Errorf("CarbonZeroYear = %d, want 2100", got)
	}
	AssertConserved(t, result)
	AssertNonNegative(t, result)
	AssertContiguous(t, result)
}

func TestSimulate_BaselineGrowth(t *testing.T) {
	s := buildSeries(t, baseValues(), func(year int, v map[string]float64) {
		v["Road_emissions"] += float64(year-firstYear) * 1e9
	})

	path := mustPath(t, s, catalog.Selection{}, params(2030, true))
	curve := path.curves["Road"]
	if curve.slope <= 0 {
		t.Fatalf("Road slope = %v, want positive", curve.slope)
	}

	result := path.Simulate()
	prev := s.Latest().Values["Road_emissions"]
	prevStep := math.Inf(1)
	for _, st := range result.Simulated {
		road := st.Subsectors["Road"]
		stepSize := road - prev
		if stepSize <= 0 {
			t.Errorf("%d: Road did not grow (%v -> %v)", st.Year, prev, road)
		}
		if stepSize >= prevStep {
			t.Errorf("%d: growth step %v not decreasing (previous %v)", st.Year, stepSize, prevStep)
		}
		prev, prevStep = road, stepSize
	}

	first := result.Simulated[0].Subsectors["Road"] - s.Latest().Values["Road_emissions"]
	want := curve.slope * (math.Log(12) - math.Log(11))
	if !near(first, want, 1e-9) {
		t.Errorf("first increment = %v, want %v", first, want)
	}

	// Flat subsectors fit a zero slope and stay put.
	if got := result.Final().Subsectors["Cement"]; got != 2e10 {
		t.Errorf("Cement = %v, want 2e10", got)
	}
}

func TestSimulate_IncreaseEnergyUseDisabled(t *testing.T) {
	s := buildSeries(t, baseValues(), func(year int, v map[string]float64) {
		v["Road_emissions"] += float64(year-firstYear) * 1e9
	})
	result := mustPath(t, s, catalog.Selection{}, params(2040, false)).Simulate()

	latestRoad := s.Latest().Values["Road_emissions"]
	for _, st := range result.Simulated {
		if st.Subsectors["Road"] != latestRoad {
			t.Errorf("%d: Road = %v, want %v", st.Year, st.Subsectors["Road"], latestRoad)
		}
	}
}

func TestSimulate_IdempotentRestart(t *testing.T) {
	s := buildSeries(t, baseValues(), func(year int, v map[string]float64) {
		v["Cement_emissions"] += float64(year-firstYear) * 5e8
	})
	sel := mustAdapt(t, s, solarFarm(), electricCars())
	path := mustPath(t, s, sel, params(2100, true))

	first := path.Simulate()
	second := path.Simulate()
	AssertSameTrajectory(t, first, second)

	// The catalog technology itself is untouched by either run.
	tech, _ := sel.Find("solar-farm")
	if tech.MaxProd() != 1000 {
		t.Errorf("technology mutated: MaxProd() = %v", tech.MaxProd())
	}
}

func TestSimulate_SingleCleanTechnology(t *testing.T) {
	s := flatSeries(t)
	p := params(2030, false)
	p.TechnologyOutputID = "solar-farm"
	result := mustPath(t, s, mustAdapt(t, s, solarFarm()), p).Simulate()

	y1 := result.Simulated[0]
	if !near(y1.Generation["solar"], 1500, 1e-12) {
		t.Errorf("solar = %v, want 1500", y1.Generation["solar"])
	}
	if !near(y1.Generation["coal"], 10000-2000.0/3, 1e-12) {
		t.Errorf("coal = %v, want %v", y1.Generation["coal"], 10000-2000.0/3)
	}
	if !near(y1.Generation["gas"], 5000-1000.0/3, 1e-12) {
		t.Errorf("gas = %v, want %v", y1.Generation["gas"], 5000-1000.0/3)
	}
	if !near(y1.Fossil+y1.CarbonFree, 16000, 1e-12) {
		t.Errorf("fossil + carbon free = %v, want 16000 (energy preserved)", y1.Fossil+y1.CarbonFree)
	}

	cut := (2.23*2000.0/3 + 0.91*1000.0/3) * constants.TWhToKWh * constants.LbsToTons
	if got := y1.Subsectors[constants.ElectricitySubsector]; !near(got, 1e11-cut, 1e-12) {
		t.Errorf("Electricity & heat = %v, want %v", got, 1e11-cut)
	}
	wantElec := constants.TWhToKWh * constants.LbsToTons * (2.23*y1.Generation["coal"] + 0.91*y1.Generation["gas"])
	if !near(y1.Electricity, wantElec, 1e-12) {
		t.Errorf("Electricity = %v, want %v", y1.Electricity, wantElec)
	}

	if want := []int64{0, 1000, 2000, 3000, 4000}; !reflect.DeepEqual(result.TechnologyOutput[:5], want) {
		t.Errorf("TechnologyOutput = %v, want prefix %v", result.TechnologyOutput, want)
	}
	if got, want := len(result.TechnologyOutput), 2+len(result.Simulated); got != want {
		t.Errorf("len(TechnologyOutput) = %d, want %d", got, want)
	}
	AssertConserved(t, result)
	AssertNonNegative(t, result)
}

func TestSimulate_CleanTechnologyExhaustsFossil(t *testing.T) {
	s := flatSeries(t)
	rec := solarFarm()
	rec.SaturationRate = floatPtr(1)
	rec.LimitPerc = floatPtr(2)
	rec.StartYearUnits = floatPtr(1e5)
	result := mustPath(t, s, mustAdapt(t, s, rec), params(2030, false)).Simulate()

	y1 := result.Simulated[0]
	if y1.Fossil > 1e-6 {
		t.Errorf("fossil = %v, want 0 once displaced", y1.Fossil)
	}
	// Capped at the fossil generation it can replace.
	if !near(y1.Generation["solar"], 15500, 1e-12) {
		t.Errorf("solar = %v, want 15500", y1.Generation["solar"])
	}
	if got := result.Final().Generation["solar"]; !near(got, 15500, 1e-12) {
		t.Errorf("final solar = %v, want no growth after fossil is gone", got)
	}
	AssertNonNegative(t, result)
}

func TestSimulate_StartYearIsStrict(t *testing.T) {
	s := flatSeries(t)
	rec := solarFarm()
	rec.StartYear = intPtr(latestYear + 1)
	result := mustPath(t, s, mustAdapt(t, s, rec), params(2030, false)).Simulate()

	if got := result.Simulated[0].Generation["solar"]; got != 500 {
		t.Errorf("%d: solar = %v, want untouched 500", latestYear+1, got)
	}
	if got := result.Simulated[1].Generation["solar"]; got <= 500 {
		t.Errorf("%d: solar = %v, want growth", latestYear+2, got)
	}
}

func TestSimulate_FossilDemand(t *testing.T) {
	s := flatSeries(t)
	result := mustPath(t, s, mustAdapt(t, s, electricCars()), params(2030, false)).Simulate()
	y1 := result.Simulated[0]

	if !near(y1.Subsectors["Road"], 3e10-1000, 1e-12) {
		t.Errorf("Road = %v, want %v", y1.Subsectors["Road"], 3e10-1000)
	}
	if !near(y1.Generation["coal"], 10000+2e-3/3, 1e-12) {
		t.Errorf("coal = %v, want %v", y1.Generation["coal"], 10000+2e-3/3)
	}
	if !near(y1.Generation["gas"], 5000+1e-3/3, 1e-12) {
		t.Errorf("gas = %v, want %v", y1.Generation["gas"], 5000+1e-3/3)
	}
	added := (2.23*2e-3/3 + 0.91*1e-3/3) * constants.TWhToKWh * constants.LbsToTons
	if got := y1.Subsectors[constants.ElectricitySubsector]; !near(got, 1e11+added, 1e-12) {
		t.Errorf("Electricity & heat = %v, want %v", got, 1e11+added)
	}
	AssertConserved(t, result)
}

func TestSimulate_GasTieBreak(t *testing.T) {
	values := baseValues()
	values["coal_electricity"] = 0
	values["gas_electricity"] = 0
	values["fossil_electricity"] = 0
	s := buildSeries(t, values, nil)

	result := mustPath(t, s, mustAdapt(t, s, electricCars()), params(2021, false)).Simulate()
	y1 := result.Simulated[0]
	if !near(y1.Generation["gas"], 1e-3, 1e-12) {
		t.Errorf("gas = %v, want all new demand 1e-3", y1.Generation["gas"])
	}
	if y1.Generation["coal"] != 0 || y1.Generation["oil"] != 0 {
		t.Errorf("coal/oil = %v/%v, want 0", y1.Generation["coal"], y1.Generation["oil"])
	}
}

func TestSimulate_TerminatesAtZero(t *testing.T) {
	s := flatSeries(t)
	sel := mustAdapt(t, s, eliminator("Road", "Cement", "Electricity & heat"))
	result := mustPath(t, s, sel, params(2100, false)).Simulate()

	if got := len(result.Simulated); got != 1 {
		t.Fatalf("simulated %d years, want 1", got)
	}
	final := result.Final()
	if final.All >= constants.MakeZero {
		t.Errorf("final all = %v, want below floor", final.All)
	}
	if got := result.Summary().CarbonZeroYear; got != latestYear+1 {
		t.Errorf("CarbonZeroYear = %d, want %d", got, latestYear+1)
	}
	AssertNonNegative(t, result)
}

func TestSimulate_PartialEliminationKeepsRunning(t *testing.T) {
	s := flatSeries(t)
	sel := mustAdapt(t, s, eliminator("Road"))
	result := mustPath(t, s, sel, params(2030, false)).Simulate()

	if got := result.Final().Year; got != 2030 {
		t.Errorf("final year = %d, want 2030", got)
	}
	for _, st := range result.Simulated {
		if st.Subsectors["Road"] != 0 {
			t.Errorf("%d: Road = %v, want 0", st.Year, st.Subsectors["Road"])
		}
		if st.All < constants.MakeZero {
			t.Errorf("%d: emissions fell below the floor unexpectedly", st.Year)
		}
	}
	AssertConserved(t, result)
}

func TestResult_Frames(t *testing.T) {
	s := flatSeries(t)
	p := params(2025, false)
	p.StartingYear = 2015
	result := mustPath(t, s, mustAdapt(t, s, solarFarm()), p).Simulate()

	full := result.Frame()
	if full.Index[0] != 2015 || full.Index[len(full.Index)-1] != 2025 {
		t.Errorf("full years = %d..%d, want 2015..2025", full.Index[0], full.Index[len(full.Index)-1])
	}
	if !full.HasColumn("population") {
		t.Error("extra column missing from full frame")
	}

	lite, err := result.Lite()
	if err != nil {
		t.Fatalf("Lite: %v", err)
	}
	if !reflect.DeepEqual(lite.Columns, constants.LiteColumns) {
		t.Errorf("lite columns = %v, want %v", lite.Columns, constants.LiteColumns)
	}
	AssertContiguous(t, result)
}

func TestSimulate_NoSimulatedYears(t *testing.T) {
	s := flatSeries(t)
	result := mustPath(t, s, catalog.Selection{}, params(latestYear, true)).Simulate()
	if len(result.Simulated) != 0 {
		t.Fatalf("simulated %d years, want 0", len(result.Simulated))
	}
	if got := result.Summary().CarbonZeroYear; got != latestYear {
		t.Errorf("CarbonZeroYear = %d, want %d", got, latestYear)
	}
}

func TestSimulate_DecisionLog(t *testing.T) {
	dir := t.TempDir()
	dl := logging.NewDecisionLogger(dir, "debug")
	if dl == nil {
		t.Fatal("NewDecisionLogger returned nil at debug level")
	}

	s := flatSeries(t)
	rec := solarFarm()
	rec.StartYear = intPtr(latestYear + 1)
	mustPath(t, s, mustAdapt(t, s, rec), params(2022, false), WithDecisionLogger(dl)).Simulate()
	dl.Close()

	data, err := os.ReadFile(filepath.Join(dir, "decisions.jsonl"))
	if err != nil {
		t.Fatalf("reading decisions: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d decision lines, want 2:\n%s", len(lines), data)
	}
	if !strings.Contains(lines[0], `"skipped"`) || !strings.Contains(lines[0], "not started") {
		t.Errorf("first decision = %s, want skipped/not started", lines[0])
	}
	if !strings.Contains(lines[1], `"applied"`) {
		t.Errorf("second decision = %s, want applied", lines[1])
	}
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestSimulate_SectorWithoutSubsectors(t *testing.T) {
	values := baseValues()
	values["Buildings_emissions"] = 5e10
	values["all_emissions"] = 2e11
	s := buildSeries(t, values, nil)

	result := mustPath(t, s, catalog.Selection{}, params(2022, false)).Simulate()
	if len(result.Simulated) != 2 {
		t.Fatalf("simulated %d years, want 2", len(result.Simulated))
	}
	for _, st := range result.Simulated {
		if st.Sectors["Buildings"] != 0 {
			t.Errorf("%d: Buildings = %v, want 0", st.Year, st.Sectors["Buildings"])
		}
		if st.All != 1.5e11 {
			t.Errorf("%d: all = %v, want 1.5e11", st.Year, st.All)
		}
	}
	AssertConserved(t, result)
}

func TestSimulate_StopsOnNonFinite(t *testing.T) {
	s := flatSeries(t)
	rec := electricCars()
	rec.ElectricEnergyPerUnit = models.Float(math.MaxFloat64)

	result := mustPath(t, s, mustAdapt(t, s, rec), params(2030, false)).Simulate()

	var nfErr *NonFiniteError
	if err := result.Err(); !errors.As(err, &nfErr) {
		t.Fatalf("Err() = %v, want NonFiniteError", err)
	}
	if nfErr.Year != latestYear+1 {
		t.Errorf("NonFiniteError.Year = %d, want %d", nfErr.Year, latestYear+1)
	}
	if len(result.Simulated) != 0 {
		t.Errorf("kept %d simulated years, want 0", len(result.Simulated))
	}

	if err := mustPath(t, s, mustAdapt(t, s, electricCars()), params(2030, false)).Simulate().Err(); err != nil {
		t.Errorf("finite run Err() = %v", err)
	}
}

func TestSimulate_ShortHistoryGrowthOffset(t *testing.T) {
	columns := []string{"Cement_emissions", "Road_emissions"}
	var records []history.Record
	for year := latestYear - 4; year <= latestYear; year++ {
		records = append(records, history.Record{Year: year, Values: map[string]float64{
			"Road_emissions":   3e10 + float64(year-latestYear+4)*1e9,
			"Cement_emissions": 2e10,
		}})
	}
	s, err := history.NewSeries(columns, records)
	if err != nil {
		t.Fatalf("NewSeries: %v", err)
	}

	p := Params{StartingYear: latestYear - 4, EndingYear: latestYear + 1, IncreaseEnergyUse: true}
	path := mustPath(t, s, catalog.Selection{}, p)
	curve := path.curves["Road"]

	result := path.Simulate()
	got := result.Simulated[0].Subsectors["Road"] - s.Latest().Values["Road_emissions"]
	// Offset by the full fit window, not by the five years available.
	want := curve.slope * (math.Log(12) - math.Log(11))
	if !near(got, want, 1e-9) {
		t.Errorf("first increment = %v, want %v", got, want)
	}
}
