package simulation

import (
	"math"
	"testing"

	"github.com/allcarbonfree/carbonpath/internal/history"
)

func TestStateFromRecord(t *testing.T) {
	rec := history.Record{Year: 2020, Values: baseValues()}
	s := StateFromRecord(rec)

	if s.Year != 2020 {
		t.Errorf("Year = %d", s.Year)
	}
	if s.Subsectors["Road"] != 3e10 || s.Sectors["Transport"] != 3e10 {
		t.Errorf("Road/Transport = %v/%v", s.Subsectors["Road"], s.Sectors["Transport"])
	}
	if s.Generation["coal"] != 10000 || s.CarbonFree != 1000 || s.Fossil != 15000 {
		t.Errorf("generation not mapped: %+v", s)
	}
	if s.All != 1.5e11 {
		t.Errorf("All = %v", s.All)
	}
	if s.Extra["population"] != 7e9 {
		t.Errorf("Extra = %v", s.Extra)
	}
}

func TestState_CloneIsDeep(t *testing.T) {
	s := StateFromRecord(history.Record{Year: 2020, Values: baseValues()})
	c := s.Clone()
	c.Subsectors["Road"] = 0
	c.Generation["coal"] = 0
	c.Extra["population"] = 0

	if s.Subsectors["Road"] != 3e10 || s.Generation["coal"] != 10000 || s.Extra["population"] != 7e9 {
		t.Error("Clone shares maps with the original")
	}
}

func TestState_Recompute(t *testing.T) {
	s := StateFromRecord(history.Record{Year: 2020, Values: baseValues()})
	s.Subsectors["Road"] = 1e10
	s.Generation["oil"] = 100
	s.Recompute()

	if s.Sectors["Transport"] != 1e10 {
		t.Errorf("Transport = %v, want 1e10", s.Sectors["Transport"])
	}
	if s.All != 1.3e11 {
		t.Errorf("All = %v, want 1.3e11", s.All)
	}
	if s.Fossil != 15100 {
		t.Errorf("Fossil = %v, want 15100", s.Fossil)
	}
	want := 1e9 / 2000 * (10000*2.23 + 5000*0.91 + 100*2.13)
	if math.Abs(s.Electricity-want) > 1e-3 {
		t.Errorf("Electricity = %v, want %v", s.Electricity, want)
	}
	if !s.Finite() {
		t.Error("Finite() = false")
	}
	s.Generation["wind"] = math.NaN()
	if s.Finite() {
		t.Error("Finite() = true with NaN generation")
	}
}

func TestState_RecomputeSectorWithoutSubsectors(t *testing.T) {
	values := baseValues()
	values["Buildings_emissions"] = 5e10
	values["all_emissions"] = 2e11
	s := StateFromRecord(history.Record{Year: 2020, Values: values})
	s.Recompute()

	if s.Sectors["Buildings"] != 0 {
		t.Errorf("Buildings = %v, want 0 with no Buildings subsectors", s.Sectors["Buildings"])
	}
	if s.All != 1.5e11 {
		t.Errorf("All = %v, want 1.5e11", s.All)
	}
}

func TestGrowthCurve_Increment(t *testing.T) {
	g := growthCurve{slope: 2, latest: 2020}
	want := 2 * (math.Log(12) - math.Log(11))
	if got := g.increment(2021); math.Abs(got-want) > 1e-12 {
		t.Errorf("increment(2021) = %v, want %v", got, want)
	}
	if got := (growthCurve{}).increment(2050); got != 0 {
		t.Errorf("zero curve increment = %v, want 0", got)
	}
}
