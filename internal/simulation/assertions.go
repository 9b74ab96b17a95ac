package simulation

import (
	"math"
	"testing"

	"github.com/allcarbonfree/carbonpath/internal/constants"
)

// conservationTolerance is the relative slack allowed when comparing
// derived totals with the sum of their parts.
const conservationTolerance = 1e-9

// AssertConserved asserts that every simulated state's sector totals equal
// the sum of their subsectors and that All equals the sum of sectors.
func AssertConserved(t *testing.T, result *Result) {
	t.Helper()
	for _, s := range result.Simulated {
		all := 0.0
		for _, sector := range constants.Sectors {
			sum := 0.0
			for _, ss := range sector.Subsectors {
				sum += s.Subsectors[ss]
			}
			if !approxEqual(s.Sectors[sector.Name], sum) {
				t.Errorf("AssertConserved: %d: %s = %.6f, subsectors sum to %.6f", s.Year, sector.Name, s.Sectors[sector.Name], sum)
			}
			all += s.Sectors[sector.Name]
		}
		if !approxEqual(s.All, all) {
			t.Errorf("AssertConserved: %d: all = %.6f, sectors sum to %.6f", s.Year, s.All, all)
		}
		if !approxEqual(s.CarbonFree, sumOf(s.Generation, constants.CarbonFreeTypes)) {
			t.Errorf("AssertConserved: %d: carbon_free does not match its generation types", s.Year)
		}
		if !approxEqual(s.Fossil, sumOf(s.Generation, constants.FossilTypes)) {
			t.Errorf("AssertConserved: %d: fossil does not match its generation types", s.Year)
		}
	}
}

// AssertNonNegative asserts that no subsector emissions and no generation
// quantity goes negative in any simulated year.
func AssertNonNegative(t *testing.T, result *Result) {
	t.Helper()
	for _, s := range result.Simulated {
		for ss, v := range s.Subsectors {
			if v < 0 {
				t.Errorf("AssertNonNegative: %d: %s emissions = %.6f", s.Year, ss, v)
			}
		}
		for g, v := range s.Generation {
			if v < 0 {
				t.Errorf("AssertNonNegative: %d: %s generation = %.6f", s.Year, g, v)
			}
		}
	}
}

// AssertContiguous asserts that the trajectory years increase by one with
// no gaps from the first kept historical year to the last simulated year.
func AssertContiguous(t *testing.T, result *Result) {
	t.Helper()
	f := result.Frame()
	for i := 1; i < len(f.Index); i++ {
		if f.Index[i] != f.Index[i-1]+1 {
			t.Errorf("AssertContiguous: year %d follows %d", f.Index[i], f.Index[i-1])
		}
	}
}

// AssertSameTrajectory asserts that two results hold identical states.
func AssertSameTrajectory(t *testing.T, a, b *Result) {
	t.Helper()
	if len(a.Simulated) != len(b.Simulated) {
		t.Fatalf("AssertSameTrajectory: %d simulated years vs %d", len(a.Simulated), len(b.Simulated))
	}
	for i := range a.Simulated {
		va, vb := a.Simulated[i].Values(), b.Simulated[i].Values()
		for k, v := range va {
			if vb[k] != v {
				t.Errorf("AssertSameTrajectory: %d: %s = %v vs %v", a.Simulated[i].Year, k, v, vb[k])
			}
		}
	}
}

func approxEqual(a, b float64) bool {
	if a == b {
		return true
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= conservationTolerance*scale
}
