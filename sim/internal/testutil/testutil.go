// Package testutil provides shared test infrastructure for the engine.
// It holds the golden dataset, float assertion helpers and a small-run fixture
// used by the sim, output and analysis test packages.
package testutil

import (
	"math"
	"testing"

	"github.com/hard-disks/ecmc/sim"
	"github.com/hard-disks/ecmc/sim/lattice"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertSeriesIdentical requires two series to match bit for bit. NaN entries match
// each other.
func AssertSeriesIdentical(t *testing.T, name string, want, got []float64) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("%s: got %d values, want %d", name, len(got), len(want))
	}
	for i := range want {
		if math.IsNaN(want[i]) && math.IsNaN(got[i]) {
			continue
		}
		if math.Float64bits(want[i]) != math.Float64bits(got[i]) {
			t.Errorf("%s[%d]: got %v, want %v", name, i, got[i], want[i])
		}
	}
}

// SmallRunParams returns parameters of a 16-disk crystal that runs in milliseconds
// and emits ten samples.
func SmallRunParams(seed int64) sim.RunParams {
	p := sim.DefaultRunParams()
	p.DisksX = 4
	p.DisksY = 4
	p.Eta = 0.4
	p.Factor = 2000
	p.Samples = 10
	p.Seed = seed
	return p
}

// NewSmallEngine builds an engine over the SmallRunParams system writing to rec.
func NewSmallEngine(t *testing.T, seed int64, rec sim.Recorder) *sim.Engine {
	t.Helper()
	cfg, err := sim.NewConfig(SmallRunParams(seed))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	positions, err := lattice.Generate(cfg)
	if err != nil {
		t.Fatalf("lattice: %v", err)
	}
	grid, err := sim.NewCellGrid(cfg, positions)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	return sim.NewEngine(cfg, grid, sim.NewSimulationRNG(sim.NewSimulationKey(seed)), rec)
}

// RunSmall runs the SmallRunParams system into rec and returns its engine.
func RunSmall(t *testing.T, seed int64, rec sim.Recorder) *sim.Engine {
	t.Helper()
	e := NewSmallEngine(t, seed, rec)
	if err := e.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	return e
}
