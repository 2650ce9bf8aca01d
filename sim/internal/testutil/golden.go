package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/sugawarayuuta/sonnet"

	"github.com/hard-disks/ecmc/sim"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one crystal run from the golden dataset.
type GoldenTestCase struct {
	Name    string        `json:"name"`
	DisksX  int           `json:"nx"`
	DisksY  int           `json:"ny"`
	Eta     float64       `json:"eta"`
	Factor  int64         `json:"factor"`
	Samples int           `json:"samples"`
	Seed    int64         `json:"seed"`
	Metrics GoldenMetrics `json:"metrics"`
}

// GoldenMetrics represents the expected outcome of a golden test case.
type GoldenMetrics struct {
	// Exact match counters
	Chains      int64 `json:"chains"`
	Collisions  int64 `json:"collisions"`
	CappedSteps int64 `json:"capped_steps"`
	Samples     int64 `json:"samples"`

	// Start disks of the first chains, in order
	FirstStartDisks []int `json:"first_start_disks"`

	// The first pressure samples, compared with a relative tolerance
	LeadingPressures []float64 `json:"leading_pressures"`
}

// Params returns the run parameters of the case.
func (tc GoldenTestCase) Params() sim.RunParams {
	p := sim.DefaultRunParams()
	p.DisksX = tc.DisksX
	p.DisksY = tc.DisksY
	p.Eta = tc.Eta
	p.Factor = tc.Factor
	p.Samples = tc.Samples
	p.Seed = tc.Seed
	return p
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := sonnet.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}
	return &dataset
}
