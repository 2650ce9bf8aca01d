package analysis

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/hard-disks/ecmc/sim"
	"github.com/hard-disks/ecmc/sim/internal/testutil"
)

func TestTrim_DropsLeadingFraction(t *testing.T) {
	s := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	assert.Equal(t, []float64{3, 4, 5, 6, 7, 8, 9}, Trim(s, DefaultBurnIn))
	assert.Equal(t, s, Trim(s, 0))
	assert.Empty(t, Trim(s, 1))
	assert.Empty(t, Trim(nil, 0.3))
}

func TestDropNaN(t *testing.T) {
	assert.Equal(t, []float64{1, 3}, DropNaN([]float64{1, math.NaN(), 3}))
}

func TestStationaryBootstrap_IndependentSeries_MatchesNaiveError(t *testing.T) {
	// GIVEN 2000 independent normal samples
	gen := rand.New(rand.NewSource(1))
	series := make([]float64, 2000)
	for i := range series {
		series[i] = gen.NormFloat64()
	}
	naive := stat.StdDev(series, nil) / math.Sqrt(float64(len(series)))

	// WHEN bootstrapped with unit mean block length
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(9)).ForSubsystem(sim.SubsystemBootstrap)
	se, err := StationaryBootstrap(series, rng, 500, 1)
	require.NoError(t, err)

	// THEN the error is the sigma/sqrt(n) of independent data within sampling noise
	testutil.AssertFloat64Equal(t, "standard error", naive, se, 0.15)
}

func TestStationaryBootstrap_CorrelatedSeries_LargerError(t *testing.T) {
	// GIVEN a strongly autocorrelated AR(1) series
	gen := rand.New(rand.NewSource(2))
	series := make([]float64, 4000)
	for i := 1; i < len(series); i++ {
		series[i] = 0.95*series[i-1] + gen.NormFloat64()
	}
	naive := stat.StdDev(series, nil) / math.Sqrt(float64(len(series)))

	// WHEN blocks are long enough to keep the correlation
	se, err := StationaryBootstrap(series, rand.New(rand.NewSource(3)), 300, 50)
	require.NoError(t, err)

	// THEN the error exceeds the naive estimate, which ignores correlation
	assert.Greater(t, se, 2*naive)
}

func TestStationaryBootstrap_ConstantSeries_ZeroError(t *testing.T) {
	se, err := StationaryBootstrap([]float64{2, 2, 2, 2}, rand.New(rand.NewSource(1)), 10, 2)
	require.NoError(t, err)
	assert.Equal(t, 0.0, se)
}

func TestStationaryBootstrap_InvalidArguments(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := StationaryBootstrap([]float64{1}, rng, 10, 1)
	assert.Error(t, err)
	_, err = StationaryBootstrap([]float64{1, 2}, rng, 1, 1)
	assert.Error(t, err)
	_, err = StationaryBootstrap([]float64{1, 2}, rng, 10, 0.5)
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	series := []float64{100, 100, 100, 1, 2, 3, math.NaN(), 4, 5, 6}

	est, err := Summarize("pressure", series, DefaultBurnIn, rand.New(rand.NewSource(1)), 200)
	require.NoError(t, err)

	assert.Equal(t, 6, est.Samples)
	assert.InDelta(t, 3.5, est.Mean, 1e-12)
	assert.Positive(t, est.StdErr)
	assert.Contains(t, est.String(), "pressure: 3.5 +/-")
}

func TestSummarize_NothingLeft_ReturnsError(t *testing.T) {
	_, err := Summarize("pressure_x", []float64{math.NaN(), math.NaN()}, 0, rand.New(rand.NewSource(1)), 10)
	assert.Error(t, err)
}

func TestDefaultBlockLength(t *testing.T) {
	assert.Equal(t, 1.0, DefaultBlockLength(0))
	assert.InDelta(t, 10, DefaultBlockLength(1000), 1e-12)
}
