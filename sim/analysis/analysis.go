// Package analysis estimates averages and error bars of correlated time series
// such as the pressure samples of a run.
package analysis

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"
)

// DefaultBurnIn is the fraction of a series discarded as equilibration.
const DefaultBurnIn = 0.3

// DefaultResamples is the number of bootstrap replicas.
const DefaultResamples = 1000

// Estimate is the mean of a series and its standard error.
type Estimate struct {
	Name    string
	Samples int
	Mean    float64
	StdErr  float64
}

func (e Estimate) String() string {
	return fmt.Sprintf("%s: %.8g +/- %.2g (%d samples)", e.Name, e.Mean, e.StdErr, e.Samples)
}

// Trim drops the leading fraction burnIn of series.
func Trim(series []float64, burnIn float64) []float64 {
	start := int(burnIn * float64(len(series)))
	start = min(max(start, 0), len(series))
	return series[start:]
}

// DropNaN returns the finite entries of series.
func DropNaN(series []float64) []float64 {
	out := make([]float64, 0, len(series))
	for _, v := range series {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// DefaultBlockLength returns n^(1/3), the usual mean block length for the
// stationary bootstrap of a weakly correlated series.
func DefaultBlockLength(n int) float64 {
	return math.Max(1, math.Cbrt(float64(n)))
}

// StationaryBootstrap returns the standard error of the mean of series by the
// stationary bootstrap of Politis and Romano: each replica is built from blocks
// with geometrically distributed lengths of mean meanBlock, wrapping circularly.
func StationaryBootstrap(series []float64, rng *rand.Rand, resamples int, meanBlock float64) (float64, error) {
	n := len(series)
	if n < 2 {
		return 0, fmt.Errorf("bootstrap needs at least 2 samples, got %d", n)
	}
	if resamples < 2 {
		return 0, fmt.Errorf("bootstrap needs at least 2 resamples, got %d", resamples)
	}
	if meanBlock < 1 {
		return 0, fmt.Errorf("mean block length must be at least 1, got %g", meanBlock)
	}
	restart := 1 / meanBlock

	means := make([]float64, resamples)
	for r := range means {
		var sum float64
		i := rng.Intn(n)
		for k := 0; k < n; k++ {
			sum += series[i]
			if rng.Float64() < restart {
				i = rng.Intn(n)
			} else {
				i = (i + 1) % n
			}
		}
		means[r] = sum / float64(n)
	}
	return stat.StdDev(means, nil), nil
}

// Summarize trims burnIn from series, drops NaN entries and bootstraps the error
// of the mean.
func Summarize(name string, series []float64, burnIn float64, rng *rand.Rand, resamples int) (Estimate, error) {
	kept := DropNaN(Trim(series, burnIn))
	est := Estimate{Name: name, Samples: len(kept)}
	if len(kept) == 0 {
		return est, fmt.Errorf("%s: no samples after discarding the first %.0f%%", name, 100*burnIn)
	}
	est.Mean = stat.Mean(kept, nil)
	if len(kept) == 1 {
		return est, nil
	}
	se, err := StationaryBootstrap(kept, rng, resamples, DefaultBlockLength(len(kept)))
	if err != nil {
		return est, fmt.Errorf("%s: %w", name, err)
	}
	est.StdErr = se
	return est, nil
}
