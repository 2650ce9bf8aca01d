// Tracks run-wide counters of the event-chain engine.

package sim

import (
	"fmt"
	"time"
)

// Metrics aggregates counters about a run for final reporting.
type Metrics struct {
	Chains      int64 // completed chains
	Collisions  int64 // motion transfers between disks
	CappedSteps int64 // moves cut short by the displacement cap
	Samples     int64 // emitted pressure samples

	LastSample PressureSample
	Elapsed    time.Duration
}

// NewMetrics returns zeroed Metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// EventsPerHour extrapolates the collision rate to one hour of wall-clock time.
// Returns 0 before any time has elapsed.
func (m *Metrics) EventsPerHour() float64 {
	if m.Elapsed <= 0 {
		return 0
	}
	return float64(m.Collisions) / m.Elapsed.Hours()
}

// Print displays aggregated metrics at the end of the run.
func (m *Metrics) Print() {
	fmt.Println("=== Run Metrics ===")
	fmt.Printf("Chains               : %d\n", m.Chains)
	fmt.Printf("Collisions           : %d\n", m.Collisions)
	fmt.Printf("Capped steps         : %d\n", m.CappedSteps)
	fmt.Printf("Samples              : %d\n", m.Samples)
	if m.Samples > 0 {
		fmt.Printf("Last pressure        : %.8g (x %.8g, y %.8g)\n",
			m.LastSample.Pressure, m.LastSample.PressureX, m.LastSample.PressureY)
	}
	fmt.Printf("Wall time            : %.3fs\n", m.Elapsed.Seconds())
	fmt.Printf("Events per hour      : %.4g\n", m.EventsPerHour())
}
