package trace

// TraceSummary aggregates statistics from a ChainTrace.
type TraceSummary struct {
	TotalChains       int
	TotalCollisions   int
	TotalCappedSteps  int
	MeanCollisions    float64 // per chain
	MaxCollisions     int     // in a single chain
	UniqueStartDisks  int
	StartDistribution map[int]int // disk index → number of chains it started
	MeanContactOffset float64     // over traced events
}

// Summarize computes aggregate statistics from a ChainTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(ct *ChainTrace) *TraceSummary {
	summary := &TraceSummary{
		StartDistribution: make(map[int]int),
	}
	if ct == nil {
		return summary
	}

	summary.TotalChains = len(ct.Chains)
	for _, c := range ct.Chains {
		summary.StartDistribution[c.StartDisk]++
		summary.TotalCollisions += c.Collisions
		summary.TotalCappedSteps += c.CappedSteps
		if c.Collisions > summary.MaxCollisions {
			summary.MaxCollisions = c.Collisions
		}
	}
	if summary.TotalChains > 0 {
		summary.MeanCollisions = float64(summary.TotalCollisions) / float64(summary.TotalChains)
	}

	if len(ct.Events) > 0 {
		total := 0.0
		for _, e := range ct.Events {
			total += e.ContactOffset
		}
		summary.MeanContactOffset = total / float64(len(ct.Events))
	}

	summary.UniqueStartDisks = len(summary.StartDistribution)

	return summary
}
