// Package trace provides chain and collision recording for event-chain runs.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// ChainRecord captures one chain.
type ChainRecord struct {
	Index       int64
	Axis        string
	StartDisk   int
	EndDisk     int
	Budget      float64
	Collisions  int
	CappedSteps int
}

// EventRecord captures one collision: the motion passes from disk From to disk To.
type EventRecord struct {
	Chain         int64
	From          int
	To            int
	Distance      float64
	ContactOffset float64
}
