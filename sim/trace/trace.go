package trace

// TraceLevel controls the verbosity of chain tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelChains captures one record per chain.
	TraceLevelChains TraceLevel = "chains"
	// TraceLevelEvents captures chain records plus one record per collision.
	TraceLevelEvents TraceLevel = "events"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelChains: true,
	TraceLevelEvents: true,
	"":               true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// ChainTrace collects chain and collision records during a run.
type ChainTrace struct {
	Config TraceConfig
	Chains []ChainRecord
	Events []EventRecord
}

// NewChainTrace creates a ChainTrace ready for recording.
func NewChainTrace(config TraceConfig) *ChainTrace {
	return &ChainTrace{
		Config: config,
		Chains: make([]ChainRecord, 0),
		Events: make([]EventRecord, 0),
	}
}

// Enabled reports whether any record is kept.
func (ct *ChainTrace) Enabled() bool {
	return ct != nil && ct.Config.Level != TraceLevelNone && ct.Config.Level != ""
}

// RecordChain appends a chain record.
func (ct *ChainTrace) RecordChain(record ChainRecord) {
	if !ct.Enabled() {
		return
	}
	ct.Chains = append(ct.Chains, record)
}

// RecordEvent appends a collision record. Events are kept only at TraceLevelEvents.
func (ct *ChainTrace) RecordEvent(record EventRecord) {
	if ct == nil || ct.Config.Level != TraceLevelEvents {
		return
	}
	ct.Events = append(ct.Events, record)
}

// ActiveSequence returns, in order, the disk that started each chain followed by
// every disk that received the motion. Empty unless events are traced.
func (ct *ChainTrace) ActiveSequence() []int {
	if ct == nil {
		return nil
	}
	seq := make([]int, 0, len(ct.Chains)+len(ct.Events))
	e := 0
	for _, c := range ct.Chains {
		seq = append(seq, c.StartDisk)
		for e < len(ct.Events) && ct.Events[e].Chain == c.Index {
			seq = append(seq, ct.Events[e].To)
			e++
		}
	}
	return seq
}
