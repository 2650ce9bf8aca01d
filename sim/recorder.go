package sim

import (
	"fmt"
	"sort"
	"time"
)

// Series and scalar names written by the engine.
const (
	SeriesPressure  = "pressure"
	SeriesPressureX = "pressure_x"
	SeriesPressureY = "pressure_y"

	ScalarCollisions    = "collisions"
	ScalarCount         = "count"
	ScalarElapsed       = "elapsed_seconds"
	ScalarEventsPerHour = "events_per_hour"

	// InitialSnapshotIndex labels the configuration written before the first chain.
	InitialSnapshotIndex = -1
)

// StaticParameters is the configuration surface persisted once at startup.
type StaticParameters struct {
	DisksX            int       `json:"nx"`
	DisksY            int       `json:"ny"`
	NumDisks          int       `json:"n"`
	Eta               float64   `json:"eta"`
	Box               Vec2      `json:"box"`
	Sigma             float64   `json:"sigma"`
	Slant             int       `json:"slant"`
	Shape             string    `json:"shape"`
	Cells             [2]int    `json:"cells"`
	CellCapacity      int       `json:"cell_capacity"`
	ChainLength       float64   `json:"chain_length"`
	TotalLength       float64   `json:"total_length"`
	ChainsPerInterval int64     `json:"chains_per_interval"`
	Seed              int64     `json:"seed"`
	Digest            string    `json:"digest"`
	StartTime         time.Time `json:"start_time"`
}

// NewStaticParameters collects the persisted parameters of cfg.
func NewStaticParameters(cfg Config, digest string, start time.Time) StaticParameters {
	return StaticParameters{
		DisksX:            cfg.Params.DisksX,
		DisksY:            cfg.Params.DisksY,
		NumDisks:          cfg.NumDisks,
		Eta:               cfg.Params.Eta,
		Box:               cfg.Box,
		Sigma:             cfg.Sigma,
		Slant:             cfg.Params.Slant,
		Shape:             string(cfg.Shape),
		Cells:             cfg.Cells,
		CellCapacity:      cfg.CellCapacity,
		ChainLength:       cfg.ChainLength,
		TotalLength:       cfg.TotalLength,
		ChainsPerInterval: cfg.ChainsPerInterval,
		Seed:              cfg.Params.Seed,
		Digest:            digest,
		StartTime:         start,
	}
}

// Recorder persists what an Engine produces. Every call is synchronous: the engine
// does not start the next chain until the call returns, and any error ends the run.
type Recorder interface {
	WriteStaticParameters(p StaticParameters) error
	// WriteSnapshot appends the box-centered positions of all disks, ordered by disk index.
	WriteSnapshot(index int, positions []Vec2) error
	// AppendSeries appends value at position index of the named series.
	AppendSeries(name string, index int, value float64) error
	// RecordScalar sets a named scalar, overwriting any previous value.
	RecordScalar(name string, value float64) error
	Flush() error
	Close() error
}

// MemoryRecorder keeps everything in memory. It is used by tests and by runs
// without an output file.
type MemoryRecorder struct {
	Parameters *StaticParameters
	Snapshots  map[int][]Vec2
	SeriesData map[string][]float64
	Scalars    map[string]float64
	Flushes    int
	Closed     bool
}

// NewMemoryRecorder returns an empty MemoryRecorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{
		Snapshots:  make(map[int][]Vec2),
		SeriesData: make(map[string][]float64),
		Scalars:    make(map[string]float64),
	}
}

func (m *MemoryRecorder) WriteStaticParameters(p StaticParameters) error {
	m.Parameters = &p
	return nil
}

func (m *MemoryRecorder) WriteSnapshot(index int, positions []Vec2) error {
	m.Snapshots[index] = append([]Vec2(nil), positions...)
	return nil
}

func (m *MemoryRecorder) AppendSeries(name string, index int, value float64) error {
	if got := len(m.SeriesData[name]); index != got {
		return fmt.Errorf("series %q: append at index %d, expected %d", name, index, got)
	}
	m.SeriesData[name] = append(m.SeriesData[name], value)
	return nil
}

func (m *MemoryRecorder) RecordScalar(name string, value float64) error {
	m.Scalars[name] = value
	return nil
}

func (m *MemoryRecorder) Flush() error {
	m.Flushes++
	return nil
}

func (m *MemoryRecorder) Close() error {
	m.Closed = true
	return nil
}

// Series returns a copy of the named series.
func (m *MemoryRecorder) Series(name string) ([]float64, error) {
	s, ok := m.SeriesData[name]
	if !ok {
		return nil, fmt.Errorf("series %q not recorded", name)
	}
	return append([]float64(nil), s...), nil
}

// SnapshotIndices returns the recorded snapshot indices in increasing order.
func (m *MemoryRecorder) SnapshotIndices() []int {
	idx := make([]int, 0, len(m.Snapshots))
	for i := range m.Snapshots {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}
