package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRecorder_AppendSeries_RequiresNextIndex(t *testing.T) {
	m := NewMemoryRecorder()
	require.NoError(t, m.AppendSeries(SeriesPressure, 0, 1.5))
	require.NoError(t, m.AppendSeries(SeriesPressure, 1, 1.6))

	assert.Error(t, m.AppendSeries(SeriesPressure, 3, 1.7))
	assert.Error(t, m.AppendSeries(SeriesPressureX, 1, 1.7))

	s, err := m.Series(SeriesPressure)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 1.6}, s)
}

func TestMemoryRecorder_Series_Missing(t *testing.T) {
	_, err := NewMemoryRecorder().Series("nope")
	assert.Error(t, err)
}

func TestMemoryRecorder_Snapshots_AreCopied(t *testing.T) {
	m := NewMemoryRecorder()
	positions := []Vec2{{0.1, 0.1}}
	require.NoError(t, m.WriteSnapshot(3, positions))
	require.NoError(t, m.WriteSnapshot(InitialSnapshotIndex, positions))
	positions[0][0] = 0.4

	assert.Equal(t, Vec2{0.1, 0.1}, m.Snapshots[3][0])
	assert.Equal(t, []int{-1, 3}, m.SnapshotIndices())
}

func TestMemoryRecorder_RecordScalar_Overwrites(t *testing.T) {
	m := NewMemoryRecorder()
	require.NoError(t, m.RecordScalar(ScalarCollisions, 10))
	require.NoError(t, m.RecordScalar(ScalarCollisions, 12))
	assert.Equal(t, 12.0, m.Scalars[ScalarCollisions])
}

func TestNewStaticParameters_CopiesGeometry(t *testing.T) {
	p := crystalParams(4, 4, 0.5)
	p.Seed = 99
	cfg, err := NewConfig(p)
	require.NoError(t, err)
	start := time.Unix(1700000000, 0)

	sp := NewStaticParameters(cfg, "abc", start)

	assert.Equal(t, 4, sp.DisksX)
	assert.Equal(t, 16, sp.NumDisks)
	assert.Equal(t, "crystal", sp.Shape)
	assert.Equal(t, cfg.Cells, sp.Cells)
	assert.Equal(t, cfg.ChainsPerInterval, sp.ChainsPerInterval)
	assert.Equal(t, int64(99), sp.Seed)
	assert.Equal(t, "abc", sp.Digest)
	assert.Equal(t, start, sp.StartTime)
}
