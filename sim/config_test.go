package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crystalParams(nx, ny int, eta float64) RunParams {
	p := DefaultRunParams()
	p.DisksX = nx
	p.DisksY = ny
	p.Eta = eta
	return p
}

func TestDefaultRunParams_Values(t *testing.T) {
	p := DefaultRunParams()
	assert.Equal(t, string(ShapeCrystal), p.Shape)
	assert.Equal(t, 1, p.ExtraFactor)
	assert.Equal(t, int64(200_000_000), p.Factor)
	assert.Equal(t, 1000, p.Samples)
	assert.Equal(t, 5, p.CellCapacity)
	assert.Zero(t, p.CellsX)
	assert.Zero(t, p.ChainLength)
}

func TestNewConfig_Crystal_DerivesGeometry(t *testing.T) {
	// GIVEN a 4x4 crystal at eta = 0.5
	cfg, err := NewConfig(crystalParams(4, 4, 0.5))
	require.NoError(t, err)

	// THEN the box has unit area and the aspect ratio of the lattice
	assert.Equal(t, 16, cfg.NumDisks)
	assert.InDelta(t, 1.0, cfg.Area(), 1e-12)
	assert.InDelta(t, math.Sqrt(3)/2, cfg.Box[1]/cfg.Box[0], 1e-12)

	// AND the grid is 7/8 of the lattice, 3x3
	assert.Equal(t, [2]int{3, 3}, cfg.Cells)
	assert.Equal(t, 9, cfg.TotalCells())
	assert.InDelta(t, cfg.Box[0]/3, cfg.CellSize[0], 1e-15)
	assert.InDelta(t, cfg.Box[1]/3, cfg.CellSize[1], 1e-15)

	// AND the radius reproduces the packing fraction
	assert.InDelta(t, 0.5, float64(cfg.NumDisks)*math.Pi*cfg.Sigma*cfg.Sigma/cfg.Area(), 1e-12)

	// AND the schedule follows the mean free path
	assert.InDelta(t, 0.0768/4, cfg.MeanFreePath, 1e-15)
	assert.InDelta(t, 3.125*4*cfg.MeanFreePath, cfg.ChainLength, 1e-15)
	assert.InDelta(t, cfg.MeanFreePath*200_000_000, cfg.TotalLength, 1e-6)
	assert.Equal(t, int64(cfg.TotalLength/1000/cfg.ChainLength), cfg.ChainsPerInterval)

	// AND V_relative is the close-packed fraction over eta
	assert.InDelta(t, math.Pi/(2*math.Sqrt(3))/0.5, cfg.VRelative, 1e-12)

	wantCap := math.Min(math.Min(cfg.Box[0], cfg.Box[1])/2, math.Min(cfg.CellSize[0], cfg.CellSize[1])) - 2*cfg.Sigma
	assert.InDelta(t, wantCap, cfg.DisplacementCap, 1e-15)
	assert.Greater(t, cfg.DisplacementCap, 0.0)
}

func TestNewConfig_Square_UnitBox(t *testing.T) {
	p := crystalParams(8, 8, 0.3)
	p.Shape = string(ShapeSquare)
	cfg, err := NewConfig(p)
	require.NoError(t, err)
	assert.Equal(t, Vec2{1, 1}, cfg.Box)
	assert.Equal(t, [2]int{7, 7}, cfg.Cells)
}

func TestNewConfig_Rectangle_UnitArea(t *testing.T) {
	p := crystalParams(8, 8, 0.3)
	p.Shape = string(ShapeRectangle)
	cfg, err := NewConfig(p)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, cfg.Area(), 1e-12)
	assert.InDelta(t, math.Sqrt(3)/2, cfg.Box[1]/cfg.Box[0], 1e-12)
}

func TestNewConfig_SmallSystem_ClampsGridToTwo(t *testing.T) {
	// 7/8 of a 2x2 lattice rounds down to one cell per axis
	cfg, err := NewConfig(crystalParams(2, 2, 0.1))
	require.NoError(t, err)
	assert.Equal(t, [2]int{2, 2}, cfg.Cells)
}

func TestNewConfig_Overrides(t *testing.T) {
	p := crystalParams(8, 8, 0.3)
	p.CellsX = 4
	p.CellsY = 5
	p.ChainLength = 0.125
	cfg, err := NewConfig(p)
	require.NoError(t, err)
	assert.Equal(t, [2]int{4, 5}, cfg.Cells)
	assert.Equal(t, 0.125, cfg.ChainLength)
	assert.Equal(t, int64(cfg.TotalLength/1000/0.125), cfg.ChainsPerInterval)
}

func TestNewConfig_Invalid_ReturnsConfigurationError(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RunParams)
	}{
		{"zero disks", func(p *RunParams) { p.DisksX = 0 }},
		{"zero eta", func(p *RunParams) { p.Eta = 0 }},
		{"eta at close packing", func(p *RunParams) { p.Eta = math.Pi / (2 * math.Sqrt(3)) }},
		{"NaN eta", func(p *RunParams) { p.Eta = math.NaN() }},
		{"unknown shape", func(p *RunParams) { p.Shape = "hexagon" }},
		{"odd rows in crystal", func(p *RunParams) { p.DisksY = 7 }},
		{"odd slant", func(p *RunParams) { p.Slant = 3 }},
		{"zero samples", func(p *RunParams) { p.Samples = 0 }},
		{"zero extra factor", func(p *RunParams) { p.ExtraFactor = 0 }},
		{"zero capacity", func(p *RunParams) { p.CellCapacity = 0 }},
		{"one-cell override", func(p *RunParams) { p.CellsX = 1 }},
		{"negative chain length", func(p *RunParams) { p.ChainLength = -1 }},
		// cells narrower than a disk diameter leave no room to move
		{"cells too small", func(p *RunParams) { p.Eta = 0.9 }},
		{"capacity below density", func(p *RunParams) { p.CellCapacity = 1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := crystalParams(8, 8, 0.5)
			tc.mutate(&p)
			_, err := NewConfig(p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration), "got %v", err)
		})
	}
}

func TestNewConfig_CellsTooSmall_NamesRemedy(t *testing.T) {
	// GIVEN 4 disks at eta = 0.7: 2*sigma exceeds the 2x2 cell size
	_, err := NewConfig(crystalParams(2, 2, 0.7))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fewer cells")
}
