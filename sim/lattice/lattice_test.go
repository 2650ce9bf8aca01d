package lattice

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hard-disks/ecmc/sim"
)

func mustConfig(t *testing.T, nx, ny int, eta float64, shape sim.Shape, slant int) sim.Config {
	t.Helper()
	p := sim.DefaultRunParams()
	p.DisksX, p.DisksY, p.Eta, p.Shape, p.Slant = nx, ny, eta, string(shape), slant
	cfg, err := sim.NewConfig(p)
	require.NoError(t, err)
	return cfg
}

func assertInsideBox(t *testing.T, positions []sim.Vec2, box sim.Vec2) {
	t.Helper()
	for i, p := range positions {
		for k := range p {
			assert.GreaterOrEqual(t, p[k], -box[k]/2, "disk %d axis %d", i, k)
			assert.Less(t, p[k], box[k]/2, "disk %d axis %d", i, k)
		}
	}
}

func TestCrystal_SpacingAndNoOverlap(t *testing.T) {
	// GIVEN a 4x4 crystal at eta = 0.5
	cfg := mustConfig(t, 4, 4, 0.5, sim.ShapeCrystal, 0)

	positions, err := Generate(cfg)
	require.NoError(t, err)

	// THEN every disk is in the box, none overlap, and neighbors sit one spacing apart
	require.Len(t, positions, 16)
	assertInsideBox(t, positions, cfg.Box)
	_, _, found := FindOverlap(positions, cfg.Box, cfg.Sigma)
	assert.False(t, found)
	_, _, closest := sim.ClosestPair(positions, cfg.Box)
	assert.InDelta(t, cfg.Box[0]/4, closest, 1e-12)
}

func TestCrystal_Slanted_NoOverlap(t *testing.T) {
	cfg := mustConfig(t, 4, 4, 0.3, sim.ShapeCrystal, 2)

	positions, err := Generate(cfg)
	require.NoError(t, err)

	assertInsideBox(t, positions, cfg.Box)
	_, _, found := FindOverlap(positions, cfg.Box, cfg.Sigma)
	assert.False(t, found)
}

func TestPacked_SquareAndRectangle_NoOverlap(t *testing.T) {
	for _, shape := range []sim.Shape{sim.ShapeSquare, sim.ShapeRectangle} {
		t.Run(string(shape), func(t *testing.T) {
			cfg := mustConfig(t, 8, 8, 0.3, shape, 0)

			positions, err := Generate(cfg)
			require.NoError(t, err)

			require.Len(t, positions, 64)
			assertInsideBox(t, positions, cfg.Box)
			_, _, found := FindOverlap(positions, cfg.Box, cfg.Sigma)
			assert.False(t, found)
			// lattice neighbors are just beyond contact
			_, _, closest := sim.ClosestPair(positions, cfg.Box)
			assert.InDelta(t, 2*packingSlack*cfg.Sigma, closest, 1e-12)
		})
	}
}

func TestPacked_NonSquareCount_FillsEveryDisk(t *testing.T) {
	// 12 disks on rows of 3 need four rows
	positions := Packed(12, 0.02, sim.Vec2{1, 1})
	require.Len(t, positions, 12)
	_, _, found := FindOverlap(positions, sim.Vec2{1, 1}, 0.02)
	assert.False(t, found)
}

func TestGenerate_LoadsIntoCellGrid(t *testing.T) {
	cfg := mustConfig(t, 6, 6, 0.6, sim.ShapeCrystal, 0)
	positions, err := Generate(cfg)
	require.NoError(t, err)

	g, err := sim.NewCellGrid(cfg, positions)
	require.NoError(t, err)
	assert.Equal(t, 36, g.TotalOccupancy())
}

func TestGenerate_UnknownShape_ReturnsConfigurationError(t *testing.T) {
	_, err := Generate(sim.Config{Shape: "hexagon"})
	assert.True(t, errors.Is(err, sim.ErrConfiguration))
}

func TestFindOverlap_ReportsClosestPair(t *testing.T) {
	// both pairs overlap; the second one is deeper
	positions := []sim.Vec2{{0.3, 0.3}, {0, 0}, {0.38, 0.3}, {0.02, 0}}

	i, j, found := FindOverlap(positions, sim.Vec2{1, 1}, 0.05)

	require.True(t, found)
	assert.Equal(t, 3, i)
	assert.Equal(t, 1, j)
}

func TestFindOverlap(t *testing.T) {
	box := sim.Vec2{1, 1}
	tests := []struct {
		name      string
		positions []sim.Vec2
		wantFound bool
	}{
		{"apart", []sim.Vec2{{0, 0}, {0.2, 0}}, false},
		{"overlapping", []sim.Vec2{{0, 0}, {0.05, 0}}, true},
		{"at contact", []sim.Vec2{{0, 0}, {0.1, 0}}, true},
		{"across the boundary", []sim.Vec2{{0.49, 0}, {-0.49, 0}}, true},
		{"single disk", []sim.Vec2{{0, 0}}, false},
		{"closest of several", []sim.Vec2{{0.3, 0.3}, {0, 0}, {0.35, 0.3}, {0.06, 0}}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			i, j, found := FindOverlap(tc.positions, box, 0.05)
			assert.Equal(t, tc.wantFound, found)
			if found && len(tc.positions) == 2 {
				assert.Equal(t, 1, i)
				assert.Equal(t, 0, j)
			}
		})
	}
}
