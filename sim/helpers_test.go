package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// unitGridConfig describes a unit square box split into cells[0] x cells[1] cells,
// bypassing NewConfig so tests can place a handful of disks by hand.
func unitGridConfig(cells [2]int, sigma float64, capacity, numDisks int) Config {
	size := Vec2{1 / float64(cells[0]), 1 / float64(cells[1])}
	return Config{
		Box:             Vec2{1, 1},
		Cells:           cells,
		CellSize:        size,
		CellCapacity:    capacity,
		NumDisks:        numDisks,
		Sigma:           sigma,
		DisplacementCap: math.Min(0.5, math.Min(size[0], size[1])) - 2*sigma,
	}
}

// inCell returns the box-centered position of a point at local offset off from the
// center of cell (i, j).
func inCell(cfg Config, i, j int, off Vec2) Vec2 {
	return Vec2{
		(float64(i)+0.5)*cfg.CellSize[0] - cfg.Box[0]/2 + off[0],
		(float64(j)+0.5)*cfg.CellSize[1] - cfg.Box[1]/2 + off[1],
	}
}

func mustGrid(t *testing.T, cfg Config, positions []Vec2) *CellGrid {
	t.Helper()
	g, err := NewCellGrid(cfg, positions)
	require.NoError(t, err)
	return g
}

func mustLocate(t *testing.T, g *CellGrid, disk int) Locator {
	t.Helper()
	loc, ok := g.Locate(disk)
	require.True(t, ok, "disk %d not in grid", disk)
	return loc
}
