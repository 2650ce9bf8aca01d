package sim

import (
	"fmt"
	"math"
)

// Neighbor table layout. For each cell, the nine surrounding cells (itself included)
// are indexed row-major from the lower-left corner:
//
//	6 7 8
//	3 4 5
//	0 1 2
const (
	neighborCount = 9
	selfNeighbor  = 4
)

// neighborOffset returns the (dx, dy) cell offset of neighbor slot n.
func neighborOffset(n int) [2]int {
	return [2]int{n%3 - 1, n/3 - 1}
}

// Locator identifies a disk by its cell and its slot in that cell. Slots are not
// stable: any migration out of a cell may move another disk into the vacated slot.
type Locator struct {
	Cell int
	Slot int
}

type slot struct {
	disk int
	pos  Vec2 // relative to the cell center
}

// CellGrid is a periodic cell list. Every cell holds at most a fixed number of disks,
// stored relative to the cell center in an unordered slot list.
type CellGrid struct {
	cells    [2]int
	size     Vec2
	box      Vec2
	sigma    float64
	capacity int
	numDisks int

	neighbors [][neighborCount]int
	slots     [][]slot
}

// NewCellGrid builds the neighbor table and places every disk in the cell covering
// its box-centered position.
func NewCellGrid(cfg Config, positions []Vec2) (*CellGrid, error) {
	if cfg.Cells[0] < 2 || cfg.Cells[1] < 2 {
		return nil, fmt.Errorf("%w: cell grid must be at least 2x2, got %dx%d", ErrConfiguration, cfg.Cells[0], cfg.Cells[1])
	}
	if cfg.Sigma <= 0 {
		return nil, fmt.Errorf("%w: disk radius must be positive, got %g", ErrConfiguration, cfg.Sigma)
	}
	if cfg.CellCapacity < 1 {
		return nil, fmt.Errorf("%w: cell capacity must be positive, got %d", ErrConfiguration, cfg.CellCapacity)
	}
	if cfg.NumDisks != 0 && len(positions) != cfg.NumDisks {
		return nil, fmt.Errorf("%w: got %d positions for %d disks", ErrConfiguration, len(positions), cfg.NumDisks)
	}

	total := cfg.TotalCells()
	g := &CellGrid{
		cells:     cfg.Cells,
		size:      cfg.CellSize,
		box:       cfg.Box,
		sigma:     cfg.Sigma,
		capacity:  cfg.CellCapacity,
		neighbors: make([][neighborCount]int, total),
		slots:     make([][]slot, total),
	}

	w, h := g.cells[0], g.cells[1]
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			c := i + j*w
			for n := 0; n < neighborCount; n++ {
				off := neighborOffset(n)
				ni := (i + off[0] + w) % w
				nj := (j + off[1] + h) % h
				g.neighbors[c][n] = ni + nj*w
			}
		}
	}

	// One backing array; each cell is a zero-length window with capacity fixed to
	// its own stretch, so appends never spill into the next cell.
	backing := make([]slot, total*g.capacity)
	for c := range g.slots {
		lo := c * g.capacity
		g.slots[c] = backing[lo:lo:(lo + g.capacity)]
	}

	for i, p := range positions {
		var idx [2]int
		for k := range idx {
			idx[k] = int(math.Floor((p[k] + g.box[k]/2) / g.size[k]))
			// floor can round a coordinate just below box/2 up to the grid size
			if idx[k] == g.cells[k] {
				idx[k] = 0
				p[k] -= g.box[k]
			}
			if idx[k] < 0 || idx[k] > g.cells[k] {
				return nil, fmt.Errorf("%w: disk %d at (%g, %g) lies outside the box", ErrConfiguration, i, p[0], p[1])
			}
		}
		c := idx[0] + idx[1]*w
		if len(g.slots[c]) == g.capacity {
			return nil, fmt.Errorf("%w: cell %d exceeds capacity %d while placing disk %d", ErrConfiguration, c, g.capacity, i)
		}
		var local Vec2
		for k := range local {
			local[k] = p[k] + g.box[k]/2 - (float64(idx[k])+0.5)*g.size[k]
		}
		g.slots[c] = append(g.slots[c], slot{disk: i, pos: local})
		g.numDisks++
	}
	return g, nil
}

// NumCells returns the number of cells.
func (g *CellGrid) NumCells() int { return len(g.slots) }

// NumDisks returns the number of disks placed at construction.
func (g *CellGrid) NumDisks() int { return g.numDisks }

// Capacity returns the fixed per-cell capacity.
func (g *CellGrid) Capacity() int { return g.capacity }

// CellSize returns the cell extents.
func (g *CellGrid) CellSize() Vec2 { return g.size }

// Occupancy returns the number of disks in cell c.
func (g *CellGrid) Occupancy(c int) int { return len(g.slots[c]) }

// TotalOccupancy sums the occupancy of all cells. It equals NumDisks at every
// point between mutations.
func (g *CellGrid) TotalOccupancy() int {
	n := 0
	for _, s := range g.slots {
		n += len(s)
	}
	return n
}

// Neighbor returns neighbor slot n (0..8) of cell c.
func (g *CellGrid) Neighbor(c, n int) int { return g.neighbors[c][n] }

// Position returns the cell-local position of the disk at loc.
func (g *CellGrid) Position(loc Locator) Vec2 { return g.slots[loc.Cell][loc.Slot].pos }

// DiskAt returns the index of the disk at loc.
func (g *CellGrid) DiskAt(loc Locator) int { return g.slots[loc.Cell][loc.Slot].disk }

// CellCenter returns the box-centered coordinates of the center of cell c.
func (g *CellGrid) CellCenter(c int) Vec2 {
	i, j := c%g.cells[0], c/g.cells[0]
	return Vec2{
		(float64(i)+0.5)*g.size[0] - g.box[0]/2,
		(float64(j)+0.5)*g.size[1] - g.box[1]/2,
	}
}

// Locate returns the locator of disk. It scans every cell and is meant for tests and
// diagnostics, not for the chain loop.
func (g *CellGrid) Locate(disk int) (Locator, bool) {
	for c, cell := range g.slots {
		for k, s := range cell {
			if s.disk == disk {
				return Locator{Cell: c, Slot: k}, true
			}
		}
	}
	return Locator{}, false
}

// Snapshot returns the box-centered absolute position of every disk, ordered by disk
// index.
func (g *CellGrid) Snapshot() []Vec2 {
	out := make([]Vec2, g.numDisks)
	for c, cell := range g.slots {
		center := g.CellCenter(c)
		for _, s := range cell {
			out[s.disk] = Vec2{s.pos[0] + center[0], s.pos[1] + center[1]}
		}
	}
	return out
}
