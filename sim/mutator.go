package sim

import "fmt"

// forwardCell is the neighbor slot a disk migrates into when it crosses the forward
// face of its cell.
var forwardCell = [2]int{AxisX: 5, AxisY: 7}

// Relocation records a disk moved by swap-compaction into a slot vacated by a
// migration. Locators held across an Advance call must be passed through Apply.
type Relocation struct {
	Moved bool
	From  Locator
	To    Locator
}

// Apply returns the current locator of a disk that was at loc before the move.
func (r Relocation) Apply(loc Locator) Locator {
	if r.Moved && loc == r.From {
		return r.To
	}
	return loc
}

// Advance sets the coordinate along axis of the disk at active to coord, in the
// frame of its current cell. A coordinate beyond the forward face migrates the disk
// into the next cell along axis; the lateral coordinate is kept. It returns the new
// locator of the moved disk.
//
// coord must not exceed one and a half cell sizes; the engine's displacement cap
// guarantees this.
func (g *CellGrid) Advance(active Locator, axis Axis, coord float64) (Locator, Relocation, error) {
	src := active.Cell
	if coord <= g.size[axis]/2 {
		g.slots[src][active.Slot].pos[axis] = coord
		return active, Relocation{}, nil
	}

	dst := g.neighbors[src][forwardCell[axis]]
	if len(g.slots[dst]) == g.capacity {
		return active, Relocation{}, fmt.Errorf("%w: cell %d already holds %d disks", ErrCapacityOverflow, dst, g.capacity)
	}
	moving := g.slots[src][active.Slot]
	moving.pos[axis] = coord - g.size[axis]
	g.slots[dst] = append(g.slots[dst], moving)
	to := Locator{Cell: dst, Slot: len(g.slots[dst]) - 1}

	return to, g.removeAt(active), nil
}

// removeAt drops the disk at loc in O(1) by moving the cell's last disk into its slot.
func (g *CellGrid) removeAt(loc Locator) Relocation {
	cell := g.slots[loc.Cell]
	last := len(cell) - 1
	var r Relocation
	if loc.Slot != last {
		cell[loc.Slot] = cell[last]
		r = Relocation{Moved: true, From: Locator{Cell: loc.Cell, Slot: last}, To: loc}
	}
	g.slots[loc.Cell] = cell[:last]
	return r
}
