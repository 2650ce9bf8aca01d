package sim

import "math"

// Parallel-separation guards of the collision search. They keep a disk from
// colliding with itself and from re-colliding with a disk it already touches.
const (
	selfCellGuard    = 1e-14
	adjacentRowGuard = 1e-16
)

// forwardNeighbors lists, per travel axis, the six neighbor slots that can hold a
// disk reachable by a forward move of at most one cell: for +x the right column and
// the cells above, below and at the active cell; for +y the top row and the cells
// left, right and at the active cell.
var forwardNeighbors = [2][6]int{
	AxisX: {5, 1, 7, 4, 2, 8},
	AxisY: {7, 5, 3, 4, 8, 6},
}

type neighborScan struct {
	neighbor    int
	offset      Vec2    // neighbor cell offset in units of cells
	minParallel float64 // candidates at or behind this parallel separation are skipped
}

var scans = buildScans()

func buildScans() [2][6]neighborScan {
	var out [2][6]neighborScan
	for _, axis := range []Axis{AxisX, AxisY} {
		for i, n := range forwardNeighbors[axis] {
			off := neighborOffset(n)
			p := neighborScan{neighbor: n, offset: Vec2{float64(off[0]), float64(off[1])}, minParallel: math.Inf(-1)}
			switch {
			case n == selfNeighbor:
				p.minParallel = selfCellGuard
			case off[axis] == 0:
				p.minParallel = adjacentRowGuard
			}
			out[axis][i] = p
		}
	}
	return out
}

// Collision is the first contact ahead of an active disk.
type Collision struct {
	// Distance the active disk travels before contact. Equals the budget when
	// nothing is hit. May be slightly negative for disks already in contact.
	Distance float64
	Target   Locator
	// ContactOffset is the parallel separation of the pair at contact,
	// sqrt(4 sigma^2 - lateral^2). It feeds the pressure estimator.
	ContactOffset float64
	Found         bool
}

// SeekCollision finds the nearest disk the active disk would hit moving forward
// along axis by at most budget. It does not modify the grid.
func (g *CellGrid) SeekCollision(active Locator, axis Axis, budget float64) Collision {
	a := g.slots[active.Cell][active.Slot].pos
	lat := axis.Lateral()
	reach := 2 * g.sigma
	reach2 := reach * reach

	best := Collision{Distance: budget}
	for _, p := range scans[axis] {
		cell := g.neighbors[active.Cell][p.neighbor]
		for j, s := range g.slots[cell] {
			dLat := s.pos[lat] - a[lat] + p.offset[lat]*g.size[lat]
			if math.Abs(dLat) >= reach {
				continue
			}
			dPar := s.pos[axis] - a[axis] + p.offset[axis]*g.size[axis]
			if dPar <= p.minParallel {
				continue
			}
			contact := math.Sqrt(reach2 - dLat*dLat)
			if d := dPar - contact; d < best.Distance {
				best = Collision{
					Distance:      d,
					Target:        Locator{Cell: cell, Slot: j},
					ContactOffset: contact,
					Found:         true,
				}
			}
		}
	}
	return best
}
