// Package lattice builds initial disk configurations and checks them for overlaps.
// All positions are box-centered: each coordinate lies in [-box/2, box/2).
package lattice

import (
	"fmt"
	"math"

	"github.com/hard-disks/ecmc/sim"
)

// packingSlack spreads the packed lattices slightly beyond contact.
const packingSlack = 1.00001

// overlapTolerance is added to the squared contact distance when checking overlaps,
// so disks left exactly at contact by a previous run are reported.
const overlapTolerance = 1e-10

// Generate returns the initial configuration for the shape of cfg.
func Generate(cfg sim.Config) ([]sim.Vec2, error) {
	switch cfg.Shape {
	case sim.ShapeCrystal:
		return Crystal(cfg.Params.DisksX, cfg.Params.DisksY, cfg.Params.Slant, cfg.Box), nil
	case sim.ShapeSquare, sim.ShapeRectangle:
		return Packed(cfg.NumDisks, cfg.Sigma, cfg.Box), nil
	default:
		return nil, fmt.Errorf("%w: no lattice for shape %q", sim.ErrConfiguration, cfg.Shape)
	}
}

// Crystal returns an nx by ny triangular lattice filling box, with odd rows shifted
// by half a lattice spacing. A non-zero slant tilts the rows so that the lattice
// wraps with a vertical offset of slant/2 rows.
func Crystal(nx, ny, slant int, box sim.Vec2) []sim.Vec2 {
	dx := sim.Vec2{box[0] / float64(nx), float64(slant) * box[1] / float64(ny) / float64(nx)}
	dy := sim.Vec2{0.5 * box[0] / float64(nx), box[1] / float64(ny)}
	rowShift := 0.5 * float64(slant) * box[1] / float64(ny) / float64(nx)

	out := make([]sim.Vec2, nx*ny)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			odd := float64(j % 2)
			out[j*nx+i] = wrap(sim.Vec2{
				math.Mod(float64(i)*dx[0]+odd*dy[0], box[0]),
				math.Mod(float64(i)*dx[1]+float64(j)*dy[1]+rowShift*odd, box[1]),
			}, box)
		}
	}
	return out
}

// Packed returns n disks of radius sigma on a triangular lattice at just over contact,
// filled row by row from the box center and wrapped periodically.
func Packed(n int, sigma float64, box sim.Vec2) []sim.Vec2 {
	side := int(math.Sqrt(float64(n)))
	dx := sim.Vec2{packingSlack * 2 * sigma, 0}
	dy := sim.Vec2{packingSlack * sigma, packingSlack * sigma * math.Sqrt(3)}

	out := make([]sim.Vec2, n)
	for i := 0; i < side; i++ {
		for j := 0; j < side+2; j++ {
			k := j*side + i
			if k >= n {
				continue
			}
			out[k] = wrap(sim.Vec2{
				math.Mod(float64(i)*dx[0]+float64(j)*dy[0], box[0]),
				math.Mod(float64(i)*dx[1]+float64(j)*dy[1], box[1]),
			}, box)
		}
	}
	return out
}

func wrap(p, box sim.Vec2) sim.Vec2 {
	for k := range p {
		if p[k] <= -box[k]/2 {
			p[k] += box[k]
		}
		if p[k] >= box[k]/2 {
			p[k] -= box[k]
		}
	}
	return p
}

// FindOverlap returns the closest pair of disks of radius sigma if it is closer than
// contact under periodic boundaries. It is O(N^2).
func FindOverlap(positions []sim.Vec2, box sim.Vec2, sigma float64) (i, j int, found bool) {
	i, j, d := sim.ClosestPair(positions, box)
	if d*d < 4*sigma*sigma+overlapTolerance {
		return i, j, true
	}
	return 0, 0, false
}
