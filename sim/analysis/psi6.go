package analysis

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/hard-disks/ecmc/sim"
)

// Psi6Neighbors is the number of nearest neighbors each disk's bond angles are taken over.
const Psi6Neighbors = 6

// GlobalPsi6 returns the global orientational order parameter of a configuration
// in a periodic box: the average over disks of (1/6) sum_k exp(6i theta_k), where
// theta_k is the angle of the minimum-image bond to the k-th nearest neighbor.
// A perfect triangular crystal with a bond along x gives 1; a rotation by theta
// turns the phase by 6 theta.
func GlobalPsi6(positions []sim.Vec2, box sim.Vec2) complex128 {
	if len(positions) == 0 {
		return 0
	}
	tree := kdtree.New(periodicImages(positions, box), false)

	var total complex128
	for _, p := range positions {
		q := kdtree.Point{p[0], p[1]}
		// one extra slot for the disk itself
		keep := kdtree.NewNKeeper(Psi6Neighbors + 1)
		tree.NearestSet(keep, q)

		var local complex128
		var n int
		for _, c := range keep.Heap {
			if c.Comparable == nil || c.Dist == 0 {
				continue
			}
			nb := c.Comparable.(kdtree.Point)
			theta := math.Atan2(nb[1]-q[1], nb[0]-q[0])
			local += cmplx.Rect(1, Psi6Neighbors*theta)
			n++
		}
		if n > 0 {
			total += local / complex(float64(n), 0)
		}
	}
	return total / complex(float64(len(positions)), 0)
}

// periodicImages returns every position and its eight images in the neighboring
// boxes, so that a plain nearest-neighbor search finds minimum-image bonds.
func periodicImages(positions []sim.Vec2, box sim.Vec2) kdtree.Points {
	out := make(kdtree.Points, 0, 9*len(positions))
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for _, p := range positions {
				out = append(out, kdtree.Point{p[0] + float64(dx)*box[0], p[1] + float64(dy)*box[1]})
			}
		}
	}
	return out
}

// Psi6Series returns |psi6| of every sampled snapshot of rec in index order. The
// initial configuration is skipped.
func Psi6Series(rec *sim.MemoryRecorder, box sim.Vec2) []float64 {
	var out []float64
	for _, idx := range rec.SnapshotIndices() {
		if idx < 0 {
			continue
		}
		out = append(out, cmplx.Abs(GlobalPsi6(rec.Snapshots[idx], box)))
	}
	return out
}
