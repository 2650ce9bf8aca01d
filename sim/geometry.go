package sim

import "math"

// Vec2 is a position or displacement in the plane, indexed by Axis.
type Vec2 [2]float64

// Axis selects a coordinate. Chains travel in the positive direction of one axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Lateral returns the perpendicular axis.
func (a Axis) Lateral() Axis {
	return 1 - a
}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	default:
		panic("sim: invalid axis")
	}
}

// PeriodicSeparation returns the minimum-image distance between a and b in a box
// with periodic boundaries.
func PeriodicSeparation(a, b, box Vec2) float64 {
	var d2 float64
	for k := range a {
		d := math.Abs(a[k] - b[k])
		d = math.Min(d, box[k]-d)
		d2 += d * d
	}
	return math.Sqrt(d2)
}

// ClosestPair returns the pair with the smallest minimum-image distance, i > j, and
// that distance. It is O(N^2) and meant for diagnostics. The distance is +Inf for
// fewer than two disks.
func ClosestPair(positions []Vec2, box Vec2) (i, j int, d float64) {
	d = math.Inf(1)
	for a := range positions {
		for b := 0; b < a; b++ {
			if s := PeriodicSeparation(positions[a], positions[b], box); s < d {
				i, j, d = a, b, s
			}
		}
	}
	return i, j, d
}

// WrapIntoBox shifts coordinates greater than half the box length by one box length,
// so positions given with a lower-left origin become box-centered.
func WrapIntoBox(positions []Vec2, box Vec2) {
	for i := range positions {
		for k := range positions[i] {
			if positions[i][k] > box[k]/2 {
				positions[i][k] -= box[k]
			}
		}
	}
}
