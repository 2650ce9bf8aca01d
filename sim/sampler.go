package sim

import "math/rand"

// ActiveDiskSampler draws disks uniformly from a CellGrid by rejection: a uniform
// cell and a uniform slot below the capacity, accepted when the slot is occupied.
// Every disk is accepted with the same probability 1/(cells*capacity) per draw, so
// the result is uniform whatever the occupancy. The expected number of draws is
// cells*capacity/N.
type ActiveDiskSampler struct {
	rng *rand.Rand
}

// NewActiveDiskSampler returns a sampler drawing from rng.
func NewActiveDiskSampler(rng *rand.Rand) *ActiveDiskSampler {
	return &ActiveDiskSampler{rng: rng}
}

// Sample returns the locator of a uniformly chosen disk.
func (s *ActiveDiskSampler) Sample(g *CellGrid) (Locator, error) {
	if g.NumDisks() == 0 {
		return Locator{}, ErrEmptyGrid
	}
	for {
		c := s.rng.Intn(g.NumCells())
		k := s.rng.Intn(g.capacity)
		if k < len(g.slots[c]) {
			return Locator{Cell: c, Slot: k}, nil
		}
	}
}
