package sim

import "errors"

var (
	// ErrConfiguration marks geometry or run parameters the engine cannot start with.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrCapacityOverflow is returned when a migration would push a cell past its
	// fixed capacity. The cell capacity is too small for the local density.
	ErrCapacityOverflow = errors.New("cell capacity overflow")

	// ErrEmptyGrid is returned when an active disk is requested from a grid without disks.
	ErrEmptyGrid = errors.New("no disks in cell grid")
)
