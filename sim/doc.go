// Package sim provides the straight Event-Chain Monte Carlo engine for hard disks
// in a periodic box.
//
// # Reading Guide
//
// Start with these files to understand the sampler:
//   - cell_grid.go: the periodic cell list (disk slots stored relative to cell centers)
//   - collision.go: the exact collision search over the six forward neighbor cells
//   - mutator.go: in-place moves and cell migration with swap-compaction
//   - engine.go: the chain/interval loop and the pressure estimator
//
// # Architecture
//
// The sim package holds the engine and the Recorder interface; collaborators live in
// sub-packages:
//   - sim/lattice/: initial configurations and the O(N^2) overlap diagnostic
//   - sim/output/: Recorder implementations (SQLite, JSON lines) and initial-config readers
//   - sim/trace/: optional per-chain and per-collision trace recording
//   - sim/analysis/: post-run statistics of the pressure series
//
// An Engine owns its CellGrid, its random generator and its accumulators. It is not
// safe for concurrent use; every Recorder call is a synchronous barrier.
package sim
