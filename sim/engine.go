// sim/engine.go
package sim

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hard-disks/ecmc/sim/trace"
)

// Engine runs straight event chains on a CellGrid. Chains alternate between +y and
// +x; each chain starts from a uniformly sampled disk and passes its motion from
// disk to disk at every contact until its displacement budget is spent. Every
// ChainsPerInterval chains the engine emits one pressure sample and one snapshot.
type Engine struct {
	cfg      Config
	grid     *CellGrid
	sampler  *ActiveDiskSampler
	recorder Recorder
	trace    *trace.ChainTrace

	Metrics *Metrics

	stats       intervalStats
	direction   Axis
	remaining   float64 // run budget not yet started
	sampleIndex int
	done        bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithTrace records chains and collisions into ct.
func WithTrace(ct *trace.ChainTrace) Option {
	return func(e *Engine) { e.trace = ct }
}

// NewEngine returns an engine over grid that draws active disks from rng and
// reports to rec. The grid is owned by the engine from here on.
func NewEngine(cfg Config, grid *CellGrid, rng *rand.Rand, rec Recorder, opts ...Option) *Engine {
	e := &Engine{
		cfg:       cfg,
		grid:      grid,
		sampler:   NewActiveDiskSampler(rng),
		recorder:  rec,
		Metrics:   NewMetrics(),
		direction: AxisX, // flipped before the first chain, which runs along y
		remaining: cfg.TotalLength,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Grid returns the engine's cell grid.
func (e *Engine) Grid() *CellGrid { return e.grid }

// Done reports whether the run budget is spent.
func (e *Engine) Done() bool { return e.done }

// Run writes the static parameters and the initial configuration, runs chains
// until the total length is consumed, and records the teardown scalars.
func (e *Engine) Run() error {
	start := time.Now()
	if err := e.Start(start); err != nil {
		return err
	}
	logrus.Infof("Running %d disks, V/V0=%.6g, chain length %.6g, total length %.6g, %d chains per sample",
		e.cfg.NumDisks, e.cfg.VRelative, e.cfg.ChainLength, e.cfg.TotalLength, e.cfg.ChainsPerInterval)
	for !e.done {
		if err := e.Step(); err != nil {
			return err
		}
	}
	return e.Finish(time.Since(start))
}

// Start persists and flushes the static parameters and the initial snapshot.
func (e *Engine) Start(now time.Time) error {
	positions := e.grid.Snapshot()
	params := NewStaticParameters(e.cfg, ConfigDigest(e.cfg, positions), now)
	if err := e.recorder.WriteStaticParameters(params); err != nil {
		return fmt.Errorf("writing static parameters: %w", err)
	}
	if err := e.recorder.WriteSnapshot(InitialSnapshotIndex, positions); err != nil {
		return fmt.Errorf("writing initial configuration: %w", err)
	}
	if err := e.recorder.Flush(); err != nil {
		return fmt.Errorf("flushing output: %w", err)
	}
	return nil
}

// Step runs one chain and, when the chain closes an interval, emits a sample.
func (e *Engine) Step() error {
	if e.done {
		return nil
	}
	axis := e.direction.Lateral()
	e.direction = axis
	budget := math.Min(e.cfg.ChainLength, e.remaining)

	active, err := e.sampler.Sample(e.grid)
	if err != nil {
		return err
	}
	rec := trace.ChainRecord{
		Index:     e.Metrics.Chains,
		Axis:      axis.String(),
		StartDisk: e.grid.DiskAt(active),
		Budget:    budget,
	}
	e.stats.length[axis] += budget

	capLen := e.cfg.DisplacementCap
	for {
		hit := e.grid.SeekCollision(active, axis, budget)
		dist := math.Max(hit.Distance, 0)
		move := math.Min(math.Min(dist, budget), capLen)

		from := e.grid.DiskAt(active)
		next, moved, err := e.grid.Advance(active, axis, e.grid.Position(active)[axis]+move)
		if err != nil {
			return fmt.Errorf("chain %d: %w", e.Metrics.Chains, err)
		}

		if capLen < math.Min(dist, budget) {
			// limited by the cell size: same disk, same axis
			budget -= capLen
			active = next
			rec.CappedSteps++
			e.Metrics.CappedSteps++
			continue
		}
		if dist < budget {
			target := moved.Apply(hit.Target)
			e.stats.contact[axis] += hit.ContactOffset
			budget -= dist
			active = target
			rec.Collisions++
			e.Metrics.Collisions++
			e.trace.RecordEvent(trace.EventRecord{
				Chain:         rec.Index,
				From:          from,
				To:            e.grid.DiskAt(active),
				Distance:      dist,
				ContactOffset: hit.ContactOffset,
			})
			continue
		}
		active = next
		break
	}
	rec.EndDisk = e.grid.DiskAt(active)
	e.trace.RecordChain(rec)
	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		logrus.Tracef("[chain %d] %s from disk %d to disk %d, %d collisions, %d capped",
			rec.Index, rec.Axis, rec.StartDisk, rec.EndDisk, rec.Collisions, rec.CappedSteps)
	}
	e.Metrics.Chains++

	e.stats.chains++
	if e.stats.chains >= e.cfg.ChainsPerInterval {
		if err := e.emitSample(); err != nil {
			return err
		}
	}

	e.remaining -= e.cfg.ChainLength
	if e.remaining < 0 {
		e.done = true
	}
	return nil
}

// emitSample hands the interval's pressures and the current configuration to the
// recorder, flushes it and clears the interval accumulators.
func (e *Engine) emitSample() error {
	p := e.stats.pressures(e.cfg.VRelative)
	idx := e.sampleIndex
	for _, s := range []struct {
		name  string
		value float64
	}{
		{SeriesPressure, p.Pressure},
		{SeriesPressureX, p.PressureX},
		{SeriesPressureY, p.PressureY},
	} {
		if err := e.recorder.AppendSeries(s.name, idx, s.value); err != nil {
			return fmt.Errorf("appending %s[%d]: %w", s.name, idx, err)
		}
	}
	if err := e.recorder.WriteSnapshot(idx, e.grid.Snapshot()); err != nil {
		return fmt.Errorf("writing snapshot %d: %w", idx, err)
	}
	if err := e.recorder.RecordScalar(ScalarCount, float64(idx)); err != nil {
		return fmt.Errorf("recording %s: %w", ScalarCount, err)
	}
	if err := e.recorder.RecordScalar(ScalarCollisions, float64(e.Metrics.Collisions)); err != nil {
		return fmt.Errorf("recording %s: %w", ScalarCollisions, err)
	}
	if err := e.recorder.Flush(); err != nil {
		return fmt.Errorf("flushing sample %d: %w", idx, err)
	}
	logrus.Debugf("[sample %05d] pressure=%.8g pressure_x=%.8g pressure_y=%.8g collisions=%d",
		idx, p.Pressure, p.PressureX, p.PressureY, e.Metrics.Collisions)

	e.Metrics.LastSample = p
	e.Metrics.Samples++
	e.sampleIndex++
	e.stats.reset()
	return nil
}

// Finish records the wall-clock statistics of the run and flushes the recorder.
func (e *Engine) Finish(elapsed time.Duration) error {
	e.Metrics.Elapsed = elapsed
	scalars := []struct {
		name  string
		value float64
	}{
		{ScalarCollisions, float64(e.Metrics.Collisions)},
		{ScalarElapsed, elapsed.Seconds()},
		{ScalarEventsPerHour, e.Metrics.EventsPerHour()},
	}
	for _, s := range scalars {
		if err := e.recorder.RecordScalar(s.name, s.value); err != nil {
			return fmt.Errorf("recording %s: %w", s.name, err)
		}
	}
	if err := e.recorder.Flush(); err != nil {
		return fmt.Errorf("flushing output: %w", err)
	}
	logrus.Infof("%d collisions in %d chains, %.3fs", e.Metrics.Collisions, e.Metrics.Chains, elapsed.Seconds())
	return nil
}
