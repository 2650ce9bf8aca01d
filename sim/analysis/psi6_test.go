package analysis

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hard-disks/ecmc/sim"
	"github.com/hard-disks/ecmc/sim/lattice"
)

func crystalConfig(t *testing.T, nx, ny int) sim.Config {
	t.Helper()
	p := sim.DefaultRunParams()
	p.DisksX, p.DisksY, p.Eta = nx, ny, 0.7
	cfg, err := sim.NewConfig(p)
	require.NoError(t, err)
	return cfg
}

func TestGlobalPsi6_Crystal_IsOne(t *testing.T) {
	cfg := crystalConfig(t, 8, 8)
	positions := lattice.Crystal(8, 8, 0, cfg.Box)

	psi := GlobalPsi6(positions, cfg.Box)

	assert.InDelta(t, 1, real(psi), 1e-9)
	assert.InDelta(t, 0, imag(psi), 1e-9)
}

func TestGlobalPsi6_CrystalRotatedByRightAngle_FlipsPhase(t *testing.T) {
	// GIVEN the crystal turned by 90 degrees, with the box turned along with it
	cfg := crystalConfig(t, 6, 8)
	positions := lattice.Crystal(6, 8, 0, cfg.Box)
	rotated := make([]sim.Vec2, len(positions))
	for i, p := range positions {
		rotated[i] = sim.Vec2{-p[1], p[0]}
	}
	box := sim.Vec2{cfg.Box[1], cfg.Box[0]}

	// WHEN psi6 is computed
	psi := GlobalPsi6(rotated, box)

	// THEN the order is still perfect and the phase has turned by 6 * 90 degrees
	assert.InDelta(t, 1, cmplx.Abs(psi), 1e-9)
	assert.InDelta(t, -1, real(psi), 1e-9)
}

func TestGlobalPsi6_RotatedCluster_PhaseFollowsRotation(t *testing.T) {
	// GIVEN a 10x10 triangular patch with unit spacing turned by 10 degrees, alone
	// in a box far larger than itself
	theta := 10 * math.Pi / 180
	var positions []sim.Vec2
	for j := 0; j < 10; j++ {
		for i := 0; i < 10; i++ {
			x := float64(i) + 0.5*float64(j%2)
			y := float64(j) * math.Sqrt(3) / 2
			positions = append(positions, sim.Vec2{
				x*math.Cos(theta) - y*math.Sin(theta),
				x*math.Sin(theta) + y*math.Cos(theta),
			})
		}
	}

	// WHEN psi6 is computed
	psi := GlobalPsi6(positions, sim.Vec2{1000, 1000})

	// THEN the phase is 6 theta; edge disks lower the modulus but keep the phase
	assert.InDelta(t, 6*theta, cmplx.Phase(psi), 1e-9)
	assert.Greater(t, cmplx.Abs(psi), 0.7)
	assert.Less(t, cmplx.Abs(psi), 1.0)
}

func TestGlobalPsi6_UniformGas_Disordered(t *testing.T) {
	gen := rand.New(rand.NewSource(4))
	positions := make([]sim.Vec2, 400)
	for i := range positions {
		positions[i] = sim.Vec2{gen.Float64() - 0.5, gen.Float64() - 0.5}
	}

	psi := GlobalPsi6(positions, sim.Vec2{1, 1})

	assert.Less(t, cmplx.Abs(psi), 0.15)
}

func TestGlobalPsi6_Empty(t *testing.T) {
	assert.Equal(t, complex128(0), GlobalPsi6(nil, sim.Vec2{1, 1}))
}

func TestPsi6Series_SkipsInitialSnapshot(t *testing.T) {
	// GIVEN an initial crystal and two sampled snapshots, one of them disordered
	cfg := crystalConfig(t, 4, 4)
	crystal := lattice.Crystal(4, 4, 0, cfg.Box)
	gen := rand.New(rand.NewSource(5))
	gas := make([]sim.Vec2, len(crystal))
	for i := range gas {
		gas[i] = sim.Vec2{(gen.Float64() - 0.5) * cfg.Box[0], (gen.Float64() - 0.5) * cfg.Box[1]}
	}
	rec := sim.NewMemoryRecorder()
	require.NoError(t, rec.WriteSnapshot(sim.InitialSnapshotIndex, crystal))
	require.NoError(t, rec.WriteSnapshot(1, gas))
	require.NoError(t, rec.WriteSnapshot(0, crystal))

	// WHEN the series is built
	s := Psi6Series(rec, cfg.Box)

	// THEN it holds the sampled snapshots in index order
	require.Len(t, s, 2)
	assert.InDelta(t, 1, s[0], 1e-9)
	assert.InDelta(t, cmplx.Abs(GlobalPsi6(gas, cfg.Box)), s[1], 0)
}
