package sim

import (
	"fmt"
	"math"
)

// Shape selects the box aspect ratio and the default cell counts.
type Shape string

const (
	// ShapeCrystal fits an nx by ny triangular lattice exactly.
	ShapeCrystal Shape = "crystal"
	// ShapeSquare is the unit square.
	ShapeSquare Shape = "square"
	// ShapeRectangle has aspect ratio 1 : sqrt(3)/2 and unit area.
	ShapeRectangle Shape = "rectangle"
)

// ValidShapes is the set of recognized box shapes.
var ValidShapes = map[Shape]bool{ShapeCrystal: true, ShapeSquare: true, ShapeRectangle: true}

const (
	// DefaultFactor multiplies the mean free path to give the total chain length of a run.
	DefaultFactor = 200_000_000
	// DefaultSamples is the number of sampled configurations per run.
	DefaultSamples = 1000
	// DefaultCellCapacity is the maximum number of disks held by one cell.
	DefaultCellCapacity = 5

	meanFreePathCoeff = 0.07680
	chainLengthCoeff  = 3.125
	cellDensityRatio  = 7.0 / 8.0
)

// closePacking is the packing fraction of the triangular close-packed crystal.
var closePacking = math.Pi / (2 * math.Sqrt(3))

// RunParams is the parameter surface of a run, as read from flags or a parameter file.
// Zero CellsX, CellsY and ChainLength mean "derive from the shape".
type RunParams struct {
	DisksX       int     `yaml:"nx" gcfg:"nx"`
	DisksY       int     `yaml:"ny" gcfg:"ny"`
	Eta          float64 `yaml:"eta" gcfg:"eta"`
	Shape        string  `yaml:"shape" gcfg:"shape"`
	Slant        int     `yaml:"slant" gcfg:"slant"`
	ExtraFactor  int     `yaml:"extra_factor" gcfg:"extra-factor"`
	Factor       int64   `yaml:"factor" gcfg:"factor"`
	Samples      int     `yaml:"samples" gcfg:"samples"`
	CellCapacity int     `yaml:"cell_capacity" gcfg:"cell-capacity"`
	CellsX       int     `yaml:"cells_x,omitempty" gcfg:"cells-x"`
	CellsY       int     `yaml:"cells_y,omitempty" gcfg:"cells-y"`
	ChainLength  float64 `yaml:"chain_length,omitempty" gcfg:"chain-length"`
	Seed         int64   `yaml:"seed" gcfg:"seed"`
}

// DefaultRunParams returns the parameters used when nothing else is specified.
// The disk counts and packing fraction have no default.
func DefaultRunParams() RunParams {
	return RunParams{
		Shape:        string(ShapeCrystal),
		ExtraFactor:  1,
		Factor:       DefaultFactor,
		Samples:      DefaultSamples,
		CellCapacity: DefaultCellCapacity,
	}
}

// Config is the immutable geometry and schedule of a run, derived once from RunParams.
type Config struct {
	Params RunParams

	Shape        Shape
	NumDisks     int
	Box          Vec2
	Cells        [2]int
	CellSize     Vec2
	CellCapacity int
	Sigma        float64 // disk radius

	MeanFreePath      float64 // lambda_0
	ChainLength       float64 // displacement budget of one chain
	TotalLength       float64 // displacement budget of the run
	ChainsPerInterval int64   // chains between two samples
	VRelative         float64 // box area over the close-packed area, A / (2 sqrt(3) N sigma^2)

	// DisplacementCap bounds a single move so that a disk crosses at most one cell
	// boundary and every contact is found among the six forward neighbor cells.
	DisplacementCap float64
}

// NewConfig validates p and derives the run geometry.
func NewConfig(p RunParams) (Config, error) {
	if p.DisksX < 1 || p.DisksY < 1 {
		return Config{}, fmt.Errorf("%w: disk counts must be positive, got nx=%d ny=%d", ErrConfiguration, p.DisksX, p.DisksY)
	}
	if !(p.Eta > 0 && p.Eta < closePacking) {
		return Config{}, fmt.Errorf("%w: packing fraction must be in (0, %.4f), got %g", ErrConfiguration, closePacking, p.Eta)
	}
	shape := Shape(p.Shape)
	if !ValidShapes[shape] {
		return Config{}, fmt.Errorf("%w: unknown shape %q", ErrConfiguration, p.Shape)
	}
	if shape == ShapeCrystal && p.DisksY%2 != 0 {
		return Config{}, fmt.Errorf("%w: crystal needs an even number of rows, got ny=%d", ErrConfiguration, p.DisksY)
	}
	if p.Slant%2 != 0 {
		return Config{}, fmt.Errorf("%w: slant must be even, got %d", ErrConfiguration, p.Slant)
	}
	if p.ExtraFactor < 1 || p.Factor < 1 {
		return Config{}, fmt.Errorf("%w: run-length multipliers must be positive, got factor=%d extra_factor=%d", ErrConfiguration, p.Factor, p.ExtraFactor)
	}
	if p.Samples < 1 {
		return Config{}, fmt.Errorf("%w: samples must be positive, got %d", ErrConfiguration, p.Samples)
	}
	if p.CellCapacity < 1 {
		return Config{}, fmt.Errorf("%w: cell capacity must be positive, got %d", ErrConfiguration, p.CellCapacity)
	}
	if p.CellsX < 0 || p.CellsY < 0 || p.ChainLength < 0 {
		return Config{}, fmt.Errorf("%w: overrides must not be negative", ErrConfiguration)
	}

	n := p.DisksX * p.DisksY
	sqrtN := math.Sqrt(float64(n))
	c := Config{
		Params:       p,
		Shape:        shape,
		NumDisks:     n,
		CellCapacity: p.CellCapacity,
	}

	switch shape {
	case ShapeSquare:
		c.Box = Vec2{1, 1}
		c.Cells = [2]int{int(sqrtN * cellDensityRatio), int(sqrtN * cellDensityRatio)}
	case ShapeRectangle:
		a := math.Sqrt(math.Sqrt(3) / 2)
		c.Box = Vec2{1 / a, a}
		c.Cells = [2]int{int(sqrtN * c.Box[0] * cellDensityRatio), int(sqrtN * c.Box[1] * cellDensityRatio)}
	case ShapeCrystal:
		a := math.Sqrt(math.Sqrt(3) / 2 * float64(p.DisksY) / float64(p.DisksX))
		c.Box = Vec2{1 / a, a}
		c.Cells = [2]int{int(float64(p.DisksX) * cellDensityRatio), int(float64(p.DisksY) * cellDensityRatio)}
	}
	// A disk must never see its own periodic image, which needs two cells per axis.
	for k := range c.Cells {
		c.Cells[k] = max(2, c.Cells[k])
	}
	if p.CellsX > 0 {
		c.Cells[0] = p.CellsX
	}
	if p.CellsY > 0 {
		c.Cells[1] = p.CellsY
	}
	if c.Cells[0] < 2 || c.Cells[1] < 2 {
		return Config{}, fmt.Errorf("%w: cell grid must be at least 2x2, got %dx%d", ErrConfiguration, c.Cells[0], c.Cells[1])
	}

	area := c.Box[0] * c.Box[1]
	c.Sigma = math.Sqrt(area * p.Eta / math.Pi / float64(n))
	c.CellSize = Vec2{c.Box[0] / float64(c.Cells[0]), c.Box[1] / float64(c.Cells[1])}

	c.MeanFreePath = meanFreePathCoeff / sqrtN
	c.ChainLength = chainLengthCoeff * sqrtN * c.MeanFreePath
	if p.ChainLength > 0 {
		c.ChainLength = p.ChainLength
	}
	c.TotalLength = c.MeanFreePath * float64(p.Factor) * float64(p.ExtraFactor)
	c.ChainsPerInterval = int64(c.TotalLength / float64(p.Samples) / c.ChainLength)
	c.VRelative = area / 2 / math.Sqrt(3) / float64(n) / c.Sigma / c.Sigma

	c.DisplacementCap = math.Min(math.Min(c.Box[0], c.Box[1])/2, math.Min(c.CellSize[0], c.CellSize[1])) - 2*c.Sigma
	if c.DisplacementCap <= 0 {
		return Config{}, fmt.Errorf("%w: cells of size %.4gx%.4g are too small for disks of radius %.4g; use fewer cells",
			ErrConfiguration, c.CellSize[0], c.CellSize[1], c.Sigma)
	}
	if n > c.CellCapacity*c.TotalCells() {
		return Config{}, fmt.Errorf("%w: %d disks do not fit in %d cells of capacity %d",
			ErrConfiguration, n, c.TotalCells(), c.CellCapacity)
	}
	return c, nil
}

// TotalCells returns the number of cells in the grid.
func (c Config) TotalCells() int {
	return c.Cells[0] * c.Cells[1]
}

// Area returns the box area.
func (c Config) Area() float64 {
	return c.Box[0] * c.Box[1]
}
