package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hard-disks/ecmc/sim"
	"github.com/hard-disks/ecmc/sim/lattice"
	"github.com/hard-disks/ecmc/sim/output"
	"github.com/hard-disks/ecmc/sim/trace"
)

var (
	// CLI flags for the run
	runFlags         sim.RunParams // Run parameters; flags override the parameter file
	paramsPath       string        // YAML or gcfg parameter file
	initialPath      string        // Initial configuration (.json, .db or .jsonl)
	outputPaths      []string      // Output stores (.db or .jsonl); none keeps results in memory
	logLevel         string        // Log verbosity level
	traceLevel       string        // Chain trace verbosity
	skipOverlapCheck bool          // Skip the O(N^2) overlap check at startup
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "ecmc",
	Short: "Event-chain Monte Carlo sampler for two-dimensional hard disks",
}

// runOptions is everything a run needs besides the flags' parsing.
type runOptions struct {
	Params           sim.RunParams
	Initial          string
	Outputs          []string
	TraceLevel       string
	SkipOverlapCheck bool
}

// runCmd samples the system described by the flags and the parameter file
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the event-chain sampler",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		params, err := resolveRunParams(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s", traceLevel)
		}

		e, ct, err := runSimulation(runOptions{
			Params:           params,
			Initial:          initialPath,
			Outputs:          outputPaths,
			TraceLevel:       traceLevel,
			SkipOverlapCheck: skipOverlapCheck,
		})
		if err != nil {
			logrus.Fatalf("Run failed: %v", err)
		}
		e.Metrics.Print()
		if ct.Enabled() {
			printTraceSummary(trace.Summarize(ct))
		}
		logrus.Info("Run complete.")
	},
}

func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// resolveRunParams starts from the defaults, applies the parameter file if one is
// given, then applies every flag set on the command line.
func resolveRunParams(cmd *cobra.Command) (sim.RunParams, error) {
	if paramsPath == "" {
		return runFlags, nil
	}
	p, err := LoadRunParams(paramsPath, sim.DefaultRunParams())
	if err != nil {
		return p, err
	}
	overrides := map[string]func(){
		"nx":            func() { p.DisksX = runFlags.DisksX },
		"ny":            func() { p.DisksY = runFlags.DisksY },
		"eta":           func() { p.Eta = runFlags.Eta },
		"shape":         func() { p.Shape = runFlags.Shape },
		"slant":         func() { p.Slant = runFlags.Slant },
		"extra-factor":  func() { p.ExtraFactor = runFlags.ExtraFactor },
		"factor":        func() { p.Factor = runFlags.Factor },
		"samples":       func() { p.Samples = runFlags.Samples },
		"cell-capacity": func() { p.CellCapacity = runFlags.CellCapacity },
		"cells-x":       func() { p.CellsX = runFlags.CellsX },
		"cells-y":       func() { p.CellsY = runFlags.CellsY },
		"chain-length":  func() { p.ChainLength = runFlags.ChainLength },
		"seed":          func() { p.Seed = runFlags.Seed },
	}
	for name, apply := range overrides {
		if cmd.Flags().Changed(name) {
			logrus.Debugf("Flag --%s overrides %s", name, paramsPath)
			apply()
		}
	}
	return p, nil
}

// runSimulation builds the grid, runs the engine to completion and closes the
// recorder. The trace is returned even when disabled.
func runSimulation(opts runOptions) (*sim.Engine, *trace.ChainTrace, error) {
	cfg, err := sim.NewConfig(opts.Params)
	if err != nil {
		return nil, nil, err
	}
	positions, err := initialPositions(cfg, opts.Initial)
	if err != nil {
		return nil, nil, err
	}
	if !opts.SkipOverlapCheck {
		if i, j, found := lattice.FindOverlap(positions, cfg.Box, cfg.Sigma); found {
			logrus.Warnf("Initial configuration overlaps: disks %d and %d are closer than %.6g", i, j, 2*cfg.Sigma)
		}
	}
	grid, err := sim.NewCellGrid(cfg, positions)
	if err != nil {
		return nil, nil, err
	}

	var rec sim.Recorder = sim.NewMemoryRecorder()
	if len(opts.Outputs) > 0 {
		if rec, err = output.OpenAll(opts.Outputs...); err != nil {
			return nil, nil, err
		}
	}

	ct := trace.NewChainTrace(trace.TraceConfig{Level: trace.TraceLevel(opts.TraceLevel)})
	e := sim.NewEngine(cfg, grid, sim.NewSimulationRNG(sim.NewSimulationKey(cfg.Params.Seed)), rec, sim.WithTrace(ct))
	runErr := e.Run()
	if err := rec.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("closing output: %w", err)
	}
	if runErr != nil {
		return nil, nil, runErr
	}
	return e, ct, nil
}

// initialPositions generates the lattice of cfg, or reads the configuration stored
// at path and centers it in the box.
func initialPositions(cfg sim.Config, path string) ([]sim.Vec2, error) {
	if path == "" {
		return lattice.Generate(cfg)
	}
	var positions []sim.Vec2
	var err error
	if strings.EqualFold(filepath.Ext(path), ".json") {
		positions, err = output.ReadInitialJSON(path)
	} else {
		positions, err = readStoredInitial(path)
	}
	if err != nil {
		return nil, err
	}
	if len(positions) != cfg.NumDisks {
		return nil, fmt.Errorf("%w: %s holds %d disks, the run has %d", sim.ErrConfiguration, path, len(positions), cfg.NumDisks)
	}
	sim.WrapIntoBox(positions, cfg.Box)
	logrus.Infof("Read %d initial positions from %s", len(positions), path)
	return positions, nil
}

// readStoredInitial returns the initial snapshot of a store written by an earlier run.
func readStoredInitial(path string) ([]sim.Vec2, error) {
	format, err := output.FormatOf(path)
	if err != nil {
		return nil, err
	}
	if format == output.FormatSQLite {
		return output.ReadInitialSQLite(path)
	}
	m, err := output.Load(path)
	if err != nil {
		return nil, err
	}
	positions, ok := m.Snapshots[sim.InitialSnapshotIndex]
	if !ok {
		return nil, fmt.Errorf("%s holds no initial configuration", path)
	}
	return positions, nil
}

func printTraceSummary(s *trace.TraceSummary) {
	fmt.Println("=== Trace Summary ===")
	fmt.Printf("Traced chains        : %d\n", s.TotalChains)
	fmt.Printf("Collisions per chain : %.4g (max %d)\n", s.MeanCollisions, s.MaxCollisions)
	fmt.Printf("Capped steps         : %d\n", s.TotalCappedSteps)
	fmt.Printf("Distinct start disks : %d\n", s.UniqueStartDisks)
	if s.MeanContactOffset > 0 {
		fmt.Printf("Mean contact offset  : %.6g\n", s.MeanContactOffset)
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// registerRunFlags binds the run flags of cmd to the package-level flag variables,
// resetting them to their defaults.
func registerRunFlags(cmd *cobra.Command) {
	d := sim.DefaultRunParams()
	runFlags = d

	cmd.Flags().StringVar(&paramsPath, "params", "", "Parameter file (.yaml, .yml, .gcfg or .ini); flags set explicitly take precedence")
	cmd.Flags().StringVar(&initialPath, "in", "", "Initial configuration (.json array of [x, y], or a .db/.jsonl store of an earlier run)")
	cmd.Flags().StringArrayVar(&outputPaths, "out", nil, "Output store (.db, .sqlite or .jsonl), repeatable; results stay in memory when none is given")
	cmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	cmd.Flags().StringVar(&traceLevel, "trace-level", "none", "Chain trace level (none, chains, events)")
	cmd.Flags().BoolVar(&skipOverlapCheck, "skip-overlap-check", false, "Skip the startup check for overlapping disks")

	// System
	cmd.Flags().IntVar(&runFlags.DisksX, "nx", 0, "Disks per row")
	cmd.Flags().IntVar(&runFlags.DisksY, "ny", 0, "Rows of disks (even for the crystal shape)")
	cmd.Flags().Float64Var(&runFlags.Eta, "eta", 0, "Packing fraction")
	cmd.Flags().StringVar(&runFlags.Shape, "shape", d.Shape, "Box shape (crystal, square, rectangle)")
	cmd.Flags().IntVar(&runFlags.Slant, "slant", 0, "Even row shift of the crystal across the periodic boundary")
	cmd.Flags().IntVar(&runFlags.CellCapacity, "cell-capacity", d.CellCapacity, "Maximum disks per cell")
	cmd.Flags().IntVar(&runFlags.CellsX, "cells-x", 0, "Cells along x (0 derives it from the shape)")
	cmd.Flags().IntVar(&runFlags.CellsY, "cells-y", 0, "Cells along y (0 derives it from the shape)")

	// Schedule
	cmd.Flags().Int64Var(&runFlags.Factor, "factor", d.Factor, "Total chain length in units of the mean free path")
	cmd.Flags().IntVar(&runFlags.ExtraFactor, "extra-factor", d.ExtraFactor, "Additional multiplier of the total chain length")
	cmd.Flags().IntVar(&runFlags.Samples, "samples", d.Samples, "Number of pressure samples and snapshots")
	cmd.Flags().Float64Var(&runFlags.ChainLength, "chain-length", 0, "Displacement budget of one chain (0 derives it from N)")
	cmd.Flags().Int64Var(&runFlags.Seed, "seed", d.Seed, "Seed of the active-disk sampler")
}

// init sets up CLI flags and subcommands
func init() {
	registerRunFlags(runCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(analyzeCmd)
}
