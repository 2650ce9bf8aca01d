package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hard-disks/ecmc/sim"
	"github.com/hard-disks/ecmc/sim/analysis"
	"github.com/hard-disks/ecmc/sim/output"
)

var (
	burnIn    float64 // Leading fraction of each series dropped before averaging
	resamples int     // Bootstrap replicas
)

// analyzedSeries are the series summarized by analyze, in print order.
var analyzedSeries = []string{sim.SeriesPressure, sim.SeriesPressureX, sim.SeriesPressureY}

// psi6Name labels the orientational order estimate, which follows the pressures.
const psi6Name = "psi6"

// analyzeCmd reports the mean pressures and the mean orientational order of a
// finished run with bootstrap error bars
var analyzeCmd = &cobra.Command{
	Use:   "analyze <store>",
	Short: "Average the pressure and psi6 series of a finished run",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		estimates, err := analyzeStore(args[0], burnIn, resamples)
		if err != nil {
			logrus.Fatalf("Analysis failed: %v", err)
		}
		fmt.Println("=== Pressure ===")
		for _, est := range estimates {
			if est.Name == psi6Name {
				fmt.Println("=== Orientational order ===")
			}
			fmt.Println(est)
		}
	},
}

// analyzeStore loads the store at path and summarizes each pressure series, then
// |psi6| over the sampled snapshots when the store records the box. The bootstrap
// is seeded from the run's seed so repeated analyses agree.
func analyzeStore(path string, burnIn float64, resamples int) ([]analysis.Estimate, error) {
	if burnIn < 0 || burnIn >= 1 {
		return nil, fmt.Errorf("burn-in must be in [0, 1), got %g", burnIn)
	}
	m, err := output.Load(path)
	if err != nil {
		return nil, err
	}
	var seed int64
	if m.Parameters != nil {
		seed = m.Parameters.Seed
		logrus.Infof("Analyzing %s: %d disks at eta=%g", path, m.Parameters.NumDisks, m.Parameters.Eta)
	} else {
		logrus.Warnf("%s holds no run parameters", path)
	}
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(seed)).ForSubsystem(sim.SubsystemBootstrap)

	estimates := make([]analysis.Estimate, 0, len(analyzedSeries))
	for _, name := range analyzedSeries {
		series, err := m.Series(name)
		if err != nil {
			return nil, err
		}
		est, err := analysis.Summarize(name, series, burnIn, rng, resamples)
		if err != nil {
			return nil, err
		}
		estimates = append(estimates, est)
	}

	if m.Parameters == nil {
		return estimates, nil
	}
	psi6 := analysis.Psi6Series(m, m.Parameters.Box)
	logrus.Debugf("Computed psi6 of %d snapshots", len(psi6))
	est, err := analysis.Summarize(psi6Name, psi6, burnIn, rng, resamples)
	if err != nil {
		return nil, err
	}
	return append(estimates, est), nil
}

func init() {
	analyzeCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	analyzeCmd.Flags().Float64Var(&burnIn, "burn-in", analysis.DefaultBurnIn, "Leading fraction of each series discarded as equilibration")
	analyzeCmd.Flags().IntVar(&resamples, "resamples", analysis.DefaultResamples, "Bootstrap replicas")
}
