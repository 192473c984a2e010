package cli

import "github.com/absmach/fedsim"

// Options holds every setting of a run. Values come from the defaults, then
// the experiment file, then flags given on the command line.
type Options struct {
	RunID         string
	ConfigFile    string
	Rounds        int
	Clients       int
	Samples       int
	LearningRate  float64
	Fraction      float64
	Topology      []int
	Seed          uint64
	DataPath      string
	MetricsFile   string
	CheckpointDir string
	ExportModel   string

	HPO            bool
	QuickSearch    bool
	MaxRounds      int
	Workers        int
	HPOResultsFile string
	BestConfigFile string
	HPOMetricsDir  string
}

func DefaultOptions() Options {
	return Options{
		Rounds:         200,
		Clients:        100,
		Samples:        20,
		LearningRate:   0.75,
		Fraction:       0.3,
		Topology:       []int{11, 15, 3},
		Seed:           42,
		DataPath:       "../data",
		MetricsFile:    "federated_metrics.csv",
		MaxRounds:      600,
		Workers:        1,
		HPOResultsFile: "hpo_results.csv",
		BestConfigFile: "best_config.json",
	}
}

// merge copies the values set in the file unless the matching flag was
// given explicitly.
func (o *Options) merge(cfg *fedsim.Config, changed func(flag string) bool) {
	sim, h := cfg.Simulation, cfg.HPO

	setInt(&o.Rounds, sim.Rounds, !changed(flagRounds))
	setInt(&o.Clients, sim.Clients, !changed(flagClients))
	setInt(&o.Samples, sim.Samples, !changed(flagSamples))
	setFloat(&o.LearningRate, sim.LearningRate, !changed(flagLR))
	setFloat(&o.Fraction, sim.Fraction, !changed(flagFraction))
	if len(sim.Topology) > 0 && !changed(flagTopology) {
		o.Topology = sim.Topology
	}
	if sim.Seed != 0 && !changed(flagSeed) {
		o.Seed = sim.Seed
	}
	setString(&o.DataPath, sim.DataPath, !changed(flagDataPath))
	setString(&o.MetricsFile, sim.MetricsFile, !changed(flagMetrics))
	setString(&o.CheckpointDir, sim.CheckpointDir, !changed(flagCheckpointDir))
	setString(&o.ExportModel, sim.ExportModel, !changed(flagExportModel))

	if h.Enabled && !changed(flagHPO) {
		o.HPO = true
	}
	if h.Quick && !changed(flagQuickSearch) {
		o.QuickSearch = true
	}
	setInt(&o.MaxRounds, h.MaxRounds, !changed(flagMaxRounds))
	setInt(&o.Workers, h.Workers, !changed(flagWorkers))
	setString(&o.HPOResultsFile, h.ResultsFile, !changed(flagHPOCSV))
	setString(&o.BestConfigFile, h.BestConfigFile, !changed(flagBestConfig))
	setString(&o.HPOMetricsDir, h.MetricsDir, !changed(flagHPOMetricsDir))
}

func setInt(dst *int, v int, ok bool) {
	if ok && v != 0 {
		*dst = v
	}
}

func setFloat(dst *float64, v float64, ok bool) {
	if ok && v != 0 {
		*dst = v
	}
}

func setString(dst *string, v string, ok bool) {
	if ok && v != "" {
		*dst = v
	}
}
