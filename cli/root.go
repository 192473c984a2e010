// Package cli implements the fedsim command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/absmach/fedsim"
	"github.com/absmach/fedsim/hpo"
	"github.com/absmach/fedsim/pkg/mqtt"
	"github.com/absmach/fedsim/pkg/storage"
	"github.com/absmach/fedsim/simulation"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const (
	flagRunID         = "run-id"
	flagConfig        = "config"
	flagRounds        = "rounds"
	flagClients       = "clients"
	flagSamples       = "samples"
	flagLR            = "lr"
	flagFraction      = "fraction"
	flagTopology      = "topology"
	flagSeed          = "seed"
	flagDataPath      = "data-path"
	flagMetrics       = "metrics"
	flagCheckpointDir = "checkpoint-dir"
	flagExportModel   = "export-model"
	flagHPO           = "hpo"
	flagQuickSearch   = "quick-search"
	flagMaxRounds     = "max-rounds"
	flagWorkers       = "workers"
	flagHPOCSV        = "hpo-csv"
	flagBestConfig    = "best-config"
	flagHPOMetricsDir = "hpo-metrics-dir"
)

// Deps are the collaborators built by the binary.
type Deps struct {
	// NewService builds a simulation service over the dataset at dataPath.
	NewService func(ctx context.Context, dataPath string) (simulation.Service, error)
	HPORepo    storage.HPORepository
	PubSub     mqtt.PubSub
	Logger     *slog.Logger
}

func NewRootCmd(deps Deps) *cobra.Command {
	opts := DefaultOptions()

	cmd := &cobra.Command{
		Use:   "fedsim",
		Short: "Federated Averaging simulator",
		Long: `Simulate Federated Averaging of a bike-lock motion classifier over a
population of clients, or search the hyperparameter grid for the fastest
converging configuration.

Examples:
  # Run 200 rounds with the default configuration
  fedsim --data-path ./data

  # Quick hyperparameter search on four workers
  fedsim --hpo --quick-search --workers 4`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o := opts
			if o.ConfigFile != "" {
				cfg, err := fedsim.LoadConfig(o.ConfigFile)
				if err != nil {
					return err
				}
				o.merge(cfg, cmd.Flags().Changed)
			}
			if o.RunID == "" {
				o.RunID = uuid.NewString()
			}

			svc, err := deps.NewService(cmd.Context(), o.DataPath)
			if err != nil {
				return err
			}

			if o.HPO {
				return runHPO(cmd, deps, svc, o)
			}

			return runSimulation(cmd, svc, o)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.RunID, flagRunID, "", "Run identifier (generated when empty)")
	f.StringVar(&opts.ConfigFile, flagConfig, "", "Experiment file (.toml, .yaml or .yml)")
	f.IntVar(&opts.Rounds, flagRounds, opts.Rounds, "Number of federated rounds")
	f.IntVar(&opts.Clients, flagClients, opts.Clients, "Number of simulated clients")
	f.IntVar(&opts.Samples, flagSamples, opts.Samples, "Samples per client per round")
	f.Float64Var(&opts.LearningRate, flagLR, opts.LearningRate, "Learning rate")
	f.Float64Var(&opts.Fraction, flagFraction, opts.Fraction, "Fraction of clients selected per round")
	f.IntSliceVar(&opts.Topology, flagTopology, opts.Topology, "Layer sizes, input first")
	f.Uint64Var(&opts.Seed, flagSeed, opts.Seed, "Random seed")
	f.StringVar(&opts.DataPath, flagDataPath, opts.DataPath, "Dataset directory")
	f.StringVar(&opts.MetricsFile, flagMetrics, opts.MetricsFile, "Per-round metrics CSV")
	f.StringVar(&opts.CheckpointDir, flagCheckpointDir, "", "Directory for round and model checkpoints")
	f.StringVar(&opts.ExportModel, flagExportModel, "", "Write the final global model (CBOR) to this file")
	f.BoolVar(&opts.HPO, flagHPO, false, "Run hyperparameter optimization")
	f.BoolVar(&opts.QuickSearch, flagQuickSearch, false, "Use the reduced search grid")
	f.IntVar(&opts.MaxRounds, flagMaxRounds, opts.MaxRounds, "Round cap per configuration during optimization")
	f.IntVar(&opts.Workers, flagWorkers, opts.Workers, "Configurations evaluated in parallel")
	f.StringVar(&opts.HPOResultsFile, flagHPOCSV, opts.HPOResultsFile, "Optimization results CSV")
	f.StringVar(&opts.BestConfigFile, flagBestConfig, opts.BestConfigFile, "Best configuration JSON")
	f.StringVar(&opts.HPOMetricsDir, flagHPOMetricsDir, "", "Directory for one metrics CSV per configuration")

	return cmd
}

func runSimulation(cmd *cobra.Command, svc simulation.Service, o Options) error {
	cfg := simulation.Config{
		RunID:           o.RunID,
		NumClients:      o.Clients,
		ClientFraction:  o.Fraction,
		SamplesPerRound: o.Samples,
		LearningRate:    o.LearningRate,
		Rounds:          o.Rounds,
		Topology:        o.Topology,
		Seed:            o.Seed,
		MetricsFile:     o.MetricsFile,
		CheckpointDir:   o.CheckpointDir,
		ModelExport:     o.ExportModel,
	}

	rep, err := svc.Simulate(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	logSuccessCmd(*cmd, fmt.Sprintf("Simulation %s completed after %d rounds", rep.RunID, rep.Rounds))

	return rep.Evaluation.Print(cmd.OutOrStdout())
}

func runHPO(cmd *cobra.Command, deps Deps, svc simulation.Service, o Options) error {
	grid := hpo.FullGrid()
	if o.QuickSearch {
		grid = hpo.QuickGrid()
	}

	opt := hpo.NewOptimizer(svc, deps.HPORepo, deps.Logger)
	results, err := opt.Run(cmd.Context(), hpo.Config{
		RunID:      o.RunID,
		Grid:       grid,
		NumClients: o.Clients,
		Seed:       o.Seed,
		MaxRounds:  o.MaxRounds,
		Workers:    o.Workers,
		MetricsDir: o.HPOMetricsDir,
	})
	if err != nil {
		return err
	}

	ranked := hpo.Rank(results)
	if err := hpo.WriteCSV(o.HPOResultsFile, ranked); err != nil {
		return err
	}

	converged := 0
	for _, r := range ranked {
		if r.Converged {
			converged++
		}
	}
	logSuccessCmd(*cmd, fmt.Sprintf("Successful configurations: %d/%d", converged, len(ranked)))

	best, ok := hpo.Best(results)
	if !ok {
		deps.Logger.Warn("No configuration met the success criteria",
			slog.String("run_id", o.RunID),
			slog.Int("configurations", len(ranked)),
		)
		logWarningCmd(*cmd, "No configuration met the success criteria")

		return nil
	}
	if err := hpo.WriteBestConfig(o.BestConfigFile, best); err != nil {
		return err
	}
	logJSONCmd(*cmd, best)

	return nil
}
