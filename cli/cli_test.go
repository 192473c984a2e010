package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/absmach/fedsim/cli"
	"github.com/absmach/fedsim/pkg/metrics"
	"github.com/absmach/fedsim/pkg/mqtt"
	"github.com/absmach/fedsim/pkg/mqtt/mocks"
	"github.com/absmach/fedsim/simulation"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errLoad = errors.New("dataset missing")

// recording converges immediately when the learning rate is 0.75, unless
// stalled, and remembers every configuration it was asked to run.
type recording struct {
	mu      sync.Mutex
	stall   bool
	configs []simulation.Config
}

func (r *recording) Simulate(_ context.Context, cfg simulation.Config) (simulation.Report, error) {
	r.mu.Lock()
	r.configs = append(r.configs, cfg)
	r.mu.Unlock()

	last := simulation.RoundMetrics{RunID: cfg.RunID, Accuracy: 0.4, TestLoss: 1}
	for round := 1; round <= cfg.Rounds; round++ {
		last.Round = round
		if cfg.LearningRate == 0.75 && !r.stall {
			last.Accuracy, last.TestLoss = 0.96, 0.05
		}
		if cfg.StopCondition != nil && cfg.StopCondition(last) {
			break
		}
	}

	return simulation.Report{
		Summary:    simulation.Summary{RunID: cfg.RunID, Rounds: last.Round, Last: last},
		Evaluation: metrics.Evaluate([][]float32{{0.9, 0.05, 0.05}}, [][]float32{{1, 0, 0}}),
	}, nil
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}

func newDeps(svc simulation.Service, dataPath *string) cli.Deps {
	return cli.Deps{
		NewService: func(_ context.Context, path string) (simulation.Service, error) {
			if dataPath != nil {
				*dataPath = path
			}

			return svc, nil
		},
		Logger: slog.New(slog.DiscardHandler),
	}
}

func TestRootDefaults(t *testing.T) {
	svc := &recording{}
	var dataPath string
	out, err := execute(t, cli.NewRootCmd(newDeps(svc, &dataPath)))
	require.NoError(t, err)

	require.Len(t, svc.configs, 1)
	cfg := svc.configs[0]
	assert.Equal(t, 200, cfg.Rounds)
	assert.Equal(t, 100, cfg.NumClients)
	assert.Equal(t, 20, cfg.SamplesPerRound)
	assert.Equal(t, 0.75, cfg.LearningRate)
	assert.Equal(t, 0.3, cfg.ClientFraction)
	assert.Equal(t, []int{11, 15, 3}, cfg.Topology)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, "federated_metrics.csv", cfg.MetricsFile)
	assert.NotEmpty(t, cfg.RunID)
	assert.Equal(t, "../data", dataPath)
	assert.Contains(t, out, "Accuracy: 100.00%")
}

func TestRootPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "experiment.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[simulation]
rounds = 50
clients = 10
samples = 5
topology = [11, 30, 3]
data_path = "/from/file"
`), 0o644))

	svc := &recording{}
	var dataPath string
	_, err := execute(t, cli.NewRootCmd(newDeps(svc, &dataPath)),
		"--config", path, "--rounds", "7", "--topology", "11,60,3", "--run-id", "exp-1")
	require.NoError(t, err)

	require.Len(t, svc.configs, 1)
	cfg := svc.configs[0]
	assert.Equal(t, "exp-1", cfg.RunID)
	assert.Equal(t, 7, cfg.Rounds)
	assert.Equal(t, []int{11, 60, 3}, cfg.Topology)
	assert.Equal(t, 10, cfg.NumClients)
	assert.Equal(t, 5, cfg.SamplesPerRound)
	assert.Equal(t, 0.75, cfg.LearningRate)
	assert.Equal(t, "/from/file", dataPath)
}

func TestRootErrors(t *testing.T) {
	cases := []struct {
		desc string
		deps cli.Deps
		args []string
		err  error
	}{
		{
			desc: "missing config file",
			deps: newDeps(&recording{}, nil),
			args: []string{"--config", filepath.Join(t.TempDir(), "missing.toml")},
			err:  os.ErrNotExist,
		},
		{
			desc: "dataset failure",
			deps: cli.Deps{
				NewService: func(context.Context, string) (simulation.Service, error) {
					return nil, errLoad
				},
				Logger: slog.New(slog.DiscardHandler),
			},
			err: errLoad,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := execute(t, cli.NewRootCmd(tc.deps), tc.args...)
			assert.ErrorIs(t, err, tc.err)
		})
	}

	_, err := execute(t, cli.NewRootCmd(newDeps(&recording{}, nil)), "--rounds", "abc")
	assert.Error(t, err)
}

func TestRootHPO(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "hpo.csv")
	bestPath := filepath.Join(dir, "best.json")
	metricsDir := filepath.Join(dir, "configs")
	svc := &recording{}

	out, err := execute(t, cli.NewRootCmd(newDeps(svc, nil)),
		"--hpo", "--quick-search", "--max-rounds", "30", "--workers", "3", "--clients", "10",
		"--hpo-csv", csvPath, "--best-config", bestPath, "--hpo-metrics-dir", metricsDir)
	require.NoError(t, err)

	assert.Len(t, svc.configs, 24)
	for _, cfg := range svc.configs {
		assert.Equal(t, metricsDir, filepath.Dir(cfg.MetricsFile))
		assert.Equal(t, 30, cfg.Rounds)
		assert.Equal(t, 10, cfg.NumClients)
		assert.NotNil(t, cfg.StopCondition)
	}
	assert.Contains(t, out, "Successful configurations: 12/24")

	data, err := os.ReadFile(bestPath)
	require.NoError(t, err)
	var best map[string]any
	require.NoError(t, json.Unmarshal(data, &best))
	assert.Equal(t, 0.75, best["learning_rate"])
	assert.Equal(t, 1.0, best["rounds_to_success"])
	assert.Equal(t, []any{11.0, 15.0, 3.0}, best["topology"])

	_, err = os.Stat(csvPath)
	assert.NoError(t, err)
}

func TestRootHPONoneConverged(t *testing.T) {
	dir := t.TempDir()
	bestPath := filepath.Join(dir, "best.json")
	path := filepath.Join(dir, "experiment.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hpo:\n  enabled: true\n  quick: true\n  max_rounds: 25\n"), 0o644))

	svc := &recording{stall: true}
	out, err := execute(t, cli.NewRootCmd(newDeps(svc, nil)),
		"--config", path, "--hpo-csv", filepath.Join(dir, "hpo.csv"), "--best-config", bestPath)
	require.NoError(t, err)

	require.Len(t, svc.configs, 24)
	assert.Equal(t, 25, svc.configs[0].Rounds)
	assert.Contains(t, out, "Successful configurations: 0/24")
	assert.Contains(t, out, "No configuration met the success criteria")
	_, err = os.Stat(bestPath)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWatch(t *testing.T) {
	cases := []struct {
		desc  string
		args  []string
		topic string
	}{
		{desc: "every run", args: []string{}, topic: "fedsim/+/rounds"},
		{desc: "single run", args: []string{"run-7"}, topic: "fedsim/run-7/rounds"},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			ps := new(mocks.MockPubSub)
			ps.On("Subscribe", mock.Anything, tc.topic, mock.AnythingOfType("mqtt.Handler")).
				Run(func(args mock.Arguments) {
					h := args.Get(2).(mqtt.Handler)
					assert.NoError(t, h(tc.topic, map[string]any{"round": 3.0, "run_id": "run-7"}))
				}).
				Return(nil)
			ps.On("Unsubscribe", mock.Anything, tc.topic).Return(nil)

			cmd := cli.NewWatchCmd(cli.Deps{PubSub: ps, Logger: slog.New(slog.DiscardHandler)})
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetArgs(tc.args)

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			require.NoError(t, cmd.ExecuteContext(ctx))

			ps.AssertExpectations(t)
			assert.Contains(t, out.String(), "run-7")
		})
	}
}

func TestWatchNoBroker(t *testing.T) {
	cmd := cli.NewWatchCmd(cli.Deps{Logger: slog.New(slog.DiscardHandler)})
	cmd.SetArgs([]string{})
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}
