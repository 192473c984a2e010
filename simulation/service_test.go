package simulation_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/absmach/fedsim/pkg/fl"
	"github.com/absmach/fedsim/pkg/mqtt/mocks"
	"github.com/absmach/fedsim/pkg/storage"
	"github.com/absmach/fedsim/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var rowPattern = regexp.MustCompile(`^\d+,\d+\.\d{4},\d+\.\d{4},\d+\.\d{4}$`)

func newService(sinks simulation.Sinks) simulation.Service {
	return simulation.NewService(separable(30), passthrough{}, sinks, slog.New(slog.DiscardHandler))
}

func TestSimulateMetricsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale contents\n"), 0o644))

	cfg := baseConfig()
	cfg.MetricsFile = path
	rep, err := newService(simulation.Sinks{}).Simulate(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Rounds)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Round,Accuracy,TestLoss,TrainingLoss", lines[0])
	for i, line := range lines[1:] {
		assert.Regexp(t, rowPattern, line)
		assert.True(t, strings.HasPrefix(line, strconv.Itoa(i+1)+","), line)
	}
}

func TestSimulateDeterminism(t *testing.T) {
	dir := t.TempDir()
	svc := newService(simulation.Sinks{})

	read := func(name string) []byte {
		cfg := baseConfig()
		cfg.Rounds = 10
		cfg.MetricsFile = filepath.Join(dir, name)
		_, err := svc.Simulate(context.Background(), cfg)
		require.NoError(t, err)
		data, err := os.ReadFile(cfg.MetricsFile)
		require.NoError(t, err)

		return data
	}

	first := read("a.csv")
	second := read("b.csv")
	assert.Equal(t, first, second)
	assert.Len(t, strings.Split(strings.TrimSpace(string(first)), "\n"), 11)
}

func TestSimulateGeneratesRunID(t *testing.T) {
	cfg := baseConfig()
	cfg.RunID = ""
	rep, err := newService(simulation.Sinks{}).Simulate(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, rep.RunID, 36)
	assert.Equal(t, rep.RunID, rep.Model.Metadata["run_id"])
}

func TestSimulateInvalidConfig(t *testing.T) {
	cfg := baseConfig()
	cfg.NumClients = -1
	_, err := newService(simulation.Sinks{}).Simulate(context.Background(), cfg)
	assert.ErrorIs(t, err, simulation.ErrInvalidConfig)
}

func TestSimulateCheckpointAndExport(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig()
	cfg.CheckpointDir = filepath.Join(dir, "checkpoints")
	cfg.ModelExport = filepath.Join(dir, "model.cbor")

	rep, err := newService(simulation.Sinks{}).Simulate(context.Background(), cfg)
	require.NoError(t, err)

	ps, err := fl.NewPersistentStorage(cfg.CheckpointDir)
	require.NoError(t, err)
	rounds, err := ps.ListRounds(cfg.RunID)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, rounds)

	state, err := ps.LoadRound(cfg.RunID, 3)
	require.NoError(t, err)
	assert.True(t, state.Completed)
	assert.Equal(t, rep.Last.Accuracy, state.Accuracy)
	assert.Equal(t, rep.Last.Selected, state.Selected)

	model, err := ps.LoadModel(cfg.RunID, 3)
	require.NoError(t, err)
	assert.Equal(t, rep.Model.Weights, model.Weights)
	assert.Equal(t, cfg.Topology, model.Topology)

	exported, err := fl.ReadModelFile(cfg.ModelExport)
	require.NoError(t, err)
	assert.Equal(t, rep.Model.Weights, exported.Weights)
	assert.Equal(t, 3, exported.Version)
}

func TestSimulatePublishesRounds(t *testing.T) {
	cases := []struct {
		desc   string
		pubErr error
	}{
		{desc: "publish every round"},
		{desc: "publish failure aborts", pubErr: errRecorder},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			ps := new(mocks.MockPubSub)
			ps.On("Publish", mock.Anything, "fedsim/run-1/rounds", mock.AnythingOfType("simulation.RoundMetrics")).Return(tc.pubErr)

			_, err := newService(simulation.Sinks{PubSub: ps}).Simulate(context.Background(), baseConfig())
			if tc.pubErr != nil {
				assert.ErrorIs(t, err, tc.pubErr)
				ps.AssertNumberOfCalls(t, "Publish", 1)

				return
			}
			require.NoError(t, err)
			ps.AssertExpectations(t)
			ps.AssertNumberOfCalls(t, "Publish", 3)
		})
	}
}

func TestSimulateStoresRounds(t *testing.T) {
	repos, err := storage.NewRepositories(storage.Config{Type: "memory"})
	require.NoError(t, err)

	rep, err := newService(simulation.Sinks{Rounds: repos.Rounds}).Simulate(context.Background(), baseConfig())
	require.NoError(t, err)

	records, err := repos.Rounds.List(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, r := range records {
		assert.Equal(t, i+1, r.Round)
	}
	assert.Equal(t, rep.Last.TestLoss, records[2].TestLoss)
}

func TestSimulatePromTextfile(t *testing.T) {
	dir := t.TempDir()

	_, err := newService(simulation.Sinks{PromDir: dir}).Simulate(context.Background(), baseConfig())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "run-1.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `fedsim_round{run_id="run-1"} 3`)
	assert.Contains(t, string(data), "fedsim_test_accuracy")
	assert.Contains(t, string(data), `fedsim_round_duration_seconds_count{run_id="run-1"} 3`)
}
