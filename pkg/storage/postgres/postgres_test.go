package postgres_test

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/absmach/fedsim/pkg/storage/postgres"
	"github.com/absmach/fedsim/pkg/storage/record"
	"github.com/google/uuid"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDB *postgres.Database

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err == nil {
		err = pool.Client.Ping()
	}
	if err != nil {
		log.Printf("Skipping postgres tests, docker unavailable: %s", err)
		os.Exit(m.Run())
	}

	container, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16.2-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start container: %s", err)
	}

	port := container.GetPort("5432/tcp")

	pool.MaxWait = 120 * time.Second
	if err := pool.Retry(func() error {
		url := fmt.Sprintf("host=localhost port=%s user=test dbname=test password=test sslmode=disable", port)
		db, err := sql.Open("pgx", url)
		if err != nil {
			return err
		}
		defer db.Close()

		return db.Ping()
	}); err != nil {
		log.Fatalf("Could not connect to docker: %s", err)
	}

	testDB, err = postgres.NewDatabase("localhost", port, "test", "test", "test", "disable")
	if err != nil {
		log.Fatalf("Could not setup test DB connection: %s", err)
	}

	code := m.Run()

	testDB.Close()
	if err := pool.Purge(container); err != nil {
		log.Fatalf("Could not purge container: %s", err)
	}

	os.Exit(code)
}

func requireDB(t *testing.T) {
	t.Helper()
	if testDB == nil {
		t.Skip("postgres container not available")
	}
}

func TestRoundRepository(t *testing.T) {
	requireDB(t)
	repo := postgres.NewRoundRepository(testDB)
	ctx := context.Background()
	runID := uuid.NewString()
	now := time.Now().UTC().Truncate(time.Millisecond)

	for _, round := range []int{2, 1} {
		require.NoError(t, repo.Create(ctx, record.Round{RunID: runID, Round: round, Accuracy: 0.9, TestLoss: 0.2, CreatedAt: now}))
	}

	got, err := repo.List(ctx, runID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Round)
	assert.Equal(t, 2, got[1].Round)
	assert.True(t, got[0].CreatedAt.Equal(now))

	err = repo.Create(ctx, record.Round{RunID: runID, Round: 1, CreatedAt: now})
	assert.ErrorIs(t, err, postgres.ErrCreate)

	empty, err := repo.List(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestHPORepository(t *testing.T) {
	requireDB(t)
	repo := postgres.NewHPORepository(testDB)
	ctx := context.Background()
	runID := uuid.NewString()

	want := []record.HPOResult{
		{RunID: runID, Index: 0, Topology: []int{11, 15, 3}, LearningRate: 0.3, SamplesPerRound: 10, ClientFraction: 0.2, RoundsToSuccess: 12, FinalAccuracy: 0.95, FinalLoss: 0.1, Converged: true},
		{RunID: runID, Index: 1, Topology: []int{11, 60, 3}, LearningRate: 0.75, SamplesPerRound: 20, ClientFraction: 0.4, RoundsToSuccess: -1, FinalAccuracy: 0.5, FinalLoss: 1.1},
	}
	for _, res := range want {
		require.NoError(t, repo.Create(ctx, res))
	}

	got, err := repo.List(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
