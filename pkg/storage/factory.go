package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/absmach/fedsim/pkg/storage/badger"
	"github.com/absmach/fedsim/pkg/storage/postgres"
	"github.com/absmach/fedsim/pkg/storage/sqlite"
)

type Config struct {
	Type string `env:"FEDSIM_STORAGE_TYPE" envDefault:"none"`

	PostgresHost    string `env:"FEDSIM_POSTGRES_HOST"    envDefault:"localhost"`
	PostgresPort    string `env:"FEDSIM_POSTGRES_PORT"    envDefault:"5432"`
	PostgresUser    string `env:"FEDSIM_POSTGRES_USER"    envDefault:"fedsim"`
	PostgresPass    string `env:"FEDSIM_POSTGRES_PASS"    envDefault:"fedsim"`
	PostgresDB      string `env:"FEDSIM_POSTGRES_DB"      envDefault:"fedsim"`
	PostgresSSLMode string `env:"FEDSIM_POSTGRES_SSLMODE" envDefault:"disable"`

	SQLitePath string `env:"FEDSIM_SQLITE_PATH" envDefault:"./fedsim.db"`

	BadgerPath string `env:"FEDSIM_BADGER_PATH" envDefault:"./data/badger"`
}

// Enabled reports whether results should be persisted at all.
func (c Config) Enabled() bool {
	return c.Type != "" && c.Type != "none"
}

type Repositories struct {
	Rounds RoundRepository
	HPO    HPORepository
	// Closer closes the underlying persistent storage connection.
	// It is nil for the in-memory backend.
	Closer io.Closer
}

func NewRepositories(cfg Config) (*Repositories, error) {
	switch cfg.Type {
	case "postgres":
		return newPostgresRepositories(cfg)
	case "sqlite":
		return newSQLiteRepositories(cfg)
	case "badger":
		return newBadgerRepositories(cfg)
	case "memory":
		return newMemoryRepositories()
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

func newPostgresRepositories(cfg Config) (*Repositories, error) {
	db, err := postgres.NewDatabase(
		cfg.PostgresHost,
		cfg.PostgresPort,
		cfg.PostgresUser,
		cfg.PostgresPass,
		cfg.PostgresDB,
		cfg.PostgresSSLMode,
	)
	if err != nil {
		return nil, err
	}

	return &Repositories{
		Rounds: validated(postgres.NewRoundRepository(db)),
		HPO:    validatedHPO(postgres.NewHPORepository(db)),
		Closer: db,
	}, nil
}

func newSQLiteRepositories(cfg Config) (*Repositories, error) {
	db, err := sqlite.NewDatabase(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}

	return &Repositories{
		Rounds: validated(sqlite.NewRoundRepository(db)),
		HPO:    validatedHPO(sqlite.NewHPORepository(db)),
		Closer: db,
	}, nil
}

func newBadgerRepositories(cfg Config) (*Repositories, error) {
	db, err := badger.NewDatabase(cfg.BadgerPath)
	if err != nil {
		return nil, err
	}

	return &Repositories{
		Rounds: validated(badger.NewRoundRepository(db)),
		HPO:    validatedHPO(badger.NewHPORepository(db)),
		Closer: db,
	}, nil
}

func newMemoryRepositories() (*Repositories, error) {
	return &Repositories{
		Rounds: validated(newMemoryRoundRepository(NewInMemoryStorage())),
		HPO:    validatedHPO(newMemoryHPORepository(NewInMemoryStorage())),
	}, nil
}

// validated rejects records without a run ID before they reach a backend.
func validated(repo RoundRepository) RoundRepository {
	return &roundValidator{repo: repo}
}

type roundValidator struct {
	repo RoundRepository
}

func (v *roundValidator) Create(ctx context.Context, r RoundRecord) error {
	if r.RunID == "" {
		return ErrInvalidRunID
	}

	return v.repo.Create(ctx, r)
}

func (v *roundValidator) List(ctx context.Context, runID string) ([]RoundRecord, error) {
	return v.repo.List(ctx, runID)
}

func validatedHPO(repo HPORepository) HPORepository {
	return &hpoValidator{repo: repo}
}

type hpoValidator struct {
	repo HPORepository
}

func (v *hpoValidator) Create(ctx context.Context, r HPOResult) error {
	if r.RunID == "" {
		return ErrInvalidRunID
	}

	return v.repo.Create(ctx, r)
}

func (v *hpoValidator) List(ctx context.Context, runID string) ([]HPOResult, error) {
	return v.repo.List(ctx, runID)
}
