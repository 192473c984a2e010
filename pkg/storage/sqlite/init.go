package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/absmach/fedsim/pkg/storage/record"
	"github.com/jmoiron/sqlx"
	migrate "github.com/rubenv/sql-migrate"
	_ "modernc.org/sqlite"
)

var (
	ErrDBConnection = errors.New("database connection error")
	ErrDBQuery      = errors.New("database query error")
	ErrMigration    = errors.New("database migration error")
	ErrCreate       = errors.New("create error")
	ErrMarshal      = errors.New("marshal error")
)

type RoundRepository interface {
	Create(ctx context.Context, r record.Round) error
	List(ctx context.Context, runID string) ([]record.Round, error)
}

type HPORepository interface {
	Create(ctx context.Context, r record.HPOResult) error
	List(ctx context.Context, runID string) ([]record.HPOResult, error)
}

type Repositories struct {
	Rounds RoundRepository
	HPO    HPORepository
}

func NewRepositories(db *Database) *Repositories {
	return &Repositories{
		Rounds: NewRoundRepository(db),
		HPO:    NewHPORepository(db),
	}
}

type Database struct {
	*sqlx.DB
}

func NewDatabase(path string) (*Database, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDBConnection, err)
	}

	// Parallel HPO workers share one handle; a single connection keeps
	// sqlite writers serialized.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	database := &Database{DB: db}

	if err := database.Migrate(); err != nil {
		db.Close()

		return nil, err
	}

	return database, nil
}

func (db *Database) Migrate() error {
	migrations := &migrate.MemoryMigrationSource{
		Migrations: []*migrate.Migration{
			{
				Id: "1_create_tables",
				Up: []string{
					`CREATE TABLE IF NOT EXISTS rounds (
						run_id TEXT NOT NULL,
						round INTEGER NOT NULL,
						accuracy REAL NOT NULL,
						test_loss REAL NOT NULL,
						training_loss REAL NOT NULL,
						created_at TIMESTAMP NOT NULL,
						PRIMARY KEY (run_id, round)
					)`,
					`CREATE TABLE IF NOT EXISTS hpo_results (
						run_id TEXT NOT NULL,
						idx INTEGER NOT NULL,
						topology TEXT NOT NULL,
						learning_rate REAL NOT NULL,
						samples_per_round INTEGER NOT NULL,
						client_fraction REAL NOT NULL,
						rounds_to_success INTEGER NOT NULL,
						final_accuracy REAL NOT NULL,
						final_loss REAL NOT NULL,
						converged INTEGER NOT NULL DEFAULT 0,
						PRIMARY KEY (run_id, idx)
					)`,
					`CREATE INDEX IF NOT EXISTS idx_hpo_results_converged ON hpo_results(run_id, converged)`,
				},
				Down: []string{
					`DROP INDEX IF EXISTS idx_hpo_results_converged`,
					`DROP TABLE IF EXISTS hpo_results`,
					`DROP TABLE IF EXISTS rounds`,
				},
			},
		},
	}

	if _, err := migrate.Exec(db.DB.DB, "sqlite3", migrations, migrate.Up); err != nil {
		return fmt.Errorf("%w: %w", ErrMigration, err)
	}

	return nil
}
