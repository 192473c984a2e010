package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/absmach/fedsim/pkg/storage/record"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	migrate "github.com/rubenv/sql-migrate"
)

var (
	ErrDBConnection = errors.New("database connection error")
	ErrDBQuery      = errors.New("database query error")
	ErrMigration    = errors.New("database migration error")
	ErrCreate       = errors.New("create error")
)

type RoundRepository interface {
	Create(ctx context.Context, r record.Round) error
	List(ctx context.Context, runID string) ([]record.Round, error)
}

type HPORepository interface {
	Create(ctx context.Context, r record.HPOResult) error
	List(ctx context.Context, runID string) ([]record.HPOResult, error)
}

type Database struct {
	*sqlx.DB
}

func NewDatabase(host, port, user, pass, name, sslMode string) (*Database, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s", host, port, user, pass, name, sslMode)
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDBConnection, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
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
						run_id VARCHAR(64) NOT NULL,
						round INTEGER NOT NULL,
						accuracy DOUBLE PRECISION NOT NULL,
						test_loss DOUBLE PRECISION NOT NULL,
						training_loss DOUBLE PRECISION NOT NULL,
						created_at TIMESTAMPTZ NOT NULL,
						PRIMARY KEY (run_id, round)
					)`,
					`CREATE TABLE IF NOT EXISTS hpo_results (
						run_id VARCHAR(64) NOT NULL,
						idx INTEGER NOT NULL,
						topology JSONB NOT NULL,
						learning_rate DOUBLE PRECISION NOT NULL,
						samples_per_round INTEGER NOT NULL,
						client_fraction DOUBLE PRECISION NOT NULL,
						rounds_to_success INTEGER NOT NULL,
						final_accuracy DOUBLE PRECISION NOT NULL,
						final_loss DOUBLE PRECISION NOT NULL,
						converged BOOLEAN NOT NULL DEFAULT FALSE,
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

	if _, err := migrate.Exec(db.DB.DB, "postgres", migrations, migrate.Up); err != nil {
		return fmt.Errorf("%w: %w", ErrMigration, err)
	}

	return nil
}
