package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/chrisdamba/expcheck/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type RunRepository struct {
	db DBTX
}

func NewRunRepository(db DBTX) *RunRepository {
	return &RunRepository{db: db}
}

// Connect opens a pool and checks it is reachable.
func Connect(ctx context.Context, cfg models.DatabaseConfig) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	return pool, nil
}

func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS validation_runs (
            id TEXT PRIMARY KEY,
            dataset TEXT NOT NULL,
            status TEXT NOT NULL,
            error_count INTEGER NOT NULL,
            errors TEXT[] NOT NULL,
            orders INTEGER NOT NULL,
            export_location TEXT,
            checked_at TIMESTAMPTZ NOT NULL
        )`)
	return err
}

func (r *RunRepository) Create(ctx context.Context, run *models.ValidationRun) error {
	query := `
        INSERT INTO validation_runs (
            id, dataset, status, error_count, errors, orders, export_location, checked_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8
        )
    `
	errs := run.Errors
	if errs == nil {
		errs = []string{}
	}
	_, err := r.db.Exec(ctx, query,
		run.ID,
		run.Dataset,
		run.Status,
		run.ErrorCount,
		errs,
		run.Orders,
		run.ExportLocation,
		time.Unix(run.Timestamp, 0).UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert validation run %s: %w", run.ID, err)
	}
	return nil
}

func (r *RunRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM validation_runs").Scan(&count)
	return count, err
}
