package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"budgettrack/internal/core"
	applog "budgettrack/internal/log"
)

// PostgresRepository writes ledger snapshots to a Postgres database with
// the same layout as the SQLite export.
type PostgresRepository struct {
	store snapshotStore
}

// NewPostgresRepository connects to dsn and migrates the export schema.
func NewPostgresRepository(ctx context.Context, dsn string) (*PostgresRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunPostgresMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresRepository{
		store: snapshotStore{db: db, rebind: dollarPlaceholders},
	}, nil
}

func (r *PostgresRepository) Close() error {
	if r.store.db != nil {
		return r.store.db.Close()
	}
	return nil
}

func (r *PostgresRepository) Name() string { return "postgres" }

// ExportSnapshot replaces the stored copy of the snapshot's account.
func (r *PostgresRepository) ExportSnapshot(ctx context.Context, s core.Snapshot) error {
	if err := r.store.writeSnapshot(ctx, s); err != nil {
		logger().ErrorContext(ctx, "Snapshot export to Postgres failed",
			applog.FieldAccount, s.Account,
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeDatabase)
		return err
	}
	logger().InfoContext(ctx, "Snapshot exported to Postgres",
		applog.FieldAccount, s.Account,
		"days", len(s.Days),
		"transactions", s.TransactionCount())
	return nil
}

// ListDaySummaries returns the exported days of account in date order.
func (r *PostgresRepository) ListDaySummaries(ctx context.Context, account string) ([]DaySummary, error) {
	return r.store.listDaySummaries(ctx, account)
}
