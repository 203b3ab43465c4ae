package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"budgettrack/internal/core"
	applog "budgettrack/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteRepository writes ledger snapshots to a SQLite file for reporting
// tools. Each export replaces the previous rows of the same account.
type SQLiteRepository struct {
	store snapshotStore
	path  string
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		store: snapshotStore{db: db, rebind: questionMarks},
		path:  dbPath,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.store.db != nil {
		return r.store.db.Close()
	}
	return nil
}

// Name identifies the sink in logs and events.
func (r *SQLiteRepository) Name() string { return "sqlite" }

// ExportSnapshot replaces the stored copy of the snapshot's account.
func (r *SQLiteRepository) ExportSnapshot(ctx context.Context, s core.Snapshot) error {
	if err := r.store.writeSnapshot(ctx, s); err != nil {
		logger().ErrorContext(ctx, "Snapshot export to SQLite failed",
			applog.FieldAccount, s.Account,
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeDatabase)
		return err
	}
	logger().InfoContext(ctx, "Snapshot exported to SQLite",
		applog.FieldAccount, s.Account,
		"days", len(s.Days),
		"transactions", s.TransactionCount(),
		"path", r.path)
	return nil
}

// ListDaySummaries returns the exported days of account in date order.
func (r *SQLiteRepository) ListDaySummaries(ctx context.Context, account string) ([]DaySummary, error) {
	return r.store.listDaySummaries(ctx, account)
}
