package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"budgettrack/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "ledger.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func record(t *testing.T, a *core.Account, desc string, kind core.Kind, amount int64, date core.Date) {
	t.Helper()
	tx, err := core.NewTransaction(desc, kind, decimal.NewFromInt(amount), date)
	if err != nil {
		t.Fatalf("NewTransaction: %v", err)
	}
	if _, err := a.Record(tx); err != nil {
		t.Fatalf("Record: %v", err)
	}
}

func TestExportSnapshot(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := core.NewAccount("personal")
	record(t, a, "salary", core.Income, 1000, core.MustDate(2024, 3, 1))
	record(t, a, "rent", core.Expense, 200, core.MustDate(2024, 3, 1))
	record(t, a, "dinner", core.Expense, 80, core.MustDate(2024, 3, 2))
	_ = a.SetTotalBudget(decimal.NewFromInt(50))

	if err := repo.ExportSnapshot(ctx, a.Snapshot()); err != nil {
		t.Fatalf("ExportSnapshot: %v", err)
	}

	days, err := repo.ListDaySummaries(ctx, "personal")
	if err != nil {
		t.Fatalf("ListDaySummaries: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	if days[0].Date != "2024-03-01" || days[0].NetChange != "800" || days[0].Transactions != 2 {
		t.Errorf("unexpected first day: %+v", days[0])
	}
	if !days[1].RemainingBudget.Valid || days[1].RemainingBudget.String != "-30" || days[1].InBudget {
		t.Errorf("unexpected second day: %+v", days[1])
	}
}

func TestExportSnapshotReplacesPrevious(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := core.NewAccount("personal")
	record(t, a, "coffee", core.Expense, 3, core.MustDate(2024, 3, 1))
	if err := repo.ExportSnapshot(ctx, a.Snapshot()); err != nil {
		t.Fatalf("first export: %v", err)
	}

	if _, err := a.RemoveTransactionOnDate(core.MustDate(2024, 3, 1), "coffee"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	record(t, a, "tea", core.Expense, 2, core.MustDate(2024, 3, 4))
	if err := repo.ExportSnapshot(ctx, a.Snapshot()); err != nil {
		t.Fatalf("second export: %v", err)
	}

	days, err := repo.ListDaySummaries(ctx, "personal")
	if err != nil {
		t.Fatalf("ListDaySummaries: %v", err)
	}
	if len(days) != 1 || days[0].Date != "2024-03-04" || days[0].RemainingBudget.Valid {
		t.Fatalf("unexpected days after re-export: %+v", days)
	}
}

func TestDollarPlaceholders(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SELECT 1", "SELECT 1"},
		{"DELETE FROM days WHERE account = ?", "DELETE FROM days WHERE account = $1"},
		{"VALUES (?, ?, ?)", "VALUES ($1, $2, $3)"},
	}
	for _, tt := range tests {
		if got := dollarPlaceholders(tt.in); got != tt.want {
			t.Errorf("dollarPlaceholders(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
