package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"budgettrack/internal/core"
)

// DaySummary is one exported day as stored.
type DaySummary struct {
	Date            string
	Income          string
	Expense         string
	NetChange       string
	DailyBudget     string
	RemainingBudget sql.NullString
	InBudget        bool
	Transactions    int
}

// snapshotStore holds the SQL shared by the SQLite and Postgres exporters.
// Queries are written with ? placeholders and passed through rebind.
type snapshotStore struct {
	db     *sql.DB
	rebind func(string) string
}

func questionMarks(q string) string { return q }

// dollarPlaceholders rewrites ? placeholders to $1, $2, ...
func dollarPlaceholders(q string) string {
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// writeSnapshot replaces the stored copy of the snapshot's account in one
// transaction.
func (s snapshotStore) writeSnapshot(ctx context.Context, snap core.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin export: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM transactions WHERE account = ?`), snap.Account); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM days WHERE account = ?`), snap.Account); err != nil {
		return fmt.Errorf("clear days: %w", err)
	}
	_, err = tx.ExecContext(ctx, s.rebind(
		`INSERT INTO accounts (name, total_budget, exported_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET total_budget = excluded.total_budget, exported_at = excluded.exported_at`),
		snap.Account, snap.TotalBudget.String(), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}

	dayStmt, err := tx.PrepareContext(ctx, s.rebind(
		`INSERT INTO days (account, date, income, expense, net_change, daily_budget, remaining_budget, in_budget)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("prepare day insert: %w", err)
	}
	defer dayStmt.Close()

	txStmt, err := tx.PrepareContext(ctx, s.rebind(
		`INSERT INTO transactions (id, account, date, position, description, kind, amount)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("prepare transaction insert: %w", err)
	}
	defer txStmt.Close()

	for _, d := range snap.Days {
		var remaining sql.NullString
		if d.HasBudget {
			remaining = sql.NullString{String: d.RemainingBudget.String(), Valid: true}
		}
		_, err := dayStmt.ExecContext(ctx, snap.Account, d.Date.String(),
			d.Income.String(), d.Expense.String(), d.NetChange.String(),
			d.DailyBudget.String(), remaining, d.InBudget)
		if err != nil {
			return fmt.Errorf("insert day %s: %w", d.Date, err)
		}
		for i, t := range d.Transactions {
			_, err := txStmt.ExecContext(ctx, t.ID.String(), snap.Account, d.Date.String(), i,
				t.Description, t.Kind.String(), t.Amount.String())
			if err != nil {
				return fmt.Errorf("insert transaction %s: %w", t.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit export: %w", err)
	}
	return nil
}

// listDaySummaries returns the exported days of account in date order.
func (s snapshotStore) listDaySummaries(ctx context.Context, account string) ([]DaySummary, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT CAST(d.date AS TEXT), CAST(d.income AS TEXT), CAST(d.expense AS TEXT),
		        CAST(d.net_change AS TEXT), CAST(d.daily_budget AS TEXT),
		        CAST(d.remaining_budget AS TEXT), d.in_budget,
		        (SELECT COUNT(*) FROM transactions t WHERE t.account = d.account AND t.date = d.date)
		 FROM days d WHERE d.account = ? ORDER BY d.date`), account)
	if err != nil {
		return nil, fmt.Errorf("query days: %w", err)
	}
	defer rows.Close()

	var out []DaySummary
	for rows.Next() {
		var s DaySummary
		if err := rows.Scan(&s.Date, &s.Income, &s.Expense, &s.NetChange, &s.DailyBudget,
			&s.RemainingBudget, &s.InBudget, &s.Transactions); err != nil {
			return nil, fmt.Errorf("scan day: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
