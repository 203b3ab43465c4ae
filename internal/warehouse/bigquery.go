// Package warehouse appends ledger snapshots to BigQuery tables. Every
// export is tagged with its own export_id so reports can pick the latest.
package warehouse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/api/option"

	"budgettrack/internal/core"
)

const (
	defaultDaysTable         = "ledger_days"
	defaultTransactionsTable = "ledger_transactions"
)

// Options configures the BigQuery export. Without CredentialsJSON the
// client uses Application Default Credentials.
type Options struct {
	ProjectID         string
	Dataset           string
	DaysTable         string
	TransactionsTable string
	CredentialsJSON   []byte
}

// DayRow is one day of one export.
type DayRow struct {
	ExportID        string            `bigquery:"export_id"`
	ExportedAt      time.Time         `bigquery:"exported_at"`
	Account         string            `bigquery:"account"`
	Date            civil.Date        `bigquery:"date"`
	Income          *big.Rat          `bigquery:"income"`
	Expense         *big.Rat          `bigquery:"expense"`
	NetChange       *big.Rat          `bigquery:"net_change"`
	DailyBudget     *big.Rat          `bigquery:"daily_budget"`     // NULLABLE
	RemainingBudget *big.Rat          `bigquery:"remaining_budget"` // NULLABLE
	InBudget        bigquery.NullBool `bigquery:"in_budget"`
}

// TransactionRow is one transaction of one export.
type TransactionRow struct {
	ExportID      string     `bigquery:"export_id"`
	ExportedAt    time.Time  `bigquery:"exported_at"`
	Account       string     `bigquery:"account"`
	TransactionID string     `bigquery:"transaction_id"`
	Date          civil.Date `bigquery:"date"`
	Position      int64      `bigquery:"position"`
	Description   string     `bigquery:"description"`
	Kind          string     `bigquery:"kind"`
	Amount        *big.Rat   `bigquery:"amount"`
}

// putter is the part of *bigquery.Inserter the exporter uses.
type putter interface {
	Put(ctx context.Context, src any) error
}

// Exporter streams snapshot rows into two tables.
type Exporter struct {
	client       *bigquery.Client
	days         putter
	transactions putter
	now          func() time.Time
}

func New(ctx context.Context, opts Options) (*Exporter, error) {
	if strings.TrimSpace(opts.ProjectID) == "" {
		return nil, errors.New("missing BigQuery project ID")
	}
	if strings.TrimSpace(opts.Dataset) == "" {
		return nil, errors.New("missing BigQuery dataset")
	}
	daysTable := opts.DaysTable
	if daysTable == "" {
		daysTable = defaultDaysTable
	}
	txTable := opts.TransactionsTable
	if txTable == "" {
		txTable = defaultTransactionsTable
	}

	var clientOpts []option.ClientOption
	if len(opts.CredentialsJSON) > 0 {
		clientOpts = append(clientOpts, option.WithCredentialsJSON(opts.CredentialsJSON))
	}
	client, err := bigquery.NewClient(ctx, opts.ProjectID, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("bigquery client: %w", err)
	}

	ds := client.Dataset(opts.Dataset)
	return &Exporter{
		client:       client,
		days:         ds.Table(daysTable).Inserter(),
		transactions: ds.Table(txTable).Inserter(),
		now:          time.Now,
	}, nil
}

func (e *Exporter) Name() string { return "bigquery" }

func (e *Exporter) Close() error {
	if e.client == nil {
		return nil
	}
	return e.client.Close()
}

// ExportSnapshot appends the days and transactions of s under a new export ID.
func (e *Exporter) ExportSnapshot(ctx context.Context, s core.Snapshot) error {
	exportID := uuid.NewString()
	days, txs := buildRows(exportID, e.now().UTC(), s)
	if len(days) == 0 {
		return nil
	}

	if err := e.days.Put(ctx, days); err != nil {
		return fmt.Errorf("insert day rows: %w", err)
	}
	if len(txs) > 0 {
		if err := e.transactions.Put(ctx, txs); err != nil {
			return fmt.Errorf("insert transaction rows: %w", err)
		}
	}

	slog.InfoContext(ctx, "Snapshot exported to BigQuery",
		"account", s.Account,
		"export_id", exportID,
		"days", len(days),
		"transactions", len(txs))
	return nil
}

func buildRows(exportID string, at time.Time, s core.Snapshot) ([]*DayRow, []*TransactionRow) {
	days := make([]*DayRow, 0, len(s.Days))
	var txs []*TransactionRow
	for _, d := range s.Days {
		date := civil.DateOf(d.Date.Time())
		row := &DayRow{
			ExportID:   exportID,
			ExportedAt: at,
			Account:    s.Account,
			Date:       date,
			Income:     rat(d.Income),
			Expense:    rat(d.Expense),
			NetChange:  rat(d.NetChange),
		}
		if d.HasBudget {
			row.DailyBudget = rat(d.DailyBudget)
			row.RemainingBudget = rat(d.RemainingBudget)
			row.InBudget = bigquery.NullBool{Bool: d.InBudget, Valid: true}
		}
		days = append(days, row)

		for i, t := range d.Transactions {
			txs = append(txs, &TransactionRow{
				ExportID:      exportID,
				ExportedAt:    at,
				Account:       s.Account,
				TransactionID: t.ID.String(),
				Date:          date,
				Position:      int64(i),
				Description:   t.Description,
				Kind:          t.Kind.String(),
				Amount:        rat(t.Amount),
			})
		}
	}
	return days, txs
}

func rat(d decimal.Decimal) *big.Rat {
	return d.Rat()
}
