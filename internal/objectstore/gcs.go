// Package objectstore exports ledger snapshots as JSON objects to a Google
// Cloud Storage bucket.
package objectstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"budgettrack/internal/core"
)

// Options configures the bucket export. Without CredentialsJSON the client
// uses Application Default Credentials.
type Options struct {
	Bucket          string
	Prefix          string
	CredentialsJSON []byte
}

// Exporter writes one object per export under <prefix>/<account>/.
type Exporter struct {
	client *storage.Client
	bucket string
	prefix string
	now    func() time.Time
}

func New(ctx context.Context, opts Options) (*Exporter, error) {
	bucket := strings.TrimSpace(opts.Bucket)
	if bucket == "" {
		return nil, errors.New("missing bucket name")
	}

	var clientOpts []option.ClientOption
	if len(opts.CredentialsJSON) > 0 {
		clientOpts = append(clientOpts, option.WithCredentialsJSON(opts.CredentialsJSON))
	}
	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &Exporter{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(opts.Prefix, "/"),
		now:    time.Now,
	}, nil
}

func (e *Exporter) Name() string { return "gcs" }

func (e *Exporter) Close() error {
	return e.client.Close()
}

// ExportSnapshot uploads s as a JSON document.
func (e *Exporter) ExportSnapshot(ctx context.Context, s core.Snapshot) error {
	name := objectName(e.prefix, s.Account, e.now())

	w := e.client.Bucket(e.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "application/json"
	if err := encodeSnapshot(w, s); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object %s: %w", name, err)
	}
	// Close finalizes the upload.
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize upload of %s: %w", name, err)
	}

	slog.InfoContext(ctx, "Snapshot exported to GCS",
		"account", s.Account,
		"bucket", e.bucket,
		"object", name,
		"transactions", s.TransactionCount())
	return nil
}

// objectName builds <prefix>/<account>/snapshot-<UTC timestamp>.json.
func objectName(prefix, account string, at time.Time) string {
	account = strings.ReplaceAll(strings.TrimSpace(account), "/", "_")
	file := "snapshot-" + at.UTC().Format("20060102T150405Z") + ".json"
	return path.Join(prefix, account, file)
}

type snapshotDocument struct {
	Account     string        `json:"account"`
	TotalBudget string        `json:"total_budget"`
	Days        []dayDocument `json:"days"`
}

type dayDocument struct {
	Date            string                `json:"date"`
	Income          string                `json:"income"`
	Expense         string                `json:"expense"`
	NetChange       string                `json:"net_change"`
	DailyBudget     string                `json:"daily_budget,omitempty"`
	RemainingBudget string                `json:"remaining_budget,omitempty"`
	InBudget        bool                  `json:"in_budget"`
	Transactions    []transactionDocument `json:"transactions"`
}

type transactionDocument struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
	Amount      string `json:"amount"`
}

func encodeSnapshot(w io.Writer, s core.Snapshot) error {
	doc := snapshotDocument{
		Account:     s.Account,
		TotalBudget: core.FormatAmount(s.TotalBudget),
		Days:        make([]dayDocument, 0, len(s.Days)),
	}
	for _, d := range s.Days {
		dd := dayDocument{
			Date:         d.Date.String(),
			Income:       core.FormatAmount(d.Income),
			Expense:      core.FormatAmount(d.Expense),
			NetChange:    core.FormatAmount(d.NetChange),
			InBudget:     d.InBudget,
			Transactions: make([]transactionDocument, 0, len(d.Transactions)),
		}
		if d.HasBudget {
			dd.DailyBudget = core.FormatAmount(d.DailyBudget)
			dd.RemainingBudget = core.FormatAmount(d.RemainingBudget)
		}
		for _, t := range d.Transactions {
			dd.Transactions = append(dd.Transactions, transactionDocument{
				ID:          t.ID.String(),
				Description: t.Description,
				Kind:        t.Kind.String(),
				Amount:      core.FormatAmount(t.Amount),
			})
		}
		doc.Days = append(doc.Days, dd)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
