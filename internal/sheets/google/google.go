package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"budgettrack/internal/core"
	applog "budgettrack/internal/log"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// header is the first row of every exported sheet.
var header = []any{"Date", "Kind", "Description", "Amount", "Day Income", "Day Expenses", "Day Total", "Remaining Budget"}

// Options configures the sheets export.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// Client writes ledger snapshots to one tab of a spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	sheetName := strings.TrimSpace(opts.SheetName)
	if sheetName == "" {
		sheetName = "Ledger"
	}

	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	credentialsJSON, err := loadCredentials(opts)
	if err != nil {
		return nil, err
	}

	logger().DebugContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func loadCredentials(opts Options) ([]byte, error) {
	switch {
	case strings.TrimSpace(opts.CredentialsJSON) != "":
		return []byte(opts.CredentialsJSON), nil
	case strings.TrimSpace(opts.CredentialsFile) != "":
		b, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

func logger() *slog.Logger {
	return slog.Default().With(applog.FieldComponent, applog.ComponentSheets)
}

// Name identifies the sink in logs and events.
func (c *Client) Name() string { return "sheets" }

// ExportSnapshot clears the sheet and writes one row per transaction.
func (c *Client) ExportSnapshot(ctx context.Context, s core.Snapshot) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	clearRange := fmt.Sprintf("%s!A:H", c.sheetName)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear %s: %w", clearRange, err)
	}

	rows := snapshotRows(s)
	dataRange := fmt.Sprintf("%s!A1:H%d", c.sheetName, len(rows))
	vr := &gsheet.ValueRange{Values: rows}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", dataRange, err)
	}

	logger().InfoContext(ctx, "Snapshot exported to Google Sheets",
		applog.FieldAccount, s.Account,
		"rows", len(rows)-1,
		"range", dataRange,
		"at", time.Now().UTC().Format(time.RFC3339))
	return nil
}

// snapshotRows flattens s into sheet rows, header first. Day totals repeat
// on each transaction row so the sheet can be filtered freely.
func snapshotRows(s core.Snapshot) [][]any {
	rows := make([][]any, 0, s.TransactionCount()+1)
	rows = append(rows, header)
	for _, d := range s.Days {
		remaining := ""
		if d.HasBudget {
			remaining = core.FormatAmount(d.RemainingBudget)
		}
		for _, t := range d.Transactions {
			rows = append(rows, []any{
				d.Date.String(),
				t.Kind.String(),
				t.Description,
				core.FormatAmount(t.Amount),
				core.FormatAmount(d.Income),
				core.FormatAmount(d.Expense),
				core.FormatAmount(d.NetChange),
				remaining,
			})
		}
	}
	return rows
}
