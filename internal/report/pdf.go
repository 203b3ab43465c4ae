// Package report renders ledger snapshots as PDF statements on disk.
package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"

	"budgettrack/internal/core"
)

const pageBreakY = 270

var columnWidths = []float64{28, 26, 98, 30}

// PDFExporter writes one statement per export into dir.
type PDFExporter struct {
	dir string
	now func() time.Time
}

func NewPDFExporter(dir string) (*PDFExporter, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("missing report directory")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}
	return &PDFExporter{dir: dir, now: time.Now}, nil
}

func (e *PDFExporter) Name() string { return "pdf" }

// ExportSnapshot renders s to <dir>/<account>-<timestamp>.pdf. The file is
// written under a temporary name and renamed once complete.
func (e *PDFExporter) ExportSnapshot(ctx context.Context, s core.Snapshot) error {
	at := e.now()
	name := filepath.Join(e.dir, fileName(s.Account, at))

	f, err := os.CreateTemp(e.dir, ".statement-*.pdf")
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := Render(f, s, at); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report file: %w", err)
	}
	if err := os.Rename(tmp, name); err != nil {
		return fmt.Errorf("move report into place: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot exported to PDF",
		"account", s.Account,
		"path", name,
		"days", len(s.Days))
	return nil
}

func fileName(account string, at time.Time) string {
	account = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '-'
		default:
			return -1
		}
	}, strings.TrimSpace(account))
	if account == "" {
		account = "account"
	}
	return account + "-" + at.UTC().Format("20060102T150405Z") + ".pdf"
}

// Render writes a statement for s to w: account totals first, then every
// day with its transactions and budget status.
func Render(w io.Writer, s core.Snapshot, generated time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.SetTitle("Budget Track statement: "+s.Account, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Budget Track Statement")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, "Account: "+s.Account)
	pdf.Ln(5)
	if len(s.Days) > 0 {
		pdf.Cell(0, 6, "Period: "+s.Days[0].Date.String()+" to "+s.Days[len(s.Days)-1].Date.String())
		pdf.Ln(5)
	}
	if !s.TotalBudget.IsZero() {
		pdf.Cell(0, 6, "Daily budget: "+core.FormatAmount(s.TotalBudget))
		pdf.Ln(5)
	}
	pdf.Ln(5)

	writeTotals(pdf, s)

	for _, d := range s.Days {
		writeDay(pdf, d)
	}

	pdf.SetY(-18)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 10, "Generated "+generated.UTC().Format(time.RFC3339), "", 0, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func writeTotals(pdf *gofpdf.Fpdf, s core.Snapshot) {
	income, expense := decimal.Zero, decimal.Zero
	for _, d := range s.Days {
		income = income.Add(d.Income)
		expense = expense.Add(d.Expense)
	}

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 11)
	w := 182.0 / 3
	pdf.CellFormat(w, 10, "Income", "1", 0, "C", true, 0, "")
	pdf.CellFormat(w, 10, "Expenses", "1", 0, "C", true, 0, "")
	pdf.CellFormat(w, 10, "Total", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(w, 10, core.FormatAmount(income), "1", 0, "C", false, 0, "")
	pdf.CellFormat(w, 10, core.FormatAmount(expense), "1", 0, "C", false, 0, "")
	pdf.CellFormat(w, 10, core.FormatAmount(income.Sub(expense)), "1", 1, "C", false, 0, "")
	pdf.Ln(6)
}

func writeHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(245, 245, 245)
	pdf.CellFormat(columnWidths[0], 8, "KIND", "1", 0, "C", true, 0, "")
	pdf.CellFormat(columnWidths[1], 8, "DATE", "1", 0, "C", true, 0, "")
	pdf.CellFormat(columnWidths[2], 8, "DESCRIPTION", "1", 0, "L", true, 0, "")
	pdf.CellFormat(columnWidths[3], 8, "AMOUNT", "1", 1, "R", true, 0, "")
	pdf.SetFont("Helvetica", "", 9)
}

func writeDay(pdf *gofpdf.Fpdf, d core.DayRecord) {
	if pdf.GetY() > pageBreakY-30 {
		pdf.AddPage()
	}
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, d.Date.String())
	pdf.Ln(8)

	writeHeader(pdf)
	for _, t := range d.Transactions {
		if pdf.GetY() > pageBreakY {
			pdf.AddPage()
			writeHeader(pdf)
		}
		amount := core.FormatAmount(t.Amount)
		if t.Kind == core.Expense {
			amount = "-" + amount
		}
		pdf.CellFormat(columnWidths[0], 8, strings.ToUpper(t.Kind.String()), "1", 0, "C", false, 0, "")
		pdf.CellFormat(columnWidths[1], 8, d.Date.String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(columnWidths[2], 8, trimTo(t.Description, 60), "1", 0, "L", false, 0, "")
		pdf.CellFormat(columnWidths[3], 8, amount, "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "", 10)
	line := fmt.Sprintf("Income %s   Expenses %s   Total %s",
		core.FormatAmount(d.Income), core.FormatAmount(d.Expense), core.FormatAmount(d.NetChange))
	if d.HasBudget {
		status := "within budget"
		if !d.InBudget {
			status = "over budget"
		}
		line += fmt.Sprintf("   Remaining %s (%s)", core.FormatAmount(d.RemainingBudget), status)
	}
	pdf.Cell(0, 8, line)
	pdf.Ln(10)
}

func trimTo(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
