package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"budgettrack/internal/core"
)

func snapshot(t *testing.T, transactions int) core.Snapshot {
	t.Helper()
	a := core.NewAccount("personal")
	for i := 0; i < transactions; i++ {
		kind := core.Expense
		if i%5 == 0 {
			kind = core.Income
		}
		date := core.MustDate(2024, 3, 1+i%10)
		tx, err := core.NewTransaction("item", kind, decimal.NewFromInt(int64(10+i)), date)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := a.Record(tx); err != nil {
			t.Fatal(err)
		}
	}
	if err := a.SetTotalBudget(decimal.NewFromInt(40)); err != nil {
		t.Fatal(err)
	}
	return a.Snapshot()
}

func TestRender(t *testing.T) {
	tests := []struct {
		name         string
		transactions int
	}{
		{"empty ledger", 0},
		{"single page", 4},
		{"several pages", 120},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Render(&buf, snapshot(t, tt.transactions), time.Now()); err != nil {
				t.Fatalf("Render: %v", err)
			}
			if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
				t.Errorf("output is not a PDF: %q", buf.Bytes()[:min(16, buf.Len())])
			}
		})
	}
}

func TestFileName(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		account string
		want    string
	}{
		{"personal", "personal-20240301T090000Z.pdf"},
		{"my house/rent", "my-houserent-20240301T090000Z.pdf"},
		{"  ", "account-20240301T090000Z.pdf"},
	}
	for _, tt := range tests {
		if got := fileName(tt.account, at); got != tt.want {
			t.Errorf("fileName(%q) = %q, want %q", tt.account, got, tt.want)
		}
	}
}

func TestPDFExporter_ExportSnapshot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	e, err := NewPDFExporter(dir)
	if err != nil {
		t.Fatalf("NewPDFExporter: %v", err)
	}
	e.now = func() time.Time { return time.Date(2024, 3, 11, 18, 0, 0, 0, time.UTC) }

	if err := e.ExportSnapshot(context.Background(), snapshot(t, 6)); err != nil {
		t.Fatalf("ExportSnapshot: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "personal-20240311T180000Z.pdf" {
		var names []string
		for _, en := range entries {
			names = append(names, en.Name())
		}
		t.Fatalf("unexpected files: %s", strings.Join(names, ", "))
	}
}

func TestNewPDFExporter_RequiresDir(t *testing.T) {
	if _, err := NewPDFExporter(" "); err == nil {
		t.Fatal("expected error for empty directory")
	}
}
