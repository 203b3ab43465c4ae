package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"budgettrack/internal/backend"
	"budgettrack/internal/core"
	"budgettrack/internal/services"
)

func runShell(t *testing.T, input string, exporters ...services.Exporter) (*services.LedgerService, string, error) {
	t.Helper()
	svc := services.NewLedgerService(core.NewAccount("personal"), services.Options{Exporters: exporters})
	var out bytes.Buffer
	err := New(strings.NewReader(input), &out, nil).Run(context.Background(), svc)
	return svc, out.String(), err
}

func lines(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}

func TestShell_AddAndDisplay(t *testing.T) {
	input := lines(
		"1", "income", "1000", "salary", "3", "1", "2024",
		"1", "expense", "200.5", "rent", "3", "1", "2024",
		"2",
		"3", "3", "1", "2024",
		"0",
	)
	svc, out, err := runShell(t, input)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, want := range []string{
		"Account Name: personal",
		"Date: 2024-03-01",
		"     $1000.00      Desc: salary",
		"     -$200.50      Desc: rent",
		"             Total: 799.50",
		"Goodbye",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if ov := svc.Overview(); ov.Transactions != 2 {
		t.Errorf("transactions = %d, want 2", ov.Transactions)
	}
}

func TestShell_Reprompts(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bad kind",
			input: lines("1", "transfer", "expense", "5", "coffee", "3", "1", "2024", "0"),
			want:  "Must enter 'income' or 'expense'",
		},
		{
			name:  "bad amount",
			input: lines("1", "expense", "abc", "-3", "5", "coffee", "3", "1", "2024", "0"),
			want:  "Amount must be a non-negative number",
		},
		{
			name:  "impossible date",
			input: lines("1", "expense", "5", "coffee", "2", "30", "2024", "3", "1", "2024", "0"),
			want:  "Invalid date, try again: ",
		},
		{
			name:  "non-numeric date",
			input: lines("1", "expense", "5", "coffee", "x", "1", "2024", "3", "1", "2024", "0"),
			want:  "Invalid date, try again: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, out, err := runShell(t, tt.input)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out)
			}
			if ov := svc.Overview(); ov.Transactions != 1 {
				t.Errorf("transactions = %d, want 1 after re-prompt", ov.Transactions)
			}
		})
	}
}

func TestShell_Misses(t *testing.T) {
	input := lines(
		"3", "3", "1", "2024",
		"6", "3", "1", "2024", "coffee",
		"9",
		"0",
	)
	_, out, err := runShell(t, input)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, want := range []string{
		"No transactions on that date.",
		"No matching transaction.",
		"Enter a valid number choice: ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestShell_RemoveDeletesEmptyDay(t *testing.T) {
	input := lines(
		"1", "expense", "3", "coffee", "3", "1", "2024",
		"1", "expense", "4", "coffee", "3", "1", "2024",
		"6", "3", "1", "2024", "coffee",
		"0",
	)
	svc, out, err := runShell(t, input)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out, "Removed 2 transaction(s).") {
		t.Errorf("output:\n%s", out)
	}
	if _, err := svc.DayDetail(core.MustDate(2024, 3, 1)); !errors.Is(err, core.ErrDateNotFound) {
		t.Errorf("empty day still present: %v", err)
	}
}

func TestShell_Budget(t *testing.T) {
	input := lines(
		"1", "expense", "30", "groceries", "3", "1", "2024",
		"5", "20",
		"5", "50",
		"4", "1",
		"0",
	)
	svc, out, err := runShell(t, input)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out, "Current Daily Budget: 20.00") {
		t.Errorf("current budget not shown:\n%s", out)
	}
	if !strings.Contains(out, "Date: 2024-03-01       -30.00") || !strings.Contains(out, "Remaining Budget: 20.00") {
		t.Errorf("ending balances:\n%s", out)
	}
	if b, ok := svc.TotalBudget(); !ok || b.String() != "50" {
		t.Errorf("budget = %s, %v", b, ok)
	}
}

func TestShell_MalformedBudgetIsUsageError(t *testing.T) {
	_, _, err := runShell(t, lines("5", "lots"))
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("error = %v, want ErrUsage", err)
	}
}

func TestShell_EOFExits(t *testing.T) {
	_, out, err := runShell(t, lines("1", "expense"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.HasSuffix(out, "Goodbye\n") {
		t.Errorf("output should end with Goodbye:\n%s", out)
	}
}

func TestShell_Export(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		_, out, err := runShell(t, lines("8", "0"))
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "Export disabled") {
			t.Errorf("output:\n%s", out)
		}
	})

	t.Run("memory", func(t *testing.T) {
		sink := backend.NewMemorySink()
		_, out, err := runShell(t, lines("1", "income", "10", "gift", "3", "1", "2024", "8", "7", "0"), sink)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "Exported to memory") {
			t.Errorf("output:\n%s", out)
		}
		if !strings.Contains(out, "Account: personal") {
			t.Errorf("overview missing:\n%s", out)
		}
		if _, n := sink.Last(); n != 1 {
			t.Errorf("exports = %d, want 1", n)
		}
	})
}

func TestShell_PromptAccountName(t *testing.T) {
	var out bytes.Buffer
	sh := New(strings.NewReader(lines("", "  ", "household")), &out, nil)
	sh.Greet()
	name, err := sh.PromptAccountName()
	if err != nil {
		t.Fatal(err)
	}
	if name != "household" {
		t.Errorf("name = %q", name)
	}
	if !strings.HasPrefix(out.String(), "Welcome to Budget Track!") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestShell_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := services.NewLedgerService(core.NewAccount("personal"), services.Options{})
	err := New(strings.NewReader("0\n"), &bytes.Buffer{}, nil).Run(ctx, svc)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
