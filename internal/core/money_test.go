package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1.00", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{" 2.50 ", "2.50", true},
		{"0", "0.00", true},
		{"-1", "", false},
		{"+1", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"1e3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || FormatAmount(got) != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, FormatAmount(got), err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestParseAmountRoundsToCents(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0.005", "0.01"},
		{"0.004", "0"},
		{"12.345", "12.35"},
		{"7,999", "8"},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if err != nil {
			t.Fatalf("%q: %v", tc.in, err)
		}
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("%q parsed to %s, want %s", tc.in, got, tc.want)
		}
	}

	// totals of rounded amounts agree with the per-line display
	date := MustDate(2024, 3, 1)
	d := NewDay(date)
	for i := 0; i < 3; i++ {
		amount, _ := ParseAmount("0.005")
		tx, err := NewTransaction("gum", Expense, amount, date)
		if err != nil {
			t.Fatalf("NewTransaction: %v", err)
		}
		_ = d.AddTransaction(tx)
	}
	if got := FormatAmount(d.Expense()); got != "0.03" {
		t.Fatalf("expense = %s, want 0.03", got)
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(decimal.RequireFromString("800")); got != "800.00" {
		t.Fatalf("got %s", got)
	}
	if got := FormatAmount(decimal.RequireFromString("-30")); got != "-30.00" {
		t.Fatalf("got %s", got)
	}
}
