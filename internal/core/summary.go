package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Overview totals the whole account.
type Overview struct {
	Account        string
	Days           int
	Transactions   int
	Income         decimal.Decimal
	Expense        decimal.Decimal
	Net            decimal.Decimal
	TotalBudget    decimal.Decimal
	OverBudgetDays int
}

// TransactionRecord is a flattened transaction for exports and events.
type TransactionRecord struct {
	ID          uuid.UUID
	Date        Date
	Description string
	Kind        Kind
	Amount      decimal.Decimal
}

// DayRecord is a flattened day for exports.
type DayRecord struct {
	Date            Date
	Income          decimal.Decimal
	Expense         decimal.Decimal
	NetChange       decimal.Decimal
	DailyBudget     decimal.Decimal
	RemainingBudget decimal.Decimal
	HasBudget       bool
	InBudget        bool
	Transactions    []TransactionRecord
}

// Snapshot is a read-only copy of the account at one point in time.
type Snapshot struct {
	Account     string
	TotalBudget decimal.Decimal
	Days        []DayRecord
}

func (a *Account) Overview() Overview {
	o := Overview{Account: a.name, TotalBudget: a.budget}
	for _, d := range a.days {
		o.Days++
		o.Transactions += d.Len()
		o.Income = o.Income.Add(d.Income())
		o.Expense = o.Expense.Add(d.Expense())
		if !d.InBudget() {
			o.OverBudgetDays++
		}
	}
	o.Net = o.Income.Sub(o.Expense)
	return o
}

func (o Overview) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Account: %s\n", o.Account)
	fmt.Fprintf(&b, "      Days: %d\n", o.Days)
	fmt.Fprintf(&b, "    Income: %s\n", FormatAmount(o.Income))
	fmt.Fprintf(&b, "  Expenses: %s\n", FormatAmount(o.Expense))
	fmt.Fprintf(&b, "     Total: %s\n", FormatAmount(o.Net))
	if !o.TotalBudget.IsZero() {
		fmt.Fprintf(&b, "  Daily Budget: %s\n", FormatAmount(o.TotalBudget))
		fmt.Fprintf(&b, "  Days Over Budget: %d\n", o.OverBudgetDays)
	}
	return b.String()
}

// Snapshot copies the account in ascending date order.
func (a *Account) Snapshot() Snapshot {
	s := Snapshot{Account: a.name, TotalBudget: a.budget}
	for _, d := range a.SortedDays() {
		s.Days = append(s.Days, d.Record())
	}
	return s
}

// TransactionCount totals the transactions across all days.
func (s Snapshot) TransactionCount() int {
	n := 0
	for _, d := range s.Days {
		n += len(d.Transactions)
	}
	return n
}

func (d *Day) Record() DayRecord {
	remaining, ok := d.RemainingBudget()
	r := DayRecord{
		Date:            d.date,
		Income:          d.income,
		Expense:         d.expense,
		NetChange:       d.netChange,
		DailyBudget:     d.budget,
		RemainingBudget: remaining,
		HasBudget:       ok,
		InBudget:        d.inBudget,
	}
	for _, t := range d.transactions {
		r.Transactions = append(r.Transactions, t.Record())
	}
	return r
}

func (t Transaction) Record() TransactionRecord {
	return TransactionRecord{
		ID:          t.id,
		Date:        t.date,
		Description: t.description,
		Kind:        t.kind,
		Amount:      t.amount,
	}
}
