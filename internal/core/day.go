package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Day aggregates the transactions of one calendar date. Income, expense,
// net change and the budget figures are kept current on every change.
type Day struct {
	date         Date
	transactions []Transaction

	income    decimal.Decimal
	expense   decimal.Decimal
	netChange decimal.Decimal

	// zero means no budget
	budget    decimal.Decimal
	remaining decimal.Decimal
	inBudget  bool
}

func NewDay(date Date) *Day {
	return &Day{date: date, inBudget: true}
}

func (d *Day) Date() Date                 { return d.date }
func (d *Day) Income() decimal.Decimal    { return d.income }
func (d *Day) Expense() decimal.Decimal   { return d.expense }
func (d *Day) NetChange() decimal.Decimal { return d.netChange }
func (d *Day) DailyBudget() decimal.Decimal {
	return d.budget
}
func (d *Day) Len() int { return len(d.transactions) }

// InBudget is false once the remaining budget reaches zero or below.
// Without a budget it is always true.
func (d *Day) InBudget() bool { return d.inBudget }

// HasBudget reports whether a daily budget is set.
func (d *Day) HasBudget() bool { return !d.budget.IsZero() }

// Transactions returns a copy in insertion order.
func (d *Day) Transactions() []Transaction {
	return append([]Transaction(nil), d.transactions...)
}

// RemainingBudget returns budget plus net change. ok is false when no
// budget is set.
func (d *Day) RemainingBudget() (decimal.Decimal, bool) {
	if !d.HasBudget() {
		return decimal.Zero, false
	}
	return d.remaining, true
}

func (d *Day) MatchesDate(date Date) bool {
	return d.date.Equal(date)
}

// AddTransaction appends t and folds its amount into the aggregates. t
// must fall on the day's date.
func (d *Day) AddTransaction(t Transaction) error {
	if !d.MatchesDate(t.Date()) {
		return fmt.Errorf("%s on day %s: %w", t.Date(), d.date, ErrInvalidDate)
	}
	if err := t.Kind().Validate(); err != nil {
		return err
	}
	if err := ValidateAmount(t.Amount()); err != nil {
		return err
	}
	d.transactions = append(d.transactions, t)
	d.apply(t, false)
	return nil
}

// RemoveTransaction drops the transaction with the given ID and takes its
// amount back out of the aggregates.
func (d *Day) RemoveTransaction(id uuid.UUID) error {
	i := d.indexOf(id)
	if i < 0 {
		return ErrTransactionNotFound
	}
	t := d.transactions[i]
	d.transactions = append(d.transactions[:i], d.transactions[i+1:]...)
	d.apply(t, true)
	return nil
}

// ReplaceTransaction swaps the recorded transaction with t.ID() for t.
func (d *Day) ReplaceTransaction(t Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if !d.MatchesDate(t.Date()) {
		return fmt.Errorf("%s on day %s: %w", t.Date(), d.date, ErrInvalidDate)
	}
	if err := d.RemoveTransaction(t.ID()); err != nil {
		return err
	}
	return d.AddTransaction(t)
}

// SetDailyBudget sets the budget and recomputes the remaining budget in the
// same step. Zero unsets it.
func (d *Day) SetDailyBudget(b decimal.Decimal) {
	d.budget = b
	if !d.RefreshBudget() {
		d.remaining = decimal.Zero
		d.inBudget = true
	}
}

// RefreshBudget recomputes the remaining budget and in-budget status from
// the current net change. It returns false without touching anything when
// no budget is set.
func (d *Day) RefreshBudget() bool {
	if !d.HasBudget() {
		return false
	}
	d.remaining = d.budget.Add(d.netChange)
	d.inBudget = d.remaining.IsPositive()
	return true
}

func (d *Day) apply(t Transaction, undo bool) {
	amount := t.Amount()
	if undo {
		amount = amount.Neg()
	}
	switch t.Kind() {
	case Expense:
		d.expense = d.expense.Add(amount)
	case Income:
		d.income = d.income.Add(amount)
	}
	d.netChange = d.income.Sub(d.expense)
	d.RefreshBudget()
}

func (d *Day) indexOf(id uuid.UUID) int {
	for i, t := range d.transactions {
		if t.ID() == id {
			return i
		}
	}
	return -1
}

// ActivityLines lists the date followed by every transaction.
func (d *Day) ActivityLines() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n", d.date)
	for _, t := range d.transactions {
		b.WriteString(t.Line())
		b.WriteByte('\n')
	}
	return b.String()
}

// FullDetail lists the transactions followed by the day's totals.
func (d *Day) FullDetail() string {
	var b strings.Builder
	b.WriteString(d.ActivityLines())
	fmt.Fprintf(&b, "            Income: %s\n", FormatAmount(d.income))
	fmt.Fprintf(&b, "          Expenses: %s\n", FormatAmount(d.expense))
	fmt.Fprintf(&b, "             Total: %s\n", FormatAmount(d.netChange))
	d.writeBudget(&b)
	return b.String()
}

// EndingBalance is the one-line net change for the day.
func (d *Day) EndingBalance() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s       %s\n", d.date, FormatAmount(d.netChange))
	if remaining, ok := d.RemainingBudget(); ok {
		fmt.Fprintf(&b, "  Remaining Budget: %s\n", FormatAmount(remaining))
	}
	return b.String()
}

// Amounts shows the totals without the individual transactions.
func (d *Day) Amounts() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n", d.date)
	fmt.Fprintf(&b, "     Income: %s\n", FormatAmount(d.income))
	fmt.Fprintf(&b, "   Expenses: %s\n", FormatAmount(d.expense))
	fmt.Fprintf(&b, "      Total: %s\n", FormatAmount(d.netChange))
	d.writeBudget(&b)
	return b.String()
}

func (d *Day) writeBudget(b *strings.Builder) {
	remaining, ok := d.RemainingBudget()
	if !ok {
		return
	}
	fmt.Fprintf(b, "  Remaining Budget: %s\n", FormatAmount(remaining))
	if d.inBudget {
		b.WriteString("     Budget Status: within budget\n")
	} else {
		b.WriteString("     Budget Status: over budget\n")
	}
}
