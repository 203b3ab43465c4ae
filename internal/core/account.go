package core

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Account is the ledger: it owns one Day per date and the default daily
// budget applied to all of them. It is not safe for concurrent use.
type Account struct {
	name   string
	days   map[Date]*Day
	budget decimal.Decimal
}

func NewAccount(name string) *Account {
	return &Account{name: name, days: make(map[Date]*Day)}
}

func (a *Account) Name() string                 { return a.name }
func (a *Account) TotalBudget() decimal.Decimal { return a.budget }
func (a *Account) Len() int                     { return len(a.days) }

// FindOrCreateDay returns the Day for date, creating it with the account
// budget applied when it does not exist yet.
func (a *Account) FindOrCreateDay(date Date) *Day {
	if d, ok := a.days[date]; ok {
		return d
	}
	d := NewDay(date)
	if !a.budget.IsZero() {
		d.SetDailyBudget(a.budget)
	}
	a.days[date] = d
	return d
}

// Day looks up the Day for date.
func (a *Account) Day(date Date) (*Day, error) {
	d, ok := a.days[date]
	if !ok {
		return nil, fmt.Errorf("%s: %w", date, ErrDateNotFound)
	}
	return d, nil
}

// Record files t under its date.
func (a *Account) Record(t Transaction) (*Day, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	_, existed := a.days[t.Date()]
	d := a.FindOrCreateDay(t.Date())
	if err := d.AddTransaction(t); err != nil {
		if !existed {
			delete(a.days, t.Date())
		}
		return nil, err
	}
	return d, nil
}

// SetTotalBudget changes the default daily budget and applies it to every
// existing day right away. Zero unsets it.
func (a *Account) SetTotalBudget(b decimal.Decimal) error {
	if err := ValidateAmount(b); err != nil {
		return err
	}
	a.budget = b
	for _, d := range a.days {
		d.SetDailyBudget(b)
	}
	return nil
}

// RemoveTransactionOnDate removes every transaction on date whose
// description equals description and returns how many went. A day left
// without transactions is dropped from the account.
func (a *Account) RemoveTransactionOnDate(date Date, description string) (int, error) {
	d, err := a.Day(date)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, t := range d.Transactions() {
		if t.Description() != description {
			continue
		}
		if err := d.RemoveTransaction(t.ID()); err != nil {
			return removed, err
		}
		removed++
	}
	if removed == 0 {
		return 0, fmt.Errorf("%q on %s: %w", description, date, ErrTransactionNotFound)
	}
	if d.Len() == 0 {
		delete(a.days, date)
	}
	return removed, nil
}

// ReplaceTransaction swaps the recorded transaction with t.ID() for t,
// moving it to another day when the date changed.
func (a *Account) ReplaceTransaction(t Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	from := a.dayHolding(t)
	if from == nil {
		return ErrTransactionNotFound
	}
	if from.MatchesDate(t.Date()) {
		return from.ReplaceTransaction(t)
	}
	if err := from.RemoveTransaction(t.ID()); err != nil {
		return err
	}
	if from.Len() == 0 {
		delete(a.days, from.Date())
	}
	_, err := a.Record(t)
	return err
}

func (a *Account) dayHolding(t Transaction) *Day {
	for _, d := range a.days {
		if d.indexOf(t.ID()) >= 0 {
			return d
		}
	}
	return nil
}

// SortedDays returns the days in ascending date order.
func (a *Account) SortedDays() []*Day {
	out := make([]*Day, 0, len(a.days))
	for _, d := range a.days {
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date().Before(out[j].Date())
	})
	return out
}
