package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is one dated income or expense. It is a value: the With*
// methods return modified copies that keep the same ID, and a recorded
// transaction is changed by replacing it through its Day or Account.
type Transaction struct {
	id          uuid.UUID
	description string
	kind        Kind
	amount      decimal.Decimal
	date        Date
}

// NewTransaction validates its arguments and assigns a fresh ID.
func NewTransaction(description string, kind Kind, amount decimal.Decimal, date Date) (Transaction, error) {
	t := Transaction{
		id:          uuid.New(),
		description: description,
		kind:        kind,
		amount:      amount,
		date:        date,
	}
	if err := t.Validate(); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

func (t Transaction) Validate() error {
	if err := t.kind.Validate(); err != nil {
		return err
	}
	if err := ValidateAmount(t.amount); err != nil {
		return err
	}
	return t.date.Validate()
}

func (t Transaction) ID() uuid.UUID           { return t.id }
func (t Transaction) Description() string     { return t.description }
func (t Transaction) Kind() Kind              { return t.kind }
func (t Transaction) Amount() decimal.Decimal { return t.amount }
func (t Transaction) Date() Date              { return t.date }

// Signed returns the amount negated for expenses.
func (t Transaction) Signed() decimal.Decimal {
	if t.kind == Expense {
		return t.amount.Neg()
	}
	return t.amount
}

// WithAmount returns a copy carrying amount.
func (t Transaction) WithAmount(amount decimal.Decimal) (Transaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return Transaction{}, err
	}
	t.amount = amount
	return t, nil
}

// WithKind returns a copy carrying kind.
func (t Transaction) WithKind(kind Kind) (Transaction, error) {
	if err := kind.Validate(); err != nil {
		return Transaction{}, err
	}
	t.kind = kind
	return t, nil
}

// WithDate returns a copy carrying date.
func (t Transaction) WithDate(date Date) (Transaction, error) {
	if err := date.Validate(); err != nil {
		return Transaction{}, err
	}
	t.date = date
	return t, nil
}

// Line renders the transaction the way the activity listings show it:
// expenses get a leading minus, income does not.
func (t Transaction) Line() string {
	var b strings.Builder
	b.WriteString("     ")
	if t.kind == Expense {
		b.WriteString("-")
	}
	fmt.Fprintf(&b, "$%s      Desc: %s", FormatAmount(t.amount), t.description)
	return b.String()
}
