package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

const dateLayout = "2006-01-02"

type (
	// Kind tells whether a transaction adds to or takes from the day.
	Kind string

	// Date is a calendar day in UTC with the clock set to midnight. The
	// zero value is invalid; build one with NewDate, DateOf or ParseDate so
	// equal calendar days compare equal as map keys.
	Date struct {
		t time.Time
	}
)

var (
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidKind         = errors.New("invalid transaction kind")
	ErrDateNotFound        = errors.New("date not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// NewDate builds a Date from its parts. Triples that do not exist on the
// calendar, like February 30th or month 13, fail with ErrInvalidDate.
func NewDate(year, month, day int) (Date, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return Date{}, ErrInvalidDate
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalises overflow (Feb 30 -> Mar 1), so compare back.
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return Date{}, ErrInvalidDate
	}
	return Date{t: t}, nil
}

// MustDate is NewDate for literals known to be valid. It panics otherwise.
func MustDate(year, month, day int) Date {
	d, err := NewDate(year, month, day)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate reads an ISO date (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return DateOf(t), nil
}

func (d Date) Validate() error {
	if d.t.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.t.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.t.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.t.Year()
}

func (d Date) Before(o Date) bool {
	return d.t.Before(o.t)
}

func (d Date) Equal(o Date) bool {
	return d.t.Equal(o.t)
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time { return d.t }

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) String() string {
	return d.t.Format(dateLayout)
}

// ParseKind accepts "income" or "expense" in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if err := k.Validate(); err != nil {
		return "", err
	}
	return k, nil
}

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidKind
	}
}

func (k Kind) String() string {
	return string(k)
}
