// Package console implements the interactive menu that drives a ledger
// from a line-oriented reader and writer.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"budgettrack/internal/core"
	applog "budgettrack/internal/log"
	"budgettrack/internal/services"
)

// ErrUsage reports input the shell refuses to recover from.
var ErrUsage = errors.New("usage error")

// Ledger is the set of ledger operations the menu drives.
type Ledger interface {
	AccountName() string
	Record(ctx context.Context, description string, kind core.Kind, amount decimal.Decimal, date core.Date) (core.Transaction, error)
	Remove(ctx context.Context, date core.Date, description string) (int, error)
	SetBudget(ctx context.Context, budget decimal.Decimal) error
	TotalBudget() (decimal.Decimal, bool)
	Activity() string
	DayDetail(date core.Date) (string, error)
	EndingBalances() string
	Amounts() string
	Overview() core.Overview
	Export(ctx context.Context) ([]string, error)
}

const menu = `
1. Add a transaction
2. Display all transactions
3. Display a specific day
4. Display all daily balances and budget status
5. Set a daily budget
6. Remove a transaction
7. Show account overview
8. Export snapshot

0. Exit
`

// Shell reads menu choices and prompts from in and writes every report
// to out.
type Shell struct {
	in     *bufio.Scanner
	out    io.Writer
	logger *applog.Logger
}

func New(in io.Reader, out io.Writer, logger *applog.Logger) *Shell {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Shell{
		in:     bufio.NewScanner(in),
		out:    out,
		logger: logger.WithComponent(applog.ComponentConsole),
	}
}

// Greet prints the welcome banner.
func (s *Shell) Greet() {
	s.println("Welcome to Budget Track!")
}

// PromptAccountName asks for an account name until a non-blank one is given.
func (s *Shell) PromptAccountName() (string, error) {
	for {
		name, err := s.prompt("Enter name of account: ")
		if err != nil {
			return "", err
		}
		if name != "" {
			return name, nil
		}
	}
}

// Run serves the menu until the user exits, input ends or ctx is done.
// It returns nil on a normal exit and an error wrapping ErrUsage when the
// budget input is malformed.
func (s *Shell) Run(ctx context.Context, ledger Ledger) error {
	s.println("----------------------------------------")
	s.printf("\nAccount Name: %s\n", ledger.AccountName())

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.printf("%s", menu)
		choice, err := s.prompt("\nEnter a number choice: ")
		if err != nil {
			return s.finish(err)
		}
		s.logger.Debug("Menu choice", "choice", choice)

		switch choice {
		case "1":
			err = s.addTransaction(ctx, ledger)
		case "2":
			s.println("")
			s.printf("%s", ledger.Activity())
		case "3":
			err = s.showDay(ledger)
		case "4":
			err = s.showBalances(ledger)
		case "5":
			err = s.setBudget(ctx, ledger)
		case "6":
			err = s.removeTransaction(ctx, ledger)
		case "7":
			s.println("")
			s.printf("%s", ledger.Overview())
		case "8":
			s.export(ctx, ledger)
		case "0":
			s.println("Goodbye")
			return nil
		default:
			s.println("Enter a valid number choice: ")
		}
		if err != nil {
			return s.finish(err)
		}
	}
}

// finish turns the end of input into a normal exit.
func (s *Shell) finish(err error) error {
	if errors.Is(err, io.EOF) {
		s.println("Goodbye")
		return nil
	}
	return err
}

func (s *Shell) addTransaction(ctx context.Context, ledger Ledger) error {
	kind, err := s.promptKind()
	if err != nil {
		return err
	}
	amount, err := s.promptAmount()
	if err != nil {
		return err
	}
	description, err := s.prompt("Description: ")
	if err != nil {
		return err
	}
	s.println("Enter Date (MMDDYYYY): ")
	date, err := s.promptDate()
	if err != nil {
		return err
	}

	if _, err := ledger.Record(ctx, description, kind, amount, date); err != nil {
		s.printf("\nCould not record transaction: %v\n", err)
	}
	return nil
}

func (s *Shell) showDay(ledger Ledger) error {
	s.println("Enter a date to see: ")
	date, err := s.promptDate()
	if err != nil {
		return err
	}
	detail, err := ledger.DayDetail(date)
	if errors.Is(err, core.ErrDateNotFound) {
		s.println("\nNo transactions on that date.")
		return nil
	}
	if err != nil {
		return err
	}
	s.printf("%s", detail)
	return nil
}

func (s *Shell) showBalances(ledger Ledger) error {
	s.println("   1. Show Daily Ending Balances and Remaining Budget")
	s.println("   2. Show Full Info")
	choice, err := s.prompt("Enter choice: ")
	if err != nil {
		return err
	}
	s.println("")
	switch choice {
	case "1":
		s.printf("%s", ledger.EndingBalances())
	case "2":
		s.printf("%s", ledger.Amounts())
	}
	return nil
}

func (s *Shell) setBudget(ctx context.Context, ledger Ledger) error {
	if current, ok := ledger.TotalBudget(); ok {
		s.printf("Current Daily Budget: %s\n", core.FormatAmount(current))
	}
	input, err := s.prompt("Enter a daily budget: $")
	if err != nil {
		return err
	}
	budget, err := core.ParseAmount(input)
	if err != nil {
		return fmt.Errorf("%w: daily budget %q: %v", ErrUsage, input, err)
	}
	return ledger.SetBudget(ctx, budget)
}

func (s *Shell) removeTransaction(ctx context.Context, ledger Ledger) error {
	s.println("Enter Date (MMDDYYYY): ")
	date, err := s.promptDate()
	if err != nil {
		return err
	}
	description, err := s.prompt("Transaction Description: ")
	if err != nil {
		return err
	}

	n, err := ledger.Remove(ctx, date, description)
	switch {
	case errors.Is(err, core.ErrDateNotFound), errors.Is(err, core.ErrTransactionNotFound):
		s.println("\nNo matching transaction.")
		return nil
	case err != nil:
		return err
	}
	s.printf("\nRemoved %d transaction(s).\n", n)
	return nil
}

func (s *Shell) export(ctx context.Context, ledger Ledger) {
	names, err := ledger.Export(ctx)
	switch {
	case errors.Is(err, services.ErrExportDisabled):
		s.println("Export disabled")
	case err != nil:
		s.printf("Export failed: %v\n", err)
	default:
		s.printf("Exported to %s\n", strings.Join(names, ", "))
	}
}

func (s *Shell) promptKind() (core.Kind, error) {
	input, err := s.prompt("Type of transaction (income or expense): ")
	for err == nil {
		kind, kerr := core.ParseKind(input)
		if kerr == nil {
			return kind, nil
		}
		s.println("\nMust enter 'income' or 'expense'")
		input, err = s.prompt("Type of transaction: ")
	}
	return "", err
}

func (s *Shell) promptAmount() (decimal.Decimal, error) {
	for {
		input, err := s.prompt("Amount: $")
		if err != nil {
			return decimal.Zero, err
		}
		amount, err := core.ParseAmount(input)
		if err == nil {
			return amount, nil
		}
		s.println("Amount must be a non-negative number")
	}
}

// promptDate reads month, day and year until they form a real date.
func (s *Shell) promptDate() (core.Date, error) {
	for {
		var parts [3]int
		valid := true
		for i, label := range []string{"Month: ", "Day: ", "Year: "} {
			input, err := s.prompt(label)
			if err != nil {
				return core.Date{}, err
			}
			n, err := strconv.Atoi(input)
			if err != nil {
				valid = false
			}
			parts[i] = n
		}
		if valid {
			date, err := core.NewDate(parts[2], parts[0], parts[1])
			if err == nil {
				return date, nil
			}
		}
		s.println("Invalid date, try again: ")
	}
}

// prompt writes label and returns the next trimmed input line. It returns
// io.EOF once input is exhausted.
func (s *Shell) prompt(label string) (string, error) {
	s.printf("%s", label)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *Shell) println(line string) {
	fmt.Fprintln(s.out, line)
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
