package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"budgettrack/internal/amqp"
	"budgettrack/internal/core"
	applog "budgettrack/internal/log"
)

// ErrExportDisabled is returned by Export when no sinks are configured.
var ErrExportDisabled = errors.New("export disabled")

// EventPublisher delivers ledger events.
type EventPublisher interface {
	Publish(ctx context.Context, event *amqp.LedgerEvent) error
}

// Exporter receives ledger snapshots.
type Exporter interface {
	Name() string
	ExportSnapshot(ctx context.Context, s core.Snapshot) error
}

// Options wires the optional collaborators of a LedgerService.
type Options struct {
	Logger        *applog.Logger
	Events        EventPublisher
	Exporters     []Exporter
	ExportTimeout time.Duration
}

// LedgerService guards one Account with a mutex and logs, publishes and
// exports around every change. Event delivery is best effort: a failed
// publish is logged and never fails the ledger operation.
type LedgerService struct {
	mu      sync.Mutex
	account *core.Account

	logger        *applog.Logger
	events        EventPublisher
	exporters     []Exporter
	exportTimeout time.Duration
}

func NewLedgerService(account *core.Account, opts Options) *LedgerService {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	timeout := opts.ExportTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &LedgerService{
		account:       account,
		logger:        logger.WithComponent(applog.ComponentLedger).With(applog.FieldAccount, account.Name()),
		events:        opts.Events,
		exporters:     opts.Exporters,
		exportTimeout: timeout,
	}
}

func (s *LedgerService) AccountName() string {
	return s.account.Name()
}

// Record files a new transaction under its date.
func (s *LedgerService) Record(ctx context.Context, description string, kind core.Kind, amount decimal.Decimal, date core.Date) (core.Transaction, error) {
	fields := applog.NewFields().
		WithOperation(applog.OpRecord).
		WithTransaction(date.String(), description, kind.String(), amount)

	tx, err := core.NewTransaction(description, kind, amount, date)
	if err != nil {
		s.logger.WarnContext(ctx, "Rejected transaction", fields.WithError(err).WithErrorType(applog.ErrorTypeValidation).ToSlice()...)
		return core.Transaction{}, err
	}

	s.mu.Lock()
	_, err = s.account.Record(tx)
	s.mu.Unlock()
	if err != nil {
		s.logger.WarnContext(ctx, "Rejected transaction", fields.WithError(err).WithErrorType(applog.ErrorTypeValidation).ToSlice()...)
		return core.Transaction{}, err
	}

	s.logger.InfoContext(ctx, "Recorded transaction", fields.ToSlice()...)
	s.publish(ctx, amqp.NewTransactionEvent(amqp.EventTransactionRecorded, s.account.Name(), tx))
	return tx, nil
}

// Remove deletes every transaction on date with the given description.
func (s *LedgerService) Remove(ctx context.Context, date core.Date, description string) (int, error) {
	s.mu.Lock()
	n, err := s.account.RemoveTransactionOnDate(date, description)
	s.mu.Unlock()

	fields := applog.NewFields().
		WithOperation(applog.OpRemove)
	fields[applog.FieldDate] = date.String()
	fields[applog.FieldDescription] = description
	if err != nil {
		s.logger.InfoContext(ctx, "Nothing removed", fields.WithError(err).WithErrorType(applog.ErrorTypeNotFound).ToSlice()...)
		return 0, err
	}

	fields[applog.FieldRemoved] = n
	s.logger.InfoContext(ctx, "Removed transactions", fields.ToSlice()...)
	s.publish(ctx, amqp.NewRemovalEvent(s.account.Name(), date, description, n))
	return n, nil
}

// Replace swaps a recorded transaction for an edited copy of it.
func (s *LedgerService) Replace(ctx context.Context, tx core.Transaction) error {
	s.mu.Lock()
	err := s.account.ReplaceTransaction(tx)
	s.mu.Unlock()

	fields := applog.NewFields().
		WithOperation(applog.OpReplace).
		WithTransaction(tx.Date().String(), tx.Description(), tx.Kind().String(), tx.Amount())
	if err != nil {
		s.logger.WarnContext(ctx, "Replace failed", fields.WithError(err).ToSlice()...)
		return err
	}
	s.logger.InfoContext(ctx, "Replaced transaction", fields.ToSlice()...)
	s.publish(ctx, amqp.NewTransactionEvent(amqp.EventTransactionReplaced, s.account.Name(), tx))
	return nil
}

// SetBudget sets the account daily budget and applies it to every day.
func (s *LedgerService) SetBudget(ctx context.Context, budget decimal.Decimal) error {
	s.mu.Lock()
	err := s.account.SetTotalBudget(budget)
	days := s.account.Len()
	s.mu.Unlock()

	fields := applog.NewFields().WithOperation(applog.OpSetBudget).WithBudget(budget)
	if err != nil {
		s.logger.WarnContext(ctx, "Rejected budget", fields.WithError(err).WithErrorType(applog.ErrorTypeValidation).ToSlice()...)
		return err
	}
	fields[applog.FieldDays] = days
	s.logger.InfoContext(ctx, "Daily budget set", fields.ToSlice()...)
	s.publish(ctx, amqp.NewBudgetEvent(s.account.Name(), budget))
	return nil
}

// TotalBudget returns the account daily budget and whether one is set.
func (s *LedgerService) TotalBudget() (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.account.TotalBudget()
	return b, !b.IsZero()
}

// Activity lists every day with its transactions, oldest first.
func (s *LedgerService) Activity() string {
	return s.eachDay((*core.Day).ActivityLines)
}

// EndingBalances lists each day's net change and remaining budget.
func (s *LedgerService) EndingBalances() string {
	return s.eachDay((*core.Day).EndingBalance)
}

// Amounts lists each day's income, expenses, total and remaining budget.
func (s *LedgerService) Amounts() string {
	return s.eachDay((*core.Day).Amounts)
}

// DayDetail renders one day in full. It fails with core.ErrDateNotFound
// when nothing was recorded on date.
func (s *LedgerService) DayDetail(date core.Date) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.account.Day(date)
	if err != nil {
		return "", err
	}
	return d.FullDetail(), nil
}

// Overview totals the account.
func (s *LedgerService) Overview() core.Overview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account.Overview()
}

// Snapshot copies the ledger.
func (s *LedgerService) Snapshot() core.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account.Snapshot()
}

func (s *LedgerService) eachDay(render func(*core.Day) string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b strings.Builder
	for _, d := range s.account.SortedDays() {
		b.WriteString(render(d))
	}
	return b.String()
}

// Export sends a snapshot to every exporter concurrently and returns the
// names of the exporters that were written.
func (s *LedgerService) Export(ctx context.Context) ([]string, error) {
	if len(s.exporters) == 0 {
		return nil, ErrExportDisabled
	}
	snap := s.Snapshot()
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.exportTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for _, e := range s.exporters {
		g.Go(func() error {
			if err := e.ExportSnapshot(gctx, snap); err != nil {
				return fmt.Errorf("%s: %w", e.Name(), err)
			}
			return nil
		})
	}

	names := make([]string, 0, len(s.exporters))
	for _, e := range s.exporters {
		names = append(names, e.Name())
	}

	fields := applog.NewFields().WithOperation(applog.OpExport)
	fields[applog.FieldTarget] = strings.Join(names, ",")
	fields[applog.FieldDays] = len(snap.Days)
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "Export failed", fields.WithError(err).ToSlice()...)
		return nil, err
	}
	fields[applog.FieldDuration] = time.Since(start).Milliseconds()
	s.logger.InfoContext(ctx, "Snapshot exported", fields.ToSlice()...)

	s.publish(ctx, amqp.NewExportEvent(s.account.Name(), names))
	return names, nil
}

func (s *LedgerService) publish(ctx context.Context, event *amqp.LedgerEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ledger event",
			applog.FieldOperation, applog.OpPublish,
			applog.FieldEventType, event.Type,
			applog.FieldEventID, event.ID,
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeNetwork)
	}
}
