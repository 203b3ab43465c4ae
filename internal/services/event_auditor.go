package services

import (
	"context"
	"fmt"
	"sync"

	"budgettrack/internal/amqp"
	applog "budgettrack/internal/log"
)

// EventAuditor logs ledger events as they arrive and keeps per-type counts.
// Its Handle method is meant to be passed to amqp.Client.Consume.
type EventAuditor struct {
	mu     sync.Mutex
	counts map[amqp.EventType]int
	seen   map[string]struct{}
	logger *applog.Logger
}

func NewEventAuditor(logger *applog.Logger) *EventAuditor {
	if logger == nil {
		logger = applog.Discard()
	}
	return &EventAuditor{
		counts: make(map[amqp.EventType]int),
		seen:   make(map[string]struct{}),
		logger: logger.WithComponent(applog.ComponentEvents),
	}
}

// Handle records one event. Redelivered events are logged once. Events
// without a type fail with amqp.ErrPermanent so the broker dead-letters
// them instead of redelivering.
func (a *EventAuditor) Handle(ctx context.Context, e *amqp.LedgerEvent) error {
	if e == nil || e.Type == "" {
		return fmt.Errorf("%w: event has no type", amqp.ErrPermanent)
	}

	a.mu.Lock()
	id := e.ID.String()
	if _, dup := a.seen[id]; dup {
		a.mu.Unlock()
		a.logger.DebugContext(ctx, "Duplicate ledger event", applog.FieldEventID, id)
		return nil
	}
	a.seen[id] = struct{}{}
	a.counts[e.Type]++
	a.mu.Unlock()

	args := []any{
		applog.FieldOperation, applog.OpConsume,
		applog.FieldEventID, id,
		applog.FieldEventType, e.Type,
		applog.FieldAccount, e.Account,
	}
	if e.Date != "" {
		args = append(args, applog.FieldDate, e.Date)
	}
	if e.Description != "" {
		args = append(args, applog.FieldDescription, e.Description)
	}
	if e.Amount != nil {
		args = append(args, applog.FieldKind, e.Kind, applog.FieldAmount, e.Amount.StringFixed(2))
	}
	if e.Budget != nil {
		args = append(args, applog.FieldBudget, e.Budget.StringFixed(2))
	}
	if e.Removed > 0 {
		args = append(args, applog.FieldRemoved, e.Removed)
	}
	if len(e.Targets) > 0 {
		args = append(args, applog.FieldTarget, e.Targets)
	}
	a.logger.InfoContext(ctx, "Ledger event", args...)
	return nil
}

// Counts returns a copy of the per-type event counts.
func (a *EventAuditor) Counts() map[amqp.EventType]int {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[amqp.EventType]int, len(a.counts))
	for k, v := range a.counts {
		out[k] = v
	}
	return out
}
