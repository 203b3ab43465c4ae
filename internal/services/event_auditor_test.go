package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"budgettrack/internal/amqp"
	"budgettrack/internal/core"
	applog "budgettrack/internal/log"
)

func TestEventAuditor_Handle(t *testing.T) {
	var buf bytes.Buffer
	auditor := NewEventAuditor(applog.New(applog.Config{Output: &buf, Format: "text"}))
	ctx := context.Background()

	tx, err := core.NewTransaction("salary", core.Income, decimal.NewFromInt(1000), core.MustDate(2024, 3, 1))
	if err != nil {
		t.Fatal(err)
	}
	recorded := amqp.NewTransactionEvent(amqp.EventTransactionRecorded, "personal", tx)

	if err := auditor.Handle(ctx, recorded); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if err := auditor.Handle(ctx, recorded); err != nil {
		t.Fatalf("Handle duplicate: %v", err)
	}
	if err := auditor.Handle(ctx, amqp.NewBudgetEvent("personal", decimal.NewFromInt(50))); err != nil {
		t.Fatalf("Handle budget: %v", err)
	}

	counts := auditor.Counts()
	if counts[amqp.EventTransactionRecorded] != 1 {
		t.Errorf("recorded count = %d, want 1", counts[amqp.EventTransactionRecorded])
	}
	if counts[amqp.EventBudgetSet] != 1 {
		t.Errorf("budget count = %d, want 1", counts[amqp.EventBudgetSet])
	}

	out := buf.String()
	for _, want := range []string{"amount=1000.00", "budget=50.00", "event_type=transaction.recorded"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

func TestEventAuditor_RejectsUntyped(t *testing.T) {
	auditor := NewEventAuditor(nil)
	if err := auditor.Handle(context.Background(), &amqp.LedgerEvent{}); !errors.Is(err, amqp.ErrPermanent) {
		t.Errorf("expected ErrPermanent for event without type, got %v", err)
	}
	if err := auditor.Handle(context.Background(), nil); !errors.Is(err, amqp.ErrPermanent) {
		t.Errorf("expected ErrPermanent for nil event, got %v", err)
	}
	if n := len(auditor.Counts()); n != 0 {
		t.Errorf("rejected events were counted: %d types", n)
	}
}
