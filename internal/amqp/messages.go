package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"budgettrack/internal/core"
)

// EventType names what happened to the ledger.
type EventType string

const (
	EventTransactionRecorded EventType = "transaction.recorded"
	EventTransactionRemoved  EventType = "transaction.removed"
	EventTransactionReplaced EventType = "transaction.replaced"
	EventBudgetSet           EventType = "budget.set"
	EventSnapshotExported    EventType = "snapshot.exported"
)

// LedgerEvent is published after every successful ledger change. Fields
// that do not apply to the event type are left empty.
type LedgerEvent struct {
	ID            uuid.UUID        `json:"id"`
	Type          EventType        `json:"type"`
	Account       string           `json:"account"`
	TransactionID *uuid.UUID       `json:"transaction_id,omitempty"`
	Date          string           `json:"date,omitempty"`
	Description   string           `json:"description,omitempty"`
	Kind          string           `json:"kind,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Budget        *decimal.Decimal `json:"budget,omitempty"`
	Removed       int              `json:"removed,omitempty"`
	Targets       []string         `json:"targets,omitempty"`
	Timestamp     time.Time        `json:"timestamp"`
}

func newEvent(t EventType, account string) *LedgerEvent {
	return &LedgerEvent{
		ID:        uuid.New(),
		Type:      t,
		Account:   account,
		Timestamp: time.Now().UTC(),
	}
}

// NewTransactionEvent describes a recorded or replaced transaction.
func NewTransactionEvent(t EventType, account string, tx core.Transaction) *LedgerEvent {
	e := newEvent(t, account)
	id := tx.ID()
	amount := tx.Amount()
	e.TransactionID = &id
	e.Date = tx.Date().String()
	e.Description = tx.Description()
	e.Kind = tx.Kind().String()
	e.Amount = &amount
	return e
}

// NewRemovalEvent describes transactions removed by description.
func NewRemovalEvent(account string, date core.Date, description string, removed int) *LedgerEvent {
	e := newEvent(EventTransactionRemoved, account)
	e.Date = date.String()
	e.Description = description
	e.Removed = removed
	return e
}

// NewBudgetEvent describes a change of the account daily budget.
func NewBudgetEvent(account string, budget decimal.Decimal) *LedgerEvent {
	e := newEvent(EventBudgetSet, account)
	e.Budget = &budget
	return e
}

// NewExportEvent describes a finished snapshot export.
func NewExportEvent(account string, targets []string) *LedgerEvent {
	e := newEvent(EventSnapshotExported, account)
	e.Targets = targets
	return e
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON creates a message from JSON bytes
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
