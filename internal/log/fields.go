package log

import (
	"github.com/shopspring/decimal"
)

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldAccount     = "account"
	FieldError       = "error"
	FieldErrorType   = "error_type"
	FieldOperation   = "operation"
	FieldDate        = "date"
	FieldDescription = "description"
	FieldKind        = "kind"
	FieldAmount      = "amount"
	FieldBudget      = "budget"
	FieldRemoved     = "removed"
	FieldDays        = "days"
	FieldTarget      = "target"
	FieldEventType   = "event_type"
	FieldEventID     = "event_id"
	FieldDuration    = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentLedger  = "ledger"
	ComponentConsole = "console"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentSheets  = "sheets"
	ComponentExport  = "export"
	ComponentBackend = "backend"
	ComponentEvents  = "events"
)

// Operations defines standard operation names
const (
	OpRecord    = "record"
	OpRemove    = "remove"
	OpReplace   = "replace"
	OpSetBudget = "set_budget"
	OpExport    = "export"
	OpPublish   = "publish"
	OpConsume   = "consume"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithErrorType adds the error category
func (f LogFields) WithErrorType(errorType string) LogFields {
	f[FieldErrorType] = errorType
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithTransaction adds transaction-related fields
func (f LogFields) WithTransaction(date, desc, kind string, amount decimal.Decimal) LogFields {
	f[FieldDate] = date
	f[FieldDescription] = desc
	f[FieldKind] = kind
	f[FieldAmount] = amount.StringFixed(2)
	return f
}

// WithBudget adds the budget field
func (f LogFields) WithBudget(budget decimal.Decimal) LogFields {
	f[FieldBudget] = budget.StringFixed(2)
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
