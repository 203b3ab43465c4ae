package backend

import (
	"context"

	"budgettrack/internal/amqp"
	"budgettrack/internal/core"
)

// Sink receives ledger snapshots.
type Sink interface {
	Name() string
	ExportSnapshot(ctx context.Context, s core.Snapshot) error
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result holds everything the factory built. Events is nil when no broker
// is configured or reachable.
type Result struct {
	Sinks   []Sink
	Events  *amqp.Client
	Cleanup CleanupFunc
}

// Factory creates export sinks and the event client from configuration
type Factory interface {
	Create(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for sink creation
type Config struct {
	Targets []TargetType

	// SQLite specific
	SQLiteDBPath string

	// Postgres specific
	PostgresDSN string

	// PDF statements
	ReportDir string

	// Google Cloud Storage specific
	GCSBucket string
	GCSPrefix string

	// BigQuery specific
	BigQueryProjectID         string
	BigQueryDataset           string
	BigQueryDaysTable         string
	BigQueryTransactionsTable string

	// Events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// TargetType represents the type of export sink
type TargetType string

const (
	SQLiteTarget   TargetType = "sqlite"
	SheetsTarget   TargetType = "sheets"
	MemoryTarget   TargetType = "memory"
	PostgresTarget TargetType = "postgres"
	GCSTarget      TargetType = "gcs"
	BigQueryTarget TargetType = "bigquery"
	PDFTarget      TargetType = "pdf"
)

// String implements fmt.Stringer
func (tt TargetType) String() string {
	return string(tt)
}

// IsValid returns true if the target type is valid
func (tt TargetType) IsValid() bool {
	switch tt {
	case SQLiteTarget, SheetsTarget, MemoryTarget, PostgresTarget, GCSTarget, BigQueryTarget, PDFTarget:
		return true
	default:
		return false
	}
}
