package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"budgettrack/internal/core"
	applog "budgettrack/internal/log"
)

// Export targets
const (
	TargetSQLite   = "sqlite"
	TargetSheets   = "sheets"
	TargetMemory   = "memory"
	TargetPostgres = "postgres"
	TargetGCS      = "gcs"
	TargetBigQuery = "bigquery"
	TargetPDF      = "pdf"
)

type Config struct {
	// Ledger
	AccountName string
	DailyBudget string

	// Logging
	LogLevel  string
	LogFormat string

	// Export
	ExportTargets  []string
	ExportTimeout  time.Duration
	ExportSchedule string
	SQLiteDBPath   string
	PostgresDSN    string
	ReportDir      string

	// Google Cloud Storage
	GCSBucket string
	GCSPrefix string

	// BigQuery
	BigQueryProjectID         string
	BigQueryDataset           string
	BigQueryDaysTable         string
	BigQueryTransactionsTable string

	// AMQP (optional, enables ledger events)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

func Load() *Config {
	cfg := &Config{
		AccountName: getEnv("ACCOUNT_NAME", ""),
		DailyBudget: getEnv("DAILY_BUDGET", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		ExportTargets:  getEnvList("EXPORT_TARGETS"),
		ExportTimeout:  getEnvDuration("EXPORT_TIMEOUT", 30*time.Second),
		ExportSchedule: getEnv("EXPORT_SCHEDULE", ""),
		SQLiteDBPath:   getEnv("SQLITE_DB_PATH", "./data/budgettrack.db"),
		PostgresDSN:    getEnv("POSTGRES_DSN", ""),
		ReportDir:      getEnv("REPORT_DIR", "./data/reports"),

		GCSBucket: getEnv("GCS_BUCKET", ""),
		GCSPrefix: getEnv("GCS_PREFIX", "budgettrack"),

		BigQueryProjectID:         getEnv("BIGQUERY_PROJECT_ID", getEnv("GOOGLE_CLOUD_PROJECT", "")),
		BigQueryDataset:           getEnv("BIGQUERY_DATASET", ""),
		BigQueryDaysTable:         getEnv("BIGQUERY_DAYS_TABLE", "ledger_days"),
		BigQueryTransactionsTable: getEnv("BIGQUERY_TRANSACTIONS_TABLE", "ledger_transactions"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "budgettrack"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Ledger"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", getEnv("GOOGLE_APPLICATION_CREDENTIALS", "")),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.DailyBudget != "" {
		if _, err := core.ParseAmount(c.DailyBudget); err != nil {
			errors = append(errors, fmt.Sprintf("invalid daily budget '%s': must be a non-negative number", c.DailyBudget))
		}
	}

	if _, err := applog.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	validTargets := []string{TargetSQLite, TargetSheets, TargetMemory, TargetPostgres, TargetGCS, TargetBigQuery, TargetPDF}
	for _, target := range c.ExportTargets {
		isValid := false
		for _, v := range validTargets {
			if target == v {
				isValid = true
				break
			}
		}
		if !isValid {
			errors = append(errors, fmt.Sprintf("invalid export target '%s': must be one of %v", target, validTargets))
		}
	}

	if c.HasTarget(TargetSQLite) && c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty when exporting to sqlite")
	}

	if c.HasTarget(TargetPostgres) && c.PostgresDSN == "" {
		errors = append(errors, "POSTGRES_DSN is required when exporting to postgres")
	}

	if c.HasTarget(TargetPDF) && c.ReportDir == "" {
		errors = append(errors, "REPORT_DIR cannot be empty when exporting to pdf")
	}

	if c.HasTarget(TargetGCS) && c.GCSBucket == "" {
		errors = append(errors, "GCS_BUCKET is required when exporting to gcs")
	}

	if c.HasTarget(TargetBigQuery) {
		if c.BigQueryProjectID == "" {
			errors = append(errors, "BIGQUERY_PROJECT_ID is required when exporting to bigquery")
		}
		if c.BigQueryDataset == "" {
			errors = append(errors, "BIGQUERY_DATASET is required when exporting to bigquery")
		}
	}

	if c.ExportSchedule != "" && len(c.ExportTargets) == 0 {
		errors = append(errors, "EXPORT_SCHEDULE is set but no EXPORT_TARGETS are configured")
	}

	if c.HasTarget(TargetSheets) {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when exporting to sheets")
		}
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when exporting to sheets")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets export")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if len(c.ExportTargets) > 0 {
		if c.ExportTimeout < time.Second {
			errors = append(errors, fmt.Sprintf("invalid export timeout %v: must be at least 1 second", c.ExportTimeout))
		} else if c.ExportTimeout > 10*time.Minute {
			errors = append(errors, fmt.Sprintf("invalid export timeout %v: must be at most 10 minutes", c.ExportTimeout))
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// InitialBudget returns the configured starting daily budget, zero when unset.
// Call Validate first.
func (c *Config) InitialBudget() decimal.Decimal {
	if c.DailyBudget == "" {
		return decimal.Zero
	}
	b, err := core.ParseAmount(c.DailyBudget)
	if err != nil {
		return decimal.Zero
	}
	return b
}

// HasTarget reports whether target is among the export targets.
func (c *Config) HasTarget(target string) bool {
	for _, t := range c.ExportTargets {
		if t == target {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
