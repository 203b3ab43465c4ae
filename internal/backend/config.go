package backend

import (
	"fmt"

	"budgettrack/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	cfg := Config{
		SQLiteDBPath: appConfig.SQLiteDBPath,
		PostgresDSN:  appConfig.PostgresDSN,
		ReportDir:    appConfig.ReportDir,

		GCSBucket: appConfig.GCSBucket,
		GCSPrefix: appConfig.GCSPrefix,

		BigQueryProjectID:         appConfig.BigQueryProjectID,
		BigQueryDataset:           appConfig.BigQueryDataset,
		BigQueryDaysTable:         appConfig.BigQueryDaysTable,
		BigQueryTransactionsTable: appConfig.BigQueryTransactionsTable,

		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
	}
	for _, t := range appConfig.ExportTargets {
		target := TargetType(t)
		if !target.IsValid() {
			return Config{}, fmt.Errorf("invalid export target in config: %s", t)
		}
		cfg.Targets = append(cfg.Targets, target)
	}
	return cfg, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	seen := make(map[TargetType]bool)
	for _, t := range c.Targets {
		if !t.IsValid() {
			return fmt.Errorf("invalid export target: %s", t)
		}
		if seen[t] {
			return fmt.Errorf("duplicate export target: %s", t)
		}
		seen[t] = true

		switch t {
		case SQLiteTarget:
			if c.SQLiteDBPath == "" {
				return fmt.Errorf("SQLite database path is required for sqlite export")
			}
		case SheetsTarget:
			if c.GoogleSpreadsheetID == "" {
				return fmt.Errorf("Google Spreadsheet ID is required for sheets export")
			}
			if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
				return fmt.Errorf("service account credentials are required for sheets export")
			}
		case PostgresTarget:
			if c.PostgresDSN == "" {
				return fmt.Errorf("Postgres DSN is required for postgres export")
			}
		case PDFTarget:
			if c.ReportDir == "" {
				return fmt.Errorf("report directory is required for pdf export")
			}
		case GCSTarget:
			if c.GCSBucket == "" {
				return fmt.Errorf("GCS bucket is required for gcs export")
			}
		case BigQueryTarget:
			if c.BigQueryProjectID == "" || c.BigQueryDataset == "" {
				return fmt.Errorf("BigQuery project and dataset are required for bigquery export")
			}
		case MemoryTarget:
			// nothing to check
		}
	}
	return nil
}

// GetTargetTypes returns all valid target types
func GetTargetTypes() []TargetType {
	return []TargetType{SQLiteTarget, SheetsTarget, MemoryTarget, PostgresTarget, GCSTarget, BigQueryTarget, PDFTarget}
}
