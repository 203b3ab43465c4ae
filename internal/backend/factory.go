package backend

import (
	"context"
	"errors"
	"fmt"
	"os"

	"budgettrack/internal/amqp"
	applog "budgettrack/internal/log"
	"budgettrack/internal/objectstore"
	"budgettrack/internal/report"
	gsheet "budgettrack/internal/sheets/google"
	"budgettrack/internal/storage"
	"budgettrack/internal/warehouse"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new sink factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// Create implements Factory.Create. Sinks that fail to build abort the
// whole call; a broker that cannot be reached only disables events.
func (f *DefaultFactory) Create(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	res := &Result{}
	var cleanups []CleanupFunc
	cleanup := func() error {
		var errs []error
		for i := len(cleanups) - 1; i >= 0; i-- {
			if err := cleanups[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	for _, target := range config.Targets {
		sink, closeFn, err := f.createSink(ctx, target, config)
		if err != nil {
			_ = cleanup()
			return nil, err
		}
		res.Sinks = append(res.Sinks, sink)
		if closeFn != nil {
			cleanups = append(cleanups, closeFn)
		}
	}

	// Initialize AMQP client (optional)
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events",
				applog.FieldError, err,
				applog.FieldErrorType, applog.ErrorTypeNetwork)
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			res.Events = client
			cleanups = append(cleanups, client.Close)
		}
	}

	res.Cleanup = cleanup
	return res, nil
}

func (f *DefaultFactory) createSink(ctx context.Context, target TargetType, config Config) (Sink, CleanupFunc, error) {
	switch target {
	case SQLiteTarget:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite export", "db_path", config.SQLiteDBPath)
		return repo, repo.Close, nil
	case SheetsTarget:
		cli, err := gsheet.New(ctx, gsheet.Options{
			SpreadsheetID:   config.GoogleSpreadsheetID,
			SheetName:       config.GoogleSheetName,
			CredentialsJSON: config.GoogleServiceAccountJSON,
			CredentialsFile: config.GoogleServiceAccountFile,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized Google Sheets export", "spreadsheet_id", config.GoogleSpreadsheetID)
		return cli, nil, nil
	case PostgresTarget:
		repo, err := storage.NewPostgresRepository(ctx, config.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized Postgres export")
		return repo, repo.Close, nil
	case PDFTarget:
		exp, err := report.NewPDFExporter(config.ReportDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize PDF export: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized PDF export", "dir", config.ReportDir)
		return exp, nil, nil
	case GCSTarget:
		creds, err := googleCredentials(config)
		if err != nil {
			return nil, nil, err
		}
		exp, err := objectstore.New(ctx, objectstore.Options{
			Bucket:          config.GCSBucket,
			Prefix:          config.GCSPrefix,
			CredentialsJSON: creds,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize GCS export: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized GCS export", "bucket", config.GCSBucket, "prefix", config.GCSPrefix)
		return exp, exp.Close, nil
	case BigQueryTarget:
		creds, err := googleCredentials(config)
		if err != nil {
			return nil, nil, err
		}
		exp, err := warehouse.New(ctx, warehouse.Options{
			ProjectID:         config.BigQueryProjectID,
			Dataset:           config.BigQueryDataset,
			DaysTable:         config.BigQueryDaysTable,
			TransactionsTable: config.BigQueryTransactionsTable,
			CredentialsJSON:   creds,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize BigQuery export: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized BigQuery export",
			"project", config.BigQueryProjectID,
			"dataset", config.BigQueryDataset)
		return exp, exp.Close, nil
	case MemoryTarget:
		f.logger.InfoContext(ctx, "Initialized memory export")
		return NewMemorySink(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported export target: %s", target)
	}
}

// googleCredentials returns the configured service account key, or nil to
// fall back to Application Default Credentials.
func googleCredentials(config Config) ([]byte, error) {
	if config.GoogleServiceAccountJSON != "" {
		return []byte(config.GoogleServiceAccountJSON), nil
	}
	if config.GoogleServiceAccountFile != "" {
		b, err := os.ReadFile(config.GoogleServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	}
	return nil, nil
}
