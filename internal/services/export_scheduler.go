package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"

	applog "budgettrack/internal/log"
)

// snapshotExporter is the part of LedgerService the scheduler drives.
type snapshotExporter interface {
	Export(ctx context.Context) ([]string, error)
}

// ExportScheduler runs Export on a cron schedule such as "@every 15m" or
// "0 22 * * *". Runs never overlap; a run still in progress when the next
// one is due is skipped.
type ExportScheduler struct {
	cron   *cron.Cron
	ledger snapshotExporter
	logger *applog.Logger
}

// NewExportScheduler validates spec and registers the export job.
func NewExportScheduler(ctx context.Context, spec string, ledger snapshotExporter, logger *applog.Logger) (*ExportScheduler, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	s := &ExportScheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ledger: ledger,
		logger: logger.WithComponent(applog.ComponentExport),
	}
	if _, err := s.cron.AddFunc(spec, func() { s.run(ctx) }); err != nil {
		return nil, fmt.Errorf("invalid export schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine.
func (s *ExportScheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for a running export to finish.
func (s *ExportScheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *ExportScheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	names, err := s.ledger.Export(ctx)
	switch {
	case errors.Is(err, ErrExportDisabled):
		s.logger.DebugContext(ctx, "Scheduled export skipped, no exporters configured")
	case err != nil:
		s.logger.ErrorContext(ctx, "Scheduled export failed",
			applog.FieldOperation, applog.OpExport,
			applog.FieldError, err)
	default:
		s.logger.DebugContext(ctx, "Scheduled export finished",
			applog.FieldOperation, applog.OpExport,
			applog.FieldTarget, names)
	}
}
