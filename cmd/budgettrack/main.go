package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"budgettrack/internal/backend"
	"budgettrack/internal/cli"
	"budgettrack/internal/config"
	"budgettrack/internal/console"
	"budgettrack/internal/core"
	applog "budgettrack/internal/log"
	"budgettrack/internal/services"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid export configuration", applog.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).Create(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize export targets", applog.FieldError, err)
		os.Exit(1)
	}

	code := run(ctx, cfg, res, logger)

	if err := res.Cleanup(); err != nil {
		logger.Error("Cleanup failed", applog.FieldError, err)
	}
	stop()
	os.Exit(code)
}

func run(ctx context.Context, cfg *config.Config, res *backend.Result, logger *applog.Logger) int {
	shell := console.New(os.Stdin, os.Stdout, logger)
	shell.Greet()

	name := cfg.AccountName
	if name == "" {
		var err error
		if name, err = shell.PromptAccountName(); err != nil {
			return 0
		}
	}

	opts := services.Options{
		Logger:        logger,
		ExportTimeout: cfg.ExportTimeout,
	}
	for _, sink := range res.Sinks {
		opts.Exporters = append(opts.Exporters, sink)
	}
	if res.Events != nil {
		opts.Events = res.Events
	}
	svc := services.NewLedgerService(core.NewAccount(name), opts)

	if budget := cfg.InitialBudget(); !budget.IsZero() {
		if err := svc.SetBudget(ctx, budget); err != nil {
			logger.Error("Invalid initial budget", applog.FieldError, err)
			return 1
		}
	}

	if cfg.ExportSchedule != "" {
		scheduler, err := services.NewExportScheduler(ctx, cfg.ExportSchedule, svc, logger)
		if err != nil {
			logger.Error("Invalid export schedule", applog.FieldError, err)
			return 1
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	logger.Info("Session started",
		applog.FieldAccount, name,
		applog.FieldOperation, applog.OpStartup,
		"exporters", len(opts.Exporters),
		"events", opts.Events != nil,
		"schedule", cfg.ExportSchedule)

	// A blocked read on stdin does not observe ctx, so wait on both.
	errc := make(chan error, 1)
	go func() { errc <- shell.Run(ctx, svc) }()
	var err error
	select {
	case err = <-errc:
	case <-ctx.Done():
		err = ctx.Err()
		logger.Info("Shutdown signal received", applog.FieldOperation, applog.OpShutdown)
	}

	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return 0
	case errors.Is(err, console.ErrUsage):
		fmt.Fprintln(os.Stderr, err)
		return 2
	default:
		logger.Error("Session failed", applog.FieldError, err, applog.FieldErrorType, applog.ErrorTypeInternal)
		return 1
	}
}
