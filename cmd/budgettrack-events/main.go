package main

import (
	"context"
	"errors"
	"os"
	"time"

	"budgettrack/internal/amqp"
	"budgettrack/internal/cli"
	applog "budgettrack/internal/log"
	"budgettrack/internal/services"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig()
	logger = logger.WithComponent(applog.ComponentEvents)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required to consume ledger events",
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}

	auditor := services.NewEventAuditor(logger)
	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, func() {
		for t, n := range auditor.Counts() {
			logger.Info("Events consumed", applog.FieldEventType, t, "count", n)
		}
		if err := client.Close(); err != nil {
			logger.Error("Failed to close AMQP client", applog.FieldError, err)
		}
	})

	logger.Info("Starting budgettrack-events",
		applog.FieldOperation, applog.OpStartup,
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)

	if err := client.Consume(ctx, auditor.Handle); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		_ = client.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
}
