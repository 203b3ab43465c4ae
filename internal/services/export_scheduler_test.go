package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"budgettrack/internal/backend"
	"budgettrack/internal/core"
)

type countingExporter struct {
	calls atomic.Int32
}

func (c *countingExporter) Export(context.Context) ([]string, error) {
	c.calls.Add(1)
	return []string{"memory"}, nil
}

func TestNewExportScheduler_InvalidSpec(t *testing.T) {
	if _, err := NewExportScheduler(context.Background(), "every now and then", &countingExporter{}, nil); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestExportScheduler_Run(t *testing.T) {
	sink := backend.NewMemorySink()
	svc := NewLedgerService(core.NewAccount("personal"), Options{Exporters: []Exporter{sink}})

	s, err := NewExportScheduler(context.Background(), "@every 1h", svc, nil)
	if err != nil {
		t.Fatalf("NewExportScheduler: %v", err)
	}
	s.run(context.Background())

	if _, n := sink.Last(); n != 1 {
		t.Errorf("exports = %d, want 1", n)
	}
}

func TestExportScheduler_SkipsAfterCancel(t *testing.T) {
	exp := &countingExporter{}
	ctx, cancel := context.WithCancel(context.Background())
	s, err := NewExportScheduler(ctx, "@every 1h", exp, nil)
	if err != nil {
		t.Fatal(err)
	}
	cancel()
	s.run(ctx)
	if exp.calls.Load() != 0 {
		t.Errorf("export ran after cancellation")
	}
}

func TestExportScheduler_StartStop(t *testing.T) {
	exp := &countingExporter{}
	s, err := NewExportScheduler(context.Background(), "@every 1s", exp, nil)
	if err != nil {
		t.Fatal(err)
	}
	s.Start()
	time.Sleep(1500 * time.Millisecond)
	s.Stop()
	if exp.calls.Load() < 1 {
		t.Errorf("expected at least one scheduled export")
	}
}
