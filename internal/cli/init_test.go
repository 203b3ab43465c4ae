package cli

import (
	"context"
	"log/slog"
	"testing"

	"budgettrack/internal/config"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantDebug bool
	}{
		{"debug", "debug", true},
		{"info", "info", false},
		{"unknown falls back to info", "verbose", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := SetupLogger(&config.Config{LogLevel: tt.level, LogFormat: "json"})
			if logger == nil {
				t.Fatal("SetupLogger returned nil")
			}
			got := logger.Enabled(context.Background(), slog.LevelDebug)
			if got != tt.wantDebug {
				t.Errorf("debug enabled = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}
