package backend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"budgettrack/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	app := &config.Config{
		ExportTargets: []string{"sqlite", "memory"},
		SQLiteDBPath:  "./x.db",
	}
	cfg, err := FromAppConfig(app)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if len(cfg.Targets) != 2 || cfg.Targets[0] != SQLiteTarget || cfg.Targets[1] != MemoryTarget {
		t.Fatalf("Targets = %v", cfg.Targets)
	}

	if _, err := FromAppConfig(&config.Config{ExportTargets: []string{"ftp"}}); err == nil {
		t.Fatal("expected error for unknown target")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{"no targets", Config{}, ""},
		{"memory", Config{Targets: []TargetType{MemoryTarget}}, ""},
		{"sqlite without path", Config{Targets: []TargetType{SQLiteTarget}}, "SQLite database path"},
		{"sheets without id", Config{Targets: []TargetType{SheetsTarget}}, "Spreadsheet ID"},
		{"sheets without creds", Config{Targets: []TargetType{SheetsTarget}, GoogleSpreadsheetID: "x"}, "credentials"},
		{"postgres without dsn", Config{Targets: []TargetType{PostgresTarget}}, "Postgres DSN"},
		{"pdf without dir", Config{Targets: []TargetType{PDFTarget}}, "report directory"},
		{"gcs without bucket", Config{Targets: []TargetType{GCSTarget}}, "GCS bucket"},
		{"bigquery without dataset", Config{Targets: []TargetType{BigQueryTarget}, BigQueryProjectID: "p"}, "BigQuery project and dataset"},
		{"duplicate", Config{Targets: []TargetType{MemoryTarget, MemoryTarget}}, "duplicate"},
		{"unknown", Config{Targets: []TargetType{"ftp"}}, "invalid export target"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestFactoryCreate(t *testing.T) {
	f := NewFactory(nil)
	res, err := f.Create(context.Background(), Config{
		Targets:      []TargetType{SQLiteTarget, MemoryTarget},
		SQLiteDBPath: filepath.Join(t.TempDir(), "export.db"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer res.Cleanup()

	if len(res.Sinks) != 2 {
		t.Fatalf("expected 2 sinks, got %d", len(res.Sinks))
	}
	if res.Sinks[0].Name() != "sqlite" || res.Sinks[1].Name() != "memory" {
		t.Errorf("unexpected sinks: %s, %s", res.Sinks[0].Name(), res.Sinks[1].Name())
	}
	if res.Events != nil {
		t.Errorf("events should be disabled without AMQP_URL")
	}
}

func TestGoogleCredentials(t *testing.T) {
	creds, err := googleCredentials(Config{})
	if err != nil || creds != nil {
		t.Errorf("expected nil credentials for ADC, got %q, %v", creds, err)
	}

	creds, err = googleCredentials(Config{GoogleServiceAccountJSON: `{"type":"service_account"}`})
	if err != nil || string(creds) != `{"type":"service_account"}` {
		t.Errorf("inline JSON = %q, %v", creds, err)
	}

	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"from":"file"}`), 0600); err != nil {
		t.Fatal(err)
	}
	creds, err = googleCredentials(Config{GoogleServiceAccountFile: path})
	if err != nil || string(creds) != `{"from":"file"}` {
		t.Errorf("file credentials = %q, %v", creds, err)
	}

	if _, err := googleCredentials(Config{GoogleServiceAccountFile: filepath.Join(t.TempDir(), "missing.json")}); err == nil {
		t.Error("expected error for missing credentials file")
	}
}

func TestFromAppConfig_CloudTargets(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{
		ExportTargets:     []string{"postgres", "gcs", "bigquery"},
		PostgresDSN:       "postgres://localhost/ledger",
		GCSBucket:         "exports",
		GCSPrefix:         "budgettrack",
		BigQueryProjectID: "proj",
		BigQueryDataset:   "finance",
	})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.PostgresDSN == "" || cfg.GCSBucket != "exports" || cfg.BigQueryDataset != "finance" {
		t.Errorf("fields not carried over: %+v", cfg)
	}
}
