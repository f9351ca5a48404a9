package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultValues(t *testing.T) {
	os.Clearenv()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Report.TopK != 10 {
		t.Errorf("Expected UNIFI_TOP_K default 10, got %d", cfg.Report.TopK)
	}
	if cfg.Metrics.Window != "7d" {
		t.Errorf("Expected window default '7d', got '%s'", cfg.Metrics.Window)
	}
	if cfg.Slack.UploadURL != "https://slack.com/api/files.upload" {
		t.Errorf("Unexpected upload URL default: '%s'", cfg.Slack.UploadURL)
	}
	if cfg.Slack.TimeoutSec != 10 {
		t.Errorf("Expected Slack timeout default 10, got %d", cfg.Slack.TimeoutSec)
	}
	if cfg.Freshness.MaxAgeHours != 26 {
		t.Errorf("Expected max age default 26, got %d", cfg.Freshness.MaxAgeHours)
	}
	if cfg.Freshness.SummaryName != "summary.json" {
		t.Errorf("Expected summary name default 'summary.json', got '%s'", cfg.Freshness.SummaryName)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Expected LOG_LEVEL default 'info', got '%s'", cfg.Log.Level)
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	os.Clearenv()
	t.Setenv("UNIFI_DB", "/data/unifi.db")
	t.Setenv("UNIFI_TOP_K", "5")
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.example.com/T123")
	t.Setenv("SLACK_CHANNELS", "ops, homelab")
	t.Setenv("FRESHNESS_MIN_EVENTS", "100")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Report.DBPath != "/data/unifi.db" {
		t.Errorf("Expected db path '/data/unifi.db', got '%s'", cfg.Report.DBPath)
	}
	if cfg.Report.TopK != 5 {
		t.Errorf("Expected top-K 5, got %d", cfg.Report.TopK)
	}
	if cfg.Slack.WebhookURL != "https://hooks.example.com/T123" {
		t.Errorf("Unexpected webhook URL: '%s'", cfg.Slack.WebhookURL)
	}
	if len(cfg.Slack.Channels) != 2 || cfg.Slack.Channels[0] != "ops" || cfg.Slack.Channels[1] != "homelab" {
		t.Errorf("Unexpected channels: %v", cfg.Slack.Channels)
	}
	if cfg.Freshness.MinEvents != 100 {
		t.Errorf("Expected min events 100, got %d", cfg.Freshness.MinEvents)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected LOG_LEVEL 'debug', got '%s'", cfg.Log.Level)
	}
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	os.Clearenv()
	t.Setenv("UNIFI_TOP_K", "not-a-number")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Report.TopK != 10 {
		t.Errorf("Expected fallback top-K 10, got %d", cfg.Report.TopK)
	}
}

func TestLoad_FileOverridesEnvironment(t *testing.T) {
	os.Clearenv()
	t.Setenv("UNIFI_TOP_K", "5")
	t.Setenv("UNIFI_METRICS_WINDOW", "1d")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
report:
  db: /data/unifi.db
  top_k: 3
slack:
  channels:
    - ops
freshness:
  max_age_hours: 48
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Report.DBPath != "/data/unifi.db" {
		t.Errorf("Expected file db path, got '%s'", cfg.Report.DBPath)
	}
	if cfg.Report.TopK != 3 {
		t.Errorf("Expected file top-K 3 over env 5, got %d", cfg.Report.TopK)
	}
	// Keys absent from the file keep their environment values.
	if cfg.Metrics.Window != "1d" {
		t.Errorf("Expected env window '1d', got '%s'", cfg.Metrics.Window)
	}
	if len(cfg.Slack.Channels) != 1 || cfg.Slack.Channels[0] != "ops" {
		t.Errorf("Unexpected channels: %v", cfg.Slack.Channels)
	}
	if cfg.Freshness.MaxAgeHours != 48 {
		t.Errorf("Expected max age 48, got %d", cfg.Freshness.MaxAgeHours)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	os.Clearenv()

	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected an error for a missing config file")
	}
}
