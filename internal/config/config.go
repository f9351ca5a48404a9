package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config carries the settings shared by the pipeline tools. Each tool reads
// only its own section plus Slack and Log. Values come from environment
// variables with defaults; an optional YAML file overrides the environment,
// and command-line flags (applied by each cmd) override both.
type Config struct {
	Report struct {
		DBPath  string
		TopK    int
		OutMD   string // empty: derived from DBPath
		OutJSON string // empty: derived from DBPath
	}

	Metrics struct {
		Window string // aggregation window label, e.g. "7d"
	}

	Slack struct {
		WebhookURL string
		Token      string
		Channels   []string
		UploadURL  string
		TimeoutSec int
	}

	Freshness struct {
		MaxAgeHours int
		MinEvents   int
		SummaryName string
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load builds the configuration from environment variables, then overlays the
// YAML file at path when path is non-empty (or when UNIFI_REPORT_CONFIG
// points at one).
func Load(path string) (*Config, error) {
	cfg := &Config{}

	cfg.Report.DBPath = getEnv("UNIFI_DB", "")
	cfg.Report.TopK = getEnvInt("UNIFI_TOP_K", 10)
	cfg.Report.OutMD = getEnv("UNIFI_OUT_MD", "")
	cfg.Report.OutJSON = getEnv("UNIFI_OUT_JSON", "")

	cfg.Metrics.Window = getEnv("UNIFI_METRICS_WINDOW", "7d")

	cfg.Slack.WebhookURL = getEnv("SLACK_WEBHOOK_URL", "")
	cfg.Slack.Token = getEnv("SLACK_BOT_TOKEN", "")
	if channels := getEnv("SLACK_CHANNELS", ""); channels != "" {
		for _, ch := range strings.Split(channels, ",") {
			if ch = strings.TrimSpace(ch); ch != "" {
				cfg.Slack.Channels = append(cfg.Slack.Channels, ch)
			}
		}
	}
	cfg.Slack.UploadURL = getEnv("SLACK_UPLOAD_URL", "https://slack.com/api/files.upload")
	cfg.Slack.TimeoutSec = getEnvInt("SLACK_TIMEOUT_SECONDS", 10)

	cfg.Freshness.MaxAgeHours = getEnvInt("FRESHNESS_MAX_AGE_HOURS", 26)
	cfg.Freshness.MinEvents = getEnvInt("FRESHNESS_MIN_EVENTS", 1)
	cfg.Freshness.SummaryName = getEnv("FRESHNESS_SUMMARY_NAME", "summary.json")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	if path == "" {
		path = getEnv("UNIFI_REPORT_CONFIG", "")
	}
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// fileConfig mirrors Config with pointer fields so that keys absent from the
// YAML file leave the environment-derived values untouched.
type fileConfig struct {
	Report struct {
		DB      *string `yaml:"db"`
		TopK    *int    `yaml:"top_k"`
		OutMD   *string `yaml:"out_md"`
		OutJSON *string `yaml:"out_json"`
	} `yaml:"report"`
	Metrics struct {
		Window *string `yaml:"window"`
	} `yaml:"metrics"`
	Slack struct {
		WebhookURL *string  `yaml:"webhook_url"`
		Token      *string  `yaml:"token"`
		Channels   []string `yaml:"channels"`
		UploadURL  *string  `yaml:"upload_url"`
		TimeoutSec *int     `yaml:"timeout_seconds"`
	} `yaml:"slack"`
	Freshness struct {
		MaxAgeHours *int    `yaml:"max_age_hours"`
		MinEvents   *int    `yaml:"min_events"`
		SummaryName *string `yaml:"summary_name"`
	} `yaml:"freshness"`
	Log struct {
		Level  *string `yaml:"level"`
		Format *string `yaml:"format"`
	} `yaml:"log"`
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	setString(&c.Report.DBPath, fc.Report.DB)
	setInt(&c.Report.TopK, fc.Report.TopK)
	setString(&c.Report.OutMD, fc.Report.OutMD)
	setString(&c.Report.OutJSON, fc.Report.OutJSON)
	setString(&c.Metrics.Window, fc.Metrics.Window)
	setString(&c.Slack.WebhookURL, fc.Slack.WebhookURL)
	setString(&c.Slack.Token, fc.Slack.Token)
	if len(fc.Slack.Channels) > 0 {
		c.Slack.Channels = fc.Slack.Channels
	}
	setString(&c.Slack.UploadURL, fc.Slack.UploadURL)
	setInt(&c.Slack.TimeoutSec, fc.Slack.TimeoutSec)
	setInt(&c.Freshness.MaxAgeHours, fc.Freshness.MaxAgeHours)
	setInt(&c.Freshness.MinEvents, fc.Freshness.MinEvents)
	setString(&c.Freshness.SummaryName, fc.Freshness.SummaryName)
	setString(&c.Log.Level, fc.Log.Level)
	setString(&c.Log.Format, fc.Log.Format)

	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return defaultValue
}
