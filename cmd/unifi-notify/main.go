// unifi-notify posts a short report summary to the Slack webhook and
// optionally uploads a rendered artifact. Delivery is best-effort: a failed
// call is logged and the process still exits 0.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"unifi-report/internal/config"
	"unifi-report/internal/logger"
	"unifi-report/internal/models"
	"unifi-report/internal/notify"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		reportPath = flag.String("report-json", "", "path to the summary JSON artifact")
		webhook    = flag.String("webhook", "", "Slack webhook URL (default: SLACK_WEBHOOK_URL)")
		uploadFile = flag.String("upload", "", "artifact to upload after the summary post")
		confPath   = flag.String("config", "", "optional YAML config file")
	)
	flag.Parse()

	cfg, err := config.Load(*confPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if *webhook != "" {
		cfg.Slack.WebhookURL = *webhook
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "unifi-notify")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	if *reportPath == "" {
		log.Error("--report-json is required")
		return 1
	}

	data, err := os.ReadFile(*reportPath)
	if err != nil {
		log.Error("Report artifact not found", zap.String("path", *reportPath), zap.Error(err))
		return 2
	}

	report, err := models.ParseReport(data)
	if err != nil {
		log.Warn("Report is not valid JSON, sending header only", zap.Error(err))
		report = nil
	}

	client := notify.NewSlackClient(notify.Options{
		WebhookURL: cfg.Slack.WebhookURL,
		Token:      cfg.Slack.Token,
		Channels:   cfg.Slack.Channels,
		UploadURL:  cfg.Slack.UploadURL,
		Timeout:    time.Duration(cfg.Slack.TimeoutSec) * time.Second,
	}, log)

	ctx := context.Background()
	if err := client.PostSummary(ctx, report); err != nil {
		log.Warn("Notification failed", zap.Error(err))
	}
	if *uploadFile != "" {
		if err := client.UploadArtifact(ctx, *uploadFile); err != nil {
			log.Warn("Upload failed", zap.String("file", *uploadFile), zap.Error(err))
		}
	}

	return 0
}
