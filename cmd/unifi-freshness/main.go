// unifi-freshness checks that the export directory holds a recent, parseable
// summary with enough events. A failed check alerts the webhook best-effort
// and exits 1; the notification outcome never changes the exit code.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"unifi-report/internal/config"
	"unifi-report/internal/freshness"
	"unifi-report/internal/logger"
	"unifi-report/internal/notify"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		exportDir   = flag.String("export-dir", "", "directory holding the summary artifact")
		maxAgeHours = flag.Int("max-age-hours", 0, "maximum artifact age in hours (default 26)")
		minEvents   = flag.Int("min-events", -1, "minimum acceptable events count (default 1)")
		webhook     = flag.String("webhook", "", "Slack webhook URL (default: SLACK_WEBHOOK_URL)")
		summaryName = flag.String("summary-name", "", `summary file name (default "summary.json")`)
		confPath    = flag.String("config", "", "optional YAML config file")
	)
	flag.Parse()

	cfg, err := config.Load(*confPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if *maxAgeHours > 0 {
		cfg.Freshness.MaxAgeHours = *maxAgeHours
	}
	if *minEvents >= 0 {
		cfg.Freshness.MinEvents = *minEvents
	}
	if *webhook != "" {
		cfg.Slack.WebhookURL = *webhook
	}
	if *summaryName != "" {
		cfg.Freshness.SummaryName = *summaryName
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "unifi-freshness")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	if *exportDir == "" {
		log.Error("--export-dir is required")
		return 1
	}

	checker := freshness.NewChecker(
		time.Duration(cfg.Freshness.MaxAgeHours)*time.Hour,
		int64(cfg.Freshness.MinEvents),
		cfg.Freshness.SummaryName,
		log,
	)

	result := checker.Check(*exportDir)
	if result.OK {
		log.Info("Export is fresh", zap.String("dir", *exportDir))
		return 0
	}

	log.Error("Freshness check failed", zap.Strings("reasons", result.Reasons))

	client := notify.NewSlackClient(notify.Options{
		WebhookURL: cfg.Slack.WebhookURL,
		Timeout:    time.Duration(cfg.Slack.TimeoutSec) * time.Second,
	}, log)
	if err := client.PostText(context.Background(), result.Message()); err != nil {
		log.Warn("Alert notification failed", zap.Error(err))
	}

	return 1
}
