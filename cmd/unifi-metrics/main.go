// unifi-metrics turns the JSON summary artifact into a Prometheus textfile
// exposition for the node-exporter textfile collector.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"unifi-report/internal/config"
	"unifi-report/internal/logger"
	"unifi-report/internal/metrics"
	"unifi-report/internal/models"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		reportPath = flag.String("report-json", "", "path to the summary JSON artifact")
		outPath    = flag.String("out", "", "exposition output path")
		window     = flag.String("window", "", `window label (default "7d")`)
		confPath   = flag.String("config", "", "optional YAML config file")
	)
	flag.Parse()

	cfg, err := config.Load(*confPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if *window != "" {
		cfg.Metrics.Window = *window
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "unifi-metrics")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	if *reportPath == "" || *outPath == "" {
		log.Error("Both --report-json and --out are required")
		return 1
	}

	data, err := os.ReadFile(*reportPath)
	if err != nil {
		log.Error("Report artifact not found", zap.String("path", *reportPath), zap.Error(err))
		return 2
	}

	report, err := models.ParseReport(data)
	if err != nil {
		// Emit the timestamp line anyway so the scraper sees the run.
		log.Warn("Report is not valid JSON, emitting timestamp only",
			zap.String("path", *reportPath), zap.Error(err))
		report = nil
	}

	emitter := metrics.NewEmitter(cfg.Metrics.Window, log)
	if err := emitter.Write(report, *outPath); err != nil {
		log.Error("Failed to write exposition file", zap.Error(err))
		return 1
	}

	log.Info("Metrics written",
		zap.String("out", *outPath),
		zap.String("window", cfg.Metrics.Window),
	)
	return 0
}
