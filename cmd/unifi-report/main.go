// unifi-report reads the export database and writes the Markdown and JSON
// summary artifacts. One run per invocation; scheduling is external (cron).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"unifi-report/internal/aggregator"
	"unifi-report/internal/cache"
	"unifi-report/internal/config"
	"unifi-report/internal/logger"
	"unifi-report/internal/report"
	"unifi-report/internal/repository"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		dbPath   = flag.String("db", "", "path to the export database")
		outMD    = flag.String("out-md", "", "markdown output path (default: db path with .md)")
		outJSON  = flag.String("out-json", "", "json output path (default: db path with .json)")
		topK     = flag.Int("top", 0, "top-K list size (default 10)")
		confPath = flag.String("config", "", "optional YAML config file")
	)
	flag.Parse()

	cfg, err := config.Load(*confPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if *dbPath != "" {
		cfg.Report.DBPath = *dbPath
	}
	if *outMD != "" {
		cfg.Report.OutMD = *outMD
	}
	if *outJSON != "" {
		cfg.Report.OutJSON = *outJSON
	}
	if *topK > 0 {
		cfg.Report.TopK = *topK
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "unifi-report")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	if cfg.Report.DBPath == "" {
		log.Error("No database path given (use --db or UNIFI_DB)")
		return 1
	}
	if _, err := os.Stat(cfg.Report.DBPath); err != nil {
		log.Error("Database not found", zap.String("path", cfg.Report.DBPath), zap.Error(err))
		return 2
	}

	db, err := repository.Open(cfg.Report.DBPath)
	if err != nil {
		log.Error("Failed to open database", zap.String("path", cfg.Report.DBPath), zap.Error(err))
		return 1
	}
	defer db.Close()

	repo := repository.NewExportRepository(db, log)
	agg := aggregator.New(repo, cache.New(), log)

	summary, err := agg.Summarize(context.Background(), cfg.Report.TopK)
	if err != nil {
		log.Error("Aggregation failed", zap.Error(err))
		return 1
	}

	mdPath, jsonPath := report.DefaultPaths(cfg.Report.DBPath)
	if cfg.Report.OutMD != "" {
		mdPath = cfg.Report.OutMD
	}
	if cfg.Report.OutJSON != "" {
		jsonPath = cfg.Report.OutJSON
	}

	if err := report.WriteArtifacts(summary, mdPath, jsonPath); err != nil {
		log.Error("Failed to write artifacts", zap.Error(err))
		return 1
	}

	log.Info("Report written",
		zap.String("markdown", mdPath),
		zap.String("json", jsonPath),
		zap.Int("events", summary.Totals["events"]),
		zap.Int("top_k", cfg.Report.TopK),
	)
	return 0
}
