// Package freshness validates that the export pipeline is still producing
// usable artifacts: the summary exists, parses, is recent, and carries at
// least the expected number of events.
package freshness

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"unifi-report/internal/models"
)

// Checker holds the thresholds for one freshness run.
type Checker struct {
	MaxAge      time.Duration
	MinEvents   int64
	SummaryName string

	now    func() time.Time
	logger *zap.Logger
}

// NewChecker creates a Checker with the given thresholds.
func NewChecker(maxAge time.Duration, minEvents int64, summaryName string, logger *zap.Logger) *Checker {
	if summaryName == "" {
		summaryName = "summary.json"
	}
	return &Checker{
		MaxAge:      maxAge,
		MinEvents:   minEvents,
		SummaryName: summaryName,
		now:         time.Now,
		logger:      logger,
	}
}

// Result is the outcome of one check run. Reasons is empty when OK.
type Result struct {
	OK      bool
	Reasons []string
}

// Message renders the failure reasons as one multi-line alert message.
func (r Result) Message() string {
	lines := []string{"UniFi export freshness check failed:"}
	for _, reason := range r.Reasons {
		lines = append(lines, "- "+reason)
	}
	return strings.Join(lines, "\n")
}

// Check runs every applicable check against the summary artifact in dir and
// aggregates the failures. A missing file short-circuits; an unparsable one
// degrades to an empty report so the age and threshold checks still apply.
func (c *Checker) Check(dir string) Result {
	path := filepath.Join(dir, c.SummaryName)

	info, err := os.Stat(path)
	if err != nil {
		c.logger.Warn("Summary artifact missing", zap.String("path", path), zap.Error(err))
		return Result{Reasons: []string{fmt.Sprintf("missing summary: %s", path)}}
	}

	var reasons []string

	report := c.readReport(path, &reasons)

	if age := c.now().Sub(info.ModTime()); age > c.MaxAge {
		reasons = append(reasons, fmt.Sprintf("stale: summary is %s old (max %s)",
			age.Round(time.Minute), c.MaxAge))
	}

	if events := report.EventCount(); events < c.MinEvents {
		reasons = append(reasons, fmt.Sprintf("below threshold: %d events (min %d)",
			events, c.MinEvents))
	}

	if len(reasons) > 0 {
		return Result{Reasons: reasons}
	}
	return Result{OK: true}
}

// readReport parses the summary, recording an "invalid summary" reason and
// returning an empty report when the content is unusable.
func (c *Checker) readReport(path string, reasons *[]string) *models.Report {
	empty := &models.Report{Totals: map[string]int64{}}

	data, err := os.ReadFile(path)
	if err != nil {
		c.logger.Warn("Failed to read summary artifact", zap.String("path", path), zap.Error(err))
		*reasons = append(*reasons, fmt.Sprintf("invalid summary: %v", err))
		return empty
	}

	report, err := models.ParseReport(data)
	if err != nil {
		c.logger.Warn("Summary artifact is not valid JSON", zap.String("path", path), zap.Error(err))
		*reasons = append(*reasons, fmt.Sprintf("invalid summary: %v", err))
		return empty
	}

	return report
}
