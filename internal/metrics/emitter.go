// Package metrics turns a summary report into a Prometheus textfile
// exposition, ready for a node-exporter style textfile collector.
package metrics

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"

	"unifi-report/internal/models"
)

// topRanks bounds the per-rank sample lines emitted for SSIDs and clients.
const topRanks = 3

// Emitter writes one exposition file per run.
type Emitter struct {
	window string
	now    func() time.Time
	logger *zap.Logger
}

// NewEmitter creates an Emitter for the given window label, e.g. "7d".
func NewEmitter(window string, logger *zap.Logger) *Emitter {
	return &Emitter{
		window: window,
		now:    time.Now,
		logger: logger,
	}
}

// Write renders the report into the textfile exposition at path, creating
// parent directories as needed. An empty report still produces the run
// timestamp gauge.
func (e *Emitter) Write(report *models.Report, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create metrics directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create metrics file: %w", err)
	}
	defer f.Close()

	if err := e.render(report, f); err != nil {
		return err
	}

	return f.Close()
}

// render gathers a throwaway registry into w. A fresh registry per run keeps
// the output a pure function of the report; nothing leaks between runs.
func (e *Emitter) render(report *models.Report, w io.Writer) error {
	reg := prometheus.NewRegistry()

	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "unifi_export_last_run_timestamp_seconds",
		Help: "Unix time of the last metrics emission run.",
	})
	lastRun.Set(float64(e.now().Unix()))
	reg.MustRegister(lastRun)

	totals := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unifi_export_total",
			Help: "Row count per exported resource table.",
		},
		[]string{"resource", "window"},
	)
	reg.MustRegister(totals)

	topSSIDs := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "unifi_export_top_ssid",
			Help: "Event count of a top-ranked SSID.",
		},
		[]string{"name", "rank", "window"},
	)
	topClients := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "unifi_export_top_client",
			Help: "Event count of a top-ranked client.",
		},
		[]string{"name", "rank", "window"},
	)
	reg.MustRegister(topSSIDs, topClients)

	if report != nil {
		for resource, count := range report.Totals {
			if count < 0 {
				e.logger.Debug("Skipping negative total", zap.String("resource", resource))
				continue
			}
			totals.WithLabelValues(resource, e.window).Add(float64(count))
		}
		e.setRanked(topSSIDs, report.TopSSIDs)
		e.setRanked(topClients, report.TopClients)
	}

	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
	}

	return nil
}

func (e *Emitter) setRanked(vec *prometheus.GaugeVec, pairs []models.CountPair) {
	for i, pair := range pairs {
		if i >= topRanks {
			break
		}
		rank := strconv.Itoa(i + 1)
		vec.WithLabelValues(pair.Name, rank, e.window).Set(float64(pair.Count))
	}
}
