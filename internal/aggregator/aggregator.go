// Package aggregator computes the export summary: per-table totals and the
// top-K SSIDs, clients and alarm keys of one database snapshot.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"unifi-report/internal/cache"
	"unifi-report/internal/models"
	"unifi-report/internal/repository"
)

// hostnameTTL bounds how long a resolved client label is reused within one
// run. Runs are short, so this mostly guards against a future long-lived
// caller holding a stale mapping.
const hostnameTTL = 5 * time.Minute

// Store is the read surface the aggregator needs from the export database.
type Store interface {
	CountRows(table string) (int, error)
	EventRows() ([]repository.EventRow, error)
	AlarmKeys() ([]string, error)
	Hostname(mac string) (string, bool, error)
}

// Aggregator builds a Summary from a Store.
type Aggregator struct {
	store  Store
	labels cache.Store
	logger *zap.Logger
}

// New creates an Aggregator. labels memoizes MAC-to-hostname lookups.
func New(store Store, labels cache.Store, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		store:  store,
		labels: labels,
		logger: logger,
	}
}

// Summarize computes the Summary for the current snapshot. topK bounds every
// top list; topK <= 0 yields empty lists. The result is deterministic for an
// unchanged database: grouping keeps first-seen order and ranking uses a
// stable sort, so ties always resolve the same way.
func (a *Aggregator) Summarize(ctx context.Context, topK int) (*models.Summary, error) {
	summary := &models.Summary{
		Totals:       make(map[string]int, len(repository.Resources)),
		TopSSIDs:     []models.CountPair{},
		TopClients:   []models.CountPair{},
		TopAlarms:    []models.CountPair{},
		TopEventKeys: []models.CountPair{},
	}

	for _, resource := range repository.Resources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		count, err := a.store.CountRows(resource)
		if err != nil {
			return nil, fmt.Errorf("failed to total %s: %w", resource, err)
		}
		summary.Totals[resource] = count
	}

	events, err := a.store.EventRows()
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	ssids := newCounter()
	macs := newCounter()
	eventKeys := newCounter()
	for _, ev := range events {
		if ev.SSID != "" {
			ssids.add(ev.SSID)
		}
		if mac := strings.ToLower(ev.MAC); mac != "" {
			macs.add(mac)
		}
		if ev.Key != "" {
			eventKeys.add(ev.Key)
		}
	}
	summary.TopSSIDs = ssids.top(topK)
	summary.TopEventKeys = eventKeys.top(topK)

	topMACs := macs.top(topK)
	summary.TopClients = make([]models.CountPair, 0, len(topMACs))
	for _, pair := range topMACs {
		summary.TopClients = append(summary.TopClients, models.CountPair{
			Name:  a.clientLabel(pair.Name),
			Count: pair.Count,
		})
	}

	alarmKeys, err := a.store.AlarmKeys()
	if err != nil {
		return nil, fmt.Errorf("failed to load alarms: %w", err)
	}
	alarms := newCounter()
	for _, key := range alarmKeys {
		alarms.add(key)
	}
	summary.TopAlarms = alarms.top(topK)

	return summary, nil
}

// clientLabel renders a MAC as "mac (hostname)" when the client table knows
// the device, else the bare MAC. Lookup failures degrade to the bare MAC —
// a label is cosmetic and must not fail the run.
func (a *Aggregator) clientLabel(mac string) string {
	if cached, err := a.labels.Get(mac); err == nil {
		return cached
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		a.logger.Debug("Label cache lookup failed", zap.String("mac", mac), zap.Error(err))
	}

	label := mac
	hostname, ok, err := a.store.Hostname(mac)
	if err != nil {
		a.logger.Warn("Hostname lookup failed", zap.String("mac", mac), zap.Error(err))
	} else if ok {
		label = fmt.Sprintf("%s (%s)", mac, hostname)
	}

	a.labels.Put(mac, label, hostnameTTL)
	return label
}

// counter is a frequency table that remembers first-seen order so that
// equal counts rank deterministically.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, seen := c.counts[key]; !seen {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// top returns up to k entries by descending count; ties keep first-seen
// order.
func (c *counter) top(k int) []models.CountPair {
	pairs := make([]models.CountPair, 0, len(c.order))
	for _, key := range c.order {
		pairs = append(pairs, models.CountPair{Name: key, Count: c.counts[key]})
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Count > pairs[j].Count
	})
	if k < 0 {
		k = 0
	}
	if len(pairs) > k {
		pairs = pairs[:k]
	}
	return pairs
}
