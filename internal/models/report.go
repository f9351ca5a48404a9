package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// Report is the parsed form of a rendered summary JSON artifact, as consumed
// by the metrics emitter, the notifier and the freshness monitor.
//
// Parsing is lenient on purpose: the artifact is regenerated by a separate
// cron run and may be truncated or hand-edited. Totals entries whose value is
// not an integer and top-K entries that are not ["name", count] pairs are
// dropped; only a document that is not JSON at all is an error.
type Report struct {
	Totals     map[string]int64
	TopSSIDs   []CountPair
	TopClients []CountPair
	TopAlarms  []CountPair
}

// EventCount returns the events total, or 0 when absent.
func (r *Report) EventCount() int64 {
	if r == nil {
		return 0
	}
	return r.Totals["events"]
}

// ParseReport decodes a summary JSON document into a Report.
func ParseReport(data []byte) (*Report, error) {
	var raw struct {
		Totals     map[string]json.RawMessage `json:"totals"`
		TopSSIDs   []json.RawMessage          `json:"top_ssids"`
		TopClients []json.RawMessage          `json:"top_clients"`
		TopAlarms  []json.RawMessage          `json:"top_alarms"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	rep := &Report{Totals: make(map[string]int64, len(raw.Totals))}
	for resource, val := range raw.Totals {
		var n float64
		if err := json.Unmarshal(val, &n); err != nil {
			continue
		}
		if n != math.Trunc(n) {
			continue
		}
		rep.Totals[resource] = int64(n)
	}
	rep.TopSSIDs = parsePairs(raw.TopSSIDs)
	rep.TopClients = parsePairs(raw.TopClients)
	rep.TopAlarms = parsePairs(raw.TopAlarms)
	return rep, nil
}

func parsePairs(raw []json.RawMessage) []CountPair {
	var pairs []CountPair
	for _, item := range raw {
		var p CountPair
		if err := json.Unmarshal(item, &p); err != nil {
			continue
		}
		pairs = append(pairs, p)
	}
	return pairs
}
