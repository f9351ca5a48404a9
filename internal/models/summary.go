package models

import (
	"encoding/json"
	"fmt"
)

// CountPair is one (name, count) entry of a top-K list. It serializes as a
// two-element JSON array ["name", count] to match the export report schema.
type CountPair struct {
	Name  string
	Count int
}

// MarshalJSON encodes the pair as ["name", count].
func (p CountPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Name, p.Count})
}

// UnmarshalJSON decodes ["name", count]. Extra elements are ignored; a pair
// whose first element is not a string or whose second element is not a number
// is rejected so callers can drop the entry.
func (p *CountPair) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 2 {
		return fmt.Errorf("count pair: expected 2 elements, got %d", len(raw))
	}
	var name string
	if err := json.Unmarshal(raw[0], &name); err != nil {
		return fmt.Errorf("count pair name: %w", err)
	}
	var count float64
	if err := json.Unmarshal(raw[1], &count); err != nil {
		return fmt.Errorf("count pair count: %w", err)
	}
	p.Name = name
	p.Count = int(count)
	return nil
}

// Summary is the aggregate computed from one export database snapshot.
// Totals always carries one entry per known resource table; the top-K lists
// are sorted by descending count and never exceed the requested K.
type Summary struct {
	Totals       map[string]int `json:"totals"`
	TopSSIDs     []CountPair    `json:"top_ssids"`
	TopClients   []CountPair    `json:"top_clients"`
	TopAlarms    []CountPair    `json:"top_alarms"`
	TopEventKeys []CountPair    `json:"top_event_keys,omitempty"`
}
