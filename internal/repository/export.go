package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	_ "github.com/mattn/go-sqlite3"
)

// Resources lists the tables of the export database in their reporting
// order. Totals are computed for exactly this set.
var Resources = []string{"events", "alarms", "clients", "wlan", "devices", "sites", "users"}

// Open opens the export database read-only. The reporting path never writes,
// so a missing or locked database surfaces here instead of mid-run.
func Open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=2000", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// ExportRepository reads the normalized UniFi export tables.
type ExportRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewExportRepository creates a repository over an open export database.
func NewExportRepository(db *sql.DB, logger *zap.Logger) *ExportRepository {
	return &ExportRepository{
		db:     db,
		logger: logger,
	}
}

// EventRow is one row of the events_norm view.
type EventRow struct {
	MAC  string
	SSID string
	Key  string
}

// alarmData is the subset of an alarm's JSON data column used for key
// resolution.
type alarmData struct {
	Key       string `json:"key"`
	Type      string `json:"type"`
	Subsystem string `json:"subsystem"`
	Catname   string `json:"catname"`
	Msg       string `json:"msg"`
}

// CountRows returns the row count of one resource table. An absent table
// counts as zero rows; only unknown resource names and query failures other
// than a missing table are errors.
func (r *ExportRepository) CountRows(table string) (int, error) {
	if !isResource(table) {
		return 0, fmt.Errorf("unknown resource table: %s", table)
	}

	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %q`, table)
	if err := r.db.QueryRow(query).Scan(&count); err != nil {
		if isMissingTable(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}

	return count, nil
}

// EventRows returns all rows of the events_norm view with NULLs folded to
// empty strings. An absent view yields an empty result.
func (r *ExportRepository) EventRows() ([]EventRow, error) {
	rows, err := r.db.Query(`SELECT mac, ssid, key FROM events_norm`)
	if err != nil {
		if isMissingTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query events_norm: %w", err)
	}
	defer rows.Close()

	var events []EventRow
	for rows.Next() {
		var mac, ssid, key sql.NullString
		if err := rows.Scan(&mac, &ssid, &key); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, EventRow{
			MAC:  mac.String,
			SSID: ssid.String,
			Key:  key.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read event rows: %w", err)
	}

	return events, nil
}

// AlarmKeys returns one resolved key per alarm row. Rows whose data column is
// not valid JSON, or that resolve to no key at all, are skipped.
func (r *ExportRepository) AlarmKeys() ([]string, error) {
	rows, err := r.db.Query(`SELECT data FROM alarms`)
	if err != nil {
		if isMissingTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query alarms: %w", err)
	}
	defer rows.Close()

	var keys []string
	skipped := 0
	for rows.Next() {
		var data sql.NullString
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan alarm row: %w", err)
		}

		var alarm alarmData
		if err := json.Unmarshal([]byte(data.String), &alarm); err != nil {
			skipped++
			continue
		}
		if key := resolveAlarmKey(alarm); key != "" {
			keys = append(keys, key)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read alarm rows: %w", err)
	}

	if skipped > 0 {
		r.logger.Debug("Skipped malformed alarm rows", zap.Int("count", skipped))
	}

	return keys, nil
}

// Hostname resolves a MAC address to the client hostname recorded in
// clients_norm. The join is case-insensitive on the MAC.
func (r *ExportRepository) Hostname(mac string) (string, bool, error) {
	var hostname sql.NullString
	query := `SELECT hostname FROM clients_norm WHERE lower(mac) = lower(?) LIMIT 1`
	err := r.db.QueryRow(query, mac).Scan(&hostname)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		if isMissingTable(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to resolve hostname for %s: %w", mac, err)
	}
	if !hostname.Valid || hostname.String == "" {
		return "", false, nil
	}

	return hostname.String, true, nil
}

// resolveAlarmKey applies the key fallback chain: first non-empty of key,
// type, subsystem, catname, then the message prefix before its first
// delimiter. The chain mirrors the upstream export format and is heuristic;
// keep the order as-is.
func resolveAlarmKey(alarm alarmData) string {
	for _, candidate := range []string{alarm.Key, alarm.Type, alarm.Subsystem, alarm.Catname} {
		if candidate != "" {
			return candidate
		}
	}
	return messagePrefix(alarm.Msg)
}

func messagePrefix(msg string) string {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return ""
	}
	if i := strings.IndexAny(msg, ":,"); i >= 0 {
		msg = msg[:i]
	}
	return strings.TrimSpace(msg)
}

func isResource(table string) bool {
	for _, r := range Resources {
		if r == table {
			return true
		}
	}
	return false
}

func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
