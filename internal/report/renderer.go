// Package report renders a Summary into the Markdown and JSON artifacts.
// Artifacts are regenerated in full on every run; there is no incremental
// update and existing files are overwritten.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"unifi-report/internal/models"
	"unifi-report/internal/repository"
)

// DefaultPaths derives the artifact paths from the database path by swapping
// the extension: /data/unifi.db -> /data/unifi.md, /data/unifi.json.
func DefaultPaths(dbPath string) (mdPath, jsonPath string) {
	base := strings.TrimSuffix(dbPath, filepath.Ext(dbPath))
	return base + ".md", base + ".json"
}

// RenderMarkdown renders the summary document. Section order is fixed:
// Totals, Top SSIDs, Most Active Clients, Frequent Alarms. Empty sections
// render "(no data)".
func RenderMarkdown(summary *models.Summary) string {
	var b strings.Builder

	b.WriteString("# UniFi Export Summary\n")

	b.WriteString("\n## Totals\n\n")
	if totalsEmpty(summary.Totals) {
		b.WriteString("(no data)\n")
	} else {
		for _, resource := range repository.Resources {
			fmt.Fprintf(&b, "- %s: %d\n", resource, summary.Totals[resource])
		}
	}

	writePairSection(&b, "Top SSIDs", summary.TopSSIDs)
	writePairSection(&b, "Most Active Clients", summary.TopClients)
	writePairSection(&b, "Frequent Alarms", summary.TopAlarms)

	return b.String()
}

func writePairSection(b *strings.Builder, title string, pairs []models.CountPair) {
	fmt.Fprintf(b, "\n## %s\n\n", title)
	if len(pairs) == 0 {
		b.WriteString("(no data)\n")
		return
	}
	for _, p := range pairs {
		fmt.Fprintf(b, "- %s: %d\n", p.Name, p.Count)
	}
}

func totalsEmpty(totals map[string]int) bool {
	for _, count := range totals {
		if count != 0 {
			return false
		}
	}
	return true
}

// WriteArtifacts writes the Markdown and JSON artifacts, creating parent
// directories as needed.
func WriteArtifacts(summary *models.Summary, mdPath, jsonPath string) error {
	if err := writeFile(mdPath, []byte(RenderMarkdown(summary))); err != nil {
		return fmt.Errorf("failed to write markdown artifact: %w", err)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := writeFile(jsonPath, append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write json artifact: %w", err)
	}

	return nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
