package freshness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeSummary(t *testing.T, dir, content string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, "summary.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	if age > 0 {
		old := time.Now().Add(-age)
		require.NoError(t, os.Chtimes(path, old, old))
	}
	return path
}

func newChecker(maxAge time.Duration, minEvents int64) *Checker {
	return NewChecker(maxAge, minEvents, "summary.json", zap.NewNop())
}

func TestCheck_FreshSummaryPasses(t *testing.T) {
	dir := t.TempDir()
	writeSummary(t, dir, `{"totals": {"events": 42}}`, 0)

	result := newChecker(26*time.Hour, 10).Check(dir)

	assert.True(t, result.OK)
	assert.Empty(t, result.Reasons)
}

func TestCheck_MissingSummary(t *testing.T) {
	result := newChecker(26*time.Hour, 1).Check(t.TempDir())

	assert.False(t, result.OK)
	require.Len(t, result.Reasons, 1)
	assert.Contains(t, result.Reasons[0], "missing summary")
}

func TestCheck_StaleSummary(t *testing.T) {
	dir := t.TempDir()
	writeSummary(t, dir, `{"totals": {"events": 42}}`, 48*time.Hour)

	result := newChecker(26*time.Hour, 10).Check(dir)

	assert.False(t, result.OK)
	require.Len(t, result.Reasons, 1)
	assert.Contains(t, result.Reasons[0], "stale")
	assert.Contains(t, result.Message(), "stale")
}

func TestCheck_InvalidSummaryDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	writeSummary(t, dir, `not json`, 0)

	result := newChecker(26*time.Hour, 10).Check(dir)

	assert.False(t, result.OK)
	// Invalid content also fails the events threshold (treated as empty).
	require.Len(t, result.Reasons, 2)
	assert.Contains(t, result.Reasons[0], "invalid summary")
	assert.Contains(t, result.Reasons[1], "below threshold")
}

func TestCheck_BelowThreshold(t *testing.T) {
	dir := t.TempDir()
	writeSummary(t, dir, `{"totals": {"events": 3}}`, 0)

	result := newChecker(26*time.Hour, 10).Check(dir)

	assert.False(t, result.OK)
	require.Len(t, result.Reasons, 1)
	assert.Contains(t, result.Reasons[0], "below threshold")
}

func TestCheck_AggregatesAllReasons(t *testing.T) {
	dir := t.TempDir()
	writeSummary(t, dir, `{"totals": {"events": 3}}`, 48*time.Hour)

	result := newChecker(26*time.Hour, 10).Check(dir)

	assert.False(t, result.OK)
	assert.Len(t, result.Reasons, 2)

	msg := result.Message()
	assert.Contains(t, msg, "freshness check failed")
	assert.Contains(t, msg, "stale")
	assert.Contains(t, msg, "below threshold")
}

func TestCheck_CustomSummaryName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unifi.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"totals": {"events": 42}}`), 0o644))

	checker := NewChecker(26*time.Hour, 1, "unifi.json", zap.NewNop())

	assert.True(t, checker.Check(dir).OK)
}

func TestCheck_ZeroMinEventsAcceptsEmpty(t *testing.T) {
	dir := t.TempDir()
	writeSummary(t, dir, `{"totals": {}}`, 0)

	result := newChecker(26*time.Hour, 0).Check(dir)

	assert.True(t, result.OK)
}
