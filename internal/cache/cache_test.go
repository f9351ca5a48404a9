package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCache_PutGet(t *testing.T) {
	c := New()
	c.Put("aa:bb:cc", "aa:bb:cc (laptop)", time.Minute)

	val, err := c.Get("aa:bb:cc")
	require.NoError(t, err)
	assert.Equal(t, "aa:bb:cc (laptop)", val)
}

func TestTTLCache_MissOnAbsentKey(t *testing.T) {
	c := New()

	_, err := c.Get("missing")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestTTLCache_ExpiresAfterTTL(t *testing.T) {
	c := New()
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Put("key", "value", time.Minute)

	val, err := c.Get("key")
	require.NoError(t, err)
	assert.Equal(t, "value", val)

	now = now.Add(2 * time.Minute)
	_, err = c.Get("key")
	assert.ErrorIs(t, err, ErrCacheMiss)
	// Expired entries are dropped on access.
	assert.Equal(t, 0, c.Len())
}

func TestTTLCache_ZeroTTLNeverExpires(t *testing.T) {
	c := New()
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Put("key", "value", 0)

	now = now.Add(240 * time.Hour)
	val, err := c.Get("key")
	require.NoError(t, err)
	assert.Equal(t, "value", val)
}

func TestTTLCache_OverwriteResetsClock(t *testing.T) {
	c := New()
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Put("key", "old", time.Minute)
	now = now.Add(50 * time.Second)
	c.Put("key", "new", time.Minute)
	now = now.Add(30 * time.Second)

	val, err := c.Get("key")
	require.NoError(t, err)
	assert.Equal(t, "new", val)
}
