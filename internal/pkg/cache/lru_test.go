package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_SetGet(t *testing.T) {
	c := NewLRU[int64, []string](2, time.Minute)

	c.Set(1, []string{"p1"})
	got, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, []string{"p1"}, got)

	c.Set(1, []string{"p1", "p2"})
	got, ok = c.Get(1)
	require.True(t, ok)
	assert.Equal(t, []string{"p1", "p2"}, got)
	assert.Equal(t, 1, c.Len())
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[int64, string](2, time.Minute)

	c.Set(1, "a")
	c.Set(2, "b")
	_, _ = c.Get(1)
	c.Set(3, "c")

	_, ok := c.Get(2)
	assert.False(t, ok, "2 should have been evicted")
	_, ok = c.Get(1)
	assert.True(t, ok)
	_, ok = c.Get(3)
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_Expiration(t *testing.T) {
	c := NewLRU[string, int](4, time.Second)
	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }

	c.Set("k", 1)
	now = now.Add(2 * time.Second)

	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestLRU_Delete(t *testing.T) {
	c := NewLRU[int64, string](0, time.Minute)
	c.Set(1, "a")
	c.Delete(1)
	c.Delete(2)

	_, ok := c.Get(1)
	assert.False(t, ok)
}
