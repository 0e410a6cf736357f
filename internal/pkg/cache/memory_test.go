package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory("storefront")
	m.now = func() time.Time { return now }

	key := m.GenerateKey("place_order", "7:abc")
	assert.Equal(t, "storefront:place_order:7:abc", key)

	got, err := m.Get(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, m.Set(ctx, key, int64(42), time.Minute))
	got, err = m.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "42", got)

	now = now.Add(2 * time.Minute)
	got, err = m.Get(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, got, "expired")

	require.NoError(t, m.Set(ctx, key, "x", 0))
	require.NoError(t, m.Delete(ctx, key))
	got, _ = m.Get(ctx, key)
	assert.Empty(t, got)
}
