package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Set SOKONI_TEST_REDIS_URL (e.g. redis://localhost:6379/15) to run these.
func newTestRedisCache(t *testing.T, ttl time.Duration) *RedisCache {
	t.Helper()

	url := os.Getenv("SOKONI_TEST_REDIS_URL")
	if url == "" {
		t.Skip("SOKONI_TEST_REDIS_URL not set")
	}

	c, err := NewRedisCache(context.Background(), url, ttl)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Clear()
		_ = c.Close()
	})

	return c
}

func TestRedisCache_SetAndGet(t *testing.T) {
	c := newTestRedisCache(t, time.Minute)

	key := "http://localhost:8000/api/sellers/nearby?latitude=-6.2&limit=20&longitude=35.75&radius=10"
	require.NoError(t, c.Set(key, []byte(`[]`)))

	got, ok := c.Get(key)
	assert.True(t, ok)
	assert.Equal(t, "[]", string(got))
}

func TestRedisCache_Expiry(t *testing.T) {
	c := newTestRedisCache(t, 50*time.Millisecond)

	require.NoError(t, c.Set("key", []byte("value")))
	time.Sleep(150 * time.Millisecond)

	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestRedisCache_Clear(t *testing.T) {
	c := newTestRedisCache(t, time.Minute)

	require.NoError(t, c.Set("a", []byte("1")))
	require.NoError(t, c.Set("b", []byte("2")))
	require.NoError(t, c.Clear())

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "not-a-url://", time.Minute)
	assert.Error(t, err)
}

func TestRedisCache_KeyIsHashed(t *testing.T) {
	c := NewRedisCacheFromClient(nil, time.Minute)

	k := c.key("https://example.com/a?b=c")
	assert.Len(t, k, len(redisKeyPrefix)+64)
	assert.Equal(t, k, c.key("https://example.com/a?b=c"))
	assert.NotEqual(t, k, c.key("https://example.com/a?b=d"))
}

func TestRedisCache_ZeroTTLSkipsWrite(t *testing.T) {
	// no client: a write that reached Redis would panic
	c := NewRedisCacheFromClient(nil, time.Minute, WithPathTTL("/sellers/nearby", 0))

	assert.NoError(t, c.Set("http://localhost:8000/api/sellers/nearby?latitude=-6.2", []byte(`[]`)))
}
