package cache

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "abc:overview", Key("abc", "overview"))
	assert.Equal(t, "abc:categories:Steel:detail", Key("abc", "categories", "Steel", "detail"))
	assert.NotEqual(t, Key("abc", "overview"), Key("def", "overview"))
}

func TestLRUCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache[string](2, time.Minute)

	c.Set(ctx, "a", "1")
	got, ok := c.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, "1", got)

	c.Delete(ctx, "a")
	_, ok = c.Get(ctx, "a")
	assert.False(t, ok)
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache[int](2, time.Minute)

	c.Set(ctx, "a", 1)
	c.Set(ctx, "b", 2)
	c.Get(ctx, "a")
	c.Set(ctx, "c", 3)

	_, ok := c.Get(ctx, "b")
	assert.False(t, ok, "b was least recently used")
	_, ok = c.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Size())
}

func TestLRUCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	c := NewLRUCache[int](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set(ctx, "a", 1)
	c.Set(ctx, "b", 2)
	now = now.Add(2 * time.Minute)
	c.Set(ctx, "c", 3)

	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.CleanExpired(), "b is expired, a was already dropped on Get")
	assert.Equal(t, 1, c.Size())
}

func TestManager_CleanNow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	a := NewLRUCache[int](10, time.Second)
	a.now = func() time.Time { return now }
	a.Set(ctx, "x", 1)
	a.Set(ctx, "y", 2)

	m := NewManager()
	m.Register(a)
	now = now.Add(time.Minute)

	assert.Equal(t, 2, m.CleanNow())

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}

func TestRedisCache_UnavailableServerIsAMiss(t *testing.T) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()
	c := NewRedisCache[[]byte](rdb, "spendboard:", time.Minute)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("<div></div>"))
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	c.Delete(ctx, "k")
}

func TestRedisCache_Prefix(t *testing.T) {
	c := NewRedisCache[string](nil, "spendboard:view:", time.Minute)
	assert.Equal(t, "spendboard:view:abc:overview", c.key(Key("abc", "overview")))
}
