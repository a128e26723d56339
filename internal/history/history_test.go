package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nexla-ia/gerador-frases-ia/internal/storage"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore(clock *testClock) (*Store, *storage.MemStore) {
	kv := storage.NewMemStore()
	return New(kv, 25, 30*24*time.Hour, clock.Now, zap.NewNop()), kv
}

func TestAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("prepends newest first", func(t *testing.T) {
		clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
		store, _ := newTestStore(clock)

		store.Add(ctx, "instagram", "coffee", "c1")
		clock.Advance(time.Minute)
		store.Add(ctx, "tiktok", "beach", "c2")

		items := store.Items(ctx)
		require.Len(t, items, 2)
		assert.Equal(t, "beach", items[0].Topic)
		assert.Equal(t, "coffee", items[1].Topic)
	})

	t.Run("trims surrounding whitespace from the topic", func(t *testing.T) {
		clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
		store, _ := newTestStore(clock)

		item := store.Add(ctx, "instagram", "  sunset  ", "c")
		assert.Equal(t, "sunset", item.Topic)
	})

	t.Run("dedupes per platform and case-insensitive topic", func(t *testing.T) {
		clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
		store, _ := newTestStore(clock)

		store.Add(ctx, "instagram", "Coffee", "old caption")
		clock.Advance(time.Hour)
		store.Add(ctx, "instagram", "coffee", "new caption")
		store.Add(ctx, "tiktok", "coffee", "other platform")

		items := store.Items(ctx)
		require.Len(t, items, 2, "same platform and topic collapse; other platform stays")

		var instagramCount int
		for _, item := range items {
			if item.Platform == "instagram" {
				instagramCount++
				assert.Equal(t, "new caption", item.Caption, "newest caption wins")
			}
		}
		assert.Equal(t, 1, instagramCount)
	})

	t.Run("cap drops the oldest entry", func(t *testing.T) {
		clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
		store, _ := newTestStore(clock)

		for i := 0; i < 26; i++ {
			store.Add(ctx, "instagram", fmt.Sprintf("topic-%d", i), "")
			clock.Advance(time.Second)
		}

		items := store.Items(ctx)
		require.Len(t, items, 25)
		assert.Equal(t, "topic-25", items[0].Topic)
		assert.Equal(t, "topic-1", items[24].Topic, "topic-0 fell off the end")
	})
}

func TestItemsTTL(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store, kv := newTestStore(clock)

	store.Add(ctx, "instagram", "stale", "")
	clock.Advance(31 * 24 * time.Hour)
	store.Add(ctx, "instagram", "fresh", "")

	items := store.Items(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, "fresh", items[0].Topic)

	// The sweep writes the pruned list back.
	raw, ok, err := kv.Get(ctx, storage.KeyHistory)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, string(raw), "stale")
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store, _ := newTestStore(clock)

	store.Add(ctx, "instagram", "morning coffee", "Bom dia com café")
	store.Add(ctx, "tiktok", "beach day", "Sol e mar")

	t.Run("matches topic case-insensitively", func(t *testing.T) {
		assert.Len(t, store.Search(ctx, "COFFEE"), 1)
	})

	t.Run("matches platform", func(t *testing.T) {
		assert.Len(t, store.Search(ctx, "tiktok"), 1)
	})

	t.Run("matches caption", func(t *testing.T) {
		assert.Len(t, store.Search(ctx, "café"), 1)
	})

	t.Run("empty term returns everything", func(t *testing.T) {
		assert.Len(t, store.Search(ctx, "  "), 2)
	})

	t.Run("no match returns empty", func(t *testing.T) {
		assert.Empty(t, store.Search(ctx, "zzz"))
	})
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store, _ := newTestStore(clock)

	a := store.Add(ctx, "instagram", "one", "")
	store.Add(ctx, "instagram", "two", "")

	store.Remove(ctx, a.ID)
	items := store.Items(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, "two", items[0].Topic)

	store.Clear(ctx)
	assert.Empty(t, store.Items(ctx))
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{now: time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC)}
	store, _ := newTestStore(clock)

	clock.now = time.Date(2025, 5, 30, 10, 0, 0, 0, time.UTC)
	store.Add(ctx, "instagram", "older", "")
	clock.now = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store.Add(ctx, "tiktok", "today-1", "")
	clock.now = time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)
	store.Add(ctx, "tiktok", "today-2", "")

	stats := store.Stats(ctx)
	assert.Equal(t, 3, stats.TotalSearches)
	assert.Equal(t, 2, stats.UniquePlatforms)
	assert.Equal(t, 2, stats.TodaySearches)
	assert.Equal(t, time.Date(2025, 5, 30, 10, 0, 0, 0, time.UTC).UnixMilli(), stats.OldestSearch)
	assert.Equal(t, time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC).UnixMilli(), stats.NewestSearch)
}

func TestFormatTimestamp(t *testing.T) {
	clock := &testClock{now: time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)}
	store, _ := newTestStore(clock)

	at := func(d time.Duration) int64 { return clock.now.Add(-d).UnixMilli() }

	assert.Equal(t, "agora mesmo", store.FormatTimestamp(at(30*time.Second)))
	assert.Equal(t, "5 min atrás", store.FormatTimestamp(at(5*time.Minute)))
	assert.Equal(t, "3h atrás", store.FormatTimestamp(at(3*time.Hour)))
	assert.Equal(t, "1 dia atrás", store.FormatTimestamp(at(30*time.Hour)))
	assert.Equal(t, "3 dias atrás", store.FormatTimestamp(at(3*24*time.Hour)))
	assert.Equal(t, "01/06/25", store.FormatTimestamp(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC).UnixMilli()))
}
