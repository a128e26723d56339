// Package history persists the capped, deduplicated, time-decayed log of
// past caption queries.
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nexla-ia/gerador-frases-ia/api/schemas"
	"github.com/nexla-ia/gerador-frases-ia/internal/storage"
)

// Store keeps the search history in an injected KV, newest first.
type Store struct {
	kv       storage.KV
	maxItems int
	ttl      time.Duration
	now      func() time.Time
	log      *zap.Logger
}

// New builds a Store. now may be nil, in which case the wall clock is used.
func New(kv storage.KV, maxItems int, ttl time.Duration, now func() time.Time, logger *zap.Logger) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{kv: kv, maxItems: maxItems, ttl: ttl, now: now, log: logger.Named("history")}
}

// Add prepends a query. An existing entry for the same platform and
// case-insensitive topic is removed first, so the newest timestamp and
// caption win and the pair stays unique.
func (s *Store) Add(ctx context.Context, platform, topic, caption string) schemas.SearchHistoryItem {
	item := schemas.SearchHistoryItem{
		ID:        uuid.NewString(),
		Platform:  platform,
		Topic:     strings.TrimSpace(topic),
		Timestamp: s.now().UnixMilli(),
		Caption:   caption,
	}

	existing := s.Items(ctx)
	kept := make([]schemas.SearchHistoryItem, 0, len(existing)+1)
	kept = append(kept, item)
	for _, e := range existing {
		if e.Platform == platform && strings.EqualFold(e.Topic, item.Topic) {
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) > s.maxItems {
		kept = kept[:s.maxItems]
	}

	s.save(ctx, kept)
	return item
}

// Items returns the stored history, dropping entries older than the TTL.
// A sweep that removed anything writes the pruned list back.
func (s *Store) Items(ctx context.Context) []schemas.SearchHistoryItem {
	var items []schemas.SearchHistoryItem
	ok, err := storage.GetJSON(ctx, s.kv, storage.KeyHistory, &items)
	if err != nil {
		s.log.Warn("Unreadable search history, starting empty", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	cutoff := s.now().Add(-s.ttl).UnixMilli()
	kept := items[:0]
	for _, item := range items {
		if item.Timestamp > cutoff {
			kept = append(kept, item)
		}
	}
	if len(kept) != len(items) {
		s.save(ctx, kept)
	}
	return kept
}

// Search filters the history with a case-insensitive substring match over
// topic, platform and caption. An empty term returns everything.
func (s *Store) Search(ctx context.Context, term string) []schemas.SearchHistoryItem {
	items := s.Items(ctx)
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return items
	}

	matched := make([]schemas.SearchHistoryItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Topic), term) ||
			strings.Contains(strings.ToLower(item.Platform), term) ||
			strings.Contains(strings.ToLower(item.Caption), term) {
			matched = append(matched, item)
		}
	}
	return matched
}

// Remove deletes the entry with the given id, if present.
func (s *Store) Remove(ctx context.Context, id string) {
	items := s.Items(ctx)
	kept := items[:0]
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	s.save(ctx, kept)
}

// Clear discards the whole history.
func (s *Store) Clear(ctx context.Context) {
	if err := s.kv.Delete(ctx, storage.KeyHistory); err != nil {
		s.log.Warn("Failed to clear search history", zap.Error(err))
	}
}

// Stats summarizes the stored history.
func (s *Store) Stats(ctx context.Context) schemas.HistoryStats {
	items := s.Items(ctx)

	platforms := make(map[string]struct{})
	t := s.now()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).UnixMilli()

	stats := schemas.HistoryStats{TotalSearches: len(items)}
	for _, item := range items {
		platforms[item.Platform] = struct{}{}
		if item.Timestamp >= midnight {
			stats.TodaySearches++
		}
		if stats.OldestSearch == 0 || item.Timestamp < stats.OldestSearch {
			stats.OldestSearch = item.Timestamp
		}
		if item.Timestamp > stats.NewestSearch {
			stats.NewestSearch = item.Timestamp
		}
	}
	stats.UniquePlatforms = len(platforms)
	return stats
}

// FormatTimestamp renders an entry's age the way the history list shows
// it: relative below seven days, a date beyond that.
func (s *Store) FormatTimestamp(ts int64) string {
	diff := s.now().Sub(time.UnixMilli(ts))
	switch {
	case diff < time.Minute:
		return "agora mesmo"
	case diff < time.Hour:
		return fmt.Sprintf("%d min atrás", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh atrás", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 dia atrás"
		}
		return fmt.Sprintf("%d dias atrás", days)
	default:
		return time.UnixMilli(ts).Format("02/01/06")
	}
}

func (s *Store) save(ctx context.Context, items []schemas.SearchHistoryItem) {
	if err := storage.PutJSON(ctx, s.kv, storage.KeyHistory, items); err != nil {
		s.log.Warn("Failed to persist search history", zap.Error(err))
	}
}
