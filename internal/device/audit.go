package device

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nexla-ia/gerador-frases-ia/api/schemas"
	"github.com/nexla-ia/gerador-frases-ia/internal/storage"
)

type nowFunc func() time.Time

func defaultNow() time.Time { return time.Now() }

// AuditLog persists classification and bypass decisions for later
// inspection. Appends are best effort and never surface failures; reads
// sweep entries older than the TTL and cap the list length.
type AuditLog struct {
	kv       storage.KV
	ephemera storage.KV // per-run scratch space for the grouping id
	maxLen   int
	ttl      time.Duration
	now      nowFunc
	log      *zap.Logger
}

// NewAuditLog builds an audit log over the given stores. ephemera holds
// the per-run session id used to group entries; pass an in-memory store so
// the id dies with the process, the way a tab id dies with the tab.
func NewAuditLog(kv, ephemera storage.KV, maxLen int, ttl time.Duration, now nowFunc, logger *zap.Logger) *AuditLog {
	if now == nil {
		now = defaultNow
	}
	return &AuditLog{
		kv:       kv,
		ephemera: ephemera,
		maxLen:   maxLen,
		ttl:      ttl,
		now:      now,
		log:      logger.Named("audit"),
	}
}

// Append records one decision. It has no observable return value: audit
// trouble is logged and otherwise ignored so it can never block or fail a
// classification.
func (a *AuditLog) Append(ctx context.Context, info schemas.DeviceInfo, action schemas.AuditAction, reason string) {
	entry := schemas.AuditEntry{
		ID:         uuid.NewString(),
		Timestamp:  a.now().UnixMilli(),
		DeviceInfo: info,
		Action:     action,
		Reason:     reason,
		SessionID:  a.sessionID(ctx),
	}

	entries := a.Entries(ctx)
	entries = append([]schemas.AuditEntry{entry}, entries...)
	if len(entries) > a.maxLen {
		entries = entries[:a.maxLen]
	}

	if err := storage.PutJSON(ctx, a.kv, storage.KeyAuditLog, entries); err != nil {
		a.log.Warn("Failed to persist audit entry", zap.Error(err))
	}
}

// Entries returns the stored log, newest first, dropping entries older
// than the TTL. When the sweep removed anything the pruned list is written
// back.
func (a *AuditLog) Entries(ctx context.Context) []schemas.AuditEntry {
	var entries []schemas.AuditEntry
	ok, err := storage.GetJSON(ctx, a.kv, storage.KeyAuditLog, &entries)
	if err != nil {
		a.log.Warn("Unreadable audit log, starting empty", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	cutoff := a.now().Add(-a.ttl).UnixMilli()
	kept := entries[:0]
	for _, e := range entries {
		if e.Timestamp > cutoff {
			kept = append(kept, e)
		}
	}

	if len(kept) != len(entries) {
		if err := storage.PutJSON(ctx, a.kv, storage.KeyAuditLog, kept); err != nil {
			a.log.Warn("Failed to write back pruned audit log", zap.Error(err))
		}
	}
	return kept
}

// Stats summarizes the audit trail.
func (a *AuditLog) Stats(ctx context.Context) schemas.AccessStats {
	entries := a.Entries(ctx)

	stats := schemas.AccessStats{
		TotalAccess: len(entries),
		DeviceTypes: make(map[schemas.DeviceType]int),
	}

	t := a.now()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).UnixMilli()
	for _, e := range entries {
		if e.Timestamp >= midnight {
			stats.TodayAccess++
		}
		stats.DeviceTypes[e.DeviceInfo.DeviceType]++
		if e.Action == schemas.AuditSecurityBypassed {
			stats.SecurityBypasses++
		}
	}
	if len(entries) > 0 {
		stats.LastAccess = entries[0].Timestamp
	}
	return stats
}

// Clear discards the persisted log.
func (a *AuditLog) Clear(ctx context.Context) {
	if err := a.kv.Delete(ctx, storage.KeyAuditLog); err != nil {
		a.log.Warn("Failed to clear audit log", zap.Error(err))
	}
}

// sessionID returns the per-run grouping id, minting one on first use.
func (a *AuditLog) sessionID(ctx context.Context) string {
	raw, ok, err := a.ephemera.Get(ctx, storage.KeyTabID)
	if err == nil && ok && len(raw) > 0 {
		return string(raw)
	}

	id := uuid.NewString()
	if err := a.ephemera.Set(ctx, storage.KeyTabID, []byte(id)); err != nil {
		a.log.Debug("Failed to store tab session id", zap.Error(err))
	}
	return id
}
