// Package quota owns the free-tier session state machine: a per-device
// session record with a rolling window and a hard request cap. The tracker
// is stateless; every decision re-reads the injected storage so concurrent
// callers observe last-write-wins, matching multi-tab browser semantics.
package quota

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nexla-ia/gerador-frases-ia/api/schemas"
	"github.com/nexla-ia/gerador-frases-ia/internal/storage"
)

// Fingerprinter mints the device identifier for fresh sessions.
type Fingerprinter interface {
	Fingerprint(ctx context.Context) string
}

// Tracker answers "can this device make another request" against the
// persisted session record.
type Tracker struct {
	kv     storage.KV
	ids    Fingerprinter
	max    int
	window time.Duration
	now    func() time.Time
	log    *zap.Logger
}

// New builds a Tracker. now may be nil, in which case the wall clock is
// used.
func New(kv storage.KV, ids Fingerprinter, maxRequests int, window time.Duration, now func() time.Time, logger *zap.Logger) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		kv:     kv,
		ids:    ids,
		max:    maxRequests,
		window: window,
		now:    now,
		log:    logger.Named("quota"),
	}
}

// GetOrCreateSession returns the current session, replacing it when the
// stored one is absent, unreadable or past its window. Expiry is a hard
// cutover: the counter and the window reset together.
func (t *Tracker) GetOrCreateSession(ctx context.Context) schemas.UserSession {
	if s, ok := t.readSession(ctx); ok && !s.Expired(t.now(), t.window) {
		return s
	}
	return t.createSession(ctx)
}

// CanMakeRequest reports whether another request fits the allowance after
// applying the expiry rule.
func (t *Tracker) CanMakeRequest(ctx context.Context) bool {
	return t.GetOrCreateSession(ctx).RequestCount < t.max
}

// RecordRequest consumes one unit of allowance. It re-validates the cap
// and mutates nothing when the device is out of quota. Callers must invoke
// this before the paid action; the action's own failure does not refund
// the unit.
func (t *Tracker) RecordRequest(ctx context.Context) bool {
	if !t.CanMakeRequest(ctx) {
		return false
	}

	session := t.GetOrCreateSession(ctx)
	session.RequestCount++
	session.LastRequest = t.now().UnixMilli()
	t.saveSession(ctx, session)

	t.log.Debug("Request recorded against quota",
		zap.String("user_id", session.UserID),
		zap.Int("request_count", session.RequestCount),
	)
	return true
}

// Status is a pure projection for display. An expired or absent session
// reports the clean defaults rather than materializing a fresh record as a
// side effect.
func (t *Tracker) Status(ctx context.Context) schemas.UserStatus {
	now := t.now()

	session, ok := t.readSession(ctx)
	if !ok || session.Expired(now, t.window) {
		return schemas.UserStatus{
			RemainingRequests: t.max,
			TimeRemaining:     t.window,
			IsBlocked:         false,
			ResetTime:         now.Add(t.window).UnixMilli(),
		}
	}

	remaining := t.max - session.RequestCount
	if remaining < 0 {
		// An over-cap record is a violated invariant; report it as
		// blocked, never as negative allowance.
		remaining = 0
	}

	return schemas.UserStatus{
		RemainingRequests: remaining,
		TimeRemaining:     t.window - session.Age(now),
		IsBlocked:         remaining == 0,
		ResetTime:         time.UnixMilli(session.FirstAccess).Add(t.window).UnixMilli(),
	}
}

// SessionInfo returns the debug projection including session age.
func (t *Tracker) SessionInfo(ctx context.Context) schemas.SessionInfo {
	session := t.GetOrCreateSession(ctx)
	return schemas.SessionInfo{
		UserSession: session,
		SessionAge:  session.Age(t.now()),
	}
}

// Reset discards the persisted session, restoring the full allowance.
func (t *Tracker) Reset(ctx context.Context) {
	if err := t.kv.Delete(ctx, storage.KeySession); err != nil {
		t.log.Warn("Failed to reset quota session", zap.Error(err))
	}
}

// FormatTimeRemaining renders a duration the way the UI shows it.
func FormatTimeRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// readSession loads the stored record. Storage and decode failures are
// logged and reported as "no session": the quota fails open, never closed.
func (t *Tracker) readSession(ctx context.Context) (schemas.UserSession, bool) {
	var session schemas.UserSession
	ok, err := storage.GetJSON(ctx, t.kv, storage.KeySession, &session)
	if err != nil {
		t.log.Warn("Unreadable quota session, starting fresh", zap.Error(err))
		return schemas.UserSession{}, false
	}
	return session, ok
}

func (t *Tracker) createSession(ctx context.Context) schemas.UserSession {
	session := schemas.UserSession{
		UserID:       t.ids.Fingerprint(ctx),
		FirstAccess:  t.now().UnixMilli(),
		RequestCount: 0,
		LastRequest:  0,
	}
	t.saveSession(ctx, session)
	return session
}

func (t *Tracker) saveSession(ctx context.Context, session schemas.UserSession) {
	if err := storage.PutJSON(ctx, t.kv, storage.KeySession, session); err != nil {
		// Persistence is best effort; an unsaved session only means the
		// device gets a fresh allowance next time.
		t.log.Warn("Failed to persist quota session", zap.Error(err))
	}
}
