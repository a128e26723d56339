// Package storage provides the persisted key-value capability the trackers
// run on. It stands in for origin-scoped browser storage: reads tolerate
// corrupt or absent values, and callers are expected to fail open when a
// backend misbehaves.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Well-known keys. The values carried over from the original deployment so
// an existing profile directory keeps its state across upgrades.
const (
	KeySession   = "social_media_user_session"
	KeyHistory   = "social_media_search_history"
	KeyAuditLog  = "device_audit_logs"
	KeyTabID     = "device_session_id"
	keyProbeTest = "pb_test"
)

// KV is tolerant key-value storage. Get reports ok=false for an absent
// key; an error means the backend itself failed.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// GetJSON unmarshals the stored value into out. A missing key, a backend
// failure or a malformed value all report ok=false so the caller can fall
// back to its empty state; the error is returned for logging only.
func GetJSON(ctx context.Context, kv KV, key string, out interface{}) (bool, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("storage get %q: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("storage decode %q: %w", key, err)
	}
	return true, nil
}

// PutJSON marshals v and stores it under key.
func PutJSON(ctx context.Context, kv KV, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage encode %q: %w", key, err)
	}
	if err := kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("storage set %q: %w", key, err)
	}
	return nil
}

// WriteCheck performs the write+delete round trip the storage probe relies
// on: any failure is evidence that persistent storage is refused.
func WriteCheck(ctx context.Context, kv KV, suffix string) error {
	key := keyProbeTest + "_" + suffix
	if err := kv.Set(ctx, key, []byte("test")); err != nil {
		return err
	}
	return kv.Delete(ctx, key)
}
