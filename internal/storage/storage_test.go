package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	_, ok, err := store.Get(ctx, KeySession)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, KeySession, []byte(`{"count":3}`)))

	raw, ok, err := store.Get(ctx, KeySession)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"count":3}`, string(raw))

	require.NoError(t, store.Delete(ctx, KeySession))
	_, ok, err = store.Get(ctx, KeySession)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewFileStore(dir, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, KeyHistory, []byte(`[]`)))

	second, err := NewFileStore(dir, zap.NewNop())
	require.NoError(t, err)
	raw, ok, err := second.Get(ctx, KeyHistory)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[]", string(raw))
}

func TestFileStoreSanitizesKeys(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "../escape/attempt", []byte("x")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "___escape_attempt.json", entries[0].Name())
	assert.FileExists(t, filepath.Join(dir, entries[0].Name()))
}

func TestFileStoreDeleteMissingKey(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, store.Delete(context.Background(), "never_written"))
}

func TestMemStoreFailWrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	require.NoError(t, store.Set(ctx, "k", []byte("v")))

	store.FailWrites = true
	assert.Error(t, store.Set(ctx, "k", []byte("v2")))

	// The earlier value is untouched.
	raw, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", string(raw))
}

func TestMemStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	buf := []byte("original")
	require.NoError(t, store.Set(ctx, "k", buf))
	buf[0] = 'X'

	raw, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "original", string(raw))

	raw[0] = 'Y'
	again, _, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "original", string(again))
}

func TestGetJSON(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key reports not ok without error", func(t *testing.T) {
		var out map[string]int
		ok, err := GetJSON(ctx, NewMemStore(), "absent", &out)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("corrupt value reports not ok with error", func(t *testing.T) {
		store := NewMemStore()
		require.NoError(t, store.Set(ctx, "bad", []byte("{not json")))

		var out map[string]int
		ok, err := GetJSON(ctx, store, "bad", &out)
		assert.Error(t, err)
		assert.False(t, ok)
	})

	t.Run("round trip", func(t *testing.T) {
		store := NewMemStore()
		require.NoError(t, PutJSON(ctx, store, "obj", map[string]int{"n": 7}))

		var out map[string]int
		ok, err := GetJSON(ctx, store, "obj", &out)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 7, out["n"])
	})
}

func TestWriteCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("healthy backend passes and leaves no residue", func(t *testing.T) {
		store := NewMemStore()
		require.NoError(t, WriteCheck(ctx, store, "unit"))
		_, ok, err := store.Get(ctx, keyProbeTest+"_unit")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("refused write surfaces the error", func(t *testing.T) {
		store := NewMemStore()
		store.FailWrites = true
		assert.Error(t, WriteCheck(ctx, store, "unit"))
	})
}
