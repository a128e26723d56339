package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nexla-ia/gerador-frases-ia/api/schemas"
	"github.com/nexla-ia/gerador-frases-ia/internal/browserenv"
)

func testPersona() schemas.Persona {
	return schemas.Persona{
		UserAgent:           "Mozilla/5.0 (X11; Linux x86_64) Chrome/125.0",
		Platform:            "Linux x86_64",
		Language:            "pt-BR",
		Languages:           []string{"pt-BR", "pt", "en-US", "en"},
		ScreenWidth:         1920,
		ScreenHeight:        1080,
		TimezoneOffset:      180,
		HardwareConcurrency: 8,
		CookiesEnabled:      true,
		CanvasSeed:          "seed-a",
	}
}

func TestFingerprint(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return fixed }

	t.Run("is deterministic for a fixed environment and instant", func(t *testing.T) {
		env := browserenv.NewStatic(testPersona(), nil)
		gen := New(env, clock, zap.NewNop())

		first := gen.Fingerprint(ctx)
		second := gen.Fingerprint(ctx)
		require.NotEmpty(t, first)
		assert.Equal(t, first, second)
	})

	t.Run("differs across environments", func(t *testing.T) {
		envA := browserenv.NewStatic(testPersona(), nil)
		other := testPersona()
		other.UserAgent = "Mozilla/5.0 (Macintosh) Safari/605.1"
		other.Platform = "MacIntel"
		envB := browserenv.NewStatic(other, nil)

		a := New(envA, clock, zap.NewNop()).Fingerprint(ctx)
		b := New(envB, clock, zap.NewNop()).Fingerprint(ctx)
		assert.NotEqual(t, a, b)
	})

	t.Run("differs across creation instants", func(t *testing.T) {
		env := browserenv.NewStatic(testPersona(), nil)

		a := New(env, clock, zap.NewNop()).Fingerprint(ctx)
		b := New(env, func() time.Time { return fixed.Add(time.Millisecond) }, zap.NewNop()).Fingerprint(ctx)
		assert.NotEqual(t, a, b)
	})

	t.Run("survives a broken graphics context", func(t *testing.T) {
		env := browserenv.NewStatic(testPersona(), nil)
		env.CanvasErr = errors.New("canvas read-back blocked")

		id := New(env, clock, zap.NewNop()).Fingerprint(ctx)
		assert.NotEmpty(t, id)
	})
}

func TestFold(t *testing.T) {
	t.Run("empty string folds to zero", func(t *testing.T) {
		assert.Equal(t, int64(0), fold(""))
	})

	t.Run("single code unit folds to itself", func(t *testing.T) {
		assert.Equal(t, int64('a'), fold("a"))
	})

	t.Run("accumulates as hash*31 plus code unit", func(t *testing.T) {
		// "ab" = 'a'*31 + 'b'
		assert.Equal(t, int64('a')*31+int64('b'), fold("ab"))
	})

	t.Run("is never negative", func(t *testing.T) {
		long := ""
		for i := 0; i < 64; i++ {
			long += "overflow-the-accumulator|"
		}
		assert.GreaterOrEqual(t, fold(long), int64(0))
	})

	t.Run("supplementary characters fold as surrogate pairs", func(t *testing.T) {
		// U+1F600 encodes as two UTF-16 code units.
		assert.Equal(t, int64(0xD83D)*31+int64(0xDE00), fold("\U0001F600"))
	})
}
