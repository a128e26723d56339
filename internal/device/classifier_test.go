package device

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nexla-ia/gerador-frases-ia/api/schemas"
	"github.com/nexla-ia/gerador-frases-ia/internal/browserenv"
	"github.com/nexla-ia/gerador-frases-ia/internal/storage"
)

func envWith(ua string, width, height int, touch, orientation bool) *browserenv.Static {
	return browserenv.NewStatic(schemas.Persona{
		UserAgent:      ua,
		ScreenWidth:    width,
		ScreenHeight:   height,
		TouchCapable:   touch,
		HasOrientation: orientation,
	}, nil)
}

func TestClassify(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name        string
		ua          string
		width       int
		touch       bool
		orientation bool
		want        schemas.DeviceType
	}{
		{
			name:  "desktop chrome on linux",
			ua:    "Mozilla/5.0 (X11; Linux x86_64) Chrome/125.0",
			width: 1920,
			want:  schemas.DeviceDesktop,
		},
		{
			name:  "iphone by user agent",
			ua:    "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile/15E148",
			width: 390,
			touch: true,
			want:  schemas.DeviceMobile,
		},
		{
			name:  "android phone carries the mobile token",
			ua:    "Mozilla/5.0 (Linux; Android 14; Pixel 8) Mobile Safari/537.36",
			width: 412,
			touch: true,
			want:  schemas.DeviceMobile,
		},
		{
			name:  "android without mobile token is a tablet",
			ua:    "Mozilla/5.0 (Linux; Android 14; SM-X710) Safari/537.36",
			width: 800,
			touch: true,
			want:  schemas.DeviceTablet,
		},
		{
			name:  "ipad by user agent",
			ua:    "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) Safari/605.1",
			width: 820,
			touch: true,
			want:  schemas.DeviceTablet,
		},
		{
			name:  "touch viewport in the tablet band",
			ua:    "Mozilla/5.0 (X11; Linux x86_64) Safari/537.36",
			width: 800,
			touch: true,
			want:  schemas.DeviceTablet,
		},
		{
			name:  "small touch viewport without mobile tokens",
			ua:    "Mozilla/5.0 (X11; Linux x86_64) Safari/537.36",
			width: 400,
			touch: true,
			want:  schemas.DeviceMobile,
		},
		{
			name:        "orientation support on a narrow viewport",
			ua:          "Mozilla/5.0 (X11; Linux x86_64) Safari/537.36",
			width:       880,
			orientation: true,
			want:        schemas.DeviceMobile,
		},
		{
			name:  "touch-capable desktop wider than the tablet band",
			ua:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/125.0",
			width: 1920,
			touch: true,
			want:  schemas.DeviceDesktop,
		},
		{
			name:  "tablet check wins over mobile width",
			ua:    "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) Safari/605.1",
			width: 744,
			touch: true,
			want:  schemas.DeviceTablet,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := envWith(tc.ua, tc.width, 1000, tc.touch, tc.orientation)
			c := NewClassifier(env, nil, nil, zap.NewNop())

			info := c.Classify(ctx)
			assert.Equal(t, tc.want, info.DeviceType)
			assert.Equal(t, tc.want == schemas.DeviceMobile, info.IsMobile)
			assert.Equal(t, tc.want == schemas.DeviceTablet, info.IsTablet)
		})
	}
}

func TestShouldBypassSecurity(t *testing.T) {
	ctx := context.Background()
	clock := func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	t.Run("desktop does not bypass", func(t *testing.T) {
		env := envWith("Mozilla/5.0 (X11; Linux x86_64) Chrome/125.0", 1920, 1080, false, false)
		c := NewClassifier(env, nil, clock, zap.NewNop())
		assert.False(t, c.ShouldBypassSecurity(ctx))
	})

	t.Run("mobile bypasses and audits the grant", func(t *testing.T) {
		env := envWith("Mozilla/5.0 (iPhone) Mobile/15E148", 390, 844, true, true)
		audit := NewAuditLog(storage.NewMemStore(), storage.NewMemStore(), 100, 7*24*time.Hour, clock, zap.NewNop())
		c := NewClassifier(env, audit, clock, zap.NewNop())

		require.True(t, c.ShouldBypassSecurity(ctx))

		entries := audit.Entries(ctx)
		require.Len(t, entries, 2, "classification plus bypass")
		assert.Equal(t, schemas.AuditSecurityBypassed, entries[0].Action)
		assert.Equal(t, schemas.AuditAccessGranted, entries[1].Action)
	})

	t.Run("tablet bypasses", func(t *testing.T) {
		env := envWith("Mozilla/5.0 (iPad) Safari/605.1", 820, 1180, true, true)
		c := NewClassifier(env, nil, clock, zap.NewNop())
		assert.True(t, c.ShouldBypassSecurity(ctx))
	})
}
