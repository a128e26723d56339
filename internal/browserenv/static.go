// Package browserenv provides the two concrete browser runtimes the client
// can operate on: a live Chrome instance driven over the DevTools protocol,
// and a static persona-backed stand-in for offline runs and tests.
package browserenv

import (
	"context"
	"strings"

	"github.com/nexla-ia/gerador-frases-ia/api/schemas"
	"github.com/nexla-ia/gerador-frases-ia/internal/storage"
)

// Static is a persona-backed Environment. Its subsystem probes answer the
// way a regular, non-private browser session would unless their outcomes
// are overridden, which makes it the fixture of choice for detector tests
// and for running the pipeline without a browser attached.
type Static struct {
	Persona schemas.Persona

	// KV backs the persistent-storage probe. When nil the probe passes.
	KV storage.KV

	DatabaseErr      error
	QuotaBytes       int64
	QuotaSupported   bool
	PeerErr          error
	FSSupported      bool
	FSErr            error
	CanvasErr        error
	BatteryPresent   bool
	BatterySupported bool
	BatteryErr       error
}

var _ schemas.Environment = (*Static)(nil)

// NewStatic builds a Static environment whose probes report a healthy
// standard browsing session for the given persona.
func NewStatic(persona schemas.Persona, kv storage.KV) *Static {
	return &Static{
		Persona:          persona,
		KV:               kv,
		QuotaBytes:       2 << 30,
		QuotaSupported:   true,
		FSSupported:      true,
		BatteryPresent:   true,
		BatterySupported: true,
	}
}

func (s *Static) UserAgent() string          { return s.Persona.UserAgent }
func (s *Static) Platform() string           { return s.Persona.Platform }
func (s *Static) Language() string           { return s.Persona.Language }
func (s *Static) Languages() []string        { return s.Persona.Languages }
func (s *Static) ScreenWidth() int           { return s.Persona.ScreenWidth }
func (s *Static) ScreenHeight() int          { return s.Persona.ScreenHeight }
func (s *Static) TimezoneOffsetMinutes() int { return s.Persona.TimezoneOffset }
func (s *Static) HardwareConcurrency() int   { return s.Persona.HardwareConcurrency }
func (s *Static) CookiesEnabled() bool       { return s.Persona.CookiesEnabled }
func (s *Static) TouchCapable() bool         { return s.Persona.TouchCapable }
func (s *Static) HasOrientation() bool       { return s.Persona.HasOrientation }

func (s *Static) StorageCheck(ctx context.Context) error {
	if s.KV == nil {
		return nil
	}
	return storage.WriteCheck(ctx, s.KV, "static")
}

func (s *Static) OpenDatabase(context.Context) error { return s.DatabaseErr }

func (s *Static) StorageEstimate(context.Context) (int64, bool, error) {
	return s.QuotaBytes, s.QuotaSupported, nil
}

func (s *Static) CreatePeerOffer(context.Context) error { return s.PeerErr }

func (s *Static) RequestFileSystem(context.Context) (bool, error) {
	return s.FSSupported, s.FSErr
}

// CanvasData synthesizes a bitmap payload from the persona's canvas seed,
// padded past the read-back plausibility threshold.
func (s *Static) CanvasData(context.Context) (string, error) {
	if s.CanvasErr != nil {
		return "", s.CanvasErr
	}
	seed := s.Persona.CanvasSeed
	if seed == "" {
		seed = s.Persona.UserAgent + s.Persona.Platform
	}
	var b strings.Builder
	b.WriteString("data:image/png;base64,")
	for b.Len() < 160 {
		b.WriteString(seed)
	}
	return b.String(), nil
}

func (s *Static) Battery(context.Context) (bool, bool, error) {
	return s.BatteryPresent, s.BatterySupported, s.BatteryErr
}
