// Package identity derives the pseudo-stable per-device identifier that
// keys the quota session. The identifier is deliberately low assurance: it
// survives reloads of one profile but changes when storage is cleared, and
// collisions across devices are acceptable.
package identity

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"

	"go.uber.org/zap"

	"github.com/nexla-ia/gerador-frases-ia/api/schemas"
)

// Generator folds environment signals into a device fingerprint.
type Generator struct {
	env schemas.Environment
	now func() time.Time
	log *zap.Logger
}

// New builds a Generator. now may be nil, in which case the wall clock is
// used.
func New(env schemas.Environment, now func() time.Time, logger *zap.Logger) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{env: env, now: now, log: logger.Named("identity")}
}

// Fingerprint returns a non-empty identifier. It never fails: a degenerate
// graphics context simply omits the canvas contribution.
func (g *Generator) Fingerprint(ctx context.Context) string {
	canvas, err := g.env.CanvasData(ctx)
	if err != nil {
		// Graphics context unavailable; the remaining signals still
		// produce a usable identifier.
		g.log.Debug("Canvas contribution unavailable for fingerprint", zap.Error(err))
		canvas = ""
	}

	signals := []string{
		g.env.UserAgent(),
		g.env.Language(),
		fmt.Sprintf("%dx%d", g.env.ScreenWidth(), g.env.ScreenHeight()),
		strconv.Itoa(g.env.TimezoneOffsetMinutes()),
		strconv.Itoa(g.env.HardwareConcurrency()),
		canvas,
		g.env.Platform(),
		strconv.FormatBool(g.env.CookiesEnabled()),
	}

	hash := fold(strings.Join(signals, "|"))
	// The creation-instant suffix keeps two sessions born at different
	// times distinct even on identical environments.
	return strconv.FormatInt(hash, 36) + strconv.FormatInt(g.now().UnixMilli(), 36)
}

// fold reduces a string to the absolute value of a 32-bit accumulator via
// hash = hash*31 + codeUnit with overflow wraparound. Iteration is over
// UTF-16 code units so the result matches identifiers minted by earlier
// deployments.
func fold(s string) int64 {
	var hash int32
	for _, cu := range utf16.Encode([]rune(s)) {
		hash = hash*31 + int32(cu)
	}
	v := int64(hash)
	if v < 0 {
		v = -v
	}
	return v
}
