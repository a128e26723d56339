// Package app is the composition root. It owns the pipeline that a
// generation request flows through: gate verdict, quota consumption,
// webhook call, history recording.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nexla-ia/gerador-frases-ia/api/schemas"
	"github.com/nexla-ia/gerador-frases-ia/internal/device"
	"github.com/nexla-ia/gerador-frases-ia/internal/gate"
	"github.com/nexla-ia/gerador-frases-ia/internal/history"
	"github.com/nexla-ia/gerador-frases-ia/internal/metrics"
	"github.com/nexla-ia/gerador-frases-ia/internal/quota"
)

// ErrQuotaExhausted is returned when the device has spent its free
// allowance for the current window.
var ErrQuotaExhausted = errors.New("request allowance exhausted")

// ErrAccessBlocked is returned when the gate has ruled the session private.
var ErrAccessBlocked = errors.New("access blocked by privacy detection")

// CaptionGenerator is the external webhook collaborator.
type CaptionGenerator interface {
	Generate(ctx context.Context, platform, topic string) (string, error)
}

// App wires the trackers, the gate and the webhook into one pipeline.
type App struct {
	Gate       *gate.Controller
	Quota      *quota.Tracker
	History    *history.Store
	Audit      *device.AuditLog
	Classifier *device.Classifier
	Captions   CaptionGenerator
	Metrics    *metrics.Metrics

	log *zap.Logger
}

// New builds the App. metrics may be nil when no scrape endpoint is wired.
func New(g *gate.Controller, q *quota.Tracker, h *history.Store, a *device.AuditLog, cls *device.Classifier, gen CaptionGenerator, m *metrics.Metrics, logger *zap.Logger) *App {
	if m == nil {
		m = metrics.New()
	}
	return &App{
		Gate:       g,
		Quota:      q,
		History:    h,
		Audit:      a,
		Classifier: cls,
		Captions:   gen,
		Metrics:    m,
		log:        logger.Named("app"),
	}
}

// GenerateResult pairs the caption with the allowance left after the call.
type GenerateResult struct {
	Caption string             `json:"caption"`
	Status  schemas.UserStatus `json:"status"`
}

// Generate runs one request through the pipeline. The quota unit is
// consumed before the webhook call; a failed call does not refund it.
func (a *App) Generate(ctx context.Context, platform, topic string) (GenerateResult, error) {
	if state, _ := a.Gate.State(); state == schemas.GateBlocked {
		return GenerateResult{Status: a.Quota.Status(ctx)}, ErrAccessBlocked
	}

	if !a.Quota.CanMakeRequest(ctx) {
		a.Metrics.QuotaDenials.Inc()
		return GenerateResult{Status: a.Quota.Status(ctx)}, ErrQuotaExhausted
	}
	a.Quota.RecordRequest(ctx)

	caption, err := a.Captions.Generate(ctx, platform, topic)
	if err != nil {
		a.Metrics.Generations.WithLabelValues("failure").Inc()
		a.log.Warn("Caption generation failed",
			zap.String("platform", platform),
			zap.Error(err),
		)
		return GenerateResult{Status: a.Quota.Status(ctx)}, fmt.Errorf("caption generation failed: %w", err)
	}

	a.History.Add(ctx, platform, topic, caption)
	a.Metrics.Generations.WithLabelValues("success").Inc()

	return GenerateResult{
		Caption: caption,
		Status:  a.Quota.Status(ctx),
	}, nil
}

// Status returns the display projection of the device's allowance.
func (a *App) Status(ctx context.Context) schemas.UserStatus {
	return a.Quota.Status(ctx)
}
