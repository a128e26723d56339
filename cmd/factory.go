package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nexla-ia/gerador-frases-ia/api/schemas"
	"github.com/nexla-ia/gerador-frases-ia/internal/app"
	"github.com/nexla-ia/gerador-frases-ia/internal/browserenv"
	"github.com/nexla-ia/gerador-frases-ia/internal/caption"
	"github.com/nexla-ia/gerador-frases-ia/internal/config"
	"github.com/nexla-ia/gerador-frases-ia/internal/detector"
	"github.com/nexla-ia/gerador-frases-ia/internal/device"
	"github.com/nexla-ia/gerador-frases-ia/internal/gate"
	"github.com/nexla-ia/gerador-frases-ia/internal/history"
	"github.com/nexla-ia/gerador-frases-ia/internal/identity"
	"github.com/nexla-ia/gerador-frases-ia/internal/metrics"
	"github.com/nexla-ia/gerador-frases-ia/internal/observability"
	"github.com/nexla-ia/gerador-frases-ia/internal/quota"
	"github.com/nexla-ia/gerador-frases-ia/internal/storage"
)

// Components holds the initialized services behind a command run. It
// centralizes lifecycle management so every subcommand tears down the same
// way.
type Components struct {
	Env     schemas.Environment
	KV      storage.KV
	App     *app.App
	Metrics *metrics.Metrics

	chrome *browserenv.Chrome
	redis  *storage.RedisStore
	log    *zap.Logger
}

// newComponents assembles the pipeline from the loaded configuration.
func newComponents(ctx context.Context) (*Components, error) {
	cfg := config.Get()
	logger := observability.GetLogger()

	c := &Components{log: logger}

	switch cfg.Storage.Backend {
	case "file":
		kv, err := storage.NewFileStore(cfg.Storage.ProfileDir, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open profile storage: %w", err)
		}
		c.KV = kv
	case "redis":
		kv, err := storage.NewRedisStore(ctx, cfg.Storage.RedisAddr, cfg.Storage.RedisDB, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis storage: %w", err)
		}
		c.KV = kv
		c.redis = kv
	case "memory":
		c.KV = storage.NewMemStore()
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	switch cfg.Browser.Driver {
	case "chrome":
		env, err := browserenv.NewChrome(ctx, cfg.Browser, logger)
		if err != nil {
			c.Shutdown()
			return nil, err
		}
		c.Env = env
		c.chrome = env
	case "static":
		c.Env = browserenv.NewStatic(cfg.Browser.Persona, c.KV)
	default:
		c.Shutdown()
		return nil, fmt.Errorf("unknown browser driver %q", cfg.Browser.Driver)
	}

	c.Metrics = metrics.New()

	ids := identity.New(c.Env, nil, logger)
	tracker := quota.New(c.KV, ids, cfg.Quota.MaxFreeRequests, cfg.Quota.SessionDuration, nil, logger)
	hist := history.New(c.KV, cfg.History.MaxItems, cfg.History.TTL, nil, logger)

	// The tab identifier lives in its own in-memory store so it behaves
	// like sessionStorage: one identifier per process, never persisted.
	audit := device.NewAuditLog(c.KV, storage.NewMemStore(), cfg.Audit.MaxEntries, cfg.Audit.TTL, nil, logger)
	classifier := device.NewClassifier(c.Env, audit, nil, logger)

	det := detector.New(c.Env, detector.Options{
		DatabaseTimeout: cfg.Detector.DatabaseTimeout,
		PeerTimeout:     cfg.Detector.PeerTimeout,
	}, logger)

	gateCtl := gate.New(classifier, det, cfg.Detector.Interval, cfg.Detector.FocusDebounce, logger)
	gateCtl.SetObserver(c.Metrics)

	captions := caption.New(cfg.Caption.WebhookURL, cfg.Caption.Timeout, cfg.Caption.RequestsPerSecond, logger)

	c.App = app.New(gateCtl, tracker, hist, audit, classifier, captions, c.Metrics, logger)
	return c, nil
}

// Shutdown releases the browser process and the storage connection.
func (c *Components) Shutdown() {
	if c.chrome != nil {
		c.chrome.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Warn("Failed to close redis connection", zap.Error(err))
		}
	}
}
