// Package detector implements the private-browsing detection engine: eight
// independent probes against browser subsystems, folded into a confidence
// score and a boolean verdict. The accept-language heuristic is dominant
// evidence and can trigger the verdict on its own.
package detector

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nexla-ia/gerador-frases-ia/api/schemas"
)

// Confidence floor applied whenever the accept-language probe fires, and
// the threshold the remaining probes must reach on their own.
const (
	dominantFloor    = 75.0
	verdictThreshold = 50.0
	shortAcceptLang  = 30
	minCanvasData    = 100
	minStorageQuota  = 120_000_000 // bytes; smaller quotas correlate with ephemeral storage
)

// Probe is one isolated detection method. Run reports whether the probe
// found evidence of a private session; a returned error is treated as a
// positive signal by the aggregator, so probes that must fail open swallow
// their errors internally.
type Probe struct {
	Name string
	Run  func(ctx context.Context, env schemas.Environment) (bool, error)
}

// Options tune the per-probe timeouts.
type Options struct {
	DatabaseTimeout time.Duration
	PeerTimeout     time.Duration
}

func (o *Options) setDefaults() {
	if o.DatabaseTimeout <= 0 {
		o.DatabaseTimeout = time.Second
	}
	if o.PeerTimeout <= 0 {
		o.PeerTimeout = 2 * time.Second
	}
}

// Detector runs the probe set against an environment. Each Detect call is
// independent and idempotent; the only shared state is the last computed
// result.
type Detector struct {
	env    schemas.Environment
	probes []Probe
	log    *zap.Logger

	mu   sync.RWMutex
	last schemas.DetectionResult
}

// New assembles the standard eight-probe detector.
func New(env schemas.Environment, opts Options, logger *zap.Logger) *Detector {
	opts.setDefaults()
	return &Detector{
		env:    env,
		probes: standardProbes(opts),
		log:    logger.Named("detector"),
	}
}

// Detect runs every probe concurrently, waits for all of them to settle
// and folds the results by probe position. One probe failing or hanging
// (bounded by its own timeout) never aborts the others.
func (d *Detector) Detect(ctx context.Context) schemas.DetectionResult {
	positives := make([]bool, len(d.probes))

	g, gctx := errgroup.WithContext(ctx)
	for i, probe := range d.probes {
		g.Go(func() error {
			hit, err := probe.Run(gctx, d.env)
			if err != nil {
				// A broken subsystem is itself evidence of a locked-down
				// session.
				d.log.Debug("Probe failed, counting as positive",
					zap.String("probe", probe.Name), zap.Error(err))
				hit = true
			}
			positives[i] = hit
			return nil
		})
	}
	// Probes only ever return nil; the group is used for the fan-out and
	// collective wait.
	_ = g.Wait()

	methods := make([]string, 0, len(d.probes))
	positiveCount := 0
	for i, probe := range d.probes {
		if positives[i] {
			positiveCount++
			methods = append(methods, probe.Name)
		}
	}

	confidence := float64(positiveCount) / float64(len(d.probes)) * 100
	dominant := positives[0] // accept-language is always probe 0
	if dominant && confidence < dominantFloor {
		confidence = dominantFloor
	}

	result := schemas.DetectionResult{
		IsPrivate:        dominant || confidence >= verdictThreshold,
		DetectionMethods: methods,
		Confidence:       confidence,
		AcceptLanguage:   languageSnapshot(d.env),
	}

	d.mu.Lock()
	d.last = result
	d.mu.Unlock()

	if result.IsPrivate {
		d.log.Info("Private browsing detected",
			zap.Float64("confidence", result.Confidence),
			zap.Strings("methods", result.DetectionMethods),
		)
	} else {
		d.log.Debug("Normal browsing detected", zap.Float64("confidence", result.Confidence))
	}
	return result
}

// LastResult returns the most recently computed result.
func (d *Detector) LastResult() schemas.DetectionResult {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.last
}

// languageSnapshot records the negotiated languages for diagnostics: the
// primary language followed by the secondary preferences.
func languageSnapshot(env schemas.Environment) string {
	langs := env.Languages()
	if len(langs) <= 1 {
		return env.Language()
	}
	return env.Language() + "," + strings.Join(langs[1:], ",")
}
