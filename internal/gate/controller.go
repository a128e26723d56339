// Package gate composes the device classifier and the private-browsing
// detector into the render-or-block decision for the host UI.
package gate

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nexla-ia/gerador-frases-ia/api/schemas"
	"github.com/nexla-ia/gerador-frases-ia/internal/detector"
)

// BypassDecider is the slice of the device classifier the gate consumes.
type BypassDecider interface {
	ShouldBypassSecurity(ctx context.Context) bool
}

// Observer receives every gate decision for instrumentation.
// Implementations must be safe for concurrent use; detection results also
// arrive from the scheduler goroutine.
type Observer interface {
	ObserveDetection(isPrivate bool, positives []string)
	ObserveBypass()
}

// Controller is the access-gate state machine over
// {checking, blocked, allowed}. Internal errors in either collaborator
// resolve to allowed: blocking legitimate users is worse than letting a
// private session slip through.
type Controller struct {
	bypass   BypassDecider
	det      detector.Runner
	interval time.Duration
	debounce time.Duration
	log      *zap.Logger

	mu       sync.RWMutex
	state    schemas.GateState
	last     schemas.DetectionResult
	bypassed bool
	obs      Observer
	sched    *detector.Scheduler
}

// New builds an unmounted controller in the checking state.
func New(bypass BypassDecider, det detector.Runner, interval, debounce time.Duration, logger *zap.Logger) *Controller {
	return &Controller{
		bypass:   bypass,
		det:      det,
		interval: interval,
		debounce: debounce,
		log:      logger.Named("gate"),
		state:    schemas.GateChecking,
	}
}

// SetObserver installs the instrumentation sink. Call before Mount.
func (c *Controller) SetObserver(obs Observer) {
	c.mu.Lock()
	c.obs = obs
	c.mu.Unlock()
}

func (c *Controller) observer() Observer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.obs
}

// Mount performs the initial decision and, unless the device class
// bypasses detection, keeps re-checking on a timer and on focus events
// until Unmount.
func (c *Controller) Mount(ctx context.Context) schemas.GateState {
	c.setState(schemas.GateChecking, schemas.DetectionResult{})

	if c.decideBypass(ctx) {
		c.mu.Lock()
		c.bypassed = true
		c.mu.Unlock()
		// Synthetic non-private result: mobile and tablet sessions are
		// never blocked.
		c.setState(schemas.GateAllowed, schemas.DetectionResult{})
		if obs := c.observer(); obs != nil {
			obs.ObserveBypass()
		}
		return schemas.GateAllowed
	}

	state := c.check(ctx)

	c.mu.Lock()
	if c.sched == nil {
		c.sched = detector.NewScheduler(c.det, c.interval, c.debounce, func(res schemas.DetectionResult) {
			c.apply(res)
		}, c.log)
		c.sched.Start(ctx)
	}
	c.mu.Unlock()

	return state
}

// Unmount stops the periodic re-checks. Results from probes still in
// flight are discarded.
func (c *Controller) Unmount() {
	c.mu.Lock()
	sched := c.sched
	c.sched = nil
	c.mu.Unlock()
	if sched != nil {
		sched.Stop()
	}
}

// Retry re-runs detection from a blocked state, transiently re-entering
// checking. Bypassed sessions stay allowed.
func (c *Controller) Retry(ctx context.Context) schemas.GateState {
	c.mu.RLock()
	bypassed := c.bypassed
	c.mu.RUnlock()
	if bypassed {
		return schemas.GateAllowed
	}

	c.setState(schemas.GateChecking, schemas.DetectionResult{})
	return c.check(ctx)
}

// NotifyFocus forwards a focus-regained event to the scheduler.
func (c *Controller) NotifyFocus() {
	c.mu.RLock()
	sched := c.sched
	c.mu.RUnlock()
	if sched != nil {
		sched.NotifyFocus()
	}
}

// State returns the current gate state and the detection result that
// produced it.
func (c *Controller) State() (schemas.GateState, schemas.DetectionResult) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state, c.last
}

// decideBypass consults the classifier, failing open on panic.
func (c *Controller) decideBypass(ctx context.Context) (bypass bool) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("Device classifier panicked, failing open", zap.Any("panic", r))
			bypass = false
		}
	}()
	return c.bypass.ShouldBypassSecurity(ctx)
}

// check runs one detection and applies its verdict, failing open on panic.
func (c *Controller) check(ctx context.Context) schemas.GateState {
	result, ok := c.detect(ctx)
	if !ok {
		c.setState(schemas.GateAllowed, schemas.DetectionResult{})
		return schemas.GateAllowed
	}
	return c.apply(result)
}

func (c *Controller) detect(ctx context.Context) (result schemas.DetectionResult, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("Detector panicked, failing open", zap.Any("panic", r))
			ok = false
		}
	}()
	return c.det.Detect(ctx), true
}

func (c *Controller) apply(result schemas.DetectionResult) schemas.GateState {
	state := schemas.GateAllowed
	if result.IsPrivate {
		state = schemas.GateBlocked
	}
	c.setState(state, result)
	if obs := c.observer(); obs != nil {
		obs.ObserveDetection(result.IsPrivate, result.DetectionMethods)
	}
	return state
}

func (c *Controller) setState(state schemas.GateState, result schemas.DetectionResult) {
	c.mu.Lock()
	c.state = state
	c.last = result
	c.mu.Unlock()
}
