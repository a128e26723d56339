package detector

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nexla-ia/gerador-frases-ia/api/schemas"
)

// Runner is the slice of the detector the scheduler drives. Satisfied by
// *Detector and by test fakes.
type Runner interface {
	Detect(ctx context.Context) schemas.DetectionResult
}

// Scheduler re-runs detection on a fixed interval and on focus-regained
// events while the host UI is mounted. Focus bursts are debounced through
// a token bucket so rapid tab switches collapse into one re-check.
type Scheduler struct {
	det      Runner
	interval time.Duration
	debounce time.Duration
	onResult func(schemas.DetectionResult)
	log      *zap.Logger

	focus   chan struct{}
	limiter *rate.Limiter

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler wires a detector to a result callback. onResult runs on the
// scheduler goroutine; implementations should hand off quickly.
func NewScheduler(det Runner, interval, debounce time.Duration, onResult func(schemas.DetectionResult), logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if debounce <= 0 {
		debounce = time.Second
	}
	return &Scheduler{
		det:      det,
		interval: interval,
		debounce: debounce,
		onResult: onResult,
		log:      logger.Named("detector.scheduler"),
		focus:    make(chan struct{}, 1),
		limiter:  rate.NewLimiter(rate.Every(debounce), 1),
	}
}

// Start launches the scheduling loop. Calling Start on a running scheduler
// is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(runCtx, s.done)
}

// Stop halts the loop. In-flight probe results are discarded rather than
// delivered; there is no cancellation of the underlying operations.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// NotifyFocus signals that the window regained focus. Events arriving
// faster than the debounce window are dropped.
func (s *Scheduler) NotifyFocus() {
	select {
	case s.focus <- struct{}{}:
	default:
	}
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.run(ctx)
		case <-s.focus:
			if !s.limiter.Allow() {
				continue
			}
			// Brief settle delay after focus regain, same as the UI's
			// deferred re-check.
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.debounce):
			}
			s.run(ctx)
		}
	}
}

func (s *Scheduler) run(ctx context.Context) {
	result := s.det.Detect(ctx)
	if ctx.Err() != nil {
		// Unmounted while probes were in flight; last-write-wins, the
		// result is simply dropped.
		s.log.Debug("Discarding detection result after shutdown")
		return
	}
	if s.onResult != nil {
		s.onResult(result)
	}
}
