package engine

import (
	"context"
	"sync"
	"time"

	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/logger"
)

// DefaultTickRate is how often the simulation advances in real time.
const DefaultTickRate = 100 * time.Millisecond

// Stepper advances the simulation by a wall-clock delta.
type Stepper interface {
	Update(delta time.Duration)
}

// Ticker manages the game loop heartbeat.
// It does NOT know about energy or money - only elapsed time.
type Ticker struct {
	stepper  Stepper
	clock    TimeProvider
	interval time.Duration
	logger   *logger.Logger

	mu       sync.Mutex
	running  bool
	last     time.Time
	stopChan chan struct{}
	done     chan struct{}
}

// NewTicker creates a stopped ticker.
func NewTicker(stepper Stepper, clock TimeProvider, interval time.Duration, log *logger.Logger) *Ticker {
	if interval <= 0 {
		interval = DefaultTickRate
	}
	if clock == nil {
		clock = RealTimeProvider{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Ticker{
		stepper:  stepper,
		clock:    clock,
		interval: interval,
		logger:   log,
		last:     clock.Now(),
	}
}

// Start begins the loop in its own goroutine. Calling Start on a running ticker does nothing.
func (t *Ticker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.running = true
	t.last = t.clock.Now()
	t.stopChan = make(chan struct{})
	t.done = make(chan struct{})

	t.logger.Info("ticker started", "interval", t.interval)
	go t.loop(ctx, t.stopChan, t.done)
}

func (t *Ticker) loop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("ticker stopped by context")
			t.mu.Lock()
			t.running = false
			t.mu.Unlock()
			return
		case <-stop:
			t.logger.Info("ticker stopped")
			return
		case <-ticker.C:
			select {
			case <-stop:
				return
			default:
			}
			t.Frame()
		}
	}
}

// Stop halts the loop at its next wakeup; a frame already running completes.
// Safe to call repeatedly and from inside an event handler.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.running = false
	close(t.stopChan)
}

// Done is closed when the loop goroutine has exited. Nil before the first Start.
func (t *Ticker) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Running reports whether the loop is active.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Frame measures the time since the previous frame and steps the simulation by it.
func (t *Ticker) Frame() {
	now := t.clock.Now()
	t.mu.Lock()
	delta := now.Sub(t.last)
	t.last = now
	t.mu.Unlock()

	if delta < 0 {
		delta = 0
	}
	t.stepper.Update(delta)
}
