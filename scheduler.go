package bramble

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

// Frame describes one scheduler step.
type Frame struct {
	// Now is the time of this step.
	Now time.Time
	// Delta is the time elapsed since the previous step.
	Delta time.Duration
}

// Scheduler is the frame clock that drives time-based observables. Handlers
// registered with OnFrame run on every step inside a single Batch, so all
// animated values of one frame are observed together.
//
// A Scheduler is driven from the graph's goroutine with Step or Advance.
// Dispatch is the only method that may be called from other goroutines.
type Scheduler struct {
	clock clockz.Clock
	last  time.Time
	now   time.Time

	handlers []*frameHandler

	mu     sync.Mutex
	queued []func()
}

type frameHandler struct {
	fn     func(Frame)
	active bool
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithClock sets the time source used by Step and Run. Use this with
// clockz.FakeClock for deterministic tests.
func WithClock(clock clockz.Clock) SchedulerOption {
	return func(s *Scheduler) {
		s.clock = clock
	}
}

// NewScheduler creates a Scheduler using the real clock unless WithClock is
// given.
func NewScheduler(opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{clock: clockz.RealClock}
	for _, opt := range opts {
		opt(s)
	}
	s.last = s.clock.Now()
	s.now = s.last
	return s
}

// DefaultScheduler drives time-based observables built without
// WithScheduler.
var DefaultScheduler = NewScheduler()

// Now returns the time of the most recent step.
func (s *Scheduler) Now() time.Time {
	return s.now
}

// Clock returns the scheduler's time source.
func (s *Scheduler) Clock() clockz.Clock {
	return s.clock
}

// Handlers returns the number of registered frame handlers.
func (s *Scheduler) Handlers() int {
	return len(s.handlers)
}

// OnFrame registers fn to run on every step until cancel is called. A
// handler registered during a step first runs on the next step.
func (s *Scheduler) OnFrame(fn func(Frame)) (cancel func()) {
	h := &frameHandler{fn: fn, active: true}
	s.handlers = append(s.handlers, h)
	stats.frameHandlers.Add(1)
	return func() {
		if !h.active {
			return
		}
		h.active = false
		stats.frameHandlers.Add(-1)
		for i, x := range s.handlers {
			if x == h {
				copy(s.handlers[i:], s.handlers[i+1:])
				s.handlers[len(s.handlers)-1] = nil
				s.handlers = s.handlers[:len(s.handlers)-1]
				break
			}
		}
	}
}

// Dispatch queues fn to run on the graph's goroutine at the start of the
// next step. It is safe to call from any goroutine.
func (s *Scheduler) Dispatch(fn func()) {
	s.mu.Lock()
	s.queued = append(s.queued, fn)
	s.mu.Unlock()
}

// Step advances by the time elapsed on the scheduler's clock since the
// previous step.
func (s *Scheduler) Step() error {
	now := s.clock.Now()
	dt := now.Sub(s.last)
	if dt < 0 {
		dt = 0
	}
	return s.step(now, dt)
}

// Advance steps by a fixed delta regardless of the clock.
func (s *Scheduler) Advance(dt time.Duration) error {
	return s.step(s.now.Add(dt), dt)
}

func (s *Scheduler) step(now time.Time, dt time.Duration) error {
	s.last = now
	s.now = now

	var errs []error
	for _, fn := range s.drain() {
		if err := Batch(fn); err != nil {
			errs = append(errs, err)
		}
	}

	if len(s.handlers) > 0 {
		handlers := make([]*frameHandler, len(s.handlers))
		copy(handlers, s.handlers)
		f := Frame{Now: now, Delta: dt}
		err := Batch(func() {
			for _, h := range handlers {
				if h.active {
					h.fn(f)
				}
			}
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Scheduler) drain() []func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queued) == 0 {
		return nil
	}
	q := s.queued
	s.queued = nil
	return q
}

// Run steps the scheduler every interval until ctx is done. Failures of
// individual steps are reported in debug mode and do not stop the loop.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	timer := s.clock.NewTimer(interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C():
			reportDetached(s.Step())
			timer.Reset(interval)
		}
	}
}
