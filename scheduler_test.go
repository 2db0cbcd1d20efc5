package bramble

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

func TestSchedulerStepUsesClockDelta(t *testing.T) {
	clock := clockz.NewFakeClock()
	s := NewScheduler(WithClock(clock))
	var frames []Frame
	s.OnFrame(func(f Frame) { frames = append(frames, f) })

	clock.Advance(100 * time.Millisecond)
	if err := s.Step(); err != nil {
		t.Fatal(err)
	}
	clock.Advance(50 * time.Millisecond)
	_ = s.Step()

	if len(frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(frames))
	}
	if frames[0].Delta != 100*time.Millisecond || frames[1].Delta != 50*time.Millisecond {
		t.Errorf("deltas = %v, %v", frames[0].Delta, frames[1].Delta)
	}
	if !frames[1].Now.Equal(clock.Now()) || !s.Now().Equal(clock.Now()) {
		t.Error("frame time should follow the clock")
	}
}

func TestSchedulerAdvance(t *testing.T) {
	s := NewScheduler(WithClock(clockz.NewFakeClock()))
	start := s.Now()
	var total time.Duration
	s.OnFrame(func(f Frame) { total += f.Delta })
	for i := 0; i < 4; i++ {
		_ = s.Advance(250 * time.Millisecond)
	}
	if total != time.Second {
		t.Errorf("total = %v, want 1s", total)
	}
	if got := s.Now().Sub(start); got != time.Second {
		t.Errorf("Now advanced by %v, want 1s", got)
	}
}

func TestSchedulerCancel(t *testing.T) {
	s := NewScheduler()
	calls := 0
	cancel := s.OnFrame(func(Frame) { calls++ })
	_ = s.Advance(time.Millisecond)
	cancel()
	cancel()
	_ = s.Advance(time.Millisecond)
	if calls != 1 || s.Handlers() != 0 {
		t.Errorf("calls = %d, handlers = %d", calls, s.Handlers())
	}
}

func TestSchedulerHandlerAddedDuringStepRunsNextStep(t *testing.T) {
	s := NewScheduler()
	late := 0
	added := false
	s.OnFrame(func(Frame) {
		if !added {
			added = true
			s.OnFrame(func(Frame) { late++ })
		}
	})
	_ = s.Advance(time.Millisecond)
	if late != 0 {
		t.Error("handler registered during a step ran in the same step")
	}
	_ = s.Advance(time.Millisecond)
	if late != 1 {
		t.Errorf("late = %d, want 1", late)
	}
}

func TestSchedulerFrameIsOneBatch(t *testing.T) {
	s := NewScheduler()
	a, b := NewState(0), NewState(0)
	sum := Map2(a, b, func(x, y int) int { return x + y })
	var seen []int
	sum.Subscribe(func(v int) { seen = append(seen, v) })
	s.OnFrame(func(Frame) { _ = a.Update(func(v int) int { return v + 1 }) })
	s.OnFrame(func(Frame) { _ = b.Update(func(v int) int { return v + 1 }) })

	_ = s.Advance(time.Millisecond)
	if len(seen) != 1 || seen[0] != 2 {
		t.Errorf("seen %v, want [2]", seen)
	}
}

func TestSchedulerDispatch(t *testing.T) {
	s := NewScheduler()
	st := NewState(0)
	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Dispatch(func() { _ = st.Update(func(v int) int { return v + 1 }) })
		}()
	}
	wg.Wait()
	if st.Current() != 0 {
		t.Fatal("dispatched work ran before the step")
	}
	_ = s.Step()
	if st.Current() != 10 {
		t.Errorf("Current = %d, want 10", st.Current())
	}
}

func TestSchedulerStepReturnsFailures(t *testing.T) {
	s := NewScheduler()
	st := NewState(0)
	st.Subscribe(func(int) { panic("frame listener") })
	s.OnFrame(func(Frame) { _ = st.Update(func(v int) int { return v + 1 }) })
	err := s.Advance(time.Millisecond)
	var lf *ListenerFailure
	if !errors.As(err, &lf) {
		t.Errorf("err = %v, want a ListenerFailure", err)
	}
}

func TestSchedulerRun(t *testing.T) {
	clock := clockz.NewFakeClock()
	s := NewScheduler(WithClock(clock))
	var frames atomic.Int32
	s.OnFrame(func(Frame) { frames.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, 10*time.Millisecond) }()

	// Allow the loop to arm its timer
	time.Sleep(10 * time.Millisecond)
	clock.Advance(10 * time.Millisecond)
	clock.BlockUntilReady()
	time.Sleep(10 * time.Millisecond)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	if frames.Load() != 1 {
		t.Errorf("frames = %d, want 1", frames.Load())
	}
}

func TestFrameHandlersStat(t *testing.T) {
	s := NewScheduler()
	before := ReadStats().FrameHandlers
	cancel := s.OnFrame(func(Frame) {})
	if ReadStats().FrameHandlers-before != 1 {
		t.Error("OnFrame should count a handler")
	}
	cancel()
	if ReadStats().FrameHandlers-before != 0 {
		t.Error("cancel should release the handler count")
	}
}
