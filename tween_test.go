package bramble

import (
	"testing"
	"time"

	"github.com/tanema/gween/ease"
)

func TestTweenPlay(t *testing.T) {
	sched := NewScheduler()
	tw := NewTween(0.0, Float64, WithScheduler(sched))
	var seen []float64
	tw.Subscribe(func(v float64) { seen = append(seen, v) })

	err := tw.Play(TweenParams[float64]{Start: 2, Goal: 10, Info: TweenInfo{Duration: time.Second}})
	if err != nil {
		t.Fatal(err)
	}
	if tw.Current() != 2 || !tw.Playing() {
		t.Fatalf("Play should jump to start: Current = %v", tw.Current())
	}
	_ = sched.Advance(500 * time.Millisecond)
	if !approx(tw.Current(), 6) {
		t.Errorf("halfway = %v, want 6", tw.Current())
	}
	_ = sched.Advance(600 * time.Millisecond)
	if tw.Current() != 10 || tw.Playing() {
		t.Errorf("Current = %v, Playing = %v", tw.Current(), tw.Playing())
	}
	if sched.Handlers() != 0 {
		t.Error("finished tween should release its frame handler")
	}
	if len(seen) != 3 {
		t.Errorf("seen %v, want 3 values", seen)
	}
}

func TestTweenEasing(t *testing.T) {
	sched := NewScheduler()
	tw := NewTween(0.0, Float64, WithScheduler(sched))
	tw.Subscribe(func(float64) {})
	_ = tw.Play(TweenParams[float64]{Goal: 1, Info: TweenInfo{Duration: time.Second, Easing: ease.InQuad}})
	_ = sched.Advance(500 * time.Millisecond)
	if !approx(tw.Current(), 0.25) {
		t.Errorf("InQuad halfway = %v, want 0.25", tw.Current())
	}
}

func TestTweenZeroDurationFinishesOnNextFrame(t *testing.T) {
	sched := NewScheduler()
	tw := NewTween(0.0, Float64, WithScheduler(sched))
	tw.Subscribe(func(float64) {})
	_ = tw.Play(TweenParams[float64]{Start: 1, Goal: 5})
	_ = sched.Advance(frame)
	if tw.Current() != 5 || tw.Playing() {
		t.Errorf("Current = %v, Playing = %v", tw.Current(), tw.Playing())
	}
}

func TestTweenHeldWhileUnsubscribed(t *testing.T) {
	sched := NewScheduler()
	tw := NewTween(0.0, Float64, WithScheduler(sched))
	_ = tw.Play(TweenParams[float64]{Goal: 10, Info: TweenInfo{Duration: time.Second}})
	_ = sched.Advance(500 * time.Millisecond)
	if tw.Current() != 0 || sched.Handlers() != 0 {
		t.Error("tween without subscribers should not advance")
	}
	tw.Subscribe(func(float64) {})
	_ = sched.Advance(500 * time.Millisecond)
	if !approx(tw.Current(), 5) {
		t.Errorf("Current = %v, want 5", tw.Current())
	}
}

func TestTweenStop(t *testing.T) {
	sched := NewScheduler()
	tw := NewTween(0.0, Float64, WithScheduler(sched))
	tw.Subscribe(func(float64) {})
	_ = tw.Play(TweenParams[float64]{Goal: 10, Info: TweenInfo{Duration: time.Second}})
	_ = sched.Advance(250 * time.Millisecond)
	tw.Stop()
	_ = sched.Advance(250 * time.Millisecond)
	if !approx(tw.Current(), 2.5) || tw.Playing() {
		t.Errorf("Current = %v after Stop, want 2.5", tw.Current())
	}
}

func TestTweenFrom(t *testing.T) {
	sched := NewScheduler()
	params := NewState(TweenParams[float64]{Start: 1, Goal: 1})
	tw := TweenFrom(params, Float64, WithScheduler(sched))
	if tw.Current() != 1 {
		t.Errorf("initial = %v, want the params start", tw.Current())
	}
	tw.Subscribe(func(float64) {})
	_ = params.Set(TweenParams[float64]{Start: 0, Goal: 4, Info: TweenInfo{Duration: time.Second}})
	_ = sched.Advance(250 * time.Millisecond)
	if !approx(tw.Current(), 1) {
		t.Errorf("Current = %v, want 1", tw.Current())
	}
}

func TestColorTween(t *testing.T) {
	sched := NewScheduler()
	tw := NewTween(Color{}, Colors, WithScheduler(sched))
	tw.Subscribe(func(Color) {})
	_ = tw.Play(TweenParams[Color]{Start: Color{}, Goal: ColorWhite, Info: TweenInfo{Duration: time.Second}})
	_ = sched.Advance(2 * time.Second)
	if tw.Current() != ColorWhite {
		t.Errorf("Current = %+v, want white", tw.Current())
	}
}

func TestEasedFollowsTarget(t *testing.T) {
	sched := NewScheduler()
	target := NewState(0.0)
	e := NewEased(target, TweenInfo{Duration: time.Second}, WithScheduler(sched))
	e.Subscribe(func(float64) {})

	_ = target.Set(10)
	_ = sched.Advance(500 * time.Millisecond)
	if !approx(e.Current(), 5) {
		t.Fatalf("Current = %v, want 5", e.Current())
	}

	// Retargeting eases from the current position.
	_ = target.Set(0)
	_ = sched.Advance(500 * time.Millisecond)
	if !approx(e.Current(), 2.5) {
		t.Errorf("Current = %v, want 2.5", e.Current())
	}
	_ = sched.Advance(time.Second)
	if e.Current() != 0 || sched.Handlers() != 0 {
		t.Errorf("Current = %v, handlers = %d", e.Current(), sched.Handlers())
	}
}

func TestEasedSnapsOnActivation(t *testing.T) {
	sched := NewScheduler()
	target := NewState(1.0)
	e := NewEased(target, TweenInfo{Duration: time.Second}, WithScheduler(sched))
	_ = target.Set(7)
	e.Subscribe(func(float64) {})
	if e.Current() != 7 || e.Playing() {
		t.Errorf("Current = %v, Playing = %v", e.Current(), e.Playing())
	}
}
