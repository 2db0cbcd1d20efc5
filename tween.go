package bramble

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenInfo describes one interpolation.
type TweenInfo struct {
	Duration time.Duration
	// Easing defaults to ease.Linear.
	Easing ease.TweenFunc
}

// TweenParams describes a tween played from Start to Goal.
type TweenParams[T any] struct {
	Start T
	Goal  T
	Info  TweenInfo
}

// tweenGroup animates every component of a value with its own gween tween.
type tweenGroup struct {
	tweens []*gween.Tween
	goal   []float64
	done   bool
}

func newTweenGroup(from, to []float64, info TweenInfo) *tweenGroup {
	g := &tweenGroup{goal: make([]float64, len(to))}
	copy(g.goal, to)
	if info.Duration <= 0 {
		g.done = true
		return g
	}
	fn := info.Easing
	if fn == nil {
		fn = ease.Linear
	}
	d := float32(info.Duration.Seconds())
	g.tweens = make([]*gween.Tween, len(from))
	for i := range from {
		g.tweens[i] = gween.New(float32(from[i]), float32(to[i]), d, fn)
	}
	return g
}

// update advances the group by dt and writes the values to out. The goal is
// written exactly once the group finishes.
func (g *tweenGroup) update(dt time.Duration, out []float64) {
	if g.done {
		copy(out, g.goal)
		return
	}
	allDone := true
	for i, tw := range g.tweens {
		val, finished := tw.Update(float32(dt.Seconds()))
		out[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	if allDone {
		g.done = true
		copy(out, g.goal)
	}
}

// tweenCore is shared by Eased and Tween: a position animated by an
// optional tweenGroup while subscribed.
type tweenCore[T any] struct {
	observer[T]
	vec   Vector[T]
	loop  frameLoop
	pos   []float64
	anim  *tweenGroup
	value T
}

func (c *tweenCore[T]) setup(initial T, vec Vector[T], sched *Scheduler) {
	c.vec = vec
	c.pos = vec.split(initial)
	c.value = initial
	c.loop = frameLoop{sched: sched, fn: c.step}
	c.init(KindTimed, c.Current)
	c.vx.stream = true
}

// Current returns the interpolated value.
func (c *tweenCore[T]) Current() T {
	return c.value
}

// Playing reports whether an animation is in progress.
func (c *tweenCore[T]) Playing() bool {
	return c.anim != nil
}

func (c *tweenCore[T]) play(from, to []float64, info TweenInfo) {
	c.anim = newTweenGroup(from, to, info)
	if c.vx.refs > 0 {
		c.loop.wake()
	}
}

func (c *tweenCore[T]) step(f Frame) {
	if c.anim == nil {
		c.loop.sleep()
		return
	}
	c.anim.update(f.Delta, c.pos)
	if c.anim.done {
		c.anim = nil
		c.loop.sleep()
	}
	c.publish()
}

func (c *tweenCore[T]) publish() error {
	next := c.vec.Join(c.pos)
	if sameValue(c.value, next) {
		return nil
	}
	c.value = next
	return graph.touch(&c.vx)
}

func (c *tweenCore[T]) pause() {
	c.loop.sleep()
}

// Eased follows a target observable, easing toward every new target value
// from wherever the previous animation had reached.
type Eased[T any] struct {
	tweenCore[T]
	target Observable[T]
	info   TweenInfo
}

// NewEased builds a float64 eased follower.
func NewEased(target Observable[float64], info TweenInfo, opts ...TimedOption) *Eased[float64] {
	return EasedOf(target, Float64, info, opts...)
}

// EasedOf builds an eased follower for any value type vec can split.
func EasedOf[T any](target Observable[T], vec Vector[T], info TweenInfo, opts ...TimedOption) *Eased[T] {
	cfg := newTimedConfig(opts)
	e := &Eased[T]{target: target, info: info}
	e.setup(target.Current(), vec, cfg.sched)
	e.vx.open = e.open
	return e
}

func (e *Eased[T]) open() func() {
	e.anim = nil
	e.vec.Split(e.target.Current(), e.pos)
	e.value = e.vec.Join(e.pos)
	unsub := e.target.Subscribe(e.retarget)
	return func() {
		unsub()
		e.pause()
	}
}

func (e *Eased[T]) retarget(v T) {
	from := make([]float64, len(e.pos))
	copy(from, e.pos)
	e.play(from, e.vec.split(v), e.info)
}

// Tween plays explicit start-to-goal animations.
type Tween[T any] struct {
	tweenCore[T]
	params Observable[TweenParams[T]]
}

// NewTween builds a tween resting at initial until Play is called.
func NewTween[T any](initial T, vec Vector[T], opts ...TimedOption) *Tween[T] {
	cfg := newTimedConfig(opts)
	t := &Tween[T]{}
	t.setup(initial, vec, cfg.sched)
	t.vx.open = t.open
	return t
}

// TweenFrom builds a tween that plays every params value it observes.
func TweenFrom[T any](params Observable[TweenParams[T]], vec Vector[T], opts ...TimedOption) *Tween[T] {
	t := NewTween(params.Current().Start, vec, opts...)
	t.params = params
	return t
}

func (t *Tween[T]) open() func() {
	var unsub Unsubscribe
	if t.params != nil {
		unsub = t.params.Subscribe(func(p TweenParams[T]) {
			reportDetached(t.Play(p))
		})
	}
	if t.anim != nil {
		t.loop.wake()
	}
	return func() {
		if unsub != nil {
			unsub()
		}
		t.pause()
	}
}

// Play jumps to p.Start and animates toward p.Goal. While the tween has no
// subscribers the animation is held at its current progress.
func (t *Tween[T]) Play(p TweenParams[T]) error {
	t.vec.Split(p.Start, t.pos)
	t.play(t.vec.split(p.Start), t.vec.split(p.Goal), p.Info)
	return t.publish()
}

// Stop ends the animation where it is.
func (t *Tween[T]) Stop() {
	t.anim = nil
	t.pause()
}
