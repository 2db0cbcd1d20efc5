package bramble

import "math"

// springEpsilon is the distance and speed below which a spring is at rest.
const springEpsilon = 1e-3

// Spring follows a target observable with critically damped motion. It only
// simulates while subscribed and while not at rest.
type Spring[T any] struct {
	observer[T]
	target Observable[T]
	vec    Vector[T]
	freq   float64
	angle  bool
	loop   frameLoop

	pos, vel, goal []float64
	value          T
}

// SpringOf builds a spring for any value type that vec can split.
func SpringOf[T any](target Observable[T], vec Vector[T], opts ...TimedOption) *Spring[T] {
	return newSpring(target, vec, false, opts)
}

// NewSpring builds a float64 spring.
func NewSpring(target Observable[float64], opts ...TimedOption) *Spring[float64] {
	return newSpring(target, Float64, false, opts)
}

// NewAngleSpring builds a spring over radians that always takes the
// shortest way around the circle.
func NewAngleSpring(target Observable[float64], opts ...TimedOption) *Spring[float64] {
	return newSpring(target, Float64, true, opts)
}

// NewIntSpring builds a spring whose published value is rounded to an int.
func NewIntSpring(target Observable[int], opts ...TimedOption) *Spring[int] {
	return newSpring(target, Int, false, opts)
}

func newSpring[T any](target Observable[T], vec Vector[T], angle bool, opts []TimedOption) *Spring[T] {
	cfg := newTimedConfig(opts)
	s := &Spring[T]{
		target: target,
		vec:    vec,
		freq:   cfg.freq,
		angle:  angle,
		pos:    vec.split(target.Current()),
		vel:    make([]float64, vec.Dims),
		goal:   make([]float64, vec.Dims),
	}
	copy(s.goal, s.pos)
	s.value = vec.Join(s.pos)
	s.loop = frameLoop{sched: cfg.sched, fn: s.step}
	s.init(KindTimed, s.Current)
	s.vx.stream = true
	s.vx.open = s.open
	return s
}

func (s *Spring[T]) open() func() {
	s.retarget(s.target.Current())
	unsub := s.target.Subscribe(s.retarget)
	return func() {
		unsub()
		s.loop.sleep()
	}
}

// Current returns the spring's position.
func (s *Spring[T]) Current() T {
	return s.value
}

// Velocity returns the per-component velocity.
func (s *Spring[T]) Velocity() []float64 {
	out := make([]float64, len(s.vel))
	copy(out, s.vel)
	return out
}

// Impulse adds velocity to each component and wakes the spring.
func (s *Spring[T]) Impulse(dv ...float64) {
	for i := range s.vel {
		if i < len(dv) {
			s.vel[i] += dv[i]
		}
	}
	if s.vx.refs > 0 {
		s.loop.wake()
	}
}

func (s *Spring[T]) retarget(v T) {
	s.vec.Split(v, s.goal)
	if s.vx.refs > 0 && !s.atRest() {
		s.loop.wake()
	}
}

func (s *Spring[T]) displacement(i int) float64 {
	x := s.pos[i] - s.goal[i]
	if s.angle {
		x = wrapAngle(x)
	}
	return x
}

func (s *Spring[T]) atRest() bool {
	for i := range s.pos {
		if math.Abs(s.displacement(i)) > springEpsilon || math.Abs(s.vel[i]) > springEpsilon {
			return false
		}
	}
	return true
}

func (s *Spring[T]) step(f Frame) {
	dt := f.Delta.Seconds()
	if dt <= 0 {
		return
	}
	w := s.freq
	decay := math.Exp(-w * dt)
	for i := range s.pos {
		x := s.displacement(i)
		v := s.vel[i]
		k := (v + w*x) * dt
		s.pos[i] = s.goal[i] + (x+k)*decay
		s.vel[i] = (v - w*k) * decay
	}
	if s.atRest() {
		copy(s.pos, s.goal)
		clear(s.vel)
		s.loop.sleep()
	}
	s.publish()
}

func (s *Spring[T]) publish() {
	next := s.vec.Join(s.pos)
	if sameValue(s.value, next) {
		return
	}
	s.value = next
	reportDetached(graph.touch(&s.vx))
}
