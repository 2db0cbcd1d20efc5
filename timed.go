package bramble

// DefaultFrequency is the angular frequency of springs built without
// WithFrequency.
const DefaultFrequency = 10.0

type timedConfig struct {
	sched *Scheduler
	freq  float64
}

// TimedOption configures a time-driven observable.
type TimedOption func(*timedConfig)

// WithScheduler drives the observable from s instead of DefaultScheduler.
func WithScheduler(s *Scheduler) TimedOption {
	return func(c *timedConfig) {
		c.sched = s
	}
}

// WithFrequency sets a spring's angular frequency. Non-positive values are
// ignored.
func WithFrequency(freq float64) TimedOption {
	return func(c *timedConfig) {
		if freq > 0 {
			c.freq = freq
		}
	}
}

func newTimedConfig(opts []TimedOption) timedConfig {
	c := timedConfig{sched: DefaultScheduler, freq: DefaultFrequency}
	for _, opt := range opts {
		opt(&c)
	}
	if c.sched == nil {
		c.sched = DefaultScheduler
	}
	return c
}

// frameLoop owns at most one frame handler registration.
type frameLoop struct {
	sched  *Scheduler
	fn     func(Frame)
	cancel func()
}

func (l *frameLoop) wake() {
	if l.cancel == nil {
		l.cancel = l.sched.OnFrame(l.fn)
	}
}

func (l *frameLoop) sleep() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

func (l *frameLoop) awake() bool {
	return l.cancel != nil
}
