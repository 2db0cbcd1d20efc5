package bramble

import "time"

// TimerProps configures NewTimer.
type TimerProps struct {
	// Duration is the countdown length. It must be positive.
	Duration time.Duration
	// IsPlaying pauses the timer while it holds false.
	IsPlaying Observable[bool]
	// PlayOnChange restarts the timer every time it changes.
	PlayOnChange Signal
}

// StopwatchProps configures NewStopwatch.
type StopwatchProps struct {
	// Duration caps the elapsed time when positive.
	Duration time.Duration
	// IsPlaying pauses the stopwatch while it holds false.
	IsPlaying Observable[bool]
	// PlayOnChange restarts the stopwatch every time it changes.
	PlayOnChange Signal
}

// chrono accumulates elapsed frame time while playing. Its value is in
// seconds.
type chrono struct {
	observer[float64]
	duration  time.Duration
	countdown bool
	gate      Observable[bool]
	trigger   Signal
	loop      frameLoop

	elapsed time.Duration
	playing bool
}

func (c *chrono) setup(duration time.Duration, countdown bool, gate Observable[bool], trigger Signal, opts []TimedOption) {
	cfg := newTimedConfig(opts)
	c.duration = duration
	c.countdown = countdown
	c.gate = gate
	c.trigger = trigger
	c.loop = frameLoop{sched: cfg.sched, fn: c.step}
	c.init(KindTimed, c.Current)
	c.vx.stream = true
	c.vx.open = c.open
}

func (c *chrono) open() func() {
	var unsubs []Unsubscribe
	defer func() {
		if r := recover(); r != nil {
			for _, unsub := range unsubs {
				unsub()
			}
			panic(r)
		}
	}()
	if c.trigger != nil {
		unsubs = append(unsubs, c.trigger.node().subscribe(func() {
			reportDetached(c.Restart())
		}))
	}
	if c.gate != nil {
		unsubs = append(unsubs, c.gate.SubscribeNow(c.setPlaying))
	} else {
		c.setPlaying(true)
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
		c.loop.sleep()
	}
}

// Current returns the remaining seconds for a timer or the elapsed seconds
// for a stopwatch.
func (c *chrono) Current() float64 {
	if c.countdown {
		return (c.duration - c.elapsed).Seconds()
	}
	return c.elapsed.Seconds()
}

// Elapsed returns the accumulated playing time.
func (c *chrono) Elapsed() time.Duration {
	return c.elapsed
}

// Finished reports whether a bounded count has reached its end.
func (c *chrono) Finished() bool {
	return c.duration > 0 && c.elapsed >= c.duration
}

// Restart resets the elapsed time to zero and resumes counting if playing.
func (c *chrono) Restart() error {
	changed := c.elapsed != 0
	c.elapsed = 0
	c.sync()
	if !changed {
		return nil
	}
	return graph.touch(&c.vx)
}

func (c *chrono) setPlaying(playing bool) {
	c.playing = playing
	c.sync()
}

func (c *chrono) sync() {
	if c.vx.refs > 0 && c.playing && !c.Finished() {
		c.loop.wake()
		return
	}
	c.loop.sleep()
}

func (c *chrono) step(f Frame) {
	if f.Delta <= 0 {
		return
	}
	c.elapsed += f.Delta
	if c.duration > 0 && c.elapsed > c.duration {
		c.elapsed = c.duration
	}
	c.sync()
	reportDetached(graph.touch(&c.vx))
}

// Timer counts down from its duration to zero and then holds at zero.
type Timer struct {
	chrono
}

// NewTimer builds a countdown. It panics if props.Duration is not positive.
func NewTimer(props TimerProps, opts ...TimedOption) *Timer {
	if props.Duration <= 0 {
		panic("bramble: timer duration must be positive")
	}
	t := &Timer{}
	t.setup(props.Duration, true, props.IsPlaying, props.PlayOnChange, opts)
	return t
}

// Stopwatch counts up from zero, holding at its duration when one is set.
type Stopwatch struct {
	chrono
}

// NewStopwatch builds a stopwatch.
func NewStopwatch(props StopwatchProps, opts ...TimedOption) *Stopwatch {
	s := &Stopwatch{}
	s.setup(props.Duration, false, props.IsPlaying, props.PlayOnChange, opts)
	return s
}
