package bramble

// WallClock observes the wall-clock time in whole unix seconds. It ticks
// from its scheduler's frames while subscribed.
type WallClock struct {
	observer[int64]
	sched *Scheduler
	loop  frameLoop
	sec   int64
}

// NewClock builds a wall clock driven by the given options' scheduler.
func NewClock(opts ...TimedOption) *WallClock {
	cfg := newTimedConfig(opts)
	c := &WallClock{sched: cfg.sched}
	c.loop = frameLoop{sched: cfg.sched, fn: c.step}
	c.init(KindTimed, c.Current)
	c.vx.stream = true
	c.vx.open = func() func() {
		c.sec = c.sched.Now().Unix()
		c.loop.wake()
		return c.loop.sleep
	}
	return c
}

// Clock is the wall clock on DefaultScheduler.
var Clock = NewClock()

// Current returns the unix time in seconds of the scheduler's latest frame.
// Subscribed or not, the clock reads the same time as frame handlers, so a
// scheduler driven by Advance is followed in both states.
func (c *WallClock) Current() int64 {
	if c.vx.refs > 0 {
		return c.sec
	}
	return c.sched.Now().Unix()
}

func (c *WallClock) step(f Frame) {
	sec := f.Now.Unix()
	if sec == c.sec {
		return
	}
	c.sec = sec
	reportDetached(graph.touch(&c.vx))
}
