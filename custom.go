package bramble

// Custom is an observable backed by an external value and update stream.
type Custom[T any] struct {
	observer[T]
	get func() T
}

// NewCustom builds an observable whose value is read by getCurrent. The
// stream is opened with openStream when the first subscriber arrives and
// closed with the function it returns when the last one leaves. The stream
// calls notify after every change to the external value.
func NewCustom[T any](getCurrent func() T, openStream func(notify func()) (close func())) *Custom[T] {
	c := &Custom[T]{get: getCurrent}
	c.init(KindCustom, c.Current)
	c.vx.stream = true
	c.vx.open = func() func() {
		return openStream(c.notify)
	}
	return c
}

// Current reads the external value.
func (c *Custom[T]) Current() T {
	return c.get()
}

// Active reports whether the update stream is open.
func (c *Custom[T]) Active() bool {
	return c.vx.refs > 0
}

func (c *Custom[T]) notify() {
	reportDetached(graph.touch(&c.vx))
}
