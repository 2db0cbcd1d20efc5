package bramble

// State is a writable observable holding a single value.
type State[T any] struct {
	observer[T]
	value T
	equal func(a, b T) bool
}

// StateOption configures a State.
type StateOption[T any] func(*State[T])

// WithEqual replaces the default == comparison used to suppress writes that
// do not change the value.
func WithEqual[T any](equal func(a, b T) bool) StateOption[T] {
	return func(s *State[T]) {
		s.equal = equal
	}
}

// NewState creates a State holding initial.
func NewState[T any](initial T, opts ...StateOption[T]) *State[T] {
	s := &State[T]{value: initial}
	for _, opt := range opts {
		opt(s)
	}
	s.init(KindState, s.Current)
	return s
}

// Current returns the stored value.
func (s *State[T]) Current() T {
	return s.value
}

// Set stores value and notifies subscribers if it differs from the current
// value. Called from a listener, the write is queued until the running
// update settles. The returned error joins every listener failure caused by
// this write.
func (s *State[T]) Set(value T) error {
	return graph.write(func() {
		s.apply(value)
	})
}

// Update sets the value to fn applied to the value present when the write
// is applied.
func (s *State[T]) Update(fn func(T) T) error {
	return graph.write(func() {
		s.apply(fn(s.value))
	})
}

func (s *State[T]) apply(value T) {
	if s.same(s.value, value) {
		return
	}
	s.value = value
	graph.mark(&s.vx)
}

func (s *State[T]) same(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return sameValue(a, b)
}
