package bramble

// Kind identifies the variant of an observable.
type Kind uint8

const (
	KindConstant Kind = iota
	KindState
	KindDerived
	KindRecord
	KindIndexed
	KindTimed
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindConstant:
		return "constant"
	case KindState:
		return "state"
	case KindDerived:
		return "derived"
	case KindRecord:
		return "record"
	case KindIndexed:
		return "indexed"
	case KindTimed:
		return "timed"
	case KindCustom:
		return "custom"
	}
	return "unknown"
}

// Unsubscribe removes a listener. Calling it more than once is a no-op.
type Unsubscribe func()

// Signal is the type-erased half of every observable. It is sealed: only
// observables built by this package implement it.
type Signal interface {
	Kind() Kind
	node() *vertex
}

// Observable is a value that can be read at any time and that notifies
// subscribers when it changes.
type Observable[T any] interface {
	Signal

	// Current returns the present value. It never subscribes.
	Current() T

	// Subscribe registers listener to run after every change. The first
	// subscription opens the observable's update source.
	Subscribe(listener func(T)) Unsubscribe

	// SubscribeNow is Subscribe followed by an immediate call to listener
	// with the current value.
	SubscribeNow(listener func(T)) Unsubscribe
}

// nextVertexID is a plain counter; the graph is single-threaded.
var nextVertexID uint64

// vertex is the propagation node shared by every observable.
type vertex struct {
	id   uint64
	kind Kind
	rank int
	refs int

	subs       []*subscription
	dependents []*vertex

	// read returns the current value as any, used by property bindings.
	read func() any

	// open starts the update source on the 0→1 reference transition and
	// returns the function that stops it.
	open    func() func()
	closeFn func()
	stream  bool

	// recompute is set for derived vertices. It reports whether the cached
	// value changed.
	recompute func() bool

	marked bool
	queued bool
	seq    uint64
}

type subscription struct {
	fn     func()
	active bool
}

// retain adds a reference. If opening the update source panics, the
// reference is rolled back before the panic continues, so a failed open
// leaves the vertex closed.
func (v *vertex) retain() {
	v.refs++
	if v.refs > 1 || v.open == nil {
		return
	}
	stats.openSources.Add(1)
	if v.stream {
		emitStream(true, v)
	}
	opened := false
	defer func() {
		if opened {
			return
		}
		v.refs--
		stats.openSources.Add(-1)
		if v.stream {
			emitStream(false, v)
		}
	}()
	v.closeFn = v.open()
	opened = true
}

func (v *vertex) release() {
	if v.refs == 0 {
		return
	}
	v.refs--
	if v.refs > 0 || v.open == nil {
		return
	}
	stats.openSources.Add(-1)
	if fn := v.closeFn; fn != nil {
		v.closeFn = nil
		fn()
	}
	if v.stream {
		emitStream(false, v)
	}
}

func (v *vertex) subscribe(fn func()) Unsubscribe {
	v.retain()
	s := &subscription{fn: fn, active: true}
	v.subs = append(v.subs, s)
	stats.subscriptions.Add(1)
	debugCheckSubscribers(v)
	return func() {
		if !s.active {
			return
		}
		s.active = false
		v.removeSubscription(s)
		stats.subscriptions.Add(-1)
		v.release()
	}
}

func (v *vertex) removeSubscription(s *subscription) {
	for i, x := range v.subs {
		if x == s {
			copy(v.subs[i:], v.subs[i+1:])
			v.subs[len(v.subs)-1] = nil
			v.subs = v.subs[:len(v.subs)-1]
			return
		}
	}
}

func (v *vertex) addDependent(d *vertex) {
	v.dependents = append(v.dependents, d)
}

func (v *vertex) removeDependent(d *vertex) {
	for i, x := range v.dependents {
		if x == d {
			copy(v.dependents[i:], v.dependents[i+1:])
			v.dependents[len(v.dependents)-1] = nil
			v.dependents = v.dependents[:len(v.dependents)-1]
			return
		}
	}
}

// observer implements the listener half of Observable[T] for every concrete
// type. The embedding type supplies Current.
type observer[T any] struct {
	vx      vertex
	current func() T
}

func (o *observer[T]) init(kind Kind, current func() T) {
	nextVertexID++
	o.vx.id = nextVertexID
	o.vx.kind = kind
	o.current = current
	o.vx.read = func() any { return current() }
}

// Kind returns the observable's variant.
func (o *observer[T]) Kind() Kind { return o.vx.kind }

// ID returns the observable's process-unique id.
func (o *observer[T]) ID() uint64 { return o.vx.id }

func (o *observer[T]) node() *vertex { return &o.vx }

// Subscribe registers listener to run after every change.
func (o *observer[T]) Subscribe(listener func(T)) Unsubscribe {
	return o.vx.subscribe(func() { listener(o.current()) })
}

// SubscribeNow subscribes and then calls listener with the current value.
func (o *observer[T]) SubscribeNow(listener func(T)) Unsubscribe {
	unsub := o.Subscribe(listener)
	listener(o.current())
	return unsub
}

// Watch subscribes to any Signal without reading its value. It is the
// type-erased form of Subscribe.
func Watch(sig Signal, fn func()) Unsubscribe {
	return sig.node().subscribe(fn)
}

// Read returns the current value of any Signal as an untyped value.
func Read(sig Signal) any {
	return sig.node().read()
}
