package bramble

import (
	"cmp"
	"iter"
	"maps"
	"slices"
	"weak"
)

// Record is a writable keyed collection. The record itself is an observable
// of the whole map, and Index returns a per-key observable that is only
// notified when its own key changes.
type Record[K comparable, V any] struct {
	observer[map[K]V]
	data   map[K]V
	shared bool

	registry map[K]weak.Pointer[Indexed[K, V]]
	pinned   map[K]*Indexed[K, V]

	fallback    V
	hasFallback bool
}

// RecordOption configures a Record.
type RecordOption[K comparable, V any] func(*Record[K, V])

// WithFallback makes missing keys read as v instead of failing Get.
func WithFallback[K comparable, V any](v V) RecordOption[K, V] {
	return func(r *Record[K, V]) {
		r.fallback = v
		r.hasFallback = true
	}
}

// NewRecord creates a Record holding a copy of initial.
func NewRecord[K comparable, V any](initial map[K]V, opts ...RecordOption[K, V]) *Record[K, V] {
	r := &Record[K, V]{
		data:     maps.Clone(initial),
		registry: make(map[K]weak.Pointer[Indexed[K, V]]),
		pinned:   make(map[K]*Indexed[K, V]),
	}
	if r.data == nil {
		r.data = make(map[K]V)
	}
	for _, opt := range opts {
		opt(r)
	}
	r.init(KindRecord, r.Current)
	return r
}

// Current returns a snapshot of the record. The snapshot must not be
// modified; later writes copy the map instead of changing it.
//
// The copy is made once per snapshot, by the first write after it was
// taken, so every notified Set of a record with value subscribers costs a
// copy of the map. Listeners that only need some keys should use Index, or
// Watch the record and read it through Get or All, which take no snapshot.
func (r *Record[K, V]) Current() map[K]V {
	r.shared = true
	return r.data
}

// All iterates the record's entries in unspecified order without taking a
// snapshot. The record must not be written during the iteration.
func (r *Record[K, V]) All() iter.Seq2[K, V] {
	return maps.All(r.data)
}

// Len returns the number of keys.
func (r *Record[K, V]) Len() int {
	return len(r.data)
}

// Get returns the value stored under key. A missing key yields the fallback
// when one was configured, otherwise an *UnknownKeyError.
func (r *Record[K, V]) Get(key K) (V, error) {
	if v, ok := r.data[key]; ok {
		return v, nil
	}
	if r.hasFallback {
		return r.fallback, nil
	}
	var zero V
	return zero, &UnknownKeyError{Key: key}
}

// Set stores value under key. Subscribers of the record and of Index(key)
// are notified; other indexed observables are not.
func (r *Record[K, V]) Set(key K, value V) error {
	return graph.write(func() {
		if old, ok := r.data[key]; ok && sameValue(old, value) {
			return
		}
		r.own()
		r.data[key] = value
		graph.mark(&r.vx)
		if ix := r.lookup(key); ix != nil {
			graph.mark(&ix.vx)
		}
	})
}

// Delete removes key. Subscribers of Index(key) observe the key as absent.
func (r *Record[K, V]) Delete(key K) error {
	return graph.write(func() {
		if _, ok := r.data[key]; !ok {
			return
		}
		r.own()
		delete(r.data, key)
		graph.mark(&r.vx)
		if ix := r.lookup(key); ix != nil {
			graph.mark(&ix.vx)
		}
	})
}

// Replace swaps the whole map. Indexed observables are notified when their
// key's value or presence changed.
func (r *Record[K, V]) Replace(m map[K]V) error {
	next := maps.Clone(m)
	if next == nil {
		next = make(map[K]V)
	}
	return graph.write(func() {
		prev := r.data
		r.data = next
		r.shared = false
		graph.mark(&r.vx)

		var touched []*Indexed[K, V]
		for key := range r.registry {
			ix := r.lookup(key)
			if ix == nil {
				continue
			}
			old, had := prev[key]
			cur, has := next[key]
			if had != has || (has && !sameValue(old, cur)) {
				touched = append(touched, ix)
			}
		}
		slices.SortFunc(touched, func(a, b *Indexed[K, V]) int {
			return cmp.Compare(a.vx.id, b.vx.id)
		})
		for _, ix := range touched {
			graph.mark(&ix.vx)
		}
	})
}

// Index returns the observable for a single key. The same observable is
// returned while anything still references it or subscribes to it.
func (r *Record[K, V]) Index(key K) *Indexed[K, V] {
	if ix := r.lookup(key); ix != nil {
		return ix
	}
	ix := &Indexed[K, V]{record: r, key: key}
	ix.init(KindIndexed, ix.Current)
	ix.vx.open = func() func() {
		r.pinned[key] = ix
		return func() {
			if r.pinned[key] == ix {
				delete(r.pinned, key)
			}
		}
	}
	r.registry[key] = weak.Make(ix)
	return ix
}

// lookup returns the live indexed observable for key, pruning a dead entry.
func (r *Record[K, V]) lookup(key K) *Indexed[K, V] {
	wp, ok := r.registry[key]
	if !ok {
		return nil
	}
	ix := wp.Value()
	if ix == nil {
		delete(r.registry, key)
	}
	return ix
}

// indexed returns the number of live registry entries after pruning.
func (r *Record[K, V]) indexed() int {
	for key := range r.registry {
		r.lookup(key)
	}
	return len(r.registry)
}

func (r *Record[K, V]) own() {
	if r.shared {
		r.data = maps.Clone(r.data)
		r.shared = false
	}
}

// Indexed is the observable for one key of a Record. It is writable: Set
// writes through to the record.
type Indexed[K comparable, V any] struct {
	observer[V]
	record *Record[K, V]
	key    K
}

// Key returns the key this observable tracks.
func (ix *Indexed[K, V]) Key() K { return ix.key }

// Current returns the value under the key, or the record's fallback (the
// zero value if none) when the key is absent.
func (ix *Indexed[K, V]) Current() V {
	if v, ok := ix.record.data[ix.key]; ok {
		return v
	}
	return ix.record.fallback
}

// Lookup returns the value and whether the key is present.
func (ix *Indexed[K, V]) Lookup() (V, bool) {
	v, ok := ix.record.data[ix.key]
	return v, ok
}

// Set writes value to the record under this key.
func (ix *Indexed[K, V]) Set(value V) error {
	return ix.record.Set(ix.key, value)
}

// Delete removes this key from the record.
func (ix *Indexed[K, V]) Delete() error {
	return ix.record.Delete(ix.key)
}
