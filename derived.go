package bramble

import "fmt"

// Derived is an observable computed from other observables. It subscribes
// to its sources only while it has subscribers of its own; until then
// Current recomputes on every call.
type Derived[T any] struct {
	observer[T]
	compute func() T
	sources []*vertex
	value   T
}

func newDerived[T any](compute func() T, sources ...Signal) *Derived[T] {
	d := &Derived[T]{compute: compute}
	d.init(KindDerived, d.Current)

	d.sources = make([]*vertex, len(sources))
	rank := 0
	for i, src := range sources {
		v := src.node()
		d.sources[i] = v
		if v.rank > rank {
			rank = v.rank
		}
	}
	d.vx.rank = rank + 1
	d.vx.recompute = d.recompute
	d.vx.open = d.open
	return d
}

func (d *Derived[T]) open() func() {
	retained := 0
	defer func() {
		if r := recover(); r != nil {
			for _, src := range d.sources[:retained] {
				src.removeDependent(&d.vx)
				src.release()
			}
			panic(r)
		}
	}()
	for _, src := range d.sources {
		src.retain()
		src.addDependent(&d.vx)
		retained++
	}
	d.value = d.compute()
	return func() {
		for _, src := range d.sources {
			src.removeDependent(&d.vx)
			src.release()
		}
		var zero T
		d.value = zero
	}
}

// Current returns the cached value while subscribed, otherwise it computes
// a fresh one.
func (d *Derived[T]) Current() T {
	if d.vx.refs > 0 {
		return d.value
	}
	return d.compute()
}

func (d *Derived[T]) recompute() bool {
	next := d.compute()
	if sameValue(d.value, next) {
		return false
	}
	d.value = next
	return true
}

// Map derives an observable by applying fn to a.
func Map[A, T any](a Observable[A], fn func(A) T) *Derived[T] {
	return newDerived(func() T {
		return fn(a.Current())
	}, a)
}

// Map2 derives an observable from two sources.
func Map2[A, B, T any](a Observable[A], b Observable[B], fn func(A, B) T) *Derived[T] {
	return newDerived(func() T {
		return fn(a.Current(), b.Current())
	}, a, b)
}

// Map3 derives an observable from three sources.
func Map3[A, B, C, T any](a Observable[A], b Observable[B], c Observable[C], fn func(A, B, C) T) *Derived[T] {
	return newDerived(func() T {
		return fn(a.Current(), b.Current(), c.Current())
	}, a, b, c)
}

// Combine derives an observable from any number of sources of the same type.
func Combine[A, T any](fn func([]A) T, sources ...Observable[A]) *Derived[T] {
	sigs := make([]Signal, len(sources))
	for i, src := range sources {
		sigs[i] = src
	}
	return newDerived(func() T {
		values := make([]A, len(sources))
		for i, src := range sources {
			values[i] = src.Current()
		}
		return fn(values)
	}, sigs...)
}

// Derive builds an observable from an arbitrary computation over the given
// sources. compute must only read the listed sources.
func Derive[T any](compute func() T, sources ...Signal) *Derived[T] {
	return newDerived(compute, sources...)
}

// Constant is an observable whose value never changes.
type Constant[T any] struct {
	observer[T]
	value T
}

// Const returns an observable that always holds v.
func Const[T any](v T) *Constant[T] {
	c := &Constant[T]{value: v}
	c.init(KindConstant, c.Current)
	return c
}

// Current returns the constant value.
func (c *Constant[T]) Current() T { return c.value }

// Coerce turns v into an Observable[T]. An Observable[T] is returned as is,
// a T or nil is wrapped in a constant. Any other value panics.
func Coerce[T any](v any) Observable[T] {
	switch x := v.(type) {
	case Observable[T]:
		return x
	case T:
		return Const(x)
	case nil:
		var zero T
		return Const(zero)
	}
	var zero T
	panic(fmt.Sprintf("bramble: cannot coerce %T to Observable[%T]", v, zero))
}
