package bramble

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// childGroup is the set of children mounted by one MapChildren directive,
// identified by I.
type childGroup[I comparable] struct {
	m     *mounted
	path  string
	live  map[I]*VirtualInstance
	names map[I]string
}

func (g *childGroup[I]) has(id I) bool {
	_, ok := g.live[id]
	return ok
}

func (g *childGroup[I]) mount(id I, name string, child *VirtualInstance) error {
	if child == nil {
		return nil
	}
	p := placement{host: g.m.host, parent: g.m.node, key: name, path: g.path + "/" + name}
	if err := child.mountAt(p); err != nil {
		return err
	}
	g.live[id] = child
	g.names[id] = name
	return nil
}

func (g *childGroup[I]) unmount(id I) error {
	child, ok := g.live[id]
	if !ok {
		return nil
	}
	delete(g.live, id)
	delete(g.names, id)
	return child.unmount()
}

// ids returns the live identities ordered by child name.
func (g *childGroup[I]) ids() []I {
	ids := make([]I, 0, len(g.live))
	for id := range g.live {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b I) int {
		return strings.Compare(g.names[a], g.names[b])
	})
	return ids
}

func (g *childGroup[I]) clear() error {
	ids := g.ids()
	var errs []error
	for i := len(ids) - 1; i >= 0; i-- {
		errs = append(errs, g.unmount(ids[i]))
	}
	return errors.Join(errs...)
}

// dynamicChildren adds a directive that reconciles children against source
// while vi is mounted. newSync is called once per mount so that per-mount
// bookkeeping starts empty.
func dynamicChildren[T any, I comparable](vi *VirtualInstance, source Observable[T], newSync func() func(*childGroup[I], T) error) {
	vi.push(directive{kind: dirMapChildren, dynamic: func(m *mounted, path string) (func() error, error) {
		g := &childGroup[I]{
			m:     m,
			path:  path,
			live:  make(map[I]*VirtualInstance),
			names: make(map[I]string),
		}
		sync := newSync()
		unsub := source.Subscribe(func(v T) {
			if err := sync(g, v); err != nil {
				panic(err)
			}
		})
		if err := sync(g, source.Current()); err != nil {
			unsub()
			return nil, errors.Join(err, g.clear())
		}
		return func() error {
			unsub()
			return g.clear()
		}, nil
	}})
}

// MapChildren mounts one child per entry of source. A child is replaced
// when its value changes and unmounted when its key disappears. Children are
// named after their keys.
func MapChildren[K comparable, V any](vi *VirtualInstance, source Observable[map[K]V], render func(key K, value V) *VirtualInstance) {
	dynamicChildren(vi, source, func() func(*childGroup[K], map[K]V) error {
		values := make(map[K]V)
		return func(g *childGroup[K], next map[K]V) error {
			var errs []error
			for _, k := range g.ids() {
				if v, ok := next[k]; !ok || !sameValue(values[k], v) {
					errs = append(errs, g.unmount(k))
					delete(values, k)
				}
			}
			for _, k := range orderedKeys(next) {
				if g.has(k) {
					continue
				}
				v := next[k]
				if err := g.mount(k, fmt.Sprint(k), render(k, v)); err != nil {
					errs = append(errs, err)
					continue
				}
				values[k] = v
			}
			return errors.Join(errs...)
		}
	})
}

// MapChildrenByKey mounts one child per key of source. The child is built
// once per key and receives the key's value as an observable, so value
// changes update it in place.
func MapChildrenByKey[K comparable, V any](vi *VirtualInstance, source Observable[map[K]V], render func(key K, value Observable[V]) *VirtualInstance) {
	dynamicChildren(vi, source, func() func(*childGroup[K], map[K]V) error {
		states := make(map[K]*State[V])
		return func(g *childGroup[K], next map[K]V) error {
			var errs []error
			for _, k := range g.ids() {
				if _, ok := next[k]; !ok {
					errs = append(errs, g.unmount(k))
					delete(states, k)
				}
			}
			for _, k := range orderedKeys(next) {
				v := next[k]
				if st, ok := states[k]; ok {
					errs = append(errs, st.Set(v))
					continue
				}
				st := NewState(v)
				if err := g.mount(k, fmt.Sprint(k), render(k, st)); err != nil {
					errs = append(errs, err)
					continue
				}
				if g.has(k) {
					states[k] = st
				}
			}
			return errors.Join(errs...)
		}
	})
}

// MapChildrenByValue mounts one child per distinct value of source. The
// child receives the value's key as an observable, so a value moving to a
// new key keeps its child. Children are named after their values. When
// several keys hold the same value the first key in name order wins.
func MapChildrenByValue[K comparable, V comparable](vi *VirtualInstance, source Observable[map[K]V], render func(value V, key Observable[K]) *VirtualInstance) {
	dynamicChildren(vi, source, func() func(*childGroup[V], map[K]V) error {
		keys := make(map[V]*State[K])
		return func(g *childGroup[V], next map[K]V) error {
			byValue := make(map[V]K, len(next))
			var order []V
			for _, k := range orderedKeys(next) {
				v := next[k]
				if _, seen := byValue[v]; seen {
					continue
				}
				byValue[v] = k
				order = append(order, v)
			}

			var errs []error
			for _, v := range g.ids() {
				if _, ok := byValue[v]; !ok {
					errs = append(errs, g.unmount(v))
					delete(keys, v)
				}
			}
			for _, v := range order {
				k := byValue[v]
				if st, ok := keys[v]; ok {
					errs = append(errs, st.Set(k))
					continue
				}
				st := NewState(k)
				if err := g.mount(v, fmt.Sprint(v), render(v, st)); err != nil {
					errs = append(errs, err)
					continue
				}
				if g.has(v) {
					keys[v] = st
				}
			}
			return errors.Join(errs...)
		}
	})
}

// orderedKeys returns the keys of m sorted by their printed form.
func orderedKeys[K comparable, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b K) int {
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	})
	return keys
}
