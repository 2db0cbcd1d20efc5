package bramble

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/zoobzio/capitan"
)

// mounted is the live state of a mounted instance.
type mounted struct {
	vi    *VirtualInstance
	node  Node
	host  Host
	owned bool
	path  string

	// slots unmount children, in reverse order.
	slots []func() error
	// cleanups tear down bindings, in reverse order.
	cleanups   []func()
	unmountCbs []func()

	live       bool
	unmounting bool
}

// placement says where an instance mounts.
type placement struct {
	host   Host
	parent Node
	key    string
	// target is the node a Premade instance decorates at the root.
	target Node
	path   string
}

func (p placement) child(node Node, key string) placement {
	return placement{host: p.host, parent: node, key: key, path: p.path + "/" + key}
}

func (vi *VirtualInstance) mountAt(p placement) (err error) {
	if vi.combinedInto != nil {
		return &MountError{Path: p.path, Err: &InvalidCombineError{
			Target: vi.combinedInto.id,
			Other:  vi.id,
			Reason: "instance was consumed by Combine",
		}}
	}
	if vi.mount != nil {
		return &MountError{Path: p.path, Err: ErrAlreadyMounted}
	}
	vi.frozen = true

	var m *mounted
	defer func() {
		if r := recover(); r != nil {
			err = &MountError{Path: p.path, Err: recoveredError(r)}
		}
		if err != nil && m != nil {
			_ = vi.unmount()
		}
	}()

	node, owned, err := vi.acquire(p)
	if err != nil {
		return &MountError{Path: p.path, Err: err}
	}
	m = &mounted{vi: vi, node: node, host: p.host, owned: owned, path: p.path}
	vi.mount = m
	vi.state = Mounted

	var onMount, onUnmount []func()
	var children []directive
	for _, d := range vi.directives {
		switch d.kind {
		case dirSetProperties:
			err = m.bindValues(d.values, false)
		case dirSetAttributes:
			err = m.bindValues(d.values, true)
		case dirAddTags:
			err = m.bindTags(d.tags)
		case dirConnect:
			err = m.connect(d.event, d.handler)
		case dirOutput:
			err = m.bindOutput(d.out)
		case dirCombine:
			if d.class != "" && !node.IsA(d.class) {
				err = &InvalidCombineError{Target: vi.id, Reason: fmt.Sprintf("node of class %q is not a %q", node.ClassName(), d.class)}
			}
		case dirOnMount:
			onMount = append(onMount, d.callback)
		case dirOnUnmount:
			onUnmount = append(onUnmount, d.callback)
		case dirAddChildren, dirFindChild, dirMapChildren:
			children = append(children, d)
		}
		if err != nil {
			return m.wrap(err)
		}
	}

	for _, d := range children {
		switch d.kind {
		case dirAddChildren:
			for _, key := range sortedKeys(d.children) {
				if err = m.mountSlot(p, key, d.children[key]); err != nil {
					return m.wrap(err)
				}
			}
		case dirFindChild:
			if err = m.mountStatic(p.child(node, d.key), d.child); err != nil {
				return m.wrap(err)
			}
		case dirMapChildren:
			var unmount func() error
			if unmount, err = d.dynamic(m, p.path); err != nil {
				return m.wrap(err)
			}
			m.slots = append(m.slots, unmount)
		}
	}

	if owned && p.parent != nil {
		node.SetParent(p.parent)
	}

	m.unmountCbs = onUnmount
	for _, fn := range onMount {
		if err = callOnMount(fn); err != nil {
			return m.wrap(err)
		}
	}

	m.live = true
	stats.mounted.Add(1)
	capitan.Emit(context.Background(), InstanceMounted,
		KeyInstance.Field(int(vi.id)),
		KeyClassName.Field(vi.className),
		KeyPath.Field(p.path),
	)
	return nil
}

func (vi *VirtualInstance) acquire(p placement) (node Node, owned bool, err error) {
	switch vi.kind {
	case InstanceNew:
		node, err = p.host.Create(vi.className)
		if err != nil {
			return nil, false, fmt.Errorf("create %q: %w", vi.className, err)
		}
		owned = true
	case InstanceClone:
		node, err = vi.template.Clone()
		if err != nil {
			return nil, false, fmt.Errorf("clone %q: %w", vi.template.Name(), err)
		}
		owned = true
	case InstancePremade:
		switch {
		case p.target != nil:
			node = p.target
		case p.parent != nil:
			node = p.parent.FindFirstChild(p.key)
			if node == nil {
				return nil, false, fmt.Errorf("no child named %q under %q", p.key, p.parent.Name())
			}
		default:
			return nil, false, errors.New("premade instance has no node to decorate")
		}
		if vi.className != "" && !node.IsA(vi.className) {
			return nil, false, fmt.Errorf("node %q is a %q, not a %q", node.Name(), node.ClassName(), vi.className)
		}
		return node, false, nil
	}
	if p.key != "" {
		node.SetName(p.key)
	}
	return node, owned, nil
}

func (m *mounted) wrap(err error) error {
	var me *MountError
	if errors.As(err, &me) {
		return err
	}
	return &MountError{Path: m.path, Err: err}
}

func (m *mounted) set(name string, attribute bool, value any) error {
	if attribute {
		return m.node.SetAttribute(name, value)
	}
	return m.node.SetProperty(name, value)
}

// bindValues applies static values, keeps observable values in sync, and
// connects function values as events.
func (m *mounted) bindValues(values Props, attribute bool) error {
	for _, name := range sortedKeys(values) {
		switch x := values[name].(type) {
		case EventHandler:
			if err := m.connect(name, x); err != nil {
				return err
			}
		case func(...any):
			if err := m.connect(name, x); err != nil {
				return err
			}
		case func():
			if err := m.connect(name, func(...any) { x() }); err != nil {
				return err
			}
		case Signal:
			v := x.node()
			unsub, err := subscribeChecked(v, func() {
				if err := m.set(name, attribute, v.read()); err != nil {
					panic(err)
				}
			})
			if err != nil {
				return fmt.Errorf("bind %q: %w", name, err)
			}
			m.cleanups = append(m.cleanups, unsub)
			if err := m.set(name, attribute, v.read()); err != nil {
				return fmt.Errorf("set %q: %w", name, err)
			}
		default:
			if err := m.set(name, attribute, x); err != nil {
				return fmt.Errorf("set %q: %w", name, err)
			}
		}
	}
	return nil
}

func (m *mounted) connect(event string, handler EventHandler) error {
	disconnect, err := m.node.Connect(event, handler)
	if err != nil {
		return fmt.Errorf("connect %q: %w", event, err)
	}
	m.cleanups = append(m.cleanups, disconnect)
	return nil
}

// bindTags keeps the node's tag set in sync with tags and removes the tags
// it applied on unmount. Tags the node already carried are left alone.
func (m *mounted) bindTags(tags any) error {
	applied := make(map[string]bool)
	sync := func() {
		desired := resolveTags(tags)
		for _, t := range sortedKeys(applied) {
			if !desired[t] {
				m.node.RemoveTag(t)
				delete(applied, t)
			}
		}
		for _, t := range sortedKeys(desired) {
			if !applied[t] && !m.node.HasTag(t) {
				m.node.AddTag(t)
				applied[t] = true
			}
		}
	}
	for _, sig := range tagSignals(tags) {
		unsub, err := subscribeChecked(sig.node(), sync)
		if err != nil {
			return fmt.Errorf("bind tags: %w", err)
		}
		m.cleanups = append(m.cleanups, unsub)
	}
	sync()
	m.cleanups = append(m.cleanups, func() {
		for _, t := range sortedKeys(applied) {
			m.node.RemoveTag(t)
		}
	})
	return nil
}

func tagSignals(tags any) []Signal {
	switch x := tags.(type) {
	case Signal:
		return []Signal{x}
	case []any:
		var sigs []Signal
		for _, t := range x {
			if sig, ok := t.(Signal); ok {
				sigs = append(sigs, sig)
			}
		}
		return sigs
	}
	return nil
}

func resolveTags(tags any) map[string]bool {
	out := make(map[string]bool)
	add := func(v any) {
		switch t := v.(type) {
		case string:
			if t != "" {
				out[t] = true
			}
		case []string:
			for _, s := range t {
				if s != "" {
					out[s] = true
				}
			}
		}
	}
	switch x := tags.(type) {
	case Signal:
		add(x.node().read())
	case []any:
		for _, t := range x {
			if sig, ok := t.(Signal); ok {
				add(sig.node().read())
			} else {
				add(t)
			}
		}
	default:
		add(x)
	}
	return out
}

func (m *mounted) bindOutput(o *output) error {
	// Mounting and unmounting run inside runWrites, so failures of these
	// writes are returned by Render and Unmount.
	if o.instance {
		_ = o.state.Set(m.node)
		m.cleanups = append(m.cleanups, func() {
			_ = o.state.Set(nil)
		})
		return nil
	}
	read := func() (any, error) {
		if o.attribute {
			return m.node.Attribute(o.name), nil
		}
		return m.node.Property(o.name)
	}
	v, err := read()
	if err != nil {
		return fmt.Errorf("out %q: %w", o.name, err)
	}
	_ = o.state.Set(v)
	if o.initial {
		return nil
	}
	onChange := func() {
		v, err := read()
		if err != nil {
			debugReport(err)
			return
		}
		reportDetached(o.state.Set(v))
	}
	if o.attribute {
		m.cleanups = append(m.cleanups, m.node.AttributeChanged(o.name, onChange))
	} else {
		m.cleanups = append(m.cleanups, m.node.PropertyChanged(o.name, onChange))
	}
	return nil
}

// mountSlot mounts one value of a Children map.
func (m *mounted) mountSlot(p placement, key string, value any) error {
	switch x := value.(type) {
	case nil:
		return nil
	case *VirtualInstance:
		return m.mountStatic(p.child(m.node, key), x)
	case []*VirtualInstance:
		for i, c := range x {
			if err := m.mountSlot(p, fmt.Sprintf("%s.%d", key, i+1), c); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for i, c := range x {
			if err := m.mountSlot(p, fmt.Sprintf("%s.%d", key, i+1), c); err != nil {
				return err
			}
		}
		return nil
	case Observable[*VirtualInstance]:
		return m.mountReactive(p.child(m.node, key), x)
	}
	return fmt.Errorf("child %q has unsupported type %T", key, value)
}

func (m *mounted) mountStatic(p placement, child *VirtualInstance) error {
	if child == nil {
		return nil
	}
	if err := child.mountAt(p); err != nil {
		return err
	}
	m.slots = append(m.slots, child.unmount)
	return nil
}

// mountReactive mounts whatever instance obs holds and swaps it when obs
// changes. A failed swap surfaces as a listener failure.
func (m *mounted) mountReactive(p placement, obs Observable[*VirtualInstance]) error {
	var current *VirtualInstance
	swap := func(next *VirtualInstance) error {
		if next == current {
			return nil
		}
		var errs []error
		if current != nil {
			errs = append(errs, current.unmount())
			current = nil
		}
		if next != nil {
			if err := next.mountAt(p); err != nil {
				errs = append(errs, err)
			} else {
				current = next
			}
		}
		return errors.Join(errs...)
	}
	unsub := obs.Subscribe(func(next *VirtualInstance) {
		if err := swap(next); err != nil {
			panic(err)
		}
	})
	if err := swap(obs.Current()); err != nil {
		unsub()
		return err
	}
	m.slots = append(m.slots, func() error {
		unsub()
		if current == nil {
			return nil
		}
		c := current
		current = nil
		return c.unmount()
	})
	return nil
}

// unmount tears the instance down: children first, then OnUnmount
// callbacks, then bindings, then the node itself. Every step runs even if
// an earlier one fails.
func (vi *VirtualInstance) unmount() error {
	m := vi.mount
	if m == nil || m.unmounting {
		return nil
	}
	m.unmounting = true

	var errs []error
	for i := len(m.slots) - 1; i >= 0; i-- {
		errs = append(errs, m.protect(m.slots[i]))
	}
	for _, fn := range m.unmountCbs {
		errs = append(errs, m.protect(func() error { fn(); return nil }))
	}
	for i := len(m.cleanups) - 1; i >= 0; i-- {
		fn := m.cleanups[i]
		errs = append(errs, m.protect(func() error { fn(); return nil }))
	}
	if m.owned {
		errs = append(errs, m.protect(func() error { m.node.Destroy(); return nil }))
	}

	vi.mount = nil
	vi.state = Unmounted
	if m.live {
		stats.mounted.Add(-1)
		capitan.Emit(context.Background(), InstanceUnmounted,
			KeyInstance.Field(int(vi.id)),
			KeyClassName.Field(vi.className),
			KeyPath.Field(m.path),
		)
	}
	return errors.Join(errs...)
}

// protect runs fn, turning a panic into a CleanupFailure.
func (m *mounted) protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			failure := &CleanupFailure{Path: m.path, Recovered: r}
			stats.cleanupFailures.Add(1)
			debugReport(failure)
			capitan.Emit(context.Background(), CleanupFailed,
				KeyPath.Field(m.path),
				KeyError.Field(fmt.Sprint(r)),
			)
			err = failure
		}
	}()
	return fn()
}

func recoveredError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}

func callOnMount(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("OnMount: %w", e)
				return
			}
			err = fmt.Errorf("OnMount: %v", r)
		}
	}()
	fn()
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
