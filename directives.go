package bramble

import (
	"fmt"
	"maps"
)

type directiveKind uint8

const (
	dirSetProperties directiveKind = iota
	dirSetAttributes
	dirAddChildren
	dirAddTags
	dirConnect
	dirOutput
	dirOnMount
	dirOnUnmount
	dirCombine
	dirFindChild
	dirMapChildren
)

func (k directiveKind) String() string {
	switch k {
	case dirSetProperties:
		return "SetProperties"
	case dirSetAttributes:
		return "SetAttributes"
	case dirAddChildren:
		return "AddChildren"
	case dirAddTags:
		return "AddTags"
	case dirConnect:
		return "Connect"
	case dirOutput:
		return "Out"
	case dirOnMount:
		return "OnMount"
	case dirOnUnmount:
		return "OnUnmount"
	case dirCombine:
		return "Combine"
	case dirFindChild:
		return "FindChild"
	case dirMapChildren:
		return "MapChildren"
	}
	return "Unknown"
}

// directive is one tagged operation. Only the fields of its kind are set.
type directive struct {
	kind directiveKind

	values   Props
	children Children
	tags     any

	event   string
	handler EventHandler

	out *output

	callback func()

	class string

	key   string
	child *VirtualInstance

	dynamic func(m *mounted, path string) (func() error, error)
}

// output is a host value mirrored into an observable while mounted.
type output struct {
	state     *State[any]
	name      string
	attribute bool
	initial   bool
	instance  bool
}

// SetProperties assigns host properties. Values may be static, observables
// (kept in sync while mounted) or functions, which connect the event of the
// same name.
func (vi *VirtualInstance) SetProperties(props Props) *VirtualInstance {
	vi.push(directive{kind: dirSetProperties, values: maps.Clone(props)})
	return vi
}

// SetAttributes assigns host attributes. Values may be static or observables.
func (vi *VirtualInstance) SetAttributes(attrs Props) *VirtualInstance {
	vi.push(directive{kind: dirSetAttributes, values: maps.Clone(attrs)})
	return vi
}

// AddChildren adds keyed children. A value may be a *VirtualInstance, an
// Observable[*VirtualInstance] (nil mounts nothing) or a []any list whose
// entries are keyed "key.1", "key.2", and so on.
func (vi *VirtualInstance) AddChildren(children Children) *VirtualInstance {
	vi.push(directive{kind: dirAddChildren, children: maps.Clone(children)})
	return vi
}

// AddChild adds a single keyed child.
func (vi *VirtualInstance) AddChild(key string, child any) *VirtualInstance {
	return vi.AddChildren(Children{key: child})
}

// AddTags applies tags while mounted. tags may be a string, a []string, an
// Observable[[]string], an Observable[string], or a []any mixing strings and
// Observable[string]. Any other shape panics.
func (vi *VirtualInstance) AddTags(tags any) *VirtualInstance {
	if err := checkTags(tags); err != nil {
		panic(err.Error())
	}
	vi.push(directive{kind: dirAddTags, tags: tags})
	return vi
}

// Connect registers handler for the host event while mounted.
func (vi *VirtualInstance) Connect(event string, handler EventHandler) *VirtualInstance {
	vi.push(directive{kind: dirConnect, event: event, handler: handler})
	return vi
}

// OutProperty returns an observable mirroring the host property while
// mounted. It holds def until the first mount.
func (vi *VirtualInstance) OutProperty(name string, def any) Observable[any] {
	return vi.out(&output{name: name}, def)
}

// OutAttribute mirrors a host attribute.
func (vi *VirtualInstance) OutAttribute(name string, def any) Observable[any] {
	return vi.out(&output{name: name, attribute: true}, def)
}

// OutInitialProperty captures the host property once at mount.
func (vi *VirtualInstance) OutInitialProperty(name string, def any) Observable[any] {
	return vi.out(&output{name: name, initial: true}, def)
}

// OutInitialAttribute captures the host attribute once at mount.
func (vi *VirtualInstance) OutInitialAttribute(name string, def any) Observable[any] {
	return vi.out(&output{name: name, attribute: true, initial: true}, def)
}

// OutInstance returns an observable holding the host node while mounted
// and nil otherwise.
func (vi *VirtualInstance) OutInstance() Observable[Node] {
	o := &output{instance: true}
	vi.out(o, nil)
	return Map(o.state, func(v any) Node {
		n, _ := v.(Node)
		return n
	})
}

func (vi *VirtualInstance) out(o *output, def any) Observable[any] {
	o.state = NewState(def)
	vi.push(directive{kind: dirOutput, out: o})
	return o.state
}

// OnMount runs fn after the node and all of its children are mounted.
func (vi *VirtualInstance) OnMount(fn func()) *VirtualInstance {
	vi.push(directive{kind: dirOnMount, callback: fn})
	return vi
}

// OnUnmount runs fn when unmounting begins, after the children have
// unmounted and before the instance's own bindings are torn down.
func (vi *VirtualInstance) OnUnmount(fn func()) *VirtualInstance {
	vi.push(directive{kind: dirOnUnmount, callback: fn})
	return vi
}

// FindChild returns a Premade instance decorating the existing child named
// key. Repeated calls with the same key return the same instance.
func (vi *VirtualInstance) FindChild(key string) *VirtualInstance {
	if c, ok := vi.found[key]; ok {
		return c
	}
	c := Premade("", nil, nil)
	vi.push(directive{kind: dirFindChild, key: key, child: c})
	vi.found[key] = c
	return c
}

// Combine merges the directives of each Premade instance into vi. The
// others are consumed: they cannot be mounted and reject new directives.
// Class compatibility is checked against the host node at mount, where a
// combined class must be empty or satisfied by the node's IsA.
func (vi *VirtualInstance) Combine(others ...*VirtualInstance) *VirtualInstance {
	for _, other := range others {
		vi.combine(other)
	}
	return vi
}

func (vi *VirtualInstance) combine(other *VirtualInstance) {
	fail := func(reason string) {
		panic(&InvalidCombineError{Target: vi.id, Other: other.id, Reason: reason})
	}
	switch {
	case other == nil:
		panic(&InvalidCombineError{Target: vi.id, Reason: "nil instance"})
	case other == vi:
		fail("cannot combine an instance with itself")
	case other.kind != InstancePremade:
		fail(fmt.Sprintf("only Premade instances can be combined, got %s", other.kind))
	case other.combinedInto != nil:
		fail("instance was already combined")
	case other.state == Mounted:
		fail("instance is mounted")
	case other.frozen:
		fail("instance was already mounted")
	}

	vi.push(directive{kind: dirCombine, class: other.className})
	vi.directives = append(vi.directives, other.directives...)
	for key, c := range other.found {
		if _, ok := vi.found[key]; !ok {
			vi.found[key] = c
		}
	}
	other.directives = nil
	other.combinedInto = vi
	other.frozen = true
}

// SubscribeWhileMounted subscribes fn to obs each time vi mounts and
// unsubscribes when it unmounts. When immediate is true fn also runs with
// the current value at mount.
func SubscribeWhileMounted[T any](vi *VirtualInstance, obs Observable[T], fn func(T), immediate bool) {
	var unsub Unsubscribe
	vi.OnMount(func() {
		if immediate {
			unsub = obs.SubscribeNow(fn)
		} else {
			unsub = obs.Subscribe(fn)
		}
	})
	vi.OnUnmount(func() {
		if unsub != nil {
			unsub()
			unsub = nil
		}
	})
}

func checkTags(tags any) error {
	switch x := tags.(type) {
	case string, []string, Observable[[]string], Observable[string]:
		return nil
	case []any:
		for i, t := range x {
			switch t.(type) {
			case string, Observable[string]:
			default:
				return fmt.Errorf("bramble: tag %d has unsupported type %T", i, t)
			}
		}
		return nil
	}
	return fmt.Errorf("bramble: unsupported tags type %T", tags)
}
