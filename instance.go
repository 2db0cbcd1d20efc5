package bramble

import "fmt"

// InstanceKind selects how a VirtualInstance obtains its host node.
type InstanceKind uint8

const (
	// InstanceNew creates a fresh node of the instance's class.
	InstanceNew InstanceKind = iota
	// InstanceClone clones a template node.
	InstanceClone
	// InstancePremade decorates a node that already exists.
	InstancePremade
)

func (k InstanceKind) String() string {
	switch k {
	case InstanceNew:
		return "New"
	case InstanceClone:
		return "Clone"
	case InstancePremade:
		return "Premade"
	}
	return "Unknown"
}

// Lifecycle is the mount state of a VirtualInstance.
type Lifecycle uint8

const (
	Building Lifecycle = iota
	Mounted
	Unmounted
)

func (l Lifecycle) String() string {
	switch l {
	case Building:
		return "Building"
	case Mounted:
		return "Mounted"
	case Unmounted:
		return "Unmounted"
	}
	return "Unknown"
}

// Props maps property (or attribute) names to static values, observables
// or event handlers.
type Props map[string]any

// Children maps child keys to child descriptions. A key becomes the child
// node's name.
type Children map[string]any

// nextInstanceID is a plain counter; instances are built on the graph's
// goroutine.
var nextInstanceID uint64

// VirtualInstance is a declarative description of one host node: how to
// obtain it and the ordered list of directives to apply while it is mounted.
// Directives can be added until the instance is mounted for the first time.
type VirtualInstance struct {
	id        uint64
	kind      InstanceKind
	className string
	template  Node

	directives []directive
	found      map[string]*VirtualInstance

	frozen       bool
	combinedInto *VirtualInstance
	state        Lifecycle
	mount        *mounted
}

func newInstance(kind InstanceKind, className string) *VirtualInstance {
	nextInstanceID++
	return &VirtualInstance{
		id:        nextInstanceID,
		kind:      kind,
		className: className,
		found:     make(map[string]*VirtualInstance),
	}
}

// New describes a node created from className.
func New(className string, props Props, children Children) *VirtualInstance {
	vi := newInstance(InstanceNew, className)
	vi.init(props, children)
	return vi
}

// Clone describes a node cloned from template. It panics if template is nil.
func Clone(template Node, props Props, children Children) *VirtualInstance {
	if template == nil {
		panic("bramble: Clone with nil template")
	}
	vi := newInstance(InstanceClone, template.ClassName())
	vi.template = template
	vi.init(props, children)
	return vi
}

// Premade describes an existing node. At the root it is the root's node;
// as a child it is the parent's child named by its key. An empty className
// matches any class.
func Premade(className string, props Props, children Children) *VirtualInstance {
	vi := newInstance(InstancePremade, className)
	vi.init(props, children)
	return vi
}

func (vi *VirtualInstance) init(props Props, children Children) {
	if len(props) > 0 {
		vi.SetProperties(props)
	}
	if len(children) > 0 {
		vi.AddChildren(children)
	}
}

// ID returns the instance's process-unique id.
func (vi *VirtualInstance) ID() uint64 { return vi.id }

// Kind returns how the instance obtains its node.
func (vi *VirtualInstance) Kind() InstanceKind { return vi.kind }

// ClassName returns the class the instance creates or expects.
func (vi *VirtualInstance) ClassName() string { return vi.className }

// State returns the mount lifecycle state.
func (vi *VirtualInstance) State() Lifecycle { return vi.state }

// Frozen reports whether directives can no longer be added.
func (vi *VirtualInstance) Frozen() bool { return vi.frozen }

// Node returns the host node while mounted, otherwise nil.
func (vi *VirtualInstance) Node() Node {
	if vi.mount == nil {
		return nil
	}
	return vi.mount.node
}

func (vi *VirtualInstance) String() string {
	return fmt.Sprintf("%s(%q)#%d", vi.kind, vi.className, vi.id)
}

func (vi *VirtualInstance) push(d directive) {
	if vi.frozen {
		panic(&FrozenMutationError{Directive: d.kind.String(), Instance: vi.id, ClassName: vi.className})
	}
	vi.directives = append(vi.directives, d)
}
