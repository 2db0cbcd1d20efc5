package scene

import (
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/phanxgames/bramble"
)

// nodeIDCounter is a plain counter (no atomic, the scene is single-threaded).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// --- Node ---

// Node is one element of the scene graph. A single flat struct is used for
// every class; class-specific state lives in the property map.
type Node struct {
	ID uint32

	scene *Scene
	class *Class
	name  string

	parent   *Node
	children []*Node

	props map[string]any
	attrs map[string]any
	tags  map[string]struct{}

	events   handlerRegistry
	watchers handlerRegistry

	disposed bool
}

var _ bramble.Node = (*Node)(nil)

// ClassName returns the node's class.
func (n *Node) ClassName() string {
	return n.class.Name
}

// IsA reports whether the node's class is className or inherits from it.
func (n *Node) IsA(className string) bool {
	return n.class.IsA(className)
}

// Name returns the node's name.
func (n *Node) Name() string {
	return n.name
}

// SetName renames the node.
func (n *Node) SetName(name string) {
	if n.name == name {
		return
	}
	n.name = name
	n.watchers.fire(propKey("Name"))
}

// Scene returns the scene that created the node.
func (n *Node) Scene() *Scene {
	return n.scene
}

// Parent returns the node's parent, or nil.
func (n *Node) Parent() *Node {
	return n.parent
}

// --- Properties ---

// Property returns a declared property of the node's class. Name is always
// available.
func (n *Node) Property(name string) (any, error) {
	if name == "Name" {
		return n.name, nil
	}
	if v, ok := n.props[name]; ok {
		return v, nil
	}
	if v, ok := n.class.defaultOf(name); ok {
		return v, nil
	}
	return nil, fmt.Errorf("scene: %q is not a property of %s", name, n.class.Name)
}

// SetProperty assigns a declared property. Numeric values are converted to
// the property's type; other type mismatches are errors.
func (n *Node) SetProperty(name string, value any) error {
	if globalDebug {
		debugCheckDisposed(n, "SetProperty")
	}
	if name == "Name" {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("scene: Name must be a string, got %T", value)
		}
		n.SetName(s)
		return nil
	}
	def, ok := n.class.defaultOf(name)
	if !ok {
		return fmt.Errorf("scene: %q is not a property of %s", name, n.class.Name)
	}
	v, err := convert(def, value)
	if err != nil {
		return fmt.Errorf("scene: property %s.%s: %w", n.class.Name, name, err)
	}
	old, _ := n.Property(name)
	if reflect.DeepEqual(old, v) {
		return nil
	}
	n.props[name] = v
	n.watchers.fire(propKey(name))
	return nil
}

// PropertyChanged registers fn to run after the property changes.
func (n *Node) PropertyChanged(name string, fn func()) func() {
	return n.watchers.add(propKey(name), func(...any) { fn() }).Remove
}

// --- Attributes ---

// Attribute returns a user attribute, or nil.
func (n *Node) Attribute(name string) any {
	return n.attrs[name]
}

// Attributes returns a copy of all attributes.
func (n *Node) Attributes() map[string]any {
	return maps.Clone(n.attrs)
}

// SetAttribute stores a user attribute. A nil value removes it.
func (n *Node) SetAttribute(name string, value any) error {
	if name == "" {
		return fmt.Errorf("scene: attribute name must not be empty")
	}
	old, had := n.attrs[name]
	if value == nil {
		if !had {
			return nil
		}
		delete(n.attrs, name)
	} else {
		if had && reflect.DeepEqual(old, value) {
			return nil
		}
		n.attrs[name] = value
	}
	n.watchers.fire(attrKey(name))
	return nil
}

// AttributeChanged registers fn to run after the attribute changes.
func (n *Node) AttributeChanged(name string, fn func()) func() {
	return n.watchers.add(attrKey(name), func(...any) { fn() }).Remove
}

func propKey(name string) string { return "prop:" + name }
func attrKey(name string) string { return "attr:" + name }

// --- Tags ---

// AddTag adds tag to the node and the scene's tag index.
func (n *Node) AddTag(tag string) {
	if _, ok := n.tags[tag]; ok {
		return
	}
	n.tags[tag] = struct{}{}
	n.scene.index(tag, n)
}

// RemoveTag removes tag.
func (n *Node) RemoveTag(tag string) {
	if _, ok := n.tags[tag]; !ok {
		return
	}
	delete(n.tags, tag)
	n.scene.unindex(tag, n)
}

// HasTag reports whether the node carries tag.
func (n *Node) HasTag(tag string) bool {
	_, ok := n.tags[tag]
	return ok
}

// Tags returns the node's tags in sorted order.
func (n *Node) Tags() []string {
	tags := make([]string, 0, len(n.tags))
	for t := range n.tags {
		tags = append(tags, t)
	}
	slices.Sort(tags)
	return tags
}

// --- Events ---

// Connect registers handler for one of the class's events.
func (n *Node) Connect(event string, handler bramble.EventHandler) (func(), error) {
	if !n.class.hasEvent(event) {
		return nil, fmt.Errorf("scene: %q is not an event of %s", event, n.class.Name)
	}
	return n.events.add(event, handler).Remove, nil
}

// On registers handler and returns a handle for removing it.
func (n *Node) On(event string, handler bramble.EventHandler) (CallbackHandle, error) {
	if !n.class.hasEvent(event) {
		return CallbackHandle{}, fmt.Errorf("scene: %q is not an event of %s", event, n.class.Name)
	}
	return n.events.add(event, handler), nil
}

// Fire runs every handler of event and forwards it to the scene's entity
// store.
func (n *Node) Fire(event string, args ...any) error {
	if !n.class.hasEvent(event) {
		return fmt.Errorf("scene: %q is not an event of %s", event, n.class.Name)
	}
	if n.disposed {
		return nil
	}
	n.events.fire(event, args...)
	if n.scene.store != nil {
		n.scene.store.EmitEvent(InteractionEvent{Event: event, NodeID: n.ID, Name: n.name, Args: args})
	}
	return nil
}

// Handlers returns the number of handlers connected to event.
func (n *Node) Handlers(event string) int {
	return n.events.count(event)
}

// --- Tree manipulation ---

// SetParent moves the node under parent, or detaches it when parent is nil.
// Panics if parent is not a node of this package.
func (n *Node) SetParent(parent bramble.Node) {
	if parent == nil {
		n.RemoveFromParent()
		return
	}
	p, ok := parent.(*Node)
	if !ok {
		panic(fmt.Sprintf("scene: cannot parent to foreign node %T", parent))
	}
	p.AddChild(n)
}

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("scene: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if isAncestor(child, n) {
		panic("scene: adding child would create a cycle")
	}
	if child.parent != nil {
		child.parent.removeChildByPtr(child)
	}
	child.parent = n
	n.children = append(n.children, child)
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// AddChildAt inserts child at the given index.
// Same reparenting and cycle-check behavior as AddChild.
func (n *Node) AddChildAt(child *Node, index int) {
	if child == nil {
		panic("scene: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChildAt (parent)")
		debugCheckDisposed(child, "AddChildAt (child)")
	}
	if isAncestor(child, n) {
		panic("scene: adding child would create a cycle")
	}
	if child.parent != nil {
		child.parent.removeChildByPtr(child)
	}
	if index < 0 || index > len(n.children) {
		panic("scene: child index out of range")
	}
	child.parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
}

// RemoveChild detaches child from this node.
// Panics if child's parent is not n.
func (n *Node) RemoveChild(child *Node) {
	if child.parent != n {
		panic("scene: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.parent = nil
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.parent == nil {
		return
	}
	n.parent.RemoveChild(n)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// Child returns the first child named name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// FindFirstChild returns the first child named name, or nil.
func (n *Node) FindFirstChild(name string) bramble.Node {
	if c := n.Child(name); c != nil {
		return c
	}
	return nil
}

// --- Cloning and disposal ---

// Clone returns an unparented deep copy of the node and its subtree.
// Event handlers and change watchers are not copied.
func (n *Node) Clone() (bramble.Node, error) {
	if n.disposed {
		return nil, fmt.Errorf("scene: cannot clone disposed node %q", n.name)
	}
	return n.clone(), nil
}

func (n *Node) clone() *Node {
	c := n.scene.newNode(n.class)
	c.name = n.name
	c.props = maps.Clone(n.props)
	c.attrs = maps.Clone(n.attrs)
	for _, t := range n.Tags() {
		c.AddTag(t)
	}
	for _, child := range n.children {
		cc := child.clone()
		cc.parent = c
		c.children = append(c.children, cc)
	}
	return c
}

// Destroy removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants.
func (n *Node) Destroy() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	for _, child := range n.children {
		child.parent = nil
		child.dispose()
	}
	for t := range n.tags {
		n.scene.unindex(t, n)
	}
	n.children = nil
	n.parent = nil
	n.tags = map[string]struct{}{}
	n.events.clear()
	n.watchers.clear()
}

// IsDestroyed returns true if this node has been destroyed.
func (n *Node) IsDestroyed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}
