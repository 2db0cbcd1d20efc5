// Package scene is an in-memory scene graph that hosts bramble trees. It
// provides named node classes with typed property defaults, user
// attributes, a tag index and named events.
package scene

import (
	"fmt"
	"slices"
	"strings"

	"github.com/phanxgames/bramble"
)

// Scene owns the class registry, the node tree and the tag index.
type Scene struct {
	classes map[string]*Class
	root    *Node
	tagged  map[string]map[*Node]struct{}
	store   EntityStore
	debug   bool
}

var _ bramble.Host = (*Scene)(nil)

// New creates a scene with the built-in classes and a root Container.
func New() *Scene {
	s := &Scene{
		classes: make(map[string]*Class),
		tagged:  make(map[string]map[*Node]struct{}),
	}
	for _, c := range builtinClasses() {
		if err := s.Register(c); err != nil {
			panic(err)
		}
	}
	s.root = s.newNode(s.classes["Container"])
	s.root.name = "root"
	return s
}

// Root returns the root node.
func (s *Scene) Root() *Node {
	return s.root
}

// SetEntityStore sets the store that receives every fired event.
func (s *Scene) SetEntityStore(store EntityStore) {
	s.store = store
}

// SetDebugMode enables or disables debug checks. Debug mode panics on use
// of destroyed nodes and warns on deep trees and wide nodes.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}

// Register adds a class. The base class must already be registered.
func (s *Scene) Register(c Class) error {
	if c.Name == "" {
		return fmt.Errorf("scene: class name must not be empty")
	}
	if _, ok := s.classes[c.Name]; ok {
		return fmt.Errorf("scene: class %q already registered", c.Name)
	}
	if c.Base != "" {
		base, ok := s.classes[c.Base]
		if !ok {
			return fmt.Errorf("scene: base class %q of %q is not registered", c.Base, c.Name)
		}
		c.base = base
	}
	s.classes[c.Name] = &c
	return nil
}

// Class returns a registered class.
func (s *Scene) Class(name string) (*Class, bool) {
	c, ok := s.classes[name]
	return c, ok
}

// Create returns a new unparented node of className.
func (s *Scene) Create(className string) (bramble.Node, error) {
	n, err := s.NewNode(className)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// NewNode is Create with a concrete result.
func (s *Scene) NewNode(className string) (*Node, error) {
	c, ok := s.classes[className]
	if !ok {
		return nil, fmt.Errorf("scene: unknown class %q", className)
	}
	n := s.newNode(c)
	n.name = className
	return n, nil
}

func (s *Scene) newNode(c *Class) *Node {
	return &Node{
		ID:    nextNodeID(),
		scene: s,
		class: c,
		props: make(map[string]any),
		attrs: make(map[string]any),
		tags:  make(map[string]struct{}),
	}
}

// Find returns the node at a slash-separated path of names below the root.
func (s *Scene) Find(path string) *Node {
	n := s.root
	if path == "" {
		return n
	}
	for _, name := range strings.Split(path, "/") {
		if n = n.Child(name); n == nil {
			return nil
		}
	}
	return n
}

// Tagged returns the live nodes carrying tag, ordered by ID.
func (s *Scene) Tagged(tag string) []*Node {
	set := s.tagged[tag]
	out := make([]*Node, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b *Node) int { return int(a.ID) - int(b.ID) })
	return out
}

func (s *Scene) index(tag string, n *Node) {
	set, ok := s.tagged[tag]
	if !ok {
		set = make(map[*Node]struct{})
		s.tagged[tag] = set
	}
	set[n] = struct{}{}
}

func (s *Scene) unindex(tag string, n *Node) {
	set := s.tagged[tag]
	delete(set, n)
	if len(set) == 0 {
		delete(s.tagged, tag)
	}
}

// Dump renders the tree as indented text. Each line shows the node's name
// and class, then the properties that have been set, then attributes and
// tags.
func (s *Scene) Dump() string {
	var b strings.Builder
	dumpNode(&b, s.root, 0)
	return b.String()
}

func dumpNode(b *strings.Builder, n *Node, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(b, "%s (%s)", n.name, n.class.Name)

	names := make([]string, 0, len(n.props))
	for name := range n.props {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(b, " %s=%s", name, formatValue(n.props[name]))
	}

	attrs := make([]string, 0, len(n.attrs))
	for name := range n.attrs {
		attrs = append(attrs, name)
	}
	slices.Sort(attrs)
	for _, name := range attrs {
		fmt.Fprintf(b, " @%s=%s", name, formatValue(n.attrs[name]))
	}

	if len(n.tags) > 0 {
		fmt.Fprintf(b, " [%s]", strings.Join(n.Tags(), " "))
	}
	b.WriteByte('\n')
	for _, c := range n.children {
		dumpNode(b, c, depth+1)
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("%q", x)
	case float64:
		return fmt.Sprintf("%g", x)
	}
	return fmt.Sprint(v)
}
