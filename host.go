package bramble

// EventHandler receives the arguments of a host event.
type EventHandler func(args ...any)

// Host creates nodes for a host scene graph.
type Host interface {
	// Create returns a new, unparented node of the given class.
	Create(className string) (Node, error)
}

// Node is a handle to one node of a host scene graph. Implementations must
// return a nil interface, not a typed nil, from FindFirstChild when no child
// matches.
type Node interface {
	ClassName() string
	// IsA reports whether the node's class is className or inherits it.
	IsA(className string) bool

	Name() string
	SetName(name string)

	Property(name string) (any, error)
	SetProperty(name string, value any) error
	// PropertyChanged registers fn to run after the property changes.
	PropertyChanged(name string, fn func()) (disconnect func())

	Attribute(name string) any
	// SetAttribute stores value; a nil value removes the attribute.
	SetAttribute(name string, value any) error
	AttributeChanged(name string, fn func()) (disconnect func())

	AddTag(tag string)
	RemoveTag(tag string)
	HasTag(tag string) bool

	// Connect registers handler for a named event of the node's class.
	Connect(event string, handler EventHandler) (disconnect func(), err error)

	// SetParent moves the node under parent, or detaches it when parent is
	// nil.
	SetParent(parent Node)
	FindFirstChild(name string) Node

	// Clone returns an unparented deep copy of the node and its subtree.
	Clone() (Node, error)
	// Destroy detaches the node and releases it and its subtree.
	Destroy()
}
