package bramble

import (
	"context"
	"errors"

	"github.com/zoobzio/capitan"
)

type rootState uint8

const (
	rootCreated rootState = iota
	rootRendered
	rootTornDown
)

// Root binds one VirtualInstance tree to one host node.
type Root struct {
	host  Host
	node  Node
	tree  *VirtualInstance
	state rootState
}

// NewRoot creates a Root that mounts into node using host to create nodes.
func NewRoot(host Host, node Node) *Root {
	if host == nil || node == nil {
		panic("bramble: NewRoot requires a host and a node")
	}
	return &Root{host: host, node: node}
}

// Node returns the root's host node.
func (r *Root) Node() Node { return r.node }

// Tree returns the mounted tree, or nil.
func (r *Root) Tree() *VirtualInstance { return r.tree }

// Render mounts vi. A Premade tree decorates the root node itself; any other
// tree mounts as a child of it. A Root renders once: a second call returns
// ErrAlreadyRendered and a call after Unmount returns ErrRootTornDown.
//
// Listener failures caused by writes made while mounting, such as output
// observables receiving their first value, are returned joined. The tree
// stays rendered in that case.
func (r *Root) Render(vi *VirtualInstance) error {
	switch r.state {
	case rootRendered:
		return ErrAlreadyRendered
	case rootTornDown:
		return ErrRootTornDown
	}
	p := placement{host: r.host, parent: r.node, path: r.node.Name()}
	if vi.kind == InstancePremade {
		p.target = r.node
	} else {
		p.key = vi.className
		p.path += "/" + vi.className
	}
	var mountErr error
	failures := runWrites(func() error {
		mountErr = vi.mountAt(p)
		return nil
	})
	if mountErr != nil {
		return errors.Join(mountErr, failures)
	}
	r.tree = vi
	r.state = rootRendered
	capitan.Emit(context.Background(), RootRendered,
		KeyInstance.Field(int(vi.id)),
		KeyPath.Field(p.path),
	)
	return failures
}

// Unmount tears the tree down, children first, and retires the Root.
// Calling it again is a no-op.
func (r *Root) Unmount() error {
	if r.state == rootTornDown {
		return nil
	}
	var err error
	if tree := r.tree; tree != nil {
		err = runWrites(tree.unmount)
		r.tree = nil
	}
	r.state = rootTornDown
	capitan.Emit(context.Background(), RootTornDown, KeyPath.Field(r.node.Name()))
	debugCheckOpenSources()
	return err
}
