package bramble

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRendered is returned by Root.Render when the root already
	// holds a mounted tree.
	ErrAlreadyRendered = errors.New("bramble: root already rendered")

	// ErrRootTornDown is returned by Root.Render after Root.Unmount.
	ErrRootTornDown = errors.New("bramble: root torn down")

	// ErrAlreadyMounted is returned when a VirtualInstance that is currently
	// mounted is mounted a second time.
	ErrAlreadyMounted = errors.New("bramble: instance already mounted")
)

// FrozenMutationError is the panic value raised when a directive is added to
// an instance that has been mounted at least once, or that was consumed by
// Combine.
type FrozenMutationError struct {
	Directive string
	Instance  uint64
	ClassName string
}

func (e *FrozenMutationError) Error() string {
	return fmt.Sprintf("bramble: cannot add %s to frozen instance %d (%q)", e.Directive, e.Instance, e.ClassName)
}

// InvalidCombineError is raised when Combine's preconditions are violated.
// Combine panics with it; a class mismatch only detectable against the host
// node is returned from mount wrapped in a MountError.
type InvalidCombineError struct {
	Target uint64
	Other  uint64
	Reason string
}

func (e *InvalidCombineError) Error() string {
	return fmt.Sprintf("bramble: cannot combine instance %d into %d: %s", e.Other, e.Target, e.Reason)
}

// UnknownKeyError is returned by Record.Get for a key that is not present
// when the record has no fallback.
type UnknownKeyError struct {
	Key any
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("bramble: unknown key %v", e.Key)
}

// ListenerFailure records a listener (or derived computation) that panicked
// during propagation. The remaining listeners still run.
type ListenerFailure struct {
	Observable uint64
	Kind       Kind
	Recovered  any
}

func (e *ListenerFailure) Error() string {
	return fmt.Sprintf("bramble: listener of %s observable %d failed: %v", e.Kind, e.Observable, e.Recovered)
}

// Unwrap returns the recovered value when it is an error.
func (e *ListenerFailure) Unwrap() error {
	if err, ok := e.Recovered.(error); ok {
		return err
	}
	return nil
}

// MountError wraps a failure raised while mounting the instance at Path.
type MountError struct {
	Path string
	Err  error
}

func (e *MountError) Error() string {
	return fmt.Sprintf("bramble: mount %s: %v", e.Path, e.Err)
}

func (e *MountError) Unwrap() error { return e.Err }

// CleanupFailure records a cleanup callback that panicked during unmount.
type CleanupFailure struct {
	Path      string
	Recovered any
}

func (e *CleanupFailure) Error() string {
	return fmt.Sprintf("bramble: cleanup of %s failed: %v", e.Path, e.Recovered)
}

// Unwrap returns the recovered value when it is an error.
func (e *CleanupFailure) Unwrap() error {
	if err, ok := e.Recovered.(error); ok {
		return err
	}
	return nil
}
