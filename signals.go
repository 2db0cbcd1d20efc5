package bramble

import (
	"context"

	"github.com/zoobzio/capitan"
)

// Instance lifecycle signals.
var (
	// InstanceMounted is emitted after an instance finished mounting.
	InstanceMounted = capitan.NewSignal(
		"bramble.instance.mounted",
		"Virtual instance mounted",
	)

	// InstanceUnmounted is emitted after an instance finished unmounting.
	InstanceUnmounted = capitan.NewSignal(
		"bramble.instance.unmounted",
		"Virtual instance unmounted",
	)

	// RootRendered is emitted when a Root mounts its tree.
	RootRendered = capitan.NewSignal(
		"bramble.root.rendered",
		"Root rendered",
	)

	// RootTornDown is emitted when a Root is unmounted.
	RootTornDown = capitan.NewSignal(
		"bramble.root.torndown",
		"Root torn down",
	)
)

// Failure signals.
var (
	// ListenerFailed is emitted for every recovered listener panic.
	ListenerFailed = capitan.NewSignal(
		"bramble.listener.failed",
		"Listener panicked during propagation",
	)

	// CleanupFailed is emitted for every recovered cleanup panic.
	CleanupFailed = capitan.NewSignal(
		"bramble.cleanup.failed",
		"Cleanup panicked during unmount",
	)
)

// Update source signals.
var (
	// StreamOpened is emitted when an observable's update source opens.
	StreamOpened = capitan.NewSignal(
		"bramble.stream.opened",
		"Update source opened",
	)

	// StreamClosed is emitted when an observable's update source closes.
	StreamClosed = capitan.NewSignal(
		"bramble.stream.closed",
		"Update source closed",
	)
)

// Signal field keys.
var (
	// KeyClassName is the host class of an instance.
	KeyClassName = capitan.NewStringKey("class_name")

	// KeyPath is the key path of an instance within its tree.
	KeyPath = capitan.NewStringKey("path")

	// KeyInstance is the id of a VirtualInstance.
	KeyInstance = capitan.NewIntKey("instance")

	// KeyObservable is the id of an observable.
	KeyObservable = capitan.NewIntKey("observable")

	// KeyKind is the observable kind.
	KeyKind = capitan.NewStringKey("kind")

	// KeyError is the failure message.
	KeyError = capitan.NewStringKey("error")
)

func emitStream(opened bool, v *vertex) {
	sig := StreamClosed
	if opened {
		sig = StreamOpened
	}
	capitan.Emit(context.Background(), sig,
		KeyObservable.Field(int(v.id)),
		KeyKind.Field(v.kind.String()),
	)
}
