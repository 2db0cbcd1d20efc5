package bramble

import "sync/atomic"

// Counters are read from the metrics collector's goroutine, so they are
// atomics even though the graph itself is single-threaded.
var stats struct {
	subscriptions    atomic.Int64
	openSources      atomic.Int64
	mounted          atomic.Int64
	propagations     atomic.Int64
	listenerFailures atomic.Int64
	cleanupFailures  atomic.Int64
	frameHandlers    atomic.Int64
}

// Stats is a point-in-time copy of the engine counters.
type Stats struct {
	// Subscriptions is the number of live listener subscriptions.
	Subscriptions int64
	// OpenSources is the number of observables whose update source is open.
	OpenSources int64
	// Mounted is the number of currently mounted instances.
	Mounted int64
	// Propagations counts settled propagation rounds since start.
	Propagations int64
	// ListenerFailures counts recovered listener panics since start.
	ListenerFailures int64
	// CleanupFailures counts recovered cleanup panics since start.
	CleanupFailures int64
	// FrameHandlers is the number of handlers registered on all schedulers.
	FrameHandlers int64
}

// ReadStats returns the current engine counters. Safe to call from any
// goroutine.
func ReadStats() Stats {
	return Stats{
		Subscriptions:    stats.subscriptions.Load(),
		OpenSources:      stats.openSources.Load(),
		Mounted:          stats.mounted.Load(),
		Propagations:     stats.propagations.Load(),
		ListenerFailures: stats.listenerFailures.Load(),
		CleanupFailures:  stats.cleanupFailures.Load(),
		FrameHandlers:    stats.frameHandlers.Load(),
	}
}
