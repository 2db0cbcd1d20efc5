// Package bramble is a reactive state and declarative scene-building
// library for retained-mode scene graphs.
//
// It has two halves. The first is an observable engine: [State] holds a
// value, [Map] and friends derive values from other observables, [Record]
// holds keyed collections with per-key observables, and springs, tweens and
// timers animate values on a [Scheduler]. Updates propagate glitch-free:
// every derived value recomputes at most once per logical update, after all
// of its sources have settled, and listeners only ever see consistent
// values.
//
// The second half is a reconciler. A [VirtualInstance] describes one host
// node (created with [New], cloned with [Clone], or an existing node with
// [Premade]) plus an ordered list of directives: properties, attributes,
// tags, events, children and lifecycle callbacks. Observables bound into a
// VirtualInstance keep the host node in sync for exactly as long as it is
// mounted. A [Root] mounts one tree into one host node.
//
// # Quick start
//
//	count := bramble.NewState(0)
//	label := bramble.Map(count, func(n int) string {
//		return fmt.Sprintf("clicked %d times", n)
//	})
//
//	root := bramble.NewRoot(host, host.Root())
//	err := root.Render(bramble.New("Button", bramble.Props{
//		"Text":  label,
//		"Click": func() { count.Update(func(n int) int { return n + 1 }) },
//	}, nil))
//
// # Threading
//
// The graph is single-threaded: all observables, instances and roots must
// be used from one goroutine. Work arriving from other goroutines is handed
// over with [Scheduler.Dispatch] and runs at the start of the next step.
//
// # Errors
//
// Programmer errors, such as adding a directive to a mounted instance or an
// invalid [VirtualInstance.Combine], panic with a typed error. A listener
// that panics is recovered into a [ListenerFailure]; the remaining listeners
// still run and the failures are returned, joined, from the write that
// triggered them.
package bramble
