package bramble

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/zoobzio/capitan"
)

// engine holds the propagation state shared by every observable. There is
// one graph per process and it is only touched from the graph's goroutine.
type engine struct {
	batchDepth  int
	propagating bool
	roots       []*vertex
	pending     []func()
	failures    []error
	queue       rankQueue
	seq         uint64
}

var graph engine

// write applies a mutation. Outside of any update it settles the graph and
// runs listeners before returning. Inside a Batch it only applies. Inside a
// listener it is queued and runs after the current round settles.
func (g *engine) write(apply func()) error {
	if g.propagating {
		g.pending = append(g.pending, apply)
		return nil
	}
	if g.batchDepth > 0 {
		apply()
		return nil
	}
	g.batchDepth++
	func() {
		defer func() { g.batchDepth-- }()
		apply()
	}()
	return g.flush()
}

// mark records v as directly changed in the current update.
func (g *engine) mark(v *vertex) {
	if v.marked {
		return
	}
	v.marked = true
	g.roots = append(g.roots, v)
}

// touch marks v from any context.
func (g *engine) touch(v *vertex) error {
	return g.write(func() { g.mark(v) })
}

// Batch runs fn and propagates all writes it makes as one logical update:
// every derived observable recomputes at most once and listeners run after
// fn returns. Nested batches join the outermost one. A Batch started by a
// listener is queued as a single write.
func Batch(fn func()) error {
	g := &graph
	if g.propagating {
		g.pending = append(g.pending, fn)
		return nil
	}
	if g.batchDepth > 0 {
		fn()
		return nil
	}
	g.batchDepth++
	func() {
		defer func() { g.batchDepth-- }()
		fn()
	}()
	return g.flush()
}

func (g *engine) flush() error {
	for {
		if len(g.roots) > 0 {
			g.round()
		}
		if len(g.pending) == 0 {
			break
		}
		next := g.pending[0]
		g.pending[0] = nil
		g.pending = g.pending[1:]
		g.batchDepth++
		func() {
			defer func() { g.batchDepth-- }()
			next()
		}()
	}
	if len(g.failures) == 0 {
		return nil
	}
	err := errors.Join(g.failures...)
	g.failures = nil
	return err
}

// round settles every vertex reachable from the marked roots in rank order
// and then notifies listeners of each vertex that changed.
func (g *engine) round() {
	roots := g.roots
	g.roots = nil
	g.propagating = true
	defer func() { g.propagating = false }()

	changed := make([]*vertex, 0, len(roots))
	for _, r := range roots {
		r.marked = false
		changed = append(changed, r)
		g.enqueueDependents(r)
	}
	for g.queue.Len() > 0 {
		d := heap.Pop(&g.queue).(*vertex)
		d.queued = false
		if d.refs == 0 || d.recompute == nil {
			continue
		}
		if g.recompute(d) {
			changed = append(changed, d)
			g.enqueueDependents(d)
		}
	}
	stats.propagations.Add(1)

	for _, v := range changed {
		g.notify(v)
	}
}

func (g *engine) enqueueDependents(v *vertex) {
	for _, d := range v.dependents {
		if d.queued {
			continue
		}
		d.queued = true
		g.seq++
		d.seq = g.seq
		heap.Push(&g.queue, d)
	}
}

func (g *engine) recompute(d *vertex) (changed bool) {
	defer func() {
		if r := recover(); r != nil {
			changed = false
			g.fail(d, r)
		}
	}()
	return d.recompute()
}

func (g *engine) notify(v *vertex) {
	if len(v.subs) == 0 {
		return
	}
	subs := make([]*subscription, len(v.subs))
	copy(subs, v.subs)
	for _, s := range subs {
		if !s.active {
			continue
		}
		g.invoke(v, s.fn)
	}
}

func (g *engine) invoke(v *vertex, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			g.fail(v, r)
		}
	}()
	fn()
}

func (g *engine) fail(v *vertex, recovered any) {
	g.failures = append(g.failures, g.failure(v, recovered))
}

// failure records a recovered panic of v and returns it as an error.
func (g *engine) failure(v *vertex, recovered any) *ListenerFailure {
	err := &ListenerFailure{Observable: v.id, Kind: v.kind, Recovered: recovered}
	stats.listenerFailures.Add(1)
	debugReport(err)
	capitan.Emit(context.Background(), ListenerFailed,
		KeyObservable.Field(int(v.id)),
		KeyKind.Field(v.kind.String()),
		KeyError.Field(fmt.Sprint(recovered)),
	)
	return err
}

// subscribeChecked subscribes fn to v. A panic raised while opening v's
// update source is returned as a ListenerFailure instead of unwinding the
// caller.
func subscribeChecked(v *vertex, fn func()) (unsub Unsubscribe, err error) {
	defer func() {
		if r := recover(); r != nil {
			unsub = nil
			err = graph.failure(v, r)
		}
	}()
	return v.subscribe(fn), nil
}

// runWrites runs fn as one logical update and joins the listener failures
// it caused to fn's own error. During propagation fn runs directly and its
// failures are returned by the write that started the propagation.
func runWrites(fn func() error) error {
	if graph.propagating {
		return fn()
	}
	var err error
	failures := Batch(func() { err = fn() })
	return errors.Join(err, failures)
}

// reportDetached surfaces failures from writes that have no caller to
// return them to, such as notifications from a custom update source.
func reportDetached(err error) {
	if err == nil {
		return
	}
	debugReport(err)
}

// rankQueue orders dirty vertices by rank, then by the order they were
// queued, so sources settle before the values derived from them.
type rankQueue []*vertex

func (q rankQueue) Len() int { return len(q) }

func (q rankQueue) Less(i, j int) bool {
	if q[i].rank != q[j].rank {
		return q[i].rank < q[j].rank
	}
	return q[i].seq < q[j].seq
}

func (q rankQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *rankQueue) Push(x any) { *q = append(*q, x.(*vertex)) }

func (q *rankQueue) Pop() any {
	old := *q
	n := len(old)
	v := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return v
}

// sameValue reports whether a and b are equal under ==. Values whose dynamic
// type is not comparable are always treated as changed.
func sameValue[T any](a, b T) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	x, y := any(a), any(b)
	if x == nil || y == nil {
		return x == nil && y == nil
	}
	if !reflect.TypeOf(x).Comparable() {
		return false
	}
	return x == y
}
