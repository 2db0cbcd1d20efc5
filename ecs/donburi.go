package ecs

import (
	"github.com/phanxgames/bramble"
	"github.com/phanxgames/bramble/scene"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// InteractionEventType is the Donburi event type for scene interaction events.
// Subscribe to this in your ECS systems to receive clicks and activations.
var InteractionEventType = events.NewEventType[scene.InteractionEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Interaction events are published to InteractionEventType and can be
// consumed with events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) scene.EntityStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event scene.InteractionEvent) {
	InteractionEventType.Publish(s.world, event)
}

// --- Observables ---

// ObserveComponent returns an observable of an entity's component value.
// While subscribed, the component is polled once per frame of sched and
// subscribers are notified when the value changes. A removed entity or a
// missing component reads as the zero value.
func ObserveComponent[T comparable](world donburi.World, entity donburi.Entity, comp *donburi.ComponentType[T], sched *bramble.Scheduler) *bramble.Custom[T] {
	if sched == nil {
		sched = bramble.DefaultScheduler
	}
	read := func() T {
		var zero T
		if !world.Valid(entity) {
			return zero
		}
		entry := world.Entry(entity)
		if !entry.HasComponent(comp) {
			return zero
		}
		return *comp.Get(entry)
	}
	return bramble.NewCustom(read, func(notify func()) func() {
		last := read()
		return sched.OnFrame(func(bramble.Frame) {
			if v := read(); v != last {
				last = v
				notify()
			}
		})
	})
}

// EventObservable holds the most recent event of one Donburi event type.
type EventObservable[T any] struct {
	*bramble.Custom[T]
	latest     T
	active     bool
	subscribed bool
}

// ObserveEvent returns an observable of the latest event of type et
// processed in world. Events are only recorded while the observable has
// subscribers; it keeps its last value while inactive.
func ObserveEvent[T any](world donburi.World, et *events.EventType[T]) *EventObservable[T] {
	o := &EventObservable[T]{}
	o.Custom = bramble.NewCustom(func() T { return o.latest }, func(notify func()) func() {
		o.active = true
		if !o.subscribed {
			// Donburi has no reliable way to remove a closure subscriber,
			// so the handler is registered once and muted while closed.
			o.subscribed = true
			et.Subscribe(world, func(_ donburi.World, e T) {
				if !o.active {
					return
				}
				o.latest = e
				notify()
			})
		}
		return func() { o.active = false }
	})
	return o
}
