// Package ecs bridges bramble scenes and observables into a [Donburi] world.
//
// [NewDonburiStore] forwards every event fired on a scene node into the
// world as an [InteractionEventType] event. Subscribe to it in your ECS
// systems to react to clicks and activations.
//
// [ObserveComponent] and [ObserveEvent] go the other way: they expose ECS
// state as bramble observables, so a virtual instance can bind a property
// directly to a component value or to the latest published event.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	sc.SetEntityStore(store)
//
//	hp := ecs.ObserveComponent(world, player, Health, sched)
//	label := bramble.Map(hp, func(h int) string { return fmt.Sprint(h) })
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
