package ecs

import (
	"testing"
	"time"

	"github.com/phanxgames/bramble"
	"github.com/phanxgames/bramble/scene"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

type health struct {
	HP int
}

var Health = donburi.NewComponentType[health]()

func TestNewDonburiStore(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)
	if store == nil {
		t.Fatal("NewDonburiStore returned nil")
	}
}

func TestDonburiStore_EmitEvent(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	var received []scene.InteractionEvent
	InteractionEventType.Subscribe(world, func(w donburi.World, e scene.InteractionEvent) {
		received = append(received, e)
	})

	store.EmitEvent(scene.InteractionEvent{
		Event:  scene.EventClick,
		NodeID: 42,
		Name:   "Button",
		Args:   []any{1},
	})
	store.EmitEvent(scene.InteractionEvent{Event: scene.EventActivated})

	// Events are queued until processed.
	if len(received) != 0 {
		t.Fatal("events should not be delivered before processing")
	}
	InteractionEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	e0 := received[0]
	if e0.Event != scene.EventClick || e0.NodeID != 42 || e0.Name != "Button" {
		t.Errorf("event 0: %+v", e0)
	}
	if len(e0.Args) != 1 || e0.Args[0] != 1 {
		t.Errorf("event 0 args: %v", e0.Args)
	}
	if received[1].Event != scene.EventActivated {
		t.Errorf("event 1: %+v", received[1])
	}
}

func TestDonburiStore_FromScene(t *testing.T) {
	world := donburi.NewWorld()
	sc := scene.New()
	sc.SetEntityStore(NewDonburiStore(world))

	btn, err := sc.NewNode("Button")
	if err != nil {
		t.Fatal(err)
	}
	sc.Root().AddChild(btn)

	var got []scene.InteractionEvent
	InteractionEventType.Subscribe(world, func(w donburi.World, e scene.InteractionEvent) {
		got = append(got, e)
	})
	if err := btn.Fire(scene.EventActivated); err != nil {
		t.Fatal(err)
	}
	events.ProcessAllEvents(world)

	if len(got) != 1 || got[0].NodeID != btn.ID || got[0].Name != "Button" {
		t.Errorf("got %+v", got)
	}
}

func TestDonburiStore_MultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	var count1, count2 int
	InteractionEventType.Subscribe(world, func(w donburi.World, e scene.InteractionEvent) {
		count1++
	})
	InteractionEventType.Subscribe(world, func(w donburi.World, e scene.InteractionEvent) {
		count2++
	})

	store.EmitEvent(scene.InteractionEvent{Event: scene.EventClick})
	events.ProcessAllEvents(world)

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both subscribers called once, got %d and %d", count1, count2)
	}
}

func TestObserveComponent(t *testing.T) {
	world := donburi.NewWorld()
	player := world.Create(Health)
	Health.SetValue(world.Entry(player), health{HP: 10})

	sched := bramble.NewScheduler()
	hp := ObserveComponent(world, player, Health, sched)
	if hp.Current().HP != 10 {
		t.Fatalf("Current = %+v", hp.Current())
	}

	var seen []int
	unsub := hp.Subscribe(func(h health) { seen = append(seen, h.HP) })
	if sched.Handlers() != 1 {
		t.Fatal("subscribing should start polling")
	}

	Health.SetValue(world.Entry(player), health{HP: 7})
	_ = sched.Advance(16 * time.Millisecond)
	_ = sched.Advance(16 * time.Millisecond)
	if len(seen) != 1 || seen[0] != 7 {
		t.Errorf("seen %v, want [7]", seen)
	}

	world.Remove(player)
	_ = sched.Advance(16 * time.Millisecond)
	if hp.Current().HP != 0 || len(seen) != 2 {
		t.Errorf("removed entity should read zero, seen %v", seen)
	}

	unsub()
	if sched.Handlers() != 0 {
		t.Error("unsubscribing should stop polling")
	}
}

func TestObserveEvent(t *testing.T) {
	world := donburi.NewWorld()
	et := events.NewEventType[string]()
	latest := ObserveEvent(world, et)

	et.Publish(world, "ignored")
	et.ProcessEvents(world)
	if latest.Current() != "" {
		t.Error("inactive observable should not record events")
	}

	var seen []string
	unsub := latest.Subscribe(func(v string) { seen = append(seen, v) })
	et.Publish(world, "a")
	et.Publish(world, "b")
	et.ProcessEvents(world)
	if latest.Current() != "b" || len(seen) != 2 {
		t.Errorf("Current = %q, seen %v", latest.Current(), seen)
	}

	unsub()
	et.Publish(world, "c")
	et.ProcessEvents(world)
	if latest.Current() != "b" || len(seen) != 2 {
		t.Error("closed observable should keep its last value")
	}

	latest.Subscribe(func(v string) { seen = append(seen, v) })
	et.Publish(world, "d")
	et.ProcessEvents(world)
	if latest.Current() != "d" || len(seen) != 3 {
		t.Errorf("reopened observable: Current = %q, seen %v", latest.Current(), seen)
	}
}
