package scene

import "github.com/phanxgames/bramble"

// --- Handler registry ---

type handler struct {
	id uint32
	fn bramble.EventHandler
}

// handlerRegistry stores named handler lists. Handlers fire in registration
// order.
type handlerRegistry struct {
	byName map[string][]handler
	nextID uint32
}

// CallbackHandle allows removing a registered callback.
type CallbackHandle struct {
	id   uint32
	reg  *handlerRegistry
	name string
}

// Remove unregisters this callback so it no longer fires. Calling it more
// than once is a no-op.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	h.reg.byName[h.name] = removeHandler(h.reg.byName[h.name], h.id)
	if len(h.reg.byName[h.name]) == 0 {
		delete(h.reg.byName, h.name)
	}
}

func (r *handlerRegistry) add(name string, fn bramble.EventHandler) CallbackHandle {
	if r.byName == nil {
		r.byName = make(map[string][]handler)
	}
	r.nextID++
	r.byName[name] = append(r.byName[name], handler{id: r.nextID, fn: fn})
	return CallbackHandle{id: r.nextID, reg: r, name: name}
}

// fire calls every handler registered under name and returns how many ran.
// Handlers added or removed while firing take effect on the next fire.
func (r *handlerRegistry) fire(name string, args ...any) int {
	list := r.byName[name]
	if len(list) == 0 {
		return 0
	}
	snapshot := make([]handler, len(list))
	copy(snapshot, list)
	for _, h := range snapshot {
		h.fn(args...)
	}
	return len(snapshot)
}

func (r *handlerRegistry) count(name string) int {
	return len(r.byName[name])
}

func (r *handlerRegistry) clear() {
	r.byName = nil
}

func removeHandler(s []handler, id uint32) []handler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = handler{}
			return s[:len(s)-1]
		}
	}
	return s
}

// InteractionEvent is forwarded to the scene's EntityStore every time a
// node fires an event.
type InteractionEvent struct {
	Event  string
	NodeID uint32
	Name   string
	Args   []any
}

// EntityStore receives interaction events, typically to bridge them into
// an ECS world.
type EntityStore interface {
	EmitEvent(event InteractionEvent)
}
