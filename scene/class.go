package scene

import (
	"fmt"
	"reflect"

	"github.com/phanxgames/bramble"
)

// Class describes a node class: its declared properties with their
// defaults, and the events its nodes can fire. A class inherits the
// properties and events of its base.
type Class struct {
	Name       string
	Base       string
	Properties map[string]any
	Events     []string

	base *Class
}

// IsA reports whether the class is name or inherits from it.
func (c *Class) IsA(name string) bool {
	for k := c; k != nil; k = k.base {
		if k.Name == name {
			return true
		}
	}
	return false
}

// defaultOf returns the default of a declared property.
func (c *Class) defaultOf(prop string) (any, bool) {
	for k := c; k != nil; k = k.base {
		if v, ok := k.Properties[prop]; ok {
			return v, true
		}
	}
	return nil, false
}

func (c *Class) hasEvent(event string) bool {
	for k := c; k != nil; k = k.base {
		for _, e := range k.Events {
			if e == event {
				return true
			}
		}
	}
	return false
}

// defaults collects every inherited property default, nearest class first.
func (c *Class) defaults() map[string]any {
	out := make(map[string]any)
	for k := c; k != nil; k = k.base {
		for name, v := range k.Properties {
			if _, ok := out[name]; !ok {
				out[name] = v
			}
		}
	}
	return out
}

// Pointer events shared by every visible class.
const (
	EventPointerDown  = "PointerDown"
	EventPointerUp    = "PointerUp"
	EventPointerEnter = "PointerEnter"
	EventPointerLeave = "PointerLeave"
	EventClick        = "Click"
	EventDragStart    = "DragStart"
	EventDrag         = "Drag"
	EventDragEnd      = "DragEnd"
	EventActivated    = "Activated"
)

func builtinClasses() []Class {
	return []Class{
		{Name: "Instance"},
		{Name: "Folder", Base: "Instance"},
		{
			Name: "Container",
			Base: "Instance",
			Properties: map[string]any{
				"X":        0.0,
				"Y":        0.0,
				"ScaleX":   1.0,
				"ScaleY":   1.0,
				"Rotation": 0.0,
				"Alpha":    1.0,
				"Visible":  true,
				"ZIndex":   0,
			},
			Events: []string{
				EventPointerDown, EventPointerUp, EventPointerEnter, EventPointerLeave,
				EventClick, EventDragStart, EventDrag, EventDragEnd,
			},
		},
		{
			Name: "Sprite",
			Base: "Container",
			Properties: map[string]any{
				"Image":  "",
				"Width":  0.0,
				"Height": 0.0,
				"Color":  bramble.ColorWhite,
			},
		},
		{
			Name: "Text",
			Base: "Container",
			Properties: map[string]any{
				"Text":     "",
				"FontSize": 16.0,
				"Align":    "left",
				"Color":    bramble.ColorWhite,
			},
		},
		{
			Name: "Button",
			Base: "Sprite",
			Properties: map[string]any{
				"Text":     "",
				"Disabled": false,
			},
			Events: []string{EventActivated},
		},
	}
}

// convert checks value against a property's default and converts numeric
// values to the default's type.
func convert(def, value any) (any, error) {
	if def == nil || value == nil {
		return value, nil
	}
	want := reflect.TypeOf(def)
	got := reflect.TypeOf(value)
	if got == want {
		return value, nil
	}
	if isNumeric(want.Kind()) && isNumeric(got.Kind()) {
		return reflect.ValueOf(value).Convert(want).Interface(), nil
	}
	if got.AssignableTo(want) {
		return value, nil
	}
	return nil, fmt.Errorf("want %s, got %s", want, got)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
