package bramble_test

import (
	"fmt"
	"slices"
	"testing"

	"github.com/phanxgames/bramble"
	"github.com/phanxgames/bramble/scene"
)

func childNames(n *scene.Node) []string {
	var names []string
	for _, c := range n.Children() {
		names = append(names, c.Name())
	}
	return names
}

func TestChildListKeys(t *testing.T) {
	s, root := newRoot(t)
	tree := bramble.New("Container", nil, Children{
		"Item": []any{
			bramble.New("Folder", nil, nil),
			nil,
			[]*bramble.VirtualInstance{bramble.New("Folder", nil, nil)},
		},
	})
	mustRender(t, root, tree)
	if got := childNames(s.Find("Container")); !slices.Equal(got, []string{"Item.1", "Item.3.1"}) {
		t.Errorf("children = %v", got)
	}
}

func TestUnsupportedChildFails(t *testing.T) {
	_, root := newRoot(t)
	if err := root.Render(bramble.New("Folder", nil, Children{"Bad": 42})); err == nil {
		t.Error("expected error for unsupported child value")
	}
}

func TestReactiveChild(t *testing.T) {
	s, root := newRoot(t)
	slot := bramble.NewState[*bramble.VirtualInstance](nil)
	mustRender(t, root, bramble.New("Container", nil, Children{"Slot": slot}))
	panel := s.Find("Container")
	if panel.NumChildren() != 0 {
		t.Fatal("nil child should mount nothing")
	}

	first := bramble.New("Text", Props{"Text": "one"}, nil)
	_ = slot.Set(first)
	if prop(t, s.Find("Container/Slot"), "Text") != "one" {
		t.Error("child should mount when the observable changes")
	}
	firstNode := first.Node().(*scene.Node)

	_ = slot.Set(bramble.New("Sprite", nil, nil))
	if first.State() != bramble.Unmounted || !firstNode.IsDestroyed() {
		t.Error("previous child should unmount on swap")
	}
	if got := s.Find("Container/Slot"); got == nil || got.ClassName() != "Sprite" {
		t.Error("new child should mount under the same key")
	}

	_ = slot.Set(nil)
	if panel.NumChildren() != 0 {
		t.Error("nil should unmount the current child")
	}
	_ = root.Unmount()
	if err := slot.Set(bramble.New("Folder", nil, nil)); err != nil {
		t.Errorf("write after unmount: %v", err)
	}
}

func TestMapChildren(t *testing.T) {
	s, root := newRoot(t)
	items := bramble.NewRecord(map[string]int{"a": 1, "b": 2})
	renders := 0
	list := bramble.New("Container", nil, nil)
	bramble.MapChildren(list, items, func(key string, value int) *bramble.VirtualInstance {
		renders++
		return bramble.New("Text", Props{"Text": fmt.Sprintf("%s=%d", key, value)}, nil)
	})
	mustRender(t, root, list)

	panel := s.Find("Container")
	if got := childNames(panel); !slices.Equal(got, []string{"a", "b"}) {
		t.Fatalf("children = %v", got)
	}
	a := panel.Child("a")

	_ = items.Set("b", 3)
	_ = items.Set("c", 4)
	if renders != 4 {
		t.Errorf("renders = %d, want 4", renders)
	}
	if panel.Child("a") != a {
		t.Error("unchanged entry should keep its child")
	}
	if prop(t, panel.Child("b"), "Text") != "b=3" || prop(t, panel.Child("c"), "Text") != "c=4" {
		t.Error("changed and added entries should render")
	}

	_ = items.Delete("a")
	if panel.Child("a") != nil || !a.IsDestroyed() {
		t.Error("removed entry should unmount its child")
	}

	_ = root.Unmount()
	if s.Root().NumChildren() != 0 {
		t.Error("unmount should remove every mapped child")
	}
}

func TestMapChildrenByKey(t *testing.T) {
	s, root := newRoot(t)
	scores := bramble.NewState(map[string]int{"ann": 1, "bob": 2})
	renders := 0
	board := bramble.New("Container", nil, nil)
	bramble.MapChildrenByKey(board, scores, func(name string, score bramble.Observable[int]) *bramble.VirtualInstance {
		renders++
		text := bramble.Map(score, func(v int) string { return fmt.Sprintf("%s: %d", name, v) })
		return bramble.New("Text", Props{"Text": text}, nil)
	})
	mustRender(t, root, board)

	panel := s.Find("Container")
	_ = scores.Set(map[string]int{"ann": 5, "bob": 2})
	if renders != 2 {
		t.Errorf("renders = %d, want 2", renders)
	}
	if prop(t, panel.Child("ann"), "Text") != "ann: 5" {
		t.Errorf("ann = %v", prop(t, panel.Child("ann"), "Text"))
	}

	_ = scores.Set(map[string]int{"bob": 2, "cy": 0})
	if got := childNames(panel); !slices.Equal(got, []string{"bob", "cy"}) {
		t.Errorf("children = %v", got)
	}
}

func TestMapChildrenByValue(t *testing.T) {
	s, root := newRoot(t)
	slots := bramble.NewState(map[int]string{1: "sword", 2: "shield"})
	renders := 0
	inv := bramble.New("Container", nil, nil)
	bramble.MapChildrenByValue(inv, slots, func(item string, slot bramble.Observable[int]) *bramble.VirtualInstance {
		renders++
		return bramble.New("Folder", nil, nil).SetAttributes(Props{"Slot": slot})
	})
	mustRender(t, root, inv)

	panel := s.Find("Container")
	sword := panel.Child("sword")
	if sword == nil || sword.Attribute("Slot") != 1 {
		t.Fatalf("children = %v", childNames(panel))
	}

	_ = slots.Set(map[int]string{1: "shield", 3: "sword"})
	if renders != 2 {
		t.Errorf("renders = %d, want 2", renders)
	}
	if panel.Child("sword") != sword || sword.Attribute("Slot") != 3 {
		t.Error("moved value should keep its child and see the new key")
	}
	if panel.Child("shield").Attribute("Slot") != 1 {
		t.Error("shield should now be in slot 1")
	}

	_ = slots.Set(map[int]string{1: "shield", 2: "shield"})
	if got := childNames(panel); !slices.Equal(got, []string{"shield"}) {
		t.Errorf("children = %v", got)
	}
	if panel.Child("shield").Attribute("Slot") != 1 {
		t.Error("duplicate values keep the first key")
	}
}
