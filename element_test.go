package hotspot

import (
	"reflect"
	"testing"
)

func TestConstructorDefaults(t *testing.T) {
	tests := []struct {
		name         string
		e            *Element
		kind         ElementKind
		visible      bool
		interactable bool
	}{
		{"container", NewContainer("c"), ElementContainer, true, false},
		{"marker", NewMarker("m", "id"), ElementMarker, true, true},
		{"panel", NewPanel("p", PanelText, "id"), ElementPanel, false, false},
		{"badge", NewBadge("b", "txt"), ElementBadge, true, true},
		{"info", NewInfo("i", "txt"), ElementInfo, false, false},
		{"checkpoint", NewCheckpoint("cp", 40), ElementCheckpoint, true, true},
		{"image", NewImage("img", "a.png"), ElementImage, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.e.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.e.Kind, tt.kind)
			}
			if tt.e.Visible != tt.visible {
				t.Errorf("Visible = %v, want %v", tt.e.Visible, tt.visible)
			}
			if tt.e.Interactable != tt.interactable {
				t.Errorf("Interactable = %v, want %v", tt.e.Interactable, tt.interactable)
			}
			if tt.e.Scale != 1 || tt.e.ID == 0 {
				t.Errorf("Scale = %v, ID = %d", tt.e.Scale, tt.e.ID)
			}
		})
	}
}

func TestElementIDsUnique(t *testing.T) {
	a, b := NewContainer("a"), NewContainer("b")
	if a.ID == b.ID {
		t.Errorf("duplicate id %d", a.ID)
	}
}

func TestCheckpointPercent(t *testing.T) {
	cp := NewCheckpoint("cp", 37.5)
	if !reflect.DeepEqual(cp.Checkpoints, []float64{37.5}) {
		t.Errorf("Checkpoints = %v", cp.Checkpoints)
	}
}

// --- classes ---

func TestClasses(t *testing.T) {
	e := NewMarker("m", "m")
	if !e.AddClass(ClassHover) {
		t.Error("first AddClass should report change")
	}
	if e.AddClass(ClassHover) {
		t.Error("second AddClass should report no change")
	}
	e.AddClass(ClassCurrent)
	if got := e.Classes(); !reflect.DeepEqual(got, []string{"current", "hover"}) {
		t.Errorf("Classes = %v", got)
	}
	if !e.RemoveClass(ClassHover) || e.RemoveClass(ClassHover) {
		t.Error("RemoveClass change reporting")
	}
	if e.HasClass(ClassHover) || !e.HasClass(ClassCurrent) {
		t.Error("HasClass mismatch")
	}
}

// --- tree ---

func TestAddChildReparents(t *testing.T) {
	a, b := NewContainer("a"), NewContainer("b")
	c := NewMarker("c", "c")
	a.AddChild(c)
	b.AddChild(c)
	if c.Parent != b || a.NumChildren() != 0 || b.NumChildren() != 1 {
		t.Errorf("reparent failed: parent=%v a=%d b=%d", c.Parent, a.NumChildren(), b.NumChildren())
	}
}

func TestAddChildCyclePanics(t *testing.T) {
	a, b := NewContainer("a"), NewContainer("b")
	a.AddChild(b)
	defer func() {
		if recover() == nil {
			t.Error("expected panic for cycle")
		}
	}()
	b.AddChild(a)
}

func TestAddChildAt(t *testing.T) {
	p := NewContainer("p")
	x, y, z := NewContainer("x"), NewContainer("y"), NewContainer("z")
	p.AddChild(x)
	p.AddChild(z)
	p.AddChildAt(y, 1)
	if p.ChildAt(0) != x || p.ChildAt(1) != y || p.ChildAt(2) != z {
		t.Error("AddChildAt order wrong")
	}
}

func TestRemoveChildWrongParentPanics(t *testing.T) {
	a, b := NewContainer("a"), NewContainer("b")
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	a.RemoveChild(b)
}

func TestSortedByZIndexStable(t *testing.T) {
	p := NewContainer("p")
	a, b, c := NewMarker("a", "a"), NewMarker("b", "b"), NewMarker("c", "c")
	p.AddChild(a)
	p.AddChild(b)
	p.AddChild(c)
	a.SetZIndex(2)
	got := p.sorted()
	if got[0] != b || got[1] != c || got[2] != a {
		t.Errorf("sorted = %s %s %s", got[0].Name, got[1].Name, got[2].Name)
	}
}

func TestWalkSkipsSubtree(t *testing.T) {
	root := NewContainer("root")
	mk := NewMarker("m", "m")
	inner := NewContainer("inner")
	mk.AddChild(inner)
	root.AddChild(mk)

	var names []string
	root.Walk(func(e *Element) bool {
		names = append(names, e.Name)
		return e.Kind != ElementMarker
	})
	if !reflect.DeepEqual(names, []string{"root", "m"}) {
		t.Errorf("visited %v", names)
	}
	if got := root.FindAll(func(e *Element) bool { return e.Kind == ElementContainer }); len(got) != 2 {
		t.Errorf("FindAll = %d containers, want 2", len(got))
	}
	if NestedContainer(mk) != inner || ContainerOf(inner) != root {
		t.Error("NestedContainer/ContainerOf mismatch")
	}
}

func TestDispose(t *testing.T) {
	root := NewContainer("root")
	mk := NewMarker("m", "m")
	mk.AddClass(ClassHover)
	root.AddChild(mk)
	root.Dispose()
	if !root.IsDisposed() || !mk.IsDisposed() {
		t.Error("subtree not disposed")
	}
	if mk.ID != 0 || mk.HasClass(ClassHover) || mk.Parent != nil {
		t.Error("disposed element still holds state")
	}
	root.Dispose() // no-op
}

func TestSetBoxMarksSubtreeDirty(t *testing.T) {
	root := NewContainer("root")
	child := NewContainer("child")
	root.AddChild(child)
	updateWorldTransform(root, identityTransform, 1, false)
	root.SetBox(Rect{X: 5, Width: 10, Height: 10})
	if !root.transformDirty || !child.transformDirty {
		t.Error("SetBox should mark the subtree dirty")
	}
	if root.Box() != (Rect{X: 5, Width: 10, Height: 10}) {
		t.Errorf("Box = %v", root.Box())
	}
}
