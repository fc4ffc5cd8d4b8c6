package hotspot

import (
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
)

// PointerContext carries pointer event data for per-element callbacks.
type PointerContext struct {
	Element *Element
	GlobalX float64
	GlobalY float64
	LocalX  float64
	LocalY  float64
}

// ClickContext carries click event data.
type ClickContext struct {
	Element *Element
	GlobalX float64
	GlobalY float64
	LocalX  float64
	LocalY  float64
}

// elementIDCounter is a plain counter (no atomic: the mapper is single-threaded).
var elementIDCounter uint32

func nextElementID() uint32 {
	elementIDCounter++
	return elementIDCounter
}

// Element is the retained tree node standing in for the widget's DOM. A
// single flat struct covers every kind so the registry can index it without
// interface dispatch.
type Element struct {
	// Identity
	ID        uint32
	Name      string
	Kind      ElementKind
	HotspotID string
	PanelKind PanelKind
	Root      bool

	// Hierarchy
	Parent   *Element
	children []*Element

	// Layout box, local to the parent's untransformed box.
	X, Y          float64
	Width, Height float64

	// Transform around the box centre.
	Scale      float64
	TranslateX float64
	TranslateY float64

	// Offsets applied after layout (badge overflow, slide-in).
	OffsetX, OffsetY float64

	worldTransform [6]float64
	worldAlpha     float64
	transformDirty bool

	// Visibility & interaction
	Alpha        float64
	Visible      bool
	Interactable bool
	ZIndex       int

	// Content
	Color        Color
	ImageSrc     string
	ZoomImageSrc string
	Text         string
	Checkpoints  []float64
	UserData     any

	image   *ebiten.Image
	classes map[string]struct{}

	// OnClick runs when a click on this marker starts a zoom.
	OnClick        func(ClickContext)
	OnPointerEnter func(PointerContext)
	OnPointerLeave func(PointerContext)

	disposed       bool
	childrenSorted bool
	sortedChildren []*Element
}

func elementDefaults(e *Element) {
	e.ID = nextElementID()
	e.Scale = 1
	e.Alpha = 1
	e.Color = ColorWhite
	e.Visible = true
	e.transformDirty = true
	e.childrenSorted = true
}

// NewContainer creates a container element. The root container of a mapper
// is a container with Root set.
func NewContainer(name string) *Element {
	e := &Element{Name: name, Kind: ElementContainer}
	elementDefaults(e)
	return e
}

// NewMarker creates an interactable marker tied to hotspotID.
func NewMarker(name, hotspotID string) *Element {
	e := &Element{Name: name, Kind: ElementMarker, HotspotID: hotspotID, Interactable: true}
	elementDefaults(e)
	return e
}

// NewPanel creates an auxiliary panel. An empty hotspotID makes it a global
// panel shown in the overview.
func NewPanel(name string, kind PanelKind, hotspotID string) *Element {
	e := &Element{Name: name, Kind: ElementPanel, PanelKind: kind, HotspotID: hotspotID}
	elementDefaults(e)
	e.Visible = false
	e.Alpha = 0
	return e
}

// NewBadge creates a floating text badge. Badges are hit-tested before any
// marker artwork.
func NewBadge(name, text string) *Element {
	e := &Element{Name: name, Kind: ElementBadge, Text: text, Interactable: true}
	elementDefaults(e)
	return e
}

// NewInfo creates the info panel revealed by hovering a badge.
func NewInfo(name, text string) *Element {
	e := &Element{Name: name, Kind: ElementInfo, Text: text}
	elementDefaults(e)
	e.Visible = false
	return e
}

// NewCheckpoint creates a checkpoint placed at percent (0-100) along the
// path of its parent path panel.
func NewCheckpoint(name string, percent float64) *Element {
	e := &Element{Name: name, Kind: ElementCheckpoint, Interactable: true}
	e.Checkpoints = []float64{percent}
	elementDefaults(e)
	return e
}

// NewImage creates a decorative image element.
func NewImage(name, src string) *Element {
	e := &Element{Name: name, Kind: ElementImage, ImageSrc: src}
	elementDefaults(e)
	return e
}

// SetImage attaches a decoded ebiten image for rendering.
func (e *Element) SetImage(img *ebiten.Image) {
	e.image = img
}

// Image returns the attached image, or nil.
func (e *Element) Image() *ebiten.Image {
	return e.image
}

// Box returns the local layout box.
func (e *Element) Box() Rect {
	return Rect{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height}
}

// SetBox sets the local layout box and marks the subtree dirty.
func (e *Element) SetBox(r Rect) {
	e.X, e.Y, e.Width, e.Height = r.X, r.Y, r.Width, r.Height
	markSubtreeDirty(e)
}

// --- Classes ---

// AddClass adds a state class. Returns true if the class was not already set.
func (e *Element) AddClass(name string) bool {
	if e.classes == nil {
		e.classes = make(map[string]struct{}, 2)
	}
	if _, ok := e.classes[name]; ok {
		return false
	}
	e.classes[name] = struct{}{}
	return true
}

// RemoveClass removes a state class. Returns true if it was set.
func (e *Element) RemoveClass(name string) bool {
	if _, ok := e.classes[name]; !ok {
		return false
	}
	delete(e.classes, name)
	return true
}

// HasClass reports whether the class is set.
func (e *Element) HasClass(name string) bool {
	_, ok := e.classes[name]
	return ok
}

// Classes returns the set classes in sorted order.
func (e *Element) Classes() []string {
	out := make([]string, 0, len(e.classes))
	for c := range e.classes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// --- Tree manipulation ---

// AddChild appends child to this element's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this element (cycle).
func (e *Element) AddChild(child *Element) {
	if child == nil {
		panic("hotspot: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(e, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if isAncestor(child, e) {
		panic("hotspot: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = e
	e.children = append(e.children, child)
	e.childrenSorted = false
	markSubtreeDirty(child)
	if globalDebug {
		debugCheckTreeDepth(child)
	}
}

// AddChildAt inserts child at the given index.
func (e *Element) AddChildAt(child *Element, index int) {
	if child == nil {
		panic("hotspot: cannot add nil child")
	}
	if isAncestor(child, e) {
		panic("hotspot: adding child would create a cycle")
	}
	if index < 0 || index > len(e.children) {
		panic("hotspot: child index out of range")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = e
	e.children = append(e.children, nil)
	copy(e.children[index+1:], e.children[index:])
	e.children[index] = child
	e.childrenSorted = false
	markSubtreeDirty(child)
}

// RemoveChild detaches child from this element.
// Panics if child.Parent != e.
func (e *Element) RemoveChild(child *Element) {
	if child.Parent != e {
		panic("hotspot: child's parent is not this element")
	}
	e.removeChildByPtr(child)
	child.Parent = nil
	e.childrenSorted = false
	markSubtreeDirty(child)
}

// RemoveFromParent detaches this element from its parent.
// No-op if it has no parent.
func (e *Element) RemoveFromParent() {
	if e.Parent == nil {
		return
	}
	e.Parent.RemoveChild(e)
}

// Children returns the child list. The returned slice MUST NOT be mutated.
func (e *Element) Children() []*Element {
	return e.children
}

// NumChildren returns the number of children.
func (e *Element) NumChildren() int {
	return len(e.children)
}

// ChildAt returns the child at the given index.
func (e *Element) ChildAt(index int) *Element {
	return e.children[index]
}

// SetZIndex sets the element's ZIndex and marks the parent's order stale.
func (e *Element) SetZIndex(z int) {
	if e.ZIndex == z {
		return
	}
	e.ZIndex = z
	if e.Parent != nil {
		e.Parent.childrenSorted = false
	}
}

// sorted returns the children ordered by ZIndex, stable on insertion order.
func (e *Element) sorted() []*Element {
	if e.childrenSorted && e.sortedChildren != nil {
		return e.sortedChildren
	}
	if cap(e.sortedChildren) < len(e.children) {
		e.sortedChildren = make([]*Element, len(e.children))
	}
	e.sortedChildren = e.sortedChildren[:len(e.children)]
	copy(e.sortedChildren, e.children)
	sort.SliceStable(e.sortedChildren, func(i, j int) bool {
		return e.sortedChildren[i].ZIndex < e.sortedChildren[j].ZIndex
	})
	e.childrenSorted = true
	return e.sortedChildren
}

// Walk visits e and its descendants depth-first in tree order. Returning
// false from fn skips that element's subtree.
func (e *Element) Walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.children {
		c.Walk(fn)
	}
}

// FindAll returns every descendant (including e) matching pred, in tree order.
func (e *Element) FindAll(pred func(*Element) bool) []*Element {
	var out []*Element
	e.Walk(func(n *Element) bool {
		if pred(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// FirstChildOfKind returns the first direct child of the given kind, or nil.
func (e *Element) FirstChildOfKind(kind ElementKind) *Element {
	for _, c := range e.children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

// --- Disposal ---

// Dispose removes this element from its parent, marks it as disposed,
// and recursively disposes all descendants.
func (e *Element) Dispose() {
	if e.disposed {
		return
	}
	e.RemoveFromParent()
	e.dispose()
}

func (e *Element) dispose() {
	e.disposed = true
	e.ID = 0
	for _, child := range e.children {
		child.Parent = nil
		child.dispose()
	}
	e.children = nil
	e.sortedChildren = nil
	e.Parent = nil
	e.image = nil
	e.classes = nil
	e.UserData = nil
	e.OnClick = nil
	e.OnPointerEnter = nil
	e.OnPointerLeave = nil
}

// IsDisposed returns true if this element has been disposed.
func (e *Element) IsDisposed() bool {
	return e.disposed
}

// --- Helpers ---

func isAncestor(candidate, e *Element) bool {
	for p := e; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from e.children without clearing child.Parent.
func (e *Element) removeChildByPtr(child *Element) {
	for i, c := range e.children {
		if c == child {
			copy(e.children[i:], e.children[i+1:])
			e.children[len(e.children)-1] = nil
			e.children = e.children[:len(e.children)-1]
			return
		}
	}
}

func markSubtreeDirty(e *Element) {
	e.transformDirty = true
	for _, child := range e.children {
		markSubtreeDirty(child)
	}
}
