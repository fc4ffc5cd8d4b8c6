package hotspot

import (
	"fmt"

	"github.com/rs/zerolog"
)

// PanelSet groups the auxiliary panels sharing one hotspot id. The global
// set has an empty HotspotID.
type PanelSet struct {
	HotspotID    string
	Text         *Element
	Person       *Element
	Illustration *Element
	Path         *Element
}

// Panels returns the non-nil panels of the set.
func (p PanelSet) Panels() []*Element {
	out := make([]*Element, 0, 4)
	for _, e := range []*Element{p.Text, p.Person, p.Illustration, p.Path} {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

// Empty reports whether the set has no panels.
func (p PanelSet) Empty() bool {
	return p.Text == nil && p.Person == nil && p.Illustration == nil && p.Path == nil
}

func (p *PanelSet) put(e *Element) {
	switch e.PanelKind {
	case PanelText:
		p.Text = e
	case PanelPerson:
		p.Person = e
	case PanelIllustration:
		p.Illustration = e
	case PanelPath:
		p.Path = e
	}
}

// Registry indexes the mapper tree by stable element ID and hotspot id, so
// the state machine holds IDs and resolves them through lookups instead of
// keeping live references that can go stale.
type Registry struct {
	scope  *Element
	rootID uint32

	byID      map[uint32]*Element
	byHotspot map[string]*Element
	panels    map[string]*PanelSet
	markers   map[uint32][]*Element

	log zerolog.Logger
}

// NewRegistry indexes scope. scope is the mapper's stage: it holds the root
// container and the panel layer.
func NewRegistry(scope *Element, log zerolog.Logger) *Registry {
	r := &Registry{scope: scope, log: log}
	r.Index()
	return r
}

// Index rebuilds the ID, hotspot and panel indexes from the tree. Call it
// after structural changes. The discovered root is kept.
func (r *Registry) Index() {
	r.byID = make(map[uint32]*Element)
	r.byHotspot = make(map[string]*Element)
	r.panels = make(map[string]*PanelSet)
	r.markers = make(map[uint32][]*Element)
	if r.scope == nil {
		return
	}
	r.scope.Walk(func(e *Element) bool {
		r.byID[e.ID] = e
		switch e.Kind {
		case ElementMarker:
			if e.HotspotID != "" {
				if prev, dup := r.byHotspot[e.HotspotID]; dup {
					r.log.Debug().Str("hotspot", e.HotspotID).Uint32("first", prev.ID).
						Uint32("second", e.ID).Msg("duplicate hotspot id, keeping first")
				} else {
					r.byHotspot[e.HotspotID] = e
				}
			}
		case ElementPanel:
			set, ok := r.panels[e.HotspotID]
			if !ok {
				set = &PanelSet{HotspotID: e.HotspotID}
				r.panels[e.HotspotID] = set
			}
			set.put(e)
		}
		return true
	})
}

// DiscoverRoot finds the root container once. Later calls return the same
// element until Reset.
func (r *Registry) DiscoverRoot() Result[*Element] {
	if r.rootID != 0 {
		if e, ok := r.byID[r.rootID]; ok {
			return Ok(e)
		}
	}
	if r.scope == nil {
		return NotFound[*Element](ErrNoRoot)
	}
	var root *Element
	r.scope.Walk(func(e *Element) bool {
		if root != nil {
			return false
		}
		if e.Kind == ElementContainer && e.Root {
			root = e
			return false
		}
		return true
	})
	if root == nil {
		r.log.Debug().Msg("no root container in scope")
		return NotFound[*Element](ErrNoRoot)
	}
	r.rootID = root.ID
	return Ok(root)
}

// Root returns the discovered root container, or nil.
func (r *Registry) Root() *Element {
	if r.rootID == 0 {
		return nil
	}
	return r.byID[r.rootID]
}

// Reset forgets the root and rebuilds every index.
func (r *Registry) Reset() {
	r.rootID = 0
	r.Index()
}

// Element looks up an element by ID.
func (r *Registry) Element(id uint32) Result[*Element] {
	e, ok := r.byID[id]
	if !ok || e.IsDisposed() {
		return NotFound[*Element](fmt.Errorf("element %d: %w", id, ErrUnknownMarker))
	}
	return Ok(e)
}

// MarkerByHotspot looks up a marker by hotspot id at any depth.
func (r *Registry) MarkerByHotspot(id string) Result[*Element] {
	e, ok := r.byHotspot[id]
	if !ok {
		return NotFound[*Element](fmt.Errorf("hotspot %q: %w", id, ErrUnknownMarker))
	}
	return Ok(e)
}

// GlobalPanels returns the panels without a hotspot id. They are scoped to
// the stage the root lives in and never recomputed from nested containers.
func (r *Registry) GlobalPanels() PanelSet {
	if set, ok := r.panels[""]; ok {
		return *set
	}
	return PanelSet{}
}

// RelatedPanels returns the panels tagged with hotspotID, regardless of how
// deeply the marker is nested.
func (r *Registry) RelatedPanels(hotspotID string) Result[PanelSet] {
	if hotspotID == "" {
		return NotFound[PanelSet](fmt.Errorf("empty hotspot id: %w", ErrNoPanels))
	}
	set, ok := r.panels[hotspotID]
	if !ok || set.Empty() {
		return NotFound[PanelSet](fmt.Errorf("hotspot %q: %w", hotspotID, ErrNoPanels))
	}
	return Ok(*set)
}

// VisiblePanels returns every panel currently carrying the open class.
func (r *Registry) VisiblePanels() []*Element {
	var out []*Element
	for _, e := range r.byID {
		if e.Kind == ElementPanel && e.HasClass(ClassOpen) {
			out = append(out, e)
		}
	}
	return out
}

// Panels returns every panel in scope, open or not.
func (r *Registry) Panels() []*Element {
	var out []*Element
	for _, e := range r.byID {
		if e.Kind == ElementPanel && !e.IsDisposed() {
			out = append(out, e)
		}
	}
	return out
}

// Markers returns the markers of a container in tree order. The result is
// cached until Rescan or Index.
func (r *Registry) Markers(containerID uint32) []*Element {
	if ms, ok := r.markers[containerID]; ok {
		return ms
	}
	c, ok := r.byID[containerID]
	if !ok {
		return nil
	}
	var ms []*Element
	for _, child := range c.children {
		if child.Kind == ElementMarker {
			ms = append(ms, child)
		}
	}
	r.markers[containerID] = ms
	return ms
}

// Rescan drops the cached marker list of a container.
func (r *Registry) Rescan(containerID uint32) []*Element {
	delete(r.markers, containerID)
	return r.Markers(containerID)
}

// RootMarkers returns the markers of the root container.
func (r *Registry) RootMarkers() []*Element {
	if r.rootID == 0 {
		return nil
	}
	return r.Markers(r.rootID)
}

// NestedContainer returns the container nested inside marker, or nil.
func NestedContainer(marker *Element) *Element {
	if marker == nil {
		return nil
	}
	return marker.FirstChildOfKind(ElementContainer)
}

// ContainerOf returns the nearest container ancestor of e.
func ContainerOf(e *Element) *Element {
	for p := e.Parent; p != nil; p = p.Parent {
		if p.Kind == ElementContainer {
			return p
		}
	}
	return nil
}

// BadgeOf returns the floating badge of a marker, or nil.
func BadgeOf(marker *Element) *Element {
	return marker.FirstChildOfKind(ElementBadge)
}

// RootMarkerOf returns the root-level marker that e belongs to, walking up
// through nested containers.
func (r *Registry) RootMarkerOf(e *Element) *Element {
	root := r.Root()
	if root == nil {
		return nil
	}
	for p := e; p != nil; p = p.Parent {
		if p.Kind == ElementMarker && p.Parent == root {
			return p
		}
	}
	return nil
}
