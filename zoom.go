package hotspot

import (
	"github.com/rs/zerolog"
)

// MapperState is the coarse state of the zoom state machine.
type MapperState uint8

const (
	StateOverview MapperState = iota
	StateZoomed
)

func (s MapperState) String() string {
	if s == StateZoomed {
		return "zoomed"
	}
	return "overview"
}

// HistoryEntry is one zoom level. Parent is the container that was current
// before the zoom and receives the transform; Current is the container whose
// markers are active afterwards (the target's nested container, or Parent
// when the target has none). PrevImage is Parent's image before any swap.
type HistoryEntry struct {
	Parent    uint32
	Current   uint32
	Target    uint32
	PrevImage string
}

// FocusEvent is delivered to focus listeners after a transition settles.
type FocusEvent struct {
	Level  int
	Marker *Element // nil in the overview
}

// illustrationSlide is the distance illustration panels slide in from.
const illustrationSlide = 40.0

// stage is one step of a transition. The next stage starts once the
// returned timeline is done; a nil timeline counts as already done.
type stage func() *Timeline

// Mapper is the zoom state machine. It owns the history stack, the focused
// marker and the single animating flag that gates every transition.
type Mapper struct {
	reg   *Registry
	sched *Scheduler
	hit   *HitTester
	cfg   *Config
	log   zerolog.Logger

	viewport Rect

	history   []HistoryEntry
	currentID uint32
	focusedID uint32
	hoverID   uint32

	animating bool
	listening bool
	active    *Timeline
	// relayout is set when the viewport changed during a transition.
	relayout bool

	precomputed map[string]Transform

	focusListeners []func(FocusEvent)

	badges      *BadgePositioner
	checkpoints *CheckpointTracker
	// OnImageChange is called after a container's ImageSrc is swapped so
	// the host can attach the decoded image.
	OnImageChange func(*Element)
}

// NewMapper creates a mapper over reg. Call Start before use.
func NewMapper(reg *Registry, sched *Scheduler, hit *HitTester, cfg *Config, log zerolog.Logger) *Mapper {
	return &Mapper{
		reg:   reg,
		sched: sched,
		hit:   hit,
		cfg:   cfg,
		log:   log,
	}
}

// Start discovers the root, activates its markers and shows the global
// panels.
func (m *Mapper) Start() error {
	res := m.reg.DiscoverRoot()
	if !res.OK() {
		return res.Err
	}
	root := res.Value
	m.currentID = root.ID
	root.AddClass(ClassActive)
	m.reg.Rescan(root.ID)
	m.listening = true
	m.showNow(m.reg.GlobalPanels())
	m.Precompute()
	return nil
}

// --- Queries ---

// State returns Overview at level 0 and Zoomed otherwise.
func (m *Mapper) State() MapperState {
	if len(m.history) == 0 {
		return StateOverview
	}
	return StateZoomed
}

// Level returns the zoom depth, equal to the history length.
func (m *Mapper) Level() int {
	return len(m.history)
}

// History returns a copy of the history stack, outermost first.
func (m *Mapper) History() []HistoryEntry {
	out := make([]HistoryEntry, len(m.history))
	copy(out, m.history)
	return out
}

// Animating reports whether a transition is in flight.
func (m *Mapper) Animating() bool {
	return m.animating
}

// Listening reports whether pointer input reaches the markers.
func (m *Mapper) Listening() bool {
	return m.listening
}

// Focused returns the focused marker, or nil in the overview.
func (m *Mapper) Focused() *Element {
	return m.lookup(m.focusedID)
}

// Current returns the container whose markers are active.
func (m *Mapper) Current() *Element {
	return m.lookup(m.currentID)
}

// ActiveMarkers returns the markers of the current container.
func (m *Mapper) ActiveMarkers() []*Element {
	if m.currentID == 0 {
		return nil
	}
	return m.reg.Markers(m.currentID)
}

// Viewport returns the viewport the mapper lays out against.
func (m *Mapper) Viewport() Rect {
	return m.viewport
}

// OnFocusChange registers fn to run after every settled transition.
func (m *Mapper) OnFocusChange(fn func(FocusEvent)) {
	m.focusListeners = append(m.focusListeners, fn)
}

func (m *Mapper) lookup(id uint32) *Element {
	if id == 0 {
		return nil
	}
	res := m.reg.Element(id)
	if !res.OK() {
		return nil
	}
	return res.Value
}

// --- Viewport and precomputation ---

// SetViewport updates the layout viewport. Cached root transforms are
// dropped. A settled zoom is re-laid out immediately, a running transition
// once it completes.
func (m *Mapper) SetViewport(r Rect) {
	if r == m.viewport {
		return
	}
	m.viewport = r
	m.precomputed = nil
	if m.animating {
		m.relayout = true
		return
	}
	m.layoutHistory()
}

// layoutHistory recomputes the transform of every zoomed container for the
// current viewport, outermost first.
func (m *Mapper) layoutHistory() {
	for _, h := range m.history {
		c, t := m.lookup(h.Parent), m.lookup(h.Target)
		if c == nil || t == nil {
			continue
		}
		c.SetTransform(ComputeZoomTransform(zoomRequestFor(c, t, m.viewport, m.cfg)))
	}
	m.Precompute()
}

// Precompute caches the zoom transform of every root-level marker. It only
// runs while the root is at identity, since the result is expressed for an
// untransformed root.
func (m *Mapper) Precompute() {
	if !m.cfg.PrecomputeTransforms || m.viewport.Empty() {
		return
	}
	root := m.reg.Root()
	if root == nil || !root.IsIdentity() {
		return
	}
	out := make(map[string]Transform)
	for _, mk := range m.reg.RootMarkers() {
		if mk.HotspotID == "" {
			continue
		}
		out[mk.HotspotID] = ComputeZoomTransform(zoomRequestFor(root, mk, m.viewport, m.cfg))
	}
	m.precomputed = out
	m.log.Debug().Int("markers", len(out)).Msg("precomputed root transforms")
}

// Precomputed returns the cached transform for a root-level hotspot.
func (m *Mapper) Precomputed(hotspotID string) (Transform, bool) {
	t, ok := m.precomputed[hotspotID]
	return t, ok
}

// targetTransform returns the transform that zooms container onto marker.
func (m *Mapper) targetTransform(container, marker *Element) Transform {
	if container.Root && marker.Parent == container {
		if t, ok := m.precomputed[marker.HotspotID]; ok {
			return t
		}
	}
	return ComputeZoomTransform(zoomRequestFor(container, marker, m.viewport, m.cfg))
}

// --- Transitions ---

func (m *Mapper) reject(op string, mk *Element, reason string) bool {
	ev := m.log.Debug().Str("op", op).Str("reason", reason)
	if mk != nil {
		ev = ev.Str("hotspot", mk.HotspotID)
	}
	ev.Msg("transition ignored")
	return false
}

// ZoomToMarker zooms the current container onto mk. A sibling of the
// focused marker is routed to SwitchToMarker. Returns false when the
// request is ignored.
func (m *Mapper) ZoomToMarker(mk *Element) bool {
	if mk == nil || mk.IsDisposed() || mk.Kind != ElementMarker {
		return m.reject("zoom", nil, "not a marker")
	}
	if m.animating {
		return m.reject("zoom", mk, "animating")
	}
	if mk.ID == m.focusedID {
		return m.reject("zoom", mk, "already focused")
	}
	container := ContainerOf(mk)
	if container == nil {
		return m.reject("zoom", mk, "no container")
	}
	if n := len(m.history); n > 0 && m.history[n-1].Parent == container.ID {
		return m.SwitchToMarker(mk)
	}
	if container.ID != m.currentID {
		return m.reject("zoom", mk, "marker not in current container")
	}
	if m.viewport.Empty() {
		return m.reject("zoom", mk, "no viewport")
	}

	target := m.targetTransform(container, mk)

	current := container.ID
	if nested := NestedContainer(mk); nested != nil {
		current = nested.ID
	}
	m.history = append(m.history, HistoryEntry{
		Parent:    container.ID,
		Current:   current,
		Target:    mk.ID,
		PrevImage: container.ImageSrc,
	})
	container.AddClass(ClassZoomed)
	mk.AddClass(ClassZoomed)
	m.setFocus(mk)
	m.suspend()
	m.swapImage(container, mk.ZoomImageSrc)

	m.log.Debug().Str("hotspot", mk.HotspotID).Int("level", len(m.history)).
		Float64("scale", target.Scale).Msg("zoom in")

	m.transition(
		m.hideStage,
		func() *Timeline {
			tl := m.showStage(m.panelsFor(mk))
			return tl.Transform(container, target, seconds(m.cfg.ZoomDuration), m.cfg.easing(), 0)
		},
		func() *Timeline {
			m.activate(current)
			return nil
		},
	)
	return true
}

// SwitchToMarker moves focus to a sibling of the focused marker without
// pushing a history frame. Returns false when the request is ignored.
func (m *Mapper) SwitchToMarker(mk *Element) bool {
	if mk == nil || mk.IsDisposed() || mk.Kind != ElementMarker {
		return m.reject("switch", nil, "not a marker")
	}
	if m.animating {
		return m.reject("switch", mk, "animating")
	}
	n := len(m.history)
	if n == 0 {
		return m.reject("switch", mk, "not zoomed")
	}
	if mk.ID == m.focusedID {
		return m.reject("switch", mk, "already focused")
	}
	top := &m.history[n-1]
	container := m.lookup(top.Parent)
	if container == nil || mk.Parent == nil || ContainerOf(mk) != container {
		return m.reject("switch", mk, "not a sibling of the focused marker")
	}
	if m.viewport.Empty() {
		return m.reject("switch", mk, "no viewport")
	}

	target := m.targetTransform(container, mk)

	if prev := m.lookup(top.Target); prev != nil {
		prev.RemoveClass(ClassZoomed)
	}
	if cur := m.lookup(top.Current); cur != nil {
		cur.RemoveClass(ClassActive)
	}
	current := container.ID
	if nested := NestedContainer(mk); nested != nil {
		current = nested.ID
	}
	top.Target = mk.ID
	top.Current = current
	mk.AddClass(ClassZoomed)
	m.setFocus(mk)
	m.suspend()
	if mk.ZoomImageSrc != "" {
		m.swapImage(container, mk.ZoomImageSrc)
	} else {
		m.swapImage(container, top.PrevImage)
	}

	m.log.Debug().Str("hotspot", mk.HotspotID).Int("level", n).Msg("switch")

	m.transition(
		m.hideStage,
		func() *Timeline {
			tl := m.showStage(m.panelsFor(mk))
			return tl.Transform(container, target, seconds(m.cfg.ZoomDuration), m.cfg.easing(), 0)
		},
		func() *Timeline {
			m.activate(current)
			return nil
		},
	)
	return true
}

// ZoomOut pops one level and animates its container back to identity.
// Returns false when the request is ignored.
func (m *Mapper) ZoomOut() bool {
	if m.animating {
		return m.reject("zoom out", nil, "animating")
	}
	n := len(m.history)
	if n == 0 {
		return m.reject("zoom out", nil, "empty history")
	}
	entry := m.history[n-1]
	m.history = m.history[:n-1]

	container := m.lookup(entry.Parent)
	if target := m.lookup(entry.Target); target != nil {
		target.RemoveClass(ClassZoomed)
		target.RemoveClass(ClassCurrent)
	}
	if cur := m.lookup(entry.Current); cur != nil {
		cur.RemoveClass(ClassActive)
	}

	var focus *Element
	if n > 1 {
		focus = m.lookup(m.history[n-2].Target)
	}
	m.setFocus(focus)
	m.suspend()

	m.log.Debug().Int("level", len(m.history)).Msg("zoom out")

	m.transition(
		m.hideStage,
		func() *Timeline {
			tl := m.sched.NewTimeline()
			if container != nil {
				tl.Transform(container, IdentityTransform, seconds(m.cfg.ZoomOutDuration), m.cfg.easing(), 0)
			}
			return tl
		},
		func() *Timeline {
			if container != nil {
				container.RemoveClass(ClassZoomed)
				m.swapImage(container, entry.PrevImage)
			}
			m.activate(entry.Parent)
			if len(m.history) == 0 && m.precomputed == nil {
				m.Precompute()
			}
			if focus != nil {
				return m.showStage(m.panelsFor(focus))
			}
			return m.showStage(m.reg.GlobalPanels())
		},
	)
	return true
}

// Reset abandons any transition and returns to a clean overview.
func (m *Mapper) Reset() {
	if m.active != nil {
		m.active.Kill()
		m.active = nil
	}
	for i := len(m.history) - 1; i >= 0; i-- {
		h := m.history[i]
		if c := m.lookup(h.Parent); c != nil {
			c.SetTransform(IdentityTransform)
			c.RemoveClass(ClassZoomed)
			m.swapImage(c, h.PrevImage)
		}
		if t := m.lookup(h.Target); t != nil {
			t.RemoveClass(ClassZoomed)
		}
		if c := m.lookup(h.Current); c != nil {
			c.RemoveClass(ClassActive)
		}
	}
	m.history = m.history[:0]
	m.setFocus(nil)
	m.animating = false
	m.relayout = false
	m.listening = true
	m.wake()
	// Panels still fading out have already lost the open class.
	for _, p := range m.reg.Panels() {
		if p.Visible || p.HasClass(ClassOpen) {
			m.hideNow(p)
		}
	}
	if root := m.reg.Root(); root != nil {
		m.activate(root.ID)
	}
	m.showNow(m.reg.GlobalPanels())
	m.Precompute()
	m.notifyFocus()
}

// transition runs stages in order. The animating flag is set for the whole
// sequence and cleared after the last stage, whether or not any stage found
// something to animate.
func (m *Mapper) transition(stages ...stage) {
	m.animating = true
	m.wake()
	var step func(i int)
	step = func(i int) {
		if i == len(stages) {
			m.active = nil
			m.animating = false
			if m.relayout {
				m.relayout = false
				m.layoutHistory()
			}
			m.listening = true
			m.wake()
			m.notifyFocus()
			return
		}
		tl := stages[i]()
		if tl == nil {
			tl = m.sched.NewTimeline()
		}
		tl.OnComplete(func() { step(i + 1) })
		m.active = tl
		m.sched.Play(tl)
	}
	step(0)
}

// wake lets the trackers re-evaluate their ticker subscriptions.
func (m *Mapper) wake() {
	if m.badges != nil {
		m.badges.Track()
	}
	if m.checkpoints != nil {
		m.checkpoints.Refresh()
	}
}

func (m *Mapper) suspend() {
	m.listening = false
	if h := m.lookup(m.hoverID); h != nil {
		h.RemoveClass(ClassHover)
	}
	m.hoverID = 0
	if m.badges != nil {
		m.badges.OnLeave()
	}
}

func (m *Mapper) setFocus(mk *Element) {
	if prev := m.lookup(m.focusedID); prev != nil {
		prev.RemoveClass(ClassCurrent)
	}
	m.focusedID = 0
	if mk != nil {
		m.focusedID = mk.ID
		mk.AddClass(ClassCurrent)
	}
}

// activate makes id the current container and rescans its markers.
func (m *Mapper) activate(id uint32) {
	if prev := m.lookup(m.currentID); prev != nil {
		prev.RemoveClass(ClassActive)
	}
	m.currentID = id
	if c := m.lookup(id); c != nil {
		c.AddClass(ClassActive)
	}
	m.reg.Rescan(id)
}

func (m *Mapper) swapImage(c *Element, src string) {
	if src == "" || c.ImageSrc == src {
		return
	}
	c.ImageSrc = src
	if m.OnImageChange != nil {
		m.OnImageChange(c)
	}
}

func (m *Mapper) notifyFocus() {
	ev := FocusEvent{Level: len(m.history), Marker: m.Focused()}
	for _, fn := range m.focusListeners {
		fn(ev)
	}
}

// --- Panels ---

// panelsFor returns the related panels of mk. A marker without panels
// yields an empty set so the transition still completes.
func (m *Mapper) panelsFor(mk *Element) PanelSet {
	res := m.reg.RelatedPanels(mk.HotspotID)
	if !res.OK() {
		m.log.Debug().Str("hotspot", mk.HotspotID).Err(res.Err).Msg("no related panels")
		return PanelSet{}
	}
	return res.Value
}

// hideStage fades out every open panel. The open class is dropped up front
// so no two sets are ever open together.
func (m *Mapper) hideStage() *Timeline {
	tl := m.sched.NewTimeline()
	d := seconds(m.cfg.PanelFadeDuration)
	for _, p := range m.reg.VisiblePanels() {
		p.RemoveClass(ClassOpen)
		if p.PanelKind == PanelPath && m.checkpoints != nil {
			m.checkpoints.Close(p)
		}
		tl.Tween(p, PropAlpha, 0, d, m.cfg.easing(), 0)
		panel := p
		tl.Call(d, func() { panel.Visible = false })
	}
	return tl
}

// showStage fades in every panel of set.
func (m *Mapper) showStage(set PanelSet) *Timeline {
	tl := m.sched.NewTimeline()
	d := seconds(m.cfg.PanelFadeDuration)
	for _, p := range set.Panels() {
		p.Visible = true
		p.SetAlpha(0)
		p.AddClass(ClassOpen)
		tl.Tween(p, PropAlpha, 1, d, m.cfg.easing(), 0)
		if p.PanelKind == PanelIllustration && m.cfg.IllustrationAnimation {
			p.OffsetY = illustrationSlide
			tl.Tween(p, PropOffsetY, 0, seconds(m.cfg.ZoomDuration), m.cfg.easing(), 0)
		}
		if p.PanelKind == PanelPath && m.checkpoints != nil {
			m.checkpoints.Open(p)
		}
	}
	return tl
}

func (m *Mapper) showNow(set PanelSet) {
	for _, p := range set.Panels() {
		p.Visible = true
		p.SetAlpha(1)
		p.OffsetY = 0
		p.AddClass(ClassOpen)
		if p.PanelKind == PanelPath && m.checkpoints != nil {
			m.checkpoints.Open(p)
		}
	}
}

func (m *Mapper) hideNow(p *Element) {
	p.RemoveClass(ClassOpen)
	p.Visible = false
	p.SetAlpha(0)
	if p.PanelKind == PanelPath && m.checkpoints != nil {
		m.checkpoints.Close(p)
	}
}

// --- Pointer input ---

// HandlePointerMove updates hover state for the pointer at (x, y). Badges
// and checkpoints are forwarded to their positioners.
func (m *Mapper) HandlePointerMove(x, y float64) {
	if m.checkpoints != nil {
		m.checkpoints.Hover(x, y)
	}
	if !m.listening {
		return
	}
	mk, badge := m.hit.Pick(m.ActiveMarkers(), x, y)
	var id uint32
	if mk != nil {
		id = mk.ID
	}
	if id != m.hoverID {
		if prev := m.lookup(m.hoverID); prev != nil {
			prev.RemoveClass(ClassHover)
			if prev.OnPointerLeave != nil {
				prev.OnPointerLeave(PointerContext{Element: prev, GlobalX: x, GlobalY: y})
			}
		}
		m.hoverID = id
		if mk != nil {
			mk.AddClass(ClassHover)
			if mk.OnPointerEnter != nil {
				lx, ly := mk.WorldToLocal(x, y)
				mk.OnPointerEnter(PointerContext{Element: mk, GlobalX: x, GlobalY: y, LocalX: lx, LocalY: ly})
			}
		}
	}
	if m.badges == nil {
		return
	}
	if badge != nil {
		m.badges.OnHover(badge)
	} else {
		m.badges.OnLeave()
	}
}

// HandleClick resolves a click at (x, y) and zooms to the marker under it.
// Returns the marker when a transition started. The marker's OnClick only
// runs in that case, with coordinates taken before the zoom.
func (m *Mapper) HandleClick(x, y float64) *Element {
	if !m.listening {
		return nil
	}
	mk, _ := m.hit.Pick(m.ActiveMarkers(), x, y)
	if mk == nil {
		return nil
	}
	lx, ly := mk.WorldToLocal(x, y)
	if !m.ZoomToMarker(mk) {
		return nil
	}
	if mk.OnClick != nil {
		mk.OnClick(ClickContext{Element: mk, GlobalX: x, GlobalY: y, LocalX: lx, LocalY: ly})
	}
	return mk
}

// Hovered returns the marker under the pointer, or nil.
func (m *Mapper) Hovered() *Element {
	return m.lookup(m.hoverID)
}
