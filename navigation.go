package hotspot

import (
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NavMode selects which inputs drive navigation.
type NavMode uint8

const (
	// ModeScroll navigates on wheel, touch swipes and keys.
	ModeScroll NavMode = iota
	// ModeClick leaves wheel and touch to the page; only keys navigate.
	ModeClick
)

func (m NavMode) String() string {
	if m == ModeClick {
		return "click"
	}
	return "scroll"
}

// ParseNavMode parses "scroll" or "click". The empty string is scroll.
func ParseNavMode(s string) (NavMode, bool) {
	switch strings.ToLower(s) {
	case "", "scroll":
		return ModeScroll, true
	case "click":
		return ModeClick, true
	}
	return ModeScroll, false
}

type pendingKind uint8

const (
	pendingNone pendingKind = iota
	pendingOverview
	pendingGoTo
)

// Navigator is an ordinal cursor over the root markers. -1 is the overview.
// It turns wheel, touch and key input into mapper transitions and follows
// transitions started elsewhere.
type Navigator struct {
	mapper *Mapper
	reg    *Registry
	cfg    NavigationConfig
	mode   NavMode
	log    zerolog.Logger

	// ModalOpen reports whether unrelated UI currently owns input.
	ModalOpen func() bool

	cursor int

	wheelAcc  float64
	lastWheel time.Time

	touching  bool
	touchLast float64
	touchAcc  float64
	lastTouch time.Time

	pending   pendingKind
	pendingTo int
}

// NewNavigator creates a navigator and subscribes it to mapper focus
// changes.
func NewNavigator(mapper *Mapper, reg *Registry, cfg NavigationConfig, log zerolog.Logger) *Navigator {
	mode, _ := ParseNavMode(cfg.Mode)
	n := &Navigator{
		mapper: mapper,
		reg:    reg,
		cfg:    cfg,
		mode:   mode,
		log:    log,
		cursor: -1,
	}
	mapper.OnFocusChange(n.onFocus)
	return n
}

// Cursor returns the current index, -1 in the overview.
func (n *Navigator) Cursor() int {
	return n.cursor
}

// Mode returns the navigation mode.
func (n *Navigator) Mode() NavMode {
	return n.mode
}

// SetMode switches the navigation mode and clears accumulated input.
func (n *Navigator) SetMode(mode NavMode) {
	n.mode = mode
	n.resetInput()
}

// Len returns the number of navigable markers.
func (n *Navigator) Len() int {
	return len(n.reg.RootMarkers())
}

func (n *Navigator) suppressed() bool {
	if !n.cfg.Enabled {
		return true
	}
	if n.ModalOpen != nil && n.ModalOpen() {
		return true
	}
	return n.mapper.Animating()
}

// Next moves to the following marker. At the last index it is a no-op.
func (n *Navigator) Next() bool {
	if n.suppressed() {
		return false
	}
	ms := n.reg.RootMarkers()
	if n.cursor >= len(ms)-1 {
		return false
	}
	if n.mapper.Level() > 1 {
		return n.mapper.ZoomOut()
	}
	to := n.cursor + 1
	var ok bool
	if n.cursor == -1 {
		ok = n.mapper.ZoomToMarker(ms[to])
	} else {
		ok = n.mapper.SwitchToMarker(ms[to])
	}
	if ok {
		n.cursor = to
	}
	return ok
}

// Previous moves to the preceding marker; from the first marker it zooms
// out to the overview. In the overview it is a no-op.
func (n *Navigator) Previous() bool {
	if n.suppressed() || n.cursor < 0 {
		return false
	}
	if n.mapper.Level() > 1 {
		return n.mapper.ZoomOut()
	}
	if n.cursor == 0 {
		ok := n.mapper.ZoomOut()
		if ok {
			n.cursor = -1
		}
		return ok
	}
	ms := n.reg.RootMarkers()
	to := min(n.cursor-1, len(ms)-1)
	if !n.mapper.SwitchToMarker(ms[to]) {
		return false
	}
	n.cursor = to
	return true
}

// First moves to the first marker.
func (n *Navigator) First() bool {
	return n.GoTo(0)
}

// Last moves to the last marker.
func (n *Navigator) Last() bool {
	return n.GoTo(n.Len() - 1)
}

// GoTo moves to marker i. From deeper levels it zooms out first and
// continues once the mapper settles at level 1.
func (n *Navigator) GoTo(i int) bool {
	if n.suppressed() {
		return false
	}
	ms := n.reg.RootMarkers()
	if i < 0 || i >= len(ms) {
		return false
	}
	if n.mapper.Level() > 1 {
		// Set before zooming out: instant transitions settle synchronously.
		n.pending, n.pendingTo = pendingGoTo, i
		if !n.mapper.ZoomOut() {
			n.pending = pendingNone
			return false
		}
		return true
	}
	if i == n.cursor && n.mapper.Level() == 1 {
		return false
	}
	if !n.mapper.ZoomToMarker(ms[i]) {
		return false
	}
	n.cursor = i
	return true
}

// Overview zooms all the way out, one level per transition.
func (n *Navigator) Overview() bool {
	if n.suppressed() || n.mapper.Level() == 0 {
		return false
	}
	n.pending = pendingOverview
	if !n.mapper.ZoomOut() {
		n.pending = pendingNone
		return false
	}
	return true
}

// Sync points the cursor at the root-level ancestor of mk, or the overview
// when mk is nil or not under the root.
func (n *Navigator) Sync(mk *Element) {
	n.cursor = -1
	if mk == nil {
		return
	}
	rm := n.reg.RootMarkerOf(mk)
	for i, m := range n.reg.RootMarkers() {
		if m == rm {
			n.cursor = i
			return
		}
	}
}

func (n *Navigator) onFocus(ev FocusEvent) {
	n.Sync(ev.Marker)
	p := n.pending
	n.pending = pendingNone
	switch p {
	case pendingOverview:
		if n.mapper.Level() > 0 {
			n.Overview()
		}
	case pendingGoTo:
		n.GoTo(n.pendingTo)
	}
}

// --- Input ---

// HandleKey maps a key to a navigation command.
func (n *Navigator) HandleKey(k Key) bool {
	if !n.cfg.Keyboard || n.suppressed() {
		return false
	}
	switch k {
	case KeyArrowUp, KeyArrowLeft:
		return n.Previous()
	case KeyArrowDown, KeyArrowRight:
		return n.Next()
	case KeyHome:
		return n.First()
	case KeyEnd:
		return n.Last()
	case KeyEscape:
		return n.mapper.ZoomOut()
	}
	return false
}

// HandleWheel accumulates a vertical wheel delta (positive scrolls down)
// and steps once the sensitivity threshold is crossed. The accumulator
// resets after IdleReset without wheel input.
func (n *Navigator) HandleWheel(delta float64, now time.Time) bool {
	if n.mode != ModeScroll {
		return false
	}
	if n.suppressed() {
		n.wheelAcc = 0
		return false
	}
	if !n.lastWheel.IsZero() && now.Sub(n.lastWheel) > n.cfg.IdleReset {
		n.wheelAcc = 0
	}
	n.lastWheel = now
	n.wheelAcc += delta
	if math.Abs(n.wheelAcc) < n.cfg.WheelSensitivity {
		return false
	}
	down := n.wheelAcc > 0
	n.wheelAcc = 0
	return n.step(down)
}

// HandleTouchStart begins a swipe at vertical position y.
func (n *Navigator) HandleTouchStart(y float64, now time.Time) {
	n.touching = true
	n.touchLast = y
	n.touchAcc = 0
	n.lastTouch = now
}

// HandleTouchMove accumulates swipe distance; swiping up moves forward.
func (n *Navigator) HandleTouchMove(y float64, now time.Time) bool {
	if !n.touching || n.mode != ModeScroll {
		return false
	}
	if n.suppressed() {
		n.touchAcc = 0
		n.touchLast = y
		return false
	}
	if now.Sub(n.lastTouch) > n.cfg.IdleReset {
		n.touchAcc = 0
	}
	n.lastTouch = now
	n.touchAcc += n.touchLast - y
	n.touchLast = y
	if math.Abs(n.touchAcc) < n.cfg.TouchSensitivity {
		return false
	}
	forward := n.touchAcc > 0
	n.touchAcc = 0
	return n.step(forward)
}

// HandleTouchEnd finishes a swipe.
func (n *Navigator) HandleTouchEnd() {
	n.touching = false
	n.touchAcc = 0
}

func (n *Navigator) step(forward bool) bool {
	if forward {
		return n.Next()
	}
	return n.Previous()
}

func (n *Navigator) resetInput() {
	n.wheelAcc = 0
	n.touchAcc = 0
	n.touching = false
	n.lastWheel = time.Time{}
}
