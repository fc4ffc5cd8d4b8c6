package hotspot

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// wheelScale converts ebiten wheel offsets (lines, positive up) into the
// pixel-like deltas the navigator accumulates (positive down).
const wheelScale = -40.0

// pointerState is the press/release state machine of the primary pointer.
// A click is a press and release over the same marker.
type pointerState struct {
	down      bool
	moved     bool
	lastX     float64
	lastY     float64
	pressedOn *Element
}

// touchState tracks the primary touch used for swipe navigation.
type touchState struct {
	active bool
	id     ebiten.TouchID
	lastY  float64
}

var keyMap = []struct {
	ebiten ebiten.Key
	key    Key
}{
	{ebiten.KeyArrowUp, KeyArrowUp},
	{ebiten.KeyArrowDown, KeyArrowDown},
	{ebiten.KeyArrowLeft, KeyArrowLeft},
	{ebiten.KeyArrowRight, KeyArrowRight},
	{ebiten.KeyHome, KeyHome},
	{ebiten.KeyEnd, KeyEnd},
	{ebiten.KeyEscape, KeyEscape},
}

// processInput is called from Scene.Advance. One injected event is consumed
// per frame; real device input is read only while the scene runs in a
// window and no injected event was pending.
func (s *Scene) processInput() {
	if s.processInjectedInput() {
		return
	}
	if !s.running {
		return
	}
	s.processMouse()
	s.processTouch()
	s.processWheel()
	s.processKeys()
}

func (s *Scene) processMouse() {
	mx, my := ebiten.CursorPosition()
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	s.processPointer(float64(mx), float64(my), pressed)
}

func (s *Scene) processTouch() {
	s.touchIDs = ebiten.AppendTouchIDs(s.touchIDs[:0])
	ts := &s.touch

	if ts.active {
		still := false
		for _, id := range s.touchIDs {
			if id == ts.id {
				still = true
				break
			}
		}
		if !still {
			ts.active = false
			s.nav.HandleTouchEnd()
			s.processPointer(s.pointer.lastX, s.pointer.lastY, false)
			return
		}
		x, y := ebiten.TouchPosition(ts.id)
		s.nav.HandleTouchMove(float64(y), s.now())
		s.processPointer(float64(x), float64(y), true)
		return
	}

	for _, id := range s.touchIDs {
		if !inpututil.IsTouchJustReleased(id) {
			x, y := ebiten.TouchPosition(id)
			ts.active, ts.id, ts.lastY = true, id, float64(y)
			s.nav.HandleTouchStart(float64(y), s.now())
			s.processPointer(float64(x), float64(y), true)
			return
		}
	}
}

func (s *Scene) processWheel() {
	_, yoff := ebiten.Wheel()
	if yoff != 0 {
		s.nav.HandleWheel(yoff*wheelScale, s.now())
	}
}

func (s *Scene) processKeys() {
	for _, k := range keyMap {
		if inpututil.IsKeyJustPressed(k.ebiten) {
			s.handleKey(k.key)
		}
	}
}

func (s *Scene) handleKey(k Key) {
	if s.nav.HandleKey(k) {
		return
	}
	// Escape still closes a zoom when keyboard navigation is off.
	if k == KeyEscape && !s.cfg.Navigation.Keyboard && !s.modalOpen() {
		s.mapper.ZoomOut()
	}
}

// processPointer runs the pointer state machine for one sample.
func (s *Scene) processPointer(x, y float64, pressed bool) {
	ps := &s.pointer
	if !ps.moved || x != ps.lastX || y != ps.lastY {
		s.mapper.HandlePointerMove(x, y)
		ps.lastX, ps.lastY, ps.moved = x, y, true
	}

	switch {
	case pressed && !ps.down:
		ps.down = true
		ps.pressedOn = s.pickMarker(x, y)
	case !pressed && ps.down:
		ps.down = false
		target := s.pickMarker(x, y)
		if target != nil && target == ps.pressedOn && !s.modalOpen() {
			s.mapper.HandleClick(x, y)
		}
		ps.pressedOn = nil
	}
}

func (s *Scene) pickMarker(x, y float64) *Element {
	if !s.mapper.Listening() {
		return nil
	}
	mk, _ := s.hit.Pick(s.mapper.ActiveMarkers(), x, y)
	return mk
}

func (s *Scene) modalOpen() bool {
	return s.nav.ModalOpen != nil && s.nav.ModalOpen()
}
