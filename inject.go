package hotspot

// syntheticEvent is one injected input event. Coordinates are screen
// coordinates, identical to real pointer input.
type syntheticEvent struct {
	kind    EventType
	x, y    float64
	pressed bool
	delta   float64
	key     Key
}

// InjectPress queues a pointer press at the given screen coordinates. The
// event is consumed on the next frame's processInput call.
func (s *Scene) InjectPress(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticEvent{kind: EventClick, x: x, y: y, pressed: true})
}

// InjectRelease queues a pointer release at the given screen coordinates.
func (s *Scene) InjectRelease(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticEvent{kind: EventClick, x: x, y: y})
}

// InjectMove queues a hover move with no button held.
func (s *Scene) InjectMove(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticEvent{kind: EventPointerMove, x: x, y: y})
}

// InjectClick queues a press followed by a release at the same screen
// coordinates. Consumes two frames.
func (s *Scene) InjectClick(x, y float64) {
	s.InjectPress(x, y)
	s.InjectRelease(x, y)
}

// InjectWheel queues a vertical wheel delta (positive scrolls down).
func (s *Scene) InjectWheel(delta float64) {
	s.injectQueue = append(s.injectQueue, syntheticEvent{kind: EventWheel, delta: delta})
}

// InjectKey queues a key press.
func (s *Scene) InjectKey(k Key) {
	s.injectQueue = append(s.injectQueue, syntheticEvent{kind: EventKey, key: k})
}

// PendingInput returns the number of queued synthetic events.
func (s *Scene) PendingInput() int {
	return len(s.injectQueue)
}

// processInjectedInput pops one event from the inject queue and feeds it
// through the same paths as device input. Returns true if an event was
// consumed (real input is skipped that frame).
func (s *Scene) processInjectedInput() bool {
	if len(s.injectQueue) == 0 {
		return false
	}
	evt := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]

	switch evt.kind {
	case EventPointerMove:
		s.processPointer(evt.x, evt.y, s.pointer.down)
	case EventClick:
		s.processPointer(evt.x, evt.y, evt.pressed)
	case EventWheel:
		s.nav.HandleWheel(evt.delta, s.now())
	case EventKey:
		s.handleKey(evt.key)
	}
	return true
}
