package hotspot

import (
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/rs/zerolog"
)

// debugLogger receives tree warnings in debug mode. It mirrors the logger
// of the scene that last called SetDebugMode.
var debugLogger = zerolog.Nop()

// debugCheckDisposed panics with a descriptive message when a disposed
// element is used in a tree operation. Only called in debug mode.
func debugCheckDisposed(e *Element, op string) {
	if e.disposed {
		panic(fmt.Sprintf("hotspot debug: %s on disposed element %q", op, e.Name))
	}
}

// debugMaxTreeDepth is the depth above which a warning is logged.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(e *Element) {
	depth := 0
	for p := e; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		debugLogger.Warn().Int("depth", depth).Int("threshold", debugMaxTreeDepth).
			Str("element", e.Name).Msg("tree depth exceeds threshold")
	}
}

// Position is the navigation state reported by the debug surface.
type Position struct {
	Index   int    `json:"index"`
	Total   int    `json:"total"`
	Level   int    `json:"level"`
	Hotspot string `json:"hotspot,omitempty"`
	State   string `json:"state"`
	Mode    string `json:"mode"`
}

func (p Position) String() string {
	h := p.Hotspot
	if h == "" {
		h = "-"
	}
	return fmt.Sprintf("%s level=%d index=%d/%d hotspot=%s mode=%s", p.State, p.Level, p.Index, p.Total, h, p.Mode)
}

// Debug is a small inspection surface for external tooling and tests.
type Debug struct {
	s *Scene
}

// Debug returns the scene's debug surface.
func (s *Scene) Debug() *Debug {
	return &Debug{s: s}
}

// CurrentPosition reports the navigator cursor and mapper state.
func (d *Debug) CurrentPosition() Position {
	m, n := d.s.mapper, d.s.nav
	p := Position{
		Index: n.Cursor(),
		Total: n.Len(),
		Level: m.Level(),
		State: m.State().String(),
		Mode:  n.Mode().String(),
	}
	if f := m.Focused(); f != nil {
		p.Hotspot = f.HotspotID
	}
	return p
}

// GoToMarker navigates to root marker i.
func (d *Debug) GoToMarker(i int) bool {
	return d.s.nav.GoTo(i)
}

// GoToOverview zooms all the way out.
func (d *Debug) GoToOverview() bool {
	return d.s.nav.Overview()
}

// SwitchMode sets the navigation mode by name ("scroll" or "click").
func (d *Debug) SwitchMode(mode string) error {
	m, ok := ParseNavMode(mode)
	if !ok {
		return fmt.Errorf("unknown navigation mode %q", mode)
	}
	d.s.nav.SetMode(m)
	d.s.log.Debug().Str("mode", m.String()).Msg("navigation mode switched")
	return nil
}

// Dump returns an indented outline of the element tree with classes.
func (d *Debug) Dump() string {
	var b strings.Builder
	var walk func(e *Element, depth int)
	walk = func(e *Element, depth int) {
		fmt.Fprintf(&b, "%s%s %q", strings.Repeat("  ", depth), e.Kind, e.Name)
		if e.HotspotID != "" {
			fmt.Fprintf(&b, " id=%s", e.HotspotID)
		}
		if cls := e.Classes(); len(cls) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(cls, " "))
		}
		if !e.IsIdentity() {
			fmt.Fprintf(&b, " scale=%.3f t=(%.1f,%.1f)", e.Scale, e.TranslateX, e.TranslateY)
		}
		b.WriteByte('\n')
		for _, c := range e.children {
			walk(c, depth+1)
		}
	}
	walk(d.s.stage, 0)
	return b.String()
}

func (s *Scene) drawDebugOverlay(screen *ebiten.Image) {
	p := s.Debug().CurrentPosition()
	msg := p.String()
	if s.mapper.Animating() {
		msg += " animating"
	}
	ebitenutil.DebugPrintAt(screen, msg, 4, 4)
}
