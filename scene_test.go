package hotspot

import (
	"strings"
	"testing"
	"time"
)

const testDT = float32(1.0 / 60)

// testConfig returns the default settings with every animation instant, so
// transitions settle inside the call that starts them.
func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.ZoomDuration = 0
	cfg.ZoomOutDuration = 0
	cfg.PanelFadeDuration = 0
	return cfg
}

// testLayout is an 800x600 mapper with three root hotspots. "a" holds a
// nested container with "a1" and "a2"; "c" has no panels.
func testLayout() *Layout {
	return &Layout{
		Image:  "bg.png",
		Width:  800,
		Height: 600,
		Panels: []PanelLayout{
			{Kind: "text", Text: "welcome", X: 10, Y: 10, Width: 100, Height: 40},
		},
		Hotspots: []HotspotLayout{
			{
				ID: "a", X: 10, Y: 10, Width: 25, Height: 25,
				Image: "a.png", ZoomImage: "a-zoom.png",
				Badge: &BadgeLayout{Text: "A", Info: "about a"},
				Panels: []PanelLayout{
					{Kind: "text", Text: "a text", X: 600, Y: 10, Width: 150, Height: 80},
					{Kind: "illustration", X: 600, Y: 100, Width: 150, Height: 80},
				},
				Background: "a-inner.png",
				Hotspots: []HotspotLayout{
					{ID: "a1", X: 0, Y: 0, Width: 50, Height: 50,
						Panels: []PanelLayout{{Kind: "person", X: 600, Y: 200, Width: 100, Height: 100}}},
					{ID: "a2", X: 50, Y: 50, Width: 50, Height: 50},
				},
			},
			{
				ID: "b", X: 50, Y: 40, Width: 20, Height: 20,
				Panels: []PanelLayout{{Kind: "text", Text: "b text", X: 600, Y: 10, Width: 150, Height: 80}},
			},
			{ID: "c", X: 75, Y: 70, Width: 20, Height: 20},
		},
	}
}

func newTestScene(t *testing.T, cfg *Config) *Scene {
	t.Helper()
	return newTestSceneWith(t, SceneOptions{Config: cfg})
}

func newTestSceneWith(t *testing.T, opts SceneOptions) *Scene {
	t.Helper()
	stage, err := testLayout().BuildTree()
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	s, err := NewScene(stage, opts)
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	s.SetViewport(Rect{Width: 800, Height: 600})
	t.Cleanup(s.Dispose)
	return s
}

func mustMarker(t *testing.T, s *Scene, id string) *Element {
	t.Helper()
	res := s.Registry().MarkerByHotspot(id)
	if !res.OK() {
		t.Fatalf("marker %q: %v", id, res.Err)
	}
	return res.Value
}

// settle advances the scene until no transition is running.
func settle(t *testing.T, s *Scene) {
	t.Helper()
	for i := 0; s.Mapper().Animating(); i++ {
		if i > 1000 {
			t.Fatal("transition never settled")
		}
		s.Advance(testDT)
	}
}

// frames advances the scene n frames.
func frames(s *Scene, n int) {
	for range n {
		s.Advance(testDT)
	}
}

func centerOf(e *Element) Vec2 {
	return e.ScreenRect().Center()
}

func TestNewSceneRequiresRoot(t *testing.T) {
	if _, err := NewScene(nil, SceneOptions{}); err == nil {
		t.Error("expected error for nil stage")
	}
	if _, err := NewScene(NewContainer("stage"), SceneOptions{}); err == nil {
		t.Error("expected error for a stage without root")
	}
}

func TestNewSceneStartsInOverview(t *testing.T) {
	s := newTestScene(t, testConfig())
	m := s.Mapper()
	if m.State() != StateOverview || m.Level() != 0 {
		t.Errorf("state %v level %d", m.State(), m.Level())
	}
	root := s.Registry().Root()
	if m.Current() != root || !root.HasClass(ClassActive) {
		t.Error("root should be the active container")
	}
	global := s.Registry().GlobalPanels()
	if global.Text == nil || !global.Text.HasClass(ClassOpen) || !global.Text.Visible {
		t.Error("global panel should be open in the overview")
	}
	if got := len(m.ActiveMarkers()); got != 3 {
		t.Errorf("active markers = %d, want 3", got)
	}
	if s.Navigator().Cursor() != -1 {
		t.Errorf("cursor = %d, want -1", s.Navigator().Cursor())
	}
}

func TestSceneDefaultsConfig(t *testing.T) {
	s := newTestSceneWith(t, SceneOptions{})
	if s.Config().ZoomDuration != DefaultConfig().ZoomDuration {
		t.Error("nil config should select defaults")
	}
}

func TestNewSceneRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"scale mode", func(c *Config) { c.ScaleMode = "contain" }, "scale_mode"},
		{"ease", func(c *Config) { c.Ease = "power9.out" }, "unknown ease"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage, err := testLayout().BuildTree()
			if err != nil {
				t.Fatal(err)
			}
			cfg := testConfig()
			tt.mutate(cfg)
			_, err = NewScene(stage, SceneOptions{Config: cfg})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("NewScene err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestScenePostRunsOnAdvance(t *testing.T) {
	s := newTestScene(t, testConfig())
	ran := false
	s.Post(func() { ran = true })
	if ran {
		t.Fatal("posted fn ran before Advance")
	}
	s.Advance(testDT)
	if !ran {
		t.Error("posted fn did not run")
	}
}

func TestSceneDispose(t *testing.T) {
	s := newTestScene(t, DefaultConfig())
	s.Mapper().ZoomToMarker(mustMarker(t, s, "b"))
	s.Dispose()
	if !s.IsDisposed() || !s.Stage().IsDisposed() {
		t.Error("scene and stage should be disposed")
	}
	if s.Context().Err() == nil {
		t.Error("context should be cancelled")
	}
	if s.Scheduler().Playing() != 0 || s.Scheduler().Tickers() != 0 {
		t.Error("scheduler should be stopped")
	}
	s.Advance(testDT) // no-op
	done := make(chan struct{})
	go func() {
		for range mailboxSize + 1 {
			s.Post(func() {})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("Post blocked after Dispose")
	}
}

func TestSceneViewportResizeRelayouts(t *testing.T) {
	s := newTestScene(t, testConfig())
	b := mustMarker(t, s, "b")
	s.Mapper().ZoomToMarker(b)
	before := s.Registry().Root().CurrentTransform()

	s.SetViewport(Rect{Width: 1200, Height: 600})
	after := s.Registry().Root().CurrentTransform()
	if before.Equal(after, 1e-6) {
		t.Error("zoom transform not recomputed after resize")
	}
	avail := PaddingFor(s.Viewport(), s.cfg.PaddingTop, s.cfg.Padding).Apply(s.Viewport())
	got, want := centerOf(b), avail.Center()
	if d := got.X - want.X; d > 1 || d < -1 {
		t.Errorf("centre x = %v, want %v", got.X, want.X)
	}
}

func TestSceneSetImageAttachesBySource(t *testing.T) {
	s := newTestScene(t, testConfig())
	// No ebiten image is created: only the registration bookkeeping is
	// checked.
	s.SetImage("a-zoom.png", nil)
	if _, ok := s.images["a-zoom.png"]; !ok {
		t.Error("image not registered")
	}
}
