package hotspot

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/rs/zerolog"
)

// maskImage returns a w x h image that is transparent except for the left
// half, which has the given alpha.
func maskImage(w, h int, alpha uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w/2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, A: alpha})
		}
	}
	return img
}

func hitMarker() *Element {
	root := NewContainer("root")
	root.SetBox(Rect{Width: 400, Height: 400})
	mk := NewMarker("m", "m")
	mk.SetBox(Rect{X: 100, Y: 100, Width: 200, Height: 100})
	root.AddChild(mk)
	return mk
}

func TestHitTestThresholdBoundary(t *testing.T) {
	tests := []struct {
		name  string
		alpha uint8
		want  bool
	}{
		{"transparent", 0, false},
		{"at threshold", DefaultAlphaThreshold, false},
		{"one above threshold", DefaultAlphaThreshold + 1, true},
		{"opaque", 255, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHitTester(DefaultAlphaThreshold, zerolog.Nop())
			mk := hitMarker()
			h.SetMask(mk.ID, NewAlphaMask(maskImage(20, 10, tt.alpha), 0))
			// Left half of the marker box maps onto the painted half.
			if got := h.HitTest(mk, 150, 150); got != tt.want {
				t.Errorf("HitTest(alpha=%d) = %v, want %v", tt.alpha, got, tt.want)
			}
			if h.HitTest(mk, 250, 150) {
				t.Error("transparent half should miss")
			}
		})
	}
}

func TestHitTestScalesToNaturalSize(t *testing.T) {
	h := NewHitTester(DefaultAlphaThreshold, zerolog.Nop())
	mk := hitMarker()
	// Natural size differs from the displayed 200x100 box.
	h.SetMask(mk.ID, NewAlphaMask(maskImage(1000, 500, 255), 0))
	if !h.HitTest(mk, 199, 150) {
		t.Error("point just left of the middle should hit")
	}
	if h.HitTest(mk, 201, 150) {
		t.Error("point just right of the middle should miss")
	}
}

func TestHitTestFollowsZoom(t *testing.T) {
	h := NewHitTester(DefaultAlphaThreshold, zerolog.Nop())
	mk := hitMarker()
	h.SetMask(mk.ID, NewAlphaMask(maskImage(20, 10, 255), 0))
	mk.Parent.SetTransform(Transform{Scale: 2})
	// Root scales around (200, 200): marker box becomes (0, 0)-(400, 200).
	if !h.HitTest(mk, 100, 100) {
		t.Error("left half after zoom should hit")
	}
	if h.HitTest(mk, 300, 100) {
		t.Error("right half after zoom should miss")
	}
}

func TestHitTestBoundingBoxFallback(t *testing.T) {
	h := NewHitTester(DefaultAlphaThreshold, zerolog.Nop())
	mk := hitMarker()

	// No mask registered.
	if !h.HitTest(mk, 250, 150) {
		t.Error("no mask: expected bbox hit")
	}
	h.Expect(mk.ID)
	if !h.HitTest(mk, 250, 150) {
		t.Error("pending mask: expected bbox hit")
	}
	h.Fail(mk.ID, errors.New("boom"))
	if !h.HitTest(mk, 250, 150) {
		t.Error("failed mask: expected bbox hit")
	}
	if h.HitTest(mk, 50, 50) {
		t.Error("outside the box should always miss")
	}
	if res := h.Mask(mk.ID); res.Status != StatusLoadFailed {
		t.Errorf("Mask status = %v, want load failed", res.Status)
	}
}

func TestMaskStatus(t *testing.T) {
	h := NewHitTester(DefaultAlphaThreshold, zerolog.Nop())
	if res := h.Mask(99); res.Status != StatusNotFound {
		t.Errorf("unknown mask status = %v", res.Status)
	}
	h.Expect(99)
	if res := h.Mask(99); res.Status != StatusNotFound {
		t.Errorf("pending mask status = %v", res.Status)
	}
	h.SetMask(99, &AlphaMask{Width: 1, Height: 1, Alpha: []uint8{255}})
	if res := h.Mask(99); !res.OK() {
		t.Errorf("ready mask status = %v", res.Status)
	}
	h.Forget(99)
	if res := h.Mask(99); res.OK() {
		t.Error("forgotten mask still reported")
	}
}

func TestNewAlphaMaskDownsamples(t *testing.T) {
	m := NewAlphaMask(maskImage(400, 200, 255), 100*50)
	if m.Width*m.Height > 100*50 {
		t.Errorf("mask %dx%d exceeds limit", m.Width, m.Height)
	}
	if m.At(0, 0) == 0 || m.At(m.Width-1, 0) != 0 {
		t.Error("downsampled mask lost its shape")
	}
	if m.At(-1, 0) != 0 || m.At(m.Width, 0) != 0 {
		t.Error("out of range samples should be transparent")
	}
}

func TestDecodeAlphaMask(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, maskImage(8, 4, 200)); err != nil {
		t.Fatal(err)
	}
	m, err := DecodeAlphaMask(&buf, 0)
	if err != nil {
		t.Fatalf("DecodeAlphaMask: %v", err)
	}
	if m.Width != 8 || m.Height != 4 || m.At(0, 0) != 200 || m.At(7, 0) != 0 {
		t.Errorf("decoded mask %dx%d a0=%d a7=%d", m.Width, m.Height, m.At(0, 0), m.At(7, 0))
	}
	if _, err := DecodeAlphaMask(bytes.NewReader([]byte("nope")), 0); err == nil {
		t.Error("expected decode error")
	}
}

func TestPickPrefersBadgeAndZOrder(t *testing.T) {
	h := NewHitTester(DefaultAlphaThreshold, zerolog.Nop())
	root := NewContainer("root")
	root.SetBox(Rect{Width: 400, Height: 400})
	low := NewMarker("low", "low")
	low.SetBox(Rect{X: 0, Y: 0, Width: 200, Height: 200})
	high := NewMarker("high", "high")
	high.SetBox(Rect{X: 100, Y: 100, Width: 200, Height: 200})
	high.ZIndex = 5
	root.AddChild(high)
	root.AddChild(low)

	badge := NewBadge("low-badge", "Low")
	badge.SetBox(Rect{X: 120, Y: 120, Width: 60, Height: 20})
	low.AddChild(badge)

	markers := []*Element{high, low}

	if mk, b := h.Pick(markers, 150, 150); mk != high || b != nil {
		t.Errorf("overlap: got %v/%v, want high marker", elemName(mk), elemName(b))
	}
	if mk, b := h.Pick(markers, 130, 125); mk != low || b != badge {
		t.Errorf("badge: got %v/%v, want low via badge", elemName(mk), elemName(b))
	}
	if mk, _ := h.Pick(markers, 50, 50); mk != low {
		t.Errorf("low only: got %v", elemName(mk))
	}
	if mk, _ := h.Pick(markers, 390, 390); mk != nil {
		t.Errorf("empty area: got %v", elemName(mk))
	}
}

func TestPickLaterSiblingWinsTie(t *testing.T) {
	h := NewHitTester(DefaultAlphaThreshold, zerolog.Nop())
	root := NewContainer("root")
	a, b := NewMarker("a", "a"), NewMarker("b", "b")
	a.SetBox(Rect{Width: 100, Height: 100})
	b.SetBox(Rect{Width: 100, Height: 100})
	root.AddChild(a)
	root.AddChild(b)
	if mk, _ := h.Pick([]*Element{a, b}, 50, 50); mk != b {
		t.Errorf("got %v, want b", elemName(mk))
	}
}

func elemName(e *Element) string {
	if e == nil {
		return "<nil>"
	}
	return e.Name
}
