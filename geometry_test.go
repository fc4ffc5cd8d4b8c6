package hotspot

import (
	"math"
	"testing"
)

var (
	testViewport  = Rect{Width: 800, Height: 600}
	testContainer = Rect{Width: 800, Height: 600}
)

func testRequest(target Rect) ZoomRequest {
	return ZoomRequest{
		Target:      target,
		Container:   testContainer,
		Viewport:    testViewport,
		Padding:     PaddingFor(testViewport, 0.1, 0.05),
		Fill:        0.8,
		Mode:        ScaleFit,
		KeepCovered: true,
	}
}

func TestPaddingFor(t *testing.T) {
	p := PaddingFor(testViewport, 0.1, 0.05)
	assertNear(t, "top", p.Top, 60)
	assertNear(t, "right", p.Right, 40)
	assertNear(t, "bottom", p.Bottom, 30)
	assertNear(t, "left", p.Left, 40)

	inner := p.Apply(testViewport)
	want := Rect{X: 40, Y: 60, Width: 720, Height: 510}
	if inner != want {
		t.Errorf("Apply = %v, want %v", inner, want)
	}
}

func TestPaddingApplyDegenerate(t *testing.T) {
	p := Padding{Top: 400, Bottom: 400}
	if got := p.Apply(testViewport); got != testViewport {
		t.Errorf("Apply = %v, want viewport unchanged", got)
	}
}

func TestComputeZoomTransformCentersTarget(t *testing.T) {
	tests := []struct {
		name   string
		target Rect
	}{
		{"middle", Rect{X: 320, Y: 240, Width: 160, Height: 120}},
		{"right of centre", Rect{X: 400, Y: 240, Width: 160, Height: 120}},
		{"upper left quadrant", Rect{X: 80, Y: 60, Width: 200, Height: 150}},
		{"tall", Rect{X: 500, Y: 100, Width: 60, Height: 300}},
		{"wide", Rect{X: 100, Y: 300, Width: 400, Height: 80}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testRequest(tt.target)
			tr := ComputeZoomTransform(req)
			got := ScreenCenterAfter(tr, tt.target, testContainer)
			want := req.Padding.Apply(testViewport).Center()
			if math.Abs(got.X-want.X) > 1 || math.Abs(got.Y-want.Y) > 1 {
				t.Errorf("target centre lands at %v, want %v (transform %+v)", got, want, tr)
			}
		})
	}
}

func TestComputeZoomTransformScaleModes(t *testing.T) {
	target := Rect{X: 320, Y: 240, Width: 160, Height: 120}
	req := testRequest(target)

	fit := ComputeZoomTransform(req)
	assertNear(t, "fit scale", fit.Scale, 0.8*510/120.0)

	req.Mode = ScaleCover
	cover := ComputeZoomTransform(req)
	assertNear(t, "cover scale", cover.Scale, 0.8*720/160.0)
	if cover.Scale < fit.Scale {
		t.Errorf("cover scale %v < fit scale %v", cover.Scale, fit.Scale)
	}
}

func TestComputeZoomTransformKeepCovered(t *testing.T) {
	// Target as large as the container: fit alone would shrink below cover.
	req := testRequest(testContainer)
	req.Fill = 0.5
	tr := ComputeZoomTransform(req)
	cover := math.Max(720/800.0, 510/600.0)
	if tr.Scale < cover-epsilon {
		t.Errorf("scale %v below cover %v", tr.Scale, cover)
	}

	req.KeepCovered = false
	tr = ComputeZoomTransform(req)
	assertNear(t, "uncovered scale", tr.Scale, 0.5*510/600.0)
}

func TestComputeZoomTransformEmptyTarget(t *testing.T) {
	tr := ComputeZoomTransform(testRequest(Rect{X: 10, Y: 10}))
	if tr != IdentityTransform {
		t.Errorf("empty target = %+v, want identity", tr)
	}
}

func TestComputeZoomTransformClampsCorner(t *testing.T) {
	req := testRequest(Rect{X: 0, Y: 0, Width: 100, Height: 80})
	tr := ComputeZoomTransform(req)
	avail := req.Padding.Apply(testViewport)

	c0 := testContainer.Center()
	left := c0.X + tr.TranslateX - tr.Scale*testContainer.Width/2
	top := c0.Y + tr.TranslateY - tr.Scale*testContainer.Height/2
	right := left + tr.Scale*testContainer.Width
	bottom := top + tr.Scale*testContainer.Height

	if left > avail.X+epsilon || top > avail.Y+epsilon {
		t.Errorf("container top-left (%v, %v) leaves a gap inside %v", left, top, avail)
	}
	if right < avail.Right()-epsilon || bottom < avail.Bottom()-epsilon {
		t.Errorf("container bottom-right (%v, %v) leaves a gap inside %v", right, bottom, avail)
	}
	// The corner pins to the padded edge rather than centring the target.
	assertNear(t, "left edge", left, avail.X)
	assertNear(t, "top edge", top, avail.Y)
}

func TestClampTransformIdempotent(t *testing.T) {
	avail := PaddingFor(testViewport, 0.1, 0.05).Apply(testViewport)
	tests := []Transform{
		{Scale: 1, TranslateX: 0, TranslateY: 0},
		{Scale: 2, TranslateX: 900, TranslateY: -900},
		{Scale: 3.4, TranslateX: -272, TranslateY: 15},
		{Scale: 0.5, TranslateX: 100, TranslateY: 100},
		{Scale: 5, TranslateX: -5000, TranslateY: 5000},
	}
	for _, tr := range tests {
		once := ClampTransform(tr, testContainer, avail)
		twice := ClampTransform(once, testContainer, avail)
		if !once.Equal(twice, epsilon) {
			t.Errorf("clamp(%+v) = %+v, clamp again = %+v", tr, once, twice)
		}
	}
}

func TestClampTransformCentresSmallContainer(t *testing.T) {
	avail := Rect{X: 40, Y: 60, Width: 720, Height: 510}
	got := ClampTransform(Transform{Scale: 0.5, TranslateX: 300, TranslateY: -200}, testContainer, avail)
	want := avail.Center()
	c0 := testContainer.Center()
	assertNear(t, "tx", got.TranslateX, want.X-c0.X)
	assertNear(t, "ty", got.TranslateY, want.Y-c0.Y)
}

func TestComputeZoomTransformDeterministic(t *testing.T) {
	req := testRequest(Rect{X: 123, Y: 77, Width: 90, Height: 45})
	a := ComputeZoomTransform(req)
	b := ComputeZoomTransform(req)
	if a != b {
		t.Errorf("transforms differ: %+v vs %+v", a, b)
	}
}

func TestTransformEqual(t *testing.T) {
	a := Transform{Scale: 2, TranslateX: 10, TranslateY: 20}
	if !a.Equal(Transform{Scale: 2, TranslateX: 10.0005, TranslateY: 20}, 1e-3) {
		t.Error("expected equal within eps")
	}
	if a.Equal(Transform{Scale: 2.1, TranslateX: 10, TranslateY: 20}, 1e-3) {
		t.Error("expected different scale to compare unequal")
	}
}
