package hotspot

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want [6]float64) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

// --- computeLocalTransform ---

func TestLocalTransformIdentity(t *testing.T) {
	e := NewContainer("test")
	assertMatrix(t, "identity", computeLocalTransform(e), identityTransform)
}

func TestLocalTransformPosition(t *testing.T) {
	e := NewContainer("test")
	e.SetBox(Rect{X: 10, Y: 20, Width: 100, Height: 50})
	assertMatrix(t, "position", computeLocalTransform(e), [6]float64{1, 0, 0, 1, 10, 20})
}

func TestLocalTransformScaleAroundCentre(t *testing.T) {
	e := NewContainer("test")
	e.SetBox(Rect{Width: 100, Height: 50})
	e.Scale = 2
	// Centre (50, 25) stays fixed: tx = 50 - 2*50, ty = 25 - 2*25.
	assertMatrix(t, "scale", computeLocalTransform(e), [6]float64{2, 0, 0, 2, -50, -25})
}

func TestLocalTransformTranslateAndOffset(t *testing.T) {
	e := NewContainer("test")
	e.SetBox(Rect{X: 5, Y: 5, Width: 10, Height: 10})
	e.TranslateX, e.TranslateY = 30, -20
	e.OffsetX, e.OffsetY = 1, 2
	assertMatrix(t, "translate", computeLocalTransform(e), [6]float64{1, 0, 0, 1, 36, -13})
}

// --- affine helpers ---

func TestMultiplyAffineIdentity(t *testing.T) {
	m := [6]float64{2, 0, 0, 3, 10, 20}
	assertMatrix(t, "I*m", multiplyAffine(identityTransform, m), m)
	assertMatrix(t, "m*I", multiplyAffine(m, identityTransform), m)
}

func TestInvertAffine(t *testing.T) {
	m := [6]float64{2, 0, 0, 4, 10, -8}
	assertMatrix(t, "m*inv", multiplyAffine(m, invertAffine(m)), identityTransform)
}

func TestInvertAffineSingular(t *testing.T) {
	assertMatrix(t, "singular", invertAffine([6]float64{0, 0, 0, 0, 5, 5}), identityTransform)
}

func TestTransformRect(t *testing.T) {
	m := [6]float64{2, 0, 0, 2, 10, 20}
	got := transformRect(m, Rect{X: 1, Y: 1, Width: 4, Height: 3})
	want := Rect{X: 12, Y: 22, Width: 8, Height: 6}
	if got != want {
		t.Errorf("transformRect = %v, want %v", got, want)
	}
}

// --- world transforms ---

func TestWorldTransformNested(t *testing.T) {
	root := NewContainer("root")
	root.SetBox(Rect{Width: 200, Height: 100})
	child := NewMarker("m", "m")
	child.SetBox(Rect{X: 50, Y: 25, Width: 20, Height: 10})
	root.AddChild(child)

	root.SetTransform(Transform{Scale: 2, TranslateX: 10})
	// root maps x -> 2x - 100 + 10, y -> 2y - 50.
	r := child.ScreenRect()
	want := Rect{X: 10, Y: 0, Width: 40, Height: 20}
	if math.Abs(r.X-want.X) > epsilon || math.Abs(r.Y-want.Y) > epsilon ||
		math.Abs(r.Width-want.Width) > epsilon || math.Abs(r.Height-want.Height) > epsilon {
		t.Errorf("ScreenRect = %v, want %v", r, want)
	}
}

func TestWorldToLocalRoundTrip(t *testing.T) {
	root := NewContainer("root")
	root.SetBox(Rect{Width: 300, Height: 300})
	root.SetTransform(Transform{Scale: 1.5, TranslateX: -40, TranslateY: 25})
	mk := NewMarker("m", "m")
	mk.SetBox(Rect{X: 100, Y: 80, Width: 50, Height: 50})
	root.AddChild(mk)

	wx, wy := mk.LocalToWorld(12, 34)
	lx, ly := mk.WorldToLocal(wx, wy)
	assertNear(t, "lx", lx, 12)
	assertNear(t, "ly", ly, 34)
}

func TestUpdateWorldTransformAlpha(t *testing.T) {
	root := NewContainer("root")
	root.SetAlpha(0.5)
	child := NewContainer("child")
	child.SetAlpha(0.5)
	root.AddChild(child)

	updateWorldTransform(root, identityTransform, 1, false)
	assertNear(t, "child alpha", child.worldAlpha, 0.25)
	if root.transformDirty || child.transformDirty {
		t.Error("elements should be clean after update")
	}

	root.SetTransform(Transform{Scale: 2})
	updateWorldTransform(root, identityTransform, 1, false)
	if child.worldTransform[0] != 2 {
		t.Errorf("child scale = %v, want 2 after parent change", child.worldTransform[0])
	}
}

func TestIsIdentity(t *testing.T) {
	e := NewContainer("c")
	if !e.IsIdentity() {
		t.Error("new container should be identity")
	}
	e.SetTransform(Transform{Scale: 1, TranslateX: 1})
	if e.IsIdentity() {
		t.Error("translated container should not be identity")
	}
}
