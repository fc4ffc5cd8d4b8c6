package hotspot

import "math"

// Transform is the zoom state of a container: a uniform scale around the
// container centre followed by a translation in the parent frame.
type Transform struct {
	Scale      float64
	TranslateX float64
	TranslateY float64
}

// IdentityTransform is scale 1, no translation.
var IdentityTransform = Transform{Scale: 1}

// Equal reports whether t and o differ by at most eps in every component.
func (t Transform) Equal(o Transform, eps float64) bool {
	return math.Abs(t.Scale-o.Scale) <= eps &&
		math.Abs(t.TranslateX-o.TranslateX) <= eps &&
		math.Abs(t.TranslateY-o.TranslateY) <= eps
}

// Padding insets the viewport. Top is kept separate because the widget
// leaves room for a header above the zoomed content.
type Padding struct {
	Top, Right, Bottom, Left float64
}

// PaddingFor converts padding ratios into pixels for a viewport. top is a
// fraction of the viewport height; side applies to the remaining edges as
// a fraction of the matching dimension.
func PaddingFor(viewport Rect, top, side float64) Padding {
	return Padding{
		Top:    top * viewport.Height,
		Right:  side * viewport.Width,
		Bottom: side * viewport.Height,
		Left:   side * viewport.Width,
	}
}

// Apply returns r shrunk by the padding. A padding that would leave no area
// returns r unchanged.
func (p Padding) Apply(r Rect) Rect {
	inner := Rect{
		X:      r.X + p.Left,
		Y:      r.Y + p.Top,
		Width:  r.Width - p.Left - p.Right,
		Height: r.Height - p.Top - p.Bottom,
	}
	if inner.Empty() {
		return r
	}
	return inner
}

// scaled returns the padding divided by k, used to express screen padding
// in a zoomed parent frame.
func (p Padding) scaled(k float64) Padding {
	if k == 0 {
		return p
	}
	return Padding{Top: p.Top / k, Right: p.Right / k, Bottom: p.Bottom / k, Left: p.Left / k}
}

// ZoomRequest describes one zoom computation. Every rectangle is expressed
// in the container's parent frame with the container at identity.
type ZoomRequest struct {
	Target    Rect // marker box
	Container Rect // container (background image) box
	Viewport  Rect // visible region
	Padding   Padding
	// Fill is the fraction of the padded viewport the target should occupy.
	Fill float64
	Mode ScaleMode
	// KeepCovered raises the scale so the container always covers the
	// padded viewport.
	KeepCovered bool
}

// ComputeZoomTransform returns the container transform that centres the
// target inside the padded viewport, clamped so the container never reveals
// empty space inside the padded region. It is pure: identical requests give
// identical transforms, which is what makes precomputation safe.
func ComputeZoomTransform(req ZoomRequest) Transform {
	if req.Target.Empty() || req.Container.Empty() {
		return IdentityTransform
	}
	avail := req.Padding.Apply(req.Viewport)

	fill := req.Fill
	if fill <= 0 {
		fill = 1
	}
	rx := fill * avail.Width / req.Target.Width
	ry := fill * avail.Height / req.Target.Height

	var s float64
	switch req.Mode {
	case ScaleCover:
		s = math.Max(rx, ry)
	default:
		s = math.Min(rx, ry)
	}
	if req.KeepCovered {
		cover := math.Max(avail.Width/req.Container.Width, avail.Height/req.Container.Height)
		if s < cover {
			s = cover
		}
	}

	c0 := req.Container.Center()
	tc := req.Target.Center()
	p := avail.Center()

	t := Transform{
		Scale:      s,
		TranslateX: p.X - c0.X - s*(tc.X-c0.X),
		TranslateY: p.Y - c0.Y - s*(tc.Y-c0.Y),
	}
	return ClampTransform(t, req.Container, avail)
}

// ClampTransform adjusts the translation by the minimal amount needed so the
// scaled container covers avail on each axis independently. When the scaled
// container is smaller than avail on an axis it is centred on that axis.
// Applying it to an already clamped transform is a no-op.
func ClampTransform(t Transform, container, avail Rect) Transform {
	c0 := container.Center()
	pc := avail.Center()

	t.TranslateX = clampAxis(t.TranslateX, pc.X-c0.X, t.Scale*container.Width, avail.Width)
	t.TranslateY = clampAxis(t.TranslateY, pc.Y-c0.Y, t.Scale*container.Height, avail.Height)
	return t
}

// clampAxis limits v to centre ± (scaledDim - availDim)/2.
func clampAxis(v, centre, scaledDim, availDim float64) float64 {
	slack := math.Max(0, (scaledDim-availDim)/2)
	return math.Max(centre-slack, math.Min(v, centre+slack))
}

// ScreenCenterAfter returns where target's centre lands on screen once t is
// applied to container. Used by tests and debug output.
func ScreenCenterAfter(t Transform, target, container Rect) Vec2 {
	c0 := container.Center()
	tc := target.Center()
	return Vec2{
		X: c0.X + t.TranslateX + t.Scale*(tc.X-c0.X),
		Y: c0.Y + t.TranslateY + t.Scale*(tc.Y-c0.Y),
	}
}

// zoomRequestFor builds the request for zooming container onto marker in
// the container's parent frame. marker must be a descendant of container.
func zoomRequestFor(container, marker *Element, viewport Rect, cfg *Config) ZoomRequest {
	parent := container.parentWorldTransform()
	inv := invertAffine(parent)
	k := math.Sqrt(math.Abs(parent[0]*parent[3] - parent[1]*parent[2]))

	cbox := Rect{
		X:      container.X + container.OffsetX,
		Y:      container.Y + container.OffsetY,
		Width:  container.Width,
		Height: container.Height,
	}

	// Marker box relative to the container's untransformed origin.
	mx, my := 0.0, 0.0
	for e := marker; e != nil && e != container; e = e.Parent {
		mx += e.X + e.OffsetX
		my += e.Y + e.OffsetY
	}
	target := Rect{X: cbox.X + mx, Y: cbox.Y + my, Width: marker.Width, Height: marker.Height}

	pad := PaddingFor(viewport, cfg.PaddingTop, cfg.Padding).scaled(k)
	// NewScene rejects unknown modes.
	mode, _ := ParseScaleMode(cfg.ScaleMode)

	return ZoomRequest{
		Target:      target,
		Container:   cbox,
		Viewport:    transformRect(inv, viewport),
		Padding:     pad,
		Fill:        cfg.ZoomFill,
		Mode:        mode,
		KeepCovered: cfg.KeepCovered,
	}
}
