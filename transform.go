package hotspot

import "math"

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// computeLocalTransform computes the local affine matrix of an element.
// Returns [a, b, c, d, tx, ty].
//
// Composition order:
//
//	Translate(-centre) -> Scale -> Translate(centre + translate) -> Translate(X+OffsetX, Y+OffsetY)
//
// where centre is the middle of the element's own box, so scaling happens
// around the box centre and translate is expressed in the parent's frame.
func computeLocalTransform(e *Element) [6]float64 {
	s := e.Scale
	cx := e.Width / 2
	cy := e.Height / 2
	tx := e.X + e.OffsetX + cx + e.TranslateX - s*cx
	ty := e.Y + e.OffsetY + cy + e.TranslateY - s*cy
	return [6]float64{s, 0, 0, s, tx, ty}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular.
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// transformRect maps a rectangle through m and returns its AABB.
func transformRect(m [6]float64, r Rect) Rect {
	x0, y0 := transformPoint(m, r.X, r.Y)
	x1, y1 := transformPoint(m, r.X+r.Width, r.Y)
	x2, y2 := transformPoint(m, r.X+r.Width, r.Y+r.Height)
	x3, y3 := transformPoint(m, r.X, r.Y+r.Height)

	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// updateWorldTransform recomputes cached world transforms for rendering.
// parentRecomputed forces recomputation of clean children.
func updateWorldTransform(e *Element, parentTransform [6]float64, parentAlpha float64, parentRecomputed bool) {
	recompute := e.transformDirty || parentRecomputed
	if recompute {
		local := computeLocalTransform(e)
		e.worldTransform = multiplyAffine(parentTransform, local)
		e.worldAlpha = parentAlpha * e.Alpha
		e.transformDirty = false
	}

	for _, child := range e.children {
		updateWorldTransform(child, e.worldTransform, e.worldAlpha, recompute)
	}
}

// WorldTransform computes the element's current world matrix from its
// ancestors. Unlike the cached render transform it is always fresh, so
// geometry and hit tests see the live transform mid-animation.
func (e *Element) WorldTransform() [6]float64 {
	local := computeLocalTransform(e)
	if e.Parent == nil {
		return local
	}
	return multiplyAffine(e.Parent.WorldTransform(), local)
}

// parentWorldTransform returns the world matrix of e's parent frame.
func (e *Element) parentWorldTransform() [6]float64 {
	if e.Parent == nil {
		return identityTransform
	}
	return e.Parent.WorldTransform()
}

// ScreenRect returns the element's box in screen space with all current
// transforms applied (the getBoundingClientRect equivalent).
func (e *Element) ScreenRect() Rect {
	return transformRect(e.WorldTransform(), Rect{Width: e.Width, Height: e.Height})
}

// --- Transform property setters ---

// SetPosition sets the element's local X and Y and marks it dirty.
func (e *Element) SetPosition(x, y float64) {
	e.X = x
	e.Y = y
	e.transformDirty = true
}

// SetTransform sets scale and translate and marks the element dirty.
func (e *Element) SetTransform(t Transform) {
	e.Scale = t.Scale
	e.TranslateX = t.TranslateX
	e.TranslateY = t.TranslateY
	e.transformDirty = true
}

// CurrentTransform returns the element's scale and translate.
func (e *Element) CurrentTransform() Transform {
	return Transform{Scale: e.Scale, TranslateX: e.TranslateX, TranslateY: e.TranslateY}
}

// IsIdentity reports whether the element has no zoom transform applied.
func (e *Element) IsIdentity() bool {
	return e.CurrentTransform().Equal(IdentityTransform, 1e-9)
}

// SetAlpha sets the element's alpha and marks it dirty.
func (e *Element) SetAlpha(a float64) {
	e.Alpha = a
	e.transformDirty = true
}

// MarkDirty forces recomputation of the cached world transform.
func (e *Element) MarkDirty() {
	e.transformDirty = true
}

// --- Coordinate conversion ---

// WorldToLocal converts a screen-space point to this element's local space.
func (e *Element) WorldToLocal(wx, wy float64) (lx, ly float64) {
	return transformPoint(invertAffine(e.WorldTransform()), wx, wy)
}

// LocalToWorld converts a local-space point to screen space.
func (e *Element) LocalToWorld(lx, ly float64) (wx, wy float64) {
	return transformPoint(e.WorldTransform(), lx, ly)
}
