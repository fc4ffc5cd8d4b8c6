package hotspot

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	hoverOutline   = color.RGBA{R: 255, G: 255, B: 255, A: 200}
	currentOutline = color.RGBA{R: 255, G: 200, B: 40, A: 255}
	panelFill      = Color{R: 0.08, G: 0.08, B: 0.1, A: 0.85}
	badgeFill      = Color{R: 0.15, G: 0.15, B: 0.2, A: 0.9}
	checkpointFill = color.RGBA{R: 230, G: 80, B: 60, A: 255}
)

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image used
// to fill rectangles through DrawImage.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.White)
	}
	return whitePixelImage
}

// affineGeoM converts a [6]float64 affine matrix into an ebiten.GeoM.
func affineGeoM(m [6]float64) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}

// Draw renders the stage onto screen. Transforms are refreshed first so a
// Draw without a preceding Advance still shows the current state.
func (s *Scene) Draw(screen *ebiten.Image) {
	if s.disposed {
		return
	}
	updateWorldTransform(s.stage, identityTransform, 1.0, false)
	s.drawElement(screen, s.stage)
	if s.debug {
		s.drawDebugOverlay(screen)
	}
}

// drawElement draws e and its children in ZIndex order.
func (s *Scene) drawElement(dst *ebiten.Image, e *Element) {
	if !e.Visible {
		return
	}
	switch e.Kind {
	case ElementContainer:
		// Untinted containers without an image are layout only.
		s.drawImageOrFill(dst, e, e.Color, e.Color == ColorWhite)
	case ElementImage:
		s.drawImageOrFill(dst, e, e.Color, false)
	case ElementMarker:
		s.drawImageOrFill(dst, e, e.Color, true)
		r := transformRect(e.worldTransform, Rect{Width: e.Width, Height: e.Height})
		switch {
		case e.HasClass(ClassCurrent):
			vector.StrokeRect(dst, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), 2, currentOutline, true)
		case e.HasClass(ClassHover):
			vector.StrokeRect(dst, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), 1, hoverOutline, true)
		}
	case ElementPanel:
		s.drawImageOrFill(dst, e, panelFill, false)
		s.drawText(dst, e)
	case ElementBadge, ElementInfo:
		s.drawImageOrFill(dst, e, badgeFill, false)
		s.drawText(dst, e)
	case ElementCheckpoint:
		r := transformRect(e.worldTransform, Rect{Width: e.Width, Height: e.Height})
		c := r.Center()
		radius := float32(max(r.Width, r.Height) / 2)
		if e.HasClass(ClassHover) {
			radius *= 1.4
		}
		vector.DrawFilledCircle(dst, float32(c.X), float32(c.Y), radius, checkpointFill, true)
	}
	for _, c := range e.sorted() {
		s.drawElement(dst, c)
	}
}

// drawImageOrFill draws the element image stretched over its box, or a
// solid fill when it has none. Markers without an image stay invisible.
func (s *Scene) drawImageOrFill(dst *ebiten.Image, e *Element, fill Color, skipFill bool) {
	img := e.image
	if img == nil && (skipFill || fill.A == 0 || e.Width == 0 || e.Height == 0) {
		return
	}
	var op ebiten.DrawImageOptions
	if img != nil {
		b := img.Bounds()
		if b.Dx() == 0 || b.Dy() == 0 {
			return
		}
		op.GeoM.Scale(e.Width/float64(b.Dx()), e.Height/float64(b.Dy()))
		fill = ColorWhite
	} else {
		img = ensureWhitePixel()
		op.GeoM.Scale(e.Width, e.Height)
	}
	op.GeoM.Concat(affineGeoM(e.worldTransform))
	a := float32(e.worldAlpha * fill.A)
	op.ColorScale.Scale(float32(fill.R)*a, float32(fill.G)*a, float32(fill.B)*a, a)
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(img, &op)
}

func (s *Scene) drawText(dst *ebiten.Image, e *Element) {
	if e.Text == "" || e.worldAlpha < 0.5 {
		return
	}
	x, y := e.LocalToWorld(6, 6)
	ebitenutil.DebugPrintAt(dst, e.Text, int(x), int(y))
}
