package hotspot

import (
	"image/color"
	"math"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint.
var ColorWhite = Color{1, 1, 1, 1}

// toRGBA converts to a premultiplied color.RGBA for ebiten.
func (c Color) toRGBA() color.RGBA {
	clamp := func(v float64) uint8 {
		return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
	}
	return color.RGBA{
		R: clamp(c.R * c.A),
		G: clamp(c.G * c.A),
		B: clamp(c.B * c.A),
		A: clamp(c.A),
	}
}

// Vec2 is a 2D vector used for positions, offsets and path points.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Vec2 {
	return Vec2{r.X + r.Width/2, r.Y + r.Height/2}
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// ElementKind distinguishes the role of an Element in the mapper tree.
type ElementKind uint8

const (
	ElementContainer  ElementKind = iota // viewport region holding one marker set
	ElementMarker                        // clickable hotspot tied to an overlay image
	ElementPanel                         // auxiliary panel (text, person, illustration, path)
	ElementBadge                         // floating text badge above a marker
	ElementInfo                          // info panel revealed when a badge is hovered
	ElementCheckpoint                    // point placed along an SVG path panel
	ElementImage                         // plain decorative image
)

func (k ElementKind) String() string {
	switch k {
	case ElementContainer:
		return "container"
	case ElementMarker:
		return "marker"
	case ElementPanel:
		return "panel"
	case ElementBadge:
		return "badge"
	case ElementInfo:
		return "info"
	case ElementCheckpoint:
		return "checkpoint"
	case ElementImage:
		return "image"
	default:
		return "unknown"
	}
}

// PanelKind identifies the flavor of an auxiliary panel.
type PanelKind uint8

const (
	PanelText         PanelKind = iota // side text
	PanelPerson                        // person image
	PanelIllustration                  // illustration, optionally slid in
	PanelPath                          // SVG path with checkpoints
)

func (k PanelKind) String() string {
	switch k {
	case PanelText:
		return "text"
	case PanelPerson:
		return "person"
	case PanelIllustration:
		return "illustration"
	case PanelPath:
		return "path"
	default:
		return "unknown"
	}
}

// Class names communicate visibility and animation state to the renderer.
const (
	ClassOpen    = "open"
	ClassZoomed  = "zoomed"
	ClassHover   = "hover"
	ClassCurrent = "current"
	ClassActive  = "active"
)

// ScaleMode selects how the zoom scale is derived from the target rectangle.
type ScaleMode uint8

const (
	ScaleFit   ScaleMode = iota // min of width/height ratios
	ScaleCover                  // max of width/height ratios
)

// ParseScaleMode converts a config string ("fit" or "cover").
func ParseScaleMode(s string) (ScaleMode, bool) {
	switch s {
	case "fit", "":
		return ScaleFit, true
	case "cover":
		return ScaleCover, true
	default:
		return ScaleFit, false
	}
}

// EventType identifies a kind of interaction event.
type EventType uint8

const (
	EventPointerMove  EventType = iota // pointer moved (hover, no button)
	EventClick                         // press then release over the same element
	EventPointerEnter                  // pointer entered an element
	EventPointerLeave                  // pointer left an element
	EventWheel                         // wheel delta
	EventKey                           // navigation key pressed
)

// Key identifies a navigation key. Only the keys the mapper reacts to are
// modelled; everything else is ignored by the input layer.
type Key uint8

const (
	KeyNone Key = iota
	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
	KeyHome
	KeyEnd
	KeyEscape
)

// ParseKey maps a key name (as used in test scripts) to a Key.
func ParseKey(name string) Key {
	switch name {
	case "ArrowUp", "up":
		return KeyArrowUp
	case "ArrowDown", "down":
		return KeyArrowDown
	case "ArrowLeft", "left":
		return KeyArrowLeft
	case "ArrowRight", "right":
		return KeyArrowRight
	case "Home", "home":
		return KeyHome
	case "End", "end":
		return KeyEnd
	case "Escape", "escape", "esc":
		return KeyEscape
	default:
		return KeyNone
	}
}
