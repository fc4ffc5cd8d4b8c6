package hotspot

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"cogentcore.org/core/paint/ppath"
	"cogentcore.org/core/paint/ppath/intersect"
)

// ErrNoPath is returned when an SVG document has no usable <path>.
var ErrNoPath = errors.New("hotspot: svg has no path")

type pathSeg struct {
	a, b  Vec2
	start float64 // arc length at a
}

// PathGeometry is a flattened SVG path measured by arc length.
type PathGeometry struct {
	Points  []Vec2
	Length  float64
	Bounds  Rect
	ViewBox Rect

	segs []pathSeg
}

// PointAt returns the point at percent (0-100) of the path's arc length, in
// path coordinates. Out-of-range percentages are clamped.
func (g *PathGeometry) PointAt(percent float64) Vec2 {
	if len(g.segs) == 0 {
		if len(g.Points) > 0 {
			return g.Points[0]
		}
		return Vec2{}
	}
	percent = math.Max(0, math.Min(100, percent))
	d := percent / 100 * g.Length

	i := sort.Search(len(g.segs), func(i int) bool {
		return g.segs[i].start+segLen(g.segs[i]) >= d
	})
	if i >= len(g.segs) {
		return g.segs[len(g.segs)-1].b
	}
	s := g.segs[i]
	l := segLen(s)
	if l == 0 {
		return s.a
	}
	t := (d - s.start) / l
	return Vec2{X: s.a.X + (s.b.X-s.a.X)*t, Y: s.a.Y + (s.b.Y-s.a.Y)*t}
}

// frame returns the coordinate frame the path is drawn in: the viewBox
// when present, otherwise the path bounds.
func (g *PathGeometry) frame() Rect {
	if !g.ViewBox.Empty() {
		return g.ViewBox
	}
	return g.Bounds
}

// MapToBox maps a path-space point into box, fitting the frame inside box
// and centring it (SVG's default xMidYMid meet).
func (g *PathGeometry) MapToBox(p Vec2, box Rect) Vec2 {
	f := g.frame()
	if f.Width == 0 && f.Height == 0 {
		return Vec2{X: box.X, Y: box.Y}
	}
	s := g.Scale(box)
	ox := box.X + (box.Width-f.Width*s)/2
	oy := box.Y + (box.Height-f.Height*s)/2
	return Vec2{X: ox + (p.X-f.X)*s, Y: oy + (p.Y-f.Y)*s}
}

// Scale returns the factor that fits the path frame inside box.
func (g *PathGeometry) Scale(box Rect) float64 {
	f := g.frame()
	switch {
	case f.Width == 0 && f.Height == 0:
		return 1
	case f.Width == 0:
		return box.Height / f.Height
	case f.Height == 0:
		return box.Width / f.Width
	}
	return math.Min(box.Width/f.Width, box.Height/f.Height)
}

func segLen(s pathSeg) float64 {
	return math.Hypot(s.b.X-s.a.X, s.b.Y-s.a.Y)
}

// --- Path data parsing ---

// flattenTolerance is the largest distance, in path units, between a curve
// and the polyline that replaces it.
const flattenTolerance = 0.1

// ParsePathData parses an SVG path "d" attribute and flattens its curves
// and arcs into line segments measured by arc length.
func ParsePathData(d string) (*PathGeometry, error) {
	d = strings.TrimSpace(d)
	if d == "" {
		return nil, ErrNoPath
	}
	p, err := ppath.ParseSVGPath(d)
	if err != nil {
		return nil, fmt.Errorf("path data: %w", err)
	}

	var g PathGeometry
	var cur Vec2
	for sc := intersect.Flatten(p, flattenTolerance).Scanner(); sc.Scan(); {
		end := sc.End()
		pt := Vec2{X: float64(end.X), Y: float64(end.Y)}
		if sc.Cmd() == ppath.MoveTo {
			g.Points = append(g.Points, pt)
			cur = pt
			continue
		}
		// LineTo and Close; a flattened path holds nothing else.
		s := pathSeg{a: cur, b: pt, start: g.Length}
		g.segs = append(g.segs, s)
		g.Length += segLen(s)
		g.Points = append(g.Points, pt)
		cur = pt
	}
	if len(g.Points) == 0 {
		return nil, ErrNoPath
	}
	g.Bounds = boundsOf(g.Points)
	return &g, nil
}

func boundsOf(pts []Vec2) Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// --- SVG documents ---

// ParseSVG reads the first <path> of an SVG document together with the
// root viewBox (or width/height when no viewBox is set).
func ParseSVG(r io.Reader) (*PathGeometry, error) {
	dec := xml.NewDecoder(r)
	var viewBox Rect
	sawRoot := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, ErrNoPath
		}
		if err != nil {
			return nil, fmt.Errorf("parse svg: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "svg":
			if sawRoot {
				continue
			}
			sawRoot = true
			viewBox = svgViewBox(se.Attr)
		case "path":
			for _, a := range se.Attr {
				if a.Name.Local != "d" {
					continue
				}
				g, err := ParsePathData(a.Value)
				if err != nil {
					return nil, err
				}
				g.ViewBox = viewBox
				return g, nil
			}
		}
	}
}

func svgViewBox(attrs []xml.Attr) Rect {
	var w, h float64
	for _, a := range attrs {
		switch a.Name.Local {
		case "viewBox":
			f := strings.FieldsFunc(a.Value, func(r rune) bool { return r == ' ' || r == ',' })
			if len(f) != 4 {
				continue
			}
			var v [4]float64
			ok := true
			for i := range f {
				n, err := strconv.ParseFloat(f[i], 64)
				if err != nil {
					ok = false
					break
				}
				v[i] = n
			}
			if ok {
				return Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
			}
		case "width":
			w, _ = strconv.ParseFloat(strings.TrimSuffix(a.Value, "px"), 64)
		case "height":
			h, _ = strconv.ParseFloat(strings.TrimSuffix(a.Value, "px"), 64)
		}
	}
	return Rect{Width: w, Height: h}
}

// --- Loaders ---

// PathLoader fetches and parses the SVG behind a path panel.
type PathLoader interface {
	LoadPath(ctx context.Context, src string) (*PathGeometry, error)
}

// FSPathLoader loads SVG files from a filesystem.
type FSPathLoader struct {
	FS fs.FS
}

// LoadPath opens src in the filesystem and parses it.
func (l FSPathLoader) LoadPath(ctx context.Context, src string) (*PathGeometry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := l.FS.Open(cleanSource(src))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", src, err)
	}
	defer f.Close()
	g, err := ParseSVG(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	return g, nil
}

// HTTPPathLoader fetches SVG documents over HTTP. Relative sources are
// resolved against BaseURL.
type HTTPPathLoader struct {
	Client  *http.Client
	BaseURL string
}

// LoadPath fetches src and parses it.
func (l HTTPPathLoader) LoadPath(ctx context.Context, src string) (*PathGeometry, error) {
	u := src
	if l.BaseURL != "" {
		base, err := url.Parse(l.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("base url: %w", err)
		}
		ref, err := url.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("path url: %w", err)
		}
		u = base.ResolveReference(ref).String()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", u, resp.StatusCode)
	}
	g, err := ParseSVG(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", u, err)
	}
	return g, nil
}
