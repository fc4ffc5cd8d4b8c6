package hotspot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Layout is the authored description of one mapper: the background image,
// its hotspots (possibly nested) and the auxiliary panels. It is stored as
// YAML on disk and as JSON inside the attribute blob.
type Layout struct {
	Version  int             `yaml:"version,omitempty" json:"version,omitempty"`
	Title    string          `yaml:"title,omitempty" json:"title,omitempty"`
	Image    string          `yaml:"image" json:"image"`
	Width    float64         `yaml:"width" json:"width"`
	Height   float64         `yaml:"height" json:"height"`
	Hotspots []HotspotLayout `yaml:"hotspots" json:"hotspots"`
	// Panels without a hotspot id are global and shown in the overview.
	Panels []PanelLayout `yaml:"panels,omitempty" json:"panels,omitempty"`
}

// HotspotLayout is one marker. Geometry is in percent of the parent
// container box.
type HotspotLayout struct {
	ID        string  `yaml:"id" json:"hotspotId"`
	Title     string  `yaml:"title,omitempty" json:"title,omitempty"`
	X         float64 `yaml:"x" json:"x"`
	Y         float64 `yaml:"y" json:"y"`
	Width     float64 `yaml:"width" json:"width"`
	Height    float64 `yaml:"height" json:"height"`
	Z         int     `yaml:"z,omitempty" json:"z,omitempty"`
	Image     string  `yaml:"image,omitempty" json:"image,omitempty"`
	ZoomImage string  `yaml:"zoomImage,omitempty" json:"zoomImage,omitempty"`

	Badge  *BadgeLayout  `yaml:"badge,omitempty" json:"badge,omitempty"`
	Panels []PanelLayout `yaml:"panels,omitempty" json:"panels,omitempty"`

	// Background and Hotspots describe the container nested in this
	// marker. A marker with neither is a leaf.
	Background string          `yaml:"background,omitempty" json:"background,omitempty"`
	Hotspots   []HotspotLayout `yaml:"hotspots,omitempty" json:"hotspots,omitempty"`
}

// BadgeLayout is the floating label of a marker.
type BadgeLayout struct {
	Text string `yaml:"text" json:"text"`
	Info string `yaml:"info,omitempty" json:"info,omitempty"`
}

// PanelLayout is an auxiliary panel. Geometry is in stage pixels.
type PanelLayout struct {
	Kind   string  `yaml:"kind" json:"kind"`
	Text   string  `yaml:"text,omitempty" json:"text,omitempty"`
	Image  string  `yaml:"image,omitempty" json:"image,omitempty"`
	Path   string  `yaml:"path,omitempty" json:"path,omitempty"`
	X      float64 `yaml:"x" json:"x"`
	Y      float64 `yaml:"y" json:"y"`
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`

	Checkpoints []CheckpointLayout `yaml:"checkpoints,omitempty" json:"checkpoints,omitempty"`
}

// CheckpointLayout places a checkpoint at Percent of the path length.
type CheckpointLayout struct {
	Percent float64 `yaml:"percent" json:"percent"`
	Text    string  `yaml:"text,omitempty" json:"text,omitempty"`
}

// Element sizes that are not authored.
const (
	badgeWidth      = 120
	badgeHeight     = 24
	badgeGap        = 6
	infoWidth       = 220
	infoHeight      = 90
	checkpointSize  = 12
	panelLayerZ     = 100
	nestedContainer = "-inner"
)

// ParsePanelKind converts a panel kind name.
func ParsePanelKind(s string) (PanelKind, bool) {
	switch strings.ToLower(s) {
	case "text", "":
		return PanelText, true
	case "person":
		return PanelPerson, true
	case "illustration":
		return PanelIllustration, true
	case "path", "svg":
		return PanelPath, true
	default:
		return PanelText, false
	}
}

// LoadLayout reads a layout file. Files ending in .json are decoded as
// JSON, everything else as YAML.
func LoadLayout(path string) (*Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load layout: %w", err)
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return DecodeLayoutJSON(f)
	}
	return DecodeLayout(f)
}

// DecodeLayout decodes a YAML layout.
func DecodeLayout(r io.Reader) (*Layout, error) {
	var l Layout
	if err := yaml.NewDecoder(r).Decode(&l); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	return &l, nil
}

// DecodeLayoutJSON decodes a JSON layout.
func DecodeLayoutJSON(r io.Reader) (*Layout, error) {
	var l Layout
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	return &l, nil
}

// Save writes the layout as YAML.
func (l *Layout) Save(path string) error {
	data, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write layout: %w", err)
	}
	return nil
}

// Walk visits every hotspot depth-first with its nesting depth (0 for
// root-level hotspots).
func (l *Layout) Walk(fn func(h *HotspotLayout, depth int)) {
	var walk func(hs []HotspotLayout, depth int)
	walk = func(hs []HotspotLayout, depth int) {
		for i := range hs {
			fn(&hs[i], depth)
			walk(hs[i].Hotspots, depth+1)
		}
	}
	walk(l.Hotspots, 0)
}

// Sources returns every image and path source referenced by the layout,
// without duplicates, in first-use order.
func (l *Layout) Sources() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(src string) {
		if src != "" && !seen[src] {
			seen[src] = true
			out = append(out, src)
		}
	}
	addPanels := func(ps []PanelLayout) {
		for _, p := range ps {
			add(p.Image)
			add(p.Path)
		}
	}
	add(l.Image)
	addPanels(l.Panels)
	l.Walk(func(h *HotspotLayout, _ int) {
		add(h.Image)
		add(h.ZoomImage)
		add(h.Background)
		addPanels(h.Panels)
	})
	return out
}

// AssignIDs gives every hotspot without an id a random one and returns how
// many were assigned.
func (l *Layout) AssignIDs() int {
	n := 0
	l.Walk(func(h *HotspotLayout, _ int) {
		if h.ID == "" {
			h.ID = uuid.NewString()
			n++
		}
	})
	return n
}

// Validate reports every problem found in the layout, joined into one
// error. Hotspot ids must be present and unique across the whole tree
// because they join markers to their panels.
func (l *Layout) Validate() error {
	var errs []error
	if l.Width <= 0 || l.Height <= 0 {
		errs = append(errs, fmt.Errorf("layout size %gx%g must be positive", l.Width, l.Height))
	}
	seen := make(map[string]bool)
	l.Walk(func(h *HotspotLayout, depth int) {
		name := h.ID
		if name == "" {
			name = h.Title
			errs = append(errs, fmt.Errorf("hotspot %q at depth %d has no id", h.Title, depth))
		} else if seen[h.ID] {
			errs = append(errs, fmt.Errorf("duplicate hotspot id %q", h.ID))
		}
		seen[h.ID] = true
		if !percentBox(h.X, h.Y, h.Width, h.Height) {
			errs = append(errs, fmt.Errorf("hotspot %q: geometry (%g,%g %gx%g) outside 0-100%%", name, h.X, h.Y, h.Width, h.Height))
		}
		for _, p := range h.Panels {
			errs = append(errs, validatePanel(name, p)...)
		}
	})
	for _, p := range l.Panels {
		errs = append(errs, validatePanel("", p)...)
	}
	return errors.Join(errs...)
}

func percentBox(x, y, w, h float64) bool {
	return x >= 0 && y >= 0 && w > 0 && h > 0 && x+w <= 100 && y+h <= 100
}

func validatePanel(owner string, p PanelLayout) []error {
	var errs []error
	where := "global panel"
	if owner != "" {
		where = fmt.Sprintf("hotspot %q panel", owner)
	}
	kind, ok := ParsePanelKind(p.Kind)
	if !ok {
		errs = append(errs, fmt.Errorf("%s: unknown kind %q", where, p.Kind))
	}
	if kind == PanelPath && p.Path == "" && len(p.Checkpoints) > 0 {
		errs = append(errs, fmt.Errorf("%s: checkpoints without a path", where))
	}
	for _, c := range p.Checkpoints {
		if c.Percent < 0 || c.Percent > 100 {
			errs = append(errs, fmt.Errorf("%s: checkpoint at %g%% outside 0-100%%", where, c.Percent))
		}
	}
	return errs
}

// BuildTree turns the layout into a stage element holding the root
// container and the panel layer. The stage is what NewScene expects.
func (l *Layout) BuildTree() (*Element, error) {
	if l.Width <= 0 || l.Height <= 0 {
		return nil, fmt.Errorf("build tree: layout size %gx%g must be positive", l.Width, l.Height)
	}
	stage := NewContainer("stage")
	stage.SetBox(Rect{Width: l.Width, Height: l.Height})

	root := NewContainer("root")
	root.Root = true
	root.ImageSrc = l.Image
	root.SetBox(Rect{Width: l.Width, Height: l.Height})
	stage.AddChild(root)

	panels := NewContainer("panels")
	panels.SetBox(Rect{Width: l.Width, Height: l.Height})
	panels.SetZIndex(panelLayerZ)
	stage.AddChild(panels)

	if err := addPanels(panels, "", l.Panels); err != nil {
		return nil, fmt.Errorf("build tree: %w", err)
	}
	if err := addMarkers(root, panels, l.Hotspots); err != nil {
		return nil, fmt.Errorf("build tree: %w", err)
	}
	return stage, nil
}

func addMarkers(container, panels *Element, hs []HotspotLayout) error {
	for i, h := range hs {
		name := h.Title
		if name == "" {
			name = h.ID
		}
		mk := NewMarker(name, h.ID)
		mk.SetBox(Rect{
			X:      h.X / 100 * container.Width,
			Y:      h.Y / 100 * container.Height,
			Width:  h.Width / 100 * container.Width,
			Height: h.Height / 100 * container.Height,
		})
		mk.ZIndex = h.Z
		mk.ImageSrc = h.Image
		mk.ZoomImageSrc = h.ZoomImage
		container.AddChild(mk)

		if h.Badge != nil {
			addBadge(mk, *h.Badge)
		}
		if h.Background != "" || len(h.Hotspots) > 0 {
			inner := NewContainer(h.ID + nestedContainer)
			inner.ImageSrc = h.Background
			inner.SetBox(Rect{Width: mk.Width, Height: mk.Height})
			mk.AddChild(inner)
			if err := addMarkers(inner, panels, h.Hotspots); err != nil {
				return err
			}
		}
		if h.ID == "" && len(h.Panels) > 0 {
			return fmt.Errorf("hotspot %d (%q): panels need a hotspot id", i, h.Title)
		}
		if err := addPanels(panels, h.ID, h.Panels); err != nil {
			return err
		}
	}
	return nil
}

func addBadge(mk *Element, b BadgeLayout) {
	badge := NewBadge(mk.Name+"-badge", b.Text)
	badge.SetBox(Rect{
		X:      (mk.Width - badgeWidth) / 2,
		Y:      -badgeHeight - badgeGap,
		Width:  badgeWidth,
		Height: badgeHeight,
	})
	badge.ZIndex = 1
	mk.AddChild(badge)
	if b.Info == "" {
		return
	}
	info := NewInfo(mk.Name+"-info", b.Info)
	info.SetBox(Rect{
		X:      (badgeWidth - infoWidth) / 2,
		Y:      badgeHeight + badgeGap,
		Width:  infoWidth,
		Height: infoHeight,
	})
	badge.AddChild(info)
}

func addPanels(layer *Element, hotspotID string, ps []PanelLayout) error {
	for i, p := range ps {
		kind, ok := ParsePanelKind(p.Kind)
		if !ok {
			return fmt.Errorf("panel %d of %q: unknown kind %q", i, hotspotID, p.Kind)
		}
		name := kind.String()
		if hotspotID != "" {
			name = hotspotID + "-" + name
		}
		panel := NewPanel(name, kind, hotspotID)
		panel.SetBox(Rect{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height})
		panel.Text = p.Text
		panel.ImageSrc = p.Image
		if kind == PanelPath {
			panel.ImageSrc = p.Path
		}
		for j, c := range p.Checkpoints {
			cp := NewCheckpoint(fmt.Sprintf("%s-cp%d", name, j), c.Percent)
			cp.SetBox(Rect{Width: checkpointSize, Height: checkpointSize})
			cp.Text = c.Text
			panel.AddChild(cp)
		}
		layer.AddChild(panel)
	}
	return nil
}
