package hotspot

import (
	"context"
	"maps"
	"slices"

	"github.com/rs/zerolog"
)

// Checkpoint is a point placed along a path panel at an arc-length
// percentage.
type Checkpoint struct {
	Percent  float64
	Element  *Element
	Geometry *PathGeometry
}

// CheckpointTracker positions checkpoints on open path panels. Path
// geometry is loaded once per panel off the main goroutine; results come
// back through post. Positions are recomputed every frame only while a path
// panel is open and either a transition is running or a checkpoint is
// hovered.
type CheckpointTracker struct {
	sched  *Scheduler
	loader PathLoader
	post   func(func())
	busy   func() bool
	log    zerolog.Logger
	ctx    context.Context

	paths   map[uint32]Result[*PathGeometry]
	loading map[uint32]bool
	open    map[uint32][]Checkpoint
	panels  map[uint32]*Element
	hovered *Element

	ticker TickerHandle
}

// NewCheckpointTracker creates a tracker. post must run fn on the main
// goroutine; busy reports whether a transition is in flight.
func NewCheckpointTracker(ctx context.Context, sched *Scheduler, loader PathLoader, post func(func()), busy func() bool, log zerolog.Logger) *CheckpointTracker {
	if busy == nil {
		busy = func() bool { return false }
	}
	return &CheckpointTracker{
		sched:   sched,
		loader:  loader,
		post:    post,
		busy:    busy,
		log:     log,
		ctx:     ctx,
		paths:   make(map[uint32]Result[*PathGeometry]),
		loading: make(map[uint32]bool),
		open:    make(map[uint32][]Checkpoint),
		panels:  make(map[uint32]*Element),
	}
}

// Open registers the checkpoints of a path panel and starts loading its
// geometry if needed.
func (t *CheckpointTracker) Open(panel *Element) {
	if panel == nil || panel.Kind != ElementPanel || panel.PanelKind != PanelPath {
		return
	}
	var cps []Checkpoint
	for _, c := range panel.children {
		if c.Kind != ElementCheckpoint || len(c.Checkpoints) == 0 {
			continue
		}
		cps = append(cps, Checkpoint{Percent: c.Checkpoints[0], Element: c})
	}
	t.open[panel.ID] = cps
	t.panels[panel.ID] = panel

	res, ok := t.paths[panel.ID]
	switch {
	case ok && res.OK():
		t.position(panel.ID)
	case ok:
		// Failed earlier; positioning stays skipped.
	default:
		t.load(panel)
	}
	t.Refresh()
}

// Close deregisters the checkpoints of panel.
func (t *CheckpointTracker) Close(panel *Element) {
	if panel == nil {
		return
	}
	if t.hovered != nil && t.hovered.Parent == panel {
		t.hovered.RemoveClass(ClassHover)
		t.hovered = nil
	}
	delete(t.open, panel.ID)
	delete(t.panels, panel.ID)
	t.Refresh()
}

// Checkpoints returns the registered checkpoints of an open panel.
func (t *CheckpointTracker) Checkpoints(panelID uint32) []Checkpoint {
	return t.open[panelID]
}

// Geometry reports the load state of a panel's path.
func (t *CheckpointTracker) Geometry(panelID uint32) Result[*PathGeometry] {
	if res, ok := t.paths[panelID]; ok {
		return res
	}
	return NotFound[*PathGeometry](ErrNoPath)
}

// Tracking reports whether the per-frame ticker is registered.
func (t *CheckpointTracker) Tracking() bool {
	return t.ticker.Active()
}

func (t *CheckpointTracker) load(panel *Element) {
	if t.loader == nil || panel.ImageSrc == "" {
		t.paths[panel.ID] = NotFound[*PathGeometry](ErrNoPath)
		t.log.Debug().Str("panel", panel.Name).Msg("path panel has no source")
		return
	}
	if t.loading[panel.ID] {
		return
	}
	t.loading[panel.ID] = true
	id, src := panel.ID, panel.ImageSrc
	go func() {
		g, err := t.loader.LoadPath(t.ctx, src)
		t.post(func() { t.loaded(id, src, g, err) })
	}()
}

func (t *CheckpointTracker) loaded(id uint32, src string, g *PathGeometry, err error) {
	delete(t.loading, id)
	if err != nil {
		t.paths[id] = LoadFailed[*PathGeometry](err)
		t.log.Warn().Str("src", src).Err(err).Msg("path load failed, checkpoints not positioned")
		return
	}
	t.paths[id] = Ok(g)
	if _, open := t.open[id]; open {
		t.position(id)
	}
}

// position places every checkpoint of a panel on its path, centred on the
// path point in the panel's local box.
func (t *CheckpointTracker) position(panelID uint32) {
	res := t.paths[panelID]
	if !res.OK() {
		return
	}
	g := res.Value
	box := Rect{Width: t.panels[panelID].Width, Height: t.panels[panelID].Height}
	cps := t.open[panelID]
	for i := range cps {
		cps[i].Geometry = g
		p := g.MapToBox(g.PointAt(cps[i].Percent), box)
		e := cps[i].Element
		e.SetPosition(p.X-e.Width/2, p.Y-e.Height/2)
	}
}

// Hover updates the hovered checkpoint for the pointer at (x, y). Among
// overlapping checkpoints the last one in panel ID order, then checkpoint
// order, wins.
func (t *CheckpointTracker) Hover(x, y float64) {
	var hit *Element
	for _, id := range slices.Sorted(maps.Keys(t.open)) {
		for _, cp := range t.open[id] {
			if cp.Element.Visible && cp.Element.ScreenRect().Contains(x, y) {
				hit = cp.Element
			}
		}
	}
	if hit == t.hovered {
		return
	}
	if t.hovered != nil {
		t.hovered.RemoveClass(ClassHover)
	}
	t.hovered = hit
	if hit != nil {
		hit.AddClass(ClassHover)
	}
	t.Refresh()
}

// Refresh subscribes to or unsubscribes from the scheduler ticker.
func (t *CheckpointTracker) Refresh() {
	want := len(t.open) > 0 && (t.busy() || t.hovered != nil)
	switch {
	case want && !t.ticker.Active():
		t.ticker = t.sched.AddTicker(t.tick)
	case !want && t.ticker.Active():
		t.ticker.Remove()
		t.ticker = TickerHandle{}
	}
}

func (t *CheckpointTracker) tick(float32) {
	for id := range t.open {
		t.position(id)
	}
	t.Refresh()
}
