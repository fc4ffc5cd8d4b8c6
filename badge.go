package hotspot

import "github.com/rs/zerolog"

// BadgePositioner keeps the info panel of a hovered badge inside the padded
// viewport. The offset is computed on first hover and cached; per-frame
// tracking runs only while a transition is in flight or a badge is hovered.
type BadgePositioner struct {
	reg      *Registry
	sched    *Scheduler
	cfg      *Config
	viewport func() Rect
	busy     func() bool
	log      zerolog.Logger

	offsets map[uint32]Vec2
	hovered *Element
	ticker  TickerHandle
}

// NewBadgePositioner creates a positioner. viewport returns the current
// screen viewport; busy reports whether a transition is in flight.
func NewBadgePositioner(reg *Registry, sched *Scheduler, cfg *Config, viewport func() Rect, busy func() bool, log zerolog.Logger) *BadgePositioner {
	if busy == nil {
		busy = func() bool { return false }
	}
	return &BadgePositioner{
		reg:      reg,
		sched:    sched,
		cfg:      cfg,
		viewport: viewport,
		busy:     busy,
		log:      log,
		offsets:  make(map[uint32]Vec2),
	}
}

// OnHover reveals the badge's info panel, computing its offset the first
// time the badge is hovered.
func (b *BadgePositioner) OnHover(badge *Element) {
	if badge == nil || badge == b.hovered {
		return
	}
	b.OnLeave()
	info := badge.FirstChildOfKind(ElementInfo)
	if info == nil {
		b.log.Debug().Str("badge", badge.Name).Msg("badge has no info panel")
		return
	}
	b.hovered = badge
	badge.AddClass(ClassHover)
	info.Visible = true
	info.AddClass(ClassOpen)
	if _, ok := b.offsets[badge.ID]; !ok {
		b.offsets[badge.ID] = b.compute(info)
	}
	b.apply(badge, info)
	b.Track()
}

// OnLeave hides the info panel of the hovered badge, if any.
func (b *BadgePositioner) OnLeave() {
	if b.hovered == nil {
		return
	}
	b.hovered.RemoveClass(ClassHover)
	if info := b.hovered.FirstChildOfKind(ElementInfo); info != nil {
		info.Visible = false
		info.RemoveClass(ClassOpen)
	}
	b.hovered = nil
	b.Track()
}

// Hovered returns the hovered badge, or nil.
func (b *BadgePositioner) Hovered() *Element {
	return b.hovered
}

// Offset returns the cached offset of a badge.
func (b *BadgePositioner) Offset(badgeID uint32) (Vec2, bool) {
	v, ok := b.offsets[badgeID]
	return v, ok
}

// Reapply recomputes and reapplies the offset of every badge hovered at
// least once. Call it after the viewport moves or resizes.
func (b *BadgePositioner) Reapply() {
	for id := range b.offsets {
		res := b.reg.Element(id)
		if !res.OK() {
			delete(b.offsets, id)
			continue
		}
		badge := res.Value
		info := badge.FirstChildOfKind(ElementInfo)
		if info == nil {
			continue
		}
		b.offsets[id] = b.compute(info)
		b.apply(badge, info)
	}
}

// Track subscribes to the scheduler ticker while there is something to
// follow and unsubscribes otherwise.
func (b *BadgePositioner) Track() {
	want := b.hovered != nil || (b.busy() && len(b.offsets) > 0)
	switch {
	case want && !b.ticker.Active():
		b.ticker = b.sched.AddTicker(b.tick)
	case !want && b.ticker.Active():
		b.ticker.Remove()
		b.ticker = TickerHandle{}
	}
}

// Tracking reports whether the per-frame ticker is registered.
func (b *BadgePositioner) Tracking() bool {
	return b.ticker.Active()
}

func (b *BadgePositioner) tick(float32) {
	if b.busy() {
		b.Reapply()
	} else if b.hovered != nil {
		if info := b.hovered.FirstChildOfKind(ElementInfo); info != nil {
			b.offsets[b.hovered.ID] = b.compute(info)
			b.apply(b.hovered, info)
		}
	}
	b.Track()
}

func (b *BadgePositioner) apply(badge, info *Element) {
	off := b.offsets[badge.ID]
	info.OffsetX, info.OffsetY = off.X, off.Y
	info.MarkDirty()
}

// compute returns the local offset that moves info's untranslated screen
// rectangle inside the padded viewport. A panel larger than the region is
// pinned to its left or top edge.
func (b *BadgePositioner) compute(info *Element) Vec2 {
	ox, oy := info.OffsetX, info.OffsetY
	info.OffsetX, info.OffsetY = 0, 0
	r := info.ScreenRect()
	info.OffsetX, info.OffsetY = ox, oy

	vp := b.viewport()
	region := PaddingFor(vp, b.cfg.PaddingTop, b.cfg.Padding).Apply(vp)

	dx := overflow(r.X, r.Right(), region.X, region.Right())
	dy := overflow(r.Y, r.Bottom(), region.Y, region.Bottom())

	// Screen pixels to the info panel's parent frame.
	k := 1.0
	if info.Parent != nil {
		m := info.Parent.WorldTransform()
		k = m[0]
	}
	if k == 0 {
		k = 1
	}
	return Vec2{X: dx / k, Y: dy / k}
}

// overflow returns the signed shift that brings [lo, hi] inside [min, max].
func overflow(lo, hi, minV, maxV float64) float64 {
	switch {
	case hi-lo > maxV-minV:
		return minV - lo
	case lo < minV:
		return minV - lo
	case hi > maxV:
		return maxV - hi
	}
	return 0
}
