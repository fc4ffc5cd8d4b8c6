package hotspot

import (
	"strings"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Prop names an animatable Element field.
type Prop uint8

const (
	PropScale Prop = iota
	PropTranslateX
	PropTranslateY
	PropAlpha
	PropOffsetX
	PropOffsetY
)

func (e *Element) field(p Prop) *float64 {
	switch p {
	case PropScale:
		return &e.Scale
	case PropTranslateX:
		return &e.TranslateX
	case PropTranslateY:
		return &e.TranslateY
	case PropAlpha:
		return &e.Alpha
	case PropOffsetX:
		return &e.OffsetX
	case PropOffsetY:
		return &e.OffsetY
	default:
		return nil
	}
}

// Property returns the current value of an animatable field.
func Property(e *Element, p Prop) float64 {
	if f := e.field(p); f != nil {
		return *f
	}
	return 0
}

// track animates one field. The gween tween is created when the track
// starts so it begins from the value the field holds at that moment.
type track struct {
	target   *Element
	field    *float64
	to       float64
	duration float32
	easing   ease.TweenFunc
	offset   float32

	tween   *gween.Tween
	started bool
	done    bool
}

type timelineCall struct {
	offset float32
	fn     func()
	fired  bool
}

// Timeline schedules tweens and callbacks at offsets from its start and
// reports completion once every track has finished. Timelines are advanced
// by the Scheduler; there is no global animation manager.
type Timeline struct {
	tracks     []*track
	calls      []*timelineCall
	onComplete []func()
	elapsed    float32
	done       bool
	killed     bool
}

// Tween schedules field p of e to animate to `to` over duration seconds,
// starting offset seconds after the timeline starts.
func (tl *Timeline) Tween(e *Element, p Prop, to float64, duration float32, fn ease.TweenFunc, offset float32) *Timeline {
	f := e.field(p)
	if f == nil {
		return tl
	}
	if fn == nil {
		fn = ease.Linear
	}
	tl.tracks = append(tl.tracks, &track{
		target:   e,
		field:    f,
		to:       to,
		duration: duration,
		easing:   fn,
		offset:   offset,
	})
	return tl
}

// Transform schedules scale and translate of e towards t.
func (tl *Timeline) Transform(e *Element, t Transform, duration float32, fn ease.TweenFunc, offset float32) *Timeline {
	tl.Tween(e, PropScale, t.Scale, duration, fn, offset)
	tl.Tween(e, PropTranslateX, t.TranslateX, duration, fn, offset)
	tl.Tween(e, PropTranslateY, t.TranslateY, duration, fn, offset)
	return tl
}

// Call schedules fn at offset seconds.
func (tl *Timeline) Call(offset float32, fn func()) *Timeline {
	tl.calls = append(tl.calls, &timelineCall{offset: offset, fn: fn})
	return tl
}

// OnComplete registers fn to run once, after every track and call resolved.
func (tl *Timeline) OnComplete(fn func()) *Timeline {
	tl.onComplete = append(tl.onComplete, fn)
	return tl
}

// Len returns the number of scheduled tracks and calls.
func (tl *Timeline) Len() int {
	return len(tl.tracks) + len(tl.calls)
}

// Done reports whether the timeline finished or was killed.
func (tl *Timeline) Done() bool {
	return tl.done || tl.killed
}

// Kill stops the timeline without running completion callbacks. Fields
// keep their current values.
func (tl *Timeline) Kill() {
	tl.killed = true
}

// Update advances the timeline by dt seconds and returns Done().
func (tl *Timeline) Update(dt float32) bool {
	if tl.Done() {
		return true
	}
	tl.elapsed += dt

	allDone := true
	for _, tr := range tl.tracks {
		if tr.done {
			continue
		}
		if tr.target.IsDisposed() {
			tr.done = true
			continue
		}
		if !tr.started {
			if tl.elapsed < tr.offset {
				allDone = false
				continue
			}
			tr.tween = gween.New(float32(*tr.field), float32(tr.to), tr.duration, tr.easing)
			tr.started = true
		}
		val, finished := tr.tween.Set(tl.elapsed - tr.offset)
		if finished {
			// gween reports the begin value for zero-length tweens.
			*tr.field = tr.to
			tr.done = true
		} else {
			*tr.field = float64(val)
			allDone = false
		}
		tr.target.MarkDirty()
	}

	for _, c := range tl.calls {
		if c.fired {
			continue
		}
		if tl.elapsed >= c.offset {
			c.fired = true
			c.fn()
		} else {
			allDone = false
		}
	}

	if allDone && !tl.killed {
		tl.done = true
		for _, fn := range tl.onComplete {
			fn()
		}
	}
	return tl.Done()
}

// --- Scheduler ---

type tickerEntry struct {
	id uint32
	fn func(dt float32)
}

// Scheduler plays timelines and runs per-frame ticker callbacks. It stands
// in for the external animation engine: create timeline, schedule tweens,
// register ticker callbacks.
type Scheduler struct {
	active  []*Timeline
	tickers []tickerEntry
	nextID  uint32
	scratch []*Timeline
}

// NewScheduler creates an idle scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// NewTimeline returns an empty timeline. It does not run until Play.
func (s *Scheduler) NewTimeline() *Timeline {
	return &Timeline{}
}

// Play starts tl. Zero-length work (offset 0, duration 0) is applied
// immediately so instant transitions resolve within the calling frame.
func (s *Scheduler) Play(tl *Timeline) *Timeline {
	if tl.Update(0) {
		return tl
	}
	s.active = append(s.active, tl)
	return tl
}

// Tick advances every playing timeline, then every ticker.
func (s *Scheduler) Tick(dt float32) {
	s.scratch = append(s.scratch[:0], s.active...)
	s.active = s.active[:0]
	for _, tl := range s.scratch {
		if !tl.Update(dt) {
			s.active = append(s.active, tl)
		}
	}
	// Timelines started by completion callbacks were appended to s.active
	// directly by Play and are kept.

	ticks := make([]tickerEntry, len(s.tickers))
	copy(ticks, s.tickers)
	for _, t := range ticks {
		if s.hasTicker(t.id) {
			t.fn(dt)
		}
	}
}

// Stop drops every timeline and ticker without completing them.
func (s *Scheduler) Stop() {
	for _, tl := range s.active {
		tl.Kill()
	}
	s.active = nil
	s.tickers = nil
}

// Playing returns the number of unfinished timelines.
func (s *Scheduler) Playing() int {
	return len(s.active)
}

// TickerHandle unregisters a ticker callback.
type TickerHandle struct {
	id uint32
	s  *Scheduler
}

// AddTicker registers fn to run on every Tick.
func (s *Scheduler) AddTicker(fn func(dt float32)) TickerHandle {
	s.nextID++
	s.tickers = append(s.tickers, tickerEntry{id: s.nextID, fn: fn})
	return TickerHandle{id: s.nextID, s: s}
}

// Remove unregisters the ticker. Safe to call more than once and on the
// zero handle.
func (h TickerHandle) Remove() {
	if h.s == nil {
		return
	}
	for i := range h.s.tickers {
		if h.s.tickers[i].id == h.id {
			copy(h.s.tickers[i:], h.s.tickers[i+1:])
			h.s.tickers[len(h.s.tickers)-1] = tickerEntry{}
			h.s.tickers = h.s.tickers[:len(h.s.tickers)-1]
			return
		}
	}
}

// Active reports whether the handle's ticker is still registered.
func (h TickerHandle) Active() bool {
	return h.s != nil && h.s.hasTicker(h.id)
}

// Tickers returns the number of registered tickers.
func (s *Scheduler) Tickers() int {
	return len(s.tickers)
}

func (s *Scheduler) hasTicker(id uint32) bool {
	for _, t := range s.tickers {
		if t.id == id {
			return true
		}
	}
	return false
}

// --- Easing ---

var easeNames = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"none":         ease.Linear,
	"power1.in":    ease.InQuad,
	"power1.out":   ease.OutQuad,
	"power1.inout": ease.InOutQuad,
	"power2.in":    ease.InCubic,
	"power2.out":   ease.OutCubic,
	"power2.inout": ease.InOutCubic,
	"power3.in":    ease.InQuart,
	"power3.out":   ease.OutQuart,
	"power3.inout": ease.InOutQuart,
	"power4.in":    ease.InQuint,
	"power4.out":   ease.OutQuint,
	"power4.inout": ease.InOutQuint,
	"sine.in":      ease.InSine,
	"sine.out":     ease.OutSine,
	"sine.inout":   ease.InOutSine,
	"expo.in":      ease.InExpo,
	"expo.out":     ease.OutExpo,
	"expo.inout":   ease.InOutExpo,
	"circ.inout":   ease.InOutCirc,
	"back.out":     ease.OutBack,
	"back.inout":   ease.InOutBack,
	"elastic.out":  ease.OutElastic,
	"bounce.out":   ease.OutBounce,
}

// gweenEaseNames holds every function of gween/ease under its lower-cased
// name.
var gweenEaseNames = map[string]ease.TweenFunc{
	"inback":       ease.InBack,
	"inbounce":     ease.InBounce,
	"incirc":       ease.InCirc,
	"incubic":      ease.InCubic,
	"inelastic":    ease.InElastic,
	"inexpo":       ease.InExpo,
	"inoutback":    ease.InOutBack,
	"inoutbounce":  ease.InOutBounce,
	"inoutcirc":    ease.InOutCirc,
	"inoutcubic":   ease.InOutCubic,
	"inoutelastic": ease.InOutElastic,
	"inoutexpo":    ease.InOutExpo,
	"inoutquad":    ease.InOutQuad,
	"inoutquart":   ease.InOutQuart,
	"inoutquint":   ease.InOutQuint,
	"inoutsine":    ease.InOutSine,
	"inquad":       ease.InQuad,
	"inquart":      ease.InQuart,
	"inquint":      ease.InQuint,
	"insine":       ease.InSine,
	"linear":       ease.Linear,
	"outback":      ease.OutBack,
	"outbounce":    ease.OutBounce,
	"outcirc":      ease.OutCirc,
	"outcubic":     ease.OutCubic,
	"outelastic":   ease.OutElastic,
	"outexpo":      ease.OutExpo,
	"outinback":    ease.OutInBack,
	"outinbounce":  ease.OutInBounce,
	"outincirc":    ease.OutInCirc,
	"outincubic":   ease.OutInCubic,
	"outinelastic": ease.OutInElastic,
	"outinexpo":    ease.OutInExpo,
	"outinquad":    ease.OutInQuad,
	"outinquart":   ease.OutInQuart,
	"outinquint":   ease.OutInQuint,
	"outinsine":    ease.OutInSine,
	"outquad":      ease.OutQuad,
	"outquart":     ease.OutQuart,
	"outquint":     ease.OutQuint,
	"outsine":      ease.OutSine,
}

// EaseByName resolves an easing name. Timeline-style names
// ("power2.inOut") and the name of any gween/ease function ("OutInBack")
// are accepted, case insensitively.
func EaseByName(name string) (ease.TweenFunc, bool) {
	key := strings.ToLower(name)
	if fn, ok := easeNames[key]; ok {
		return fn, true
	}
	fn, ok := gweenEaseNames[key]
	return fn, ok
}
