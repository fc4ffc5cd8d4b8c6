package hotspot

import (
	"context"
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
)

// mailboxSize bounds pending off-thread results.
const mailboxSize = 64

// SceneOptions configures NewScene. Zero values select defaults.
type SceneOptions struct {
	Config     *Config
	Logger     zerolog.Logger
	PathLoader PathLoader
	// ModalOpen reports whether unrelated UI owns input; navigation is
	// suppressed while it returns true.
	ModalOpen func() bool
	// Now is the clock used for wheel and touch accumulation.
	Now func() time.Time
}

// Scene is the application context of one mapper: it owns the element
// tree, every collaborating component and the mailbox through which
// background loads report back. There are no package-level singletons
// apart from the debug flag; Dispose is the single teardown path.
type Scene struct {
	stage *Element
	cfg   *Config
	log   zerolog.Logger

	reg         *Registry
	sched       *Scheduler
	hit         *HitTester
	mapper      *Mapper
	nav         *Navigator
	badges      *BadgePositioner
	checkpoints *CheckpointTracker

	mailbox chan func()
	ctx     context.Context
	cancel  context.CancelFunc
	now     func() time.Time

	viewport Rect
	images   map[string]*ebiten.Image

	// Input state
	running     bool
	pointer     pointerState
	touch       touchState
	touchIDs    []ebiten.TouchID
	injectQueue []syntheticEvent
	testRunner  *TestRunner

	debug    bool
	disposed bool
}

// NewScene wires a mapper around stage. stage holds the root container
// (an ElementContainer with Root set) and the panel layer.
func NewScene(stage *Element, opts SceneOptions) (*Scene, error) {
	if stage == nil {
		return nil, fmt.Errorf("new scene: %w", ErrNoRoot)
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new scene: %w", err)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())

	s := &Scene{
		stage:   stage,
		cfg:     cfg,
		log:     opts.Logger,
		sched:   NewScheduler(),
		mailbox: make(chan func(), mailboxSize),
		ctx:     ctx,
		cancel:  cancel,
		now:     now,
		images:  make(map[string]*ebiten.Image),
	}
	s.reg = NewRegistry(stage, s.log)
	s.hit = NewHitTester(uint8(min(max(cfg.AlphaThreshold, 0), 255)), s.log)
	s.mapper = NewMapper(s.reg, s.sched, s.hit, cfg, s.log)
	s.mapper.OnImageChange = s.attachImage
	if cfg.BadgePositioning {
		s.badges = NewBadgePositioner(s.reg, s.sched, cfg, s.Viewport, s.mapper.Animating, s.log)
		s.mapper.badges = s.badges
	}
	s.checkpoints = NewCheckpointTracker(ctx, s.sched, opts.PathLoader, s.Post, s.mapper.Animating, s.log)
	s.mapper.checkpoints = s.checkpoints
	s.nav = NewNavigator(s.mapper, s.reg, cfg.Navigation, s.log)
	s.nav.ModalOpen = opts.ModalOpen

	if err := s.mapper.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("new scene: %w", err)
	}
	s.SetDebugMode(cfg.Debug)
	return s, nil
}

// Stage returns the element tree the scene was built from.
func (s *Scene) Stage() *Element { return s.stage }

// Registry returns the element registry.
func (s *Scene) Registry() *Registry { return s.reg }

// Scheduler returns the animation scheduler.
func (s *Scene) Scheduler() *Scheduler { return s.sched }

// HitTester returns the pixel hit tester.
func (s *Scene) HitTester() *HitTester { return s.hit }

// Mapper returns the zoom state machine.
func (s *Scene) Mapper() *Mapper { return s.mapper }

// Navigator returns the scroll and keyboard adapter.
func (s *Scene) Navigator() *Navigator { return s.nav }

// Badges returns the badge positioner, or nil when badge positioning is
// disabled.
func (s *Scene) Badges() *BadgePositioner { return s.badges }

// Checkpoints returns the checkpoint tracker.
func (s *Scene) Checkpoints() *CheckpointTracker { return s.checkpoints }

// Config returns the scene configuration.
func (s *Scene) Config() *Config { return s.cfg }

// Logger returns the scene logger.
func (s *Scene) Logger() zerolog.Logger { return s.log }

// Context is cancelled when the scene is disposed.
func (s *Scene) Context() context.Context { return s.ctx }

// Viewport returns the current screen viewport.
func (s *Scene) Viewport() Rect { return s.viewport }

// SetViewport resizes the scene. Cached transforms are invalidated and
// badge offsets reapplied.
func (s *Scene) SetViewport(r Rect) {
	if r == s.viewport {
		return
	}
	s.viewport = r
	s.mapper.SetViewport(r)
	if s.badges != nil {
		s.badges.Reapply()
	}
}

// Post queues fn to run on the scene goroutine during the next Update. It
// is meant for background goroutines; it blocks while the mailbox is full
// and drops fn once the scene is disposed.
func (s *Scene) Post(fn func()) {
	select {
	case s.mailbox <- fn:
	case <-s.ctx.Done():
	}
}

// Update advances the scene by one tick at the current TPS.
func (s *Scene) Update() {
	s.Advance(float32(1.0 / float64(ebiten.TPS())))
}

// Advance runs one frame of dt seconds: mailbox results, scripted and
// device input, animations and tickers, then cached transforms.
func (s *Scene) Advance(dt float32) {
	if s.disposed {
		return
	}
	s.drainMailbox()
	if s.testRunner != nil {
		s.testRunner.step(s)
	}
	s.processInput()
	s.sched.Tick(dt)
	updateWorldTransform(s.stage, identityTransform, 1.0, false)
}

func (s *Scene) drainMailbox() {
	for {
		select {
		case fn := <-s.mailbox:
			fn()
		default:
			return
		}
	}
}

// SetImage registers a decoded image under src and attaches it to every
// element using that source.
func (s *Scene) SetImage(src string, img *ebiten.Image) {
	s.images[src] = img
	s.stage.Walk(func(e *Element) bool {
		if e.ImageSrc == src {
			e.SetImage(img)
		}
		return true
	})
}

func (s *Scene) attachImage(e *Element) {
	if img, ok := s.images[e.ImageSrc]; ok {
		e.SetImage(img)
		return
	}
	s.log.Debug().Str("src", e.ImageSrc).Msg("swapped image not loaded yet")
}

// SetTestRunner attaches a scripted runner. Its step runs at the start of
// every Advance, before input.
func (s *Scene) SetTestRunner(runner *TestRunner) {
	s.testRunner = runner
}

// SetDebugMode enables or disables debug mode. When enabled, disposed
// element access panics and tree depth warnings are logged.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
	debugLogger = s.log
}

// Dispose cancels background loads, stops every animation and ticker and
// releases the tree. The scene must not be used afterwards.
func (s *Scene) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.cancel()
	if s.mapper.active != nil {
		s.mapper.active.Kill()
	}
	s.sched.Stop()
	s.stage.Dispose()
	s.images = nil
	s.injectQueue = nil
	s.log.Debug().Msg("scene disposed")
}

// IsDisposed reports whether Dispose was called.
func (s *Scene) IsDisposed() bool {
	return s.disposed
}

// globalDebug mirrors the most recently set Scene debug flag so that
// element operations (which lack a Scene pointer) can check it cheaply.
var globalDebug bool
