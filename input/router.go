package input

import (
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/heartscroll/constants"
	"github.com/lixenwraith/heartscroll/engine"
)

// Requester is the single transition entry point the router drives
type Requester interface {
	RequestTransition(target int) bool
	State() engine.SequencerState
	Total() int
}

// Outcome reports what the router did with one input event
type Outcome uint8

const (
	// OutcomeIgnored means the event carried nothing actionable
	OutcomeIgnored Outcome = iota
	// OutcomeTracking means a gesture was recorded or updated without a request
	OutcomeTracking
	// OutcomeSuppressed means the cooldown window swallowed the event
	OutcomeSuppressed
	// OutcomePassThrough means an inner region scrolled; the sequencer was untouched
	OutcomePassThrough
	// OutcomeRejected means a request was issued and the sequencer dropped it
	OutcomeRejected
	// OutcomeAccepted means a request was issued and a transition started
	OutcomeAccepted
)

var outcomeNames = [...]string{"ignored", "tracking", "suppressed", "pass_through", "rejected", "accepted"}

// String implements fmt.Stringer
func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

// Requested reports whether the sequencer was called
func (o Outcome) Requested() bool {
	return o == OutcomeAccepted || o == OutcomeRejected
}

// RouterConfig holds the input thresholds
type RouterConfig struct {
	Cooldown         time.Duration
	SwipeMinRows     int
	SwipeMaxDuration time.Duration
}

// DefaultRouterConfig returns the stock thresholds
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		Cooldown:         constants.WheelCooldown,
		SwipeMinRows:     constants.SwipeMinRows,
		SwipeMaxDuration: constants.SwipeMaxDuration,
	}
}

// gesture is the in-progress touch/drag
type gesture struct {
	active  bool
	ignored bool // Started on an interactive control
	fired   bool // Already produced its one request
	originY int
	start   time.Time
	region  ScrollRegion
}

// Router turns wheel, touch and keyboard input into at most one transition
// request per gesture. Every request passes through one gate that applies the
// cooldown window; the sequencer applies the in-flight and range checks
type Router struct {
	seq    Requester
	hit    HitTester
	clock  engine.TimeProvider
	cfg    RouterConfig
	logger *zap.Logger

	lastAccepted time.Time
	hasAccepted  bool

	touch gesture
}

// NewRouter creates a router; hit may be nil when no inner regions exist
func NewRouter(seq Requester, hit HitTester, clock engine.TimeProvider, cfg RouterConfig, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = engine.NewMonotonicTimeProvider()
	}
	return &Router{
		seq:    seq,
		hit:    hit,
		clock:  clock,
		cfg:    cfg,
		logger: logger,
	}
}

// Handle dispatches a normalized event; key intents other than navigation are ignored
func (r *Router) Handle(in Input) Outcome {
	switch ev := in.(type) {
	case WheelEvent:
		return r.HandleWheel(ev)
	case TouchEvent:
		return r.HandleTouch(ev)
	case KeyEvent:
		return r.HandleKey(ev)
	default:
		return OutcomeIgnored
	}
}

// HandleWheel applies cooldown, then inner-region pass-through, then requests active±1
func (r *Router) HandleWheel(ev WheelEvent) Outcome {
	dir := sign(ev.DeltaY)
	if dir == 0 {
		return OutcomeIgnored
	}

	now := r.clock.Now()
	if r.inCooldown(now) {
		return OutcomeSuppressed
	}

	if t := r.targetAt(ev.X, ev.Y); t.Kind == TargetScrollable && canScroll(t.Region, dir) {
		t.Region.ScrollBy(dir)
		return OutcomePassThrough
	}

	return r.gate(now, r.seq.State().ActiveSection+dir, "wheel")
}

// HandleKey routes navigation intents through the same gate as wheel input
func (r *Router) HandleKey(ev KeyEvent) Outcome {
	var dir int
	switch ev.Intent {
	case IntentNextSection:
		dir = 1
	case IntentPrevSection:
		dir = -1
	default:
		return OutcomeIgnored
	}

	now := r.clock.Now()
	if r.inCooldown(now) {
		return OutcomeSuppressed
	}

	target := clamp(r.seq.State().ActiveSection+dir, 0, r.seq.Total()-1)
	return r.gate(now, target, "key")
}

// HandleTouch tracks a drag gesture and classifies it as a swipe
func (r *Router) HandleTouch(ev TouchEvent) Outcome {
	if ev.Phase == TouchEnd {
		r.touch = gesture{}
		return OutcomeIgnored
	}
	if len(ev.Touches) == 0 {
		return OutcomeIgnored
	}

	p := ev.Touches[0]
	now := r.clock.Now()

	if ev.Phase == TouchStart {
		t := r.targetAt(p.X, p.Y)
		r.touch = gesture{
			active:  true,
			ignored: t.Kind == TargetControl,
			originY: p.Y,
			start:   now,
		}
		if t.Kind == TargetScrollable {
			r.touch.region = t.Region
		}
		if r.touch.ignored {
			return OutcomeIgnored
		}
		return OutcomeTracking
	}

	// TouchMove
	g := &r.touch
	if !g.active || g.ignored || g.fired {
		return OutcomeIgnored
	}

	// Finger moving up (origin below current) advances, like a page swipe
	delta := g.originY - p.Y
	if delta == 0 {
		return OutcomeTracking
	}
	dir := sign(delta)

	if canScroll(g.region, dir) {
		g.region.ScrollBy(delta)
		g.originY, g.start = p.Y, now
		return OutcomePassThrough
	}

	if now.Sub(g.start) > r.cfg.SwipeMaxDuration {
		g.originY, g.start = p.Y, now
		return OutcomeTracking
	}
	if abs(delta) < r.cfg.SwipeMinRows {
		return OutcomeTracking
	}

	g.fired = true
	if r.inCooldown(now) {
		return OutcomeSuppressed
	}
	return r.gate(now, r.seq.State().ActiveSection+dir, "swipe")
}

// Jump requests an absolute section through the cooldown gate, used by controls
func (r *Router) Jump(target int, source string) Outcome {
	now := r.clock.Now()
	if r.inCooldown(now) {
		return OutcomeSuppressed
	}
	return r.gate(now, target, source)
}

// gate issues the request and resets the cooldown on acceptance only
func (r *Router) gate(now time.Time, target int, source string) Outcome {
	if !r.seq.RequestTransition(target) {
		return OutcomeRejected
	}
	r.lastAccepted = now
	r.hasAccepted = true
	r.logger.Debug("input requested transition", zap.String("source", source), zap.Int("target", target))
	return OutcomeAccepted
}

func (r *Router) inCooldown(now time.Time) bool {
	return r.hasAccepted && now.Sub(r.lastAccepted) < r.cfg.Cooldown
}

func (r *Router) targetAt(x, y int) Target {
	if r.hit == nil {
		return Target{}
	}
	return r.hit.TargetAt(x, y)
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
