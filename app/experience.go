package app

import (
	"context"
	"errors"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/lixenwraith/heartscroll/constants"
	"github.com/lixenwraith/heartscroll/content"
	"github.com/lixenwraith/heartscroll/core"
	"github.com/lixenwraith/heartscroll/engine"
	"github.com/lixenwraith/heartscroll/events"
	"github.com/lixenwraith/heartscroll/input"
	"github.com/lixenwraith/heartscroll/render"
	"github.com/lixenwraith/heartscroll/status"
)

// ContentSource is the read side of the content service
type ContentSource interface {
	Snapshot() *content.Snapshot
}

// Cue is the transition sound with its mute switch
type Cue interface {
	engine.CuePlayer
	Toggle() bool
	Muted() bool
}

// Options configures an Experience; only Screen is required
type Options struct {
	Screen        tcell.Screen
	ColorMode     render.ColorMode
	SectionIDs    []string
	Content       ContentSource
	Cue           Cue
	Broadcaster   *events.Broadcaster
	Queue         *events.EventQueue
	Clock         engine.TimeProvider
	Input         input.RouterConfig
	Transition    time.Duration
	FrameInterval time.Duration
	Metrics       *status.Registry
	Logger        *zap.Logger
}

// Experience is the single-goroutine loop that owns the sequencer
// Input, animation frames, queued app events and drawing all run on the
// goroutine that calls Run; other goroutines talk to it through the queue
type Experience struct {
	screen     tcell.Screen
	ids        []string
	seq        *engine.Sequencer
	router     *input.Router
	translator *input.Translator
	tilt       *engine.SmoothedTilt
	renderer   *render.Renderer
	background *render.HeartField

	broadcaster *events.Broadcaster
	queue       *events.EventQueue
	dispatch    *events.Router[*Experience]
	subs        []*events.Subscription

	content ContentSource
	cue     Cue
	clock   engine.TimeProvider
	metrics *status.Registry
	logger  *zap.Logger

	frameInterval time.Duration
	frame         int64
	status        string
	statusUntil   time.Time
	closed        bool
}

// New wires the sequencer, input router, renderer and background together
func New(opts Options) (*Experience, error) {
	if opts.Screen == nil {
		return nil, errors.New("app: screen is required")
	}
	if opts.SectionIDs == nil {
		opts.SectionIDs = constants.SectionIDs
	}
	if len(opts.SectionIDs) == 0 {
		return nil, errors.New("app: no sections")
	}
	if opts.Broadcaster == nil {
		opts.Broadcaster = events.NewBroadcaster(opts.Logger)
	}
	if opts.Queue == nil {
		opts.Queue = events.NewEventQueue()
	}
	if opts.Clock == nil {
		opts.Clock = engine.NewMonotonicTimeProvider()
	}
	if opts.Input == (input.RouterConfig{}) {
		opts.Input = input.DefaultRouterConfig()
	}
	if opts.Transition <= 0 {
		opts.Transition = constants.TransitionDuration
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = constants.FrameUpdateInterval
	}
	if opts.Metrics == nil {
		opts.Metrics = status.NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	e := &Experience{
		screen:        opts.Screen,
		ids:           opts.SectionIDs,
		broadcaster:   opts.Broadcaster,
		queue:         opts.Queue,
		content:       opts.Content,
		cue:           opts.Cue,
		clock:         opts.Clock,
		metrics:       opts.Metrics,
		logger:        opts.Logger,
		frameInterval: opts.FrameInterval,
	}

	seqOpts := []engine.SequencerOption{
		engine.WithClock(opts.Clock),
		engine.WithDuration(opts.Transition),
		engine.WithEmitter(opts.Broadcaster),
		engine.WithLogger(opts.Logger.Named("sequencer")),
	}
	if opts.Cue != nil {
		seqOpts = append(seqOpts, engine.WithCue(opts.Cue))
	}
	e.seq = engine.NewSequencer(len(e.ids), seqOpts...)

	e.background = render.NewHeartField(len(e.ids))
	e.renderer = render.NewRenderer(opts.Screen, e.ids, opts.ColorMode, e.background, constants.SectionLetter)
	e.tilt = engine.NewSmoothedTilt()

	w, h := opts.Screen.Size()
	e.translator = input.NewTranslator(input.DefaultKeyTable(), e.tilt, w, h)
	e.router = input.NewRouter(e.seq, e.renderer, opts.Clock, opts.Input, opts.Logger.Named("input"))

	e.dispatch = events.NewRouter[*Experience](opts.Queue).
		On((*Experience).onContent, events.EventContentLoaded, events.EventContentFailed, events.EventContentReloaded).
		On((*Experience).onAudioFailed, events.EventAudioFailed).
		On((*Experience).onSectionChange, events.EventSectionChange)

	e.subs = append(e.subs,
		opts.Broadcaster.Subscribe(e.background),
		opts.Broadcaster.Subscribe(events.ListenerFunc(e.onCommit)),
	)
	return e, nil
}

// Sequencer exposes the state machine for inspection
func (e *Experience) Sequencer() *engine.Sequencer { return e.seq }

// Renderer exposes the view layer for inspection
func (e *Experience) Renderer() *render.Renderer { return e.renderer }

// Metrics exposes the session counters
func (e *Experience) Metrics() *status.Registry { return e.metrics }

// Background exposes the heart field listener
func (e *Experience) Background() *render.HeartField { return e.background }

// Status returns the transient status message, empty once it lapses
func (e *Experience) Status() string {
	if e.status != "" && !e.clock.Now().Before(e.statusUntil) {
		e.status = ""
	}
	return e.status
}

// Run pumps terminal events and frame ticks until ctx is cancelled or the
// quit key is pressed, then tears the experience down
func (e *Experience) Run(ctx context.Context) error {
	evCh := make(chan tcell.Event, constants.EventChannelSize)
	quit := make(chan struct{})
	pumpDone := make(chan struct{})

	core.Go(func() {
		defer close(pumpDone)
		e.screen.ChannelEvents(evCh, quit)
	})
	defer func() {
		close(quit)
		<-pumpDone
		e.Close()
	}()

	ticker := time.NewTicker(e.frameInterval)
	defer ticker.Stop()

	e.Step()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-evCh:
			if !ok {
				return nil
			}
			if !e.HandleEvent(ev) {
				e.logger.Info("quit requested")
				return nil
			}
		case <-ticker.C:
			e.Step()
		}
	}
}

// Step runs one animation frame: drain app events, advance tilt and
// sequencer, draw
func (e *Experience) Step() {
	e.frame++
	if e.dispatch.DispatchAll(e) > 0 {
		e.metrics.Gauge("events.stale").Set(float64(e.queue.Stale()))
	}

	tilt := e.tilt.Step()
	e.seq.Frame()
	st := e.seq.State()

	var snap *content.Snapshot
	if e.content != nil {
		snap = e.content.Snapshot()
	}

	e.renderer.Draw(render.Frame{
		State:   st,
		Params:  engine.SectionParams(len(e.ids), st, tilt),
		Content: snap,
		Tilt:    tilt,
		Muted:   e.cue != nil && e.cue.Muted(),
		Status:  e.Status(),
	})
}

// HandleEvent routes one terminal event; returns false when the user quits
func (e *Experience) HandleEvent(ev tcell.Event) bool {
	outcome := input.OutcomeIgnored
	switch in := e.translator.Translate(ev).(type) {
	case nil:
	case input.ResizeEvent:
		e.screen.Sync()
	case input.KeyEvent:
		switch in.Intent {
		case input.IntentQuit:
			return false
		case input.IntentToggleMute:
			e.toggleMute()
		case input.IntentActivate:
			outcome = e.activate()
		default:
			outcome = e.router.HandleKey(in)
		}
	case input.TouchEvent:
		// Hit test before the router records the gesture so the click
		// resolves against the layout the user saw
		var hit input.Target
		if in.Phase == input.TouchStart && len(in.Touches) > 0 {
			hit = e.renderer.TargetAt(in.Touches[0].X, in.Touches[0].Y)
		}
		outcome = e.router.HandleTouch(in)
		if hit.Kind == input.TargetControl && hit.Name == content.ActionReplay {
			outcome = e.replay()
		}
	default:
		outcome = e.router.Handle(in)
	}

	if outcome != input.OutcomeIgnored && outcome != input.OutcomeTracking {
		e.metrics.Counter("input." + outcome.String()).Add(1)
	}
	return true
}

// Close cancels any in-flight transition and detaches listeners; idempotent
func (e *Experience) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.seq.Close()
	for _, sub := range e.subs {
		sub.Unsubscribe()
	}
	e.subs = nil
}

// activate triggers the control of the active section, if any
func (e *Experience) activate() input.Outcome {
	st := e.seq.State()
	if st.IsTransitioning || e.content == nil {
		return input.OutcomeIgnored
	}
	ctrl := e.content.Snapshot().Entry(e.ids[st.ActiveSection]).Section.Control
	if ctrl == nil || ctrl.Action != content.ActionReplay {
		return input.OutcomeIgnored
	}
	return e.replay()
}

func (e *Experience) replay() input.Outcome {
	outcome := e.router.Jump(0, content.ActionReplay)
	e.logger.Debug("replay", zap.Stringer("outcome", outcome))
	return outcome
}

func (e *Experience) toggleMute() {
	if e.cue == nil {
		return
	}
	if e.cue.Toggle() {
		e.setStatus("sound off")
	} else {
		e.setStatus("sound on")
	}
}

func (e *Experience) setStatus(msg string) {
	e.status = msg
	e.statusUntil = e.clock.Now().Add(constants.StatusLinger)
}

// onCommit runs inside the committing frame, before it is drawn
func (e *Experience) onCommit(ev events.SectionChange) {
	// Re-entering the letter starts from its first line
	if ev.To >= 0 && ev.To < len(e.ids) && e.ids[ev.To] == constants.SectionLetter {
		e.renderer.Letter().Reset()
	}

	e.metrics.Counter("transitions.committed").Add(1)
	if ev.To >= 0 && ev.To < len(e.ids) {
		e.metrics.Label("section.active").Store(e.ids[ev.To])
	}

	e.queue.PushSectionChange(ev, e.frame, e.clock.Now())
}

func (e *Experience) onSectionChange(ev events.GameEvent) {
	change, ok := ev.Payload.(*events.SectionChange)
	if !ok {
		return
	}
	e.logger.Info("section changed",
		zap.Int("from", change.From),
		zap.Int("to", change.To),
		zap.Int64("frame", ev.Frame))
}

func (e *Experience) onContent(ev events.GameEvent) {
	payload, ok := ev.Payload.(*events.ContentPayload)
	if !ok {
		return
	}
	switch ev.Type {
	case events.EventContentLoaded:
		e.logger.Debug("content loaded", zap.String("section", payload.SectionID), zap.Int64("generation", payload.Generation))
	case events.EventContentFailed:
		e.logger.Warn("content failed", zap.String("section", payload.SectionID), zap.String("error", payload.Err))
		e.metrics.Counter("content.failed").Add(1)
		e.setStatus(payload.SectionID + " unavailable")
	case events.EventContentReloaded:
		e.logger.Info("content reloading", zap.Int64("generation", payload.Generation))
		e.setStatus("content reloaded")
	}
}

func (e *Experience) onAudioFailed(ev events.GameEvent) {
	reason := ""
	if payload, ok := ev.Payload.(*events.AudioFailedPayload); ok {
		reason = payload.Reason
	}
	e.metrics.Counter("audio.failed").Add(1)
	e.logger.Warn("audio unavailable", zap.String("reason", reason))
	e.setStatus("no sound")
}
