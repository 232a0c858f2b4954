package engine

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/heartscroll/constants"
	"github.com/lixenwraith/heartscroll/events"
)

// CuePlayer is the best-effort audio primitive fired when a transition is accepted
// Implementations must not block; returned errors are swallowed by the caller
type CuePlayer interface {
	PlayTransitionCue() error
}

// Emitter receives the committed section change
type Emitter interface {
	Emit(ev events.SectionChange)
}

// SequencerState is a value snapshot of the sequencer
type SequencerState struct {
	ActiveSection      int
	IsTransitioning    bool
	TransitionProgress float64 // Valid only while IsTransitioning, 0 otherwise; below 1
	Target             int     // Equals ActiveSection while idle
	Direction          int     // -1, 0, +1; visual asymmetry only
}

// Idle reports whether no transition is in flight
func (s SequencerState) Idle() bool {
	return !s.IsTransitioning
}

// String renders the state machine node, e.g. Idle(0) or Transitioning(0→2, 0.50)
func (s SequencerState) String() string {
	if !s.IsTransitioning {
		return fmt.Sprintf("Idle(%d)", s.ActiveSection)
	}
	return fmt.Sprintf("Transitioning(%d→%d, %.2f)", s.ActiveSection, s.Target, s.TransitionProgress)
}

// FrameResult reports what one animation frame did
type FrameResult struct {
	Progress  float64              // Eased progress fed into state this frame, 1 on completion
	Completed bool                 // True on the single frame that committed the target
	Change    events.SectionChange // Valid when Completed
}

// Sequencer owns the single source of truth for the visible section
//
// States:
//   - Idle(active)
//   - Transitioning(active, target, progress)
//
// Idle → Transitioning on an accepted RequestTransition
// Transitioning → Idle when the animator completes; active commits to target
// before the change is broadcast
//
// Single-writer: only RequestTransition and Frame mutate state, both from the UI goroutine
type Sequencer struct {
	total    int
	state    SequencerState
	animator *Animator
	clock    TimeProvider
	cue      CuePlayer
	emitter  Emitter
	logger   *zap.Logger

	startedAt time.Time
	closed    bool
}

// SequencerOption configures a Sequencer
type SequencerOption func(*Sequencer)

// WithClock sets the time source, defaults to the monotonic clock
func WithClock(clock TimeProvider) SequencerOption {
	return func(s *Sequencer) { s.clock = clock }
}

// WithDuration sets the transition length, defaults to constants.TransitionDuration
func WithDuration(d time.Duration) SequencerOption {
	return func(s *Sequencer) { s.animator = NewAnimator(d) }
}

// WithCue sets the audio cue fired on acceptance
func WithCue(cue CuePlayer) SequencerOption {
	return func(s *Sequencer) { s.cue = cue }
}

// WithEmitter sets the broadcaster notified on commit
func WithEmitter(e Emitter) SequencerOption {
	return func(s *Sequencer) { s.emitter = e }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) SequencerOption {
	return func(s *Sequencer) { s.logger = l }
}

// NewSequencer creates a sequencer in Idle(0) over total sections
func NewSequencer(total int, opts ...SequencerOption) *Sequencer {
	if total < 1 {
		panic(fmt.Sprintf("sequencer: total sections must be positive, got %d", total))
	}

	s := &Sequencer{
		total:    total,
		animator: NewAnimator(constants.TransitionDuration),
		clock:    NewMonotonicTimeProvider(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Total returns the number of sections
func (s *Sequencer) Total() int {
	return s.total
}

// State returns a snapshot of the current state
func (s *Sequencer) State() SequencerState {
	st := s.state
	if !st.IsTransitioning {
		st.Target = st.ActiveSection
	}
	return st
}

// RequestTransition asks for target to become active
// Returns false, leaving state unchanged, when target is out of range, equals the
// active section, a transition is already in flight, or the sequencer is closed
func (s *Sequencer) RequestTransition(target int) bool {
	if s.closed || s.state.IsTransitioning {
		return false
	}
	if target < 0 || target >= s.total || target == s.state.ActiveSection {
		return false
	}

	now := s.clock.Now()
	s.state.IsTransitioning = true
	s.state.TransitionProgress = 0
	s.state.Target = target
	s.state.Direction = 1
	if target < s.state.ActiveSection {
		s.state.Direction = -1
	}
	s.startedAt = now
	s.animator.Start(now)

	s.logger.Debug("transition accepted",
		zap.Int("from", s.state.ActiveSection),
		zap.Int("to", target))

	if s.cue != nil {
		if err := s.cue.PlayTransitionCue(); err != nil {
			s.logger.Debug("transition cue failed", zap.Error(err))
		}
	}
	return true
}

// Frame is the per-frame animation callback
// While transitioning it feeds eased progress into state; on the completing
// frame it commits the target, resets to Idle, then emits the change
//
// State never holds progress 1: the reset to Idle happens in the same frame,
// so the final 1 is reported only through FrameResult.Progress and the
// emitted SectionChange
func (s *Sequencer) Frame() FrameResult {
	if !s.state.IsTransitioning {
		return FrameResult{}
	}

	progress, completed := s.animator.Frame(s.clock.Now())
	if !completed {
		s.state.TransitionProgress = progress
		return FrameResult{Progress: progress}
	}

	change := events.SectionChange{
		From:     s.state.ActiveSection,
		To:       s.state.Target,
		Progress: progress,
	}

	s.state = SequencerState{ActiveSection: change.To, Target: change.To}

	s.logger.Debug("transition committed",
		zap.Int("from", change.From),
		zap.Int("to", change.To),
		zap.Duration("took", s.clock.Now().Sub(s.startedAt)))

	if s.emitter != nil {
		s.emitter.Emit(change)
	}
	return FrameResult{Progress: progress, Completed: true, Change: change}
}

// Close tears the sequencer down: an in-flight animation is cancelled without
// commit or broadcast, and every later request is a no-op
func (s *Sequencer) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if s.state.IsTransitioning {
		s.animator.Stop()
		s.state.IsTransitioning = false
		s.state.TransitionProgress = 0
		s.state.Target = s.state.ActiveSection
		s.state.Direction = 0
	}
}

// Closed reports whether Close has been called
func (s *Sequencer) Closed() bool {
	return s.closed
}
