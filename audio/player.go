package audio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"

	"github.com/lixenwraith/heartscroll/constants"
	"github.com/lixenwraith/heartscroll/events"
)

// ErrAudioUnavailable is returned once the speaker failed to initialize
var ErrAudioUnavailable = errors.New("audio unavailable")

// Backend is the speaker surface the player drives
// The default backend is the global beep speaker
type Backend interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s ...beep.Streamer)
	Lock()
	Unlock()
	Close()
}

type speakerBackend struct{}

func (speakerBackend) Init(rate beep.SampleRate, bufferSize int) error {
	return speaker.Init(rate, bufferSize)
}
func (speakerBackend) Play(s ...beep.Streamer) { speaker.Play(s...) }
func (speakerBackend) Lock()                   { speaker.Lock() }
func (speakerBackend) Unlock()                 { speaker.Unlock() }
func (speakerBackend) Close()                  { speaker.Close() }

// Settings configures the player through Service.Init
type Settings struct {
	Muted  bool
	Volume float64 // Linear, [0, 1]
}

// CuePlayer plays the transition chime through a single long-lived mixer
// Speaker initialization is deferred to the first cue
type CuePlayer struct {
	mu      sync.Mutex
	backend Backend
	rate    beep.SampleRate
	mixer   *beep.Mixer
	volume  float64
	muted   bool
	queue   *events.EventQueue
	logger  *zap.Logger

	initialized bool
	initErr     error
	stopped     bool
}

// PlayerOption configures a CuePlayer
type PlayerOption func(*CuePlayer)

// WithBackend replaces the global speaker, used by tests
func WithBackend(b Backend) PlayerOption {
	return func(p *CuePlayer) { p.backend = b }
}

// WithQueue reports a failed speaker init as EventAudioFailed
func WithQueue(q *events.EventQueue) PlayerOption {
	return func(p *CuePlayer) { p.queue = q }
}

// WithLogger sets the player logger
func WithLogger(l *zap.Logger) PlayerOption {
	return func(p *CuePlayer) { p.logger = l }
}

// NewCuePlayer creates an idle player at the default volume
func NewCuePlayer(opts ...PlayerOption) *CuePlayer {
	p := &CuePlayer{
		backend: speakerBackend{},
		rate:    beep.SampleRate(constants.AudioSampleRate),
		mixer:   &beep.Mixer{},
		volume:  constants.AudioCueVolume,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *CuePlayer) Name() string           { return "audio" }
func (p *CuePlayer) Dependencies() []string { return nil }

// Init picks up Settings from args, other args are ignored
func (p *CuePlayer) Init(args ...any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, arg := range args {
		s, ok := arg.(Settings)
		if !ok {
			continue
		}
		if s.Volume < 0 || s.Volume > 1 {
			return fmt.Errorf("audio volume %.2f out of range [0, 1]", s.Volume)
		}
		p.muted = s.Muted
		p.volume = s.Volume
	}
	return nil
}

// Start is a no-op; the speaker opens on the first cue
func (p *CuePlayer) Start() error { return nil }

// Stop silences pending cues and closes the speaker
func (p *CuePlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return nil
	}
	p.stopped = true

	if p.initialized {
		p.backend.Lock()
		p.mixer.Clear()
		p.backend.Unlock()
		p.backend.Close()
		p.initialized = false
	}
	return nil
}

// PlayTransitionCue queues the chime and returns immediately
// Muted players return nil without touching the speaker
func (p *CuePlayer) PlayTransitionCue() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrAudioUnavailable
	}
	if p.muted {
		return nil
	}
	if err := p.ensureInitLocked(); err != nil {
		return err
	}

	cue := NewTransitionCue(p.rate, p.volume)
	p.backend.Lock()
	p.mixer.Add(cue)
	p.backend.Unlock()
	return nil
}

// Pending returns the number of cues still streaming
func (p *CuePlayer) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return 0
	}
	p.backend.Lock()
	defer p.backend.Unlock()
	return p.mixer.Len()
}

// Mute sets the muted state
func (p *CuePlayer) Mute(muted bool) {
	p.mu.Lock()
	p.muted = muted
	p.mu.Unlock()
}

// Toggle flips the muted state and returns the new value
func (p *CuePlayer) Toggle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = !p.muted
	return p.muted
}

// Muted reports the current muted state
func (p *CuePlayer) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}

// ensureInitLocked opens the speaker once; a failure is sticky
func (p *CuePlayer) ensureInitLocked() error {
	if p.initialized {
		return nil
	}
	if p.initErr != nil {
		return p.initErr
	}

	if err := p.backend.Init(p.rate, p.rate.N(constants.AudioBufferDuration)); err != nil {
		p.initErr = fmt.Errorf("%w: %v", ErrAudioUnavailable, err)
		p.logger.Warn("speaker init failed", zap.Error(err))
		if p.queue != nil {
			p.queue.PushAudioFailed(err.Error())
		}
		return p.initErr
	}

	p.backend.Play(p.mixer)
	p.initialized = true
	p.logger.Debug("speaker initialized", zap.Int("sample_rate", int(p.rate)))
	return nil
}
