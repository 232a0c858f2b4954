package engine

import "time"

// Animator produces eased progress for exactly one in-flight transition
// Frame is the per-frame callback; it is cooperative and must be called from
// the UI goroutine only
type Animator struct {
	duration time.Duration
	start    time.Time
	running  bool
	last     float64
}

// NewAnimator creates an idle animator with the given total duration
func NewAnimator(duration time.Duration) *Animator {
	return &Animator{duration: duration}
}

// Duration returns the configured transition length
func (a *Animator) Duration() time.Duration {
	return a.duration
}

// Start begins a new transition at now, discarding any previous one
func (a *Animator) Start(now time.Time) {
	a.start = now
	a.running = true
	a.last = 0
}

// Running reports whether a transition is in flight
func (a *Animator) Running() bool {
	return a.running
}

// Stop cancels the in-flight transition without a completion
func (a *Animator) Stop() {
	a.running = false
	a.last = 0
}

// Frame advances to now and returns the eased progress
// completed is true exactly once per Start, on the frame where raw progress reaches 1;
// no further frames are produced until the next Start
func (a *Animator) Frame(now time.Time) (progress float64, completed bool) {
	if !a.running {
		return 0, false
	}

	raw := RawProgress(now.Sub(a.start), a.duration)
	progress = EaseInOut(raw)

	// Clock readings can step backwards under a mocked or adjusted clock
	if progress < a.last {
		progress = a.last
	}
	a.last = progress

	if raw >= 1 {
		a.running = false
		return 1, true
	}
	return progress, false
}
