package engine

import (
	"sync"
	"time"

	"github.com/lixenwraith/heartscroll/constants"
)

// MockTimeProvider is a hand-cranked clock for driving transitions in tests
// Time only moves through Advance and Step; Step moves in whole animation frames
type MockTimeProvider struct {
	mu     sync.RWMutex
	origin time.Time
	offset time.Duration
	frame  time.Duration
	frames int
}

// NewMockTimeProvider starts the clock at origin with the default frame interval
func NewMockTimeProvider(origin time.Time) *MockTimeProvider {
	return &MockTimeProvider{
		origin: origin,
		frame:  constants.FrameUpdateInterval,
	}
}

// Now implements TimeProvider
func (m *MockTimeProvider) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.origin.Add(m.offset)
}

// Advance moves the clock forward by d without counting a frame
func (m *MockTimeProvider) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offset += d
}

// Step moves the clock forward by n frame intervals and returns the new time
func (m *MockTimeProvider) Step(n int) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n > 0 {
		m.offset += time.Duration(n) * m.frame
		m.frames += n
	}
	return m.origin.Add(m.offset)
}

// SetFrameInterval changes the duration of one Step frame
func (m *MockTimeProvider) SetFrameInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frame = d
}

// Elapsed returns the total time moved since the origin
func (m *MockTimeProvider) Elapsed() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.offset
}

// Frames returns how many frames Step has counted
func (m *MockTimeProvider) Frames() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.frames
}
