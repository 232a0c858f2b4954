package engine

import (
	"math"
	"sync"

	"github.com/lixenwraith/heartscroll/constants"
)

// Tilt is the cosmetic pointer/orientation signal, each axis in [-1, 1]
type Tilt struct {
	X float64
	Y float64
}

// TiltSource is the read-only signal injected into visual parameter computation
type TiltSource interface {
	Tilt() Tilt
}

// ZeroTilt is a TiltSource that never moves
type ZeroTilt struct{}

// Tilt implements TiltSource
func (ZeroTilt) Tilt() Tilt { return Tilt{} }

// SmoothedTilt combines pointer position and optional orientation readings
// into a smoothed tilt. Samples may arrive from any goroutine; Step runs once
// per frame on the UI goroutine
type SmoothedTilt struct {
	mu sync.Mutex

	pointerX, pointerY float64
	hasPointer         bool

	// Orientation readings in degrees, nil when the device has no sensor
	beta, gamma *float64

	current Tilt
}

// NewSmoothedTilt creates a tilt source at rest
func NewSmoothedTilt() *SmoothedTilt {
	return &SmoothedTilt{}
}

// UpdatePointer records a pointer sample normalized to [-1, 1] per axis
func (s *SmoothedTilt) UpdatePointer(nx, ny float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pointerX = clampUnit(nx)
	s.pointerY = clampUnit(ny)
	s.hasPointer = true
}

// UpdateOrientation records sensor readings in degrees; nil clears a reading
func (s *SmoothedTilt) UpdateOrientation(beta, gamma *float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beta = copyFloat(beta)
	s.gamma = copyFloat(gamma)
}

// Target returns the unsmoothed combination of the latest samples
func (s *SmoothedTilt) Target() Tilt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.targetLocked()
}

// Step moves the smoothed value one frame toward the target
func (s *SmoothedTilt) Step() Tilt {
	s.mu.Lock()
	defer s.mu.Unlock()
	target := s.targetLocked()
	s.current.X = lerp(s.current.X, target.X, constants.TiltSmoothing)
	s.current.Y = lerp(s.current.Y, target.Y, constants.TiltSmoothing)
	return s.current
}

// Tilt implements TiltSource
func (s *SmoothedTilt) Tilt() Tilt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *SmoothedTilt) targetLocked() Tilt {
	var t Tilt
	if s.hasPointer {
		t.X += s.pointerX * constants.TiltPointerWeight
		t.Y += s.pointerY * constants.TiltPointerWeight
	}
	if s.gamma != nil {
		t.X += clampUnit(*s.gamma/constants.TiltOrientationRangeDeg) * constants.TiltOrientationWeight
	}
	if s.beta != nil {
		t.Y += clampUnit(*s.beta/constants.TiltOrientationRangeDeg) * constants.TiltOrientationWeight
	}
	t.X = clampUnit(t.X)
	t.Y = clampUnit(t.Y)
	return t
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
