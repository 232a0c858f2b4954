package constants

import "time"

// Loop Timing Constants
const (
	// FrameUpdateInterval is the rendering frame rate interval (~60 FPS)
	FrameUpdateInterval = 16 * time.Millisecond

	// EventChannelSize is the buffer between the terminal event pump and the loop
	EventChannelSize = 256
)

// Transition Timing Constants
const (
	// TransitionDurationMs is the total length of one section transition
	TransitionDurationMs = 1000

	// TransitionDuration is the total length of one section transition
	TransitionDuration = TransitionDurationMs * time.Millisecond

	// WheelCooldownMs is the minimum gap between two accepted wheel-driven requests
	WheelCooldownMs = 800

	// WheelCooldown is the minimum gap between two accepted wheel-driven requests
	WheelCooldown = WheelCooldownMs * time.Millisecond
)

// Swipe Classification Constants
// A drag counts as a swipe when it covers SwipeMinRows within SwipeMaxDuration
// Slower drags re-anchor at the current row so they never accumulate into a swipe
const (
	SwipeMinRows     = 3
	SwipeMaxDuration = 600 * time.Millisecond
)

// Event Queue Constants
const (
	// EventQueueSize is the ring capacity of the app event queue, power of two
	EventQueueSize = 256

	// EventBufferMask wraps ring indices
	EventBufferMask = EventQueueSize - 1
)
