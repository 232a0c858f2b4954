package constants

import "time"

// Audio Output
const (
	// AudioSampleRate is the speaker sample rate in Hz
	AudioSampleRate = 44100

	// AudioBufferDuration is the speaker buffer length
	AudioBufferDuration = 100 * time.Millisecond

	// AudioCueVolume is the default linear cue volume in [0, 1]
	AudioCueVolume = 0.5

	// CueFundamentalMix and CueOvertoneMix weight the two partials of the chime
	CueFundamentalMix = 0.7
	CueOvertoneMix    = 0.3
)

// Transition Cue Timing
// Two stacked sine partials shaped by a short attack and long release
const (
	CueDuration         = 350 * time.Millisecond
	CueAttack           = 8 * time.Millisecond
	CueRelease          = 280 * time.Millisecond
	CueFundamentalHz    = 659.25 // E5
	CueOvertoneHz       = 987.77 // B5
	CueOvertoneDuration = 200 * time.Millisecond
	CueOvertoneRelease  = 150 * time.Millisecond
)
