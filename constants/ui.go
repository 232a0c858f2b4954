package constants

import "time"

// Visual Parameter Constants
// Depth values are in simulated pixels along the view axis, negative = away
const (
	// ParkedDepth is where sections ahead of the active one wait
	ParkedDepth = -1000.0

	// ParkedScale is the apparent size of a parked section
	ParkedScale = 0.5

	// ParkedBlur is the blur radius of a parked section
	ParkedBlur = 10.0

	// ParkedBrightness is the brightness of a parked section
	ParkedBrightness = 0.5

	// ActiveExitScale is how much the active section grows while leaving
	ActiveExitScale = 0.5

	// ActiveExitDepth is how far toward the viewer the active section travels while leaving
	ActiveExitDepth = 400.0

	// ActiveExitBlur is the blur radius reached by the active section at the end of a transition
	ActiveExitBlur = 8.0

	// ActiveExitDim is the brightness lost by the active section while leaving
	ActiveExitDim = 0.3
)

// Tilt Constants
const (
	// TiltRotationDeg is the rotation applied at full tilt
	TiltRotationDeg = 4.0

	// TiltPointerWeight scales the normalized pointer position
	TiltPointerWeight = 0.6

	// TiltOrientationWeight scales normalized orientation readings
	TiltOrientationWeight = 0.4

	// TiltOrientationRangeDeg maps sensor degrees onto [-1, 1]
	TiltOrientationRangeDeg = 45.0

	// TiltSmoothing is the per-frame lerp factor toward the raw tilt target
	TiltSmoothing = 0.1
)

// Layout Constants
const (
	// IndicatorWidth is the width reserved for the section indicator column
	IndicatorWidth = 3

	// MinBoxWidth and MinBoxHeight bound the smallest drawn section box
	MinBoxWidth  = 12
	MinBoxHeight = 5

	// BlurDitherThreshold is the blur radius above which text is drawn as shade glyphs
	BlurDitherThreshold = 4.0

	// RotationSkewCols is the horizontal offset in columns per degree of RotateY
	RotationSkewCols = 0.75

	// RotationSkewRows is the vertical offset in rows per degree of RotateX
	RotationSkewRows = 0.25

	// BoxMarginCols and BoxMarginRows pad a unit-scale section box from the content area edge
	BoxMarginCols = 4
	BoxMarginRows = 1

	// MinVisibleOpacity is the opacity below which a section is not drawn
	MinVisibleOpacity = 0.02

	// HintText is shown at the bottom of the screen
	HintText = "↑/↓ wheel drag · m mute · q quit"

	// LoadingText is shown while any section content is pending
	LoadingText = "loading ♥"
)

// Background Constants
const (
	// HeartFieldDensity is the base number of hearts per 100 cells
	HeartFieldDensity = 1.2

	// HeartFieldParallaxCols is how far the field shifts at full tilt
	HeartFieldParallaxCols = 2.0

	// HeartFieldHueStepDeg rotates the heart hue for each later section
	HeartFieldHueStepDeg = 12.0

	// HeartFieldDim is how far hearts blend toward the background
	HeartFieldDim = 0.65
)

// Status Line Constants
const (
	// StatusLinger is how long a transient status message stays on the hint line
	StatusLinger = 3 * time.Second
)
