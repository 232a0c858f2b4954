package engine

import (
	"fmt"

	"github.com/lixenwraith/heartscroll/constants"
)

// SectionPosition classifies a section relative to the sequencer state
type SectionPosition int

const (
	// PositionActive is the displayed section; it scales and rotates in place
	PositionActive SectionPosition = iota
	// PositionIncoming is the transition target rising from simulated depth
	PositionIncoming
	// PositionOutgoing is any section behind the active one; hidden and out of layout
	PositionOutgoing
	// PositionParked is any section ahead of the active one that is not targeted
	PositionParked
)

var positionNames = [...]string{"active", "incoming", "outgoing", "parked"}

// String implements fmt.Stringer
func (p SectionPosition) String() string {
	if int(p) < len(positionNames) {
		return positionNames[p]
	}
	return "unknown"
}

// ClassifySection maps a section index to its position for the given state
func ClassifySection(index int, st SequencerState) SectionPosition {
	switch {
	case index == st.ActiveSection:
		return PositionActive
	case st.IsTransitioning && index == st.Target:
		return PositionIncoming
	case index < st.ActiveSection:
		return PositionOutgoing
	default:
		return PositionParked
	}
}

// RenderParams are the per-section visual parameters consumed by the view layer
type RenderParams struct {
	Scale      float64
	Depth      float64 // Simulated translateZ, negative = away from viewer
	Blur       float64
	Brightness float64
	RotateX    float64 // Degrees
	RotateY    float64 // Degrees
	Opacity    float64
	Visible    bool // False removes the section from layout
}

// Transform renders the geometric parameters in CSS transform notation
func (p RenderParams) Transform() string {
	return fmt.Sprintf("translateZ(%.1fpx) scale(%.3f) rotateX(%.2fdeg) rotateY(%.2fdeg)",
		p.Depth, p.Scale, p.RotateX, p.RotateY)
}

// Filter renders the tonal parameters in CSS filter notation
func (p RenderParams) Filter() string {
	return fmt.Sprintf("blur(%.1fpx) brightness(%.2f)", p.Blur, p.Brightness)
}

// ComputeVisualParams is the single pure mapping from position, eased progress
// and ambient tilt to render parameters
func ComputeVisualParams(pos SectionPosition, progress float64, tilt Tilt) RenderParams {
	progress = clamp01(progress)
	rotX := -tilt.Y * constants.TiltRotationDeg
	rotY := tilt.X * constants.TiltRotationDeg

	switch pos {
	case PositionActive:
		return RenderParams{
			Scale:      1 + constants.ActiveExitScale*progress,
			Depth:      constants.ActiveExitDepth * progress,
			Blur:       constants.ActiveExitBlur * progress,
			Brightness: 1 - constants.ActiveExitDim*progress,
			RotateX:    rotX,
			RotateY:    rotY,
			Opacity:    1 - progress,
			Visible:    true,
		}
	case PositionIncoming:
		return RenderParams{
			Scale:      lerp(constants.ParkedScale, 1, progress),
			Depth:      lerp(constants.ParkedDepth, 0, progress),
			Blur:       lerp(constants.ParkedBlur, 0, progress),
			Brightness: lerp(constants.ParkedBrightness, 1, progress),
			RotateX:    rotX * progress,
			RotateY:    rotY * progress,
			Opacity:    progress,
			Visible:    true,
		}
	case PositionParked:
		return RenderParams{
			Scale:      constants.ParkedScale,
			Depth:      constants.ParkedDepth,
			Blur:       constants.ParkedBlur,
			Brightness: constants.ParkedBrightness,
			Opacity:    0,
			Visible:    true,
		}
	default:
		return RenderParams{Scale: 1, Brightness: 1}
	}
}

// SectionParams computes params for every section under the given state and tilt
func SectionParams(total int, st SequencerState, tilt Tilt) []RenderParams {
	out := make([]RenderParams, total)
	for i := range out {
		out[i] = ComputeVisualParams(ClassifySection(i, st), st.TransitionProgress, tilt)
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
