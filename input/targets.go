package input

// TargetKind classifies what lies under a screen position
type TargetKind uint8

const (
	TargetNone TargetKind = iota
	// TargetScrollable is an internally scrollable region; Region is set
	TargetScrollable
	// TargetControl is an interactive control; gestures starting here are ignored
	TargetControl
)

// Target is the hit-test result for a screen position
type Target struct {
	Kind   TargetKind
	Region ScrollRegion // Set for TargetScrollable
	Name   string       // Control or region name, for logging
}

// HitTester is provided by the view layer from its last layout
type HitTester interface {
	TargetAt(x, y int) Target
}

// ScrollRegion is content that scrolls inside a section
type ScrollRegion interface {
	AtTop() bool
	AtBottom() bool
	// ScrollBy moves the viewport by rows, positive = toward the end
	ScrollBy(rows int)
}

// canScroll reports whether region can move further in direction dir
func canScroll(region ScrollRegion, dir int) bool {
	if region == nil || dir == 0 {
		return false
	}
	if dir > 0 {
		return !region.AtBottom()
	}
	return !region.AtTop()
}
