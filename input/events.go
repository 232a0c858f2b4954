package input

// Input is a normalized input event; one of WheelEvent, TouchEvent, KeyEvent, ResizeEvent
type Input interface {
	isInput()
}

// WheelEvent is one wheel notch; DeltaY > 0 scrolls toward later sections
type WheelEvent struct {
	DeltaY int
	X, Y   int
}

// TouchPhase is the lifecycle stage of a touch gesture
type TouchPhase uint8

const (
	TouchStart TouchPhase = iota
	TouchMove
	TouchEnd
)

// TouchPoint is one contact position in cells
type TouchPoint struct {
	X, Y int
}

// TouchEvent carries the active contacts; only the first is used
type TouchEvent struct {
	Phase   TouchPhase
	Touches []TouchPoint
}

// KeyEvent carries a resolved key intent
type KeyEvent struct {
	Intent IntentType
}

// ResizeEvent reports new screen dimensions
type ResizeEvent struct {
	Width, Height int
}

func (WheelEvent) isInput()  {}
func (TouchEvent) isInput()  {}
func (KeyEvent) isInput()    {}
func (ResizeEvent) isInput() {}
