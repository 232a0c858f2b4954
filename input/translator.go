package input

import "github.com/gdamore/tcell/v2"

// PointerSink receives normalized pointer positions for the tilt signal
type PointerSink interface {
	UpdatePointer(nx, ny float64)
}

// Translator converts tcell events into normalized input
// Wheel buttons become WheelEvent, a held primary button becomes a touch
// gesture, and every mouse position feeds the pointer sink
type Translator struct {
	keys    *KeyTable
	pointer PointerSink

	width, height int
	dragging      bool
}

// NewTranslator creates a translator for a screen of the given size; pointer may be nil
func NewTranslator(keys *KeyTable, pointer PointerSink, width, height int) *Translator {
	if keys == nil {
		keys = DefaultKeyTable()
	}
	return &Translator{keys: keys, pointer: pointer, width: width, height: height}
}

// Translate returns the normalized event, or nil when ev carries nothing
func (t *Translator) Translate(ev tcell.Event) Input {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		intent := t.keys.Lookup(ev.Key(), ev.Rune())
		if intent == IntentNone {
			return nil
		}
		return KeyEvent{Intent: intent}

	case *tcell.EventResize:
		t.width, t.height = ev.Size()
		return ResizeEvent{Width: t.width, Height: t.height}

	case *tcell.EventMouse:
		return t.translateMouse(ev)
	}
	return nil
}

func (t *Translator) translateMouse(ev *tcell.EventMouse) Input {
	x, y := ev.Position()
	buttons := ev.Buttons()
	t.samplePointer(x, y)

	switch {
	case buttons&tcell.WheelUp != 0:
		return WheelEvent{DeltaY: -1, X: x, Y: y}
	case buttons&tcell.WheelDown != 0:
		return WheelEvent{DeltaY: 1, X: x, Y: y}
	}

	pressed := buttons&tcell.ButtonPrimary != 0
	point := []TouchPoint{{X: x, Y: y}}
	switch {
	case pressed && !t.dragging:
		t.dragging = true
		return TouchEvent{Phase: TouchStart, Touches: point}
	case pressed:
		return TouchEvent{Phase: TouchMove, Touches: point}
	case t.dragging:
		t.dragging = false
		return TouchEvent{Phase: TouchEnd}
	}
	return nil
}

func (t *Translator) samplePointer(x, y int) {
	if t.pointer == nil || t.width < 2 || t.height < 2 {
		return
	}
	nx := float64(x)/float64(t.width-1)*2 - 1
	ny := float64(y)/float64(t.height-1)*2 - 1
	t.pointer.UpdatePointer(nx, ny)
}
