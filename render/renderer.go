package render

import (
	"math"
	"sort"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/lixenwraith/heartscroll/constants"
	"github.com/lixenwraith/heartscroll/content"
	"github.com/lixenwraith/heartscroll/engine"
	"github.com/lixenwraith/heartscroll/input"
)

// Frame is everything one draw needs; built by the loop once per tick
type Frame struct {
	State   engine.SequencerState
	Params  []engine.RenderParams // Indexed by section
	Content *content.Snapshot
	Tilt    engine.Tilt
	Muted   bool
	Status  string // Optional right-aligned status text
}

// Rect is a screen rectangle in cells
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether (x, y) lies inside r
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && y >= r.Y && x < r.X+r.W && y < r.Y+r.H
}

type hitRegion struct {
	rect   Rect
	target input.Target
}

// Renderer draws sections per their render parameters onto a tcell screen
// It also serves as the input hit tester for the layout it last drew
type Renderer struct {
	screen     tcell.Screen
	ids        []string
	mode       ColorMode
	background *HeartField
	letter     *Viewport
	letterID   string

	hits  []hitRegion
	boxes []Rect // Last drawn box per section, zero when hidden
}

// NewRenderer creates a renderer for sections ids in display order
// letterID names the section whose body scrolls internally; bg may be nil
func NewRenderer(screen tcell.Screen, ids []string, mode ColorMode, bg *HeartField, letterID string) *Renderer {
	return &Renderer{
		screen:     screen,
		ids:        ids,
		mode:       mode,
		background: bg,
		letter:     NewViewport(),
		letterID:   letterID,
		boxes:      make([]Rect, len(ids)),
	}
}

// Letter returns the scrollable viewport of the letter section
func (r *Renderer) Letter() *Viewport {
	return r.letter
}

// Box returns the last drawn box of section index, zero when hidden
func (r *Renderer) Box(index int) Rect {
	if index < 0 || index >= len(r.boxes) {
		return Rect{}
	}
	return r.boxes[index]
}

// TargetAt implements input.HitTester over the last drawn frame
func (r *Renderer) TargetAt(x, y int) input.Target {
	for i := len(r.hits) - 1; i >= 0; i-- {
		if r.hits[i].rect.Contains(x, y) {
			return r.hits[i].target
		}
	}
	return input.Target{}
}

// Draw renders one frame and shows it
func (r *Renderer) Draw(f Frame) {
	w, h := r.screen.Size()
	cv := canvas{screen: r.screen, w: w, h: h}
	r.hits = r.hits[:0]
	for i := range r.boxes {
		r.boxes[i] = Rect{}
	}

	active := r.palette(f.Content, f.State.ActiveSection)
	base := tcell.StyleDefault.Background(r.mode.Color(active.Background)).Foreground(r.mode.Color(active.Text))
	r.screen.Fill(' ', base)

	area := Rect{X: constants.IndicatorWidth, Y: 1, W: w - constants.IndicatorWidth, H: h - 2}
	if r.background != nil && area.W > 0 && area.H > 0 {
		r.background.Draw(cv, area.X, area.Y, area.W, area.H, active, r.mode, f.Tilt)
	}

	// Faint sections first so the more opaque one owns overlapping cells
	order := make([]int, 0, len(f.Params))
	for i, p := range f.Params {
		if p.Visible && p.Opacity >= constants.MinVisibleOpacity && i < len(r.ids) {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return f.Params[order[a]].Opacity < f.Params[order[b]].Opacity
	})

	for _, i := range order {
		interactive := i == f.State.ActiveSection && !f.State.IsTransitioning
		r.drawSection(cv, area, i, f.Params[i], f.Content.Entry(r.ids[i]), r.palette(f.Content, i), interactive)
	}

	r.drawIndicator(cv, h, f.State, active)
	if f.Content.Loading() {
		r.drawLoading(cv, w, active)
	}
	r.drawHint(cv, w, h, f, active)

	r.screen.Show()
}

func (r *Renderer) palette(snap *content.Snapshot, index int) Palette {
	if index < 0 || index >= len(r.ids) {
		return NewPalette(content.Theme{})
	}
	return NewPalette(snap.Entry(r.ids[index]).Section.Theme)
}

// boxFor maps scale and rotation onto a box inside area
func boxFor(area Rect, p engine.RenderParams) Rect {
	bw := int(math.Round(float64(area.W-2*constants.BoxMarginCols) * p.Scale))
	bh := int(math.Round(float64(area.H-2*constants.BoxMarginRows) * p.Scale))
	bw = clampInt(bw, constants.MinBoxWidth, area.W)
	bh = clampInt(bh, constants.MinBoxHeight, area.H)

	cx := area.X + area.W/2 + int(math.Round(p.RotateY*constants.RotationSkewCols))
	cy := area.Y + area.H/2 + int(math.Round(p.RotateX*constants.RotationSkewRows))
	return Rect{X: cx - bw/2, Y: cy - bh/2, W: bw, H: bh}
}

func (r *Renderer) drawSection(cv canvas, area Rect, index int, p engine.RenderParams, entry content.Entry, pal Palette, interactive bool) {
	box := boxFor(area, p)
	r.boxes[index] = box

	ink := r.mode.Color(pal.Ink(pal.Accent, p))
	textInk := r.mode.Color(pal.Ink(pal.Text, p))
	bg := r.mode.Color(pal.Background)
	frameStyle := tcell.StyleDefault.Foreground(ink).Background(bg)
	textStyle := tcell.StyleDefault.Foreground(textInk).Background(bg)

	cv.fill(box.X, box.Y, box.W, box.H, textStyle)
	drawBorder(cv, box, frameStyle)

	inner := Rect{X: box.X + 2, Y: box.Y + 1, W: box.W - 4, H: box.H - 2}
	if inner.W < 1 || inner.H < 1 {
		return
	}
	maxX := inner.X + inner.W
	row := inner.Y

	switch entry.Status {
	case content.StatusFailed:
		errStyle := tcell.StyleDefault.Foreground(r.mode.Color(pal.Ink(ErrorInk, p))).Background(bg)
		msg := "this part could not be loaded"
		cv.text(Center(msg, inner.X, inner.W), row+inner.H/2, maxX, msg, errStyle, p.Blur)
		return
	case content.StatusPending:
		if entry.Section.Title == "" {
			cv.text(Center("…", inner.X, inner.W), row+inner.H/2, maxX, "…", frameStyle, p.Blur)
			return
		}
	}

	sec := entry.Section
	cv.text(Center(sec.Title, inner.X, inner.W), row, maxX, sec.Title, frameStyle.Bold(true), p.Blur)
	row++
	if sec.Subtitle != "" {
		for _, line := range Wrap(sec.Subtitle, inner.W) {
			cv.text(Center(line, inner.X, inner.W), row, maxX, line, textStyle.Italic(true), p.Blur)
			row++
		}
	}
	row++

	bottom := inner.Y + inner.H
	if sec.Control != nil {
		bottom-- // Reserve the last row for the control
	}

	body := Wrap(sec.Body, inner.W)
	for _, img := range sec.Images {
		body = append(body, "", "[ "+img+" ]")
	}

	if r.ids[index] == r.letterID {
		r.letter.SetHeight(bottom - row)
		r.letter.SetLines(body)
		body = r.letter.Visible()
		if interactive && bottom > row {
			r.hits = append(r.hits, hitRegion{
				rect:   Rect{X: inner.X, Y: row, W: inner.W, H: bottom - row},
				target: input.Target{Kind: input.TargetScrollable, Region: r.letter, Name: r.letterID},
			})
		}
		if r.letter.Overflows() {
			r.drawScrollMarks(cv, inner, row, bottom, frameStyle)
		}
	}
	for _, line := range body {
		if row >= bottom {
			break
		}
		cv.text(inner.X, row, maxX, line, textStyle, p.Blur)
		row++
	}

	if sec.Control != nil {
		label := "[ " + sec.Control.Label + " ]"
		x := Center(label, inner.X, inner.W)
		end := cv.text(x, bottom, maxX, label, frameStyle.Reverse(interactive), p.Blur)
		if interactive {
			r.hits = append(r.hits, hitRegion{
				rect:   Rect{X: x, Y: bottom, W: end - x, H: 1},
				target: input.Target{Kind: input.TargetControl, Name: sec.Control.Action},
			})
		}
	}
}

func (r *Renderer) drawScrollMarks(cv canvas, inner Rect, top, bottom int, style tcell.Style) {
	x := inner.X + inner.W
	if !r.letter.AtTop() {
		cv.set(x, top, '▲', style)
	}
	if !r.letter.AtBottom() {
		cv.set(x, bottom-1, '▼', style)
	}
}

func drawBorder(cv canvas, b Rect, style tcell.Style) {
	if b.W < 2 || b.H < 2 {
		return
	}
	right, bottom := b.X+b.W-1, b.Y+b.H-1
	for x := b.X + 1; x < right; x++ {
		cv.set(x, b.Y, '─', style)
		cv.set(x, bottom, '─', style)
	}
	for y := b.Y + 1; y < bottom; y++ {
		cv.set(b.X, y, '│', style)
		cv.set(right, y, '│', style)
	}
	cv.set(b.X, b.Y, '╭', style)
	cv.set(right, b.Y, '╮', style)
	cv.set(b.X, bottom, '╰', style)
	cv.set(right, bottom, '╯', style)
}

// drawIndicator draws one dot per section down the left column
func (r *Renderer) drawIndicator(cv canvas, h int, st engine.SequencerState, pal Palette) {
	n := len(r.ids)
	top := h/2 - n
	dim := tcell.StyleDefault.Foreground(r.mode.Color(pal.Text.BlendLab(pal.Background, 0.6))).Background(r.mode.Color(pal.Background))
	lit := tcell.StyleDefault.Foreground(r.mode.Color(pal.Accent)).Background(r.mode.Color(pal.Background))
	for i := 0; i < n; i++ {
		glyph, style := '○', dim
		switch {
		case i == st.ActiveSection:
			glyph, style = '●', lit
		case st.IsTransitioning && i == st.Target:
			glyph, style = '◉', lit
		}
		cv.set(1, top+2*i, glyph, style)
	}
}

func (r *Renderer) drawLoading(cv canvas, w int, pal Palette) {
	style := tcell.StyleDefault.Foreground(r.mode.Color(pal.Accent)).Background(r.mode.Color(pal.Background))
	cv.text(Center(constants.LoadingText, 0, w), 0, w, constants.LoadingText, style, 0)
}

func (r *Renderer) drawHint(cv canvas, w, h int, f Frame, pal Palette) {
	style := tcell.StyleDefault.Foreground(r.mode.Color(pal.Text.BlendLab(pal.Background, 0.5))).Background(r.mode.Color(pal.Background))
	hint := constants.HintText
	if f.Muted {
		hint += " · muted"
	}
	cv.text(1, h-1, w, hint, style, 0)
	if f.Status != "" {
		x := w - 1 - runewidth.StringWidth(f.Status)
		cv.text(x, h-1, w, f.Status, style, 0)
	}
}

// blurGlyph dithers text into shade glyphs as blur rises
func blurGlyph(r rune, x, y int, blur float64) rune {
	if r == ' ' || blur < constants.BlurDitherThreshold {
		return r
	}
	if blur >= 2*constants.BlurDitherThreshold || (x+y)%2 == 0 {
		return '░'
	}
	return r
}

// clampInt bounds v to [lo, hi]; hi wins when the range is empty
func clampInt(v, lo, hi int) int {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}
