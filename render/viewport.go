package render

// Viewport is a vertically scrollable window over wrapped lines
// It is the letter body's inner scroll region; all access is on the UI goroutine
type Viewport struct {
	lines  []string
	offset int
	height int
}

// NewViewport creates an empty viewport
func NewViewport() *Viewport {
	return &Viewport{}
}

// SetLines replaces the content, keeping the offset in range
func (v *Viewport) SetLines(lines []string) {
	v.lines = lines
	v.clampOffset()
}

// SetHeight sets the number of visible rows
func (v *Viewport) SetHeight(h int) {
	if h < 0 {
		h = 0
	}
	v.height = h
	v.clampOffset()
}

// Offset returns the first visible line index
func (v *Viewport) Offset() int {
	return v.offset
}

// Visible returns the lines currently in view
func (v *Viewport) Visible() []string {
	end := v.offset + v.height
	if end > len(v.lines) {
		end = len(v.lines)
	}
	if v.offset >= end {
		return nil
	}
	return v.lines[v.offset:end]
}

// Overflows reports whether the content is taller than the viewport
func (v *Viewport) Overflows() bool {
	return v.maxOffset() > 0
}

// AtTop implements input.ScrollRegion
func (v *Viewport) AtTop() bool {
	return v.offset <= 0
}

// AtBottom implements input.ScrollRegion
func (v *Viewport) AtBottom() bool {
	return v.offset >= v.maxOffset()
}

// ScrollBy implements input.ScrollRegion
func (v *Viewport) ScrollBy(rows int) {
	v.offset += rows
	v.clampOffset()
}

// Reset scrolls back to the top
func (v *Viewport) Reset() {
	v.offset = 0
}

func (v *Viewport) maxOffset() int {
	m := len(v.lines) - v.height
	if m < 0 {
		return 0
	}
	return m
}

func (v *Viewport) clampOffset() {
	if limit := v.maxOffset(); v.offset > limit {
		v.offset = limit
	}
	if v.offset < 0 {
		v.offset = 0
	}
}
