package render

import (
	"math"
	"math/rand"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/heartscroll/constants"
	"github.com/lixenwraith/heartscroll/engine"
	"github.com/lixenwraith/heartscroll/events"
)

var heartGlyphs = [...]rune{'♥', '♡', '·'}

type heart struct {
	x, y  int
	glyph rune
	depth float64 // (0, 1], nearer hearts shift further with tilt
}

// HeartField is the background layer behind every section
// It listens for committed section changes; density and hue follow the section
type HeartField struct {
	mu      sync.Mutex
	total   int
	section int
	hearts  []heart
	w, h    int
	dirty   bool
}

// NewHeartField creates a field for total sections, starting at section 0
func NewHeartField(total int) *HeartField {
	return &HeartField{total: total, dirty: true}
}

// OnSectionChange implements events.Listener
// Out-of-range targets are ignored; repeated notifications are idempotent
func (f *HeartField) OnSectionChange(ev events.SectionChange) {
	if ev.To < 0 || ev.To >= f.total {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if ev.To == f.section {
		return
	}
	f.section = ev.To
	f.dirty = true
}

// Section returns the last committed section the field follows
func (f *HeartField) Section() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.section
}

// Count returns the number of hearts in the current layout
func (f *HeartField) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.hearts)
}

// Color returns the heart colour for the followed section over palette
func (f *HeartField) Color(p Palette) colorful.Color {
	f.mu.Lock()
	section := f.section
	f.mu.Unlock()

	h, c, l := p.Accent.Hcl()
	shifted := colorful.Hcl(math.Mod(h+float64(section)*constants.HeartFieldHueStepDeg, 360), c, l)
	return shifted.Clamped().BlendLab(p.Background, constants.HeartFieldDim).Clamped()
}

// Draw paints the field into the w×h area at (x0, y0)
func (f *HeartField) Draw(cv canvas, x0, y0, w, h int, p Palette, mode ColorMode, tilt engine.Tilt) {
	f.mu.Lock()
	if f.dirty || w != f.w || h != f.h {
		f.layoutLocked(w, h)
	}
	hearts := f.hearts
	f.mu.Unlock()

	style := tcell.StyleDefault.
		Foreground(mode.Color(f.Color(p))).
		Background(mode.Color(p.Background))

	for _, ht := range hearts {
		dx := int(math.Round(tilt.X * constants.HeartFieldParallaxCols * ht.depth))
		dy := int(math.Round(tilt.Y * constants.HeartFieldParallaxCols * ht.depth / 2))
		x, y := x0+ht.x+dx, y0+ht.y+dy
		if x < x0 || y < y0 || x >= x0+w || y >= y0+h {
			continue
		}
		cv.set(x, y, ht.glyph, style)
	}
}

// layoutLocked regenerates hearts for the current section and size
// The layout is seeded by section so it is stable across frames
func (f *HeartField) layoutLocked(w, h int) {
	f.w, f.h, f.dirty = w, h, false
	if w <= 0 || h <= 0 {
		f.hearts = nil
		return
	}

	density := constants.HeartFieldDensity * float64(f.section+1)
	n := int(float64(w*h) * density / 100)
	rng := rand.New(rand.NewSource(int64(f.section)*7919 + int64(w)*31 + int64(h)))

	f.hearts = make([]heart, n)
	for i := range f.hearts {
		f.hearts[i] = heart{
			x:     rng.Intn(w),
			y:     rng.Intn(h),
			glyph: heartGlyphs[rng.Intn(len(heartGlyphs))],
			depth: 0.25 + 0.75*rng.Float64(),
		}
	}
}
