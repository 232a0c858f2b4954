package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/heartscroll/content"
	"github.com/lixenwraith/heartscroll/engine"
)

// Fallback colours when a theme is missing or malformed
var (
	DefaultAccent     = colorful.Color{R: 1.0, G: 0.36, B: 0.54} // Rose
	DefaultBackground = colorful.Color{R: 0.10, G: 0.04, B: 0.07} // Near-black plum
	DefaultText       = colorful.Color{R: 0.97, G: 0.93, B: 0.95} // Warm white
	ErrorInk          = colorful.Color{R: 0.90, G: 0.35, B: 0.35} // Muted red
)

// ColorMode selects how colours are sent to the terminal
type ColorMode uint8

const (
	ModeTrueColor ColorMode = iota
	Mode256
)

// ParseColorMode maps a config value to a mode; "auto" inspects the screen
func ParseColorMode(name string, screen tcell.Screen) (ColorMode, error) {
	switch name {
	case "truecolor":
		return ModeTrueColor, nil
	case "256":
		return Mode256, nil
	case "", "auto":
		if screen != nil && screen.Colors() >= 1<<24 {
			return ModeTrueColor, nil
		}
		return Mode256, nil
	}
	return ModeTrueColor, fmt.Errorf("unknown color mode %q", name)
}

var xterm256 = func() []tcell.Color {
	p := make([]tcell.Color, 256)
	for i := range p {
		p[i] = tcell.PaletteColor(i)
	}
	return p
}()

// Color converts c for the terminal, snapping to the xterm palette in Mode256
func (m ColorMode) Color(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	tc := tcell.NewRGBColor(int32(r), int32(g), int32(b))
	if m == Mode256 {
		return tcell.FindColor(tc, xterm256)
	}
	return tc
}

// Palette is the resolved colour set of one section theme
type Palette struct {
	Accent     colorful.Color
	Background colorful.Color
	Text       colorful.Color
}

// NewPalette parses theme hex colours, falling back per field
func NewPalette(theme content.Theme) Palette {
	p := Palette{Accent: DefaultAccent, Background: DefaultBackground, Text: DefaultText}
	if c, err := colorful.Hex(theme.Accent); err == nil {
		p.Accent = c
	}
	if c, err := colorful.Hex(theme.Background); err == nil {
		p.Background = c
	}
	return p
}

// Fade is how far a section's ink blends into its background, in [0, 1]
// Opacity and brightness darken, blur washes out
func Fade(params engine.RenderParams) float64 {
	fade := 1 - params.Opacity*params.Brightness
	if params.Blur > 0 {
		fade += (1 - fade) * params.Blur / (params.Blur + 20)
	}
	if fade < 0 {
		return 0
	}
	if fade > 1 {
		return 1
	}
	return fade
}

// Ink blends c toward the background by the section fade
func (p Palette) Ink(c colorful.Color, params engine.RenderParams) colorful.Color {
	return c.BlendLab(p.Background, Fade(params)).Clamped()
}
