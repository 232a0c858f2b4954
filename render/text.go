package render

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Wrap breaks text into lines no wider than width display cells
// Paragraph breaks are kept as empty lines; words wider than width are split
func Wrap(text string, width int) []string {
	if width < 1 {
		return nil
	}
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		var line strings.Builder
		lineW := 0
		for _, word := range words {
			for runewidth.StringWidth(word) > width {
				if lineW > 0 {
					lines = append(lines, line.String())
					line.Reset()
					lineW = 0
				}
				head := runewidth.Truncate(word, width, "")
				if head == "" {
					// A single rune wider than width; emit it alone
					r := []rune(word)
					head = string(r[0])
				}
				lines = append(lines, head)
				word = word[len(head):]
			}
			if word == "" {
				continue
			}

			ww := runewidth.StringWidth(word)
			switch {
			case lineW == 0:
				line.WriteString(word)
				lineW = ww
			case lineW+1+ww <= width:
				line.WriteByte(' ')
				line.WriteString(word)
				lineW += 1 + ww
			default:
				lines = append(lines, line.String())
				line.Reset()
				line.WriteString(word)
				lineW = ww
			}
		}
		if lineW > 0 {
			lines = append(lines, line.String())
		}
	}
	return lines
}

// Center returns the x at which s is centered within [x0, x0+width)
func Center(s string, x0, width int) int {
	return x0 + (width-runewidth.StringWidth(s))/2
}

// canvas clips drawing to the screen and applies per-glyph blur
type canvas struct {
	screen tcell.Screen
	w, h   int
}

func (c canvas) set(x, y int, r rune, style tcell.Style) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.screen.SetContent(x, y, r, nil, style)
}

// text draws s from x, clipped to maxX, and returns the x after the last cell
func (c canvas) text(x, y, maxX int, s string, style tcell.Style, blur float64) int {
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if x+rw > maxX {
			break
		}
		c.set(x, y, blurGlyph(r, x, y, blur), style)
		x += rw
	}
	return x
}

// fill paints a rectangle with spaces in style
func (c canvas) fill(x, y, w, h int, style tcell.Style) {
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			c.set(col, row, ' ', style)
		}
	}
}
