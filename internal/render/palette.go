// Package render quantizes utilization ratios into bar glyphs and colors the
// resulting line by aggregate load.
package render

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"
)

// DefaultPalette runs from an idle blank to a full block.
const DefaultPalette = " ▁▂▃▄▅▆▇█"

var ErrPaletteTooShort = errors.New("palette needs at least two glyphs")

// Palette is an ordered glyph set, lowest load first.
type Palette []rune

func NewPalette(glyphs string) (Palette, error) {
	if !utf8.ValidString(glyphs) {
		return nil, fmt.Errorf("palette %q is not valid utf-8", glyphs)
	}
	p := Palette([]rune(glyphs))
	if len(p) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrPaletteTooShort, len(p))
	}
	return p, nil
}

func MustPalette(glyphs string) Palette {
	p, err := NewPalette(glyphs)
	if err != nil {
		panic(err)
	}
	return p
}

// Glyph returns the glyph for ratio r.
func (p Palette) Glyph(r float64) rune {
	return p[Bucket(r, len(p))]
}

// Bucket maps a ratio onto [0, n-1]. The ratio is clamped to [0, 1] and
// truncated to a whole percent, then divided by a whole-percent step of
// 100/(n-1). For the default palette each step is 12%, so 96% already
// shows a full block. NaN lands on the first bucket.
func Bucket(r float64, n int) int {
	if n < 2 {
		return 0
	}
	if math.IsNaN(r) || r < 0 {
		r = 0
	}
	if r > 1 {
		r = 1
	}
	pct := int(math.Floor(r * 100))
	step := 100 / (n - 1)
	if step == 0 {
		// more than 101 glyphs: one per percent, the tail is unreachable
		step = 1
	}
	bucket := pct / step
	if bucket < 0 {
		return 0
	}
	if bucket > n-1 {
		return n - 1
	}
	return bucket
}
