package render

import (
	"strings"

	"cpubars/internal/utilization"
)

type Renderer struct {
	Palette    Palette
	Mode       ColorMode
	Thresholds Thresholds
}

// Output is a rendered line plus the single color directive covering it.
type Output struct {
	Glyphs string    `json:"glyphs"`
	Load   float64   `json:"load"`
	Band   Band      `json:"-"`
	Mode   ColorMode `json:"-"`
}

func New(palette Palette, mode ColorMode, th Thresholds) *Renderer {
	if len(palette) < 2 {
		palette = MustPalette(DefaultPalette)
	}
	return &Renderer{Palette: palette, Mode: mode, Thresholds: th}
}

// Render picks one glyph per core, in the sample's id order.
func (r *Renderer) Render(u utilization.Sample) Output {
	var b strings.Builder
	b.Grow(len(u.Cores) * 3)
	for _, c := range u.Cores {
		b.WriteRune(r.Palette.Glyph(c.Ratio))
	}
	load := u.Load()
	return Output{
		Glyphs: b.String(),
		Load:   load,
		Band:   Classify(load, r.Thresholds),
		Mode:   r.Mode,
	}
}

// String is the line as written to the terminal.
func (o Output) String() string {
	start, reset := Directives(o.Mode, o.Band)
	if start == "" {
		return o.Glyphs
	}
	return start + o.Glyphs + reset
}
