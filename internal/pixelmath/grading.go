package pixelmath

import (
	"github.com/gogpu/filmlab/adjust"
	"github.com/gogpu/filmlab/internal/color"
)

// Zone is one grading wheel in shader units.
type Zone struct {
	Tint     color.RGB // HueTint of the wheel hue
	Sat, Lum float32
}

// Grading is the resolved three-way grader.
type Grading struct {
	Shadows, Midtones, Highlights Zone
	Pivot, Width                  float32
}

const (
	gradingTint = 0.3
	gradingLum  = 0.2
)

func newZone(z adjust.GradeZone) Zone {
	return Zone{
		Tint: color.HueTint(float32(z.Hue / 360)),
		Sat:  pct(z.Saturation),
		Lum:  pct(z.Luminance),
	}
}

// NewGrading resolves g. Balance moves the shadow/highlight pivot, blend
// widens the transition between zones.
func NewGrading(g adjust.ColorGrading) Grading {
	return Grading{
		Shadows:    newZone(g.Shadows),
		Midtones:   newZone(g.Midtones),
		Highlights: newZone(g.Highlights),
		Pivot:      min(max(0.5-0.3*pct(g.Balance), 0.1), 0.9),
		Width:      0.1 + 0.4*pct(g.Blend),
	}
}

// Weights returns the shadow, midtone and highlight weights at luminance y.
func (g *Grading) Weights(y float32) (ws, wm, wh float32) {
	ws = 1 - color.Smoothstep(g.Pivot-g.Width, g.Pivot, y)
	wh = color.Smoothstep(g.Pivot, g.Pivot+g.Width, y)
	wm = max(0, 1-ws-wh)
	return ws, wm, wh
}

// Apply adds the weighted zone tints and luminance offsets.
func (g *Grading) Apply(c color.RGB) color.RGB {
	ws, wm, wh := g.Weights(c.Luma())
	tint := g.Shadows.Tint.Scale(ws * g.Shadows.Sat).
		Add(g.Midtones.Tint.Scale(wm * g.Midtones.Sat)).
		Add(g.Highlights.Tint.Scale(wh * g.Highlights.Sat))
	lum := ws*g.Shadows.Lum + wm*g.Midtones.Lum + wh*g.Highlights.Lum
	return c.Add(tint.Scale(gradingTint)).Add(color.Gray(lum * gradingLum))
}
