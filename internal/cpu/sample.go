package cpu

import (
	"image"
	"math"

	"github.com/gogpu/filmlab/internal/color"
	"github.com/gogpu/filmlab/internal/filter"
	"github.com/gogpu/filmlab/internal/pixelmath"
	"github.com/gogpu/filmlab/internal/tier"
)

// GeometryPixel samples the source for output pixel (x, y). With chromatic
// aberration each channel is sampled at its own position; alpha follows
// green.
func GeometryPixel(f *tier.Frame, x, y int) [4]float32 {
	ox, oy := float64(x)+0.5, float64(y)+0.5
	sx, sy := f.Transform.Map(ox, oy, 1)
	g := Bilinear(f.Source, sx, sy)
	if !f.Transform.HasAberration() {
		return g
	}
	rx, ry := f.Transform.Map(ox, oy, 0)
	bx, by := f.Transform.Map(ox, oy, 2)
	r := Bilinear(f.Source, rx, ry)
	b := Bilinear(f.Source, bx, by)
	return [4]float32{r[0], g[1], b[2], g[3]}
}

// Bilinear samples src at continuous coordinate (sx, sy) with pixel centers
// at half-integers, clamping to the edge.
func Bilinear(src *image.NRGBA, sx, sy float64) [4]float32 {
	qx, qy := sx-0.5, sy-0.5
	fx, fy := math.Floor(qx), math.Floor(qy)
	tx, ty := float32(qx-fx), float32(qy-fy)
	x0, y0 := int(fx), int(fy)

	a := fetch(src, x0, y0)
	b := fetch(src, x0+1, y0)
	c := fetch(src, x0, y0+1)
	d := fetch(src, x0+1, y0+1)
	var out [4]float32
	for i := range out {
		top := a[i] + (b[i]-a[i])*tx
		bot := c[i] + (d[i]-c[i])*tx
		out[i] = top + (bot-top)*ty
	}
	return out
}

func fetch(src *image.NRGBA, x, y int) [4]float32 {
	r := src.Rect
	x = min(max(x, 0), r.Dx()-1)
	y = min(max(y, 0), r.Dy()-1)
	i := src.PixOffset(r.Min.X+x, r.Min.Y+y)
	p := src.Pix[i : i+4 : i+4]
	return [4]float32{color.Unorm8(p[0]), color.Unorm8(p[1]), color.Unorm8(p[2]), color.Unorm8(p[3])}
}

// Grade applies the color grading post-step to an already rendered image.
func Grade(dst *image.NRGBA, g *pixelmath.Grading, run filter.Runner) {
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	run.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
			for x := 0; x < w; x++ {
				p := row[x*4 : x*4+3 : x*4+3]
				c := color.RGB{R: color.Unorm8(p[0]), G: color.Unorm8(p[1]), B: color.Unorm8(p[2])}
				c = g.Apply(c).Clamp01()
				p[0], p[1], p[2] = color.Quantize8(c.R), color.Quantize8(c.G), color.Quantize8(c.B)
			}
		}
	})
}
