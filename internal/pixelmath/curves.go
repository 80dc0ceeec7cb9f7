package pixelmath

import (
	"github.com/gogpu/filmlab/adjust"
	"github.com/gogpu/filmlab/internal/color"
)

// CurveSize is the number of entries per baked curve table.
const CurveSize = 256

// Curve table rows.
const (
	CurveMaster = iota
	CurveRed
	CurveGreen
	CurveBlue
)

// Curves holds the baked point curves: a master table then one per channel.
// The parametric region sliders are folded into the master table.
type Curves struct {
	LUT [4][CurveSize]float32
}

// Parametric region centers and half-width on the input axis.
var regionCenters = [4]float32{0.125, 0.375, 0.625, 0.875}

const (
	regionWidth = 0.25
	regionScale = 0.15
)

// NewCurves bakes the curves of s, or returns nil when they are the
// identity.
func NewCurves(s *adjust.Set) *Curves {
	regions := [4]float32{
		pct(s.CurveShadows), pct(s.CurveDarks), pct(s.CurveLights), pct(s.CurveHighlights),
	}
	flat := regions == [4]float32{}
	if s.Curves.IsIdentity() && flat {
		return nil
	}
	c := &Curves{}
	for i, pts := range [][]adjust.Point{s.Curves.RGB, s.Curves.Red, s.Curves.Green, s.Curves.Blue} {
		bakeCurve(&c.LUT[i], pts)
	}
	if !flat {
		for i := range c.LUT[CurveMaster] {
			x := float32(i) / (CurveSize - 1)
			c.LUT[CurveMaster][i] = color.Clamp01(c.LUT[CurveMaster][i] + RegionDelta(x, regions))
		}
	}
	return c
}

// RegionDelta is the parametric curve offset at x for the shadows, darks,
// lights and highlights amounts. It vanishes at both endpoints.
func RegionDelta(x float32, amounts [4]float32) float32 {
	var d float32
	for i, c := range regionCenters {
		w := max(0, 1-abs32(x-c)/regionWidth)
		d += amounts[i] * regionScale * w
	}
	return d * 4 * x * (1 - x)
}

// bakeCurve fills t with the monotone cubic through pts (byte coordinates).
// Fewer than two points leave the identity.
func bakeCurve(t *[CurveSize]float32, pts []adjust.Point) {
	if len(pts) < 2 {
		for i := range t {
			t[i] = float32(i) / (CurveSize - 1)
		}
		return
	}
	n := len(pts)
	xs := make([]float32, n)
	ys := make([]float32, n)
	for i, p := range pts {
		xs[i] = float32(p.X)
		ys[i] = float32(p.Y)
	}
	m := monotoneTangents(xs, ys)

	seg := 0
	for i := range t {
		x := float32(i)
		for seg < n-2 && x > xs[seg+1] {
			seg++
		}
		var y float32
		switch {
		case x <= xs[0]:
			y = ys[0]
		case x >= xs[n-1]:
			y = ys[n-1]
		default:
			y = hermite(xs[seg], xs[seg+1], ys[seg], ys[seg+1], m[seg], m[seg+1], x)
		}
		t[i] = color.Clamp01(y / 255)
	}
}

// monotoneTangents computes Fritsch–Carlson tangents.
func monotoneTangents(xs, ys []float32) []float32 {
	n := len(xs)
	d := make([]float32, n-1)
	for i := range d {
		d[i] = (ys[i+1] - ys[i]) / (xs[i+1] - xs[i])
	}
	m := make([]float32, n)
	m[0], m[n-1] = d[0], d[n-2]
	for i := 1; i < n-1; i++ {
		if d[i-1]*d[i] <= 0 {
			m[i] = 0
		} else {
			m[i] = (d[i-1] + d[i]) / 2
		}
	}
	for i := range d {
		if d[i] == 0 {
			m[i], m[i+1] = 0, 0
			continue
		}
		a, b := m[i]/d[i], m[i+1]/d[i]
		if s := a*a + b*b; s > 9 {
			tau := 3 / sqrt32(s)
			m[i] = tau * a * d[i]
			m[i+1] = tau * b * d[i]
		}
	}
	return m
}

func hermite(x0, x1, y0, y1, m0, m1, x float32) float32 {
	h := x1 - x0
	t := (x - x0) / h
	t2 := t * t
	t3 := t2 * t
	return (2*t3-3*t2+1)*y0 + (t3-2*t2+t)*h*m0 + (-2*t3+3*t2)*y1 + (t3-t2)*h*m1
}

// Lookup linearly interpolates table row r at v in [0,1].
func (c *Curves) Lookup(r int, v float32) float32 {
	x := color.Clamp01(v) * (CurveSize - 1)
	i := min(int(x), CurveSize-2)
	f := x - float32(i)
	return c.LUT[r][i] + (c.LUT[r][i+1]-c.LUT[r][i])*f
}

// Apply maps each channel through the master table, then its own.
func (c *Curves) Apply(p color.RGB) color.RGB {
	return color.RGB{
		R: c.Lookup(CurveRed, c.Lookup(CurveMaster, p.R)),
		G: c.Lookup(CurveGreen, c.Lookup(CurveMaster, p.G)),
		B: c.Lookup(CurveBlue, c.Lookup(CurveMaster, p.B)),
	}
}

// Flat returns the tables as one slice for upload.
func (c *Curves) Flat() []float32 {
	out := make([]float32, 0, 4*CurveSize)
	for i := range c.LUT {
		out = append(out, c.LUT[i][:]...)
	}
	return out
}
