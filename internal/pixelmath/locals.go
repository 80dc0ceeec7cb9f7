package pixelmath

import (
	"math"

	"github.com/gogpu/filmlab/adjust"
	"github.com/gogpu/filmlab/internal/color"
)

// Mask kinds as uploaded to the GPU.
const (
	KindRadial = 0
	KindLinear = 1
	KindBrush  = 2
)

// gateSoftness is the soft edge of the luma, hue and saturation gates.
const gateSoftness = 0.05

// Local is one resolved local adjustment.
type Local struct {
	Kind   int
	Amount float32

	// Radial: center, radii, rotation as cos/sin.
	CX, CY, RX, RY, Cos, Sin float32
	// Linear: start and end.
	SX, SY, EX, EY float32

	Feather float32
	Invert  bool
	Aspect  float32 // output width / height

	LumaMin, LumaMax float32
	HueCenter        float32 // turns
	HueRange         float32 // turns; 0 disables the gate
	SatMin, SatMax   float32

	Exposure, Contrast, Highlights, Shadows float32
	Temperature, Tint, Saturation           float32

	Points []adjust.BrushPoint
}

// NewLocals resolves the enabled locals of an output of w×h pixels.
func NewLocals(locals []adjust.Local, w, h int) []Local {
	aspect := float32(1)
	if h > 0 {
		aspect = float32(w) / float32(h)
	}
	var out []Local
	for _, l := range locals {
		if !l.Enabled || l.Amount <= 0 {
			continue
		}
		m := l.Mask
		theta := m.Rotation * math.Pi / 180
		r := Local{
			Amount:     pct(l.Amount),
			CX:         float32(m.CenterX),
			CY:         float32(m.CenterY),
			RX:         float32(m.RadiusX),
			RY:         float32(m.RadiusY),
			Cos:        float32(math.Cos(theta)),
			Sin:        float32(math.Sin(theta)),
			SX:         float32(m.StartX),
			SY:         float32(m.StartY),
			EX:         float32(m.EndX),
			EY:         float32(m.EndY),
			Feather:    pct(m.Feather),
			Invert:     m.Invert,
			Aspect:     aspect,
			LumaMin:    float32(m.LumaMin),
			LumaMax:    float32(m.LumaMax),
			HueCenter:  float32(m.HueCenter / 360),
			SatMin:     float32(m.SatMin),
			SatMax:     float32(m.SatMax),
			Exposure:   float32(l.Delta.Exposure),
			Contrast:   pct(l.Delta.Contrast),
			Highlights: pct(l.Delta.Highlights),
			Shadows:    pct(l.Delta.Shadows),
			Saturation: pct(l.Delta.Saturation),

			Temperature: pct(l.Delta.Temperature),
			Tint:        pct(l.Delta.Tint),
		}
		if m.HueRange > 0 && m.HueRange < 180 {
			r.HueRange = float32(m.HueRange / 360)
		}
		switch m.Kind {
		case adjust.MaskLinear:
			r.Kind = KindLinear
		case adjust.MaskBrush:
			r.Kind = KindBrush
			r.Points = m.Points
		default:
			r.Kind = KindRadial
		}
		out = append(out, r)
	}
	return out
}

// Shape returns the geometric mask value at (u, v) before gates.
func (l *Local) Shape(u, v float32) float32 {
	f := max(l.Feather, 0.001)
	var m float32
	switch l.Kind {
	case KindRadial:
		dx, dy := u-l.CX, v-l.CY
		rx := (dx*l.Cos + dy*l.Sin) / l.RX
		ry := (-dx*l.Sin + dy*l.Cos) / l.RY
		d := sqrt32(rx*rx + ry*ry)
		m = 1 - color.Smoothstep(1-f, 1, d)
	case KindLinear:
		ax, ay := l.EX-l.SX, l.EY-l.SY
		den := ax*ax + ay*ay
		var t float32
		if den > 1e-8 {
			t = ((u-l.SX)*ax + (v-l.SY)*ay) / den
		}
		m = 1 - color.Smoothstep(0.5-f*0.5, 0.5+f*0.5, t)
	case KindBrush:
		for _, p := range l.Points {
			dx := (u - float32(p.X)) * l.Aspect
			dy := v - float32(p.Y)
			r := float32(p.Radius)
			d := sqrt32(dx*dx + dy*dy)
			m = max(m, float32(p.Strength)*(1-color.Smoothstep(r*(1-f), r, d)))
		}
	}
	if l.Invert {
		m = 1 - m
	}
	return m
}

// Gate returns the combined luma, hue and saturation gate for c.
func (l *Local) Gate(c color.RGB) float32 {
	y := c.Luma()
	g := color.Smoothstep(l.LumaMin-gateSoftness, l.LumaMin, y) *
		(1 - color.Smoothstep(l.LumaMax, l.LumaMax+gateSoftness, y))
	hsl := c.ToHSL()
	if l.HueRange > 0 {
		d := color.HueDistance(hsl.H, l.HueCenter)
		g *= 1 - color.Smoothstep(l.HueRange, l.HueRange+gateSoftness, d)
	}
	g *= color.Smoothstep(l.SatMin-gateSoftness, l.SatMin, hsl.S) *
		(1 - color.Smoothstep(l.SatMax, l.SatMax+gateSoftness, hsl.S))
	return g
}

// Weight is the full mask weight of l for pixel c at (u, v).
func (l *Local) Weight(c color.RGB, u, v float32) float32 {
	return l.Shape(u, v) * l.Gate(c) * l.Amount
}

// Apply blends the local deltas into c with weight m.
func (l *Local) Apply(c color.RGB, m float32) color.RGB {
	if m <= 0 {
		return c
	}
	if l.Exposure != 0 {
		c = c.Scale(float32(math.Exp2(float64(l.Exposure * m / 2.2))))
	}
	if l.Contrast != 0 {
		k := 1 + l.Contrast*m*contrastScale
		c = c.Sub(color.Gray(0.5)).Scale(k).Add(color.Gray(0.5))
	}
	if l.Highlights != 0 || l.Shadows != 0 {
		c = c.Add(color.Gray(ZoneDelta(c.Luma(), l.Shadows*m, l.Highlights*m)))
	}
	if l.Temperature != 0 || l.Tint != 0 {
		c = c.Mul(WhiteBalanceGains(l.Temperature*m, l.Tint*m))
	}
	if l.Saturation != 0 {
		y := color.Gray(c.Luma())
		c = y.Mix(c, 1+l.Saturation*m)
	}
	return c
}

// ApplyLocals runs every local in order. Each mask is evaluated on the
// pixel as left by the previous local.
func ApplyLocals(c color.RGB, locals []Local, u, v float32) color.RGB {
	for i := range locals {
		l := &locals[i]
		c = l.Apply(c, l.Weight(c, u, v))
	}
	return c
}
