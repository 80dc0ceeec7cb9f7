// Package pixelmath holds the per-pixel math of the render pipeline.
//
// The CPU tier calls these functions directly. The WGSL emitted by
// shadergen evaluates the same formulas with the same constants, and the
// GPU tiers upload the parameters built here, so every tier agrees up to
// float rounding.
//
// Master steps run in this order: sRGB decode, white balance, exposure,
// dehaze, sRGB encode, tone, clamp, curves, HSL, color, locals, grading,
// clamp. Film steps follow in package-level order: tone response, matrix,
// LUT, cast, grain, vignette, clamp.
package pixelmath

import (
	"math"

	"github.com/gogpu/filmlab/adjust"
	"github.com/gogpu/filmlab/internal/color"
)

// Tone holds the levels, shadows/highlights and contrast controls.
type Tone struct {
	BlackPoint, WhitePoint float32
	Shadows, Highlights    float32
	Contrast               float32
}

// Master is the resolved parameter block of the master program.
type Master struct {
	WhiteBalance bool
	Gains        color.RGB

	// Exposure is the linear multiplier 2^EV.
	Exposure float32

	DehazeActive bool
	Dehaze       float32

	ToneActive bool
	Tone       Tone

	Curves *Curves

	HSLActive bool
	HSL       [adjust.BandCount]HSLShift

	ColorActive          bool
	Vibrance, Saturation float32

	GradingActive bool
	Grading       Grading

	Locals []Local
}

// HSLShift is one band in shader units: hue in turns, saturation and
// luminance as fractions.
type HSLShift struct {
	Hue, Saturation, Luminance float32
}

// Band centers in turns.
var bandCenters = [adjust.BandCount]float32{
	0, 30.0 / 360, 60.0 / 360, 120.0 / 360,
	180.0 / 360, 240.0 / 360, 270.0 / 360, 300.0 / 360,
}

// BandCenter returns the hue center of band b in turns.
func BandCenter(b int) float32 { return bandCenters[b] }

// Constants shared with the WGSL programs.
const (
	hslWidth      = 45.0 / 360
	hslHueRange   = 30.0 / 360
	dehazeAir     = 0.7
	dehazeScale   = 0.1
	blackScale    = 0.08
	whiteScale    = 0.12
	zoneScale     = 0.25
	contrastScale = 0.8
	wbTemp        = 0.22
	wbTint        = 0.18
	wbTintRB      = 0.04
)

func pct(v float64) float32 { return float32(v / 100) }

// NewMaster resolves the master parameters of s for an output of w×h
// pixels.
func NewMaster(s *adjust.Set, w, h int) Master {
	m := Master{
		Exposure: float32(math.Exp2(s.Exposure)),
	}
	if s.Temperature != 0 || s.Tint != 0 {
		m.WhiteBalance = true
		m.Gains = WhiteBalanceGains(pct(s.Temperature), pct(s.Tint))
	}
	if s.Dehaze != 0 {
		m.DehazeActive = true
		m.Dehaze = pct(s.Dehaze) * dehazeScale
	}
	if s.Blacks != 0 || s.Whites != 0 || s.Shadows != 0 || s.Highlights != 0 || s.Contrast != 0 {
		m.ToneActive = true
		m.Tone = Tone{
			BlackPoint: -blackScale * pct(s.Blacks),
			WhitePoint: 1 - whiteScale*pct(s.Whites),
			Shadows:    pct(s.Shadows),
			Highlights: pct(s.Highlights),
			Contrast:   pct(s.Contrast),
		}
	}
	m.Curves = NewCurves(s)
	for i, b := range s.HSL {
		if b.Hue != 0 || b.Saturation != 0 || b.Luminance != 0 {
			m.HSLActive = true
		}
		m.HSL[i] = HSLShift{pct(b.Hue), pct(b.Saturation), pct(b.Luminance)}
	}
	if s.Vibrance != 0 || s.Saturation != 0 {
		m.ColorActive = true
		m.Vibrance = pct(s.Vibrance)
		m.Saturation = pct(s.Saturation)
	}
	if s.Grading.Active() {
		m.GradingActive = true
		m.Grading = NewGrading(s.Grading)
	}
	m.Locals = NewLocals(s.Locals, w, h)
	return m
}

// WhiteBalanceGains returns per-channel gains for temperature t and tint n
// in [-1,1], normalized to keep luma constant.
func WhiteBalanceGains(t, n float32) color.RGB {
	g := color.RGB{
		R: 1 + wbTemp*t + wbTintRB*n,
		G: 1 - wbTint*n,
		B: 1 - wbTemp*t + wbTintRB*n,
	}
	return g.Scale(1 / g.Luma())
}

// Linear runs the linear-light steps on a decoded pixel: white balance,
// exposure and dehaze.
func (m *Master) Linear(c color.RGB) color.RGB {
	if m.WhiteBalance {
		c = c.Mul(m.Gains)
	}
	c = c.Scale(m.Exposure)
	if m.DehazeActive {
		c = Dehaze(c, m.Dehaze)
	}
	return c
}

// Dehaze removes (k > 0) or adds (k < 0) a uniform airlight veil.
func Dehaze(c color.RGB, k float32) color.RGB {
	return c.Sub(color.Gray(dehazeAir * k)).Scale(1 / (1 - k)).Max0()
}

// ApplyTone applies levels, shadows/highlights and contrast to an encoded
// pixel.
func ApplyTone(c color.RGB, t Tone) color.RGB {
	c = c.Sub(color.Gray(t.BlackPoint)).Scale(1 / (t.WhitePoint - t.BlackPoint))
	c = c.Add(color.Gray(ZoneDelta(c.Luma(), t.Shadows, t.Highlights)))
	k := 1 + t.Contrast*contrastScale
	return c.Sub(color.Gray(0.5)).Scale(k).Add(color.Gray(0.5))
}

// ShadowMask weights luminance y toward the shadows.
func ShadowMask(y float32) float32 {
	v := 1 - color.Smoothstep(0, 0.5, y)
	return v * v
}

// HighlightMask weights luminance y toward the highlights.
func HighlightMask(y float32) float32 {
	v := color.Smoothstep(0.5, 1, y)
	return v * v
}

// ZoneDelta is the additive lift for shadows s and highlights h at
// luminance y.
func ZoneDelta(y, s, h float32) float32 {
	return zoneScale * (s*ShadowMask(y) + h*HighlightMask(y))
}

// ApplyHSL shifts hue, saturation and luminance per band. Band weights fall
// off linearly over hslWidth from each center and are normalized when they
// overlap; unsaturated pixels are left alone.
func ApplyHSL(c color.RGB, bands *[adjust.BandCount]HSLShift) color.RGB {
	hsl := c.ToHSL()
	gate := color.Smoothstep(0, 0.1, hsl.S)
	var sum, dh, ds, dl float32
	for i := range bands {
		w := max(0, 1-color.HueDistance(hsl.H, bandCenters[i])/hslWidth)
		sum += w
		dh += w * bands[i].Hue
		ds += w * bands[i].Saturation
		dl += w * bands[i].Luminance
	}
	norm := gate / max(sum, 1)
	hsl.H = color.Fract(hsl.H + dh*norm*hslHueRange)
	hsl.S = color.Clamp01(hsl.S * (1 + ds*norm))
	hsl.L = color.Clamp01(hsl.L + dl*norm*0.2*hsl.S)
	return hsl.ToRGB()
}

// ApplyColor applies vibrance then saturation.
func ApplyColor(c color.RGB, vibrance, saturation float32) color.RGB {
	y := color.Gray(c.Luma())
	sat := max(c.R, c.G, c.B) - min(c.R, c.G, c.B)
	c = y.Mix(c, 1+vibrance*(1-sat))
	y = color.Gray(c.Luma())
	return y.Mix(c, 1+saturation)
}

// Pixel runs the master program on an sRGB-encoded pixel at normalized
// position (u, v). Grading runs only when grading is true.
func (m *Master) Pixel(c color.RGB, u, v float32, grading bool) color.RGB {
	c = m.Linear(c.ToLinear()).ToSRGB()
	if m.ToneActive {
		c = ApplyTone(c, m.Tone)
	}
	c = c.Clamp01()
	if m.Curves != nil {
		c = m.Curves.Apply(c)
	}
	if m.HSLActive {
		c = ApplyHSL(c, &m.HSL)
	}
	if m.ColorActive {
		c = ApplyColor(c, m.Vibrance, m.Saturation)
	}
	if len(m.Locals) > 0 {
		c = ApplyLocals(c, m.Locals, u, v)
	}
	if grading && m.GradingActive {
		c = m.Grading.Apply(c)
	}
	return c.Clamp01()
}
