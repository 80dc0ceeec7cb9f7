// Package color provides the transfer functions and color-model conversions
// shared by every render tier.
//
// All functions operate on float32 components so the CPU tier rounds the
// same way the WGSL programs do. The sRGB curves follow IEC 61966-2-1.
package color

import "math"

// Luma weights (Rec. 709), applied to encoded values throughout the pipeline.
const (
	LumaR = 0.2126
	LumaG = 0.7152
	LumaB = 0.0722
)

// RGB is a float triple. Components are not clamped.
type RGB struct {
	R, G, B float32
}

// Luma returns the Rec. 709 weighted sum of c.
func (c RGB) Luma() float32 {
	return c.R*LumaR + c.G*LumaG + c.B*LumaB
}

// Scale multiplies every component by k.
func (c RGB) Scale(k float32) RGB {
	return RGB{c.R * k, c.G * k, c.B * k}
}

// Add returns c + o component-wise.
func (c RGB) Add(o RGB) RGB {
	return RGB{c.R + o.R, c.G + o.G, c.B + o.B}
}

// Sub returns c - o component-wise.
func (c RGB) Sub(o RGB) RGB {
	return RGB{c.R - o.R, c.G - o.G, c.B - o.B}
}

// Mul returns c * o component-wise.
func (c RGB) Mul(o RGB) RGB {
	return RGB{c.R * o.R, c.G * o.G, c.B * o.B}
}

// Mix linearly interpolates between c and o.
func (c RGB) Mix(o RGB, t float32) RGB {
	return RGB{c.R + (o.R-c.R)*t, c.G + (o.G-c.G)*t, c.B + (o.B-c.B)*t}
}

// Clamp01 clamps every component to [0,1].
func (c RGB) Clamp01() RGB {
	return RGB{Clamp01(c.R), Clamp01(c.G), Clamp01(c.B)}
}

// Max0 replaces negative components with zero.
func (c RGB) Max0() RGB {
	return RGB{max(c.R, 0), max(c.G, 0), max(c.B, 0)}
}

// Gray returns a triple with all components set to v.
func Gray(v float32) RGB { return RGB{v, v, v} }

// SRGBToLinear converts an sRGB component to linear light.
func SRGBToLinear(s float32) float32 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return float32(math.Pow(float64((s+0.055)/1.055), 2.4))
}

// LinearToSRGB converts a linear component to sRGB. Negative input maps to 0;
// values above 1 continue along the curve.
func LinearToSRGB(l float32) float32 {
	if l <= 0 {
		return 0
	}
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*float32(math.Pow(float64(l), 1.0/2.4)) - 0.055
}

// ToLinear converts all three components to linear light.
func (c RGB) ToLinear() RGB {
	return RGB{SRGBToLinear(c.R), SRGBToLinear(c.G), SRGBToLinear(c.B)}
}

// ToSRGB converts all three components from linear light to sRGB.
func (c RGB) ToSRGB() RGB {
	return RGB{LinearToSRGB(c.R), LinearToSRGB(c.G), LinearToSRGB(c.B)}
}

// Clamp01 clamps v to [0,1].
func Clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Smoothstep is the GLSL/WGSL smoothstep. It tolerates e0 > e1.
func Smoothstep(e0, e1, x float32) float32 {
	t := Clamp01((x - e0) / (e1 - e0))
	return t * t * (3 - 2*t)
}

// Fract returns x - floor(x).
func Fract(x float32) float32 {
	return x - float32(math.Floor(float64(x)))
}
