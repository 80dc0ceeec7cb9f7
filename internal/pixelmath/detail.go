package pixelmath

import (
	"github.com/gogpu/filmlab/adjust"
	"github.com/gogpu/filmlab/internal/color"
)

// Detail is the resolved detail pass: a small-radius unsharp/denoise step
// and a large-radius clarity step.
type Detail struct {
	SmallActive bool
	SmallSigma  float32
	// Unsharp is the weight of (pixel - small blur); negative values blend
	// toward the blur.
	Unsharp     float32
	ColorNR     float32
	LargeActive bool
	LargeSigma  float32
	Clarity     float32
}

const (
	sharpenGain   = 1.5
	denoiseGain   = 0.6
	textureGain   = 0.6
	colorNRGain   = 0.8
	clarityGain   = 0.6
	claritySigmaK = 0.02
)

// NewDetail resolves the detail sliders of s for a w×h output.
func NewDetail(s *adjust.Set, w, h int) Detail {
	var d Detail
	sharp, nr, tex := pct(s.Sharpening), pct(s.NoiseReduction), pct(s.Texture)
	d.ColorNR = pct(s.ColorNoiseReduction) * colorNRGain
	d.Unsharp = sharpenGain*sharp*(1-0.5*nr) - denoiseGain*nr + textureGain*tex
	if d.Unsharp != 0 || d.ColorNR != 0 {
		d.SmallActive = true
		d.SmallSigma = float32(s.SharpenRadius)
	}
	if s.Clarity != 0 {
		d.LargeActive = true
		d.LargeSigma = claritySigmaK * float32(max(min(w, h), 1))
		d.Clarity = pct(s.Clarity)
	}
	return d
}

// Active reports whether the detail pass changes any pixel.
func (d *Detail) Active() bool {
	return d.SmallActive || d.LargeActive
}

// Small combines a pixel with its small-radius blur.
func (d *Detail) Small(c, blur color.RGB) color.RGB {
	out := c.Add(c.Sub(blur).Scale(d.Unsharp))
	if d.ColorNR > 0 {
		y := out.Luma()
		smooth := blur.Sub(color.Gray(blur.Luma())).Add(color.Gray(y))
		out = out.Mix(smooth, d.ColorNR)
	}
	return out
}

// Large applies clarity against the large-radius blur, weighted toward
// the midtones.
func (d *Detail) Large(c, blur color.RGB) color.RGB {
	y := color.Clamp01(c.Luma())
	w := d.Clarity * clarityGain * 4 * y * (1 - y)
	return c.Add(c.Sub(blur).Scale(w))
}
