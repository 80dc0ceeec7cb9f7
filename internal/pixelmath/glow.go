package pixelmath

import (
	"github.com/gogpu/filmlab/internal/color"
	"github.com/gogpu/filmlab/profile"
)

// Glow is the resolved halation and bloom pass. Both share one blur of the
// bright-pass image: RGB carries bloom, alpha carries halation.
type Glow struct {
	HalationAmount, HalationThreshold float32
	HalationTint                      color.RGB
	BloomAmount, BloomThreshold       float32
	Sigma                             float32
}

const glowSigmaK = 0.05

func resolveGlow(p *profile.Profile, w, h int) (Glow, bool, bool) {
	var g Glow
	hal := p.Halation.Enabled && p.Halation.Amount > 0
	bloom := p.Bloom.Enabled && p.Bloom.Amount > 0
	var radius float64
	if hal {
		g.HalationAmount = float32(p.Halation.Amount)
		g.HalationThreshold = float32(p.Halation.Threshold)
		g.HalationTint = vec3(p.Halation.Tint)
		radius = p.Halation.Radius
	}
	if bloom {
		g.BloomAmount = float32(p.Bloom.Amount)
		g.BloomThreshold = float32(p.Bloom.Threshold)
		radius = max(radius, p.Bloom.Radius)
	}
	g.Sigma = max(float32(radius)*glowSigmaK*float32(max(min(w, h), 1)), 0.5)
	return g, hal, bloom
}

// BrightPass extracts the bloom source (RGB) and the halation source
// (alpha) from a film pixel.
func (g *Glow) BrightPass(c color.RGB) [4]float32 {
	bt := g.BloomThreshold
	bk := 1 / max(1-bt, 1e-3)
	ht := g.HalationThreshold
	a := max(0, c.Luma()-ht) / max(1-ht, 1e-3)
	return [4]float32{
		max(0, c.R-bt) * bk,
		max(0, c.G-bt) * bk,
		max(0, c.B-bt) * bk,
		a,
	}
}

// Composite adds the blurred bright pass to c.
func (g *Glow) Composite(c color.RGB, blur [4]float32) color.RGB {
	bloom := color.RGB{R: blur[0], G: blur[1], B: blur[2]}.Scale(g.BloomAmount)
	hal := g.HalationTint.Scale(blur[3] * g.HalationAmount)
	return c.Add(bloom).Add(hal).Clamp01()
}
