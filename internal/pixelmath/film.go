package pixelmath

import (
	"math"

	"github.com/gogpu/filmlab/adjust"
	"github.com/gogpu/filmlab/internal/color"
	"github.com/gogpu/filmlab/lut"
	"github.com/gogpu/filmlab/profile"
)

// Vignette is one resolved vignette. Amount 0 disables it.
type Vignette struct {
	Amount, Midpoint, Roundness, Feather float32
}

// Film is the resolved parameter block of the film program.
type Film struct {
	W, H int
	Seed uint32

	ToneActive           bool
	Gamma, Toe, Shoulder float32

	MatrixActive bool
	Matrix       [9]float32

	LUT          *lut.Asset
	LUTIntensity float32

	CastActive bool
	Cast       [3]color.RGB // shadows, midtones, highlights

	GrainActive bool
	Grain       Grain

	// Frame is the adjustment vignette; FilmVignette the profile layer.
	Frame, FilmVignette Vignette

	HalationActive, BloomActive bool
	Glow                        Glow
}

const (
	curveShape     = 0.15
	grainReference = 1000
)

func vec3(v [3]float64) color.RGB {
	return color.RGB{R: float32(v[0]), G: float32(v[1]), B: float32(v[2])}
}

// NewFilm resolves the film parameters of profile p and the adjustment
// grain and vignette sliders of s for a w×h output. asset is the LUT named
// by the profile, or nil when it is disabled or missing.
func NewFilm(p *profile.Profile, s *adjust.Set, asset *lut.Asset, seed uint32, w, h int) Film {
	f := Film{W: w, H: h, Seed: seed}
	if p.Tone.Enabled {
		f.ToneActive = true
		f.Gamma = float32(p.Tone.Gamma)
		f.Toe = float32(p.Tone.Toe)
		f.Shoulder = float32(p.Tone.Shoulder)
	}
	if p.Matrix.Enabled && p.Matrix.M != profile.IdentityMatrix {
		f.MatrixActive = true
		for i, v := range p.Matrix.M {
			f.Matrix[i] = float32(v)
		}
	}
	if p.LUT.Enabled && asset != nil && p.LUT.Intensity > 0 {
		f.LUT = asset
		f.LUTIntensity = float32(p.LUT.Intensity)
	}
	if p.Cast.Enabled {
		f.CastActive = true
		f.Cast = [3]color.RGB{vec3(p.Cast.Shadows), vec3(p.Cast.Midtones), vec3(p.Cast.Highlights)}
	}
	f.Grain, f.GrainActive = resolveGrain(p, s, w, h)
	if s.VignetteAmount != 0 {
		f.Frame = Vignette{
			Amount:    pct(s.VignetteAmount),
			Midpoint:  pct(s.VignetteMidpoint),
			Roundness: pct(s.VignetteRoundness),
			Feather:   pct(s.VignetteFeather),
		}
	}
	if p.Vignette.Enabled && p.Vignette.Amount != 0 {
		f.FilmVignette = Vignette{
			Amount:    float32(p.Vignette.Amount),
			Midpoint:  float32(p.Vignette.Midpoint),
			Roundness: float32(p.Vignette.Roundness),
			Feather:   float32(p.Vignette.Feather),
		}
	}
	f.Glow, f.HalationActive, f.BloomActive = resolveGlow(p, w, h)
	return f
}

// resolveGrain merges the grain sliders with the film grain layer: the
// amounts add, and the layer's shape wins when it is enabled.
func resolveGrain(p *profile.Profile, s *adjust.Set, w, h int) (Grain, bool) {
	amount := pct(s.GrainAmount)
	size := 0.5 + 3.5*pct(s.GrainSize)
	rough := pct(s.GrainRoughness)
	var chroma float32
	if p.Grain.Enabled && p.Grain.Amount > 0 {
		amount += float32(p.Grain.Amount)
		size = float32(p.Grain.Size)
		rough = float32(p.Grain.Roughness)
		chroma = float32(p.Grain.Color)
	}
	if amount <= 0 {
		return Grain{}, false
	}
	short := float32(max(min(w, h), 1))
	return Grain{
		Amount:    min(amount, 1),
		Scale:     grainReference / short / size,
		Roughness: rough,
		Color:     chroma,
	}, true
}

// ToneResponse applies gamma, toe and shoulder to one channel.
func ToneResponse(v, gamma, toe, shoulder float32) float32 {
	v = pow32(max(v, 0), gamma)
	s := sin32(math.Pi * v)
	v -= toe * curveShape * s * (1 - v)
	v += shoulder * curveShape * s * v
	return v
}

// ApplyMatrix multiplies c by the row-major 3×3 matrix m.
func ApplyMatrix(c color.RGB, m *[9]float32) color.RGB {
	return color.RGB{
		R: m[0]*c.R + m[1]*c.G + m[2]*c.B,
		G: m[3]*c.R + m[4]*c.G + m[5]*c.B,
		B: m[6]*c.R + m[7]*c.G + m[8]*c.B,
	}
}

// ApplyCast adds the zone offsets weighted by luminance.
func ApplyCast(c color.RGB, cast *[3]color.RGB) color.RGB {
	y := c.Luma()
	ws := 1 - color.Smoothstep(0, 0.5, y)
	wh := color.Smoothstep(0.5, 1, y)
	wm := max(0, 1-ws-wh)
	return c.Add(cast[0].Scale(ws)).Add(cast[1].Scale(wm)).Add(cast[2].Scale(wh))
}

// ApplyVignette darkens (amount < 0) or lightens (amount > 0) toward the
// frame edge. aspect is width / height.
func ApplyVignette(c color.RGB, v Vignette, u, w, aspect float32) color.RGB {
	if v.Amount == 0 {
		return c
	}
	px := (u - 0.5) * 2
	py := (w - 0.5) * 2
	if v.Roundness > 0 {
		px *= 1 + (aspect-1)*v.Roundness
	}
	d := sqrt32(px*px + py*py)
	if v.Roundness < 0 {
		d += (max(abs32(px), abs32(py)) - d) * -v.Roundness
	}
	start := 0.3 + v.Midpoint*0.9
	m := color.Smoothstep(start, start+max(v.Feather, 0.01), d)
	if v.Amount < 0 {
		return c.Scale(1 + v.Amount*m)
	}
	return c.Mix(color.Gray(1), v.Amount*m)
}

// Pixel runs the film program on c at output pixel (x, y).
func (f *Film) Pixel(c color.RGB, x, y int) color.RGB {
	if f.ToneActive {
		c = color.RGB{
			R: ToneResponse(c.R, f.Gamma, f.Toe, f.Shoulder),
			G: ToneResponse(c.G, f.Gamma, f.Toe, f.Shoulder),
			B: ToneResponse(c.B, f.Gamma, f.Toe, f.Shoulder),
		}
	}
	if f.MatrixActive {
		c = ApplyMatrix(c, &f.Matrix)
	}
	if f.LUT != nil {
		in := c.Clamp01()
		r, g, b := f.LUT.Sample(in.R, in.G, in.B)
		c = c.Mix(color.RGB{R: r, G: g, B: b}, f.LUTIntensity)
	}
	if f.CastActive {
		c = ApplyCast(c, &f.Cast)
	}
	if f.GrainActive {
		c = ApplyGrain(c, &f.Grain, x, y, f.Seed)
	}
	u := (float32(x) + 0.5) / float32(f.W)
	v := (float32(y) + 0.5) / float32(f.H)
	aspect := float32(f.W) / float32(f.H)
	c = ApplyVignette(c, f.Frame, u, v, aspect)
	c = ApplyVignette(c, f.FilmVignette, u, v, aspect)
	return c.Clamp01()
}
