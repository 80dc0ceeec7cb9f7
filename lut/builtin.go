package lut

import (
	"math"
	"time"
)

// IdentityID is the id of the built-in identity table.
const IdentityID = "builtin/identity"

// builtinSize is the lattice size of generated stock tables.
const builtinSize = 33

// StockStyle is the compact descriptor a built-in table is generated from.
// All strengths are roughly in [-1, 1].
type StockStyle struct {
	ID   string
	Name string

	Warmth     float64
	Tint       float64
	Saturation float64
	Contrast   float64
	Fade       float64
	Crossover  float64
	Mono       bool

	ShadowTint    [3]float64
	HighlightTint [3]float64
}

// StockStyles lists the generated built-in tables.
var StockStyles = []StockStyle{
	{
		ID: "builtin/studio-neg-400", Name: "Studio Neg 400",
		Warmth: 0.25, Saturation: -0.1, Contrast: -0.15, Fade: 0.2,
		ShadowTint:    [3]float64{-0.02, 0.01, 0.03},
		HighlightTint: [3]float64{0.03, 0.015, -0.02},
	},
	{
		ID: "builtin/slide-chrome-100", Name: "Slide Chrome 100",
		Warmth: -0.05, Saturation: 0.35, Contrast: 0.35,
		ShadowTint:    [3]float64{-0.01, 0, 0.04},
		HighlightTint: [3]float64{0.01, 0.01, -0.01},
	},
	{
		ID: "builtin/mono-pan-400", Name: "Mono Pan 400",
		Contrast: 0.25, Fade: 0.1, Mono: true,
	},
	{
		ID: "builtin/cine-tungsten-500", Name: "Cine Tungsten 500",
		Warmth: -0.45, Tint: 0.05, Saturation: 0.05, Contrast: 0.1, Crossover: 0.3,
		ShadowTint:    [3]float64{-0.03, 0.02, 0.05},
		HighlightTint: [3]float64{0.05, 0.02, -0.03},
	},
	{
		ID: "builtin/faded-instant", Name: "Faded Instant",
		Warmth: 0.3, Tint: -0.1, Saturation: -0.3, Contrast: -0.3, Fade: 0.75,
		ShadowTint:    [3]float64{0.01, 0.02, 0.04},
		HighlightTint: [3]float64{0.04, 0.02, -0.01},
	},
}

// Apply evaluates the style on one color.
func (s StockStyle) Apply(r, g, b float64) (float64, float64, float64) {
	c := [3]float64{r, g, b}

	// Contrast blends toward (or away from) a smoothstep S-curve.
	for i := range c {
		x := clampRange(c[i], 0, 1)
		curve := x * x * (3 - 2*x)
		c[i] = x + (curve-x)*s.Contrast*2
	}

	c[0] += s.Warmth * 0.06
	c[2] -= s.Warmth * 0.06
	c[1] -= s.Tint * 0.04

	if s.Crossover != 0 {
		c[0] += s.Crossover * (c[1] - c[2]) * 0.1
		c[2] += s.Crossover * (c[2] - c[0]) * 0.1
	}

	l := 0.2126*c[0] + 0.7152*c[1] + 0.0722*c[2]
	if s.Mono {
		c = [3]float64{l, l, l}
	} else {
		for i := range c {
			c[i] = l + (c[i]-l)*(1+s.Saturation)
		}
	}

	sw := (1 - l) * (1 - l)
	hw := l * l
	for i := range c {
		c[i] += s.ShadowTint[i]*sw + s.HighlightTint[i]*hw
	}

	lift := s.Fade * 0.08
	for i := range c {
		c[i] = lift + c[i]*(1-lift-s.Fade*0.04)
		c[i] = clampRange(c[i], 0, 1)
	}
	return c[0], c[1], c[2]
}

// Generate builds the style's table at the given size.
func (s StockStyle) Generate(size int) []float32 {
	data := make([]float32, 0, size*size*size*3)
	step := 1 / float64(size-1)
	for b := 0; b < size; b++ {
		for g := 0; g < size; g++ {
			for r := 0; r < size; r++ {
				or, og, ob := s.Apply(float64(r)*step, float64(g)*step, float64(b)*step)
				data = append(data, float32(or), float32(og), float32(ob))
			}
		}
	}
	return data
}

func builtinAsset(id, name string, size int, data []float32) *Asset {
	return &Asset{
		ID:         id,
		Name:       name,
		Format:     FormatCube,
		Size:       size,
		Data:       data,
		Provenance: ProvenanceBuiltin,
		CreatedAt:  time.Time{},
	}
}

func clampRange(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
