// Package profile models film profiles and resolves the effective profile
// for a render.
//
// A profile is either the current layered form (Profile) or the legacy
// module list (Legacy). Legacy profiles are converted by Migrate, a pure
// one-way translation. Resolve combines a base profile with per-asset
// overrides and an intensity percentage.
package profile

// Layer names, used as override keys.
const (
	LayerTone     = "tone"
	LayerMatrix   = "matrix"
	LayerLUT      = "lut"
	LayerCast     = "cast"
	LayerHalation = "halation"
	LayerBloom    = "bloom"
	LayerGrain    = "grain"
	LayerVignette = "vignette"
)

// Layers lists the layer names in evaluation order.
var Layers = []string{
	LayerTone, LayerMatrix, LayerLUT, LayerCast,
	LayerGrain, LayerVignette, LayerHalation, LayerBloom,
}

// Tone shapes the film response curve.
type Tone struct {
	Enabled  bool    `json:"enabled"`
	Shoulder float64 `json:"shoulder"`
	Toe      float64 `json:"toe"`
	Gamma    float64 `json:"gamma"`
}

// Matrix is a row-major 3×3 color mix.
type Matrix struct {
	Enabled bool       `json:"enabled"`
	M       [9]float64 `json:"m"`
}

// LUT applies a registered 3D lookup table.
type LUT struct {
	Enabled   bool    `json:"enabled"`
	ID        string  `json:"id"`
	Intensity float64 `json:"intensity"`
}

// Cast adds per-zone RGB offsets.
type Cast struct {
	Enabled    bool       `json:"enabled"`
	Shadows    [3]float64 `json:"shadows"`
	Midtones   [3]float64 `json:"midtones"`
	Highlights [3]float64 `json:"highlights"`
}

// Halation is the red glow around bright edges.
type Halation struct {
	Enabled   bool       `json:"enabled"`
	Amount    float64    `json:"amount"`
	Threshold float64    `json:"threshold"`
	Radius    float64    `json:"radius"`
	Tint      [3]float64 `json:"tint"`
}

// Bloom is the neutral glow of highlights.
type Bloom struct {
	Enabled   bool    `json:"enabled"`
	Amount    float64 `json:"amount"`
	Threshold float64 `json:"threshold"`
	Radius    float64 `json:"radius"`
}

// Grain is the film grain layer.
type Grain struct {
	Enabled   bool    `json:"enabled"`
	Amount    float64 `json:"amount"`
	Size      float64 `json:"size"`
	Roughness float64 `json:"roughness"`
	Color     float64 `json:"color"`
}

// Vignette darkens (negative) or lightens (positive) the frame edges.
type Vignette struct {
	Enabled   bool    `json:"enabled"`
	Amount    float64 `json:"amount"`
	Midpoint  float64 `json:"midpoint"`
	Roundness float64 `json:"roundness"`
	Feather   float64 `json:"feather"`
}

// Profile is the layered film profile.
type Profile struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Tone     Tone     `json:"tone"`
	Matrix   Matrix   `json:"matrix"`
	LUT      LUT      `json:"lut"`
	Cast     Cast     `json:"cast"`
	Halation Halation `json:"halation"`
	Bloom    Bloom    `json:"bloom"`
	Grain    Grain    `json:"grain"`
	Vignette Vignette `json:"vignette"`
}

// IdentityMatrix is the neutral color matrix.
var IdentityMatrix = [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}

// Neutral returns a profile with every layer disabled and at its neutral
// parameters.
func Neutral() Profile {
	return Profile{
		ID:       "neutral",
		Name:     "Neutral",
		Tone:     Tone{Gamma: 1},
		Matrix:   Matrix{M: IdentityMatrix},
		Halation: Halation{Threshold: 0.75, Radius: 0.5, Tint: [3]float64{1, 0.35, 0.12}},
		Bloom:    Bloom{Threshold: 0.8, Radius: 0.5},
		Grain:    Grain{Size: 1, Roughness: 0.5},
		Vignette: Vignette{Midpoint: 0.5, Feather: 0.5},
	}
}

// Enabled reports whether the named layer is enabled.
func (p *Profile) Enabled(layer string) bool {
	if e := p.enabledFlag(layer); e != nil {
		return *e
	}
	return false
}

func (p *Profile) enabledFlag(layer string) *bool {
	switch layer {
	case LayerTone:
		return &p.Tone.Enabled
	case LayerMatrix:
		return &p.Matrix.Enabled
	case LayerLUT:
		return &p.LUT.Enabled
	case LayerCast:
		return &p.Cast.Enabled
	case LayerHalation:
		return &p.Halation.Enabled
	case LayerBloom:
		return &p.Bloom.Enabled
	case LayerGrain:
		return &p.Grain.Enabled
	case LayerVignette:
		return &p.Vignette.Enabled
	}
	return nil
}

// AnyEnabled reports whether at least one layer is enabled.
func (p *Profile) AnyEnabled() bool {
	for _, l := range Layers {
		if p.Enabled(l) {
			return true
		}
	}
	return false
}
