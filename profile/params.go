package profile

import (
	"fmt"
	"math"
)

// param describes one numeric layer parameter.
type param struct {
	min, max float64
	// strength marks parameters scaled by intensity, toward neutral.
	strength bool
	neutral  float64
	ref      func(*Profile) *float64
}

var params = map[string]map[string]param{
	LayerTone: {
		"shoulder": {0, 1, true, 0, func(p *Profile) *float64 { return &p.Tone.Shoulder }},
		"toe":      {0, 1, true, 0, func(p *Profile) *float64 { return &p.Tone.Toe }},
		"gamma":    {0.5, 2, true, 1, func(p *Profile) *float64 { return &p.Tone.Gamma }},
	},
	LayerMatrix: matrixParams(),
	LayerLUT: {
		"intensity": {0, 1, true, 0, func(p *Profile) *float64 { return &p.LUT.Intensity }},
	},
	LayerCast: castParams(),
	LayerHalation: {
		"amount":    {0, 1, true, 0, func(p *Profile) *float64 { return &p.Halation.Amount }},
		"threshold": {0, 1, false, 0, func(p *Profile) *float64 { return &p.Halation.Threshold }},
		"radius":    {0, 1, false, 0, func(p *Profile) *float64 { return &p.Halation.Radius }},
		"tintR":     {0, 1, false, 0, func(p *Profile) *float64 { return &p.Halation.Tint[0] }},
		"tintG":     {0, 1, false, 0, func(p *Profile) *float64 { return &p.Halation.Tint[1] }},
		"tintB":     {0, 1, false, 0, func(p *Profile) *float64 { return &p.Halation.Tint[2] }},
	},
	LayerBloom: {
		"amount":    {0, 1, true, 0, func(p *Profile) *float64 { return &p.Bloom.Amount }},
		"threshold": {0, 1, false, 0, func(p *Profile) *float64 { return &p.Bloom.Threshold }},
		"radius":    {0, 1, false, 0, func(p *Profile) *float64 { return &p.Bloom.Radius }},
	},
	LayerGrain: {
		"amount":    {0, 1, true, 0, func(p *Profile) *float64 { return &p.Grain.Amount }},
		"size":      {0.5, 4, false, 0, func(p *Profile) *float64 { return &p.Grain.Size }},
		"roughness": {0, 1, false, 0, func(p *Profile) *float64 { return &p.Grain.Roughness }},
		"color":     {0, 1, false, 0, func(p *Profile) *float64 { return &p.Grain.Color }},
	},
	LayerVignette: {
		"amount":    {-1, 1, true, 0, func(p *Profile) *float64 { return &p.Vignette.Amount }},
		"midpoint":  {0, 1, false, 0, func(p *Profile) *float64 { return &p.Vignette.Midpoint }},
		"roundness": {-1, 1, false, 0, func(p *Profile) *float64 { return &p.Vignette.Roundness }},
		"feather":   {0, 1, false, 0, func(p *Profile) *float64 { return &p.Vignette.Feather }},
	},
}

func matrixParams() map[string]param {
	out := make(map[string]param, 9)
	for i := 0; i < 9; i++ {
		out[fmt.Sprintf("m%d%d", i/3, i%3)] = param{
			min: -2, max: 2, strength: true, neutral: IdentityMatrix[i],
			ref: func(p *Profile) *float64 { return &p.Matrix.M[i] },
		}
	}
	return out
}

func castParams() map[string]param {
	out := make(map[string]param, 9)
	zones := []struct {
		name string
		ref  func(*Profile) *[3]float64
	}{
		{"shadows", func(p *Profile) *[3]float64 { return &p.Cast.Shadows }},
		{"midtones", func(p *Profile) *[3]float64 { return &p.Cast.Midtones }},
		{"highlights", func(p *Profile) *[3]float64 { return &p.Cast.Highlights }},
	}
	for _, z := range zones {
		for ch, suffix := range []string{"R", "G", "B"} {
			out[z.name+suffix] = param{
				min: -0.2, max: 0.2, strength: true,
				ref: func(p *Profile) *float64 { return &z.ref(p)[ch] },
			}
		}
	}
	return out
}

// Set assigns one parameter. The key "enabled" toggles the layer (non-zero
// enables). Unknown layers or parameters and non-finite values are ignored
// and reported as false.
func (p *Profile) Set(layer, name string, v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	if name == "enabled" {
		if e := p.enabledFlag(layer); e != nil {
			*e = v != 0
			return true
		}
		return false
	}
	pr, ok := params[layer][name]
	if !ok {
		return false
	}
	*pr.ref(p) = v
	return true
}

// Get returns one parameter value.
func (p *Profile) Get(layer, name string) (float64, bool) {
	pr, ok := params[layer][name]
	if !ok {
		return 0, false
	}
	return *pr.ref(p), true
}

// Clamp brings every parameter into its range; non-finite values become
// the neutral value.
func (p *Profile) Clamp() {
	for _, layer := range params {
		for _, pr := range layer {
			v := pr.ref(p)
			if math.IsNaN(*v) || math.IsInf(*v, 0) {
				*v = pr.neutral
			}
			*v = min(max(*v, pr.min), pr.max)
		}
	}
}

// scaleStrength moves every strength parameter toward its neutral value by
// factor k (1 keeps the profile, 0 neutralizes it). Enables and shape
// parameters are untouched.
func (p *Profile) scaleStrength(k float64) {
	for _, layer := range params {
		for _, pr := range layer {
			if !pr.strength {
				continue
			}
			v := pr.ref(p)
			*v = pr.neutral + (*v-pr.neutral)*k
		}
	}
}
