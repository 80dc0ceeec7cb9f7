package profile

import "slices"

// presets are the built-in layered profiles. Each references the built-in
// LUT generated from the stock style of the same name.
var presets = map[string]Profile{
	"neutral": Neutral(),
	"studio-neg-400": func() Profile {
		p := Neutral()
		p.ID, p.Name = "studio-neg-400", "Studio Neg 400"
		p.Tone = Tone{Enabled: true, Shoulder: 0.35, Toe: 0.2, Gamma: 0.95}
		p.LUT = LUT{Enabled: true, ID: "builtin/studio-neg-400", Intensity: 0.85}
		p.Halation = Halation{Enabled: true, Amount: 0.15, Threshold: 0.8, Radius: 0.4, Tint: [3]float64{1, 0.35, 0.12}}
		p.Grain = Grain{Enabled: true, Amount: 0.25, Size: 1.2, Roughness: 0.5, Color: 0.1}
		return p
	}(),
	"slide-chrome-100": func() Profile {
		p := Neutral()
		p.ID, p.Name = "slide-chrome-100", "Slide Chrome 100"
		p.Tone = Tone{Enabled: true, Shoulder: 0.1, Toe: 0.45, Gamma: 1.05}
		p.LUT = LUT{Enabled: true, ID: "builtin/slide-chrome-100", Intensity: 1}
		p.Vignette = Vignette{Enabled: true, Amount: -0.2, Midpoint: 0.55, Feather: 0.6}
		p.Grain = Grain{Enabled: true, Amount: 0.1, Size: 0.8, Roughness: 0.3}
		return p
	}(),
	"mono-pan-400": func() Profile {
		p := Neutral()
		p.ID, p.Name = "mono-pan-400", "Mono Pan 400"
		p.Tone = Tone{Enabled: true, Shoulder: 0.25, Toe: 0.3, Gamma: 1}
		p.LUT = LUT{Enabled: true, ID: "builtin/mono-pan-400", Intensity: 1}
		p.Grain = Grain{Enabled: true, Amount: 0.4, Size: 1.5, Roughness: 0.7}
		p.Vignette = Vignette{Enabled: true, Amount: -0.15, Midpoint: 0.5, Feather: 0.5}
		return p
	}(),
	"cine-tungsten-500": func() Profile {
		p := Neutral()
		p.ID, p.Name = "cine-tungsten-500", "Cine Tungsten 500"
		p.Tone = Tone{Enabled: true, Shoulder: 0.4, Toe: 0.15, Gamma: 1}
		p.Matrix = Matrix{Enabled: true, M: [9]float64{1.05, -0.03, -0.02, -0.02, 1.02, 0, 0, -0.04, 1.04}}
		p.LUT = LUT{Enabled: true, ID: "builtin/cine-tungsten-500", Intensity: 0.9}
		p.Halation = Halation{Enabled: true, Amount: 0.3, Threshold: 0.7, Radius: 0.6, Tint: [3]float64{1, 0.3, 0.1}}
		p.Bloom = Bloom{Enabled: true, Amount: 0.15, Threshold: 0.85, Radius: 0.5}
		p.Grain = Grain{Enabled: true, Amount: 0.3, Size: 1.3, Roughness: 0.6, Color: 0.2}
		return p
	}(),
	"faded-instant": func() Profile {
		p := Neutral()
		p.ID, p.Name = "faded-instant", "Faded Instant"
		p.Tone = Tone{Enabled: true, Shoulder: 0.5, Toe: 0, Gamma: 0.9}
		p.LUT = LUT{Enabled: true, ID: "builtin/faded-instant", Intensity: 1}
		p.Cast = Cast{Enabled: true, Shadows: [3]float64{0, 0.02, 0.04}, Highlights: [3]float64{0.03, 0.01, -0.02}}
		p.Vignette = Vignette{Enabled: true, Amount: -0.3, Midpoint: 0.45, Roundness: 0.3, Feather: 0.7}
		p.Bloom = Bloom{Enabled: true, Amount: 0.1, Threshold: 0.75, Radius: 0.7}
		return p
	}(),
}

// Preset returns a copy of the built-in profile with the given id.
func Preset(id string) (Profile, bool) {
	p, ok := presets[id]
	return p, ok
}

// PresetIDs returns the built-in profile ids, sorted.
func PresetIDs() []string {
	ids := make([]string, 0, len(presets))
	for id := range presets {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
