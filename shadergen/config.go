// Package shadergen emits the WGSL compute programs used by the GPU tiers.
//
// A Config selects which master and film features a program family carries.
// Generate assembles the uniform block, bindings and step code of the enabled
// features in a fixed order, appends the shared helper library, and strips
// the helpers that no longer have a caller. The output for a given Config is
// byte-stable, so generated programs can be diffed against a checked-in copy
// (see cmd/filmlab-shadergen).
//
// Generation runs once per pipeline, never per render.
package shadergen

// MasterFeatures selects the optional steps of the master adjustment family.
type MasterFeatures struct {
	WhiteBalance bool
	Dehaze       bool
	Tone         bool
	Curves       bool
	HSL          bool
	Color        bool
	ColorGrading bool
	Locals       bool
}

// FilmFeatures selects the optional steps of the film simulation family.
type FilmFeatures struct {
	ToneResponse bool
	ColorMatrix  bool
	LUT          bool
	ColorCast    bool
	Grain        bool
	Vignette     bool
	Halation     bool
	Bloom        bool
}

// Config is the enablement set of both program families. It is comparable
// and used as a cache key.
type Config struct {
	Master MasterFeatures
	Film   FilmFeatures
}

// AllFeatures enables every feature of both families.
func AllFeatures() Config {
	return Config{
		Master: MasterFeatures{
			WhiteBalance: true,
			Dehaze:       true,
			Tone:         true,
			Curves:       true,
			HSL:          true,
			Color:        true,
			ColorGrading: true,
			Locals:       true,
		},
		Film: FilmFeatures{
			ToneResponse: true,
			ColorMatrix:  true,
			LUT:          true,
			ColorCast:    true,
			Grain:        true,
			Vignette:     true,
			Halation:     true,
			Bloom:        true,
		},
	}
}

// Glow reports whether the halation/bloom programs are needed.
func (f FilmFeatures) Glow() bool {
	return f.Halation || f.Bloom
}
