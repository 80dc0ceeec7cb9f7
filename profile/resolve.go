package profile

// Overrides holds per-asset parameter overrides: layer -> param -> value.
type Overrides map[string]map[string]float64

// Input selects the base profile and its per-asset changes.
type Input struct {
	// Record is an explicit profile; it wins over PresetID.
	Record *Record

	// PresetID names a built-in profile. Unknown ids resolve to neutral.
	PresetID string

	// Intensity is a percentage in [0,100] scaling every strength
	// parameter toward neutral. The zero value is 0%, which neutralizes
	// the profile: pass 100 for the profile as authored. NaN counts as 0.
	Intensity float64

	Overrides Overrides
}

// Resolve returns the effective profile. It never mutates the record or
// the shared presets.
//
//	p := profile.Resolve(profile.Input{PresetID: "studio-neg-400", Intensity: 100})
func Resolve(in Input) Profile {
	var p Profile
	switch {
	case in.Record != nil:
		p = in.Record.Profile()
	default:
		var ok bool
		if p, ok = Preset(in.PresetID); !ok {
			p = Neutral()
		}
	}

	for layer, values := range in.Overrides {
		for name, v := range values {
			p.Set(layer, name, v)
		}
	}
	p.Clamp()

	k := 0.0
	if in.Intensity > 0 {
		k = min(in.Intensity, 100) / 100
	}
	if k != 1 {
		p.scaleStrength(k)
	}
	return p
}
