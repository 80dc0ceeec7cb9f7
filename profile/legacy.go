package profile

// SeedMode is the legacy grain seeding policy.
type SeedMode string

// Legacy seed modes.
const (
	SeedPerAsset SeedMode = "perAsset"
	SeedLocked   SeedMode = "locked"
	SeedRandom   SeedMode = "random"
)

// Legacy module ids.
const (
	ModuleColorScience = "colorScience"
	ModuleTone         = "tone"
	ModuleScan         = "scan"
	ModuleGrain        = "grain"
	ModuleDefects      = "defects"
)

// Module is one entry of a legacy profile.
type Module struct {
	ID       string             `json:"id"`
	Enabled  bool               `json:"enabled"`
	Amount   float64            `json:"amount"`
	SeedMode SeedMode           `json:"seedMode,omitempty"`
	Params   map[string]float64 `json:"params,omitempty"`
	LUTID    string             `json:"lutId,omitempty"`
}

// param returns the named parameter or def when it is missing.
func (m Module) param(name string, def float64) float64 {
	if v, ok := m.Params[name]; ok {
		return v
	}
	return def
}

// strength is the module amount as a [0,1] factor.
func (m Module) strength() float64 {
	return min(max(m.Amount, 0), 100) / 100
}

// Legacy is the module-list profile format.
type Legacy struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Modules []Module `json:"modules"`
}

// Migrate translates a legacy profile into the layered form. The
// translation is lossy: defects modules and seed modes have no layered
// equivalent and are dropped. There is no inverse.
func Migrate(l Legacy) Profile {
	p := Neutral()
	p.ID = l.ID
	p.Name = l.Name

	for _, m := range l.Modules {
		k := m.strength()
		switch m.ID {
		case ModuleColorScience:
			sat := m.param("saturation", 0)
			warmth := m.param("warmth", 0)
			p.Matrix.Enabled = m.Enabled
			p.Matrix.M = mixMatrix(colorScienceMatrix(sat, warmth), k)
			if m.LUTID != "" {
				p.LUT = LUT{Enabled: m.Enabled, ID: m.LUTID, Intensity: m.param("lutIntensity", 1) * k}
			}
		case ModuleTone:
			p.Tone = Tone{
				Enabled:  m.Enabled,
				Shoulder: m.param("highlightRolloff", 0) * k,
				Toe:      m.param("shadowCrush", 0) * k,
				Gamma:    1 + (m.param("gamma", 1)-1)*k,
			}
		case ModuleScan:
			if v := m.param("halation", 0); v > 0 {
				p.Halation.Enabled = m.Enabled
				p.Halation.Amount = v * k
				p.Halation.Threshold = m.param("halationThreshold", p.Halation.Threshold)
			}
			if v := m.param("bloom", 0); v > 0 {
				p.Bloom.Enabled = m.Enabled
				p.Bloom.Amount = v * k
			}
			if v := m.param("vignette", 0); v != 0 {
				p.Vignette.Enabled = m.Enabled
				p.Vignette.Amount = -v * k
			}
		case ModuleGrain:
			p.Grain = Grain{
				Enabled:   m.Enabled,
				Amount:    m.param("intensity", 0.5) * k,
				Size:      m.param("size", 1),
				Roughness: m.param("roughness", 0.5),
				Color:     m.param("color", 0),
			}
		case ModuleDefects:
			// No layered equivalent.
		}
	}
	p.Clamp()
	return p
}

// colorScienceMatrix builds a saturation-and-warmth matrix.
func colorScienceMatrix(sat, warmth float64) [9]float64 {
	const lr, lg, lb = 0.2126, 0.7152, 0.0722
	s := 1 + sat
	m := [9]float64{
		lr + (1-lr)*s, lg - lg*s, lb - lb*s,
		lr - lr*s, lg + (1-lg)*s, lb - lb*s,
		lr - lr*s, lg - lg*s, lb + (1-lb)*s,
	}
	gain := [3]float64{1 + warmth*0.08, 1, 1 - warmth*0.08}
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			m[row*3+col] *= gain[row]
		}
	}
	return m
}

// mixMatrix moves m toward identity by 1-k.
func mixMatrix(m [9]float64, k float64) [9]float64 {
	for i := range m {
		m[i] = IdentityMatrix[i] + (m[i]-IdentityMatrix[i])*k
	}
	return m
}
