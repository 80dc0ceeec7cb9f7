package adjust

import "math"

// field describes one bounded scalar and how to reach it in the canonical
// and the raw record.
type field[S, R any] struct {
	name          string
	min, max, def float64
	// wrap folds the value into [min, max) instead of clamping it.
	wrap bool
	set  func(*S) *float64
	raw  func(*R) **float64
}

// resolve picks the raw value when present and finite, else base, else the
// field default, and brings the result into range.
func (f field[S, R]) resolve(base float64, p *float64) float64 {
	v := base
	if p != nil && finite(*p) {
		v = *p
	}
	if !finite(v) {
		v = f.def
	}
	if f.wrap {
		span := f.max - f.min
		v = math.Mod(v-f.min, span)
		if v < 0 {
			v += span
		}
		return v + f.min
	}
	return min(max(v, f.min), f.max)
}

// apply resolves every field of fields from base and raw into dst. raw may
// be nil.
func apply[S, R any](dst, base *S, raw *R, fields []field[S, R]) {
	for _, f := range fields {
		var p *float64
		if raw != nil {
			p = *f.raw(raw)
		}
		*f.set(dst) = f.resolve(*f.set(base), p)
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FieldInfo describes the range of one top-level scalar.
type FieldInfo struct {
	Name    string
	Min     float64
	Max     float64
	Default float64
}

// Fields returns the range table of the top-level scalar sliders.
func Fields() []FieldInfo {
	out := make([]FieldInfo, len(scalarFields))
	for i, f := range scalarFields {
		out[i] = FieldInfo{f.name, f.min, f.max, f.def}
	}
	return out
}

// Get returns the value of the named top-level scalar.
func (s *Set) Get(name string) (float64, bool) {
	for _, f := range scalarFields {
		if f.name == name {
			return *f.set(s), true
		}
	}
	return 0, false
}

type scalarField = field[Set, Raw]

func slider(name string, set func(*Set) *float64, raw func(*Raw) **float64) scalarField {
	return scalarField{name: name, min: -100, max: 100, set: set, raw: raw}
}

var scalarFields = []scalarField{
	{name: "exposure", min: -5, max: 5, set: func(s *Set) *float64 { return &s.Exposure }, raw: func(r *Raw) **float64 { return &r.Exposure }},
	slider("contrast", func(s *Set) *float64 { return &s.Contrast }, func(r *Raw) **float64 { return &r.Contrast }),
	slider("highlights", func(s *Set) *float64 { return &s.Highlights }, func(r *Raw) **float64 { return &r.Highlights }),
	slider("shadows", func(s *Set) *float64 { return &s.Shadows }, func(r *Raw) **float64 { return &r.Shadows }),
	slider("whites", func(s *Set) *float64 { return &s.Whites }, func(r *Raw) **float64 { return &r.Whites }),
	slider("blacks", func(s *Set) *float64 { return &s.Blacks }, func(r *Raw) **float64 { return &r.Blacks }),
	slider("temperature", func(s *Set) *float64 { return &s.Temperature }, func(r *Raw) **float64 { return &r.Temperature }),
	slider("tint", func(s *Set) *float64 { return &s.Tint }, func(r *Raw) **float64 { return &r.Tint }),
	slider("vibrance", func(s *Set) *float64 { return &s.Vibrance }, func(r *Raw) **float64 { return &r.Vibrance }),
	slider("saturation", func(s *Set) *float64 { return &s.Saturation }, func(r *Raw) **float64 { return &r.Saturation }),
	slider("clarity", func(s *Set) *float64 { return &s.Clarity }, func(r *Raw) **float64 { return &r.Clarity }),
	slider("dehaze", func(s *Set) *float64 { return &s.Dehaze }, func(r *Raw) **float64 { return &r.Dehaze }),
	slider("texture", func(s *Set) *float64 { return &s.Texture }, func(r *Raw) **float64 { return &r.Texture }),
	slider("curveHighlights", func(s *Set) *float64 { return &s.CurveHighlights }, func(r *Raw) **float64 { return &r.CurveHighlights }),
	slider("curveLights", func(s *Set) *float64 { return &s.CurveLights }, func(r *Raw) **float64 { return &r.CurveLights }),
	slider("curveDarks", func(s *Set) *float64 { return &s.CurveDarks }, func(r *Raw) **float64 { return &r.CurveDarks }),
	slider("curveShadows", func(s *Set) *float64 { return &s.CurveShadows }, func(r *Raw) **float64 { return &r.CurveShadows }),
	{name: "sharpening", min: 0, max: 100, set: func(s *Set) *float64 { return &s.Sharpening }, raw: func(r *Raw) **float64 { return &r.Sharpening }},
	{name: "sharpenRadius", min: 0.5, max: 3, def: 1, set: func(s *Set) *float64 { return &s.SharpenRadius }, raw: func(r *Raw) **float64 { return &r.SharpenRadius }},
	{name: "noiseReduction", min: 0, max: 100, set: func(s *Set) *float64 { return &s.NoiseReduction }, raw: func(r *Raw) **float64 { return &r.NoiseReduction }},
	{name: "colorNoiseReduction", min: 0, max: 100, set: func(s *Set) *float64 { return &s.ColorNoiseReduction }, raw: func(r *Raw) **float64 { return &r.ColorNoiseReduction }},
	slider("vignetteAmount", func(s *Set) *float64 { return &s.VignetteAmount }, func(r *Raw) **float64 { return &r.VignetteAmount }),
	{name: "vignetteMidpoint", min: 0, max: 100, def: 50, set: func(s *Set) *float64 { return &s.VignetteMidpoint }, raw: func(r *Raw) **float64 { return &r.VignetteMidpoint }},
	{name: "vignetteFeather", min: 0, max: 100, def: 50, set: func(s *Set) *float64 { return &s.VignetteFeather }, raw: func(r *Raw) **float64 { return &r.VignetteFeather }},
	slider("vignetteRoundness", func(s *Set) *float64 { return &s.VignetteRoundness }, func(r *Raw) **float64 { return &r.VignetteRoundness }),
	{name: "grainAmount", min: 0, max: 100, set: func(s *Set) *float64 { return &s.GrainAmount }, raw: func(r *Raw) **float64 { return &r.GrainAmount }},
	{name: "grainSize", min: 0, max: 100, def: 25, set: func(s *Set) *float64 { return &s.GrainSize }, raw: func(r *Raw) **float64 { return &r.GrainSize }},
	{name: "grainRoughness", min: 0, max: 100, def: 50, set: func(s *Set) *float64 { return &s.GrainRoughness }, raw: func(r *Raw) **float64 { return &r.GrainRoughness }},
}

var hslFields = []field[HSLBand, RawHSLBand]{
	{name: "hue", min: -100, max: 100, set: func(b *HSLBand) *float64 { return &b.Hue }, raw: func(r *RawHSLBand) **float64 { return &r.Hue }},
	{name: "saturation", min: -100, max: 100, set: func(b *HSLBand) *float64 { return &b.Saturation }, raw: func(r *RawHSLBand) **float64 { return &r.Saturation }},
	{name: "luminance", min: -100, max: 100, set: func(b *HSLBand) *float64 { return &b.Luminance }, raw: func(r *RawHSLBand) **float64 { return &r.Luminance }},
}

var gradeZoneFields = []field[GradeZone, RawGradeZone]{
	{name: "hue", min: 0, max: 360, wrap: true, set: func(z *GradeZone) *float64 { return &z.Hue }, raw: func(r *RawGradeZone) **float64 { return &r.Hue }},
	{name: "saturation", min: 0, max: 100, set: func(z *GradeZone) *float64 { return &z.Saturation }, raw: func(r *RawGradeZone) **float64 { return &r.Saturation }},
	{name: "luminance", min: -100, max: 100, set: func(z *GradeZone) *float64 { return &z.Luminance }, raw: func(r *RawGradeZone) **float64 { return &r.Luminance }},
}

var gradingFields = []field[ColorGrading, RawGrading]{
	{name: "blend", min: 0, max: 100, def: 50, set: func(g *ColorGrading) *float64 { return &g.Blend }, raw: func(r *RawGrading) **float64 { return &r.Blend }},
	{name: "balance", min: -100, max: 100, set: func(g *ColorGrading) *float64 { return &g.Balance }, raw: func(r *RawGrading) **float64 { return &r.Balance }},
}

var deltaFields = []field[LocalDelta, RawLocalDelta]{
	{name: "exposure", min: -5, max: 5, set: func(d *LocalDelta) *float64 { return &d.Exposure }, raw: func(r *RawLocalDelta) **float64 { return &r.Exposure }},
	{name: "contrast", min: -100, max: 100, set: func(d *LocalDelta) *float64 { return &d.Contrast }, raw: func(r *RawLocalDelta) **float64 { return &r.Contrast }},
	{name: "highlights", min: -100, max: 100, set: func(d *LocalDelta) *float64 { return &d.Highlights }, raw: func(r *RawLocalDelta) **float64 { return &r.Highlights }},
	{name: "shadows", min: -100, max: 100, set: func(d *LocalDelta) *float64 { return &d.Shadows }, raw: func(r *RawLocalDelta) **float64 { return &r.Shadows }},
	{name: "temperature", min: -100, max: 100, set: func(d *LocalDelta) *float64 { return &d.Temperature }, raw: func(r *RawLocalDelta) **float64 { return &r.Temperature }},
	{name: "tint", min: -100, max: 100, set: func(d *LocalDelta) *float64 { return &d.Tint }, raw: func(r *RawLocalDelta) **float64 { return &r.Tint }},
	{name: "saturation", min: -100, max: 100, set: func(d *LocalDelta) *float64 { return &d.Saturation }, raw: func(r *RawLocalDelta) **float64 { return &r.Saturation }},
}

var maskFields = []field[Mask, RawMask]{
	{name: "centerX", min: 0, max: 1, def: 0.5, set: func(m *Mask) *float64 { return &m.CenterX }, raw: func(r *RawMask) **float64 { return &r.CenterX }},
	{name: "centerY", min: 0, max: 1, def: 0.5, set: func(m *Mask) *float64 { return &m.CenterY }, raw: func(r *RawMask) **float64 { return &r.CenterY }},
	{name: "radiusX", min: 0.001, max: 2, def: 0.25, set: func(m *Mask) *float64 { return &m.RadiusX }, raw: func(r *RawMask) **float64 { return &r.RadiusX }},
	{name: "radiusY", min: 0.001, max: 2, def: 0.25, set: func(m *Mask) *float64 { return &m.RadiusY }, raw: func(r *RawMask) **float64 { return &r.RadiusY }},
	{name: "rotation", min: -180, max: 180, set: func(m *Mask) *float64 { return &m.Rotation }, raw: func(r *RawMask) **float64 { return &r.Rotation }},
	{name: "startX", min: 0, max: 1, def: 0.5, set: func(m *Mask) *float64 { return &m.StartX }, raw: func(r *RawMask) **float64 { return &r.StartX }},
	{name: "startY", min: 0, max: 1, set: func(m *Mask) *float64 { return &m.StartY }, raw: func(r *RawMask) **float64 { return &r.StartY }},
	{name: "endX", min: 0, max: 1, def: 0.5, set: func(m *Mask) *float64 { return &m.EndX }, raw: func(r *RawMask) **float64 { return &r.EndX }},
	{name: "endY", min: 0, max: 1, def: 1, set: func(m *Mask) *float64 { return &m.EndY }, raw: func(r *RawMask) **float64 { return &r.EndY }},
	{name: "feather", min: 0, max: 100, def: 50, set: func(m *Mask) *float64 { return &m.Feather }, raw: func(r *RawMask) **float64 { return &r.Feather }},
	{name: "lumaMin", min: 0, max: 1, set: func(m *Mask) *float64 { return &m.LumaMin }, raw: func(r *RawMask) **float64 { return &r.LumaMin }},
	{name: "lumaMax", min: 0, max: 1, def: 1, set: func(m *Mask) *float64 { return &m.LumaMax }, raw: func(r *RawMask) **float64 { return &r.LumaMax }},
	{name: "hueCenter", min: 0, max: 360, wrap: true, set: func(m *Mask) *float64 { return &m.HueCenter }, raw: func(r *RawMask) **float64 { return &r.HueCenter }},
	{name: "hueRange", min: 0, max: 180, set: func(m *Mask) *float64 { return &m.HueRange }, raw: func(r *RawMask) **float64 { return &r.HueRange }},
	{name: "satMin", min: 0, max: 1, set: func(m *Mask) *float64 { return &m.SatMin }, raw: func(r *RawMask) **float64 { return &r.SatMin }},
	{name: "satMax", min: 0, max: 1, def: 1, set: func(m *Mask) *float64 { return &m.SatMax }, raw: func(r *RawMask) **float64 { return &r.SatMax }},
}

var brushFields = []field[BrushPoint, RawBrushPoint]{
	{name: "x", min: 0, max: 1, set: func(p *BrushPoint) *float64 { return &p.X }, raw: func(r *RawBrushPoint) **float64 { return &r.X }},
	{name: "y", min: 0, max: 1, set: func(p *BrushPoint) *float64 { return &p.Y }, raw: func(r *RawBrushPoint) **float64 { return &r.Y }},
	{name: "radius", min: 0.001, max: 1, def: 0.05, set: func(p *BrushPoint) *float64 { return &p.Radius }, raw: func(r *RawBrushPoint) **float64 { return &r.Radius }},
	{name: "strength", min: 0, max: 1, def: 1, set: func(p *BrushPoint) *float64 { return &p.Strength }, raw: func(r *RawBrushPoint) **float64 { return &r.Strength }},
}

var geometryFields = []field[Geometry, RawGeometry]{
	{name: "rotation", min: -45, max: 45, set: func(g *Geometry) *float64 { return &g.Rotation }, raw: func(r *RawGeometry) **float64 { return &r.Rotation }},
	{name: "perspectiveVertical", min: -100, max: 100, set: func(g *Geometry) *float64 { return &g.PerspectiveVertical }, raw: func(r *RawGeometry) **float64 { return &r.PerspectiveVertical }},
	{name: "perspectiveHorizontal", min: -100, max: 100, set: func(g *Geometry) *float64 { return &g.PerspectiveHorizontal }, raw: func(r *RawGeometry) **float64 { return &r.PerspectiveHorizontal }},
	{name: "scale", min: 50, max: 200, def: 100, set: func(g *Geometry) *float64 { return &g.Scale }, raw: func(r *RawGeometry) **float64 { return &r.Scale }},
	{name: "offsetX", min: -100, max: 100, set: func(g *Geometry) *float64 { return &g.OffsetX }, raw: func(r *RawGeometry) **float64 { return &r.OffsetX }},
	{name: "offsetY", min: -100, max: 100, set: func(g *Geometry) *float64 { return &g.OffsetY }, raw: func(r *RawGeometry) **float64 { return &r.OffsetY }},
	{name: "lensDistortion", min: -100, max: 100, set: func(g *Geometry) *float64 { return &g.LensDistortion }, raw: func(r *RawGeometry) **float64 { return &r.LensDistortion }},
	{name: "chromaticAberration", min: 0, max: 100, set: func(g *Geometry) *float64 { return &g.ChromaticAberration }, raw: func(r *RawGeometry) **float64 { return &r.ChromaticAberration }},
}

var timestampFields = []field[Timestamp, RawTimestamp]{
	{name: "scale", min: 0.5, max: 3, def: 1, set: func(t *Timestamp) *float64 { return &t.Scale }, raw: func(r *RawTimestamp) **float64 { return &r.Scale }},
	{name: "opacity", min: 0, max: 1, def: 0.9, set: func(t *Timestamp) *float64 { return &t.Opacity }, raw: func(r *RawTimestamp) **float64 { return &r.Opacity }},
}
