package adjust

// Raw is a partial adjustment record as it arrives from storage or a UI
// patch. Nil fields are missing; the normalizer replaces them with the base
// value (the default for Normalize, the current value for Merge).
type Raw struct {
	Exposure   *float64 `json:"exposure,omitempty"`
	Contrast   *float64 `json:"contrast,omitempty"`
	Highlights *float64 `json:"highlights,omitempty"`
	Shadows    *float64 `json:"shadows,omitempty"`
	Whites     *float64 `json:"whites,omitempty"`
	Blacks     *float64 `json:"blacks,omitempty"`

	Temperature *float64 `json:"temperature,omitempty"`
	Tint        *float64 `json:"tint,omitempty"`
	Vibrance    *float64 `json:"vibrance,omitempty"`
	Saturation  *float64 `json:"saturation,omitempty"`

	Clarity *float64 `json:"clarity,omitempty"`
	Dehaze  *float64 `json:"dehaze,omitempty"`
	Texture *float64 `json:"texture,omitempty"`

	CurveHighlights *float64 `json:"curveHighlights,omitempty"`
	CurveLights     *float64 `json:"curveLights,omitempty"`
	CurveDarks      *float64 `json:"curveDarks,omitempty"`
	CurveShadows    *float64 `json:"curveShadows,omitempty"`

	Sharpening          *float64 `json:"sharpening,omitempty"`
	SharpenRadius       *float64 `json:"sharpenRadius,omitempty"`
	NoiseReduction      *float64 `json:"noiseReduction,omitempty"`
	ColorNoiseReduction *float64 `json:"colorNoiseReduction,omitempty"`

	VignetteAmount    *float64 `json:"vignetteAmount,omitempty"`
	VignetteMidpoint  *float64 `json:"vignetteMidpoint,omitempty"`
	VignetteFeather   *float64 `json:"vignetteFeather,omitempty"`
	VignetteRoundness *float64 `json:"vignetteRoundness,omitempty"`

	GrainAmount    *float64 `json:"grainAmount,omitempty"`
	GrainSize      *float64 `json:"grainSize,omitempty"`
	GrainRoughness *float64 `json:"grainRoughness,omitempty"`

	// HSL is keyed by band name ("red", "orange", ...). Unknown names are
	// ignored.
	HSL       map[string]RawHSLBand `json:"hsl,omitempty"`
	Grading   *RawGrading           `json:"colorGrading,omitempty"`
	Curves    *RawCurves            `json:"curves,omitempty"`
	Locals    []RawLocal            `json:"locals,omitempty"`
	Geometry  *RawGeometry          `json:"geometry,omitempty"`
	Film      *RawFilm              `json:"film,omitempty"`
	Timestamp *RawTimestamp         `json:"timestamp,omitempty"`
}

// RawHSLBand is a partial HSLBand.
type RawHSLBand struct {
	Hue        *float64 `json:"hue,omitempty"`
	Saturation *float64 `json:"saturation,omitempty"`
	Luminance  *float64 `json:"luminance,omitempty"`
}

// RawGradeZone is a partial GradeZone.
type RawGradeZone struct {
	Hue        *float64 `json:"hue,omitempty"`
	Saturation *float64 `json:"saturation,omitempty"`
	Luminance  *float64 `json:"luminance,omitempty"`
}

// RawGrading is a partial ColorGrading.
type RawGrading struct {
	Shadows    *RawGradeZone `json:"shadows,omitempty"`
	Midtones   *RawGradeZone `json:"midtones,omitempty"`
	Highlights *RawGradeZone `json:"highlights,omitempty"`
	Blend      *float64      `json:"blend,omitempty"`
	Balance    *float64      `json:"balance,omitempty"`
}

// RawPoint is an unrounded curve point.
type RawPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RawCurves holds partial curves. A nil channel keeps the base curve; an
// empty non-nil channel resets it to identity.
type RawCurves struct {
	RGB   []RawPoint `json:"rgb,omitempty"`
	Red   []RawPoint `json:"red,omitempty"`
	Green []RawPoint `json:"green,omitempty"`
	Blue  []RawPoint `json:"blue,omitempty"`
}

// RawBrushPoint is a partial BrushPoint.
type RawBrushPoint struct {
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Radius   *float64 `json:"radius,omitempty"`
	Strength *float64 `json:"strength,omitempty"`
}

// RawMask is a partial Mask.
type RawMask struct {
	Kind *string `json:"kind,omitempty"`

	CenterX  *float64 `json:"centerX,omitempty"`
	CenterY  *float64 `json:"centerY,omitempty"`
	RadiusX  *float64 `json:"radiusX,omitempty"`
	RadiusY  *float64 `json:"radiusY,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`

	StartX *float64 `json:"startX,omitempty"`
	StartY *float64 `json:"startY,omitempty"`
	EndX   *float64 `json:"endX,omitempty"`
	EndY   *float64 `json:"endY,omitempty"`

	Feather *float64 `json:"feather,omitempty"`
	Invert  *bool    `json:"invert,omitempty"`

	LumaMin   *float64 `json:"lumaMin,omitempty"`
	LumaMax   *float64 `json:"lumaMax,omitempty"`
	HueCenter *float64 `json:"hueCenter,omitempty"`
	HueRange  *float64 `json:"hueRange,omitempty"`
	SatMin    *float64 `json:"satMin,omitempty"`
	SatMax    *float64 `json:"satMax,omitempty"`

	Points []RawBrushPoint `json:"points,omitempty"`
}

// RawLocalDelta is a partial LocalDelta.
type RawLocalDelta struct {
	Exposure    *float64 `json:"exposure,omitempty"`
	Contrast    *float64 `json:"contrast,omitempty"`
	Highlights  *float64 `json:"highlights,omitempty"`
	Shadows     *float64 `json:"shadows,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Tint        *float64 `json:"tint,omitempty"`
	Saturation  *float64 `json:"saturation,omitempty"`
}

// RawLocal is a partial Local.
type RawLocal struct {
	ID      string         `json:"id,omitempty"`
	Enabled *bool          `json:"enabled,omitempty"`
	Amount  *float64       `json:"amount,omitempty"`
	Mask    *RawMask       `json:"mask,omitempty"`
	Delta   *RawLocalDelta `json:"delta,omitempty"`
}

// RawRect is a partial Rect.
type RawRect struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
	W *float64 `json:"w,omitempty"`
	H *float64 `json:"h,omitempty"`
}

// RawGeometry is a partial Geometry. RightAngle accepts any angle in
// degrees.
type RawGeometry struct {
	Rotation              *float64 `json:"rotation,omitempty"`
	RightAngle            *float64 `json:"rightAngle,omitempty"`
	PerspectiveVertical   *float64 `json:"perspectiveVertical,omitempty"`
	PerspectiveHorizontal *float64 `json:"perspectiveHorizontal,omitempty"`
	Scale                 *float64 `json:"scale,omitempty"`
	OffsetX               *float64 `json:"offsetX,omitempty"`
	OffsetY               *float64 `json:"offsetY,omitempty"`
	FlipHorizontal        *bool    `json:"flipHorizontal,omitempty"`
	FlipVertical          *bool    `json:"flipVertical,omitempty"`
	AspectRatio           *string  `json:"aspectRatio,omitempty"`
	CustomAspectRatio     *float64 `json:"customAspectRatio,omitempty"`
	Crop                  *RawRect `json:"crop,omitempty"`
	LensDistortion        *float64 `json:"lensDistortion,omitempty"`
	ChromaticAberration   *float64 `json:"chromaticAberration,omitempty"`
}

// RawFilm is a partial Film. Overrides are merged into the base map per
// layer and parameter.
type RawFilm struct {
	PresetID  *string                       `json:"presetId,omitempty"`
	Intensity *float64                      `json:"intensity,omitempty"`
	Overrides map[string]map[string]float64 `json:"overrides,omitempty"`
}

// RawTimestamp is a partial Timestamp.
type RawTimestamp struct {
	Enabled  *bool    `json:"enabled,omitempty"`
	Position *string  `json:"position,omitempty"`
	Scale    *float64 `json:"scale,omitempty"`
	Opacity  *float64 `json:"opacity,omitempty"`
}

// Raw returns a fully populated Raw describing s. Normalize(s.Raw())
// returns s for any canonical s.
func (s Set) Raw() *Raw {
	r := &Raw{}
	for _, f := range scalarFields {
		*f.raw(r) = ptr(*f.set(&s))
	}

	r.HSL = make(map[string]RawHSLBand, BandCount)
	for b := range BandCount {
		band := s.HSL[b]
		r.HSL[b.String()] = RawHSLBand{ptr(band.Hue), ptr(band.Saturation), ptr(band.Luminance)}
	}

	zone := func(z GradeZone) *RawGradeZone {
		return &RawGradeZone{ptr(z.Hue), ptr(z.Saturation), ptr(z.Luminance)}
	}
	r.Grading = &RawGrading{
		Shadows:    zone(s.Grading.Shadows),
		Midtones:   zone(s.Grading.Midtones),
		Highlights: zone(s.Grading.Highlights),
		Blend:      ptr(s.Grading.Blend),
		Balance:    ptr(s.Grading.Balance),
	}

	r.Curves = &RawCurves{
		RGB:   rawPoints(s.Curves.RGB),
		Red:   rawPoints(s.Curves.Red),
		Green: rawPoints(s.Curves.Green),
		Blue:  rawPoints(s.Curves.Blue),
	}

	r.Locals = make([]RawLocal, 0, len(s.Locals))
	for _, l := range s.Locals {
		r.Locals = append(r.Locals, l.raw())
	}

	g := s.Geometry
	r.Geometry = &RawGeometry{
		Rotation:              ptr(g.Rotation),
		RightAngle:            ptr(float64(g.RightAngle)),
		PerspectiveVertical:   ptr(g.PerspectiveVertical),
		PerspectiveHorizontal: ptr(g.PerspectiveHorizontal),
		Scale:                 ptr(g.Scale),
		OffsetX:               ptr(g.OffsetX),
		OffsetY:               ptr(g.OffsetY),
		FlipHorizontal:        ptr(g.FlipHorizontal),
		FlipVertical:          ptr(g.FlipVertical),
		AspectRatio:           ptr(g.AspectRatio),
		CustomAspectRatio:     ptr(g.CustomAspectRatio),
		Crop:                  &RawRect{ptr(g.Crop.X), ptr(g.Crop.Y), ptr(g.Crop.W), ptr(g.Crop.H)},
		LensDistortion:        ptr(g.LensDistortion),
		ChromaticAberration:   ptr(g.ChromaticAberration),
	}

	r.Film = &RawFilm{
		PresetID:  ptr(s.Film.PresetID),
		Intensity: ptr(s.Film.Intensity),
		Overrides: cloneOverrides(s.Film.Overrides),
	}
	r.Timestamp = &RawTimestamp{
		Enabled:  ptr(s.Timestamp.Enabled),
		Position: ptr(s.Timestamp.Position),
		Scale:    ptr(s.Timestamp.Scale),
		Opacity:  ptr(s.Timestamp.Opacity),
	}
	return r
}

func (l Local) raw() RawLocal {
	m := l.Mask
	rm := &RawMask{
		Kind:      ptr(string(m.Kind)),
		Invert:    ptr(m.Invert),
		CenterX:   ptr(m.CenterX),
		CenterY:   ptr(m.CenterY),
		RadiusX:   ptr(m.RadiusX),
		RadiusY:   ptr(m.RadiusY),
		Rotation:  ptr(m.Rotation),
		StartX:    ptr(m.StartX),
		StartY:    ptr(m.StartY),
		EndX:      ptr(m.EndX),
		EndY:      ptr(m.EndY),
		Feather:   ptr(m.Feather),
		LumaMin:   ptr(m.LumaMin),
		LumaMax:   ptr(m.LumaMax),
		HueCenter: ptr(m.HueCenter),
		HueRange:  ptr(m.HueRange),
		SatMin:    ptr(m.SatMin),
		SatMax:    ptr(m.SatMax),
	}
	for _, p := range m.Points {
		rm.Points = append(rm.Points, RawBrushPoint{ptr(p.X), ptr(p.Y), ptr(p.Radius), ptr(p.Strength)})
	}
	d := l.Delta
	return RawLocal{
		ID:      l.ID,
		Enabled: ptr(l.Enabled),
		Amount:  ptr(l.Amount),
		Mask:    rm,
		Delta: &RawLocalDelta{
			Exposure:    ptr(d.Exposure),
			Contrast:    ptr(d.Contrast),
			Highlights:  ptr(d.Highlights),
			Shadows:     ptr(d.Shadows),
			Temperature: ptr(d.Temperature),
			Tint:        ptr(d.Tint),
			Saturation:  ptr(d.Saturation),
		},
	}
}

func rawPoints(pts []Point) []RawPoint {
	out := make([]RawPoint, len(pts))
	for i, p := range pts {
		out[i] = RawPoint{float64(p.X), float64(p.Y)}
	}
	return out
}

func ptr[T any](v T) *T { return &v }
