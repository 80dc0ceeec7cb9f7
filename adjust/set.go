// Package adjust defines the canonical adjustment set and the normalizer
// that turns partial, possibly invalid input into it.
//
// A Set is always complete and in range once it has passed through
// Normalize, NormalizeSet or Merge. Render backends consume only Sets, never
// Raw records.
package adjust

import "maps"

// Band indexes the eight HSL hue bands.
type Band int

// HSL bands in hue order.
const (
	BandRed Band = iota
	BandOrange
	BandYellow
	BandGreen
	BandAqua
	BandBlue
	BandPurple
	BandMagenta

	BandCount
)

var bandNames = [BandCount]string{"red", "orange", "yellow", "green", "aqua", "blue", "purple", "magenta"}

// String returns the band's lower-case name.
func (b Band) String() string {
	if b < 0 || b >= BandCount {
		return "unknown"
	}
	return bandNames[b]
}

// Limits on variable-length fields.
const (
	MaxCurvePoints = 16
	MaxLocals      = 24
	MaxBrushPoints = 512
)

// Set is the canonical, fully populated adjustment record.
type Set struct {
	Exposure   float64 `json:"exposure"`
	Contrast   float64 `json:"contrast"`
	Highlights float64 `json:"highlights"`
	Shadows    float64 `json:"shadows"`
	Whites     float64 `json:"whites"`
	Blacks     float64 `json:"blacks"`

	Temperature float64 `json:"temperature"`
	Tint        float64 `json:"tint"`
	Vibrance    float64 `json:"vibrance"`
	Saturation  float64 `json:"saturation"`

	Clarity float64 `json:"clarity"`
	Dehaze  float64 `json:"dehaze"`
	Texture float64 `json:"texture"`

	CurveHighlights float64 `json:"curveHighlights"`
	CurveLights     float64 `json:"curveLights"`
	CurveDarks      float64 `json:"curveDarks"`
	CurveShadows    float64 `json:"curveShadows"`

	Sharpening          float64 `json:"sharpening"`
	SharpenRadius       float64 `json:"sharpenRadius"`
	NoiseReduction      float64 `json:"noiseReduction"`
	ColorNoiseReduction float64 `json:"colorNoiseReduction"`

	VignetteAmount    float64 `json:"vignetteAmount"`
	VignetteMidpoint  float64 `json:"vignetteMidpoint"`
	VignetteFeather   float64 `json:"vignetteFeather"`
	VignetteRoundness float64 `json:"vignetteRoundness"`

	GrainAmount    float64 `json:"grainAmount"`
	GrainSize      float64 `json:"grainSize"`
	GrainRoughness float64 `json:"grainRoughness"`

	HSL       [BandCount]HSLBand `json:"hsl"`
	Grading   ColorGrading       `json:"colorGrading"`
	Curves    Curves             `json:"curves"`
	Locals    []Local            `json:"locals"`
	Geometry  Geometry           `json:"geometry"`
	Film      Film               `json:"film"`
	Timestamp Timestamp          `json:"timestamp"`
}

// HSLBand holds the hue, saturation and luminance shifts of one band.
type HSLBand struct {
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
	Luminance  float64 `json:"luminance"`
}

// GradeZone is one wheel of the three-way color grader.
type GradeZone struct {
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
	Luminance  float64 `json:"luminance"`
}

// ColorGrading is the three-way (shadows/midtones/highlights) grader.
type ColorGrading struct {
	Shadows    GradeZone `json:"shadows"`
	Midtones   GradeZone `json:"midtones"`
	Highlights GradeZone `json:"highlights"`
	Blend      float64   `json:"blend"`
	Balance    float64   `json:"balance"`
}

// Active reports whether grading changes any pixel.
func (g ColorGrading) Active() bool {
	for _, z := range []GradeZone{g.Shadows, g.Midtones, g.Highlights} {
		if z.Saturation != 0 || z.Luminance != 0 {
			return true
		}
	}
	return false
}

// Point is a tone-curve control point in [0,255]².
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Curves holds the master and per-channel point curves.
type Curves struct {
	RGB   []Point `json:"rgb"`
	Red   []Point `json:"red"`
	Green []Point `json:"green"`
	Blue  []Point `json:"blue"`
}

// IdentityCurve returns the two-point identity curve.
func IdentityCurve() []Point {
	return []Point{{0, 0}, {255, 255}}
}

// IsIdentity reports whether every curve maps x to x.
func (c Curves) IsIdentity() bool {
	for _, pts := range [][]Point{c.RGB, c.Red, c.Green, c.Blue} {
		for _, p := range pts {
			if p.X != p.Y {
				return false
			}
		}
	}
	return true
}

// MaskKind selects the shape of a local adjustment mask.
type MaskKind string

// Mask kinds.
const (
	MaskRadial MaskKind = "radial"
	MaskLinear MaskKind = "linear"
	MaskBrush  MaskKind = "brush"
)

// BrushPoint is one dab of a brush mask in normalized image coordinates.
type BrushPoint struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Radius   float64 `json:"radius"`
	Strength float64 `json:"strength"`
}

// Mask describes where a local adjustment applies.
type Mask struct {
	Kind MaskKind `json:"kind"`

	CenterX  float64 `json:"centerX"`
	CenterY  float64 `json:"centerY"`
	RadiusX  float64 `json:"radiusX"`
	RadiusY  float64 `json:"radiusY"`
	Rotation float64 `json:"rotation"`

	StartX float64 `json:"startX"`
	StartY float64 `json:"startY"`
	EndX   float64 `json:"endX"`
	EndY   float64 `json:"endY"`

	Feather float64 `json:"feather"`
	Invert  bool    `json:"invert"`

	LumaMin   float64 `json:"lumaMin"`
	LumaMax   float64 `json:"lumaMax"`
	HueCenter float64 `json:"hueCenter"`
	HueRange  float64 `json:"hueRange"`
	SatMin    float64 `json:"satMin"`
	SatMax    float64 `json:"satMax"`

	Points []BrushPoint `json:"points,omitempty"`
}

// LocalDelta is the adjustment a local mask applies.
type LocalDelta struct {
	Exposure    float64 `json:"exposure"`
	Contrast    float64 `json:"contrast"`
	Highlights  float64 `json:"highlights"`
	Shadows     float64 `json:"shadows"`
	Temperature float64 `json:"temperature"`
	Tint        float64 `json:"tint"`
	Saturation  float64 `json:"saturation"`
}

// Local is a masked adjustment.
type Local struct {
	ID      string     `json:"id"`
	Enabled bool       `json:"enabled"`
	Amount  float64    `json:"amount"`
	Mask    Mask       `json:"mask"`
	Delta   LocalDelta `json:"delta"`
}

// Rect is a normalized crop rectangle.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Aspect ratio modes.
const (
	AspectOriginal = "original"
	AspectFree     = "free"
)

// Geometry holds the crop, orientation and lens corrections.
type Geometry struct {
	Rotation              float64 `json:"rotation"`
	RightAngle            int     `json:"rightAngle"`
	PerspectiveVertical   float64 `json:"perspectiveVertical"`
	PerspectiveHorizontal float64 `json:"perspectiveHorizontal"`
	Scale                 float64 `json:"scale"`
	OffsetX               float64 `json:"offsetX"`
	OffsetY               float64 `json:"offsetY"`
	FlipHorizontal        bool    `json:"flipHorizontal"`
	FlipVertical          bool    `json:"flipVertical"`
	AspectRatio           string  `json:"aspectRatio"`
	CustomAspectRatio     float64 `json:"customAspectRatio"`
	Crop                  Rect    `json:"crop"`
	LensDistortion        float64 `json:"lensDistortion"`
	ChromaticAberration   float64 `json:"chromaticAberration"`
}

// Film selects a film profile preset and its strength.
type Film struct {
	PresetID  string                        `json:"presetId"`
	Intensity float64                       `json:"intensity"`
	Overrides map[string]map[string]float64 `json:"overrides,omitempty"`
}

// Timestamp overlay corners.
const (
	CornerBottomRight = "bottom-right"
	CornerBottomLeft  = "bottom-left"
	CornerTopRight    = "top-right"
	CornerTopLeft     = "top-left"
)

// Timestamp configures the date stamp drawn after rendering.
type Timestamp struct {
	Enabled  bool    `json:"enabled"`
	Position string  `json:"position"`
	Scale    float64 `json:"scale"`
	Opacity  float64 `json:"opacity"`
}

// Defaults returns the neutral adjustment set.
func Defaults() Set {
	var s Set
	for _, f := range scalarFields {
		*f.set(&s) = f.def
	}
	s.Grading.Blend = 50
	s.Curves = Curves{RGB: IdentityCurve(), Red: IdentityCurve(), Green: IdentityCurve(), Blue: IdentityCurve()}
	s.Locals = []Local{}
	s.Geometry = Geometry{
		Scale:       100,
		AspectRatio: AspectOriginal,
		Crop:        Rect{0, 0, 1, 1},
	}
	s.Film.Intensity = 100
	s.Timestamp = Timestamp{Position: CornerBottomRight, Scale: 1, Opacity: 0.9}
	return s
}

// Clone returns a deep copy of s.
func (s Set) Clone() Set {
	out := s
	out.Curves = Curves{
		RGB:   append([]Point(nil), s.Curves.RGB...),
		Red:   append([]Point(nil), s.Curves.Red...),
		Green: append([]Point(nil), s.Curves.Green...),
		Blue:  append([]Point(nil), s.Curves.Blue...),
	}
	out.Locals = make([]Local, len(s.Locals))
	for i, l := range s.Locals {
		l.Mask.Points = append([]BrushPoint(nil), l.Mask.Points...)
		out.Locals[i] = l
	}
	out.Film.Overrides = cloneOverrides(s.Film.Overrides)
	return out
}

func cloneOverrides(in map[string]map[string]float64) map[string]map[string]float64 {
	if in == nil {
		return nil
	}
	out := make(map[string]map[string]float64, len(in))
	for k, v := range in {
		out[k] = maps.Clone(v)
	}
	return out
}
