package adjust

import (
	"fmt"
	"maps"
	"math"
	"strings"

	"github.com/gogpu/filmlab/internal/geometry"
)

// Normalize fills every missing field of r with its default, clamps every
// value into range and repairs curves and locals. A nil r yields Defaults().
// Normalize never panics.
func Normalize(r *Raw) Set {
	base := Defaults()
	return normalizeWith(&base, r)
}

// NormalizeSet re-establishes the invariants of an already canonical set.
// It is idempotent.
func NormalizeSet(s Set) Set {
	return normalizeWith(&s, nil)
}

// Merge applies a partial patch on top of base. Only fields present in the
// patch change; sibling fields keep their base values.
func Merge(base Set, patch *Raw) Set {
	return normalizeWith(&base, patch)
}

func normalizeWith(base *Set, r *Raw) Set {
	var out Set
	apply(&out, base, r, scalarFields)

	for b := range BandCount {
		var rb *RawHSLBand
		if r != nil {
			if v, ok := r.HSL[b.String()]; ok {
				rb = &v
			}
		}
		apply(&out.HSL[b], &base.HSL[b], rb, hslFields)
	}

	out.Grading = normalizeGrading(base.Grading, rawOrNil(r, func(r *Raw) *RawGrading { return r.Grading }))
	out.Curves = normalizeCurves(base.Curves, rawOrNil(r, func(r *Raw) *RawCurves { return r.Curves }))

	if r != nil && r.Locals != nil {
		out.Locals = normalizeRawLocals(r.Locals)
	} else {
		out.Locals = normalizeLocals(base.Locals)
	}

	out.Geometry = normalizeGeometry(base.Geometry, rawOrNil(r, func(r *Raw) *RawGeometry { return r.Geometry }))
	out.Film = normalizeFilm(base.Film, rawOrNil(r, func(r *Raw) *RawFilm { return r.Film }))
	out.Timestamp = normalizeTimestamp(base.Timestamp, rawOrNil(r, func(r *Raw) *RawTimestamp { return r.Timestamp }))
	return out
}

func rawOrNil[T any](r *Raw, get func(*Raw) *T) *T {
	if r == nil {
		return nil
	}
	return get(r)
}

func normalizeGrading(base ColorGrading, r *RawGrading) ColorGrading {
	var out ColorGrading
	apply(&out, &base, r, gradingFields)
	zone := func(dst, b *GradeZone, rz func(*RawGrading) *RawGradeZone) {
		var z *RawGradeZone
		if r != nil {
			z = rz(r)
		}
		apply(dst, b, z, gradeZoneFields)
	}
	zone(&out.Shadows, &base.Shadows, func(r *RawGrading) *RawGradeZone { return r.Shadows })
	zone(&out.Midtones, &base.Midtones, func(r *RawGrading) *RawGradeZone { return r.Midtones })
	zone(&out.Highlights, &base.Highlights, func(r *RawGrading) *RawGradeZone { return r.Highlights })
	return out
}

func normalizeLocals(in []Local) []Local {
	raws := make([]RawLocal, 0, min(len(in), MaxLocals))
	for _, l := range in {
		raws = append(raws, l.raw())
	}
	return normalizeRawLocals(raws)
}

func normalizeRawLocals(in []RawLocal) []Local {
	if len(in) > MaxLocals {
		in = in[:MaxLocals]
	}
	out := make([]Local, 0, len(in))
	for i, rl := range in {
		out = append(out, normalizeLocal(i, rl))
	}
	return out
}

func defaultLocal() Local {
	l := Local{Enabled: true, Amount: 100, Mask: Mask{Kind: MaskRadial}}
	for _, f := range maskFields {
		*f.set(&l.Mask) = f.def
	}
	return l
}

func normalizeLocal(index int, rl RawLocal) Local {
	base := defaultLocal()
	out := base

	out.ID = strings.TrimSpace(rl.ID)
	if out.ID == "" {
		out.ID = fmt.Sprintf("local-%d", index+1)
	}
	if rl.Enabled != nil {
		out.Enabled = *rl.Enabled
	}
	out.Amount = field[Local, RawLocal]{min: 0, max: 100, def: 100}.resolve(base.Amount, rl.Amount)

	apply(&out.Delta, &base.Delta, rl.Delta, deltaFields)
	apply(&out.Mask, &base.Mask, rl.Mask, maskFields)

	if rl.Mask != nil {
		if rl.Mask.Kind != nil {
			out.Mask.Kind = parseMaskKind(*rl.Mask.Kind)
		}
		if rl.Mask.Invert != nil {
			out.Mask.Invert = *rl.Mask.Invert
		}
		out.Mask.Points = normalizeBrush(rl.Mask.Points)
	}
	if out.Mask.LumaMin > out.Mask.LumaMax {
		out.Mask.LumaMin, out.Mask.LumaMax = out.Mask.LumaMax, out.Mask.LumaMin
	}
	if out.Mask.SatMin > out.Mask.SatMax {
		out.Mask.SatMin, out.Mask.SatMax = out.Mask.SatMax, out.Mask.SatMin
	}
	return out
}

func parseMaskKind(s string) MaskKind {
	switch k := MaskKind(strings.ToLower(strings.TrimSpace(s))); k {
	case MaskRadial, MaskLinear, MaskBrush:
		return k
	}
	return MaskRadial
}

func normalizeBrush(in []RawBrushPoint) []BrushPoint {
	if len(in) == 0 {
		return nil
	}
	if len(in) > MaxBrushPoints {
		in = in[:MaxBrushPoints]
	}
	var base BrushPoint
	for _, f := range brushFields {
		*f.set(&base) = f.def
	}
	out := make([]BrushPoint, len(in))
	for i := range in {
		apply(&out[i], &base, &in[i], brushFields)
	}
	return out
}

func normalizeGeometry(base Geometry, r *RawGeometry) Geometry {
	var out Geometry
	apply(&out, &base, r, geometryFields)

	angle := float64(base.RightAngle)
	out.FlipHorizontal = base.FlipHorizontal
	out.FlipVertical = base.FlipVertical
	aspect := base.AspectRatio
	custom := base.CustomAspectRatio
	crop := base.Crop
	if r != nil {
		if r.RightAngle != nil && finite(*r.RightAngle) {
			angle = *r.RightAngle
		}
		if r.FlipHorizontal != nil {
			out.FlipHorizontal = *r.FlipHorizontal
		}
		if r.FlipVertical != nil {
			out.FlipVertical = *r.FlipVertical
		}
		if r.AspectRatio != nil {
			aspect = *r.AspectRatio
		}
		if r.CustomAspectRatio != nil {
			custom = *r.CustomAspectRatio
		}
		if r.Crop != nil {
			crop = mergeRect(crop, r.Crop)
		}
	}
	out.RightAngle = geometry.NormalizeRightAngle(angle)
	out.AspectRatio = normalizeAspectToken(aspect)
	out.CustomAspectRatio = normalizeCustomAspect(custom)
	out.Crop = normalizeCrop(crop)
	return out
}

func normalizeAspectToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case AspectOriginal, AspectFree:
		return s
	}
	if _, ok := geometry.ParseAspect(s); ok {
		return s
	}
	return AspectOriginal
}

func normalizeCustomAspect(v float64) float64 {
	if !finite(v) || v <= 0 {
		return 0
	}
	return min(max(v, 0.1), 10)
}

func mergeRect(base Rect, r *RawRect) Rect {
	pick := func(b float64, p *float64) float64 {
		if p != nil {
			return *p
		}
		return b
	}
	return Rect{pick(base.X, r.X), pick(base.Y, r.Y), pick(base.W, r.W), pick(base.H, r.H)}
}

// normalizeCrop keeps the rectangle inside the unit square with a minimum
// extent of 1%.
func normalizeCrop(c Rect) Rect {
	sanitize := func(v, def float64) float64 {
		if !finite(v) {
			return def
		}
		return v
	}
	c.X = min(max(sanitize(c.X, 0), 0), 0.99)
	c.Y = min(max(sanitize(c.Y, 0), 0), 0.99)
	c.W = min(max(sanitize(c.W, 1), 0.01), 1-c.X)
	c.H = min(max(sanitize(c.H, 1), 0.01), 1-c.Y)
	return c
}

func normalizeFilm(base Film, r *RawFilm) Film {
	out := Film{PresetID: base.PresetID, Intensity: base.Intensity, Overrides: base.Overrides}
	var intensity *float64
	if r != nil {
		if r.PresetID != nil {
			out.PresetID = *r.PresetID
		}
		intensity = r.Intensity
		out.Overrides = mergeOverrides(base.Overrides, r.Overrides)
	}
	out.PresetID = strings.TrimSpace(out.PresetID)
	out.Intensity = field[Film, RawFilm]{min: 0, max: 100, def: 100}.resolve(out.Intensity, intensity)
	out.Overrides = normalizeOverrides(out.Overrides)
	return out
}

// mergeOverrides overlays patch onto base one parameter at a time. Layers
// and parameters absent from patch keep their base values, as do non-finite
// patch values.
func mergeOverrides(base, patch map[string]map[string]float64) map[string]map[string]float64 {
	if len(patch) == 0 {
		return base
	}
	out := make(map[string]map[string]float64, len(base)+len(patch))
	for layer, params := range base {
		out[layer] = maps.Clone(params)
	}
	for layer, params := range patch {
		for k, v := range params {
			if !finite(v) {
				continue
			}
			if out[layer] == nil {
				out[layer] = make(map[string]float64, len(params))
			}
			out[layer][k] = v
		}
	}
	return out
}

func normalizeOverrides(in map[string]map[string]float64) map[string]map[string]float64 {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]map[string]float64, len(in))
	for layer, params := range in {
		clean := make(map[string]float64, len(params))
		for k, v := range params {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				clean[k] = v
			}
		}
		if len(clean) > 0 {
			out[layer] = clean
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func normalizeTimestamp(base Timestamp, r *RawTimestamp) Timestamp {
	var out Timestamp
	apply(&out, &base, r, timestampFields)
	out.Enabled = base.Enabled
	pos := base.Position
	if r != nil {
		if r.Enabled != nil {
			out.Enabled = *r.Enabled
		}
		if r.Position != nil {
			pos = *r.Position
		}
	}
	switch p := strings.ToLower(strings.TrimSpace(pos)); p {
	case CornerBottomRight, CornerBottomLeft, CornerTopRight, CornerTopLeft:
		out.Position = p
	default:
		out.Position = CornerBottomRight
	}
	return out
}
