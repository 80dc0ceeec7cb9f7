// Package geometry computes the crop, orientation and lens transform shared
// by every render tier.
//
// A Transform maps output pixel centers back to source coordinates (inverse
// mapping). The CPU tier calls Map directly; the GPU tiers upload the same
// coefficients through Uniforms and evaluate the identical formula in WGSL.
package geometry

import "math"

// Rect is a normalized rectangle in the oriented image frame.
type Rect struct {
	X, Y, W, H float64
}

// Params are the geometry controls of an adjustment set.
type Params struct {
	Rotation              float64
	RightAngle            int
	PerspectiveVertical   float64
	PerspectiveHorizontal float64
	Scale                 float64
	OffsetX               float64
	OffsetY               float64
	FlipHorizontal        bool
	FlipVertical          bool
	AspectRatio           string
	CustomAspectRatio     float64
	Crop                  Rect
	LensDistortion        float64
	ChromaticAberration   float64
}

// Tuning constants for the slider-to-model mapping.
const (
	perspectiveStrength = 0.25
	lensStrength        = 0.3
	maxAberrationPx     = 6.0
)

// Transform is the resolved output-to-source mapping.
type Transform struct {
	SrcW, SrcH int
	OutW, OutH int

	// Quarter is the number of clockwise quarter turns (0..3).
	Quarter int

	// Affine maps centered output coordinates in [-0.5, 0.5]² to
	// normalized oriented image coordinates in [-1, 1]².
	Affine Matrix

	// PerspX and PerspY form the bottom row of the keystone homography.
	PerspX, PerspY float64

	// K1 is the radial distortion coefficient.
	K1 float64

	// Aberration holds per-channel radial scale offsets (R, G, B).
	Aberration [3]float64
}

// oriented returns the source size after the quarter turns.
func oriented(w, h, quarter int) (float64, float64) {
	if quarter%2 == 1 {
		return float64(h), float64(w)
	}
	return float64(w), float64(h)
}

// fittedCrop returns the crop rectangle in oriented pixels after fitting it
// to the resolved aspect ratio, as (center x, center y, width, height).
func fittedCrop(srcW, srcH int, p Params) (cx, cy, cw, ch float64) {
	quarter := NormalizeRightAngle(float64(p.RightAngle)) / 90
	ow, oh := oriented(srcW, srcH, quarter)

	c := p.Crop
	if c.W <= 0 || c.H <= 0 {
		c = Rect{0, 0, 1, 1}
	}
	cw, ch = ow*c.W, oh*c.H
	cx, cy = ow*(c.X+c.W/2), oh*(c.Y+c.H/2)

	mode := p.AspectRatio
	if mode == "" {
		mode = AspectOriginal
	}
	fallback := cw / ch
	if mode == AspectOriginal {
		fallback = ow / oh
	}
	ratio := ResolveAspectRatio(mode, p.CustomAspectRatio, fallback)
	if quarter%2 == 1 && explicitRatio(mode, p.CustomAspectRatio) {
		ratio = 1 / ratio
	}
	if cw/ch > ratio {
		cw = ch * ratio
	} else {
		ch = cw / ratio
	}
	return cx, cy, max(cw, 1), max(ch, 1)
}

// explicitRatio reports whether mode pins a ratio expressed in the
// unrotated frame.
func explicitRatio(mode string, custom float64) bool {
	if mode == AspectFree {
		return custom > 0 && !math.IsInf(custom, 0)
	}
	_, ok := ParseAspect(mode)
	return ok
}

// fillZoom returns the zoom needed for a crop of cw×ch rotated by theta to
// stay inside its unrotated window.
func fillZoom(cw, ch, theta float64) float64 {
	sin, cos := math.Sincos(theta)
	sin, cos = math.Abs(sin), math.Abs(cos)
	return max((cw*cos+ch*sin)/cw, (cw*sin+ch*cos)/ch)
}

// Build resolves p for a source of srcW×srcH rendered into outW×outH.
func Build(srcW, srcH, outW, outH int, p Params) Transform {
	quarter := NormalizeRightAngle(float64(p.RightAngle)) / 90
	p.RightAngle = quarter * 90
	ow, oh := oriented(srcW, srcH, quarter)
	cx, cy, cw, ch := fittedCrop(srcW, srcH, p)

	theta := p.Rotation * math.Pi / 180
	scale := p.Scale
	if scale <= 0 {
		scale = 100
	}
	zoom := scale / 100 * fillZoom(cw, ch, theta)

	fx, fy := 1.0, 1.0
	if p.FlipHorizontal {
		fx = -1
	}
	if p.FlipVertical {
		fy = -1
	}
	offX := p.OffsetX / 100 * cw / 2
	offY := p.OffsetY / 100 * ch / 2

	m := Scale(2/ow, 2/oh).
		Multiply(Translate(cx-ow/2, cy-oh/2)).
		Multiply(Rotate(-theta)).
		Multiply(Scale(1/zoom, 1/zoom)).
		Multiply(Translate(-offX, -offY)).
		Multiply(Scale(fx, fy)).
		Multiply(Scale(cw, ch))

	ca := p.ChromaticAberration / 100 * maxAberrationPx / (math.Hypot(ow, oh) / 2)
	return Transform{
		SrcW: srcW, SrcH: srcH,
		OutW: outW, OutH: outH,
		Quarter:    quarter,
		Affine:     m,
		PerspX:     p.PerspectiveHorizontal / 100 * perspectiveStrength,
		PerspY:     p.PerspectiveVertical / 100 * perspectiveStrength,
		K1:         -p.LensDistortion / 100 * lensStrength,
		Aberration: [3]float64{ca, 0, -ca},
	}
}

// Map returns the continuous source coordinate sampled for output position
// (ox, oy) on channel ch (0 = R, 1 = G, 2 = B). Pixel centers sit at
// half-integer coordinates on both sides.
func (t Transform) Map(ox, oy float64, ch int) (float64, float64) {
	nx := ox/float64(t.OutW) - 0.5
	ny := oy/float64(t.OutH) - 0.5
	ux, uy := t.Affine.Apply(nx, ny)

	w := 1 + t.PerspX*ux + t.PerspY*uy
	w = max(w, 1e-3)
	ux /= w
	uy /= w

	r2 := (ux*ux + uy*uy) * 0.5
	k := (1 + t.K1*r2) * (1 + t.Aberration[ch])
	ux *= k
	uy *= k

	ow, oh := oriented(t.SrcW, t.SrcH, t.Quarter)
	px := (ux + 1) * 0.5 * ow
	py := (uy + 1) * 0.5 * oh
	return t.unorient(px, py)
}

// unorient undoes the clockwise quarter turns.
func (t Transform) unorient(px, py float64) (float64, float64) {
	w, h := float64(t.SrcW), float64(t.SrcH)
	switch t.Quarter {
	case 1:
		return py, h - px
	case 2:
		return w - px, h - py
	case 3:
		return w - py, px
	}
	return px, py
}

// HasAberration reports whether the channels sample different positions.
func (t Transform) HasAberration() bool {
	return t.Aberration[0] != 0 || t.Aberration[2] != 0
}

// Uniforms packs the transform as four vec4 rows for the GPU programs:
// sizes, affine row 0 + quarter, affine row 1 + K1, perspective and
// aberration.
func (t Transform) Uniforms() [4][4]float32 {
	return [4][4]float32{
		{float32(t.OutW), float32(t.OutH), float32(t.SrcW), float32(t.SrcH)},
		{float32(t.Affine.A), float32(t.Affine.B), float32(t.Affine.C), float32(t.Quarter)},
		{float32(t.Affine.D), float32(t.Affine.E), float32(t.Affine.F), float32(t.K1)},
		{float32(t.PerspX), float32(t.PerspY), float32(t.Aberration[0]), float32(t.Aberration[2])},
	}
}

// OutputSize derives the output dimensions for a render. Explicit target
// dimensions win; a single target dimension keeps the crop ratio; maxDim
// bounds the longer edge. The result is at least 1×1.
func OutputSize(srcW, srcH int, p Params, targetW, targetH, maxDim int) (int, int) {
	_, _, cw, ch := fittedCrop(srcW, srcH, p)
	switch {
	case targetW > 0 && targetH > 0:
		return targetW, targetH
	case targetW > 0:
		return targetW, max(1, int(math.Round(float64(targetW)*ch/cw)))
	case targetH > 0:
		return max(1, int(math.Round(float64(targetH)*cw/ch))), targetH
	}
	if maxDim > 0 && max(cw, ch) > float64(maxDim) {
		k := float64(maxDim) / max(cw, ch)
		cw, ch = cw*k, ch*k
	}
	return max(1, int(math.Round(cw))), max(1, int(math.Round(ch)))
}
