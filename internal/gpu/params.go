//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/filmlab/internal/filter"
	"github.com/gogpu/filmlab/internal/geometry"
	"github.com/gogpu/filmlab/internal/pixelmath"
	"github.com/gogpu/filmlab/lut"
	"github.com/gogpu/filmlab/shadergen"
)

// uniforms is the byte image of a program's uniform block. Writes to
// fields the program does not declare are dropped, so one writer serves
// every feature subset.
type uniforms struct {
	prog *shadergen.Program
	buf  []byte
}

func newUniforms(p *shadergen.Program) *uniforms {
	return &uniforms{prog: p, buf: make([]byte, p.UniformSize())}
}

func (u *uniforms) at(name string, index int, v []float32) {
	off, ok := u.prog.Offset(name)
	if !ok {
		return
	}
	off += index * 16
	for i, f := range v[:min(len(v), 4)] {
		binary.LittleEndian.PutUint32(u.buf[off+i*4:], math.Float32bits(f))
	}
}

func (u *uniforms) vec4(name string, v ...float32) { u.at(name, 0, v) }

func (u *uniforms) uvec4(name string, v ...uint32) {
	off, ok := u.prog.Offset(name)
	if !ok {
		return
	}
	for i, x := range v[:min(len(v), 4)] {
		binary.LittleEndian.PutUint32(u.buf[off+i*4:], x)
	}
}

func (u *uniforms) size(w, h int) {
	u.vec4("size", float32(w), float32(h), 1/float32(w), 1/float32(h))
}

func (u *uniforms) geometry(t geometry.Transform) {
	rows := t.Uniforms()
	u.vec4("geo_size", rows[0][:]...)
	u.vec4("geo_a", rows[1][:]...)
	u.vec4("geo_b", rows[2][:]...)
	u.vec4("geo_p", rows[3][:]...)
}

// master writes the master block. Inactive steps get identity values.
func (u *uniforms) master(m *pixelmath.Master) {
	u.vec4("exposure", m.Exposure)
	if m.WhiteBalance {
		u.vec4("wb", m.Gains.R, m.Gains.G, m.Gains.B)
	} else {
		u.vec4("wb", 1, 1, 1)
	}
	u.vec4("dehaze", m.Dehaze)
	if m.ToneActive {
		t := m.Tone
		u.vec4("tone", t.BlackPoint, t.WhitePoint, t.Shadows, t.Highlights)
		u.vec4("tone_contrast", t.Contrast)
	} else {
		u.vec4("tone", 0, 1, 0, 0)
	}
	for i, b := range m.HSL {
		u.at("hsl", i, []float32{b.Hue, b.Saturation, b.Luminance, pixelmath.BandCenter(i)})
	}
	u.vec4("color", m.Vibrance, m.Saturation)
	u.vec4("locals_info", float32(len(m.Locals)))

	g := m.Grading
	if !m.GradingActive {
		g = pixelmath.Grading{Pivot: 0.5, Width: 0.3}
	}
	zone := func(name string, z pixelmath.Zone) {
		t := z.Tint.Scale(z.Sat)
		u.vec4(name, t.R, t.G, t.B, z.Lum)
	}
	zone("grade_shadows", g.Shadows)
	zone("grade_midtones", g.Midtones)
	zone("grade_highlights", g.Highlights)
	u.vec4("grade_pivot", g.Pivot, g.Width)
}

func vignette(v pixelmath.Vignette) []float32 {
	return []float32{v.Amount, v.Midpoint, v.Roundness, v.Feather}
}

// film writes the film block. Inactive steps get identity values.
func (u *uniforms) film(f *pixelmath.Film) {
	if f.ToneActive {
		u.vec4("film_tone", f.Gamma, f.Toe, f.Shoulder)
	} else {
		u.vec4("film_tone", 1)
	}
	m := [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1}
	if f.MatrixActive {
		m = f.Matrix
	}
	u.vec4("matrix_r", m[0:3]...)
	u.vec4("matrix_g", m[3:6]...)
	u.vec4("matrix_b", m[6:9]...)
	if f.LUT != nil {
		u.vec4("lut_info", float32(f.LUT.Size), f.LUTIntensity)
	} else {
		u.vec4("lut_info", identityLUTSize, 0)
	}
	for i, name := range []string{"cast_shadows", "cast_midtones", "cast_highlights"} {
		c := f.Cast[i]
		u.vec4(name, c.R, c.G, c.B)
	}
	g := f.Grain
	u.vec4("grain", g.Amount, g.Scale, g.Roughness, g.Color)
	u.uvec4("grain_seed", f.Seed)
	u.vec4("vignette_frame", vignette(f.Frame)...)
	u.vec4("vignette_film", vignette(f.FilmVignette)...)
}

func (u *uniforms) glow(g *pixelmath.Glow) {
	u.vec4("glow", g.BloomThreshold, g.HalationThreshold)
	u.vec4("glow_amount", g.BloomAmount, g.HalationAmount)
	u.vec4("glow_tint", g.HalationTint.R, g.HalationTint.G, g.HalationTint.B)
}

func (u *uniforms) blur(k filter.Kernel, horizontal bool) {
	dir := float32(0)
	if horizontal {
		dir = 1
	}
	u.vec4("dir", dir, 1-dir, k.Step)
	for i := 0; i < filter.Taps; i += 4 {
		end := min(i+4, filter.Taps)
		u.at("weights", i/4, k.Weights[i:end])
	}
}

// Detail modes of the detail kernel.
const (
	detailSmall = 0
	detailLarge = 1
)

func (u *uniforms) detail(d *pixelmath.Detail, mode int) {
	u.vec4("detail", float32(mode), d.Unsharp, d.ColorNR, d.Clarity)
}

const identityLUTSize = 2

var identityLUT = lut.Identity(identityLUTSize)

func floatBytes(v []float32) []byte {
	out := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}

// curvesData returns the curve tables, or identity ramps.
func curvesData(m *pixelmath.Master) []float32 {
	if m.Curves != nil {
		return m.Curves.Flat()
	}
	out := make([]float32, 4*pixelmath.CurveSize)
	for i := range out {
		out[i] = float32(i%pixelmath.CurveSize) / (pixelmath.CurveSize - 1)
	}
	return out
}

// Vec4 slots per local in the locals buffer.
const localStride = 8

// localsData packs the locals as localStride vec4s each, followed by every
// brush point as one vec4. The result holds at least one vec4.
func localsData(locals []pixelmath.Local) []float32 {
	out := make([]float32, len(locals)*localStride*4, (len(locals)*localStride+1)*4)
	pointOffset := len(locals) * localStride
	for i := range locals {
		l := &locals[i]
		invert := float32(0)
		if l.Invert {
			invert = 1
		}
		v := out[i*localStride*4 : (i+1)*localStride*4]
		copy(v, []float32{
			float32(l.Kind), l.Amount, l.Feather, invert,
			l.CX, l.CY, l.RX, l.RY,
			l.Cos, l.Sin, l.Aspect, float32(len(l.Points)),
			l.SX, l.SY, l.EX, l.EY,
			l.LumaMin, l.LumaMax, l.HueCenter, l.HueRange,
			l.SatMin, l.SatMax, float32(pointOffset), 0,
			l.Exposure, l.Contrast, l.Highlights, l.Shadows,
			l.Temperature, l.Tint, l.Saturation, 0,
		})
		for _, p := range l.Points {
			out = append(out, float32(p.X), float32(p.Y), float32(p.Radius), float32(p.Strength))
		}
		pointOffset += len(l.Points)
	}
	if len(out) == 0 {
		out = append(out, 0, 0, 0, 0)
	}
	return out
}

// lutData returns the film LUT samples, or a 2³ identity.
func lutData(f *pixelmath.Film) []float32 {
	if f.LUT != nil {
		return f.LUT.Data
	}
	return identityLUT
}
