// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package tier defines the contract between the pipeline and its render
// backends.
package tier

import (
	"context"
	"errors"
	"image"

	"github.com/gogpu/filmlab/adjust"
	"github.com/gogpu/filmlab/internal/geometry"
	"github.com/gogpu/filmlab/internal/pixelmath"
	"github.com/gogpu/filmlab/lut"
	"github.com/gogpu/filmlab/profile"
	"github.com/gogpu/filmlab/shadergen"
)

// ErrUnavailable is returned by a backend that cannot serve a frame on this
// machine or with this feature set.
var ErrUnavailable = errors.New("tier: backend unavailable")

// Tier identifies a backend, in fallback order.
type Tier uint8

// Tiers.
const (
	MultiPass Tier = iota
	SinglePass
	CPU
)

// String returns the tier name used in logs.
func (t Tier) String() string {
	switch t {
	case MultiPass:
		return "multi-pass"
	case SinglePass:
		return "single-pass"
	case CPU:
		return "cpu"
	default:
		return "unknown"
	}
}

// Frame is everything a backend needs to render one output image.
type Frame struct {
	// Source is the (possibly pre-scaled) input with straight alpha.
	Source *image.NRGBA
	// Width and Height are the output size.
	Width, Height int

	Transform geometry.Transform
	Master    pixelmath.Master
	Detail    pixelmath.Detail
	Film      pixelmath.Film
}

// NewFrame resolves the frame of canonical adjustments s and profile p for a
// w×h output of src. asset is the profile's LUT, or nil.
func NewFrame(src *image.NRGBA, s *adjust.Set, p *profile.Profile, asset *lut.Asset, seed uint32, w, h int) *Frame {
	b := src.Bounds()
	return &Frame{
		Source:    src,
		Width:     w,
		Height:    h,
		Transform: geometry.Build(b.Dx(), b.Dy(), w, h, s.Geometry.Params()),
		Master:    pixelmath.NewMaster(s, w, h),
		Detail:    pixelmath.NewDetail(s, w, h),
		Film:      pixelmath.NewFilm(p, s, asset, seed, w, h),
	}
}

// Needs returns the shader features the frame uses.
func (f *Frame) Needs() shadergen.Config {
	m, fl := &f.Master, &f.Film
	return shadergen.Config{
		Master: shadergen.MasterFeatures{
			WhiteBalance: m.WhiteBalance,
			Dehaze:       m.DehazeActive,
			Tone:         m.ToneActive,
			Curves:       m.Curves != nil,
			HSL:          m.HSLActive,
			Color:        m.ColorActive,
			ColorGrading: m.GradingActive,
			Locals:       len(m.Locals) > 0,
		},
		Film: shadergen.FilmFeatures{
			ToneResponse: fl.ToneActive,
			ColorMatrix:  fl.MatrixActive,
			LUT:          fl.LUT != nil,
			ColorCast:    fl.CastActive,
			Grain:        fl.GrainActive,
			Vignette:     fl.Frame.Amount != 0 || fl.FilmVignette.Amount != 0,
			Halation:     fl.HalationActive,
			Bloom:        fl.BloomActive,
		},
	}
}

// Covers reports whether programs generated for have can render everything
// in need.
func Covers(have, need shadergen.Config) bool {
	hm, nm := have.Master, need.Master
	hf, nf := have.Film, need.Film
	return covers(hm.WhiteBalance, nm.WhiteBalance) &&
		covers(hm.Dehaze, nm.Dehaze) &&
		covers(hm.Tone, nm.Tone) &&
		covers(hm.Curves, nm.Curves) &&
		covers(hm.HSL, nm.HSL) &&
		covers(hm.Color, nm.Color) &&
		covers(hm.ColorGrading, nm.ColorGrading) &&
		covers(hm.Locals, nm.Locals) &&
		covers(hf.ToneResponse, nf.ToneResponse) &&
		covers(hf.ColorMatrix, nf.ColorMatrix) &&
		covers(hf.LUT, nf.LUT) &&
		covers(hf.ColorCast, nf.ColorCast) &&
		covers(hf.Grain, nf.Grain) &&
		covers(hf.Vignette, nf.Vignette) &&
		covers(hf.Halation, nf.Halation) &&
		covers(hf.Bloom, nf.Bloom)
}

func covers(have, need bool) bool { return have || !need }

// Backend renders frames on one tier.
type Backend interface {
	// Tier identifies the backend.
	Tier() Tier
	// Render writes the frame into dst, which has the frame's size.
	// MultiPass output includes color grading; the other tiers leave it
	// to the caller.
	Render(ctx context.Context, f *Frame, dst *image.NRGBA) error
	// Lost reports whether the backend's device is gone and the backend
	// must be recreated before the next Render.
	Lost() bool
	// Close releases every resource held by the backend.
	Close()
}

// Factory creates a backend. It returns ErrUnavailable when the tier cannot
// run here.
type Factory func() (Backend, error)
