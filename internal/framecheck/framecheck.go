// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package framecheck decides whether a rendered frame is plausible.
//
// Both the source and the output are sampled on a fixed probe grid; the
// decision is a pure function of the two sample statistics, so it can be
// tested without a renderer.
package framecheck

import (
	"image"
	"image/color"
)

// GridSize is the edge of the probe grid.
const GridSize = 8

// Stats summarizes one image over the probe grid. Values are in [0,1].
type Stats struct {
	Mean     float64
	Variance float64
	MaxLuma  float64
	MaxAlpha float64
}

// Thresholds tune Decide.
type Thresholds struct {
	// ContentLuma and ContentAlpha mark a source as clearly non-empty.
	ContentLuma  float64
	ContentAlpha float64
	// BlackLuma and CollapsedAlpha mark an output as blank.
	BlackLuma      float64
	CollapsedAlpha float64
}

// DefaultThresholds returns the thresholds used by the pipeline.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ContentLuma:    0.1,
		ContentAlpha:   0.5,
		BlackLuma:      0.01,
		CollapsedAlpha: 0.05,
	}
}

// Reason names why a frame was rejected.
type Reason uint8

// Rejection reasons.
const (
	Accepted Reason = iota
	CollapsedAlpha
	NearBlack
)

// String returns the reason as a log value.
func (r Reason) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case CollapsedAlpha:
		return "collapsed alpha"
	case NearBlack:
		return "near black"
	default:
		return "unknown"
	}
}

// Verdict is the result of Decide.
type Verdict struct {
	OK     bool
	Reason Reason
	Source Stats
	Output Stats
}

// Decide accepts out unless src clearly had content and out lost it.
func (t Thresholds) Decide(src, out Stats) Verdict {
	v := Verdict{OK: true, Source: src, Output: out}
	switch {
	case src.MaxAlpha >= t.ContentAlpha && out.MaxAlpha < t.CollapsedAlpha:
		v.OK, v.Reason = false, CollapsedAlpha
	case src.MaxLuma >= t.ContentLuma && out.MaxLuma < t.BlackLuma:
		v.OK, v.Reason = false, NearBlack
	}
	return v
}

// Decide applies the default thresholds.
func Decide(src, out Stats) Verdict {
	return DefaultThresholds().Decide(src, out)
}

// Probe samples img at the centers of a GridSize×GridSize grid.
func Probe(img image.Image) Stats {
	b := img.Bounds()
	if b.Empty() {
		return Stats{}
	}
	var (
		s          Stats
		sum, sumSq float64
		n          float64
	)
	for gy := 0; gy < GridSize; gy++ {
		y := b.Min.Y + (2*gy+1)*b.Dy()/(2*GridSize)
		for gx := 0; gx < GridSize; gx++ {
			x := b.Min.X + (2*gx+1)*b.Dx()/(2*GridSize)
			l, a := sample(img, x, y)
			sum += l
			sumSq += l * l
			n++
			s.MaxLuma = max(s.MaxLuma, l)
			s.MaxAlpha = max(s.MaxAlpha, a)
		}
	}
	s.Mean = sum / n
	s.Variance = max(sumSq/n-s.Mean*s.Mean, 0)
	return s
}

// sample returns the luma of the straight color and the alpha at (x, y).
func sample(img image.Image, x, y int) (luma, alpha float64) {
	if m, ok := img.(*image.NRGBA); ok {
		i := m.PixOffset(x, y)
		p := m.Pix[i : i+4 : i+4]
		return lumaOf(float64(p[0]), float64(p[1]), float64(p[2])) / 255, float64(p[3]) / 255
	}
	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	return lumaOf(float64(c.R), float64(c.G), float64(c.B)) / 255, float64(c.A) / 255
}

func lumaOf(r, g, b float64) float64 {
	return 0.2126*r + 0.7152*g + 0.0722*b
}
