// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package overlay draws the date-back timestamp onto rendered frames.
//
// The date is shaped with HarfBuzz (go-text/typesetting), its glyph
// outlines are read with x/image/font/sfnt and filled with the x/image
// vector rasterizer. A soft halo under the digits imitates the glow of an
// exposed LED date imprint.
package overlay

import (
	"bytes"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/gogpu/filmlab/adjust"
	"github.com/gogpu/filmlab/internal/color"
	"github.com/gogpu/filmlab/internal/filter"
)

// Layout is the date format of the imprint.
const Layout = "'06 01 02"

// Ink is the imprint color.
var Ink = color.RGB{R: 1, G: 0.55, B: 0.16}

const (
	sizeFraction = 0.045 // glyph size relative to the short edge
	minSize      = 8
	marginEm     = 0.8
	haloSigmaEm  = 0.12
	haloStrength = 0.6
)

type fonts struct {
	shape   *font.Font
	outline *sfnt.Font
}

var (
	fontsOnce sync.Once
	loaded    fonts
	loadErr   error

	shaperPool = sync.Pool{New: func() any { return &shaping.HarfbuzzShaper{} }}
)

func loadFonts() (fonts, error) {
	fontsOnce.Do(func() {
		face, err := font.ParseTTF(bytes.NewReader(gomonobold.TTF))
		if err != nil {
			loadErr = fmt.Errorf("overlay: parse font: %w", err)
			return
		}
		outline, err := sfnt.Parse(gomonobold.TTF)
		if err != nil {
			loadErr = fmt.Errorf("overlay: parse outlines: %w", err)
			return
		}
		loaded = fonts{shape: face.Font, outline: outline}
	})
	return loaded, loadErr
}

// glyph is one shaped glyph in pixels relative to the pen origin.
type glyph struct {
	id      sfnt.GlyphIndex
	x, y    float32
	advance float32
}

func shape(f fonts, text string, size float32) []glyph {
	runes := []rune(text)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      font.NewFace(f.shape),
		Size:      fixed.Int26_6(size * 64),
		Script:    language.Latin,
		Language:  language.NewLanguage("en"),
	}
	hb := shaperPool.Get().(*shaping.HarfbuzzShaper)
	out := hb.Shape(input)
	shaperPool.Put(hb)

	glyphs := make([]glyph, len(out.Glyphs))
	var pen float32
	for i, g := range out.Glyphs {
		glyphs[i] = glyph{
			id:      sfnt.GlyphIndex(g.GlyphID), //nolint:gosec // gomono has fewer than 65536 glyphs
			x:       pen + float32(g.XOffset)/64,
			y:       -float32(g.YOffset) / 64,
			advance: float32(g.Advance) / 64,
		}
		pen += glyphs[i].advance
	}
	return glyphs
}

// Mask rasterizes text at size pixels per em. The returned mask has the
// baseline at row baseline.
func Mask(text string, size float32) (mask *image.Alpha, baseline int, err error) {
	f, err := loadFonts()
	if err != nil {
		return nil, 0, err
	}
	glyphs := shape(f, text, size)
	var width float32
	for _, g := range glyphs {
		width += g.advance
	}
	ppem := fixed.Int26_6(size * 64)
	var buf sfnt.Buffer
	metrics, err := f.outline.Metrics(&buf, ppem, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("overlay: metrics: %w", err)
	}
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()
	w, h := int(width+1), ascent+descent
	if w <= 0 || h <= 0 {
		return image.NewAlpha(image.Rect(0, 0, 1, 1)), 0, nil
	}

	z := vector.NewRasterizer(w, h)
	base := float32(ascent)
	for _, g := range glyphs {
		segs, err := f.outline.LoadGlyph(&buf, g.id, ppem, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("overlay: glyph %d: %w", g.id, err)
		}
		ox, oy := g.x, base+g.y
		pt := func(p fixed.Point26_6) (float32, float32) {
			return ox + float32(p.X)/64, oy + float32(p.Y)/64
		}
		for _, s := range segs {
			switch s.Op {
			case sfnt.SegmentOpMoveTo:
				z.MoveTo(pt(s.Args[0]))
			case sfnt.SegmentOpLineTo:
				z.LineTo(pt(s.Args[0]))
			case sfnt.SegmentOpQuadTo:
				bx, by := pt(s.Args[0])
				cx, cy := pt(s.Args[1])
				z.QuadTo(bx, by, cx, cy)
			case sfnt.SegmentOpCubeTo:
				bx, by := pt(s.Args[0])
				cx, cy := pt(s.Args[1])
				dx, dy := pt(s.Args[2])
				z.CubeTo(bx, by, cx, cy, dx, dy)
			}
		}
		z.ClosePath()
	}
	mask = image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask, ascent, nil
}

// Size returns the glyph size for a w×h frame at the given scale.
func Size(w, h int, scale float64) float32 {
	return max(float32(min(w, h))*sizeFraction, minSize) * float32(scale)
}

// Draw stamps when onto dst as configured by ts. It does nothing when the
// overlay is disabled or fully transparent.
func Draw(dst *image.NRGBA, ts adjust.Timestamp, when time.Time) error {
	if !ts.Enabled || ts.Opacity <= 0 {
		return nil
	}
	b := dst.Bounds()
	size := Size(b.Dx(), b.Dy(), ts.Scale)
	mask, _, err := Mask(when.Format(Layout), size)
	if err != nil {
		return err
	}

	margin := int(size * marginEm)
	pad := int(size*haloSigmaEm*3) + 1
	mw, mh := mask.Rect.Dx(), mask.Rect.Dy()
	var origin image.Point
	switch ts.Position {
	case adjust.CornerTopLeft:
		origin = image.Pt(b.Min.X+margin, b.Min.Y+margin)
	case adjust.CornerTopRight:
		origin = image.Pt(b.Max.X-margin-mw, b.Min.Y+margin)
	case adjust.CornerBottomLeft:
		origin = image.Pt(b.Min.X+margin, b.Max.Y-margin-mh)
	default:
		origin = image.Pt(b.Max.X-margin-mw, b.Max.Y-margin-mh)
	}

	// Halo and digits share one padded coverage plane.
	cov := filter.NewPlane(mw+2*pad, mh+2*pad)
	for y := 0; y < mh; y++ {
		for x := 0; x < mw; x++ {
			a := color.Unorm8(mask.Pix[y*mask.Stride+x])
			cov.Set(x+pad, y+pad, [4]float32{a, a, a, a})
		}
	}
	halo := filter.NewPlane(cov.W, cov.H)
	filter.Blur(halo, cov, size*haloSigmaEm, nil)

	opacity := float32(ts.Opacity)
	area := image.Rect(0, 0, cov.W, cov.H).Add(origin.Sub(image.Pt(pad, pad))).Intersect(b)
	for y := area.Min.Y; y < area.Max.Y; y++ {
		cy := y - origin.Y + pad
		for x := area.Min.X; x < area.Max.X; x++ {
			cx := x - origin.X + pad
			text := cov.At(cx, cy)[3]
			glow := halo.At(cx, cy)[3] * haloStrength
			a := min(max(text, glow), 1) * opacity
			if a <= 0 {
				continue
			}
			blend(dst, x, y, a)
		}
	}
	return nil
}

// blend composites Ink with coverage a over the straight-alpha pixel.
func blend(dst *image.NRGBA, x, y int, a float32) {
	i := dst.PixOffset(x, y)
	p := dst.Pix[i : i+4 : i+4]
	da := color.Unorm8(p[3])
	out := a + da*(1-a)
	if out <= 0 {
		return
	}
	mix := func(ink float32, v uint8) uint8 {
		return color.Quantize8((ink*a + color.Unorm8(v)*da*(1-a)) / out)
	}
	p[0], p[1], p[2] = mix(Ink.R, p[0]), mix(Ink.G, p[1]), mix(Ink.B, p[2])
	p[3] = color.Quantize8(out)
}
