package pixelmath

import (
	"math"
	"testing"

	"github.com/gogpu/filmlab/adjust"
	"github.com/gogpu/filmlab/internal/color"
	"github.com/gogpu/filmlab/profile"
)

func near(a, b, eps float32) bool {
	return math.Abs(float64(a-b)) <= float64(eps)
}

func nearRGB(a, b color.RGB, eps float32) bool {
	return near(a.R, b.R, eps) && near(a.G, b.G, eps) && near(a.B, b.B, eps)
}

var samples = []color.RGB{
	{R: 0, G: 0, B: 0}, {R: 1, G: 1, B: 1}, {R: 0.5, G: 0.5, B: 0.5},
	{R: 0.9, G: 0.2, B: 0.1}, {R: 0.1, G: 0.6, B: 0.3}, {R: 0.2, G: 0.3, B: 0.8},
}

func TestDefaultMasterIsIdentity(t *testing.T) {
	s := adjust.Defaults()
	m := NewMaster(&s, 64, 48)
	if m.WhiteBalance || m.DehazeActive || m.ToneActive || m.Curves != nil ||
		m.HSLActive || m.ColorActive || m.GradingActive || len(m.Locals) > 0 {
		t.Fatalf("defaults enabled a step: %+v", m)
	}
	for _, c := range samples {
		if got := m.Pixel(c, 0.5, 0.5, true); !nearRGB(got, c, 1e-4) {
			t.Errorf("Pixel(%v) = %v", c, got)
		}
	}
}

func TestWhiteBalanceKeepsLuma(t *testing.T) {
	for _, tt := range [][2]float32{{1, 0}, {-1, 0}, {0, 1}, {0.5, -0.7}} {
		g := WhiteBalanceGains(tt[0], tt[1])
		if !near(g.Luma(), 1, 1e-5) {
			t.Errorf("gains(%v) luma = %v", tt, g.Luma())
		}
	}
	warm := WhiteBalanceGains(1, 0)
	if warm.R <= warm.B {
		t.Errorf("warm gains %v should favor red", warm)
	}
}

func TestExposureBrightens(t *testing.T) {
	s := adjust.Defaults()
	s.Exposure = 1
	m := NewMaster(&s, 8, 8)
	got := m.Pixel(color.Gray(0.2), 0.5, 0.5, true)
	if got.R <= 0.2 {
		t.Errorf("+1 EV gave %v", got)
	}
}

func TestToneContrastPivot(t *testing.T) {
	tone := Tone{WhitePoint: 1, Contrast: 1}
	mid := ApplyTone(color.Gray(0.5), tone)
	if !nearRGB(mid, color.Gray(0.5), 1e-6) {
		t.Errorf("contrast moved the pivot: %v", mid)
	}
	lo := ApplyTone(color.Gray(0.3), tone)
	if lo.R >= 0.3 {
		t.Errorf("contrast should darken below the pivot: %v", lo)
	}
}

func TestZoneMasks(t *testing.T) {
	if ShadowMask(0) != 1 || ShadowMask(0.6) != 0 {
		t.Error("shadow mask endpoints")
	}
	if HighlightMask(1) != 1 || HighlightMask(0.4) != 0 {
		t.Error("highlight mask endpoints")
	}
}

func TestCurves(t *testing.T) {
	s := adjust.Defaults()
	if NewCurves(&s) != nil {
		t.Fatal("identity curves should bake to nil")
	}

	s.Curves.RGB = []adjust.Point{{X: 0, Y: 0}, {X: 128, Y: 180}, {X: 255, Y: 255}}
	c := NewCurves(&s)
	if c == nil {
		t.Fatal("NewCurves returned nil")
	}
	if c.LUT[CurveMaster][0] != 0 || c.LUT[CurveMaster][255] != 1 {
		t.Errorf("endpoints = %v, %v", c.LUT[CurveMaster][0], c.LUT[CurveMaster][255])
	}
	if got := c.LUT[CurveMaster][128]; !near(got, 180.0/255, 1e-5) {
		t.Errorf("control point = %v, want %v", got, 180.0/255)
	}
	for i := 1; i < CurveSize; i++ {
		if c.LUT[CurveMaster][i] < c.LUT[CurveMaster][i-1] {
			t.Fatalf("master curve not monotone at %d", i)
		}
	}
	for i := 0; i < CurveSize; i++ {
		if want := float32(i) / 255; !near(c.LUT[CurveRed][i], want, 1e-6) {
			t.Fatalf("red table not identity at %d", i)
		}
	}
	if got := c.Apply(color.Gray(0.5)); got.R <= 0.5 {
		t.Errorf("lifted curve gave %v", got)
	}
	if len(c.Flat()) != 4*CurveSize {
		t.Errorf("Flat len = %d", len(c.Flat()))
	}
}

func TestRegionDeltaPinned(t *testing.T) {
	a := [4]float32{1, -1, 1, -1}
	if RegionDelta(0, a) != 0 || RegionDelta(1, a) != 0 {
		t.Error("region delta not pinned at endpoints")
	}
	if RegionDelta(0.125, [4]float32{1}) <= 0 {
		t.Error("shadow region should lift at its center")
	}
}

func TestHSLBandsOnlyTouchTheirHue(t *testing.T) {
	var bands [adjust.BandCount]HSLShift
	bands[adjust.BandBlue] = HSLShift{Saturation: -1}

	blue := color.RGB{R: 0.1, G: 0.2, B: 0.9}
	if got := ApplyHSL(blue, &bands); got.ToHSL().S > 0.5*blue.ToHSL().S {
		t.Errorf("blue not desaturated: %v", got)
	}
	red := color.RGB{R: 0.9, G: 0.1, B: 0.1}
	if got := ApplyHSL(red, &bands); !nearRGB(got, red, 1e-5) {
		t.Errorf("red changed: %v", got)
	}
	gray := color.Gray(0.4)
	if got := ApplyHSL(gray, &bands); !nearRGB(got, gray, 1e-6) {
		t.Errorf("gray changed: %v", got)
	}
}

func TestApplyColorSaturation(t *testing.T) {
	c := color.RGB{R: 0.8, G: 0.4, B: 0.2}
	if got := ApplyColor(c, 0, -1); !nearRGB(got, color.Gray(c.Luma()), 1e-6) {
		t.Errorf("saturation -1 = %v, want gray %v", got, c.Luma())
	}
	if got := ApplyColor(c, 0, 0); !nearRGB(got, c, 1e-6) {
		t.Errorf("neutral color step changed %v to %v", c, got)
	}
}

func TestGradingWeights(t *testing.T) {
	g := NewGrading(adjust.ColorGrading{Blend: 50})
	for _, y := range []float32{0, 0.2, 0.45, 0.5, 0.55, 0.8, 1} {
		ws, wm, wh := g.Weights(y)
		if !near(ws+wm+wh, 1, 1e-6) {
			t.Errorf("weights at %v sum to %v", y, ws+wm+wh)
		}
	}
	ws, _, _ := g.Weights(0)
	_, _, wh := g.Weights(1)
	if ws != 1 || wh != 1 {
		t.Errorf("extreme weights = %v, %v", ws, wh)
	}

	lifted := NewGrading(adjust.ColorGrading{Blend: 50, Shadows: adjust.GradeZone{Luminance: 100}})
	if got := lifted.Apply(color.Gray(0.05)); got.R <= 0.05 {
		t.Errorf("shadow lift gave %v", got)
	}
	if got := lifted.Apply(color.Gray(0.95)); !nearRGB(got, color.Gray(0.95), 1e-6) {
		t.Errorf("shadow lift touched highlights: %v", got)
	}
}

func radialLocal() adjust.Local {
	s := adjust.Defaults()
	s.Locals = []adjust.Local{{Enabled: true, Amount: 100, Mask: adjust.Mask{
		Kind: adjust.MaskRadial, CenterX: 0.5, CenterY: 0.5, RadiusX: 0.2, RadiusY: 0.2,
		Feather: 20, LumaMax: 1, SatMax: 1,
	}, Delta: adjust.LocalDelta{Exposure: 1}}}
	return s.Locals[0]
}

func TestLocalRadialShape(t *testing.T) {
	ls := NewLocals([]adjust.Local{radialLocal()}, 100, 100)
	if len(ls) != 1 {
		t.Fatalf("got %d locals", len(ls))
	}
	l := &ls[0]
	if got := l.Shape(0.5, 0.5); got != 1 {
		t.Errorf("center = %v", got)
	}
	if got := l.Shape(0.95, 0.5); got != 0 {
		t.Errorf("outside = %v", got)
	}

	l.Invert = true
	if got := l.Shape(0.95, 0.5); got != 1 {
		t.Errorf("inverted outside = %v", got)
	}
}

func TestLocalDisabledAndZeroAmountSkipped(t *testing.T) {
	a := radialLocal()
	a.Enabled = false
	b := radialLocal()
	b.Amount = 0
	if ls := NewLocals([]adjust.Local{a, b}, 10, 10); len(ls) != 0 {
		t.Errorf("got %d locals, want 0", len(ls))
	}
}

func TestLocalLumaGate(t *testing.T) {
	l := radialLocal()
	l.Mask.LumaMin = 0.6
	ls := NewLocals([]adjust.Local{l}, 10, 10)
	dark := color.Gray(0.2)
	if got := ApplyLocals(dark, ls, 0.5, 0.5); !nearRGB(got, dark, 1e-6) {
		t.Errorf("gated pixel changed: %v", got)
	}
	bright := color.Gray(0.8)
	if got := ApplyLocals(bright, ls, 0.5, 0.5); got.R <= 0.8 {
		t.Errorf("ungated pixel not brightened: %v", got)
	}
}

func TestLocalBrush(t *testing.T) {
	l := radialLocal()
	l.Mask.Kind = adjust.MaskBrush
	l.Mask.Points = []adjust.BrushPoint{{X: 0.25, Y: 0.25, Radius: 0.05, Strength: 0.5}}
	ls := NewLocals([]adjust.Local{l}, 200, 100)
	if got := ls[0].Shape(0.25, 0.25); !near(got, 0.5, 1e-6) {
		t.Errorf("dab center = %v, want strength 0.5", got)
	}
	if got := ls[0].Shape(0.75, 0.75); got != 0 {
		t.Errorf("far from dab = %v", got)
	}
}

func TestLocalLinear(t *testing.T) {
	l := radialLocal()
	l.Mask.Kind = adjust.MaskLinear
	l.Mask.StartX, l.Mask.StartY, l.Mask.EndX, l.Mask.EndY = 0.5, 0, 0.5, 1
	l.Mask.Feather = 100
	ls := NewLocals([]adjust.Local{l}, 10, 10)
	top, bottom := ls[0].Shape(0.5, 0), ls[0].Shape(0.5, 1)
	if top != 1 || bottom != 0 {
		t.Errorf("gradient ends = %v, %v", top, bottom)
	}
}

func TestNeutralFilmIsIdentity(t *testing.T) {
	p := profile.Neutral()
	s := adjust.Defaults()
	f := NewFilm(&p, &s, nil, 7, 32, 32)
	for _, c := range samples {
		if got := f.Pixel(c, 3, 4); got != c {
			t.Errorf("Pixel(%v) = %v", c, got)
		}
	}
}

func TestToneResponseFixesEndpoints(t *testing.T) {
	for _, v := range []float32{0, 1} {
		if got := ToneResponse(v, 1, 0.5, 0.5); !near(got, v, 1e-6) {
			t.Errorf("ToneResponse(%v) = %v", v, got)
		}
	}
	if ToneResponse(0.3, 1, 1, 0) >= 0.3 {
		t.Error("toe should darken shadows")
	}
	if ToneResponse(0.7, 1, 0, 1) <= 0.7 {
		t.Error("shoulder should lift highlights")
	}
}

func TestVignetteDarkensCorners(t *testing.T) {
	v := Vignette{Amount: -1, Midpoint: 0.2, Feather: 0.3}
	center := ApplyVignette(color.Gray(0.5), v, 0.5, 0.5, 1.5)
	corner := ApplyVignette(color.Gray(0.5), v, 0.01, 0.01, 1.5)
	if center.R != 0.5 {
		t.Errorf("center = %v", center)
	}
	if corner.R >= 0.5 {
		t.Errorf("corner = %v", corner)
	}
	light := ApplyVignette(color.Gray(0.5), Vignette{Amount: 1, Midpoint: 0.2, Feather: 0.3}, 0.01, 0.01, 1.5)
	if light.R <= 0.5 {
		t.Errorf("lightening vignette corner = %v", light)
	}
}

func TestValueNoiseDeterministic(t *testing.T) {
	var differ bool
	for i := 0; i < 64; i++ {
		x, y := float32(i)*0.37, float32(i)*0.11
		a := ValueNoise(x, y, 42)
		if a != ValueNoise(x, y, 42) {
			t.Fatal("noise not deterministic")
		}
		if a < -1 || a > 1 {
			t.Fatalf("noise %v out of range", a)
		}
		if a != ValueNoise(x, y, 43) {
			differ = true
		}
	}
	if !differ {
		t.Error("seed does not affect noise")
	}
}

func TestHashUnitAtLatticeMatchesNoise(t *testing.T) {
	if got, want := ValueNoise(3, -2, 9), HashUnit(3, -2, 9); got != want {
		t.Errorf("ValueNoise at lattice = %v, want %v", got, want)
	}
}

func TestGrainSeedOnlyChangesGrainedFrame(t *testing.T) {
	p := profile.Neutral()
	s := adjust.Defaults()
	f1 := NewFilm(&p, &s, nil, 1, 64, 64)
	f2 := NewFilm(&p, &s, nil, 2, 64, 64)
	c := color.Gray(0.5)
	if f1.Pixel(c, 10, 10) != f2.Pixel(c, 10, 10) {
		t.Error("seed changed a frame without grain")
	}

	s.GrainAmount = 80
	g1 := NewFilm(&p, &s, nil, 1, 64, 64)
	g2 := NewFilm(&p, &s, nil, 2, 64, 64)
	var changed bool
	for x := 0; x < 64; x++ {
		if g1.Pixel(c, x, 5) != g1.Pixel(c, x, 5) {
			t.Fatal("grain not deterministic")
		}
		if g1.Pixel(c, x, 5) != g2.Pixel(c, x, 5) {
			changed = true
		}
	}
	if !changed {
		t.Error("seed did not change grain")
	}
}

func TestResolveGrainMergesLayer(t *testing.T) {
	p := profile.Neutral()
	p.Grain = profile.Grain{Enabled: true, Amount: 0.3, Size: 2, Roughness: 0.1, Color: 0.4}
	s := adjust.Defaults()
	s.GrainAmount = 20
	g, ok := resolveGrain(&p, &s, 1000, 500)
	if !ok {
		t.Fatal("grain inactive")
	}
	if !near(g.Amount, 0.5, 1e-6) || g.Color != 0.4 || !near(g.Scale, 1, 1e-6) {
		t.Errorf("grain = %+v", g)
	}
}

func TestGlowBrightPass(t *testing.T) {
	g := Glow{BloomThreshold: 0.8, HalationThreshold: 0.75}
	if got := g.BrightPass(color.Gray(0.5)); got != [4]float32{} {
		t.Errorf("dark pixel bright pass = %v", got)
	}
	if got := g.BrightPass(color.Gray(1)); !near(got[0], 1, 1e-5) || !near(got[3], 1, 1e-5) {
		t.Errorf("white pixel bright pass = %v", got)
	}
}

func TestDetailNeutral(t *testing.T) {
	s := adjust.Defaults()
	d := NewDetail(&s, 100, 100)
	if d.Active() {
		t.Errorf("defaults activate detail: %+v", d)
	}

	s.Sharpening = 50
	d = NewDetail(&s, 100, 100)
	if !d.SmallActive || d.Unsharp <= 0 {
		t.Fatalf("sharpening inactive: %+v", d)
	}
	flat := color.Gray(0.4)
	if got := d.Small(flat, flat); !nearRGB(got, flat, 1e-6) {
		t.Errorf("flat region sharpened to %v", got)
	}
	edge := d.Small(color.Gray(0.6), color.Gray(0.5))
	if edge.R <= 0.6 {
		t.Errorf("edge not sharpened: %v", edge)
	}
}
