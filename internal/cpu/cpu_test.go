package cpu

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/filmlab/adjust"
	"github.com/gogpu/filmlab/internal/parallel"
	"github.com/gogpu/filmlab/internal/pixelmath"
	"github.com/gogpu/filmlab/internal/tier"
	"github.com/gogpu/filmlab/profile"
)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(w-1, 1)),
				G: uint8(y * 255 / max(h-1, 1)),
				B: 96,
				A: 255,
			})
		}
	}
	return img
}

func render(t *testing.T, b *Backend, f *tier.Frame) *image.NRGBA {
	t.Helper()
	dst := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	if err := b.Render(context.Background(), f, dst); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return dst
}

func maxDelta(a, b *image.NRGBA) int {
	d := 0
	for i := range a.Pix {
		d = max(d, abs(int(a.Pix[i])-int(b.Pix[i])))
	}
	return d
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func newBackend(t *testing.T) *Backend {
	t.Helper()
	pool := parallel.NewWorkerPool(4)
	t.Cleanup(pool.Close)
	return New(pool)
}

func TestNeutralRenderIsIdentity(t *testing.T) {
	src := gradient(32, 24)
	s := adjust.Defaults()
	p := profile.Neutral()
	f := tier.NewFrame(src, &s, &p, nil, 1, 32, 24)

	got := render(t, newBackend(t), f)
	if d := maxDelta(src, got); d > 1 {
		t.Errorf("neutral render differs from source by %d levels", d)
	}
}

func TestExposureBrightens(t *testing.T) {
	src := gradient(16, 16)
	s := adjust.Defaults()
	s.Exposure = 1
	p := profile.Neutral()
	got := render(t, newBackend(t), tier.NewFrame(src, &s, &p, nil, 1, 16, 16))

	i := got.PixOffset(4, 4)
	if got.Pix[i+2] <= src.Pix[i+2] {
		t.Errorf("blue %d not brighter than %d", got.Pix[i+2], src.Pix[i+2])
	}
}

func TestSeedOnlyMattersWithGrain(t *testing.T) {
	src := gradient(24, 24)
	s := adjust.Defaults()
	p := profile.Neutral()
	b := newBackend(t)

	a := render(t, b, tier.NewFrame(src, &s, &p, nil, 1, 24, 24))
	c := render(t, b, tier.NewFrame(src, &s, &p, nil, 2, 24, 24))
	if maxDelta(a, c) != 0 {
		t.Error("seed changed a frame without grain")
	}

	s.GrainAmount = 60
	a = render(t, b, tier.NewFrame(src, &s, &p, nil, 1, 24, 24))
	again := render(t, b, tier.NewFrame(src, &s, &p, nil, 1, 24, 24))
	c = render(t, b, tier.NewFrame(src, &s, &p, nil, 2, 24, 24))
	if maxDelta(a, again) != 0 {
		t.Error("same seed rendered different grain")
	}
	if maxDelta(a, c) == 0 {
		t.Error("different seeds rendered identical grain")
	}
}

func TestAlphaPreserved(t *testing.T) {
	src := gradient(8, 8)
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 128
	}
	s := adjust.Defaults()
	s.Clarity = 50
	p := profile.Neutral()
	got := render(t, newBackend(t), tier.NewFrame(src, &s, &p, nil, 1, 8, 8))
	for i := 3; i < len(got.Pix); i += 4 {
		if got.Pix[i] != 128 {
			t.Fatalf("alpha at %d = %d, want 128", i/4, got.Pix[i])
		}
	}
}

func TestGlowBrightensAroundHighlights(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for i := range src.Pix {
		src.Pix[i] = 20
		if i%4 == 3 {
			src.Pix[i] = 255
		}
	}
	for y := 14; y < 18; y++ {
		for x := 14; x < 18; x++ {
			src.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
		}
	}
	s := adjust.Defaults()
	p := profile.Neutral()
	p.Bloom.Enabled, p.Bloom.Amount = true, 1
	got := render(t, newBackend(t), tier.NewFrame(src, &s, &p, nil, 1, 32, 32))

	i := got.PixOffset(13, 16)
	if got.Pix[i] <= 20 {
		t.Errorf("pixel next to highlight = %d, want bloom above 20", got.Pix[i])
	}
}

func TestRenderCanceled(t *testing.T) {
	src := gradient(8, 8)
	s := adjust.Defaults()
	p := profile.Neutral()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dst := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	err := newBackend(t).Render(ctx, tier.NewFrame(src, &s, &p, nil, 1, 8, 8), dst)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestBilinearClampsAndCenters(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{0, 0, 0, 255})
	src.SetNRGBA(1, 0, color.NRGBA{255, 255, 255, 255})

	if v := Bilinear(src, 0.5, 0.5)[0]; v != 0 {
		t.Errorf("center of pixel 0 = %v, want 0", v)
	}
	if v := Bilinear(src, 1, 0.5)[0]; v < 0.49 || v > 0.51 {
		t.Errorf("midpoint = %v, want 0.5", v)
	}
	if v := Bilinear(src, -10, 0.5)[0]; v != 0 {
		t.Errorf("left of image = %v, want edge 0", v)
	}
	if v := Bilinear(src, 10, 0.5)[0]; v != 1 {
		t.Errorf("right of image = %v, want edge 1", v)
	}
}

func TestGradeShiftsShadows(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 40
	}
	s := adjust.Defaults()
	s.Grading.Shadows = adjust.GradeZone{Hue: 240, Saturation: 100}
	g := pixelmath.NewGrading(s.Grading)
	pool := parallel.NewWorkerPool(1)
	defer pool.Close()
	Grade(img, &g, pool)
	if img.Pix[2] <= img.Pix[0] {
		t.Errorf("blue shadow grade gave r=%d b=%d", img.Pix[0], img.Pix[2])
	}
	if img.Pix[3] != 40 {
		t.Errorf("alpha changed to %d", img.Pix[3])
	}
}
