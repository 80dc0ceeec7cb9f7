package overlay

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/gogpu/filmlab/adjust"
)

var when = time.Date(2024, time.March, 7, 12, 0, 0, 0, time.UTC)

func gray(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 40, G: 40, B: 40, A: 255})
		}
	}
	return img
}

// changed returns the bounding box of pixels that differ from the 40-gray
// background.
func changed(img *image.NRGBA) image.Rectangle {
	var r image.Rectangle
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.NRGBAAt(x, y).R != 40 {
				r = r.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return r
}

func TestMaskHasCoverage(t *testing.T) {
	mask, baseline, err := Mask(when.Format(Layout), 24)
	if err != nil {
		t.Fatal(err)
	}
	if baseline <= 0 || baseline >= mask.Rect.Dy() {
		t.Errorf("baseline %d outside mask height %d", baseline, mask.Rect.Dy())
	}
	var sum int
	for _, a := range mask.Pix {
		sum += int(a)
	}
	if sum == 0 {
		t.Fatal("mask is empty")
	}
	if mask.Rect.Dx() < mask.Rect.Dy()*3 {
		t.Errorf("mask %v too narrow for %q", mask.Rect, when.Format(Layout))
	}
}

func TestDrawDisabledIsNoop(t *testing.T) {
	img := gray(200, 120)
	ts := adjust.Defaults().Timestamp
	if err := Draw(img, ts, when); err != nil {
		t.Fatal(err)
	}
	if r := changed(img); !r.Empty() {
		t.Errorf("disabled overlay touched %v", r)
	}

	ts.Enabled, ts.Opacity = true, 0
	if err := Draw(img, ts, when); err != nil {
		t.Fatal(err)
	}
	if r := changed(img); !r.Empty() {
		t.Errorf("transparent overlay touched %v", r)
	}
}

func TestDrawCorners(t *testing.T) {
	tests := []struct {
		position string
		inside   image.Rectangle
	}{
		{adjust.CornerBottomRight, image.Rect(100, 60, 200, 120)},
		{adjust.CornerBottomLeft, image.Rect(0, 60, 100, 120)},
		{adjust.CornerTopRight, image.Rect(100, 0, 200, 60)},
		{adjust.CornerTopLeft, image.Rect(0, 0, 100, 60)},
	}
	for _, tt := range tests {
		t.Run(tt.position, func(t *testing.T) {
			img := gray(200, 120)
			ts := adjust.Timestamp{Enabled: true, Position: tt.position, Scale: 1, Opacity: 1}
			if err := Draw(img, ts, when); err != nil {
				t.Fatal(err)
			}
			r := changed(img)
			if r.Empty() {
				t.Fatal("nothing drawn")
			}
			if !r.In(tt.inside) {
				t.Errorf("drawn area %v not inside %v", r, tt.inside)
			}
		})
	}
}

func TestDrawUsesInk(t *testing.T) {
	img := gray(200, 120)
	ts := adjust.Timestamp{Enabled: true, Position: adjust.CornerBottomRight, Scale: 1.5, Opacity: 1}
	if err := Draw(img, ts, when); err != nil {
		t.Fatal(err)
	}
	var warm int
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] > 200 && img.Pix[i+2] < 100 {
			warm++
		}
	}
	if warm == 0 {
		t.Error("no orange ink pixels")
	}
}

func TestSizeScales(t *testing.T) {
	if Size(10, 10, 1) != minSize {
		t.Errorf("tiny frame size = %v, want %v", Size(10, 10, 1), minSize)
	}
	if a, b := Size(1000, 800, 1), Size(1000, 800, 2); b != 2*a {
		t.Errorf("scale 2 gave %v, want %v", b, 2*a)
	}
}
