package image

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"path/filepath"
	"strings"
	"testing"
)

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			c := color.NRGBA{R: 20, G: 40, B: 60, A: 255}
			if (x+y)%2 == 0 {
				c = color.NRGBA{R: 220, G: 200, B: 180, A: 128}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestDecodePNGRoundTrip(t *testing.T) {
	src := checker(7, 5)
	var buf bytes.Buffer
	if err := EncodePNG(&buf, src); err != nil {
		t.Fatal(err)
	}
	got, format, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if format != "png" {
		t.Errorf("format = %q, want png", format)
	}
	if !bytes.Equal(got.Pix, src.Pix) {
		t.Error("PNG round trip changed pixels")
	}
}

func TestDecodeGIF(t *testing.T) {
	pal := image.NewPaletted(image.Rect(0, 0, 4, 4), color.Palette{color.Black, color.White})
	pal.SetColorIndex(1, 1, 1)
	var buf bytes.Buffer
	if err := gif.Encode(&buf, pal, nil); err != nil {
		t.Fatal(err)
	}
	got, format, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if format != "gif" {
		t.Errorf("format = %q, want gif", format)
	}
	if c := got.NRGBAAt(1, 1); c.R != 255 || c.A != 255 {
		t.Errorf("pixel (1,1) = %v, want white", c)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, _, err := Decode(strings.NewReader("")); !errors.Is(err, ErrEmptyData) {
		t.Errorf("empty input: err = %v, want ErrEmptyData", err)
	}
	if _, _, err := DecodeBytes(nil); !errors.Is(err, ErrEmptyData) {
		t.Errorf("nil bytes: err = %v, want ErrEmptyData", err)
	}
	if _, _, err := Decode(strings.NewReader("not an image at all")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("garbage: err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestToNRGBAMovesToOrigin(t *testing.T) {
	src := checker(6, 6)
	sub := src.SubImage(image.Rect(2, 1, 5, 4)).(*image.NRGBA)
	got := ToNRGBA(sub)
	if got.Rect != image.Rect(0, 0, 3, 3) {
		t.Fatalf("rect = %v, want 3x3 at origin", got.Rect)
	}
	if got.NRGBAAt(0, 0) != src.NRGBAAt(2, 1) {
		t.Errorf("origin pixel = %v, want %v", got.NRGBAAt(0, 0), src.NRGBAAt(2, 1))
	}
	if ToNRGBA(src) != src {
		t.Error("origin-anchored NRGBA was copied")
	}

	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	gray.SetGray(1, 0, color.Gray{Y: 90})
	if c := ToNRGBA(gray).NRGBAAt(1, 0); c != (color.NRGBA{R: 90, G: 90, B: 90, A: 255}) {
		t.Errorf("gray pixel = %v", c)
	}
}

func TestEncodeFormats(t *testing.T) {
	src := checker(16, 16)
	tests := []struct {
		format Format
		magic  []byte
	}{
		{FormatPNG, []byte("\x89PNG")},
		{FormatJPEG, []byte{0xFF, 0xD8}},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, src, tt.format, 0); err != nil {
				t.Fatal(err)
			}
			if !bytes.HasPrefix(buf.Bytes(), tt.magic) {
				t.Errorf("output starts with % x", buf.Bytes()[:4])
			}
		})
	}
	if err := Encode(&bytes.Buffer{}, src, "heic", 0); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("heic: err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestJPEGQualityAffectsSize(t *testing.T) {
	src := checker(64, 64)
	var lo, hi bytes.Buffer
	if err := EncodeJPEG(&lo, src, 10); err != nil {
		t.Fatal(err)
	}
	if err := EncodeJPEG(&hi, src, 100); err != nil {
		t.Fatal(err)
	}
	if lo.Len() >= hi.Len() {
		t.Errorf("quality 10 gave %d bytes, quality 100 gave %d", lo.Len(), hi.Len())
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{".jpg", FormatJPEG, true},
		{"JPEG", FormatJPEG, true},
		{".PNG", FormatPNG, true},
		{"webp", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	src := checker(5, 3)
	path := filepath.Join(t.TempDir(), "out.png")
	if err := Save(path, src, 0); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Pix, src.Pix) {
		t.Error("saved PNG differs")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("loading a missing file succeeded")
	}
	if err := Save(filepath.Join(t.TempDir(), "x.bmp"), src, 0); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("save bmp: err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestPNGDecodesAnyModel(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(0, 0, 2, 1))
	rgba.SetRGBA(0, 0, color.RGBA{R: 100, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		t.Fatal(err)
	}
	got, _, err := DecodeBytes(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if c := got.NRGBAAt(0, 0); c.R != 100 || c.A != 255 {
		t.Errorf("pixel = %v", c)
	}
}
