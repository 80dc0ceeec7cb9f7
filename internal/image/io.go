package image

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif" // register GIF
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // register BMP
	_ "golang.org/x/image/tiff" // register TIFF
	_ "golang.org/x/image/webp" // register WebP
)

// I/O errors.
var (
	// ErrUnsupportedFormat is returned when the image format is not supported.
	ErrUnsupportedFormat = errors.New("image: unsupported format")

	// ErrEmptyData is returned when image data is empty.
	ErrEmptyData = errors.New("image: empty data")
)

// Format is an output encoding.
type Format string

// Output encodings.
const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// DefaultQuality is the JPEG quality used when none is given.
const DefaultQuality = 92

// ParseFormat maps a name or file extension ("jpg", ".png") to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Decode decodes a PNG, JPEG, GIF, WebP, TIFF or BMP image and returns it
// as straight-alpha NRGBA with its bounds moved to the origin.
func Decode(r io.Reader) (*image.NRGBA, string, error) {
	br := bufio.NewReader(r)
	if _, err := br.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, "", ErrEmptyData
		}
		return nil, "", fmt.Errorf("image: read: %w", err)
	}
	img, format, err := image.Decode(br)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", ErrUnsupportedFormat
		}
		return nil, "", fmt.Errorf("image: decode: %w", err)
	}
	return ToNRGBA(img), format, nil
}

// DecodeBytes decodes an encoded image held in memory.
func DecodeBytes(data []byte) (*image.NRGBA, string, error) {
	if len(data) == 0 {
		return nil, "", ErrEmptyData
	}
	return Decode(bytes.NewReader(data))
}

// Load decodes the image file at path.
func Load(path string) (*image.NRGBA, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("image: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// ToNRGBA returns img as an *image.NRGBA anchored at the origin. An NRGBA
// already at the origin is returned as is.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	// Fast path: tightly packed rows copy directly.
	if n, ok := img.(*image.NRGBA); ok {
		for y := range b.Dy() {
			i := n.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out.Pix[y*out.Stride:], n.Pix[i:i+b.Dx()*4])
		}
		return out
	}

	draw.Draw(out, out.Rect, img, b.Min, draw.Src)
	return out
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("image: encode PNG: %w", err)
	}
	return nil
}

// EncodeJPEG writes img as JPEG. Quality is clamped to [1,100]; alpha is
// discarded by the encoder.
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	quality = min(max(quality, 1), 100)
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("image: encode JPEG: %w", err)
	}
	return nil
}

// Encode writes img in format f. Quality applies to JPEG only; zero means
// DefaultQuality.
func Encode(w io.Writer, img image.Image, f Format, quality int) error {
	switch f {
	case FormatPNG:
		return EncodePNG(w, img)
	case FormatJPEG, "":
		if quality == 0 {
			quality = DefaultQuality
		}
		return EncodeJPEG(w, img, quality)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// Save encodes img into the file at path, picking the format from the
// extension.
func Save(path string, img image.Image, quality int) error {
	f, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return err
	}
	out, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("image: create file: %w", err)
	}
	w := bufio.NewWriter(out)
	if err := Encode(w, img, f, quality); err != nil {
		_ = out.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = out.Close()
		return fmt.Errorf("image: write file: %w", err)
	}
	return out.Close()
}
