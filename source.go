package filmlab

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"

	imgio "github.com/gogpu/filmlab/internal/image"
)

// DecodeSource decodes an encoded source image (PNG, JPEG, GIF, WebP, TIFF
// or BMP). The decode runs on the calling goroutine and finishes reading r
// before DecodeSource returns; a ctx that ended meanwhile yields
// ErrCanceled.
func (p *Pipeline) DecodeSource(ctx context.Context, r io.Reader) (*image.NRGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, canceled(err)
	}
	img, format, err := imgio.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("filmlab: decode source: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, canceled(err)
	}
	b := img.Rect
	Logger().Debug("filmlab: decoded source", "format", format, "width", b.Dx(), "height", b.Dy())
	return img, nil
}

// RenderReader decodes r and renders it like RenderImage.
func (p *Pipeline) RenderReader(ctx context.Context, r io.Reader, req Request) (*image.NRGBA, error) {
	src, err := p.DecodeSource(ctx, r)
	if err != nil {
		return nil, err
	}
	return p.RenderImage(ctx, src, req)
}

// Encode renders src like RenderImage and encodes the result: lossy JPEG
// at opts.Quality, or lossless PNG.
func (p *Pipeline) Encode(ctx context.Context, src image.Image, req Request, opts EncodeOptions) ([]byte, error) {
	img, err := p.RenderImage(ctx, src, req)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imgio.Encode(&buf, img, opts.Format, opts.Quality); err != nil {
		return nil, fmt.Errorf("filmlab: %w", err)
	}
	return buf.Bytes(), nil
}
