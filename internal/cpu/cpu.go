// Package cpu is the software render tier. It evaluates the same per-pixel
// math as the GPU programs, row-parallel, and is always available.
package cpu

import (
	"context"
	"image"

	"github.com/gogpu/filmlab/internal/color"
	"github.com/gogpu/filmlab/internal/filter"
	"github.com/gogpu/filmlab/internal/parallel"
	"github.com/gogpu/filmlab/internal/pixelmath"
	"github.com/gogpu/filmlab/internal/tier"
)

// Backend renders frames in Go.
type Backend struct {
	pool     *parallel.WorkerPool
	ownsPool bool
}

var _ tier.Backend = (*Backend)(nil)

// New returns a CPU backend running on pool. A nil pool gets a private pool
// with GOMAXPROCS workers, closed by Close.
func New(pool *parallel.WorkerPool) *Backend {
	if pool == nil {
		return &Backend{pool: parallel.NewWorkerPool(0), ownsPool: true}
	}
	return &Backend{pool: pool}
}

// Tier returns tier.CPU.
func (b *Backend) Tier() tier.Tier { return tier.CPU }

// Lost always reports false.
func (b *Backend) Lost() bool { return false }

// Close releases the private worker pool, if any.
func (b *Backend) Close() {
	if b.ownsPool {
		b.pool.Close()
	}
}

// Render runs geometry, master (without grading), detail, film and glow and
// writes the result into dst. The context is checked between passes.
func (b *Backend) Render(ctx context.Context, f *tier.Frame, dst *image.NRGBA) error {
	w, h := f.Width, f.Height
	cur := filter.NewPlane(w, h)

	b.pool.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			v := (float32(y) + 0.5) / float32(h)
			for x := 0; x < w; x++ {
				px := GeometryPixel(f, x, y)
				u := (float32(x) + 0.5) / float32(w)
				c := f.Master.Pixel(rgb(px), u, v, false)
				cur.Set(x, y, [4]float32{c.R, c.G, c.B, px[3]})
			}
		}
	})
	if err := ctx.Err(); err != nil {
		return err
	}

	if f.Detail.Active() {
		cur = b.detail(cur, &f.Detail)
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	b.pool.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				px := cur.At(x, y)
				c := f.Film.Pixel(rgb(px), x, y)
				cur.Set(x, y, [4]float32{c.R, c.G, c.B, px[3]})
			}
		}
	})
	if err := ctx.Err(); err != nil {
		return err
	}

	if f.Film.HalationActive || f.Film.BloomActive {
		b.glow(cur, &f.Film.Glow)
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	store(dst, cur, b.pool)
	return nil
}

// detail applies the small and large blur steps.
func (b *Backend) detail(cur *filter.Plane, d *pixelmath.Detail) *filter.Plane {
	blur := filter.NewPlane(cur.W, cur.H)
	if d.SmallActive {
		filter.Blur(blur, cur, d.SmallSigma, b.pool)
		b.combine(cur, blur, d.Small)
	}
	if d.LargeActive {
		filter.Blur(blur, cur, d.LargeSigma, b.pool)
		b.combine(cur, blur, d.Large)
	}
	return cur
}

// combine replaces each pixel of cur with fn(pixel, blurred) in place.
func (b *Backend) combine(cur, blur *filter.Plane, fn func(c, blur color.RGB) color.RGB) {
	b.pool.Rows(cur.H, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < cur.W; x++ {
				px := cur.At(x, y)
				c := fn(rgb(px), rgb(blur.At(x, y)))
				cur.Set(x, y, [4]float32{c.R, c.G, c.B, px[3]})
			}
		}
	})
}

func (b *Backend) glow(cur *filter.Plane, g *pixelmath.Glow) {
	bright := filter.NewPlane(cur.W, cur.H)
	b.pool.Rows(cur.H, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < cur.W; x++ {
				bright.Set(x, y, g.BrightPass(rgb(cur.At(x, y))))
			}
		}
	})
	blurred := filter.NewPlane(cur.W, cur.H)
	filter.Blur(blurred, bright, g.Sigma, b.pool)
	b.pool.Rows(cur.H, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < cur.W; x++ {
				px := cur.At(x, y)
				c := g.Composite(rgb(px), blurred.At(x, y))
				cur.Set(x, y, [4]float32{c.R, c.G, c.B, px[3]})
			}
		}
	})
}

func rgb(px [4]float32) color.RGB {
	return color.RGB{R: px[0], G: px[1], B: px[2]}
}

// store quantizes p into dst.
func store(dst *image.NRGBA, p *filter.Plane, run filter.Runner) {
	run.Rows(p.H, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := dst.Pix[y*dst.Stride : y*dst.Stride+p.W*4]
			src := p.Pix[y*p.W*4 : (y+1)*p.W*4]
			for i, v := range src {
				row[i] = color.Quantize8(v)
			}
		}
	})
}
