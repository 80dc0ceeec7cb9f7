// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package filmlab

import (
	"context"
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/gogpu/filmlab/adjust"
	"github.com/gogpu/filmlab/internal/cache"
	"github.com/gogpu/filmlab/internal/cpu"
	"github.com/gogpu/filmlab/internal/geometry"
	"github.com/gogpu/filmlab/internal/gpu"
	imgio "github.com/gogpu/filmlab/internal/image"
	"github.com/gogpu/filmlab/internal/overlay"
	"github.com/gogpu/filmlab/internal/parallel"
	"github.com/gogpu/filmlab/internal/tier"
	"github.com/gogpu/filmlab/lut"
	"github.com/gogpu/filmlab/profile"
	"github.com/gogpu/filmlab/shadergen"
)

// Pipeline renders adjustment sets and film profiles onto images.
//
// A Pipeline owns everything that outlives a render call: the backend of
// each tier, the generated shader programs, the normalizer memo and the
// sticky fallback counts. It is safe for concurrent use; GPU tiers are used
// by one call at a time while CPU renders run in parallel.
type Pipeline struct {
	opts     options
	workers  *parallel.WorkerPool
	scratch  *imgio.Pool
	memo     adjust.Memo
	programs *cache.Cache[shadergen.Config, *shadergen.Programs]

	mu       sync.Mutex
	backends map[tier.Tier]tier.Backend
	down     map[tier.Tier]error
	failures map[string]int
	closed   bool
}

// New creates a Pipeline. GPU tiers are opened lazily by the first render
// that reaches them.
func New(opts ...Option) (*Pipeline, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 0 {
		return nil, fmt.Errorf("filmlab: negative worker count %d", o.workers)
	}
	if o.maxPixels <= 0 {
		return nil, fmt.Errorf("filmlab: pixel limit must be positive, got %d", o.maxPixels)
	}
	if o.registry == nil {
		o.registry = lut.NewRegistry()
	}
	if o.clock == nil {
		o.clock = defaultOptions().clock
	}
	return &Pipeline{
		opts:     o,
		workers:  parallel.NewWorkerPool(o.workers),
		scratch:  imgio.NewPool(4, imgio.DefaultPoolSizes),
		programs: cache.New[shadergen.Config, *shadergen.Programs](32),
		backends: make(map[tier.Tier]tier.Backend),
		down:     make(map[tier.Tier]error),
		failures: make(map[string]int),
	}, nil
}

// Registry returns the LUT registry used to resolve profile tables.
func (p *Pipeline) Registry() *lut.Registry { return p.opts.registry }

// Close releases every backend and the worker pool. Close must not be
// called while renders are in flight. It is safe to call more than once.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	for t := range p.backends {
		p.dispose(t)
	}
	p.programs.Clear()
	p.workers.Close()
	return nil
}

// Render renders src with req into dst. The output size is the size of dst.
// dst is only written when the render succeeds; on cancellation it is left
// untouched.
func (p *Pipeline) Render(ctx context.Context, dst *image.NRGBA, src image.Image, req Request) error {
	if dst == nil || dst.Rect.Empty() {
		return ErrNoDrawingContext
	}
	if src == nil || src.Bounds().Empty() {
		return fmt.Errorf("%w: empty source", ErrNoDrawingContext)
	}
	if err := p.checkOpen(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return canceled(err)
	}
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	if err := p.checkPixels(w, h); err != nil {
		return err
	}

	set := p.canonical(req)
	f, release, err := p.frame(ctx, src, &set, req, w, h)
	if err != nil {
		return err
	}
	defer release()

	out := p.scratch.Get(w, h)
	defer p.scratch.Put(out)

	used, err := p.run(ctx, f, out, req)
	if err != nil {
		return err
	}
	if err := p.finish(out, f, &set, used, req); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return canceled(err)
	}
	copyInto(dst, out)
	Logger().Debug("filmlab: rendered", "tier", used, "width", w, "height", h, "mode", req.Mode)
	return nil
}

// RenderImage renders src into a new image. Its size follows the crop,
// scaled by req.Width, req.Height or req.MaxDimension.
func (p *Pipeline) RenderImage(ctx context.Context, src image.Image, req Request) (*image.NRGBA, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty source", ErrNoDrawingContext)
	}
	set := p.canonical(req)
	b := src.Bounds()
	w, h := geometry.OutputSize(b.Dx(), b.Dy(), set.Geometry.Params(), req.Width, req.Height, req.MaxDimension)
	if err := p.checkPixels(w, h); err != nil {
		return nil, err
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	req.Set = &set
	if err := p.Render(ctx, dst, src, req); err != nil {
		return nil, err
	}
	return dst, nil
}

// ResetFallback clears the multi-pass failure count of key.
func (p *Pipeline) ResetFallback(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failures, key)
}

// Failures returns the multi-pass failure count of key.
func (p *Pipeline) Failures(key string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failures[key]
}

func (p *Pipeline) checkOpen() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	return nil
}

func (p *Pipeline) checkPixels(w, h int) error {
	if n := int64(w) * int64(h); n > int64(p.opts.maxPixels) {
		return fmt.Errorf("%w: %d×%d is %s pixels, limit %s", ErrResourceExhausted,
			w, h, humanize.Comma(n), humanize.Comma(int64(p.opts.maxPixels)))
	}
	return nil
}

// canonical returns the normalized adjustments of req.
func (p *Pipeline) canonical(req Request) adjust.Set {
	if req.Set != nil {
		return adjust.NormalizeSet(req.Set.Clone())
	}
	return p.memo.Normalize(req.Adjustments)
}

// frame resolves the profile, the LUT and the (pre-scaled) source of one
// render. release returns pooled buffers.
func (p *Pipeline) frame(ctx context.Context, src image.Image, s *adjust.Set, req Request, w, h int) (*tier.Frame, func(), error) {
	prof := profile.Resolve(profile.Input{
		Record:    req.Profile,
		PresetID:  s.Film.PresetID,
		Intensity: s.Film.Intensity,
		Overrides: profile.Overrides(s.Film.Overrides),
	})
	asset, err := p.lut(ctx, &prof)
	if err != nil {
		return nil, nil, err
	}

	full := imgio.ToNRGBA(src)
	needW, needH := sourceNeed(s.Geometry, w, h)
	scaled := imgio.Prescale(full, needW, needH, p.scratch)
	release := func() {}
	if scaled != full {
		Logger().Debug("filmlab: prescaled source",
			"from", full.Rect.Size(), "to", scaled.Rect.Size(),
			"saved", humanize.IBytes(uint64(len(full.Pix)-len(scaled.Pix)))) //nolint:gosec // scaled is smaller
		release = func() { p.scratch.Put(scaled) }
	}
	return tier.NewFrame(scaled, s, &prof, asset, req.Seeds.For(req.Mode == ModeExport), w, h), release, nil
}

// lut loads the table of the profile's LUT layer. A missing table disables
// the layer.
func (p *Pipeline) lut(ctx context.Context, prof *profile.Profile) (*lut.Asset, error) {
	if !prof.LUT.Enabled || prof.LUT.ID == "" || prof.LUT.Intensity <= 0 {
		return nil, nil
	}
	a, err := p.opts.registry.Get(ctx, prof.LUT.ID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, canceled(ctxErr)
		}
		Logger().Warn("filmlab: LUT unavailable, layer skipped", "lut", prof.LUT.ID, "error", err)
		return nil, nil
	}
	return a, nil
}

// sourceNeed returns the source resolution sampled by a w×h output: the
// output size over the crop fraction, times the zoom, in source
// orientation.
func sourceNeed(g adjust.Geometry, w, h int) (int, int) {
	if geometry.NormalizeRightAngle(float64(g.RightAngle))%180 != 0 {
		w, h = h, w
	}
	cw, ch := max(g.Crop.W, 0.01), max(g.Crop.H, 0.01)
	zoom := max(g.Scale/100, 1)
	return int(math.Ceil(float64(w) * zoom / cw)), int(math.Ceil(float64(h) * zoom / ch))
}

// finish runs the post-step: grading for the tiers that skip it, then the
// timestamp overlay.
func (p *Pipeline) finish(out *image.NRGBA, f *tier.Frame, s *adjust.Set, used tier.Tier, req Request) error {
	if used != tier.MultiPass && f.Master.GradingActive {
		cpu.Grade(out, &f.Master.Grading, p.workers)
	}
	when := req.CapturedAt
	if when.IsZero() {
		when = p.opts.clock()
	}
	if err := overlay.Draw(out, s.Timestamp, when); err != nil {
		return fmt.Errorf("filmlab: timestamp: %w", err)
	}
	return nil
}

// copyInto copies src, anchored at the origin, into dst.
func copyInto(dst, src *image.NRGBA) {
	n := src.Rect.Dx() * 4
	for y := range src.Rect.Dy() {
		i := dst.PixOffset(dst.Rect.Min.X, dst.Rect.Min.Y+y)
		copy(dst.Pix[i:i+n], src.Pix[y*src.Stride:y*src.Stride+n])
	}
}

// factory returns the factory of tier t: the one installed by WithBackend,
// or the built-in backend.
func (p *Pipeline) factory(t tier.Tier) tier.Factory {
	if f, ok := p.opts.factories[t]; ok {
		return f
	}
	switch t {
	case tier.MultiPass:
		return func() (tier.Backend, error) {
			o, err := p.gpuOptions()
			if err != nil {
				return nil, err
			}
			b, err := gpu.NewMultiPass(o)
			if err != nil {
				return nil, err
			}
			return b, nil
		}
	case tier.SinglePass:
		return func() (tier.Backend, error) {
			o, err := p.gpuOptions()
			if err != nil {
				return nil, err
			}
			b, err := gpu.NewSinglePass(o)
			if err != nil {
				return nil, err
			}
			return b, nil
		}
	default:
		return func() (tier.Backend, error) { return cpu.New(p.workers), nil }
	}
}

func (p *Pipeline) gpuOptions() (gpu.Options, error) {
	o := gpu.Options{
		Allowed:    p.opts.shaders,
		Programs:   p.generate,
		KernelSets: p.opts.kernelSets,
	}
	if p.opts.provider != nil {
		dev, err := gpu.DeviceFromProvider(p.opts.provider)
		if err != nil {
			return o, fmt.Errorf("%w: %w", tier.ErrUnavailable, err)
		}
		o.Device = dev
	}
	return o, nil
}

// generate returns the programs of cfg, generating each feature set once
// per pipeline.
func (p *Pipeline) generate(cfg shadergen.Config) (*shadergen.Programs, error) {
	return p.programs.GetOrCreate(cfg, func() (*shadergen.Programs, error) {
		return shadergen.Generate(cfg)
	})
}
