package filmlab

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/filmlab/internal/framecheck"
	"github.com/gogpu/filmlab/internal/tier"
)

// errRejected marks GPU output refused by validation.
var errRejected = errors.New("filmlab: output rejected")

// order returns the tiers to try for req.
func (p *Pipeline) order(req Request) []tier.Tier {
	var tiers []tier.Tier
	if p.opts.gpu {
		switch req.Preference {
		case PreferAuto:
			if !p.sticky(req.Seeds.Key) {
				tiers = append(tiers, tier.MultiPass)
			}
			tiers = append(tiers, tier.SinglePass)
		case PreferMultiPass:
			tiers = append(tiers, tier.MultiPass, tier.SinglePass)
		case PreferSinglePass:
			tiers = append(tiers, tier.SinglePass)
		}
	}
	return append(tiers, tier.CPU)
}

// sticky reports whether key has failed on the multi-pass tier often
// enough to skip it.
func (p *Pipeline) sticky(key string) bool {
	if key == "" || p.opts.sticky < 1 {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failures[key] >= p.opts.sticky
}

func (p *Pipeline) recordFailure(key string) {
	if key == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[key]++
	if n := p.failures[key]; n == p.opts.sticky {
		Logger().Warn("filmlab: content key pinned below multi-pass", "key", key, "failures", n)
	}
}

// run renders f into out on the first tier that succeeds and returns that
// tier. GPU output is validated against the source; a failed or rejected
// tier is disposed and the next one is tried within the same call.
func (p *Pipeline) run(ctx context.Context, f *tier.Frame, out *image.NRGBA, req Request) (tier.Tier, error) {
	key := req.Seeds.Key
	srcStats := sync.OnceValue(func() framecheck.Stats { return framecheck.Probe(f.Source) })

	for _, t := range p.order(req) {
		if t == tier.CPU {
			return t, p.renderCPU(ctx, f, out)
		}
		err := p.attempt(ctx, t, f, out, srcStats)
		switch {
		case err == nil:
			if t == tier.MultiPass {
				p.ResetFallback(key)
			}
			return t, nil
		case errors.Is(err, ErrCanceled), errors.Is(err, ErrClosed):
			return t, err
		}
		Logger().Warn("filmlab: falling back", "tier", t, "key", key, "error", err)
		if t == tier.MultiPass {
			p.recordFailure(key)
		}
	}
	return tier.CPU, fmt.Errorf("%w: no tier rendered the frame", tier.ErrUnavailable)
}

// attempt renders on GPU tier t and validates the result. GPU tiers are
// used under p.mu, one call at a time.
func (p *Pipeline) attempt(ctx context.Context, t tier.Tier, f *tier.Frame, out *image.NRGBA, src func() framecheck.Stats) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	b, err := p.backend(t)
	if err != nil {
		return err
	}
	if err := b.Render(ctx, f, out); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return canceled(ctxErr)
		}
		p.dispose(t)
		return err
	}
	if v := p.opts.thresholds.Decide(src(), framecheck.Probe(out)); !v.OK {
		p.dispose(t)
		return fmt.Errorf("%w: %s (max luma %.3f, max alpha %.3f)",
			errRejected, v.Reason, v.Output.MaxLuma, v.Output.MaxAlpha)
	}
	return nil
}

// renderCPU renders on the CPU tier outside p.mu. CPU backends must be safe
// for concurrent use.
func (p *Pipeline) renderCPU(ctx context.Context, f *tier.Frame, out *image.NRGBA) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	b, err := p.backend(tier.CPU)
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("filmlab: cpu tier: %w", err)
	}
	if err := b.Render(ctx, f, out); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return canceled(ctxErr)
		}
		return fmt.Errorf("filmlab: cpu render: %w", err)
	}
	return nil
}

// backend returns the live backend of t, creating it on first use. A
// backend whose device was lost is disposed and recreated once. A tier
// whose factory reports ErrUnavailable stays down for the life of the
// pipeline. Callers hold p.mu.
func (p *Pipeline) backend(t tier.Tier) (tier.Backend, error) {
	if err := p.down[t]; err != nil {
		return nil, err
	}
	if b, ok := p.backends[t]; ok {
		if !b.Lost() {
			return b, nil
		}
		Logger().Warn("filmlab: device lost, recreating tier", "tier", t)
		p.dispose(t)
	}
	b, err := p.factory(t)()
	if err != nil {
		if errors.Is(err, tier.ErrUnavailable) {
			Logger().Info("filmlab: tier unavailable", "tier", t, "error", err)
			p.down[t] = err
		}
		return nil, err
	}
	if b.Lost() {
		b.Close()
		return nil, fmt.Errorf("%w: %s device lost on creation", tier.ErrUnavailable, t)
	}
	p.backends[t] = b
	return b, nil
}

// dispose closes the backend of t; the next use recreates it. Callers hold
// p.mu.
func (p *Pipeline) dispose(t tier.Tier) {
	if b, ok := p.backends[t]; ok {
		b.Close()
		delete(p.backends, t)
	}
}
