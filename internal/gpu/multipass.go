// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"context"
	"fmt"
	"image"

	"github.com/gogpu/filmlab/internal/filter"
	"github.com/gogpu/filmlab/internal/pixelmath"
	"github.com/gogpu/filmlab/internal/tier"
	"github.com/gogpu/filmlab/shadergen"
)

// MultiPass renders a frame as a chain of compute passes: geometry, master
// with grading, detail, film, glow and encode, all recorded into one
// command buffer.
type MultiPass struct {
	*base
}

var _ tier.Backend = (*MultiPass)(nil)

// NewMultiPass creates the multi-pass tier. It returns an error wrapping
// tier.ErrUnavailable when no device can be opened or the programs do not
// compile.
func NewMultiPass(opts Options) (*MultiPass, error) {
	b, err := newBase(opts, blurProgram, detailProgram, encodeProgram)
	if err != nil {
		return nil, err
	}
	slogger().Info("multi-pass tier ready", "adapter", b.dev.Name())
	return &MultiPass{base: b}, nil
}

func multiPassPrograms(ps *shadergen.Programs) []*shadergen.Program {
	return []*shadergen.Program{ps.Geometry, ps.Master, ps.Film, ps.GlowBright, ps.GlowComposite}
}

// Tier returns tier.MultiPass.
func (m *MultiPass) Tier() tier.Tier { return tier.MultiPass }

// Lost reports whether the device was lost.
func (m *MultiPass) Lost() bool { return m.lost() }

// Close releases the kernels and, if owned, the device.
func (m *MultiPass) Close() { m.close() }

// Render implements tier.Backend. The output includes color grading.
func (m *MultiPass) Render(ctx context.Context, f *tier.Frame, dst *image.NRGBA) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w, h := f.Width, f.Height
	sb := f.Source.Bounds()
	if err := checkSize(w, h, 16); err != nil {
		return err
	}
	if err := checkSize(sb.Dx(), sb.Dy(), 4); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(f); err != nil {
		return err
	}
	ks, err := m.kernels(f.Needs(), multiPassPrograms)
	if err != nil {
		return fmt.Errorf("%w: %w", tier.ErrUnavailable, err)
	}

	run, err := newFrameRun(m.dev, "multipass", w, h)
	if err != nil {
		return err
	}
	defer run.release()

	p := &passes{run: run, f: f, fixed: m.fixed}
	if err := p.record(ks); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return run.finish(p.out, dst)
}

// passes records the multi-pass chain of one frame.
type passes struct {
	run   *frameRun
	f     *tier.Frame
	fixed kernelSet

	// cur holds the current image; other receives the next pass.
	cur, other buffer
	tmp, blur  buffer
	out        buffer
	aux        map[string]buffer
}

func (p *passes) record(ks kernelSet) error {
	f, run := p.f, p.run
	src, err := run.upload("source", packPixels(f.Source))
	if err != nil {
		return err
	}
	planes := []*buffer{&p.cur, &p.other, &p.tmp, &p.blur}
	for i, name := range []string{"plane_a", "plane_b", "tmp", "blur"} {
		if *planes[i], err = run.plane(name); err != nil {
			return err
		}
	}
	if err := p.uploadAux(); err != nil {
		return err
	}

	geo := ks["geometry"]
	u := p.uniforms(geo)
	u.geometry(f.Transform)
	if err := run.dispatch(geo, u, src, p.cur); err != nil {
		return err
	}

	master := ks["master"]
	u = p.uniforms(master)
	u.master(&f.Master)
	if err := p.step(master, u); err != nil {
		return err
	}

	d := &f.Detail
	if d.SmallActive {
		if err := p.detail(d, d.SmallSigma, detailSmall); err != nil {
			return err
		}
	}
	if d.LargeActive {
		if err := p.detail(d, d.LargeSigma, detailLarge); err != nil {
			return err
		}
	}

	film := ks["film"]
	u = p.uniforms(film)
	u.film(&f.Film)
	if err := p.step(film, u); err != nil {
		return err
	}

	if bright, comp := ks["glow_bright"], ks["glow_composite"]; bright != nil && comp != nil {
		if err := p.glow(bright, comp, &f.Film.Glow); err != nil {
			return err
		}
	}

	if p.out, err = run.buffer("output", uint64(f.Width)*uint64(f.Height)*4, usageStorage); err != nil {
		return err
	}
	enc := p.fixed["encode"]
	return run.dispatch(enc, p.uniforms(enc), p.cur, p.out)
}

func (p *passes) swap() { p.cur, p.other = p.other, p.cur }

func (p *passes) uniforms(k *kernel) *uniforms {
	u := newUniforms(k.prog)
	u.size(p.f.Width, p.f.Height)
	return u
}

// uploadAux uploads the lookup tables the frame's programs may bind.
func (p *passes) uploadAux() error {
	p.aux = make(map[string]buffer, 3)
	for name, data := range map[string][]float32{
		"curves":   curvesData(&p.f.Master),
		"locals":   localsData(p.f.Master.Locals),
		"film_lut": lutData(&p.f.Film),
	} {
		b, err := p.run.upload(name, floatBytes(data))
		if err != nil {
			return err
		}
		p.aux[name] = b
	}
	return nil
}

// step runs k from cur into other, binding any lookup tables k declares,
// and swaps.
func (p *passes) step(k *kernel, u *uniforms, extra ...buffer) error {
	bufs := []buffer{p.cur, p.other}
	for _, bd := range k.prog.Bindings[3:] {
		if b, ok := p.aux[bd.Name]; ok {
			bufs = append(bufs, b)
		}
	}
	bufs = append(bufs, extra...)
	if err := p.run.dispatch(k, u, bufs...); err != nil {
		return err
	}
	p.swap()
	return nil
}

// gaussian blurs src into p.blur through p.tmp.
func (p *passes) gaussian(src buffer, sigma float32) error {
	k := filter.CachedKernel(sigma)
	blur := p.fixed["blur"]
	for _, pass := range []struct {
		horizontal bool
		from, to   buffer
	}{
		{true, src, p.tmp},
		{false, p.tmp, p.blur},
	} {
		u := p.uniforms(blur)
		u.blur(k, pass.horizontal)
		if err := p.run.dispatch(blur, u, pass.from, pass.to); err != nil {
			return err
		}
	}
	return nil
}

func (p *passes) detail(d *pixelmath.Detail, sigma float32, mode int) error {
	if err := p.gaussian(p.cur, sigma); err != nil {
		return err
	}
	k := p.fixed["detail"]
	u := p.uniforms(k)
	u.detail(d, mode)
	return p.step(k, u, p.blur)
}

func (p *passes) glow(bright, comp *kernel, g *pixelmath.Glow) error {
	u := p.uniforms(bright)
	u.glow(g)
	if err := p.run.dispatch(bright, u, p.cur, p.other); err != nil {
		return err
	}
	if err := p.gaussian(p.other, g.Sigma); err != nil {
		return err
	}
	u = p.uniforms(comp)
	u.glow(g)
	return p.step(comp, u, p.blur)
}
