//go:build !nogpu

package gpu

import (
	"context"
	"fmt"
	"image"

	"github.com/gogpu/filmlab/internal/tier"
	"github.com/gogpu/filmlab/shadergen"
)

// SinglePass renders a frame with the fused program: geometry, master
// without grading, and film in one dispatch. It skips the detail and glow
// passes.
type SinglePass struct {
	*base
}

var _ tier.Backend = (*SinglePass)(nil)

// NewSinglePass creates the single-pass tier.
func NewSinglePass(opts Options) (*SinglePass, error) {
	b, err := newBase(opts)
	if err != nil {
		return nil, err
	}
	slogger().Info("single-pass tier ready", "adapter", b.dev.Name())
	return &SinglePass{base: b}, nil
}

func fusedProgram(ps *shadergen.Programs) []*shadergen.Program {
	return []*shadergen.Program{ps.Fused}
}

// Tier returns tier.SinglePass.
func (s *SinglePass) Tier() tier.Tier { return tier.SinglePass }

// Lost reports whether the device was lost.
func (s *SinglePass) Lost() bool { return s.lost() }

// Close releases the kernels and, if owned, the device.
func (s *SinglePass) Close() { s.close() }

// Render implements tier.Backend. Color grading is left to the caller.
func (s *SinglePass) Render(ctx context.Context, f *tier.Frame, dst *image.NRGBA) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sb := f.Source.Bounds()
	if err := checkSize(f.Width, f.Height, 4); err != nil {
		return err
	}
	if err := checkSize(sb.Dx(), sb.Dy(), 4); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(f); err != nil {
		return err
	}
	ks, err := s.kernels(f.Needs(), fusedProgram)
	if err != nil {
		return fmt.Errorf("%w: %w", tier.ErrUnavailable, err)
	}
	k := ks["fused"]

	run, err := newFrameRun(s.dev, "singlepass", f.Width, f.Height)
	if err != nil {
		return err
	}
	defer run.release()

	src, err := run.upload("source", packPixels(f.Source))
	if err != nil {
		return err
	}
	out, err := run.buffer("output", uint64(f.Width)*uint64(f.Height)*4, usageStorage)
	if err != nil {
		return err
	}
	bufs := []buffer{src, out}
	for _, bd := range k.prog.Bindings[3:] {
		var data []float32
		switch bd.Name {
		case "curves":
			data = curvesData(&f.Master)
		case "locals":
			data = localsData(f.Master.Locals)
		case "film_lut":
			data = lutData(&f.Film)
		default:
			return fmt.Errorf("gpu: fused: unknown binding %q", bd.Name)
		}
		b, err := run.upload(bd.Name, floatBytes(data))
		if err != nil {
			return err
		}
		bufs = append(bufs, b)
	}

	u := newUniforms(k.prog)
	u.size(f.Width, f.Height)
	u.geometry(f.Transform)
	u.master(&f.Master)
	u.film(&f.Film)
	if err := run.dispatch(k, u, bufs...); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return run.finish(out, dst)
}
