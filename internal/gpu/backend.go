//go:build !nogpu

package gpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/filmlab/internal/cache"
	"github.com/gogpu/filmlab/internal/tier"
	"github.com/gogpu/filmlab/shadergen"
)

// ProgramSource returns the program set of a feature configuration.
// shadergen.Generate is the default; a Pipeline passes its cached
// generator.
type ProgramSource func(shadergen.Config) (*shadergen.Programs, error)

// Options configures a GPU backend.
type Options struct {
	// Device is the device to render on. Nil opens a private Vulkan device.
	Device *Device
	// Allowed bounds the features the backend renders; frames needing more
	// are refused with tier.ErrUnavailable. The zero value allows all.
	Allowed *shadergen.Config
	// Programs generates program sets; nil means shadergen.Generate.
	Programs ProgramSource
	// KernelSets bounds the cached kernel sets.
	KernelSets int
}

// base holds what both GPU tiers share: the device, the allowed feature
// set and compiled kernels keyed by feature set.
type base struct {
	mu       sync.Mutex
	dev      *Device
	ownsDev  bool
	allowed  shadergen.Config
	programs ProgramSource
	sets     *cache.Cache[shadergen.Config, kernelSet]
	fixed    kernelSet
	closed   bool
}

func newBase(opts Options, fixed ...*shadergen.Program) (*base, error) {
	b := &base{
		allowed:  shadergen.AllFeatures(),
		programs: opts.Programs,
	}
	if opts.Allowed != nil {
		b.allowed = *opts.Allowed
	}
	if b.programs == nil {
		b.programs = shadergen.Generate
	}

	// Validate once so a toolchain problem surfaces at construction.
	ps, err := b.programs(b.allowed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", tier.ErrUnavailable, err)
	}
	if err := ps.ValidateAll(); err != nil {
		return nil, fmt.Errorf("%w: %w", tier.ErrUnavailable, err)
	}

	b.dev = opts.Device
	if b.dev == nil {
		if b.dev, err = OpenDevice(); err != nil {
			return nil, fmt.Errorf("%w: %w", tier.ErrUnavailable, err)
		}
		b.ownsDev = true
	}
	if b.fixed, err = newKernelSet(b.dev.device, fixed...); err != nil {
		b.closeDevice()
		return nil, fmt.Errorf("%w: %w", tier.ErrUnavailable, err)
	}

	limit := opts.KernelSets
	if limit <= 0 {
		limit = 8
	}
	b.sets = cache.New[shadergen.Config, kernelSet](limit)
	device := b.dev.device
	b.sets.OnEvict(func(_ shadergen.Config, ks kernelSet) {
		ks.destroy(device)
	})
	return b, nil
}

// check refuses frames the backend cannot render. Callers hold b.mu.
func (b *base) check(f *tier.Frame) error {
	if b.closed {
		return fmt.Errorf("%w: backend closed", tier.ErrUnavailable)
	}
	if b.dev.Lost() {
		return ErrDeviceLost
	}
	if !tier.Covers(b.allowed, f.Needs()) {
		return fmt.Errorf("%w: frame needs features outside the shader config", tier.ErrUnavailable)
	}
	return nil
}

// kernels returns the kernels of cfg selected by pick, compiling them on
// first use. Callers hold b.mu.
func (b *base) kernels(cfg shadergen.Config, pick func(*shadergen.Programs) []*shadergen.Program) (kernelSet, error) {
	return b.sets.GetOrCreate(cfg, func() (kernelSet, error) {
		ps, err := b.programs(cfg)
		if err != nil {
			return nil, err
		}
		slogger().Debug("compiling kernels", "features", fmt.Sprintf("%+v", cfg))
		return newKernelSet(b.dev.device, pick(ps)...)
	})
}

func (b *base) lost() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dev != nil && b.dev.Lost()
}

func (b *base) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.sets.Clear()
	b.fixed.destroy(b.dev.device)
	b.closeDevice()
}

func (b *base) closeDevice() {
	if b.ownsDev {
		b.dev.Close()
	}
}
