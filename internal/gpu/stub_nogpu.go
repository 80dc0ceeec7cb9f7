//go:build nogpu

// Stubs for builds without GPU support. Every constructor reports
// tier.ErrUnavailable so the pipeline falls back to the CPU tier.

package gpu

import (
	"context"
	"errors"
	"image"
	"log/slog"

	"github.com/gogpu/filmlab/internal/tier"
	"github.com/gogpu/filmlab/shadergen"
)

var (
	ErrNoAdapter  = errors.New("gpu: no usable adapter")
	ErrDeviceLost = errors.New("gpu: device lost")
	ErrTooLarge   = errors.New("gpu: frame exceeds buffer limit")
	ErrProvider   = errors.New("gpu: provider does not expose HAL device and queue")
)

// MaxBufferBytes bounds every storage buffer of a frame.
const MaxBufferBytes = 128 << 20

// SetLogger is a no-op without GPU support.
func SetLogger(*slog.Logger) {}

// Device is never created without GPU support.
type Device struct{}

// OpenDevice reports ErrNoAdapter.
func OpenDevice() (*Device, error) { return nil, ErrNoAdapter }

// DeviceFromProvider reports ErrProvider.
func DeviceFromProvider(any) (*Device, error) { return nil, ErrProvider }

// Name returns an empty string.
func (d *Device) Name() string { return "" }

// Lost reports false.
func (d *Device) Lost() bool { return false }

// Close does nothing.
func (d *Device) Close() {}

// ProgramSource returns the program set of a feature configuration.
type ProgramSource func(shadergen.Config) (*shadergen.Programs, error)

// Options configures a GPU backend.
type Options struct {
	Device     *Device
	Allowed    *shadergen.Config
	Programs   ProgramSource
	KernelSets int
}

type unavailable struct{ t tier.Tier }

func (u unavailable) Tier() tier.Tier { return u.t }
func (unavailable) Render(context.Context, *tier.Frame, *image.NRGBA) error {
	return tier.ErrUnavailable
}
func (unavailable) Lost() bool { return false }
func (unavailable) Close()     {}

// MultiPass is unavailable without GPU support.
type MultiPass struct{ unavailable }

// SinglePass is unavailable without GPU support.
type SinglePass struct{ unavailable }

// NewMultiPass reports tier.ErrUnavailable.
func NewMultiPass(Options) (*MultiPass, error) { return nil, tier.ErrUnavailable }

// NewSinglePass reports tier.ErrUnavailable.
func NewSinglePass(Options) (*SinglePass, error) { return nil, tier.ErrUnavailable }
