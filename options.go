// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package filmlab

import (
	"time"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/filmlab/internal/framecheck"
	"github.com/gogpu/filmlab/internal/tier"
	"github.com/gogpu/filmlab/lut"
	"github.com/gogpu/filmlab/shadergen"
)

// Tier identifies a render backend, in fallback order.
type Tier = tier.Tier

// Tiers.
const (
	TierMultiPass  = tier.MultiPass
	TierSinglePass = tier.SinglePass
	TierCPU        = tier.CPU
)

// Backend renders frames on one tier. Custom backends are installed with
// WithBackend.
type Backend = tier.Backend

// Frame is the resolved input of one render, handed to a Backend.
type Frame = tier.Frame

// BackendFactory creates a backend. It returns an error wrapping
// ErrUnavailable when the tier cannot run here.
type BackendFactory = tier.Factory

// ErrUnavailable is returned by backends that cannot serve a frame.
var ErrUnavailable = tier.ErrUnavailable

// Thresholds tune the validation of GPU output.
type Thresholds = framecheck.Thresholds

// Option configures a Pipeline.
//
// Example:
//
//	p, err := filmlab.New(
//	    filmlab.WithWorkers(4),
//	    filmlab.WithStickyThreshold(3),
//	)
type Option func(*options)

type options struct {
	provider   gpucontext.DeviceProvider
	registry   *lut.Registry
	shaders    *shadergen.Config
	factories  map[tier.Tier]tier.Factory
	workers    int
	sticky     int
	gpu        bool
	clock      func() time.Time
	thresholds framecheck.Thresholds
	maxPixels  int
	kernelSets int
}

// DefaultStickyThreshold is the number of multi-pass failures after which a
// content key skips the multi-pass tier.
const DefaultStickyThreshold = 2

// DefaultMaxPixels bounds the output size of one render.
const DefaultMaxPixels = 100 << 20

func defaultOptions() options {
	return options{
		factories:  make(map[tier.Tier]tier.Factory),
		sticky:     DefaultStickyThreshold,
		gpu:        true,
		clock:      time.Now,
		thresholds: framecheck.DefaultThresholds(),
		maxPixels:  DefaultMaxPixels,
	}
}

// WithDeviceProvider renders the GPU tiers on the host application's
// device instead of opening a private one. The provider must expose its HAL
// device and queue; otherwise the GPU tiers report unavailable.
//
// Example:
//
//	p, err := filmlab.New(filmlab.WithDeviceProvider(app))
func WithDeviceProvider(dp gpucontext.DeviceProvider) Option {
	return func(o *options) {
		o.provider = dp
	}
}

// WithLUTRegistry sets the registry that resolves profile LUT ids. The
// default is a fresh lut.NewRegistry().
func WithLUTRegistry(r *lut.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithShaderConfig bounds the features the GPU tiers compile. Frames that
// need a disabled feature fall through to the CPU tier.
func WithShaderConfig(cfg shadergen.Config) Option {
	return func(o *options) {
		o.shaders = &cfg
	}
}

// WithBackend replaces the factory of one tier. It is mostly useful in
// tests and for hosts with their own GPU integration.
func WithBackend(t Tier, f BackendFactory) Option {
	return func(o *options) {
		o.factories[t] = f
	}
}

// WithWorkers sets the size of the CPU worker pool. Zero means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithStickyThreshold sets how many multi-pass failures make a content key
// skip the multi-pass tier. Values below 1 disable sticky fallback.
func WithStickyThreshold(n int) Option {
	return func(o *options) {
		o.sticky = n
	}
}

// WithGPU enables or disables the GPU tiers.
func WithGPU(enabled bool) Option {
	return func(o *options) {
		o.gpu = enabled
	}
}

// WithClock sets the clock used for the timestamp overlay when a request
// carries no capture time.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// WithThresholds tunes output validation.
func WithThresholds(t Thresholds) Option {
	return func(o *options) {
		o.thresholds = t
	}
}

// WithMaxPixels bounds the output size of one render. Larger outputs fail
// with ErrResourceExhausted.
func WithMaxPixels(n int) Option {
	return func(o *options) {
		o.maxPixels = n
	}
}

// WithKernelCache sets how many compiled feature sets each GPU tier keeps.
func WithKernelCache(n int) Option {
	return func(o *options) {
		o.kernelSets = n
	}
}
