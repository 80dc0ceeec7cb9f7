// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Errors reported by the GPU tiers. The pipeline treats all of them as a
// reason to fall back.
var (
	// ErrNoAdapter is returned when no GPU adapter can be opened.
	ErrNoAdapter = errors.New("gpu: no usable adapter")

	// ErrDeviceLost is returned when submission or synchronization fails;
	// the device must be recreated.
	ErrDeviceLost = errors.New("gpu: device lost")

	// ErrTooLarge is returned when a frame needs a buffer above the limit.
	ErrTooLarge = errors.New("gpu: frame exceeds buffer limit")

	// ErrProvider is returned when a device provider does not expose HAL
	// types.
	ErrProvider = errors.New("gpu: provider does not expose HAL device and queue")
)

// Device is an opened HAL device and queue. A Device opened by OpenDevice
// owns its instance and device; one built from a provider does not.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	name     string
	external bool
	lost     atomic.Bool
}

// OpenDevice opens the first discrete or integrated Vulkan adapter, or the
// first adapter of any kind.
func OpenDevice() (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not available", ErrNoAdapter)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %w", ErrNoAdapter, err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		t := adapters[i].Info.DeviceType
		if t == gputypes.DeviceTypeDiscreteGPU || t == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	open, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("%w: open device: %w", ErrNoAdapter, err)
	}
	slogger().Info("gpu device opened", "adapter", selected.Info.Name)
	return &Device{
		instance: instance,
		device:   open.Device,
		queue:    open.Queue,
		name:     selected.Info.Name,
	}, nil
}

// NewDevice wraps a device and queue owned by the caller.
func NewDevice(device hal.Device, queue hal.Queue) *Device {
	return &Device{device: device, queue: queue, name: "external", external: true}
}

// DeviceFromProvider extracts a shared device from a provider exposing
// HalDevice() any and HalQueue() any, such as a gogpu application.
func DeviceFromProvider(provider any) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrProvider)
	}
	return NewDevice(device, queue), nil
}

// Name returns the adapter name.
func (d *Device) Name() string { return d.name }

// Lost reports whether a submission on the device has failed.
func (d *Device) Lost() bool { return d.lost.Load() }

func (d *Device) markLost(err error) error {
	d.lost.Store(true)
	slogger().Warn("gpu device lost", "adapter", d.name, "err", err)
	return fmt.Errorf("%w: %w", ErrDeviceLost, err)
}

// Close destroys the device and instance unless they are shared.
func (d *Device) Close() {
	if d.external {
		d.device, d.queue = nil, nil
		return
	}
	if d.device != nil {
		d.device.Destroy()
		d.device = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
	d.queue = nil
}
