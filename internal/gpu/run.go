//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// MaxBufferBytes bounds every storage buffer of a frame.
const MaxBufferBytes = 128 << 20

var errFenceTimeout = errors.New("fence not signaled within timeout")

// submitTimeout bounds the fence wait of one frame.
const submitTimeout = 5 * time.Second

const (
	usageStorage = gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst
	usageStaging = gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst
	usageUniform = gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst
)

type buffer struct {
	hal.Buffer
	size uint64
}

// frameRun records the passes of one frame into a single encoder and owns
// every transient buffer and bind group until release.
type frameRun struct {
	dev     *Device
	w, h    int
	encoder hal.CommandEncoder
	buffers []hal.Buffer
	groups  []hal.BindGroup
}

func checkSize(w, h, bytesPerPixel int) error {
	n := uint64(w) * uint64(h) * uint64(bytesPerPixel)
	if n > MaxBufferBytes {
		return fmt.Errorf("%w: %dx%d needs %s, limit %s", ErrTooLarge, w, h,
			humanize.IBytes(n), humanize.IBytes(MaxBufferBytes))
	}
	return nil
}

func newFrameRun(dev *Device, label string, w, h int) (*frameRun, error) {
	encoder, err := dev.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label + "_encoder"})
	if err != nil {
		return nil, fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("gpu: begin encoding: %w", err)
	}
	return &frameRun{dev: dev, w: w, h: h, encoder: encoder}, nil
}

func (r *frameRun) buffer(label string, size uint64, usage gputypes.BufferUsage) (buffer, error) {
	b, err := r.dev.device.CreateBuffer(&hal.BufferDescriptor{Label: label, Size: size, Usage: usage})
	if err != nil {
		return buffer{}, fmt.Errorf("gpu: create buffer %s (%s): %w", label, humanize.IBytes(size), err)
	}
	r.buffers = append(r.buffers, b)
	return buffer{Buffer: b, size: size}, nil
}

// upload creates a storage buffer holding data.
func (r *frameRun) upload(label string, data []byte) (buffer, error) {
	b, err := r.buffer(label, uint64(len(data)), usageStorage)
	if err != nil {
		return buffer{}, err
	}
	r.dev.queue.WriteBuffer(b.Buffer, 0, data)
	return b, nil
}

// plane creates a vec4<f32> working buffer of the frame size.
func (r *frameRun) plane(label string) (buffer, error) {
	return r.buffer(label, uint64(r.w)*uint64(r.h)*16, usageStorage)
}

// dispatch binds u and bufs in binding order after the uniform block and
// records one compute pass of k over the frame.
func (r *frameRun) dispatch(k *kernel, u *uniforms, bufs ...buffer) error {
	ub, err := r.buffer(k.prog.Name+"_params", uint64(len(u.buf)), usageUniform)
	if err != nil {
		return err
	}
	r.dev.queue.WriteBuffer(ub.Buffer, 0, u.buf)

	if len(bufs)+1 != len(k.prog.Bindings) {
		return fmt.Errorf("gpu: %s: %d buffers for %d bindings", k.prog.Name, len(bufs)+1, len(k.prog.Bindings))
	}
	entries := make([]gputypes.BindGroupEntry, 0, len(k.prog.Bindings))
	for i, bd := range k.prog.Bindings {
		b := ub
		if i > 0 {
			b = bufs[i-1]
		}
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  bd.Index,
			Resource: gputypes.BufferBinding{Buffer: b.NativeHandle(), Offset: 0, Size: b.size},
		})
	}
	bg, err := r.dev.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   k.prog.Name + "_bind",
		Layout:  k.bindLayout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("gpu: %s: create bind group: %w", k.prog.Name, err)
	}
	r.groups = append(r.groups, bg)

	pass := r.encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: k.prog.Name + "_pass"})
	pass.SetPipeline(k.pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch(workgroups(r.w), workgroups(r.h), 1)
	pass.End()
	return nil
}

func workgroups(n int) uint32 {
	return uint32((n + 7) / 8) //nolint:gosec // frame dimensions fit uint32
}

// finish copies src into a staging buffer, submits the frame, waits for the
// fence and reads the packed pixels back into dst.
func (r *frameRun) finish(src buffer, dst *image.NRGBA) error {
	staging, err := r.buffer("staging", src.size, usageStaging)
	if err != nil {
		return err
	}
	r.encoder.CopyBufferToBuffer(src.Buffer, staging.Buffer, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: src.size},
	})
	cmdBuf, err := r.encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("gpu: end encoding: %w", err)
	}
	r.encoder = nil
	device := r.dev.device
	defer device.FreeCommandBuffer(cmdBuf)

	fence, err := device.CreateFence()
	if err != nil {
		return fmt.Errorf("gpu: create fence: %w", err)
	}
	defer device.DestroyFence(fence)
	if err := r.dev.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return r.dev.markLost(fmt.Errorf("submit: %w", err))
	}
	ok, err := device.Wait(fence, 1, submitTimeout)
	if err == nil && !ok {
		err = errFenceTimeout
	}
	if err != nil {
		return r.dev.markLost(fmt.Errorf("wait for GPU: %w", err))
	}

	readback := make([]byte, src.size)
	if err := r.dev.queue.ReadBuffer(staging.Buffer, 0, readback); err != nil {
		return r.dev.markLost(fmt.Errorf("readback: %w", err))
	}
	unpackPixels(dst, readback)
	return nil
}

// release destroys every transient object of the frame.
func (r *frameRun) release() {
	device := r.dev.device
	if r.encoder != nil {
		r.encoder.DiscardEncoding()
		r.encoder = nil
	}
	for _, bg := range r.groups {
		device.DestroyBindGroup(bg)
	}
	for _, b := range r.buffers {
		device.DestroyBuffer(b)
	}
	r.groups, r.buffers = nil, nil
}

// packPixels returns the NRGBA pixels as little-endian RGBA8 words.
func packPixels(img *image.NRGBA) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if img.Stride == w*4 && len(img.Pix) >= w*h*4 {
		return img.Pix[:w*h*4]
	}
	out := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		copy(out[y*w*4:(y+1)*w*4], img.Pix[y*img.Stride:y*img.Stride+w*4])
	}
	return out
}

func unpackPixels(dst *image.NRGBA, data []byte) {
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	for y := 0; y < h; y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+w*4], data[y*w*4:(y+1)*w*4])
	}
}
