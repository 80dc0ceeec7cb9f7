// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu implements the two GPU render tiers on the wgpu HAL.
//
// MultiPass records geometry, master, detail, film, glow and encode as
// separate compute passes into one command buffer; intermediate images are
// vec4<f32> storage buffers. SinglePass runs the fused program generated by
// shadergen and skips detail, glow and grading.
//
// Both tiers compile the programs of the frame's feature set on first use
// and cache the kernels per feature set. A frame is one submit and one
// fence wait. A failed submit, wait or readback marks the device lost; the
// backend must then be closed and recreated.
//
// Build with -tags nogpu to compile the package without GPU support; the
// constructors then report tier.ErrUnavailable.
package gpu
