// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package filmlab renders photographic and film-look adjustments onto
// images, reproducibly, on whatever hardware is available.
//
// # Overview
//
// A render takes source pixels, a set of slider adjustments (package
// adjust) and an optional film profile (package profile), and writes the
// result into a caller-provided image. The same request renders to the same
// pixels on every run: film grain is a pure function of pixel position and
// a seed derived from the content key (package seed).
//
// # Quick Start
//
//	p, err := filmlab.New()
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	out, err := p.RenderImage(ctx, src, filmlab.Request{
//	    Adjustments:  &adjust.Raw{Exposure: ptr(0.5)},
//	    MaxDimension: 2048,
//	    Seeds:        seed.Inputs{Key: assetID},
//	})
//
// # Tiers
//
// Three backends render a frame, tried in order:
//
//   - multi-pass GPU: one compute pass per stage, including detail,
//     halation, bloom and color grading
//   - single-pass GPU: one fused program; grading runs on the CPU after it
//   - CPU: the same per-pixel math in Go, row-parallel, always available
//
// GPU output is validated on a fixed probe grid. A tier that fails or
// produces a blank frame is disposed and the next tier renders the frame
// within the same call. A content key that keeps failing on the multi-pass
// tier skips it until ResetFallback or a later multi-pass success.
//
// # Shaders
//
// GPU programs are generated per feature set by package shadergen: only
// the steps a frame uses are emitted, and unused helpers are stripped.
//
// # Logging
//
// filmlab is silent by default. SetLogger installs a log/slog logger for
// the pipeline and its GPU tiers.
package filmlab
