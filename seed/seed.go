// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package seed derives the deterministic random seeds used by the grain
// stage.
//
// A seed is a pure function of a content key, so the same asset renders the
// same grain in every preview and every export. Preview and export seeds are
// derived independently so an export can be re-randomized without touching
// the on-screen preview.
package seed

import (
	"crypto/rand"
	"encoding/binary"
	"hash/fnv"
)

// exportSalt separates the export seed stream from the render seed stream.
const exportSalt = "#export"

// Derive returns the 32-bit FNV-1a hash of key.
func Derive(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32()
}

// Inputs selects the seeds for one render call.
type Inputs struct {
	// Key identifies the content, typically an asset id.
	Key string `json:"key"`

	// Render overrides the preview seed when non-nil.
	Render *uint32 `json:"render,omitempty"`

	// Export overrides the export seed when non-nil.
	Export *uint32 `json:"export,omitempty"`
}

// RenderSeed returns the explicit render seed or the one derived from Key.
func (in Inputs) RenderSeed() uint32 {
	if in.Render != nil {
		return *in.Render
	}
	return Derive(in.Key)
}

// ExportSeed returns the explicit export seed or the one derived from Key.
func (in Inputs) ExportSeed() uint32 {
	if in.Export != nil {
		return *in.Export
	}
	return Derive(in.Key + exportSalt)
}

// For returns the export seed when export is true, otherwise the render seed.
func (in Inputs) For(export bool) uint32 {
	if export {
		return in.ExportSeed()
	}
	return in.RenderSeed()
}

// Fresh returns a random seed for callers that want a new grain pattern.
func Fresh() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return Derive(err.Error())
	}
	return binary.LittleEndian.Uint32(b[:])
}

// Value returns a pointer to v, for filling explicit overrides.
func Value(v uint32) *uint32 { return &v }
