// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shadergen

import (
	"errors"
	"fmt"

	"github.com/gogpu/naga"
)

// ErrEmptySPIRV is returned when the compiler produced no words.
var ErrEmptySPIRV = errors.New("shadergen: compiler produced empty SPIR-V")

// Compile compiles WGSL source to SPIR-V words.
func Compile(src string) ([]uint32, error) {
	b, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}
	if len(b) < 4 {
		return nil, ErrEmptySPIRV
	}
	// SPIR-V is a stream of little-endian 32-bit words.
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = uint32(b[i*4]) |
			uint32(b[i*4+1])<<8 |
			uint32(b[i*4+2])<<16 |
			uint32(b[i*4+3])<<24
	}
	return words, nil
}

// Validate reports whether src compiles.
func Validate(src string) error {
	_, err := Compile(src)
	return err
}

// ValidateAll validates every program of ps.
func (ps *Programs) ValidateAll() error {
	for _, p := range ps.All() {
		if err := Validate(p.Source); err != nil {
			return fmt.Errorf("%s: %w", p.Name, err)
		}
	}
	return nil
}
