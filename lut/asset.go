// Package lut holds 3D color lookup tables: the asset record, the .cube
// parser, trilinear sampling and the registry of built-in and imported
// tables.
package lut

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
)

// Size limits of a lattice edge.
const (
	MinSize = 2
	MaxSize = 65
)

// FormatCube is the only supported source format.
const FormatCube = "cube"

// Provenance records where an asset came from.
type Provenance string

// Provenance values.
const (
	ProvenanceBuiltin  Provenance = "builtin"
	ProvenanceImported Provenance = "imported"
)

var (
	// ErrParse is wrapped by every .cube parse failure.
	ErrParse = errors.New("lut: parse error")

	// ErrInvalid is wrapped by asset validation failures.
	ErrInvalid = errors.New("lut: invalid asset")

	// ErrNotFound is returned when no table has the requested id.
	ErrNotFound = errors.New("lut: not found")
)

// Asset is a 3D LUT of Size³ RGB samples. Data is laid out red fastest,
// then green, then blue: entry (r, g, b) starts at ((b*Size+g)*Size+r)*3.
// Assets handed out by a Registry are shared and must not be mutated.
type Asset struct {
	ID         string     `json:"id" validate:"required,max=128"`
	Name       string     `json:"name" validate:"required,max=256"`
	Format     string     `json:"format" validate:"oneof=cube"`
	Size       int        `json:"size" validate:"min=2,max=65"`
	Data       []float32  `json:"data" validate:"required"`
	Provenance Provenance `json:"provenance" validate:"oneof=builtin imported"`
	CreatedAt  time.Time  `json:"createdAt"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the record fields and the sample count.
func (a *Asset) Validate() error {
	if a == nil {
		return fmt.Errorf("%w: nil asset", ErrInvalid)
	}
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if want := a.Size * a.Size * a.Size * 3; len(a.Data) != want {
		return fmt.Errorf("%w: %d samples for size %d, want %d", ErrInvalid, len(a.Data), a.Size, want)
	}
	for i, v := range a.Data {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return fmt.Errorf("%w: non-finite sample at %d", ErrInvalid, i)
		}
	}
	return nil
}

// Sample returns the trilinearly interpolated table value at (r, g, b).
// Inputs are clamped to [0,1], NaN counting as 0; lattice points are
// reproduced exactly.
func (a *Asset) Sample(r, g, b float32) (float32, float32, float32) {
	n := a.Size
	ri, dr := cell(r, n)
	gi, dg := cell(g, n)
	bi, db := cell(b, n)

	var out [3]float32
	for ch := 0; ch < 3; ch++ {
		at := func(x, y, z int) float32 {
			return a.Data[((z*n+y)*n+x)*3+ch]
		}
		c00 := lerp(at(ri, gi, bi), at(ri+1, gi, bi), dr)
		c10 := lerp(at(ri, gi+1, bi), at(ri+1, gi+1, bi), dr)
		c01 := lerp(at(ri, gi, bi+1), at(ri+1, gi, bi+1), dr)
		c11 := lerp(at(ri, gi+1, bi+1), at(ri+1, gi+1, bi+1), dr)
		out[ch] = lerp(lerp(c00, c10, dg), lerp(c01, c11, dg), db)
	}
	return out[0], out[1], out[2]
}

// cell returns the lower lattice index and the fraction within the cell.
// The index is clamped to n-2 so the upper neighbor always exists. NaN
// samples the lower edge.
func cell(v float32, n int) (int, float32) {
	if !(v > 0) {
		v = 0
	}
	v = min(v, 1)
	pos := v * float32(n-1)
	i := int(pos)
	if i > n-2 {
		i = n - 2
	}
	return i, pos - float32(i)
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Identity returns an identity table of the given size.
func Identity(size int) []float32 {
	data := make([]float32, 0, size*size*size*3)
	step := 1 / float32(size-1)
	for b := 0; b < size; b++ {
		for g := 0; g < size; g++ {
			for r := 0; r < size; r++ {
				data = append(data, float32(r)*step, float32(g)*step, float32(b)*step)
			}
		}
	}
	return data
}
