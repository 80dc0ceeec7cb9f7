package pixelmath

import "github.com/gogpu/filmlab/internal/color"

// Grain holds the resolved grain step.
type Grain struct {
	Amount float32
	// Scale converts pixel coordinates to noise cells.
	Scale     float32
	Roughness float32
	Color     float32
}

const (
	grainStrength = 0.12
	grainOctave   = 17
)

// Hash mixes integer cell coordinates and a seed into 32 random bits. The
// WGSL programs use the identical sequence of wrapping u32 operations.
func Hash(x, y int32, seed uint32) uint32 {
	h := uint32(x)*0x8da6b343 ^ uint32(y)*0xd8163841 ^ seed*0xcb1ab31f
	h ^= h >> 16
	h *= 0x7feb352d
	h ^= h >> 15
	h *= 0x846ca68b
	h ^= h >> 16
	return h
}

// HashUnit maps Hash to [-1, 1] using its top 24 bits, which convert to
// float32 exactly.
func HashUnit(x, y int32, seed uint32) float32 {
	return float32(Hash(x, y, seed)>>8)/16777215*2 - 1
}

// ValueNoise is smoothed value noise in [-1, 1] at continuous position
// (px, py).
func ValueNoise(px, py float32, seed uint32) float32 {
	fx, fy := floor32(px), floor32(py)
	ix, iy := int32(fx), int32(fy)
	tx, ty := px-fx, py-fy
	tx = tx * tx * (3 - 2*tx)
	ty = ty * ty * (3 - 2*ty)
	a := HashUnit(ix, iy, seed)
	b := HashUnit(ix+1, iy, seed)
	c := HashUnit(ix, iy+1, seed)
	d := HashUnit(ix+1, iy+1, seed)
	top := a + (b-a)*tx
	bot := c + (d-c)*tx
	return top + (bot-top)*ty
}

// GrainNoise is ValueNoise with an optional second octave weighted by
// roughness.
func GrainNoise(px, py, roughness float32, seed uint32) float32 {
	n := ValueNoise(px, py, seed)
	if roughness <= 0 {
		return n
	}
	w := roughness * 0.5
	n2 := ValueNoise(px*2+grainOctave, py*2+grainOctave, seed)
	return (n + w*n2) / (1 + w)
}

// ApplyGrain adds grain at output pixel (x, y). The noise depends only on
// the pixel coordinate, the parameters and the seed.
func ApplyGrain(c color.RGB, g *Grain, x, y int, seed uint32) color.RGB {
	px := (float32(x) + 0.5) * g.Scale
	py := (float32(y) + 0.5) * g.Scale
	n := GrainNoise(px, py, g.Roughness, seed)
	noise := color.Gray(n)
	if g.Color > 0 {
		chroma := color.RGB{
			R: GrainNoise(px, py, g.Roughness, seed+1),
			G: GrainNoise(px, py, g.Roughness, seed+2),
			B: GrainNoise(px, py, g.Roughness, seed+3),
		}
		noise = noise.Mix(chroma, g.Color)
	}
	l := c.Luma()
	s := g.Amount * grainStrength * (0.5 + 2*l*(1-l))
	return c.Add(noise.Scale(s))
}
