package filter

import (
	"image"
	"sync"
)

// Plane is a float RGBA image, four values per pixel, row-major.
type Plane struct {
	W, H int
	Pix  []float32
}

// NewPlane allocates a zeroed plane.
func NewPlane(w, h int) *Plane {
	return &Plane{W: w, H: h, Pix: make([]float32, w*h*4)}
}

// At returns the pixel at (x, y).
func (p *Plane) At(x, y int) [4]float32 {
	i := (y*p.W + x) * 4
	return [4]float32{p.Pix[i], p.Pix[i+1], p.Pix[i+2], p.Pix[i+3]}
}

// Set stores the pixel at (x, y).
func (p *Plane) Set(x, y int, v [4]float32) {
	i := (y*p.W + x) * 4
	copy(p.Pix[i:i+4], v[:])
}

// FromNRGBA converts an 8-bit image to a plane with values in [0,1].
func FromNRGBA(img *image.NRGBA) *Plane {
	b := img.Bounds()
	p := NewPlane(b.Dx(), b.Dy())
	for y := 0; y < p.H; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+p.W*4]
		out := p.Pix[y*p.W*4 : (y+1)*p.W*4]
		for i, v := range row {
			out[i] = float32(v) / 255
		}
	}
	return p
}

// floatBuffer wraps a slice for sync.Pool.
type floatBuffer struct {
	data []float32
}

var tempBufferPool = sync.Pool{
	New: func() any {
		return &floatBuffer{data: make([]float32, 1024*1024*4)}
	},
}

// getTempBuffer returns a pooled buffer of at least n floats. Contents are
// unspecified.
func getTempBuffer(n int) []float32 {
	wrapper := tempBufferPool.Get().(*floatBuffer)
	if len(wrapper.data) < n {
		tempBufferPool.Put(wrapper)
		return make([]float32, n)
	}
	return wrapper.data[:n]
}

func putTempBuffer(buf []float32) {
	if cap(buf) <= 16*1024*1024 {
		tempBufferPool.Put(&floatBuffer{data: buf[:cap(buf)]})
	}
}
