package color

// decodeLUT maps an sRGB byte straight to a normalized float.
var decodeLUT [256]float32

func init() {
	for i := range decodeLUT {
		decodeLUT[i] = float32(i) / 255
	}
}

// Unorm8 converts a byte to [0,1] using a table lookup.
func Unorm8(v uint8) float32 {
	return decodeLUT[v]
}

// Quantize8 clamps v to [0,1] and rounds it to the nearest byte. It matches
// WGSL pack4x8unorm rounding.
func Quantize8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
