package pixelmath

import "math"

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func sqrt32(x float32) float32 { return float32(math.Sqrt(float64(x))) }

func pow32(x, y float32) float32 { return float32(math.Pow(float64(x), float64(y))) }

func sin32(x float32) float32 { return float32(math.Sin(float64(x))) }

func cos32(x float32) float32 { return float32(math.Cos(float64(x))) }

func floor32(x float32) float32 { return float32(math.Floor(float64(x))) }
