package color

// HSL holds hue in [0,1) turns, saturation and lightness in [0,1].
type HSL struct {
	H, S, L float32
}

// ToHSL converts a clamped RGB triple to HSL.
func (c RGB) ToHSL() HSL {
	c = c.Clamp01()
	hi := max(c.R, c.G, c.B)
	lo := min(c.R, c.G, c.B)
	l := (hi + lo) * 0.5
	d := hi - lo
	if d < 1e-6 {
		return HSL{0, 0, l}
	}
	var s float32
	if l > 0.5 {
		s = d / (2 - hi - lo)
	} else {
		s = d / (hi + lo)
	}
	var h float32
	switch hi {
	case c.R:
		h = (c.G - c.B) / d
		if c.G < c.B {
			h += 6
		}
	case c.G:
		h = (c.B-c.R)/d + 2
	default:
		h = (c.R-c.G)/d + 4
	}
	return HSL{h / 6, s, l}
}

// ToRGB converts HSL back to RGB.
func (h HSL) ToRGB() RGB {
	if h.S <= 0 {
		return Gray(h.L)
	}
	var q float32
	if h.L < 0.5 {
		q = h.L * (1 + h.S)
	} else {
		q = h.L + h.S - h.L*h.S
	}
	p := 2*h.L - q
	return RGB{
		hueChannel(p, q, h.H+1.0/3),
		hueChannel(p, q, h.H),
		hueChannel(p, q, h.H-1.0/3),
	}
}

func hueChannel(p, q, t float32) float32 {
	t = Fract(t)
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	}
	return p
}

// HueTint returns the fully saturated color at hue h (turns), centered on
// zero: each component lies in [-0.5, 0.5].
func HueTint(h float32) RGB {
	c := HSL{h, 1, 0.5}.ToRGB()
	return c.Sub(Gray(0.5))
}

// HueDistance returns the circular distance between two hues in turns,
// in [0, 0.5].
func HueDistance(a, b float32) float32 {
	d := Fract(a - b)
	if d > 0.5 {
		d = 1 - d
	}
	return d
}
