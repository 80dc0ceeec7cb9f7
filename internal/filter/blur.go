package filter

// Runner splits n rows into bands and runs fn over them, possibly
// concurrently. It must return only after every band finished.
type Runner interface {
	Rows(n int, fn func(y0, y1 int))
}

type serial struct{}

func (serial) Rows(n int, fn func(y0, y1 int)) { fn(0, n) }

// Blur writes the sparse Gaussian blur of src into dst. dst must have the
// size of src and may not alias it. A nil run processes rows serially.
func Blur(dst, src *Plane, sigma float32, run Runner) {
	if run == nil {
		run = serial{}
	}
	k := CachedKernel(sigma)
	if k.IsIdentity() {
		copy(dst.Pix, src.Pix)
		return
	}

	temp := getTempBuffer(len(src.Pix))
	defer putTempBuffer(temp)
	tmp := &Plane{W: src.W, H: src.H, Pix: temp}

	run.Rows(src.H, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			blurRow(tmp, src, y, k)
		}
	})
	run.Rows(src.H, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			blurColumn(dst, tmp, y, k)
		}
	})
}

// blurRow convolves row y horizontally.
func blurRow(dst, src *Plane, y int, k Kernel) {
	w := src.W
	base := y * w * 4
	for x := 0; x < w; x++ {
		var acc [4]float32
		for i := 0; i < Taps; i++ {
			s := float32(x) + k.Offset(i)
			i0, f := split(s)
			a := base + clampIndex(i0, w)*4
			b := base + clampIndex(i0+1, w)*4
			wt := k.Weights[i]
			for c := 0; c < 4; c++ {
				acc[c] += wt * lerp(src.Pix[a+c], src.Pix[b+c], f)
			}
		}
		copy(dst.Pix[base+x*4:base+x*4+4], acc[:])
	}
}

// blurColumn convolves row y of dst vertically from src.
func blurColumn(dst, src *Plane, y int, k Kernel) {
	w, h := src.W, src.H
	var rows [Taps][2]int
	var fracs [Taps]float32
	for i := 0; i < Taps; i++ {
		i0, f := split(float32(y) + k.Offset(i))
		rows[i] = [2]int{clampIndex(i0, h) * w * 4, clampIndex(i0+1, h) * w * 4}
		fracs[i] = f
	}
	out := y * w * 4
	for x := 0; x < w; x++ {
		var acc [4]float32
		for i := 0; i < Taps; i++ {
			a := rows[i][0] + x*4
			b := rows[i][1] + x*4
			wt := k.Weights[i]
			for c := 0; c < 4; c++ {
				acc[c] += wt * lerp(src.Pix[a+c], src.Pix[b+c], fracs[i])
			}
		}
		copy(dst.Pix[out+x*4:out+x*4+4], acc[:])
	}
}

// split returns floor(s) and the fractional part.
func split(s float32) (int, float32) {
	i := int(s)
	if float32(i) > s {
		i--
	}
	return i, s - float32(i)
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
