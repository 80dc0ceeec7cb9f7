package image

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// prescaleRatio is how much larger than needed a source must be before it
// is reduced. The reduced source keeps that much headroom so the bilinear
// sampling of the render tiers still sees more than one texel per pixel.
const prescaleRatio = 2

// PrescaleSize returns the size src should be reduced to so that it still
// covers a needW×needH region at prescaleRatio texels per pixel. ok is false
// when src is already small enough.
func PrescaleSize(srcW, srcH, needW, needH int) (w, h int, ok bool) {
	if needW <= 0 || needH <= 0 || srcW <= 0 || srcH <= 0 {
		return srcW, srcH, false
	}
	k := math.Max(
		float64(needW*prescaleRatio)/float64(srcW),
		float64(needH*prescaleRatio)/float64(srcH),
	)
	if k >= 1 {
		return srcW, srcH, false
	}
	w = max(int(math.Ceil(float64(srcW)*k-1e-9)), 1)
	h = max(int(math.Ceil(float64(srcH)*k-1e-9)), 1)
	return w, h, true
}

// Prescale reduces src with Catmull-Rom filtering when it is more than
// prescaleRatio times larger than the needW×needH region it has to cover.
// Otherwise src is returned unchanged. pool, if non-nil, supplies the
// destination.
func Prescale(src *image.NRGBA, needW, needH int, pool *Pool) *image.NRGBA {
	b := src.Bounds()
	w, h, ok := PrescaleSize(b.Dx(), b.Dy(), needW, needH)
	if !ok {
		return src
	}
	var dst *image.NRGBA
	if pool != nil {
		dst = pool.Get(w, h)
	} else {
		dst = image.NewNRGBA(image.Rect(0, 0, w, h))
	}
	xdraw.CatmullRom.Scale(dst, dst.Rect, src, b, xdraw.Src, nil)
	return dst
}
