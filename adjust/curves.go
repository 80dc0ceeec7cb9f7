package adjust

import (
	"math"
	"slices"
)

func normalizeCurves(base Curves, r *RawCurves) Curves {
	channel := func(b []Point, raw []RawPoint, present bool) []Point {
		if present {
			return repairCurve(raw)
		}
		return repairCurve(rawPoints(b))
	}
	var rgb, red, green, blue []RawPoint
	if r != nil {
		rgb, red, green, blue = r.RGB, r.Red, r.Green, r.Blue
	}
	return Curves{
		RGB:   channel(base.RGB, rgb, rgb != nil),
		Red:   channel(base.Red, red, red != nil),
		Green: channel(base.Green, green, green != nil),
		Blue:  channel(base.Blue, blue, blue != nil),
	}
}

// repairCurve rounds points to integers, clamps them into [0,255], sorts by
// x keeping the last point written for any x, pins both endpoints and caps
// the result at MaxCurvePoints.
func repairCurve(in []RawPoint) []Point {
	pts := make([]Point, 0, len(in)+2)
	for _, p := range in {
		if !finite(p.X) || !finite(p.Y) {
			continue
		}
		pts = append(pts, Point{X: clampByte(p.X), Y: clampByte(p.Y)})
	}

	// Stable sort keeps input order among equal x, so the last one wins.
	slices.SortStableFunc(pts, func(a, b Point) int { return a.X - b.X })
	dedup := pts[:0]
	for i, p := range pts {
		if i+1 < len(pts) && pts[i+1].X == p.X {
			continue
		}
		dedup = append(dedup, p)
	}
	pts = dedup

	if len(pts) == 0 || pts[0].X != 0 {
		pts = slices.Insert(pts, 0, Point{0, 0})
	}
	if pts[len(pts)-1].X != 255 {
		pts = append(pts, Point{255, 255})
	}
	if len(pts) > MaxCurvePoints {
		last := pts[len(pts)-1]
		pts = append(pts[:MaxCurvePoints-1], last)
	}
	return pts
}

func clampByte(v float64) int {
	return int(min(max(math.Round(v), 0), 255))
}
