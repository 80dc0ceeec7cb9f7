package adjust

import "testing"

func TestGeometryParams(t *testing.T) {
	s := Normalize(&Raw{Geometry: &RawGeometry{
		Rotation:     f(12),
		RightAngle:   f(-90),
		AspectRatio:  str("4:5"),
		FlipVertical: func() *bool { v := true; return &v }(),
		Crop:         &RawRect{X: f(0.1), Y: f(0.2), W: f(0.5), H: f(0.6)},
	}})
	p := s.Geometry.Params()
	if p.Rotation != 12 || p.RightAngle != 270 || p.AspectRatio != "4:5" || !p.FlipVertical {
		t.Errorf("params = %+v", p)
	}
	if p.Crop.X != 0.1 || p.Crop.Y != 0.2 || p.Crop.W != 0.5 || p.Crop.H != 0.6 {
		t.Errorf("crop = %+v", p.Crop)
	}
}
