package adjust

import "github.com/gogpu/filmlab/internal/geometry"

// Params converts the geometry controls for the geometry pass.
func (g Geometry) Params() geometry.Params {
	return geometry.Params{
		Rotation:              g.Rotation,
		RightAngle:            g.RightAngle,
		PerspectiveVertical:   g.PerspectiveVertical,
		PerspectiveHorizontal: g.PerspectiveHorizontal,
		Scale:                 g.Scale,
		OffsetX:               g.OffsetX,
		OffsetY:               g.OffsetY,
		FlipHorizontal:        g.FlipHorizontal,
		FlipVertical:          g.FlipVertical,
		AspectRatio:           g.AspectRatio,
		CustomAspectRatio:     g.CustomAspectRatio,
		Crop:                  geometry.Rect(g.Crop),
		LensDistortion:        g.LensDistortion,
		ChromaticAberration:   g.ChromaticAberration,
	}
}
