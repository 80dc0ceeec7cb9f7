package geometry

import (
	"math"
	"strconv"
	"strings"
)

// Aspect ratio modes understood by ResolveAspectRatio.
const (
	AspectOriginal = "original"
	AspectFree     = "free"
)

// NormalizeRightAngle rounds deg to the nearest quarter turn and folds it
// into {0, 90, 180, 270}.
func NormalizeRightAngle(deg float64) int {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	q := int(math.Mod(math.Round(deg/90), 4))
	if q < 0 {
		q += 4
	}
	return q * 90
}

// ParseAspect parses a "W:H" token into W/H. Both sides must be finite and
// positive.
func ParseAspect(token string) (float64, bool) {
	w, h, ok := strings.Cut(strings.TrimSpace(token), ":")
	if !ok {
		return 0, false
	}
	fw, err := strconv.ParseFloat(strings.TrimSpace(w), 64)
	if err != nil {
		return 0, false
	}
	fh, err := strconv.ParseFloat(strings.TrimSpace(h), 64)
	if err != nil {
		return 0, false
	}
	r := fw / fh
	if fw <= 0 || fh <= 0 || math.IsInf(r, 0) || math.IsNaN(r) {
		return 0, false
	}
	return r, true
}

// ResolveAspectRatio returns the numeric width/height ratio for mode.
// "original" and unparseable tokens yield fallback; "free" yields custom
// when it is finite and positive, otherwise fallback.
func ResolveAspectRatio(mode string, custom, fallback float64) float64 {
	switch mode {
	case AspectOriginal:
		return fallback
	case AspectFree:
		if custom > 0 && !math.IsInf(custom, 0) && !math.IsNaN(custom) {
			return custom
		}
		return fallback
	}
	if r, ok := ParseAspect(mode); ok {
		return r
	}
	return fallback
}
