package filmlab

import (
	"time"

	"github.com/gogpu/filmlab/adjust"
	imgio "github.com/gogpu/filmlab/internal/image"
	"github.com/gogpu/filmlab/profile"
	"github.com/gogpu/filmlab/seed"
)

// Mode selects the grain seed and the intent of a render.
type Mode uint8

// Render modes.
const (
	ModePreview Mode = iota
	ModeExport
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeExport {
		return "export"
	}
	return "preview"
}

// Preference selects the first tier tried.
type Preference uint8

// Backend preferences.
const (
	// PreferAuto tries multi-pass, single-pass and CPU in order, skipping
	// multi-pass for content keys that keep failing on it.
	PreferAuto Preference = iota
	// PreferMultiPass always tries multi-pass first, ignoring the sticky
	// fallback flag.
	PreferMultiPass
	// PreferSinglePass starts at the single-pass tier.
	PreferSinglePass
	// PreferCPU renders on the CPU only.
	PreferCPU
)

// String returns the preference name.
func (p Preference) String() string {
	switch p {
	case PreferMultiPass:
		return "multi-pass"
	case PreferSinglePass:
		return "single-pass"
	case PreferCPU:
		return "cpu"
	default:
		return "auto"
	}
}

// Request describes one render.
type Request struct {
	// Adjustments are raw, possibly partial, slider values. They are
	// normalized before use; nil means defaults.
	Adjustments *adjust.Raw
	// Set is an already canonical adjustment set. It wins over
	// Adjustments.
	Set *adjust.Set

	// Profile is an explicit film profile. Nil resolves the preset named
	// by the adjustments' film selection.
	Profile *profile.Record

	// Width and Height are the output size used by RenderImage. Zero
	// values follow the crop; MaxDimension bounds the longer edge.
	Width, Height int
	MaxDimension  int

	Seeds      seed.Inputs
	Mode       Mode
	Preference Preference

	// CapturedAt is the date drawn by the timestamp overlay. The zero
	// value uses the pipeline clock.
	CapturedAt time.Time
}

// Format is an encoded output format.
type Format = imgio.Format

// Output formats.
const (
	FormatJPEG = imgio.FormatJPEG
	FormatPNG  = imgio.FormatPNG
)

// EncodeOptions select the encoded output of Encode and ExportBatch.
type EncodeOptions struct {
	Format Format
	// Quality is the JPEG quality in [1,100]; zero means 92.
	Quality int
}
