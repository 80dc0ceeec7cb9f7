package profile

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blang/semver"
)

// Version tags written by Encode.
var (
	VersionLegacy  = semver.MustParse("1.0.0")
	VersionLayered = semver.MustParse("2.0.0")
)

var (
	// ErrUnsupportedVersion is returned for a version tag with an unknown
	// major number.
	ErrUnsupportedVersion = errors.New("profile: unsupported version")

	// ErrMalformed is returned for records that do not match their tag.
	ErrMalformed = errors.New("profile: malformed record")
)

// Record is a stored profile: exactly one of Layered and Legacy is set,
// selected by the major number of Version.
type Record struct {
	Version semver.Version
	Layered *Profile
	Legacy  *Legacy
}

// NewLayered wraps a layered profile.
func NewLayered(p Profile) Record {
	return Record{Version: VersionLayered, Layered: &p}
}

// NewLegacy wraps a legacy profile.
func NewLegacy(l Legacy) Record {
	return Record{Version: VersionLegacy, Legacy: &l}
}

type wireRecord struct {
	Version string          `json:"version"`
	Profile json.RawMessage `json:"profile"`
}

// Decode reads a version-tagged record.
func Decode(data []byte) (Record, error) {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	v, err := semver.ParseTolerant(w.Version)
	if err != nil {
		return Record{}, fmt.Errorf("%w: version %q: %w", ErrMalformed, w.Version, err)
	}
	if len(w.Profile) == 0 {
		return Record{}, fmt.Errorf("%w: missing profile body", ErrMalformed)
	}

	switch v.Major {
	case 1:
		var l Legacy
		if err := json.Unmarshal(w.Profile, &l); err != nil {
			return Record{}, fmt.Errorf("%w: legacy body: %w", ErrMalformed, err)
		}
		return Record{Version: v, Legacy: &l}, nil
	case 2:
		p := Neutral()
		if err := json.Unmarshal(w.Profile, &p); err != nil {
			return Record{}, fmt.Errorf("%w: layered body: %w", ErrMalformed, err)
		}
		return Record{Version: v, Layered: &p}, nil
	}
	return Record{}, fmt.Errorf("%w: %s", ErrUnsupportedVersion, v)
}

// Encode writes the record in its own variant.
func (r Record) Encode() ([]byte, error) {
	var body any
	switch {
	case r.Layered != nil && r.Legacy == nil:
		body = r.Layered
	case r.Legacy != nil && r.Layered == nil:
		body = r.Legacy
	default:
		return nil, fmt.Errorf("%w: exactly one variant must be set", ErrMalformed)
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireRecord{Version: r.Version.String(), Profile: raw})
}

// IsLegacy reports whether the record holds the legacy variant.
func (r Record) IsLegacy() bool {
	return r.Legacy != nil
}

// Profile returns the layered profile of the record, migrating a legacy
// body. The result is a private copy.
func (r Record) Profile() Profile {
	switch {
	case r.Layered != nil:
		return *r.Layered
	case r.Legacy != nil:
		return Migrate(*r.Legacy)
	}
	return Neutral()
}
