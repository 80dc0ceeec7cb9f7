package profile

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNeutralHasNoEnabledLayer(t *testing.T) {
	p := Neutral()
	if p.AnyEnabled() {
		t.Fatal("neutral profile has an enabled layer")
	}
}

func TestPresetsAreWellFormed(t *testing.T) {
	for _, id := range PresetIDs() {
		p, ok := Preset(id)
		if !ok {
			t.Fatalf("Preset(%q) missing", id)
		}
		if p.ID != id {
			t.Errorf("Preset(%q).ID = %q", id, p.ID)
		}
		clamped := p
		clamped.Clamp()
		if diff := cmp.Diff(p, clamped); diff != "" {
			t.Errorf("preset %q out of range (-got +clamped):\n%s", id, diff)
		}
		if p.LUT.Enabled && p.LUT.ID != "builtin/"+id {
			t.Errorf("preset %q LUT id = %q", id, p.LUT.ID)
		}
	}
}

func TestSetAndGet(t *testing.T) {
	p := Neutral()
	if !p.Set(LayerGrain, "amount", 0.4) {
		t.Fatal("Set grain.amount failed")
	}
	if v, _ := p.Get(LayerGrain, "amount"); v != 0.4 {
		t.Errorf("grain.amount = %v, want 0.4", v)
	}
	if !p.Set(LayerMatrix, "m12", 0.25) || p.Matrix.M[5] != 0.25 {
		t.Errorf("matrix m12 not written: %v", p.Matrix.M)
	}
	if !p.Set(LayerCast, "highlightsB", -0.1) || p.Cast.Highlights[2] != -0.1 {
		t.Errorf("cast highlightsB not written: %v", p.Cast.Highlights)
	}
	if !p.Set(LayerGrain, "enabled", 1) || !p.Grain.Enabled {
		t.Error("enabled toggle failed")
	}
	if p.Set(LayerGrain, "nope", 1) {
		t.Error("unknown param accepted")
	}
	if p.Set("defects", "amount", 1) {
		t.Error("unknown layer accepted")
	}
	if p.Set(LayerGrain, "amount", math.NaN()) {
		t.Error("NaN accepted")
	}
}

func TestClamp(t *testing.T) {
	p := Neutral()
	p.Tone.Gamma = 9
	p.Grain.Amount = -1
	p.Vignette.Amount = math.Inf(-1)
	p.Matrix.M[0] = math.NaN()
	p.Clamp()

	if p.Tone.Gamma != 2 {
		t.Errorf("gamma = %v, want 2", p.Tone.Gamma)
	}
	if p.Grain.Amount != 0 {
		t.Errorf("grain amount = %v, want 0", p.Grain.Amount)
	}
	if p.Vignette.Amount != 0 {
		t.Errorf("vignette amount = %v, want 0", p.Vignette.Amount)
	}
	if p.Matrix.M[0] != 1 {
		t.Errorf("m00 = %v, want neutral 1", p.Matrix.M[0])
	}
}

func TestResolveIntensity(t *testing.T) {
	full := Resolve(Input{PresetID: "cine-tungsten-500", Intensity: 100})
	base, _ := Preset("cine-tungsten-500")
	if diff := cmp.Diff(base, full); diff != "" {
		t.Errorf("intensity 100 changed the preset:\n%s", diff)
	}

	zero := Resolve(Input{PresetID: "cine-tungsten-500", Intensity: 0})
	if zero.Tone.Shoulder != 0 || zero.Tone.Gamma != 1 {
		t.Errorf("tone not neutralized: %+v", zero.Tone)
	}
	if diff := cmp.Diff(IdentityMatrix, zero.Matrix.M); diff != "" {
		t.Errorf("matrix not neutralized:\n%s", diff)
	}
	if zero.Halation.Amount != 0 || zero.Grain.Amount != 0 {
		t.Error("strengths not neutralized")
	}
	// Enables and shape parameters survive.
	if !zero.Halation.Enabled || zero.Halation.Threshold != base.Halation.Threshold {
		t.Errorf("halation shape changed: %+v", zero.Halation)
	}
	if zero.Grain.Size != base.Grain.Size {
		t.Errorf("grain size = %v, want %v", zero.Grain.Size, base.Grain.Size)
	}

	half := Resolve(Input{PresetID: "cine-tungsten-500", Intensity: 50})
	if got, want := half.Bloom.Amount, base.Bloom.Amount/2; math.Abs(got-want) > 1e-12 {
		t.Errorf("bloom at 50%% = %v, want %v", got, want)
	}
}

func TestResolveOverridesDoNotMutatePreset(t *testing.T) {
	before, _ := Preset("studio-neg-400")
	got := Resolve(Input{
		PresetID:  "studio-neg-400",
		Intensity: 100,
		Overrides: Overrides{
			LayerGrain:    {"amount": 0.9},
			LayerVignette: {"enabled": 1, "amount": -5},
		},
	})
	if got.Grain.Amount != 0.9 {
		t.Errorf("grain amount = %v, want 0.9", got.Grain.Amount)
	}
	if !got.Vignette.Enabled || got.Vignette.Amount != -1 {
		t.Errorf("vignette = %+v, want enabled amount -1", got.Vignette)
	}
	after, _ := Preset("studio-neg-400")
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("preset mutated:\n%s", diff)
	}
}

func TestResolveUnknownPreset(t *testing.T) {
	got := Resolve(Input{PresetID: "missing", Intensity: 100})
	if got.AnyEnabled() {
		t.Error("unknown preset should resolve to neutral")
	}
}

func TestMigrate(t *testing.T) {
	l := Legacy{
		ID:   "old",
		Name: "Old Stock",
		Modules: []Module{
			{ID: ModuleTone, Enabled: true, Amount: 100, Params: map[string]float64{"highlightRolloff": 0.4, "shadowCrush": 0.2, "gamma": 1.2}},
			{ID: ModuleScan, Enabled: true, Amount: 50, Params: map[string]float64{"halation": 0.6, "bloom": 0.4, "vignette": 0.5}},
			{ID: ModuleGrain, Enabled: true, Amount: 100, SeedMode: SeedLocked, Params: map[string]float64{"intensity": 0.3, "size": 2}},
			{ID: ModuleDefects, Enabled: true, Amount: 100},
		},
	}
	p := Migrate(l)

	if p.ID != "old" || p.Name != "Old Stock" {
		t.Errorf("identity = %q/%q", p.ID, p.Name)
	}
	want := Tone{Enabled: true, Shoulder: 0.4, Toe: 0.2, Gamma: 1.2}
	if diff := cmp.Diff(want, p.Tone); diff != "" {
		t.Errorf("tone (-want +got):\n%s", diff)
	}
	if !p.Halation.Enabled || math.Abs(p.Halation.Amount-0.3) > 1e-12 {
		t.Errorf("halation = %+v", p.Halation)
	}
	if !p.Bloom.Enabled || math.Abs(p.Bloom.Amount-0.2) > 1e-12 {
		t.Errorf("bloom = %+v", p.Bloom)
	}
	if !p.Vignette.Enabled || math.Abs(p.Vignette.Amount+0.25) > 1e-12 {
		t.Errorf("vignette = %+v", p.Vignette)
	}
	if !p.Grain.Enabled || p.Grain.Amount != 0.3 || p.Grain.Size != 2 {
		t.Errorf("grain = %+v", p.Grain)
	}
	if p.Matrix.Enabled || p.LUT.Enabled || p.Cast.Enabled {
		t.Error("layers without a legacy source were enabled")
	}
}

func TestMigrateColorScience(t *testing.T) {
	p := Migrate(Legacy{Modules: []Module{
		{ID: ModuleColorScience, Enabled: true, Amount: 0, LUTID: "lut-x", Params: map[string]float64{"saturation": 0.5}},
	}})
	if diff := cmp.Diff(IdentityMatrix, p.Matrix.M); diff != "" {
		t.Errorf("zero amount should give identity matrix:\n%s", diff)
	}
	if !p.LUT.Enabled || p.LUT.ID != "lut-x" || p.LUT.Intensity != 0 {
		t.Errorf("lut = %+v", p.LUT)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	layered, _ := Preset("faded-instant")
	for _, rec := range []Record{
		NewLayered(layered),
		NewLegacy(Legacy{ID: "l", Modules: []Module{{ID: ModuleGrain, Enabled: true, Amount: 80}}}),
	} {
		data, err := rec.Encode()
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		got, err := Decode(data)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if got.IsLegacy() != rec.IsLegacy() {
			t.Errorf("variant changed: legacy %v -> %v", rec.IsLegacy(), got.IsLegacy())
		}
		if diff := cmp.Diff(rec.Profile(), got.Profile()); diff != "" {
			t.Errorf("profile changed (-want +got):\n%s", diff)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"not json", `{`, ErrMalformed},
		{"bad version", `{"version":"x.y","profile":{}}`, ErrMalformed},
		{"missing body", `{"version":"2.0.0"}`, ErrMalformed},
		{"future major", `{"version":"3.1.0","profile":{}}`, ErrUnsupportedVersion},
		{"wrong shape", `{"version":"1","profile":{"modules":7}}`, ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeTolerantVersion(t *testing.T) {
	rec, err := Decode([]byte(`{"version":"v2","profile":{"id":"x","grain":{"enabled":true,"amount":0.5}}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	p := rec.Profile()
	if !p.Grain.Enabled || p.Grain.Amount != 0.5 {
		t.Errorf("grain = %+v", p.Grain)
	}
	// Absent fields keep neutral defaults.
	if p.Tone.Gamma != 1 {
		t.Errorf("gamma = %v, want 1", p.Tone.Gamma)
	}
}

func TestResolveNaNIntensityIsZero(t *testing.T) {
	got := Resolve(Input{PresetID: "studio-neg-400", Intensity: math.NaN()})
	want := Resolve(Input{PresetID: "studio-neg-400"})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NaN intensity (-zero +NaN):\n%s", diff)
	}
	if got.Grain.Amount != 0 {
		t.Errorf("grain amount = %v, want 0", got.Grain.Amount)
	}
}
