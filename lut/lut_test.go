package lut

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"
)

func TestIdentitySampling(t *testing.T) {
	a := &Asset{Size: 4, Data: Identity(4)}
	inputs := [][3]float32{
		{0, 0, 0}, {1, 1, 1}, {0.5, 0.25, 0.75}, {0.1, 0.9, 0.33}, {1.5, -0.2, 0.5},
	}
	for _, in := range inputs {
		r, g, b := a.Sample(in[0], in[1], in[2])
		want := [3]float32{clamp(in[0]), clamp(in[1]), clamp(in[2])}
		if !near(r, want[0]) || !near(g, want[1]) || !near(b, want[2]) {
			t.Errorf("Sample(%v) = (%v, %v, %v), want %v", in, r, g, b, want)
		}
	}
}

func TestSampleNonFinite(t *testing.T) {
	a := &Asset{Size: 4, Data: Identity(4)}
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	tests := []struct {
		in   [3]float32
		want [3]float32
	}{
		{[3]float32{nan, 0.5, 0.5}, [3]float32{0, 0.5, 0.5}},
		{[3]float32{0.25, inf, -inf}, [3]float32{0.25, 1, 0}},
		{[3]float32{nan, nan, nan}, [3]float32{0, 0, 0}},
	}
	for _, tt := range tests {
		r, g, b := a.Sample(tt.in[0], tt.in[1], tt.in[2])
		if !near(r, tt.want[0]) || !near(g, tt.want[1]) || !near(b, tt.want[2]) {
			t.Errorf("Sample(%v) = (%v, %v, %v), want %v", tt.in, r, g, b, tt.want)
		}
	}
}

func TestSampleExactAtLatticePoints(t *testing.T) {
	style := StockStyles[0]
	const n = 5
	a := &Asset{Size: n, Data: style.Generate(n)}
	for bi := 0; bi < n; bi++ {
		for gi := 0; gi < n; gi++ {
			for ri := 0; ri < n; ri++ {
				step := float32(1) / (n - 1)
				r, g, b := a.Sample(float32(ri)*step, float32(gi)*step, float32(bi)*step)
				idx := ((bi*n+gi)*n + ri) * 3
				if !near(r, a.Data[idx]) || !near(g, a.Data[idx+1]) || !near(b, a.Data[idx+2]) {
					t.Fatalf("lattice (%d,%d,%d) = (%v,%v,%v), want %v", ri, gi, bi, r, g, b, a.Data[idx:idx+3])
				}
			}
		}
	}
}

func cubeSource(size int, header string) string {
	var sb strings.Builder
	sb.WriteString(header)
	fmt.Fprintf(&sb, "LUT_3D_SIZE %d\n", size)
	data := Identity(size)
	for i := 0; i < len(data); i += 3 {
		fmt.Fprintf(&sb, "%.6f %.6f %.6f\n", data[i], data[i+1], data[i+2])
	}
	return sb.String()
}

func TestParseCube(t *testing.T) {
	src := cubeSource(3, "# comment\nTITLE \"Warm Look\"\nDOMAIN_MIN 0 0 0\nDOMAIN_MAX 1 1 1\n\n")
	a, err := ParseCube(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseCube: %v", err)
	}
	if a.Size != 3 || len(a.Data) != 81 {
		t.Fatalf("size = %d, len = %d", a.Size, len(a.Data))
	}
	if a.Name != "Warm Look" {
		t.Errorf("Name = %q", a.Name)
	}
	if a.Data[3] != 0.5 {
		t.Errorf("red must vary fastest: Data[3] = %v", a.Data[3])
	}
}

func TestParseCubeDomainRescale(t *testing.T) {
	src := "LUT_3D_SIZE 2\nDOMAIN_MIN 0 0 0\nDOMAIN_MAX 2 2 2\n" +
		"0 0 0\n2 0 0\n0 2 0\n2 2 0\n0 0 2\n2 0 2\n0 2 2\n2 2 2\n"
	a, err := ParseCube(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseCube: %v", err)
	}
	if a.Data[3] != 1 {
		t.Errorf("Data[3] = %v, want 1", a.Data[3])
	}
}

func TestParseCubeErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantSub string
	}{
		{"missing size", "TITLE \"x\"\n0 0 0\n1 1 1\n", "missing LUT_3D_SIZE"},
		{"too few rows", "LUT_3D_SIZE 2\n0 0 0\n1 1 1\n", "insufficient rows"},
		{"too many rows", cubeSource(2, "") + "0 0 0\n", "too many rows"},
		{"bad number", "LUT_3D_SIZE 2\n0 zero 0\n", "bad number"},
		{"short row", "LUT_3D_SIZE 2\n0 0\n", "want 3 values"},
		{"1d table", "LUT_1D_SIZE 16\n", "1D tables"},
		{"size too large", "LUT_3D_SIZE 300\n", "unsupported LUT_3D_SIZE"},
		{"empty", "", "missing LUT_3D_SIZE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCube(strings.NewReader(tt.src))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, ErrParse) {
				t.Errorf("error %v does not wrap ErrParse", err)
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestRegistryBuiltins(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()
	id, err := r.Get(ctx, IdentityID)
	if err != nil {
		t.Fatalf("Get identity: %v", err)
	}
	if err := id.Validate(); err != nil {
		t.Errorf("identity invalid: %v", err)
	}
	for _, s := range StockStyles {
		a, err := r.Get(ctx, s.ID)
		if err != nil {
			t.Fatalf("Get(%q): %v", s.ID, err)
		}
		if a.Size != builtinSize || a.Provenance != ProvenanceBuiltin {
			t.Errorf("%s: size %d provenance %q", s.ID, a.Size, a.Provenance)
		}
		if err := a.Validate(); err != nil {
			t.Errorf("%s invalid: %v", s.ID, err)
		}
		again, _ := r.Get(ctx, s.ID)
		if again != a {
			t.Errorf("%s regenerated on second Get", s.ID)
		}
	}
	if _, err := r.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(nope) err = %v, want ErrNotFound", err)
	}
}

func TestRegistryImport(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := NewRegistry(WithClock(func() time.Time { return fixed }))
	src := cubeSource(3, "")

	a, err := r.Import("kodak_portra-400.cube", strings.NewReader(src))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if a.Name != "Kodak Portra 400" {
		t.Errorf("Name = %q", a.Name)
	}
	if !strings.HasPrefix(a.ID, "lut-") || a.Provenance != ProvenanceImported || !a.CreatedAt.Equal(fixed) {
		t.Errorf("unexpected identity fields: %+v", a)
	}

	b, err := r.Import("other.cube", strings.NewReader(src))
	if err != nil {
		t.Fatalf("second Import: %v", err)
	}
	if a.ID != b.ID {
		t.Errorf("same samples produced different ids: %q vs %q", a.ID, b.ID)
	}
	got, err := r.Get(context.Background(), a.ID)
	if err != nil || got.Size != 3 {
		t.Errorf("Get imported = %v, %v", got, err)
	}
}

func TestRegistryImportFailureRegistersNothing(t *testing.T) {
	r := NewRegistry()
	before := len(r.IDs())
	if _, err := r.Import("broken.cube", strings.NewReader("LUT_3D_SIZE 4\n0 0 0\n")); err == nil {
		t.Fatal("expected an error")
	}
	if after := len(r.IDs()); after != before {
		t.Errorf("IDs grew from %d to %d after a failed import", before, after)
	}
}

func TestRegistryLoader(t *testing.T) {
	calls := 0
	loader := LoaderFunc(func(_ context.Context, id string) (*Asset, error) {
		calls++
		if id != "lut-stored" {
			return nil, ErrNotFound
		}
		return &Asset{
			ID: id, Name: "Stored", Format: FormatCube, Size: 2,
			Data: Identity(2), Provenance: ProvenanceImported,
		}, nil
	})
	r := NewRegistry(WithLoader(loader))
	ctx := context.Background()
	if _, err := r.Get(ctx, "lut-stored"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := r.Get(ctx, "lut-stored"); err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}
	if _, err := r.Get(ctx, "lut-missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing id err = %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	good := func() *Asset {
		return &Asset{ID: "x", Name: "x", Format: FormatCube, Size: 2, Data: Identity(2), Provenance: ProvenanceImported}
	}
	tests := []struct {
		name   string
		mutate func(*Asset)
	}{
		{"short data", func(a *Asset) { a.Data = a.Data[:10] }},
		{"size too small", func(a *Asset) { a.Size = 1 }},
		{"bad format", func(a *Asset) { a.Format = "3dl" }},
		{"missing id", func(a *Asset) { a.ID = "" }},
		{"nan sample", func(a *Asset) { a.Data[5] = float32(math.NaN()) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := good()
			tt.mutate(a)
			if err := a.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
	if err := good().Validate(); err != nil {
		t.Errorf("valid asset rejected: %v", err)
	}
}

func clamp(v float32) float32 { return min(max(v, 0), 1) }

func near(a, b float32) bool { return math.Abs(float64(a-b)) < 1e-5 }
