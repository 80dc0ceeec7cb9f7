package shadergen

import (
	"fmt"
	"strings"
)

// EntryPoint is the compute entry point of every generated program.
const EntryPoint = "main"

// WorkgroupSize is the edge of the square compute workgroup.
const WorkgroupSize = 8

// Pixel storage formats of src and dst.
const (
	packed = "u32"
	float4 = "vec4<f32>"
)

type builder struct {
	name     string
	in, out  string
	fields   []Field
	bindings []Binding
	steps    []string
}

func newBuilder(name, in, out string) *builder {
	b := &builder{name: name, in: in, out: out}
	b.bindings = []Binding{
		{Index: 0, Name: "u", Kind: BindingUniform},
		{Index: 1, Name: "src", Kind: BindingReadOnly, Elem: in},
		{Index: 2, Name: "dst", Kind: BindingReadWrite, Elem: out},
	}
	b.field("size")
	return b
}

func (b *builder) field(name string) {
	b.fields = append(b.fields, Field{Name: name, Count: 1})
}

func (b *builder) array(name string, n int) {
	b.fields = append(b.fields, Field{Name: name, Count: n})
}

func (b *builder) uvec(name string) {
	b.fields = append(b.fields, Field{Name: name, Count: 1, Uint: true})
}

func (b *builder) aux(name, elem string) {
	b.bindings = append(b.bindings, Binding{
		Index: uint32(len(b.bindings)),
		Name:  name,
		Kind:  BindingReadOnly,
		Elem:  elem,
	})
}

func (b *builder) step(lines ...string) {
	b.steps = append(b.steps, lines...)
}

func (b *builder) source() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "// Code generated by filmlab-shadergen. DO NOT EDIT.\n// Program: %s\n\n", b.name)

	sb.WriteString("struct Params {\n")
	for _, f := range b.fields {
		typ := "vec4<f32>"
		if f.Uint {
			typ = "vec4<u32>"
		}
		if f.Count > 1 {
			typ = fmt.Sprintf("array<%s, %d>", typ, f.Count)
		}
		fmt.Fprintf(&sb, "    %s: %s,\n", f.Name, typ)
	}
	sb.WriteString("}\n\n")

	for _, bd := range b.bindings {
		if bd.Kind == BindingUniform {
			fmt.Fprintf(&sb, "@group(0) @binding(%d) var<uniform> %s: Params;\n", bd.Index, bd.Name)
			continue
		}
		fmt.Fprintf(&sb, "@group(0) @binding(%d) var<%s> %s: array<%s>;\n", bd.Index, bd.Kind, bd.Name, bd.Elem)
	}

	fmt.Fprintf(&sb, "\n@compute @workgroup_size(%d, %d, 1)\n", WorkgroupSize, WorkgroupSize)
	fmt.Fprintf(&sb, "fn %s(@builtin(global_invocation_id) id: vec3<u32>) {\n", EntryPoint)
	sb.WriteString("    let w = u32(u.size.x);\n")
	sb.WriteString("    let h = u32(u.size.y);\n")
	sb.WriteString("    if (id.x >= w || id.y >= h) {\n        return;\n    }\n")
	sb.WriteString("    let i = id.y * w + id.x;\n")
	sb.WriteString("    let uv = (vec2<f32>(id.xy) + vec2<f32>(0.5)) * u.size.zw;\n")
	sb.WriteString("    let aspect = u.size.x / u.size.y;\n")
	for _, s := range b.steps {
		sb.WriteString("    ")
		sb.WriteString(s)
		sb.WriteByte('\n')
	}
	sb.WriteString("}\n")
	sb.WriteString(library)
	return sb.String()
}

func (b *builder) build() (*Program, error) {
	src, err := EliminateDeadCode(b.source())
	if err != nil {
		return nil, fmt.Errorf("shadergen: %s: %w", b.name, err)
	}
	return &Program{
		Name:     b.name,
		Source:   src,
		Entry:    EntryPoint,
		Bindings: b.bindings,
		Layout:   b.fields,
	}, nil
}

// Step code. Every program body works on px (the loaded pixel) and c (its
// color), with i, uv and aspect in scope.
const (
	loadGeometry = "var px = geometry_pixel(vec2<f32>(id.xy) + vec2<f32>(0.5));"
	loadFloat    = "var px = src[i];"
	loadColor    = "var c = px.rgb;"
	storeFloat   = "dst[i] = vec4<f32>(c, px.a);"
	storePacked  = "dst[i] = pack4x8unorm(vec4<f32>(c, px.a));"
)

func geometryFields(b *builder) {
	b.field("geo_size")
	b.field("geo_a")
	b.field("geo_b")
	b.field("geo_p")
}

// addMaster appends the master family. Grading is left out of the fused
// program; fallback tiers apply it as a post-step.
func addMaster(b *builder, f MasterFeatures, grading bool) {
	b.field("exposure")
	if f.WhiteBalance {
		b.field("wb")
	}
	if f.Dehaze {
		b.field("dehaze")
	}
	if f.Tone {
		b.field("tone")
		b.field("tone_contrast")
	}
	if f.HSL {
		b.array("hsl", 8)
	}
	if f.Color {
		b.field("color")
	}
	if f.Locals {
		b.field("locals_info")
	}
	if grading {
		b.field("grade_shadows")
		b.field("grade_midtones")
		b.field("grade_highlights")
		b.field("grade_pivot")
	}
	if f.Curves {
		b.aux("curves", "f32")
	}
	if f.Locals {
		b.aux("locals", "vec4<f32>")
	}

	b.step("c = srgb_to_linear3(c);")
	if f.WhiteBalance {
		b.step("c = c * u.wb.xyz;")
	}
	b.step("c = c * u.exposure.x;")
	if f.Dehaze {
		b.step("c = max((c - vec3<f32>(0.7 * u.dehaze.x)) / (1.0 - u.dehaze.x), vec3<f32>(0.0));")
	}
	b.step("c = linear_to_srgb3(c);")
	if f.Tone {
		b.step("c = apply_tone(c);")
	}
	b.step("c = clamp01(c);")
	if f.Curves {
		b.step("c = apply_curves(c);")
	}
	if f.HSL {
		b.step("c = apply_hsl(c);")
	}
	if f.Color {
		b.step("c = apply_color(c);")
	}
	if f.Locals {
		b.step("c = apply_locals(c, uv);")
	}
	if grading {
		b.step("c = apply_grading(c);")
	}
	b.step("c = clamp01(c);")
}

func addFilm(b *builder, f FilmFeatures) {
	if f.ToneResponse {
		b.field("film_tone")
	}
	if f.ColorMatrix {
		b.field("matrix_r")
		b.field("matrix_g")
		b.field("matrix_b")
	}
	if f.LUT {
		b.field("lut_info")
	}
	if f.ColorCast {
		b.field("cast_shadows")
		b.field("cast_midtones")
		b.field("cast_highlights")
	}
	if f.Grain {
		b.field("grain")
		b.uvec("grain_seed")
	}
	if f.Vignette {
		b.field("vignette_frame")
		b.field("vignette_film")
	}
	if f.LUT {
		b.aux("film_lut", "f32")
	}

	if f.ToneResponse {
		b.step("c = apply_tone_response(c);")
	}
	if f.ColorMatrix {
		b.step("c = apply_matrix(c);")
	}
	if f.LUT {
		b.step("c = mix(c, sample_lut(c), u.lut_info.y);")
	}
	if f.ColorCast {
		b.step("c = apply_cast(c);")
	}
	if f.Grain {
		b.step("c = apply_grain(c, id.xy);")
	}
	if f.Vignette {
		b.step(
			"c = apply_vignette(c, u.vignette_frame, uv, aspect);",
			"c = apply_vignette(c, u.vignette_film, uv, aspect);",
		)
	}
	b.step("c = clamp01(c);")
}

// Generate emits the program set of cfg.
func Generate(cfg Config) (*Programs, error) {
	ps := &Programs{Config: cfg}
	var err error

	geo := newBuilder("geometry", packed, float4)
	geometryFields(geo)
	geo.step(loadGeometry, "dst[i] = px;")
	if ps.Geometry, err = geo.build(); err != nil {
		return nil, err
	}

	master := newBuilder("master", float4, float4)
	master.step(loadFloat, loadColor)
	addMaster(master, cfg.Master, cfg.Master.ColorGrading)
	master.step(storeFloat)
	if ps.Master, err = master.build(); err != nil {
		return nil, err
	}

	film := newBuilder("film", float4, float4)
	film.step(loadFloat, loadColor)
	addFilm(film, cfg.Film)
	film.step(storeFloat)
	if ps.Film, err = film.build(); err != nil {
		return nil, err
	}

	if cfg.Film.Glow() {
		bright := newBuilder("glow_bright", float4, float4)
		bright.field("glow")
		bright.step(loadFloat, "dst[i] = bright_pass(px.rgb);")
		if ps.GlowBright, err = bright.build(); err != nil {
			return nil, err
		}

		comp := newBuilder("glow_composite", float4, float4)
		comp.aux("glow", "vec4<f32>")
		comp.step(loadFloat, loadColor, "let g = glow[i];")
		if cfg.Film.Bloom {
			comp.field("glow_amount")
			comp.step("c = c + g.rgb * u.glow_amount.x;")
		}
		if cfg.Film.Halation {
			if !cfg.Film.Bloom {
				comp.field("glow_amount")
			}
			comp.field("glow_tint")
			comp.step("c = c + u.glow_tint.xyz * (g.a * u.glow_amount.y);")
		}
		comp.step("c = clamp01(c);", storeFloat)
		if ps.GlowComposite, err = comp.build(); err != nil {
			return nil, err
		}
	}

	fused := newBuilder("fused", packed, packed)
	geometryFields(fused)
	fused.step(loadGeometry, loadColor)
	addMaster(fused, cfg.Master, false)
	addFilm(fused, cfg.Film)
	fused.step(storePacked)
	if ps.Fused, err = fused.build(); err != nil {
		return nil, err
	}
	return ps, nil
}
