//go:build !nogpu

package gpu

import (
	_ "embed"

	"github.com/gogpu/filmlab/shadergen"
)

//go:embed shaders/blur.wgsl
var blurSource string

//go:embed shaders/detail.wgsl
var detailSource string

//go:embed shaders/encode.wgsl
var encodeSource string

func plane(name, src, out string, layout []shadergen.Field, extra ...shadergen.Binding) *shadergen.Program {
	bindings := []shadergen.Binding{
		{Index: 0, Name: "u", Kind: shadergen.BindingUniform},
		{Index: 1, Name: "src", Kind: shadergen.BindingReadOnly, Elem: "vec4<f32>"},
		{Index: 2, Name: "dst", Kind: shadergen.BindingReadWrite, Elem: out},
	}
	return &shadergen.Program{
		Name:     name,
		Source:   src,
		Entry:    shadergen.EntryPoint,
		Bindings: append(bindings, extra...),
		Layout:   layout,
	}
}

// Hand-written kernels shared by every program set.
var (
	blurProgram = plane("blur", blurSource, "vec4<f32>", []shadergen.Field{
		{Name: "size", Count: 1},
		{Name: "dir", Count: 1},
		{Name: "weights", Count: 4},
	})
	detailProgram = plane("detail", detailSource, "vec4<f32>", []shadergen.Field{
		{Name: "size", Count: 1},
		{Name: "detail", Count: 1},
	}, shadergen.Binding{Index: 3, Name: "blurred", Kind: shadergen.BindingReadOnly, Elem: "vec4<f32>"})
	encodeProgram = plane("encode", encodeSource, "u32", []shadergen.Field{
		{Name: "size", Count: 1},
	})
)
