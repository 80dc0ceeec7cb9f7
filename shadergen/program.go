package shadergen

// BindingKind is the access mode of a bind group entry.
type BindingKind uint8

// Binding kinds.
const (
	BindingUniform BindingKind = iota
	BindingReadOnly
	BindingReadWrite
)

// String returns the WGSL address space of k.
func (k BindingKind) String() string {
	switch k {
	case BindingUniform:
		return "uniform"
	case BindingReadOnly:
		return "storage, read"
	case BindingReadWrite:
		return "storage, read_write"
	default:
		return "unknown"
	}
}

// Binding is one entry of bind group 0.
type Binding struct {
	Index uint32
	Name  string
	Kind  BindingKind
	// Elem is the WGSL array element type; empty for the uniform block.
	Elem string
}

// Field is one member of the uniform block. Every field is a vec4, or an
// array of Count vec4s when Count > 1.
type Field struct {
	Name  string
	Count int
	Uint  bool
}

// Size returns the byte size of f.
func (f Field) Size() int {
	return 16 * max(f.Count, 1)
}

// Program is one generated compute program.
type Program struct {
	Name     string
	Source   string
	Entry    string
	Bindings []Binding
	Layout   []Field
}

// UniformSize returns the byte size of the uniform block.
func (p *Program) UniformSize() int {
	n := 0
	for _, f := range p.Layout {
		n += f.Size()
	}
	return n
}

// Offset returns the byte offset of the named uniform field.
func (p *Program) Offset(name string) (int, bool) {
	off := 0
	for _, f := range p.Layout {
		if f.Name == name {
			return off, true
		}
		off += f.Size()
	}
	return 0, false
}

// Binding returns the binding with the given name.
func (p *Program) Binding(name string) (Binding, bool) {
	for _, b := range p.Bindings {
		if b.Name == name {
			return b, true
		}
	}
	return Binding{}, false
}

// Programs is the full program set of one Config.
type Programs struct {
	Config Config

	Geometry *Program
	Master   *Program
	Film     *Program

	// GlowBright and GlowComposite are nil unless halation or bloom is
	// enabled.
	GlowBright    *Program
	GlowComposite *Program

	// Fused runs geometry, master without grading, and film in one pass.
	Fused *Program
}

// All returns the non-nil programs in a stable order.
func (ps *Programs) All() []*Program {
	all := []*Program{ps.Geometry, ps.Master, ps.Film, ps.GlowBright, ps.GlowComposite, ps.Fused}
	out := all[:0]
	for _, p := range all {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}
