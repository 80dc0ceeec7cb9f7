//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/filmlab/shadergen"
)

// kernel is a compiled compute pipeline for one program.
type kernel struct {
	prog       *shadergen.Program
	module     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline
}

func bufferType(k shadergen.BindingKind) gputypes.BufferBindingType {
	switch k {
	case shadergen.BindingUniform:
		return gputypes.BufferBindingTypeUniform
	case shadergen.BindingReadOnly:
		return gputypes.BufferBindingTypeReadOnlyStorage
	default:
		return gputypes.BufferBindingTypeStorage
	}
}

func newKernel(device hal.Device, p *shadergen.Program) (*kernel, error) {
	words, err := shadergen.Compile(p.Source)
	if err != nil {
		return nil, fmt.Errorf("gpu: %s: %w", p.Name, err)
	}
	k := &kernel{prog: p}
	k.module, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  p.Name,
		Source: hal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: %s: create shader module: %w", p.Name, err)
	}

	entries := make([]gputypes.BindGroupLayoutEntry, len(p.Bindings))
	for i, b := range p.Bindings {
		entries[i] = gputypes.BindGroupLayoutEntry{
			Binding:    b.Index,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: bufferType(b.Kind)},
		}
	}
	k.bindLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   p.Name + "_bind_layout",
		Entries: entries,
	})
	if err != nil {
		k.destroy(device)
		return nil, fmt.Errorf("gpu: %s: create bind group layout: %w", p.Name, err)
	}

	k.pipeLayout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            p.Name + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{k.bindLayout},
	})
	if err != nil {
		k.destroy(device)
		return nil, fmt.Errorf("gpu: %s: create pipeline layout: %w", p.Name, err)
	}

	k.pipeline, err = device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   p.Name + "_pipeline",
		Layout:  k.pipeLayout,
		Compute: hal.ComputeState{Module: k.module, EntryPoint: p.Entry},
	})
	if err != nil {
		k.destroy(device)
		return nil, fmt.Errorf("gpu: %s: create compute pipeline: %w", p.Name, err)
	}
	return k, nil
}

func (k *kernel) destroy(device hal.Device) {
	if k.pipeline != nil {
		device.DestroyComputePipeline(k.pipeline)
		k.pipeline = nil
	}
	if k.pipeLayout != nil {
		device.DestroyPipelineLayout(k.pipeLayout)
		k.pipeLayout = nil
	}
	if k.bindLayout != nil {
		device.DestroyBindGroupLayout(k.bindLayout)
		k.bindLayout = nil
	}
	if k.module != nil {
		device.DestroyShaderModule(k.module)
		k.module = nil
	}
}

// kernelSet holds compiled kernels by program name.
type kernelSet map[string]*kernel

func newKernelSet(device hal.Device, progs ...*shadergen.Program) (kernelSet, error) {
	ks := make(kernelSet, len(progs))
	for _, p := range progs {
		if p == nil {
			continue
		}
		k, err := newKernel(device, p)
		if err != nil {
			ks.destroy(device)
			return nil, err
		}
		ks[p.Name] = k
	}
	return ks, nil
}

func (ks kernelSet) destroy(device hal.Device) {
	for name, k := range ks {
		k.destroy(device)
		delete(ks, name)
	}
}
