// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/ctviz/volren/render"
	"github.com/ctviz/volren/shader"
)

// Attachment formats. The exit buffer stores normalized volume
// coordinates as full floats so the march pass reads them back exactly;
// the offscreen color target matches the byte layout screenshots and
// CPU targets expect.
const (
	exitFormat  = wgpu.TextureFormatRGBA32Float
	colorFormat = wgpu.TextureFormatRGBA8Unorm
	depthFormat = wgpu.TextureFormatDepth24Plus
)

// pipelines holds everything size-independent: shader modules compiled
// once, the three render pipelines, samplers, uniform buffers, and the
// static cube and slice geometry.
type pipelines struct {
	exitPipeline  *wgpu.RenderPipeline
	marchPipeline *wgpu.RenderPipeline
	slicePipeline *wgpu.RenderPipeline
	blitPipeline  *wgpu.RenderPipeline

	exitLayout  *wgpu.BindGroupLayout
	marchLayout *wgpu.BindGroupLayout
	sliceLayout *wgpu.BindGroupLayout
	blitLayout  *wgpu.BindGroupLayout

	frameUniforms *wgpu.Buffer
	sliceUniforms *wgpu.Buffer

	linearSampler  *wgpu.Sampler
	nearestSampler *wgpu.Sampler

	cubeVerts  *wgpu.Buffer
	cubeIdx    *wgpu.Buffer
	sliceVerts *wgpu.Buffer
	sliceIdx   *wgpu.Buffer

	exitGroup  *wgpu.BindGroup
	sliceGroup *wgpu.BindGroup

	// Retained for lazy blit pipeline creation once the surface format
	// is known.
	blitModule *wgpu.ShaderModule
}

func float3Layout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 12,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		},
	}
}

func newPipelines(d *Device, volView *wgpu.TextureView) (*pipelines, error) {
	p := &pipelines{}
	if err := p.init(d, volView); err != nil {
		p.destroy()
		return nil, err
	}
	return p, nil
}

func (p *pipelines) init(d *Device, volView *wgpu.TextureView) error {
	dev := d.device

	raymarchMod, err := dev.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "raymarch.wgsl",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shader.RaymarchWGSL},
	})
	if err != nil {
		return fmt.Errorf("gpu: compile raymarch shader: %w", err)
	}
	defer raymarchMod.Release()

	sliceMod, err := dev.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "slice.wgsl",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shader.SliceWGSL},
	})
	if err != nil {
		return fmt.Errorf("gpu: compile slice shader: %w", err)
	}
	defer sliceMod.Release()

	p.blitModule, err = dev.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "blit.wgsl",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shader.BlitWGSL},
	})
	if err != nil {
		return fmt.Errorf("gpu: compile blit shader: %w", err)
	}

	if err := p.initLayouts(dev); err != nil {
		return err
	}
	if err := p.initResources(d); err != nil {
		return err
	}
	if err := p.initBindGroups(dev, volView); err != nil {
		return err
	}
	return p.initPipelines(dev, raymarchMod, sliceMod)
}

func (p *pipelines) initLayouts(dev *wgpu.Device) error {
	var err error

	uniformEntry := func(binding uint32) wgpu.BindGroupLayoutEntry {
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type: wgpu.BufferBindingTypeUniform,
			},
		}
	}
	texEntry := func(binding uint32, dim wgpu.TextureViewDimension, sample wgpu.TextureSampleType) wgpu.BindGroupLayoutEntry {
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    sample,
				ViewDimension: dim,
			},
		}
	}

	p.exitLayout, err = dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "exit pass layout",
		Entries: []wgpu.BindGroupLayoutEntry{uniformEntry(shader.RaymarchBindUniforms)},
	})
	if err != nil {
		return fmt.Errorf("gpu: exit layout: %w", err)
	}

	p.marchLayout, err = dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "march pass layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			uniformEntry(shader.RaymarchBindUniforms),
			texEntry(shader.RaymarchBindVolume, wgpu.TextureViewDimension3D, wgpu.TextureSampleTypeFloat),
			texEntry(shader.RaymarchBindLabels, wgpu.TextureViewDimension3D, wgpu.TextureSampleTypeFloat),
			{
				Binding:    shader.RaymarchBindSampler,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			},
			texEntry(shader.RaymarchBindExit, wgpu.TextureViewDimension2D, wgpu.TextureSampleTypeUnfilterableFloat),
			texEntry(shader.RaymarchBindVis, wgpu.TextureViewDimension1D, wgpu.TextureSampleTypeUnfilterableFloat),
			texEntry(shader.RaymarchBindOpacity, wgpu.TextureViewDimension1D, wgpu.TextureSampleTypeUnfilterableFloat),
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: march layout: %w", err)
	}

	p.sliceLayout, err = dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "slice pass layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			uniformEntry(shader.SliceBindUniforms),
			texEntry(shader.SliceBindVolume, wgpu.TextureViewDimension3D, wgpu.TextureSampleTypeFloat),
			{
				Binding:    shader.SliceBindSampler,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: slice layout: %w", err)
	}

	p.blitLayout, err = dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "blit layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			texEntry(shader.BlitBindTexture, wgpu.TextureViewDimension2D, wgpu.TextureSampleTypeFloat),
			{
				Binding:    shader.BlitBindSampler,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: blit layout: %w", err)
	}
	return nil
}

func (p *pipelines) initResources(d *Device) error {
	dev := d.device
	var err error

	p.frameUniforms, err = dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "frame uniforms",
		Size:  frameUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: frame uniform buffer: %w", err)
	}
	p.sliceUniforms, err = dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "slice uniforms",
		Size:  sliceUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: slice uniform buffer: %w", err)
	}

	p.linearSampler, err = dev.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "volume sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("gpu: linear sampler: %w", err)
	}
	p.nearestSampler, err = dev.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "slice sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("gpu: nearest sampler: %w", err)
	}

	cubeVerts := make([]byte, len(render.CubeVertices)*12)
	for i, v := range render.CubeVertices {
		for j, c := range v {
			binary.LittleEndian.PutUint32(cubeVerts[i*12+j*4:], math.Float32bits(c))
		}
	}
	cubeIdx := make([]byte, len(render.CubeIndices)*2)
	for i, idx := range render.CubeIndices {
		binary.LittleEndian.PutUint16(cubeIdx[i*2:], idx)
	}

	if p.cubeVerts, err = createInitBuffer(dev, "cube vertices", cubeVerts, wgpu.BufferUsageVertex, d); err != nil {
		return err
	}
	if p.cubeIdx, err = createInitBuffer(dev, "cube indices", cubeIdx, wgpu.BufferUsageIndex, d); err != nil {
		return err
	}

	// Slice vertices change with the slice positions; written per frame.
	p.sliceVerts, err = dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "slice vertices",
		Size:  3 * 4 * 12,
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: slice vertex buffer: %w", err)
	}

	sliceIdx := make([]byte, 3*len(render.SliceQuadIndices)*2)
	for q := 0; q < 3; q++ {
		for i, idx := range render.SliceQuadIndices {
			binary.LittleEndian.PutUint16(sliceIdx[(q*len(render.SliceQuadIndices)+i)*2:],
				idx+uint16(q*4))
		}
	}
	if p.sliceIdx, err = createInitBuffer(dev, "slice indices", sliceIdx, wgpu.BufferUsageIndex, d); err != nil {
		return err
	}
	return nil
}

func createInitBuffer(dev *wgpu.Device, name string, data []byte, usage wgpu.BufferUsage, d *Device) (*wgpu.Buffer, error) {
	buf, err := dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: name,
		Size:  uint64(len(data)),
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: %s buffer: %w", name, err)
	}
	d.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

func (p *pipelines) initBindGroups(dev *wgpu.Device, volView *wgpu.TextureView) error {
	var err error
	p.exitGroup, err = dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "exit pass bind group",
		Layout: p.exitLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: shader.RaymarchBindUniforms, Buffer: p.frameUniforms, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: exit bind group: %w", err)
	}

	p.sliceGroup, err = dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "slice bind group",
		Layout: p.sliceLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: shader.SliceBindUniforms, Buffer: p.sliceUniforms, Size: wgpu.WholeSize},
			{Binding: shader.SliceBindVolume, TextureView: volView},
			{Binding: shader.SliceBindSampler, Sampler: p.nearestSampler},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: slice bind group: %w", err)
	}
	return nil
}

// marchBindGroup builds the pass-B bind group. It depends on the
// viewport's exit texture, so the viewport recreates it on resize.
func (p *pipelines) marchBindGroup(dev *wgpu.Device, volView, labelView, exitView, visView, opaView *wgpu.TextureView) (*wgpu.BindGroup, error) {
	group, err := dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "march bind group",
		Layout: p.marchLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: shader.RaymarchBindUniforms, Buffer: p.frameUniforms, Size: wgpu.WholeSize},
			{Binding: shader.RaymarchBindVolume, TextureView: volView},
			{Binding: shader.RaymarchBindLabels, TextureView: labelView},
			{Binding: shader.RaymarchBindSampler, Sampler: p.linearSampler},
			{Binding: shader.RaymarchBindExit, TextureView: exitView},
			{Binding: shader.RaymarchBindVis, TextureView: visView},
			{Binding: shader.RaymarchBindOpacity, TextureView: opaView},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: march bind group: %w", err)
	}
	return group, nil
}

// blitBindGroup builds the surface-present bind group over the
// offscreen color texture; viewport-owned like the march group.
func (p *pipelines) blitBindGroup(dev *wgpu.Device, colorView *wgpu.TextureView) (*wgpu.BindGroup, error) {
	group, err := dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "blit bind group",
		Layout: p.blitLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: shader.BlitBindTexture, TextureView: colorView},
			{Binding: shader.BlitBindSampler, Sampler: p.nearestSampler},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: blit bind group: %w", err)
	}
	return group, nil
}

func (p *pipelines) initPipelines(dev *wgpu.Device, raymarchMod, sliceMod *wgpu.ShaderModule) error {
	exitPL, err := dev.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "exit pipeline layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{p.exitLayout},
	})
	if err != nil {
		return fmt.Errorf("gpu: exit pipeline layout: %w", err)
	}
	defer exitPL.Release()

	// Pass A keeps the back faces: cull Front.
	p.exitPipeline, err = dev.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "exit pipeline",
		Layout: exitPL,
		Vertex: wgpu.VertexState{
			Module:     raymarchMod,
			EntryPoint: "vs_cube",
			Buffers:    []wgpu.VertexBufferLayout{float3Layout()},
		},
		Fragment: &wgpu.FragmentState{
			Module:     raymarchMod,
			EntryPoint: "fs_exit",
			Targets: []wgpu.ColorTargetState{
				{Format: exitFormat, WriteMask: wgpu.ColorWriteMaskAll},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeFront,
		},
		Multisample: wgpu.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return fmt.Errorf("gpu: exit pipeline: %w", err)
	}

	marchPL, err := dev.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "march pipeline layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{p.marchLayout},
	})
	if err != nil {
		return fmt.Errorf("gpu: march pipeline layout: %w", err)
	}
	defer marchPL.Release()

	// Pass B keeps the front faces and blends the composited color over
	// the cleared background; it neither tests nor writes depth.
	p.marchPipeline, err = dev.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "march pipeline",
		Layout: marchPL,
		Vertex: wgpu.VertexState{
			Module:     raymarchMod,
			EntryPoint: "vs_cube",
			Buffers:    []wgpu.VertexBufferLayout{float3Layout()},
		},
		Fragment: &wgpu.FragmentState{
			Module:     raymarchMod,
			EntryPoint: "fs_march",
			Targets: []wgpu.ColorTargetState{
				{
					Format: colorFormat,
					Blend: &wgpu.BlendState{
						Color: wgpu.BlendComponent{
							SrcFactor: wgpu.BlendFactorSrcAlpha,
							DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
							Operation: wgpu.BlendOperationAdd,
						},
						Alpha: wgpu.BlendComponent{
							SrcFactor: wgpu.BlendFactorOne,
							DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
							Operation: wgpu.BlendOperationAdd,
						},
					},
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: false,
			DepthCompare:      wgpu.CompareFunctionAlways,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
		Multisample: wgpu.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return fmt.Errorf("gpu: march pipeline: %w", err)
	}

	slicePL, err := dev.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "slice pipeline layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{p.sliceLayout},
	})
	if err != nil {
		return fmt.Errorf("gpu: slice pipeline layout: %w", err)
	}
	defer slicePL.Release()

	// Slices are double-sided opaque planes, depth-tested against each
	// other in the same pass.
	p.slicePipeline, err = dev.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "slice pipeline",
		Layout: slicePL,
		Vertex: wgpu.VertexState{
			Module:     sliceMod,
			EntryPoint: "vs_slice",
			Buffers:    []wgpu.VertexBufferLayout{float3Layout()},
		},
		Fragment: &wgpu.FragmentState{
			Module:     sliceMod,
			EntryPoint: "fs_slice",
			Targets: []wgpu.ColorTargetState{
				{Format: colorFormat, WriteMask: wgpu.ColorWriteMaskAll},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
		Multisample: wgpu.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return fmt.Errorf("gpu: slice pipeline: %w", err)
	}
	return nil
}

// buildBlitPipeline creates the surface-present pipeline lazily, once
// the surface format is known.
func (p *pipelines) buildBlitPipeline(dev *wgpu.Device, surfaceFormat wgpu.TextureFormat) error {
	blitPL, err := dev.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "blit pipeline layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{p.blitLayout},
	})
	if err != nil {
		return fmt.Errorf("gpu: blit pipeline layout: %w", err)
	}
	defer blitPL.Release()

	p.blitPipeline, err = dev.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "blit pipeline",
		Layout: blitPL,
		Vertex: wgpu.VertexState{
			Module:     p.blitModule,
			EntryPoint: "vs_blit",
		},
		Fragment: &wgpu.FragmentState{
			Module:     p.blitModule,
			EntryPoint: "fs_blit",
			Targets: []wgpu.ColorTargetState{
				{Format: surfaceFormat, WriteMask: wgpu.ColorWriteMaskAll},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return fmt.Errorf("gpu: blit pipeline: %w", err)
	}
	return nil
}

func (p *pipelines) destroy() {
	if p.exitPipeline != nil {
		p.exitPipeline.Release()
	}
	if p.marchPipeline != nil {
		p.marchPipeline.Release()
	}
	if p.slicePipeline != nil {
		p.slicePipeline.Release()
	}
	if p.blitPipeline != nil {
		p.blitPipeline.Release()
	}
	if p.exitGroup != nil {
		p.exitGroup.Release()
	}
	if p.sliceGroup != nil {
		p.sliceGroup.Release()
	}
	for _, b := range []*wgpu.Buffer{p.frameUniforms, p.sliceUniforms, p.cubeVerts, p.cubeIdx, p.sliceVerts, p.sliceIdx} {
		if b != nil {
			b.Release()
		}
	}
	if p.linearSampler != nil {
		p.linearSampler.Release()
	}
	if p.nearestSampler != nil {
		p.nearestSampler.Release()
	}
	if p.exitLayout != nil {
		p.exitLayout.Release()
	}
	if p.marchLayout != nil {
		p.marchLayout.Release()
	}
	if p.sliceLayout != nil {
		p.sliceLayout.Release()
	}
	if p.blitLayout != nil {
		p.blitLayout.Release()
	}
	if p.blitModule != nil {
		p.blitModule.Release()
	}
	*p = pipelines{}
}
