// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyph

import (
	"fmt"

	"github.com/gogpu/glyph/internal/gpu"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// newCore creates every GPU object of a glyph pipeline. depth is nil for a
// pipeline drawn without a depth-stencil attachment. On failure all objects
// created so far are destroyed.
func newCore(device hal.Device, up Uploader, cfg Config, depth *hal.DepthStencilState) (*core, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if up == nil {
		return nil, ErrNilUploader
	}
	cfg = cfg.withDefaults()

	c := &core{
		device:   device,
		up:       up,
		belt:     gpu.NewStagingBelt(device, up, cfg.StagingChunkSize),
		label:    cfg.Label,
		newAtlas: cfg.NewAtlas,
	}
	if c.newAtlas == nil {
		c.newAtlas = defaultAtlasFactory(device)
	}

	if err := c.build(cfg, depth); err != nil {
		c.Destroy()
		return nil, err
	}

	Logger().Info("glyph pipeline created",
		"label", cfg.Label,
		"format", cfg.Format,
		"filter", cfg.Filter,
		"samples", cfg.Multisample.Count,
		"depth", depth != nil,
		"atlas_width", cfg.AtlasWidth,
		"atlas_height", cfg.AtlasHeight,
		"instances", cfg.InitialInstances)
	return c, nil
}

func (c *core) build(cfg Config, depth *hal.DepthStencilState) error {
	transformBuf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: c.label + "_transform",
		Size:  transformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create glyph transform buffer: %w", err)
	}
	c.transformBuf = transformBuf
	// Nothing reads the buffer yet, so it is written directly.
	if err := c.up.WriteBuffer(c.transformBuf, 0, Identity.bytes()); err != nil {
		return fmt.Errorf("write glyph transform: %w", err)
	}

	filter := cfg.Filter.filterMode()
	sampler, err := c.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        c.label + "_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    filter,
		MinFilter:    filter,
		MipmapFilter: filter,
	})
	if err != nil {
		return fmt.Errorf("create glyph sampler: %w", err)
	}
	c.sampler = sampler

	cache, err := c.newAtlas(c.belt, cfg.AtlasWidth, cfg.AtlasHeight)
	if err != nil {
		return fmt.Errorf("create glyph atlas: %w", err)
	}
	c.atlas = cache

	// Bind group layout:
	//   Binding 0: transform (uniform buffer, vertex)
	//   Binding 1: sampler (fragment)
	//   Binding 2: atlas texture (texture_2d, fragment)
	layout, err := c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: c.label + "_uniforms_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer: &gputypes.BufferBindingLayout{
					Type:           gputypes.BufferBindingTypeUniform,
					MinBindingSize: transformSize,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create glyph uniforms layout: %w", err)
	}
	c.layout = layout

	uniforms, err := c.createUniforms(c.atlas.View())
	if err != nil {
		return err
	}
	c.uniforms = uniforms

	pipeLayout, err := c.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            c.label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{c.layout},
	})
	if err != nil {
		return fmt.Errorf("create glyph pipeline layout: %w", err)
	}
	c.pipeLayout = pipeLayout

	source, err := gpu.GlyphShaderModuleSource(cfg.ShaderSPIRV)
	if err != nil {
		return fmt.Errorf("glyph shader: %w", err)
	}
	shader, err := c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  c.label + "_shader",
		Source: source,
	})
	if err != nil {
		return fmt.Errorf("compile glyph shader: %w", err)
	}
	c.shader = shader

	pipeline, err := c.device.CreateRenderPipeline(c.pipelineDescriptor(cfg, depth))
	if err != nil {
		return fmt.Errorf("create glyph pipeline: %w", err)
	}
	c.pipeline = pipeline

	instances, err := c.createInstanceBuffer(cfg.InitialInstances)
	if err != nil {
		return err
	}
	c.instances = instances
	c.supportedInstances = cfg.InitialInstances

	return nil
}

// pipelineDescriptor describes the instanced triangle-strip pipeline with
// straight alpha blending into cfg.Format.
func (c *core) pipelineDescriptor(cfg Config, depth *hal.DepthStencilState) *hal.RenderPipelineDescriptor {
	blend := gputypes.BlendState{
		Color: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorSrcAlpha,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
		Alpha: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorOne,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
	}
	stripIndex := gputypes.IndexFormatUint16

	return &hal.RenderPipelineDescriptor{
		Label:  c.label + "_pipeline",
		Layout: c.pipeLayout,
		Vertex: hal.VertexState{
			Module:     c.shader,
			EntryPoint: gpu.VertexEntryPoint,
			Buffers:    instanceLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     c.shader,
			EntryPoint: gpu.FragmentEntryPoint,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    cfg.Format,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		DepthStencil: depth,
		Primitive: gputypes.PrimitiveState{
			Topology:         gputypes.PrimitiveTopologyTriangleStrip,
			StripIndexFormat: &stripIndex,
			FrontFace:        gputypes.FrontFaceCW,
			CullMode:         gputypes.CullModeNone,
		},
		Multisample: cfg.Multisample,
	}
}

// createUniforms binds the transform, the sampler and an atlas view.
func (c *core) createUniforms(view hal.TextureView) (hal.BindGroup, error) {
	bg, err := c.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  c.label + "_uniforms",
		Layout: c.layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: c.transformBuf.NativeHandle(),
				Offset: 0,
				Size:   transformSize,
			}},
			{Binding: 1, Resource: gputypes.SamplerBinding{
				Sampler: c.sampler.NativeHandle(),
			}},
			{Binding: 2, Resource: gputypes.TextureViewBinding{
				TextureView: view.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create glyph uniforms: %w", err)
	}
	return bg, nil
}

// createInstanceBuffer allocates room for n instances.
func (c *core) createInstanceBuffer(n int) (hal.Buffer, error) {
	buf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: c.label + "_instances",
		Size:  uint64(n) * InstanceSize,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create glyph instance buffer: %w", err)
	}
	return buf, nil
}
