// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyph

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Pipeline draws glyph instances into a color target without a depth-stencil
// attachment.
//
// Pipeline is not safe for concurrent use.
type Pipeline struct {
	core
}

// New creates a glyph pipeline on device. Staging buffers are filled
// through up.
func New(device hal.Device, up Uploader, cfg Config) (*Pipeline, error) {
	c, err := newCore(device, up, cfg, nil)
	if err != nil {
		return nil, err
	}
	return &Pipeline{core: *c}, nil
}

// Draw records one render pass over target that blends every uploaded
// instance on top of its contents. A nil region draws to the whole target.
func (p *Pipeline) Draw(rec CommandRecorder, target hal.TextureView, transform Transform, region *Region) error {
	return p.draw(rec, target, nil, transform, region)
}

// DepthPipeline draws glyph instances with a depth-stencil state. Its Draw
// requires the matching depth-stencil attachment.
//
// DepthPipeline is not safe for concurrent use.
type DepthPipeline struct {
	core
	depth hal.DepthStencilState
}

// NewDepth creates a glyph pipeline that tests and writes depth as
// described by depth.
func NewDepth(device hal.Device, up Uploader, cfg Config, depth hal.DepthStencilState) (*DepthPipeline, error) {
	c, err := newCore(device, up, cfg, &depth)
	if err != nil {
		return nil, err
	}
	return &DepthPipeline{core: *c, depth: depth}, nil
}

// DepthStencil returns the depth-stencil state the pipeline was built with.
func (p *DepthPipeline) DepthStencil() hal.DepthStencilState {
	return p.depth
}

// Draw records one render pass over target and depth that blends every
// uploaded instance on top of the target contents. A nil region draws to
// the whole target.
func (p *DepthPipeline) Draw(rec CommandRecorder, target hal.TextureView, depth hal.RenderPassDepthStencilAttachment, transform Transform, region *Region) error {
	return p.draw(rec, target, &depth, transform, region)
}

// core holds the GPU objects and frame state shared by both pipelines.
type core struct {
	device hal.Device
	up     Uploader
	belt   *StagingBelt
	label  string

	// Objects in creation order; Destroy releases them in reverse.
	transformBuf hal.Buffer
	sampler      hal.Sampler
	atlas        Atlas
	layout       hal.BindGroupLayout
	uniforms     hal.BindGroup
	pipeLayout   hal.PipelineLayout
	shader       hal.ShaderModule
	pipeline     hal.RenderPipeline
	instances    hal.Buffer

	newAtlas AtlasFactory

	currentInstances   int
	supportedInstances int

	// Last transform recorded into transformBuf by draw. Starts zeroed, so
	// the first draw always uploads.
	currentTransform Transform

	// Scratch space for encoded instances, reused across uploads.
	scratch []byte

	destroyed bool
}

// Upload records a copy of instances into the instance buffer on rec. Draws
// recorded after it on rec draw them. The instance buffer grows to exactly
// len(instances) when it is too small and never shrinks; the old buffer is
// released once the frame completes.
func (c *core) Upload(rec CommandRecorder, instances []Instance) error {
	if c.destroyed {
		return ErrPipelineDestroyed
	}
	if len(instances) == 0 {
		c.currentInstances = 0
		return nil
	}

	if len(instances) > c.supportedInstances {
		buf, err := c.createInstanceBuffer(len(instances))
		if err != nil {
			return err
		}
		c.retireBuffer(c.instances)
		c.instances = buf
		Logger().Debug("glyph instance buffer grown",
			"from", c.supportedInstances, "to", len(instances))
		c.supportedInstances = len(instances)
	}

	c.scratch = appendInstances(c.scratch[:0], instances)
	err := c.belt.WriteBuffer(rec, c.instances, gputypes.BufferUsageVertex, 0, c.scratch)
	if err != nil {
		c.currentInstances = 0
		return fmt.Errorf("upload glyph instances: %w", err)
	}
	c.currentInstances = len(instances)
	return nil
}

// UpdateCache records a write of a size[0] x size[1] bitmap at offset in
// the atlas on rec.
func (c *core) UpdateCache(rec CommandRecorder, offset, size [2]uint16, data []byte) error {
	if c.destroyed {
		return ErrPipelineDestroyed
	}
	if err := c.atlas.Update(rec, offset, size, data); err != nil {
		return fmt.Errorf("update glyph atlas: %w", err)
	}
	return nil
}

// ResizeCache replaces the atlas with a new width x height one and rebinds
// it. The old atlas and bind group are released once the frame completes.
func (c *core) ResizeCache(width, height uint32) error {
	if c.destroyed {
		return ErrPipelineDestroyed
	}
	if width == 0 || height == 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidAtlasSize, width, height)
	}

	cache, err := c.newAtlas(c.belt, width, height)
	if err != nil {
		return fmt.Errorf("create glyph atlas: %w", err)
	}
	uniforms, err := c.createUniforms(cache.View())
	if err != nil {
		cache.Destroy()
		return err
	}

	oldUniforms, oldAtlas := c.uniforms, c.atlas
	c.belt.Retire(func() {
		c.device.DestroyBindGroup(oldUniforms)
		oldAtlas.Destroy()
	})
	c.atlas = cache
	c.uniforms = uniforms

	Logger().Debug("glyph atlas resized", "width", width, "height", height)
	return nil
}

// SupportedInstances returns the capacity of the instance buffer.
func (c *core) SupportedInstances() int {
	return c.supportedInstances
}

// CurrentInstances returns the number of instances the next Draw draws.
func (c *core) CurrentInstances() int {
	return c.currentInstances
}

// Finish closes the frame whose uploads and draws were recorded since the
// last Finish. submission is the index Submit returned for it.
func (c *core) Finish(submission uint64) {
	if c.destroyed {
		return
	}
	c.belt.Finish(submission)
}

// Recall recycles staging space and releases replaced objects of every
// finished frame whose submission index is at most completed.
func (c *core) Recall(completed uint64) {
	if c.destroyed {
		return
	}
	c.belt.Recall(completed)
}

func (c *core) retireBuffer(buf hal.Buffer) {
	c.belt.Retire(func() { c.device.DestroyBuffer(buf) })
}

func (c *core) draw(rec CommandRecorder, target hal.TextureView, depth *hal.RenderPassDepthStencilAttachment, transform Transform, region *Region) error {
	if c.destroyed {
		return ErrPipelineDestroyed
	}

	if !transform.Equal(c.currentTransform) {
		err := c.belt.WriteBuffer(rec, c.transformBuf, gputypes.BufferUsageUniform, 0, transform.bytes())
		if err != nil {
			return fmt.Errorf("upload glyph transform: %w", err)
		}
		c.currentTransform = transform
		Logger().Debug("glyph transform uploaded", "label", c.label)
	}

	rp := rec.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: c.label + "_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    target,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}},
		DepthStencilAttachment: depth,
	})

	rp.SetPipeline(c.pipeline)
	rp.SetBindGroup(0, c.uniforms)
	rp.SetVertexBuffer(0, c.instances)
	if region != nil {
		rp.SetScissorRect(region.X, region.Y, region.Width, region.Height)
	}
	rp.Draw(4, uint32(c.currentInstances), 0, 0)
	rp.End()
	return nil
}

// Destroy releases all GPU resources in reverse creation order, including
// those still awaiting Recall. The GPU must be done with every submitted
// frame. Safe to call multiple times.
func (c *core) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true

	// Staging buffers and retired objects first.
	c.belt.Destroy()

	if c.instances != nil {
		c.device.DestroyBuffer(c.instances)
		c.instances = nil
	}
	if c.pipeline != nil {
		c.device.DestroyRenderPipeline(c.pipeline)
		c.pipeline = nil
	}
	if c.shader != nil {
		c.device.DestroyShaderModule(c.shader)
		c.shader = nil
	}
	if c.pipeLayout != nil {
		c.device.DestroyPipelineLayout(c.pipeLayout)
		c.pipeLayout = nil
	}
	if c.uniforms != nil {
		c.device.DestroyBindGroup(c.uniforms)
		c.uniforms = nil
	}
	if c.layout != nil {
		c.device.DestroyBindGroupLayout(c.layout)
		c.layout = nil
	}
	if c.atlas != nil {
		c.atlas.Destroy()
		c.atlas = nil
	}
	if c.sampler != nil {
		c.device.DestroySampler(c.sampler)
		c.sampler = nil
	}
	if c.transformBuf != nil {
		c.device.DestroyBuffer(c.transformBuf)
		c.transformBuf = nil
	}
	c.currentInstances = 0
}
