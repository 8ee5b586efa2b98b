// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import "github.com/gogpu/wgpu/hal"

// CommandRecorder records into the command encoder of the current frame:
// staged copies, the barriers around them and render passes, in call
// order. The caller owns encoding, submission and presentation.
type CommandRecorder interface {
	TransitionBuffers(barriers []hal.BufferBarrier)
	TransitionTextures(barriers []hal.TextureBarrier)
	CopyBufferToBuffer(src, dst hal.Buffer, regions []hal.BufferCopy)
	CopyBufferToTexture(src hal.Buffer, dst hal.Texture, regions []hal.BufferTextureCopy)
	BeginRenderPass(desc *hal.RenderPassDescriptor) RenderPass
}

// RenderPass is the subset of hal.RenderPassEncoder needed to record an
// instanced glyph draw.
type RenderPass interface {
	SetPipeline(pipeline hal.RenderPipeline)
	SetBindGroup(index uint32, group hal.BindGroup)
	SetVertexBuffer(slot uint32, buffer hal.Buffer)
	SetScissorRect(x, y, width, height uint32)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	End()
}

// EncoderRecorder adapts a hal.CommandEncoder that is between BeginEncoding
// and EndEncoding to CommandRecorder.
func EncoderRecorder(enc hal.CommandEncoder) CommandRecorder {
	return encoderRecorder{enc: enc}
}

type encoderRecorder struct {
	enc hal.CommandEncoder
}

func (r encoderRecorder) TransitionBuffers(barriers []hal.BufferBarrier) {
	r.enc.TransitionBuffers(barriers)
}

func (r encoderRecorder) TransitionTextures(barriers []hal.TextureBarrier) {
	r.enc.TransitionTextures(barriers)
}

func (r encoderRecorder) CopyBufferToBuffer(src, dst hal.Buffer, regions []hal.BufferCopy) {
	r.enc.CopyBufferToBuffer(src, dst, regions)
}

func (r encoderRecorder) CopyBufferToTexture(src hal.Buffer, dst hal.Texture, regions []hal.BufferTextureCopy) {
	r.enc.CopyBufferToTexture(src, dst, regions)
}

func (r encoderRecorder) BeginRenderPass(desc *hal.RenderPassDescriptor) RenderPass {
	return halPass{rp: r.enc.BeginRenderPass(desc)}
}

// halPass forwards to a hal.RenderPassEncoder. Vertex buffers are bound
// from offset zero and bind groups carry no dynamic offsets.
type halPass struct {
	rp hal.RenderPassEncoder
}

func (p halPass) SetPipeline(pipeline hal.RenderPipeline) { p.rp.SetPipeline(pipeline) }

func (p halPass) SetBindGroup(index uint32, group hal.BindGroup) {
	p.rp.SetBindGroup(index, group, nil)
}

func (p halPass) SetVertexBuffer(slot uint32, buffer hal.Buffer) {
	p.rp.SetVertexBuffer(slot, buffer, 0)
}

func (p halPass) SetScissorRect(x, y, width, height uint32) {
	p.rp.SetScissorRect(x, y, width, height)
}

func (p halPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.rp.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p halPass) End() { p.rp.End() }
