// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DefaultStagingChunkSize is the size of each reusable staging chunk.
// Larger writes get a dedicated staging buffer.
const DefaultStagingChunkSize uint64 = 256 * 1024

const (
	// Staged copy sources start on this boundary. It satisfies the buffer
	// copy and texture placement rules of every backend.
	stagingAlignment uint64 = 512

	// Row pitch of staged texture data.
	rowPitchAlignment uint32 = 256
)

// StagingBelt records CPU-to-GPU uploads into the frame's command stream.
//
// Every write is copied into staging space that no other write of the
// frame uses, then a copy into the destination is recorded on the
// CommandRecorder in call order. A pass recorded between two writes to the
// same buffer therefore sees the first one. Staging space and objects handed
// to Retire are freed only after the submission that used them completes:
// call Finish with the submission index after Submit, and Recall with the
// queue's completed index before recording the next frame.
//
// StagingBelt is not safe for concurrent use.
type StagingBelt struct {
	device    hal.Device
	up        Uploader
	chunkSize uint64

	active    []stagingChunk
	free      []stagingChunk
	oversized []hal.Buffer
	retired   []func()
	closed    []closedFrame

	// Padded texture rows, reused across writes.
	rows []byte
}

type stagingChunk struct {
	buffer hal.Buffer
	size   uint64
	offset uint64 // next allocation starts here
}

// tryAllocate reserves size bytes and returns their offset.
func (c *stagingChunk) tryAllocate(size uint64) (uint64, bool) {
	start := alignUp(c.offset, stagingAlignment)
	if start+size > c.size {
		return 0, false
	}
	c.offset = start + size
	return start, true
}

// closedFrame is everything a submitted frame still references.
type closedFrame struct {
	submission uint64
	chunks     []stagingChunk
	oversized  []hal.Buffer
	release    []func()
}

// NewStagingBelt creates a belt allocating chunkSize staging chunks on
// device and filling them through up. A zero chunkSize selects
// DefaultStagingChunkSize.
func NewStagingBelt(device hal.Device, up Uploader, chunkSize uint64) *StagingBelt {
	if chunkSize == 0 {
		chunkSize = DefaultStagingChunkSize
	}
	return &StagingBelt{
		device:    device,
		up:        up,
		chunkSize: chunkSize,
	}
}

// WriteBuffer records a write of data to dst at offset. usage is the
// read usage dst is in outside of copies, such as BufferUsageVertex; the
// buffer is transitioned to CopyDst around the recorded copy.
func (b *StagingBelt) WriteBuffer(rec CommandRecorder, dst hal.Buffer, usage gputypes.BufferUsage, offset uint64, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	src, srcOffset, err := b.stage(data)
	if err != nil {
		return err
	}

	rec.TransitionBuffers([]hal.BufferBarrier{{
		Buffer: dst,
		Usage:  hal.BufferUsageTransition{OldUsage: usage, NewUsage: gputypes.BufferUsageCopyDst},
	}})
	rec.CopyBufferToBuffer(src, dst, []hal.BufferCopy{{
		SrcOffset: srcOffset,
		DstOffset: offset,
		Size:      uint64(len(data)),
	}})
	rec.TransitionBuffers([]hal.BufferBarrier{{
		Buffer: dst,
		Usage:  hal.BufferUsageTransition{OldUsage: gputypes.BufferUsageCopyDst, NewUsage: usage},
	}})
	return nil
}

// WriteTexture records a write of data, laid out as described by layout,
// into the size region of dst. The texture is left sampleable.
func (b *StagingBelt) WriteTexture(rec CommandRecorder, dst *hal.ImageCopyTexture, data []byte, layout hal.ImageDataLayout, size hal.Extent3D) error {
	if len(data) == 0 || size.Width == 0 || size.Height == 0 {
		return nil
	}
	rows := layout.RowsPerImage
	if rows == 0 {
		rows = size.Height
	}
	pitch := alignUp32(layout.BytesPerRow, rowPitchAlignment)

	staged := data[layout.Offset:]
	if pitch != layout.BytesPerRow {
		n := int(pitch) * int(rows)
		if cap(b.rows) < n {
			b.rows = make([]byte, n)
		}
		staged = b.rows[:n]
		clear(staged)
		for r := range int(rows) {
			src := int(layout.Offset) + r*int(layout.BytesPerRow)
			if src+int(layout.BytesPerRow) > len(data) {
				break
			}
			copy(staged[r*int(pitch):], data[src:src+int(layout.BytesPerRow)])
		}
	}

	src, srcOffset, err := b.stage(staged)
	if err != nil {
		return err
	}

	subresource := hal.TextureRange{
		Aspect:          gputypes.TextureAspectAll,
		BaseMipLevel:    dst.MipLevel,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	}
	if current := dst.Texture.CurrentUsage(); current != gputypes.TextureUsageCopyDst {
		rec.TransitionTextures([]hal.TextureBarrier{{
			Texture: dst.Texture,
			Range:   subresource,
			Usage:   hal.TextureUsageTransition{OldUsage: current, NewUsage: gputypes.TextureUsageCopyDst},
		}})
	}
	rec.CopyBufferToTexture(src, dst.Texture, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{
			Offset:       srcOffset,
			BytesPerRow:  pitch,
			RowsPerImage: rows,
		},
		TextureBase: *dst,
		Size:        size,
	}})
	rec.TransitionTextures([]hal.TextureBarrier{{
		Texture: dst.Texture,
		Range:   subresource,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopyDst,
			NewUsage: gputypes.TextureUsageTextureBinding,
		},
	}})
	return nil
}

// Retire defers release until the submission of the current frame has
// completed. Use it for objects that passes recorded this frame may still
// reference.
func (b *StagingBelt) Retire(release func()) {
	b.retired = append(b.retired, release)
}

// Finish closes the current frame. submission is the index Submit returned
// for the command buffer holding the frame's recorded copies.
func (b *StagingBelt) Finish(submission uint64) {
	if len(b.active) == 0 && len(b.oversized) == 0 && len(b.retired) == 0 {
		return
	}
	b.closed = append(b.closed, closedFrame{
		submission: submission,
		chunks:     b.active,
		oversized:  b.oversized,
		release:    b.retired,
	})
	b.active = nil
	b.oversized = nil
	b.retired = nil
}

// Recall reuses staging chunks and runs deferred releases of every finished
// frame whose submission index is at most completed.
func (b *StagingBelt) Recall(completed uint64) {
	n := 0
	for _, f := range b.closed {
		if f.submission > completed {
			break
		}
		n++
		for _, c := range f.chunks {
			c.offset = 0
			b.free = append(b.free, c)
		}
		for _, buf := range f.oversized {
			b.device.DestroyBuffer(buf)
		}
		for _, release := range f.release {
			release()
		}
	}
	if n > 0 {
		b.closed = append(b.closed[:0], b.closed[n:]...)
	}
}

// Pending returns the number of finished frames not yet recalled.
func (b *StagingBelt) Pending() int {
	return len(b.closed)
}

// Destroy releases all staging buffers and runs every deferred release.
// The GPU must be done with all submitted frames.
func (b *StagingBelt) Destroy() {
	b.Finish(0)
	for _, f := range b.closed {
		b.active = append(b.active, f.chunks...)
		b.oversized = append(b.oversized, f.oversized...)
		b.retired = append(b.retired, f.release...)
	}
	b.closed = nil

	for _, c := range append(b.active, b.free...) {
		b.device.DestroyBuffer(c.buffer)
	}
	for _, buf := range b.oversized {
		b.device.DestroyBuffer(buf)
	}
	for _, release := range b.retired {
		release()
	}
	b.active, b.free, b.oversized, b.retired = nil, nil, nil, nil
}

// stage copies data into unused staging space.
func (b *StagingBelt) stage(data []byte) (hal.Buffer, uint64, error) {
	size := uint64(len(data))
	if size > b.chunkSize {
		buf, err := b.createBuffer("glyph_staging_oversized", alignUp(size, 4))
		if err != nil {
			return nil, 0, err
		}
		if err := b.up.WriteBuffer(buf, 0, data); err != nil {
			b.device.DestroyBuffer(buf)
			return nil, 0, fmt.Errorf("write staging buffer: %w", err)
		}
		b.oversized = append(b.oversized, buf)
		return buf, 0, nil
	}

	chunk, offset, err := b.allocate(size)
	if err != nil {
		return nil, 0, err
	}
	// On failure the reserved space stays unused until the frame is recalled.
	if err := b.up.WriteBuffer(chunk, offset, data); err != nil {
		return nil, 0, fmt.Errorf("write staging chunk: %w", err)
	}
	return chunk, offset, nil
}

// allocate reserves size bytes in an active, recycled or new chunk.
func (b *StagingBelt) allocate(size uint64) (hal.Buffer, uint64, error) {
	for i := range b.active {
		if offset, ok := b.active[i].tryAllocate(size); ok {
			return b.active[i].buffer, offset, nil
		}
	}

	var chunk stagingChunk
	if n := len(b.free); n > 0 {
		chunk = b.free[n-1]
		b.free = b.free[:n-1]
	} else {
		buf, err := b.createBuffer("glyph_staging_chunk", b.chunkSize)
		if err != nil {
			return nil, 0, err
		}
		chunk = stagingChunk{buffer: buf, size: b.chunkSize}
		Logger().Debug("glyph staging chunk created", "size", b.chunkSize)
	}
	offset, _ := chunk.tryAllocate(size)
	b.active = append(b.active, chunk)
	return chunk.buffer, offset, nil
}

func (b *StagingBelt) createBuffer(label string, size uint64) (hal.Buffer, error) {
	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label:            label,
		Size:             size,
		Usage:            gputypes.BufferUsageCopySrc | gputypes.BufferUsageMapWrite,
		MappedAtCreation: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create staging buffer (%d bytes): %w", size, err)
	}
	return buf, nil
}

func alignUp(n, alignment uint64) uint64 {
	return (n + alignment - 1) / alignment * alignment
}

func alignUp32(n, alignment uint32) uint32 {
	return (n + alignment - 1) / alignment * alignment
}
