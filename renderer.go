// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyph

// Renderer is the part of a glyph pipeline shared by the depth and
// non-depth variants: instance upload, atlas management and the frame
// lifecycle of both.
//
// Uploads are recorded as copies on a CommandRecorder, so a Draw recorded
// after an Upload on the same recorder draws the uploaded instances even
// when another Upload follows before the frame is submitted.
type Renderer interface {
	// Upload records a copy of instances that Draws recorded after it on
	// rec draw. Returns an error if the instance buffer cannot grow to fit
	// them or the copy cannot be staged.
	Upload(rec CommandRecorder, instances []Instance) error

	// UpdateCache records a write to a region of the glyph atlas.
	UpdateCache(rec CommandRecorder, offset, size [2]uint16, data []byte) error

	// ResizeCache replaces the glyph atlas with an empty one of the given
	// size. Every previously cached glyph location becomes invalid.
	ResizeCache(width, height uint32) error

	// SupportedInstances returns the capacity of the instance buffer.
	SupportedInstances() int

	// CurrentInstances returns the number of instances the next Draw draws.
	CurrentInstances() int

	// Finish closes the recorded frame; submission is its Submit index.
	Finish(submission uint64)

	// Recall releases staging space and replaced objects of frames whose
	// submission index is at most completed.
	Recall(completed uint64)

	// Destroy releases all GPU resources.
	Destroy()
}

var (
	_ Renderer = (*Pipeline)(nil)
	_ Renderer = (*DepthPipeline)(nil)
)
