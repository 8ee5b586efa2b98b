// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyph

import (
	"github.com/gogpu/glyph/internal/gpu"
	"github.com/gogpu/wgpu/hal"
)

// Uploader fills the host-visible staging buffers uploads are copied
// through.
type Uploader = gpu.Uploader

// StagingBelt records uploads as copies into the frame being recorded and
// defers releases until the frame's submission completes.
type StagingBelt = gpu.StagingBelt

// CommandRecorder records copies, barriers and render passes into the
// current frame's encoder.
type CommandRecorder = gpu.CommandRecorder

// RenderPass is the subset of a render pass encoder used by Draw.
type RenderPass = gpu.RenderPass

// QueueUploader adapts a hal.Queue to Uploader.
func QueueUploader(q hal.Queue) Uploader {
	return gpu.QueueUploader(q)
}

// EncoderRecorder adapts a hal.CommandEncoder that is recording to
// CommandRecorder.
func EncoderRecorder(enc hal.CommandEncoder) CommandRecorder {
	return gpu.EncoderRecorder(enc)
}
