// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu holds the HAL-facing plumbing shared by the glyph packages.
//
// It is internal to the glyph module. The public packages reach the GPU
// only through the small seams defined here:
//
//   - Uploader: fills staging buffers (QueueUploader adapts a hal.Queue)
//   - StagingBelt: records buffer and texture uploads as copies into the
//     frame's commands and defers releases until the frame completes
//   - CommandRecorder and RenderPass: the subset of hal.CommandEncoder
//     and hal.RenderPassEncoder a glyph frame needs (EncoderRecorder
//     adapts a hal.CommandEncoder)
//   - GlyphShaderSource and GlyphShaderModuleSource: the embedded WGSL
//     glyph shader, optionally compiled to SPIR-V with naga
//
// The seams exist so pipeline behavior can be tested against recording
// fakes while still creating real objects on a hal/noop device.
//
// # Logging
//
// The package logger is silent by default. The root glyph package
// forwards SetLogger here so that every package logs through one
// *slog.Logger.
package gpu
