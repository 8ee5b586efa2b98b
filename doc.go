// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package glyph draws laid-out text glyphs as instanced GPU quads.
//
// # Overview
//
// A text layout engine produces one [GlyphVertex] per visible glyph: where it
// lands on screen, which part of the glyph atlas it samples, the rectangle it
// must stay inside, and its depth and color. [InstanceFromVertex] turns each
// vertex into a 52-byte [Instance], clipping the quad against its bounds while
// keeping the texel density of the visible part. A [Pipeline] records a
// copy of the instances into a growable GPU buffer and an instanced draw on
// top of whatever the target already holds.
//
// # Quick Start
//
//	import "github.com/gogpu/glyph"
//
//	p, err := glyph.New(device, glyph.QueueUploader(queue), glyph.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer p.Destroy()
//
//	instances := make([]glyph.Instance, 0, len(vertices))
//	for _, v := range vertices {
//	    instances = append(instances, glyph.InstanceFromVertex(v))
//	}
//	rec := glyph.EncoderRecorder(encoder)
//	if err := p.Upload(rec, instances); err != nil {
//	    return err
//	}
//	if err := p.Draw(rec, targetView, glyph.OrthographicProjection(width, height), nil); err != nil {
//	    return err
//	}
//
// # Frames
//
// Uploads, cache updates and draws are recorded in call order on the
// frame's encoder, so several Upload and Draw pairs may share one frame.
// After submitting it, pass the submission index to Finish. Before
// recording a later frame, call Recall with the queue's completed index;
// it recycles staging space and releases buffers, bind groups and atlases
// the frame replaced.
//
//	idx, err := queue.Submit([]hal.CommandBuffer{cmd})
//	if err != nil {
//	    return err
//	}
//	p.Finish(idx)
//	// next frame
//	p.Recall(queue.PollCompleted())
//
// # Depth
//
// [Pipeline] renders without a depth-stencil attachment. [DepthPipeline] is
// built with a [hal.DepthStencilState] and its Draw requires the matching
// attachment. Both satisfy [Renderer].
//
// # Atlas
//
// The glyph bitmaps live in a single-channel atlas texture owned by the
// pipeline. [Pipeline.UpdateCache] writes a region of it and
// [Pipeline.ResizeCache] replaces it, which invalidates every cached glyph
// location. The default atlas comes from package atlas; [Config.NewAtlas]
// substitutes another implementation.
//
// # Coordinate System
//
// Pixel coordinates have the origin at the top-left with Y increasing down.
// [OrthographicProjection] maps them to clip space.
//
// # Thread Safety
//
// A pipeline is not safe for concurrent use. Upload, cache updates, Draw,
// Finish and Recall must be serialized by the caller. [SetLogger] and [Logger]
// are safe for concurrent use.
package glyph
