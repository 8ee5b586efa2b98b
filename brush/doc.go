// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package brush lays out text sections and feeds them to a glyph pipeline.
//
// A Brush queues [Section] values, shapes them with go-text/typesetting,
// rasterizes glyphs that are not cached yet with golang.org/x/image, packs
// their bitmaps into the pipeline's atlas and uploads one instance per
// visible glyph. When a frame does not fit the atlas, the brush first
// evicts glyphs cached by earlier frames, then doubles the atlas up to
// [Config].MaxAtlasSize.
//
// Usage:
//
//	f, err := brush.ParseFont(goregular.TTF)
//	if err != nil {
//	    return err
//	}
//	b, err := brush.New(f, brush.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//
//	b.Queue(brush.Section{
//	    ScreenPosition: [2]float32{30, 30},
//	    Text: []brush.Text{{Text: "Hello", Scale: 40, Color: [4]float32{1, 1, 1, 1}}},
//	})
//	if err := b.DrawQueued(pipeline, recorder, targetView, width, height); err != nil {
//	    return err
//	}
//
// Atlas updates and instance uploads are recorded on the same recorder as
// the draw, so one frame may draw several queues. Only explicit newlines
// break lines. A Brush is not safe for concurrent use.
package brush
