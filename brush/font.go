// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package brush

import (
	"bytes"
	"fmt"
	"image"

	gotext "github.com/go-text/typesetting/font"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Font is a parsed TrueType or OpenType font usable for both shaping and
// rasterization.
type Font struct {
	face  *gotext.Face
	outlines *sfnt.Font
}

// ParseFont parses font file data.
func ParseFont(data []byte) (*Font, error) {
	face, err := gotext.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("brush: parse font for shaping: %w", err)
	}
	outlines, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("brush: parse font outlines: %w", err)
	}
	return &Font{face: face, outlines: outlines}, nil
}

// lineMetrics returns the ascent and line height in pixels at ppem.
func (f *Font) lineMetrics(buf *sfnt.Buffer, ppem fixed.Int26_6) (ascent, height float32) {
	m, err := f.outlines.Metrics(buf, ppem, xfont.HintingNone)
	if err != nil {
		// Fall back to the em size.
		size := float32(ppem) / 64
		return size, size
	}
	return fixedToFloat(m.Ascent), fixedToFloat(m.Height)
}

// rasterize renders a glyph into a coverage bitmap. origin is the offset of
// the bitmap's top-left texel from the pen position on the baseline. A nil
// bitmap means the glyph has no ink.
func (f *Font) rasterize(buf *sfnt.Buffer, gid sfnt.GlyphIndex, ppem fixed.Int26_6) (*image.Alpha, image.Point, error) {
	bounds, _, err := f.outlines.GlyphBounds(buf, gid, ppem, xfont.HintingNone)
	if err != nil {
		return nil, image.Point{}, fmt.Errorf("glyph %d bounds: %w", gid, err)
	}
	minX, minY := bounds.Min.X.Floor(), bounds.Min.Y.Floor()
	width, height := bounds.Max.X.Ceil()-minX, bounds.Max.Y.Ceil()-minY
	if width <= 0 || height <= 0 {
		return nil, image.Point{}, nil
	}

	segments, err := f.outlines.LoadGlyph(buf, gid, ppem, nil)
	if err != nil {
		return nil, image.Point{}, fmt.Errorf("glyph %d outline: %w", gid, err)
	}

	ox, oy := float32(minX), float32(minY)
	pt := func(p fixed.Point26_6) (float32, float32) {
		return fixedToFloat(p.X) - ox, fixedToFloat(p.Y) - oy
	}

	r := vector.NewRasterizer(width, height)
	started := false
	for _, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if started {
				r.ClosePath()
			}
			r.MoveTo(pt(seg.Args[0]))
			started = true
		case sfnt.SegmentOpLineTo:
			r.LineTo(pt(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			r.QuadTo(bx, by, cx, cy)
		case sfnt.SegmentOpCubeTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			dx, dy := pt(seg.Args[2])
			r.CubeTo(bx, by, cx, cy, dx, dy)
		}
	}
	if started {
		r.ClosePath()
	}

	dst := image.NewAlpha(image.Rect(0, 0, width, height))
	r.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	return dst, image.Point{X: minX, Y: minY}, nil
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}

func floatToFixed(v float32) fixed.Int26_6 {
	return fixed.Int26_6(v*64 + 0.5)
}
