// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyph

// Point represents a 2D point in pixel or texture space.
type Point struct {
	X, Y float32
}

// Pt is a convenience function to create a Point.
func Pt(x, y float32) Point {
	return Point{X: x, Y: y}
}

// Rect is an axis-aligned rectangle spanning Min to Max.
type Rect struct {
	Min, Max Point
}

// R is a convenience function to create a Rect from its corner coordinates.
func R(minX, minY, maxX, maxY float32) Rect {
	return Rect{Min: Point{X: minX, Y: minY}, Max: Point{X: maxX, Y: maxY}}
}

// Width returns Max.X - Min.X. It is negative for an inverted rectangle.
func (r Rect) Width() float32 {
	return r.Max.X - r.Min.X
}

// Height returns Max.Y - Min.Y. It is negative for an inverted rectangle.
func (r Rect) Height() float32 {
	return r.Max.Y - r.Min.Y
}

// Empty reports whether the rectangle encloses no area.
func (r Rect) Empty() bool {
	return r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y
}

// Intersects reports whether r and s overlap with a positive area.
func (r Rect) Intersects(s Rect) bool {
	return r.Min.X < s.Max.X && s.Min.X < r.Max.X &&
		r.Min.Y < s.Max.Y && s.Min.Y < r.Max.Y
}

// Extra carries the per-glyph values passed through to the instance.
type Extra struct {
	// Depth is written to the z coordinate of the quad.
	Depth float32

	// Color is the RGBA color multiplied with the atlas coverage.
	Color [4]float32
}

// GlyphVertex is one positioned glyph as produced by a layout engine.
type GlyphVertex struct {
	// TexCoords is the normalized region of the atlas holding the bitmap.
	TexCoords Rect

	// PixelCoords is the destination rectangle in pixels. It may extend
	// past Bounds.
	PixelCoords Rect

	// Bounds is the rectangle the glyph is clipped to.
	Bounds Rect

	Extra Extra
}
