// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package brush

// Text is a run of text sharing size, color and depth.
type Text struct {
	Text string

	// Scale is the font size in pixels per em.
	Scale float32

	// Color is RGBA in [0, 1].
	Color [4]float32

	// Z is the depth written for every glyph of the run.
	Z float32
}

// Section is a block of text runs laid out from one position.
type Section struct {
	// ScreenPosition is the top-left corner of the first line in pixels.
	ScreenPosition [2]float32

	// Bounds is the width and height glyphs are clipped to, measured from
	// ScreenPosition. A non-positive component leaves that axis unbounded.
	Bounds [2]float32

	// Text runs follow each other on the same line until a newline.
	Text []Text
}
