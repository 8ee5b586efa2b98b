// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyph

// Region is a scissor rectangle in target pixels. Fragments outside it are
// discarded for the draw it is passed to.
type Region struct {
	X      uint32
	Y      uint32
	Width  uint32
	Height uint32
}
