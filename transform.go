// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyph

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// transformSize is the byte size of the transform uniform (mat4x4<f32>).
const transformSize = 64

// Transform is a 4x4 matrix in column-major order, the memory layout of a
// WGSL mat4x4<f32>. It maps glyph positions to clip space.
type Transform [16]float32

// Identity is the transform the uniform buffer starts with.
var Identity = Transform{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// OrthographicProjection returns the transform mapping a width x height
// pixel space with a top-left origin and Y down to clip space.
func OrthographicProjection(width, height uint32) Transform {
	m := mgl32.Translate3D(-1, 1, 0).Mul4(mgl32.Scale3D(2/float32(width), -2/float32(height), 1))
	return Transform(m)
}

// Equal reports whether t and u are bit-for-bit identical.
func (t Transform) Equal(u Transform) bool {
	for i := range t {
		if math.Float32bits(t[i]) != math.Float32bits(u[i]) {
			return false
		}
	}
	return true
}

// bytes returns the little-endian uniform image of the transform.
func (t Transform) bytes() []byte {
	buf := make([]byte, transformSize)
	for i, f := range t {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
