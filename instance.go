// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyph

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"
)

// InstanceSize is the byte size of one encoded Instance.
// Layout per instance:
//
//	left_top         (vec3<f32>) = 12 bytes (location 0, offset 0)
//	right_bottom     (vec2<f32>) =  8 bytes (location 1, offset 12)
//	tex_left_top     (vec2<f32>) =  8 bytes (location 2, offset 20)
//	tex_right_bottom (vec2<f32>) =  8 bytes (location 3, offset 28)
//	color            (vec4<f32>) = 16 bytes (location 4, offset 36)
//
// Total = 52 bytes per instance.
const InstanceSize = 52

// Instance is the GPU record for one glyph quad. The quad's top edge is at
// LeftTop[1] and its bottom edge at RightBottom[1].
type Instance struct {
	LeftTop        [3]float32
	RightBottom    [2]float32
	TexLeftTop     [2]float32
	TexRightBottom [2]float32
	Color          [4]float32
}

// InstanceFromVertex converts a glyph vertex into an instance, clipping its
// pixel rectangle against the vertex bounds.
//
// Sides are clipped in the order max x, min x, max y, min y. Each clipped
// side moves the matching texture edge so the visible part keeps its texel
// density, anchored at the opposite texture edge. A glyph lying entirely
// outside the bounds collapses to a zero-area quad.
func InstanceFromVertex(v GlyphVertex) Instance {
	rect := v.PixelCoords
	tex := v.TexCoords
	bounds := v.Bounds

	if rect.Max.X > bounds.Max.X {
		oldWidth := rect.Width()
		rect.Max.X = max(bounds.Max.X, rect.Min.X)
		tex.Max.X = tex.Min.X + tex.Width()*extentRatio(rect.Width(), oldWidth)
	}

	if rect.Min.X < bounds.Min.X {
		oldWidth := rect.Width()
		rect.Min.X = min(bounds.Min.X, rect.Max.X)
		tex.Min.X = tex.Max.X - tex.Width()*extentRatio(rect.Width(), oldWidth)
	}

	if rect.Max.Y > bounds.Max.Y {
		oldHeight := rect.Height()
		rect.Max.Y = max(bounds.Max.Y, rect.Min.Y)
		tex.Max.Y = tex.Min.Y + tex.Height()*extentRatio(rect.Height(), oldHeight)
	}

	if rect.Min.Y < bounds.Min.Y {
		oldHeight := rect.Height()
		rect.Min.Y = min(bounds.Min.Y, rect.Max.Y)
		tex.Min.Y = tex.Max.Y - tex.Height()*extentRatio(rect.Height(), oldHeight)
	}

	return Instance{
		LeftTop:        [3]float32{rect.Min.X, rect.Max.Y, v.Extra.Depth},
		RightBottom:    [2]float32{rect.Max.X, rect.Min.Y},
		TexLeftTop:     [2]float32{tex.Min.X, tex.Max.Y},
		TexRightBottom: [2]float32{tex.Max.X, tex.Min.Y},
		Color:          v.Extra.Color,
	}
}

// extentRatio returns clipped/original, or 0 when either extent is empty.
func extentRatio(clipped, original float32) float32 {
	if clipped <= 0 || original <= 0 {
		return 0
	}
	return clipped / original
}

// AppendBytes appends the little-endian encoding of the instance to dst.
func (in Instance) AppendBytes(dst []byte) []byte {
	dst = appendFloats(dst, in.LeftTop[:])
	dst = appendFloats(dst, in.RightBottom[:])
	dst = appendFloats(dst, in.TexLeftTop[:])
	dst = appendFloats(dst, in.TexRightBottom[:])
	return appendFloats(dst, in.Color[:])
}

// EncodeInstances returns the byte image of instances as uploaded to the
// instance buffer.
func EncodeInstances(instances []Instance) []byte {
	return appendInstances(make([]byte, 0, len(instances)*InstanceSize), instances)
}

func appendInstances(dst []byte, instances []Instance) []byte {
	for i := range instances {
		dst = instances[i].AppendBytes(dst)
	}
	return dst
}

func appendFloats(dst []byte, vals []float32) []byte {
	for _, f := range vals {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
	}
	return dst
}

// instanceLayout returns the vertex buffer layout for the glyph pipeline.
// Matches VertexInput in glyph.wgsl, advanced once per instance.
func instanceLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: InstanceSize,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},  // left_top
				{Format: gputypes.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1}, // right_bottom
				{Format: gputypes.VertexFormatFloat32x2, Offset: 20, ShaderLocation: 2}, // tex_left_top
				{Format: gputypes.VertexFormatFloat32x2, Offset: 28, ShaderLocation: 3}, // tex_right_bottom
				{Format: gputypes.VertexFormatFloat32x4, Offset: 36, ShaderLocation: 4}, // color
			},
		},
	}
}
