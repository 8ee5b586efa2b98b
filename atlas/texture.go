// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import (
	"errors"
	"fmt"

	"github.com/gogpu/glyph/internal/gpu"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Atlas errors.
var (
	// ErrInvalidSize is returned when creating a texture with a zero dimension.
	ErrInvalidSize = errors.New("atlas: width and height must be positive")

	// ErrRegionOutOfBounds is returned when an update does not fit the texture.
	ErrRegionOutOfBounds = errors.New("atlas: region is outside texture bounds")

	// ErrDataSize is returned when the bitmap length does not match the region.
	ErrDataSize = errors.New("atlas: bitmap size does not match region")

	// ErrDestroyed is returned when updating a destroyed texture.
	ErrDestroyed = errors.New("atlas: texture has been destroyed")
)

// Format is the texel format of glyph atlases: one coverage byte per texel.
const Format = gputypes.TextureFormatR8Unorm

// Texture is a GPU-resident glyph bitmap atlas.
//
// Texture is not safe for concurrent use.
type Texture struct {
	device hal.Device
	belt   *gpu.StagingBelt

	tex  hal.Texture
	view hal.TextureView

	width  uint32
	height uint32
}

// New creates a width x height atlas texture and its sampling view.
// Updates are staged through belt.
func New(device hal.Device, belt *gpu.StagingBelt, width, height uint32) (*Texture, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "glyph_atlas",
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        Format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create atlas texture: %w", err)
	}

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "glyph_atlas_view",
		Format:        Format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("create atlas texture view: %w", err)
	}

	gpu.Logger().Debug("glyph atlas created", "width", width, "height", height)

	return &Texture{
		device: device,
		belt:   belt,
		tex:    tex,
		view:   view,
		width:  width,
		height: height,
	}, nil
}

// Update records a write of a size[0] x size[1] bitmap at offset into rec.
// Rows of data are tightly packed, one byte per texel. Empty regions are
// ignored.
func (t *Texture) Update(rec gpu.CommandRecorder, offset, size [2]uint16, data []byte) error {
	if t.tex == nil {
		return ErrDestroyed
	}
	w, h := uint32(size[0]), uint32(size[1])
	if w == 0 || h == 0 {
		return nil
	}
	x, y := uint32(offset[0]), uint32(offset[1])
	if x+w > t.width || y+h > t.height {
		return fmt.Errorf("%w: %dx%d at (%d,%d) in %dx%d",
			ErrRegionOutOfBounds, w, h, x, y, t.width, t.height)
	}
	if uint64(len(data)) != uint64(w)*uint64(h) {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrDataSize, len(data), w*h)
	}

	err := t.belt.WriteTexture(rec,
		&hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: x, Y: y, Z: 0},
			Aspect:   gputypes.TextureAspectAll,
		},
		data,
		hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  w,
			RowsPerImage: h,
		},
		hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("stage atlas update: %w", err)
	}
	return nil
}

// View returns the view bound as the atlas in the glyph uniform group.
func (t *Texture) View() hal.TextureView {
	return t.view
}

// Width returns the atlas width in texels.
func (t *Texture) Width() uint32 {
	return t.width
}

// Height returns the atlas height in texels.
func (t *Texture) Height() uint32 {
	return t.height
}

// Destroy releases the view and the texture. Safe to call more than once.
func (t *Texture) Destroy() {
	if t.view != nil {
		t.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		t.device.DestroyTexture(t.tex)
		t.tex = nil
	}
}
