// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyph

import (
	"github.com/gogpu/glyph/atlas"
	"github.com/gogpu/wgpu/hal"
)

// Atlas is the GPU texture holding glyph bitmaps. The pipeline binds its
// view and forwards cache updates to it; packing is up to the caller.
type Atlas interface {
	// Update records a write of a size[0] x size[1] single-channel bitmap
	// at offset into the frame recorded by rec.
	Update(rec CommandRecorder, offset, size [2]uint16, data []byte) error

	// View returns the 2D float-sampleable view bound at binding 2.
	View() hal.TextureView

	// Destroy releases the texture. The pipeline defers it until no
	// submitted frame samples the atlas.
	Destroy()
}

// AtlasFactory creates an atlas of the given size. Updates should be staged
// through belt, the pipeline's staging belt, so they are recycled with the
// pipeline's frames.
type AtlasFactory func(belt *StagingBelt, width, height uint32) (Atlas, error)

// defaultAtlasFactory creates package atlas textures on device.
func defaultAtlasFactory(device hal.Device) AtlasFactory {
	return func(belt *StagingBelt, width, height uint32) (Atlas, error) {
		tex, err := atlas.New(device, belt, width, height)
		if err != nil {
			return nil, err
		}
		return tex, nil
	}
}
