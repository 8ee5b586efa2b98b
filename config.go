// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyph

import (
	"github.com/gogpu/glyph/internal/gpu"
	"github.com/gogpu/gputypes"
)

// Defaults applied to zero Config fields.
const (
	// DefaultAtlasSize is the initial width and height of the glyph atlas.
	DefaultAtlasSize = 256

	// DefaultInitialInstances is the instance capacity allocated up front.
	DefaultInitialInstances = 50_000

	// DefaultFormat is the color target format.
	DefaultFormat = gputypes.TextureFormatBGRA8Unorm
)

// FilterMode selects how the atlas is sampled.
type FilterMode uint8

const (
	// FilterLinear interpolates between texels. Suited to scaled or
	// subpixel-positioned text.
	FilterLinear FilterMode = iota

	// FilterNearest picks the closest texel. Suited to pixel-aligned text.
	FilterNearest
)

// String returns the filter mode name.
func (m FilterMode) String() string {
	switch m {
	case FilterLinear:
		return "Linear"
	case FilterNearest:
		return "Nearest"
	default:
		return "Unknown"
	}
}

func (m FilterMode) filterMode() gputypes.FilterMode {
	if m == FilterNearest {
		return gputypes.FilterModeNearest
	}
	return gputypes.FilterModeLinear
}

// Config holds configuration for a glyph pipeline.
// Zero fields take the documented defaults.
type Config struct {
	// Label prefixes the labels of every GPU object the pipeline creates.
	// Default: "glyph"
	Label string

	// Filter is used for magnification, minification and mip selection.
	// Default: FilterLinear
	Filter FilterMode

	// Multisample is the multisample state of the render pipeline.
	// Default: Count 1, Mask 0xFFFFFFFF
	Multisample gputypes.MultisampleState

	// Format is the format of the color target drawn into.
	// Default: BGRA8Unorm
	Format gputypes.TextureFormat

	// AtlasWidth and AtlasHeight size the initial glyph atlas.
	// Default: 256x256
	AtlasWidth  uint32
	AtlasHeight uint32

	// InitialInstances is the initial instance buffer capacity.
	// Default: 50000
	InitialInstances int

	// StagingChunkSize is the size of each reusable staging chunk uploads
	// are copied through. Larger uploads get a dedicated staging buffer.
	// Default: 256 KiB
	StagingChunkSize uint64

	// ShaderSPIRV compiles the WGSL shader to SPIR-V with naga and hands
	// the device SPIR-V instead of WGSL.
	ShaderSPIRV bool

	// NewAtlas creates the glyph atlas. Default: atlas.New on the
	// pipeline's device and staging belt.
	NewAtlas AtlasFactory
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		Label:            "glyph",
		Filter:           FilterLinear,
		Multisample:      gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
		Format:           DefaultFormat,
		AtlasWidth:       DefaultAtlasSize,
		AtlasHeight:      DefaultAtlasSize,
		InitialInstances: DefaultInitialInstances,
		StagingChunkSize: gpu.DefaultStagingChunkSize,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Label == "" {
		c.Label = d.Label
	}
	if c.Multisample.Count == 0 {
		c.Multisample.Count = d.Multisample.Count
	}
	if c.Multisample.Mask == 0 {
		c.Multisample.Mask = d.Multisample.Mask
	}
	if c.Format == gputypes.TextureFormatUndefined {
		c.Format = d.Format
	}
	if c.AtlasWidth == 0 {
		c.AtlasWidth = d.AtlasWidth
	}
	if c.AtlasHeight == 0 {
		c.AtlasHeight = d.AtlasHeight
	}
	if c.InitialInstances <= 0 {
		c.InitialInstances = d.InitialInstances
	}
	if c.StagingChunkSize == 0 {
		c.StagingChunkSize = d.StagingChunkSize
	}
	return c
}
