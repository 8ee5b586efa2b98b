// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyph

import "errors"

var (
	// ErrNilDevice is returned when a pipeline is built without a device.
	ErrNilDevice = errors.New("glyph: device is nil")

	// ErrNilUploader is returned when a pipeline is built without an uploader.
	ErrNilUploader = errors.New("glyph: uploader is nil")

	// ErrInvalidAtlasSize is returned for an atlas with a zero dimension.
	ErrInvalidAtlasSize = errors.New("glyph: atlas width and height must be positive")

	// ErrPipelineDestroyed is returned when using a pipeline after Destroy.
	ErrPipelineDestroyed = errors.New("glyph: pipeline has been destroyed")

	// ErrProviderNotHAL is returned when a device provider does not expose
	// hal-level device and queue handles.
	ErrProviderNotHAL = errors.New("glyph: device provider does not expose HAL device and queue")
)
