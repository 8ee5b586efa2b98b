// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyph

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// halProvider is implemented by device providers that expose their
// hal-level device and queue.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// NewFromProvider creates a glyph pipeline on the device shared by a host
// application. When cfg.Format is unset the provider's surface format is
// used. The provider keeps ownership of the device and queue.
func NewFromProvider(provider gpucontext.DeviceProvider, cfg Config) (*Pipeline, error) {
	if provider == nil {
		return nil, ErrNilDevice
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrProviderNotHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrProviderNotHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrProviderNotHAL)
	}

	info := provider.AdapterInfo()
	Logger().Debug("glyph provider adapter", "name", info.Name, "type", info.Type)

	if cfg.Format == gputypes.TextureFormatUndefined {
		cfg.Format = provider.SurfaceFormat()
	}
	return New(device, QueueUploader(queue), cfg)
}
