// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import "github.com/gogpu/wgpu/hal"

// Uploader fills host-visible staging buffers.
//
// Writes land as soon as WriteBuffer returns, so they must only target
// staging space that no recorded or in-flight command reads. StagingBelt
// guarantees that for everything the glyph pipeline uploads. A hal.Queue
// satisfies the contract through QueueUploader; tests substitute a
// recording fake.
type Uploader interface {
	// WriteBuffer copies data into buffer starting at offset.
	WriteBuffer(buffer hal.Buffer, offset uint64, data []byte) error
}

// QueueUploader adapts a hal.Queue to Uploader.
func QueueUploader(q hal.Queue) Uploader {
	return queueUploader{queue: q}
}

type queueUploader struct {
	queue hal.Queue
}

func (u queueUploader) WriteBuffer(buffer hal.Buffer, offset uint64, data []byte) error {
	return u.queue.WriteBuffer(buffer, offset, data)
}
