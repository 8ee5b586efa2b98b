// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package atlas provides the default glyph atlas used by the glyph pipeline.
//
// A Texture is a single-channel (R8Unorm) GPU texture holding glyph coverage
// bitmaps. The pipeline binds its view and forwards region updates to it;
// where glyphs go inside the texture is decided by the caller, typically with
// a Packer. Updates are recorded as copies through the staging belt the
// pipeline hands to its atlas factory.
//
//	tex, err := atlas.New(device, belt, 1024, 1024)
//	if err != nil {
//	    return err
//	}
//	defer tex.Destroy()
//
//	packer := atlas.NewPacker(1024, 1024, 1)
//	r, ok := packer.Allocate(12, 16)
//	if ok {
//	    err = tex.Update(rec, [2]uint16{uint16(r.X), uint16(r.Y)}, [2]uint16{12, 16}, bitmap)
//	}
package atlas
