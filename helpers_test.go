// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyph

import (
	"strings"
	"testing"

	"github.com/gogpu/glyph/atlas"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// countingDevice wraps a hal.Device and tracks buffer and bind group
// lifecycles.
type countingDevice struct {
	hal.Device

	bufferSizes      map[string][]uint64 // label suffix -> sizes created
	buffersDestroyed int
	destroyed        map[hal.Buffer]int
	bindGroups       int
	bindGroupsFreed  map[hal.BindGroup]int
}

func newCountingDevice(d hal.Device) *countingDevice {
	return &countingDevice{
		Device:          d,
		bufferSizes:     make(map[string][]uint64),
		destroyed:       make(map[hal.Buffer]int),
		bindGroupsFreed: make(map[hal.BindGroup]int),
	}
}

func (d *countingDevice) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	key := desc.Label
	if i := strings.LastIndexByte(key, '_'); i >= 0 {
		key = key[i+1:]
	}
	d.bufferSizes[key] = append(d.bufferSizes[key], desc.Size)
	return d.Device.CreateBuffer(desc)
}

func (d *countingDevice) DestroyBuffer(b hal.Buffer) {
	d.buffersDestroyed++
	d.destroyed[b]++
	d.Device.DestroyBuffer(b)
}

// trackedBindGroup gives every bind group its own identity; the noop
// device returns zero-size objects that may share an address.
type trackedBindGroup struct {
	hal.BindGroup
	id int
}

func (d *countingDevice) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	g, err := d.Device.CreateBindGroup(desc)
	if err != nil {
		return nil, err
	}
	d.bindGroups++
	return &trackedBindGroup{BindGroup: g, id: d.bindGroups}, nil
}

func (d *countingDevice) DestroyBindGroup(g hal.BindGroup) {
	d.bindGroupsFreed[g]++
	if tg, ok := g.(*trackedBindGroup); ok {
		g = tg.BindGroup
	}
	d.Device.DestroyBindGroup(g)
}

// freedBindGroups returns the number of DestroyBindGroup calls.
func (d *countingDevice) freedBindGroups() int {
	n := 0
	for _, c := range d.bindGroupsFreed {
		n += c
	}
	return n
}

type bufferWrite struct {
	buffer hal.Buffer
	offset uint64
	data   []byte
}

// recordingUploader records writes and keeps the resulting host-side
// contents of every buffer it wrote. A non-nil fail is returned instead.
type recordingUploader struct {
	buffers  []bufferWrite
	contents map[hal.Buffer][]byte
	fail     error
}

func (u *recordingUploader) WriteBuffer(buffer hal.Buffer, offset uint64, data []byte) error {
	if u.fail != nil {
		return u.fail
	}
	u.buffers = append(u.buffers, bufferWrite{buffer: buffer, offset: offset, data: append([]byte(nil), data...)})
	if u.contents == nil {
		u.contents = make(map[hal.Buffer][]byte)
	}
	u.contents[buffer] = writeAt(u.contents[buffer], offset, data)
	return nil
}

// writesTo counts direct writes to buffer.
func (u *recordingUploader) writesTo(buffer hal.Buffer) int {
	n := 0
	for _, w := range u.buffers {
		if w.buffer == buffer {
			n++
		}
	}
	return n
}

// writeAt copies data into dst at offset, growing dst as needed.
func writeAt(dst []byte, offset uint64, data []byte) []byte {
	if end := int(offset) + len(data); end > len(dst) {
		dst = append(dst, make([]byte, end-len(dst))...)
	}
	copy(dst[offset:], data)
	return dst
}

type scissor struct{ x, y, w, h uint32 }

type drawCall struct{ vertices, instances, firstVertex, firstInstance uint32 }

// fakePass records the commands of one render pass.
type fakePass struct {
	desc         hal.RenderPassDescriptor
	pipeline     hal.RenderPipeline
	bindGroups   map[uint32]hal.BindGroup
	vertexBuffer hal.Buffer
	scissors     []scissor
	draws        []drawCall
	ended        bool
}

func (p *fakePass) SetPipeline(pipeline hal.RenderPipeline) { p.pipeline = pipeline }

func (p *fakePass) SetBindGroup(index uint32, group hal.BindGroup) {
	p.bindGroups[index] = group
}

func (p *fakePass) SetVertexBuffer(slot uint32, buffer hal.Buffer) {
	if slot == 0 {
		p.vertexBuffer = buffer
	}
}

func (p *fakePass) SetScissorRect(x, y, width, height uint32) {
	p.scissors = append(p.scissors, scissor{x, y, width, height})
}

func (p *fakePass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.draws = append(p.draws, drawCall{vertexCount, instanceCount, firstVertex, firstInstance})
}

func (p *fakePass) End() { p.ended = true }

type bufferCopy struct {
	src, dst hal.Buffer
	region   hal.BufferCopy
}

// command is one recorded copy or pass.
type command struct {
	copy *bufferCopy
	pass *fakePass
}

// fakeRecorder keeps recorded copies and passes in order for inspection.
type fakeRecorder struct {
	commands      []command
	passes        []*fakePass
	barriers      int
	textureCopies []hal.BufferTextureCopy
}

func (r *fakeRecorder) TransitionBuffers(barriers []hal.BufferBarrier) {
	r.barriers += len(barriers)
}

func (r *fakeRecorder) TransitionTextures(barriers []hal.TextureBarrier) {
	r.barriers += len(barriers)
}

func (r *fakeRecorder) CopyBufferToBuffer(src, dst hal.Buffer, regions []hal.BufferCopy) {
	for _, region := range regions {
		r.commands = append(r.commands, command{copy: &bufferCopy{src, dst, region}})
	}
}

func (r *fakeRecorder) CopyBufferToTexture(_ hal.Buffer, _ hal.Texture, regions []hal.BufferTextureCopy) {
	r.textureCopies = append(r.textureCopies, regions...)
}

func (r *fakeRecorder) BeginRenderPass(desc *hal.RenderPassDescriptor) RenderPass {
	p := &fakePass{desc: *desc, bindGroups: make(map[uint32]hal.BindGroup)}
	r.passes = append(r.passes, p)
	r.commands = append(r.commands, command{pass: p})
	return p
}

func (r *fakeRecorder) last(t *testing.T) *fakePass {
	t.Helper()
	if len(r.passes) == 0 {
		t.Fatal("no render pass recorded")
	}
	return r.passes[len(r.passes)-1]
}

// copiesTo returns the recorded copies into dst.
func (r *fakeRecorder) copiesTo(dst hal.Buffer) []bufferCopy {
	var out []bufferCopy
	for _, c := range r.commands {
		if c.copy != nil && c.copy.dst == dst {
			out = append(out, *c.copy)
		}
	}
	return out
}

// passView is what a recorded pass reads when the GPU executes it.
type passView struct {
	instances []byte
	transform []byte
}

// replay executes the recorded copies in order on top of the uploader's
// buffer contents and returns, for each pass, the instance bytes its draw
// reads and the contents of transform at that point.
func (r *fakeRecorder) replay(up *recordingUploader, transform hal.Buffer) []passView {
	mem := make(map[hal.Buffer][]byte, len(up.contents))
	for b, data := range up.contents {
		mem[b] = append([]byte(nil), data...)
	}

	var views []passView
	for _, c := range r.commands {
		if c.copy != nil {
			src := mem[c.copy.src]
			start, end := c.copy.region.SrcOffset, c.copy.region.SrcOffset+c.copy.region.Size
			mem[c.copy.dst] = writeAt(mem[c.copy.dst], c.copy.region.DstOffset, src[start:end])
			continue
		}
		var n uint64
		for _, d := range c.pass.draws {
			n += uint64(d.instances) * InstanceSize
		}
		vb := mem[c.pass.vertexBuffer]
		if uint64(len(vb)) < n {
			vb = append(vb, make([]byte, n-uint64(len(vb)))...)
		}
		views = append(views, passView{
			instances: append([]byte(nil), vb[:n]...),
			transform: append([]byte(nil), mem[transform]...),
		})
	}
	return views
}

type atlasUpdate struct {
	offset, size [2]uint16
	n            int
}

// recordingAtlas wraps a real atlas texture and records calls.
type recordingAtlas struct {
	*atlas.Texture
	updates   []atlasUpdate
	destroyed int
}

func (a *recordingAtlas) Update(rec CommandRecorder, offset, size [2]uint16, data []byte) error {
	a.updates = append(a.updates, atlasUpdate{offset, size, len(data)})
	return a.Texture.Update(rec, offset, size, data)
}

func (a *recordingAtlas) Destroy() {
	a.destroyed++
	a.Texture.Destroy()
}

// atlasRecorder is an AtlasFactory that keeps every atlas it creates.
type atlasRecorder struct {
	device  hal.Device
	created []*recordingAtlas
	sizes   [][2]uint32
}

func (r *atlasRecorder) New(belt *StagingBelt, width, height uint32) (Atlas, error) {
	tex, err := atlas.New(r.device, belt, width, height)
	if err != nil {
		return nil, err
	}
	a := &recordingAtlas{Texture: tex}
	r.created = append(r.created, a)
	r.sizes = append(r.sizes, [2]uint32{width, height})
	return a, nil
}
