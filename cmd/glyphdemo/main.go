// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command glyphdemo renders two text sections offscreen, the second one
// clipped by a scissor region, and reports what was recorded.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/glyph"
	"github.com/gogpu/glyph/brush"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

func main() {
	var (
		width   = flag.Uint("width", 1024, "target width")
		height  = flag.Uint("height", 768, "target height")
		backend = flag.String("backend", "noop", "hal backend: noop or vulkan")
		text    = flag.String("text", "Hello glyph!", "text to draw")
		nearest = flag.Bool("nearest", false, "sample the atlas with nearest filtering")
		debug   = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	glyph.SetLogger(logger)

	if err := run(*backend, uint32(*width), uint32(*height), *text, *nearest); err != nil {
		logger.Error("glyphdemo failed", "err", err)
		os.Exit(1)
	}
}

// gpuDevice is an opened device and the instance it came from.
type gpuDevice struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	name     string
}

func (d *gpuDevice) destroy() {
	d.device.Destroy()
	d.instance.Destroy()
}

func openDevice(backend string) (*gpuDevice, error) {
	var (
		instance hal.Instance
		err      error
	)
	switch backend {
	case "noop":
		api := noop.API{}
		instance, err = api.CreateInstance(nil)
	case "vulkan":
		b, ok := hal.GetBackend(gputypes.BackendVulkan)
		if !ok {
			return nil, errors.New("vulkan backend not available")
		}
		instance, err = b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, errors.New("no GPU adapters found")
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}
	return &gpuDevice{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		name:     selected.Info.Name,
	}, nil
}

func run(backend string, width, height uint32, text string, nearest bool) error {
	gd, err := openDevice(backend)
	if err != nil {
		return err
	}
	defer gd.destroy()
	glyph.Logger().Info("device opened", "backend", backend, "adapter", gd.name)

	const format = gputypes.TextureFormatRGBA8Unorm
	target, err := gd.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "glyphdemo_target",
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create target: %w", err)
	}
	defer gd.device.DestroyTexture(target)

	view, err := gd.device.CreateTextureView(target, &hal.TextureViewDescriptor{
		Label:         "glyphdemo_target_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return fmt.Errorf("create target view: %w", err)
	}
	defer gd.device.DestroyTextureView(view)

	cfg := glyph.DefaultConfig()
	cfg.Format = format
	if nearest {
		cfg.Filter = glyph.FilterNearest
	}
	pipeline, err := glyph.New(gd.device, glyph.QueueUploader(gd.queue), cfg)
	if err != nil {
		return err
	}
	defer pipeline.Destroy()

	f, err := brush.ParseFont(goregular.TTF)
	if err != nil {
		return err
	}
	b, err := brush.New(f, brush.DefaultConfig())
	if err != nil {
		return err
	}

	encoder, err := gd.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "glyphdemo_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("glyphdemo"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	clearPass := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "glyphdemo_clear",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0.4, G: 0.4, B: 0.4, A: 1},
		}},
	})
	clearPass.End()

	rec := glyph.EncoderRecorder(encoder)

	b.Queue(brush.Section{
		ScreenPosition: [2]float32{30, 30},
		Bounds:         [2]float32{float32(width), float32(height)},
		Text:           []brush.Text{{Text: text, Scale: 40, Color: [4]float32{0, 0, 0, 1}}},
	})
	if err := b.DrawQueued(pipeline, rec, view, width, height); err != nil {
		return fmt.Errorf("draw first section: %w", err)
	}
	first := pipeline.CurrentInstances()

	b.Queue(brush.Section{
		ScreenPosition: [2]float32{30, 90},
		Bounds:         [2]float32{float32(width), float32(height)},
		Text:           []brush.Text{{Text: text, Scale: 40, Color: [4]float32{1, 1, 1, 1}}},
	})
	err = b.DrawQueuedWithTransformAndScissoring(pipeline, rec, view,
		glyph.OrthographicProjection(width, height),
		glyph.Region{X: 40, Y: 105, Width: 200, Height: 15})
	if err != nil {
		return fmt.Errorf("draw clipped section: %w", err)
	}
	second := pipeline.CurrentInstances()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer gd.device.FreeCommandBuffer(cmdBuf)

	submission, err := gd.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	pipeline.Finish(submission)
	if err := waitCompleted(gd.queue, submission, 5*time.Second); err != nil {
		return err
	}
	pipeline.Recall(gd.queue.PollCompleted())

	atlasW, atlasH := b.AtlasSize()
	glyph.Logger().Info("frame rendered",
		"width", width, "height", height,
		"first_section_glyphs", first,
		"clipped_section_glyphs", second,
		"instance_capacity", pipeline.SupportedInstances(),
		"atlas", fmt.Sprintf("%dx%d", atlasW, atlasH))
	return nil
}

// waitCompleted polls queue until submission has completed.
func waitCompleted(queue hal.Queue, submission uint64, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for queue.PollCompleted() < submission {
		if time.Now().After(deadline) {
			return fmt.Errorf("wait for submission %d: timed out", submission)
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}
