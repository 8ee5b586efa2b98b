// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package brush

import (
	"errors"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/glyph"
)

// fakeRenderer records the calls a brush makes on a pipeline.
type fakeRenderer struct {
	updates   int
	texels    int
	resizes   [][2]uint32
	uploads   [][]glyph.Instance
	updateErr error
}

func (r *fakeRenderer) Upload(_ glyph.CommandRecorder, instances []glyph.Instance) error {
	r.uploads = append(r.uploads, append([]glyph.Instance(nil), instances...))
	return nil
}

func (r *fakeRenderer) UpdateCache(_ glyph.CommandRecorder, _, size [2]uint16, data []byte) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updates++
	r.texels += int(size[0]) * int(size[1])
	if len(data) != int(size[0])*int(size[1]) {
		return errors.New("bitmap size mismatch")
	}
	return nil
}

func (r *fakeRenderer) ResizeCache(width, height uint32) error {
	r.resizes = append(r.resizes, [2]uint32{width, height})
	return nil
}

func (r *fakeRenderer) SupportedInstances() int { return 0 }
func (r *fakeRenderer) CurrentInstances() int   { return 0 }
func (r *fakeRenderer) Finish(uint64)           {}
func (r *fakeRenderer) Recall(uint64)           {}
func (r *fakeRenderer) Destroy()                {}

func (r *fakeRenderer) lastUpload(t *testing.T) []glyph.Instance {
	t.Helper()
	if len(r.uploads) == 0 {
		t.Fatal("no upload recorded")
	}
	return r.uploads[len(r.uploads)-1]
}

func newTestBrush(t *testing.T, cfg Config) *Brush {
	t.Helper()
	f, err := ParseFont(goregular.TTF)
	if err != nil {
		t.Fatalf("ParseFont failed: %v", err)
	}
	b, err := New(f, cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return b
}

func white() [4]float32 { return [4]float32{1, 1, 1, 1} }

func TestParseFontInvalid(t *testing.T) {
	if _, err := ParseFont([]byte("not a font")); err == nil {
		t.Error("expected error for invalid font data")
	}
}

func TestNewNilFont(t *testing.T) {
	if _, err := New(nil, Config{}); !errors.Is(err, ErrNoFont) {
		t.Errorf("err = %v, want ErrNoFont", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := Config{}.withDefaults()
	if cfg.AtlasWidth != glyph.DefaultAtlasSize || cfg.AtlasHeight != glyph.DefaultAtlasSize {
		t.Errorf("atlas = %dx%d", cfg.AtlasWidth, cfg.AtlasHeight)
	}
	if cfg.MaxAtlasSize != 8192 || cfg.Padding != 1 {
		t.Errorf("MaxAtlasSize=%d Padding=%d, want 8192 and 1", cfg.MaxAtlasSize, cfg.Padding)
	}
}

func TestConfigClampsAtlasSize(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want Config
	}{
		{
			"within limit",
			Config{AtlasWidth: 1024, AtlasHeight: 512, MaxAtlasSize: 65535},
			Config{AtlasWidth: 1024, AtlasHeight: 512, MaxAtlasSize: 65535},
		},
		{
			"max size above limit",
			Config{AtlasWidth: 256, AtlasHeight: 256, MaxAtlasSize: 65536},
			Config{AtlasWidth: 256, AtlasHeight: 256, MaxAtlasSize: 65535},
		},
		{
			"atlas above limit",
			Config{AtlasWidth: 70000, AtlasHeight: 1 << 20, MaxAtlasSize: 1 << 31},
			Config{AtlasWidth: 65535, AtlasHeight: 65535, MaxAtlasSize: 65535},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.withDefaults()
			if got.AtlasWidth != tt.want.AtlasWidth || got.AtlasHeight != tt.want.AtlasHeight ||
				got.MaxAtlasSize != tt.want.MaxAtlasSize {
				t.Errorf("atlas %dx%d max %d, want %dx%d max %d",
					got.AtlasWidth, got.AtlasHeight, got.MaxAtlasSize,
					tt.want.AtlasWidth, tt.want.AtlasHeight, tt.want.MaxAtlasSize)
			}
		})
	}
}

func TestGrowStopsAtAtlasLimit(t *testing.T) {
	b := newTestBrush(t, Config{AtlasWidth: 40000, AtlasHeight: 40000, MaxAtlasSize: 100000})
	r := &fakeRenderer{}

	// A full atlas can grow once, to the 16-bit limit, and no further.
	if err := b.grow(r); err != nil {
		t.Fatalf("grow failed: %v", err)
	}
	if len(r.resizes) != 1 || r.resizes[0] != [2]uint32{65535, 65535} {
		t.Errorf("resizes = %v, want [[65535 65535]]", r.resizes)
	}
	if err := b.grow(r); !errors.Is(err, ErrGlyphTooLarge) {
		t.Errorf("err = %v, want ErrGlyphTooLarge", err)
	}
}

func TestProcess(t *testing.T) {
	b := newTestBrush(t, Config{})
	r := &fakeRenderer{}

	b.Queue(Section{
		ScreenPosition: [2]float32{30, 30},
		Text:           []Text{{Text: "Hello", Scale: 24, Color: white(), Z: 0.25}},
	})
	if err := b.Process(&passLog{}, r); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	// H, e, l, o: the repeated l is rasterized once.
	if r.updates != 4 {
		t.Errorf("atlas updates = %d, want 4", r.updates)
	}
	got := r.lastUpload(t)
	if len(got) != 5 {
		t.Fatalf("instances = %d, want 5", len(got))
	}

	prevLeft := float32(0)
	for i, in := range got {
		if in.LeftTop[2] != 0.25 {
			t.Errorf("instance %d depth = %v, want 0.25", i, in.LeftTop[2])
		}
		if in.Color != white() {
			t.Errorf("instance %d color = %v", i, in.Color)
		}
		if in.LeftTop[0] <= prevLeft {
			t.Errorf("instance %d left = %v, not right of previous %v", i, in.LeftTop[0], prevLeft)
		}
		prevLeft = in.LeftTop[0]
		if in.RightBottom[1] < 30 {
			t.Errorf("instance %d starts above the section: %v", i, in.RightBottom[1])
		}
		for _, uv := range [][2]float32{in.TexLeftTop, in.TexRightBottom} {
			if uv[0] < 0 || uv[0] > 1 || uv[1] < 0 || uv[1] > 1 {
				t.Errorf("instance %d texture coordinates %v outside atlas", i, uv)
			}
		}
	}
}

func TestProcessUsesCache(t *testing.T) {
	b := newTestBrush(t, Config{})
	r := &fakeRenderer{}

	for range 2 {
		b.Queue(Section{Text: []Text{{Text: "cache", Scale: 16, Color: white()}}})
		if err := b.Process(&passLog{}, r); err != nil {
			t.Fatalf("Process failed: %v", err)
		}
	}
	if r.updates != 4 {
		t.Errorf("atlas updates = %d, want 4 (c, a, h, e once)", r.updates)
	}
	if len(r.uploads) != 2 || len(r.uploads[1]) != 5 {
		t.Errorf("uploads = %d, second has %d instances", len(r.uploads), len(r.uploads[len(r.uploads)-1]))
	}
}

func TestProcessConsumesQueue(t *testing.T) {
	b := newTestBrush(t, Config{})
	r := &fakeRenderer{}

	b.Queue(Section{Text: []Text{{Text: "x", Scale: 16, Color: white()}}})
	if err := b.Process(&passLog{}, r); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if err := b.Process(&passLog{}, r); err != nil {
		t.Fatalf("second Process failed: %v", err)
	}
	if n := len(r.lastUpload(t)); n != 0 {
		t.Errorf("instances after empty queue = %d, want 0", n)
	}
}

func TestProcessSkipsWhitespace(t *testing.T) {
	b := newTestBrush(t, Config{})
	r := &fakeRenderer{}

	b.Queue(Section{Text: []Text{{Text: "a b", Scale: 16, Color: white()}}})
	if err := b.Process(&passLog{}, r); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if n := len(r.lastUpload(t)); n != 2 {
		t.Errorf("instances = %d, want 2", n)
	}
}

func TestProcessNewline(t *testing.T) {
	b := newTestBrush(t, Config{})
	r := &fakeRenderer{}

	b.Queue(Section{
		ScreenPosition: [2]float32{10, 10},
		Text:           []Text{{Text: "A\nA", Scale: 20, Color: white()}},
	})
	if err := b.Process(&passLog{}, r); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	got := r.lastUpload(t)
	if len(got) != 2 {
		t.Fatalf("instances = %d, want 2", len(got))
	}
	if got[0].LeftTop[0] != got[1].LeftTop[0] {
		t.Errorf("second line starts at x=%v, want %v", got[1].LeftTop[0], got[0].LeftTop[0])
	}
	if got[1].RightBottom[1] <= got[0].RightBottom[1] {
		t.Errorf("second line y=%v is not below first y=%v", got[1].RightBottom[1], got[0].RightBottom[1])
	}
}

func TestProcessClipsAndCulls(t *testing.T) {
	b := newTestBrush(t, Config{})
	r := &fakeRenderer{}

	text := "The quick brown fox jumps over the lazy dog"
	b.Queue(Section{
		ScreenPosition: [2]float32{40, 100},
		Bounds:         [2]float32{60, 40},
		Text:           []Text{{Text: text, Scale: 20, Color: white()}},
	})
	if err := b.Process(&passLog{}, r); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	got := r.lastUpload(t)
	if len(got) == 0 {
		t.Fatal("no glyph inside bounds")
	}
	if len(got) >= 35 {
		t.Errorf("instances = %d, want glyphs past the bounds culled", len(got))
	}
	for i, in := range got {
		if in.RightBottom[0] > 100 || in.LeftTop[0] < 40 {
			t.Errorf("instance %d x range [%v, %v] outside [40, 100]", i, in.LeftTop[0], in.RightBottom[0])
		}
	}
}

func TestProcessGrowsAtlas(t *testing.T) {
	b := newTestBrush(t, Config{AtlasWidth: 16, AtlasHeight: 16, MaxAtlasSize: 512})
	r := &fakeRenderer{}

	b.Queue(Section{Text: []Text{{Text: "abcdefghijklmnopqrstuvwxyz", Scale: 20, Color: white()}}})
	if err := b.Process(&passLog{}, r); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(r.resizes) == 0 {
		t.Fatal("atlas was not resized")
	}
	if r.resizes[0] != [2]uint32{32, 32} {
		t.Errorf("first resize = %v, want 32x32", r.resizes[0])
	}
	w, h := b.AtlasSize()
	if last := r.resizes[len(r.resizes)-1]; last != [2]uint32{w, h} {
		t.Errorf("AtlasSize = %dx%d, last resize %v", w, h, last)
	}
	if n := len(r.lastUpload(t)); n != 26 {
		t.Errorf("instances = %d, want 26", n)
	}
}

func TestProcessAtlasLimit(t *testing.T) {
	b := newTestBrush(t, Config{AtlasWidth: 16, AtlasHeight: 16, MaxAtlasSize: 16})
	r := &fakeRenderer{}

	b.Queue(Section{Text: []Text{{Text: "abcdefghij", Scale: 12, Color: white()}}})
	if err := b.Process(&passLog{}, r); !errors.Is(err, ErrGlyphTooLarge) {
		t.Errorf("err = %v, want ErrGlyphTooLarge", err)
	}
	if len(r.resizes) != 0 {
		t.Errorf("resizes = %v, want none", r.resizes)
	}
}

func TestProcessEvictsStaleGlyphs(t *testing.T) {
	b := newTestBrush(t, Config{AtlasWidth: 64, AtlasHeight: 64, MaxAtlasSize: 64})
	r := &fakeRenderer{}

	for _, s := range []string{"H", "O"} {
		b.Queue(Section{Text: []Text{{Text: s, Scale: 60, Color: white()}}})
		if err := b.Process(&passLog{}, r); err != nil {
			t.Fatalf("Process(%q) failed: %v", s, err)
		}
		if n := len(r.lastUpload(t)); n != 1 {
			t.Errorf("Process(%q) instances = %d, want 1", s, n)
		}
	}
	if len(r.resizes) != 0 {
		t.Errorf("resizes = %v, want none", r.resizes)
	}
	if r.updates != 2 {
		t.Errorf("atlas updates = %d, want 2", r.updates)
	}
}

func TestProcessUpdateError(t *testing.T) {
	b := newTestBrush(t, Config{})
	errUpdate := errors.New("update failed")
	r := &fakeRenderer{updateErr: errUpdate}

	b.Queue(Section{Text: []Text{{Text: "x", Scale: 16, Color: white()}}})
	if err := b.Process(&passLog{}, r); !errors.Is(err, errUpdate) {
		t.Errorf("err = %v, want wrapped update error", err)
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{""}},
		{"a", []string{"a"}},
		{"a\nb", []string{"a", "b"}},
		{"a\r\nb\n", []string{"a", "b", ""}},
	}
	for _, tt := range tests {
		got := splitLines([]rune(tt.in))
		if len(got) != len(tt.want) {
			t.Errorf("splitLines(%q) = %d lines, want %d", tt.in, len(got), len(tt.want))
			continue
		}
		for i := range got {
			if string(got[i]) != tt.want[i] {
				t.Errorf("splitLines(%q)[%d] = %q, want %q", tt.in, i, string(got[i]), tt.want[i])
			}
		}
	}
}
