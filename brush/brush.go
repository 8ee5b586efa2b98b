// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package brush

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/glyph"
	"github.com/gogpu/glyph/atlas"
	"github.com/gogpu/wgpu/hal"
)

var (
	// ErrNoFont is returned when creating a brush without a font.
	ErrNoFont = errors.New("brush: font is nil")

	// ErrGlyphTooLarge is returned when the glyphs of one frame do not fit
	// an atlas of the maximum size.
	ErrGlyphTooLarge = errors.New("brush: glyphs do not fit the maximum atlas size")
)

// errAtlasFull reports that the packer ran out of space.
var errAtlasFull = errors.New("brush: atlas full")

// maxAtlasDimension is the largest atlas side: cache update offsets and
// sizes are 16-bit.
const maxAtlasDimension = math.MaxUint16

// Config holds brush configuration.
type Config struct {
	// AtlasWidth and AtlasHeight must match the atlas of the pipeline the
	// brush draws with.
	// Default: glyph.DefaultAtlasSize
	AtlasWidth  uint32
	AtlasHeight uint32

	// MaxAtlasSize bounds atlas growth in each dimension. Atlas sizes are
	// clamped to 65535.
	// Default: 8192
	MaxAtlasSize uint32

	// Padding is the number of empty texels kept between glyph bitmaps.
	// Default: 1
	Padding int
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		AtlasWidth:   glyph.DefaultAtlasSize,
		AtlasHeight:  glyph.DefaultAtlasSize,
		MaxAtlasSize: 8192,
		Padding:      1,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.AtlasWidth == 0 {
		c.AtlasWidth = d.AtlasWidth
	}
	if c.AtlasHeight == 0 {
		c.AtlasHeight = d.AtlasHeight
	}
	if c.MaxAtlasSize == 0 {
		c.MaxAtlasSize = d.MaxAtlasSize
	}
	c.AtlasWidth = min(c.AtlasWidth, maxAtlasDimension)
	c.AtlasHeight = min(c.AtlasHeight, maxAtlasDimension)
	c.MaxAtlasSize = min(c.MaxAtlasSize, maxAtlasDimension)
	if c.Padding <= 0 {
		c.Padding = d.Padding
	}
	return c
}

// glyphKey identifies one rasterized glyph bitmap.
type glyphKey struct {
	gid  sfnt.GlyphIndex
	ppem fixed.Int26_6
}

// cachedGlyph is the atlas placement of a rasterized glyph.
type cachedGlyph struct {
	region atlas.Region
	origin [2]int // bitmap top-left relative to the pen on the baseline
	empty  bool   // no ink, nothing in the atlas
}

// positioned is a shaped glyph with its pen position in pixels.
type positioned struct {
	key    glyphKey
	penX   float32
	penY   float32
	bounds glyph.Rect
	extra  glyph.Extra
}

// Brush turns queued sections into glyph instances.
type Brush struct {
	font   *Font
	cfg    Config
	shaper shaping.HarfbuzzShaper
	buf    sfnt.Buffer

	packer       *atlas.Packer
	atlasWidth   uint32
	atlasHeight  uint32
	cache        map[glyphKey]cachedGlyph
	placedInCall int

	queue     []Section
	glyphs    []positioned
	instances []glyph.Instance
}

// New creates a brush drawing with f.
func New(f *Font, cfg Config) (*Brush, error) {
	if f == nil {
		return nil, ErrNoFont
	}
	cfg = cfg.withDefaults()
	return &Brush{
		font:        f,
		cfg:         cfg,
		packer:      atlas.NewPacker(int(cfg.AtlasWidth), int(cfg.AtlasHeight), cfg.Padding),
		atlasWidth:  cfg.AtlasWidth,
		atlasHeight: cfg.AtlasHeight,
		cache:       make(map[glyphKey]cachedGlyph),
	}, nil
}

// Queue adds a section to the next Process or DrawQueued call.
func (b *Brush) Queue(s Section) {
	b.queue = append(b.queue, s)
}

// AtlasSize returns the atlas size the brush currently packs into.
func (b *Brush) AtlasSize() (width, height uint32) {
	return b.atlasWidth, b.atlasHeight
}

// Process lays out the queued sections, then records the atlas updates for
// missing glyphs and the upload of their instances on rec. The queue is
// emptied.
func (b *Brush) Process(rec glyph.CommandRecorder, r glyph.Renderer) error {
	b.glyphs = b.layout(b.glyphs[:0], b.queue)
	clear(b.queue)
	b.queue = b.queue[:0]

	if err := b.cacheFrame(rec, r); err != nil {
		return err
	}

	b.instances = b.instances[:0]
	for _, g := range b.glyphs {
		v, ok := b.vertex(g)
		if !ok {
			continue
		}
		b.instances = append(b.instances, glyph.InstanceFromVertex(v))
	}
	return r.Upload(rec, b.instances)
}

// DrawQueued processes the queue and draws it in a width x height pixel
// space.
func (b *Brush) DrawQueued(p *glyph.Pipeline, rec glyph.CommandRecorder, target hal.TextureView, width, height uint32) error {
	return b.DrawQueuedWithTransform(p, rec, target, glyph.OrthographicProjection(width, height))
}

// DrawQueuedWithTransform processes the queue and draws it with transform.
func (b *Brush) DrawQueuedWithTransform(p *glyph.Pipeline, rec glyph.CommandRecorder, target hal.TextureView, transform glyph.Transform) error {
	if err := b.Process(rec, p); err != nil {
		return err
	}
	return p.Draw(rec, target, transform, nil)
}

// DrawQueuedWithTransformAndScissoring processes the queue and draws it
// with transform, restricted to region.
func (b *Brush) DrawQueuedWithTransformAndScissoring(p *glyph.Pipeline, rec glyph.CommandRecorder, target hal.TextureView, transform glyph.Transform, region glyph.Region) error {
	if err := b.Process(rec, p); err != nil {
		return err
	}
	return p.Draw(rec, target, transform, &region)
}

// layout shapes sections into positioned glyphs appended to dst.
func (b *Brush) layout(dst []positioned, sections []Section) []positioned {
	for _, s := range sections {
		bounds := sectionBounds(s)
		startX := s.ScreenPosition[0]
		penX := startX
		lineTop := s.ScreenPosition[1]
		var lineAscent, lineHeight float32

		for _, run := range s.Text {
			if run.Scale <= 0 || run.Text == "" {
				continue
			}
			ppem := floatToFixed(run.Scale)
			ascent, height := b.font.lineMetrics(&b.buf, ppem)
			extra := glyph.Extra{Depth: run.Z, Color: run.Color}

			lines := splitLines([]rune(run.Text))
			for i, line := range lines {
				if i > 0 {
					lineTop += lineHeight
					penX = startX
					lineAscent, lineHeight = 0, 0
				}
				lineAscent = max(lineAscent, ascent)
				lineHeight = max(lineHeight, height)
				if len(line) == 0 {
					continue
				}

				out := b.shape(line, ppem)
				for _, g := range out.Glyphs {
					dst = append(dst, positioned{
						key:    glyphKey{gid: sfnt.GlyphIndex(g.GlyphID), ppem: ppem},
						penX:   penX + fixedToFloat(g.XOffset),
						penY:   lineTop + lineAscent - fixedToFloat(g.YOffset),
						bounds: bounds,
						extra:  extra,
					})
					penX += fixedToFloat(g.Advance)
				}
			}
		}
	}
	return dst
}

func (b *Brush) shape(text []rune, ppem fixed.Int26_6) shaping.Output {
	return b.shaper.Shape(shaping.Input{
		Text:      text,
		RunStart:  0,
		RunEnd:    len(text),
		Direction: di.DirectionLTR,
		Face:      b.font.face,
		Size:      ppem,
		Script:    detectScript(text),
		Language:  language.NewLanguage("en"),
	})
}

// cacheFrame makes sure every glyph of the frame has an atlas placement.
// When the atlas runs out of space, glyphs cached by earlier frames are
// evicted first; after that the atlas grows.
func (b *Brush) cacheFrame(rec glyph.CommandRecorder, r glyph.Renderer) error {
	b.placedInCall = 0
	evicted := false
	for {
		err := b.cacheGlyphs(rec, r)
		if err == nil {
			return nil
		}
		if !errors.Is(err, errAtlasFull) {
			return err
		}

		if !evicted && len(b.cache) > b.placedInCall {
			glyph.Logger().Debug("glyph cache evicted", "cached", len(b.cache))
			b.resetCache()
			evicted = true
			continue
		}

		if err := b.grow(r); err != nil {
			return err
		}
		evicted = true
	}
}

func (b *Brush) cacheGlyphs(rec glyph.CommandRecorder, r glyph.Renderer) error {
	for _, g := range b.glyphs {
		if _, ok := b.cache[g.key]; ok {
			continue
		}

		img, origin, err := b.font.rasterize(&b.buf, g.key.gid, g.key.ppem)
		if err != nil {
			glyph.Logger().Warn("glyph rasterization skipped", "gid", g.key.gid, "err", err)
			b.cache[g.key] = cachedGlyph{empty: true}
			continue
		}
		if img == nil {
			b.cache[g.key] = cachedGlyph{empty: true}
			continue
		}

		w, h := img.Rect.Dx(), img.Rect.Dy()
		maxSize := int(b.cfg.MaxAtlasSize)
		if w+b.cfg.Padding > maxSize || h+b.cfg.Padding > maxSize {
			glyph.Logger().Warn("glyph skipped", "gid", g.key.gid, "width", w, "height", h,
				"err", ErrGlyphTooLarge)
			b.cache[g.key] = cachedGlyph{empty: true}
			continue
		}

		region, ok := b.packer.Allocate(w, h)
		if !ok {
			return errAtlasFull
		}
		err = r.UpdateCache(rec,
			[2]uint16{uint16(region.X), uint16(region.Y)},
			[2]uint16{uint16(w), uint16(h)},
			img.Pix,
		)
		if err != nil {
			return fmt.Errorf("brush: upload glyph %d: %w", g.key.gid, err)
		}
		b.cache[g.key] = cachedGlyph{region: region, origin: [2]int{origin.X, origin.Y}}
		b.placedInCall++
	}
	return nil
}

// grow doubles the atlas, bounded by MaxAtlasSize, and forgets every
// cached placement.
func (b *Brush) grow(r glyph.Renderer) error {
	w := min(b.atlasWidth*2, b.cfg.MaxAtlasSize)
	h := min(b.atlasHeight*2, b.cfg.MaxAtlasSize)
	if w <= b.atlasWidth && h <= b.atlasHeight {
		return fmt.Errorf("%w: %dx%d", ErrGlyphTooLarge, b.atlasWidth, b.atlasHeight)
	}
	if err := r.ResizeCache(w, h); err != nil {
		return fmt.Errorf("brush: resize atlas: %w", err)
	}
	glyph.Logger().Debug("glyph cache rebuilt", "width", w, "height", h)

	b.atlasWidth, b.atlasHeight = w, h
	b.packer.Resize(int(w), int(h))
	clear(b.cache)
	b.placedInCall = 0
	return nil
}

func (b *Brush) resetCache() {
	b.packer.Reset()
	clear(b.cache)
	b.placedInCall = 0
}

// vertex builds the glyph vertex of g. It reports false for glyphs without
// ink and glyphs entirely outside their section bounds.
func (b *Brush) vertex(g positioned) (glyph.GlyphVertex, bool) {
	c, ok := b.cache[g.key]
	if !ok || c.empty {
		return glyph.GlyphVertex{}, false
	}

	x := float32(math.Round(float64(g.penX))) + float32(c.origin[0])
	y := float32(math.Round(float64(g.penY))) + float32(c.origin[1])
	w, h := float32(c.region.Width), float32(c.region.Height)
	pixel := glyph.R(x, y, x+w, y+h)
	if !pixel.Intersects(g.bounds) {
		return glyph.GlyphVertex{}, false
	}

	aw, ah := float32(b.atlasWidth), float32(b.atlasHeight)
	u0, v0 := float32(c.region.X)/aw, float32(c.region.Y)/ah
	return glyph.GlyphVertex{
		TexCoords:   glyph.R(u0, v0, u0+w/aw, v0+h/ah),
		PixelCoords: pixel,
		Bounds:      g.bounds,
		Extra:       g.extra,
	}, true
}

func sectionBounds(s Section) glyph.Rect {
	inf := float32(math.Inf(1))
	bounds := glyph.R(s.ScreenPosition[0], s.ScreenPosition[1], inf, inf)
	if s.Bounds[0] > 0 {
		bounds.Max.X = s.ScreenPosition[0] + s.Bounds[0]
	}
	if s.Bounds[1] > 0 {
		bounds.Max.Y = s.ScreenPosition[1] + s.Bounds[1]
	}
	return bounds
}

// splitLines splits text at '\n', dropping a trailing '\r' from each line.
func splitLines(text []rune) [][]rune {
	var lines [][]rune
	start := 0
	for i, r := range text {
		if r == '\n' {
			lines = append(lines, trimCR(text[start:i]))
			start = i + 1
		}
	}
	return append(lines, trimCR(text[start:]))
}

func trimCR(line []rune) []rune {
	if n := len(line); n > 0 && line[n-1] == '\r' {
		return line[:n-1]
	}
	return line
}

func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}
