// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import (
	"fmt"
	"sync"
)

// Region is a rectangle of texels inside an atlas.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// IsValid returns true if the region has valid dimensions.
func (r Region) IsValid() bool {
	return r.Width > 0 && r.Height > 0
}

// String returns a string representation of the region.
func (r Region) String() string {
	return fmt.Sprintf("Region(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// shelf is one horizontal row of the shelf-packing algorithm.
type shelf struct {
	y      int // Top Y coordinate of this shelf
	height int // Height of this shelf (tallest item so far)
	nextX  int // Next available X position on this shelf
}

// Packer places rectangles inside a fixed-size area with shelf packing.
//
// The area is divided into horizontal shelves. A rectangle goes on the
// first shelf with room for it, or on a new shelf below the last one.
// Allocations are never freed individually; Reset starts over.
//
// Packer is safe for concurrent use.
type Packer struct {
	mu sync.Mutex

	width   int
	height  int
	padding int

	shelves []shelf

	allocCount int
	usedArea   int
}

// NewPacker creates a packer for a width x height area. Padding texels are
// kept free to the right of and below every rectangle.
func NewPacker(width, height, padding int) *Packer {
	if padding < 0 {
		padding = 0
	}
	return &Packer{
		width:   width,
		height:  height,
		padding: padding,
		shelves: make([]shelf, 0, 16),
	}
}

// Allocate finds space for a width x height rectangle. It reports false
// when the rectangle does not fit.
func (p *Packer) Allocate(width, height int) (Region, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if width <= 0 || height <= 0 {
		return Region{}, false
	}

	paddedWidth := width + p.padding
	paddedHeight := height + p.padding
	if paddedWidth > p.width || paddedHeight > p.height {
		return Region{}, false
	}

	for i := range p.shelves {
		s := &p.shelves[i]
		if s.nextX+paddedWidth > p.width {
			continue
		}
		// Only the last shelf may grow taller.
		if paddedHeight > s.height && (i < len(p.shelves)-1 || s.y+paddedHeight > p.height) {
			continue
		}
		r := Region{X: s.nextX, Y: s.y, Width: width, Height: height}
		s.nextX += paddedWidth
		if paddedHeight > s.height {
			s.height = paddedHeight
		}
		p.record(r)
		return r, true
	}

	newY := 0
	if n := len(p.shelves); n > 0 {
		newY = p.shelves[n-1].y + p.shelves[n-1].height
	}
	if newY+paddedHeight > p.height {
		return Region{}, false
	}

	p.shelves = append(p.shelves, shelf{y: newY, height: paddedHeight, nextX: paddedWidth})
	r := Region{X: 0, Y: newY, Width: width, Height: height}
	p.record(r)
	return r, true
}

func (p *Packer) record(r Region) {
	p.allocCount++
	p.usedArea += r.Width * r.Height
}

// Reset forgets all allocations.
func (p *Packer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
}

// Resize forgets all allocations and changes the packed area.
func (p *Packer) Resize(width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.width = width
	p.height = height
	p.reset()
}

func (p *Packer) reset() {
	p.shelves = p.shelves[:0]
	p.allocCount = 0
	p.usedArea = 0
}

// Size returns the packed area dimensions.
func (p *Packer) Size() (width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width, p.height
}

// AllocCount returns the number of successful allocations since the last reset.
func (p *Packer) AllocCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.allocCount
}

// Utilization returns the fraction of area used (0.0 to 1.0).
func (p *Packer) Utilization() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	total := p.width * p.height
	if total == 0 {
		return 0
	}
	return float64(p.usedArea) / float64(total)
}
