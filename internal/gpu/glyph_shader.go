// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Embedded instanced glyph shader source.
//
//go:embed shaders/glyph.wgsl
var glyphShaderSource string

// Shader entry points.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

var (
	glyphSPIRVOnce sync.Once
	glyphSPIRV     []uint32
	glyphSPIRVErr  error
)

// GlyphShaderSource returns the WGSL source of the glyph shader.
func GlyphShaderSource() string {
	return glyphShaderSource
}

// GlyphShaderModuleSource returns the shader source handed to the device.
// With spirv set, the WGSL is compiled once through naga and the cached
// SPIR-V words are returned instead.
func GlyphShaderModuleSource(spirv bool) (hal.ShaderSource, error) {
	if !spirv {
		return hal.ShaderSource{WGSL: glyphShaderSource}, nil
	}
	glyphSPIRVOnce.Do(func() {
		glyphSPIRV, glyphSPIRVErr = CompileSPIRV(glyphShaderSource)
	})
	if glyphSPIRVErr != nil {
		return hal.ShaderSource{}, glyphSPIRVErr
	}
	return hal.ShaderSource{SPIRV: glyphSPIRV}, nil
}

// CompileSPIRV compiles WGSL source to SPIR-V words.
func CompileSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compile shader: SPIR-V length %d is not word aligned", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
