// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyph

import (
	"log/slog"

	"github.com/gogpu/glyph/internal/gpu"
)

// SetLogger configures the logger for glyph and all its sub-packages.
// By default, glyph produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by glyph:
//   - [slog.LevelDebug]: instance buffer growth, transform uploads, atlas resizes
//   - [slog.LevelInfo]: pipeline creation
//   - [slog.LevelWarn]: non-fatal issues (glyphs that never fit the atlas)
//
// Example:
//
//	// Enable debug-level logging for full diagnostics:
//	glyph.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	gpu.SetLogger(l)
}

// Logger returns the current logger used by glyph.
// Sub-packages (atlas, brush) share the same logger.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return gpu.Logger()
}
