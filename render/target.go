// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

package render

import (
	"image"

	"github.com/gogpu/gputypes"
)

// Target defines where a frame's output goes.
//
// The software renderer requires a CPU-accessible target (Pixels).
// The GPU renderer draws into its own resident color attachment and, when
// the target is CPU-accessible, reads the frame back into it; a window
// surface target instead receives a blit and a present.
type Target interface {
	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int

	// Format returns the pixel format of the target.
	Format() gputypes.TextureFormat

	// Pixels returns direct access to pixel data, or nil for targets
	// without CPU access. Layout is 8-bit RGBA with straight alpha.
	Pixels() []byte

	// Stride returns the number of bytes per pixel row.
	Stride() int
}

// PixmapTarget is a CPU-backed render target over an *image.RGBA.
// It is the target used for offscreen rendering and screenshots.
type PixmapTarget struct {
	img *image.RGBA
}

// NewPixmapTarget creates a CPU-backed target of the given size.
func NewPixmapTarget(width, height int) *PixmapTarget {
	return &PixmapTarget{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Width returns the target width in pixels.
func (t *PixmapTarget) Width() int { return t.img.Bounds().Dx() }

// Height returns the target height in pixels.
func (t *PixmapTarget) Height() int { return t.img.Bounds().Dy() }

// Format returns the pixel format (RGBA8).
func (t *PixmapTarget) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Pixels returns the raw RGBA bytes.
func (t *PixmapTarget) Pixels() []byte { return t.img.Pix }

// Stride returns the number of bytes per row.
func (t *PixmapTarget) Stride() int { return t.img.Stride }

// Image returns the underlying image, sharing memory with the target.
func (t *PixmapTarget) Image() *image.RGBA { return t.img }

// Resize reallocates the target at a new size. Contents are not kept.
func (t *PixmapTarget) Resize(width, height int) {
	t.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

// Clear fills the target with transparent black.
func (t *PixmapTarget) Clear() {
	pix := t.img.Pix
	for i := range pix {
		pix[i] = 0
	}
}

// Ensure PixmapTarget implements Target.
var _ Target = (*PixmapTarget)(nil)
