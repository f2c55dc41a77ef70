// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

package render

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/ctviz/volren/label"
)

// Compositing constants shared with the raymarch shader.
const (
	// EarlyOutAlpha stops the march once the accumulated alpha exceeds
	// it; later samples cannot change the pixel perceptibly.
	EarlyOutAlpha = 0.95

	// GrayAlpha is the fixed compositing alpha of a grayscale sample
	// that passed the threshold gate.
	GrayAlpha = 0.5
)

// MarchConfig is the per-frame parameter block for the compositing core,
// derived from State before each frame.
type MarchConfig struct {
	MinNorm, MaxNorm float32
	StepSize         float32
	ShowGray         bool
	ShowLabels       bool
	Brightness       float32
	Contrast         float32
}

// ConfigFromState derives the march parameters for one frame.
func ConfigFromState(s *State) MarchConfig {
	minN, maxN := s.Window()
	return MarchConfig{
		MinNorm:    minN,
		MaxNorm:    maxN,
		StepSize:   s.StepSize(),
		ShowGray:   s.ShowGrayscale(),
		ShowLabels: s.ShowLabels(),
		Brightness: s.Brightness(),
		Contrast:   s.Contrast(),
	}
}

// SampleFunc samples a volume at normalized coordinates, returning a
// value in [0,1]. Grayscale samplers return intensity; label samplers
// return the filtered label ID scaled by 1/255.
type SampleFunc func(u, v, w float32) float32

// CompositeRay marches from entry to exit through the volume,
// front-to-back compositing label color and thresholded grayscale
// samples. Both coordinates are in normalized [0,1]³ volume space.
// The returned color is straight (non-premultiplied) RGBA.
//
// The WGSL fragment stage implements the same loop; the two must agree
// sample for sample. labelID may be nil when no label volume is loaded.
func CompositeRay(entry, exit mgl32.Vec3, gray, labelID SampleFunc, table *label.Table, cfg MarchConfig) mgl32.Vec4 {
	ray := exit.Sub(entry)
	length := ray.Len()
	if length == 0 {
		// Degenerate ray: the exit buffer was never written for this
		// pixel, or entry and exit coincide at the silhouette edge.
		return mgl32.Vec4{}
	}

	steps := int(math32.Ceil(length/cfg.StepSize)) + 1
	delta := ray.Mul(1 / float32(steps))

	var accum mgl32.Vec4
	pos := entry
	for i := 0; i < steps; i++ {
		if !inUnitCube(pos) {
			break
		}

		g := float32(0)
		if cfg.ShowGray && gray != nil {
			g = gray(pos.X(), pos.Y(), pos.Z())
			if g < cfg.MinNorm || g > cfg.MaxNorm {
				// Hard pass/reject gate, not a remap.
				g = 0
			}
		}

		if cfg.ShowLabels && labelID != nil && table != nil {
			id := int(math32.Round(labelID(pos.X(), pos.Y(), pos.Z()) * 255))
			if id > 0 && id < label.TableSize && table.Visibility(id) {
				r, gg, b := label.Color(label.ID(id))
				accum = compositeOver(accum, r, gg, b, table.Opacity(id))
			}
		}

		if g > 0 {
			shade := ShadeGray(g, cfg.Brightness, cfg.Contrast)
			accum = compositeOver(accum, shade, shade, shade, GrayAlpha)
		}

		if accum.W() > EarlyOutAlpha {
			break
		}
		pos = pos.Add(delta)
	}
	return accum
}

// ShadeGray applies the brightness/contrast adjustment to an intensity
// that already passed the threshold gate.
func ShadeGray(g, brightness, contrast float32) float32 {
	return clamp((g-0.5)*contrast+0.5+brightness, 0, 1)
}

// compositeOver performs one front-to-back compositing step:
// the accumulated color absorbs the new sample weighted by its alpha,
// and the accumulated alpha saturates toward 1.
func compositeOver(accum mgl32.Vec4, r, g, b, a float32) mgl32.Vec4 {
	return mgl32.Vec4{
		accum.X() + (r-accum.X())*a,
		accum.Y() + (g-accum.Y())*a,
		accum.Z() + (b-accum.Z())*a,
		accum.W() + a*(1-accum.W()),
	}
}

func inUnitCube(p mgl32.Vec3) bool {
	return p.X() >= 0 && p.X() <= 1 &&
		p.Y() >= 0 && p.Y() <= 1 &&
		p.Z() >= 0 && p.Z() <= 1
}
