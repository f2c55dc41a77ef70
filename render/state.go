// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

// Package render holds the per-frame render state, the front-to-back
// compositing core shared by both backends, and the CPU software renderer.
package render

import (
	"github.com/chewxy/math32"

	"github.com/ctviz/volren/volume"
)

// State is the caller-mutable render state: threshold window, step size,
// display flags, shading controls and slice coordinates.
//
// State is mutated between frames and read-only during a Render call.
// Every setter clamps or ignores bad input; none of them fail. All values
// that reach the GPU are re-derived from State at the start of each frame,
// so a setter call is visible no later than the next Render.
type State struct {
	dims volume.Dims

	minNorm, maxNorm float32
	stepSize         float32

	showGray   bool
	showSlices bool
	showLabels bool

	brightness float32
	contrast   float32

	sliceX, sliceY, sliceZ int
}

// Defaults. The step size trades quality against fill cost; 1/256 of the
// normalized diagonal resolves a typical CT stack without crawling.
const (
	defaultStepSize = 1.0 / 256
	minContrast     = 0.1
	maxContrast     = 5
)

// NewState creates render state for a volume of the given dimensions:
// full threshold window, grayscale and labels shown, slices hidden,
// neutral shading, slice planes at the volume center.
func NewState(d volume.Dims) *State {
	return &State{
		dims:       d,
		minNorm:    0,
		maxNorm:    1,
		stepSize:   defaultStepSize,
		showGray:   true,
		showLabels: true,
		contrast:   1,
		sliceX:     d.W / 2,
		sliceY:     d.H / 2,
		sliceZ:     d.D / 2,
	}
}

// Dims returns the volume dimensions this state clamps against.
func (s *State) Dims() volume.Dims { return s.dims }

// SetMinThreshold sets the lower threshold as a 0..255 intensity.
// Out-of-range values are clamped; the upper threshold is pushed up if
// needed so min ≤ max always holds.
func (s *State) SetMinThreshold(v int) {
	s.minNorm = float32(clampInt(v, 0, 255)) / 255
	if s.maxNorm < s.minNorm {
		s.maxNorm = s.minNorm
	}
}

// MinThreshold returns the lower threshold as a 0..255 intensity.
func (s *State) MinThreshold() int {
	return int(math32.Round(s.minNorm * 255))
}

// SetMaxThreshold sets the upper threshold as a 0..255 intensity.
// Out-of-range values are clamped; the lower threshold is pushed down if
// needed so min ≤ max always holds.
func (s *State) SetMaxThreshold(v int) {
	s.maxNorm = float32(clampInt(v, 0, 255)) / 255
	if s.minNorm > s.maxNorm {
		s.minNorm = s.maxNorm
	}
}

// MaxThreshold returns the upper threshold as a 0..255 intensity.
func (s *State) MaxThreshold() int {
	return int(math32.Round(s.maxNorm * 255))
}

// Window returns the normalized threshold window [min, max] ⊆ [0,1].
func (s *State) Window() (minNorm, maxNorm float32) {
	return s.minNorm, s.maxNorm
}

// SetStepSize sets the raymarch step in normalized volume units.
// Non-positive values are ignored.
func (s *State) SetStepSize(step float32) {
	if step > 0 {
		s.stepSize = step
	}
}

// StepSize returns the raymarch step in normalized volume units.
func (s *State) StepSize() float32 { return s.stepSize }

// SetShowGrayscale toggles grayscale compositing in the raymarch.
func (s *State) SetShowGrayscale(show bool) { s.showGray = show }

// ShowGrayscale reports whether grayscale compositing is enabled.
func (s *State) ShowGrayscale() bool { return s.showGray }

// SetShowOrthoslices toggles the orthogonal slice planes.
func (s *State) SetShowOrthoslices(show bool) { s.showSlices = show }

// ShowOrthoslices reports whether the slice planes are drawn.
func (s *State) ShowOrthoslices() bool { return s.showSlices }

// SetShowLabels toggles the whole label channel.
func (s *State) SetShowLabels(show bool) { s.showLabels = show }

// ShowLabels reports whether the label channel is composited.
func (s *State) ShowLabels() bool { return s.showLabels }

// SetBrightness sets the post-gate brightness offset, clamped to [-1, 1].
func (s *State) SetBrightness(b float32) {
	s.brightness = clamp(b, -1, 1)
}

// Brightness returns the brightness offset.
func (s *State) Brightness() float32 { return s.brightness }

// SetContrast sets the post-gate contrast factor, clamped to [0.1, 5].
func (s *State) SetContrast(c float32) {
	s.contrast = clamp(c, minContrast, maxContrast)
}

// Contrast returns the contrast factor.
func (s *State) Contrast() float32 { return s.contrast }

// UpdateSlices stores the three slice coordinates in voxel units, each
// clamped to [0, extent-1]. Out-of-range input never fails.
func (s *State) UpdateSlices(x, y, z int) {
	s.sliceX = clampInt(x, 0, s.dims.W-1)
	s.sliceY = clampInt(y, 0, s.dims.H-1)
	s.sliceZ = clampInt(z, 0, s.dims.D-1)
}

// Slices returns the stored slice coordinates in voxel units.
func (s *State) Slices() (x, y, z int) {
	return s.sliceX, s.sliceY, s.sliceZ
}

// SliceCoordsNorm returns the slice plane positions in normalized volume
// space, placed at texel centers.
func (s *State) SliceCoordsNorm() (u, v, w float32) {
	u = (float32(s.sliceX) + 0.5) / float32(s.dims.W)
	v = (float32(s.sliceY) + 0.5) / float32(s.dims.H)
	w = (float32(s.sliceZ) + 0.5) / float32(s.dims.D)
	return u, v, w
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
