// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

package volume

import "github.com/chewxy/math32"

// Sampler provides CPU-side texture-style sampling over an assembled
// voxel array. It mirrors the GPU sampler the renderer binds: normalized
// [0,1]³ coordinates, clamp-to-edge addressing, and either nearest or
// trilinear filtering with texel centers at (i+0.5)/extent.
//
// The software renderer samples through this type so that its output
// matches the GPU path texel for texel.
type Sampler struct {
	dims Dims
	data []byte
}

// NewSampler assembles the source into a flat array and wraps it.
func NewSampler(src ChunkedSource) *Sampler {
	return &Sampler{dims: src.Dims(), data: Assemble(src)}
}

// Dims returns the sampled volume's dimensions.
func (s *Sampler) Dims() Dims { return s.dims }

// At returns the raw voxel at integer coordinates, clamped to the volume.
func (s *Sampler) At(x, y, z int) byte {
	x = clampi(x, 0, s.dims.W-1)
	y = clampi(y, 0, s.dims.H-1)
	z = clampi(z, 0, s.dims.D-1)
	return s.data[z*s.dims.W*s.dims.H+y*s.dims.W+x]
}

// Nearest point-samples at normalized coordinates, returning the voxel
// value scaled to [0,1].
func (s *Sampler) Nearest(u, v, w float32) float32 {
	x := int(math32.Floor(u * float32(s.dims.W)))
	y := int(math32.Floor(v * float32(s.dims.H)))
	z := int(math32.Floor(w * float32(s.dims.D)))
	return float32(s.At(x, y, z)) / 255
}

// Linear trilinearly samples at normalized coordinates, returning a value
// in [0,1].
func (s *Sampler) Linear(u, v, w float32) float32 {
	// Shift so that texel centers sit at (i+0.5)/extent.
	fx := u*float32(s.dims.W) - 0.5
	fy := v*float32(s.dims.H) - 0.5
	fz := w*float32(s.dims.D) - 0.5
	x0 := int(math32.Floor(fx))
	y0 := int(math32.Floor(fy))
	z0 := int(math32.Floor(fz))
	tx := fx - float32(x0)
	ty := fy - float32(y0)
	tz := fz - float32(z0)

	c000 := float32(s.At(x0, y0, z0))
	c100 := float32(s.At(x0+1, y0, z0))
	c010 := float32(s.At(x0, y0+1, z0))
	c110 := float32(s.At(x0+1, y0+1, z0))
	c001 := float32(s.At(x0, y0, z0+1))
	c101 := float32(s.At(x0+1, y0, z0+1))
	c011 := float32(s.At(x0, y0+1, z0+1))
	c111 := float32(s.At(x0+1, y0+1, z0+1))

	c00 := lerp(c000, c100, tx)
	c10 := lerp(c010, c110, tx)
	c01 := lerp(c001, c101, tx)
	c11 := lerp(c011, c111, tx)
	c0 := lerp(c00, c10, ty)
	c1 := lerp(c01, c11, ty)
	return lerp(c0, c1, tz) / 255
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
