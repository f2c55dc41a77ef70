// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

package volume

import "fmt"

// InMemory is a ChunkedSource backed by heap-allocated chunks.
//
// It exists for tests, the viewer command, and callers that load a whole
// volume into RAM before handing it to the renderer. Out-of-core stores
// implement ChunkedSource themselves.
type InMemory struct {
	dims     Dims
	chunkDim int
	cx, cy   int
	cz       int
	chunks   [][]byte
}

// NewInMemory creates a zero-filled chunked volume.
func NewInMemory(d Dims, chunkDim int) (*InMemory, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("volume: invalid dimensions %dx%dx%d", d.W, d.H, d.D)
	}
	if chunkDim <= 0 {
		return nil, fmt.Errorf("volume: invalid chunk dimension %d", chunkDim)
	}
	cx, cy, cz := ChunkCountsFor(d, chunkDim)
	v := &InMemory{
		dims:     d,
		chunkDim: chunkDim,
		cx:       cx,
		cy:       cy,
		cz:       cz,
		chunks:   make([][]byte, cx*cy*cz),
	}
	slab := chunkDim * chunkDim * chunkDim
	for i := range v.chunks {
		v.chunks[i] = make([]byte, slab)
	}
	return v, nil
}

// FromBytes creates an in-memory chunked volume from a flat W×H×D voxel
// array laid out x-fastest. The data is copied chunk by chunk.
func FromBytes(d Dims, chunkDim int, data []byte) (*InMemory, error) {
	if len(data) != d.Voxels() {
		return nil, fmt.Errorf("volume: got %d bytes, want %d for %dx%dx%d",
			len(data), d.Voxels(), d.W, d.H, d.D)
	}
	v, err := NewInMemory(d, chunkDim)
	if err != nil {
		return nil, err
	}
	for z := 0; z < d.D; z++ {
		for y := 0; y < d.H; y++ {
			for x := 0; x < d.W; x++ {
				v.Set(x, y, z, data[z*d.W*d.H+y*d.W+x])
			}
		}
	}
	return v, nil
}

// Fill sets every in-bounds voxel to the given value.
func (v *InMemory) Fill(val byte) {
	for z := 0; z < v.dims.D; z++ {
		for y := 0; y < v.dims.H; y++ {
			for x := 0; x < v.dims.W; x++ {
				v.Set(x, y, z, val)
			}
		}
	}
}

// Set writes one voxel. Out-of-bounds coordinates are ignored.
func (v *InMemory) Set(x, y, z int, val byte) {
	if x < 0 || y < 0 || z < 0 || x >= v.dims.W || y >= v.dims.H || z >= v.dims.D {
		return
	}
	c := v.chunkDim
	chunk := v.chunks[(z/c)*v.cx*v.cy+(y/c)*v.cx+x/c]
	chunk[(z%c)*c*c+(y%c)*c+x%c] = val
}

// At reads one voxel. Out-of-bounds coordinates return 0.
func (v *InMemory) At(x, y, z int) byte {
	if x < 0 || y < 0 || z < 0 || x >= v.dims.W || y >= v.dims.H || z >= v.dims.D {
		return 0
	}
	c := v.chunkDim
	chunk := v.chunks[(z/c)*v.cx*v.cy+(y/c)*v.cx+x/c]
	return chunk[(z%c)*c*c+(y%c)*c+x%c]
}

// Dims returns the volume dimensions.
func (v *InMemory) Dims() Dims { return v.dims }

// ChunkDim returns the chunk edge length.
func (v *InMemory) ChunkDim() int { return v.chunkDim }

// ChunkCounts returns per-axis chunk counts.
func (v *InMemory) ChunkCounts() (cx, cy, cz int) { return v.cx, v.cy, v.cz }

// ChunkData returns the backing bytes of one chunk.
func (v *InMemory) ChunkData(cx, cy, cz int) []byte {
	return v.chunks[cz*v.cx*v.cy+cy*v.cx+cx]
}

// Ensure InMemory implements ChunkedSource.
var _ ChunkedSource = (*InMemory)(nil)
