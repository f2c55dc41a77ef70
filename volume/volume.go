// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

// Package volume defines the chunked voxel store consumed by the renderer
// and the pure geometry math used to stream chunks into GPU textures.
//
// A volume is a W×H×D grid of 8-bit voxels split into fixed-size cubic
// chunks of dimension C. Chunks at the high-x/y/z border may extend past
// the volume bounds; their backing arrays are still full C³ slabs, but
// only the in-bounds sub-region is ever read.
package volume

// Dims holds volume dimensions in voxels.
type Dims struct {
	W, H, D int
}

// Voxels returns the total voxel count.
func (d Dims) Voxels() int {
	return d.W * d.H * d.D
}

// Valid reports whether every axis extent is positive.
func (d Dims) Valid() bool {
	return d.W > 0 && d.H > 0 && d.D > 0
}

// ChunkedSource is a read-only chunked voxel store.
//
// Chunk data is laid out x-fastest, then y, then z, with a row pitch equal
// to the chunk dimension regardless of how much of the chunk lies inside
// the volume. Implementations may back chunks with out-of-core storage;
// the renderer reads each chunk exactly once, at texture build time.
type ChunkedSource interface {
	// Dims returns the volume dimensions in voxels.
	Dims() Dims

	// ChunkDim returns the chunk edge length C in voxels.
	ChunkDim() int

	// ChunkCounts returns the number of chunks along each axis,
	// i.e. ceil(extent/C) per axis.
	ChunkCounts() (cx, cy, cz int)

	// ChunkData returns the backing bytes of the chunk at the given chunk
	// coordinates. The slice has length C³ and must not be modified.
	ChunkData(cx, cy, cz int) []byte
}

// ChunkCountsFor computes per-axis chunk counts for the given dimensions
// and chunk size.
func ChunkCountsFor(d Dims, chunkDim int) (cx, cy, cz int) {
	cx = (d.W + chunkDim - 1) / chunkDim
	cy = (d.H + chunkDim - 1) / chunkDim
	cz = (d.D + chunkDim - 1) / chunkDim
	return cx, cy, cz
}

// ChunkExtent returns the in-bounds extent of the chunk at the given chunk
// coordinates. Interior chunks report (C,C,C); edge chunks report the
// clipped remainder along each axis that runs past the volume bounds.
func ChunkExtent(d Dims, chunkDim, cx, cy, cz int) (w, h, dd int) {
	w = min(chunkDim, d.W-cx*chunkDim)
	h = min(chunkDim, d.H-cy*chunkDim)
	dd = min(chunkDim, d.D-cz*chunkDim)
	return w, h, dd
}

// ChunkOrigin returns the voxel coordinate of the chunk's (0,0,0) corner.
func ChunkOrigin(chunkDim, cx, cy, cz int) (x, y, z int) {
	return cx * chunkDim, cy * chunkDim, cz * chunkDim
}

// GatherLayer copies one z-layer of a chunk into dst as a contiguous
// w×h scanline block. The chunk backing array keeps a row pitch of
// chunkDim, so for edge chunks each scanline is shorter than its pitch.
// dst must have room for w*h bytes.
func GatherLayer(chunk []byte, chunkDim, z, w, h int, dst []byte) {
	base := z * chunkDim * chunkDim
	for y := 0; y < h; y++ {
		row := chunk[base+y*chunkDim : base+y*chunkDim+w]
		copy(dst[y*w:(y+1)*w], row)
	}
}

// Assemble composes the full W×H×D voxel array from a chunked source,
// x-fastest. It allocates W*H*D bytes and is intended for the software
// renderer and for verification; the GPU path streams chunks directly.
func Assemble(src ChunkedSource) []byte {
	d := src.Dims()
	c := src.ChunkDim()
	cx, cy, cz := src.ChunkCounts()
	out := make([]byte, d.Voxels())
	for iz := 0; iz < cz; iz++ {
		for iy := 0; iy < cy; iy++ {
			for ix := 0; ix < cx; ix++ {
				chunk := src.ChunkData(ix, iy, iz)
				ox, oy, oz := ChunkOrigin(c, ix, iy, iz)
				w, h, dd := ChunkExtent(d, c, ix, iy, iz)
				for z := 0; z < dd; z++ {
					for y := 0; y < h; y++ {
						srcRow := chunk[z*c*c+y*c : z*c*c+y*c+w]
						dstOff := (oz+z)*d.W*d.H + (oy+y)*d.W + ox
						copy(out[dstOff:dstOff+w], srcRow)
					}
				}
			}
		}
	}
	return out
}
