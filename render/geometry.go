// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

package render

import "github.com/ctviz/volren/volume"

// CubeVertices are the eight corners of the volume bounding cube in
// volume-local [0,1]³ coordinates. The same coordinate doubles as the
// vertex position (run through the model matrix) and the texture
// coordinate interpolated down to the raymarch entry point.
var CubeVertices = [8][3]float32{
	{0, 0, 0},
	{1, 0, 0},
	{1, 1, 0},
	{0, 1, 0},
	{0, 0, 1},
	{1, 0, 1},
	{1, 1, 1},
	{0, 1, 1},
}

// CubeIndices lists the cube's twelve triangles, wound counter-clockwise
// when viewed from outside. Both backends rely on this winding: pass A
// keeps back faces, pass B keeps front faces.
var CubeIndices = [36]uint16{
	4, 5, 6, 4, 6, 7, // +z
	0, 3, 2, 0, 2, 1, // -z
	1, 2, 6, 1, 6, 5, // +x
	0, 4, 7, 0, 7, 3, // -x
	3, 7, 6, 3, 6, 2, // +y
	0, 1, 5, 0, 5, 4, // -y
}

// SliceQuad is one axis-aligned slice plane: four corners in volume-local
// coordinates, drawn as two triangles (0,1,2)(0,2,3) without culling.
type SliceQuad [4][3]float32

// SliceQuadIndices triangulates a slice quad.
var SliceQuadIndices = [6]uint16{0, 1, 2, 0, 2, 3}

// SliceQuads builds the three orthogonal slice planes for the stored
// slice coordinates, each placed at the texel center of its voxel row so
// point sampling hits the selected slice exactly.
func SliceQuads(d volume.Dims, sliceX, sliceY, sliceZ int) [3]SliceQuad {
	u := (float32(sliceX) + 0.5) / float32(d.W)
	v := (float32(sliceY) + 0.5) / float32(d.H)
	w := (float32(sliceZ) + 0.5) / float32(d.D)
	return [3]SliceQuad{
		{{u, 0, 0}, {u, 1, 0}, {u, 1, 1}, {u, 0, 1}}, // x plane
		{{0, v, 0}, {1, v, 0}, {1, v, 1}, {0, v, 1}}, // y plane
		{{0, 0, w}, {1, 0, w}, {1, 1, w}, {0, 1, w}}, // z plane
	}
}
