// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

package volume

import "testing"

func TestChunkCountsFor(t *testing.T) {
	tests := []struct {
		name     string
		dims     Dims
		chunkDim int
		wantX    int
		wantY    int
		wantZ    int
	}{
		{"exact multiple", Dims{4, 4, 4}, 2, 2, 2, 2},
		{"single chunk", Dims{3, 3, 3}, 8, 1, 1, 1},
		{"ragged every axis", Dims{5, 6, 7}, 4, 2, 2, 2},
		{"one voxel", Dims{1, 1, 1}, 16, 1, 1, 1},
		{"mixed", Dims{17, 16, 15}, 8, 3, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cx, cy, cz := ChunkCountsFor(tt.dims, tt.chunkDim)
			if cx != tt.wantX || cy != tt.wantY || cz != tt.wantZ {
				t.Errorf("ChunkCountsFor(%v, %d) = (%d, %d, %d), want (%d, %d, %d)",
					tt.dims, tt.chunkDim, cx, cy, cz, tt.wantX, tt.wantY, tt.wantZ)
			}
		})
	}
}

func TestChunkExtent_EdgeChunks(t *testing.T) {
	d := Dims{W: 5, H: 6, D: 7}
	const c = 4

	tests := []struct {
		name       string
		cx, cy, cz int
		w, h, dd   int
	}{
		{"interior", 0, 0, 0, 4, 4, 4},
		{"x edge", 1, 0, 0, 1, 4, 4},
		{"y edge", 0, 1, 0, 4, 2, 4},
		{"z edge", 0, 0, 1, 4, 4, 3},
		{"corner", 1, 1, 1, 1, 2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, dd := ChunkExtent(d, c, tt.cx, tt.cy, tt.cz)
			if w != tt.w || h != tt.h || dd != tt.dd {
				t.Errorf("ChunkExtent(%d,%d,%d) = (%d,%d,%d), want (%d,%d,%d)",
					tt.cx, tt.cy, tt.cz, w, h, dd, tt.w, tt.h, tt.dd)
			}
		})
	}
}

func TestGatherLayer(t *testing.T) {
	const c = 4
	chunk := make([]byte, c*c*c)
	for i := range chunk {
		chunk[i] = byte(i)
	}

	// Clipped 3x2 region of layer z=1.
	dst := make([]byte, 3*2)
	GatherLayer(chunk, c, 1, 3, 2, dst)

	want := []byte{
		16, 17, 18, // z=1, y=0, x=0..2
		20, 21, 22, // z=1, y=1, x=0..2
	}
	for i, w := range want {
		if dst[i] != w {
			t.Errorf("dst[%d] = %d, want %d", i, dst[i], w)
		}
	}
}

// TestAssemble_Coverage verifies that a non-multiple-of-chunk volume is
// covered exactly once: no gaps, no overlap, every voxel in its place.
func TestAssemble_Coverage(t *testing.T) {
	dims := []Dims{
		{4, 4, 4},
		{5, 6, 7},
		{3, 3, 3},
		{9, 2, 5},
	}
	for _, d := range dims {
		for _, chunkDim := range []int{2, 3, 4} {
			flat := make([]byte, d.Voxels())
			for i := range flat {
				flat[i] = byte(i % 251) // prime wrap keeps values distinct-ish
			}
			v, err := FromBytes(d, chunkDim, flat)
			if err != nil {
				t.Fatalf("FromBytes(%v, %d): %v", d, chunkDim, err)
			}
			got := Assemble(v)
			if len(got) != len(flat) {
				t.Fatalf("Assemble len = %d, want %d", len(got), len(flat))
			}
			for i := range flat {
				if got[i] != flat[i] {
					t.Fatalf("dims %v chunk %d: voxel %d = %d, want %d",
						d, chunkDim, i, got[i], flat[i])
				}
			}
		}
	}
}

func TestInMemory_SetAt(t *testing.T) {
	v, err := NewInMemory(Dims{5, 5, 5}, 2)
	if err != nil {
		t.Fatal(err)
	}
	v.Set(4, 4, 4, 200)
	v.Set(0, 0, 0, 7)
	v.Set(9, 0, 0, 1) // out of bounds, ignored

	if got := v.At(4, 4, 4); got != 200 {
		t.Errorf("At(4,4,4) = %d, want 200", got)
	}
	if got := v.At(0, 0, 0); got != 7 {
		t.Errorf("At(0,0,0) = %d, want 7", got)
	}
	if got := v.At(9, 0, 0); got != 0 {
		t.Errorf("At(9,0,0) = %d, want 0", got)
	}
}

func TestNewInMemory_Invalid(t *testing.T) {
	if _, err := NewInMemory(Dims{0, 4, 4}, 2); err == nil {
		t.Error("zero width: want error")
	}
	if _, err := NewInMemory(Dims{4, 4, 4}, 0); err == nil {
		t.Error("zero chunk dim: want error")
	}
	if _, err := FromBytes(Dims{2, 2, 2}, 2, make([]byte, 7)); err == nil {
		t.Error("short data: want error")
	}
}

func TestSampler_Nearest(t *testing.T) {
	v, _ := NewInMemory(Dims{2, 2, 2}, 2)
	v.Set(0, 0, 0, 255)
	s := NewSampler(v)

	if got := s.Nearest(0.25, 0.25, 0.25); got != 1 {
		t.Errorf("Nearest in first voxel = %v, want 1", got)
	}
	if got := s.Nearest(0.75, 0.25, 0.25); got != 0 {
		t.Errorf("Nearest in second voxel = %v, want 0", got)
	}
}

func TestSampler_LinearUniform(t *testing.T) {
	// A uniform volume must sample to the same value everywhere,
	// including near the borders where clamp-to-edge kicks in.
	v, _ := NewInMemory(Dims{4, 4, 4}, 2)
	v.Fill(200)
	s := NewSampler(v)

	want := float32(200) / 255
	coords := [][3]float32{
		{0.5, 0.5, 0.5},
		{0.01, 0.01, 0.01},
		{0.99, 0.99, 0.99},
		{0.3, 0.7, 0.5},
	}
	for _, c := range coords {
		got := s.Linear(c[0], c[1], c[2])
		if diff := got - want; diff > 1e-5 || diff < -1e-5 {
			t.Errorf("Linear(%v) = %v, want %v", c, got, want)
		}
	}
}

func TestSampler_LinearInterpolates(t *testing.T) {
	// Two voxels 0 and 255 along x: the midpoint between their centers
	// must sample to 0.5.
	v, _ := NewInMemory(Dims{2, 1, 1}, 2)
	v.Set(1, 0, 0, 255)
	s := NewSampler(v)

	got := s.Linear(0.5, 0.5, 0.5)
	if diff := got - 0.5; diff > 1e-5 || diff < -1e-5 {
		t.Errorf("Linear midpoint = %v, want 0.5", got)
	}
}
