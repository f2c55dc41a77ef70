// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ctviz/volren/render"
)

func f32At(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func TestEncodeFrameUniforms(t *testing.T) {
	mvp := mgl32.Ident4()
	cfg := render.MarchConfig{
		MinNorm:    0.1,
		MaxNorm:    0.9,
		StepSize:   0.004,
		ShowGray:   true,
		ShowLabels: false,
		Brightness: -0.25,
		Contrast:   1.5,
	}
	buf := make([]byte, frameUniformSize)
	encodeFrameUniforms(buf, mvp, cfg)

	// Column-major identity: first column (1,0,0,0).
	if f32At(buf, 0) != 1 || f32At(buf, 4) != 0 {
		t.Error("matrix not encoded column-major")
	}
	if f32At(buf, 64) != 0.1 || f32At(buf, 68) != 0.9 {
		t.Errorf("threshold window encoded as %v..%v", f32At(buf, 64), f32At(buf, 68))
	}
	if f32At(buf, 72) != 0.004 {
		t.Errorf("step size = %v, want 0.004", f32At(buf, 72))
	}
	if f32At(buf, 76) != -0.25 || f32At(buf, 80) != 1.5 {
		t.Error("brightness/contrast misplaced")
	}
	if f32At(buf, 84) != 1 || f32At(buf, 88) != 0 {
		t.Error("show flags misplaced")
	}
}

func TestEncodeSliceUniforms(t *testing.T) {
	buf := make([]byte, sliceUniformSize)
	encodeSliceUniforms(buf, mgl32.Ident4(), render.MarchConfig{
		MinNorm: 0.2, MaxNorm: 0.8, Brightness: 0.5, Contrast: 2,
	})
	if f32At(buf, 64) != 0.2 || f32At(buf, 68) != 0.8 {
		t.Error("threshold window misplaced")
	}
	if f32At(buf, 72) != 0.5 || f32At(buf, 76) != 2 {
		t.Error("brightness/contrast misplaced")
	}
}

func TestAlignBytesPerRow(t *testing.T) {
	tests := []struct {
		in, want uint32
	}{
		{4, 256},
		{256, 256},
		{257, 512},
		{1024, 1024},
		{100 * 4, 512},
	}
	for _, tc := range tests {
		if got := alignBytesPerRow(tc.in); got != tc.want {
			t.Errorf("alignBytesPerRow(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
