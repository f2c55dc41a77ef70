// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ctviz/volren/render"
)

// WGSL-side uniform block sizes. FrameUniforms is a mat4x4 followed by
// eight f32 scalars; SliceUniforms a mat4x4 followed by four.
const (
	frameUniformSize = 64 + 8*4
	sliceUniformSize = 64 + 4*4
)

func putMat4(dst []byte, m mgl32.Mat4) {
	// mgl32 stores column-major, matching WGSL mat4x4 layout.
	for i, v := range m {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}

func putF32(dst []byte, v float32) {
	binary.LittleEndian.PutUint32(dst, math.Float32bits(v))
}

func boolF32(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

// encodeFrameUniforms packs the raymarch uniform block.
func encodeFrameUniforms(dst []byte, mvp mgl32.Mat4, cfg render.MarchConfig) {
	putMat4(dst, mvp)
	putF32(dst[64:], cfg.MinNorm)
	putF32(dst[68:], cfg.MaxNorm)
	putF32(dst[72:], cfg.StepSize)
	putF32(dst[76:], cfg.Brightness)
	putF32(dst[80:], cfg.Contrast)
	putF32(dst[84:], boolF32(cfg.ShowGray))
	putF32(dst[88:], boolF32(cfg.ShowLabels))
	putF32(dst[92:], 0)
}

// encodeSliceUniforms packs the slice uniform block.
func encodeSliceUniforms(dst []byte, mvp mgl32.Mat4, cfg render.MarchConfig) {
	putMat4(dst, mvp)
	putF32(dst[64:], cfg.MinNorm)
	putF32(dst[68:], cfg.MaxNorm)
	putF32(dst[72:], cfg.Brightness)
	putF32(dst[76:], cfg.Contrast)
}
