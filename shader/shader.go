// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

// Package shader embeds the WGSL sources for the GPU rendering path and
// names their binding layout. The sources are handed to the device as
// WGSL; Validate runs them through naga so a broken shader fails a unit
// test instead of the first device that loads it.
package shader

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
)

//go:embed raymarch.wgsl
var RaymarchWGSL string

//go:embed slice.wgsl
var SliceWGSL string

//go:embed blit.wgsl
var BlitWGSL string

// Binding slots of the raymarch bind group. The pipeline layout in the
// gpu package and the @binding declarations in raymarch.wgsl must agree
// with these.
const (
	RaymarchBindUniforms = 0
	RaymarchBindVolume   = 1
	RaymarchBindLabels   = 2
	RaymarchBindSampler  = 3
	RaymarchBindExit     = 4
	RaymarchBindVis      = 5
	RaymarchBindOpacity  = 6
)

// Binding slots of the slice bind group.
const (
	SliceBindUniforms = 0
	SliceBindVolume   = 1
	SliceBindSampler  = 2
)

// Binding slots of the blit bind group.
const (
	BlitBindTexture = 0
	BlitBindSampler = 1
)

// Sources returns every embedded shader keyed by asset name.
func Sources() map[string]string {
	return map[string]string{
		"raymarch.wgsl": RaymarchWGSL,
		"slice.wgsl":    SliceWGSL,
		"blit.wgsl":     BlitWGSL,
	}
}

// Validate compiles every embedded shader and returns the first error.
func Validate() error {
	for name, src := range Sources() {
		if _, err := naga.Compile(src); err != nil {
			return fmt.Errorf("shader %s: %w", name, err)
		}
	}
	return nil
}
