// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

// Package volren renders chunked 8-bit volumes with a two-pass GPU
// raymarcher, per-label visibility and opacity, orthogonal slice
// planes, and an orbit camera.
//
// The Viewer facade owns all rendering state and exposes the command
// surface an interactive application drives:
//
//	vol, _ := volume.NewInMemory(volume.Dims{W: 256, H: 256, D: 113}, 32)
//	v, err := volren.New(vol, volren.WithLabels(labels))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer v.Close()
//
//	v.SetMinThreshold(40)
//	v.SetMaterialVisibility(3, true)
//	img, err := v.Render()
//
// Rendering defaults to a pure-CPU backend that implements the exact
// same two-pass algorithm as the GPU backend in the gpu subpackage;
// inject the latter with WithRenderer for hardware rendering.
package volren
