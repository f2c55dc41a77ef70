// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

package render

import "github.com/ctviz/volren/camera"

// Renderer draws one frame of the volume scene.
//
// Two implementations exist: the CPU SoftwareRenderer in this package and
// the WebGPU renderer in the gpu package. Both execute the same two-pass
// exit-capture/entry-march algorithm and read the same State, so a scene
// renders identically (up to sampler rounding) on either backend.
//
// Renderers are NOT safe for concurrent use. Render, Resize and Close
// must all be called from the single goroutine that owns the renderer;
// GPU backends additionally require that goroutine to own the graphics
// context. Each Render call is synchronous: when it returns, the frame
// is complete in the target.
type Renderer interface {
	// Render draws one frame into the target using the given state and
	// camera orbit. The state is read-only for the duration of the call.
	Render(target Target, state *State, orbit camera.Orbit) error

	// Resize recreates every size-dependent internal resource (exit
	// buffer, depth buffer) at the new viewport size. Must not run
	// concurrently with Render.
	Resize(width, height int) error

	// Close releases all renderer resources. The renderer must not be
	// used afterwards.
	Close() error
}
