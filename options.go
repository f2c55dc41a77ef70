// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

package volren

import (
	"github.com/ctviz/volren/camera"
	"github.com/ctviz/volren/config"
	"github.com/ctviz/volren/render"
	"github.com/ctviz/volren/volume"
)

// Option configures a Viewer during creation.
//
// Example:
//
//	// Default software rendering at 800x600
//	v, err := volren.New(vol)
//
//	// Labeled volume with an injected GPU renderer
//	v, err := volren.New(vol,
//	    volren.WithLabels(labels),
//	    volren.WithRenderer(gpuRenderer))
type Option func(*viewerOptions)

type viewerOptions struct {
	labels   volume.ChunkedSource
	renderer render.Renderer
	width    int
	height   int
	orbit    *camera.Orbit
	settings *config.Settings
}

func defaultViewerOptions() viewerOptions {
	return viewerOptions{
		width:  800,
		height: 600,
	}
}

// WithLabels attaches a segmented label volume. Its dimensions must
// match the grayscale volume.
func WithLabels(src volume.ChunkedSource) Option {
	return func(o *viewerOptions) {
		o.labels = src
	}
}

// WithRenderer injects a custom renderer. When unset the viewer
// constructs a software renderer over the volumes.
func WithRenderer(r render.Renderer) Option {
	return func(o *viewerOptions) {
		o.renderer = r
	}
}

// WithSize sets the initial viewport dimensions.
func WithSize(width, height int) Option {
	return func(o *viewerOptions) {
		if width > 0 && height > 0 {
			o.width = width
			o.height = height
		}
	}
}

// WithCamera sets the initial camera orbit.
func WithCamera(orbit camera.Orbit) Option {
	return func(o *viewerOptions) {
		o.orbit = &orbit
	}
}

// WithSettings applies loaded configuration after construction, as if
// each value had been set through the corresponding command.
func WithSettings(s *config.Settings) Option {
	return func(o *viewerOptions) {
		o.settings = s
	}
}
