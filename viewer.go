// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

package volren

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/ctviz/volren/camera"
	"github.com/ctviz/volren/config"
	"github.com/ctviz/volren/label"
	"github.com/ctviz/volren/render"
	"github.com/ctviz/volren/volume"
)

// Viewer is the volume rendering facade: it owns the render state, the
// label side channel, the orbit camera and the renderer, and exposes
// the command surface an interactive application drives.
//
// Control-surface methods clamp or ignore out-of-range input instead of
// failing; only construction, rendering and I/O return errors.
//
// Viewer is not safe for concurrent use. Drive it from one goroutine,
// conventionally the one that owns the window loop.
type Viewer struct {
	gray   volume.ChunkedSource
	labels volume.ChunkedSource

	state *render.State
	table *label.Table

	orbit camera.Orbit
	home  camera.Orbit

	renderer render.Renderer
	target   *render.PixmapTarget

	log *slog.Logger
}

// New creates a viewer over a chunked grayscale volume.
func New(gray volume.ChunkedSource, options ...Option) (*Viewer, error) {
	if gray == nil {
		return nil, errors.New("volren: grayscale volume is required")
	}
	if !gray.Dims().Valid() {
		return nil, fmt.Errorf("volren: invalid volume dims %v", gray.Dims())
	}

	opts := defaultViewerOptions()
	for _, opt := range options {
		opt(&opts)
	}

	v := &Viewer{
		gray:   gray,
		labels: opts.labels,
		state:  render.NewState(gray.Dims()),
		table:  label.NewTable(),
		orbit:  camera.DefaultOrbit(),
		target: render.NewPixmapTarget(opts.width, opts.height),
		log:    Logger(),
	}
	if opts.orbit != nil {
		v.orbit = *opts.orbit
	}
	v.home = v.orbit

	if opts.labels != nil && opts.labels.Dims() != gray.Dims() {
		return nil, fmt.Errorf("volren: label dims %v do not match volume dims %v",
			opts.labels.Dims(), gray.Dims())
	}

	if opts.renderer != nil {
		v.renderer = opts.renderer
		// An injected renderer composites against the viewer's table so
		// the material commands take effect on it.
		if ts, ok := v.renderer.(tableSetter); ok {
			ts.SetTable(v.table)
		}
	} else {
		sw, err := render.NewSoftware(gray, opts.labels, v.table, opts.width, opts.height)
		if err != nil {
			return nil, err
		}
		v.renderer = sw
	}
	propagateLogger(v.renderer, v.log)

	if opts.settings != nil {
		v.ApplySettings(opts.settings)
	}
	return v, nil
}

// Table returns the label side-channel table shared with the renderer.
// Injected renderers should composite against this table.
func (v *Viewer) Table() *label.Table { return v.table }

// State returns the render state. Most callers use the command surface
// instead; the state is exposed for renderer integration.
func (v *Viewer) State() *render.State { return v.state }

// Orbit returns the current camera orbit.
func (v *Viewer) Orbit() camera.Orbit { return v.orbit }

// Render draws one frame and returns the frame image. The returned
// image is reused across frames; callers that keep it across Render
// calls must copy it.
func (v *Viewer) Render() (*image.RGBA, error) {
	if err := v.renderer.Render(v.target, v.state, v.orbit); err != nil {
		return nil, err
	}
	return v.target.Image(), nil
}

// OnResize resizes the viewport. The renderer's size-dependent
// resources are recreated before the next frame renders. Non-positive
// dimensions are ignored.
func (v *Viewer) OnResize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if width == v.target.Width() && height == v.target.Height() {
		return
	}
	v.target.Resize(width, height)
	if err := v.renderer.Resize(width, height); err != nil {
		v.log.Warn("viewport resize failed", "width", width, "height", height, "err", err)
	}
}

// UpdateSlices moves the three orthogonal slice planes. Positions are
// clamped to the volume extents.
func (v *Viewer) UpdateSlices(x, y, z int) {
	v.state.UpdateSlices(x, y, z)
}

// SetMaterialVisibility sets whether the given label is composited.
// IDs outside [0,255] are ignored.
func (v *Viewer) SetMaterialVisibility(id int, visible bool) {
	v.table.SetVisibility(id, visible)
}

// GetMaterialVisibility reports whether the given label is visible.
func (v *Viewer) GetMaterialVisibility(id int) bool {
	return v.table.Visibility(id)
}

// SetMaterialOpacity sets the label's compositing alpha, clamped to [0,1].
func (v *Viewer) SetMaterialOpacity(id int, opacity float32) {
	v.table.SetOpacity(id, opacity)
}

// GetMaterialOpacity returns the label's compositing alpha.
func (v *Viewer) GetMaterialOpacity(id int) float32 {
	return v.table.Opacity(id)
}

// GetLabelVisibilityArray returns a detached copy of the 256-entry
// visibility table.
func (v *Viewer) GetLabelVisibilityArray() [label.TableSize]bool {
	return v.table.VisibilitySnapshot()
}

// SetMinThreshold sets the lower bound of the visible intensity window
// in raw 8-bit units, clamped to [0,255]. The upper bound moves up if
// needed to keep the window valid.
func (v *Viewer) SetMinThreshold(t int) { v.state.SetMinThreshold(t) }

// MinThreshold returns the window's lower bound in raw 8-bit units.
func (v *Viewer) MinThreshold() int { return v.state.MinThreshold() }

// SetMaxThreshold sets the upper bound of the visible intensity window,
// clamped to [0,255]. The lower bound moves down if needed.
func (v *Viewer) SetMaxThreshold(t int) { v.state.SetMaxThreshold(t) }

// MaxThreshold returns the window's upper bound in raw 8-bit units.
func (v *Viewer) MaxThreshold() int { return v.state.MaxThreshold() }

// SetRaymarchStepSize sets the sampling distance in normalized volume
// units. Non-positive values are ignored.
func (v *Viewer) SetRaymarchStepSize(step float32) { v.state.SetStepSize(step) }

// SetShowGrayscale toggles grayscale compositing in the raymarch.
func (v *Viewer) SetShowGrayscale(show bool) { v.state.SetShowGrayscale(show) }

// SetShowOrthoslices toggles the three orthogonal slice planes.
func (v *Viewer) SetShowOrthoslices(show bool) { v.state.SetShowOrthoslices(show) }

// SetShowLabels toggles label compositing in the raymarch.
func (v *Viewer) SetShowLabels(show bool) { v.state.SetShowLabels(show) }

// SetBrightness adjusts grayscale brightness, clamped to [-1,1].
func (v *Viewer) SetBrightness(b float32) { v.state.SetBrightness(b) }

// SetContrast adjusts grayscale contrast, clamped to [0.1,5].
func (v *Viewer) SetContrast(c float32) { v.state.SetContrast(c) }

// RotateCamera orbits the camera by the given yaw and pitch deltas in
// radians. Pitch stays short of the poles.
func (v *Viewer) RotateCamera(dYaw, dPitch float32) {
	v.orbit = v.orbit.Rotate(dYaw, dPitch)
}

// ZoomCamera moves the camera along the view ray; positive delta moves
// closer. Distance is clamped.
func (v *Viewer) ZoomCamera(delta float32) {
	v.orbit = v.orbit.Zoom(delta)
}

// ResetCamera restores the orbit the viewer was created with.
func (v *Viewer) ResetCamera() {
	v.orbit = v.home
}

// ApplySettings applies loaded configuration through the same clamping
// paths the individual commands use.
func (v *Viewer) ApplySettings(s *config.Settings) {
	if s == nil {
		return
	}
	v.state.SetMaxThreshold(s.Render.MaxThreshold)
	v.state.SetMinThreshold(s.Render.MinThreshold)
	if s.Render.StepSize > 0 {
		v.state.SetStepSize(s.Render.StepSize)
	}
	v.state.SetShowGrayscale(s.Render.ShowGrayscale)
	v.state.SetShowOrthoslices(s.Render.ShowOrthoslices)
	v.state.SetShowLabels(s.Render.ShowLabels)
	v.state.SetBrightness(s.Render.Brightness)
	v.state.SetContrast(s.Render.Contrast)

	if s.Slices.X >= 0 || s.Slices.Y >= 0 || s.Slices.Z >= 0 {
		x, y, z := v.state.Slices()
		if s.Slices.X >= 0 {
			x = s.Slices.X
		}
		if s.Slices.Y >= 0 {
			y = s.Slices.Y
		}
		if s.Slices.Z >= 0 {
			z = s.Slices.Z
		}
		v.state.UpdateSlices(x, y, z)
	}

	if s.Camera.Distance > 0 {
		v.orbit = camera.Orbit{Yaw: s.Camera.Yaw, Pitch: s.Camera.Pitch, Distance: s.Camera.Distance}
		// Route through the clamping paths.
		v.orbit = v.orbit.Rotate(0, 0).Zoom(0)
		v.home = v.orbit
	}

	for _, id := range s.Labels.Visible {
		v.table.SetVisibility(id, true)
	}
	for id, opacity := range s.Labels.Opacity {
		v.table.SetOpacity(id, opacity)
	}
}

// Close releases the renderer and its resources.
func (v *Viewer) Close() error {
	if v.renderer == nil {
		return nil
	}
	err := v.renderer.Close()
	v.renderer = nil
	return err
}
