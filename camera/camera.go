// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

// Package camera computes the per-frame view and projection transforms
// that keep a volume's bounding sphere framed from an orbit position.
//
// The rig is stateless: callers hold an Orbit value and derive fresh
// matrices every frame. Interactive orbiting is the surrounding UI's job;
// it feeds updated yaw/pitch/distance back in through Rotate and Zoom.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/ctviz/volren/volume"
)

// Projection constants. The field of view is fixed; the far plane scales
// with orbit distance so the volume is always enclosed.
const (
	fovY        = math32.Pi / 4
	nearPlane   = 0.01
	farRatio    = 10
	minDistance = 0.5
	maxDistance = 10
	// pitchMargin keeps the orbit off the poles to avoid a degenerate
	// look-at basis.
	pitchMargin = 0.1
)

// Orbit is an orbit-camera parameter set: yaw and pitch in radians,
// distance in world units from the volume center.
type Orbit struct {
	Yaw, Pitch, Distance float32
}

// DefaultOrbit is the constant orbit the renderer uses when the caller
// never rotates or zooms. A normalized volume has bounding radius at most
// √3/2, so distance 2.5 frames any aspect ratio with margin.
func DefaultOrbit() Orbit {
	return Orbit{Yaw: 0.6, Pitch: 0.4, Distance: 2.5}
}

// Rotate returns the orbit turned by the given deltas, with pitch clamped
// away from the poles.
func (o Orbit) Rotate(dYaw, dPitch float32) Orbit {
	o.Yaw += dYaw
	o.Pitch = clamp(o.Pitch+dPitch, -math32.Pi/2+pitchMargin, math32.Pi/2-pitchMargin)
	return o
}

// Zoom returns the orbit moved toward (positive delta) or away from the
// volume center, with distance clamped to [0.5, 10].
func (o Orbit) Zoom(delta float32) Orbit {
	o.Distance = clamp(o.Distance-delta, minDistance, maxDistance)
	return o
}

// Eye returns the camera position on the orbit sphere around the origin.
func (o Orbit) Eye() mgl32.Vec3 {
	cp := math32.Cos(o.Pitch)
	return mgl32.Vec3{
		o.Distance * cp * math32.Sin(o.Yaw),
		o.Distance * math32.Sin(o.Pitch),
		o.Distance * cp * math32.Cos(o.Yaw),
	}
}

// Model maps volume-local [0,1]³ coordinates to a world-space box centered
// at the origin, scaled so the longest axis spans one unit and the others
// keep their voxel aspect.
func Model(d volume.Dims) mgl32.Mat4 {
	m := float32(max(d.W, max(d.H, d.D)))
	sx := float32(d.W) / m
	sy := float32(d.H) / m
	sz := float32(d.D) / m
	scale := mgl32.Scale3D(sx, sy, sz)
	center := mgl32.Translate3D(-0.5, -0.5, -0.5)
	return scale.Mul4(center)
}

// View returns the look-at matrix for the orbit: eye on the orbit sphere,
// target the volume center at the origin, world up +Y.
func View(o Orbit) mgl32.Mat4 {
	eye := o.Eye()
	return mgl32.LookAtV(eye, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
}

// Projection returns a perspective projection for the current viewport.
// The far plane is 10× the orbit distance, guaranteeing the volume's
// bounding sphere stays enclosed at any legal zoom.
func Projection(o Orbit, width, height int) mgl32.Mat4 {
	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}
	return mgl32.Perspective(fovY, aspect, nearPlane, farRatio*o.Distance)
}

// ViewProjection combines View and Projection with the model transform for
// the given volume: the full clip-from-volume-local matrix used by both
// render backends.
func ViewProjection(d volume.Dims, o Orbit, width, height int) mgl32.Mat4 {
	return Projection(o, width, height).Mul4(View(o)).Mul4(Model(d))
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
