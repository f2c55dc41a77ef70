// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

package camera

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/ctviz/volren/volume"
)

func TestOrbit_EyeDistance(t *testing.T) {
	orbits := []Orbit{
		DefaultOrbit(),
		{Yaw: 0, Pitch: 0, Distance: 1},
		{Yaw: 2.1, Pitch: -1.2, Distance: 4.5},
	}
	for _, o := range orbits {
		if got := o.Eye().Len(); math32.Abs(got-o.Distance) > 1e-5 {
			t.Errorf("Eye().Len() = %v, want %v for %+v", got, o.Distance, o)
		}
	}
}

func TestOrbit_RotateClampsPitch(t *testing.T) {
	o := DefaultOrbit()
	o = o.Rotate(0, 100)
	if o.Pitch >= math32.Pi/2 {
		t.Errorf("pitch %v reached the pole", o.Pitch)
	}
	o = o.Rotate(0, -200)
	if o.Pitch <= -math32.Pi/2 {
		t.Errorf("pitch %v reached the pole", o.Pitch)
	}
}

func TestOrbit_ZoomClampsDistance(t *testing.T) {
	o := DefaultOrbit()
	o = o.Zoom(1000)
	if o.Distance != minDistance {
		t.Errorf("Distance = %v after max zoom in, want %v", o.Distance, minDistance)
	}
	o = o.Zoom(-1000)
	if o.Distance != maxDistance {
		t.Errorf("Distance = %v after max zoom out, want %v", o.Distance, maxDistance)
	}
}

func TestModel_CentersVolume(t *testing.T) {
	tests := []struct {
		name string
		dims volume.Dims
	}{
		{"cube", volume.Dims{W: 64, H: 64, D: 64}},
		{"tall", volume.Dims{W: 32, H: 128, D: 32}},
		{"flat", volume.Dims{W: 256, H: 256, D: 16}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Model(tt.dims)
			// The volume-local center must land on the world origin.
			c := mgl32.TransformCoordinate(mgl32.Vec3{0.5, 0.5, 0.5}, m)
			if c.Len() > 1e-5 {
				t.Errorf("center maps to %v, want origin", c)
			}
			// The longest axis must span exactly one world unit.
			lo := mgl32.TransformCoordinate(mgl32.Vec3{0, 0, 0}, m)
			hi := mgl32.TransformCoordinate(mgl32.Vec3{1, 1, 1}, m)
			span := hi.Sub(lo)
			maxSpan := math32.Max(span.X(), math32.Max(span.Y(), span.Z()))
			if math32.Abs(maxSpan-1) > 1e-5 {
				t.Errorf("longest axis spans %v, want 1", maxSpan)
			}
		})
	}
}

func TestViewProjection_CenterStaysInFrustum(t *testing.T) {
	d := volume.Dims{W: 100, H: 80, D: 60}
	for _, o := range []Orbit{DefaultOrbit(), {Yaw: 1, Pitch: 0.2, Distance: 9}} {
		vp := ViewProjection(d, o, 800, 600)
		clip := vp.Mul4x1(mgl32.Vec4{0.5, 0.5, 0.5, 1})
		ndc := clip.Vec3().Mul(1 / clip.W())
		if ndc.X() < -1 || ndc.X() > 1 || ndc.Y() < -1 || ndc.Y() > 1 {
			t.Errorf("orbit %+v: volume center off screen at ndc %v", o, ndc)
		}
		if clip.W() <= 0 {
			t.Errorf("orbit %+v: volume center behind the camera", o)
		}
	}
}

func TestProjection_ZeroViewport(t *testing.T) {
	// A zero-sized viewport must not produce NaNs; aspect falls back to 1.
	p := Projection(DefaultOrbit(), 0, 0)
	for i := 0; i < 16; i++ {
		if math32.IsNaN(p[i]) {
			t.Fatalf("projection contains NaN at %d", i)
		}
	}
}
