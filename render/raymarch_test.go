// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ctviz/volren/label"
)

func defaultConfig() MarchConfig {
	return MarchConfig{
		MinNorm:  0,
		MaxNorm:  1,
		StepSize: 0.01,
		ShowGray: true,
		Contrast: 1,
	}
}

func TestCompositeRay_ZeroLengthRay(t *testing.T) {
	p := mgl32.Vec3{0.5, 0.5, 0.5}
	got := CompositeRay(p, p, func(u, v, w float32) float32 { return 1 }, nil, nil, defaultConfig())
	if got != (mgl32.Vec4{}) {
		t.Errorf("zero-length ray composited %v, want zero", got)
	}
}

func TestCompositeRay_EmptyVolumeTransparent(t *testing.T) {
	zero := func(u, v, w float32) float32 { return 0 }
	got := CompositeRay(mgl32.Vec3{0, 0.5, 0.5}, mgl32.Vec3{1, 0.5, 0.5}, zero, nil, nil, defaultConfig())
	if got.W() != 0 {
		t.Errorf("empty volume accumulated alpha %v, want 0", got.W())
	}
}

func TestCompositeRay_ThresholdGateIsHard(t *testing.T) {
	// Intensity 0.4 everywhere; a window excluding it must yield a fully
	// transparent ray, not a dimmed one.
	gray := func(u, v, w float32) float32 { return 0.4 }
	cfg := defaultConfig()
	cfg.MinNorm = 0.5
	cfg.MaxNorm = 1
	got := CompositeRay(mgl32.Vec3{0, 0.5, 0.5}, mgl32.Vec3{1, 0.5, 0.5}, gray, nil, nil, cfg)
	if got.W() != 0 {
		t.Errorf("gated sample accumulated alpha %v, want 0", got.W())
	}

	cfg.MinNorm = 0
	got = CompositeRay(mgl32.Vec3{0, 0.5, 0.5}, mgl32.Vec3{1, 0.5, 0.5}, gray, nil, nil, cfg)
	if got.W() == 0 {
		t.Error("in-window sample should accumulate opacity")
	}
}

func TestCompositeRay_EarlyTerminationHidesFarSegment(t *testing.T) {
	// An opaque label occupies the first half of the ray; a bright
	// grayscale region sits in the far half. The near segment saturates
	// the alpha, so the far segment must not tint the result.
	table := label.NewTable()
	table.SetVisibility(7, true)
	table.SetOpacity(7, 1)

	labelNear := func(u, v, w float32) float32 {
		if u < 0.5 {
			return 7.0 / 255.0
		}
		return 0
	}
	grayFar := func(u, v, w float32) float32 {
		if u >= 0.5 {
			return 1
		}
		return 0
	}

	cfg := defaultConfig()
	cfg.ShowLabels = true
	entry := mgl32.Vec3{0, 0.5, 0.5}
	exit := mgl32.Vec3{1, 0.5, 0.5}

	withFar := CompositeRay(entry, exit, grayFar, labelNear, table, cfg)
	withoutFar := CompositeRay(entry, exit,
		func(u, v, w float32) float32 { return 0 }, labelNear, table, cfg)

	if withFar != withoutFar {
		t.Errorf("far segment leaked through saturated alpha: with=%v without=%v",
			withFar, withoutFar)
	}
	if withFar.W() <= EarlyOutAlpha {
		t.Errorf("opaque near segment accumulated alpha %v, want > %v",
			withFar.W(), EarlyOutAlpha)
	}
}

func TestCompositeRay_HiddenLabelSkipped(t *testing.T) {
	table := label.NewTable()
	table.SetVisibility(3, false)

	labelFn := func(u, v, w float32) float32 { return 3.0 / 255.0 }
	zero := func(u, v, w float32) float32 { return 0 }

	cfg := defaultConfig()
	cfg.ShowGray = false
	cfg.ShowLabels = true
	got := CompositeRay(mgl32.Vec3{0, 0.5, 0.5}, mgl32.Vec3{1, 0.5, 0.5}, zero, labelFn, table, cfg)
	if got.W() != 0 {
		t.Errorf("hidden label accumulated alpha %v, want 0", got.W())
	}

	table.SetVisibility(3, true)
	got = CompositeRay(mgl32.Vec3{0, 0.5, 0.5}, mgl32.Vec3{1, 0.5, 0.5}, zero, labelFn, table, cfg)
	if got.W() == 0 {
		t.Error("visible label should accumulate opacity")
	}
	r, g, b := label.Color(3)
	want := mgl32.Vec3{r, g, b}
	gotRGB := mgl32.Vec3{got.X(), got.Y(), got.Z()}
	if gotRGB.Sub(want).Len() > 1e-4 {
		t.Errorf("uniform label ray color = %v, want %v", gotRGB, want)
	}
}

func TestCompositeRay_GrayConvergesToShade(t *testing.T) {
	gray := func(u, v, w float32) float32 { return 200.0 / 255.0 }
	cfg := defaultConfig()
	got := CompositeRay(mgl32.Vec3{0, 0.5, 0.5}, mgl32.Vec3{1, 0.5, 0.5}, gray, nil, nil, cfg)

	if got.W() <= EarlyOutAlpha {
		t.Fatalf("long uniform ray alpha = %v, want saturation past %v", got.W(), EarlyOutAlpha)
	}
	// Front-to-back accumulation of a constant color keeps RGB
	// proportional to alpha; dividing out alpha recovers the shade.
	want := ShadeGray(200.0/255.0, 0, 1)
	for i, c := range []float32{got.X(), got.Y(), got.Z()} {
		if diff := c/got.W() - want; diff > 1e-4 || diff < -1e-4 {
			t.Errorf("channel %d / alpha = %v, want %v", i, c/got.W(), want)
		}
	}
}

func TestShadeGray(t *testing.T) {
	tests := []struct {
		name                    string
		g, brightness, contrast float32
		want                    float32
	}{
		{"neutral", 0.5, 0, 1, 0.5},
		{"identity", 0.25, 0, 1, 0.25},
		{"brightness shifts", 0.5, 0.2, 1, 0.7},
		{"contrast expands", 0.75, 0, 2, 1},
		{"clamped low", 0.1, -1, 1, 0},
		{"clamped high", 0.9, 1, 1, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ShadeGray(tc.g, tc.brightness, tc.contrast)
			if diff := got - tc.want; diff > 1e-5 || diff < -1e-5 {
				t.Errorf("ShadeGray(%v,%v,%v) = %v, want %v",
					tc.g, tc.brightness, tc.contrast, got, tc.want)
			}
		})
	}
}
