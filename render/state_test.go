// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

package render

import (
	"testing"

	"github.com/ctviz/volren/volume"
)

func TestState_Defaults(t *testing.T) {
	s := NewState(volume.Dims{W: 16, H: 16, D: 16})
	if got := s.MinThreshold(); got != 0 {
		t.Errorf("MinThreshold() = %d, want 0", got)
	}
	if got := s.MaxThreshold(); got != 255 {
		t.Errorf("MaxThreshold() = %d, want 255", got)
	}
	if !s.ShowGrayscale() {
		t.Error("grayscale should default on")
	}
	if s.ShowOrthoslices() {
		t.Error("orthoslices should default off")
	}
	if !s.ShowLabels() {
		t.Error("labels should default on")
	}
	x, y, z := s.Slices()
	if x != 8 || y != 8 || z != 8 {
		t.Errorf("Slices() = %d,%d,%d, want centers 8,8,8", x, y, z)
	}
}

func TestState_ThresholdRoundTrip(t *testing.T) {
	s := NewState(volume.Dims{W: 8, H: 8, D: 8})
	tests := []struct {
		set  int
		want int
	}{
		{0, 0},
		{1, 1},
		{100, 100},
		{254, 254},
		{255, 255},
		{-10, 0},
		{300, 255},
	}
	for _, tc := range tests {
		s.SetMaxThreshold(255)
		s.SetMinThreshold(tc.set)
		if got := s.MinThreshold(); got != tc.want {
			t.Errorf("SetMinThreshold(%d): MinThreshold() = %d, want %d", tc.set, got, tc.want)
		}
	}
}

func TestState_ThresholdOrderingMaintained(t *testing.T) {
	s := NewState(volume.Dims{W: 8, H: 8, D: 8})

	s.SetMinThreshold(200)
	s.SetMaxThreshold(100)
	if min, max := s.MinThreshold(), s.MaxThreshold(); min > max {
		t.Errorf("min %d > max %d after lowering max below min", min, max)
	}

	s.SetMaxThreshold(50)
	s.SetMinThreshold(120)
	if min, max := s.MinThreshold(), s.MaxThreshold(); min > max {
		t.Errorf("min %d > max %d after raising min above max", min, max)
	}
}

func TestState_StepSizeIgnoresNonPositive(t *testing.T) {
	s := NewState(volume.Dims{W: 8, H: 8, D: 8})
	def := s.StepSize()
	s.SetStepSize(0)
	if s.StepSize() != def {
		t.Error("zero step size should be ignored")
	}
	s.SetStepSize(-0.5)
	if s.StepSize() != def {
		t.Error("negative step size should be ignored")
	}
	s.SetStepSize(0.01)
	if s.StepSize() != 0.01 {
		t.Errorf("StepSize() = %v, want 0.01", s.StepSize())
	}
}

func TestState_UpdateSlicesClamped(t *testing.T) {
	s := NewState(volume.Dims{W: 10, H: 20, D: 30})
	s.UpdateSlices(-5, 100, 15)
	x, y, z := s.Slices()
	if x != 0 {
		t.Errorf("slice x = %d, want clamped 0", x)
	}
	if y != 19 {
		t.Errorf("slice y = %d, want clamped 19", y)
	}
	if z != 15 {
		t.Errorf("slice z = %d, want 15", z)
	}
}

func TestState_ContrastClamped(t *testing.T) {
	s := NewState(volume.Dims{W: 8, H: 8, D: 8})
	s.SetContrast(0)
	if got := s.Contrast(); got != minContrast {
		t.Errorf("Contrast() = %v, want clamp to %v", got, minContrast)
	}
	s.SetContrast(100)
	if got := s.Contrast(); got != maxContrast {
		t.Errorf("Contrast() = %v, want clamp to %v", got, maxContrast)
	}
}

func TestState_BrightnessClamped(t *testing.T) {
	s := NewState(volume.Dims{W: 8, H: 8, D: 8})
	s.SetBrightness(-3)
	if got := s.Brightness(); got != -1 {
		t.Errorf("Brightness() = %v, want -1", got)
	}
	s.SetBrightness(3)
	if got := s.Brightness(); got != 1 {
		t.Errorf("Brightness() = %v, want 1", got)
	}
}
