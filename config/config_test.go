// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	s := Default()
	if s.Render.MinThreshold != 0 || s.Render.MaxThreshold != 255 {
		t.Errorf("default window = [%d,%d], want [0,255]",
			s.Render.MinThreshold, s.Render.MaxThreshold)
	}
	if !s.Render.ShowGrayscale || !s.Render.ShowLabels || s.Render.ShowOrthoslices {
		t.Error("default flags: grayscale and labels on, orthoslices off")
	}
	if s.Render.Contrast != 1 {
		t.Errorf("default contrast = %v, want 1", s.Render.Contrast)
	}
}

func TestParse_OverridesDefaults(t *testing.T) {
	data := []byte(`
render:
  minThreshold: 40
  maxThreshold: 180
  stepSize: 0.002
  showOrthoslices: true
  backend: gpu
slices:
  z: 17
labels:
  visible: [1, 3, 9]
  opacity:
    3: 0.5
`)
	s, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Render.MinThreshold != 40 || s.Render.MaxThreshold != 180 {
		t.Errorf("window = [%d,%d], want [40,180]", s.Render.MinThreshold, s.Render.MaxThreshold)
	}
	if s.Render.StepSize != 0.002 {
		t.Errorf("stepSize = %v, want 0.002", s.Render.StepSize)
	}
	if !s.Render.ShowOrthoslices {
		t.Error("showOrthoslices not parsed")
	}
	if s.Render.Backend != "gpu" {
		t.Errorf("backend = %q, want gpu", s.Render.Backend)
	}
	// Unspecified fields keep their defaults.
	if !s.Render.ShowGrayscale {
		t.Error("showGrayscale should default true when unset")
	}
	if s.Slices.Z != 17 || s.Slices.X != -1 {
		t.Errorf("slices = %d,%d, want z=17 with x default -1", s.Slices.X, s.Slices.Z)
	}
	if len(s.Labels.Visible) != 3 || s.Labels.Visible[1] != 3 {
		t.Errorf("visible labels = %v", s.Labels.Visible)
	}
	if s.Labels.Opacity[3] != 0.5 {
		t.Errorf("opacity[3] = %v, want 0.5", s.Labels.Opacity[3])
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("render: [not a map]")); err == nil {
		t.Error("invalid YAML should fail")
	}
}

func TestLoadSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "viewer.yaml")

	s := Default()
	s.Render.MinThreshold = 77
	s.Camera.Distance = 4.5
	if err := Save(s, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Render.MinThreshold != 77 {
		t.Errorf("minThreshold = %d, want 77", loaded.Render.MinThreshold)
	}
	if loaded.Camera.Distance != 4.5 {
		t.Errorf("camera distance = %v, want 4.5", loaded.Camera.Distance)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Render.MaxThreshold != 255 {
		t.Error("missing file should return defaults")
	}
}

func TestLoad_UnreadableFile(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "viewer.yaml")
	if err := os.WriteFile(path, []byte("render: {}"), 0o000); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("unreadable file should fail")
	}
}
