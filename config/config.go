// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

// Package config loads viewer settings from YAML files and provides
// default values.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings is the viewer configuration loaded from YAML. Every value
// passes through the same clamping setters the interactive commands
// use, so a file with out-of-range values degrades to the nearest
// valid state rather than failing.
type Settings struct {
	// Rendering parameters.
	Render struct {
		// MinThreshold and MaxThreshold bound the visible intensity
		// window in raw 8-bit units.
		MinThreshold int `yaml:"minThreshold"`
		MaxThreshold int `yaml:"maxThreshold"`

		// StepSize is the raymarch sampling distance in normalized
		// volume units. Zero keeps the renderer default.
		StepSize float32 `yaml:"stepSize"`

		ShowGrayscale   bool `yaml:"showGrayscale"`
		ShowOrthoslices bool `yaml:"showOrthoslices"`
		ShowLabels      bool `yaml:"showLabels"`

		// Brightness in [-1,1] and contrast in [0.1,5].
		Brightness float32 `yaml:"brightness"`
		Contrast   float32 `yaml:"contrast"`

		// Backend selects "software" or "gpu".
		Backend string `yaml:"backend"`
	} `yaml:"render"`

	// Slice plane positions in voxel indices. Negative values keep the
	// volume-center default.
	Slices struct {
		X int `yaml:"x"`
		Y int `yaml:"y"`
		Z int `yaml:"z"`
	} `yaml:"slices"`

	// Camera orbit parameters.
	Camera struct {
		Yaw      float32 `yaml:"yaw"`
		Pitch    float32 `yaml:"pitch"`
		Distance float32 `yaml:"distance"`
	} `yaml:"camera"`

	// Labels configures the per-label side channel: IDs listed in
	// Visible start visible, and Opacity overrides the default 1.0
	// per label ID.
	Labels struct {
		Visible []int           `yaml:"visible"`
		Opacity map[int]float32 `yaml:"opacity"`
	} `yaml:"labels"`

	// Viewport size for offscreen rendering.
	Viewport struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"viewport"`
}

// Default returns the settings matching a freshly constructed viewer:
// full intensity window, grayscale and labels on, slices off.
func Default() *Settings {
	s := &Settings{}
	s.Render.MinThreshold = 0
	s.Render.MaxThreshold = 255
	s.Render.ShowGrayscale = true
	s.Render.ShowLabels = true
	s.Render.Contrast = 1
	s.Render.Backend = "software"
	s.Slices.X = -1
	s.Slices.Y = -1
	s.Slices.Z = -1
	s.Camera.Yaw = 0.6
	s.Camera.Pitch = 0.4
	s.Camera.Distance = 2.5
	s.Viewport.Width = 800
	s.Viewport.Height = 600
	return s
}

// Load reads settings from a YAML file. A missing file returns the
// defaults.
func Load(path string) (*Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes settings from in-memory YAML on top of the defaults.
func Parse(data []byte) (*Settings, error) {
	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	return s, nil
}

// Save writes the settings to a YAML file.
func Save(s *Settings, path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
