// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

// Command volren renders one frame of a raw 8-bit volume to an image
// file. It exists for headless use: smoke-testing a dataset, producing
// thumbnails, and exercising the GPU backend outside a window loop.
//
// Usage:
//
//	volren -volume ct.raw -dims 256x256x113 -out frame.png
//	volren -volume ct.raw -dims 256x256x113 -labels seg.raw \
//	    -config viewer.yaml -out frame.png
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/ctviz/volren"
	"github.com/ctviz/volren/config"
	"github.com/ctviz/volren/gpu"
	"github.com/ctviz/volren/volume"
)

// chunkDim is the edge length volumes are re-chunked to after loading.
const chunkDim = 32

func main() {
	var (
		volumePath = flag.String("volume", "", "raw 8-bit grayscale volume file (required)")
		labelsPath = flag.String("labels", "", "raw 8-bit label volume file")
		dimsSpec   = flag.String("dims", "", "volume dimensions as WxHxD (required)")
		configPath = flag.String("config", "", "viewer settings YAML")
		outPath    = flag.String("out", "frame.png", "output image (.png, .bmp, .tiff)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	volren.SetLogger(log)

	if err := run(*volumePath, *labelsPath, *dimsSpec, *configPath, *outPath, log); err != nil {
		log.Error("render failed", "err", err)
		os.Exit(1)
	}
}

func run(volumePath, labelsPath, dimsSpec, configPath, outPath string, log *slog.Logger) error {
	if volumePath == "" || dimsSpec == "" {
		return fmt.Errorf("both -volume and -dims are required")
	}

	dims, err := parseDims(dimsSpec)
	if err != nil {
		return err
	}

	gray, err := loadRaw(volumePath, dims)
	if err != nil {
		return err
	}
	log.Info("volume loaded", "path", volumePath, "w", dims.W, "h", dims.H, "d", dims.D)

	settings := config.Default()
	if configPath != "" {
		if settings, err = config.Load(configPath); err != nil {
			return err
		}
	}

	opts := []volren.Option{
		volren.WithSize(settings.Viewport.Width, settings.Viewport.Height),
		volren.WithSettings(settings),
	}

	var labels volume.ChunkedSource
	if labelsPath != "" {
		mem, err := loadRaw(labelsPath, dims)
		if err != nil {
			return err
		}
		labels = mem
		opts = append(opts, volren.WithLabels(mem))
		log.Info("labels loaded", "path", labelsPath)
	}

	if settings.Render.Backend == "gpu" {
		r, err := gpu.New(gray, labels, nil,
			settings.Viewport.Width, settings.Viewport.Height,
			gpu.Options{Logger: log})
		if err != nil {
			return fmt.Errorf("gpu backend: %w", err)
		}
		opts = append(opts, volren.WithRenderer(r))
	}

	viewer, err := volren.New(gray, opts...)
	if err != nil {
		return err
	}
	defer viewer.Close()

	if err := viewer.SaveScreenshot(outPath); err != nil {
		return err
	}
	log.Info("frame written", "path", outPath)
	return nil
}

func parseDims(spec string) (volume.Dims, error) {
	var d volume.Dims
	if _, err := fmt.Sscanf(spec, "%dx%dx%d", &d.W, &d.H, &d.D); err != nil {
		return d, fmt.Errorf("invalid -dims %q, want WxHxD: %w", spec, err)
	}
	if !d.Valid() {
		return d, fmt.Errorf("invalid -dims %q", spec)
	}
	return d, nil
}

func loadRaw(path string, d volume.Dims) (*volume.InMemory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	v, err := volume.FromBytes(d, chunkDim, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}
