// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

package volren

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// SaveScreenshot renders a fresh frame and writes it to path. The
// format follows the file extension: .png, .bmp, .tif and .tiff are
// supported, and anything else falls back to PNG.
//
// The frame is rendered at the moment of the call, so the screenshot
// always reflects the latest state and camera even if no Render call
// happened since the last change.
func (v *Viewer) SaveScreenshot(path string) error {
	img, err := v.Render()
	if err != nil {
		return fmt.Errorf("volren: screenshot render: %w", err)
	}
	return writeImage(path, img, v)
}

func writeImage(path string, img *image.RGBA, v *Viewer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("volren: create %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmp":
		err = bmp.Encode(f, img)
	case ".tif", ".tiff":
		err = tiff.Encode(f, img, nil)
	case ".png":
		err = png.Encode(f, img)
	default:
		v.log.Warn("unknown screenshot extension, writing PNG", "path", path)
		err = png.Encode(f, img)
	}
	if err != nil {
		return fmt.Errorf("volren: encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("volren: close %s: %w", path, err)
	}
	return nil
}
