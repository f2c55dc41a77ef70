// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// viewport bundles every size-dependent GPU resource: the exit-coordinate
// buffer pass A renders into, the depth attachment the slice pass tests
// against, the offscreen color target, the readback staging buffer, and
// the bind groups referencing any of them. Resize destroys the whole
// bundle and builds a new one before the next frame.
type viewport struct {
	width, height int

	exitTex  *wgpu.Texture
	exitView *wgpu.TextureView

	depthTex  *wgpu.Texture
	depthView *wgpu.TextureView

	colorTex  *wgpu.Texture
	colorView *wgpu.TextureView

	// Readback rows are padded to the copy alignment; paddedBytesPerRow
	// is the stride inside readback, width*4 the tight row size.
	readback          *wgpu.Buffer
	paddedBytesPerRow uint32

	marchGroup *wgpu.BindGroup
	blitGroup  *wgpu.BindGroup
}

func alignBytesPerRow(rowBytes uint32) uint32 {
	const align = wgpu.CopyBytesPerRowAlignment
	return (rowBytes + align - 1) / align * align
}

func newViewport(d *Device, p *pipelines, labels *labelTables, volView, labelView *wgpu.TextureView, width, height int) (*viewport, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("gpu: invalid viewport %dx%d", width, height)
	}
	v := &viewport{width: width, height: height}
	if err := v.init(d, p, labels, volView, labelView); err != nil {
		v.destroy()
		return nil, err
	}
	d.log.Debug("viewport resources created", "width", width, "height", height)
	return v, nil
}

func (v *viewport) init(d *Device, p *pipelines, labels *labelTables, volView, labelView *wgpu.TextureView) error {
	dev := d.device
	size := wgpu.Extent3D{
		Width:              uint32(v.width),
		Height:             uint32(v.height),
		DepthOrArrayLayers: 1,
	}

	var err error
	v.exitTex, err = dev.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "exit coordinates",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        exitFormat,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return fmt.Errorf("gpu: exit texture: %w", err)
	}
	if v.exitView, err = v.exitTex.CreateView(nil); err != nil {
		return fmt.Errorf("gpu: exit view: %w", err)
	}

	v.depthTex, err = dev.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "slice depth",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        depthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("gpu: depth texture: %w", err)
	}
	if v.depthView, err = v.depthTex.CreateView(nil); err != nil {
		return fmt.Errorf("gpu: depth view: %w", err)
	}

	v.colorTex, err = dev.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "offscreen color",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        colorFormat,
		Usage: wgpu.TextureUsageRenderAttachment |
			wgpu.TextureUsageCopySrc |
			wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return fmt.Errorf("gpu: color texture: %w", err)
	}
	if v.colorView, err = v.colorTex.CreateView(nil); err != nil {
		return fmt.Errorf("gpu: color view: %w", err)
	}

	v.paddedBytesPerRow = alignBytesPerRow(uint32(v.width) * 4)
	v.readback, err = dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "readback",
		Size:  uint64(v.paddedBytesPerRow) * uint64(v.height),
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: readback buffer: %w", err)
	}

	if v.marchGroup, err = p.marchBindGroup(dev, volView, labelView, v.exitView, labels.visView, labels.opaView); err != nil {
		return err
	}
	if v.blitGroup, err = p.blitBindGroup(dev, v.colorView); err != nil {
		return err
	}
	return nil
}

func (v *viewport) destroy() {
	if v == nil {
		return
	}
	if v.marchGroup != nil {
		v.marchGroup.Release()
	}
	if v.blitGroup != nil {
		v.blitGroup.Release()
	}
	if v.readback != nil {
		v.readback.Release()
	}
	for _, view := range []*wgpu.TextureView{v.exitView, v.depthView, v.colorView} {
		if view != nil {
			view.Release()
		}
	}
	for _, tex := range []*wgpu.Texture{v.exitTex, v.depthTex, v.colorTex} {
		if tex != nil {
			tex.Release()
		}
	}
	*v = viewport{}
}
