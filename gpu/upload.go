// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/ctviz/volren/volume"
)

// volumeTexture is a 3D R8Unorm texture assembled from a chunked source,
// plus its sampled view.
type volumeTexture struct {
	tex  *wgpu.Texture
	view *wgpu.TextureView
	dims volume.Dims
}

// buildVolumeTexture uploads a chunked volume into a 3D texture.
//
// Chunks are full cubes even at the volume edges, so each chunk's
// in-volume extent is clipped first, then its z-layers are written one
// sub-region at a time. WriteTexture has no row alignment requirement,
// which keeps edge chunks simple: a clipped layer is gathered into a
// tight scanline buffer and written with BytesPerRow equal to the
// clipped width.
func buildVolumeTexture(d *Device, src volume.ChunkedSource, name string) (*volumeTexture, error) {
	dims := src.Dims()
	if !dims.Valid() {
		return nil, fmt.Errorf("gpu: invalid volume dims %v", dims)
	}

	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: name,
		Size: wgpu.Extent3D{
			Width:              uint32(dims.W),
			Height:             uint32(dims.H),
			DepthOrArrayLayers: uint32(dims.D),
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension3D,
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create %s texture: %w", name, err)
	}

	chunkDim := src.ChunkDim()
	ncx, ncy, ncz := src.ChunkCounts()
	layer := make([]byte, chunkDim*chunkDim)

	for cz := 0; cz < ncz; cz++ {
		for cy := 0; cy < ncy; cy++ {
			for cx := 0; cx < ncx; cx++ {
				data := src.ChunkData(cx, cy, cz)
				ox, oy, oz := volume.ChunkOrigin(chunkDim, cx, cy, cz)
				ew, eh, ed := volume.ChunkExtent(dims, chunkDim, cx, cy, cz)

				for z := 0; z < ed; z++ {
					volume.GatherLayer(data, chunkDim, z, ew, eh, layer)
					d.queue.WriteTexture(
						&wgpu.ImageCopyTexture{
							Texture:  tex,
							MipLevel: 0,
							Origin:   wgpu.Origin3D{X: uint32(ox), Y: uint32(oy), Z: uint32(oz + z)},
							Aspect:   wgpu.TextureAspectAll,
						},
						layer[:ew*eh],
						&wgpu.TextureDataLayout{
							Offset:       0,
							BytesPerRow:  uint32(ew),
							RowsPerImage: uint32(eh),
						},
						&wgpu.Extent3D{
							Width:              uint32(ew),
							Height:             uint32(eh),
							DepthOrArrayLayers: 1,
						},
					)
				}
			}
		}
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("gpu: create %s view: %w", name, err)
	}

	d.log.Debug("volume texture uploaded",
		"name", name, "w", dims.W, "h", dims.H, "d", dims.D,
		"chunks", ncx*ncy*ncz)
	return &volumeTexture{tex: tex, view: view, dims: dims}, nil
}

func (v *volumeTexture) destroy() {
	if v == nil {
		return
	}
	if v.view != nil {
		v.view.Release()
		v.view = nil
	}
	if v.tex != nil {
		v.tex.Release()
		v.tex = nil
	}
}
