// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/ctviz/volren/label"
)

// labelTables holds the two 256-entry side-channel textures: visibility
// as 0/1 floats and opacity in [0,1], both 1D R32Float so the shader
// indexes them with textureLoad. They are rewritten from the CPU table
// before every frame, so setter calls between frames always take effect
// on the next Render.
type labelTables struct {
	visTex  *wgpu.Texture
	visView *wgpu.TextureView
	opaTex  *wgpu.Texture
	opaView *wgpu.TextureView

	staging [label.TableSize * 4]byte
}

func newLabelTables(d *Device) (*labelTables, error) {
	t := &labelTables{}
	var err error
	if t.visTex, t.visView, err = create1DTable(d, "label visibility"); err != nil {
		return nil, err
	}
	if t.opaTex, t.opaView, err = create1DTable(d, "label opacity"); err != nil {
		t.destroy()
		return nil, err
	}
	return t, nil
}

func create1DTable(d *Device, name string) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: name,
		Size: wgpu.Extent3D{
			Width:              label.TableSize,
			Height:             1,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension1D,
		Format:        wgpu.TextureFormatR32Float,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("gpu: create %s table: %w", name, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("gpu: create %s view: %w", name, err)
	}
	return tex, view, nil
}

// sync uploads the current table contents. A nil table uploads all
// zeros, hiding every label.
func (t *labelTables) sync(d *Device, table *label.Table) {
	var vis, opa [label.TableSize]float32
	if table != nil {
		table.Build(&vis, &opa)
	}
	t.write(d, t.visTex, &vis)
	t.write(d, t.opaTex, &opa)
}

func (t *labelTables) write(d *Device, tex *wgpu.Texture, values *[label.TableSize]float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(t.staging[i*4:], math.Float32bits(v))
	}
	d.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		t.staging[:],
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  label.TableSize * 4,
			RowsPerImage: 1,
		},
		&wgpu.Extent3D{Width: label.TableSize, Height: 1, DepthOrArrayLayers: 1},
	)
}

func (t *labelTables) destroy() {
	if t == nil {
		return
	}
	for _, view := range []*wgpu.TextureView{t.visView, t.opaView} {
		if view != nil {
			view.Release()
		}
	}
	for _, tex := range []*wgpu.Texture{t.visTex, t.opaTex} {
		if tex != nil {
			tex.Release()
		}
	}
	t.visTex, t.visView, t.opaTex, t.opaView = nil, nil, nil, nil
}
