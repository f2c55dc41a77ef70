// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/ctviz/volren/camera"
	"github.com/ctviz/volren/label"
	"github.com/ctviz/volren/render"
	"github.com/ctviz/volren/volume"
)

// Renderer is the hardware implementation of render.Renderer. Each
// frame encodes three passes: exit-coordinate capture, the raymarch
// with optional slices, and, when a window surface is attached, a blit
// of the offscreen color target onto the swapchain.
type Renderer struct {
	dev    *Device
	ownDev bool

	vol    *volumeTexture
	labels *volumeTexture
	tables *labelTables
	table  *label.Table

	pipes *pipelines
	vp    *viewport

	surface       *wgpu.Surface
	surfaceFormat wgpu.TextureFormat

	uniformScratch [frameUniformSize]byte
	sliceScratch   [sliceUniformSize]byte
	sliceVertData  [3 * 4 * 12]byte

	log *slog.Logger
}

// Options configures the GPU renderer.
type Options struct {
	// Device lets callers share one device between renderers. When nil
	// a private device is acquired and owned.
	Device *Device

	// Surface, when set, enables the present path: every frame is
	// blitted to the surface after offscreen rendering.
	Surface *wgpu.Surface

	ForceFallbackAdapter bool

	Logger *slog.Logger
}

// New creates a GPU renderer over the given volumes. The grayscale
// volume is required; labels and table may be nil for unlabeled data.
func New(gray, labels volume.ChunkedSource, table *label.Table, width, height int, opts Options) (*Renderer, error) {
	if gray == nil {
		return nil, errors.New("gpu: grayscale volume is required")
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	r := &Renderer{
		dev:     opts.Device,
		table:   table,
		surface: opts.Surface,
		log:     log,
	}
	if r.dev == nil {
		dev, err := NewDevice(DeviceOptions{
			ForceFallbackAdapter: opts.ForceFallbackAdapter,
			Surface:              opts.Surface,
			Logger:               log,
		})
		if err != nil {
			return nil, err
		}
		r.dev = dev
		r.ownDev = true
	}

	if err := r.init(gray, labels, width, height); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *Renderer) init(gray, labels volume.ChunkedSource, width, height int) error {
	var err error
	if r.vol, err = buildVolumeTexture(r.dev, gray, "grayscale volume"); err != nil {
		return err
	}

	if labels != nil {
		if labels.Dims() != gray.Dims() {
			return fmt.Errorf("gpu: label dims %v do not match volume dims %v",
				labels.Dims(), gray.Dims())
		}
		if r.labels, err = buildVolumeTexture(r.dev, labels, "label volume"); err != nil {
			return err
		}
	} else {
		// The march bind group always needs a label texture; a 1-voxel
		// zero volume keeps every sample at the reserved background ID.
		empty, memErr := volume.NewInMemory(volume.Dims{W: 1, H: 1, D: 1}, 1)
		if memErr != nil {
			return memErr
		}
		if r.labels, err = buildVolumeTexture(r.dev, empty, "label volume (empty)"); err != nil {
			return err
		}
	}

	if r.tables, err = newLabelTables(r.dev); err != nil {
		return err
	}
	if r.pipes, err = newPipelines(r.dev, r.vol.view); err != nil {
		return err
	}
	if r.vp, err = newViewport(r.dev, r.pipes, r.tables, r.vol.view, r.labels.view, width, height); err != nil {
		return err
	}
	return nil
}

// SetLogger replaces the renderer's logger. Nil restores the silent
// default.
func (r *Renderer) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	r.log = l
}

// SetTable replaces the label side-channel table the renderer uploads
// before each frame. The viewer calls this when the renderer is
// injected, so its material commands drive this renderer.
func (r *Renderer) SetTable(t *label.Table) {
	r.table = t
}

// Resize destroys and recreates the size-dependent resources.
// When a surface is attached it is reconfigured to the new size.
func (r *Renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("gpu: invalid viewport %dx%d", width, height)
	}
	if r.vp != nil && r.vp.width == width && r.vp.height == height {
		return nil
	}
	r.vp.destroy()
	vp, err := newViewport(r.dev, r.pipes, r.tables, r.vol.view, r.labels.view, width, height)
	if err != nil {
		return err
	}
	r.vp = vp

	if r.surface != nil {
		if err := r.configureSurface(width, height); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) configureSurface(width, height int) error {
	caps := r.surface.GetCapabilities(r.dev.adapter)
	if len(caps.Formats) == 0 {
		return errors.New("gpu: surface reports no formats")
	}
	format := caps.Formats[0]

	r.surface.Configure(r.dev.adapter, r.dev.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	})

	if r.pipes.blitPipeline == nil || format != r.surfaceFormat {
		if r.pipes.blitPipeline != nil {
			r.pipes.blitPipeline.Release()
			r.pipes.blitPipeline = nil
		}
		if err := r.pipes.buildBlitPipeline(r.dev.device, format); err != nil {
			return err
		}
		r.surfaceFormat = format
	}
	return nil
}

// Render draws one frame. When target is CPU-accessible the offscreen
// color texture is read back into it; when a surface is attached the
// frame is also presented.
func (r *Renderer) Render(target render.Target, state *render.State, orbit camera.Orbit) error {
	if target == nil || state == nil {
		return errors.New("gpu: nil target or state")
	}
	if target.Width() != r.vp.width || target.Height() != r.vp.height {
		if err := r.Resize(target.Width(), target.Height()); err != nil {
			return err
		}
	}

	r.tables.sync(r.dev, r.table)

	mvp := camera.ViewProjection(r.vol.dims, orbit, r.vp.width, r.vp.height)
	cfg := render.ConfigFromState(state)
	encodeFrameUniforms(r.uniformScratch[:], mvp, cfg)
	r.dev.queue.WriteBuffer(r.pipes.frameUniforms, 0, r.uniformScratch[:])

	drawSlices := state.ShowOrthoslices()
	if drawSlices {
		encodeSliceUniforms(r.sliceScratch[:], mvp, cfg)
		r.dev.queue.WriteBuffer(r.pipes.sliceUniforms, 0, r.sliceScratch[:])
		r.writeSliceVertices(state)
	}

	encoder, err := r.dev.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("gpu: create encoder: %w", err)
	}
	defer encoder.Release()

	r.encodeExitPass(encoder)
	r.encodeMarchPass(encoder, drawSlices)
	r.encodeReadback(encoder, target)

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("gpu: finish encoder: %w", err)
	}
	r.dev.queue.Submit(cmd)
	cmd.Release()

	if target.Pixels() != nil {
		if err := r.copyReadback(target); err != nil {
			return err
		}
	}
	if r.surface != nil {
		if err := r.present(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) writeSliceVertices(state *render.State) {
	sx, sy, sz := state.Slices()
	quads := render.SliceQuads(r.vol.dims, sx, sy, sz)
	off := 0
	for _, q := range quads {
		for _, vert := range q {
			for _, c := range vert {
				putF32(r.sliceVertData[off:], c)
				off += 4
			}
		}
	}
	r.dev.queue.WriteBuffer(r.pipes.sliceVerts, 0, r.sliceVertData[:])
}

func (r *Renderer) encodeExitPass(encoder *wgpu.CommandEncoder) {
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "exit pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       r.vp.exitView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{},
			},
		},
	})
	pass.SetPipeline(r.pipes.exitPipeline)
	pass.SetBindGroup(0, r.pipes.exitGroup, nil)
	pass.SetVertexBuffer(0, r.pipes.cubeVerts, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(r.pipes.cubeIdx, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
	pass.DrawIndexed(uint32(len(render.CubeIndices)), 1, 0, 0, 0)
	pass.End()
	pass.Release()
}

func (r *Renderer) encodeMarchPass(encoder *wgpu.CommandEncoder, drawSlices bool) {
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "march pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       r.vp.colorView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            r.vp.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1,
		},
	})

	pass.SetPipeline(r.pipes.marchPipeline)
	pass.SetBindGroup(0, r.vp.marchGroup, nil)
	pass.SetVertexBuffer(0, r.pipes.cubeVerts, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(r.pipes.cubeIdx, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
	pass.DrawIndexed(uint32(len(render.CubeIndices)), 1, 0, 0, 0)

	if drawSlices {
		pass.SetPipeline(r.pipes.slicePipeline)
		pass.SetBindGroup(0, r.pipes.sliceGroup, nil)
		pass.SetVertexBuffer(0, r.pipes.sliceVerts, 0, wgpu.WholeSize)
		pass.SetIndexBuffer(r.pipes.sliceIdx, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
		pass.DrawIndexed(uint32(3*len(render.SliceQuadIndices)), 1, 0, 0, 0)
	}

	pass.End()
	pass.Release()
}

func (r *Renderer) encodeReadback(encoder *wgpu.CommandEncoder, target render.Target) {
	if target.Pixels() == nil {
		return
	}
	encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  r.vp.colorTex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.ImageCopyBuffer{
			Buffer: r.vp.readback,
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  r.vp.paddedBytesPerRow,
				RowsPerImage: uint32(r.vp.height),
			},
		},
		&wgpu.Extent3D{
			Width:              uint32(r.vp.width),
			Height:             uint32(r.vp.height),
			DepthOrArrayLayers: 1,
		},
	)
}

// copyReadback maps the staging buffer and copies each row into the
// target, dropping the per-row alignment padding. The texture origin is
// the top-left row, matching the target layout, so rows copy in order.
func (r *Renderer) copyReadback(target render.Target) error {
	var mapErr error
	done := false
	err := r.vp.readback.MapAsync(wgpu.MapModeRead, 0, r.vp.readback.GetSize(),
		func(status wgpu.BufferMapAsyncStatus) {
			if status != wgpu.BufferMapAsyncStatusSuccess {
				mapErr = fmt.Errorf("gpu: readback map failed: status %v", status)
			}
			done = true
		})
	if err != nil {
		return fmt.Errorf("gpu: readback map: %w", err)
	}
	for !done {
		r.dev.device.Poll(true, nil)
	}
	if mapErr != nil {
		r.vp.readback.Unmap()
		return mapErr
	}

	data := r.vp.readback.GetMappedRange(0, uint(r.vp.readback.GetSize()))
	pix := target.Pixels()
	stride := target.Stride()
	rowBytes := r.vp.width * 4
	for y := 0; y < r.vp.height; y++ {
		src := data[y*int(r.vp.paddedBytesPerRow):]
		copy(pix[y*stride:y*stride+rowBytes], src[:rowBytes])
	}
	r.vp.readback.Unmap()
	return nil
}

// present blits the offscreen color texture to the surface.
func (r *Renderer) present() error {
	if r.pipes.blitPipeline == nil {
		if err := r.configureSurface(r.vp.width, r.vp.height); err != nil {
			return err
		}
	}

	surfaceTex, err := r.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("gpu: acquire surface texture: %w", err)
	}
	view, err := surfaceTex.CreateView(nil)
	if err != nil {
		surfaceTex.Release()
		return fmt.Errorf("gpu: surface view: %w", err)
	}

	encoder, err := r.dev.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTex.Release()
		return fmt.Errorf("gpu: blit encoder: %w", err)
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "blit pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{},
			},
		},
	})
	pass.SetPipeline(r.pipes.blitPipeline)
	pass.SetBindGroup(0, r.vp.blitGroup, nil)
	pass.Draw(3, 1, 0, 0)
	pass.End()
	pass.Release()

	cmd, err := encoder.Finish(nil)
	encoder.Release()
	if err != nil {
		view.Release()
		surfaceTex.Release()
		return fmt.Errorf("gpu: finish blit: %w", err)
	}
	r.dev.queue.Submit(cmd)
	cmd.Release()

	r.surface.Present()
	view.Release()
	surfaceTex.Release()
	return nil
}

// Close releases all GPU resources in dependency order. The device is
// released only if this renderer created it.
func (r *Renderer) Close() error {
	if r.vp != nil {
		r.vp.destroy()
		r.vp = nil
	}
	if r.pipes != nil {
		r.pipes.destroy()
		r.pipes = nil
	}
	if r.tables != nil {
		r.tables.destroy()
		r.tables = nil
	}
	r.labels.destroy()
	r.labels = nil
	r.vol.destroy()
	r.vol = nil
	if r.ownDev && r.dev != nil {
		r.dev.Close()
		r.dev = nil
	}
	return nil
}

var _ render.Renderer = (*Renderer)(nil)
