// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

// Package gpu implements the hardware rendering backend on top of
// WebGPU. It owns the device, the volume and label textures, the
// raymarch and slice pipelines, and the per-viewport attachments, and
// exposes a renderer the facade package drives.
package gpu

import (
	"fmt"
	"log/slog"

	"github.com/cogentcore/webgpu/wgpu"
)

// Device bundles the WebGPU instance, adapter, device and queue.
// One Device can back multiple renderers, though the viewer only ever
// creates one.
type Device struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	log *slog.Logger
}

// DeviceOptions controls adapter selection.
type DeviceOptions struct {
	// ForceFallbackAdapter requests the software rasterizer adapter,
	// useful in CI where no hardware adapter exists.
	ForceFallbackAdapter bool

	// Surface, when non-nil, constrains adapter selection to one
	// compatible with the window surface the frames present to.
	Surface *wgpu.Surface

	Logger *slog.Logger
}

// NewDevice acquires an adapter and device. Spec default limits are
// sufficient: the largest resource is the 3D volume texture, and the
// default MaxTextureDimension3D of 2048 comfortably covers CT series.
func NewDevice(opts DeviceOptions) (*Device, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	instance := wgpu.CreateInstance(nil)

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: opts.ForceFallbackAdapter,
		CompatibleSurface:    opts.Surface,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("gpu: request adapter: %w", err)
	}

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("gpu: request device: %w", err)
	}

	log.Info("gpu device acquired")
	return &Device{
		instance: instance,
		adapter:  adapter,
		device:   device,
		queue:    device.GetQueue(),
		log:      log,
	}, nil
}

// Raw returns the underlying wgpu device for surface configuration.
func (d *Device) Raw() *wgpu.Device { return d.device }

// Adapter returns the wgpu adapter for surface capability queries.
func (d *Device) Adapter() *wgpu.Adapter { return d.adapter }

// Queue returns the device's submission queue.
func (d *Device) Queue() *wgpu.Queue { return d.queue }

// Close releases the device chain in dependency order.
func (d *Device) Close() error {
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
	return nil
}
