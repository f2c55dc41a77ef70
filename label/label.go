// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

// Package label implements the per-label side channel: a 256-entry
// visibility/opacity table indexed by label ID, with ID 0 reserved as
// the "no label" background value.
package label

// ID is a segmented-material label identifier stored per voxel.
// Valid material IDs are 1..255; NoLabel marks unlabeled voxels and is
// never composited.
type ID uint8

// NoLabel is the reserved background label.
const NoLabel ID = 0

// TableSize is the number of entries in the side-channel tables.
const TableSize = 256

// Table holds the per-label visibility and opacity side channel.
//
// Labels default to invisible with opacity 1.0, so newly observed labels
// become fully opaque the moment a caller flips them visible. Setters
// clamp or ignore rather than fail; IDs outside [0,255] are no-ops.
//
// Table carries no synchronization: the renderer reads it once per frame
// on the rendering goroutine, and the surrounding application is expected
// to mutate it from that same goroutine.
type Table struct {
	visible [TableSize]bool
	opacity [TableSize]float32
}

// NewTable creates a side-channel table with every label invisible and
// opacity 1.0.
func NewTable() *Table {
	t := &Table{}
	for i := range t.opacity {
		t.opacity[i] = 1
	}
	return t
}

// SetVisibility sets whether the given label is composited.
// IDs outside [0,255] are silently ignored.
func (t *Table) SetVisibility(id int, visible bool) {
	if id < 0 || id >= TableSize {
		return
	}
	t.visible[id] = visible
}

// Visibility reports whether the given label is visible.
// IDs outside [0,255] report false.
func (t *Table) Visibility(id int) bool {
	if id < 0 || id >= TableSize {
		return false
	}
	return t.visible[id]
}

// SetOpacity sets the label's compositing alpha, clamped to [0,1].
// IDs outside [0,255] are silently ignored.
func (t *Table) SetOpacity(id int, opacity float32) {
	if id < 0 || id >= TableSize {
		return
	}
	t.opacity[id] = clamp01(opacity)
}

// Opacity returns the label's compositing alpha.
// IDs outside [0,255] report the default 1.0.
func (t *Table) Opacity(id int) float32 {
	if id < 0 || id >= TableSize {
		return 1
	}
	return t.opacity[id]
}

// VisibilitySnapshot returns a copy of the visibility table. The copy is
// detached: later setter calls do not affect it. Export collaborators use
// the snapshot to decide which labeled voxels to emit.
func (t *Table) VisibilitySnapshot() [TableSize]bool {
	return t.visible
}

// Build rebuilds the two flat GPU-upload tables from the current state:
// visibility as 0/1 floats and opacity in [0,1]. Called once per render
// so the GPU-side tables always reflect the most recent setter calls.
func (t *Table) Build(vis, opa *[TableSize]float32) {
	for i := 0; i < TableSize; i++ {
		if t.visible[i] {
			vis[i] = 1
		} else {
			vis[i] = 0
		}
		opa[i] = t.opacity[i]
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
