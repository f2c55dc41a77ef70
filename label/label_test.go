// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

package label

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestTable_VisibilityRoundTrip(t *testing.T) {
	tb := NewTable()
	for id := 1; id < TableSize; id++ {
		tb.SetVisibility(id, true)
		if !tb.Visibility(id) {
			t.Fatalf("Visibility(%d) = false after SetVisibility(true)", id)
		}
		tb.SetVisibility(id, false)
		if tb.Visibility(id) {
			t.Fatalf("Visibility(%d) = true after SetVisibility(false)", id)
		}
	}
}

func TestTable_OutOfRangeIgnored(t *testing.T) {
	tb := NewTable()
	for _, id := range []int{-1, 256, 300, 1 << 20} {
		tb.SetVisibility(id, true)
		tb.SetOpacity(id, 0.25)
		if tb.Visibility(id) {
			t.Errorf("Visibility(%d) = true, want default false", id)
		}
		if got := tb.Opacity(id); got != 1 {
			t.Errorf("Opacity(%d) = %v, want default 1", id, got)
		}
	}
}

func TestTable_OpacityClamped(t *testing.T) {
	tests := []struct {
		in   float32
		want float32
	}{
		{0.5, 0.5},
		{0, 0},
		{1, 1},
		{-0.3, 0},
		{2.5, 1},
	}
	tb := NewTable()
	for _, tt := range tests {
		tb.SetOpacity(7, tt.in)
		if got := tb.Opacity(7); got != tt.want {
			t.Errorf("SetOpacity(7, %v); Opacity(7) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTable_SnapshotIsDetached(t *testing.T) {
	tb := NewTable()
	tb.SetVisibility(3, true)

	snap := tb.VisibilitySnapshot()
	tb.SetVisibility(3, false)
	tb.SetVisibility(9, true)

	if !snap[3] {
		t.Error("snapshot lost the value it was taken with")
	}
	if snap[9] {
		t.Error("snapshot tracked a later mutation")
	}
}

func TestTable_Build(t *testing.T) {
	tb := NewTable()
	tb.SetVisibility(1, true)
	tb.SetOpacity(1, 0.5)
	tb.SetOpacity(2, 0.75)

	var vis, opa [TableSize]float32
	tb.Build(&vis, &opa)

	if vis[0] != 0 {
		t.Error("background label built visible")
	}
	if vis[1] != 1 {
		t.Error("vis[1] = 0, want 1")
	}
	if opa[1] != 0.5 || opa[2] != 0.75 {
		t.Errorf("opa[1]=%v opa[2]=%v, want 0.5, 0.75", opa[1], opa[2])
	}
	if opa[0] != 1 {
		t.Errorf("opa[0] = %v, want default 1", opa[0])
	}
}

func TestColor_Deterministic(t *testing.T) {
	r1, g1, b1 := Color(42)
	r2, g2, b2 := Color(42)
	if r1 != r2 || g1 != g2 || b1 != b2 {
		t.Error("Color(42) not deterministic")
	}
}

func TestColor_InRange(t *testing.T) {
	for id := 0; id < TableSize; id++ {
		r, g, b := Color(ID(id))
		for _, c := range []float32{r, g, b} {
			if c < 0 || c > 1 {
				t.Fatalf("Color(%d) component %v out of [0,1]", id, c)
			}
		}
		// s=0.8, v=1.0: max channel is always 1, min is always 0.2.
		maxc := math32.Max(r, math32.Max(g, b))
		if math32.Abs(maxc-1) > 1e-5 {
			t.Fatalf("Color(%d) max channel = %v, want 1", id, maxc)
		}
	}
}

func TestColor_AdjacentIDsDiffer(t *testing.T) {
	for id := 1; id < TableSize-1; id++ {
		r1, g1, b1 := Color(ID(id))
		r2, g2, b2 := Color(ID(id + 1))
		if r1 == r2 && g1 == g2 && b1 == b2 {
			t.Fatalf("Color(%d) == Color(%d)", id, id+1)
		}
	}
}
