// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"strings"
	"testing"

	"github.com/gogpu/naga"
)

func TestValidate(t *testing.T) {
	if err := Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestSources_EntryPoints(t *testing.T) {
	tests := []struct {
		asset  string
		source string
		wants  []string
	}{
		{"raymarch.wgsl", RaymarchWGSL, []string{"vs_cube", "fs_exit", "fs_march"}},
		{"slice.wgsl", SliceWGSL, []string{"vs_slice", "fs_slice"}},
		{"blit.wgsl", BlitWGSL, []string{"vs_blit", "fs_blit"}},
	}
	for _, tc := range tests {
		for _, entry := range tc.wants {
			if !strings.Contains(tc.source, "fn "+entry) {
				t.Errorf("%s: missing entry point %s", tc.asset, entry)
			}
		}
	}
}

func TestCompile_Individually(t *testing.T) {
	for name, src := range Sources() {
		t.Run(name, func(t *testing.T) {
			spirv, err := naga.Compile(src)
			if err != nil {
				t.Fatalf("naga.Compile: %v", err)
			}
			if len(spirv) == 0 || len(spirv)%4 != 0 {
				t.Errorf("SPIR-V output length %d, want nonzero multiple of 4", len(spirv))
			}
		})
	}
}
