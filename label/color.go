// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

package label

import "github.com/chewxy/math32"

// Color returns the deterministic pseudo-color for a label ID.
// Hue walks the wheel in 37° steps so adjacent IDs land far apart:
// hue = (id × 37) mod 360, saturation 0.8, value 1.0.
//
// The same mapping is baked into the raymarch shader; changing one side
// without the other desynchronizes CPU and GPU label colors.
func Color(id ID) (r, g, b float32) {
	hue := float32(int(id)*37%360) / 360
	return hsvToRGB(hue, 0.8, 1.0)
}

// hsvToRGB converts hue/saturation/value (h in [0,1)) to RGB in [0,1].
func hsvToRGB(h, s, v float32) (r, g, b float32) {
	c := v * s
	x := c * (1 - math32.Abs(math32.Mod(h*6, 2)-1))
	m := v - c

	switch {
	case h < 1.0/6:
		r, g, b = c, x, 0
	case h < 2.0/6:
		r, g, b = x, c, 0
	case h < 3.0/6:
		r, g, b = 0, c, x
	case h < 4.0/6:
		r, g, b = 0, x, c
	case h < 5.0/6:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return r + m, g + m, b + m
}
