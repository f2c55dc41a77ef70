// Copyright 2026 The volren Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/ctviz/volren/camera"
	"github.com/ctviz/volren/label"
	"github.com/ctviz/volren/volume"
)

// nearEpsilon rejects triangles touching the near plane. The CPU path
// does not clip; an orbit camera stays outside the volume, so partially
// clipped cube faces only occur when the caller zooms inside the box.
const nearEpsilon = 1e-4

// SoftwareRenderer is the CPU implementation of the two-pass volume
// raymarcher. It rasterizes the bounding cube exactly like the GPU path:
// pass A writes back-face exit coordinates into a float buffer, pass B
// walks front-face pixels from entry to exit through the shared
// compositing core. Orthogonal slices draw afterwards with their own
// depth test.
//
// It exists so the full rendering semantics run headless: in tests and
// in the viewer command on machines without a usable GPU.
type SoftwareRenderer struct {
	gray   *volume.Sampler
	labels *volume.Sampler
	table  *label.Table
	dims   volume.Dims

	width, height int
	exitBuf       []float32 // w*h*4, normalized exit coordinates
	depthBuf      []float32 // w*h, slice-pass depth
	marchMask     []bool    // w*h, pixels already composited this frame

	log *slog.Logger
}

// NewSoftware creates a software renderer over the given volumes.
// The grayscale volume is required; the label volume and table may be nil.
// Construction assembles both volumes into flat arrays of W*H*D bytes
// each, the CPU analogue of full GPU residency.
func NewSoftware(gray, labels volume.ChunkedSource, table *label.Table, width, height int) (*SoftwareRenderer, error) {
	if gray == nil {
		return nil, errors.New("render: grayscale volume is required")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("render: invalid viewport %dx%d", width, height)
	}
	r := &SoftwareRenderer{
		gray: volume.NewSampler(gray),
		dims: gray.Dims(),
		log:  slog.New(slog.DiscardHandler),
	}
	if labels != nil {
		if labels.Dims() != r.dims {
			return nil, fmt.Errorf("render: label dims %v do not match volume dims %v",
				labels.Dims(), r.dims)
		}
		r.labels = volume.NewSampler(labels)
		r.table = table
	}
	if err := r.Resize(width, height); err != nil {
		return nil, err
	}
	return r, nil
}

// SetLogger replaces the renderer's logger. Nil restores the silent
// default.
func (r *SoftwareRenderer) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	r.log = l
}

// SetTable replaces the label side-channel table used when compositing.
func (r *SoftwareRenderer) SetTable(t *label.Table) {
	r.table = t
}

// Resize recreates the exit and depth buffers at the new viewport size.
func (r *SoftwareRenderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("render: invalid viewport %dx%d", width, height)
	}
	r.width = width
	r.height = height
	r.exitBuf = make([]float32, width*height*4)
	r.depthBuf = make([]float32, width*height)
	r.marchMask = make([]bool, width*height)
	r.log.Debug("software viewport resized", "width", width, "height", height)
	return nil
}

// Close releases the renderer's buffers.
func (r *SoftwareRenderer) Close() error {
	r.exitBuf = nil
	r.depthBuf = nil
	r.marchMask = nil
	r.gray = nil
	r.labels = nil
	return nil
}

// Render draws one frame. The target must be CPU-accessible.
func (r *SoftwareRenderer) Render(target Target, state *State, orbit camera.Orbit) error {
	if target == nil || state == nil {
		return errors.New("render: nil target or state")
	}
	if target.Pixels() == nil {
		return errors.New("render: software renderer requires a CPU-accessible target")
	}
	if target.Width() != r.width || target.Height() != r.height {
		// The caller resized the target without telling us; recreate the
		// size-dependent buffers before rendering, never after.
		if err := r.Resize(target.Width(), target.Height()); err != nil {
			return err
		}
	}

	mvp := camera.ViewProjection(r.dims, orbit, r.width, r.height)

	var verts [8]rastVert
	for i, c := range CubeVertices {
		local := mgl32.Vec3{c[0], c[1], c[2]}
		verts[i] = rastVert{
			clip: mvp.Mul4x1(local.Vec4(1)),
			attr: local,
		}
	}

	clearPixels(target)
	r.passExit(verts)
	r.passMarch(target, state, verts)
	if state.ShowOrthoslices() {
		r.passSlices(target, state, mvp)
	}
	return nil
}

// passExit rasterizes the cube's back faces, writing each covered
// pixel's normalized exit coordinate into the exit buffer. The buffer is
// cleared to zero first: pixels the cube never covers keep the origin,
// which pass B treats as a degenerate zero-length ray.
func (r *SoftwareRenderer) passExit(verts [8]rastVert) {
	for i := range r.exitBuf {
		r.exitBuf[i] = 0
	}
	for t := 0; t < len(CubeIndices); t += 3 {
		v0 := verts[CubeIndices[t]]
		v1 := verts[CubeIndices[t+1]]
		v2 := verts[CubeIndices[t+2]]
		if !backFacing(v0, v1, v2, r.width, r.height) {
			continue
		}
		r.rasterize(v0, v1, v2, func(x, y int, attr mgl32.Vec3, _ float32) {
			off := (y*r.width + x) * 4
			r.exitBuf[off] = attr.X()
			r.exitBuf[off+1] = attr.Y()
			r.exitBuf[off+2] = attr.Z()
			r.exitBuf[off+3] = 1
		})
	}
}

// passMarch rasterizes the front faces and composites each pixel's ray.
func (r *SoftwareRenderer) passMarch(target Target, state *State, verts [8]rastVert) {
	cfg := ConfigFromState(state)

	// Adjacent front faces share edges. The edge-function test accepts
	// pixels exactly on an edge for both triangles, so without this mask
	// a one-pixel seam would composite twice.
	for i := range r.marchMask {
		r.marchMask[i] = false
	}

	grayFn := r.gray.Linear
	var labelFn SampleFunc
	if r.labels != nil {
		labelFn = r.labels.Linear
	}

	for t := 0; t < len(CubeIndices); t += 3 {
		v0 := verts[CubeIndices[t]]
		v1 := verts[CubeIndices[t+1]]
		v2 := verts[CubeIndices[t+2]]
		if backFacing(v0, v1, v2, r.width, r.height) {
			continue
		}
		r.rasterize(v0, v1, v2, func(x, y int, entry mgl32.Vec3, _ float32) {
			pix := y*r.width + x
			if r.marchMask[pix] {
				return
			}
			r.marchMask[pix] = true
			off := pix * 4
			exit := mgl32.Vec3{r.exitBuf[off], r.exitBuf[off+1], r.exitBuf[off+2]}
			c := CompositeRay(entry, exit, grayFn, labelFn, r.table, cfg)
			if c.W() > 0 {
				blendPixel(target, x, y, c)
			}
		})
	}
}

// passSlices draws the three orthogonal slice quads, depth-tested
// against each other. The raymarch passes do not write depth, so slices
// are not depth-correct against the composited volume; they simply draw
// over it where their fragments survive the threshold gate.
func (r *SoftwareRenderer) passSlices(target Target, state *State, mvp mgl32.Mat4) {
	for i := range r.depthBuf {
		r.depthBuf[i] = math.MaxFloat32
	}

	minN, maxN := state.Window()
	sx, sy, sz := state.Slices()
	quads := SliceQuads(r.dims, sx, sy, sz)

	for _, q := range quads {
		var verts [4]rastVert
		for i, c := range q {
			local := mgl32.Vec3{c[0], c[1], c[2]}
			verts[i] = rastVert{clip: mvp.Mul4x1(local.Vec4(1)), attr: local}
		}
		for t := 0; t < len(SliceQuadIndices); t += 3 {
			v0 := verts[SliceQuadIndices[t]]
			v1 := verts[SliceQuadIndices[t+1]]
			v2 := verts[SliceQuadIndices[t+2]]
			// Slices are double-sided: no culling.
			r.rasterize(v0, v1, v2, func(x, y int, attr mgl32.Vec3, depth float32) {
				di := y*r.width + x
				if depth >= r.depthBuf[di] {
					return
				}
				g := r.gray.Nearest(attr.X(), attr.Y(), attr.Z())
				if g < minN || g > maxN {
					return // discard, no depth write
				}
				r.depthBuf[di] = depth
				shade := ShadeGray(g, state.Brightness(), state.Contrast())
				writePixel(target, x, y, mgl32.Vec4{shade, shade, shade, 1})
			})
		}
	}
}

// rastVert is a transformed vertex: clip-space position plus the
// volume-local coordinate interpolated across the triangle.
type rastVert struct {
	clip mgl32.Vec4
	attr mgl32.Vec3
}

// screenPos projects a clip-space vertex to pixel coordinates with a
// y-flip so that +y in NDC is up but rows grow downward.
func screenPos(v rastVert, w, h int) (sx, sy float32) {
	inv := 1 / v.clip.W()
	sx = (v.clip.X()*inv*0.5 + 0.5) * float32(w)
	sy = (0.5 - v.clip.Y()*inv*0.5) * float32(h)
	return sx, sy
}

// backFacing reports whether the triangle faces away from the camera.
// With outward counter-clockwise winding, front faces have negative
// signed area in y-down screen coordinates.
func backFacing(v0, v1, v2 rastVert, w, h int) bool {
	if v0.clip.W() <= nearEpsilon || v1.clip.W() <= nearEpsilon || v2.clip.W() <= nearEpsilon {
		return true // treated as culled; see nearEpsilon
	}
	x0, y0 := screenPos(v0, w, h)
	x1, y1 := screenPos(v1, w, h)
	x2, y2 := screenPos(v2, w, h)
	area := (x1-x0)*(y2-y0) - (y1-y0)*(x2-x0)
	return area > 0
}

// rasterize walks every pixel the triangle covers, calling fn with
// perspective-correct interpolated attributes and NDC depth. Triangles
// of either winding are accepted.
func (r *SoftwareRenderer) rasterize(v0, v1, v2 rastVert, fn func(x, y int, attr mgl32.Vec3, depth float32)) {
	if v0.clip.W() <= nearEpsilon || v1.clip.W() <= nearEpsilon || v2.clip.W() <= nearEpsilon {
		return
	}
	x0, y0 := screenPos(v0, r.width, r.height)
	x1, y1 := screenPos(v1, r.width, r.height)
	x2, y2 := screenPos(v2, r.width, r.height)

	area := (x1-x0)*(y2-y0) - (y1-y0)*(x2-x0)
	if area == 0 {
		return
	}
	invArea := 1 / area

	minX := clampInt(int(math32.Floor(min3(x0, x1, x2))), 0, r.width-1)
	maxX := clampInt(int(math32.Ceil(max3(x0, x1, x2))), 0, r.width-1)
	minY := clampInt(int(math32.Floor(min3(y0, y1, y2))), 0, r.height-1)
	maxY := clampInt(int(math32.Ceil(max3(y0, y1, y2))), 0, r.height-1)

	z0 := v0.clip.Z() / v0.clip.W()
	z1 := v1.clip.Z() / v1.clip.W()
	z2 := v2.clip.Z() / v2.clip.W()
	iw0 := 1 / v0.clip.W()
	iw1 := 1 / v1.clip.W()
	iw2 := 1 / v2.clip.W()

	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5

			// Barycentric weights from edge functions, normalized by the
			// signed area so either winding yields weights in [0,1].
			l0 := ((x2-x1)*(py-y1) - (y2-y1)*(px-x1)) * invArea
			l1 := ((x0-x2)*(py-y2) - (y0-y2)*(px-x2)) * invArea
			l2 := 1 - l0 - l1
			if l0 < 0 || l1 < 0 || l2 < 0 {
				continue
			}

			invW := l0*iw0 + l1*iw1 + l2*iw2
			attr := v0.attr.Mul(l0 * iw0).
				Add(v1.attr.Mul(l1 * iw1)).
				Add(v2.attr.Mul(l2 * iw2)).
				Mul(1 / invW)
			depth := l0*z0 + l1*z1 + l2*z2
			fn(x, y, attr, depth)
		}
	}
}

// blendPixel composites a straight-alpha color over the target pixel.
func blendPixel(target Target, x, y int, src mgl32.Vec4) {
	pix := target.Pixels()
	off := y*target.Stride() + x*4
	dr := float32(pix[off]) / 255
	dg := float32(pix[off+1]) / 255
	db := float32(pix[off+2]) / 255
	da := float32(pix[off+3]) / 255

	sa := src.W()
	outA := sa + da*(1-sa)
	if outA <= 0 {
		pix[off], pix[off+1], pix[off+2], pix[off+3] = 0, 0, 0, 0
		return
	}
	outR := (src.X()*sa + dr*da*(1-sa)) / outA
	outG := (src.Y()*sa + dg*da*(1-sa)) / outA
	outB := (src.Z()*sa + db*da*(1-sa)) / outA

	pix[off] = byte(clamp(outR, 0, 1)*255 + 0.5)
	pix[off+1] = byte(clamp(outG, 0, 1)*255 + 0.5)
	pix[off+2] = byte(clamp(outB, 0, 1)*255 + 0.5)
	pix[off+3] = byte(clamp(outA, 0, 1)*255 + 0.5)
}

// writePixel stores an opaque color without blending.
func writePixel(target Target, x, y int, c mgl32.Vec4) {
	pix := target.Pixels()
	off := y*target.Stride() + x*4
	pix[off] = byte(clamp(c.X(), 0, 1)*255 + 0.5)
	pix[off+1] = byte(clamp(c.Y(), 0, 1)*255 + 0.5)
	pix[off+2] = byte(clamp(c.Z(), 0, 1)*255 + 0.5)
	pix[off+3] = byte(clamp(c.W(), 0, 1)*255 + 0.5)
}

func clearPixels(target Target) {
	pix := target.Pixels()
	for i := range pix {
		pix[i] = 0
	}
}

func min3(a, b, c float32) float32 { return math32.Min(a, math32.Min(b, c)) }
func max3(a, b, c float32) float32 { return math32.Max(a, math32.Max(b, c)) }

// Ensure SoftwareRenderer implements Renderer.
var _ Renderer = (*SoftwareRenderer)(nil)
