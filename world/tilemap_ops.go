// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import "github.com/chewxy/math32"

// Lerp linearly interpolates between a and b, adapted from the teacher's
// server/world/vec2f.go free function of the same name.
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// SampleBilinear samples a float32 Tilemap at fractional (x, y) using
// bilinear interpolation of its four surrounding cells, applying the
// wrap/clamp rule on each corner. Used throughout erosion (droplet
// gradient sampling, upscale seeding).
func SampleBilinear(t *Tilemap[float32], x, y float32) float32 {
	x0 := math32.Floor(x)
	y0 := math32.Floor(y)
	ix0, iy0 := int(x0), int(y0)
	fx, fy := x-x0, y-y0

	v00 := t.At(ix0, iy0)
	v10 := t.At(ix0+1, iy0)
	v01 := t.At(ix0, iy0+1)
	v11 := t.At(ix0+1, iy0+1)

	top := Lerp(v00, v10, fx)
	bottom := Lerp(v01, v11, fx)
	return Lerp(top, bottom, fy)
}

// GradientBilinear returns the (dx, dy) gradient of t at fractional (x, y)
// estimated from the same four corners SampleBilinear uses, in cell units.
func GradientBilinear(t *Tilemap[float32], x, y float32) (gx, gy float32) {
	x0 := math32.Floor(x)
	y0 := math32.Floor(y)
	ix0, iy0 := int(x0), int(y0)
	fx, fy := x-x0, y-y0

	v00 := t.At(ix0, iy0)
	v10 := t.At(ix0+1, iy0)
	v01 := t.At(ix0, iy0+1)
	v11 := t.At(ix0+1, iy0+1)

	gx = (v10-v00)*(1-fy) + (v11-v01)*fy
	gy = (v01-v00)*(1-fx) + (v11-v10)*fx
	return
}

// RoughnessFunc samples additive noise for the upscale pass. slope is the
// local magnitude of the (coarse-grid) gradient at the sample point, used
// to bias roughness amplitude so flat plains stay flat.
type RoughnessFunc func(x, y float32, slope float32) float32

// Upscale performs a bilinear upsample of src by factor, adding coherent
// roughness via roughnessFn (may be nil to skip), per spec §4.5.1. The
// result has dimensions src.Width()*factor x src.Height()*factor.
func Upscale(src *Tilemap[float32], factor int, roughnessFn RoughnessFunc) *Tilemap[float32] {
	if factor <= 0 {
		panic("world: Upscale factor must be positive")
	}
	dstW := src.Width() * factor
	dstH := src.Height() * factor
	dst := NewTilemap[float32](dstW, dstH)

	invFactor := 1.0 / float32(factor)
	for y := 0; y < dstH; y++ {
		srcY := float32(y) * invFactor
		for x := 0; x < dstW; x++ {
			srcX := float32(x) * invFactor
			h := SampleBilinear(src, srcX, srcY)
			if roughnessFn != nil {
				gx, gy := GradientBilinear(src, srcX, srcY)
				slope := math32.Hypot(gx, gy)
				h += roughnessFn(float32(x), float32(y), slope)
			}
			dst.Set(x, y, h)
		}
	}
	return dst
}

// gaussianKernel1D returns a normalized 1D Gaussian kernel of the given
// radius (sigma = radius/2, matching the "radius ~= N cells" phrasing
// used throughout spec §4.5).
func gaussianKernel1D(radius int) []float32 {
	if radius <= 0 {
		return []float32{1}
	}
	sigma := float32(radius) / 2
	size := radius*2 + 1
	kernel := make([]float32, size)
	var sum float32
	for i := 0; i < size; i++ {
		d := float32(i-radius) / sigma
		v := math32.Exp(-0.5 * d * d)
		kernel[i] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// GaussianBlur applies a separable Gaussian blur of the given radius to
// src, returning a new Tilemap (src is left untouched). Horizontal passes
// wrap; vertical passes clamp, matching Tilemap's index semantics.
func GaussianBlur(src *Tilemap[float32], radius int) *Tilemap[float32] {
	kernel := gaussianKernel1D(radius)
	w, h := src.Width(), src.Height()

	horiz := NewTilemap[float32](w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float32
			for k, weight := range kernel {
				acc += src.Get(x+k-radius, y) * weight
			}
			horiz.Set(x, y, acc)
		}
	}

	out := NewTilemap[float32](w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float32
			for k, weight := range kernel {
				acc += horiz.At(x, y+k-radius) * weight
			}
			out.Set(x, y, acc)
		}
	}
	return out
}

// DownscalePreserveRivers reduces src by factor using the variance-gated
// rule of spec §4.5.6: a block's output value is its minimum if the
// block's variance exceeds varianceThreshold (preserves carved channels),
// otherwise its mean.
func DownscalePreserveRivers(src *Tilemap[float32], factor int, varianceThreshold float32) *Tilemap[float32] {
	if factor <= 0 {
		panic("world: DownscalePreserveRivers factor must be positive")
	}
	dstW := src.Width() / factor
	dstH := src.Height() / factor
	dst := NewTilemap[float32](dstW, dstH)

	blockLen := factor * factor
	samples := make([]float32, 0, blockLen)

	for by := 0; by < dstH; by++ {
		for bx := 0; bx < dstW; bx++ {
			samples = samples[:0]
			var sum float32
			for dy := 0; dy < factor; dy++ {
				for dx := 0; dx < factor; dx++ {
					v := src.Get(bx*factor+dx, by*factor+dy)
					samples = append(samples, v)
					sum += v
				}
			}
			mean := sum / float32(blockLen)

			var varSum float32
			var minV float32 = samples[0]
			for _, v := range samples {
				d := v - mean
				varSum += d * d
				if v < minV {
					minV = v
				}
			}
			variance := varSum / float32(blockLen)

			if variance > varianceThreshold {
				dst.Set(bx, by, minV)
			} else {
				dst.Set(bx, by, mean)
			}
		}
	}
	return dst
}
