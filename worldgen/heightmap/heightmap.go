// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package heightmap implements S3 (base heightmap) and S4 (materials /
// hardness) of the terrain genesis pipeline.
package heightmap

import (
	"github.com/ridgelinegames/worldcore/rng"
	"github.com/ridgelinegames/worldcore/worldgen/noise"
	"github.com/ridgelinegames/worldcore/worldgen/plates"

	"github.com/ridgelinegames/worldcore/world"
)

const (
	// kStress lifts convergent boundaries and depresses divergent ones,
	// per spec §4.4.
	kStress = 3500

	continentalFrequency = 1.0 / 400
	continentalAmplitude = 300 // "a few hundred metres" on continental plates
	oceanicAmplitude      = 120 // subdued shelf variation over oceanic crust

	boxBlurIterations = 2
)

// Base runs S3: composes each plate's base elevation, its boundary
// stress, and low-frequency continental-shelf noise into a heightmap,
// then smooths away the BFS-sharp plate boundaries with a 3x3 box blur.
// It draws two float32 offsets from stream (a world-space noise offset),
// consistent with the pipeline's documented per-stage draw count.
func Base(stream *rng.Stream, gen *noise.Generator, ids *world.Tilemap[plates.ID], roster []plates.Plate, stress *world.Tilemap[float32]) *world.Tilemap[float32] {
	offsetX := stream.Float32Range(0, 10000)
	offsetY := stream.Float32Range(0, 10000)

	w, h := ids.Width(), ids.Height()
	out := world.NewTilemap[float32](w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			plate := roster[ids.Get(x, y)]

			amplitude := oceanicAmplitude
			if plate.Kind == plates.Continental {
				amplitude = continentalAmplitude
			}

			n := gen.Continental((float32(x)+offsetX)*continentalFrequency, (float32(y)+offsetY)*continentalFrequency)

			height := plate.BaseElevation + stress.Get(x, y)*kStress + n*float32(amplitude)
			out.Set(x, y, height)
		}
	}

	for i := 0; i < boxBlurIterations; i++ {
		out = boxBlur3x3(out)
	}

	return out
}

// boxBlur3x3 averages each cell with its 8 Tilemap-wrap/clamp neighbors
// and itself, per spec §4.4's "3x3 box" smoothing pass.
func boxBlur3x3(src *world.Tilemap[float32]) *world.Tilemap[float32] {
	w, h := src.Width(), src.Height()
	out := world.NewTilemap[float32](w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := src.Get(x, y)
			count := float32(1)
			src.Neighbor8(x, y, func(nx, ny int, _ bool) {
				sum += src.Get(nx, ny)
				count++
			})
			out.Set(x, y, sum/count)
		}
	}

	return out
}
