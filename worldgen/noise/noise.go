// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package noise wraps aquilax/go-perlin into the small set of coherent
// noise channels the terrain pipeline needs, directly grounded on
// server/terrain/noise/noise.go's landHi/landLo/waterLo split: one
// independently-seeded *perlin.Perlin per role, each tuned with its own
// alpha (persistence), beta (lacunarity) and octave count.
package noise

import (
	perlin "github.com/aquilax/go-perlin"
)

// Generator produces every coherent noise channel the pipeline consumes:
// continental-shelf variation (S3), upscale roughness (S5.1), rock-type
// modulation (S4), and windward/leeward moisture shading (S5a).
type Generator struct {
	continental *perlin.Perlin // low-frequency continental-shelf variation
	roughness   *perlin.Perlin // high-frequency upscale texture
	rock        *perlin.Perlin // rock-type / hardness modulation
	moisture    *perlin.Perlin // windward/leeward moisture shading
}

// New creates a Generator whose channels are independently seeded from a
// single pipeline seed, in a fixed offset order (+0 continental, +1
// roughness, +2 rock, +3 moisture) so the same seed always yields the
// same noise fields.
func New(seed int64) *Generator {
	return &Generator{
		continental: perlin.NewPerlin(2.0, 2.0, 4, seed),
		roughness:   perlin.NewPerlin(1.8, 2.2, 3, seed+1),
		rock:        perlin.NewPerlin(2.2, 2.5, 3, seed+2),
		moisture:    perlin.NewPerlin(1.5, 2.0, 3, seed+3),
	}
}

// Continental samples low-frequency continental-shelf noise in roughly
// [-1, 1] at world-space (x, y), used by S3's base heightmap term.
func (g *Generator) Continental(x, y float32) float32 {
	return float32(g.continental.Noise2D(float64(x), float64(y)))
}

// Roughness samples the upscale texture noise (spec §4.5.1): amplitude
// ~20m, biased so flat slopes stay flat and steep slopes get texture.
// slope is the local coarse-grid gradient magnitude in metres/cell.
func (g *Generator) Roughness(x, y, slope float32) float32 {
	n := float32(g.roughness.Noise2D(float64(x), float64(y)))
	bias := clamp01(slope / 50)
	const baseAmplitude = 20
	return n * baseAmplitude * (0.25 + 0.75*bias)
}

// Rock samples rock-type modulation noise in roughly [-1, 1], used by S4
// to perturb the per-cell hardness derived from a RockType tag.
func (g *Generator) Rock(x, y float32) float32 {
	return float32(g.rock.Noise2D(float64(x), float64(y)))
}

// Moisture samples the windward/leeward shading noise component in
// roughly [-1, 1], used by S5a to perturb the orographic moisture model.
func (g *Generator) Moisture(x, y float32) float32 {
	return float32(g.moisture.Noise2D(float64(x), float64(y)))
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
