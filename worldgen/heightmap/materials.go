// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package heightmap

import (
	"github.com/ridgelinegames/worldcore/worldgen/noise"
	"github.com/ridgelinegames/worldcore/worldgen/plates"

	"github.com/ridgelinegames/worldcore/world"
)

// RockType is a finite tagged union of rock classes, branched explicitly
// wherever hardness is derived (spec §9: "avoid inheritance").
type RockType uint8

const (
	Sedimentary RockType = iota
	Metamorphic
	Igneous
)

// baseHardness gives each RockType's nominal erosion resistance before
// noise modulation, within the [0.05, 1.0] contract of spec §3.
func (rt RockType) baseHardness() float32 {
	switch rt {
	case Igneous:
		return 0.8
	case Metamorphic:
		return 0.55
	default:
		return 0.25
	}
}

const rockNoiseFrequency = 1.0 / 250

// classify picks a RockType from local stress: strongly convergent
// boundaries (orogenic belts) are igneous, moderately convergent ones
// metamorphic, and every other cell is sedimentary whatever its plate
// kind.
func classify(kind plates.Kind, stress float32) RockType {
	switch {
	case stress > 0.5:
		return Igneous
	case stress > 0.15:
		return Metamorphic
	case kind == plates.Oceanic:
		return Sedimentary
	default:
		return Sedimentary
	}
}

// Hardness runs S4: per-cell erosion resistance derived from a RockType
// tag (picked from plate kind + stress) and modulated by coherent noise,
// per spec §4 (component design) and §3's Hardness contract.
func Hardness(gen *noise.Generator, ids *world.Tilemap[plates.ID], roster []plates.Plate, stress *world.Tilemap[float32]) *world.Tilemap[float32] {
	w, h := ids.Width(), ids.Height()
	out := world.NewTilemap[float32](w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			plate := roster[ids.Get(x, y)]
			s := stress.Get(x, y)
			rt := classify(plate.Kind, s)

			n := gen.Rock(float32(x)*rockNoiseFrequency, float32(y)*rockNoiseFrequency)
			hardness := rt.baseHardness() + n*0.15
			out.Set(x, y, world.Clamp(hardness, 0.05, 1.0))
		}
	}

	return out
}
