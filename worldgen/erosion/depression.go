// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package erosion

import "github.com/ridgelinegames/worldcore/world"

// fillEpsilon is the minimum surface-elevation increment Planchon-Darboux
// uses to keep a filled basin's surface strictly above its rim, per
// spec §4.5.3.f.
const fillEpsilon = 1e-4

// FillDepressions runs the Planchon-Darboux depression fill of spec
// §4.5.3.f: water_level starts at terrain over the ocean and +inf
// elsewhere, then alternating forward/backward raster sweeps relax each
// cell down to max(terrain, min-neighbor-water-level + epsilon) until a
// full sweep produces no change. Exported so S6 hydrology can re-fill
// depressions at output resolution and river tracing can re-fill between
// carving passes.
func FillDepressions(terrain *world.Tilemap[float32]) *world.Tilemap[float32] {
	w, h := terrain.Width(), terrain.Height()
	waterLevel := world.NewTilemap[float32](w, h)

	const inf = float32(1 << 30)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t := terrain.Get(x, y)
			if t < 0 {
				waterLevel.Set(x, y, t)
			} else {
				waterLevel.Set(x, y, inf)
			}
		}
	}

	for {
		changedForward := sweepFill(terrain, waterLevel, false)
		changedBackward := sweepFill(terrain, waterLevel, true)
		if !changedForward && !changedBackward {
			break
		}
	}

	return waterLevel
}

// sweepFill performs one raster sweep (forward or reversed) of the
// Planchon-Darboux relaxation, mutating waterLevel in place, and reports
// whether any cell changed.
func sweepFill(terrain, waterLevel *world.Tilemap[float32], reversed bool) bool {
	w, h := terrain.Width(), terrain.Height()
	changed := false

	visit := func(x, y int) {
		t := terrain.Get(x, y)
		cur := waterLevel.Get(x, y)
		if cur <= t+fillEpsilon*0.5 {
			// Already resting on bedrock; nothing lower to relax to.
			return
		}

		minNeighbor := float32(1 << 30)
		waterLevel.Neighbor8(x, y, func(nx, ny int, _ bool) {
			v := waterLevel.Get(nx, ny)
			if v < minNeighbor {
				minNeighbor = v
			}
		})

		next := world.Clamp(minNeighbor+fillEpsilon, t, 1<<30)
		if next < cur {
			waterLevel.Set(x, y, next)
			changed = true
		}
	}

	if !reversed {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				visit(x, y)
			}
		}
	} else {
		for y := h - 1; y >= 0; y-- {
			for x := w - 1; x >= 0; x-- {
				visit(x, y)
			}
		}
	}

	return changed
}
