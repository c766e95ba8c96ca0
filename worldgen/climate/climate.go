// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package climate implements the S5a overlay: temperature (consumed by
// S5's glacial solver) and moisture (an orographic windward/leeward
// shader), per spec §4.5a. It is out of the pipeline's hardest scope —
// specified only because glacial erosion consumes temperature.
package climate

import (
	"github.com/chewxy/math32"

	"github.com/ridgelinegames/worldcore/worldgen/noise"

	"github.com/ridgelinegames/worldcore/world"
)

const (
	defaultEquatorTemperature = 30    // °C
	lapseRate                 = 6.5e-3 // °C per metre of elevation

	moistureBaseDepletion  = 0.012 // per cell, flat evaporative loss over land
	moistureOrographicRate = 0.0025 // extra loss per metre of elevation gained
	moisturePasses         = 2      // stabilizes the wrap seam
	moistureNoiseWeight    = 0.12
)

// Temperature runs the temperature half of S5a: T(x,y) = T_equator -
// |lat(y)|*T_latitude_gradient - max(0,height)*lapse_rate, per spec
// §4.5a. equatorTemperature lets callers model a warmer/cooler world
// (scenario C sets it to 40 to suppress glaciation).
func Temperature(height *world.Tilemap[float32], equatorTemperature float32) *world.Tilemap[float32] {
	w, h := height.Width(), height.Height()
	out := world.NewTilemap[float32](w, h)

	latitudeGradient := 60.0 / float32(h) // °C per row from equator
	equatorRow := float32(h) / 2

	for y := 0; y < h; y++ {
		lat := math32.Abs(float32(y) - equatorRow)
		for x := 0; x < w; x++ {
			elevationTerm := world.Clamp(height.Get(x, y), 0, 1<<20) * lapseRate
			t := equatorTemperature - lat*latitudeGradient - elevationTerm
			out.Set(x, y, t)
		}
	}

	return out
}

// Moisture runs the moisture half of S5a: a windward/leeward shader that
// tracks a per-row moisture budget traveling west-to-east (the
// prevailing wind direction), replenished over ocean and depleted over
// land, with extra depletion proportional to orographic lift (rising
// terrain wrings out more rain, producing a rain shadow on the leeward
// side), per spec §4.5a.
func Moisture(gen *noise.Generator, height *world.Tilemap[float32]) *world.Tilemap[float32] {
	w, h := height.Width(), height.Height()
	out := world.NewTilemap[float32](w, h)

	for y := 0; y < h; y++ {
		moisture := float32(1)
		prevHeight := float32(0)

		for pass := 0; pass < moisturePasses; pass++ {
			for x := 0; x < w; x++ {
				hgt := height.Get(x, y)
				if hgt <= 0 {
					moisture = 1
				}

				// A cell receives the budget the wind carries into it;
				// its own rain-out depletes what reaches the next cell.
				if pass == moisturePasses-1 {
					n := gen.Moisture(float32(x)*0.01, float32(y)*0.01)
					blended := moisture*(1-moistureNoiseWeight) + (n*0.5+0.5)*moistureNoiseWeight
					out.Set(x, y, world.Clamp(blended, 0, 1))
				}

				if hgt > 0 {
					rise := hgt - prevHeight
					if rise < 0 {
						rise = 0
					}
					depletion := moistureBaseDepletion + rise*moistureOrographicRate
					moisture = world.Clamp(moisture-depletion, 0, 1)
				}
				prevHeight = hgt
			}
		}
	}

	return out
}
