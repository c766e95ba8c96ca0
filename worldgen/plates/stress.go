// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package plates

import "github.com/ridgelinegames/worldcore/world"

// neighborUnit lists the unit-normalized direction to each of the 8
// neighbors, in the same N/NE/E/SE/S/SW/W/NW order Tilemap.Neighbor8
// visits them, so Stress can pair a neighbor callback index with its n̂
// without recomputing a normalize each time.
var neighborUnit = [8]struct{ x, y float32 }{
	{0, -1},
	{0.7071068, -0.7071068},
	{1, 0},
	{0.7071068, 0.7071068},
	{0, 1},
	{-0.7071068, 0.7071068},
	{-1, 0},
	{-0.7071068, -0.7071068},
}

// Stress runs S2: boundary stress derived from relative plate velocity
// across differing-plate neighbor pairs, per spec §4.3. Interior cells
// (all 8 neighbors in the same plate) are 0.
func Stress(ids *world.Tilemap[ID], roster []Plate) *world.Tilemap[float32] {
	w, h := ids.Width(), ids.Height()
	out := world.NewTilemap[float32](w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			self := ids.Get(x, y)
			selfVel := roster[self].Velocity

			var sum float32
			var count int
			i := 0
			ids.Neighbor8(x, y, func(nx, ny int, _ bool) {
				n := neighborUnit[i]
				i++
				other := ids.Get(nx, ny)
				if other == self {
					return
				}
				dvx := roster[other].Velocity.X - selfVel.X
				dvy := roster[other].Velocity.Y - selfVel.Y
				dot := dvx*n.x + dvy*n.y
				sum += -dot
				count++
			})

			if count > 0 {
				out.Set(x, y, world.Clamp(sum/float32(count), -1, 1))
			}
		}
	}

	return out
}
