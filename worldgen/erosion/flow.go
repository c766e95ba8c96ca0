// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package erosion

import (
	"sort"

	"github.com/ridgelinegames/worldcore/world"
)

// NoFlow is the flow-direction sentinel meaning "no downstream neighbor"
// (a pit or an ocean sink), per spec §3.
const NoFlow uint8 = 255

// ComputeFlowDir runs spec §4.5.3.a: D8 routing. Each cell picks the
// neighbor maximizing (height[cur]-height[neighbor])/dist; if none is
// strictly lower, the cell gets NoFlow. Exported so S6 hydrology can
// recompute D8 routing at output resolution from the final height field.
func ComputeFlowDir(height *world.Tilemap[float32]) *world.Tilemap[uint8] {
	w, h := height.Width(), height.Height()
	dir := world.NewTilemap[uint8](w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cur := height.Get(x, y)
			best := float32(0)
			bestDir := NoFlow

			for i := 0; i < world.NeighborDirCount; i++ {
				dx, dy, diag := world.NeighborDirDelta(i)
				nx := x + dx
				ny := y + dy
				nh := height.At(nx, ny)
				drop := cur - nh
				if drop <= 0 {
					continue
				}
				slope := drop / world.NeighborDist(diag)
				if slope > best {
					best = slope
					bestDir = uint8(i)
				}
			}

			dir.Set(x, y, bestDir)
		}
	}

	return dir
}

// ComputeFlowAccumulation runs spec §4.5.3.b: sort cells by height
// descending, then propagate each cell's running total downstream. Every
// cell ends with the count of upstream contributing cells, itself
// included.
func ComputeFlowAccumulation(height *world.Tilemap[float32], dir *world.Tilemap[uint8]) *world.Tilemap[float32] {
	w, h := height.Width(), height.Height()
	acc := world.NewTilemapFilled[float32](w, h, 1)

	type cell struct {
		x, y int
		h    float32
	}
	cells := make([]cell, 0, w*h)
	height.ForEach(func(x, y int, v float32) {
		cells = append(cells, cell{x, y, v})
	})
	sort.Slice(cells, func(i, j int) bool {
		return cells[i].h > cells[j].h
	})

	for _, c := range cells {
		d := dir.Get(c.x, c.y)
		if d == NoFlow {
			continue
		}
		dx, dy, _ := world.NeighborDirDelta(int(d))
		nx, ny := c.x+dx, c.y+dy
		// dy never leaves [0,h) for a routed cell (flow never routes off
		// the clamped top/bottom edge onto itself), but x always wraps.
		acc.Set(nx, ny, acc.At(nx, ny)+acc.Get(c.x, c.y))
	}

	return acc
}
