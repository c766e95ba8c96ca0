// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package hydrology implements S6, the terrain pipeline's final stage:
// water body classification (ocean/lake/river) from the eroded height
// field and its final Planchon-Darboux fill, plus the structured river
// network extraction of spec §4.7. Grounded on
// original_source/src/water_bodies.rs's detect_water_bodies_full: the
// same submerged/below-sea-level candidate test, ocean-edge BFS, and
// lake-touches-both-edges reclassification, adapted to spec §3's
// Option[BodyID] water-body grid and spec §4.6 point 4's "rivers overlay
// the land, not the water-body grid" rule.
package hydrology

import (
	"github.com/ridgelinegames/worldcore/world"
	"github.com/ridgelinegames/worldcore/worldgen/erosion"
)

// waterEpsilon mirrors the Planchon-Darboux fill epsilon: a cell is
// "submerged" only once its water level clears terrain by more than
// floating-point noise, per spec §4.6 point 1.
const waterEpsilon = 1e-4

// riverFlowThreshold is spec §4.6 point 4's dry-land river-tile
// accumulation threshold.
const riverFlowThreshold = 50.0

// Kind is a finite tagged union of water body classifications (spec §3),
// branched explicitly wherever a body is handled.
type Kind uint8

const (
	Ocean Kind = iota
	Lake
)

func (k Kind) String() string {
	if k == Ocean {
		return "ocean"
	}
	return "lake"
}

// BodyID identifies one connected water body. Zero is reserved so the
// zero value of Tilemap[BodyID] means "no body" without an extra bool.
type BodyID uint32

// NoBody is the sentinel meaning a cell belongs to no water body.
const NoBody BodyID = 0

// Body is one connected water region: its classification, tile count,
// elevation statistics, bounding box, and edge-touch flags, per spec §3.
type Body struct {
	ID            BodyID
	Kind          Kind
	TileCount     int
	MinElevation  float32
	MaxElevation  float32
	MeanElevation float32
	MinX, MinY    int
	MaxX, MaxY    int
	TouchesNorth  bool
	TouchesSouth  bool
}

// Result is S6's full output.
type Result struct {
	BodyID     *world.Tilemap[BodyID]
	Bodies     []Body
	RiverTile  *world.Tilemap[bool]
	WaterDepth *world.Tilemap[float32]
}

// Classify runs S6: given the final eroded height and its final
// Planchon-Darboux water level (spec §4.5.3.f re-run at output
// resolution, per spec §4.6's preamble "final height, water_level (from
// final depression fill)"), and flow accumulation recomputed at output
// resolution, produces the water-body grid, roster, dry-land river
// tiles, and water depth.
func Classify(height, waterLevel, flowAcc *world.Tilemap[float32]) Result {
	w, h := height.Width(), height.Height()

	depth := world.NewTilemap[float32](w, h)
	candidate := world.NewTilemap[bool](w, h)
	height.ForEach(func(x, y int, terrain float32) {
		wl := waterLevel.Get(x, y)
		d := wl - terrain
		if d < 0 {
			d = 0
		}
		depth.Set(x, y, d)
		if isSubmerged(terrain, wl) || terrain <= 0 {
			candidate.Set(x, y, true)
		}
	})

	bodyID := world.NewTilemapFilled[BodyID](w, h, NoBody)
	var bodies []Body
	nextID := BodyID(1)

	oceanIdx := -1
	visited := world.NewTilemapFilled[bool](w, h, false)

	// Ocean flood: 4-connected BFS (x wraps) from every below-sea-level
	// candidate on the north or south edge, expanding only through
	// below-sea-level candidates (spec §4.6 point 2).
	var queue [][2]int
	seedEdgeRow := func(y int) {
		for x := 0; x < w; x++ {
			if height.Get(x, y) <= 0 && candidate.Get(x, y) && !visited.Get(x, y) {
				visited.Set(x, y, true)
				queue = append(queue, [2]int{x, y})
			}
		}
	}
	seedEdgeRow(0)
	seedEdgeRow(h - 1)

	if len(queue) > 0 {
		ocean := newBody(nextID, Ocean)
		nextID++
		for qi := 0; qi < len(queue); qi++ {
			cx, cy := queue[qi][0], queue[qi][1]
			bodyID.Set(cx, cy, ocean.ID)
			ocean.addTile(cx, cy, height.Get(cx, cy), h)

			for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				ny := cy + d[1]
				if ny < 0 || ny >= h {
					continue
				}
				nx := world.Mod(cx+d[0], w)
				if visited.Get(nx, ny) || !candidate.Get(nx, ny) || height.Get(nx, ny) > 0 {
					continue
				}
				visited.Set(nx, ny, true)
				queue = append(queue, [2]int{nx, ny})
			}
		}
		bodies = append(bodies, ocean)
		oceanIdx = 0
	}

	// Lake detection: remaining candidate cells, per spec §4.6 point 3.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if visited.Get(x, y) || !candidate.Get(x, y) {
				continue
			}

			lake := newBody(nextID, Lake)
			nextID++
			lakeCells := make([][2]int, 0, 16)

			lqueue := [][2]int{{x, y}}
			visited.Set(x, y, true)
			for qi := 0; qi < len(lqueue); qi++ {
				cx, cy := lqueue[qi][0], lqueue[qi][1]
				lake.addTile(cx, cy, height.Get(cx, cy), h)
				lakeCells = append(lakeCells, [2]int{cx, cy})

				height.Neighbor8(cx, cy, func(nx, ny int, _ bool) {
					if visited.Get(nx, ny) || !candidate.Get(nx, ny) {
						return
					}
					visited.Set(nx, ny, true)
					lqueue = append(lqueue, [2]int{nx, ny})
				})
			}

			// A lake touching both polar edges with a below-sea-level
			// floor is a polar sea, reclassified as ocean (spec §4.6
			// point 3).
			if lake.TouchesNorth && lake.TouchesSouth && lake.MinElevation <= 0 {
				if oceanIdx < 0 {
					lake.Kind = Ocean
					for _, c := range lakeCells {
						bodyID.Set(c[0], c[1], lake.ID)
					}
					bodies = append([]Body{lake}, bodies...)
					oceanIdx = 0
					continue
				}
				ocean := &bodies[oceanIdx]
				for _, c := range lakeCells {
					bodyID.Set(c[0], c[1], ocean.ID)
				}
				mergeBody(ocean, lake)
				nextID--
				continue
			}

			for _, c := range lakeCells {
				bodyID.Set(c[0], c[1], lake.ID)
			}
			bodies = append(bodies, lake)
		}
	}

	// River tiles overlay dry land only (spec §4.6 point 4).
	riverTile := world.NewTilemap[bool](w, h)
	height.ForEach(func(x, y int, terrain float32) {
		if bodyID.Get(x, y) != NoBody {
			return
		}
		if flowAcc.Get(x, y) >= riverFlowThreshold {
			riverTile.Set(x, y, true)
		}
	})

	return Result{BodyID: bodyID, Bodies: bodies, RiverTile: riverTile, WaterDepth: depth}
}

func isSubmerged(terrainH, waterH float32) bool {
	return waterH > terrainH+waterEpsilon
}

func newBody(id BodyID, kind Kind) Body {
	return Body{
		ID:           id,
		Kind:         kind,
		MinElevation: 1 << 30,
		MaxElevation: -(1 << 30),
	}
}

func (b *Body) addTile(x, y int, elevation float32, mapHeight int) {
	if b.TileCount == 0 {
		b.MinX, b.MaxX = x, x
		b.MinY, b.MaxY = y, y
	} else {
		if x < b.MinX {
			b.MinX = x
		}
		if x > b.MaxX {
			b.MaxX = x
		}
		if y < b.MinY {
			b.MinY = y
		}
		if y > b.MaxY {
			b.MaxY = y
		}
	}

	n := float32(b.TileCount)
	b.MeanElevation = b.MeanElevation*n/(n+1) + elevation/(n+1)
	b.TileCount++
	if elevation < b.MinElevation {
		b.MinElevation = elevation
	}
	if elevation > b.MaxElevation {
		b.MaxElevation = elevation
	}
	if y == 0 {
		b.TouchesNorth = true
	}
	if y == mapHeight-1 {
		b.TouchesSouth = true
	}
}

// mergeBody folds a reclassified polar-sea lake into the ocean roster
// entry, matching original_source/src/water_bodies.rs's running-average
// merge.
func mergeBody(ocean *Body, lake Body) {
	total := float32(ocean.TileCount + lake.TileCount)
	oldWeight := float32(ocean.TileCount) / total
	newWeight := float32(lake.TileCount) / total
	ocean.MeanElevation = ocean.MeanElevation*oldWeight + lake.MeanElevation*newWeight
	ocean.TileCount += lake.TileCount
	if lake.MinElevation < ocean.MinElevation {
		ocean.MinElevation = lake.MinElevation
	}
	if lake.MaxElevation > ocean.MaxElevation {
		ocean.MaxElevation = lake.MaxElevation
	}
	if lake.MinX < ocean.MinX {
		ocean.MinX = lake.MinX
	}
	if lake.MinY < ocean.MinY {
		ocean.MinY = lake.MinY
	}
	if lake.MaxX > ocean.MaxX {
		ocean.MaxX = lake.MaxX
	}
	if lake.MaxY > ocean.MaxY {
		ocean.MaxY = lake.MaxY
	}
	if lake.TouchesNorth {
		ocean.TouchesNorth = true
	}
	if lake.TouchesSouth {
		ocean.TouchesSouth = true
	}
}

// ComputeFlowDir, ComputeFlowAccumulation and FillDepressions re-export
// erosion's functions of the same names so callers building a network
// from a height field alone (rather than a full pipeline run) don't need
// to import worldgen/erosion directly.
var (
	ComputeFlowDir          = erosion.ComputeFlowDir
	ComputeFlowAccumulation = erosion.ComputeFlowAccumulation
	FillDepressions         = erosion.FillDepressions
)
