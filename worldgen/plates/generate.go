// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package plates

import (
	"github.com/ridgelinegames/worldcore/rng"
	"github.com/ridgelinegames/worldcore/world"
)

// maxSeedRetries bounds how many times Generate redraws a colliding seed
// point before giving up on that plate (spec §4.2 edge case).
const maxSeedRetries = 32

// Result is S1's output: every cell's plate assignment and the immutable
// plate roster it indexes into.
type Result struct {
	IDs        *world.Tilemap[ID]
	Plates     []Plate
	Degenerate bool // fewer plates realized than requested (seed collisions)
}

// Generate runs S1: flood-fill plate assignment followed by per-plate
// attribute sampling. If plateCount <= 0, the count is drawn uniformly
// from [6, 15] using stream, per spec §6. Draws are consumed in the fixed
// order: [plate count], then one seed-point draw per plate (with
// collision retries), then one kind/elevation/velocity/color draw group
// per plate in ID order.
func Generate(stream *rng.Stream, width, height int, plateCount int) Result {
	if plateCount <= 0 {
		plateCount = 6 + stream.IntN(10) // U[6, 15]
	}

	assigned := make([]int32, width*height)
	for i := range assigned {
		assigned[i] = -1
	}

	type seedPoint struct{ x, y int }
	seeds := make([]seedPoint, 0, plateCount)
	taken := make(map[int]bool, plateCount)

	degenerate := false
	for i := 0; i < plateCount; i++ {
		placed := false
		for attempt := 0; attempt < maxSeedRetries; attempt++ {
			x := stream.IntN(width)
			y := stream.IntN(height)
			idx := y*width + x
			if taken[idx] {
				continue
			}
			taken[idx] = true
			seeds = append(seeds, seedPoint{x, y})
			placed = true
			break
		}
		if !placed {
			degenerate = true
		}
	}

	realizedCount := len(seeds)

	// Multi-source BFS: a single FIFO queue seeded with every plate's
	// point in plate-index order gives deterministic tie-breaking by
	// insertion order, per spec §4.2.
	type queued struct {
		x, y int
		id   ID
	}
	queue := make([]queued, 0, width*height)
	for i, s := range seeds {
		idx := s.y*width + s.x
		assigned[idx] = int32(i)
		queue = append(queue, queued{s.x, s.y, ID(i)})
	}

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		neighbors := [4][2]int{
			{cur.x - 1, cur.y},
			{cur.x + 1, cur.y},
			{cur.x, cur.y - 1},
			{cur.x, cur.y + 1},
		}
		for _, n := range neighbors {
			ny := n[1]
			if ny < 0 || ny >= height {
				continue
			}
			nx := world.Mod(n[0], width)
			idx := ny*width + nx
			if assigned[idx] != -1 {
				continue
			}
			assigned[idx] = int32(cur.id)
			queue = append(queue, queued{nx, ny, cur.id})
		}
	}

	ids := world.NewTilemap[ID](width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			ids.Set(x, y, ID(assigned[y*width+x]))
		}
	}

	roster := make([]Plate, realizedCount)
	for i := range roster {
		roster[i] = newPlateAttributes(stream, ID(i))
	}

	return Result{IDs: ids, Plates: roster, Degenerate: degenerate}
}

// newPlateAttributes draws kind, base elevation, velocity, and color for
// one plate, in that fixed order (spec §4.2).
func newPlateAttributes(stream *rng.Stream, id ID) Plate {
	const oceanicProbability = 0.6

	kind := Oceanic
	if !stream.Bernoulli(oceanicProbability) {
		kind = Continental
	}

	var baseElevation float32
	if kind == Oceanic {
		baseElevation = stream.Float32Range(-2500, -1500)
	} else {
		baseElevation = stream.Float32Range(200, 600)
	}

	ux, uy := stream.UnitDisc()
	speed := stream.Float32Range(0.3, 1.5)
	velocity := Velocity{X: ux * speed, Y: uy * speed}

	hue := float32(id) * 0.6180339887 // golden-ratio spread around the hue wheel
	r, g, b := stream.HueColor(hue - float32(int(hue)))

	return Plate{
		ID:            id,
		Kind:          kind,
		BaseElevation: baseElevation,
		Velocity:      velocity,
		Color:         Color{R: r, G: g, B: b},
	}
}
