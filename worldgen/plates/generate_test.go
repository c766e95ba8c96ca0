// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package plates

import (
	"testing"

	"github.com/ridgelinegames/worldcore/rng"
)

func TestGenerateCoversEveryCellAndPlate(t *testing.T) {
	const w, h = 64, 32
	res := Generate(rng.New(1337), w, h, 10)

	seen := make([]bool, len(res.Plates))
	res.IDs.ForEach(func(x, y int, id ID) {
		if int(id) < 0 || int(id) >= len(res.Plates) {
			t.Fatalf("cell (%d,%d) has out-of-range plate id %d", x, y, id)
		}
		seen[id] = true
	})
	for i, ok := range seen {
		if !ok {
			t.Errorf("plate %d has no assigned cells", i)
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	const w, h = 48, 24
	a := Generate(rng.New(42), w, h, 8)
	b := Generate(rng.New(42), w, h, 8)

	a.IDs.ForEach(func(x, y int, id ID) {
		if b.IDs.Get(x, y) != id {
			t.Fatalf("cell (%d,%d) differs across runs with identical seed", x, y)
		}
	})
}

// TestGeneratePlatesAre4Connected verifies every cell of a plate can
// reach every other cell of that plate via 4-connected, wrap-aware steps
// (spec §8 item 6).
func TestGeneratePlatesAre4Connected(t *testing.T) {
	const w, h = 40, 20
	res := Generate(rng.New(7), w, h, 6)

	for _, p := range res.Plates {
		var cells [][2]int
		res.IDs.ForEach(func(x, y int, id ID) {
			if id == p.ID {
				cells = append(cells, [2]int{x, y})
			}
		})
		if len(cells) == 0 {
			continue
		}

		visited := map[[2]int]bool{cells[0]: true}
		queue := [][2]int{cells[0]}
		for qi := 0; qi < len(queue); qi++ {
			cx, cy := queue[qi][0], queue[qi][1]
			neighbors := [4][2]int{{cx - 1, cy}, {cx + 1, cy}, {cx, cy - 1}, {cx, cy + 1}}
			for _, n := range neighbors {
				ny := n[1]
				if ny < 0 || ny >= h {
					continue
				}
				nx := ((n[0] % w) + w) % w
				if res.IDs.Get(nx, ny) != p.ID {
					continue
				}
				key := [2]int{nx, ny}
				if !visited[key] {
					visited[key] = true
					queue = append(queue, key)
				}
			}
		}

		if len(visited) != len(cells) {
			t.Errorf("plate %d is not 4-connected: reached %d of %d cells", p.ID, len(visited), len(cells))
		}
	}
}
