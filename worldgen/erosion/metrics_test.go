// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package erosion

import (
	"testing"

	"github.com/ridgelinegames/worldcore/world"
)

// dendriticHeight builds a synthetic drainage basin: a single ridge line
// down the middle of the map with land sloping away to sea level on
// either side, so flow converges into a branching network feeding a
// single mouth at the bottom edge.
func dendriticHeight(w, h int) *world.Tilemap[float32] {
	height := world.NewTilemap[float32](w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			center := w / 2
			dx := x - center
			if dx < 0 {
				dx = -dx
			}
			ridge := float32(w/2-dx) * 2
			slope := float32(h - 1 - y)
			height.Set(x, y, ridge+slope*0.5-float32(h)*0.3)
		}
	}
	return height
}

func TestComputeMetricsPitCountExcludesEdges(t *testing.T) {
	const w, h = 20, 20
	height := world.NewTilemap[float32](w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			height.Set(x, y, 10)
		}
	}
	// A single pit at the very top row must not be counted (edge-excluded).
	height.Set(5, 0, 1)
	// An interior pit must be counted.
	height.Set(10, 10, 1)

	m := ComputeMetrics(height)
	if m.PitCount != 1 {
		t.Errorf("expected exactly 1 counted pit (edge pit excluded), got %d", m.PitCount)
	}
}

func TestComputeMetricsRunsWithoutPanicOnFlatTerrain(t *testing.T) {
	const w, h = 16, 16
	height := world.NewTilemapFilled[float32](w, h, 5)
	m := ComputeMetrics(height)
	if m.PitCount != 0 {
		t.Errorf("flat terrain should have no pits, got %d", m.PitCount)
	}
}

func TestComputeMetricsOnDendriticBasin(t *testing.T) {
	const w, h = 60, 60
	height := dendriticHeight(w, h)
	m := ComputeMetrics(height)

	if m.PitCount < 0 {
		t.Errorf("pit count must be non-negative, got %d", m.PitCount)
	}
	// Regression exponents may legitimately be zero when too few river
	// cells qualify for a fit; they must never be NaN or infinite.
	for name, v := range map[string]float32{
		"BifurcationRatio": m.BifurcationRatio,
		"HacksLawExponent": m.HacksLawExponent,
		"FlintConcavity":   m.FlintConcavity,
	} {
		if v != v { // NaN check
			t.Errorf("%s is NaN", name)
		}
	}
}
