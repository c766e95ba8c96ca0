// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package erosion

import (
	"testing"

	"github.com/ridgelinegames/worldcore/rng"
	"github.com/ridgelinegames/worldcore/world"
	"github.com/ridgelinegames/worldcore/worldgen/heightmap"
	"github.com/ridgelinegames/worldcore/worldgen/noise"
	"github.com/ridgelinegames/worldcore/worldgen/plates"
)

// hillyHeight builds a synthetic heightmap with a central mountain
// descending toward the map edges; only the corner (0,0) sits exactly at
// sea level and no cell is below it. This gives both hydraulic and river
// erosion somewhere to route flow.
func hillyHeight(w, h int) *world.Tilemap[float32] {
	height := world.NewTilemap[float32](w, h)
	cx, cy := float32(w)/2, float32(h)/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := float32(x)-cx, float32(y)-cy
			d := dx*dx + dy*dy
			maxD := cx*cx + cy*cy
			height.Set(x, y, 200*(1-d/maxD))
		}
	}
	return height
}

func uniformHardness(w, h int) *world.Tilemap[float32] {
	return world.NewTilemapFilled[float32](w, h, 0.5)
}

// TestFillDepressionsRemovesLocalMinima covers spec §8 item 11: after
// final fill, no land cell has all 8 neighbors' water_level strictly
// greater than its own.
func TestFillDepressionsRemovesLocalMinima(t *testing.T) {
	const w, h = 40, 30
	height := world.NewTilemapFilled[float32](w, h, 10)
	height.Set(20, 15, 1) // isolated pit

	filled := FillDepressions(height)
	filled.ForEach(func(x, y int, wl float32) {
		if y == 0 || y == h-1 {
			return
		}
		isPit := true
		filled.Neighbor8(x, y, func(nx, ny int, _ bool) {
			if filled.Get(nx, ny) <= wl {
				isPit = false
			}
		})
		if isPit {
			t.Errorf("cell (%d,%d) is still a pit after depression fill", x, y)
		}
	})
}

// TestFillDepressionsNeverLowersTerrain covers the fill invariant that
// water_level is always >= height (fill can only raise, never carve).
func TestFillDepressionsNeverLowersTerrain(t *testing.T) {
	const w, h = 40, 30
	height := hillyHeight(w, h)
	filled := FillDepressions(height)
	filled.ForEach(func(x, y int, wl float32) {
		if wl < height.Get(x, y)-1e-4 {
			t.Fatalf("water level at (%d,%d) = %v is below terrain %v", x, y, wl, height.Get(x, y))
		}
	})
}

// TestComputeFlowDirRespectsWrap covers spec §8 item 4: flow direction
// computation must treat x as wrapping.
func TestComputeFlowDirRespectsWrap(t *testing.T) {
	const w, h = 20, 20
	height := world.NewTilemapFilled[float32](w, h, 10)
	// A downhill slope wrapping from x=0 toward x=w-1.
	for y := 0; y < h; y++ {
		height.Set(0, y, 5)
		height.Set(w-1, y, 8)
	}
	dir := ComputeFlowDir(height)
	d := dir.Get(w-1, 10)
	if d == NoFlow {
		t.Fatal("expected a flow direction at the wrap boundary")
	}
}

// TestRunMassAccountingIsMonotone covers spec §8 item 14: running with
// erosion_rate=0 must not decrease total_eroded (it stays zero); running
// with deposit_rate=0 must not increase total_deposited (it stays zero).
func TestRunMassAccountingIsMonotone(t *testing.T) {
	const w, h = 32, 32
	height := hillyHeight(w, h)
	hardness := uniformHardness(w, h)
	gen := noise.New(99)

	cfg := MinimalConfig()
	cfg.EnableRivers = false
	cfg.EnableGlacial = false
	cfg.EnableHydraulic = true
	cfg.HydraulicIterations = 200
	cfg.DropletErosionRate = 0
	cfg.DropletDepositRate = 0.2

	_, stats, err := Run(height.Clone(), hardness, gen, cfg, 20, 1, 1234, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.TotalEroded != 0 {
		t.Errorf("expected zero total_eroded with erosion_rate=0, got %v", stats.TotalEroded)
	}

	cfg.DropletErosionRate = 0.1
	cfg.DropletDepositRate = 0
	_, stats2, err := Run(height.Clone(), hardness, gen, cfg, 20, 1, 1234, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats2.TotalDeposited != 0 {
		t.Errorf("expected zero total_deposited with deposit_rate=0, got %v", stats2.TotalDeposited)
	}
}

// TestRunIsDeterministic covers spec §8 item 1 at the erosion-stage level.
func TestRunIsDeterministic(t *testing.T) {
	const w, h = 24, 24
	height := hillyHeight(w, h)
	hardness := uniformHardness(w, h)
	gen := noise.New(5)
	cfg := MinimalConfig()

	a, _, err := Run(height.Clone(), hardness, gen, cfg, 20, 1, 42, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, _, err := Run(height.Clone(), hardness, gen, cfg, 20, 1, 42, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	a.ForEach(func(x, y int, v float32) {
		if b.Get(x, y) != v {
			t.Fatalf("eroded height differs at (%d,%d) across identical-seed Run calls", x, y)
		}
	})
}

// pipelineHeight builds the real S1-S4 chain (plate generation, boundary
// stress, base heightmap, hardness) at the given seed and dimensions, so
// the literal seed/grid/config regression tests in spec §8 items 15-16
// exercise a realistic heightmap rather than a synthetic bowl.
func pipelineHeight(seed uint64, w, h int) (*world.Tilemap[float32], *world.Tilemap[float32]) {
	stream := rng.New(seed)
	gen := noise.New(int64(seed))
	plateResult := plates.Generate(stream, w, h, 0)
	stress := plates.Stress(plateResult.IDs, plateResult.Plates)
	base := heightmap.Base(stream, gen, plateResult.IDs, plateResult.Plates, stress)
	hardness := heightmap.Hardness(gen, plateResult.IDs, plateResult.Plates, stress)
	return base, hardness
}

// TestErosionMassAccountingSeed1337WithinTenPercent covers spec §8 item
// 15 literally: on a 512x256 grid, seed 1337, default config, over
// 50 000 droplets, total_eroded and total_deposited must land within 10%
// of each other.
func TestErosionMassAccountingSeed1337WithinTenPercent(t *testing.T) {
	const seed, w, h = 1337, 512, 256
	base, hardness := pipelineHeight(seed, w, h)
	gen := noise.New(seed)

	cfg := DefaultConfig()
	cfg.HydraulicIterations = 50000

	_, stats, err := Run(base, hardness, gen, cfg, 20, 1, seed, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	eroded, deposited := stats.TotalEroded, stats.TotalDeposited
	if eroded == 0 || deposited == 0 {
		t.Fatalf("expected nonzero erosion and deposition, got eroded=%v deposited=%v", eroded, deposited)
	}
	larger, smaller := eroded, deposited
	if smaller > larger {
		larger, smaller = smaller, larger
	}
	if (larger-smaller)/larger > 0.10 {
		t.Errorf("total_eroded=%v and total_deposited=%v are more than 10%% apart", eroded, deposited)
	}
}

// TestGeomorphometryRegressionBoundsSeed1337 covers spec §8 item 16
// literally: on a 512x256 grid, seed 1337, default config, the
// post-erosion height field's geomorphometry regression metrics must
// fall within the spec's documented bounds.
func TestGeomorphometryRegressionBoundsSeed1337(t *testing.T) {
	const seed, w, h = 1337, 512, 256
	base, hardness := pipelineHeight(seed, w, h)
	gen := noise.New(seed)

	eroded, _, err := Run(base, hardness, gen, DefaultConfig(), 20, 1, seed, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	m := ComputeMetrics(eroded)
	if m.BifurcationRatio < 3.0 || m.BifurcationRatio > 5.5 {
		t.Errorf("bifurcation ratio %v outside [3.0, 5.5]", m.BifurcationRatio)
	}
	if m.HacksLawExponent < 0.50 || m.HacksLawExponent > 0.60 {
		t.Errorf("Hack's-law exponent %v outside [0.50, 0.60]", m.HacksLawExponent)
	}
	if m.FlintConcavity < 0.40 || m.FlintConcavity > 0.70 {
		t.Errorf("Flint concavity %v outside [0.40, 0.70]", m.FlintConcavity)
	}
	if m.PitCount != 0 {
		t.Errorf("expected zero pits after final depression fill, got %d", m.PitCount)
	}
}

// TestRunNoneConfigStaysFiniteAndBounded covers spec §8 scenario B in
// spirit: with every erosion substage disabled, Run's remaining
// unconditional fill/meander/fill post-process must still produce a
// finite height field that stays close to the input (finalPostProcess
// cannot manufacture large mass out of a smooth, pit-free input).
func TestRunNoneConfigStaysFiniteAndBounded(t *testing.T) {
	const w, h = 24, 24
	height := hillyHeight(w, h)
	hardness := uniformHardness(w, h)
	gen := noise.New(5)

	out, _, err := Run(height.Clone(), hardness, gen, NoneConfig(), 20, 1, 1, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	height.ForEach(func(x, y int, v float32) {
		got := out.Get(x, y)
		if got != got { // NaN check
			t.Fatalf("height at (%d,%d) is NaN", x, y)
		}
		if diff := got - v; diff > 20 || diff < -20 {
			t.Errorf("height at (%d,%d) moved implausibly far from %v to %v under NoneConfig", x, y, v, got)
		}
	})
}
