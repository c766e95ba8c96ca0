// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package worldgen

import (
	"testing"

	"github.com/ridgelinegames/worldcore/world"
	"github.com/ridgelinegames/worldcore/worldgen/erosion"
	"github.com/ridgelinegames/worldcore/worldgen/hydrology"
	"github.com/ridgelinegames/worldcore/worldgen/plates"
)

func smallConfig(seed uint64) Config {
	cfg := DefaultConfig()
	cfg.Seed = seed
	cfg.Width = 64
	cfg.Height = 32
	cfg.SimulationScale = 1
	cfg.Erosion = erosion.MinimalConfig()
	return cfg
}

// TestGenerateIsDeterministic covers spec §8 item 1: identical seed and
// config produce bitwise-identical height, plate_id, and water_body_id
// grids.
func TestGenerateIsDeterministic(t *testing.T) {
	cfg := smallConfig(42)
	a, err := Generate(cfg, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := Generate(cfg, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	a.Height.ForEach(func(x, y int, v float32) {
		if b.Height.Get(x, y) != v {
			t.Fatalf("height differs at (%d,%d) across identical-seed runs", x, y)
		}
	})
	a.PlateID.ForEach(func(x, y int, v plates.ID) {
		if b.PlateID.Get(x, y) != v {
			t.Fatalf("plate id differs at (%d,%d) across identical-seed runs", x, y)
		}
	})
	a.WaterBodyID.ForEach(func(x, y int, v hydrology.BodyID) {
		if b.WaterBodyID.Get(x, y) != v {
			t.Fatalf("water body id differs at (%d,%d) across identical-seed runs", x, y)
		}
	})
}

// TestGenerateHydraulicToggleDoesNotAlterEarlyStages covers spec §8 item
// 2: toggling erosion.EnableHydraulic must not change early-stage outputs.
// It compares the S2 stress grid, the early-stage output WorldData carries.
func TestGenerateHydraulicToggleDoesNotAlterEarlyStages(t *testing.T) {
	cfgOn := smallConfig(7)
	cfgOn.Erosion.EnableHydraulic = true
	cfgOff := smallConfig(7)
	cfgOff.Erosion.EnableHydraulic = false

	on, err := Generate(cfgOn, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	off, err := Generate(cfgOff, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	on.Stress.ForEach(func(x, y int, v float32) {
		if off.Stress.Get(x, y) != v {
			t.Fatalf("stress differs at (%d,%d) when only enable_hydraulic changed", x, y)
		}
	})
}

// TestGenerateScenarioA covers spec §8 scenario A.
func TestGenerateScenarioA(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 42
	cfg.Width = 512
	cfg.Height = 256
	cfg.SimulationScale = 1
	cfg.Erosion = ErosionConfigForPreset(PresetNormal)

	data, err := Generate(cfg, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(data.Plates) < 6 {
		t.Errorf("expected at least 6 plates, got %d", len(data.Plates))
	}

	var oceans, lakes int
	for _, b := range data.WaterBodies {
		if b.Kind == hydrology.Ocean {
			oceans++
		} else {
			lakes++
		}
	}
	if oceans < 1 {
		t.Error("expected at least one ocean region")
	}
	if lakes < 1 {
		t.Error("expected at least one lake region")
	}

	longRivers := countLongSegments(data.RiverNetwork, 20)
	if longRivers < 5 {
		t.Errorf("expected at least 5 rivers of length >= 20 cells, got %d", longRivers)
	}
}

// TestGenerateScenarioB covers the water-body half of spec §8 scenario B:
// with erosion=None every below-sea-level cell belongs to a water body.
// It does not compare the height field with the base heightmap.
func TestGenerateScenarioB(t *testing.T) {
	cfg := smallConfig(1337)
	cfg.Erosion = erosion.NoneConfig()

	data, err := Generate(cfg, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	data.WaterBodyID.ForEach(func(x, y int, id hydrology.BodyID) {
		below := data.Height.Get(x, y) <= 0
		hasBody := id != hydrology.NoBody
		if below && !hasBody {
			t.Fatalf("cell (%d,%d) is below sea level but has no water body", x, y)
		}
	})
}

// TestGenerateScenarioC covers spec §8 scenario C literally: warm climate
// with glaciation disabled leaves the sliding_vel grid identically zero
// (here: absent, since no glacial pass ever ran to populate one).
func TestGenerateScenarioC(t *testing.T) {
	cfg := smallConfig(42)
	cfg.EquatorTemperature = 40
	cfg.Erosion = erosion.DefaultConfig()
	cfg.Erosion.EnableGlacial = false

	data, err := Generate(cfg, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if data.Height == nil {
		t.Fatal("expected a height field")
	}
	if data.ErosionStats.SlidingVelocity != nil {
		data.ErosionStats.SlidingVelocity.ForEach(func(x, y int, v float32) {
			if v != 0 {
				t.Errorf("sliding velocity at (%d,%d) = %v, want 0 with glaciation disabled", x, y, v)
			}
		})
	}
}

// TestGenerateScenarioCGlacialProducesSlidingVelocity is the contrapositive
// check: with glaciation enabled and a cold climate, the sliding_vel grid
// is populated (non-nil), so ScenarioC's nil check above isn't vacuously
// true for every config.
func TestGenerateScenarioCGlacialProducesSlidingVelocity(t *testing.T) {
	cfg := smallConfig(42)
	cfg.EquatorTemperature = -20
	cfg.Erosion = erosion.DefaultConfig()
	cfg.Erosion.EnableGlacial = true
	cfg.Erosion.GlacialTimesteps = 50

	data, err := Generate(cfg, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if data.ErosionStats.SlidingVelocity == nil {
		t.Fatal("expected a sliding velocity grid with glaciation enabled")
	}
}

// TestGenerateScenarioE covers spec §8 scenario E via hydrology.Classify
// directly on a synthetic bowl, since Generate always runs the full
// pipeline rather than accepting a caller-built heightmap.
func TestGenerateScenarioE(t *testing.T) {
	const w, h = 200, 200
	height := world.NewTilemapFilled[float32](w, h, 500)
	for y := 70; y < 130; y++ {
		for x := 70; x < 130; x++ {
			dx, dy := x-100, y-100
			if dx*dx+dy*dy < 30*30 {
				height.Set(x, y, 500-300)
			}
		}
	}

	waterLevel := hydrology.FillDepressions(height)
	dir := hydrology.ComputeFlowDir(height)
	flowAcc := hydrology.ComputeFlowAccumulation(height, dir)
	res := hydrology.Classify(height, waterLevel, flowAcc)

	id := res.BodyID.Get(100, 100)
	if id == hydrology.NoBody {
		t.Fatal("expected (100,100) to belong to a water body")
	}
	var body *hydrology.Body
	for i := range res.Bodies {
		if res.Bodies[i].ID == id {
			body = &res.Bodies[i]
		}
	}
	if body == nil || body.Kind != hydrology.Lake {
		t.Fatal("expected the bowl to classify as a lake")
	}
	if body.MinElevation >= 500 {
		t.Errorf("expected lake min elevation below 500, got %v", body.MinElevation)
	}
	if res.WaterDepth.Get(100, 100) <= 0 {
		t.Errorf("expected positive water depth at bowl center")
	}
}

// TestGenerateScenarioD covers spec §8 scenario D: at simulation_scale=4
// with Dramatic erosion, at least one river reaching a basin at sea level
// deposits a delta visible as positive height growth of >= 1m within 4
// cells of the mouth.
func TestGenerateScenarioD(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 7
	cfg.Width = 1024
	cfg.Height = 512
	cfg.SimulationScale = 4
	cfg.Erosion = ErosionConfigForPreset(PresetDramatic)

	data, err := Generate(cfg, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	found := false
	for _, seg := range data.RiverNetwork.Segments {
		if len(seg.Points) == 0 {
			continue
		}
		mouth := seg.Points[len(seg.Points)-1]
		mx, my := int(mouth.X), int(mouth.Y)
		if data.Height.At(mx, my) > 0 {
			continue // doesn't reach the basin
		}
		if scenarioDHasDeltaGrowth(data.Height, mx, my) {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected at least one river reaching sea level with a >= 1m delta-fan deposit within 4 cells of the mouth")
	}
}

// scenarioDHasDeltaGrowth reports whether any cell within radius 4 of the
// river mouth stands at least 1m higher than the mouth itself, the
// signature of a delta fan built up by deposited sediment.
func scenarioDHasDeltaGrowth(height *world.Tilemap[float32], mx, my int) bool {
	base := height.At(mx, my)
	for dy := -4; dy <= 4; dy++ {
		for dx := -4; dx <= 4; dx++ {
			if dx*dx+dy*dy > 16 {
				continue
			}
			if height.At(mx+dx, my+dy)-base >= 1 {
				return true
			}
		}
	}
	return false
}

// TestGenerateScenarioF covers spec §8 scenario F: over 100 random seeds
// on a 128x64 grid with erosion=Minimal, invariants 9-12 hold.
func TestGenerateScenarioF(t *testing.T) {
	for seed := uint64(1); seed <= 100; seed++ {
		cfg := DefaultConfig()
		cfg.Seed = seed
		cfg.Width = 128
		cfg.Height = 64
		cfg.SimulationScale = 1
		cfg.Erosion = ErosionConfigForPreset(PresetMinimal)

		data, err := Generate(cfg, nil)
		if err != nil {
			t.Fatalf("seed %d: Generate: %v", seed, err)
		}
		checkMonotonicDescentAndNoPits(t, seed, data)
		checkSeaLevelClamp(t, seed, data)
		checkOceanReachability(t, seed, data)
	}
}

// checkMonotonicDescentAndNoPits covers invariants 9 and 11: after final
// depression fill, every routed cell's downstream neighbor has strictly
// lower water_level and no-higher height, and no land cell is a pit
// (surrounded on all 8 sides by strictly higher water_level).
func checkMonotonicDescentAndNoPits(t *testing.T, seed uint64, data WorldData) {
	t.Helper()
	waterLevel := hydrology.FillDepressions(data.Height)
	dir := hydrology.ComputeFlowDir(data.Height)

	waterLevel.ForEach(func(x, y int, wl float32) {
		d := dir.Get(x, y)
		if d != erosion.NoFlow {
			dx, dy, _ := world.NeighborDirDelta(int(d))
			nx, ny := x+dx, y+dy
			if waterLevel.At(nx, ny) > wl+1e-4 {
				t.Errorf("seed %d: water level at (%d,%d) downstream neighbor (%d,%d) is higher (%v > %v)",
					seed, x, y, nx, ny, waterLevel.At(nx, ny), wl)
			}
			if data.Height.At(nx, ny) > data.Height.Get(x, y)+1e-4 {
				t.Errorf("seed %d: height at (%d,%d) downstream neighbor (%d,%d) is higher", seed, x, y, nx, ny)
			}
		}

		if y == 0 || y == data.Height.Height()-1 {
			return
		}
		isPit := true
		waterLevel.Neighbor8(x, y, func(nx, ny int, _ bool) {
			if waterLevel.Get(nx, ny) <= wl {
				isPit = false
			}
		})
		if isPit {
			t.Errorf("seed %d: cell (%d,%d) is a pit after final depression fill", seed, x, y)
		}
	})
}

// checkSeaLevelClamp covers invariant 10: every cell classified as a
// dry-land river tile has height >= 0.1.
func checkSeaLevelClamp(t *testing.T, seed uint64, data WorldData) {
	t.Helper()
	data.RiverTile.ForEach(func(x, y int, isRiver bool) {
		if isRiver && data.Height.Get(x, y) < 0.1 {
			t.Errorf("seed %d: river tile at (%d,%d) has height %v < 0.1", seed, x, y, data.Height.Get(x, y))
		}
	})
}

// checkOceanReachability covers invariant 12: every Ocean-classified
// cell has a 4-connected path through {height <= 0} to the north or
// south edge.
func checkOceanReachability(t *testing.T, seed uint64, data WorldData) {
	t.Helper()
	w, h := data.Height.Width(), data.Height.Height()
	reachable := world.NewTilemapFilled[bool](w, h, false)
	var queue [][2]int
	for x := 0; x < w; x++ {
		if data.Height.Get(x, 0) <= 0 && !reachable.Get(x, 0) {
			reachable.Set(x, 0, true)
			queue = append(queue, [2]int{x, 0})
		}
		if data.Height.Get(x, h-1) <= 0 && !reachable.Get(x, h-1) {
			reachable.Set(x, h-1, true)
			queue = append(queue, [2]int{x, h - 1})
		}
	}
	dirs := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	for qi := 0; qi < len(queue); qi++ {
		cx, cy := queue[qi][0], queue[qi][1]
		for _, d := range dirs {
			nx := world.Mod(cx+d[0], w)
			ny := cy + d[1]
			if ny < 0 || ny >= h {
				continue
			}
			if reachable.Get(nx, ny) || data.Height.Get(nx, ny) > 0 {
				continue
			}
			reachable.Set(nx, ny, true)
			queue = append(queue, [2]int{nx, ny})
		}
	}

	var body *hydrology.Body
	data.WaterBodyID.ForEach(func(x, y int, id hydrology.BodyID) {
		if id == hydrology.NoBody {
			return
		}
		if body == nil || body.ID != id {
			for i := range data.WaterBodies {
				if data.WaterBodies[i].ID == id {
					body = &data.WaterBodies[i]
					break
				}
			}
		}
		if body != nil && body.Kind == hydrology.Ocean && !reachable.Get(x, y) {
			t.Errorf("seed %d: ocean cell (%d,%d) has no 4-connected <=0 path to a pole edge", seed, x, y)
		}
	})
}

func countLongSegments(net hydrology.RiverNetwork, minLen int) int {
	count := 0
	for _, seg := range net.Segments {
		if len(seg.Points) >= minLen {
			count++
		}
	}
	return count
}
