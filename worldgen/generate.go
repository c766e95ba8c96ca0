// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package worldgen

import (
	"github.com/ridgelinegames/worldcore/rng"
	"github.com/ridgelinegames/worldcore/world"
	"github.com/ridgelinegames/worldcore/worldgen/climate"
	"github.com/ridgelinegames/worldcore/worldgen/erosion"
	"github.com/ridgelinegames/worldcore/worldgen/heightmap"
	"github.com/ridgelinegames/worldcore/worldgen/hydrology"
	"github.com/ridgelinegames/worldcore/worldgen/noise"
	"github.com/ridgelinegames/worldcore/worldgen/plates"
)

// Generate runs the full six-stage terrain genesis pipeline of spec §2:
// S1 plates, S2 stress, S3 base heightmap, S4 hardness, S5 erosion (which
// internally runs S5a's temperature term before its glacial substage),
// then S5a's full climate overlay and S6 hydrology at output resolution.
// Stages are strictly sequential (spec §5): each completes before the
// next reads its outputs. A single rng.Stream is threaded through S1 and
// then S3 (spec §9); S2, S4, S5 and S6 draw nothing from it. S5 seeds its
// own per-droplet generators from cfg.Seed instead.
func Generate(cfg Config, progress ProgressFunc) (WorldData, error) {
	if err := cfg.Validate(); err != nil {
		return WorldData{}, err
	}

	stream := rng.New(cfg.Seed)
	gen := noise.New(int64(cfg.Seed))

	// S1: plate generation.
	plateResult := plates.Generate(stream, cfg.Width, cfg.Height, cfg.PlateCount)
	if plateResult.Degenerate && progress != nil {
		progress(ProgressEvent{
			Stage:         "plates",
			CumulativePct: cumulativePct("plates"),
			Warning:       "plate flood-fill realized fewer plates than requested after seed-collision retries",
		})
	} else if progress != nil {
		progress(ProgressEvent{Stage: "plates", CumulativePct: cumulativePct("plates")})
	}

	// S2: boundary stress. Draws nothing from stream.
	stress := plates.Stress(plateResult.IDs, plateResult.Plates)
	reportStage(progress, "stress")

	// S3: base heightmap.
	height := heightmap.Base(stream, gen, plateResult.IDs, plateResult.Plates, stress)
	reportStage(progress, "heightmap")

	// S4: hardness. Draws nothing from stream.
	hardness := heightmap.Hardness(gen, plateResult.IDs, plateResult.Plates, stress)
	reportStage(progress, "materials")

	// S5: erosion core, at hires resolution internally. Draws nothing
	// from stream: droplet spawn positions come from per-droplet
	// generators seeded from cfg.Seed (erosion's batched
	// snapshot/delta/reduce contract), and noise sampling reuses gen.
	erosionProgress := adaptErosionProgress(progress)
	erodedHeight, stats, err := erosion.Run(height, hardness, gen, cfg.Erosion, cfg.EquatorTemperature, cfg.SimulationScale, cfg.Seed, erosionProgress)
	if err != nil {
		return WorldData{}, err
	}
	reportStage(progress, "erosion")

	var temperature, moisture *world.Tilemap[float32]
	if cfg.EnableClimate {
		temperature = climate.Temperature(erodedHeight, cfg.EquatorTemperature)
		moisture = climate.Moisture(gen, erodedHeight)
	}
	reportStage(progress, "climate")

	// S6: hydrology. Final depression fill and D8/flow-accumulation are
	// recomputed at output resolution from the fully eroded height,
	// since erosion's hires working copies are discarded once Run
	// returns (spec §4.5.6, §4.6 preamble).
	waterLevel := hydrology.FillDepressions(erodedHeight)
	dir := hydrology.ComputeFlowDir(erodedHeight)
	flowAcc := hydrology.ComputeFlowAccumulation(erodedHeight, dir)
	hydro := hydrology.Classify(erodedHeight, waterLevel, flowAcc)

	network := hydrology.ExtractNetwork(
		erodedHeight, flowAcc, dir, hydro.BodyID,
		cfg.Erosion.RiverSourceMinAccumulation,
		cfg.Erosion.RiverSourceMinElevation,
		cfg.Erosion.RiverChannelWidth,
	)
	reportStage(progress, "hydrology")

	return WorldData{
		Height:       erodedHeight,
		Stress:       stress,
		PlateID:      plateResult.IDs,
		Plates:       plateResult.Plates,
		Hardness:     hardness,
		Temperature:  temperature,
		Moisture:     moisture,
		WaterLevel:   waterLevel,
		WaterDepth:   hydro.WaterDepth,
		WaterBodyID:  hydro.BodyID,
		WaterBodies:  hydro.Bodies,
		RiverTile:    hydro.RiverTile,
		RiverNetwork: network,
		ErosionStats: stats,
		Truncated:    stats.Truncated,
	}, nil
}

func reportStage(progress ProgressFunc, stage string) {
	if progress == nil {
		return
	}
	progress(ProgressEvent{Stage: stage, CumulativePct: cumulativePct(stage)})
}

// adaptErosionProgress folds erosion's internal ProgressEvent (substage
// name plus droplet counters) into worldgen's stage-level ProgressEvent,
// so callers observe a single progress-callback shape end to end.
func adaptErosionProgress(progress ProgressFunc) erosion.ProgressFunc {
	if progress == nil {
		return nil
	}
	return func(e erosion.ProgressEvent) {
		progress(ProgressEvent{
			Stage:         "erosion:" + e.Stage,
			CumulativePct: cumulativePct("erosion"),
			DropletsDone:  e.DropletsDone,
			DropletsTotal: e.DropletsTotal,
		})
	}
}
