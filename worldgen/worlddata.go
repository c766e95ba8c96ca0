// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package worldgen

import (
	"github.com/ridgelinegames/worldcore/world"
	"github.com/ridgelinegames/worldcore/worldgen/erosion"
	"github.com/ridgelinegames/worldcore/worldgen/hydrology"
	"github.com/ridgelinegames/worldcore/worldgen/plates"
)

// WorldData is Generate's single return value (spec §6): every grid and
// aggregate a downstream consumer (biome classification, the explorer
// UI, export, simulation) needs, and nothing it doesn't — persistence,
// wire encoding, and rendering are all out of scope per spec §1.
type WorldData struct {
	Height   *world.Tilemap[float32]
	Stress   *world.Tilemap[float32]
	PlateID  *world.Tilemap[plates.ID]
	Plates   []plates.Plate
	Hardness *world.Tilemap[float32]

	Temperature *world.Tilemap[float32]
	Moisture    *world.Tilemap[float32]

	WaterLevel   *world.Tilemap[float32]
	WaterDepth   *world.Tilemap[float32]
	WaterBodyID  *world.Tilemap[hydrology.BodyID]
	WaterBodies  []hydrology.Body
	RiverTile    *world.Tilemap[bool]
	RiverNetwork hydrology.RiverNetwork

	ErosionStats erosion.Stats

	// Truncated mirrors spec §7's optional BudgetExceeded behavior: true
	// if a caller-supplied wall-clock budget cut the erosion batching
	// loop short. This module doesn't implement wall-clock budgeting
	// itself (Config carries no budget field, since no caller in the
	// example pack exercises deadline-bounded batch loops), but the flag
	// is part of WorldData's documented shape so a future budget-aware
	// caller has somewhere to read the result from.
	Truncated bool
}
