// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package worldgen

// ProgressEvent reports pipeline progress at stage boundaries (spec §2's
// Share column) and, during S5.4, every 10 000 droplets (spec §5).
// Warning carries spec §7's non-fatal DegenerateTerrainWarning text when
// S1's flood-fill realized fewer plates than requested.
type ProgressEvent struct {
	Stage         string
	CumulativePct float32
	DropletsDone  int
	DropletsTotal int
	Warning       string
}

// ProgressFunc is a per-call progress callback, never a package-level
// singleton, per spec §9's design note.
type ProgressFunc func(ProgressEvent)

// stageShare mirrors spec §2's Share column, used to report a running
// cumulative percentage at each stage boundary.
var stageShare = map[string]float32{
	"plates":    8,
	"stress":    4,
	"heightmap": 6,
	"materials": 4,
	"climate":   8,
	"erosion":   55,
	"hydrology": 15,
}

var stageOrder = []string{"plates", "stress", "heightmap", "materials", "erosion", "climate", "hydrology"}

func cumulativePct(upTo string) float32 {
	var sum float32
	for _, s := range stageOrder {
		sum += stageShare[s]
		if s == upTo {
			break
		}
	}
	return sum
}
