// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package erosion

// ProgressEvent reports erosion-internal progress: a substage name, and
// (during hydraulic droplet batches) how many of the configured droplets
// have been processed, per spec §5's "every 10 000 droplets" requirement.
type ProgressEvent struct {
	Stage         string
	DropletsDone  int
	DropletsTotal int
}

// ProgressFunc is a per-call progress callback, never a package-level
// singleton, per the design note in spec §9.
type ProgressFunc func(ProgressEvent)
