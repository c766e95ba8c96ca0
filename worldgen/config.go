// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package worldgen exposes the terrain genesis pipeline's single entry
// point, Generate, and the WorldConfig/WorldData surface described in
// spec §6. It wires the stage packages (plates, heightmap, climate,
// erosion, hydrology) together in the fixed dataflow order of spec §2,
// threading a single rng.Stream through S1 and S3 per spec §9 (S5 seeds
// its droplet generators from the config seed instead).
package worldgen

import (
	"github.com/ridgelinegames/worldcore/worldgen/erosion"
)

// Config mirrors spec §6's WorldConfig: width/height, seed, optional
// plate count, an ErosionConfig bundle, the hires simulation scale, and
// the climate toggle. Loading it from flags/env/files is an external
// collaborator (spec §1); this struct is the pure, in-memory surface.
type Config struct {
	Width, Height int
	Seed          uint64

	// PlateCount is 0 (unset) to draw a count from U[6,15] using Seed,
	// per spec §4.2.
	PlateCount int

	Erosion ErosionConfig

	// SimulationScale is the hires upscale factor f (spec §4.5.1). Must
	// be 1, 2, or 4.
	SimulationScale int

	EnableClimate bool

	// EquatorTemperature overrides spec §4.5a's T_equator (default 30
	// C). Exposed for scenario C's "warm climate" test, which sets it to
	// 40 to suppress glaciation.
	EquatorTemperature float32
}

// ErosionConfig is erosion.Config re-exported at the package boundary so
// callers configure the whole pipeline through one package, per spec §6.
type ErosionConfig = erosion.Config

const defaultEquatorTemperature = 30

// DefaultConfig returns the spec §6 defaults: 512x256, Normal erosion
// preset, simulation_scale 4, climate enabled.
func DefaultConfig() Config {
	return Config{
		Width:              512,
		Height:             256,
		SimulationScale:    4,
		Erosion:            erosion.DefaultConfig(),
		EnableClimate:      true,
		EquatorTemperature: defaultEquatorTemperature,
	}
}

// Preset names the five bundles spec §6 enumerates.
type Preset uint8

const (
	PresetNone Preset = iota
	PresetMinimal
	PresetNormal
	PresetDramatic
	PresetRealistic
)

// ErosionConfigForPreset returns the tuned ErosionConfig bundle spec §6
// names for preset, leaving every other Config field untouched.
func ErosionConfigForPreset(preset Preset) ErosionConfig {
	switch preset {
	case PresetNone:
		return erosion.NoneConfig()
	case PresetMinimal:
		return erosion.MinimalConfig()
	case PresetDramatic:
		return erosion.DramaticConfig()
	case PresetRealistic:
		return erosion.RealisticConfig()
	default:
		return erosion.DefaultConfig()
	}
}

// Validate implements spec §7's InvalidConfig error class: width/height
// range, simulation_scale enum, and glaciation_temperature range.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Width > 8192 {
		return InvalidConfigError{Field: "Width", Reason: "must be in (0, 8192]"}
	}
	if c.Height <= 0 || c.Height >= c.Width {
		return InvalidConfigError{Field: "Height", Reason: "must be positive and less than Width"}
	}
	switch c.SimulationScale {
	case 1, 2, 4:
	default:
		return InvalidConfigError{Field: "SimulationScale", Reason: "must be 1, 2, or 4"}
	}
	if c.Erosion.GlaciationTemperature < -50 || c.Erosion.GlaciationTemperature > 50 {
		return InvalidConfigError{Field: "Erosion.GlaciationTemperature", Reason: "must be in [-50, 50]"}
	}
	if c.PlateCount < 0 {
		return InvalidConfigError{Field: "PlateCount", Reason: "must be >= 0 (0 means draw from seed)"}
	}
	if c.Erosion.HydraulicIterations < 0 || c.Erosion.DropletMaxSteps < 0 || c.Erosion.GlacialTimesteps < 0 {
		return InvalidConfigError{Field: "Erosion", Reason: "iteration/step counts must be non-negative"}
	}
	return nil
}
