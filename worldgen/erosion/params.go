// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package erosion implements S5, the terrain pipeline's erosion core: the
// hires upscale/downscale harness (§4.5.1, §4.5.6), Planchon-Darboux
// depression filling (§4.5.3.f), D8 flow routing and river tracing
// (§4.5.3), batched hydraulic droplet erosion (§4.5.4), and the Shallow
// Ice Approximation glacial solver (§4.5.5).
package erosion

// Config holds every erosion tunable enumerated in spec §6, with its
// documented default.
type Config struct {
	EnableRivers   bool
	EnableHydraulic bool
	EnableGlacial  bool

	HydraulicIterations   int
	DropletInertia        float32
	DropletCapacityFactor float32
	DropletErosionRate    float32
	DropletDepositRate    float32
	DropletEvaporation    float32
	DropletMinVolume      float32
	DropletMaxSteps       int
	DropletErosionRadius  int
	DropletGravity        float32

	GlacialTimesteps      int
	GlacialDt             float32
	IceDeformCoefficient  float32
	IceSlidingCoefficient float32
	ErosionCoefficient    float32
	GlenExponent          float32
	GlaciationTemperature float32

	RiverSourceMinAccumulation float32
	RiverSourceMinElevation    float32
	RiverCapacityFactor        float32
	RiverErosionRate           float32
	RiverDepositionRate        float32
	RiverMaxErosion            float32
	RiverChannelWidth          float32
}

// DefaultConfig returns the "Normal" preset: every field at its spec §6
// documented default.
func DefaultConfig() Config {
	return Config{
		EnableRivers:    true,
		EnableHydraulic: true,
		EnableGlacial:   true,

		HydraulicIterations:   750000,
		DropletInertia:        0.3,
		DropletCapacityFactor: 10.0,
		DropletErosionRate:    0.05,
		DropletDepositRate:    0.2,
		DropletEvaporation:    0.001,
		DropletMinVolume:      0.01,
		DropletMaxSteps:       3000,
		DropletErosionRadius:  3,
		DropletGravity:        8.0,

		GlacialTimesteps:      500,
		GlacialDt:             100.0,
		IceDeformCoefficient:  1e-7,
		IceSlidingCoefficient: 5e-4,
		ErosionCoefficient:    1e-4,
		GlenExponent:          3.0,
		GlaciationTemperature: -3.0,

		RiverSourceMinAccumulation: 15.0,
		RiverSourceMinElevation:    100.0,
		RiverCapacityFactor:        20.0,
		RiverErosionRate:           0.5,
		RiverDepositionRate:        0.5,
		RiverMaxErosion:            30.0,
		RiverChannelWidth:          2,
	}
}

// NoneConfig disables every erosion stage.
func NoneConfig() Config {
	c := DefaultConfig()
	c.EnableRivers = false
	c.EnableHydraulic = false
	c.EnableGlacial = false
	c.HydraulicIterations = 0
	return c
}

// MinimalConfig is the lightest enabled preset.
func MinimalConfig() Config {
	c := DefaultConfig()
	c.HydraulicIterations = 50000
	c.GlacialTimesteps = 100
	return c
}

// DramaticConfig exaggerates erosion intensity.
func DramaticConfig() Config {
	c := DefaultConfig()
	c.HydraulicIterations = 750000
	c.GlacialTimesteps = 750
	return c
}

// RealisticConfig is the heaviest preset.
func RealisticConfig() Config {
	c := DefaultConfig()
	c.HydraulicIterations = 1000000
	c.GlacialTimesteps = 1000
	return c
}

// hiresParams are Config fields rescaled for the upscaled working grid,
// per spec §4.5.2: area-based thresholds scale by f^2, path lengths by f.
type hiresParams struct {
	Config
	riverSourceMinAccumulation float32
	dropletMaxSteps            int
	dropletErosionRadius       int
}

// scaleForHires rescales the thresholds and step budgets that are
// sensitive to working at f times the base resolution, per spec §4.5.2.
func scaleForHires(c Config, f int) hiresParams {
	ff := float32(f * f)
	return hiresParams{
		Config:                     c,
		riverSourceMinAccumulation: c.RiverSourceMinAccumulation * ff * 0.25,
		dropletMaxSteps:            c.DropletMaxSteps * f,
		dropletErosionRadius:       minInt(c.DropletErosionRadius, 1),
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
