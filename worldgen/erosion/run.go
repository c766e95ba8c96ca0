// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package erosion

import (
	"github.com/ridgelinegames/worldcore/world"
	"github.com/ridgelinegames/worldcore/worldgen/climate"
	"github.com/ridgelinegames/worldcore/worldgen/noise"
)

// downscaleVarianceThreshold is spec §4.5.6's default variance gate for
// downscale_preserve_rivers. neverPreserveMin is a variance threshold no
// real grid exceeds, used to force plain mean-pooling for grids (like
// sliding velocity) that have no channel worth preserving via min-pick.
const (
	downscaleVarianceThreshold = 15
	neverPreserveMin           = 1e30
)

// Run is S5, the erosion core's single entry point: upscale to the hires
// working grid (§4.5.1), run whichever of rivers/hydraulic/glacial the
// config enables in that fixed order (§4.5a, §5), a final
// depression-fill/meander/depression-fill post-process (§4.5.6), then
// downscale_preserve_rivers back to output resolution. height and hardness
// are the S3/S4 outputs at output resolution and are left untouched; the
// hires working copies are discarded once Run returns.
func Run(height, hardness *world.Tilemap[float32], gen *noise.Generator, cfg Config, equatorTemperature float32, scale int, seed uint64, progress ProgressFunc) (*world.Tilemap[float32], Stats, error) {
	var stats Stats

	hiresHeight, hiresHardness := height, hardness
	if scale > 1 {
		roughnessFn := world.RoughnessFunc(func(x, y, slope float32) float32 {
			return gen.Roughness(x, y, slope)
		})
		hiresHeight = world.Upscale(height, scale, roughnessFn)
		hiresHeight = world.GaussianBlur(hiresHeight, 3)
		hiresHardness = world.Upscale(hardness, scale, nil)
	} else {
		hiresHeight = height.Clone()
	}

	p := scaleForHires(cfg, scale)
	if progress != nil {
		progress(ProgressEvent{Stage: "upscale"})
	}

	if cfg.EnableRivers {
		if err := runRivers(hiresHeight, hiresHardness, gen, p, &stats); err != nil {
			return nil, stats, err
		}
		if progress != nil {
			progress(ProgressEvent{Stage: "rivers"})
		}
	}

	if cfg.EnableHydraulic {
		if err := runHydraulic(hiresHeight, hiresHardness, p, seed, &stats, progress); err != nil {
			return nil, stats, err
		}
	}

	if cfg.EnableGlacial {
		temperature := climate.Temperature(hiresHeight, equatorTemperature)
		if err := runGlacial(hiresHeight, temperature, hiresHardness, p, &stats); err != nil {
			return nil, stats, err
		}
		stats.Iterations = cfg.GlacialTimesteps
		if progress != nil {
			progress(ProgressEvent{Stage: "glacial"})
		}
	}

	if err := finalPostProcess(hiresHeight, gen, p); err != nil {
		return nil, stats, err
	}
	if progress != nil {
		progress(ProgressEvent{Stage: "postprocess"})
	}

	out := hiresHeight
	if scale > 1 {
		out = world.DownscalePreserveRivers(hiresHeight, scale, downscaleVarianceThreshold)
		if stats.SlidingVelocity != nil {
			// Sliding velocity has no channels worth preserving through a
			// min-pick like terrain does, so plain mean-pooling (a variance
			// threshold no cell can exceed) is enough.
			stats.SlidingVelocity = world.DownscalePreserveRivers(stats.SlidingVelocity, scale, neverPreserveMin)
		}
	}
	if err := assertFinite("final", 0, out.Raw()); err != nil {
		return nil, stats, err
	}

	return out, stats, nil
}

// finalPostProcess implements spec §4.5.6's post-erosion sequence: fill,
// 12 meander passes over the fully eroded terrain, fill again. The D8
// routing used for this last meander pass is recomputed from the
// just-filled height field rather than reusing river tracing's stale
// dir/acc, since hydraulic and glacial erosion have both reshaped the
// terrain since then.
func finalPostProcess(height *world.Tilemap[float32], gen *noise.Generator, p hiresParams) error {
	filled := FillDepressions(height)
	height.CopyFrom(filled)

	dir := ComputeFlowDir(height)
	acc := ComputeFlowAccumulation(height, dir)
	runMeanderPasses(height, dir, acc, gen, p)

	final := FillDepressions(height)
	height.CopyFrom(final)

	return assertFinite("postprocess", 0, height.Raw())
}
