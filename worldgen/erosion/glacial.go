// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package erosion

import (
	"github.com/chewxy/math32"

	"github.com/ridgelinegames/worldcore/world"
)

// glacialMaxFlux and glacialMaxIceThickness guard the SIA solver against the runaway
// flux values a near-vertical surface gradient can otherwise produce,
// matching the clamps the rest of the erosion core applies at every
// potentially-unstable term.
const (
	glacialRhoG            = 0.01
	glacialMinIceThickness = 0.1
	glacialMaxIceThickness = 500
	glacialMaxDeformTerm   = 1e6
	glacialMaxSlideTerm    = 1e4
	glacialMaxFlux         = 1e6
	glacialMaxSlidingVel   = 100
	glacialMaxErosionStep  = 5
	glacialMinErosionIce   = 10
)

// glacialState holds bedrock plus the four auxiliary grids the Shallow Ice
// Approximation solver maintains across timesteps, per spec §4.5.5.
type glacialState struct {
	bedrock      *world.Tilemap[float32]
	iceThickness *world.Tilemap[float32]
	fluxX        *world.Tilemap[float32]
	fluxY        *world.Tilemap[float32]
	slidingVel   *world.Tilemap[float32]
}

func newGlacialState(height *world.Tilemap[float32]) *glacialState {
	w, h := height.Width(), height.Height()
	return &glacialState{
		bedrock:      height.Clone(),
		iceThickness: world.NewTilemap[float32](w, h),
		fluxX:        world.NewTilemap[float32](w, h),
		fluxY:        world.NewTilemap[float32](w, h),
		slidingVel:   world.NewTilemap[float32](w, h),
	}
}

func (s *glacialState) surface(x, y int) float32 {
	return s.bedrock.Get(x, y) + s.iceThickness.Get(x, y)
}

// runGlacial implements spec §4.5.5: a Shallow Ice Approximation solver run
// after hydraulic erosion, eroding bedrock wherever basal sliding carries
// enough ice. height is mutated in place with the final eroded bedrock.
func runGlacial(height, temperature, hardness *world.Tilemap[float32], p hiresParams, stats *Stats) error {
	state := newGlacialState(height)
	ela := equilibriumLineAltitude(temperature, height, p.GlaciationTemperature)

	for step := 0; step < p.GlacialTimesteps; step++ {
		massBalance := glacialMassBalance(state, temperature, ela, p)
		glacialIceFlux(state, p)
		glacialUpdateIceThickness(state, massBalance, p)
		glacialErodeBedrock(state, hardness, p, stats)

		if err := assertFinite("glacial", step, state.bedrock.Raw()); err != nil {
			return err
		}
		if err := assertFinite("glacial", step, state.iceThickness.Raw()); err != nil {
			return err
		}
	}

	height.CopyFrom(state.bedrock)
	stats.SlidingVelocity = state.slidingVel
	return nil
}

// equilibriumLineAltitude implements spec §4.5.5 step 1's ELA definition
// literally: "the elevation where temperature equals glaciation_temperature".
// Since temperature is linear in elevation at fixed latitude (spec §4.5a:
// T = T_equator - lat_term - height*lapse_rate), solving T(h)=glaciation_temp
// for h gives height = (T_actual - glaciation_temp)/lapse_rate + height,
// i.e. the algebraic inversion below; averaging that per-cell solution over
// the grid gives a single scalar ELA, the same role spec.md's wording
// describes, without the heuristic "near-threshold cell" sampling the
// original implementation used.
func equilibriumLineAltitude(temperature, height *world.Tilemap[float32], glaciationTemp float32) float32 {
	const lapseRate = 6.5e-3
	w, h := height.Width(), height.Height()

	var sum float64
	count := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			elev := height.Get(x, y)
			temp := temperature.Get(x, y)
			solved := elev + (temp-glaciationTemp)/lapseRate
			sum += float64(solved)
			count++
		}
	}
	if count == 0 {
		return 2000
	}
	return float32(sum / float64(count))
}

// glacialMassBalance implements spec §4.5.5 step 1: ablation-only when
// locally too warm for ice, otherwise accumulation/ablation proportional to
// elevation above the ELA, clamped to [-5, 5].
func glacialMassBalance(state *glacialState, temperature *world.Tilemap[float32], ela float32, p hiresParams) *world.Tilemap[float32] {
	w, h := state.bedrock.Width(), state.bedrock.Height()
	balance := world.NewTilemap[float32](w, h)

	const gradient = 0.01
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			temp := temperature.Get(x, y)
			if temp > p.GlaciationTemperature {
				balance.Set(x, y, -gradient*10)
				continue
			}
			elevationAboveELA := state.surface(x, y) - ela
			balance.Set(x, y, world.Clamp(elevationAboveELA*gradient, -5, 5))
		}
	}
	return balance
}

// glacialIceFlux implements spec §4.5.5 step 2, the SIA flux equation:
// deformation (Glen's flow law, n=3) plus basal sliding, directed along the
// negative surface gradient.
func glacialIceFlux(state *glacialState, p hiresParams) {
	w, h := state.bedrock.Width(), state.bedrock.Height()
	n := p.GlenExponent
	a := p.IceDeformCoefficient
	ub := p.IceSlidingCoefficient

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			thickness := state.iceThickness.Get(x, y)
			if thickness <= glacialMinIceThickness {
				state.fluxX.Set(x, y, 0)
				state.fluxY.Set(x, y, 0)
				state.slidingVel.Set(x, y, 0)
				continue
			}

			gx, gy := surfaceGradientAtCell(state, x, y)
			gradMag := math32.Hypot(gx, gy)
			if gradMag < 1e-4 {
				state.fluxX.Set(x, y, 0)
				state.fluxY.Set(x, y, 0)
				state.slidingVel.Set(x, y, 0)
				continue
			}

			hClamped := min32(thickness, glacialMaxIceThickness)

			deformCoeff := (2 * a) / (n + 2)
			rhoGN := math32.Pow(glacialRhoG, n)
			hN2 := math32.Pow(hClamped, n+2)
			gradN1 := math32.Pow(gradMag, n-1)
			deformTerm := min32(deformCoeff*rhoGN*hN2*gradN1, glacialMaxDeformTerm)

			slideTerm := min32(ub*hClamped, glacialMaxSlideTerm)

			fluxMag := world.Clamp(-(deformTerm + slideTerm), -glacialMaxFlux, glacialMaxFlux)

			state.fluxX.Set(x, y, world.Clamp(fluxMag*gx, -glacialMaxFlux, glacialMaxFlux))
			state.fluxY.Set(x, y, world.Clamp(fluxMag*gy, -glacialMaxFlux, glacialMaxFlux))
			state.slidingVel.Set(x, y, min32(math32.Abs(ub*hClamped*gradMag), glacialMaxSlidingVel))
		}
	}
}

// glacialUpdateIceThickness implements spec §4.5.5 step 3: the continuity
// equation h <- max(0, h + dt*(balance - div(flux))), using a standard
// 5-point finite-difference divergence stencil.
func glacialUpdateIceThickness(state *glacialState, massBalance *world.Tilemap[float32], p hiresParams) {
	w, h := state.bedrock.Width(), state.bedrock.Height()
	next := world.NewTilemap[float32](w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			divQ := fluxDivergenceAtCell(state.fluxX, state.fluxY, x, y)
			dh := p.GlacialDt * (massBalance.Get(x, y) - divQ)
			next.Set(x, y, max32(state.iceThickness.Get(x, y)+dh, 0))
		}
	}

	state.iceThickness.CopyFrom(next)
}

// glacialErodeBedrock implements spec §4.5.5 step 4: erode bedrock wherever
// basal sliding carries enough ice, modulated by rock hardness and clamped
// per-timestep, with the same sea-level clamp river erosion uses.
func glacialErodeBedrock(state *glacialState, hardness *world.Tilemap[float32], p hiresParams, stats *Stats) {
	w, h := state.bedrock.Width(), state.bedrock.Height()
	k := p.ErosionCoefficient

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ub := state.slidingVel.Get(x, y)
			thickness := state.iceThickness.Get(x, y)
			if ub <= 0 || thickness < glacialMinErosionIce {
				continue
			}

			iceFactor := world.Clamp(thickness/200, 0.1, 1.5)
			erosionRate := k * ub * iceFactor

			hardnessFactor := 1 - hardness.Get(x, y)
			desired := min32(erosionRate*hardnessFactor*p.GlacialDt, glacialMaxErosionStep)

			cur := state.bedrock.Get(x, y)
			actual := min32(desired, max32(cur-minRiverHeight, 0))
			if actual <= 0 {
				continue
			}

			state.bedrock.Set(x, y, cur-actual)
			stats.recordErosion(actual)
		}
	}
}

// surfaceGradientAtCell computes the central-difference gradient of
// bedrock+ice at (x, y): wrap on x, clamp on y, matching Tilemap's grid
// topology everywhere else in the pipeline.
func surfaceGradientAtCell(state *glacialState, x, y int) (gx, gy float32) {
	w, h := state.bedrock.Width(), state.bedrock.Height()

	surf := func(x, y int) float32 { return state.surface(x, y) }

	xl, xr := wrapInt(x-1, w), wrapInt(x+1, w)
	gx = (surf(xr, y) - surf(xl, y)) / 2

	if y == 0 {
		gy = surf(x, 1) - surf(x, 0)
	} else if y == h-1 {
		gy = surf(x, h-1) - surf(x, h-2)
	} else {
		gy = (surf(x, y+1) - surf(x, y-1)) / 2
	}
	return
}

// fluxDivergenceAtCell computes div(flux) at (x, y) with the same
// central-difference/edge-clamp convention as surfaceGradientAtCell.
func fluxDivergenceAtCell(fluxX, fluxY *world.Tilemap[float32], x, y int) float32 {
	w, h := fluxX.Width(), fluxX.Height()

	xl, xr := wrapInt(x-1, w), wrapInt(x+1, w)
	dFxDx := (fluxX.Get(xr, y) - fluxX.Get(xl, y)) / 2

	var dFyDy float32
	if y == 0 {
		dFyDy = fluxY.Get(x, 1) - fluxY.Get(x, 0)
	} else if y == h-1 {
		dFyDy = fluxY.Get(x, h-1) - fluxY.Get(x, h-2)
	} else {
		dFyDy = (fluxY.Get(x, y+1) - fluxY.Get(x, y-1)) / 2
	}

	return dFxDx + dFyDy
}
