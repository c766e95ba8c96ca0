// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package erosion

import (
	"sort"

	"github.com/chewxy/math32"

	"github.com/ridgelinegames/worldcore/world"
	"github.com/ridgelinegames/worldcore/worldgen/noise"
)

// Sea-level and carving constants from spec §4.5.3.d.
const (
	minRiverHeight       = 0.1
	monotonicDescentStep = 0.05
	deltaFanRadius       = 4
	meanderPasses        = 12
)

// riverSource is a candidate headwater cell: a local river source plus the
// flow accumulation it was detected with, used only to order tracing
// (largest catchment first) so bigger rivers claim confluences before their
// tributaries reach them.
type riverSource struct {
	x, y int
	acc  float32
}

// runRivers implements spec §4.5.3: depression-fill before and after
// tracing, D8 routing and flow accumulation (reusing the exported
// §4.5.3.a/b helpers so S6 hydrology sees the same algorithm), source
// detection, downstream sediment-transport tracing, and lateral meander
// erosion.
func runRivers(height, hardness *world.Tilemap[float32], gen *noise.Generator, p hiresParams, stats *Stats) error {
	filled := FillDepressions(height)
	height.CopyFrom(filled)

	dir := ComputeFlowDir(height)
	acc := ComputeFlowAccumulation(height, dir)

	sources := findRiverSources(height, acc, p)

	visited := world.NewTilemapFilled[bool](height.Width(), height.Height(), false)
	for _, s := range sources {
		if visited.Get(s.x, s.y) {
			continue
		}
		traceRiver(height, dir, acc, hardness, s.x, s.y, p, visited, stats)
	}

	runMeanderPasses(height, dir, acc, gen, p)

	final := FillDepressions(height)
	height.CopyFrom(final)

	return assertFinite("rivers", 0, height.Raw())
}

// findRiverSources implements spec §4.5.3.c, ordering candidates by
// descending flow accumulation so larger catchments trace (and thus claim
// confluence cells) before their tributaries.
func findRiverSources(height, acc *world.Tilemap[float32], p hiresParams) []riverSource {
	w, h := height.Width(), height.Height()
	minAcc := p.riverSourceMinAccumulation

	var sources []riverSource
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := acc.Get(x, y)
			if a < minAcc || a >= minAcc*3 {
				continue
			}
			if height.Get(x, y) < p.RiverSourceMinElevation {
				continue
			}
			sources = append(sources, riverSource{x, y, a})
		}
	}

	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].acc > sources[j].acc
	})
	return sources
}

// traceRiver implements spec §4.5.3.d: walk downstream from (sx, sy) along
// D8, eroding or depositing sediment at each step, until the trace reaches
// the sea, a cell already carved by another trace (confluence), or a dead
// end (no downstream neighbor).
func traceRiver(height *world.Tilemap[float32], dir *world.Tilemap[uint8], acc, hardness *world.Tilemap[float32], sx, sy int, p hiresParams, visited *world.Tilemap[bool], stats *Stats) {
	w, h := height.Width(), height.Height()
	x, y := sx, sy
	sediment := float32(0)

	maxSteps := w * h
	length := 0

	for step := 0; step < maxSteps; step++ {
		visited.Set(x, y, true)
		length++

		curHeight := height.Get(x, y)
		if curHeight < 0 {
			d := dir.Get(x, y)
			depositDeltaFan(height, x, y, sediment, d)
			if sediment > 0 {
				stats.recordDeposition(sediment)
			}
			break
		}

		d := dir.Get(x, y)
		if d == NoFlow {
			break
		}

		dx, dy, diag := world.NeighborDirDelta(int(d))
		nx, ny := x+dx, clampInt(y+dy, 0, h-1)
		nextHeight := height.Get(nx, ny)

		dist := world.NeighborDist(diag)
		slope := max32((curHeight-nextHeight)/dist, 0)
		flow := acc.Get(x, y)
		velocity := min32(1+slope*2, 10)

		k := p.RiverCapacityFactor
		minCapacity := k * math32.Sqrt(flow) * 0.01
		capacity := max32(k*math32.Sqrt(flow)*slope*velocity, minCapacity)
		halfWidth := riverHalfWidth(flow, p.RiverChannelWidth, p.riverSourceMinAccumulation)

		if sediment > capacity {
			deposit := (sediment - capacity) * p.RiverDepositionRate
			if deposit > 0 {
				applyFloodplainDeposition(height, x, y, deposit, int(d), halfWidth)
				sediment -= deposit
				stats.recordDeposition(deposit)
			}
		} else {
			hardnessFactor := max32(1-hardness.Get(x, y), 0.1)
			desired := min32((capacity-sediment)*p.RiverErosionRate*hardnessFactor, p.RiverMaxErosion)
			actual := min32(desired, max32(curHeight-minRiverHeight, 0))
			if actual > 0 {
				applyChannelErosion(height, x, y, actual, int(d), halfWidth)
				sediment += actual
				stats.recordErosion(actual)
			}
		}

		curHeight = height.Get(x, y)
		nextHeight = height.Get(nx, ny)
		if nextHeight >= curHeight-monotonicDescentStep {
			carved := max32(curHeight-monotonicDescentStep, minRiverHeight)
			if carved < nextHeight {
				height.Set(nx, ny, carved)
			}
		}

		confluence := visited.Get(nx, ny)
		x, y = nx, ny
		if confluence {
			break
		}
	}

	stats.RiverLengths = append(stats.RiverLengths, length)
}

// riverHalfWidth implements the §4.5.3.d channel-carving width formula,
// distinct from the network-extraction width formula of §4.7.
func riverHalfWidth(flow, baseWidth, sourceThreshold float32) int {
	ratio := max32(flow/sourceThreshold, 1)
	w := math32.Ceil(baseWidth * math32.Sqrt(ratio))
	return clampInt(int(w), 1, 8)
}

// perpendicular returns the (dx, dy) offset 90 degrees clockwise from flow
// direction index d, for channel cross-section erosion/deposition. world's
// D8 direction table is ordered N,NE,E,SE,S,SW,W,NW, so rotating 90 degrees
// clockwise is simply the direction two slots ahead.
func perpendicular(d int) (dx, dy int) {
	dx, dy, _ = world.NeighborDirDelta((d + 2) % world.NeighborDirCount)
	return
}

// applyChannelErosion carves the V-shaped cross-section of spec §4.5.3.d:
// full erosion at the channel center, falling off quadratically to the
// banks, clamped so no cell digs below minRiverHeight.
func applyChannelErosion(height *world.Tilemap[float32], x, y int, amount float32, d, halfWidth int) {
	w, h := height.Width(), height.Height()
	pdx, pdy := perpendicular(d)

	for i := -halfWidth; i <= halfWidth; i++ {
		nx := wrapInt(x+pdx*i, w)
		ny := clampInt(y+pdy*i, 0, h-1)

		dist := float32(abs(i))
		falloff := 1 - dist/(float32(halfWidth)+1)
		local := amount * falloff * falloff

		cur := height.Get(nx, ny)
		maxErosion := max32(cur-minRiverHeight, 0)
		actual := min32(local, maxErosion)
		height.Set(nx, ny, cur-actual)
	}
}

// applyFloodplainDeposition deposits sediment outside the channel itself
// (spec §4.5.3.d's "lateral neighbors"), forming the levee/floodplain
// pattern a river leaves as it overflows its banks.
func applyFloodplainDeposition(height *world.Tilemap[float32], x, y int, amount float32, d, halfWidth int) {
	w, h := height.Width(), height.Height()
	pdx, pdy := perpendicular(d)

	innerRadius := halfWidth + 1
	outerRadius := halfWidth + 3

	for i := -outerRadius; i <= outerRadius; i++ {
		if abs(i) <= innerRadius {
			continue
		}
		nx := wrapInt(x+pdx*i, w)
		ny := clampInt(y+pdy*i, 0, h-1)

		distFromChannel := float32(abs(i) - innerRadius)
		falloff := 1 - distFromChannel/float32(outerRadius-innerRadius+1)
		local := amount * falloff * 0.3

		cur := height.Get(nx, ny)
		height.Set(nx, ny, cur+local)
	}
}

// depositDeltaFan implements spec §4.5.3.d's river-mouth deposition: the
// remaining sediment fans out underwater in the downstream direction,
// building a delta. Only cells still below sea level receive sediment, and
// none is raised above 5 m.
func depositDeltaFan(height *world.Tilemap[float32], x, y int, amount float32, d uint8) {
	if amount <= 0 {
		return
	}
	w, h := height.Width(), height.Height()

	fdx, fdy := 0, 1
	if d != NoFlow {
		fdx, fdy, _ = world.NeighborDirDelta(int(d))
	}

	for dy := -deltaFanRadius; dy <= deltaFanRadius; dy++ {
		for dx := -deltaFanRadius; dx <= deltaFanRadius; dx++ {
			forward := dx*fdx + dy*fdy
			if forward < 0 {
				continue
			}
			distSq := dx*dx + dy*dy
			if distSq > deltaFanRadius*deltaFanRadius {
				continue
			}

			nx := wrapInt(x+dx, w)
			ny := clampInt(y+dy, 0, h-1)

			dist := math32.Sqrt(float32(distSq))
			falloff := 1 - dist/(float32(deltaFanRadius)+1)
			local := amount * falloff * 0.5

			cur := height.Get(nx, ny)
			if cur < 0 {
				height.Set(nx, ny, min32(cur+local, 5))
			}
		}
	}
}

// runMeanderPasses implements spec §4.5.3.e: 12 lateral-erosion passes over
// every high-accumulation cell on gently sloping ground, eroding one bank
// and depositing a point bar on the opposite bank. The eroded bank is
// picked by the sign of coherent noise, so the same seed always produces
// the same meander pattern; channel curvature is not computed, so the
// eroded bank is not necessarily the outer bank of a bend. Reuses the rock
// noise channel as the bank-selection field: any coherent, seed-derived
// channel works, and introducing a fifth perlin.Perlin purely for meander
// bias would add no new information.
func runMeanderPasses(height *world.Tilemap[float32], dir *world.Tilemap[uint8], acc *world.Tilemap[float32], gen *noise.Generator, p hiresParams) {
	w, h := height.Width(), height.Height()
	threshold := p.riverSourceMinAccumulation
	const meanderStrength = 8.0
	const meanderFreq = 0.07

	for pass := 0; pass < meanderPasses; pass++ {
		for y := 1; y < h-1; y++ {
			for x := 0; x < w; x++ {
				a := acc.Get(x, y)
				curHeight := height.Get(x, y)
				if a < threshold || curHeight < 0 {
					continue
				}

				d := dir.Get(x, y)
				if d == NoFlow {
					continue
				}

				dx, dy, diag := world.NeighborDirDelta(int(d))
				nx, ny := wrapInt(x+dx, w), clampInt(y+dy, 0, h-1)
				slope := max32(curHeight-height.Get(nx, ny), 0) / world.NeighborDist(diag)
				flatness := max32(1-min32(slope/50, 1), 0)
				if flatness < 0.3 {
					continue
				}

				n := gen.Rock(float32(x)*meanderFreq, float32(y)*meanderFreq+float32(pass))
				pdx, pdy := perpendicular(int(d))

				side := 1
				if n <= 0 {
					side = -1
				}
				amount := meanderStrength * flatness * math32.Abs(n)

				ex, ey := wrapInt(x+pdx*side, w), clampInt(y+pdy*side, 0, h-1)
				eh := height.Get(ex, ey)
				if eh > minRiverHeight {
					height.Set(ex, ey, max32(eh-amount, minRiverHeight))
				}

				ix, iy := wrapInt(x-pdx*side, w), clampInt(y-pdy*side, 0, h-1)
				ih := height.Get(ix, iy)
				if ih > 0 {
					height.Set(ix, iy, ih+amount*0.5)
				}
			}
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func wrapInt(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
