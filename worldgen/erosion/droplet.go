// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package erosion

import (
	"math/rand"

	"github.com/chewxy/math32"

	"github.com/ridgelinegames/worldcore/world"
)

// dropletBatchSize is the batch width of the snapshot->delta->reduce
// contract (spec §4.5.4/§5). Changing it is a determinism-breaking
// compatibility change, so it is a constant rather than a Config field.
const dropletBatchSize = 10000

// maxChangePerStep caps a single droplet step's erosion or deposition,
// per spec §4.5.4 step 5.
const maxChangePerStep = 15

// runHydraulic performs batched particle-based hydraulic droplet erosion
// (spec §4.5.4) against height in place. seed derives each droplet's
// independent PRNG stream so batch reduction order never affects a single
// droplet's trajectory (spec §5's snapshot/delta/reduce contract).
func runHydraulic(height, hardness *world.Tilemap[float32], p hiresParams, seed uint64, stats *Stats, progress ProgressFunc) error {
	w, h := height.Width(), height.Height()
	brush := newBrush(p.dropletErosionRadius)
	minH, maxH := minMaxHeight(height)
	heightRange := maxH - minH
	if heightRange < 1 {
		heightRange = 1
	}

	total := p.HydraulicIterations
	delta := make([]float32, w*h)

	for batchStart := 0; batchStart < total; batchStart += dropletBatchSize {
		batchEnd := batchStart + dropletBatchSize
		if batchEnd > total {
			batchEnd = total
		}

		snapshot := height.Clone()
		for i := range delta {
			delta[i] = 0
		}

		for i := batchStart; i < batchEnd; i++ {
			r := rand.New(rand.NewSource(int64(seed) + int64(i)))
			simulateDroplet(snapshot, hardness, brush, p, r, minH, heightRange, delta, stats)
		}

		raw := height.Raw()
		for i, d := range delta {
			if d != 0 {
				raw[i] += d
			}
		}

		if err := assertFinite("hydraulic", batchStart, raw); err != nil {
			return err
		}
		if progress != nil {
			progress(ProgressEvent{Stage: "hydraulic", DropletsDone: batchEnd, DropletsTotal: total})
		}
	}

	return nil
}

// simulateDroplet runs one droplet's full lifetime (spec §4.5.4 steps 1-8),
// scattering its height changes into delta rather than mutating snapshot,
// so every droplet in a batch reads the same immutable height field.
func simulateDroplet(snapshot, hardness *world.Tilemap[float32], brush []brushWeight, p hiresParams, r *rand.Rand, minHeight, heightRange float32, delta []float32, stats *Stats) {
	w, h := snapshot.Width(), snapshot.Height()

	x, y := spawnDropletPosition(snapshot, r, minHeight, heightRange)

	var dirX, dirY float32
	velocity := float32(1)
	water := float32(1)
	sediment := float32(0)

	for step := 0; step < p.dropletMaxSteps; step++ {
		gx, gy := world.GradientBilinear(snapshot, x, y)

		dirX = dirX*p.DropletInertia - gx*(1-p.DropletInertia)
		dirY = dirY*p.DropletInertia - gy*(1-p.DropletInertia)
		length := math32.Hypot(dirX, dirY)
		if length > 1e-4 {
			dirX /= length
			dirY /= length
		} else {
			angle := r.Float32() * 2 * math32.Pi
			dirX, dirY = math32.Cos(angle), math32.Sin(angle)
		}

		oldX, oldY := x, y
		oldHeight := world.SampleBilinear(snapshot, oldX, oldY)

		x += dirX
		y += dirY
		if y < 0 || y >= float32(h) {
			return
		}

		newHeight := world.SampleBilinear(snapshot, x, y)
		dh := newHeight - oldHeight

		capacity := world.Clamp(max32(-dh, 0)*velocity*water*p.DropletCapacityFactor, 0, 500)
		cellX, cellY := int(math32.Floor(oldX)), int(math32.Floor(oldY))
		rockHardness := hardness.At(cellX, cellY)

		if sediment > capacity {
			depositAmount := min32((sediment-capacity)*p.DropletDepositRate, maxChangePerStep)
			sediment -= depositAmount
			applyBrushDelta(delta, w, h, brush, cellX, cellY, depositAmount)
			stats.recordDeposition(depositAmount)
		} else {
			hardnessFactor := max32(1-rockHardness, 0)
			erodeAmount := min32((capacity-sediment)*p.DropletErosionRate*hardnessFactor, maxChangePerStep)
			if erodeAmount > 0 {
				sediment += erodeAmount
				applyBrushDelta(delta, w, h, brush, cellX, cellY, -erodeAmount)
				stats.recordErosion(erodeAmount)
			}
		}

		velocity = min32(math32.Sqrt(max32(0, velocity*velocity+dh*p.DropletGravity)), 50)
		water *= 1 - p.DropletEvaporation

		if newHeight < 0 {
			finalDeposit := min32(sediment, maxChangePerStep)
			if finalDeposit > 0 {
				applyBrushDelta(delta, w, h, brush, int(math32.Floor(x)), int(math32.Floor(y)), finalDeposit)
				stats.recordDeposition(finalDeposit)
			}
			return
		}

		if water < p.DropletMinVolume {
			finalDeposit := min32(sediment, maxChangePerStep*3)
			if finalDeposit > 0 {
				applyBrushDelta(delta, w, h, brush, int(math32.Floor(x)), int(math32.Floor(y)), finalDeposit)
				stats.recordDeposition(finalDeposit)
			}
			return
		}

		stats.StepsTaken++
	}
}

// spawnDropletPosition rejection-samples a spawn point biased toward high
// elevation, per spec §4.5.4: accept with probability max(0.1, h_norm^2) up
// to 10 tries, falling back to any land cell.
func spawnDropletPosition(height *world.Tilemap[float32], r *rand.Rand, minHeight, heightRange float32) (x, y float32) {
	w, h := height.Width(), height.Height()
	for attempt := 0; attempt < 10; attempt++ {
		x = r.Float32() * float32(w)
		y = r.Float32() * float32(h)
		hh := world.SampleBilinear(height, x, y)
		if hh < 0 {
			continue
		}
		norm := world.Clamp((hh-minHeight)/heightRange, 0, 1)
		accept := max32(norm*norm, 0.1)
		if r.Float32() < accept {
			return x, y
		}
	}
	for attempt := 0; ; attempt++ {
		x = r.Float32() * float32(w)
		y = r.Float32() * float32(h)
		if world.SampleBilinear(height, x, y) >= 0 {
			return x, y
		}
		if attempt > 1000 {
			// All-ocean world: give up the land-only preference rather
			// than spin forever.
			return x, y
		}
	}
}

func minMaxHeight(t *world.Tilemap[float32]) (minV, maxV float32) {
	minV, maxV = math32.Inf(1), math32.Inf(-1)
	t.ForEach(func(_, _ int, v float32) {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	})
	return
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
