// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package erosion

import (
	"github.com/chewxy/math32"

	"github.com/ridgelinegames/worldcore/world"
)

// Stats accumulates mass-accounting and progress counters across every
// erosion substage, per spec §3 and §6.
type Stats struct {
	TotalEroded    float64
	TotalDeposited float64
	StepsTaken     uint64
	Iterations     int
	MaxErosion     float32
	MaxDeposition  float32
	RiverLengths   []int
	Truncated      bool

	// SlidingVelocity is the SIA solver's final basal sliding speed grid
	// (spec §4.5.5), at output resolution. Left nil when EnableGlacial is
	// false, since no glacial pass ever ran to populate one; spec §8
	// scenario C's "no sliding velocity anywhere" claim is checked against
	// a nil-or-all-zero grid rather than assuming a grid always exists.
	SlidingVelocity *world.Tilemap[float32]
}

func (s *Stats) recordErosion(amount float32) {
	if amount <= 0 {
		return
	}
	s.TotalEroded += float64(amount)
	if amount > s.MaxErosion {
		s.MaxErosion = amount
	}
}

func (s *Stats) recordDeposition(amount float32) {
	if amount <= 0 {
		return
	}
	s.TotalDeposited += float64(amount)
	if amount > s.MaxDeposition {
		s.MaxDeposition = amount
	}
}

// assertFinite returns a NumericalInstabilityError if any cell of raw is
// NaN or Inf, per spec §7's per-batch/per-timestep assertion requirement.
// The pipeline has no exception-based control flow (spec §9): callers
// propagate the error up through ordinary returns.
func assertFinite(stage string, iteration int, raw []float32) error {
	for _, v := range raw {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return NumericalInstabilityError{Stage: stage, Iteration: iteration}
		}
	}
	return nil
}
