// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package rng threads a single deterministic draw stream through the
// terrain genesis pipeline. Stages consume it in a documented, fixed
// order (S1, then S3); S2, S4, S5 and S6 draw nothing from it (S5's
// droplets use their own generators seeded from the pipeline seed). Reordering
// which stage consumes which draws is a compatibility break, per the
// design note in spec's §9 ("reordering consumption between stages is a
// compatibility break").
package rng

import (
	"math/rand"

	"github.com/chewxy/math32"
)

// Stream wraps a math/rand.Rand seeded from a single 64-bit seed. Go's
// math/rand algorithm is stable for a given Source across processes and
// platforms, which is what makes the whole pipeline bit-reproducible.
type Stream struct {
	r *rand.Rand
}

// New creates a Stream seeded deterministically from seed.
func New(seed uint64) *Stream {
	return &Stream{r: rand.New(rand.NewSource(int64(seed)))}
}

// Float32 draws a uniform value in [0, 1).
func (s *Stream) Float32() float32 {
	return s.r.Float32()
}

// Float32Range draws a uniform value in [lo, hi).
func (s *Stream) Float32Range(lo, hi float32) float32 {
	return lo + s.r.Float32()*(hi-lo)
}

// IntN draws a uniform integer in [0, n).
func (s *Stream) IntN(n int) int {
	return s.r.Intn(n)
}

// Bernoulli draws true with probability p.
func (s *Stream) Bernoulli(p float32) bool {
	return s.r.Float32() < p
}

// UnitDisc draws a point uniformly distributed on the unit disc, used for
// plate velocity direction+magnitude sampling (spec §4.2).
func (s *Stream) UnitDisc() (x, y float32) {
	for {
		x = s.Float32Range(-1, 1)
		y = s.Float32Range(-1, 1)
		if x*x+y*y <= 1 {
			return
		}
	}
}

// HueColor draws an RGB color distributed around the hue wheel with
// modest saturation/value jitter, used for plate display colors (spec
// §4.2). h0 seeds the base hue so plates spread around the wheel rather
// than clustering.
func (s *Stream) HueColor(h0 float32) (r, g, b float32) {
	hue := math32.Mod(h0+s.Float32Range(-0.05, 0.05), 1)
	sat := s.Float32Range(0.55, 0.85)
	val := s.Float32Range(0.75, 0.95)
	return hsvToRGB(hue, sat, val)
}

func hsvToRGB(h, s, v float32) (r, g, b float32) {
	i := math32.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	switch int(i) % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}
