// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package plates implements S1 (plate generation) and S2 (boundary
// stress) of the terrain genesis pipeline. Plates are created once here
// and are immutable afterward; every later stage takes them by read-only
// reference, per the design note in spec's §9.
package plates

// ID identifies a plate. It fits in 16 bits, per spec §3.
type ID uint16

// Kind is a plate's tectonic character.
type Kind uint8

const (
	Oceanic Kind = iota
	Continental
)

func (k Kind) String() string {
	if k == Continental {
		return "continental"
	}
	return "oceanic"
}

// Color is a plate's display color, stored as float32 RGB in [0, 1].
type Color struct {
	R, G, B float32
}

// Velocity is a plate's unitless drift direction and speed. It carries no
// methods of its own: S2's Stress is the only consumer of plate velocity,
// and it only ever needs the raw components (see stress.go).
type Velocity struct {
	X, Y float32
}

// Plate describes one tectonic plate. Plates are created once in S1 and
// never mutated afterward (spec §3, §9).
type Plate struct {
	ID            ID
	Kind          Kind
	BaseElevation float32  // metres; Oceanic ~ -2000, Continental ~ +400
	Velocity      Velocity // unitless, magnitude ~0.1-2.0
	Color         Color
}
