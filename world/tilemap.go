// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package world holds the spatial primitives shared by every stage of the
// terrain genesis pipeline: a wrap/clamp 2D grid (Tilemap), its
// resampling operations, and the small numeric helpers the stages lean on.
package world

import "fmt"

// Tilemap is a row-major width x height buffer with horizontal wrap
// (x indexed modulo Width) and vertical clamp (y clamped to [0, Height-1]).
// There is no edge padding; Neighbor8 and Get/Set apply the wrap/clamp rule
// uniformly so every stage sees the same grid topology.
type Tilemap[T any] struct {
	width, height int
	cells         []T
}

// NewTilemap allocates a width x height Tilemap with zero-valued cells.
func NewTilemap[T any](width, height int) *Tilemap[T] {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("world: invalid tilemap dimensions %dx%d", width, height))
	}
	return &Tilemap[T]{
		width:  width,
		height: height,
		cells:  make([]T, width*height),
	}
}

// NewTilemapFilled allocates a Tilemap with every cell set to v.
func NewTilemapFilled[T any](width, height int, v T) *Tilemap[T] {
	t := NewTilemap[T](width, height)
	t.Fill(v)
	return t
}

func (t *Tilemap[T]) Width() int  { return t.width }
func (t *Tilemap[T]) Height() int { return t.height }

// wrapX applies the horizontal wrap rule. y is not adjusted here; callers
// needing the clamp rule call clampY.
func (t *Tilemap[T]) wrapX(x int) int {
	return Mod(x, t.width)
}

func (t *Tilemap[T]) clampY(y int) int {
	if y < 0 {
		return 0
	}
	if y >= t.height {
		return t.height - 1
	}
	return y
}

// index computes the row-major offset for a wrapped/clamped coordinate.
// It panics on out-of-range y (never on x, which is always wrapped),
// matching the primitive's documented guarantee.
func (t *Tilemap[T]) index(x, y int) int {
	if y < 0 || y >= t.height {
		panic(fmt.Sprintf("world: y %d out of range [0,%d)", y, t.height))
	}
	return t.wrapX(x) + y*t.width
}

// Get reads a cell, applying horizontal wrap. Panics if y is out of range.
func (t *Tilemap[T]) Get(x, y int) T {
	return t.cells[t.index(x, y)]
}

// Set writes a cell, applying horizontal wrap. Panics if y is out of range.
func (t *Tilemap[T]) Set(x, y int, v T) {
	t.cells[t.index(x, y)] = v
}

// At is an alias of Get with clamp-on-y semantics spelled out for callers
// that pass coordinates which may already have strayed outside the grid
// (e.g. bilinear sample corners); x still wraps, y still clamps.
func (t *Tilemap[T]) At(x, y int) T {
	return t.cells[t.wrapX(x)+t.clampY(y)*t.width]
}

// IndexWrapClamp returns the row-major index for (x, y) after applying the
// wrap/clamp rule, for callers (e.g. erosion's batched droplet delta
// buffers) that accumulate into a flat slice alongside the Tilemap rather
// than through Get/Set.
func (t *Tilemap[T]) IndexWrapClamp(x, y int) int {
	return t.wrapX(x) + t.clampY(y)*t.width
}

// Fill sets every cell to v.
func (t *Tilemap[T]) Fill(v T) {
	for i := range t.cells {
		t.cells[i] = v
	}
}

// Clone returns a deep (contiguous memcpy) copy.
func (t *Tilemap[T]) Clone() *Tilemap[T] {
	clone := &Tilemap[T]{
		width:  t.width,
		height: t.height,
		cells:  make([]T, len(t.cells)),
	}
	copy(clone.cells, t.cells)
	return clone
}

// CopyFrom overwrites t's cells with src's. Panics if dimensions differ.
func (t *Tilemap[T]) CopyFrom(src *Tilemap[T]) {
	if t.width != src.width || t.height != src.height {
		panic("world: CopyFrom dimension mismatch")
	}
	copy(t.cells, src.cells)
}

// Raw exposes the backing slice for bulk numeric passes (e.g. finiteness
// assertions over height after a droplet batch). Mutating it bypasses the
// wrap/clamp index helper, so callers must already know the index scheme.
func (t *Tilemap[T]) Raw() []T {
	return t.cells
}

// ForEach visits every cell in row-major order.
func (t *Tilemap[T]) ForEach(fn func(x, y int, v T)) {
	for y := 0; y < t.height; y++ {
		row := y * t.width
		for x := 0; x < t.width; x++ {
			fn(x, y, t.cells[row+x])
		}
	}
}

// neighbor8Offsets lists the 8 neighbor deltas in a fixed, deterministic
// order: N, NE, E, SE, S, SW, W, NW. isDiagonal marks the four corner
// neighbors, used to weight distances in D8 flow routing (orthogonal
// distance 1, diagonal distance sqrt(2)).
var neighbor8Offsets = [8]struct {
	dx, dy     int
	isDiagonal bool
}{
	{0, -1, false},
	{1, -1, true},
	{1, 0, false},
	{1, 1, true},
	{0, 1, false},
	{-1, 1, true},
	{-1, 0, false},
	{-1, -1, true},
}

// Neighbor8 invokes fn for each of the 8 neighbors of (x, y), applying the
// wrap/clamp rule. A neighbor above the top row or below the bottom row
// clamps to the same row as (x, y) and is still visited (it is simply
// identical to a different already-visited neighbor in that degenerate
// case), matching Tilemap's "no edge padding" contract.
func (t *Tilemap[T]) Neighbor8(x, y int, fn func(nx, ny int, isDiagonal bool)) {
	for _, off := range neighbor8Offsets {
		nx := t.wrapX(x + off.dx)
		ny := t.clampY(y + off.dy)
		fn(nx, ny, off.isDiagonal)
	}
}

// NeighborDist returns the routing distance (1 or sqrt(2)) for the given
// diagonal flag, matching D8's distance convention in spec §4.5.3.a.
func NeighborDist(isDiagonal bool) float32 {
	if isDiagonal {
		return sqrt2
	}
	return 1
}

const sqrt2 = 1.4142135

// NeighborDirCount is the number of D8 directions.
const NeighborDirCount = 8

// NeighborDirDelta returns the (dx, dy) offset and diagonal flag for D8
// direction index i, in the same N/NE/E/SE/S/SW/W/NW order Neighbor8
// visits neighbors. This is the encoding spec §3 describes for flow
// direction grids ("values 0..=7 map to the 8 neighbors").
func NeighborDirDelta(i int) (dx, dy int, isDiagonal bool) {
	off := neighbor8Offsets[i]
	return off.dx, off.dy, off.isDiagonal
}
