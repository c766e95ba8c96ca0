// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package erosion

// brushWeight is one cell of a precomputed radial erosion/deposition brush:
// an offset from the brush center and its normalized weight.
type brushWeight struct {
	dx, dy int
	weight float32
}

// newBrush precomputes a radial kernel with weights w(r) = max(0, 1-(r/R)^2),
// normalized to sum to 1, per spec §4.5.4. Radius 0 is point-erosion (a
// single cell of weight 1).
func newBrush(radius int) []brushWeight {
	if radius <= 0 {
		return []brushWeight{{0, 0, 1}}
	}

	r2 := float32(radius * radius)
	brush := make([]brushWeight, 0, (2*radius+1)*(2*radius+1))
	var total float32
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d2 := float32(dx*dx + dy*dy)
			w := 1 - d2/r2
			if w <= 0 {
				continue
			}
			brush = append(brush, brushWeight{dx, dy, w})
			total += w
		}
	}
	for i := range brush {
		brush[i].weight /= total
	}
	return brush
}

// applyBrushDelta scatters amount*weight into delta (a flat buffer matching
// the shape of a w x h Tilemap) around the wrap/clamp-indexed center
// (cx, cy), for the batched droplet snapshot-delta-reduce contract of
// spec §4.5.4/§5.
func applyBrushDelta(delta []float32, w, h int, brush []brushWeight, cx, cy int, amount float32) {
	for _, b := range brush {
		idx := wrapClampIndex(w, h, cx+b.dx, cy+b.dy)
		delta[idx] += amount * b.weight
	}
}

// wrapClampIndex mirrors world.Tilemap's wrap-x/clamp-y indexing for flat
// delta buffers that don't carry their own Tilemap.
func wrapClampIndex(w, h, x, y int) int {
	xw := x % w
	if xw < 0 {
		xw += w
	}
	if y < 0 {
		y = 0
	} else if y >= h {
		y = h - 1
	}
	return xw + y*w
}
