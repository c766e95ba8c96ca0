// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package hydrology

import (
	"sort"

	"github.com/chewxy/math32"

	"github.com/ridgelinegames/worldcore/world"
	"github.com/ridgelinegames/worldcore/worldgen/erosion"
)

// SegmentIdx indexes into RiverNetwork.Segments. Tributary links are
// stored as indices into this arena rather than pointers, per spec §9's
// "never store pointers between segments" design note.
type SegmentIdx int

// ControlPoint is one polyline vertex of a traced river, per spec §3's
// "per-point (flow_acc, width, elevation)" river network contract.
type ControlPoint struct {
	X, Y      float32
	FlowAcc   float32
	Width     float32
	Elevation float32
}

// Segment is one traced river path from a source to its confluence (or
// the sea/a lake), plus its tributary link, per spec §4.7 and §9's
// Segment{points, parent, join_point_index} shape.
type Segment struct {
	Points         []ControlPoint
	Parent         *SegmentIdx
	JoinPointIndex uint32
}

// RiverNetwork is the structured form of spec §4.7: an arena of Segment
// polylines, tributary-linked, ready for downstream rendering queries.
type RiverNetwork struct {
	Segments []Segment
}

// networkParams collects the tunables spec §4.7 needs beyond what
// erosion.Config already carries at output resolution.
type networkParams struct {
	sourceMinAcc   float32
	sourceMinElev  float32
	baseWidth      float32
}

// ExtractNetwork runs spec §4.7: traces a polyline from every land-cell
// river source down to ocean, lake, or an existing traced cell
// (confluence), recording per-point flow accumulation, width, and
// elevation, and the parent segment a tributary joins.
func ExtractNetwork(height, flowAcc *world.Tilemap[float32], dir *world.Tilemap[uint8], bodyID *world.Tilemap[BodyID], sourceMinAcc, sourceMinElev, baseWidth float32) RiverNetwork {
	p := networkParams{sourceMinAcc: sourceMinAcc, sourceMinElev: sourceMinElev, baseWidth: baseWidth}
	w, h := height.Width(), height.Height()

	type src struct {
		x, y int
		acc  float32
	}
	var sources []src
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			acc := flowAcc.Get(x, y)
			if acc < p.sourceMinAcc || acc >= p.sourceMinAcc*3 {
				continue
			}
			if height.Get(x, y) < p.sourceMinElev {
				continue
			}
			sources = append(sources, src{x, y, acc})
		}
	}
	sort.SliceStable(sources, func(i, j int) bool { return sources[i].acc > sources[j].acc })

	owner := world.NewTilemapFilled[int](w, h, -1) // which segment first claimed a cell
	pointIdx := world.NewTilemap[int](w, h)
	net := RiverNetwork{}

	for _, s := range sources {
		if owner.Get(s.x, s.y) != -1 {
			continue
		}

		var points []ControlPoint
		var parent *SegmentIdx
		var joinIdx uint32

		x, y := s.x, s.y
		for step := 0; step < w*h; step++ {
			if existing := owner.Get(x, y); existing != -1 && len(points) > 0 {
				idx := SegmentIdx(existing)
				parent = &idx
				joinIdx = uint32(pointIdx.Get(x, y))
				break
			}

			segIdx := len(net.Segments)
			owner.Set(x, y, segIdx)
			pointIdx.Set(x, y, len(points))

			terrain := height.Get(x, y)
			acc := flowAcc.Get(x, y)
			points = append(points, ControlPoint{
				X: float32(x), Y: float32(y),
				FlowAcc:   acc,
				Width:     networkWidth(acc, p.sourceMinAcc, p.baseWidth),
				Elevation: terrain,
			})

			if terrain <= 0 {
				break
			}
			if bodyID != nil && bodyID.Get(x, y) != NoBody {
				break
			}

			d := dir.Get(x, y)
			if d == erosion.NoFlow {
				break
			}
			dx, dy, _ := world.NeighborDirDelta(int(d))
			nx := world.Mod(x+dx, w)
			ny := y + dy
			if ny < 0 {
				ny = 0
			} else if ny >= h {
				ny = h - 1
			}
			x, y = nx, ny
		}

		if len(points) < 2 {
			for _, pt := range points {
				owner.Set(int(pt.X), int(pt.Y), -1)
			}
			continue
		}
		net.Segments = append(net.Segments, Segment{Points: points, Parent: parent, JoinPointIndex: joinIdx})
	}

	return net
}

// networkWidth implements spec §4.7's channel-width formula: width =
// clamp(base_width * sqrt(flow_acc/source_threshold)^0.5, 0.5, 12.0).
// Distinct from erosion's carving-width formula (erosion.riverHalfWidth),
// which sizes the V-profile cut rather than the reported polyline width.
func networkWidth(flowAcc, sourceThreshold, baseWidth float32) float32 {
	ratio := flowAcc / sourceThreshold
	if ratio < 0 {
		ratio = 0
	}
	w := baseWidth * math32.Sqrt(math32.Sqrt(ratio))
	return world.Clamp(w, 0.5, 12.0)
}

// WidthAt answers spec §4.7's "get_width_at(x,y,r)" query: the width of
// the nearest network point within r of (x, y), sampling every segment's
// Catmull-Rom-smoothed curve rather than its raw polyline vertices, or 0
// if no point of any segment lies within r.
func (n RiverNetwork) WidthAt(x, y, r float32) float32 {
	best := float32(-1)
	bestDist := r

	for _, seg := range n.Segments {
		for _, cp := range sampleCatmullRom(seg.Points, 4) {
			d := math32.Hypot(cp.X-x, cp.Y-y)
			if d <= bestDist {
				bestDist = d
				best = cp.Width
			}
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

// sampleCatmullRom fits a cubic Bezier through every 4 consecutive points
// using Catmull-Rom-style control handles, per spec §4.7's "Optional
// smoothing" and original_source/src/erosion/river_geometry.rs's
// BezierRiverSegment.evaluate, returning subSamples interpolated points
// per source segment for sub-cell-resolution queries.
func sampleCatmullRom(points []ControlPoint, subSamples int) []ControlPoint {
	if len(points) < 2 {
		return points
	}
	if len(points) == 2 {
		return catmullSegment(points[0], points[0], points[1], points[1], subSamples)
	}

	var out []ControlPoint
	for i := 0; i < len(points)-1; i++ {
		p0 := points[maxInt(i-1, 0)]
		p1 := points[i]
		p2 := points[i+1]
		p3 := points[minInt(i+2, len(points)-1)]
		out = append(out, catmullSegment(p0, p1, p2, p3, subSamples)...)
	}
	return out
}

// catmullSegment converts one Catmull-Rom span (p0,p1,p2,p3) into cubic
// Bezier control points via the standard 1/6-tangent construction
// (b1 = p1 + (p2-p0)/6, b2 = p2 - (p3-p1)/6) and samples it, matching
// river_geometry.rs's BezierRiverSegment shape.
func catmullSegment(p0, p1, p2, p3 ControlPoint, subSamples int) []ControlPoint {
	b1 := addCP(p1, scaleCP(subCP(p2, p0), 1.0/6))
	b2 := subCP(p2, scaleCP(subCP(p3, p1), 1.0/6))

	out := make([]ControlPoint, 0, subSamples)
	for i := 0; i < subSamples; i++ {
		t := float32(i) / float32(subSamples)
		out = append(out, evalBezier(p1, b1, b2, p2, t))
	}
	return out
}

func scaleCP(a ControlPoint, f float32) ControlPoint {
	return ControlPoint{X: a.X * f, Y: a.Y * f, FlowAcc: a.FlowAcc * f, Width: a.Width * f, Elevation: a.Elevation * f}
}

func evalBezier(p0, p1, p2, p3 ControlPoint, t float32) ControlPoint {
	mt := 1 - t
	w0 := mt * mt * mt
	w1 := 3 * mt * mt * t
	w2 := 3 * mt * t * t
	w3 := t * t * t
	return ControlPoint{
		X:         w0*p0.X + w1*p1.X + w2*p2.X + w3*p3.X,
		Y:         w0*p0.Y + w1*p1.Y + w2*p2.Y + w3*p3.Y,
		FlowAcc:   w0*p0.FlowAcc + w1*p1.FlowAcc + w2*p2.FlowAcc + w3*p3.FlowAcc,
		Width:     w0*p0.Width + w1*p1.Width + w2*p2.Width + w3*p3.Width,
		Elevation: w0*p0.Elevation + w1*p1.Elevation + w2*p2.Elevation + w3*p3.Elevation,
	}
}

func addCP(a, b ControlPoint) ControlPoint {
	return ControlPoint{X: a.X + b.X, Y: a.Y + b.Y, FlowAcc: a.FlowAcc + b.FlowAcc, Width: a.Width + b.Width, Elevation: a.Elevation + b.Elevation}
}

func subCP(a, b ControlPoint) ControlPoint {
	return ControlPoint{X: a.X - b.X, Y: a.Y - b.Y, FlowAcc: a.FlowAcc - b.FlowAcc, Width: a.Width - b.Width, Elevation: a.Elevation - b.Elevation}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
