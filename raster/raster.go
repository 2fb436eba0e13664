// seehuhn.de/go/conformal - grid images of conformal maps
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package raster converts the polylines produced by grid refinement into
// antialiased pixel coverage.  Paths are stroked as offset polygons and
// filled with a scanline sweep under the nonzero winding rule.
package raster

import (
	"cmp"
	"math"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// segment is a line segment in device coordinates with precomputed frame.
type segment struct {
	a, b vec.Vec2 // endpoints
	t    vec.Vec2 // unit tangent (a→b direction)
	n    vec.Vec2 // unit normal (90° CCW from t)
}

// edge is a non-horizontal outline edge in device coordinates.
type edge struct {
	x0, y0 float64
	x1, y1 float64
	dxdy   float64 // (x1-x0)/(y1-y0), for x-intercept calculation
}

// A Rasterizer strokes polyline paths to pixel coverage values.  Create
// one instance and reuse it for multiple paths; internal buffers grow as
// needed but never shrink.
//
// A Rasterizer is not safe for concurrent use.
type Rasterizer struct {
	// CTM transforms from image space to device space.
	// Must be non-singular.
	CTM matrix.Matrix

	// Clip bounds output to this device-coordinate rectangle.
	// Coordinates must be integer-aligned.
	Clip rect.Rect

	// Width is the stroke thickness in device pixels. Must be positive.
	Width float64

	// Cap sets the style for stroke endpoints.
	Cap graphics.LineCapStyle

	// Join sets the style for stroke corners.
	Join graphics.LineJoinStyle

	// MiterLimit caps miter join length. Must be at least 1.0.
	MiterLimit float64

	// Buffers reused across calls.
	segs           []segment
	outline        []vec.Vec2 // stroke outline vertices, all polygons contiguous
	outlineOffsets []int      // start index of each polygon in outline
	edges          []edge
	order          []int // edge indices sorted by top y
	active         []int
	cover          []float32
	area           []float32
	crossings      []float64
}

// New returns a Rasterizer with the given clip rectangle and default
// stroke parameters.
func New(clip rect.Rect) *Rasterizer {
	return &Rasterizer{
		CTM:        matrix.Identity,
		Clip:       clip,
		Width:      1.0,
		Cap:        graphics.LineCapButt,
		Join:       graphics.LineJoinMiter,
		MiterLimit: defaultMiterLimit,
	}
}

// transform applies the CTM to an image-space point.
func (r *Rasterizer) transform(v vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: r.CTM[0]*v.X + r.CTM[2]*v.Y + r.CTM[4],
		Y: r.CTM[1]*v.X + r.CTM[3]*v.Y + r.CTM[5],
	}
}

// Stroke renders the path as a stroked outline.  Coverage is delivered
// row-by-row via the emit callback; the slice argument is only valid for
// the duration of the call.
//
// Curve commands are treated as straight lines to their end point: the
// adaptive refiner emits polylines only, so curves never reach this
// backend in practice.
func (r *Rasterizer) Stroke(p *path.Data, emit func(y, xMin int, coverage []float32)) {
	r.outline = r.outline[:0]
	r.outlineOffsets = r.outlineOffsets[:0]
	r.segs = r.segs[:0]

	var cur, start vec.Vec2
	coordIdx := 0
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			r.flushSubpath(false)
			cur = r.transform(p.Coords[coordIdx])
			start = cur
			coordIdx++

		case path.CmdLineTo:
			next := r.transform(p.Coords[coordIdx])
			r.addSegment(cur, next)
			cur = next
			coordIdx++

		case path.CmdQuadTo:
			next := r.transform(p.Coords[coordIdx+1])
			r.addSegment(cur, next)
			cur = next
			coordIdx += 2

		case path.CmdCubeTo:
			next := r.transform(p.Coords[coordIdx+2])
			r.addSegment(cur, next)
			cur = next
			coordIdx += 3

		case path.CmdClose:
			r.addSegment(cur, start)
			r.flushSubpath(true)
			cur = start
		}
	}
	r.flushSubpath(false)

	r.fillOutline(emit)
}

// addSegment appends a device-space segment, skipping degenerate ones.
func (r *Rasterizer) addSegment(a, b vec.Vec2) {
	d := b.Sub(a)
	length := d.Length()
	if length < zeroLengthThreshold {
		return
	}
	t := d.Mul(1 / length)
	n := vec.Vec2{X: -t.Y, Y: t.X}
	r.segs = append(r.segs, segment{a: a, b: b, t: t, n: n})
}

// flushSubpath converts the buffered segments into a stroke outline
// polygon and resets the segment buffer.
func (r *Rasterizer) flushSubpath(closed bool) {
	if len(r.segs) == 0 {
		return
	}
	startOffset := len(r.outline)
	r.strokeOutline(r.segs, closed)
	if len(r.outline)-startOffset >= 3 {
		r.outlineOffsets = append(r.outlineOffsets, startOffset)
	} else {
		r.outline = r.outline[:startOffset]
	}
	r.segs = r.segs[:0]
}

// strokeOutline builds the outline polygon for one subpath: the +n side
// walked forward, then the -n side walked backward.  Join geometry is only
// added on the outer side of each corner; on the inner side both offset
// points are kept, which the nonzero winding rule resolves.
func (r *Rasterizer) strokeOutline(segs []segment, closed bool) {
	d := r.Width / 2
	last := len(segs) - 1

	if closed {
		r.outline = append(r.outline, segs[0].a.Add(segs[0].n.Mul(d)))
		for i := range segs {
			seg := &segs[i]
			next := &segs[(i+1)%len(segs)]
			r.outline = append(r.outline, seg.b.Add(seg.n.Mul(d)))
			r.corner(seg.b, seg.t, next.t, d, true)
			r.outline = append(r.outline, next.a.Add(next.n.Mul(d)))
		}
		r.outline = append(r.outline, segs[last].b.Sub(segs[last].n.Mul(d)))
		for i := last; i >= 0; i-- {
			seg := &segs[i]
			prev := &segs[(i+len(segs)-1)%len(segs)]
			r.outline = append(r.outline, seg.a.Sub(seg.n.Mul(d)))
			r.corner(seg.a, prev.t, seg.t, d, false)
			r.outline = append(r.outline, prev.b.Sub(prev.n.Mul(d)))
		}
		return
	}

	r.addCap(segs[0].a, segs[0].t.Mul(-1), d)
	for i := range segs {
		seg := &segs[i]
		r.outline = append(r.outline,
			seg.a.Add(seg.n.Mul(d)), seg.b.Add(seg.n.Mul(d)))
		if i < last {
			r.corner(seg.b, seg.t, segs[i+1].t, d, true)
		}
	}
	r.addCap(segs[last].b, segs[last].t, d)
	for i := last; i >= 0; i-- {
		seg := &segs[i]
		r.outline = append(r.outline,
			seg.b.Sub(seg.n.Mul(d)), seg.a.Sub(seg.n.Mul(d)))
		if i > 0 {
			r.corner(seg.a, segs[i-1].t, seg.t, d, false)
		}
	}
}

// corner adds join geometry at point p where the tangent turns from t1 to
// t2.  positive selects the +n (forward) or -n (backward) side; geometry
// is only emitted when that side is the outer side of the turn.
func (r *Rasterizer) corner(p, t1, t2 vec.Vec2, d float64, positive bool) {
	sin := t1.X*t2.Y - t1.Y*t2.X
	if sin > -collinearityThreshold && sin < collinearityThreshold {
		return
	}
	if (sin < 0) != positive {
		return // inner side, offset points suffice
	}
	cos := t1.Dot(t2)

	// A cusp gets two caps instead of a join.
	if cos < cuspCosineThreshold {
		r.addCap(p, t1, d)
		r.addCap(p, t2.Mul(-1), d)
		return
	}

	n1 := vec.Vec2{X: -t1.Y, Y: t1.X}
	n2 := vec.Vec2{X: -t2.Y, Y: t2.X}

	switch r.Join {
	case graphics.LineJoinMiter:
		// miterLength = 1/sin(φ/2) with φ the interior stroke angle, and
		// sin(φ/2) = cos(θ/2) = sqrt((1+cosθ)/2) for turn angle θ.
		sinHalf := math.Sqrt((1 + cos) / 2)
		if sinHalf > 0 && 1/sinHalf <= r.MiterLimit+miterEpsilon {
			bisector := n1.Add(n2)
			if !positive {
				bisector = bisector.Mul(-1)
			}
			if l := bisector.Length(); l > zeroLengthThreshold {
				r.outline = append(r.outline,
					p.Add(bisector.Mul(d/(sinHalf*l))))
			}
			return
		}
		fallthrough // bevel when the miter limit is exceeded

	case graphics.LineJoinBevel:
		// the two offset points already meet

	case graphics.LineJoinRound:
		angle := math.Acos(max(-1, min(1, cos)))
		if positive {
			r.addArc(p, d, n1, -angle, false)
		} else {
			r.addArc(p, d, vec.Vec2{X: t2.Y, Y: -t2.X}, -angle, false)
		}
	}
}

// addCap adds a line cap at point p; t is the outward tangent direction.
func (r *Rasterizer) addCap(p, t vec.Vec2, d float64) {
	n := vec.Vec2{X: -t.Y, Y: t.X}
	switch r.Cap {
	case graphics.LineCapButt:
		// the offset points connect directly

	case graphics.LineCapSquare:
		ext := p.Add(t.Mul(d))
		r.outline = append(r.outline, ext.Add(n.Mul(d)), ext.Sub(n.Mul(d)))

	case graphics.LineCapRound:
		r.addArc(p, d, n, -math.Pi, true)
	}
}

// addArc appends arc vertices around center, starting at direction
// startDir and sweeping by sweep radians (positive = CCW).  The chord
// count keeps the sagitta below arcFlatness.
func (r *Rasterizer) addArc(center vec.Vec2, radius float64, startDir vec.Vec2, sweep float64, includeStart bool) {
	n := 1
	if radius > arcFlatness {
		step := 2 * math.Acos(1-arcFlatness/radius)
		if step > 0 && !math.IsNaN(step) {
			n = max(1, int(math.Ceil(math.Abs(sweep)/step)))
		}
	}
	dt := sweep / float64(n)
	startI := 0
	if !includeStart {
		startI = 1
	}
	for i := startI; i <= n; i++ {
		sin, cos := math.Sincos(float64(i) * dt)
		dir := vec.Vec2{
			X: startDir.X*cos - startDir.Y*sin,
			Y: startDir.X*sin + startDir.Y*cos,
		}
		r.outline = append(r.outline, center.Add(dir.Mul(radius)))
	}
}

// fillOutline fills all outline polygons together as a compound path under
// the nonzero winding rule, so overlapping pieces are painted once.
func (r *Rasterizer) fillOutline(emit func(y, xMin int, coverage []float32)) {
	xMin, xMax, yMin, yMax, ok := r.collectEdges()
	if !ok {
		return
	}
	width := xMax - xMin

	r.cover = slices.Grow(r.cover[:0], width)[:width]
	r.area = slices.Grow(r.area[:0], width)[:width]

	// Sweep scanlines top to bottom with an active edge list.
	r.order = r.order[:0]
	for i := range r.edges {
		r.order = append(r.order, i)
	}
	slices.SortFunc(r.order, func(a, b int) int {
		return cmp.Compare(
			min(r.edges[a].y0, r.edges[a].y1),
			min(r.edges[b].y0, r.edges[b].y1))
	})
	r.active = r.active[:0]
	nextEdge := 0

	for y := yMin; y < yMax; y++ {
		yTop := float64(y)
		yBot := float64(y + 1)

		for nextEdge < len(r.order) {
			e := &r.edges[r.order[nextEdge]]
			if min(e.y0, e.y1) >= yBot {
				break
			}
			r.active = append(r.active, r.order[nextEdge])
			nextEdge++
		}
		if len(r.active) == 0 {
			continue
		}

		clear(r.cover)
		clear(r.area)
		contributed := false

		for i := 0; i < len(r.active); {
			e := &r.edges[r.active[i]]
			if max(e.y0, e.y1) <= yTop {
				r.active[i] = r.active[len(r.active)-1]
				r.active = r.active[:len(r.active)-1]
				continue
			}
			r.accumulate(e, yTop, yBot, xMin, xMax)
			contributed = true
			i++
		}
		if !contributed {
			continue
		}

		integrateNonZero(r.cover, r.area)
		if trimmed, offset := trimZeros(r.cover); trimmed != nil {
			emit(y, xMin+offset, trimmed)
		}
	}
}

// collectEdges converts the outline polygons to the edge list and returns
// their joint bounding box clamped to the clip rectangle.
func (r *Rasterizer) collectEdges() (xMin, xMax, yMin, yMax int, ok bool) {
	r.edges = r.edges[:0]
	first := true
	var loX, hiX, loY, hiY float64

	for i, start := range r.outlineOffsets {
		end := len(r.outline)
		if i+1 < len(r.outlineOffsets) {
			end = r.outlineOffsets[i+1]
		}
		poly := r.outline[start:end]
		if len(poly) < 3 {
			continue
		}
		prev := poly[len(poly)-1]
		for _, pt := range poly {
			if dy := pt.Y - prev.Y; dy > horizontalEdgeThreshold || dy < -horizontalEdgeThreshold {
				r.edges = append(r.edges, edge{
					x0: prev.X, y0: prev.Y,
					x1: pt.X, y1: pt.Y,
					dxdy: (pt.X - prev.X) / dy,
				})
				if first {
					loX, hiX = min(prev.X, pt.X), max(prev.X, pt.X)
					loY, hiY = min(prev.Y, pt.Y), max(prev.Y, pt.Y)
					first = false
				} else {
					loX = min(loX, min(prev.X, pt.X))
					hiX = max(hiX, max(prev.X, pt.X))
					loY = min(loY, min(prev.Y, pt.Y))
					hiY = max(hiY, max(prev.Y, pt.Y))
				}
			}
			prev = pt
		}
	}
	if first {
		return 0, 0, 0, 0, false
	}

	xMin = max(int(math.Floor(loX)), int(r.Clip.LLx))
	xMax = min(int(math.Floor(hiX))+1, int(r.Clip.URx))
	yMin = max(int(math.Floor(loY)), int(r.Clip.LLy))
	yMax = min(int(math.Floor(hiY))+1, int(r.Clip.URy))
	if xMin >= xMax || yMin >= yMax {
		return 0, 0, 0, 0, false
	}
	return xMin, xMax, yMin, yMax, true
}

// accumulate adds one edge's contribution within the scanline [yTop, yBot)
// to the cover and area buffers.  cover records the signed vertical extent
// per pixel column; area weights it by the horizontal position within the
// pixel.  Integration then recovers the signed area of the outline per
// pixel, i.e. the antialiased coverage.
func (r *Rasterizer) accumulate(e *edge, yTop, yBot float64, bboxXMin, bboxXMax int) {
	yTop = max(yTop, min(e.y0, e.y1))
	yBot = min(yBot, max(e.y0, e.y1))
	if yBot <= yTop {
		return
	}

	sign := float32(1)
	if e.y1 < e.y0 {
		sign = -1
	}

	xTop := e.x0 + e.dxdy*(yTop-e.y0)
	xBot := e.x0 + e.dxdy*(yBot-e.y0)
	pixL := int(math.Floor(min(xTop, xBot)))
	pixR := int(math.Floor(max(xTop, xBot)))

	// Split at pixel column boundaries so each piece lies in one column.
	r.crossings = append(r.crossings[:0], yTop, yBot)
	if pixL != pixR {
		dydx := 1 / e.dxdy
		for x := pixL + 1; x <= pixR; x++ {
			yAtX := e.y0 + dydx*(float64(x)-e.x0)
			if yAtX > yTop && yAtX < yBot {
				r.crossings = append(r.crossings, yAtX)
			}
		}
		slices.Sort(r.crossings)
	}

	for i := range len(r.crossings) - 1 {
		y0, y1 := r.crossings[i], r.crossings[i+1]
		if y1 <= y0 {
			continue
		}
		coverVal := sign * float32(y1-y0)

		yMid := (y0 + y1) / 2
		xMid := e.x0 + e.dxdy*(yMid-e.y0)
		pix := int(math.Floor(xMid))

		switch {
		case pix < bboxXMin:
			// fully to the left: counts as a crossing at the buffer edge
			r.cover[0] += coverVal
			r.area[0] += coverVal
		case pix < bboxXMax:
			idx := pix - bboxXMin
			r.cover[idx] += coverVal
			r.area[idx] += coverVal * float32(1-(xMid-float64(pix)))
		}
	}
}

// integrateNonZero converts accumulated cover/area values into final
// coverage, in place in cover.
func integrateNonZero(cover, area []float32) {
	var accum float32
	for i := range cover {
		raw := accum + area[i]
		accum += cover[i]
		if raw < 0 {
			raw = -raw
		}
		if raw > 1 {
			raw = 1
		}
		cover[i] = raw
	}
}

// trimZeros returns the non-zero portion of coverage and its offset, or
// nil if the row is entirely zero.
func trimZeros(coverage []float32) (trimmed []float32, offset int) {
	lo := 0
	for lo < len(coverage) && coverage[lo] == 0 {
		lo++
	}
	if lo == len(coverage) {
		return nil, 0
	}
	hi := len(coverage) - 1
	for hi > lo && coverage[hi] == 0 {
		hi--
	}
	return coverage[lo : hi+1], lo
}

const (
	// defaultMiterLimit matches the PDF/PostScript default.
	defaultMiterLimit = 10.0

	// arcFlatness is the sagitta tolerance for round caps and joins, in
	// device pixels.
	arcFlatness = 0.25

	// horizontalEdgeThreshold is the minimum vertical extent for an edge
	// to contribute coverage.
	horizontalEdgeThreshold = 1e-10

	// zeroLengthThreshold is the minimum length of a stroke segment.
	zeroLengthThreshold = 1e-10

	// collinearityThreshold detects corners that need no join.
	collinearityThreshold = 1e-6

	// cuspCosineThreshold detects the path doubling back on itself.
	// cos(179.43°) ≈ -0.9999
	cuspCosineThreshold = -0.9999

	// miterEpsilon absorbs floating-point error in the miter limit test.
	miterEpsilon = 1e-10
)
