// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package raster

import (
	"math"

	"pdfcore.dev/engine/geom"
	"pdfcore.dev/engine/scene"
)

// polyline is a flattened subpath: straight-line vertices plus whether
// the original subpath was closed.
type polyline struct {
	pts    []geom.Point
	closed bool
}

// flattenToPolylines converts every cubic Bezier segment of path to
// line segments, preserving each subpath's Closed flag.
func flattenToPolylines(path *geom.Path, tol float64) []polyline {
	var out []polyline
	for _, sp := range path.Subpaths {
		pl := polyline{pts: []geom.Point{sp.Start}, closed: sp.Closed}
		cur := sp.Start
		for _, seg := range sp.Segments {
			switch seg.Kind {
			case geom.SegLineTo, geom.SegClose:
				pl.pts = append(pl.pts, seg.To)
				cur = seg.To
			case geom.SegCurveTo:
				flattenCubicInto(&pl.pts, cur, seg.Ctrl1, seg.Ctrl2, seg.To, tol)
				cur = seg.To
			}
		}
		out = append(out, pl)
	}
	return out
}

// applyDash splits a polyline into the "on" segments of a dash pattern
// (ISO 32000-1 8.4.3.6). An empty pattern returns the polyline
// unchanged as its sole element.
func applyDash(pl polyline, dash []float64, phase float64) []polyline {
	if len(dash) == 0 {
		return []polyline{pl}
	}
	total := 0.0
	for _, d := range dash {
		total += d
	}
	if total <= 0 {
		return []polyline{pl}
	}

	pts := pl.pts
	if pl.closed && len(pts) > 0 && pts[0] != pts[len(pts)-1] {
		pts = append(append([]geom.Point(nil), pts...), pts[0])
	}

	idx := 0
	on := true
	remaining := dash[0]
	for phase > 0 {
		if phase < remaining {
			remaining -= phase
			break
		}
		phase -= remaining
		idx = (idx + 1) % len(dash)
		remaining = dash[idx]
		on = !on
	}

	var result []polyline
	var cur []geom.Point
	if on && len(pts) > 0 {
		cur = []geom.Point{pts[0]}
	}
	for i := 0; i < len(pts)-1; i++ {
		a, b := pts[i], pts[i+1]
		segLen := math.Hypot(b.X-a.X, b.Y-a.Y)
		pos := 0.0
		for pos < segLen {
			step := minF(remaining, segLen-pos)
			pos += step
			remaining -= step
			t := pos / segLen
			p := geom.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
			if on {
				cur = append(cur, p)
			}
			if remaining <= 1e-9 {
				if on && len(cur) >= 2 {
					result = append(result, polyline{pts: cur})
				}
				on = !on
				idx = (idx + 1) % len(dash)
				remaining = dash[idx]
				if on {
					cur = []geom.Point{p}
				} else {
					cur = nil
				}
			}
		}
	}
	if on && len(cur) >= 2 {
		result = append(result, polyline{pts: cur})
	}
	return result
}

// strokeOutline builds a fill-equivalent geom.Path covering the area a
// stroke of the given parameters would paint along path. Every
// generated contour winds consistently counter-clockwise, so the
// non-zero fill rule reproduces the union of all of them regardless of
// how much they overlap at joins.
//
// Caps and joins follow the graphics state (spec.md 4.7 "Stroke"):
// butt, round or projecting-square caps at the open ends of each
// subpath (and of each dash segment), and miter, round or bevel joins
// at interior vertices, with miters falling back to bevel past the
// miter limit.
func strokeOutline(path *geom.Path, st scene.Stroke) *geom.Path {
	halfWidth := st.Width / 2
	if halfWidth <= 0 {
		halfWidth = 0.5 // hairline stroke: always at least ~1 device pixel wide
	}

	out := &geom.Path{}
	for _, pl := range flattenToPolylines(path, flattenTolerance) {
		segments := []polyline{pl}
		if len(st.Dash) > 0 {
			segments = applyDash(pl, st.Dash, st.DashPhase)
		}
		for _, seg := range segments {
			addStrokeSegment(out, seg, halfWidth, st)
		}
	}
	return out
}

// addStrokeSegment appends the offset quads, joins and caps for one
// polyline to out.
func addStrokeSegment(out *geom.Path, pl polyline, halfWidth float64, st scene.Stroke) {
	pts := pl.pts
	if pl.closed && len(pts) > 1 && pts[0] != pts[len(pts)-1] {
		pts = append(append([]geom.Point(nil), pts...), pts[0])
	}

	if len(pts) < 2 {
		// A zero-length subpath paints only under a non-butt cap
		// (ISO 32000-1 8.4.3.3): a dot for round, a square for
		// projecting-square (axis-aligned, the direction is undefined).
		if len(pts) == 1 {
			switch st.Cap {
			case scene.CapRound:
				addDisc(out, pts[0], halfWidth)
			case scene.CapSquare:
				p := pts[0]
				addCCWQuad(out,
					geom.Point{X: p.X - halfWidth, Y: p.Y - halfWidth},
					geom.Point{X: p.X + halfWidth, Y: p.Y - halfWidth},
					geom.Point{X: p.X + halfWidth, Y: p.Y + halfWidth},
					geom.Point{X: p.X - halfWidth, Y: p.Y + halfWidth},
				)
			}
		}
		return
	}

	for i := 0; i < len(pts)-1; i++ {
		a, b := pts[i], pts[i+1]
		dx, dy := b.X-a.X, b.Y-a.Y
		length := math.Hypot(dx, dy)
		if length < 1e-9 {
			continue
		}
		nx, ny := -dy/length*halfWidth, dx/length*halfWidth
		addCCWQuad(out,
			geom.Point{X: a.X + nx, Y: a.Y + ny},
			geom.Point{X: b.X + nx, Y: b.Y + ny},
			geom.Point{X: b.X - nx, Y: b.Y - ny},
			geom.Point{X: a.X - nx, Y: a.Y - ny},
		)
	}

	for i := 1; i < len(pts)-1; i++ {
		addJoin(out, pts[i-1], pts[i], pts[i+1], halfWidth, st)
	}
	if pl.closed && len(pts) > 2 {
		// the seam vertex: pts[len-1] == pts[0]
		addJoin(out, pts[len(pts)-2], pts[0], pts[1], halfWidth, st)
	}

	if !pl.closed {
		addCap(out, pts[0], pts[1], halfWidth, st.Cap)
		addCap(out, pts[len(pts)-1], pts[len(pts)-2], halfWidth, st.Cap)
	}
}

// addJoin fills the outer wedge between the offset quads of the two
// segments meeting at p. The inner side needs no geometry: there the
// quads overlap. A miter past the limit degrades to bevel
// (ISO 32000-1 8.4.3.5).
func addJoin(out *geom.Path, a, p, b geom.Point, halfWidth float64, st scene.Stroke) {
	d1x, d1y := p.X-a.X, p.Y-a.Y
	l1 := math.Hypot(d1x, d1y)
	d2x, d2y := b.X-p.X, b.Y-p.Y
	l2 := math.Hypot(d2x, d2y)
	if l1 < 1e-9 || l2 < 1e-9 {
		return
	}
	d1x, d1y = d1x/l1, d1y/l1
	d2x, d2y = d2x/l2, d2y/l2

	cross := d1x*d2y - d1y*d2x
	if math.Abs(cross) < 1e-9 {
		if d1x*d2x+d1y*d2y < 0 && st.Join == scene.JoinRound {
			// a full 180-degree reversal has no finite miter or bevel
			addDisc(out, p, halfWidth)
		}
		return // collinear continuation: the quads already meet flush
	}

	if st.Join == scene.JoinRound {
		addDisc(out, p, halfWidth)
		return
	}

	// unit normals of the two segments, flipped to the outer side of
	// the turn
	sign := 1.0
	if cross > 0 {
		sign = -1
	}
	n1x, n1y := -d1y*sign, d1x*sign
	n2x, n2y := -d2y*sign, d2x*sign
	o1 := geom.Point{X: p.X + n1x*halfWidth, Y: p.Y + n1y*halfWidth}
	o2 := geom.Point{X: p.X + n2x*halfWidth, Y: p.Y + n2y*halfWidth}

	if st.Join == scene.JoinMiter {
		limit := st.MiterLimit
		if limit <= 0 {
			limit = 10 // PDF default miter limit
		}
		bx, by := n1x+n2x, n1y+n2y
		bl := math.Hypot(bx, by)
		// miter-length-to-line-width ratio is 2/|n1+n2|
		if bl > 1e-9 && 2/bl <= limit {
			dist := 2 * halfWidth / bl
			tip := geom.Point{X: p.X + bx/bl*dist, Y: p.Y + by/bl*dist}
			addCCWQuad(out, p, o1, tip, o2)
			return
		}
	}

	addCCWQuad(out, p, o1, o2, p) // bevel triangle
}

// addCap extends the stroke past an open endpoint tip (whose inward
// neighbour is from) per the line cap style. Butt caps add nothing: the
// offset quad already ends flush at tip.
func addCap(out *geom.Path, tip, from geom.Point, halfWidth float64, style scene.LineCap) {
	dx, dy := tip.X-from.X, tip.Y-from.Y
	l := math.Hypot(dx, dy)
	if l < 1e-9 {
		if style == scene.CapRound {
			addDisc(out, tip, halfWidth)
		}
		return
	}
	dx, dy = dx/l*halfWidth, dy/l*halfWidth
	nx, ny := -dy, dx

	switch style {
	case scene.CapRound:
		addDisc(out, tip, halfWidth)
	case scene.CapSquare:
		addCCWQuad(out,
			geom.Point{X: tip.X + nx, Y: tip.Y + ny},
			geom.Point{X: tip.X + nx + dx, Y: tip.Y + ny + dy},
			geom.Point{X: tip.X - nx + dx, Y: tip.Y - ny + dy},
			geom.Point{X: tip.X - nx, Y: tip.Y - ny},
		)
	}
}

// addCCWQuad appends a quad as a closed subpath, in counter-clockwise
// order regardless of the order the four points were given.
func addCCWQuad(out *geom.Path, a, b, c, d geom.Point) {
	area := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	if area < 0 {
		a, b, c, d = d, c, b, a
	}
	out.MoveTo(a.X, a.Y)
	out.LineTo(b.X, b.Y)
	out.LineTo(c.X, c.Y)
	out.LineTo(d.X, d.Y)
	out.ClosePath()
}

// addDisc appends a small regular polygon approximating a circle of
// radius r centred at p, wound counter-clockwise.
func addDisc(out *geom.Path, p geom.Point, r float64) {
	const n = 16
	out.MoveTo(p.X+r, p.Y)
	for i := 1; i <= n; i++ {
		a := 2 * math.Pi * float64(i) / n
		out.LineTo(p.X+r*math.Cos(a), p.Y+r*math.Sin(a))
	}
	out.ClosePath()
}
