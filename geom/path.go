// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package geom

import "math"

// SegKind identifies the kind of a path segment.
type SegKind uint8

const (
	SegMoveTo SegKind = iota
	SegLineTo
	SegCurveTo // cubic Bezier: Ctrl1, Ctrl2, To
	SegClose
)

// Segment is one element of a Subpath.
type Segment struct {
	Kind         SegKind
	To           Point
	Ctrl1, Ctrl2 Point // only meaningful for SegCurveTo
}

// Subpath is a contiguous sequence of connected segments beginning at one
// move_to (spec.md GLOSSARY "Subpath").
type Subpath struct {
	Start    Point
	Segments []Segment
	Closed   bool
}

// Path is an ordered sequence of subpaths (spec.md 3 "Path").
type Path struct {
	Subpaths []Subpath

	cur    Point
	start  Point
	hasCur bool
}

// CurrentPoint returns the builder's current point and whether one exists.
func (p *Path) CurrentPoint() (Point, bool) { return p.cur, p.hasCur }

func (p *Path) open() *Subpath {
	if len(p.Subpaths) == 0 || p.Subpaths[len(p.Subpaths)-1].Closed {
		p.Subpaths = append(p.Subpaths, Subpath{Start: p.cur})
	}
	return &p.Subpaths[len(p.Subpaths)-1]
}

// MoveTo begins a new subpath at the absolute point (x, y).
func (p *Path) MoveTo(x, y float64) {
	p.cur = Point{x, y}
	p.start = p.cur
	p.hasCur = true
	p.Subpaths = append(p.Subpaths, Subpath{Start: p.cur})
}

// RelativeMoveTo begins a new subpath at an offset from the current point.
func (p *Path) RelativeMoveTo(dx, dy float64) {
	p.MoveTo(p.cur.X+dx, p.cur.Y+dy)
}

// LineTo appends a line segment to the absolute point (x, y).
func (p *Path) LineTo(x, y float64) {
	sp := p.open()
	p.cur = Point{x, y}
	sp.Segments = append(sp.Segments, Segment{Kind: SegLineTo, To: p.cur})
}

// RelativeLineTo appends a line segment relative to the current point.
func (p *Path) RelativeLineTo(dx, dy float64) {
	p.LineTo(p.cur.X+dx, p.cur.Y+dy)
}

// HorizontalLineTo appends a line segment with only the x coordinate
// changing.
func (p *Path) HorizontalLineTo(x float64) { p.LineTo(x, p.cur.Y) }

// VerticalLineTo appends a line segment with only the y coordinate
// changing.
func (p *Path) VerticalLineTo(y float64) { p.LineTo(p.cur.X, y) }

// CubicCurveTo appends a cubic Bezier curve with two absolute control
// points and an absolute end point.
func (p *Path) CubicCurveTo(x1, y1, x2, y2, x3, y3 float64) {
	sp := p.open()
	c1 := Point{x1, y1}
	c2 := Point{x2, y2}
	to := Point{x3, y3}
	p.cur = to
	sp.Segments = append(sp.Segments, Segment{Kind: SegCurveTo, Ctrl1: c1, Ctrl2: c2, To: to})
}

// RelativeCubicCurveTo is CubicCurveTo with all three points relative to
// the current point.
func (p *Path) RelativeCubicCurveTo(dx1, dy1, dx2, dy2, dx3, dy3 float64) {
	c := p.cur
	p.CubicCurveTo(c.X+dx1, c.Y+dy1, c.X+dx2, c.Y+dy2, c.X+dx3, c.Y+dy3)
}

// HorizontalVerticalCurveTo appends a curve whose first control point lies
// on the horizontal through the current point (PDF `v` operator, start
// control point replicated from the current point).
func (p *Path) HorizontalVerticalCurveTo(x2, y2, x3, y3 float64) {
	c := p.cur
	p.CubicCurveTo(c.X, c.Y, x2, y2, x3, y3)
}

// VerticalHorizontalCurveTo appends a curve whose last control point
// coincides with the end point (PDF `y` operator).
func (p *Path) VerticalHorizontalCurveTo(x1, y1, x3, y3 float64) {
	p.CubicCurveTo(x1, y1, x3, y3, x3, y3)
}

// Rectangle appends a closed axis-aligned rectangle as four segments (PDF
// `re` operator): a new subpath starting at (x, y), counter-clockwise.
func (p *Path) Rectangle(x, y, w, h float64) {
	p.MoveTo(x, y)
	p.LineTo(x+w, y)
	p.LineTo(x+w, y+h)
	p.LineTo(x, y+h)
	p.ClosePath()
}

// ClosePath closes the current subpath back to its start point and resets
// the current point to that start (spec.md 4.4 "h").
func (p *Path) ClosePath() {
	if len(p.Subpaths) == 0 {
		return
	}
	sp := &p.Subpaths[len(p.Subpaths)-1]
	sp.Closed = true
	sp.Segments = append(sp.Segments, Segment{Kind: SegClose, To: sp.Start})
	p.cur = sp.Start
}

// IsEmpty reports whether the path has no subpaths.
func (p *Path) IsEmpty() bool { return len(p.Subpaths) == 0 }

// Transform returns a copy of p with every point transformed by m.
func (p *Path) Transform(m Matrix) *Path {
	out := &Path{}
	for _, sp := range p.Subpaths {
		nsp := Subpath{Start: m.Apply(sp.Start), Closed: sp.Closed}
		nsp.Segments = make([]Segment, len(sp.Segments))
		for i, s := range sp.Segments {
			ns := Segment{Kind: s.Kind, To: m.Apply(s.To)}
			if s.Kind == SegCurveTo {
				ns.Ctrl1 = m.Apply(s.Ctrl1)
				ns.Ctrl2 = m.Apply(s.Ctrl2)
			}
			nsp.Segments[i] = ns
		}
		out.Subpaths = append(out.Subpaths, nsp)
	}
	return out
}

// Bounds returns the control-polygon bounding box of p (a loose but cheap
// bound: includes Bezier control points, not just the curve itself).
func (p *Path) Bounds() Rect {
	r := EmptyRect()
	for _, sp := range p.Subpaths {
		r = r.Extend(sp.Start)
		for _, s := range sp.Segments {
			r = r.Extend(s.To)
			if s.Kind == SegCurveTo {
				r = r.Extend(s.Ctrl1).Extend(s.Ctrl2)
			}
		}
	}
	return r
}

// Flatten walks every subpath, converting cubic Bezier segments into line
// segments via adaptive subdivision (spec.md 4.7 "Bezier subdivision"), and
// calls emit(subpathIndex, point, isNewSubpath) for every resulting vertex.
// tolerance is the maximum deviation in device units; 0 selects the
// spec.md default of 0.25.
func (p *Path) Flatten(tolerance float64, emit func(sub int, pt Point, start bool)) {
	if tolerance <= 0 {
		tolerance = 0.25
	}
	for i, sp := range p.Subpaths {
		cur := sp.Start
		emit(i, cur, true)
		for _, s := range sp.Segments {
			switch s.Kind {
			case SegLineTo, SegClose:
				cur = s.To
				emit(i, cur, false)
			case SegCurveTo:
				flattenCubic(cur, s.Ctrl1, s.Ctrl2, s.To, tolerance, func(pt Point) {
					emit(i, pt, false)
				})
				cur = s.To
			}
		}
	}
}

// flattenCubic recursively subdivides a cubic Bezier until each piece is
// flat within tolerance, emitting line-segment endpoints (not including
// p0).
func flattenCubic(p0, p1, p2, p3 Point, tolerance float64, emit func(Point)) {
	flattenCubicRec(p0, p1, p2, p3, tolerance, 0, emit)
}

func flattenCubicRec(p0, p1, p2, p3 Point, tol float64, depth int, emit func(Point)) {
	if depth >= 24 || isFlatEnough(p0, p1, p2, p3, tol) {
		emit(p3)
		return
	}
	// de Casteljau subdivision at t = 0.5
	p01 := mid(p0, p1)
	p12 := mid(p1, p2)
	p23 := mid(p2, p3)
	p012 := mid(p01, p12)
	p123 := mid(p12, p23)
	p0123 := mid(p012, p123)
	flattenCubicRec(p0, p01, p012, p0123, tol, depth+1, emit)
	flattenCubicRec(p0123, p123, p23, p3, tol, depth+1, emit)
}

func mid(a, b Point) Point { return Point{(a.X + b.X) / 2, (a.Y + b.Y) / 2} }

// isFlatEnough estimates curve flatness as the maximum distance of the two
// control points from the chord p0-p3.
func isFlatEnough(p0, p1, p2, p3 Point, tol float64) bool {
	ux := 3*p1.X - 2*p0.X - p3.X
	uy := 3*p1.Y - 2*p0.Y - p3.Y
	vx := 3*p2.X - 2*p3.X - p0.X
	vy := 3*p2.Y - 2*p3.Y - p0.Y
	ux *= ux
	uy *= uy
	vx *= vx
	vy *= vy
	if ux < vx {
		ux = vx
	}
	if uy < vy {
		uy = vy
	}
	return ux+uy <= 16*tol*tol
}

// CubicBounds returns the tight bounding box of a single cubic Bezier
// segment, found by solving for the axis extrema of the derivative
// (spec.md 4.7 "Bezier subdivision and bounding boxes").
func CubicBounds(p0, p1, p2, p3 Point) Rect {
	r := EmptyRect().Extend(p0).Extend(p3)
	for _, t := range cubicExtrema(p0.X, p1.X, p2.X, p3.X) {
		r = r.Extend(Point{cubicAt(p0.X, p1.X, p2.X, p3.X, t), cubicAt(p0.Y, p1.Y, p2.Y, p3.Y, t)})
	}
	for _, t := range cubicExtrema(p0.Y, p1.Y, p2.Y, p3.Y) {
		r = r.Extend(Point{cubicAt(p0.X, p1.X, p2.X, p3.X, t), cubicAt(p0.Y, p1.Y, p2.Y, p3.Y, t)})
	}
	return r
}

func cubicAt(p0, p1, p2, p3, t float64) float64 {
	mt := 1 - t
	return mt*mt*mt*p0 + 3*mt*mt*t*p1 + 3*mt*t*t*p2 + t*t*t*p3
}

// cubicExtrema solves the derivative of a single-axis cubic for roots in
// (0, 1): -3P0 + 9P1 - 9P2 + 3P3 = 0 scaled form, i.e. the quadratic
// a*t^2 + b*t + c = 0 with a = -P0+3P1-3P2+P3, b = 2(P0-2P1+P2), c = P1-P0.
func cubicExtrema(p0, p1, p2, p3 float64) []float64 {
	a := -p0 + 3*p1 - 3*p2 + p3
	b := 2 * (p0 - 2*p1 + p2)
	c := p1 - p0
	var roots []float64
	const eps = 1e-12
	if abs(a) < eps {
		if abs(b) > eps {
			t := -c / b
			if t > 0 && t < 1 {
				roots = append(roots, t)
			}
		}
		return roots
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return roots
	}
	sq := math.Sqrt(disc)
	for _, t := range [2]float64{(-b + sq) / (2 * a), (-b - sq) / (2 * a)} {
		if t > 0 && t < 1 {
			roots = append(roots, t)
		}
	}
	return roots
}

func abs(x float64) float64 { return math.Abs(x) }
