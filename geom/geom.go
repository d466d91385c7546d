// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package geom implements the affine geometry shared by the content-stream
// interpreter, the font subsystem and the rasterizer: points, 3x3 affine
// matrices with a fixed third column, paths built from line and cubic
// Bezier segments, and bounding-box/flattening helpers.
//
// Matrices follow the PDF convention (spec.md 4.7): a point row-vector is
// multiplied on the right, so composing "apply A then B" is A.Mul(B), not
// B.Mul(A).
package geom

import "math"

// Point is a point or vector in two dimensions.
type Point struct {
	X, Y float64
}

// Matrix is a 3x3 affine transform stored as six floats (a, b, c, d, e, f)
// with a fixed third column (0, 0, 1), i.e.
//
//	[ a b 0 ]
//	[ c d 0 ]
//	[ e f 1 ]
type Matrix struct {
	A, B, C, D, E, F float64
}

// Identity is the identity transform.
var Identity = Matrix{1, 0, 0, 1, 0, 0}

// NewMatrix builds a Matrix from the six PDF `cm` operands, in the order
// they appear in the content stream (a b c d e f).
func NewMatrix(a, b, c, d, e, f float64) Matrix {
	return Matrix{a, b, c, d, e, f}
}

// Apply transforms a point: p' = p * m (row-vector on the left).
func (m Matrix) Apply(p Point) Point {
	return Point{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// ApplyVector transforms a vector (ignores translation).
func (m Matrix) ApplyVector(p Point) Point {
	return Point{
		X: m.A*p.X + m.C*p.Y,
		Y: m.B*p.X + m.D*p.Y,
	}
}

// Mul composes two transforms: applying the result is the same as applying
// m first, then n (p * m * n), matching the PDF `cm` operator's convention
// of pre-multiplying the CTM: newCTM = m.Mul(ctm).
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		A: m.A*n.A + m.B*n.C,
		B: m.A*n.B + m.B*n.D,
		C: m.C*n.A + m.D*n.C,
		D: m.C*n.B + m.D*n.D,
		E: m.E*n.A + m.F*n.C + n.E,
		F: m.E*n.B + m.F*n.D + n.F,
	}
}

// Det returns the determinant of the linear part of m.
func (m Matrix) Det() float64 {
	return m.A*m.D - m.B*m.C
}

// Invert returns the inverse of m. If m is (near-)singular, Invert returns
// the identity rather than panicking or dividing by zero: the rasterizer
// must handle degenerate matrices gracefully (spec.md 3 "Invariants").
func (m Matrix) Invert() Matrix {
	det := m.Det()
	if math.Abs(det) < 1e-12 {
		return Identity
	}
	inv := 1 / det
	a := m.D * inv
	b := -m.B * inv
	c := -m.C * inv
	d := m.A * inv
	e := -(m.E*a + m.F*c)
	f := -(m.E*b + m.F*d)
	return Matrix{a, b, c, d, e, f}
}

// Translate returns the translation matrix [1 0 0 1 dx dy].
func Translate(dx, dy float64) Matrix { return Matrix{1, 0, 0, 1, dx, dy} }

// Scale returns the scale matrix [sx 0 0 sy 0 0].
func Scale(sx, sy float64) Matrix { return Matrix{sx, 0, 0, sy, 0, 0} }

// ScalarScale returns the CTM-independent scale factor used to transform a
// scalar line width: the square root of the absolute determinant, the
// standard approximation for anisotropic transforms.
func (m Matrix) ScalarScale() float64 {
	return math.Sqrt(math.Abs(m.Det()))
}

// Rect is an axis-aligned bounding box. Empty is represented by Min.X >
// Max.X.
type Rect struct {
	Min, Max Point
}

// EmptyRect returns a Rect that contains no points.
func EmptyRect() Rect {
	return Rect{Point{math.Inf(1), math.Inf(1)}, Point{math.Inf(-1), math.Inf(-1)}}
}

// IsEmpty reports whether r contains no points.
func (r Rect) IsEmpty() bool { return r.Min.X > r.Max.X || r.Min.Y > r.Max.Y }

// Extend grows r to include p.
func (r Rect) Extend(p Point) Rect {
	if p.X < r.Min.X {
		r.Min.X = p.X
	}
	if p.Y < r.Min.Y {
		r.Min.Y = p.Y
	}
	if p.X > r.Max.X {
		r.Max.X = p.X
	}
	if p.Y > r.Max.Y {
		r.Max.Y = p.Y
	}
	return r
}

// Union returns the smallest Rect containing both r and s.
func (r Rect) Union(s Rect) Rect {
	if r.IsEmpty() {
		return s
	}
	if s.IsEmpty() {
		return r
	}
	return r.Extend(s.Min).Extend(s.Max)
}

// Transform returns the bounding box of r's four corners transformed by m.
func (r Rect) Transform(m Matrix) Rect {
	if r.IsEmpty() {
		return r
	}
	out := EmptyRect()
	for _, p := range [4]Point{
		{r.Min.X, r.Min.Y}, {r.Max.X, r.Min.Y},
		{r.Min.X, r.Max.Y}, {r.Max.X, r.Max.Y},
	} {
		out = out.Extend(m.Apply(p))
	}
	return out
}

// Width and Height report the extent of r.
func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }
