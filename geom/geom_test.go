// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package geom

import (
	"math"
	"testing"
)

func approxEq(t *testing.T, got, want, tol float64, name string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %v, want %v", name, got, want)
	}
}

func TestMatrixAssociative(t *testing.T) {
	a := Matrix{1, 2, 3, 4, 5, 6}
	b := Matrix{2, 0, 1, 3, -1, 2}
	c := Matrix{0, 1, -2, 1, 3, -3}

	left := a.Mul(b).Mul(c)
	right := a.Mul(b.Mul(c))

	get := func(m Matrix) [6]float64 { return [6]float64{m.A, m.B, m.C, m.D, m.E, m.F} }
	lv, rv := get(left), get(right)
	for i := range lv {
		approxEq(t, lv[i], rv[i], 1e-9, "component")
	}
}

func TestMatrixInvert(t *testing.T) {
	m := Matrix{2, 0, 0, 3, 5, -1}
	inv := m.Invert()
	p := Point{7, 11}
	got := inv.Apply(m.Apply(p))
	approxEq(t, got.X, p.X, 1e-9, "x")
	approxEq(t, got.Y, p.Y, 1e-9, "y")
}

func TestMatrixInvertSingular(t *testing.T) {
	m := Matrix{0, 0, 0, 0, 1, 1}
	inv := m.Invert()
	if inv != Identity {
		t.Errorf("singular matrix should invert to identity, got %+v", inv)
	}
}

func TestPathRectangle(t *testing.T) {
	var p Path
	p.Rectangle(10, 10, 100, 50)
	if len(p.Subpaths) != 1 {
		t.Fatalf("expected 1 subpath, got %d", len(p.Subpaths))
	}
	sp := p.Subpaths[0]
	if !sp.Closed {
		t.Error("rectangle subpath should be closed")
	}
	if len(sp.Segments) != 4 {
		t.Fatalf("expected 4 segments, got %d", len(sp.Segments))
	}
	b := p.Bounds()
	if b.Min.X != 10 || b.Min.Y != 10 || b.Max.X != 110 || b.Max.Y != 60 {
		t.Errorf("unexpected bounds: %+v", b)
	}
}

func TestPathFlattenLine(t *testing.T) {
	var p Path
	p.MoveTo(0, 0)
	p.LineTo(10, 0)
	p.LineTo(10, 10)

	var pts []Point
	p.Flatten(0.25, func(_ int, pt Point, _ bool) { pts = append(pts, pt) })
	want := []Point{{0, 0}, {10, 0}, {10, 10}}
	if len(pts) != len(want) {
		t.Fatalf("got %d points, want %d", len(pts), len(want))
	}
	for i := range want {
		if pts[i] != want[i] {
			t.Errorf("point %d: got %+v, want %+v", i, pts[i], want[i])
		}
	}
}

func TestFlattenCubicConverges(t *testing.T) {
	var last Point
	n := 0
	flattenCubic(Point{0, 0}, Point{0, 100}, Point{100, 100}, Point{100, 0}, 0.25, func(p Point) {
		last = p
		n++
	})
	if n == 0 {
		t.Fatal("expected at least one flattened point")
	}
	approxEq(t, last.X, 100, 1e-9, "last.X")
	approxEq(t, last.Y, 0, 1e-9, "last.Y")
}

func TestCubicBoundsKnownOvershoot(t *testing.T) {
	// A cubic whose control points overshoot the endpoints on the x axis.
	b := CubicBounds(Point{0, 0}, Point{50, 0}, Point{150, 0}, Point{100, 0})
	if b.Max.X <= 100.0001 {
		t.Errorf("expected bounds to extend past endpoint, got max.X=%v", b.Max.X)
	}
}

func TestRectUnion(t *testing.T) {
	a := Rect{Point{0, 0}, Point{10, 10}}
	b := Rect{Point{5, -5}, Point{20, 2}}
	u := a.Union(b)
	if u.Min.X != 0 || u.Min.Y != -5 || u.Max.X != 20 || u.Max.Y != 10 {
		t.Errorf("unexpected union: %+v", u)
	}
}
