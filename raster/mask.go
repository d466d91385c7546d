// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package raster

import (
	"image"
	"sort"

	"golang.org/x/image/vector"

	"pdfcore.dev/engine/geom"
	"pdfcore.dev/engine/scene"
)

// flattenTolerance is the maximum deviation, in device pixels, allowed
// when approximating a cubic Bezier segment by line segments.
const flattenTolerance = 0.3

// rasterizeMask computes an 8-bit antialiased coverage mask for path
// within a w x h device-space canvas, under the given fill rule.
func rasterizeMask(w, h int, path *geom.Path, rule scene.FillRule) *image.Alpha {
	if rule == scene.EvenOdd {
		return evenOddMask(w, h, path)
	}
	return nonZeroMask(w, h, path)
}

// nonZeroMask rasterizes path using golang.org/x/image/vector, which
// implements the non-zero winding rule natively via signed area
// accumulation.
func nonZeroMask(w, h int, path *geom.Path) *image.Alpha {
	z := vector.NewRasterizer(w, h)
	for _, sp := range path.Subpaths {
		z.MoveTo(float32(sp.Start.X), float32(sp.Start.Y))
		for _, seg := range sp.Segments {
			switch seg.Kind {
			case geom.SegLineTo, geom.SegClose:
				z.LineTo(float32(seg.To.X), float32(seg.To.Y))
			case geom.SegCurveTo:
				z.CubeTo(
					float32(seg.Ctrl1.X), float32(seg.Ctrl1.Y),
					float32(seg.Ctrl2.X), float32(seg.Ctrl2.Y),
					float32(seg.To.X), float32(seg.To.Y),
				)
			}
		}
		z.ClosePath()
	}
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}

// edge is one flattened, y-monotone-split segment of a path's outline,
// used by evenOddMask's scanline pass.
type edge struct {
	x0, y0, x1, y1 float64
}

// evenOddMask rasterizes path under the even-odd rule: a scanline
// sweep with vertical supersampling, since golang.org/x/image/vector
// has no notion of even-odd (ISO 32000-1 8.5.3 fill rules are a PDF
// concept the general-purpose vector package doesn't model).
func evenOddMask(w, h int, path *geom.Path) *image.Alpha {
	var edges []edge
	for _, sp := range path.Subpaths {
		pts := []geom.Point{sp.Start}
		cur := sp.Start
		for _, seg := range sp.Segments {
			switch seg.Kind {
			case geom.SegLineTo, geom.SegClose:
				pts = append(pts, seg.To)
				cur = seg.To
			case geom.SegCurveTo:
				flattenCubicInto(&pts, cur, seg.Ctrl1, seg.Ctrl2, seg.To, flattenTolerance)
				cur = seg.To
			}
		}
		for i := 0; i < len(pts)-1; i++ {
			edges = append(edges, edge{pts[i].X, pts[i].Y, pts[i+1].X, pts[i+1].Y})
		}
		if len(pts) > 1 && (pts[0] != pts[len(pts)-1]) {
			edges = append(edges, edge{pts[len(pts)-1].X, pts[len(pts)-1].Y, pts[0].X, pts[0].Y})
		}
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	const samples = 4
	row := make([]float64, w)
	var xs []float64
	for y := 0; y < h; y++ {
		for i := range row {
			row[i] = 0
		}
		for s := 0; s < samples; s++ {
			sy := float64(y) + (float64(s)+0.5)/samples
			xs = xs[:0]
			for _, e := range edges {
				y0, y1 := e.y0, e.y1
				if y0 == y1 {
					continue
				}
				if (sy < y0) == (sy < y1) {
					continue
				}
				t := (sy - y0) / (y1 - y0)
				xs = append(xs, e.x0+t*(e.x1-e.x0))
			}
			sort.Float64s(xs)
			for i := 0; i+1 < len(xs); i += 2 {
				addSpanCoverage(row, xs[i], xs[i+1], 1.0/samples)
			}
		}
		base := y * mask.Stride
		for x := 0; x < w; x++ {
			v := row[x]
			if v > 1 {
				v = 1
			}
			mask.Pix[base+x] = uint8(v*255 + 0.5)
		}
	}
	return mask
}

// addSpanCoverage adds weight to every pixel column whose centre lies
// within [x0, x1), with partial weight for the columns the span starts
// and ends in.
func addSpanCoverage(row []float64, x0, x1, weight float64) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	w := len(row)
	lo, hi := int(x0), int(x1)
	if lo < 0 {
		lo = 0
	}
	if hi >= w {
		hi = w - 1
	}
	for x := lo; x <= hi; x++ {
		left := float64(x)
		right := float64(x + 1)
		cover := minF(right, x1) - maxF(left, x0)
		if cover > 0 {
			row[x] += cover * weight
		}
	}
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// flattenCubicInto appends a cubic Bezier's subdivision points (not
// including p0, which the caller already has) to pts.
func flattenCubicInto(pts *[]geom.Point, p0, c1, c2, p3 geom.Point, tol float64) {
	tmp := &geom.Path{}
	tmp.MoveTo(p0.X, p0.Y)
	tmp.CubicCurveTo(c1.X, c1.Y, c2.X, c2.Y, p3.X, p3.Y)
	tmp.Flatten(tol, func(_ int, pt geom.Point, start bool) {
		if !start {
			*pts = append(*pts, pt)
		}
	})
}
