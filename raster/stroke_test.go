// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package raster

import (
	"testing"

	"pdfcore.dev/engine/geom"
	"pdfcore.dev/engine/scene"
)

func TestStrokeOutlineCoversLine(t *testing.T) {
	var p geom.Path
	p.MoveTo(0, 5)
	p.LineTo(10, 5)

	outline := strokeOutline(&p, scene.Stroke{Width: 4})
	mask := rasterizeMask(10, 10, outline, scene.NonZero)

	if v := mask.AlphaAt(5, 5).A; v < 200 {
		t.Errorf("pixel on the stroked line has alpha %d, want high coverage", v)
	}
	if v := mask.AlphaAt(5, 9).A; v > 20 {
		t.Errorf("pixel far from the stroke has alpha %d, want ~0", v)
	}
}

// Line caps: a butt cap ends flush at the endpoint, a projecting
// square cap extends half a line width past it, and a round cap fills
// a half-disc.
func TestStrokeLineCaps(t *testing.T) {
	var p geom.Path
	p.MoveTo(3, 5)
	p.LineTo(7, 5)

	capAlpha := func(style scene.LineCap, x, y int) uint8 {
		outline := strokeOutline(&p, scene.Stroke{Width: 4, Cap: style})
		return rasterizeMask(10, 10, outline, scene.NonZero).AlphaAt(x, y).A
	}

	// pixel [2,3)x[5,6) lies just past the start point
	if v := capAlpha(scene.CapButt, 2, 5); v > 20 {
		t.Errorf("butt cap covers past the endpoint: alpha %d", v)
	}
	if v := capAlpha(scene.CapRound, 2, 5); v < 100 {
		t.Errorf("round cap alpha %d, want coverage past the endpoint", v)
	}
	// pixel [1,2)x[5,6) is half a line width past the endpoint
	if v := capAlpha(scene.CapSquare, 1, 5); v < 200 {
		t.Errorf("square cap alpha %d, want full coverage half a width out", v)
	}
	if v := capAlpha(scene.CapButt, 1, 5); v > 20 {
		t.Errorf("butt cap alpha %d half a width out, want ~0", v)
	}
}

// Line joins: at a right-angle corner a miter join fills the full
// outer corner square, a bevel join cuts it diagonally (about half
// coverage), and a miter past the limit degrades to the same bevel.
func TestStrokeLineJoins(t *testing.T) {
	var p geom.Path
	p.MoveTo(2, 8)
	p.LineTo(2, 2)
	p.LineTo(8, 2)

	cornerAlpha := func(st scene.Stroke) uint8 {
		outline := strokeOutline(&p, st)
		// pixel [1,2)x[1,2): the outer corner square of the joint
		return rasterizeMask(10, 10, outline, scene.NonZero).AlphaAt(1, 1).A
	}

	if v := cornerAlpha(scene.Stroke{Width: 2, Join: scene.JoinMiter}); v < 200 {
		t.Errorf("miter join corner alpha %d, want full coverage", v)
	}
	if v := cornerAlpha(scene.Stroke{Width: 2, Join: scene.JoinBevel}); v < 50 || v > 200 {
		t.Errorf("bevel join corner alpha %d, want roughly half coverage", v)
	}
	// a right angle has miter ratio sqrt(2); a limit below that must
	// fall back to bevel
	if v := cornerAlpha(scene.Stroke{Width: 2, Join: scene.JoinMiter, MiterLimit: 1.1}); v < 50 || v > 200 {
		t.Errorf("limited miter corner alpha %d, want the bevel fallback", v)
	}
	if v := cornerAlpha(scene.Stroke{Width: 2, Join: scene.JoinRound}); v < 50 {
		t.Errorf("round join corner alpha %d, want coverage from the joint disc", v)
	}
}

func TestApplyDashProducesShorterTotalLength(t *testing.T) {
	pl := polyline{pts: []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}}
	segments := applyDash(pl, []float64{2, 2}, 0)
	if len(segments) == 0 {
		t.Fatal("expected at least one dash segment")
	}
	for _, seg := range segments {
		if len(seg.pts) < 2 {
			t.Errorf("dash segment has %d points, want >= 2", len(seg.pts))
		}
	}
}

func TestApplyDashEmptyPatternReturnsWholePolyline(t *testing.T) {
	pl := polyline{pts: []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}}
	segments := applyDash(pl, nil, 0)
	if len(segments) != 1 || len(segments[0].pts) != 2 {
		t.Fatalf("expected the unmodified polyline back, got %v", segments)
	}
}
