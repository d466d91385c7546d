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

func TestNonZeroMaskRectangle(t *testing.T) {
	var p geom.Path
	p.Rectangle(2, 2, 6, 6)
	mask := rasterizeMask(10, 10, &p, scene.NonZero)

	if v := mask.AlphaAt(5, 5).A; v < 250 {
		t.Errorf("interior pixel alpha = %d, want ~255", v)
	}
	if v := mask.AlphaAt(0, 0).A; v != 0 {
		t.Errorf("exterior pixel alpha = %d, want 0", v)
	}
}

func TestEvenOddMaskHole(t *testing.T) {
	// Outer square 0..10 plus an inner square 3..7, opposite winding:
	// even-odd punches a hole in the middle, non-zero would not.
	var p geom.Path
	p.MoveTo(0, 0)
	p.LineTo(10, 0)
	p.LineTo(10, 10)
	p.LineTo(0, 10)
	p.ClosePath()
	p.MoveTo(3, 3)
	p.LineTo(3, 7)
	p.LineTo(7, 7)
	p.LineTo(7, 3)
	p.ClosePath()

	mask := rasterizeMask(10, 10, &p, scene.EvenOdd)

	if v := mask.AlphaAt(5, 5).A; v > 5 {
		t.Errorf("hole pixel alpha = %d, want ~0", v)
	}
	if v := mask.AlphaAt(1, 1).A; v < 250 {
		t.Errorf("outer-ring pixel alpha = %d, want ~255", v)
	}
}

func TestEvenOddMaskVsNonZeroSameOutline(t *testing.T) {
	// A single non-self-intersecting rectangle fills the same under
	// either rule.
	var p geom.Path
	p.Rectangle(1, 1, 4, 4)

	nz := rasterizeMask(8, 8, &p, scene.NonZero)
	eo := rasterizeMask(8, 8, &p, scene.EvenOdd)

	if nz.AlphaAt(2, 2).A < 250 || eo.AlphaAt(2, 2).A < 250 {
		t.Errorf("interior pixel should be covered by both rules: nz=%d eo=%d",
			nz.AlphaAt(2, 2).A, eo.AlphaAt(2, 2).A)
	}
}
