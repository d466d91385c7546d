// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package raster

import (
	"testing"

	"pdfcore.dev/engine/color"
	"pdfcore.dev/engine/geom"
	"pdfcore.dev/engine/scene"
)

func TestRenderFill(t *testing.T) {
	var p geom.Path
	p.Rectangle(2, 2, 6, 6)

	var sc scene.Scene
	sc.AddFill(&p, scene.NonZero, color.RGB(0, 1, 0), 1, nil)

	c := NewCanvas(10, 10)
	Render(c, &sc)

	r, g, b, a := c.Img.At(5, 5).RGBA()
	if a != 0xffff || g != 0xffff || r != 0 || b != 0 {
		t.Errorf("interior pixel RGBA = %#x,%#x,%#x,%#x, want opaque green", r, g, b, a)
	}
	if _, _, _, a := c.Img.At(0, 0).RGBA(); a != 0 {
		t.Errorf("exterior pixel alpha = %#x, want 0", a)
	}
}

func TestRenderRespectsClip(t *testing.T) {
	var fill geom.Path
	fill.Rectangle(0, 0, 10, 10)
	var clip geom.Path
	clip.Rectangle(0, 0, 5, 10)

	var sc scene.Scene
	sc.AddFill(&fill, scene.NonZero, color.RGB(1, 0, 0), 1, []scene.Clip{{Path: &clip, Rule: scene.NonZero}})

	c := NewCanvas(10, 10)
	Render(c, &sc)

	if _, _, _, a := c.Img.At(2, 5).RGBA(); a != 0xffff {
		t.Errorf("pixel inside clip region has alpha %#x, want opaque", a)
	}
	if _, _, _, a := c.Img.At(8, 5).RGBA(); a != 0 {
		t.Errorf("pixel outside clip region has alpha %#x, want transparent", a)
	}
}

func TestRenderImage(t *testing.T) {
	// A 2x2 solid-blue NRGBA image placed to cover the unit square,
	// mapped onto the whole 4x4 canvas by cm.
	img := &scene.Image{
		Width:  2,
		Height: 2,
		Pix: []byte{
			0, 0, 255, 255, 0, 0, 255, 255,
			0, 0, 255, 255, 0, 0, 255, 255,
		},
	}
	m := geom.NewMatrix(4, 0, 0, 4, 0, 0)

	var sc scene.Scene
	sc.AddImage(img, m, 1, nil)

	c := NewCanvas(4, 4)
	Render(c, &sc)

	r, g, b, a := c.Img.At(2, 2).RGBA()
	if a != 0xffff || b != 0xffff || r != 0 || g != 0 {
		t.Errorf("RGBA = %#x,%#x,%#x,%#x, want opaque blue", r, g, b, a)
	}
}
