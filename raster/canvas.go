// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package raster turns a scene.Scene into pixels: a CPU scanline
// rasterizer for fills and strokes (golang.org/x/image/vector for the
// non-zero winding rule, a custom scanline pass for even-odd, which
// the vector package cannot express), image compositing via
// golang.org/x/image/draw, and clip-region intersection by multiplying
// per-pixel coverage masks.
package raster

import (
	"image"
	"image/color"

	pdfcolor "pdfcore.dev/engine/color"
)

// Canvas is the pixel buffer a Scene is rendered onto: a standard
// alpha-premultiplied RGBA image, device space with the origin at the
// top-left (PDF device space has the origin at the bottom-left; the
// reader's initial CTM flips this, see reader.New).
type Canvas struct {
	Img *image.RGBA
}

// NewCanvas allocates a w x h canvas, fully transparent.
func NewCanvas(w, h int) *Canvas {
	return &Canvas{Img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

// Fill paints the whole canvas with an opaque background colour, the
// way a PDF page's white paper backdrop is established before any
// content is drawn.
func (c *Canvas) Fill(bg pdfcolor.Color) {
	r, g, b, a := bg.RGBA()
	col := color.RGBA64{R: uint16(r), G: uint16(g), B: uint16(b), A: uint16(a)}
	bounds := c.Img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c.Img.Set(x, y, col)
		}
	}
}

// ARGB32 returns the canvas as a flat slice of packed 0xAARRGGBB
// words, row-major, matching the pixel format conventionally expected
// by simple image exporters and test harnesses that don't want to deal
// with Go's alpha-premultiplied image.RGBA byte layout directly.
func (c *Canvas) ARGB32() []uint32 {
	b := c.Img.Bounds()
	out := make([]uint32, b.Dx()*b.Dy())
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := c.Img.At(x, y).RGBA()
			// unpremultiply: image.RGBA stores premultiplied 16-bit
			// channels, but the packed word is expected to hold
			// straight (non-premultiplied) 8-bit colour.
			if a != 0 {
				r = r * 0xffff / a
				g = g * 0xffff / a
				bl = bl * 0xffff / a
			}
			out[i] = uint32(a>>8)<<24 | uint32(r>>8)<<16 | uint32(g>>8)<<8 | uint32(bl>>8)
			i++
		}
	}
	return out
}
