// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package raster

import (
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	pdfcolor "pdfcore.dev/engine/color"
	"pdfcore.dev/engine/geom"
	"pdfcore.dev/engine/scene"
)

// Render draws every Renderable in sc onto c, in paint order.
func Render(c *Canvas, sc *scene.Scene) {
	w, h := c.Img.Bounds().Dx(), c.Img.Bounds().Dy()

	for _, item := range sc.Items {
		clip := combinedClip(w, h, item.Clips)
		switch item.Kind {
		case scene.KindFill, scene.KindFillStroke:
			mask := rasterizeMask(w, h, item.Path, item.Rule)
			composite(c, mask, clip, item.Color, item.Alpha)
		case scene.KindStroke:
			outline := strokeOutline(item.Path, item.Stroke)
			mask := rasterizeMask(w, h, outline, scene.NonZero)
			composite(c, mask, clip, item.Color, item.Alpha)
		case scene.KindGlyph:
			mask := rasterizeMask(w, h, item.GlyphPath, scene.NonZero)
			composite(c, mask, clip, item.Color, item.Alpha)
		case scene.KindImage:
			paintImage(c, clip, item.Image, item.Matrix, item.Alpha)
		}
	}
}

// combinedClip multiplies the coverage masks of every entry in clips
// into a single mask. Two Renderables can carry clip stacks of the same
// length but different paths (sibling q/Q scopes at the same nesting
// depth), so this recomputes per call rather than caching by length.
func combinedClip(w, h int, clips []scene.Clip) *image.Alpha {
	if len(clips) == 0 {
		return nil
	}
	var combined *image.Alpha
	for _, cl := range clips {
		m := rasterizeMask(w, h, cl.Path, cl.Rule)
		if combined == nil {
			combined = m
			continue
		}
		for i := range combined.Pix {
			combined.Pix[i] = uint8(uint32(combined.Pix[i]) * uint32(m.Pix[i]) / 255)
		}
	}
	return combined
}

// composite blends col, modulated by mask and clip coverage and by
// alpha, over the canvas using the standard source-over operator.
func composite(c *Canvas, mask, clip *image.Alpha, col pdfcolor.Color, alpha float64) {
	r, g, b, a := col.RGBA()
	bounds := c.Img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		mrow := y * mask.Stride
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cov := float64(mask.Pix[mrow+x]) / 255
			if cov == 0 {
				continue
			}
			if clip != nil {
				cov *= float64(clip.Pix[y*clip.Stride+x]) / 255
				if cov == 0 {
					continue
				}
			}
			srcA := cov * alpha * float64(a) / 0xffff
			blendOver(c.Img, x, y, r, g, b, srcA)
		}
	}
}

// blendOver composites one straight-alpha source sample (16-bit
// channels, 0-0xffff) over the premultiplied destination pixel at
// (x, y) with coverage srcA in [0, 1].
func blendOver(dst *image.RGBA, x, y int, r, g, b uint32, srcA float64) {
	if srcA <= 0 {
		return
	}
	i := dst.PixOffset(x, y)
	dr := float64(dst.Pix[i+0]) / 255
	dg := float64(dst.Pix[i+1]) / 255
	db := float64(dst.Pix[i+2]) / 255
	da := float64(dst.Pix[i+3]) / 255

	sr := float64(r) / 0xffff
	sg := float64(g) / 0xffff
	sb := float64(b) / 0xffff

	// dr/dg/db are premultiplied (image.RGBA convention), so the
	// source-over factor (1-srcA) applies to them directly.
	outA := srcA + da*(1-srcA)
	blend := func(s, d float64) float64 {
		return s*srcA + d*(1-srcA)
	}
	or, og, ob := blend(sr, dr), blend(sg, dg), blend(sb, db)

	dst.Pix[i+0] = clamp8(or)
	dst.Pix[i+1] = clamp8(og)
	dst.Pix[i+2] = clamp8(ob)
	dst.Pix[i+3] = clamp8(outA)
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// paintImage places img's pixel grid into device space under m (the
// affine mapping from the unit square to device space that `cm`
// composed with the image's implicit placement produces) using
// golang.org/x/image/draw's arbitrary-affine transform, then
// composites the result onto the canvas with clip coverage and alpha
// applied per pixel.
func paintImage(c *Canvas, clip *image.Alpha, img *scene.Image, m geom.Matrix, alpha float64) {
	src := &image.NRGBA{
		Pix:    img.Pix,
		Stride: img.Width * 4,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}

	// pixelToUnit maps source pixel coordinates to the unit square,
	// flipping Y since image row 0 is the top but PDF image space has
	// (0,0) at the bottom of the unit square.
	pixelToUnit := geom.NewMatrix(1/float64(img.Width), 0, 0, -1/float64(img.Height), 0, 1)
	combined := pixelToUnit.Mul(m)
	s2d := f64.Aff3{combined.A, combined.C, combined.E, combined.B, combined.D, combined.F}

	placed := image.NewNRGBA(c.Img.Bounds())
	draw.NearestNeighbor.Transform(placed, s2d, src, src.Bounds(), draw.Src, nil)

	bounds := c.Img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			off := placed.PixOffset(x, y)
			a8 := placed.Pix[off+3]
			if a8 == 0 {
				continue
			}
			r := uint32(placed.Pix[off+0]) * 0x101
			g := uint32(placed.Pix[off+1]) * 0x101
			b := uint32(placed.Pix[off+2]) * 0x101
			a := uint32(a8) * 0x101

			cov := alpha * float64(a) / 0xffff
			if clip != nil {
				cov *= float64(clip.Pix[y*clip.Stride+x]) / 255
			}
			if cov <= 0 {
				continue
			}
			blendOver(c.Img, x, y, r, g, b, cov)
		}
	}
}
