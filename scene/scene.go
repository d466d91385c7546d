// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package scene is the intermediate representation between the
// content-stream interpreter (package reader) and the rasterizer
// (package raster): a flat, paint-ordered list of already-resolved
// drawing commands, with all PDF-specific state (colour spaces, font
// programs, resource lookups, q/Q nesting) already baked out.
package scene

import (
	"pdfcore.dev/engine/color"
	"pdfcore.dev/engine/geom"
)

// FillRule selects how a path's self-intersections determine its
// interior (ISO 32000-1 8.5.3).
type FillRule int

const (
	NonZero FillRule = iota
	EvenOdd
)

// LineCap and LineJoin mirror the PDF `J`/`j` operator values (ISO
// 32000-1 8.4.3.3).
type LineCap int

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

type LineJoin int

const (
	JoinMiter LineJoin = iota
	JoinRound
	JoinBevel
)

// Stroke carries the subset of the graphics state that affects how a
// path is stroked.
type Stroke struct {
	Width      float64
	Cap        LineCap
	Join       LineJoin
	MiterLimit float64
	Dash       []float64
	DashPhase  float64
}

// Clip is one clipping path intersected into the graphics state
// active when a q/Q scope began (ISO 32000-1 8.5.4). Renderables carry
// the full stack of Clips nested around them, rather than a single
// pre-intersected path: intersecting two arbitrary paths geometrically
// is its own hard problem, so the rasterizer instead multiplies each
// Clip's per-pixel coverage mask.
type Clip struct {
	Path *geom.Path
	Rule FillRule
}

// Kind distinguishes the Renderable variants.
type Kind int

const (
	KindFill Kind = iota
	KindStroke
	KindFillStroke
	KindGlyph
	KindImage
)

// Renderable is one drawing command, already transformed into device
// space and carrying a fully resolved paint colour. It is the sum type
// scene.Scene accumulates; exactly one of the embedded shapes below is
// meaningful for any given value, distinguished by Kind.
type Renderable struct {
	Kind Kind

	// Clips is the stack of clipping regions active at the time this
	// Renderable was emitted, outermost first.
	Clips []Clip

	// Fill/Stroke path painting (KindFill, KindStroke, KindFillStroke).
	Path   *geom.Path
	Rule   FillRule // fill rule, for KindFill/KindFillStroke
	Stroke Stroke   // stroke parameters, for KindStroke/KindFillStroke
	Color  color.Color
	Alpha  float64

	// Glyph painting (KindGlyph): a glyph outline already placed in
	// device space by the text rendering matrix.
	GlyphPath *geom.Path

	// Image painting (KindImage): an already-decoded image sampled
	// through the unit square [0,1]x[0,1] under Matrix.
	Image  *Image
	Matrix geom.Matrix
}

// Image is a decoded raster image ready for compositing: interleaved
// 8-bit RGBA, row-major, top-to-bottom (PDF image space convention).
type Image struct {
	Width, Height int
	Pix           []byte // len == Width*Height*4
}

// Scene accumulates Renderables in paint order: the order later
// consumers (package raster) must composite them in to reproduce the
// content stream's visual result, since PDF has no z-index and later
// paints always win.
type Scene struct {
	Items []Renderable
}

// AddFill appends a fill paint operation.
func (s *Scene) AddFill(path *geom.Path, rule FillRule, c color.Color, alpha float64, clips []Clip) {
	s.Items = append(s.Items, Renderable{Kind: KindFill, Path: path, Rule: rule, Color: c, Alpha: alpha, Clips: clips})
}

// AddStroke appends a stroke paint operation.
func (s *Scene) AddStroke(path *geom.Path, st Stroke, c color.Color, alpha float64, clips []Clip) {
	s.Items = append(s.Items, Renderable{Kind: KindStroke, Path: path, Stroke: st, Color: c, Alpha: alpha, Clips: clips})
}

// AddFillStroke appends a combined fill-then-stroke paint operation
// (the `B`/`B*`/`b`/`b*` content-stream operators).
func (s *Scene) AddFillStroke(path *geom.Path, rule FillRule, st Stroke, fillColor, strokeColor color.Color, fillAlpha, strokeAlpha float64, clips []Clip) {
	s.Items = append(s.Items, Renderable{
		Kind: KindFillStroke, Path: path, Rule: rule, Stroke: st,
		Color: fillColor, Alpha: fillAlpha, Clips: clips,
	})
	s.Items = append(s.Items, Renderable{Kind: KindStroke, Path: path, Stroke: st, Color: strokeColor, Alpha: strokeAlpha, Clips: clips})
}

// AddGlyph appends a single glyph outline already placed in device
// space, with the paint colour it should be filled with.
func (s *Scene) AddGlyph(path *geom.Path, c color.Color, alpha float64, clips []Clip) {
	s.Items = append(s.Items, Renderable{Kind: KindGlyph, GlyphPath: path, Color: c, Alpha: alpha, Clips: clips})
}

// AddImage appends an image paint operation: img is sampled through
// the unit square under m (device-space placement, as built by `cm`
// composed with the implicit unit-square-to-image mapping).
func (s *Scene) AddImage(img *Image, m geom.Matrix, alpha float64, clips []Clip) {
	s.Items = append(s.Items, Renderable{Kind: KindImage, Image: img, Matrix: m, Alpha: alpha, Clips: clips})
}
