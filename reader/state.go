// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package reader

import (
	"pdfcore.dev/engine/color"
	"pdfcore.dev/engine/font"
	"pdfcore.dev/engine/geom"
	"pdfcore.dev/engine/scene"
)

// textState is the text-related half of the graphics state (spec.md 3
// "Graphics state", the "text substate" paragraph).
type textState struct {
	Matrix     geom.Matrix // Tm
	LineMatrix geom.Matrix // Tlm

	CharSpacing     float64 // Tc
	WordSpacing      float64 // Tw
	HorizontalScale  float64 // Tz, as a fraction (1.0 == 100%)
	Leading          float64 // TL
	Font             font.Font
	FontSize         float64 // Tfs
	RenderMode       int     // Tr
	Rise             float64 // Ts
}

// state is the full graphics state the interpreter threads through a
// content stream, pushed/popped wholesale by q/Q (spec.md 3 "Graphics
// state", "The stack is LIFO; save/restore push/pop").
type state struct {
	CTM geom.Matrix

	StrokeSpace color.Space
	StrokeColor color.Color
	FillSpace   color.Space
	FillColor   color.Color

	LineWidth  float64
	LineCap    scene.LineCap
	LineJoin   scene.LineJoin
	MiterLimit float64
	Dash       []float64
	DashPhase  float64

	FillAlpha   float64
	StrokeAlpha float64

	// Clips is the stack of clipping regions intersected into this
	// state so far, outermost first. Renderables carry a copy of this
	// slice (append-only, so sharing the backing array across sibling
	// states is safe).
	Clips []scene.Clip

	Text textState
}

// newState returns the initial graphics state a page (or a Form
// XObject/Type 3 glyph re-entering the interpreter) starts in: black
// DeviceGray fill and stroke, 1-unit line width, fully opaque, no
// clip, and the given initial CTM (spec.md 3 "Graphics state").
func newState(ctm geom.Matrix) state {
	return state{
		CTM:         ctm,
		StrokeSpace: color.DeviceGraySpace,
		StrokeColor: color.DeviceGraySpace.Default(),
		FillSpace:   color.DeviceGraySpace,
		FillColor:   color.DeviceGraySpace.Default(),
		LineWidth:   1,
		MiterLimit:  10,
		FillAlpha:   1,
		StrokeAlpha: 1,
		Text: textState{
			HorizontalScale: 1,
		},
	}
}

// clone returns a deep-enough copy of s for q to push: every field is
// either a value type or a slice this code never mutates in place
// (append always allocates a new backing array once shared), so a
// shallow struct copy already gives save/restore independence.
func (s state) clone() state {
	return s
}
