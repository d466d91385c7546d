// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package font

import (
	pdf "pdfcore.dev/engine"
	"pdfcore.dev/engine/geom"
)

// type3Font implements Font for Type 3 fonts (ISO 32000-1 9.6.5): each
// glyph is a content-stream procedure in its own glyph space, rather
// than an outline. Glyph always reports "not found" — callers draw
// Type 3 text by checking IsType3 and re-entering the content-stream
// interpreter via CharProc instead.
type type3Font struct {
	matrix    geom.Matrix
	charProcs map[string]*pdf.Stream
	resources pdf.Dict
	encoding  [256]string
	widths    map[uint32]float64
}

func (f *type3Font) Glyph(uint32) (*Glyph, bool) { return nil, false }
func (f *type3Font) CodeLength(pdf.String) int    { return 1 }
func (f *type3Font) IsType3() bool                { return true }

// FontMatrix returns the glyph-space-to-text-space matrix that the
// content-stream reader must prepend before running a CharProc.
func (f *type3Font) FontMatrix() geom.Matrix { return f.matrix }

// CharProc returns the content-stream procedure, its resource
// dictionary and its advance width (already in text-space units, i.e.
// after applying FontMatrix) for a character code.
func (f *type3Font) CharProc(code uint32) (proc *pdf.Stream, resources pdf.Dict, advance float64, ok bool) {
	if code > 255 {
		return nil, nil, 0, false
	}
	name := f.encoding[code]
	if name == "" {
		return nil, nil, 0, false
	}
	proc, ok = f.charProcs[name]
	if !ok {
		return nil, nil, 0, false
	}
	advance = f.widths[code]
	return proc, f.resources, advance, true
}

func loadType3(r pdf.Getter, dict pdf.Dict) (Font, error) {
	var matrix geom.Matrix = geom.Scale(0.001, 0.001)
	if arr, err := pdf.GetFloatArray(r, dict["FontMatrix"]); err == nil && len(arr) == 6 {
		matrix = geom.NewMatrix(arr[0], arr[1], arr[2], arr[3], arr[4], arr[5])
	}

	procsDict, err := pdf.GetDict(r, dict["CharProcs"])
	if err != nil {
		return nil, &InvalidFontError{SubSystem: "type3", Reason: "missing CharProcs"}
	}
	procs := make(map[string]*pdf.Stream, len(procsDict))
	for name, obj := range procsDict {
		if s, err := pdf.GetStream(r, obj); err == nil && s != nil {
			procs[string(name)] = s
		}
	}

	resources, _ := pdf.GetDict(r, dict["Resources"])

	var encoding [256]string
	if enc, err := pdf.Resolve(r, dict["Encoding"]); err == nil {
		applyEncoding(r, enc, &encoding)
	}

	widths := make(map[uint32]float64)
	first, _ := pdf.GetInt(r, dict["FirstChar"])
	if arr, err := pdf.GetArray(r, dict["Widths"]); err == nil {
		for i, w := range arr {
			v, err := pdf.GetNumber(r, w)
			if err != nil {
				continue
			}
			glyphSpace := geom.Point{X: float64(v), Y: 0}
			textSpace := matrix.ApplyVector(glyphSpace)
			widths[uint32(int(first)+i)] = textSpace.X
		}
	}

	return &type3Font{
		matrix:    matrix,
		charProcs: procs,
		resources: resources,
		encoding:  encoding,
		widths:    widths,
	}, nil
}
