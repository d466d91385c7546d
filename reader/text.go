// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package reader

import (
	"bytes"
	"fmt"

	pdf "pdfcore.dev/engine"
	"pdfcore.dev/engine/font"
	"pdfcore.dev/engine/geom"
	"pdfcore.dev/engine/scene"
)

// loadFont resolves a /Font resource entry by name, caching by
// indirect reference so repeated Tf calls for the same font across a
// page (or across Form XObjects sharing a font resource) reuse the
// same decoded glyph programs (spec.md 4.5 "Font subsystem",
// "Lifecycles").
func (rd *Reader) loadFont(name pdf.Name) (font.Font, error) {
	if rd.Resources == nil {
		return nil, fmt.Errorf("reader: no resource dictionary for font %q", name)
	}
	fontsDict, err := pdf.GetDict(rd.R, rd.Resources["Font"])
	if err != nil || fontsDict == nil {
		return nil, fmt.Errorf("reader: no /Font resources for %q", name)
	}
	entry, ok := fontsDict[name]
	if !ok {
		return nil, fmt.Errorf("reader: font resource %q not found", name)
	}
	if ref, ok := entry.(pdf.Reference); ok {
		if f, ok := rd.fonts[ref]; ok {
			return f, nil
		}
		dict, err := pdf.GetDict(rd.R, ref)
		if err != nil {
			return nil, err
		}
		f, err := font.Load(rd.R, dict)
		if err != nil {
			return nil, err
		}
		rd.fonts[ref] = f
		return f, nil
	}
	dict, err := pdf.GetDict(rd.R, entry)
	if err != nil {
		return nil, err
	}
	return font.Load(rd.R, dict)
}

// showText renders one string operand of Tj/'/"/TJ, advancing the text
// matrix glyph by glyph (ISO 32000-1 9.4.3).
func (rd *Reader) showText(s pdf.String) {
	f := rd.State.Text.Font
	if f == nil {
		return
	}
	for i := 0; i < len(s); {
		n := f.CodeLength(s[i:])
		if n <= 0 {
			n = 1
		}
		if i+n > len(s) {
			n = len(s) - i
		}
		chunk := s[i : i+n]
		var code uint32
		for _, b := range chunk {
			code = code<<8 | uint32(b)
		}
		rd.showGlyph(f, code, n == 1 && chunk[0] == ' ')
		i += n
	}
}

// showTextArray implements TJ: strings are shown as by Tj, and numbers
// are horizontal position adjustments expressed in thousandths of a
// text-space unit, subtracted from the advance (ISO 32000-1 9.4.3).
func (rd *Reader) showTextArray(arr pdf.Array) {
	for _, el := range arr {
		switch v := el.(type) {
		case pdf.String:
			rd.showText(v)
		case pdf.Integer, pdf.Real:
			adj, _ := num([]pdf.Object{v}, 0)
			ts := &rd.State.Text
			tx := -(adj / 1000) * ts.FontSize * ts.HorizontalScale
			m := geom.Translate(tx, 0).Mul(ts.Matrix)
			ts.Matrix = m
		}
	}
}

// showGlyph draws one character code (outline fonts) or re-enters the
// content-stream interpreter for its procedure (Type 3), then advances
// the text matrix by the glyph's width (spec.md 4.5, 4.4 "Text
// showing"). The text rendering mode (Tr) selects fill, stroke, both,
// or neither, and modes 4-7 additionally accumulate the glyph outline
// into the text clipping path committed at ET.
func (rd *Reader) showGlyph(f font.Font, code uint32, isSpace bool) {
	ts := &rd.State.Text
	size := ts.FontSize
	hs := ts.HorizontalScale
	sizeMatrix := geom.Matrix{A: size * hs, B: 0, C: 0, D: size, E: 0, F: ts.Rise}

	var advanceTextUnits float64
	mode := ts.RenderMode

	if t3, ok := f.(font.Type3Font); ok && f.IsType3() {
		proc, resources, adv, found := t3.CharProc(code)
		advanceTextUnits = adv
		// Type 3 glyphs are procedures, not outlines; the clip half of
		// modes 4-7 cannot apply, so only the painting half is honoured.
		if found && mode != 3 && mode != 7 && rd.depth < maxNestingDepth {
			full := t3.FontMatrix().Mul(sizeMatrix).Mul(ts.Matrix).Mul(rd.State.CTM)
			rd.runType3Glyph(proc, resources, full)
		}
	} else if g, ok := f.Glyph(code); ok {
		advanceTextUnits = g.Advance / 1000
		if g.Path != nil && mode != 3 {
			glyphSpace := geom.Scale(0.001, 0.001)
			full := glyphSpace.Mul(sizeMatrix).Mul(ts.Matrix).Mul(rd.State.CTM)
			device := g.Path.Transform(full)
			s := &rd.State
			switch mode {
			case 0, 4: // fill
				rd.Scene.AddGlyph(device, s.FillColor, s.FillAlpha, s.Clips)
			case 1, 5: // stroke
				rd.Scene.AddStroke(device, rd.strokeParams(), s.StrokeColor, s.StrokeAlpha, s.Clips)
			case 2, 6: // fill then stroke
				rd.Scene.AddFillStroke(device, scene.NonZero, rd.strokeParams(),
					s.FillColor, s.StrokeColor, s.FillAlpha, s.StrokeAlpha, s.Clips)
			}
			if mode >= 4 && mode <= 7 {
				rd.addTextClip(device)
			}
		}
	}

	tx := (advanceTextUnits*size + ts.CharSpacing + wordSpacingFor(isSpace, ts.WordSpacing)) * hs
	ts.Matrix = geom.Translate(tx, 0).Mul(ts.Matrix)
}

// addTextClip accumulates a glyph outline (already in device space)
// into the pending text clipping path. The union of every glyph shown
// in modes 4-7 becomes one clip entry when ET commits it.
func (rd *Reader) addTextClip(device *geom.Path) {
	if rd.textClip == nil {
		rd.textClip = &geom.Path{}
	}
	rd.textClip.Subpaths = append(rd.textClip.Subpaths, device.Subpaths...)
}

func wordSpacingFor(isSpace bool, tw float64) float64 {
	if isSpace {
		return tw
	}
	return 0
}

// runType3Glyph re-enters the interpreter to run a Type 3 glyph's
// content-stream procedure, with its own CTM (already folding in the
// font matrix, font size and text matrix) and resource dictionary,
// saving and restoring the calling State the same way a Form XObject
// invocation does.
func (rd *Reader) runType3Glyph(proc *pdf.Stream, resources pdf.Dict, ctm geom.Matrix) {
	data, err := streamBytes(rd.R, proc)
	if err != nil {
		rd.warn(err)
		return
	}

	saved := rd.State
	savedResources := rd.Resources
	rd.State = newState(ctm)
	if resources != nil {
		rd.Resources = resources
	}
	rd.depth++
	if err := rd.Run(bytes.NewReader(data)); err != nil {
		rd.warn(err)
	}
	rd.depth--
	rd.State = saved
	rd.Resources = savedResources
}
