// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package font extracts glyph outlines and metrics from PDF font
// resources: simple fonts (Type 1, TrueType, the Type3 procedural
// form) and composite (Type 0 / CID-keyed) fonts, unifying all of
// them behind a single Glyph-by-code contract (spec.md 4.5 "Font
// subsystem").
package font

import (
	"bytes"
	"io"
	"sync"

	pdf "pdfcore.dev/engine"
	"pdfcore.dev/engine/font/cff"
	"pdfcore.dev/engine/font/pdfenc"
	"pdfcore.dev/engine/font/stdmtx"
	"pdfcore.dev/engine/font/truetype"
	"pdfcore.dev/engine/font/type1"
	"pdfcore.dev/engine/geom"
)

// Glyph is a single decoded glyph: its outline in text-space units
// (1000 units/em, the PDF glyph-space convention) and its advance
// width in the same units.
type Glyph struct {
	Path    *geom.Path
	Advance float64
}

// Font resolves character codes from a content stream's string
// operands into glyphs. Codes are in the font's own code space: one
// byte for a simple font, and whatever the CMap defines for a
// composite font (usually two bytes).
type Font interface {
	// Glyph decodes the glyph for a character code. A code with no
	// outline is not an error: it yields a Glyph whose Path is nil and
	// whose Advance is still set, so the caller draws nothing and keeps
	// the advance. (nil, false) is returned only for a code a simple
	// font cannot hold (above 255) and by Type 3 fonts.
	Glyph(code uint32) (*Glyph, bool)

	// CodeLength reports how many bytes of a content-stream string the
	// next character code consumes, starting at the given byte. Simple
	// fonts always return 1.
	CodeLength(s pdf.String) int

	// IsType3 reports whether this is a Type 3 font, whose glyphs are
	// recursive content-stream procedures rather than outlines: callers
	// that only draw outlines (Glyph) skip Type 3 and re-enter the
	// content-stream interpreter instead (spec.md 4.5 "Type 3").
	IsType3() bool
}

// Type3Font is the subset of Font a Type 3 font additionally exposes:
// since its glyphs are content-stream procedures rather than outlines
// (spec.md 4.5 "Type 3 fonts"), a caller that wants to draw Type 3 text
// type-asserts a Font to this interface after IsType3 reports true,
// and re-enters the content-stream interpreter per CharProc instead of
// calling Glyph.
type Type3Font interface {
	Font

	// FontMatrix returns the glyph-space-to-text-space matrix the
	// caller must prepend to the text rendering matrix before running
	// a CharProc.
	FontMatrix() geom.Matrix

	// CharProc returns the content-stream procedure, its resource
	// dictionary, and the character's advance width (already in
	// text-space units) for a character code.
	CharProc(code uint32) (proc *pdf.Stream, resources pdf.Dict, advance float64, ok bool)
}

// Load builds a Font from a page resource's /Font subdictionary entry.
func Load(r pdf.Getter, dict pdf.Dict) (Font, error) {
	subtype, _ := pdf.GetName(r, dict["Subtype"])
	switch subtype {
	case "Type0":
		return loadType0(r, dict)
	case "Type3":
		return loadType3(r, dict)
	default:
		return loadSimple(r, dict)
	}
}

// cache memoizes glyph decode results per (font, code), avoiding
// repeated CharString interpretation for repeated characters within a
// page (spec.md 3 "Lifecycles": a font's glyph cache lives as long as
// the font object itself).
type cache struct {
	mu sync.Mutex
	m  map[uint32]*Glyph
}

func newCache() *cache { return &cache{m: make(map[uint32]*Glyph)} }

func (c *cache) get(code uint32, compute func() (*Glyph, bool)) (*Glyph, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if g, ok := c.m[code]; ok {
		return g, g != nil
	}
	g, ok := compute()
	if ok {
		c.m[code] = g
	} else {
		c.m[code] = nil
	}
	return g, ok
}

// simpleFont implements Font for Type1 and TrueType simple fonts: one
// byte per code, an encoding array mapping codes to glyph names (or
// directly to TrueType glyph indices), and a per-code width table.
type simpleFont struct {
	widths    map[uint32]float64
	defWidth  float64
	encoding  [256]string
	cache     *cache
	outline   func(code uint32, name string) (*geom.Path, float64, bool)
}

func (f *simpleFont) Glyph(code uint32) (*Glyph, bool) {
	return f.cache.get(code, func() (*Glyph, bool) {
		if code > 255 {
			return nil, false
		}
		name := f.encoding[code]
		path, advance, ok := f.outline(code, name)
		if !ok {
			path = nil
		}
		if w, has := f.widths[code]; has {
			advance = w
		} else if advance == 0 {
			advance = f.defWidth
		}
		return &Glyph{Path: path, Advance: advance}, true
	})
}

func (f *simpleFont) CodeLength(pdf.String) int { return 1 }
func (f *simpleFont) IsType3() bool             { return false }

func loadSimple(r pdf.Getter, dict pdf.Dict) (Font, error) {
	subtype, _ := pdf.GetName(r, dict["Subtype"])

	var baseEnc [256]string
	copy(baseEnc[:], pdfenc.Standard.Encoding[:])
	if descObj, ok := dict["Encoding"]; ok {
		enc, err := pdf.Resolve(r, descObj)
		if err != nil {
			return nil, err
		}
		applyEncoding(r, enc, &baseEnc)
	}

	widths := make(map[uint32]float64)
	first, _ := pdf.GetInt(r, dict["FirstChar"])
	if arr, err := pdf.GetArray(r, dict["Widths"]); err == nil {
		for i, w := range arr {
			v, err := pdf.GetNumber(r, w)
			if err != nil {
				continue
			}
			widths[uint32(int(first)+i)] = float64(v)
		}
	}

	descriptor, _ := pdf.GetDict(r, dict["FontDescriptor"])
	baseFont, _ := pdf.GetName(r, dict["BaseFont"])
	defWidth := stdmtx.DefaultWidth(string(baseFont))

	outlineFn, err := buildOutlineFunc(r, descriptor, subtype, string(baseFont), &baseEnc)
	if err != nil {
		return nil, err
	}

	return &simpleFont{
		widths:   widths,
		defWidth: defWidth,
		encoding: baseEnc,
		cache:    newCache(),
		outline:  outlineFn,
	}, nil
}

func applyEncoding(r pdf.Getter, enc pdf.Object, base *[256]string) {
	switch e := enc.(type) {
	case pdf.Name:
		switch e {
		case "WinAnsiEncoding":
			copy(base[:], pdfenc.WinAnsi.Encoding[:])
		case "MacRomanEncoding":
			copy(base[:], pdfenc.MacRoman.Encoding[:])
		}
	case pdf.Dict:
		if baseName, err := pdf.GetName(r, e["BaseEncoding"]); err == nil {
			applyEncoding(r, baseName, base)
		}
		diffs, err := pdf.GetArray(r, e["Differences"])
		if err != nil {
			return
		}
		code := 0
		for _, item := range diffs {
			item, _ = pdf.Resolve(r, item)
			switch v := item.(type) {
			case pdf.Integer:
				code = int(v)
			case pdf.Name:
				if code >= 0 && code < 256 {
					base[code] = string(v)
					code++
				}
			}
		}
	}
}

// buildOutlineFunc resolves the embedded font program (if any) named by
// the font descriptor and returns a function that decodes a single
// glyph's outline given its character code and encoding-derived name.
// When no font program is embedded, it falls back to the built-in
// base-14 substitute metrics (spec.md 4.5 "Base-14 substitution"): no
// outline is produced, only the advance width is known.
func buildOutlineFunc(r pdf.Getter, descriptor pdf.Dict, subtype pdf.Name, baseFont string, enc *[256]string) (func(code uint32, name string) (*geom.Path, float64, bool), error) {
	if descriptor == nil {
		return func(code uint32, name string) (*geom.Path, float64, bool) {
			return nil, stdmtx.WidthOf(baseFont, name), false
		}, nil
	}

	if ff3, err := pdf.GetStream(r, descriptor["FontFile3"]); err == nil && ff3 != nil {
		data, err := decodedStreamBytes(r, ff3)
		if err != nil {
			return nil, err
		}
		cffFont, err := cff.Parse(data)
		if err != nil {
			return nil, &InvalidFontError{SubSystem: "cff", Reason: err.Error()}
		}
		return func(code uint32, name string) (*geom.Path, float64, bool) {
			gid := cffFont.GIDForName(name)
			if gid < 0 {
				return nil, stdmtx.WidthOf(baseFont, name), false
			}
			path, adv, err := cffFont.Outline(gid)
			if err != nil {
				return nil, stdmtx.WidthOf(baseFont, name), false
			}
			return path, adv, true
		}, nil
	}

	if ff2, err := pdf.GetStream(r, descriptor["FontFile2"]); err == nil && ff2 != nil {
		data, err := decodedStreamBytes(r, ff2)
		if err != nil {
			return nil, err
		}
		ttFont, err := truetype.Parse(data)
		if err != nil {
			return nil, &InvalidFontError{SubSystem: "truetype", Reason: err.Error()}
		}
		scale := 1000.0
		if ttFont.UnitsPerEm != 0 {
			scale = 1000.0 / float64(ttFont.UnitsPerEm)
		}
		return func(code uint32, name string) (*geom.Path, float64, bool) {
			gid, ok := ttFont.GID(glyphNameToRune(name))
			if !ok {
				gid, ok = ttFont.GID(rune(code))
			}
			if !ok {
				return nil, stdmtx.WidthOf(baseFont, name), false
			}
			path, err := ttFont.Outline(gid)
			if err != nil {
				return nil, stdmtx.WidthOf(baseFont, name), false
			}
			adv := ttFont.AdvanceWidth(gid) * scale
			return path.Transform(geom.Scale(scale, scale)), adv, true
		}, nil
	}

	if ff1, err := pdf.GetStream(r, descriptor["FontFile"]); err == nil && ff1 != nil {
		data, err := decodedStreamBytes(r, ff1)
		if err != nil {
			return nil, err
		}
		t1Font, err := type1.Parse(data)
		if err != nil {
			return nil, &InvalidFontError{SubSystem: "type1", Reason: err.Error()}
		}
		return func(code uint32, name string) (*geom.Path, float64, bool) {
			if name == "" && code < 256 {
				name = t1Font.Encoding[code]
			}
			path, adv, err := t1Font.Outline(name)
			if err != nil {
				return nil, stdmtx.WidthOf(baseFont, name), false
			}
			return path, adv, true
		}, nil
	}

	_ = subtype
	return func(code uint32, name string) (*geom.Path, float64, bool) {
		return nil, stdmtx.WidthOf(baseFont, name), false
	}, nil
}

func decodedStreamBytes(r pdf.Getter, s *pdf.Stream) ([]byte, error) {
	raw, err := s.R.Bytes()
	if err != nil {
		return nil, err
	}
	dr, err := pdf.DecodeStream(r, s, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(dr)
}

// glyphNameToRune returns the StandardEncoding code of a glyph name as
// a rune, for codes where only a name (not a Unicode value) is known.
// For names in the ASCII range this equals the Unicode code point; for
// other names it does not. A name outside StandardEncoding reports
// rune(0xFFFD).
func glyphNameToRune(name string) rune {
	if r, ok := pdfenc.Standard.Has[name]; ok && r {
		for code, n := range pdfenc.Standard.Encoding {
			if n == name {
				return rune(code)
			}
		}
	}
	return 0xFFFD
}

