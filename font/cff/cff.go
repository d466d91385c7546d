// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package cff parses bare CFF (Compact Font Format) font programs, as
// embedded in a PDF FontFile3 stream (ISO 32000-1 9.9) or nested inside
// an OpenType "CFF " table: the structural INDEX/DICT layout of Adobe
// Technical Note #5176, and the Type 2 CharString interpreter of
// Technical Note #5177. Glyph outlines are returned as geom.Path values
// in font design units (usually 1000/em); the caller scales them.
package cff

import (
	"encoding/binary"
	"fmt"

	"pdfcore.dev/engine/geom"
)

// Font is a parsed CFF font program.
type Font struct {
	FontMatrix  [6]float64
	IsCID       bool
	globalSubrs cffIndex
	charStrings cffIndex
	charset     []int32 // glyph index -> SID (name keyed) or CID (CID-keyed)
	strings     cffIndex

	// Name-keyed fonts have a single private dict/local subr set. CID-keyed
	// fonts have one per font DICT in the FDArray, selected per glyph by
	// fdSelect.
	priv     []privateDict
	fdSelect []uint8 // per glyph index into priv; nil for name-keyed fonts
}

type privateDict struct {
	defaultWidthX float64
	nominalWidthX float64
	localSubrs    cffIndex
}

// NumGlyphs returns the number of glyphs in the font, including glyph 0
// (.notdef).
func (f *Font) NumGlyphs() int { return len(f.charStrings) }

// GID returns the glyph index for a given CID (CID-keyed fonts) or SID
// (name-keyed fonts), or -1 if no glyph carries that identifier.
func (f *Font) GID(id int32) int {
	for gid, sid := range f.charset {
		if sid == id {
			return gid
		}
	}
	return -1
}

// Outline decodes the Type 2 CharString for glyph gid and returns its
// outline as a path together with the glyph's advance width in font
// design units.
func (f *Font) Outline(gid int) (*geom.Path, float64, error) {
	if gid < 0 || gid >= len(f.charStrings) {
		return nil, 0, fmt.Errorf("cff: glyph index %d out of range", gid)
	}

	priv := f.privateFor(gid)
	info := &decodeInfo{
		subr:         priv.localSubrs,
		gsubr:        f.globalSubrs,
		defaultWidth: priv.defaultWidthX,
		nominalWidth: priv.nominalWidthX,
	}
	g, err := decodeCharString(info, f.charStrings[gid])
	if err != nil {
		return nil, 0, err
	}
	return g.Path, g.Width, nil
}

func (f *Font) privateFor(gid int) privateDict {
	if len(f.priv) == 0 {
		return privateDict{}
	}
	if f.fdSelect == nil || gid >= len(f.fdSelect) {
		return f.priv[0]
	}
	idx := int(f.fdSelect[gid])
	if idx >= len(f.priv) {
		idx = 0
	}
	return f.priv[idx]
}

// Parse reads a complete CFF font program (the contents of a FontFile3
// stream with Subtype /Type1C, /CIDFontType0C or /OpenType's embedded
// "CFF " table payload).
func Parse(data []byte) (*Font, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("cff: file too short")
	}
	hdrSize := int(data[2])
	if hdrSize < 4 || hdrSize > len(data) {
		return nil, fmt.Errorf("cff: invalid header size")
	}
	pos := hdrSize

	_, pos, err := readIndex(data, pos) // Name INDEX, unused
	if err != nil {
		return nil, fmt.Errorf("cff: name index: %w", err)
	}
	topDicts, pos, err := readIndex(data, pos)
	if err != nil {
		return nil, fmt.Errorf("cff: top dict index: %w", err)
	}
	if len(topDicts) == 0 {
		return nil, fmt.Errorf("cff: no top dict")
	}
	strIdx, pos, err := readIndex(data, pos)
	if err != nil {
		return nil, fmt.Errorf("cff: string index: %w", err)
	}
	gsubrs, _, err := readIndex(data, pos)
	if err != nil {
		return nil, fmt.Errorf("cff: global subr index: %w", err)
	}

	top, err := parseDict(topDicts[0])
	if err != nil {
		return nil, fmt.Errorf("cff: top dict: %w", err)
	}

	f := &Font{globalSubrs: gsubrs, strings: strIdx, FontMatrix: [6]float64{0.001, 0, 0, 0.001, 0, 0}}
	if m, ok := top[opFontMatrix]; ok && len(m) == 6 {
		copy(f.FontMatrix[:], m)
	}
	if _, ok := top[opROS]; ok {
		f.IsCID = true
	}

	csOff, ok := top[opCharStrings]
	if !ok || len(csOff) != 1 {
		return nil, fmt.Errorf("cff: missing CharStrings")
	}
	f.charStrings, _, err = readIndex(data, int(csOff[0]))
	if err != nil {
		return nil, fmt.Errorf("cff: charstrings index: %w", err)
	}
	nGlyphs := len(f.charStrings)

	if f.IsCID {
		fdaOff := int(top[opFDArray][0])
		fdDicts, _, err := readIndex(data, fdaOff)
		if err != nil {
			return nil, fmt.Errorf("cff: fdarray: %w", err)
		}
		for _, raw := range fdDicts {
			fd, err := parseDict(raw)
			if err != nil {
				return nil, fmt.Errorf("cff: font dict: %w", err)
			}
			f.priv = append(f.priv, parsePrivate(data, fd))
		}
		fdsOff := int(top[opFDSelect][0])
		f.fdSelect, err = readFDSelect(data, fdsOff, nGlyphs)
		if err != nil {
			return nil, fmt.Errorf("cff: fdselect: %w", err)
		}
	} else {
		f.priv = []privateDict{parsePrivate(data, top)}
	}

	charsetOff := int(0)
	if v, ok := top[opCharset]; ok && len(v) == 1 {
		charsetOff = int(v[0])
	}
	f.charset, err = readCharset(data, charsetOff, nGlyphs, f.IsCID)
	if err != nil {
		return nil, fmt.Errorf("cff: charset: %w", err)
	}

	return f, nil
}

func parsePrivate(data []byte, dict map[dictOp][]float64) privateDict {
	var priv privateDict
	sz, ok := dict[opPrivate]
	if !ok || len(sz) != 2 {
		return priv
	}
	size, offset := int(sz[0]), int(sz[1])
	if offset < 0 || offset+size > len(data) || size < 0 {
		return priv
	}
	pd, err := parseDict(data[offset : offset+size])
	if err != nil {
		return priv
	}
	if v, ok := pd[opDefaultWidthX]; ok && len(v) == 1 {
		priv.defaultWidthX = v[0]
	}
	if v, ok := pd[opNominalWidthX]; ok && len(v) == 1 {
		priv.nominalWidthX = v[0]
	}
	if v, ok := pd[opSubrs]; ok && len(v) == 1 {
		subrOff := offset + int(v[0])
		if subrOff >= 0 && subrOff < len(data) {
			idx, _, err := readIndex(data, subrOff)
			if err == nil {
				priv.localSubrs = idx
			}
		}
	}
	return priv
}

func readFDSelect(data []byte, pos, nGlyphs int) ([]uint8, error) {
	if pos < 0 || pos >= len(data) {
		return nil, fmt.Errorf("offset out of range")
	}
	format := data[pos]
	out := make([]uint8, nGlyphs)
	switch format {
	case 0:
		if pos+1+nGlyphs > len(data) {
			return nil, fmt.Errorf("truncated format 0 FDSelect")
		}
		copy(out, data[pos+1:pos+1+nGlyphs])
	case 3:
		if pos+3 > len(data) {
			return nil, fmt.Errorf("truncated format 3 FDSelect")
		}
		nRanges := int(binary.BigEndian.Uint16(data[pos+1:]))
		p := pos + 3
		var first int
		for i := 0; i < nRanges; i++ {
			if p+3 > len(data) {
				return nil, fmt.Errorf("truncated FDSelect range")
			}
			first = int(binary.BigEndian.Uint16(data[p:]))
			fd := data[p+2]
			p += 3
			var next int
			if p+2 <= len(data) {
				next = int(binary.BigEndian.Uint16(data[p:]))
			} else {
				next = nGlyphs
			}
			for g := first; g < next && g < nGlyphs; g++ {
				out[g] = fd
			}
		}
	default:
		return nil, fmt.Errorf("unsupported FDSelect format %d", format)
	}
	return out, nil
}

func readCharset(data []byte, pos, nGlyphs int, isCID bool) ([]int32, error) {
	out := make([]int32, nGlyphs)
	if nGlyphs > 0 {
		out[0] = 0 // .notdef
	}
	switch pos {
	case 0: // ISOAdobe: SIDs 1..nGlyphs-1 in order
		for gid := 1; gid < nGlyphs; gid++ {
			out[gid] = int32(gid)
		}
		return out, nil
	case 1, 2: // Expert, ExpertSubset: rare, approximate as identity
		for gid := 1; gid < nGlyphs; gid++ {
			out[gid] = int32(gid)
		}
		return out, nil
	}
	if pos < 0 || pos >= len(data) {
		return nil, fmt.Errorf("offset out of range")
	}
	format := data[pos]
	p := pos + 1
	gid := 1
	switch format {
	case 0:
		for gid < nGlyphs {
			if p+2 > len(data) {
				return nil, fmt.Errorf("truncated format 0 charset")
			}
			out[gid] = int32(binary.BigEndian.Uint16(data[p:]))
			p += 2
			gid++
		}
	case 1:
		for gid < nGlyphs {
			if p+3 > len(data) {
				return nil, fmt.Errorf("truncated format 1 charset")
			}
			first := int32(binary.BigEndian.Uint16(data[p:]))
			nLeft := int(data[p+2])
			p += 3
			for i := 0; i <= nLeft && gid < nGlyphs; i++ {
				out[gid] = first + int32(i)
				gid++
			}
		}
	case 2:
		for gid < nGlyphs {
			if p+4 > len(data) {
				return nil, fmt.Errorf("truncated format 2 charset")
			}
			first := int32(binary.BigEndian.Uint16(data[p:]))
			nLeft := int(binary.BigEndian.Uint16(data[p+2:]))
			p += 4
			for i := 0; i <= nLeft && gid < nGlyphs; i++ {
				out[gid] = first + int32(i)
				gid++
			}
		}
	default:
		return nil, fmt.Errorf("unsupported charset format %d", format)
	}
	_ = isCID
	return out, nil
}
