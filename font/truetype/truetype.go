// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package truetype parses bare TrueType/OpenType glyph outlines: the
// sfnt table directory, and the head/loca/glyf/hmtx/maxp/cmap tables
// needed to turn a glyph index into a geom.Path (ISO 32000-1 9.9,
// "TrueType fonts"; Apple/Microsoft TrueType/OpenType specification,
// tables `glyf`, `loca`, `head`, `hmtx`, `cmap`, `maxp`).
package truetype

import (
	"encoding/binary"
	"fmt"

	"pdfcore.dev/engine/geom"
)

// Font is a parsed TrueType/OpenType font program.
type Font struct {
	UnitsPerEm  uint16
	NumGlyphs   int
	loca        []uint32
	glyfData    []byte
	hmtx        []hmtxEntry
	cmap        map[rune]int // unicode -> glyph index, built from the best available cmap subtable
}

type hmtxEntry struct {
	AdvanceWidth uint16
	Lsb          int16
}

type tableRecord struct {
	tag            string
	offset, length uint32
}

// Parse reads a complete sfnt-wrapped TrueType font program (the
// contents of a FontFile2 stream, ISO 32000-1 9.9).
func Parse(data []byte) (*Font, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("truetype: file too short")
	}
	numTables := int(binary.BigEndian.Uint16(data[4:]))
	tables := make(map[string]tableRecord, numTables)
	pos := 12
	for i := 0; i < numTables; i++ {
		if pos+16 > len(data) {
			return nil, fmt.Errorf("truetype: truncated table directory")
		}
		tag := string(data[pos : pos+4])
		off := binary.BigEndian.Uint32(data[pos+8:])
		length := binary.BigEndian.Uint32(data[pos+12:])
		tables[tag] = tableRecord{tag, off, length}
		pos += 16
	}

	get := func(tag string) ([]byte, error) {
		t, ok := tables[tag]
		if !ok {
			return nil, fmt.Errorf("truetype: missing %q table", tag)
		}
		end := t.offset + t.length
		if int(end) > len(data) || t.offset > end {
			return nil, fmt.Errorf("truetype: %q table out of range", tag)
		}
		return data[t.offset:end], nil
	}

	head, err := get("head")
	if err != nil || len(head) < 54 {
		return nil, fmt.Errorf("truetype: head: %w", err)
	}
	unitsPerEm := binary.BigEndian.Uint16(head[18:])
	indexToLocFormat := int16(binary.BigEndian.Uint16(head[50:]))

	maxp, err := get("maxp")
	if err != nil || len(maxp) < 6 {
		return nil, fmt.Errorf("truetype: maxp: %w", err)
	}
	numGlyphs := int(binary.BigEndian.Uint16(maxp[4:]))

	locaRaw, err := get("loca")
	if err != nil {
		return nil, fmt.Errorf("truetype: loca: %w", err)
	}
	loca, err := parseLoca(locaRaw, indexToLocFormat, numGlyphs)
	if err != nil {
		return nil, err
	}

	glyf, err := get("glyf")
	if err != nil {
		return nil, fmt.Errorf("truetype: glyf: %w", err)
	}

	hhea, err := get("hhea")
	var numHMetrics int
	if err == nil && len(hhea) >= 36 {
		numHMetrics = int(binary.BigEndian.Uint16(hhea[34:]))
	}
	hmtxRaw, _ := get("hmtx")
	hmtx := parseHmtx(hmtxRaw, numHMetrics, numGlyphs)

	f := &Font{
		UnitsPerEm: unitsPerEm,
		NumGlyphs:  numGlyphs,
		loca:       loca,
		glyfData:   glyf,
		hmtx:       hmtx,
	}
	if cmapRaw, err := get("cmap"); err == nil {
		f.cmap, _ = parseCmap(cmapRaw)
	}
	return f, nil
}

func parseLoca(data []byte, format int16, numGlyphs int) ([]uint32, error) {
	out := make([]uint32, numGlyphs+1)
	if format == 0 {
		if len(data) < 2*(numGlyphs+1) {
			return nil, fmt.Errorf("truetype: truncated short loca")
		}
		for i := range out {
			out[i] = uint32(binary.BigEndian.Uint16(data[2*i:])) * 2
		}
	} else {
		if len(data) < 4*(numGlyphs+1) {
			return nil, fmt.Errorf("truetype: truncated long loca")
		}
		for i := range out {
			out[i] = binary.BigEndian.Uint32(data[4*i:])
		}
	}
	return out, nil
}

func parseHmtx(data []byte, numHMetrics, numGlyphs int) []hmtxEntry {
	out := make([]hmtxEntry, numGlyphs)
	var lastWidth uint16
	for i := 0; i < numGlyphs; i++ {
		if i < numHMetrics {
			off := i * 4
			if off+4 > len(data) {
				break
			}
			lastWidth = binary.BigEndian.Uint16(data[off:])
			out[i] = hmtxEntry{lastWidth, int16(binary.BigEndian.Uint16(data[off+2:]))}
		} else {
			off := numHMetrics*4 + (i-numHMetrics)*2
			var lsb int16
			if off+2 <= len(data) {
				lsb = int16(binary.BigEndian.Uint16(data[off:]))
			}
			out[i] = hmtxEntry{lastWidth, lsb}
		}
	}
	return out
}

// GID looks up the glyph index for a Unicode code point via the font's
// cmap table.
func (f *Font) GID(r rune) (int, bool) {
	gid, ok := f.cmap[r]
	return gid, ok
}

// AdvanceWidth returns a glyph's advance width in font design units.
func (f *Font) AdvanceWidth(gid int) float64 {
	if gid < 0 || gid >= len(f.hmtx) {
		return 0
	}
	return float64(f.hmtx[gid].AdvanceWidth)
}

// Outline decodes a glyph's outline, recursing through composite glyphs
// up to a fixed depth to guard against self-referential fonts.
func (f *Font) Outline(gid int) (*geom.Path, error) {
	return f.outline(gid, geom.Identity, 0)
}

func (f *Font) outline(gid int, m geom.Matrix, depth int) (*geom.Path, error) {
	if depth > 8 {
		return nil, fmt.Errorf("truetype: composite glyph nesting too deep")
	}
	if gid < 0 || gid+1 >= len(f.loca) {
		return &geom.Path{}, nil
	}
	start, end := f.loca[gid], f.loca[gid+1]
	if start >= end {
		return &geom.Path{}, nil // empty glyph, e.g. the space character
	}
	if int(end) > len(f.glyfData) {
		return nil, fmt.Errorf("truetype: glyph %d out of range", gid)
	}
	data := f.glyfData[start:end]
	if len(data) < 10 {
		return nil, fmt.Errorf("truetype: truncated glyph header")
	}
	numContours := int16(binary.BigEndian.Uint16(data[0:]))
	if numContours >= 0 {
		return decodeSimpleGlyph(data[10:], int(numContours), m)
	}
	return f.decodeCompositeGlyph(data[10:], m, depth)
}

type glyphPoint struct {
	X, Y    int16
	OnCurve bool
}

// decodeSimpleGlyph implements the flag/x/y-coordinate decode algorithm
// of the TrueType `glyf` table simple-glyph format.
func decodeSimpleGlyph(data []byte, numContours int, m geom.Matrix) (*geom.Path, error) {
	if numContours == 0 {
		return &geom.Path{}, nil
	}
	if len(data) < 2*numContours+2 {
		return nil, fmt.Errorf("truetype: truncated simple glyph")
	}
	endPts := make([]int, numContours)
	for i := range endPts {
		endPts[i] = int(binary.BigEndian.Uint16(data[2*i:]))
	}
	numPoints := endPts[numContours-1] + 1
	p := 2 * numContours
	insLen := int(binary.BigEndian.Uint16(data[p:]))
	p += 2 + insLen

	const (
		flagOnCurve      = 0x01
		flagXShort       = 0x02
		flagYShort       = 0x04
		flagRepeat       = 0x08
		flagXSameOrPos   = 0x10
		flagYSameOrPos   = 0x20
	)

	flags := make([]byte, 0, numPoints)
	for len(flags) < numPoints {
		if p >= len(data) {
			return nil, fmt.Errorf("truetype: truncated flags")
		}
		f := data[p]
		p++
		flags = append(flags, f)
		if f&flagRepeat != 0 {
			if p >= len(data) {
				return nil, fmt.Errorf("truetype: truncated flag repeat count")
			}
			n := int(data[p])
			p++
			for i := 0; i < n && len(flags) < numPoints; i++ {
				flags = append(flags, f)
			}
		}
	}

	points := make([]glyphPoint, numPoints)
	var x int16
	for i, fl := range flags {
		switch {
		case fl&flagXShort != 0:
			if p >= len(data) {
				return nil, fmt.Errorf("truetype: truncated x coords")
			}
			dx := int16(data[p])
			p++
			if fl&flagXSameOrPos == 0 {
				dx = -dx
			}
			x += dx
		case fl&flagXSameOrPos == 0:
			if p+2 > len(data) {
				return nil, fmt.Errorf("truetype: truncated x coords")
			}
			x += int16(binary.BigEndian.Uint16(data[p:]))
			p += 2
		}
		points[i].X = x
		points[i].OnCurve = fl&flagOnCurve != 0
	}
	var y int16
	for i, fl := range flags {
		switch {
		case fl&flagYShort != 0:
			if p >= len(data) {
				return nil, fmt.Errorf("truetype: truncated y coords")
			}
			dy := int16(data[p])
			p++
			if fl&flagYSameOrPos == 0 {
				dy = -dy
			}
			y += dy
		case fl&flagYSameOrPos == 0:
			if p+2 > len(data) {
				return nil, fmt.Errorf("truetype: truncated y coords")
			}
			y += int16(binary.BigEndian.Uint16(data[p:]))
			p += 2
		}
		points[i].Y = y
	}

	path := &geom.Path{}
	start := 0
	for _, end := range endPts {
		contour := points[start : end+1]
		emitContour(path, contour, m)
		start = end + 1
	}
	return path, nil
}

// emitContour converts a quadratic on/off-curve point list into cubic
// path segments: consecutive off-curve points imply a synthetic
// on-curve midpoint, and each on-curve-to-on-curve quadratic arc is
// raised to an equivalent cubic (TN on TrueType outline conversion).
func emitContour(path *geom.Path, pts []glyphPoint, m geom.Matrix) {
	if len(pts) == 0 {
		return
	}
	toPt := func(p glyphPoint) geom.Point { return m.Apply(geom.Point{X: float64(p.X), Y: float64(p.Y)}) }

	// find a starting on-curve point, synthesizing one if none exists
	startIdx := -1
	for i, p := range pts {
		if p.OnCurve {
			startIdx = i
			break
		}
	}
	var start geom.Point
	var ordered []glyphPoint
	if startIdx < 0 {
		mid := geom.Point{
			X: (float64(pts[0].X) + float64(pts[len(pts)-1].X)) / 2,
			Y: (float64(pts[0].Y) + float64(pts[len(pts)-1].Y)) / 2,
		}
		start = m.Apply(mid)
		ordered = pts
	} else {
		start = toPt(pts[startIdx])
		ordered = append(ordered, pts[startIdx+1:]...)
		ordered = append(ordered, pts[:startIdx+1]...)
	}

	path.MoveTo(start.X, start.Y)
	cur := start
	var pendingOff *geom.Point
	quadTo := func(ctrl, to geom.Point) {
		c1 := geom.Point{X: cur.X + 2.0/3.0*(ctrl.X-cur.X), Y: cur.Y + 2.0/3.0*(ctrl.Y-cur.Y)}
		c2 := geom.Point{X: to.X + 2.0/3.0*(ctrl.X-to.X), Y: to.Y + 2.0/3.0*(ctrl.Y-to.Y)}
		path.CubicCurveTo(c1.X, c1.Y, c2.X, c2.Y, to.X, to.Y)
		cur = to
	}

	for _, gp := range ordered {
		pt := toPt(gp)
		if gp.OnCurve {
			if pendingOff != nil {
				quadTo(*pendingOff, pt)
				pendingOff = nil
			} else {
				path.LineTo(pt.X, pt.Y)
				cur = pt
			}
		} else {
			if pendingOff != nil {
				mid := geom.Point{X: (pendingOff.X + pt.X) / 2, Y: (pendingOff.Y + pt.Y) / 2}
				quadTo(*pendingOff, mid)
			}
			v := pt
			pendingOff = &v
		}
	}
	if pendingOff != nil {
		quadTo(*pendingOff, start)
	}
	path.ClosePath()
}

func (f *Font) decodeCompositeGlyph(data []byte, m geom.Matrix, depth int) (*geom.Path, error) {
	const (
		flagArgsAreWords    = 0x0001
		flagArgsAreXY       = 0x0002
		flagHaveScale       = 0x0008
		flagMoreComponents  = 0x0020
		flagHaveXYScale     = 0x0040
		flagHave2x2         = 0x0080
	)
	out := &geom.Path{}
	for {
		if len(data) < 4 {
			return nil, fmt.Errorf("truetype: truncated composite glyph")
		}
		flags := binary.BigEndian.Uint16(data[0:])
		glyphIndex := int(binary.BigEndian.Uint16(data[2:]))
		p := 4

		var dx, dy float64
		if flags&flagArgsAreWords != 0 {
			if p+4 > len(data) {
				return nil, fmt.Errorf("truetype: truncated composite args")
			}
			if flags&flagArgsAreXY != 0 {
				dx = float64(int16(binary.BigEndian.Uint16(data[p:])))
				dy = float64(int16(binary.BigEndian.Uint16(data[p+2:])))
			}
			p += 4
		} else {
			if p+2 > len(data) {
				return nil, fmt.Errorf("truetype: truncated composite args")
			}
			if flags&flagArgsAreXY != 0 {
				dx = float64(int8(data[p]))
				dy = float64(int8(data[p+1]))
			}
			p += 2
		}

		comp := geom.Identity
		switch {
		case flags&flagHave2x2 != 0:
			if p+8 > len(data) {
				return nil, fmt.Errorf("truetype: truncated 2x2")
			}
			comp.A = f2dot14(data[p:])
			comp.B = f2dot14(data[p+2:])
			comp.C = f2dot14(data[p+4:])
			comp.D = f2dot14(data[p+6:])
			p += 8
		case flags&flagHaveXYScale != 0:
			if p+4 > len(data) {
				return nil, fmt.Errorf("truetype: truncated xyscale")
			}
			comp.A = f2dot14(data[p:])
			comp.D = f2dot14(data[p+2:])
			p += 4
		case flags&flagHaveScale != 0:
			if p+2 > len(data) {
				return nil, fmt.Errorf("truetype: truncated scale")
			}
			s := f2dot14(data[p:])
			comp.A, comp.D = s, s
			p += 2
		}
		comp.E, comp.F = dx, dy

		childPath, err := f.outline(glyphIndex, comp.Mul(m), depth+1)
		if err != nil {
			return nil, err
		}
		out.Subpaths = append(out.Subpaths, childPath.Subpaths...)

		data = data[p:]
		if flags&flagMoreComponents == 0 {
			break
		}
	}
	return out, nil
}

func f2dot14(b []byte) float64 {
	return float64(int16(binary.BigEndian.Uint16(b))) / 16384
}

func parseCmap(data []byte) (map[rune]int, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("truetype: truncated cmap header")
	}
	numTables := int(binary.BigEndian.Uint16(data[2:]))
	var bestOffset uint32
	bestScore := -1
	for i := 0; i < numTables; i++ {
		rec := 4 + i*8
		if rec+8 > len(data) {
			break
		}
		platform := binary.BigEndian.Uint16(data[rec:])
		encoding := binary.BigEndian.Uint16(data[rec+2:])
		offset := binary.BigEndian.Uint32(data[rec+4:])
		score := 0
		switch {
		case platform == 3 && encoding == 1: // Windows Unicode BMP
			score = 3
		case platform == 0: // Unicode
			score = 2
		case platform == 3 && encoding == 0: // Windows Symbol
			score = 1
		}
		if score > bestScore {
			bestScore = score
			bestOffset = offset
		}
	}
	if bestScore < 0 || int(bestOffset) >= len(data) {
		return map[rune]int{}, nil
	}
	return parseCmapSubtable(data[bestOffset:])
}

func parseCmapSubtable(data []byte) (map[rune]int, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("truetype: truncated cmap subtable")
	}
	format := binary.BigEndian.Uint16(data[0:])
	out := make(map[rune]int)
	switch format {
	case 4:
		if len(data) < 14 {
			return nil, fmt.Errorf("truetype: truncated format 4 cmap")
		}
		segX2 := int(binary.BigEndian.Uint16(data[6:]))
		segCount := segX2 / 2
		endBase := 14
		startBase := endBase + segX2 + 2
		deltaBase := startBase + segX2
		rangeBase := deltaBase + segX2
		for s := 0; s < segCount; s++ {
			end := int(binary.BigEndian.Uint16(data[endBase+2*s:]))
			start := int(binary.BigEndian.Uint16(data[startBase+2*s:]))
			delta := int16(binary.BigEndian.Uint16(data[deltaBase+2*s:]))
			rangeOff := int(binary.BigEndian.Uint16(data[rangeBase+2*s:]))
			for c := start; c <= end && c != 0xffff; c++ {
				var gid int
				if rangeOff == 0 {
					gid = (c + int(delta)) & 0xffff
				} else {
					idx := rangeBase + 2*s + rangeOff + 2*(c-start)
					if idx+2 > len(data) {
						continue
					}
					g := int(binary.BigEndian.Uint16(data[idx:]))
					if g == 0 {
						continue
					}
					gid = (g + int(delta)) & 0xffff
				}
				if gid != 0 {
					out[rune(c)] = gid
				}
			}
		}
	case 12:
		if len(data) < 16 {
			return nil, fmt.Errorf("truetype: truncated format 12 cmap")
		}
		numGroups := int(binary.BigEndian.Uint32(data[12:]))
		for g := 0; g < numGroups; g++ {
			off := 16 + g*12
			if off+12 > len(data) {
				break
			}
			startChar := binary.BigEndian.Uint32(data[off:])
			endChar := binary.BigEndian.Uint32(data[off+4:])
			startGID := binary.BigEndian.Uint32(data[off+8:])
			for c := startChar; c <= endChar; c++ {
				out[rune(c)] = int(startGID + (c - startChar))
			}
		}
	case 6:
		if len(data) < 10 {
			return nil, fmt.Errorf("truetype: truncated format 6 cmap")
		}
		first := int(binary.BigEndian.Uint16(data[6:]))
		count := int(binary.BigEndian.Uint16(data[8:]))
		for i := 0; i < count; i++ {
			off := 10 + 2*i
			if off+2 > len(data) {
				break
			}
			out[rune(first+i)] = int(binary.BigEndian.Uint16(data[off:]))
		}
	case 0:
		if len(data) < 262 {
			return nil, fmt.Errorf("truetype: truncated format 0 cmap")
		}
		for c := 0; c < 256; c++ {
			if g := data[6+c]; g != 0 {
				out[rune(c)] = int(g)
			}
		}
	}
	return out, nil
}
