// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package cid resolves the descendant-font side of a Type 0 font: the
// CID-to-GID mapping and the CID-keyed width table (ISO 32000-1
// 9.7.4).
package cid

// GIDMap maps a CID to a glyph index in the embedded font program.
type GIDMap struct {
	identity bool
	table    []uint16 // table[cid] == gid, for an embedded CIDToGIDMap stream
}

// Identity returns the trivial CIDToGIDMap where GID == CID.
func Identity() *GIDMap { return &GIDMap{identity: true} }

// ParseGIDMap reads an embedded CIDToGIDMap stream: a flat array of
// big-endian uint16 GIDs, indexed by CID.
func ParseGIDMap(data []byte) *GIDMap {
	table := make([]uint16, len(data)/2)
	for i := range table {
		table[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return &GIDMap{table: table}
}

// GID returns the glyph index for a CID.
func (m *GIDMap) GID(cid uint32) int {
	if m.identity {
		return int(cid)
	}
	if int(cid) >= len(m.table) {
		return 0
	}
	return int(m.table[cid])
}

// Widths holds a CID-keyed font's advance-width table (the /W array,
// ISO 32000-1 Table 115) plus the default width /DW used for CIDs it
// doesn't list. Callers populate it with Set/SetRange while walking
// the raw /W array, since only they can tell the list-form entries
// (c [w1 w2 ... wn]) from the range-form ones (cFirst cLast w).
type Widths struct {
	DW float64
	w  map[uint32]float64
}

// NewWidths creates an empty width table with the given default. A DW
// of 0 is replaced by the PDF default of 1000.
func NewWidths(dw float64) *Widths {
	if dw == 0 {
		dw = 1000
	}
	return &Widths{DW: dw, w: make(map[uint32]float64)}
}

// Set records the width of a single CID.
func (ws *Widths) Set(c uint32, w float64) { ws.w[c] = w }

// SetRange records a uniform width for every CID in [lo, hi].
func (ws *Widths) SetRange(lo, hi uint32, w float64) {
	for c := lo; c <= hi; c++ {
		ws.w[c] = w
	}
}

// Width returns the advance width for a CID, falling back to DW.
func (ws *Widths) Width(cid uint32) float64 {
	if w, ok := ws.w[cid]; ok {
		return w
	}
	return ws.DW
}
