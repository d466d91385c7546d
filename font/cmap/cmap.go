// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package cmap decodes the character-code-to-CID mappings used by
// Type 0 composite fonts (ISO 32000-1 9.7.5): either one of the
// predefined Identity CMaps, or a CMap program embedded as a stream,
// written in a restricted PostScript syntax.
package cmap

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"pdfcore.dev/engine/font/charcode"
)

// CMap maps content-stream byte sequences to CIDs.
type CMap struct {
	dec     *charcode.Decoder
	ranges  []cidRange
	singles map[uint32]uint32
}

type cidRange struct {
	lo, hi uint32
	cidLo  uint32
}

// Identity is the predefined Identity-H / Identity-V CMap: a two-byte
// code space where CID == code.
func Identity() *CMap {
	return &CMap{dec: charcode.NewDecoder(charcode.UCS2)}
}

// Decode consumes one character code from the front of s, returning
// the code, the number of bytes consumed and whether the code was
// valid for this CMap's code space. Codes are big-endian, matching the
// keys CID compares against.
func (c *CMap) Decode(s []byte) (code uint32, consumed int, valid bool) {
	_, consumed, valid = c.dec.Decode(s)
	if valid {
		code = bytesToUint32(s[:consumed])
	}
	return code, consumed, valid
}

// CID returns the CID a decoded character code maps to.
func (c *CMap) CID(code uint32) uint32 {
	if v, ok := c.singles[code]; ok {
		return v
	}
	for _, r := range c.ranges {
		if code >= r.lo && code <= r.hi {
			return r.cidLo + (code - r.lo)
		}
	}
	if c.ranges == nil && c.singles == nil {
		return code // Identity
	}
	return 0
}

// Parse reads an embedded CMap stream (PostScript CMap syntax, ISO
// 32000-1 9.7.5.3): codespacerange, cidrange and cidchar operators.
func Parse(data []byte) (*CMap, error) {
	var csr charcode.CodeSpaceRange
	cm := &CMap{singles: make(map[uint32]uint32)}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 4096), 1<<20)
	sc.Split(bufio.ScanWords)

	var tokens []string
	for sc.Scan() {
		tokens = append(tokens, sc.Text())
	}

	for i := 0; i < len(tokens); i++ {
		switch tokens[i] {
		case "begincodespacerange":
			i++
			for i < len(tokens) && tokens[i] != "endcodespacerange" {
				lo := parseHexString(tokens[i])
				hi := parseHexString(tokens[i+1])
				csr = append(csr, charcode.Range{Low: lo, High: hi})
				i += 2
			}
		case "begincidrange":
			i++
			for i < len(tokens) && tokens[i] != "endcidrange" {
				lo := bytesToUint32(parseHexString(tokens[i]))
				hi := bytesToUint32(parseHexString(tokens[i+1]))
				cid, _ := strconv.Atoi(tokens[i+2])
				cm.ranges = append(cm.ranges, cidRange{lo: lo, hi: hi, cidLo: uint32(cid)})
				i += 3
			}
		case "begincidchar":
			i++
			for i < len(tokens) && tokens[i] != "endcidchar" {
				code := bytesToUint32(parseHexString(tokens[i]))
				cid, _ := strconv.Atoi(tokens[i+1])
				cm.singles[code] = uint32(cid)
				i += 2
			}
		}
	}

	if len(csr) == 0 {
		csr = charcode.UCS2
	}
	cm.dec = charcode.NewDecoder(csr)
	return cm, nil
}

func parseHexString(tok string) []byte {
	tok = strings.Trim(tok, "<>")
	out := make([]byte, len(tok)/2)
	for i := range out {
		hi := hexNibble(tok[2*i])
		lo := hexNibble(tok[2*i+1])
		out[i] = hi<<4 | lo
	}
	return out
}

func hexNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

func bytesToUint32(b []byte) uint32 {
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v
}
