// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package type1 parses bare Adobe Type 1 font programs, as embedded in
// a PDF FontFile stream (ISO 32000-1 9.9): the cleartext/eexec-encrypted
// split, the Type 1 CharString interpreter (Adobe Type 1 Font Format
// section 6), and the `callothersubr` flex convention used by
// hand-hinted Type 1 outlines. Accented characters built with `seac`
// are not composed: its operands are discarded and nothing is drawn.
package type1

import (
	"bytes"
	"fmt"
	"strconv"

	"pdfcore.dev/engine/geom"
	"pdfcore.dev/engine/postscript"
)

// Font is a parsed Type 1 font program.
type Font struct {
	Glyphs    map[string]*glyphProgram
	Subrs     [][]byte
	Encoding  [256]string // built-in /Encoding, code -> glyph name
	FontMatrix [6]float64
}

type glyphProgram struct {
	code []byte
}

// Parse reads a complete Type 1 font program. Only the cleartext header
// and the eexec-encrypted private dictionary (PFA hex or raw binary
// encoding of the ciphertext) are understood; PFB segment headers, if
// present, must already be stripped by the caller.
func Parse(data []byte) (*Font, error) {
	f := &Font{
		Glyphs:     make(map[string]*glyphProgram),
		FontMatrix: [6]float64{0.001, 0, 0, 0.001, 0, 0},
	}

	idx := bytes.Index(data, []byte("eexec"))
	if idx < 0 {
		return nil, fmt.Errorf("type1: no eexec section found")
	}
	clear := data[:idx]
	parseEncoding(clear, f)
	if m := findFontMatrix(clear); m != nil {
		f.FontMatrix = *m
	}

	cipher := skipWhitespace(data[idx+len("eexec"):])
	if looksLikeHex(cipher) {
		cipher = decodeHex(cipher)
	}
	priv := postscript.Decrypt(cipher, 55665, 4)

	lenIV := 4
	if v, ok := findInt(priv, "/lenIV"); ok {
		lenIV = v
	}

	f.Subrs = parseSubrs(priv, lenIV)

	if err := parseCharStrings(priv, lenIV, f); err != nil {
		return nil, err
	}
	return f, nil
}

func skipWhitespace(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t' || b[0] == '\r' || b[0] == '\n') {
		b = b[1:]
	}
	return b
}

func looksLikeHex(b []byte) bool {
	n := 0
	for _, c := range b {
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			continue
		}
		if !isHexDigit(c) {
			return false
		}
		n++
		if n >= 4 {
			return true
		}
	}
	return n > 0
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func decodeHex(b []byte) []byte {
	out := make([]byte, 0, len(b)/2)
	var hi byte
	have := false
	for _, c := range b {
		if !isHexDigit(c) {
			continue
		}
		v := hexVal(c)
		if !have {
			hi = v
			have = true
		} else {
			out = append(out, hi<<4|v)
			have = false
		}
	}
	return out
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

func findInt(data []byte, key string) (int, bool) {
	idx := bytes.Index(data, []byte(key))
	if idx < 0 {
		return 0, false
	}
	rest := skipWhitespace(data[idx+len(key):])
	end := 0
	for end < len(rest) && (rest[end] == '-' || rest[end] >= '0' && rest[end] <= '9') {
		end++
	}
	v, err := strconv.Atoi(string(rest[:end]))
	if err != nil {
		return 0, false
	}
	return v, true
}

func findFontMatrix(data []byte) *[6]float64 {
	idx := bytes.Index(data, []byte("/FontMatrix"))
	if idx < 0 {
		return nil
	}
	open := bytes.IndexByte(data[idx:], '[')
	close := bytes.IndexByte(data[idx:], ']')
	if open < 0 || close < 0 || close < open {
		return nil
	}
	fields := bytes.Fields(data[idx+open+1 : idx+close])
	if len(fields) != 6 {
		return nil
	}
	var m [6]float64
	for i, fld := range fields {
		v, err := strconv.ParseFloat(string(fld), 64)
		if err != nil {
			return nil
		}
		m[i] = v
	}
	return &m
}

func parseEncoding(data []byte, f *Font) {
	if bytes.Contains(data, []byte("StandardEncoding")) {
		return // caller falls back to the standard encoding
	}
	rest := data
	for {
		idx := bytes.Index(rest, []byte("dup "))
		if idx < 0 {
			return
		}
		rest = rest[idx+4:]
		end := 0
		for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
			end++
		}
		code, err := strconv.Atoi(string(rest[:end]))
		if err != nil || code < 0 || code > 255 {
			continue
		}
		rest = skipWhitespace(rest[end:])
		if len(rest) == 0 || rest[0] != '/' {
			continue
		}
		rest = rest[1:]
		nameEnd := 0
		for nameEnd < len(rest) && !isDelim(rest[nameEnd]) {
			nameEnd++
		}
		f.Encoding[code] = string(rest[:nameEnd])
		rest = rest[nameEnd:]
	}
}

func isDelim(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '/' || c == '(' || c == '['
}

func parseSubrs(data []byte, lenIV int) [][]byte {
	idx := bytes.Index(data, []byte("/Subrs"))
	if idx < 0 {
		return nil
	}
	rest := data[idx+len("/Subrs"):]
	rest = skipWhitespace(rest)
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(string(rest[:end]))
	if err != nil || n <= 0 || n > 1<<20 {
		return nil
	}
	subrs := make([][]byte, n)

	cursor := idx + len("/Subrs") + end
	for i := 0; i < n; i++ {
		dupIdx := bytes.Index(data[cursor:], []byte("dup "))
		if dupIdx < 0 {
			break
		}
		cursor += dupIdx + 4
		numEnd := cursor
		for numEnd < len(data) && data[numEnd] >= '0' && data[numEnd] <= '9' {
			numEnd++
		}
		subIdx, err := strconv.Atoi(string(data[cursor:numEnd]))
		cursor = numEnd
		if err != nil {
			continue
		}
		content, next, ok := readBinary(data, cursor)
		if !ok {
			break
		}
		cursor = next
		if subIdx >= 0 && subIdx < len(subrs) {
			subrs[subIdx] = postscript.Decrypt(content, 4330, lenIV)
		}
	}
	return subrs
}

func parseCharStrings(data []byte, lenIV int, f *Font) error {
	idx := bytes.Index(data, []byte("/CharStrings"))
	if idx < 0 {
		return fmt.Errorf("type1: no /CharStrings dictionary found")
	}
	beginIdx := bytes.Index(data[idx:], []byte("begin"))
	if beginIdx < 0 {
		return fmt.Errorf("type1: malformed /CharStrings dictionary")
	}
	cursor := idx + beginIdx + len("begin")

	for {
		slashIdx := bytes.IndexByte(data[cursor:], '/')
		endIdx := bytes.Index(data[cursor:], []byte("\nend"))
		if slashIdx < 0 {
			break
		}
		if endIdx >= 0 && endIdx < slashIdx {
			break
		}
		cursor += slashIdx + 1
		nameEnd := cursor
		for nameEnd < len(data) && !isDelim(data[nameEnd]) {
			nameEnd++
		}
		name := string(data[cursor:nameEnd])
		cursor = nameEnd

		content, next, ok := readBinary(data, cursor)
		if !ok {
			break
		}
		cursor = next
		f.Glyphs[name] = &glyphProgram{code: postscript.Decrypt(content, 4330, lenIV)}
	}
	return nil
}

// readBinary reads one "<len> <RD|-|> <len bytes> <ND|NP|...>" binary
// inclusion starting from pos (which must point at or before the
// integer length), per the Type 1 font format's convention for
// embedding raw ciphertext inside an otherwise textual PostScript
// stream.
func readBinary(data []byte, pos int) (content []byte, next int, ok bool) {
	p := skipWhitespaceIdx(data, pos)
	start := p
	for p < len(data) && data[p] >= '0' && data[p] <= '9' {
		p++
	}
	if p == start {
		return nil, 0, false
	}
	length, err := strconv.Atoi(string(data[start:p]))
	if err != nil || length < 0 {
		return nil, 0, false
	}
	p = skipWhitespaceIdx(data, p)
	// skip the RD/-| token itself (one whitespace-delimited word)
	for p < len(data) && data[p] != ' ' {
		p++
	}
	p++ // the single space separating the token from the binary data
	if p+length > len(data) {
		return nil, 0, false
	}
	return data[p : p+length], p + length, true
}

func skipWhitespaceIdx(data []byte, p int) int {
	for p < len(data) && (data[p] == ' ' || data[p] == '\t' || data[p] == '\r' || data[p] == '\n') {
		p++
	}
	return p
}

// Outline decodes the Type 1 CharString for the named glyph.
func (f *Font) Outline(name string) (*geom.Path, float64, error) {
	g, ok := f.Glyphs[name]
	if !ok {
		return nil, 0, fmt.Errorf("type1: glyph %q not found", name)
	}
	return decodeType1(f, g.code)
}
