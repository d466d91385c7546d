// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package type1

import "testing"

func TestDecodeType1Triangle(t *testing.T) {
	f := &Font{}
	// 10 20 hsbw, 30 0 rlineto, 0 30 rlineto, closepath, endchar
	code := []byte{
		139 + 10, 139 + 20, 13,
		139 + 30, 139 + 0, 5,
		139 + 0, 139 + 30, 5,
		9,
		14,
	}
	path, width, err := decodeType1(f, code)
	if err != nil {
		t.Fatalf("decodeType1: %v", err)
	}
	if width != 20 {
		t.Errorf("width = %v, want 20", width)
	}
	if len(path.Subpaths) != 1 {
		t.Fatalf("expected 1 subpath, got %d", len(path.Subpaths))
	}
	if path.Subpaths[0].Start.X != 10 || path.Subpaths[0].Start.Y != 0 {
		t.Errorf("start = %v, want (10,0)", path.Subpaths[0].Start)
	}
}

func TestParseEncoding(t *testing.T) {
	src := []byte("/Encoding 256 array\n0 1 255 {1 index exch /.notdef put} for\ndup 65 /A put\ndup 66 /B put\nreadonly def\n")
	f := &Font{}
	parseEncoding(src, f)
	if f.Encoding[65] != "A" || f.Encoding[66] != "B" {
		t.Errorf("encoding = %v / %v, want A / B", f.Encoding[65], f.Encoding[66])
	}
}

func TestLooksLikeHex(t *testing.T) {
	if !looksLikeHex([]byte("8e18 0b9c\n")) {
		t.Errorf("expected hex-looking data to be detected")
	}
	if looksLikeHex([]byte{0x80, 0x45, 0xfe, 0x01}) {
		t.Errorf("did not expect raw binary to be detected as hex")
	}
}
